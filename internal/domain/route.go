package domain

// Route is the view a guard decision resolves to.
type Route int

const (
	RouteLoading   Route = iota // Session not resolved yet
	RouteLogin                  // Redirect to the login entry point
	RouteProtected              // Render protected content
)

// String returns the string representation of the route.
func (r Route) String() string {
	switch r {
	case RouteLoading:
		return "loading"
	case RouteLogin:
		return "login"
	case RouteProtected:
		return "protected"
	default:
		return "unknown"
	}
}

// GuardRoute decides which view protected content resolves to for a session status.
func GuardRoute(status SessionStatus) Route {
	switch status {
	case SessionAuthenticated:
		return RouteProtected
	case SessionInitializing:
		return RouteLoading
	case SessionUnauthenticated:
		return RouteLogin
	default:
		return RouteLogin
	}
}
