package domain

// SessionStatus is the lifecycle state of the client session.
type SessionStatus int

const (
	SessionInitializing    SessionStatus = iota // Persisted credential not checked yet
	SessionUnauthenticated                      // No credential
	SessionAuthenticated                        // Credential present
)

// String returns the string representation of the status.
func (s SessionStatus) String() string {
	switch s {
	case SessionInitializing:
		return "initializing"
	case SessionUnauthenticated:
		return "unauthenticated"
	case SessionAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Identity is the authenticated user's profile record.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	ID    int    `json:"id"`
}

// Session is a point-in-time copy of the session state.
// Credential is non-empty exactly when Status is SessionAuthenticated,
// and Identity is nil unless Status is SessionAuthenticated.
type Session struct {
	Identity   *Identity
	Credential string
	Status     SessionStatus
}

// IsAuthenticated returns true if the session holds a credential.
func (s Session) IsAuthenticated() bool {
	return s.Status == SessionAuthenticated
}

// StoredCredential is the record persisted between runs.
type StoredCredential struct {
	Identity *Identity `json:"user,omitempty"`
	Token    string    `json:"token"`
}

// LoginResult is the server response to a successful login.
type LoginResult struct {
	Identity Identity
	Token    string
}

// RegisterInput contains the parameters for account registration.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput contains the parameters for login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
