// Package tui provides the terminal user interface for tasker.
package tui

// Mode represents the current dashboard mode.
type Mode int

const (
	ModeNormal     Mode = iota // Default navigation mode
	ModeInputTitle             // Title input mode (for new task)
	ModeInputDesc              // Description input mode (for new task)
	ModeConfirm                // Confirmation dialog mode
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeInputTitle:
		return "input_title"
	case ModeInputDesc:
		return "input_desc"
	case ModeConfirm:
		return "confirm"
	default:
		return "unknown"
	}
}

// IsInputMode returns true if the mode accepts text input.
func (m Mode) IsInputMode() bool {
	switch m {
	case ModeInputTitle, ModeInputDesc:
		return true
	case ModeNormal, ModeConfirm:
		return false
	}
	return false
}

// authAction is the action the sign-in form submits.
type authAction int

const (
	authLogin    authAction = iota // Exchange credentials for a session
	authRegister                   // Create an account
)

// String returns the form title for the action.
func (a authAction) String() string {
	switch a {
	case authLogin:
		return "Log in"
	case authRegister:
		return "Create account"
	}
	return ""
}
