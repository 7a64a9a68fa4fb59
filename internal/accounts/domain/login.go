package domain

// ResultKind classifies how a login attempt ended.
type ResultKind int

const (
	ResultInvalidCredentials ResultKind = iota
	ResultAuthenticated
	ResultTwoFactorFailed
	ResultCancelled
)

func (k ResultKind) String() string {
	switch k {
	case ResultAuthenticated:
		return "authenticated"
	case ResultInvalidCredentials:
		return "invalid_credentials"
	case ResultTwoFactorFailed:
		return "two_factor_failed"
	case ResultCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// LoginResult is the final answer for one login. User is only set when Kind
// is ResultAuthenticated; Reason carries the failure message for
// ResultTwoFactorFailed.
type LoginResult struct {
	Kind   ResultKind
	User   User
	Reason string
}

// Authenticated reports whether the login unlocked the home view.
func (r LoginResult) Authenticated() bool { return r.Kind == ResultAuthenticated }

// AppState is the top-level application state: either nobody is signed in,
// or exactly one user is.
type AppState struct {
	user *User
}

// LoggedOut is the initial application state.
func LoggedOut() AppState { return AppState{} }

// AuthenticatedAs is the state after a successful login.
func AuthenticatedAs(u User) AppState { return AppState{user: &u} }

// User returns the signed-in user, if any.
func (s AppState) User() (User, bool) {
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// LoggedIn reports whether a user is signed in.
func (s AppState) LoggedIn() bool { return s.user != nil }
