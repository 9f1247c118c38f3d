package domain

// SessionState represents where the session gate is in its lifecycle
type SessionState string

const (
	SessionUnknown         SessionState = "unknown"
	SessionAuthenticated   SessionState = "authenticated"
	SessionUnauthenticated SessionState = "unauthenticated"
)

// IsResolved is false until rehydration has finished
func (s SessionState) IsResolved() bool {
	return s == SessionAuthenticated || s == SessionUnauthenticated
}

// String representation (for logging)
func (s SessionState) String() string {
	return string(s)
}

type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
