package login

import (
	"github.com/google/uuid"
)

// SessionDescriptor is what a successful login returns to the caller. It is
// transient: only the token/session fields on the credential row persist.
type SessionDescriptor struct {
	UserID         uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Token          string    `json:"jwt_token"`
	SessionID      string    `json:"active_session"`
	SessionDeleted bool      `json:"active_session_deleted"`
}

// Principal is the authenticated identity produced by the request gate.
// Identity only; the core models no roles or extra claims.
type Principal struct {
	UserID uuid.UUID `json:"user_id"`
}

// NewSessionID generates the opaque per-login session identifier.
func NewSessionID() string {
	return uuid.NewString()
}
