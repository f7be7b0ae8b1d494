package login

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Credential is the per-user credential row. It doubles as the session
// store: the active token and session id live on the same row, which is why
// a user can hold at most one live session.
type Credential struct {
	bun.BaseModel  `bun:"table:credentials,alias:crd"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username       string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string     `bun:"password_hash,notnull" json:"-"`
	ActiveToken    string     `bun:"jwt_token,nullzero" json:"-"`
	ActiveSession  string     `bun:"active_session,nullzero" json:"active_session,omitempty"`
	SessionDeleted bool       `bun:"active_session_deleted" json:"active_session_deleted"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// VerificationStatus is the state of an account's email verification
type VerificationStatus = string

const (
	// VerificationPending means the account may not log in yet
	VerificationPending VerificationStatus = "PENDING"
	// VerificationVerified means the account is eligible to log in
	VerificationVerified VerificationStatus = "VERIFIED"
)

// EmailVerification is owned by the registration subsystem; the login core
// only ever reads it.
type EmailVerification struct {
	bun.BaseModel `bun:"table:email_verifications,alias:emv"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Status        string     `bun:"status,notnull" json:"status,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// AuditEntry is one successful login. Append-only; never updated or deleted.
type AuditEntry struct {
	bun.BaseModel `bun:"table:audit_trail,alias:aud"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Timestamp     time.Time `bun:"timestamp,notnull" json:"-"`
	Browser       string    `bun:"browser,notnull" json:"browser,omitempty"`
}

// auditTimeLayout matches the minute-precision wire format of the audit
// read endpoint.
const auditTimeLayout = "2006-01-02 15:04"

// FormattedTimestamp renders the entry time the way the audit endpoint
// serves it.
func (a *AuditEntry) FormattedTimestamp() string {
	return a.Timestamp.Format(auditTimeLayout)
}
