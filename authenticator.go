package login

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Auther is the login state machine: one pass per attempt, no retries.
type Auther struct {
	repo         RepositoryManager
	tokenService TokenService
	logger       Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator. When the config carries no
// signing key a fresh in-memory key is generated for the process lifetime.
func NewAuthenticator(repo RepositoryManager, opts Config) *Auther {
	if opts == nil {
		opts = SimpleConfig{}
	}

	key := opts.GetSigningKey()
	if key == "" {
		key = MustNewSigningKey()
	}

	return &Auther{
		repo:         repo,
		tokenService: NewTokenService([]byte(key), defLogger{}),
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// WithTokenService overrides the token codec, mostly for tests that need a
// fixed signing key.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	s.tokenService = ts
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// dummyPasswordHash keeps credential checks constant-shape: unknown
// usernames still pay for one argon2 comparison before being rejected.
var dummyPasswordHash = RandomPasswordHash()

func (r LoginInput) sanitized() LoginInput {
	r.Username = strings.TrimSpace(r.Username)
	return r
}

// Validate will run validation rules
func (r LoginInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// Login runs the whole attempt: sanitize, verify credentials, gate on email
// verification, issue a session, persist it together with the audit entry,
// and return the descriptor. Verification-gate rejections happen strictly
// after credential success so they leak nothing to unauthenticated callers.
func (s *Auther) Login(ctx context.Context, input LoginInput) (*SessionDescriptor, error) {
	input = input.sanitized()

	if err := input.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload").
			WithCode(goerrors.CodeBadRequest)
	}

	record, err := s.repo.Credentials().GetByUsername(ctx, input.Username)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			// burn the same hashing cost as the wrong-password path
			_ = ComparePasswordAndHash(input.Password, dummyPasswordHash)
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login credential lookup failed", "username", input.Username, "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve credentials")
	}

	if err := ComparePasswordAndHash(input.Password, record.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	status, found, err := s.repo.Verifications().StatusByUser(ctx, record.ID)
	if err != nil {
		s.logger.Error("Login verification lookup failed", "user_id", record.ID, "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check verification status")
	}

	if !found {
		return nil, ErrNoVerificationRecord
	}

	if strings.EqualFold(status, VerificationPending) {
		return nil, ErrEmailNotVerified
	}

	sessionID := NewSessionID()
	token, err := s.tokenService.Issue(record.ID)
	if err != nil {
		s.logger.Error("Login token issue failed", "user_id", record.ID, "error", err)
		return nil, err
	}

	entry := &AuditEntry{
		UserID:    record.ID,
		Timestamp: time.Now(),
		Browser:   ParseBrowser(input.UserAgent),
	}

	// session write and audit write commit or roll back together; a session
	// must never exist without its audit trail
	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.repo.Credentials().WriteSessionTx(ctx, tx, record.ID, token, sessionID); err != nil {
			return err
		}

		_, err := s.repo.Audits().AppendTx(ctx, tx, entry)
		return err
	})

	if err != nil {
		s.logger.Error("Login session persist failed", "user_id", record.ID, "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session")
	}

	return &SessionDescriptor{
		UserID:         record.ID,
		Username:       record.Username,
		Token:          token,
		SessionID:      sessionID,
		SessionDeleted: false,
	}, nil
}

// Authenticate is the per-request gate. It verifies the token's structure
// and signature, then accepts only if the token byte-matches the one stored
// for the user. Every rejection is indistinguishable to the caller.
func (s *Auther) Authenticate(ctx context.Context, token string) (*Principal, error) {
	userID, err := s.tokenService.Verify(token)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.Credentials().ReadActiveToken(ctx, userID)
	if err != nil {
		s.logger.Error("Authenticate token lookup failed", "user_id", userID, "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read active session")
	}

	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(token)) != 1 {
		return nil, ErrSessionMismatch
	}

	return &Principal{UserID: userID}, nil
}

// Logout soft-invalidates the user's session server-side. The bool reports
// whether a live session existed to invalidate.
func (s *Auther) Logout(ctx context.Context, userID uuid.UUID) (bool, error) {
	affected, err := s.repo.Credentials().MarkDeleted(ctx, userID)
	if err != nil {
		s.logger.Error("Logout failed", "user_id", userID, "error", err)
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to invalidate session")
	}

	return affected, nil
}

// AuditTrail returns the user's login audit entries, most recent first.
func (s *Auther) AuditTrail(ctx context.Context, userID uuid.UUID) ([]*AuditEntry, error) {
	entries, err := s.repo.Audits().ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("AuditTrail listing failed", "user_id", userID, "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list audit entries")
	}

	return entries, nil
}
