package login_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	login "github.com/marlowhq/go-login"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

const chromeUA = "Mozilla/5.0 (Macintosh) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func verifiedAccount(t *testing.T, username, password string) (*login.Credential, *fakeRepo) {
	t.Helper()

	hash, err := login.HashPassword(password)
	require.NoError(t, err)

	record := &login.Credential{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
	}

	repo := newFakeRepo()
	repo.credentials.getByUsername = func(ctx context.Context, name string) (*login.Credential, error) {
		if name == username {
			return record, nil
		}
		return nil, repository.NewRecordNotFound()
	}
	repo.credentials.writeSessionTx = func(ctx context.Context, tx bun.IDB, userID uuid.UUID, token, sessionID string) error {
		return nil
	}
	repo.verifications.statusByUser = func(ctx context.Context, userID uuid.UUID) (login.VerificationStatus, bool, error) {
		return login.VerificationVerified, true, nil
	}

	return record, repo
}

func TestLoginRejectsEmptyPayload(t *testing.T) {
	auther := login.NewAuthenticator(newFakeRepo(), nil)

	for _, input := range []login.LoginInput{
		{},
		{Username: "alice"},
		{Password: "secret"},
		{Username: "   ", Password: "secret"},
	} {
		_, err := auther.Login(context.Background(), input)
		require.Error(t, err)

		var rich *goerrors.Error
		require.True(t, goerrors.As(err, &rich))
		assert.Equal(t, goerrors.CategoryValidation, rich.Category)
	}
}

func TestLoginUnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	_, repo := verifiedAccount(t, "alice", "correct-password")
	auther := login.NewAuthenticator(repo, nil)

	_, unknownErr := auther.Login(context.Background(), login.LoginInput{
		Username: "mallory",
		Password: "whatever",
	})
	require.Error(t, unknownErr)

	_, wrongErr := auther.Login(context.Background(), login.LoginInput{
		Username: "alice",
		Password: "wrong-password",
	})
	require.Error(t, wrongErr)

	// both rejections carry the same code and message so callers cannot
	// probe which usernames exist
	assertTextCode(t, unknownErr, login.TextCodeInvalidCreds)
	assertTextCode(t, wrongErr, login.TextCodeInvalidCreds)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())

	assert.Zero(t, repo.credentials.writeSessionCalls)
	assert.Empty(t, repo.audits.appended)
}

func TestLoginTrimsUsername(t *testing.T) {
	record, repo := verifiedAccount(t, "alice", "correct-password")
	auther := login.NewAuthenticator(repo, nil)

	session, err := auther.Login(context.Background(), login.LoginInput{
		Username: "  alice  ",
		Password: "correct-password",
	})
	require.NoError(t, err)
	assert.Equal(t, record.ID, session.UserID)
}

func TestLoginPendingVerification(t *testing.T) {
	_, repo := verifiedAccount(t, "alice", "correct-password")
	repo.verifications.statusByUser = func(ctx context.Context, userID uuid.UUID) (login.VerificationStatus, bool, error) {
		return login.VerificationPending, true, nil
	}

	auther := login.NewAuthenticator(repo, nil)

	_, err := auther.Login(context.Background(), login.LoginInput{
		Username: "alice",
		Password: "correct-password",
	})
	require.Error(t, err)
	assertTextCode(t, err, login.TextCodeEmailNotVerified)

	// a gated login must leave no trace of a session
	assert.Zero(t, repo.credentials.writeSessionCalls)
	assert.Empty(t, repo.audits.appended)
}

func TestLoginMissingVerificationRecord(t *testing.T) {
	_, repo := verifiedAccount(t, "alice", "correct-password")
	repo.verifications.statusByUser = func(ctx context.Context, userID uuid.UUID) (login.VerificationStatus, bool, error) {
		return "", false, nil
	}

	auther := login.NewAuthenticator(repo, nil)

	_, err := auther.Login(context.Background(), login.LoginInput{
		Username: "alice",
		Password: "correct-password",
	})
	require.Error(t, err)
	assertTextCode(t, err, login.TextCodeNoVerificationFound)
}

func TestLoginSuccess(t *testing.T) {
	record, repo := verifiedAccount(t, "alice", "correct-password")

	var storedToken string
	repo.credentials.writeSessionTx = func(ctx context.Context, tx bun.IDB, userID uuid.UUID, token, sessionID string) error {
		storedToken = token
		return nil
	}

	auther := login.NewAuthenticator(repo, nil)

	session, err := auther.Login(context.Background(), login.LoginInput{
		Username:  "alice",
		Password:  "correct-password",
		UserAgent: chromeUA,
	})
	require.NoError(t, err)

	assert.Equal(t, record.ID, session.UserID)
	assert.Equal(t, "alice", session.Username)
	assert.NotEmpty(t, session.Token)
	assert.NotEmpty(t, session.SessionID)
	assert.False(t, session.SessionDeleted)
	assert.Equal(t, session.Token, storedToken)

	userID, err := auther.TokenService().Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, record.ID, userID)

	require.Len(t, repo.audits.appended, 1)
	entry := repo.audits.appended[0]
	assert.Equal(t, record.ID, entry.UserID)
	assert.Equal(t, "Chrome", entry.Browser)
	assert.False(t, entry.Timestamp.IsZero())
}

func TestLoginSupersedesPreviousSession(t *testing.T) {
	record, repo := verifiedAccount(t, "alice", "correct-password")

	var storedToken string
	repo.credentials.writeSessionTx = func(ctx context.Context, tx bun.IDB, userID uuid.UUID, token, sessionID string) error {
		storedToken = token
		return nil
	}
	repo.credentials.readActiveToken = func(ctx context.Context, userID uuid.UUID) (string, error) {
		if userID == record.ID {
			return storedToken, nil
		}
		return "", nil
	}

	auther := login.NewAuthenticator(repo, nil)
	ctx := context.Background()

	first, err := auther.Login(ctx, login.LoginInput{Username: "alice", Password: "correct-password"})
	require.NoError(t, err)

	second, err := auther.Login(ctx, login.LoginInput{Username: "alice", Password: "correct-password"})
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	assert.NotEqual(t, first.SessionID, second.SessionID)

	// the superseded token still has a valid signature but no longer
	// matches the stored session
	_, err = auther.Authenticate(ctx, first.Token)
	require.Error(t, err)
	assertTextCode(t, err, login.TextCodeSessionMismatch)

	principal, err := auther.Authenticate(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, record.ID, principal.UserID)
}

func TestAuthenticateRejectsForeignToken(t *testing.T) {
	record, repo := verifiedAccount(t, "alice", "correct-password")
	repo.credentials.readActiveToken = func(ctx context.Context, userID uuid.UUID) (string, error) {
		return "", nil
	}

	auther := login.NewAuthenticator(repo, nil)

	// signature-valid token that was never written to the session store
	token, err := auther.TokenService().Issue(record.ID)
	require.NoError(t, err)

	_, err = auther.Authenticate(context.Background(), token)
	require.Error(t, err)
	assertTextCode(t, err, login.TextCodeSessionMismatch)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	auther := login.NewAuthenticator(newFakeRepo(), nil)

	_, err := auther.Authenticate(context.Background(), "not-a-token")
	require.Error(t, err)
	assertTextCode(t, err, login.TextCodeTokenMalformed)
}

func TestLogout(t *testing.T) {
	repo := newFakeRepo()
	auther := login.NewAuthenticator(repo, nil)

	userID := uuid.New()

	repo.credentials.markDeleted = func(ctx context.Context, id uuid.UUID) (bool, error) {
		assert.Equal(t, userID, id)
		return true, nil
	}

	ok, err := auther.Logout(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, ok)

	repo.credentials.markDeleted = func(ctx context.Context, id uuid.UUID) (bool, error) {
		return false, nil
	}

	ok, err = auther.Logout(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuditTrail(t *testing.T) {
	repo := newFakeRepo()
	auther := login.NewAuthenticator(repo, nil)

	userID := uuid.New()
	expected := []*login.AuditEntry{
		{ID: uuid.New(), UserID: userID, Browser: "Firefox"},
		{ID: uuid.New(), UserID: userID, Browser: "Chrome"},
	}

	repo.audits.listByUser = func(ctx context.Context, id uuid.UUID) ([]*login.AuditEntry, error) {
		assert.Equal(t, userID, id)
		return expected, nil
	}

	entries, err := auther.AuditTrail(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, expected, entries)
}
