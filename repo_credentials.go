package login

import (
	"strings"
	"time"

	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Credentials interface {
	repository.Repository[*Credential]

	GetByUsername(ctx context.Context, username string) (*Credential, error)
	GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Credential, error)

	Register(ctx context.Context, record *Credential) (*Credential, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *Credential) (*Credential, error)

	WriteSession(ctx context.Context, userID uuid.UUID, token, sessionID string) error
	WriteSessionTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, token, sessionID string) error

	ReadActiveToken(ctx context.Context, userID uuid.UUID) (string, error)
	ReadActiveTokenTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (string, error)

	MarkDeleted(ctx context.Context, userID uuid.UUID) (bool, error)
	MarkDeletedTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (bool, error)
}

// WriteSessionSQL atomically replaces the live (token, session) pair. This
// single statement is the point where any previously issued token for the
// user stops authenticating.
var WriteSessionSQL = `UPDATE "credentials" AS "crd"
SET
	"jwt_token" = ?,
	"active_session" = ?,
	"active_session_deleted" = FALSE,
	"updated_at" = ?
WHERE
	"crd"."deleted_at" IS NULL
AND (
	"crd"."id" = ?
);`

// MarkSessionDeletedSQL soft-invalidates the live session. The guard on
// jwt_token and the deleted flag makes logout of an already-dead session
// report zero rows, which the handler maps to not-found.
var MarkSessionDeletedSQL = `UPDATE "credentials" AS "crd"
SET
	"active_session_deleted" = TRUE,
	"jwt_token" = NULL,
	"updated_at" = ?
WHERE
	"crd"."deleted_at" IS NULL
AND "crd"."jwt_token" IS NOT NULL
AND "crd"."active_session_deleted" = FALSE
AND (
	"crd"."id" = ?
);`

type credentials struct {
	repository.Repository[*Credential]
	db *bun.DB
}

var (
	_ Credentials                        = (*credentials)(nil)
	_ repository.Repository[*Credential] = (*credentials)(nil)
)

func NewCredentialsRepository(db *bun.DB) Credentials {
	repo := repository.NewRepository[*Credential](db, repository.ModelHandlers[*Credential]{
		NewRecord: func() *Credential { return &Credential{} },
		GetID: func(c *Credential) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Credential, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &credentials{
		Repository: repo,
		db:         db,
	}
}

func (a *credentials) GetByUsername(ctx context.Context, username string) (*Credential, error) {
	return a.GetByUsernameTx(ctx, a.db, username)
}

// GetByUsernameTx looks up a credential row by exact username. Usernames are
// matched case-sensitively, as stored.
func (a *credentials) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Credential, error) {
	record := &Credential{}

	err := tx.NewSelect().
		Model(record).
		Where(`?TableAlias."username" = ?`, username).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"username": username,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *credentials) Register(ctx context.Context, record *Credential) (*Credential, error) {
	return a.RegisterTx(ctx, a.db, record)
}

func (a *credentials) RegisterTx(ctx context.Context, tx bun.IDB, record *Credential) (*Credential, error) {
	prepareCredentialDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *credentials) WriteSession(ctx context.Context, userID uuid.UUID, token, sessionID string) error {
	return a.WriteSessionTx(ctx, a.db, userID, token, sessionID)
}

func (a *credentials) WriteSessionTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, token, sessionID string) error {
	_, err := tx.NewRaw(WriteSessionSQL, token, sessionID, time.Now(), userID).Exec(ctx)
	return err
}

func (a *credentials) ReadActiveToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return a.ReadActiveTokenTx(ctx, a.db, userID)
}

// ReadActiveTokenTx returns the token currently on record for the user, or
// the empty string when none is live (no row, no token, or session marked
// deleted). The empty string can never equal a minted token, so callers may
// compare directly.
func (a *credentials) ReadActiveTokenTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (string, error) {
	var token string

	err := tx.NewSelect().
		Model((*Credential)(nil)).
		Column("jwt_token").
		Where(`?TableAlias."id" = ?`, userID).
		Where(`?TableAlias."active_session_deleted" = FALSE`).
		Where(`?TableAlias."jwt_token" IS NOT NULL`).
		Where(`?TableAlias."deleted_at" IS NULL`).
		Limit(1).
		Scan(ctx, &token)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", nil
		}
		return "", err
	}

	return token, nil
}

func (a *credentials) MarkDeleted(ctx context.Context, userID uuid.UUID) (bool, error) {
	return a.MarkDeletedTx(ctx, a.db, userID)
}

func (a *credentials) MarkDeletedTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (bool, error) {
	res, err := tx.NewRaw(MarkSessionDeletedSQL, time.Now(), userID).Exec(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func prepareCredentialDefaults(record *Credential) {
	if record == nil {
		return
	}

	record.Username = strings.TrimSpace(record.Username)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
