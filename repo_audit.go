package login

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Audits is the append-only login audit trail. Entries are created once per
// successful login and never mutated or deleted.
type Audits interface {
	repository.Repository[*AuditEntry]

	Append(ctx context.Context, entry *AuditEntry) (*AuditEntry, error)
	AppendTx(ctx context.Context, tx bun.IDB, entry *AuditEntry) (*AuditEntry, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*AuditEntry, error)
	ListByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]*AuditEntry, error)
}

type audits struct {
	repository.Repository[*AuditEntry]
	db *bun.DB
}

var _ Audits = (*audits)(nil)

func NewAuditsRepository(db *bun.DB) Audits {
	repo := repository.NewRepository[*AuditEntry](db, repository.ModelHandlers[*AuditEntry]{
		NewRecord: func() *AuditEntry { return &AuditEntry{} },
		GetID: func(e *AuditEntry) uuid.UUID {
			if e == nil {
				return uuid.Nil
			}
			return e.ID
		},
		SetID: func(e *AuditEntry, id uuid.UUID) {
			if e != nil {
				e.ID = id
			}
		},
	})

	return &audits{
		Repository: repo,
		db:         db,
	}
}

func (a *audits) Append(ctx context.Context, entry *AuditEntry) (*AuditEntry, error) {
	return a.AppendTx(ctx, a.db, entry)
}

func (a *audits) AppendTx(ctx context.Context, tx bun.IDB, entry *AuditEntry) (*AuditEntry, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, tx, entry)
}

func (a *audits) ListByUser(ctx context.Context, userID uuid.UUID) ([]*AuditEntry, error) {
	return a.ListByUserTx(ctx, a.db, userID)
}

// ListByUserTx returns the user's audit entries, most recent first.
func (a *audits) ListByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]*AuditEntry, error) {
	entries := []*AuditEntry{}

	err := tx.NewSelect().
		Model(&entries).
		Where(`?TableAlias."user_id" = ?`, userID).
		Order("timestamp DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return entries, nil
}
