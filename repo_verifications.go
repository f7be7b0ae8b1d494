package login

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Verifications reads the email verification status owned by the
// registration subsystem. The login core never writes it; Mark is the seam
// registration (and fixtures) use.
type Verifications interface {
	repository.Repository[*EmailVerification]

	StatusByUser(ctx context.Context, userID uuid.UUID) (VerificationStatus, bool, error)
	StatusByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (VerificationStatus, bool, error)

	Mark(ctx context.Context, userID uuid.UUID, status VerificationStatus) (*EmailVerification, error)
	MarkTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, status VerificationStatus) (*EmailVerification, error)

	SetStatus(ctx context.Context, userID uuid.UUID, status VerificationStatus) (bool, error)
	SetStatusTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, status VerificationStatus) (bool, error)
}

type verifications struct {
	repository.Repository[*EmailVerification]
	db *bun.DB
}

var _ Verifications = (*verifications)(nil)

func NewVerificationsRepository(db *bun.DB) Verifications {
	repo := repository.NewRepository[*EmailVerification](db, repository.ModelHandlers[*EmailVerification]{
		NewRecord: func() *EmailVerification { return &EmailVerification{} },
		GetID: func(v *EmailVerification) uuid.UUID {
			if v == nil {
				return uuid.Nil
			}
			return v.ID
		},
		SetID: func(v *EmailVerification, id uuid.UUID) {
			if v != nil {
				v.ID = id
			}
		},
	})

	return &verifications{
		Repository: repo,
		db:         db,
	}
}

func (a *verifications) StatusByUser(ctx context.Context, userID uuid.UUID) (VerificationStatus, bool, error) {
	return a.StatusByUserTx(ctx, a.db, userID)
}

// StatusByUserTx returns the verification status and whether a record
// exists at all. Absence and PENDING are distinct rejections upstream.
func (a *verifications) StatusByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (VerificationStatus, bool, error) {
	record := &EmailVerification{}

	err := tx.NewSelect().
		Model(record).
		Where(`?TableAlias."user_id" = ?`, userID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}

	return record.Status, true, nil
}

func (a *verifications) Mark(ctx context.Context, userID uuid.UUID, status VerificationStatus) (*EmailVerification, error) {
	return a.MarkTx(ctx, a.db, userID, status)
}

func (a *verifications) MarkTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, status VerificationStatus) (*EmailVerification, error) {
	record := &EmailVerification{
		ID:     uuid.New(),
		UserID: userID,
		Status: status,
	}

	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *verifications) SetStatus(ctx context.Context, userID uuid.UUID, status VerificationStatus) (bool, error) {
	return a.SetStatusTx(ctx, a.db, userID, status)
}

// SetStatusTx updates the user's existing verification record in place. The
// bool reports whether a record was there to update; callers decide whether
// absence is an error.
func (a *verifications) SetStatusTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, status VerificationStatus) (bool, error) {
	res, err := tx.NewUpdate().
		Model((*EmailVerification)(nil)).
		Set(`"status" = ?`, status).
		Set(`"updated_at" = ?`, time.Now()).
		Where(`?TableAlias."user_id" = ?`, userID).
		Exec(ctx)

	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
