package login

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type VerifyEmailMessage struct {
	Username   string `json:"username"`
	OnResponse func(r *VerifyEmailResponse)
}

func (e VerifyEmailMessage) Type() string { return "user.verify_email" }

type VerifyEmailResponse struct {
	Found           bool     `json:"found"`
	AlreadyVerified bool     `json:"already_verified"`
	Errors          []string `json:"errors"`
}

// VerifyEmailHandler flips a pending account to verified, which is what
// makes it eligible to log in.
type VerifyEmailHandler struct {
	repo RepositoryManager
}

func NewVerifyEmailHandler(repo RepositoryManager) *VerifyEmailHandler {
	return &VerifyEmailHandler{repo: repo}
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during email verification")
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	resp := &VerifyEmailResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := h.repo.Credentials().GetByUsernameTx(ctx, tx, event.Username)
		if err != nil {
			// unknown usernames are part of the expected flow, not an
			// application error
			if repository.IsRecordNotFound(err) {
				resp.Found = false
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve credential")
		}

		resp.Found = true

		status, found, err := h.repo.Verifications().StatusByUserTx(ctx, tx, record.ID)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read verification status")
		}

		if found && status == VerificationVerified {
			resp.AlreadyVerified = true
			return nil
		}

		if found {
			if _, err := h.repo.Verifications().SetStatusTx(ctx, tx, record.ID, VerificationVerified); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update verification status")
			}
			return nil
		}

		if _, err := h.repo.Verifications().MarkTx(ctx, tx, record.ID, VerificationVerified); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create verification record")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to execute email verification")
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
