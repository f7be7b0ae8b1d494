package login

import (
	"context"
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/marlowhq/go-login/middleware/bearerware"
)

type RouteAuthenticator struct {
	auth             Authenticator
	cfg              Config
	Logger           Logger
	AuthErrorHandler func(c router.Context, err error) error
	ErrorHandler     func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	if cfg == nil {
		cfg = SimpleConfig{}
	}

	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		Logger: defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	a.Logger = logger
	return a
}

// ProtectedRoute gates a route on a bearer token that both verifies and
// matches the stored active session.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = a.AuthErrorHandler
	}

	return bearerware.New(bearerware.Config{
		ErrorHandler:       errorHandler,
		TokenAuthenticator: tokenAuthenticatorAdapter{auth: a.auth},
		AuthScheme:         a.cfg.GetAuthScheme(),
		ContextKey:         a.cfg.GetContextKey(),
		TokenLookup:        a.cfg.GetTokenLookup(),
		ContextEnricher: func(c context.Context, principal any) context.Context {
			if p, ok := principal.(*Principal); ok {
				return WithPrincipal(c, p)
			}
			return c
		},
	})
}

// tokenAuthenticatorAdapter bridges the Authenticator into the middleware
// without the middleware depending on this package's types.
type tokenAuthenticatorAdapter struct {
	auth Authenticator
}

func (t tokenAuthenticatorAdapter) Authenticate(ctx context.Context, token string) (any, error) {
	return t.auth.Authenticate(ctx, token)
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if errors.As(err, &richErr) && !IsAuthRejection(err) && richErr.Category == errors.CategoryInternal {
		// storage failures are not auth rejections; do not disguise them,
		// but do not leak internals either
		a.Logger.Error("Authentication gate internal error", "error", richErr.Message)
	}

	// uniform 401 regardless of which sub-check failed
	return c.JSON(http.StatusUnauthorized, NewGlobalResponse(http.StatusUnauthorized, false, "Invalid or expired token"))
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return a.AuthErrorHandler(c, richErr)
	default:
		return WriteError(c, richErr)
	}
}

// GlobalResponse is the envelope for every non-2xx body.
type GlobalResponse struct {
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewGlobalResponse(status int, success bool, message string) GlobalResponse {
	return GlobalResponse{Status: status, Success: success, Message: message}
}

// WriteError maps a structured error onto the HTTP response. Deliberate
// rejections keep their curated messages; everything else collapses to a
// generic 500 so internals never reach the client.
func WriteError(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = statusFromCategory(richErr.Category)
	}

	message := richErr.Message
	if status >= http.StatusInternalServerError {
		message = "An unexpected server error occurred"
	}

	return c.JSON(status, NewGlobalResponse(status, false, message))
}

func statusFromCategory(category errors.Category) int {
	switch category {
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
