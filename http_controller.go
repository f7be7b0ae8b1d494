package login

import (
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

func RegisterLoginRoutes[T any](app router.Router[T], opts ...LoginControllerOption) *LoginController {
	controller := NewLoginController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("user-login.post")

	app.Post(controller.Routes.Logout, controller.LogoutPost).
		SetName("user-logout.post")

	app.Get(controller.Routes.Audit, controller.AuditShow).
		SetName("user-audit.get")

	return controller
}

type LoginControllerRoutes struct {
	Login  string
	Logout string
	Audit  string
}

type LoginController struct {
	Debug        bool
	Logger       Logger
	Auther       Authenticator
	Routes       *LoginControllerRoutes
	ErrorHandler func(router.Context, error) error
}

type LoginControllerOption func(*LoginController) *LoginController

func WithControllerLogger(logger Logger) LoginControllerOption {
	return func(c *LoginController) *LoginController {
		c.Logger = logger
		return c
	}
}

func WithControllerAuthenticator(auther Authenticator) LoginControllerOption {
	return func(c *LoginController) *LoginController {
		c.Auther = auther
		return c
	}
}

func WithControllerDebug(debug bool) LoginControllerOption {
	return func(c *LoginController) *LoginController {
		c.Debug = debug
		return c
	}
}

func WithControllerRoutes(routes *LoginControllerRoutes) LoginControllerOption {
	return func(c *LoginController) *LoginController {
		c.Routes = routes
		return c
	}
}

func NewLoginController(opts ...LoginControllerOption) *LoginController {
	c := &LoginController{
		Logger:       defLogger{},
		ErrorHandler: WriteError,
		Routes: &LoginControllerRoutes{
			Login:  "/user/login",
			Logout: "/user/logout",
			Audit:  "/user/audit/:userId",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in login controller...")
	}

	return c
}

// LoginRequest payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *LoginController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewGlobalResponse(
			http.StatusBadRequest,
			false,
			"Malformed request body",
		))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewGlobalResponse(
			http.StatusBadRequest,
			false,
			err.Error(),
		))
	}

	if a.Debug {
		fmt.Println("======= USER LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	session, err := a.Auther.Login(ctx.Context(), LoginInput{
		Username:  payload.Username,
		Password:  payload.Password,
		UserAgent: ctx.GetString("User-Agent", ""),
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, session)
}

// LogoutRequest payload
type LogoutRequest struct {
	UserID string `form:"user_id" json:"user_id"`
}

// Validate will run validation rules
func (r LogoutRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, is.UUIDv4),
	)
}

func (a *LoginController) LogoutPost(ctx router.Context) error {
	payload := new(LogoutRequest)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewGlobalResponse(
			http.StatusBadRequest,
			false,
			"Malformed request body",
		))
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewGlobalResponse(
			http.StatusBadRequest,
			false,
			err.Error(),
		))
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewGlobalResponse(
			http.StatusBadRequest,
			false,
			"Invalid user id",
		))
	}

	ok, err := a.Auther.Logout(ctx.Context(), userID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if !ok {
		return a.ErrorHandler(ctx, ErrSessionNotFound)
	}

	return ctx.JSON(http.StatusOK, NewGlobalResponse(
		http.StatusOK,
		true,
		"Session terminated",
	))
}

// AuditEntryResponse is the wire shape of a single audit row.
type AuditEntryResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Timestamp string    `json:"timestamp"`
	Browser   string    `json:"browser"`
}

func (a *LoginController) AuditShow(ctx router.Context) error {
	raw := ctx.Param("userId", "")

	userID, err := uuid.Parse(raw)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewGlobalResponse(
			http.StatusBadRequest,
			false,
			"Invalid user id",
		))
	}

	entries, err := a.Auther.AuditTrail(ctx.Context(), userID)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	out := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, AuditEntryResponse{
			ID:        entry.ID,
			UserID:    entry.UserID,
			Timestamp: entry.FormattedTimestamp(),
			Browser:   entry.Browser,
		})
	}

	if a.Debug {
		fmt.Println(print.MaybePrettyJSON(out))
	}

	return ctx.JSON(http.StatusOK, out)
}
