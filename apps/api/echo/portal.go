package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classpoll/core"
	"github.com/trezcool/classpoll/core/portal"
	"github.com/trezcool/classpoll/core/user"
)

const contextViewerKey = "viewer"

type portalApi struct {
	svc      *portal.Service
	validate *validator.Validate
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	SessionResponse struct {
		User     user.User `json:"user"`
		AppTitle string    `json:"app_title"`
	}

	StatusResponse struct {
		App    string `json:"app"`
		Status string `json:"status"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func registerSessionAPI(e *echo.Echo, api portalApi, available echo.MiddlewareFunc, authed []echo.MiddlewareFunc) {
	e.POST("/session", api.login, available)
	e.DELETE("/session", api.logout, available)
	e.GET("/session", api.currentSession, authed...)
}

func (api portalApi) home(ctx echo.Context) error {
	status, _ := api.svc.Status()
	return ctx.JSON(http.StatusOK, StatusResponse{App: api.svc.AppTitle(), Status: status.String()})
}

// refresh reloads every collection; it is the way out of the unavailable state.
func (api portalApi) refresh(ctx echo.Context) error {
	if err := api.svc.Refresh(ctx.Request().Context()); err != nil {
		return err
	}
	return api.home(ctx)
}

func (api portalApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Login(data.Email, data.Password)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SessionResponse{User: usr, AppTitle: api.svc.AppTitle()})
}

func (api portalApi) logout(ctx echo.Context) error {
	api.svc.Logout()
	return ctx.NoContent(http.StatusNoContent)
}

func (api portalApi) currentSession(ctx echo.Context) error {
	usr, _ := ctx.Get(contextViewerKey).(user.User)
	return ctx.JSON(http.StatusOK, SessionResponse{User: usr, AppTitle: api.svc.AppTitle()})
}

// helpers shared by the collection endpoints

func list[T any](ctx echo.Context, fetch func() ([]T, error)) error {
	items, err := fetch()
	if err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func create[In any, Out any](ctx echo.Context, do func(In) (Out, error)) error {
	var data In
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrapf(err, "binding to %T", data)
	}
	out, err := do(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, out)
}

func destroy(ctx echo.Context, do func(id string) error) error {
	if err := do(ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
