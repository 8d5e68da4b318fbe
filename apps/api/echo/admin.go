package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/user"
)

type ClassGroupRequest struct {
	Name string `json:"name"`
}

func registerAdminAPI(e *echo.Echo, api portalApi, authed []echo.MiddlewareFunc) {
	ug := e.Group("/users", authed...)
	ug.GET("", func(ctx echo.Context) error { return list(ctx, api.svc.Users) })
	ug.POST("", func(ctx echo.Context) error { return create(ctx, api.svc.CreateUser) })
	ug.GET("/roles", api.queryRoles)
	ug.PUT("/:id", api.updateUser)
	ug.DELETE("/:id", func(ctx echo.Context) error { return destroy(ctx, api.svc.DeleteUser) })
	ug.POST("/:id/password-reset", api.resetPassword)

	cg := e.Group("/classes", authed...)
	cg.GET("", func(ctx echo.Context) error { return list(ctx, api.svc.ClassGroups) })
	cg.POST("", func(ctx echo.Context) error {
		return create(ctx, func(data ClassGroupRequest) (school.ClassGroup, error) {
			return api.svc.AddClassGroup(data.Name)
		})
	})
	cg.DELETE("/:id", func(ctx echo.Context) error { return destroy(ctx, api.svc.DeleteClassGroup) })

	e.GET("/settings", api.settings, authed...)
	e.PUT("/settings", api.updateSettings, authed...)
}

func (api portalApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

func (api portalApi) updateUser(ctx echo.Context) error {
	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	usr, err := api.svc.UpdateUser(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api portalApi) resetPassword(ctx echo.Context) error {
	if err := api.svc.ResetPassword(ctx.Param("id")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset to the default password."})
}

func (api portalApi) settings(ctx echo.Context) error {
	settings, err := api.svc.Settings()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, settings)
}

func (api portalApi) updateSettings(ctx echo.Context) error {
	var data school.Settings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Settings")
	}
	settings, err := api.svc.UpdateSettings(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, settings)
}
