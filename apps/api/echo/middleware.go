package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classpoll/core"
	"github.com/trezcool/classpoll/core/portal"
)

// availableMiddleware answers 503 while the data is loading or unavailable.
func availableMiddleware(svc *portal.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			status, err := svc.Status()
			if status == portal.StatusReady {
				return next(ctx)
			}
			if err == nil {
				err = portal.ErrLoading
			}
			if !core.IsUnavailable(err) {
				err = core.NewUnavailableError(err)
			}
			return errors.Wrap(err, status.String())
		}
	}
}

// viewerMiddleware rejects anonymous requests and stores the viewer in the context.
func viewerMiddleware(svc *portal.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, ok := svc.Viewer()
			if !ok {
				return portal.ErrNotAuthenticated
			}
			ctx.Set(contextViewerKey, usr)
			return next(ctx)
		}
	}
}
