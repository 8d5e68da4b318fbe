package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classpoll/core"
	"github.com/trezcool/classpoll/core/portal"
	"github.com/trezcool/classpoll/core/school"
	"github.com/trezcool/classpoll/core/state"
	"github.com/trezcool/classpoll/core/user"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

// statusOf maps the domain sentinels to an HTTP status; 0 means unknown.
func statusOf(err error) int {
	switch err {
	case portal.ErrNotAuthenticated:
		return http.StatusUnauthorized
	case portal.ErrForbidden, portal.ErrSelfDelete, user.ErrProtectedUser:
		return http.StatusForbidden
	case user.ErrNotFound, school.ErrNotFound, school.ErrPollNotFound, school.ErrOptionNotFound, state.ErrNotFound:
		return http.StatusNotFound
	case school.ErrNoBallot, school.ErrAlreadyVoted:
		return http.StatusConflict
	case user.ErrAuthenticationFailed:
		return http.StatusBadRequest
	}
	return 0
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, viewer func() (user.User, bool)) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.UnavailableError:
			code = http.StatusServiceUnavailable
			message = origErr.Error()
		default:
			if code = statusOf(cause); code != 0 {
				message = cause.Error()
				break
			}
			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			args := []interface{}{errors.Wrap(err, msg)}
			if usr, ok := viewer(); ok {
				args = append(args, usr)
			}
			logger.Error(msg, args...)
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
