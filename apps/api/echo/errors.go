package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/edumedsolutions/edumed/core"
	"github.com/edumedsolutions/edumed/core/contact"
	"github.com/edumedsolutions/edumed/core/gateway"
	"github.com/edumedsolutions/edumed/core/portal"
	"github.com/edumedsolutions/edumed/core/session"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errSessionExpired       = echo.NewHTTPError(http.StatusUnauthorized, "session expired, please sign in again")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "invalid login credentials")
	errTooManyRequests      = echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = core.TranslateValidationErrors(origErr, translator)
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
		case *gateway.RemoteError:
			code = http.StatusBadGateway
			message = origErr.Message
			if origErr.Message == "" {
				message = http.StatusText(http.StatusBadGateway)
			}
			logger.Error(origErr.Error(), err, contextIdentity(ctx))
		default:
			switch origErr {
			case session.ErrInvalidCredentials:
				code, message = errAuthenticationFailed.Code, errAuthenticationFailed.Message
			case session.ErrEmailTaken:
				code = http.StatusBadRequest
				message = map[string]string{"email": origErr.Error()}
			case session.ErrNotAuthenticated, portal.ErrSessionNotFound, portal.ErrSessionExpired:
				code, message = errSessionExpired.Code, errSessionExpired.Message
			case contact.ErrSubmitFailed:
				code, message = http.StatusInternalServerError, contact.MsgFailed
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				logger.Error(msg, errors.Wrap(err, msg), contextIdentity(ctx))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
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

func contextIdentity(ctx echo.Context) session.Identity {
	var id session.Identity
	if claims, err := getContextClaims(ctx); err == nil {
		id.ID = claims.Subject
		id.Email = claims.Email
	}
	return id
}
