package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/youwenshao/staffroom/core"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "invalid username or password")
	errHTTPForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// httpErrorHandler renders errors uniformly: validation failures as
// field-error maps, HTTP errors as-is, anything else as a generic 500 with
// the diagnostic detail logged server-side only.
func (s *server) httpErrorHandler(err error, c echo.Context) {
	var code int
	var message interface{}

	switch err := err.(type) {
	case *echo.HTTPError:
		if err.Internal != nil {
			if herr, ok := err.Internal.(*echo.HTTPError); ok {
				err = herr
			}
		}
		code = err.Code
		message = err.Message
	case validator.ValidationErrors:
		fldErrs := make(map[string]string)
		for _, vErr := range err {
			fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
		}
		code = http.StatusBadRequest
		message = fldErrs
	case *core.ValidationError:
		if err.Fields != nil {
			fldErrs := make(map[string]string)
			for _, fErr := range err.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			message = fldErrs
		} else {
			message = err.Error()
		}
		code = http.StatusBadRequest
	default: // any other error is a server error
		s.logger().Error(err.Error(), err)
		code = http.StatusInternalServerError
		message = "something went wrong, please try again later"

		// shutting down...
		if core.IsShutdown(err) {
			s.signalShutdown()
		}
	}

	if c.Echo().Debug {
		message = err.Error()
	} else if m, ok := message.(string); ok {
		message = echo.Map{"error": m}
	}

	// Send response
	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, message)
		}
		if err != nil {
			c.Echo().Logger.Error(err)
		}
	}
}
