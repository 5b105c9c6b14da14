package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// statusFor maps a failed command result to an HTTP status.
func statusFor(res commands.Result) int {
	switch res.Message {
	case commands.MsgNotFound:
		return http.StatusNotFound
	case commands.MsgForbidden:
		return http.StatusForbidden
	case commands.MsgInvalidInput, commands.MsgInvalidCode:
		return http.StatusUnprocessableEntity
	case commands.MsgExpired:
		return http.StatusGone
	case commands.MsgInsufficientStock,
		commands.MsgOrderNotReady,
		commands.MsgTransitionRejected,
		commands.MsgOrderInvoiced,
		commands.MsgAlreadyCompleted:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func failed(c echo.Context, res commands.Result) error {
	status := statusFor(res)
	return c.JSON(status, errorResponse{Code: status, Message: res.Message})
}

func badRequest(c echo.Context, message string, details ...string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
		Details: details,
	})
}

// queryFailed reports a read error. Lookups of missing rows and invalid
// filters are the caller's fault; anything else is logged upstream.
func queryFailed(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Code: http.StatusNotFound, Message: commands.MsgNotFound})
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return badRequest(c, commands.MsgInvalidInput, err.Error())
	default:
		return err
	}
}

// bindAndValidate decodes the JSON body into req and validates it. When ok is
// false the error response has been written and err is what the handler
// returns.
func bindAndValidate(c echo.Context, req any) (ok bool, err error) {
	if bindErr := c.Bind(req); bindErr != nil {
		return false, badRequest(c, "invalid request body")
	}
	if validateErr := c.Validate(req); validateErr != nil {
		return false, badRequest(c, commands.MsgInvalidInput, fieldErrors(validateErr)...)
	}
	return true, nil
}
