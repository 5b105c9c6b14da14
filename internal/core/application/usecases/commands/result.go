package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/rs/zerolog"
)

// Result is what every handler reports to its caller. Message is safe to show
// to end users; Err keeps the typed error for callers that branch on it.
type Result struct {
	Success bool
	Message string

	err error
}

// Err returns the error behind a failed result, nil on success.
func (r Result) Err() error {
	return r.err
}

// Detail strings attached to InvalidTransitionError by the handlers.
const (
	detailInvoiced = "an invoice exists for the order"
)

// Messages reported in Result.Message.
const (
	MsgInsufficientStock  = "insufficient stock"
	MsgOrderNotReady      = "order not ready"
	MsgTransitionRejected = "transition not allowed"
	MsgOrderInvoiced      = "order already invoiced"
	MsgNotFound           = "not found"
	MsgExpired            = "request expired"
	MsgAlreadyCompleted   = "request already completed"
	MsgInvalidCode        = "invalid confirmation code"
	MsgForbidden          = "not permitted"
	MsgInvalidInput       = "invalid input"
	MsgInternal           = "internal error"
)

func succeeded(message string) Result {
	return Result{Success: true, Message: message}
}

// resultFromError is the single place where errors become user messages.
// Anything not recognised is logged and reported as an internal error.
func resultFromError(log zerolog.Logger, err error) Result {
	message := messageFor(err)
	if message == MsgInternal {
		log.Error().Err(err).Msg("command failed")
	} else {
		log.Info().Err(err).Str("result", message).Msg("command rejected")
	}
	return Result{Success: false, Message: message, err: err}
}

func messageFor(err error) string {
	var transition *errs.InvalidTransitionError

	switch {
	case errors.Is(err, errs.ErrInsufficientStock):
		return MsgInsufficientStock
	case errors.As(err, &transition):
		switch {
		case transition.Detail == detailInvoiced:
			return MsgOrderInvoiced
		case transition.Entity == order.EntityName &&
			transition.To == string(order.HandedToSalesRep) &&
			transition.From != string(order.ReadyForHandover):
			return MsgOrderNotReady
		default:
			return MsgTransitionRejected
		}
	case errors.Is(err, errs.ErrObjectNotFound):
		return MsgNotFound
	case errors.Is(err, errs.ErrExpired):
		return MsgExpired
	case errors.Is(err, errs.ErrAlreadyCompleted):
		return MsgAlreadyCompleted
	case errors.Is(err, errs.ErrConfirmationFailed):
		return MsgInvalidCode
	case errors.Is(err, errs.ErrForbidden):
		return MsgForbidden
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return MsgInvalidInput
	default:
		return MsgInternal
	}
}
