package errs

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTransition  = errors.New("transition is invalid")
	ErrInsufficientStock  = errors.New("stock is insufficient")
	ErrExpired            = errors.New("object is expired")
	ErrAlreadyCompleted   = errors.New("object is already completed")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrConfirmationFailed = errors.New("confirmation failed")
	ErrForbidden          = errors.New("action is forbidden")
)

// InvalidTransitionError reports a lifecycle move that is not in the
// transition table, not permitted for the actor's role, or blocked by a
// business precondition such as an issued invoice.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
	Detail string
}

func NewInvalidTransitionError(entity, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, From: from, To: to}
}

func NewInvalidTransitionErrorWithDetail(entity, from, to, detail string) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, From: from, To: to, Detail: detail}
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("%s: %s cannot move from %s to %s", ErrInvalidTransition, e.Entity, e.From, e.To)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// InsufficientStockError reports a deduction that would take a stock level
// below zero. Available is the quantity observed under the row lock.
type InsufficientStockError struct {
	Location  string
	ProductID string
	Available int64
	Requested int64
}

func NewInsufficientStockError(location, productID string, available, requested int64) *InsufficientStockError {
	return &InsufficientStockError{
		Location:  location,
		ProductID: productID,
		Available: available,
		Requested: requested,
	}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: product %s at %s has %d, requested %d",
		ErrInsufficientStock, e.ProductID, e.Location, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// ExpiredError reports an operation on an object whose deadline has passed.
type ExpiredError struct {
	ParamName string
	ID        any
	ExpiredAt time.Time
}

func NewExpiredError(paramName string, id any, expiredAt time.Time) *ExpiredError {
	return &ExpiredError{ParamName: paramName, ID: id, ExpiredAt: expiredAt}
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("%s: %s %v expired at %s", ErrExpired, e.ParamName, e.ID, e.ExpiredAt.Format(time.RFC3339))
}

func (e *ExpiredError) Unwrap() error {
	return ErrExpired
}

// AlreadyCompletedError reports an operation on an object that already
// reached its final state.
type AlreadyCompletedError struct {
	ParamName string
	ID        any
}

func NewAlreadyCompletedError(paramName string, id any) *AlreadyCompletedError {
	return &AlreadyCompletedError{ParamName: paramName, ID: id}
}

func (e *AlreadyCompletedError) Error() string {
	return fmt.Sprintf("%s: %s %v", ErrAlreadyCompleted, e.ParamName, e.ID)
}

func (e *AlreadyCompletedError) Unwrap() error {
	return ErrAlreadyCompleted
}

// PreconditionError reports a call made outside the context it requires,
// such as a stock mutation without an open transaction. It signals a
// programming error rather than a user mistake.
type PreconditionError struct {
	Operation string
	Condition string
}

func NewPreconditionError(operation, condition string) *PreconditionError {
	return &PreconditionError{Operation: operation, Condition: condition}
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s requires %s", ErrPreconditionFailed, e.Operation, e.Condition)
}

func (e *PreconditionError) Unwrap() error {
	return ErrPreconditionFailed
}

// ConfirmationError reports a rejected confirmation code. Party names the
// side whose code did not match; the submitted code is never included.
type ConfirmationError struct {
	Party string
}

func NewConfirmationError(party string) *ConfirmationError {
	return &ConfirmationError{Party: party}
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("%s: code does not match for %s", ErrConfirmationFailed, e.Party)
}

func (e *ConfirmationError) Unwrap() error {
	return ErrConfirmationFailed
}

// ForbiddenError reports an actor whose role may not perform an action.
type ForbiddenError struct {
	Role   string
	Action string
}

func NewForbiddenError(role, action string) *ForbiddenError {
	return &ForbiddenError{Role: role, Action: action}
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: role %s may not %s", ErrForbidden, e.Role, e.Action)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}
