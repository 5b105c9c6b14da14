// Package guard provides the ConstructorGuard used by commands, queries and
// value objects to reject zero values that bypassed their constructor.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the guarded value was not
// constructed and no specific error was supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks a value as built through its designated constructor.
// Embed it in a struct, set it with NewConstructorGuard inside the constructor and
// call Validate before using the value:
//
//	var ErrTransferLineIsNotConstructed = errors.New("Line must be created via NewLine")
//
//	type Line struct {
//	    productID kernel.UUID
//	    quantity  int64
//	    guard     guard.ConstructorGuard
//	}
//
//	func (l Line) Validate() error {
//	    return l.guard.Validate(ErrTransferLineIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard flagged as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
