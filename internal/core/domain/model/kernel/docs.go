// Package kernel provides the domain primitives shared by the stock, order and
// transfer models.
//
// The package includes:
//   - UUID: a value object for entity identifiers
//   - StockLocation: the warehouse or one sales agent's van
//   - Actor and Role: the authenticated caller, as passed into every operation
//
// Every primitive is an immutable value object whose zero value fails Validate,
// so a forgotten constructor call surfaces as an error instead of as silently
// wrong data.
package kernel
