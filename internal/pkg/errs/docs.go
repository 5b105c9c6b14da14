// Package errs provides the error types shared by the fulfillment domain,
// its use cases and its adapters.
//
// Every type follows the same shape:
//   - a sentinel error variable (e.g., ErrInsufficientStock)
//   - a struct type carrying the details
//   - constructors with and without a cause where a cause makes sense
//   - Error() for formatting and Unwrap() returning the sentinel
//
// Callers classify failures with errors.Is against the sentinels and extract
// the details with errors.As, so HTTP handlers and command results can map a
// failure to a user-safe message without parsing strings.
package errs
