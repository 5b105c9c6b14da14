package ports

import "context"

// CounterRepository stores named integer sequences.
type CounterRepository interface {
	// LockValue returns the current value of the named counter, creating it at
	// zero when missing, and locks the row until the transaction ends.
	LockValue(ctx context.Context, name string) (int64, error)

	// StoreValue writes a new value for a counter locked by LockValue.
	StoreValue(ctx context.Context, name string, value int64) error
}
