package ports

import (
	"context"
	"time"
)

// SettingsReader reads the generic key/value settings store.
// ok is false when the key is absent.
type SettingsReader interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}

// SettingsStore also writes settings. Put replaces any previous value.
type SettingsStore interface {
	SettingsReader
	Put(ctx context.Context, key, value string, now time.Time) error
}
