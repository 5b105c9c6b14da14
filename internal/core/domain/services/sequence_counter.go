package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// Counter names.
const (
	OrderNumberCounter   = "order_number"
	InvoiceNumberCounter = "invoice_number"
)

// SequenceCounter hands out strictly increasing integers per name. The counter
// row lock, held until the caller's transaction ends, is the only concurrency
// guard: concurrent callers serialize and never see the same value. A rolled
// back transaction undoes its increment, so the sequence has no gaps.
type SequenceCounter struct {
	tx       ports.TxState
	counters ports.CounterRepository
}

func NewSequenceCounter(tx ports.TxState, counters ports.CounterRepository) *SequenceCounter {
	return &SequenceCounter{tx: tx, counters: counters}
}

// Next increments the named counter and returns the new value.
func (c *SequenceCounter) Next(ctx context.Context, name string) (int64, error) {
	if c.tx == nil || !c.tx.InTransaction() {
		return 0, errs.NewPreconditionError("sequence next", "an open transaction")
	}
	if strings.TrimSpace(name) == "" {
		return 0, errs.NewValueIsRequiredError("name")
	}

	current, err := c.counters.LockValue(ctx, name)
	if err != nil {
		return 0, err
	}
	next := current + 1
	if err = c.counters.StoreValue(ctx, name, next); err != nil {
		return 0, err
	}
	return next, nil
}

// FormatOrderNumber renders "<prefix>-YYYYMMDD-NNNNN".
func FormatOrderNumber(prefix string, t time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%05d", prefix, t.Format("20060102"), seq)
}

// FormatInvoiceNumber renders "<prefix>-YYYY-NNNNNN".
func FormatInvoiceNumber(prefix string, t time.Time, seq int64) string {
	return fmt.Sprintf("%s-%d-%06d", prefix, t.Year(), seq)
}
