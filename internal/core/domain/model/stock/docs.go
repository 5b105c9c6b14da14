// Package stock models quantities on hand and the append-only movement log.
//
// A Level is the current quantity of one product at one kernel.StockLocation.
// A Movement is one signed delta applied to a Level. For every location and
// product the sum of movement deltas equals the level's quantity; the only code
// allowed to change a Level is services.StockLedger, which appends the matching
// Movement in the same transaction.
package stock
