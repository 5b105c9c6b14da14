// Package transfer models custody-changing stock transfers gated by two
// independently verified one-time codes.
//
// A Request is created with two parties, the initiator and the counterparty.
// Each receives its own 6-digit code, stored only as a bcrypt hash. The request
// completes once both parties confirmed their code before expires_at; the
// application layer then applies the lines through the stock ledger exactly
// once and stamps completed_at.
//
// Kind selects the workflow: van loading, van return or ad-hoc van adjustment.
// The workflows share the protocol and differ only in movement reason, default
// lifetime and how a line maps onto ledger operations.
package transfer
