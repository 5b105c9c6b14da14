package transfer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrRequestIsNotConstructed = errors.New("Request must be created via NewRequest or RestoreRequest")
	ErrLineIsNotConstructed    = errors.New("Line must be created via NewLine")
)

const entityName = "transfer request"

// State is the derived lifecycle state of a request.
type State string

const (
	StatePending   State = "pending"
	StateCompleted State = "completed"
	StateExpired   State = "expired"
	StateCancelled State = "cancelled"
)

// Line is one (product, quantity) item of a request. Quantities are positive
// except for adjustments, where the sign gives the direction.
type Line struct {
	productID kernel.UUID
	quantity  int64
	guard     guard.ConstructorGuard
}

func NewLine(productID kernel.UUID, quantity int64) (Line, error) {
	if err := productID.Validate(); err != nil {
		return Line{}, errs.NewValueIsRequiredErrorWithCause("productID", err)
	}
	if quantity == 0 {
		return Line{}, errs.NewValueIsInvalidError("quantity must not be zero")
	}
	return Line{productID: productID, quantity: quantity, guard: guard.NewConstructorGuard()}, nil
}

func (l Line) ProductID() kernel.UUID { return l.productID }
func (l Line) Quantity() int64        { return l.quantity }

func (l Line) Validate() error {
	return l.guard.Validate(ErrLineIsNotConstructed)
}

// Codes are the plain one-time codes handed back once from creation for
// out-of-band delivery. They are never persisted.
type Codes struct {
	Initiator    string
	Counterparty string
}

// Request is the aggregate root of the dual-confirmation protocol.
//
// Invariants:
//   - the initiator and the counterparty are different people
//   - the van's agent holds the role the Kind prescribes
//   - once completed or cancelled the request never changes again
//   - completedAt is set at most once, and only after both parties confirmed
type Request struct {
	id           kernel.UUID
	kind         Kind
	agentID      kernel.UUID
	initiator    Party
	counterparty Party
	lines        []Line
	note         string
	createdAt    time.Time
	expiresAt    time.Time
	completedAt  *time.Time
	cancelledAt  *time.Time
	expiredAt    *time.Time

	isConstructed bool
}

// NewRequest creates a pending request and its two codes.
//
// Parameters:
//   - kind: workflow tag
//   - agentID: owner of the van involved
//   - initiatorID, counterpartyID: the two confirming people
//   - lines: at least one line, products unique
//   - note: free text shown to both parties
//   - now: creation time
//   - ttl: lifetime; zero or negative selects kind.DefaultTTL()
//
// Returns:
//   - *Request: the pending request holding only code hashes
//   - Codes: the plain codes, to be delivered out of band
//   - error: joined validation errors
func NewRequest(
	kind Kind,
	agentID kernel.UUID,
	initiatorID kernel.UUID,
	counterpartyID kernel.UUID,
	lines []Line,
	note string,
	now time.Time,
	ttl time.Duration,
) (*Request, Codes, error) {
	if err := kind.Validate(); err != nil {
		return nil, Codes{}, err
	}
	if ttl <= 0 {
		ttl = kind.DefaultTTL()
	}

	codes, err := newCodes()
	if err != nil {
		return nil, Codes{}, err
	}
	initiatorHash, err := hashCode(codes.Initiator)
	if err != nil {
		return nil, Codes{}, err
	}
	counterpartyHash, err := hashCode(codes.Counterparty)
	if err != nil {
		return nil, Codes{}, err
	}

	r, err := RestoreRequest(
		kernel.NewUUID(),
		kind,
		agentID,
		RestoreParty(initiatorID, initiatorHash, nil),
		RestoreParty(counterpartyID, counterpartyHash, nil),
		lines,
		note,
		now,
		now.Add(ttl),
		nil, nil, nil,
	)
	if err != nil {
		return nil, Codes{}, err
	}

	if err = r.validateParties(); err != nil {
		return nil, Codes{}, err
	}

	return r, codes, nil
}

// RestoreRequest rebuilds a request from storage.
func RestoreRequest(
	id kernel.UUID,
	kind Kind,
	agentID kernel.UUID,
	initiator Party,
	counterparty Party,
	lines []Line,
	note string,
	createdAt time.Time,
	expiresAt time.Time,
	completedAt *time.Time,
	cancelledAt *time.Time,
	expiredAt *time.Time,
) (*Request, error) {
	r := &Request{
		kind:          kind,
		note:          strings.TrimSpace(note),
		initiator:     initiator,
		counterparty:  counterparty,
		createdAt:     createdAt,
		expiresAt:     expiresAt,
		completedAt:   copyTime(completedAt),
		cancelledAt:   copyTime(cancelledAt),
		expiredAt:     copyTime(expiredAt),
		isConstructed: true,
	}

	var agentErr error
	if err := agentID.Validate(); err != nil {
		agentErr = errs.NewValueIsRequiredErrorWithCause("agentID", err)
	}
	var expiryErr error
	if !expiresAt.After(createdAt) {
		expiryErr = errs.NewValueIsInvalidError("expiresAt must be after createdAt")
	}

	if err := errors.Join(
		id.Validate(),
		kind.Validate(),
		agentErr,
		initiator.validate("initiator"),
		counterparty.validate("counterparty"),
		expiryErr,
	); err != nil {
		return nil, err
	}
	if err := r.setLines(lines); err != nil {
		return nil, err
	}

	r.id = id
	r.agentID = agentID
	return r, nil
}

func (r *Request) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRequestIsNotConstructed
	}
	return nil
}

func (r *Request) ID() kernel.UUID          { return r.id }
func (r *Request) Kind() Kind               { return r.kind }
func (r *Request) AgentID() kernel.UUID     { return r.agentID }
func (r *Request) Initiator() Party         { return r.initiator }
func (r *Request) Counterparty() Party      { return r.counterparty }
func (r *Request) Note() string             { return r.note }
func (r *Request) CreatedAt() time.Time     { return r.createdAt }
func (r *Request) ExpiresAt() time.Time     { return r.expiresAt }
func (r *Request) CompletedAt() *time.Time  { return copyTime(r.completedAt) }
func (r *Request) CancelledAt() *time.Time  { return copyTime(r.cancelledAt) }
func (r *Request) ExpiredAt() *time.Time    { return copyTime(r.expiredAt) }

// Lines returns a copy of the line items.
func (r *Request) Lines() []Line {
	out := make([]Line, len(r.lines))
	copy(out, r.lines)
	return out
}

// Van returns the van location the request moves stock into or out of.
func (r *Request) Van() (kernel.StockLocation, error) {
	return kernel.Van(r.agentID)
}

// BothConfirmed reports whether both parties confirmed.
func (r *Request) BothConfirmed() bool {
	return r.initiator.IsConfirmed() && r.counterparty.IsConfirmed()
}

// State derives the lifecycle state at time now. A request whose parties both
// confirmed but whose completion failed stays pending past its deadline so an
// operator can retry the completion.
func (r *Request) State(now time.Time) State {
	switch {
	case r.completedAt != nil:
		return StateCompleted
	case r.cancelledAt != nil:
		return StateCancelled
	case r.BothConfirmed():
		return StatePending
	case r.expiredAt != nil || !now.Before(r.expiresAt):
		return StateExpired
	default:
		return StatePending
	}
}

// Confirm checks code against the stored hash of the given party and records
// the confirmation.
//
// Returns:
//   - bool: true when this call completed the pair of confirmations
//   - error: AlreadyCompletedError, InvalidTransitionError for a cancelled request,
//     ExpiredError at or after expires_at, ConfirmationError on a code mismatch.
//     The request is unchanged on error.
//
// Confirming an already confirmed party again is a no-op and reports false.
func (r *Request) Confirm(role PartyRole, code string, now time.Time) (bool, error) {
	if err := r.ensureOpen(); err != nil {
		return false, err
	}
	if r.expiredAt != nil || !now.Before(r.expiresAt) {
		return false, errs.NewExpiredError(entityName, r.id, r.expiresAt)
	}
	if err := role.Validate(); err != nil {
		return false, err
	}

	party := r.party(role)
	if !codeMatches(party.codeHash, code) {
		return false, errs.NewConfirmationError(role.String())
	}
	if party.IsConfirmed() {
		return false, nil
	}
	confirmedAt := now
	party.confirmedAt = &confirmedAt

	return r.BothConfirmed(), nil
}

// EnsureCompletable verifies that the ledger may now apply the lines: both
// parties confirmed and the request is neither completed nor cancelled.
// The deadline is not checked; it only bounds the confirmations.
func (r *Request) EnsureCompletable() error {
	if err := r.ensureOpen(); err != nil {
		return err
	}
	if !r.BothConfirmed() {
		return errs.NewInvalidTransitionErrorWithDetail(entityName, string(StatePending), string(StateCompleted),
			"both parties must confirm first")
	}
	return nil
}

// MarkCompleted stamps completed_at. Callers apply the stock movements in the
// same transaction.
func (r *Request) MarkCompleted(now time.Time) error {
	if err := r.EnsureCompletable(); err != nil {
		return err
	}
	completedAt := now
	r.completedAt = &completedAt
	return nil
}

// Cancel makes a pending request terminal without any stock effect.
func (r *Request) Cancel(now time.Time) error {
	if err := r.ensureOpen(); err != nil {
		return err
	}
	if r.State(now) == StateExpired {
		return errs.NewExpiredError(entityName, r.id, r.expiresAt)
	}
	cancelledAt := now
	r.cancelledAt = &cancelledAt
	return nil
}

// MarkExpired stamps expired_at on a request that passed its deadline without
// both confirmations. It reports whether anything changed.
func (r *Request) MarkExpired(now time.Time) bool {
	if r.expiredAt != nil || r.State(now) != StateExpired {
		return false
	}
	expiredAt := now
	r.expiredAt = &expiredAt
	return true
}

func (r *Request) ensureOpen() error {
	if r.completedAt != nil {
		return errs.NewAlreadyCompletedError(entityName, r.id)
	}
	if r.cancelledAt != nil {
		return errs.NewInvalidTransitionErrorWithDetail(entityName, string(StateCancelled), string(StateCompleted),
			"request was cancelled")
	}
	return nil
}

func (r *Request) party(role PartyRole) *Party {
	if role == Initiator {
		return &r.initiator
	}
	return &r.counterparty
}

func (r *Request) validateParties() error {
	if r.initiator.actorID.IsEqual(r.counterparty.actorID) {
		return errs.NewValueIsInvalidErrorWithCause("counterpartyID",
			errors.New("initiator and counterparty must be different people"))
	}
	if !r.party(r.kind.AgentParty()).actorID.IsEqual(r.agentID) {
		return errs.NewValueIsInvalidErrorWithCause(r.kind.AgentParty().String()+"ID",
			fmt.Errorf("%s requests must have the van's agent as %s", r.kind, r.kind.AgentParty()))
	}
	return nil
}

func (r *Request) setLines(lines []Line) error {
	if len(lines) == 0 {
		return errs.NewValueIsRequiredError("lines")
	}

	seen := make(map[kernel.UUID]struct{}, len(lines))
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return err
		}
		if l.quantity < 0 && !r.kind.SignedLines() {
			return errs.NewValueIsInvalidErrorWithCause("quantity",
				fmt.Errorf("%s lines must be positive, got %d", r.kind, l.quantity))
		}
		if _, dup := seen[l.productID]; dup {
			return errs.NewValueIsInvalidErrorWithCause("lines",
				fmt.Errorf("product %s appears more than once", l.productID))
		}
		seen[l.productID] = struct{}{}
	}

	r.lines = make([]Line, len(lines))
	copy(r.lines, lines)
	return nil
}

// newCodes draws the two codes independently, redrawing on the rare collision
// so neither party can confirm with the other's code.
func newCodes() (Codes, error) {
	initiator, err := generateCode()
	if err != nil {
		return Codes{}, err
	}
	for {
		counterparty, err := generateCode()
		if err != nil {
			return Codes{}, err
		}
		if counterparty != initiator {
			return Codes{Initiator: initiator, Counterparty: counterparty}, nil
		}
	}
}
