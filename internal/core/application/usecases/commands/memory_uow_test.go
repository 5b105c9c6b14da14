package commands_test

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/outbox"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/core/domain/model/transfer"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

var errNoTransaction = errors.New("no transaction in progress")

type levelKey struct {
	location  string
	productID kernel.UUID
}

type outboxRow struct {
	msg     *outbox.Message
	sentAt  *time.Time
	retries int
}

// memState is everything a transaction can see. Aggregates are cloned on every
// read and write, so a shallow copy of the maps isolates a transaction.
type memState struct {
	levels    map[levelKey]int64
	movements []*stock.Movement
	orders    map[kernel.UUID]*order.Order
	logs      []*order.ActionLog
	transfers map[kernel.UUID]*transfer.Request
	counters  map[string]int64
	outbox    []outboxRow
	invoices  map[kernel.UUID]bool
}

func (s memState) clone() memState {
	c := memState{
		levels:    make(map[levelKey]int64, len(s.levels)),
		movements: append([]*stock.Movement(nil), s.movements...),
		orders:    make(map[kernel.UUID]*order.Order, len(s.orders)),
		logs:      append([]*order.ActionLog(nil), s.logs...),
		transfers: make(map[kernel.UUID]*transfer.Request, len(s.transfers)),
		counters:  make(map[string]int64, len(s.counters)),
		outbox:    append([]outboxRow(nil), s.outbox...),
		invoices:  make(map[kernel.UUID]bool, len(s.invoices)),
	}
	for k, v := range s.levels {
		c.levels[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.transfers {
		c.transfers[k] = v
	}
	for k, v := range s.counters {
		c.counters[k] = v
	}
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	return c
}

// memStore is an in-memory database whose transactions are fully serialized:
// Begin takes a global lock that Commit or Rollback releases. That is stricter
// than row locks but gives the same outcomes for the scenarios under test.
type memStore struct {
	mu    sync.Mutex
	state memState
}

func newMemStore() *memStore {
	return &memStore{state: memState{}.clone()}
}

func (s *memStore) orderFactory() commands.OrderUoWFactory {
	return orderUoWFactory{s}
}

func (s *memStore) transferFactory() commands.TransferUoWFactory {
	return transferUoWFactory{s}
}

func (s *memStore) ledgerFactory() commands.LedgerUoWFactory {
	return ledgerUoWFactory{s}
}

func (s *memStore) outboxFactory() commands.OutboxUoWFactory {
	return outboxUoWFactory{s}
}

type (
	orderUoWFactory    struct{ s *memStore }
	transferUoWFactory struct{ s *memStore }
	ledgerUoWFactory   struct{ s *memStore }
	outboxUoWFactory   struct{ s *memStore }
)

func (f orderUoWFactory) Create() commands.OrderUoW       { return &memUoW{store: f.s} }
func (f transferUoWFactory) Create() commands.TransferUoW { return &memUoW{store: f.s} }
func (f ledgerUoWFactory) Create() commands.LedgerUoW     { return &memUoW{store: f.s} }
func (f outboxUoWFactory) Create() commands.OutboxUoW     { return &memUoW{store: f.s} }

// Helpers reading committed state.

func (s *memStore) seed(location kernel.StockLocation, productID kernel.UUID, qty int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.levels[levelKey{location.String(), productID}] = qty
}

func (s *memStore) quantity(location kernel.StockLocation, productID kernel.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.levels[levelKey{location.String(), productID}]
}

func (s *memStore) movements() []*stock.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*stock.Movement(nil), s.state.movements...)
}

func (s *memStore) order(id kernel.UUID) *order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.state.orders[id]
	if !ok {
		return nil
	}
	return cloneOrder(o)
}

func (s *memStore) actionLogs(orderID kernel.UUID) []*order.ActionLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*order.ActionLog
	for _, l := range s.state.logs {
		if l.OrderID().IsEqual(orderID) {
			out = append(out, l)
		}
	}
	return out
}

func (s *memStore) transfer(id kernel.UUID) *transfer.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.state.transfers[id]
	if !ok {
		return nil
	}
	return cloneRequest(r)
}

func (s *memStore) outboxMessages(topic string) []*outbox.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*outbox.Message
	for _, row := range s.state.outbox {
		if row.msg.Topic() == topic {
			out = append(out, row.msg)
		}
	}
	return out
}

func (s *memStore) addOutbox(msg *outbox.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.outbox = append(s.state.outbox, outboxRow{msg: msg})
}

func (s *memStore) outboxEntry(id kernel.UUID) outboxRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.state.outbox {
		if row.msg.ID().IsEqual(id) {
			return row
		}
	}
	return outboxRow{}
}

func (s *memStore) markInvoiced(orderID kernel.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.invoices[orderID] = true
}

func (s *memStore) putOrder(o *order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.orders[o.ID()] = cloneOrder(o)
}

// memUoW is one transaction over a memStore.
type memUoW struct {
	store *memStore
	work  *memState
	inTx  bool
}

func (u *memUoW) Begin(_ context.Context) error {
	u.store.mu.Lock()
	w := u.store.state.clone()
	u.work = &w
	u.inTx = true
	return nil
}

func (u *memUoW) Commit(_ context.Context) error {
	if !u.inTx {
		return errNoTransaction
	}
	u.store.state = *u.work
	u.end()
	return nil
}

func (u *memUoW) Rollback(_ context.Context) error {
	if !u.inTx {
		return nil
	}
	u.end()
	return nil
}

func (u *memUoW) end() {
	u.inTx = false
	u.work = nil
	u.store.mu.Unlock()
}

func (u *memUoW) InTransaction() bool { return u.inTx }

func (u *memUoW) StockRepository() ports.StockRepository       { return memLevels{u} }
func (u *memUoW) MovementRepository() ports.MovementRepository { return memMovements{u} }
func (u *memUoW) OrderRepository() ports.OrderRepository       { return memOrders{u} }
func (u *memUoW) TransferRepository() ports.TransferRepository { return memTransfers{u} }
func (u *memUoW) CounterRepository() ports.CounterRepository   { return memCounters{u} }
func (u *memUoW) OutboxRepository() ports.OutboxRepository     { return memOutbox{u} }
func (u *memUoW) InvoiceLookup() ports.InvoiceLookup           { return memInvoices{u} }

func (u *memUoW) state() (*memState, error) {
	if !u.inTx {
		return nil, errNoTransaction
	}
	return u.work, nil
}

type memLevels struct{ u *memUoW }

func (r memLevels) Get(_ context.Context, location kernel.StockLocation, productID kernel.UUID) (*stock.Level, error) {
	st, err := r.u.state()
	if err != nil {
		return nil, err
	}
	return stock.RestoreLevel(location, productID, st.levels[levelKey{location.String(), productID}], time.Time{})
}

func (r memLevels) GetForUpdate(
	ctx context.Context,
	location kernel.StockLocation,
	productID kernel.UUID,
) (*stock.Level, error) {
	return r.Get(ctx, location, productID)
}

func (r memLevels) Save(_ context.Context, level *stock.Level) error {
	st, err := r.u.state()
	if err != nil {
		return err
	}
	st.levels[levelKey{level.Location().String(), level.ProductID()}] = level.Quantity()
	return nil
}

type memMovements struct{ u *memUoW }

func (r memMovements) Append(_ context.Context, movement *stock.Movement) error {
	st, err := r.u.state()
	if err != nil {
		return err
	}
	st.movements = append(st.movements, movement)
	return nil
}

type memOrders struct{ u *memUoW }

func (r memOrders) Add(_ context.Context, o *order.Order) error {
	st, err := r.u.state()
	if err != nil {
		return err
	}
	st.orders[o.ID()] = cloneOrder(o)
	return nil
}

func (r memOrders) Update(ctx context.Context, o *order.Order) error {
	return r.Add(ctx, o)
}

func (r memOrders) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	st, err := r.u.state()
	if err != nil {
		return nil, err
	}
	o, ok := st.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("orderID", id)
	}
	return cloneOrder(o), nil
}

func (r memOrders) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.Get(ctx, id)
}

func (r memOrders) AppendActionLog(_ context.Context, entry *order.ActionLog) error {
	st, err := r.u.state()
	if err != nil {
		return err
	}
	st.logs = append(st.logs, entry)
	return nil
}

type memTransfers struct{ u *memUoW }

func (r memTransfers) Add(_ context.Context, req *transfer.Request) error {
	st, err := r.u.state()
	if err != nil {
		return err
	}
	st.transfers[req.ID()] = cloneRequest(req)
	return nil
}

func (r memTransfers) Update(ctx context.Context, req *transfer.Request) error {
	return r.Add(ctx, req)
}

func (r memTransfers) Get(_ context.Context, id kernel.UUID) (*transfer.Request, error) {
	st, err := r.u.state()
	if err != nil {
		return nil, err
	}
	req, ok := st.transfers[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("requestID", id)
	}
	return cloneRequest(req), nil
}

func (r memTransfers) GetForUpdate(ctx context.Context, id kernel.UUID) (*transfer.Request, error) {
	return r.Get(ctx, id)
}

func (r memTransfers) ListOverdue(_ context.Context, now time.Time, limit int) ([]*transfer.Request, error) {
	st, err := r.u.state()
	if err != nil {
		return nil, err
	}
	var out []*transfer.Request
	for _, req := range st.transfers {
		if req.ExpiredAt() == nil && req.State(now) == transfer.StateExpired {
			out = append(out, cloneRequest(req))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt().Before(out[j].ExpiresAt()) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memCounters struct{ u *memUoW }

func (r memCounters) LockValue(_ context.Context, name string) (int64, error) {
	st, err := r.u.state()
	if err != nil {
		return 0, err
	}
	return st.counters[name], nil
}

func (r memCounters) StoreValue(_ context.Context, name string, value int64) error {
	st, err := r.u.state()
	if err != nil {
		return err
	}
	st.counters[name] = value
	return nil
}

type memOutbox struct{ u *memUoW }

func (r memOutbox) Add(_ context.Context, msg *outbox.Message) error {
	st, err := r.u.state()
	if err != nil {
		return err
	}
	st.outbox = append(st.outbox, outboxRow{msg: msg})
	return nil
}

func (r memOutbox) ListPending(_ context.Context, limit int) ([]*outbox.Message, error) {
	st, err := r.u.state()
	if err != nil {
		return nil, err
	}
	rows := make([]outboxRow, 0, len(st.outbox))
	for _, row := range st.outbox {
		if row.sentAt == nil {
			rows = append(rows, row)
		}
	}
	slices.SortStableFunc(rows, func(a, b outboxRow) int {
		return cmp.Or(cmp.Compare(a.retries, b.retries), a.msg.CreatedAt().Compare(b.msg.CreatedAt()))
	})

	var out []*outbox.Message
	for _, row := range rows[:min(limit, len(rows))] {
		msg, restoreErr := outbox.RestoreMessage(row.msg.ID(), row.msg.Topic(), row.msg.Key(),
			row.msg.Payload(), row.msg.CreatedAt(), nil, row.retries)
		if restoreErr != nil {
			return nil, restoreErr
		}
		out = append(out, msg)
	}
	return out, nil
}

func (r memOutbox) MarkSent(_ context.Context, id kernel.UUID, sentAt time.Time) error {
	return r.update(id, func(row *outboxRow) { row.sentAt = &sentAt })
}

func (r memOutbox) IncrementRetries(_ context.Context, id kernel.UUID) error {
	return r.update(id, func(row *outboxRow) { row.retries++ })
}

func (r memOutbox) update(id kernel.UUID, fn func(row *outboxRow)) error {
	st, err := r.u.state()
	if err != nil {
		return err
	}
	for i := range st.outbox {
		if st.outbox[i].msg.ID().IsEqual(id) {
			fn(&st.outbox[i])
			return nil
		}
	}
	return errs.NewObjectNotFoundError("messageID", id)
}

type memInvoices struct{ u *memUoW }

func (r memInvoices) ExistsForOrder(_ context.Context, orderID kernel.UUID) (bool, error) {
	st, err := r.u.state()
	if err != nil {
		return false, err
	}
	return st.invoices[orderID], nil
}

func cloneOrder(o *order.Order) *order.Order {
	c, err := order.RestoreOrder(o.ID(), o.Number(), o.AgentID(), o.CustomerID(), o.Lines(), o.Status(),
		o.CreatedAt(), o.UpdatedAt())
	if err != nil {
		panic(err)
	}
	return c
}

func cloneRequest(r *transfer.Request) *transfer.Request {
	c, err := transfer.RestoreRequest(r.ID(), r.Kind(), r.AgentID(), r.Initiator(), r.Counterparty(), r.Lines(),
		r.Note(), r.CreatedAt(), r.ExpiresAt(), r.CompletedAt(), r.CancelledAt(), r.ExpiredAt())
	if err != nil {
		panic(err)
	}
	return c
}

// testClock is a settable clock shared by handlers under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func mustActor(role kernel.Role) kernel.Actor {
	a, err := kernel.NewActor(kernel.NewUUID(), role)
	if err != nil {
		panic(err)
	}
	return a
}

func mustActorWithID(id kernel.UUID, role kernel.Role) kernel.Actor {
	a, err := kernel.NewActor(id, role)
	if err != nil {
		panic(err)
	}
	return a
}

func mustVan(agentID kernel.UUID) kernel.StockLocation {
	v, err := kernel.Van(agentID)
	if err != nil {
		panic(err)
	}
	return v
}

func mustOrderLine(productID kernel.UUID, qty int64) order.Line {
	l, err := order.NewLine(productID, qty)
	if err != nil {
		panic(err)
	}
	return l
}

func mustTransferLine(productID kernel.UUID, qty int64) transfer.Line {
	l, err := transfer.NewLine(productID, qty)
	if err != nil {
		panic(err)
	}
	return l
}
