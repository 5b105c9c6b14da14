package services_test

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"

	"github.com/stretchr/testify/mock"
)

type txFlag bool

func (f txFlag) InTransaction() bool { return bool(f) }

type levelKey struct {
	location  string
	productID kernel.UUID
}

// memStock keeps levels and movements in maps and records the order in which
// rows were locked.
type memStock struct {
	levels    map[levelKey]int64
	movements []*stock.Movement
	locks     []string
}

func newMemStock() *memStock {
	return &memStock{levels: map[levelKey]int64{}}
}

func (m *memStock) seed(location kernel.StockLocation, productID kernel.UUID, qty int64) {
	m.levels[levelKey{location.String(), productID}] = qty
}

func (m *memStock) quantity(location kernel.StockLocation, productID kernel.UUID) int64 {
	return m.levels[levelKey{location.String(), productID}]
}

func (m *memStock) sumMovements(location kernel.StockLocation, productID kernel.UUID) int64 {
	var sum int64
	for _, mv := range m.movements {
		if mv.Location().IsEqual(location) && mv.ProductID().IsEqual(productID) {
			sum += mv.Delta()
		}
	}
	return sum
}

func (m *memStock) Get(_ context.Context, location kernel.StockLocation, productID kernel.UUID) (*stock.Level, error) {
	return stock.RestoreLevel(location, productID, m.levels[levelKey{location.String(), productID}], time.Time{})
}

func (m *memStock) GetForUpdate(
	_ context.Context,
	location kernel.StockLocation,
	productID kernel.UUID,
) (*stock.Level, error) {
	key := levelKey{location.String(), productID}
	m.locks = append(m.locks, key.location)
	if _, ok := m.levels[key]; !ok {
		m.levels[key] = 0
	}
	return stock.RestoreLevel(location, productID, m.levels[key], time.Time{})
}

func (m *memStock) Save(_ context.Context, level *stock.Level) error {
	m.levels[levelKey{level.Location().String(), level.ProductID()}] = level.Quantity()
	return nil
}

func (m *memStock) Append(_ context.Context, movement *stock.Movement) error {
	m.movements = append(m.movements, movement)
	return nil
}

type MockCounterRepository struct{ mock.Mock }

func (m *MockCounterRepository) LockValue(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCounterRepository) StoreValue(ctx context.Context, name string, value int64) error {
	args := m.Called(ctx, name, value)
	return args.Error(0)
}
