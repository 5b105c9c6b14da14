package stockrepo_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/pgtest"
	"fulfillment/internal/adapters/out/postgres/stockrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type StockRepositoryIntegrationTestSuite struct {
	suite.Suite
	pg        *pgtest.Database
	levels    *stockrepo.GormStockRepository
	movements *stockrepo.GormMovementRepository
}

func (suite *StockRepositoryIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background(), func(db *gorm.DB) error {
		return db.AutoMigrate(&stockrepo.LevelDTO{}, &stockrepo.MovementDTO{})
	})
	suite.Require().NoError(err)
	suite.pg = pg
}

func (suite *StockRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate("stock_levels", "stock_movements"))
	suite.levels = stockrepo.NewGormStockRepository(suite.pg.DB)
	suite.movements = stockrepo.NewGormMovementRepository(suite.pg.DB)
}

func (suite *StockRepositoryIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.pg.Terminate(context.Background()))
}

func (suite *StockRepositoryIntegrationTestSuite) TestGet_MissingRowReadsAsZero() {
	level, err := suite.levels.Get(context.Background(), kernel.Warehouse(), kernel.NewUUID())

	suite.Require().NoError(err)
	suite.Equal(int64(0), level.Quantity())
	suite.assertLevelRows(0)
}

func (suite *StockRepositoryIntegrationTestSuite) TestGetForUpdate_CreatesRowOnce() {
	ctx := context.Background()
	productID := kernel.NewUUID()

	first, err := suite.levels.GetForUpdate(ctx, kernel.Warehouse(), productID)
	suite.Require().NoError(err)
	second, err := suite.levels.GetForUpdate(ctx, kernel.Warehouse(), productID)
	suite.Require().NoError(err)

	suite.Equal(int64(0), first.Quantity())
	suite.Equal(int64(0), second.Quantity())
	suite.assertLevelRows(1)
}

func (suite *StockRepositoryIntegrationTestSuite) TestSave_PersistsQuantityPerLocation() {
	ctx := context.Background()
	productID := kernel.NewUUID()
	van, err := kernel.Van(kernel.NewUUID())
	suite.Require().NoError(err)

	for location, qty := range map[kernel.StockLocation]int64{kernel.Warehouse(): 7, van: 3} {
		level, lockErr := suite.levels.GetForUpdate(ctx, location, productID)
		suite.Require().NoError(lockErr)
		suite.Require().NoError(level.Apply(qty, time.Now()))
		suite.Require().NoError(suite.levels.Save(ctx, level))
	}

	warehouse, err := suite.levels.Get(ctx, kernel.Warehouse(), productID)
	suite.Require().NoError(err)
	suite.Equal(int64(7), warehouse.Quantity())

	vanLevel, err := suite.levels.Get(ctx, van, productID)
	suite.Require().NoError(err)
	suite.Equal(int64(3), vanLevel.Quantity())
	suite.True(vanLevel.Location().IsEqual(van))
}

func (suite *StockRepositoryIntegrationTestSuite) TestSave_UnknownRow() {
	level, err := stock.NewLevel(kernel.Warehouse(), kernel.NewUUID())
	suite.Require().NoError(err)

	err = suite.levels.Save(context.Background(), level)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *StockRepositoryIntegrationTestSuite) TestAppend_StoresMovement() {
	ctx := context.Background()
	van, err := kernel.Van(kernel.NewUUID())
	suite.Require().NoError(err)
	actorID := kernel.NewUUID()
	movement, err := stock.NewMovement(van, kernel.NewUUID(), -2, stock.ReasonReturn, "req-1", actorID, time.Now())
	suite.Require().NoError(err)

	suite.Require().NoError(suite.movements.Append(ctx, movement))

	var dto stockrepo.MovementDTO
	suite.Require().NoError(suite.pg.DB.First(&dto, "id = ?", movement.ID().Bytes()).Error)
	suite.Equal("van", dto.Location.Kind)
	suite.Equal(van.AgentID().Bytes(), dto.Location.AgentID)
	suite.Equal(int64(-2), dto.Delta)
	suite.Equal("return", dto.Reason)
	suite.Equal("req-1", dto.CorrelationRef)
	suite.Equal(actorID.Bytes(), dto.ActorID)
}

func (suite *StockRepositoryIntegrationTestSuite) TestLocationToDomain() {
	location, err := stockrepo.LocationToDomain("warehouse", uuid.Nil)
	suite.Require().NoError(err)
	suite.True(location.IsWarehouse())

	_, err = stockrepo.LocationToDomain("van", uuid.Nil)
	suite.Require().Error(err, "a van needs an agent")

	_, err = stockrepo.LocationToDomain("truck", kernel.NewUUID().Bytes())
	suite.Require().ErrorIs(err, errs.ErrValueIsInvalid)
}

func (suite *StockRepositoryIntegrationTestSuite) assertLevelRows(expected int64) {
	var count int64
	suite.Require().NoError(suite.pg.DB.Model(&stockrepo.LevelDTO{}).Count(&count).Error)
	suite.Equal(expected, count)
}

func TestStockRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(StockRepositoryIntegrationTestSuite))
}
