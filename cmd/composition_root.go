package cmd

import (
	"time"

	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/settingsrepo"
	"fulfillment/internal/adapters/out/redis"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/transfer"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"
	"fulfillment/internal/pkg/logger"
	"fulfillment/internal/pkg/metrics"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	settings   *redis.SettingsCache
	publisher  ports.EventPublisher
	metrics    *metrics.Recorder
	log        *logger.Logger
	now        func() time.Time
}

func NewCompositionRoot(
	cfg Config,
	gormDB *gorm.DB,
	redisClient *goredis.Client,
	publisher ports.EventPublisher,
	recorder *metrics.Recorder,
	log *logger.Logger,
) CompositionRoot {
	return CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		settings: redis.NewSettingsCache(
			redisClient,
			settingsrepo.NewGormSettingsRepository(gormDB),
			cfg.SettingsCacheTTL,
			log.Component("settings"),
		),
		publisher: publisher,
		metrics:   recorder,
		log:       log,
		now:       time.Now,
	}
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() *commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.cfg.OrderNumberPrefix, c.now, c.log.Component("orders"), c.metrics)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() *commands.TransitionOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewTransitionOrderCommandHandler(
		f, order.DefaultTransitionTable(), c.now, c.log.Component("orders"), c.metrics)
}

func (c *CompositionRoot) CreateTransferCoordinator() *commands.TransferCoordinator {
	var f commands.TransferUoWFactory = FuncTransferUoWFactory(func() commands.TransferUoW {
		return c.uowFactory.Create()
	})
	return commands.NewTransferCoordinator(f, c.transferWorkflows(), c.now, c.log.Component("transfers"), c.metrics)
}

// transferWorkflows applies the configured lifetimes to the default workflows.
func (c *CompositionRoot) transferWorkflows() map[transfer.Kind]commands.TransferWorkflow {
	workflows := commands.DefaultTransferWorkflows()
	for kind, ttl := range map[transfer.Kind]time.Duration{
		transfer.KindLoad:       c.cfg.LoadTransferTTL,
		transfer.KindReturn:     c.cfg.ReturnTransferTTL,
		transfer.KindAdjustment: c.cfg.AdjustmentTransferTTL,
	} {
		w := workflows[kind]
		w.TTL = ttl
		workflows[kind] = w
	}
	return workflows
}

func (c *CompositionRoot) CreateReceiveStockCommandHandler() *commands.ReceiveStockCommandHandler {
	var f commands.LedgerUoWFactory = FuncLedgerUoWFactory(func() commands.LedgerUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReceiveStockCommandHandler(f, c.now, c.log.Component("stock"), c.metrics)
}

func (c *CompositionRoot) CreateDrainOutboxCommandHandler() *commands.DrainOutboxCommandHandler {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	return commands.NewDrainOutboxCommandHandler(f, c.publisher, c.now, c.log.Component("outbox"), c.metrics)
}

func (c *CompositionRoot) CreateUpdateSettingCommandHandler() *commands.UpdateSettingCommandHandler {
	return commands.NewUpdateSettingCommandHandler(c.settings, c.now, c.log.Component("settings"))
}

func (c *CompositionRoot) CreateGetStockLevelsQueryHandler() queries.GetStockLevelsQueryHandler {
	defaults := queries.VisibilityConfig{
		HideZeroQuantities: c.cfg.HideZeroQuantities,
		ProductIDs:         c.cfg.VisibleProductIDs,
	}
	return queries.NewGetStockLevelsQueryHandler(c.gormDB, queries.NewSettingsVisibility(c.settings, defaults))
}

func (c *CompositionRoot) CreateGetStockMovementsQueryHandler() queries.GetStockMovementsQueryHandler {
	return queries.NewGetStockMovementsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetReconciliationQueryHandler() queries.GetReconciliationQueryHandler {
	return queries.NewGetReconciliationQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderHistoryQueryHandler() queries.GetOrderHistoryQueryHandler {
	return queries.NewGetOrderHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetPendingTransfersQueryHandler() queries.GetPendingTransfersQueryHandler {
	return queries.NewGetPendingTransfersQueryHandler(c.gormDB, c.now)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		jobs.Schedules{
			OutboxRelay:    c.cfg.OutboxRelaySchedule,
			TransferExpiry: c.cfg.TransferExpirySchedule,
		},
		c.CreateDrainOutboxCommandHandler(),
		c.CreateTransferCoordinator(),
		c.log.Component("jobs"),
	)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		CreateOrder:      c.CreateCreateOrderCommandHandler(),
		TransitionOrder:  c.CreateTransitionOrderCommandHandler(),
		Transfers:        c.CreateTransferCoordinator(),
		ReceiveStock:     c.CreateReceiveStockCommandHandler(),
		UpdateSetting:    c.CreateUpdateSettingCommandHandler(),
		StockLevels:      c.CreateGetStockLevelsQueryHandler(),
		Movements:        c.CreateGetStockMovementsQueryHandler(),
		Reconciliation:   c.CreateGetReconciliationQueryHandler(),
		OrderHistory:     c.CreateGetOrderHistoryQueryHandler(),
		PendingTransfers: c.CreateGetPendingTransfersQueryHandler(),
	})
}

type FuncLedgerUoWFactory func() commands.LedgerUoW

func (f FuncLedgerUoWFactory) Create() commands.LedgerUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncTransferUoWFactory func() commands.TransferUoW

func (f FuncTransferUoWFactory) Create() commands.TransferUoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}
