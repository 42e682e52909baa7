package bootstrap

import (
	"log"
	"time"

	"github.com/Wollie333/vilo-sub013/internal/config"
	"github.com/Wollie333/vilo-sub013/internal/controller"
	refundEvents "github.com/Wollie333/vilo-sub013/internal/events"
	"github.com/Wollie333/vilo-sub013/internal/pkg/logger"
	"github.com/Wollie333/vilo-sub013/internal/repository/implementation"
	"github.com/Wollie333/vilo-sub013/internal/repository/memory"
	"github.com/Wollie333/vilo-sub013/internal/repository/unitofwork"
	"github.com/Wollie333/vilo-sub013/internal/service"
	"github.com/Wollie333/vilo-sub013/pkg/gateway"
	pkgNats "github.com/Wollie333/vilo-sub013/pkg/nats"

	"gorm.io/gorm"
)

type Container struct {
	RefundController controller.IRefundController

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Infrastructure
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	var eventPublisher refundEvents.Publisher
	if natsPub != nil {
		eventPublisher = refundEvents.NewNatsPublisher(natsPub, sysLogger)
	} else {
		eventPublisher = refundEvents.NoopPublisher{}
	}

	gatewayClient := gateway.NewHTTPClient(cfg.Gateway.BaseURL, cfg.Gateway.Timeout)

	// Tenant configuration barely changes; reads go through a TTL cache.
	tenantConfigs := memory.NewTenantConfigCache(
		implementation.NewTenantConfigRepository(db),
		5*time.Minute,
	)

	// 3. Services
	refundService := service.NewRefundService(
		uowFactory,
		tenantConfigs,
		gatewayClient,
		eventPublisher,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		RefundController: controller.NewRefundController(refundService, cfg.Auth.JWTSecret),
		Logger:           sysLogger,
	}
}
