package bootstrap

import (
	"context"
	"log"

	"sheetroom-be/internal/collab"
	"sheetroom-be/internal/config"
	"sheetroom-be/internal/controller"
	"sheetroom-be/internal/handler"
	"sheetroom-be/internal/pkg/logger"
	"sheetroom-be/internal/placement"
	"sheetroom-be/internal/repository/memory"
	"sheetroom-be/internal/repository/unitofwork"
	"sheetroom-be/internal/service"
	"sheetroom-be/internal/syncengine"

	pktNats "sheetroom-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const cellChangeTopic = "cell_changes"

type Container struct {
	// Controllers
	WorkbookController   controller.IWorkbookController
	WorksheetController  controller.IWorksheetController
	CellController       controller.ICellController
	RoomController       controller.IRoomController
	CollabAuthController controller.ICollabAuthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	RoomHandler *handler.RoomHandler
	CollabHub   *collab.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis (optional cross-instance fan-out for the hub)
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// 3. Transfer queue, placement, grants
	transferQueue := memory.NewTransferQueue()
	resolver := placement.NewResolver(cfg.Sync.MaxSearchRows, cfg.Sync.MaxSearchCols)
	grantCache := memory.NewGrantCache(cfg.Collab.TokenLifetime)

	// 4. Room engine factory + hub
	engineFactory := func(roomID string, doc *collab.Document, emit func(data []byte)) collab.Engine {
		return syncengine.New(syncengine.Options{
			RoomID:           roomID,
			Doc:              doc,
			Emit:             emit,
			UowFactory:       uowFactory,
			Queue:            transferQueue,
			Resolver:         resolver,
			FlushInterval:    cfg.Sync.FlushInterval,
			TransferInterval: cfg.Sync.TransferInterval,
			Publisher:        natsPub,
			ChangeBus:        pubSub,
			ChangeTopic:      cellChangeTopic,
			Logger:           sysLogger,
		})
	}

	hubLogger := logger.NewIsolatedLogger(cfg.Collab.HubLogPath)
	hub := collab.NewHub(rdb, engineFactory, cfg.Sync.TeardownTimeout, hubLogger)
	go hub.Run()

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, cellChangeTopic)
	consumerService := service.NewConsumerService(pubSub, cellChangeTopic, uowFactory)

	workbookService := service.NewWorkbookService(uowFactory, natsPub, sysLogger)
	worksheetService := service.NewWorksheetService(uowFactory)
	cellService := service.NewCellService(uowFactory, publisherService, sysLogger)
	transferService := service.NewTransferService(transferQueue, natsPub, sysLogger)
	collabAuthService := service.NewCollabAuthService(cfg.Collab, grantCache, sysLogger)

	// 6. Controllers & Handlers
	return &Container{
		WorkbookController:   controller.NewWorkbookController(workbookService),
		WorksheetController:  controller.NewWorksheetController(worksheetService),
		CellController:       controller.NewCellController(cellService),
		RoomController:       controller.NewRoomController(transferService),
		CollabAuthController: controller.NewCollabAuthController(collabAuthService),
		ConsumerService:      consumerService,
		RoomHandler:          handler.NewRoomHandler(collabAuthService, hub, sysLogger),
		CollabHub:            hub,
	}
}
