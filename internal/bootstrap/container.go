package bootstrap

import (
	"context"
	"log"

	"quantcloud-be/internal/config"
	"quantcloud-be/internal/controller"
	"quantcloud-be/internal/pkg/logger"
	"quantcloud-be/internal/repository/unitofwork"
	"quantcloud-be/internal/service"
	pkgNats "quantcloud-be/pkg/nats"
	"quantcloud-be/pkg/quantizer"
	"quantcloud-be/pkg/storage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// reportTopic carries completed-job quality metrics from the worker to
// the report consumer over the in-process bus.
const reportTopic = "job_completed_reports"

type Container struct {
	// Controllers
	JobController      controller.IJobController
	FileController     controller.IFileController
	BillingController  controller.IBillingController
	DownloadController controller.IDownloadController

	// Background Services (Exposed for main.go to run)
	WorkerService         service.IWorkerService
	ReaperService         service.IReaperService
	ReportConsumerService service.IReportConsumerService
	EventAuditService     service.IEventAuditService
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
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// Object storage
	s3Client, err := storage.NewS3Client(storage.S3Config{
		Bucket:    cfg.Storage.Bucket,
		Prefix:    cfg.Storage.Prefix,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	}, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize object storage: %v", err)
	}

	// Quantization pipeline
	quant := quantizer.NewPipelineQuantizer(cfg.Worker.StageDelay, sysLogger)

	// 3. Services
	publisherService := service.NewPublisherService(reportTopic, pubSub)
	reportConsumerService := service.NewReportConsumerService(pubSub, reportTopic, uowFactory)

	jobService := service.NewJobService(uowFactory, natsPub)
	fileService := service.NewFileService(uowFactory, s3Client, cfg.Token.SignedURLExpiry)
	tokenService := service.NewTokenService(uowFactory, s3Client, cfg.Token.DefaultTTL, cfg.Token.SignedURLExpiry)
	ledgerService := service.NewLedgerService(uowFactory)

	workerService := service.NewWorkerService(
		uowFactory,
		quant,
		s3Client,
		natsPub,
		publisherService,
		sysLogger,
		cfg.Worker,
	)
	var eventAuditService service.IEventAuditService
	if natsSub != nil {
		eventAuditService = service.NewEventAuditService(natsSub, sysLogger)
	}

	reaperService := service.NewReaperService(
		uowFactory,
		s3Client,
		rdb,
		natsPub,
		sysLogger,
		cfg.Reaper,
	)

	// 4. Controllers
	return &Container{
		JobController:      controller.NewJobController(jobService),
		FileController:     controller.NewFileController(fileService, tokenService),
		BillingController:  controller.NewBillingController(ledgerService),
		DownloadController: controller.NewDownloadController(tokenService),

		WorkerService:         workerService,
		ReaperService:         reaperService,
		ReportConsumerService: reportConsumerService,
		EventAuditService:     eventAuditService,
	}
}
