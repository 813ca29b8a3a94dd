package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/mxvision/iothub-ota-service/internal/config"
	"github.com/mxvision/iothub-ota-service/internal/delivery/httpapi"
	"github.com/mxvision/iothub-ota-service/internal/delivery/mqttapi"
	"github.com/mxvision/iothub-ota-service/internal/domain"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/kafka"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/logger"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/metrics"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/migrate"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/mqtt"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/postgres"
	"github.com/mxvision/iothub-ota-service/internal/infrastructure/postgres/repository"
	"github.com/mxvision/iothub-ota-service/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	// Init database
	db := postgres.MustInitDB(cfg)

	if cfg.OTADB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.OTADB.MigrationsPath); err != nil {
			log.Fatalf("failed to apply migrations: %v", err)
		}
	}

	// Init metrics
	otaMetrics := metrics.NewOTAMetrics()

	// Init repositories
	deviceRepo := repository.NewDefaultDeviceRepository(db)
	productRepo := repository.NewDefaultProductRepository(db)
	packageRepo := repository.NewDefaultPackageRepository(db)
	otaRepo := repository.NewDefaultOTARepository(db)

	// Init kafka lifecycle event publisher
	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	eventPublisher := kafka.NewDefaultKafkaPublisher(brokers, cfg.KafkaService.Topic)

	// Init transition audit log
	eventLog := logger.NewPGOTAEventLogger(db)

	// Init mqtt gateway
	gateway := mqtt.NewGateway(cfg.MQTTBroker, otaMetrics)
	if err := gateway.Connect(); err != nil {
		log.Fatalf("failed to connect mqtt broker: %v", err)
	}

	offlineTimeout := time.Duration(cfg.OTAService.LivenessInterval) * time.Second

	// Init device usecase
	deviceUsecase := usecase.NewDefaultDeviceUsecase(deviceRepo, productRepo, gateway, otaMetrics, offlineTimeout)
	// Init package usecase
	packageUsecase := usecase.NewDefaultPackageUsecase(packageRepo, productRepo)
	// Init ota usecase
	otaUsecase := usecase.NewDefaultOTAUsecase(
		otaRepo,
		deviceRepo,
		packageRepo,
		gateway,
		eventPublisher,
		eventLog,
		otaMetrics,
		cfg.OTAService.DownloadBaseURL,
		cfg.MQTTBroker.DownstreamQoS,
	)

	// Initial subscription of every known device's upstream topic
	devices, err := deviceRepo.ListDevices()
	if err != nil {
		log.Fatalf("failed to list devices for initial subscription: %v", err)
	}
	topics := make([]string, len(devices))
	for i, device := range devices {
		topics[i] = domain.DeviceUpstreamTopic(device.DeviceID)
	}
	if len(topics) > 0 {
		if err := gateway.Subscribe(topics...); err != nil {
			slog.Error("initial subscribe failed", "error", err.Error())
		}
	}

	// Inbound message dispatch loop
	dispatcher := mqttapi.NewDispatcher(gateway, deviceUsecase, otaUsecase, otaMetrics)
	go dispatcher.Run(context.Background())

	// Offline device sweep
	go func() {
		ticker := time.NewTicker(offlineTimeout)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := deviceUsecase.CheckOfflineDevices(); err != nil {
					log.Printf("Offline sweep error: %v", err)
				}
			}
		}
	}()

	router := httpapi.NewRouter(deviceUsecase, packageUsecase, otaUsecase)

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	log.Printf("HTTP server started on %s\n", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("failed to serve: %v\n", err)
	}
}
