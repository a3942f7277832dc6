package main

import (
	"roomly/internal/allocations/events"
	"roomly/internal/allocations/handler"
	"roomly/internal/allocations/repository"
	"roomly/internal/allocations/service"
	"roomly/internal/allocations/validator"
	roomrepo "roomly/internal/rooms/repository"
	"roomly/pkg/app"
	"roomly/pkg/config"
	"roomly/pkg/kafka"
	kafka_config "roomly/pkg/kafka/config"
)

const ServiceName = "allocations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Allocations service")
	allocationService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewAllocationHandler(allocationService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.AllocationService {
	allocationRepo := repository.NewMongoAllocationRepository(cfg)
	lockRepo := repository.NewMongoAllocationLockRepository(cfg)
	roomRepo := roomrepo.NewMongoRoomRepository(cfg)
	allocationValidator := validator.NewAllocationValidator(allocationRepo, cfg)

	allocationService := service.NewAllocationService(
		allocationRepo,
		lockRepo,
		roomRepo,
		allocationValidator,
		initPublisher(cfg),
		cfg,
	)

	cfg.Log.Info("Allocation service initialized", "database", cfg.MongoDatabaseName)
	return allocationService
}

func initPublisher(cfg *config.Config) events.Publisher {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	if !kafkaCfg.Enabled {
		cfg.Log.Info("Kafka publishing disabled")
		return events.NewNopPublisher()
	}

	producer, err := kafka.NewProducer(kafkaCfg, events.TopicAllocations)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "topic", events.TopicAllocations, "error", err)
	}

	cfg.Log.Info("Kafka producer initialized", "topic", events.TopicAllocations, "brokers", kafkaCfg.Brokers)
	return events.NewKafkaPublisher(producer, cfg.Log)
}
