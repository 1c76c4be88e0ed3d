package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"os"
	"time"

	"tourdesk-service/internal/infrastructure/config"
	"tourdesk-service/internal/infrastructure/persistence"
	mongoRepo "tourdesk-service/internal/interface/repository"
	"tourdesk-service/internal/usecase"
	"tourdesk-service/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	domainRepo "tourdesk-service/internal/domain/repository"
)

// CSV framing lives here, outside the core: the pipeline consumes rows that
// are already parsed.
func readRows(path string) ([]usecase.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	var rows []usecase.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := usecase.Row{}
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func main() {
	var (
		file       = flag.String("file", "", "CSV file to import")
		entityName = flag.String("entity", "bookings", "entity to import: bookings or agents")
		owner      = flag.String("owner", "", "owning operator id (required for bookings)")
	)
	flag.Parse()

	log := logger.NewLogger()
	if *file == "" {
		log.Fatal("Missing -file")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer mongoClient.Disconnect(ctx)
	db := persistence.GetDatabase(mongoClient, cfg.MongoDB)

	var countryRepository domainRepo.CountryRepository
	if cfg.PostgresURI != "" {
		gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		countryRepository = mongoRepo.NewGormCountryRepository(gormDB)
	}

	operatorRepo := mongoRepo.NewMongoOperatorRepository(db)
	agentRepo := mongoRepo.NewMongoAgentRepository(db)
	bookingRepo := mongoRepo.NewMongoBookingRepository(db)

	resolver := usecase.NewResolver(operatorRepo, agentRepo, nil, nil, log)
	transfer := usecase.NewTransfer(bookingRepo, agentRepo, countryRepository, resolver, nil, log)

	rows, err := readRows(*file)
	if err != nil {
		log.Fatal("Failed to read CSV", "file", *file, "error", err)
	}

	switch *entityName {
	case "bookings":
		if *owner == "" {
			log.Fatal("Missing -owner for booking import")
		}
		res, err := transfer.ImportBookings(ctx, *owner, rows)
		if err != nil {
			log.Fatal("Import failed", "error", err)
		}
		for _, failure := range res.Failed {
			log.Warn("Row failed", "row", failure.Row, "reason", failure.Reason)
		}
		log.Info("Import done", "batchId", res.BatchID,
			"succeeded", len(res.Succeeded), "failed", len(res.Failed))
	case "agents":
		res, err := transfer.ImportAgents(ctx, *owner, rows)
		if err != nil {
			log.Fatal("Import failed", "error", err)
		}
		for _, failure := range res.Failed {
			log.Warn("Row failed", "row", failure.Row, "reason", failure.Reason)
		}
		log.Info("Import done", "batchId", res.BatchID,
			"succeeded", len(res.Succeeded), "failed", len(res.Failed))
	default:
		log.Fatal("Unknown entity", "entity", *entityName)
	}
}
