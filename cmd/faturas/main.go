package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"faturas/internal/config"
	"faturas/internal/csvexport"
	"faturas/internal/dbsync"
	"faturas/internal/logging"
	"faturas/internal/pdftext"
	"faturas/internal/repository/sqlite"
	"faturas/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: faturas <invoice dir>")
	}
	dir := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(&cfg.Log)

	db, err := sqlite.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	clientRepo := sqlite.NewClientRepo(db)
	consumptionRepo := sqlite.NewConsumptionRepo(db)

	pipeline := service.NewPipeline(
		pdftext.NewReader(cfg.Pipeline.MaxFileSize),
		dbsync.NewSyncer(clientRepo, consumptionRepo, logger),
		consumptionRepo,
		csvexport.NewExporter(cfg.Export.Dir),
		cfg.Export.ReportPath,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := pipeline.Run(ctx, dir)
	if err != nil {
		return err
	}
	fmt.Printf("processed %d files, %d new clients\n", len(result.Files), result.Summary.NewClients)
	return nil
}
