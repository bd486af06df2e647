package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-scheduler-api/internal/repository"
	"github.com/noah-isme/timetable-scheduler-api/internal/service"
	"github.com/noah-isme/timetable-scheduler-api/pkg/config"
	"github.com/noah-isme/timetable-scheduler-api/pkg/database"
	"github.com/noah-isme/timetable-scheduler-api/pkg/logger"
)

func main() {
	var seed bool
	var timeout time.Duration
	flag.BoolVar(&seed, "seed", false, "upsert the standard Monday-Friday time slot grid after migrating")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [-seed] [-timeout d] up|down|version\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(command, seed, timeout, cfg, logr); err != nil {
		logr.Error("migrate failed", zap.String("command", command), zap.Error(err))
		os.Exit(1)
	}
}

func run(command string, seed bool, timeout time.Duration, cfg *config.Config, logr *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db.DB, cfg.Database.MigrationTable, logr)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		if err := migrator.Up(ctx); err != nil {
			return err
		}
	case "down":
		if err := migrator.Down(ctx); err != nil {
			return err
		}
	case "version":
		version, err := migrator.Version(ctx)
		if err != nil {
			return err
		}
		logr.Info("schema version", zap.Int64("version", version))
		return nil
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}

	if !seed || command != "up" {
		return nil
	}
	catalogue := service.NewCatalogueService(
		repository.NewTimeSlotRepository(db),
		repository.NewRoomRepository(db),
		repository.NewLabRepository(db),
		repository.NewTeacherRepository(db),
		repository.NewSectionRepository(db),
		db, nil, logr,
	)
	count, err := catalogue.SeedStandardWeek(ctx)
	if err != nil {
		return fmt.Errorf("seed time slots: %w", err)
	}
	logr.Info("standard week seeded", zap.Int("slots", count))
	return nil
}
