package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/app"
	"github.com/RubachokBoss/classroom-gradebook/internal/config"
	"github.com/RubachokBoss/classroom-gradebook/internal/database"
	"github.com/RubachokBoss/classroom-gradebook/internal/seed"
	"github.com/RubachokBoss/classroom-gradebook/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)
	migrateDirection := migrateCmd.String("direction", "up", "direction of migration (up/down/force)")
	migrateVersion := migrateCmd.Int("version", -1, "version for -direction=force")

	// Инициализация логгера
	bootLog := logger.New()

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.NewWithConfig(cfg.Logging.Level, cfg.Logging.Pretty, cfg.Logging.NoColor)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			args := os.Args[2:]
			// "migrate up" and "migrate down" work as well as -direction.
			if len(args) > 0 && (args[0] == "up" || args[0] == "down") {
				*migrateDirection = args[0]
				args = args[1:]
			}
			migrateCmd.Parse(args)
			runMigrations(cfg, log, *migrateDirection, *migrateVersion)
			return
		case "seed":
			runSeed(cfg, log)
			return
		case "serve":
		default:
			log.Fatal().Str("command", os.Args[1]).Msg("Unknown command. Use 'serve', 'migrate' or 'seed'")
		}
	}

	db := connect(cfg, log)
	defer db.Close()

	application, err := app.New(cfg, log, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create application")
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	go func() {
		if err := application.Run(); err != nil {
			log.Fatal().Err(err).Msg("Failed to run application")
		}
	}()

	log.Info().Msgf("Gradebook Service started on %s", cfg.Server.Address)

	<-ctx.Done()
	log.Info().Msg("Shutting down Gradebook Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown gracefully")
	}

	log.Info().Msg("Gradebook Service stopped")
}

func connect(cfg *config.Config, log zerolog.Logger) *sql.DB {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := database.Ping(ctx, db); err != nil {
		db.Close()
		log.Fatal().Err(err).Msg("Failed to ping database")
	}

	log.Info().Msg("Database connection established")
	return db
}

func runMigrations(cfg *config.Config, log zerolog.Logger, direction string, version int) {
	migrator, err := database.NewMigrator(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migrator")
	}

	switch direction {
	case "up":
		if err := migrator.Up(); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		log.Info().Msg("Migrations applied successfully")
	case "down":
		if err := migrator.Down(); err != nil {
			log.Fatal().Err(err).Msg("Failed to rollback migrations")
		}
		log.Info().Msg("Migrations rolled back successfully")
	case "force":
		if version < 0 {
			log.Fatal().Msg("Force requires -version")
		}
		if err := migrator.Force(version); err != nil {
			log.Fatal().Err(err).Msg("Failed to force migration version")
		}
		log.Info().Int("version", version).Msg("Migration version forced")
	default:
		log.Fatal().Msg("Invalid migration direction. Use 'up', 'down' or 'force'")
	}
}

func runSeed(cfg *config.Config, log zerolog.Logger) {
	db := connect(cfg, log)
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seeder := seed.New(seed.NewServices(db, cfg, log), log)
	if err := seeder.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed demo data")
	}
}
