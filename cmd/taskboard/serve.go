package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/taskstack/taskboard/internal/api"
	"github.com/taskstack/taskboard/internal/config"
	"github.com/taskstack/taskboard/internal/db"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file overriding the environment")
}

func runServe() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Info().Str("driver", cfg.Database.Driver).Str("address", cfg.Address).Msg("configuration loaded")

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case config.DriverLibsql:
		dialector = sqlite.New(sqlite.Config{
			DriverName: "libsql",
			DSN:        cfg.DSN(),
		})
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	gormDB, err := gorm.Open(dialector)
	if err != nil {
		return err
	}
	logger.Info().Msg("database connection established")

	store := db.NewDB(gormDB)
	if err := store.Migrate(); err != nil {
		return err
	}
	logger.Info().Msg("database migrations completed")

	if err := store.EnsureDefaults(); err != nil {
		return err
	}
	logger.Info().Msg("default user and category verified")

	server := api.NewAPI(cfg.Address, mux.NewRouter(), store, logger, cfg.UploadDir)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
		logger.Info().Msg("received shutdown signal, stopping")
		return nil
	}
}
