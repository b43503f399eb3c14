package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"weread-sync/core/config"
	"weread-sync/core/database"
	"weread-sync/core/loader"
	"weread-sync/core/logger"
	"weread-sync/core/middleware/auth"
	"weread-sync/core/middleware/rayid"
	"weread-sync/core/storage"
	"weread-sync/feature/integrity"
	"weread-sync/feature/pipeline"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sync trigger server",
	Long:  `Starts the HTTP server exposing the sync trigger and status endpoints.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		runner, err := pipeline.Build(cfg, logg)
		if err != nil {
			logg.Fatal("Failed to build sync runner", zap.Error(err))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// Integrity checks run only against the stores that are configured
		var store storage.Client
		if cfg.Sync.MirrorCovers {
			if store, err = storage.NewClient(cfg.Storage); err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
		}
		var db *gorm.DB
		if cfg.Target.Driver == "local" {
			if db, err = database.Connect(cfg.Database); err != nil {
				logg.Fatal("Failed to connect to database", zap.Error(err))
			}
		}

		mgr := loader.NewManager()
		mgr.Register(pipeline.NewFeature(runner, logg))
		mgr.Register(integrity.NewFeature(store, cfg.Storage.Bucket, db, runner.Catalog, logg))

		// RayID first so every log line below carries it
		app.Use(rayid.New())
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("addr", cfg.Server.Addr()))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
