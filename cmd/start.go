package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"system-mirror/core/config"
	"system-mirror/core/database"
	"system-mirror/core/loader"
	"system-mirror/core/logger"
	"system-mirror/core/middleware/auth"
	"system-mirror/core/middleware/requestid"
	"system-mirror/core/provider"
	"system-mirror/core/storage"

	"system-mirror/feature/export"
	"system-mirror/feature/journal"
	"system-mirror/feature/network"
	"system-mirror/feature/process"
	"system-mirror/feature/status"
	"system-mirror/feature/thread"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "system-mirror/docs/swagger"
)

// @title System Mirror API
// @version 1.0
// @description Read-only API over the mirrored processes, threads and network connections of a host.
// @host localhost:8080
// @BasePath /

// shutdownTimeout bounds how long in-flight enrichment may delay exit.
const shutdownTimeout = 10 * time.Second

// snapshot is the document written by the exporter.
type snapshot struct {
	Cycle       uint64           `json:"cycle"`
	Time        time.Time        `json:"time"`
	Maximums    process.Maximums `json:"maximums"`
	Processes   []process.Entry  `json:"processes"`
	Connections []network.Entry  `json:"connections"`
	Stats       []provider.Stats `json:"stats"`
}

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start mirroring this machine",
	Long:  `Starts the providers, the optional journal and snapshot export, and the HTTP query API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// 3. Build Providers
		svc := newServices(cfg, logg)
		mgr := loader.NewManager(logg)
		mgr.Register(status.NewFeature(svc.monitor))
		mgr.Register(process.NewFeature(svc.processes, cfg.Process.Enabled))
		mgr.Register(network.NewFeature(svc.network, cfg.Network.Enabled))
		mgr.Register(thread.NewFeature(svc.threads, cfg.Thread.Enabled))

		// 4. Journal (Optional)
		var jrn *journal.Journal
		if cfg.Database.Enabled {
			if db, err := database.Connect(cfg.Database); err != nil {
				logg.Warn("Optional database connection failed, journal disabled", zap.Error(err))
			} else if jrn, err = journal.New(db, logg); err != nil {
				logg.Warn("Journal unavailable", zap.Error(err))
				jrn = nil
			} else {
				go journal.Follow(ctx, jrn, "process", svc.processes.Provider().Changes(ctx), journal.DescribeProcess)
				go journal.Follow(ctx, jrn, "network", svc.network.Provider().Changes(ctx), journal.DescribeConnection)
			}
		}
		mgr.Register(journal.NewFeature(jrn))

		// 5. Snapshot Export (Optional)
		if cfg.Storage.Enabled {
			if err := startExport(ctx, cfg, svc, logg); err != nil {
				logg.Warn("Snapshot export disabled", zap.Error(err))
			}
		}

		// 6. Run Providers
		go func() {
			if err := svc.monitor.Run(ctx); err != nil {
				logg.Error("Monitor failed", zap.Error(err))
			}
		}()

		// 7. Start Server (Optional)
		var app *fiber.App
		if cfg.Server.Enabled {
			addr, err := cfg.Server.Address()
			if err != nil {
				return err
			}
			app = newApp(cfg, logg)
			if err := mgr.LoadAll(app); err != nil {
				return err
			}
			go func() {
				logg.Info("Starting server", zap.String("address", addr))
				if err := app.Listen(addr); err != nil {
					logg.Error("Server stopped", zap.Error(err))
				}
			}()
		}

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down...")

		cancel()
		if app != nil {
			_ = app.Shutdown()
		}
		stopCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		return svc.close(stopCtx)
	},
}

func newApp(cfg *config.Config, logg *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true, // We log our own startup message
	})

	// 1. Request ID (Must be first to trace everything)
	app.Use(requestid.New())

	// 2. Logging Middleware (Zap + request id)
	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRequestID(logg, c)
		l.Debug("Request started",
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

	// 3. Swagger Documentation (Public)
	app.Get("/swagger/*", swagger.HandlerDefault)

	// 4. Auth (Protect API)
	if cfg.Server.ApiKey != "" {
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))
	}

	return app
}

func startExport(ctx context.Context, cfg *config.Config, svc *services, logg *zap.Logger) error {
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return err
	}
	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		return err
	}

	host, _ := os.Hostname()
	exp := export.New(client, cfg.Storage, host, func(cycle uint64) any {
		return snapshot{
			Cycle:       cycle,
			Time:        time.Now(),
			Maximums:    svc.processes.Maximums(),
			Processes:   svc.processes.List(process.SortPID, 0),
			Connections: svc.network.List(network.Filter{}),
			Stats:       svc.monitor.Stats(),
		}
	}, logg)

	svc.processes.Provider().Listen(func(ev provider.Event[int32, process.Process]) {
		if ev.Kind == provider.Updated {
			exp.Notify(ev.Cycle)
		}
	})
	go func() { _ = exp.Run(ctx) }()
	return nil
}

func init() {
	RootCmd.AddCommand(startCmd)
}
