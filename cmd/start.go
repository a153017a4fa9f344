package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mulligan/core/loader"
	"mulligan/core/logger"
	"mulligan/core/middleware/auth"
	"mulligan/core/middleware/rayid"
	"mulligan/core/progress"
	"mulligan/feature/catalog"
	"mulligan/feature/catalog/filter"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the catalog HTTP server",
	Long: `Starts the HTTP server exposing the catalog and sync endpoints.
The allow-list file, when configured, is reloaded whenever it changes.`,
	RunE: runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	e, err := bootstrap(nil)
	if err != nil {
		return err
	}
	defer e.close()
	logg := e.logger
	zap.ReplaceGlobals(logg)

	// ctx is cancelled on shutdown; background syncs and the watcher stop with it.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if path := e.cfg.Sync.AllowlistPath; path != "" {
		w, err := filter.NewWatcher(path, e.allowlist, logg)
		if err != nil {
			logg.Warn("Allow-list hot reload disabled", zap.String("path", path), zap.Error(err))
		} else {
			go w.Run(ctx)
		}
	}

	status := &progress.Status{}
	p, err := catalog.BuildPipeline(ctx, catalog.Deps{
		Sync:      e.cfg.Sync,
		Storage:   e.cfg.Storage,
		Store:     e.store,
		Allowlist: e.allowlist,
		Logger:    logg,
		Sinks:     append([]progress.Sink{status}, e.sinks...),
	})
	if err != nil {
		return err
	}
	svc := catalog.NewService(ctx, e.store, p, status, e.cfg.Sync, logg)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	mgr := loader.NewManager()
	mgr.Register(catalog.NewFeature(svc))

	// RayID first so every log line below carries it.
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
	app.Use(auth.New(auth.Config{ApiKey: e.cfg.Server.ApiKey}))
	if !e.cfg.Server.AuthEnabled() {
		logg.Warn("API key not configured, requests are not authenticated")
	}

	if err := mgr.LoadAll(app); err != nil {
		return err
	}

	listenErr := make(chan error, 1)
	go func() {
		logg.Info("Starting server", zap.String("port", e.cfg.Server.Port), zap.Strings("features", mgr.Loaded()))
		listenErr <- app.Listen(":" + e.cfg.Server.Port)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case err := <-listenErr:
		return err
	case <-sig:
	}

	logg.Info("Shutting down server...")
	cancel()
	if err := app.ShutdownWithTimeout(e.cfg.Server.ShutdownTimeout()); err != nil {
		logg.Warn("Server shutdown incomplete", zap.Error(err))
	}
	svc.Wait()
	return nil
}
