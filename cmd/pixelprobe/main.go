package main

import (
	"flag"
	"log"
	"runtime"

	"pixelprobe/internal/config"
	"pixelprobe/internal/logger"
	"pixelprobe/internal/pipeline"
	"pixelprobe/internal/server"
	"pixelprobe/internal/shutdown"
	"pixelprobe/internal/worker"
)

const (
	AppName    = "pixelprobe"
	AppVersion = "1.0.0"
)

func main() {
	configPath := flag.String("config", "", "path to config YAML (optional; defaults apply without it)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("configuration failed: %v", err)
		}
		cfg = loaded
	}

	appLogger := logger.NewConsoleLogger(logger.ParseLevel(cfg.Log.Level))
	appLogger.Info("Main", "starting worker", map[string]interface{}{
		"app":          AppName,
		"version":      AppVersion,
		"go_version":   runtime.Version(),
		"http_port":    cfg.Server.HTTPPort,
		"default_bins": cfg.Worker.DefaultBins,
		"max_samples":  cfg.Worker.MaxSamples,
	})

	dispatcher := worker.NewDispatcher(appLogger, cfg.Worker.DefaultBins, cfg.Worker.MaxSamples)
	loader := pipeline.NewLoader(appLogger)
	srv := server.New(appLogger, dispatcher, loader, cfg.Server.HTTPPort, cfg.Server.ShutdownTimeout)

	manager := shutdown.NewManager(appLogger, cfg.Server.ShutdownTimeout)
	manager.Register("server", srv)
	manager.Listen()

	if *configPath != "" {
		go func() {
			err := config.Watch(manager.Context(), appLogger, *configPath, func(next *config.Config) {
				dispatcher.SetDefaultBins(next.Worker.DefaultBins)
				appLogger.SetLevel(logger.ParseLevel(next.Log.Level))
			})
			if err != nil {
				appLogger.Error("Main", err, map[string]interface{}{
					"path": *configPath,
				})
			}
		}()
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			appLogger.Error("Main", err, nil)
			manager.Shutdown()
		}
	}()

	<-manager.Done()
	// Shutdown holds the manager lock through teardown, so this second call
	// returns once the sequence started elsewhere has completed.
	manager.Shutdown()

	appLogger.Info("Main", "worker terminated", nil)
}
