package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"bookfs/internal/config"
	"bookfs/internal/fs"
	"bookfs/internal/index"
	"bookfs/internal/logging"

	"github.com/spf13/pflag"
)

var (
	logger = logging.GetLogger()
)

var logLevels = map[string]logging.LogLevel{
	"ERROR": logging.LevelError,
	"WARN":  logging.LevelWarn,
	"INFO":  logging.LevelInfo,
	"DEBUG": logging.LevelDebug,
	"TRACE": logging.LevelTrace,
}

func main() {
	library := pflag.String("library", "", "Root directory of the book library")
	mountPoint := pflag.String("mount", "", "Mount point for the virtual filesystem")
	configPath := pflag.String("config", "", "Optional YAML configuration file")
	verbose := pflag.Bool("verbose", false, "Enable verbose logging")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Flags override the configuration file
	if *library != "" {
		cfg.Library = *library
	}
	if *mountPoint != "" {
		cfg.MountPoint = *mountPoint
	}

	if level, ok := logLevels[cfg.LogLevel]; ok {
		logger.SetLevel(level)
	}
	if *verbose {
		logger.SetLevel(logging.LevelDebug)
	}

	logger.Info("Starting bookfs...")
	logger.Debug("Library: %s", cfg.Library)
	logger.Debug("Mount point: %s", cfg.MountPoint)

	if cfg.Library == "" || cfg.MountPoint == "" {
		logger.Error("Library root and mount point are required")
		os.Exit(1)
	}

	cleanLibrary := filepath.Clean(cfg.Library)
	cleanMount := filepath.Clean(cfg.MountPoint)

	logger.Info("Building path index...")
	idx := index.Build(cleanLibrary)

	bfs := fs.NewBookFS(cleanLibrary, idx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Mounting filesystem...")
	if err := bfs.Mount(cleanMount, cfg.Mount); err != nil {
		logger.Error("Mount failed: %v", err)
		os.Exit(1)
	}

	logger.Info("Filesystem mounted and ready")

	go func() {
		sig := <-sigChan
		logger.Info("Received signal %v", sig)
		if err := bfs.Unmount(cleanMount); err != nil {
			logger.Error("Unmount error: %v", err)
		}
	}()

	bfs.Wait()
	logger.Info("Clean shutdown complete")
}
