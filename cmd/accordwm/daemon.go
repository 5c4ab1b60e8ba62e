package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/accordwm/accordwm/internal/config"
	"github.com/accordwm/accordwm/internal/ipc"
	"github.com/accordwm/accordwm/internal/orchestrator"
	"github.com/accordwm/accordwm/internal/platform"
	"github.com/accordwm/accordwm/internal/store"
	"github.com/accordwm/accordwm/internal/tiling"
	"github.com/accordwm/accordwm/internal/x11"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the tiling daemon in the foreground",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	cfgPath, err := resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("starting daemon", "config", cfgPath)

	conn, err := x11.NewConnection()
	if err != nil {
		return fmt.Errorf("failed to connect to X server: %w", err)
	}
	defer conn.Close()

	backend := platform.NewX11Backend(conn, cfg.Animation.FPS)

	storePath, err := store.DefaultPath()
	if err != nil {
		return err
	}
	st := store.New(storePath)

	orch := orchestrator.New(backend, backend, backend, backend, st, orchestratorConfig(cfg), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := orch.Start(ctx); err != nil {
		return err
	}
	defer orch.Stop()

	reloadCh := make(chan struct{}, 1)
	srv, err := ipc.NewServer(orch, logger, reloadCh)
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watchConfig(gctx, cfgPath, reloadCh, logger)
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-reloadCh:
				reloaded, err := config.Load(cfgPath)
				if err != nil {
					logger.Warn("config reload failed, keeping previous config", "error", err)
					continue
				}
				logger.Info("config reloaded", "path", cfgPath)
				if lvl, err := log.ParseLevel(reloaded.LogLevel); err == nil {
					logger.SetLevel(lvl)
				}
				orch.UpdateConfig(orchestratorConfig(reloaded))
				orch.RetileNow(gctx)
			}
		}
	})

	err = g.Wait()
	conn.StopEventLoop()
	logger.Info("daemon exiting")
	return err
}

// watchConfig requests a reload whenever the config file is written. The
// parent directory is watched so editors that replace the file atomically
// still trigger.
func watchConfig(ctx context.Context, cfgPath string, reloadCh chan<- struct{}, logger *log.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(cfgPath)); err != nil {
		// Missing config dir just means no hot reload.
		logger.Debug("config watch unavailable", "error", err)
		<-ctx.Done()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != cfgPath {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			select {
			case reloadCh <- struct{}{}:
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "accordwm",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func orchestratorConfig(cfg *config.Config) orchestrator.Config {
	return orchestrator.Config{
		Margin:            cfg.Margin,
		Padding:           cfg.Padding,
		AccordionOffset:   cfg.AccordionOffset,
		AnimationDuration: cfg.AnimationDuration(),
		DebounceDelay:     cfg.DebounceDelay(),
		ZOrderGuard:       cfg.ZOrderGuard(),
		AnimateFirstTile:  cfg.Animation.AnimateFirstTile,
		DefaultLayout:     tiling.LayoutID(cfg.DefaultLayout),
	}
}
