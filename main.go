/*
Package main
File: main.go
Description: Entry point. Wires configuration, logging, the part catalog and the
workshop, then either serves the REST + WebSocket host adapter or runs a one-shot
command (volume estimate, equipment report).
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/everforgeworks/partcontainer/internal/api"
	"github.com/everforgeworks/partcontainer/internal/config"
	"github.com/everforgeworks/partcontainer/internal/game"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	verbose    bool
	variant    string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "partcontainer",
	Short: "Part container workshop: house parts inside parts by volume",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		zc := zap.NewProductionConfig()
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		zc.Level = zap.NewAtomicLevelAt(level)
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workshop REST API and real-time hub",
	RunE:  runServe,
}

var volumeCmd = &cobra.Command{
	Use:   "volume <part-key>",
	Short: "Print a part's estimated volume in liters",
	Args:  cobra.ExactArgs(1),
	RunE:  runVolume,
}

var reportCmd = &cobra.Command{
	Use:   "report [container-id]",
	Short: "Print the equipment report of saved containers",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReport,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	volumeCmd.Flags().StringVar(&variant, "variant", "", "variant name (default: first declared)")
	rootCmd.AddCommand(serveCmd, volumeCmd, reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadWorkshop reads the catalog and the save file.
func loadWorkshop() (*game.Workshop, error) {
	cat, err := game.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	ws := game.NewWorkshop(cat, logger)
	if err := ws.Load(cfg.SavePath); err != nil {
		return nil, err
	}
	return ws, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load the catalog and any saved containers
	ws, err := loadWorkshop()
	if err != nil {
		return err
	}

	// 2. Initialize and start the Real-Time WebSocket Hub
	hub := api.NewHub(logger)
	go hub.Run()
	defer hub.Close()

	savePath := ""
	if cfg.Autosave {
		savePath = cfg.SavePath
	}
	server := api.NewServer(ws, hub, savePath, logger)

	// 3. Hot-reload: SIGHUP re-reads the catalog without a restart
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for range hup {
			cat, err := game.LoadCatalog(cfg.CatalogPath)
			if err != nil {
				logger.Error("catalog reload failed", zap.Error(err))
				continue
			}
			ws.Lock.Lock()
			ws.ReloadCatalog(cat)
			ws.Lock.Unlock()
			hub.Publish("catalog_reloaded", map[string]int{"parts": len(cat.Parts)})
		}
	}()

	// 4. Start the Server
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: server.Routes()}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("part container workshop live", zap.String("addr", cfg.ListenAddr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	// 5. Final save
	ws.Lock.RLock()
	defer ws.Lock.RUnlock()
	return ws.Save(cfg.SavePath)
}

func runVolume(cmd *cobra.Command, args []string) error {
	cat, err := game.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	ws := game.NewWorkshop(cat, logger)
	def := ws.Part(args[0])
	if def == nil {
		return fmt.Errorf("%w: %s", game.ErrUnknownPart, args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.3f L\n", def.Key, ws.Estimator.EstimateVolume(def, variant))
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkshop()
	if err != nil {
		return err
	}
	containers := ws.ContainerList()
	if len(args) == 1 {
		c, ok := ws.Containers[args[0]]
		if !ok {
			return fmt.Errorf("container %s not found in %s", args[0], cfg.SavePath)
		}
		containers = []*game.Container{c}
	}
	for _, c := range containers {
		fmt.Fprintln(cmd.OutOrStdout(), ws.Report(c))
	}
	return nil
}
