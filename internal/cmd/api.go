package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/servak/fabric-manager/internal/api"
	"github.com/servak/fabric-manager/internal/clos"
	"github.com/servak/fabric-manager/internal/config"
	"github.com/servak/fabric-manager/internal/render"
	"github.com/servak/fabric-manager/internal/repository"
	"github.com/servak/fabric-manager/pkg/logger"
)

var apiPort string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long:  "Start the REST API server exposing pods, devices and rendered configurations",
	RunE:  runAPI,
}

func init() {
	apiCmd.Flags().StringVar(&apiPort, "port", "8080", "API server port")
}

func runAPI(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	log := logger.New(cfg.Log.Level)

	repo, err := repository.NewRepository(cfg.Database)
	if err != nil {
		return fmt.Errorf("creating repository: %w", err)
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}
	builder := clos.NewBuilder(repo, cfg, "", nil, nil, log)

	server := api.NewServer(repo, builder, renderer, log)

	httpServer := &http.Server{
		Addr:    ":" + apiPort,
		Handler: server.Handler(),
	}

	go func() {
		log.Info("starting API server", "port", apiPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", "error", err)
	}
	if err := server.Shutdown(ctx); err != nil {
		log.Error("application shutdown error", "error", err)
	}

	log.Info("API server stopped")
	return nil
}
