package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FlorianRuen/devhub/controller"
	"github.com/FlorianRuen/devhub/playground"
	"github.com/FlorianRuen/devhub/service"
	"github.com/FlorianRuen/devhub/storage"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	store, err := storage.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("unable to open storage: %w", err)
	}

	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Error("unable to close storage")
		}
	}()

	catalogue, err := playground.LoadCatalogue()
	if err != nil {
		return fmt.Errorf("unable to load templates: %w", err)
	}

	// setup github client
	// we do here and pass the client to Github service to easily improve tests with mock client
	githubService, err := newGithubService(cmd.Context())
	if err != nil {
		return fmt.Errorf("unable to setup github client: %w", err)
	}

	// setup handlers and services
	discoveryService := service.NewDiscoveryService(githubService)
	bookmarkService := service.NewBookmarkService(store, githubService)
	playgroundService := service.NewPlaygroundService(*cfg, store, catalogue)

	// setup server and define all routes
	gin.SetMode(gin.ReleaseMode)
	router := controller.NewRouter(
		controller.NewAPIController(*cfg, githubService, discoveryService),
		controller.NewBookmarkController(bookmarkService),
		controller.NewPlaygroundController(playgroundService),
	)

	server := &http.Server{
		Addr:    ":" + cfg.API.ListenPort,
		Handler: router,
	}

	go func() {
		log.WithFields(log.Fields{
			"port":    cfg.API.ListenPort,
			"storage": cfg.Storage.Driver,
		}).Info("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("error while starting server")
		}
	}()

	// wait for interrupt signal to gracefully shut down the server
	// kill default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("SIGINT, SIGTERM received, will shut down server ...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
		return err
	}

	log.Info("Application stopped gracefully !")
	return nil
}
