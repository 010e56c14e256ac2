package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pawsteps/platform/internal/bans"
	"github.com/pawsteps/platform/internal/chat"
	"github.com/pawsteps/platform/internal/config"
	"github.com/pawsteps/platform/internal/enquiries"
	"github.com/pawsteps/platform/internal/httpapi"
	"github.com/pawsteps/platform/internal/schedule"
	"github.com/pawsteps/platform/pkg/logging"
	"github.com/pawsteps/platform/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site and its JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting pawsteps",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	router := httpapi.New(&httpapi.Config{
		Logger:    logger,
		Chat:      chat.NewState(chat.CannedResponder{}),
		Schedule:  schedule.NewStore(),
		Enquiries: enquiries.NewStore(),
		Bans:      bans.NewStore(),
		Pages:     web.Handler(logger),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
