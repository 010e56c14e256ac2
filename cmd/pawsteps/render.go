package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pawsteps/platform/internal/apiclient"
	"github.com/pawsteps/platform/internal/config"
	"github.com/pawsteps/platform/internal/identity"
	"github.com/pawsteps/platform/internal/page"
	"github.com/pawsteps/platform/internal/pubsub"
	"github.com/pawsteps/platform/internal/site"
	"github.com/pawsteps/platform/internal/storage"
	"github.com/pawsteps/platform/pkg/logging"
	"github.com/pawsteps/platform/web"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render every page once against a running API and write the HTML",
	RunE: func(cmd *cobra.Command, args []string) error {
		apiBase, _ := cmd.Flags().GetString("api-base")
		out, _ := cmd.Flags().GetString("out")
		return runRender(apiBase, out)
	},
}

func init() {
	renderCmd.Flags().String("api-base", "http://localhost:8080", "base URL of the running API")
	renderCmd.Flags().String("out", "dist", "directory to write rendered pages to")
}

func runRender(apiBase, out string) error {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	var store storage.Store
	if cfg.UseMemoryStore {
		store = storage.NewMemory()
	} else {
		sqlite, err := storage.OpenSQLite(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer sqlite.Close()
		store = sqlite
	}

	client := apiclient.New(apiBase, apiclient.WithLogger(logger))
	visitorID := identity.NewProvider(store, logger).VisitorID()
	bus := pubsub.New()

	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for route, name := range web.Routes {
		raw, err := web.Page(name)
		if err != nil {
			return err
		}
		doc, err := page.ParseString(string(raw))
		if err != nil {
			return fmt.Errorf("parse page %q: %w", name, err)
		}

		host, err := site.Mount(doc, site.Deps{
			Client:    client,
			Config:    cfg,
			Bus:       bus,
			Store:     store,
			VisitorID: visitorID,
			Logger:    logger,
		})
		if err != nil {
			return fmt.Errorf("mount page %q: %w", name, err)
		}
		if err := host.RefreshAll(ctx); err != nil {
			logger.Warn("page rendered with stale sections", "page", name, "error", err)
		}

		target := filepath.Join(out, name+".html")
		f, err := os.Create(target)
		if err != nil {
			return err
		}
		if err := doc.Render(f); err != nil {
			f.Close()
			return fmt.Errorf("render page %q: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		logger.Info("page rendered", "route", route, "file", target)
	}
	return nil
}
