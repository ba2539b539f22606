package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/britishfeed/feedstore/config"
	"github.com/britishfeed/feedstore/internal/adminapi"
	"github.com/britishfeed/feedstore/internal/app"
	"github.com/britishfeed/feedstore/internal/kv"
	"github.com/britishfeed/feedstore/internal/webserver"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfile string
	root := &cobra.Command{
		Use:           "feedstore",
		Short:         "British Feed & Supplies storefront backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfile, "config", "c", "", "path to the YAML config file")

	loadConfig := func() *config.AppConfig {
		return config.LoadConfig(cfile)
	}

	root.AddCommand(
		newServeCmd(loadConfig),
		newCatalogCmd(loadConfig),
		newRecommendCmd(),
		newPromptCmd(loadConfig),
		newHashPasswordCmd(),
	)
	return root
}

func newServeCmd(loadConfig func() *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the public storefront API and the admin console",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			application := app.NewApplication(cfg)
			application.Init(cfg)
			defer application.Release()

			webserver.Init(application)
			adminapi.Init()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			zap.L().Info("feedstore started",
				zap.String("namespace", "main"),
				zap.String("version", version),
				zap.String("storage", cfg.Storage.Type))
			return webserver.Server().Start(ctx)
		},
	}
}

// openApplication wires the services on the configured backend without the
// scheduler or the web layer. Callers must Release it.
func openApplication(cfg *config.AppConfig) (*app.Application, error) {
	store, err := kv.Open(cfg)
	if err != nil {
		return nil, err
	}
	application := app.NewApplication(cfg)
	application.Bootstrap(store)
	return application, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
