package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/app"
	"github.com/Aleph-Alpha/ragcore/v1/config"
	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const stopTimeout = 15 * time.Second

var (
	flagConfig string
	flagJSON   bool
)

var rootCmd = &cobra.Command{
	Use:          "ragcore",
	Short:        "Ingest documents into vector collections and build retrieval context",
	SilenceUsage: true,
	Long: `ragcore chunks PDF and text documents, embeds the chunks and stores them in
named collections. Questions are answered with the closest chunks, formatted
as context for a language model.

Configuration comes from --config (YAML), a .env file and the environment.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", os.Getenv("RAGCORE_CONFIG"), "Path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print results as JSON")
}

// Execute is called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	return cfg, nil
}

// withManager starts the core application, runs fn and stops the
// application again, so backends are closed even when fn fails.
func withManager(ctx context.Context, fn func(ctx context.Context, m *rag.Manager) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var manager *rag.Manager
	return withApp(ctx, fx.Options(app.Core(cfg), fx.Populate(&manager)), func(ctx context.Context) error {
		return fn(ctx, manager)
	})
}

func withApp(ctx context.Context, opts fx.Option, fn func(ctx context.Context) error) (err error) {
	fxApp := fx.New(opts)

	startCtx, cancel := context.WithTimeout(ctx, fxApp.StartTimeout())
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if stopErr := fxApp.Stop(stopCtx); stopErr != nil && err == nil {
			err = fmt.Errorf("stop: %w", stopErr)
		}
	}()

	return fn(ctx)
}
