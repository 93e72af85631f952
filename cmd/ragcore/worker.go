package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aleph-Alpha/ragcore/v1/app"
	"github.com/Aleph-Alpha/ragcore/v1/worker"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var errNoBroker = errors.New("rabbit.connection.host is not configured")

var (
	flagJobCollection string
	flagJobPrefix     string
	flagJobDir        string
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume queued ingestion jobs until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.JobsEnabled() {
			return errNoBroker
		}

		fxApp := fx.New(app.Worker(cfg))
		if err := fxApp.Err(); err != nil {
			return err
		}
		fxApp.Run()
		return nil
	},
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Queue an ingestion job for a MinIO prefix or a directory the workers can read",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.JobsEnabled() {
			return errNoBroker
		}

		var enqueuer *worker.Enqueuer
		opts := fx.Options(app.Producer(cfg), fx.Populate(&enqueuer))
		return withApp(cmd.Context(), opts, func(ctx context.Context) error {
			job, err := enqueuer.Enqueue(ctx, worker.Job{
				Collection: flagJobCollection,
				Prefix:     flagJobPrefix,
				Dir:        flagJobDir,
			})
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), job)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "queued job %s\n", job.ID)
			return err
		})
	},
}

func init() {
	enqueueCmd.Flags().StringVar(&flagJobCollection, "collection", "", "Target collection (default from config)")
	enqueueCmd.Flags().StringVar(&flagJobPrefix, "prefix", "", "MinIO object prefix to import")
	enqueueCmd.Flags().StringVar(&flagJobDir, "dir", "", "Directory on the worker host to ingest, below worker.allowed_root")
	enqueueCmd.MarkFlagsMutuallyExclusive("prefix", "dir")
	enqueueCmd.MarkFlagsOneRequired("prefix", "dir")

	rootCmd.AddCommand(workerCmd, enqueueCmd)
}
