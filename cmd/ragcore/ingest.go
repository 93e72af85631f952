package main

import (
	"context"
	"fmt"

	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/spf13/cobra"
)

var (
	flagCollection  string
	flagOnExisting  string
	flagErrorMode   string
	flagConcurrency int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Add documents from a directory to a collection",
}

var ingestPDFCmd = &cobra.Command{
	Use:   "pdf <dir>",
	Short: "Ingest every *.pdf directly inside dir, one chunk per page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd, args[0], (*rag.Manager).IngestPDFs)
	},
}

var ingestTextCmd = &cobra.Command{
	Use:   "text <dir>",
	Short: "Ingest every *.txt below dir, split into overlapping chunks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd, args[0], (*rag.Manager).IngestTexts)
	},
}

var ingestDirCmd = &cobra.Command{
	Use:   "dir <dir>",
	Short: "Ingest PDFs then text files, collecting per-file errors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd.Context(), func(ctx context.Context, m *rag.Manager) error {
			result := m.IngestDirectory(ctx, args[0], flagCollection)
			if err := printUploadResult(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("ingestion finished with %d error(s)", len(result.Errors))
			}
			return nil
		})
	},
}

type ingestFunc func(m *rag.Manager, ctx context.Context, dir, collection string, opts ...rag.Option) (*rag.IngestReport, error)

func runIngest(cmd *cobra.Command, dir string, ingest ingestFunc) error {
	opts, err := ingestOptions(cmd)
	if err != nil {
		return err
	}

	return withManager(cmd.Context(), func(ctx context.Context, m *rag.Manager) error {
		report, err := ingest(m, ctx, dir, flagCollection, opts...)
		if report != nil {
			if perr := printReport(cmd.OutOrStdout(), report); perr != nil {
				return perr
			}
		}
		if err != nil {
			return err
		}
		return report.Err()
	})
}

// ingestOptions turns the flags the user actually set into per-call options.
func ingestOptions(cmd *cobra.Command) ([]rag.Option, error) {
	var opts []rag.Option

	if cmd.Flags().Changed("on-existing") {
		p := rag.ExistingPolicy(flagOnExisting)
		if p != rag.AppendToExisting && p != rag.SkipExisting {
			return nil, fmt.Errorf("--on-existing must be %q or %q", rag.AppendToExisting, rag.SkipExisting)
		}
		opts = append(opts, rag.WithOnExisting(p))
	}
	if cmd.Flags().Changed("error-mode") {
		m := rag.ErrorMode(flagErrorMode)
		if m != rag.FailFast && m != rag.BestEffort {
			return nil, fmt.Errorf("--error-mode must be %q or %q", rag.FailFast, rag.BestEffort)
		}
		opts = append(opts, rag.WithErrorMode(m))
	}
	if cmd.Flags().Changed("concurrency") {
		opts = append(opts, rag.WithEmbedConcurrency(flagConcurrency))
	}
	return opts, nil
}

func init() {
	ingestCmd.PersistentFlags().StringVar(&flagCollection, "collection", "", "Target collection (default from config)")

	for _, c := range []*cobra.Command{ingestPDFCmd, ingestTextCmd} {
		c.Flags().StringVar(&flagOnExisting, "on-existing", string(rag.AppendToExisting), "What to do when the collection exists: append or skip")
		c.Flags().StringVar(&flagErrorMode, "error-mode", string(rag.FailFast), "fail_fast or best_effort")
		c.Flags().IntVar(&flagConcurrency, "concurrency", rag.DefaultEmbedConcurrency, "Parallel embedding calls per file")
	}

	ingestCmd.AddCommand(ingestPDFCmd, ingestTextCmd, ingestDirCmd)
	rootCmd.AddCommand(ingestCmd)
}
