package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/spf13/cobra"
)

var (
	flagContextCollection string
	flagTopK              int
)

var contextCmd = &cobra.Command{
	Use:   "context <question>",
	Short: "Print the retrieval context for a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		return withManager(cmd.Context(), func(ctx context.Context, m *rag.Manager) error {
			ret, err := m.Retrieve(ctx, query, flagContextCollection, flagTopK)
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), ret)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), rag.FormatContext(ret.Hits))
			return err
		})
	},
}

func init() {
	contextCmd.Flags().StringVar(&flagContextCollection, "collection", "", "Collection to search (default from config)")
	contextCmd.Flags().IntVarP(&flagTopK, "top-k", "k", 0, "Number of documents (default from config)")
	rootCmd.AddCommand(contextCmd)
}
