package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"coll"},
	Short:   "Inspect and delete collections",
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collection names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd.Context(), func(ctx context.Context, m *rag.Manager) error {
			set, err := m.ListCollections(ctx)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(set))
			for name := range set {
				names = append(names, name)
			}
			sort.Strings(names)

			if flagJSON {
				return printJSON(cmd.OutOrStdout(), names)
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		})
	},
}

var collectionsItemsCmd = &cobra.Command{
	Use:   "items <name>",
	Short: "Show the stored chunks of a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd.Context(), func(ctx context.Context, m *rag.Manager) error {
			items, err := m.ListCollectionItems(ctx, args[0])
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), items)
			}
			return printItems(cmd.OutOrStdout(), items)
		})
	},
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a collection and everything in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd.Context(), func(ctx context.Context, m *rag.Manager) error {
			if err := m.DeleteCollection(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		})
	},
}

func init() {
	collectionsCmd.AddCommand(collectionsListCmd, collectionsItemsCmd, collectionsDeleteCmd)
	rootCmd.AddCommand(collectionsCmd)
}
