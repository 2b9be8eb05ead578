package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/gplay/protocol"
)

var (
	resultCount  int
	resultOffset int
)

var detailsCmd = &cobra.Command{
	Use:   "details <package>...",
	Short: "Show details for one or more apps",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(args) == 1 {
			doc, err := client.Details(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get details: %w", err)
			}
			printDocument(doc)
			return nil
		}

		result := client.DetailsMany(ctx, args)
		for _, doc := range result.Docs {
			if doc == nil {
				continue
			}
			printDocument(doc)
			fmt.Println()
		}
		if len(result.Failed) > 0 {
			return fmt.Errorf("%d of %d lookups failed", len(result.Failed), len(args))
		}
		return nil
	},
}

var bulkCmd = &cobra.Command{
	Use:   "bulk <package>...",
	Short: "Look up many apps in bulk requests",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := client.BulkDetailsAll(cmd.Context(), args)
		if err != nil {
			return fmt.Errorf("failed to get bulk details: %w", err)
		}

		found := make([]*protocol.Document, 0, len(docs))
		for i, doc := range docs {
			if doc == nil {
				logger.Warn().Str("package", args[i]).Msg("Package not found")
				continue
			}
			found = append(found, doc)
		}

		return showFiltered(cmd.Context(), found)
	},
}

var relatedCmd = &cobra.Command{
	Use:   "related <package>",
	Short: "List apps related to a package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := client.Related(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get related apps: %w", err)
		}
		return showFiltered(cmd.Context(), docs)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := client.Search(cmd.Context(), args[0], resultCount, resultOffset)
		if err != nil {
			return fmt.Errorf("failed to search: %w", err)
		}
		return showFiltered(cmd.Context(), docs)
	},
}

var reviewsCmd = &cobra.Command{
	Use:   "reviews <package>",
	Short: "List user reviews for an app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reviews, err := client.Reviews(cmd.Context(), args[0], resultCount, resultOffset)
		if err != nil {
			return fmt.Errorf("failed to get reviews: %w", err)
		}
		printReviews(reviews)
		return nil
	},
}

// showFiltered applies the --filter flag, if set, before printing
func showFiltered(ctx context.Context, docs []*protocol.Document) error {
	if filterExpr != "" {
		filtered, err := filters.Apply(ctx, filterExpr, docs)
		if err != nil {
			return fmt.Errorf("failed to apply filter: %w", err)
		}
		logger.Debug().
			Str("filter", filterExpr).
			Int("before", len(docs)).
			Int("after", len(filtered)).
			Msg("Applied filter")
		docs = filtered
	}

	printDocuments(docs)
	return nil
}

func init() {
	for _, c := range []*cobra.Command{bulkCmd, relatedCmd, searchCmd} {
		c.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression or @name of a configured filter")
	}

	searchCmd.Flags().IntVarP(&resultCount, "count", "n", 20, "number of results (max 100)")
	searchCmd.Flags().IntVar(&resultOffset, "offset", 0, "result offset")
	reviewsCmd.Flags().IntVarP(&resultCount, "count", "n", 20, "number of reviews (max 20)")
	reviewsCmd.Flags().IntVar(&resultOffset, "offset", 0, "review offset")

	rootCmd.AddCommand(detailsCmd, bulkCmd, relatedCmd, searchCmd, reviewsCmd)
}
