package commands

import (
	"context"
	"fmt"

	"flightlink-service/internal/domain/entity"

	"github.com/spf13/cobra"
)

var linksFresh *bool

func init() {
	linksFresh = linksCmd.Flags().Bool("fresh", false, "Truncate the link log instead of appending to it.")
	rootCmd.AddCommand(linksCmd)
}

var linksCmd = &cobra.Command{
	Use:   "links [--fresh]",
	Short: "Drives the search form once per batch row and records the resulting deep links.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			summary, err := runLinks(ctx, a, *linksFresh)
			renderSummary(cmd.OutOrStdout(), summary)
			return err
		})
	},
}

func runLinks(ctx context.Context, a *app, fresh bool) (*entity.RunSummary, error) {
	batch, err := a.batchRepository(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := batch.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}

	links, err := a.linkRepository(ctx, fresh)
	if err != nil {
		return nil, err
	}
	airports, err := a.airportRepository()
	if err != nil {
		return nil, err
	}

	return a.orchestrator(links, nil, airports).SynthesizeLinks(ctx, rows)
}
