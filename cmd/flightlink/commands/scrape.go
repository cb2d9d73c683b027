package commands

import (
	"context"

	"flightlink-service/internal/domain/entity"

	"github.com/spf13/cobra"
)

var scrapeFresh *bool

func init() {
	scrapeFresh = scrapeCmd.Flags().Bool("fresh", false, "Truncate the listing store instead of appending to it.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--fresh]",
	Short: "Visits every captured link and stores the flight listings found there.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			summary, err := runScrape(ctx, a, *scrapeFresh)
			renderSummary(cmd.OutOrStdout(), summary)
			return err
		})
	},
}

func runScrape(ctx context.Context, a *app, fresh bool) (*entity.RunSummary, error) {
	links, err := a.linkRepository(ctx, false)
	if err != nil {
		return nil, err
	}
	listings, err := a.listingRepository(ctx, fresh)
	if err != nil {
		return nil, err
	}

	return a.orchestrator(links, listings, nil).ScrapeListings(ctx)
}
