package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var runFresh *bool

func init() {
	runFresh = runCmd.Flags().Bool("fresh", false, "Truncate the link log and listing store before running.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--fresh]",
	Short: "Runs link synthesis and then listing scraping over the batch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			linkSummary, err := runLinks(ctx, a, *runFresh)
			if err != nil {
				renderSummary(cmd.OutOrStdout(), linkSummary)
				return err
			}
			scrapeSummary, err := runScrape(ctx, a, *runFresh)
			renderSummary(cmd.OutOrStdout(), linkSummary, scrapeSummary)
			return err
		})
	},
}
