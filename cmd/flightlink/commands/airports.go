package commands

import (
	"context"
	"fmt"

	"flightlink-service/internal/interface/browser"
	repo "flightlink-service/internal/interface/repository"
	"flightlink-service/internal/usecase"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(airportsCmd)
}

var airportsCmd = &cobra.Command{
	Use:   "airports",
	Short: "Refreshes the IATA reference file from the site's airport index.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			sessions := browser.NewChromeSessionFactory(a.browserOptions(), a.bindings, a.log)
			discovery := usecase.NewAirportDiscovery(
				sessions.AirportPage(),
				repo.NewCSVAirportRepository(a.cfg.IATAFile),
				a.log,
			)

			codes, err := discovery.Refresh(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d airport codes written to %s\n", len(codes), a.cfg.IATAFile)
			return nil
		})
	},
}
