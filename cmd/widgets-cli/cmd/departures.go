package cmd

import (
	"homewidgets/cmd/widgets-cli/globals"
	"homewidgets/internal/jobs"
	"homewidgets/internal/kvg"
	"homewidgets/internal/presenter"
	"homewidgets/internal/runner"

	"github.com/spf13/cobra"
)

var departuresStop string

var departuresCmd = &cobra.Command{
	Use:   "departures",
	Short: "Render the departure board of a KVG stop.",
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())
		cfg := g.Config.Departures

		stopID := cfg.StopID
		if departuresStop != "" {
			stopID = departuresStop
		}

		theme, err := cfg.Colors.Theme(presenter.DepartureTheme)
		if err != nil {
			return err
		}
		board := presenter.DepartureBoard{
			Layout: cfg.Layout(),
			Theme:  theme,
			Clock:  g.Clock,
		}
		client := kvg.NewClient(kvg.ClientOptions{
			Endpoint: cfg.Endpoint,
			Timeout:  g.Config.Timeout(),
			Output:   g.Output,
		}, g.Tel)

		state := runner.Run(cmd.Context(), jobs.Departures(client, board, stopID), g.Host(), g.Tel)
		if state == runner.ErrorRendered {
			return errWidgetFailed
		}
		return nil
	},
}

func init() {
	departuresCmd.Flags().StringVar(&departuresStop, "stop", "", "stop id, overrides departures.stop_id")
	rootCmd.AddCommand(departuresCmd)
}
