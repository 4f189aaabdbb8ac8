package cmd

import (
	"log/slog"

	"homewidgets/cmd/widgets-cli/globals"
	"homewidgets/internal/jobs"
	"homewidgets/internal/presenter"
	"homewidgets/internal/pricestore"
	"homewidgets/internal/runner"
	"homewidgets/internal/youpickit"

	"github.com/spf13/cobra"
)

var (
	pricesExtractor string
	pricesHistory   string
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Render the cheapest offers of a youpickit product.",
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())
		cfg := g.Config.Prices

		if pricesExtractor != "" {
			cfg.Extractor = pricesExtractor
		}
		if pricesHistory != "" {
			cfg.History.File = pricesHistory
		}

		extractor, err := youpickit.NewExtractor(cfg.Extractor, g.Tel)
		if err != nil {
			return err
		}
		client, err := youpickit.NewClient(youpickit.ClientOptions{
			ProductURL:       cfg.ProductURL,
			Location:         cfg.SearchLocation(),
			Logos:            cfg.Logos,
			Extractor:        extractor,
			Timeout:          g.Config.Timeout(),
			RespectRobots:    cfg.RespectRobots,
			BypassCloudflare: cfg.BypassCloudflare,
			Output:           g.Output,
		}, g.Tel)
		if err != nil {
			return err
		}

		theme, err := cfg.Colors.Theme(presenter.PriceTheme)
		if err != nil {
			return err
		}
		board := presenter.PriceBoard{
			Layout: cfg.Layout(),
			Theme:  theme,
			Clock:  g.Clock,
		}

		opts := jobs.PricesOptions{
			ProductURL: cfg.ProductURL,
			Clock:      g.Clock,
		}
		if cfg.History.File != "" {
			store, err := pricestore.Open(cfg.History, g.Tel)
			if err != nil {
				return err
			}
			defer func() {
				err := store.Close()
				if err != nil {
					slog.Warn("failed to close price history", "err", err)
				}
			}()
			opts.History = store
		}

		state := runner.Run(cmd.Context(), jobs.Prices(client, board, opts, g.Tel), g.Host(), g.Tel)
		if state == runner.ErrorRendered {
			return errWidgetFailed
		}
		return nil
	},
}

func init() {
	pricesCmd.Flags().StringVar(&pricesExtractor, "extractor", "", "regex or dom, overrides prices.extractor")
	pricesCmd.Flags().StringVar(&pricesHistory, "history", "", "record the offers into this database, overrides prices.history.file")
	rootCmd.AddCommand(pricesCmd)
}
