package cmd

import (
	"fmt"
	"os"

	"homewidgets/cmd/widgets-cli/globals"
	"homewidgets/cmd/widgets-cli/utils"
	"homewidgets/internal/presenter"
	"homewidgets/internal/youpickit"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var extractExtractor string

var extractCmd = &cobra.Command{
	Use:   "extract <page.html>",
	Short: "Extract the offers of a saved youpickit product page.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())

		name := g.Config.Prices.Extractor
		if extractExtractor != "" {
			name = extractExtractor
		}
		extractor, err := youpickit.NewExtractor(name, g.Tel)
		if err != nil {
			return err
		}

		page, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read page: %w", err)
		}
		entries := extractor.Extract(cmd.Context(), string(page))

		if g.Format == globals.FormatJSON {
			if entries == nil {
				entries = []youpickit.PriceEntry{}
			}
			return utils.WriteJSON(g.Stdout, entries)
		}

		best := presenter.BestPrice(entries)
		t := utils.NewTable(g.Stdout)
		t.AppendHeader(table.Row{"#", "Price", "Brand", "Address", ""})
		for i, e := range entries {
			mark := ""
			if i == best {
				mark = "best"
			}
			t.AppendRow(table.Row{i + 1, presenter.FormatPrice(e.Price), e.Brand, e.Address, mark})
		}
		t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d offers", len(entries)), ""})
		t.Render()
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractExtractor, "extractor", "", "regex or dom, overrides prices.extractor")
	rootCmd.AddCommand(extractCmd)
}
