package cmd

import (
	"fmt"
	"log/slog"

	"homewidgets/cmd/widgets-cli/globals"
	"homewidgets/cmd/widgets-cli/utils"
	"homewidgets/internal/presenter"
	"homewidgets/internal/pricestore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	historyLimit   int
	historyProduct string
	historyFile    string
)

type historyRow struct {
	Time    string  `json:"time"`
	Price   float64 `json:"price"`
	Brand   string  `json:"brand"`
	Address string  `json:"address"`
	Offers  int     `json:"offers"`
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the cheapest offer of the latest recorded price runs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())
		cfg := g.Config.Prices

		if historyFile != "" {
			cfg.History.File = historyFile
		}
		if cfg.History.File == "" {
			return fmt.Errorf("no price history configured, set prices.history.file or pass --history")
		}
		product := cfg.ProductURL
		if historyProduct != "" {
			product = historyProduct
		}
		if historyLimit < 1 {
			return fmt.Errorf("--limit must be positive, got %d", historyLimit)
		}

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

		lowest, err := store.Lowest(cmd.Context(), product, historyLimit)
		if err != nil {
			return err
		}

		rows := make([]historyRow, len(lowest))
		for i, l := range lowest {
			rows[i] = historyRow{
				Time:    l.Time.In(g.Clock.Location()).Format("2006-01-02 15:04"),
				Price:   l.Price,
				Brand:   l.Brand,
				Address: l.Address,
				Offers:  l.Offers,
			}
		}

		if g.Format == globals.FormatJSON {
			return utils.WriteJSON(g.Stdout, rows)
		}

		t := utils.NewTable(g.Stdout)
		t.AppendHeader(table.Row{"Time", "Price", "Brand", "Address", "Offers"})
		for _, r := range rows {
			t.AppendRow(table.Row{r.Time, presenter.FormatPrice(r.Price), r.Brand, r.Address, r.Offers})
		}
		t.Render()
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "number of runs to list")
	historyCmd.Flags().StringVar(&historyProduct, "product", "", "product url, defaults to prices.product_url")
	historyCmd.Flags().StringVar(&historyFile, "history", "", "database to read, overrides prices.history.file")
	rootCmd.AddCommand(historyCmd)
}
