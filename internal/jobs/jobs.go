// Package jobs wires the fetchers, presenters and the price history into the
// runner jobs of both widgets.
package jobs

import (
	"context"

	"homewidgets/internal/components/chrono"
	"homewidgets/internal/components/telemetry"
	"homewidgets/internal/kvg"
	"homewidgets/internal/presenter"
	"homewidgets/internal/pricestore"
	"homewidgets/internal/runner"
	"homewidgets/internal/widget"
	"homewidgets/internal/youpickit"
)

const (
	report_prices_fetch_logo   = "prices.fetch-logo"
	report_prices_push_history = "prices.push-history"
)

func Departures(client *kvg.Client, board presenter.DepartureBoard, stopID string) runner.Job[[]kvg.Departure] {
	return runner.Job[[]kvg.Departure]{
		Name:    "departures",
		Subject: kvg.Subject,
		Fetch: func(ctx context.Context) ([]kvg.Departure, error) {
			return client.FetchDepartures(ctx, stopID)
		},
		Present: func(_ context.Context, departures []kvg.Departure) (*widget.Widget, error) {
			return board.Present(departures), nil
		},
		PresentError: board.Error,
	}
}

// History records the offers of every successful price run.
type History interface {
	Push(ctx context.Context, snapshot pricestore.Snapshot) error
}

type PricesOptions struct {
	ProductURL string
	// History can be nil.
	History History
	Clock   chrono.API
}

func Prices(client *youpickit.Client, board presenter.PriceBoard, opts PricesOptions, tel telemetry.API) runner.Job[[]youpickit.PriceEntry] {
	tel = telemetry.NewScopedAPI("jobs", tel)

	return runner.Job[[]youpickit.PriceEntry]{
		Name:    "prices",
		Subject: youpickit.Subject,
		Fetch: func(ctx context.Context) ([]youpickit.PriceEntry, error) {
			entries, err := client.FetchPrices(ctx)
			if err != nil {
				return nil, err
			}
			if opts.History != nil {
				err = opts.History.Push(ctx, pricestore.Snapshot{
					Time:       opts.Clock.Now(),
					ProductURL: opts.ProductURL,
					Entries:    entries,
				})
				if err != nil {
					tel.ReportWarning(report_prices_push_history, err)
				}
			}
			return entries, nil
		},
		Present: func(ctx context.Context, entries []youpickit.PriceEntry) (*widget.Widget, error) {
			var logo *widget.Image
			best := presenter.BestPrice(entries)
			if best >= 0 {
				var err error
				logo, err = client.FetchLogo(ctx, entries[best].Brand)
				if err != nil {
					// the widget is still useful without the logo
					tel.ReportWarning(report_prices_fetch_logo, err, entries[best].Brand)
					logo = nil
				}
			}
			return board.Present(entries, logo), nil
		},
		PresentError: board.Error,
	}
}
