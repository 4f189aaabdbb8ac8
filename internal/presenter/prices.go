package presenter

import (
	"fmt"
	"strings"

	"homewidgets/internal/components/chrono"
	"homewidgets/internal/widget"
	"homewidgets/internal/youpickit"
	"homewidgets/lib/textutil"
)

type PriceLayout struct {
	PriceWidth   int
	AddressWidth int
	// MaxEntries is the number of offers listed below the best price.
	MaxEntries int
}

var DefaultPriceLayout = PriceLayout{
	PriceWidth:   8,
	AddressWidth: 35,
	MaxEntries:   3,
}

const MessageNoPrices = "No price data available"

var (
	priceInfoSize = widget.Size{Width: 80, Height: 65}
	logoSize      = widget.Size{Width: 200, Height: 65}
)

const logoCornerRadius = 10

// PriceBoard renders the cheapest offer of a product and a short list of the
// other offers.
type PriceBoard struct {
	Layout PriceLayout
	Theme  Theme
	Clock  chrono.API
}

// BestPrice returns the index of the cheapest entry, the first one wins a
// tie. It returns -1 for no entries.
func BestPrice(entries []youpickit.PriceEntry) int {
	if len(entries) == 0 {
		return -1
	}
	best := 0
	for i, e := range entries[1:] {
		if e.Price < entries[best].Price {
			best = i + 1
		}
	}
	return best
}

// OtherPrices returns up to limit entries in order, skipping the entry at index
// best. Entries equal to the best one at other indices are kept.
func OtherPrices(entries []youpickit.PriceEntry, best, limit int) []youpickit.PriceEntry {
	var others []youpickit.PriceEntry
	for i, e := range entries {
		if len(others) >= limit {
			break
		}
		if i == best {
			continue
		}
		others = append(others, e)
	}
	return others
}

func FormatPrice(price float64) string {
	return fmt.Sprintf("€%.2f", price)
}

// FormatAddress keeps the first two comma separated parts of the address and
// fits them into width, leaving at least one trailing space.
func FormatAddress(address string, width int) string {
	parts := strings.Split(address, ",")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return textutil.PadEnd(textutil.Truncate(strings.Join(parts, ","), width-1), width)
}

func (b PriceBoard) Row(e youpickit.PriceEntry) string {
	return textutil.PadEnd(FormatPrice(e.Price), b.Layout.PriceWidth) +
		FormatAddress(e.Address, b.Layout.AddressWidth)
}

func (b PriceBoard) footer(c *widget.Container) {
	c.AddSpacer(10)
	c.AddText(
		fmt.Sprintf("Updated: %s", b.Clock.Now().Format("15:04")),
		widget.Style{Font: b.Theme.FooterFont, Color: b.Theme.Secondary},
	)
}

// Present renders the entries, logo is the logo of the best entry's brand and
// may be nil.
func (b PriceBoard) Present(entries []youpickit.PriceEntry, logo *widget.Image) *widget.Widget {
	w := widget.New(b.Theme.Background)

	best := BestPrice(entries)
	if best < 0 {
		w.AddText(MessageNoPrices, widget.Style{Font: b.Theme.ErrorFont, Color: b.Theme.Text})
		w.AddSpacer(0)
		b.footer(&w.Container)
		return w
	}
	b.header(&w.Container, entries[best], logo)

	w.AddSpacer(3)
	w.AddText("Other Prices", widget.Style{Font: widget.BoldSystemFont(14), Color: b.Theme.Secondary})
	w.AddSpacer(5)

	lineStyle := widget.Style{Font: b.Theme.LineFont, Color: b.Theme.Text}
	for _, e := range OtherPrices(entries, best, b.Layout.MaxEntries) {
		w.AddText(b.Row(e), lineStyle)
	}

	b.footer(&w.Container)
	return w
}

func (b PriceBoard) header(c *widget.Container, best youpickit.PriceEntry, logo *widget.Image) {
	header := c.AddStack(widget.Horizontal, nil)

	infoSize := priceInfoSize
	info := header.AddStack(widget.Vertical, &infoSize)
	info.AddText("Best Price", widget.Style{Font: widget.BoldSystemFont(16), Color: b.Theme.Primary})
	info.AddText(FormatPrice(best.Price), widget.Style{Font: widget.BoldSystemFont(20), Color: b.Theme.Text})
	info.AddText(best.Brand, widget.Style{Font: widget.SystemFont(14), Color: b.Theme.Secondary})

	if logo == nil {
		return
	}
	header.AddSpacer(0)
	stackSize, imageSize := logoSize, logoSize
	right := header.AddStack(widget.Vertical, &stackSize)
	right.AddImage(*logo, &imageSize, logoCornerRadius)
}

func (b PriceBoard) Error(message string) *widget.Widget {
	return Error(b.Theme, message, b.footer)
}
