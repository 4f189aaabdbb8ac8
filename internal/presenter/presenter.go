// Package presenter lays fetched records out as widgets. Every row is built
// from fixed-width text so that it lines up in a monospaced font.
package presenter

import (
	"homewidgets/internal/widget"
)

// Theme holds the colors and fonts of one widget.
type Theme struct {
	Background widget.Color
	Text       widget.Color
	Primary    widget.Color
	Secondary  widget.Color
	Error      widget.Color

	LineFont   widget.Font
	FooterFont widget.Font
	ErrorFont  widget.Font
}

var (
	menlo         = widget.Font{Name: "Menlo", Size: 14}
	helvetica     = widget.Font{Name: "Helvetica", Size: 13}
	helveticaBold = widget.Font{Name: "Helvetica-Bold", Size: 14, Bold: true}
)

var DepartureTheme = Theme{
	Background: widget.Black,
	Text:       widget.White,
	Primary:    widget.White,
	Secondary:  widget.White,
	Error:      widget.Red,
	LineFont:   menlo,
	FooterFont: helvetica,
	ErrorFont:  helveticaBold,
}

var PriceTheme = Theme{
	Background: widget.White,
	Text:       widget.MustParseColor("#000000"),
	Primary:    widget.MustParseColor("#007AFF"),
	Secondary:  widget.MustParseColor("#666666"),
	Error:      widget.MustParseColor("#FF0000"),
	LineFont:   menlo,
	FooterFont: helvetica,
	ErrorFont:  helveticaBold,
}

// Error is the widget shown in place of the data when a run fails, footer adds
// the board's own footer below a flexible spacer.
func Error(theme Theme, message string, footer func(c *widget.Container)) *widget.Widget {
	w := widget.New(theme.Background)
	w.AddText(message, widget.Style{Font: theme.ErrorFont, Color: theme.Error})
	w.AddSpacer(0)
	footer(&w.Container)
	return w
}
