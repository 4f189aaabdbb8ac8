package presenter

import (
	"fmt"
	"strings"

	"homewidgets/internal/components/chrono"
	"homewidgets/internal/kvg"
	"homewidgets/internal/widget"
	"homewidgets/lib/textutil"
)

type DepartureLayout struct {
	LineWidth        int
	DestinationWidth int
	TimeWidth        int
	MaxEntries       int
}

var DefaultDepartureLayout = DepartureLayout{
	LineWidth:        6,
	DestinationWidth: 14,
	TimeWidth:        14,
	MaxEntries:       6,
}

const (
	MessageNoDepartures = "No departures available"
	MissingTime         = "--:--"
	missingValue        = "--"
)

// DepartureBoard renders a table of the next departures of a stop.
type DepartureBoard struct {
	Layout DepartureLayout
	Theme  Theme
	Clock  chrono.API
}

// FormatCountdown formats the seconds until departure, 0 means unknown.
func FormatCountdown(seconds int) string {
	if seconds == 0 {
		return missingValue
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm", seconds/60)
}

func MapStatus(status string) string {
	switch status {
	case "":
		return missingValue
	case "PLANNED":
		return "P"
	case "PREDICTED":
		return "PR"
	case "STOPPING":
		return "S"
	case "DEPARTED":
		return "D"
	}
	return status
}

func (b DepartureBoard) Header() string {
	return textutil.PadEnd("Line", b.Layout.LineWidth) +
		textutil.PadEnd("Destination", b.Layout.DestinationWidth) +
		textutil.PadEnd("Time", b.Layout.TimeWidth) +
		"Status"
}

func (b DepartureBoard) Row(d kvg.Departure) string {
	actualTime := d.ActualTime
	if actualTime == "" {
		actualTime = MissingTime
	}

	return textutil.PadEnd(d.PatternText, b.Layout.LineWidth) +
		textutil.Column(strings.TrimSpace(d.Direction), b.Layout.DestinationWidth) +
		textutil.PadEnd(fmt.Sprintf("%s (%s)", actualTime, FormatCountdown(d.ActualRelativeTime)), b.Layout.TimeWidth) +
		MapStatus(d.Status)
}

func (b DepartureBoard) clock() string {
	return b.Clock.Now().Format("15:04:05")
}

func (b DepartureBoard) footer(c *widget.Container, label string) {
	c.AddText(
		fmt.Sprintf("%s: %s", label, b.clock()),
		widget.Style{Font: b.Theme.FooterFont, Color: b.Theme.Text},
	)
}

// Present renders at most Layout.MaxEntries departures in the given order.
func (b DepartureBoard) Present(departures []kvg.Departure) *widget.Widget {
	w := widget.New(b.Theme.Background)

	if len(departures) == 0 {
		w.AddText(MessageNoDepartures, widget.Style{Font: b.Theme.ErrorFont, Color: b.Theme.Text})
		w.AddSpacer(0)
		b.footer(&w.Container, "Last update")
		return w
	}

	lineStyle := widget.Style{Font: b.Theme.LineFont, Color: b.Theme.Text}
	w.AddText(b.Header(), lineStyle)
	w.AddSpacer(5)

	for i, d := range departures {
		if i >= b.Layout.MaxEntries {
			break
		}
		w.AddText(b.Row(d), lineStyle)
	}

	w.AddSpacer(10)
	b.footer(&w.Container, "Updated")
	return w
}

func (b DepartureBoard) Error(message string) *widget.Widget {
	return Error(b.Theme, message, func(c *widget.Container) {
		b.footer(c, "Updated")
	})
}
