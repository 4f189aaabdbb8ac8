package widget

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Host is the surface a widget is handed to, once a run is over Complete must
// be called exactly once, whether or not a widget was set.
type Host interface {
	SetWidget(w *Widget) error
	Complete()
}

// TextHost renders widgets as plain lines of text, optionally colored with
// ANSI escape codes.
type TextHost struct {
	out    io.Writer
	color  bool
	widget *Widget
}

func NewTextHost(out io.Writer, color bool) *TextHost {
	return &TextHost{out: out, color: color}
}

func (h *TextHost) SetWidget(w *Widget) error {
	if w == nil {
		return fmt.Errorf("widget is nil")
	}
	h.widget = w
	return nil
}

func (h *TextHost) Complete() {
	if h.widget == nil {
		return
	}
	lines := h.Render(h.widget)
	h.widget = nil
	_, err := io.WriteString(h.out, strings.Join(lines, "\n")+"\n")
	if err != nil {
		slog.Warn("failed to write widget", "err", err)
	}
}

// Render lays the widget out into lines.
func (h *TextHost) Render(w *Widget) []string {
	r := textRenderer{color: h.color, background: w.Background}
	return r.vertical(w.Container)
}

type textRenderer struct {
	color      bool
	background Color
}

func (r textRenderer) text(e *Element) string {
	if !r.color || e.Style == nil {
		return e.Text
	}
	colors := r.colors(e.Style)
	if len(colors) == 0 {
		return e.Text
	}
	return colors.Sprint(e.Text)
}

func (r textRenderer) colors(style *Style) text.Colors {
	var colors text.Colors
	if style.Font.Bold {
		colors = append(colors, text.Bold)
	}
	if style.Color.IsZero() || style.Color == r.background {
		return colors
	}
	fg, ok := NearestTerminalColor(style.Color)
	if ok {
		colors = append(colors, fg)
	}
	return colors
}

func imageLine(e *Element) string {
	if e.Image == nil {
		return "[image]"
	}
	width, height := e.Image.Width, e.Image.Height
	if e.Size != nil {
		width, height = e.Size.Width, e.Size.Height
	}
	return fmt.Sprintf("[image %dx%d %s]", width, height, e.Image.URL)
}

func (r textRenderer) element(e *Element) []string {
	switch e.Kind {
	case KindText:
		return []string{r.text(e)}
	case KindSpacer:
		if e.Length == 0 || e.Length >= 10 {
			return []string{""}
		}
		return nil
	case KindImage:
		return []string{imageLine(e)}
	case KindStack:
		if e.Layout == Horizontal {
			return r.horizontal(e.Children)
		}
		return r.vertical(e.Children)
	}
	return nil
}

func (r textRenderer) vertical(c Container) []string {
	var lines []string
	for _, e := range c.Elements {
		lines = append(lines, r.element(e)...)
	}
	return lines
}

const columnGap = "  "

// horizontal renders every child as a column and places the columns side by side.
func (r textRenderer) horizontal(c Container) []string {
	var columns [][]string
	for _, e := range c.Elements {
		if e.Kind == KindSpacer {
			continue
		}
		column := r.element(e)
		if len(column) > 0 {
			columns = append(columns, column)
		}
	}

	height := 0
	widths := make([]int, len(columns))
	for i, column := range columns {
		if len(column) > height {
			height = len(column)
		}
		for _, line := range column {
			width := text.RuneWidthWithoutEscSequences(line)
			if width > widths[i] {
				widths[i] = width
			}
		}
	}

	lines := make([]string, height)
	for row := 0; row < height; row++ {
		var line strings.Builder
		for i, column := range columns {
			cell := ""
			if row < len(column) {
				cell = column[row]
			}
			if i < len(columns)-1 {
				cell = text.Pad(cell, widths[i], ' ') + columnGap
			}
			line.WriteString(cell)
		}
		lines[row] = strings.TrimRight(line.String(), " ")
	}
	return lines
}

type paletteEntry struct {
	r, g, b uint8
	color   text.Color
}

// xterm default values of the 16 basic colors
var palette = []paletteEntry{
	{0, 0, 0, text.FgBlack},
	{205, 0, 0, text.FgRed},
	{0, 205, 0, text.FgGreen},
	{205, 205, 0, text.FgYellow},
	{0, 0, 238, text.FgBlue},
	{205, 0, 205, text.FgMagenta},
	{0, 205, 205, text.FgCyan},
	{229, 229, 229, text.FgWhite},
	{127, 127, 127, text.FgHiBlack},
	{255, 0, 0, text.FgHiRed},
	{0, 255, 0, text.FgHiGreen},
	{255, 255, 0, text.FgHiYellow},
	{92, 92, 255, text.FgHiBlue},
	{255, 0, 255, text.FgHiMagenta},
	{0, 255, 255, text.FgHiCyan},
	{255, 255, 255, text.FgHiWhite},
}

// NearestTerminalColor maps a color onto the closest basic ANSI foreground.
// Pure black and pure white are left to the terminal's default foreground.
func NearestTerminalColor(c Color) (text.Color, bool) {
	r, g, b, err := c.RGB()
	if err != nil {
		return 0, false
	}
	if (r == 0 && g == 0 && b == 0) || (r == 255 && g == 255 && b == 255) {
		return 0, false
	}

	best := palette[0]
	bestDistance := -1
	for _, p := range palette {
		dr := int(r) - int(p.r)
		dg := int(g) - int(p.g)
		db := int(b) - int(p.b)
		distance := dr*dr + dg*dg + db*db
		if bestDistance < 0 || distance < bestDistance {
			best = p
			bestDistance = distance
		}
	}
	return best.color, true
}

// JSONHost writes the widget tree as JSON so a real widget host can draw it.
type JSONHost struct {
	out    io.Writer
	widget *Widget
}

func NewJSONHost(out io.Writer) *JSONHost {
	return &JSONHost{out: out}
}

func (h *JSONHost) SetWidget(w *Widget) error {
	if w == nil {
		return fmt.Errorf("widget is nil")
	}
	h.widget = w
	return nil
}

func (h *JSONHost) Complete() {
	if h.widget == nil {
		return
	}
	encoder := json.NewEncoder(h.out)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(h.widget)
	h.widget = nil
	if err != nil {
		slog.Warn("failed to encode widget", "err", err)
	}
}
