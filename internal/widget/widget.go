// Package widget is a host-neutral description of a home-screen widget: text
// lines, spacers, nested stacks and images. A Host turns the description into
// whatever the surface it owns can display.
package widget

import (
	"fmt"
	"strconv"
	"strings"
)

type Color struct {
	Hex string `json:"hex"`
}

// ParseColor accepts "#RRGGBB" (the leading # is optional).
func ParseColor(hex string) (Color, error) {
	_, _, _, err := Color{Hex: hex}.RGB()
	if err != nil {
		return Color{}, err
	}
	return Color{Hex: "#" + strings.ToUpper(strings.TrimPrefix(hex, "#"))}, nil
}

func MustParseColor(hex string) Color {
	c, err := ParseColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}

var (
	White = Color{Hex: "#FFFFFF"}
	Black = Color{Hex: "#000000"}
	Red   = Color{Hex: "#FF0000"}
)

func (c Color) RGB() (uint8, uint8, uint8, error) {
	hex := strings.TrimPrefix(c.Hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid color %q", c.Hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid color %q: %w", c.Hex, err)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

func (c Color) IsZero() bool {
	return c.Hex == ""
}

type Font struct {
	Name string  `json:"name,omitempty"`
	Size float64 `json:"size"`
	Bold bool    `json:"bold,omitempty"`
}

// SystemFont mirrors the host's system font, Name is left empty.
func SystemFont(size float64) Font {
	return Font{Size: size}
}

func BoldSystemFont(size float64) Font {
	return Font{Size: size, Bold: true}
}

type Style struct {
	Font  Font  `json:"font"`
	Color Color `json:"color"`
}

type Kind string

const (
	KindText   Kind = "text"
	KindSpacer Kind = "spacer"
	KindStack  Kind = "stack"
	KindImage  Kind = "image"
)

type Layout string

const (
	Horizontal Layout = "horizontal"
	Vertical   Layout = "vertical"
)

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Image struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	// Width and Height are the decoded pixel size of Data.
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Data   []byte `json:"data,omitempty"`
}

type Element struct {
	Kind Kind `json:"kind"`

	Text  string `json:"text,omitempty"`
	Style *Style `json:"style,omitempty"`

	// Length of a spacer, 0 means it takes up all available space.
	Length int `json:"length,omitempty"`

	Layout   Layout    `json:"layout,omitempty"`
	Children Container `json:"children,omitempty"`

	Image        *Image `json:"image,omitempty"`
	CornerRadius int    `json:"corner_radius,omitempty"`

	// Size is the fixed size of a stack or an image, nil means sized to fit.
	Size *Size `json:"size,omitempty"`
}

type Container struct {
	Elements []*Element `json:"elements"`
}

func (c *Container) add(e *Element) *Element {
	c.Elements = append(c.Elements, e)
	return e
}

func (c *Container) AddText(text string, style Style) *Element {
	return c.add(&Element{Kind: KindText, Text: text, Style: &style})
}

// AddSpacer adds a spacer of the given length, 0 adds a flexible spacer.
func (c *Container) AddSpacer(length int) *Element {
	return c.add(&Element{Kind: KindSpacer, Length: length})
}

// AddStack adds a nested stack and returns its container so children can be added.
func (c *Container) AddStack(layout Layout, size *Size) *Container {
	e := c.add(&Element{Kind: KindStack, Layout: layout, Size: size})
	return &e.Children
}

func (c *Container) AddImage(image Image, size *Size, cornerRadius int) *Element {
	return c.add(&Element{Kind: KindImage, Image: &image, Size: size, CornerRadius: cornerRadius})
}

// Texts returns the text of every text element in document order, nested stacks included.
func (c Container) Texts() []string {
	var out []string
	for _, e := range c.Elements {
		switch e.Kind {
		case KindText:
			out = append(out, e.Text)
		case KindStack:
			out = append(out, e.Children.Texts()...)
		}
	}
	return out
}

type Widget struct {
	Background Color `json:"background"`
	Container
}

func New(background Color) *Widget {
	return &Widget{Background: background}
}
