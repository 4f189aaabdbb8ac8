package htmlutil

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("homewidgets.lib.htmlutil")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`[\s\x{00a0}]+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || c == ' ' {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// NormalizeText strips non-printable characters and collapses all whitespace
// (no-break spaces included) into single spaces.
func NormalizeText(s string) string {
	s = removeNonPrintable(s)
	s = innerWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

type Option struct {
	Value string
	Text  string
}

// GetOptions reads the value attribute and the raw text of every <option> node
// in the selection, the text is left as-is so callers can apply their own rules.
func GetOptions(ctx context.Context, sel *goquery.Selection) []Option {
	_, span := tracer.Start(ctx, "GetOptions")
	defer span.End()

	options := []Option{}
	for _, n := range sel.Nodes {
		if n.Type != html.ElementNode || n.Data != "option" {
			continue
		}
		value := ""
		for _, a := range n.Attr {
			if a.Key == "value" {
				value = a.Val
				break
			}
		}

		text := GetText(n)
		options = append(options, Option{
			Value: value,
			Text:  text,
		})
		span.AddEvent("option", trace.WithAttributes(
			attribute.String("value", value),
			attribute.String("text", text),
		))
	}

	return options
}
