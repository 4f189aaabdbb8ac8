package youpickit

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"homewidgets/internal/components/telemetry"
	"homewidgets/lib/htmlutil"
	"homewidgets/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	report_dom_extractor_extract = "dom_extractor.extract"
)

type PriceEntry struct {
	// Price is in euros.
	Price   float64 `json:"price"`
	Brand   string  `json:"brand"`
	Address string  `json:"address"`
}

// Extractor pulls the offers out of a product page. Malformed offers are
// dropped, an extractor never fails.
type Extractor interface {
	Extract(ctx context.Context, page string) []PriceEntry
}

const (
	ExtractorRegex = "regex"
	ExtractorDOM   = "dom"
)

// NewExtractor returns the extractor registered under the given name, an empty
// name selects the regex extractor.
func NewExtractor(name string, tel telemetry.API) (Extractor, error) {
	switch name {
	case "", ExtractorRegex:
		return RegexExtractor{}, nil
	case ExtractorDOM:
		return NewDOMExtractor(tel), nil
	}
	return nil, fmt.Errorf("unknown extractor %q", name)
}

var placeholders = []string{
	"-Bitte auswählen-",
	"-please select-",
}

var addressRegex = regexp.MustCompile(`\((.*?)\)`)

// newEntry applies the rules shared by every extractor, all of its inputs are
// expected to have html entities decoded already.
func newEntry(value, price, brand string) (PriceEntry, bool) {
	for _, p := range placeholders {
		if strings.Contains(value, p) {
			return PriceEntry{}, false
		}
	}

	groups := addressRegex.FindStringSubmatch(value)
	if len(groups) < 2 {
		return PriceEntry{}, false
	}
	address := textutil.CollapseWhitespace(groups[1])

	price = strings.Join(strings.Fields(price), "")
	price = strings.Replace(price, ",", ".", 1)
	brand = textutil.CollapseWhitespace(brand)
	if price == "" || brand == "" || address == "" {
		return PriceEntry{}, false
	}

	parsed, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return PriceEntry{}, false
	}

	return PriceEntry{
		Price:   parsed,
		Brand:   brand,
		Address: address,
	}, true
}

// RegexExtractor matches the price box markup textually, it stops at the
// first closing </div> after the start of the price box.
type RegexExtractor struct{}

var (
	priceBoxRegex = regexp.MustCompile(`<div id="senderPriceBox"[\s\S]*?</div>`)
	optionRegex   = regexp.MustCompile(`<option value="([^"]+)"[^>]*>\s*([\d,]+)\s*(?:&nbsp;)*\s*([^<]+)\s*</option>`)
)

func (RegexExtractor) Extract(_ context.Context, page string) []PriceEntry {
	entries := []PriceEntry{}

	box := priceBoxRegex.FindString(page)
	if box == "" {
		return entries
	}

	for _, groups := range optionRegex.FindAllStringSubmatch(box, -1) {
		brand := strings.ReplaceAll(groups[3], "&nbsp;", "")
		entry, ok := newEntry(
			html.UnescapeString(groups[1]),
			groups[2],
			html.UnescapeString(brand),
		)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// DOMExtractor parses the page and reads the <option> elements of the price
// box, nested markup inside the box does not confuse it.
type DOMExtractor struct {
	tel telemetry.API
}

func NewDOMExtractor(tel telemetry.API) DOMExtractor {
	return DOMExtractor{tel: tel}
}

var optionTextRegex = regexp.MustCompile(`^[\s\x{00a0}]*([\d,]+)[\s\x{00a0}]*([\s\S]*)$`)

func (e DOMExtractor) Extract(ctx context.Context, page string) []PriceEntry {
	entries := []PriceEntry{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		if e.tel != nil {
			e.tel.ReportWarning(report_dom_extractor_extract, err)
		}
		return entries
	}

	options := htmlutil.GetOptions(ctx, doc.Find("div#senderPriceBox").First().Find("option"))
	for _, option := range options {
		groups := optionTextRegex.FindStringSubmatch(option.Text)
		if len(groups) < 3 {
			continue
		}
		brand := htmlutil.NormalizeText(strings.ReplaceAll(groups[2], "\u00a0", ""))
		entry, ok := newEntry(option.Value, groups[1], brand)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}
