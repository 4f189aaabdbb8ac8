package youpickit

import (
	"context"
	"testing"

	"homewidgets/internal/components/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const productPage = `<!DOCTYPE html>
<html>
<head><title>Coca-Cola Limonade PET-Flasche</title></head>
<body>
<div class="product">
	<div id="senderPriceBox" class="priceBox">
		<select name="sender" id="senderSelect">
			<option value="-Bitte auswählen-" selected="selected">-Bitte auswählen-</option>
			<option value="0,00 -Bitte auswählen- (Kiel)">0,00&nbsp;-</option>
			<option value="Rewe (Holtenauer Straße 55, 24105 Kiel, Deutschland)">1,29&nbsp;Rewe</option>
			<option value="Netto (Kronshagener Weg 2, 24103 Kiel, Deutschland)" data-id="7">0,99&nbsp;Netto</option>
		</select>
	</div>
	<div class="footer">2,49&nbsp;Edeka</div>
</div>
</body>
</html>`

func extractors() map[string]Extractor {
	return map[string]Extractor{
		ExtractorRegex: RegexExtractor{},
		ExtractorDOM:   NewDOMExtractor(&telemetry.Recorder{}),
	}
}

func TestExtract(t *testing.T) {
	expected := []PriceEntry{
		{Price: 1.29, Brand: "Rewe", Address: "Holtenauer Straße 55, 24105 Kiel, Deutschland"},
		{Price: 0.99, Brand: "Netto", Address: "Kronshagener Weg 2, 24103 Kiel, Deutschland"},
	}

	for name, extractor := range extractors() {
		t.Run(name, func(t *testing.T) {
			entries := extractor.Extract(context.Background(), productPage)
			diff := cmp.Diff(expected, entries)
			if diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestExtractEdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		page     string
		expected []PriceEntry
	}{
		{
			name:     "no price box",
			page:     `<html><body><select><option value="Lidl (Kiel)">0,89&nbsp;Lidl</option></select></body></html>`,
			expected: []PriceEntry{},
		},
		{
			name:     "empty price box",
			page:     `<div id="senderPriceBox"></div>`,
			expected: []PriceEntry{},
		},
		{
			name: "whitespace is collapsed",
			page: `<div id="senderPriceBox"><select>` +
				`<option value="Edeka (Holtenauer   Straße 1,  Kiel)">  2,49 &nbsp;  Edeka   Center </option>` +
				`</select></div>`,
			expected: []PriceEntry{
				{Price: 2.49, Brand: "Edeka Center", Address: "Holtenauer Straße 1, Kiel"},
			},
		},
		{
			name: "no separator between price and brand",
			page: `<div id="senderPriceBox"><select>` +
				`<option value="Lidl (Eckernförder Str. 219, Kiel)">0,89 Lidl</option>` +
				`</select></div>`,
			expected: []PriceEntry{
				{Price: 0.89, Brand: "Lidl", Address: "Eckernförder Str. 219, Kiel"},
			},
		},
		{
			name: "malformed options are dropped",
			page: `<div id="senderPriceBox"><select>` +
				`<option value="Lidl without address">0,89&nbsp;Lidl</option>` +
				`<option value="Aldi Nord ()">0,79&nbsp;Aldi Nord</option>` +
				`<option value="Penny (Kiel)">1,2,9&nbsp;Penny</option>` +
				`<option value="Rewe (Kiel)">&nbsp;Rewe</option>` +
				`<option value="Netto (Kiel)">0,99&nbsp;</option>` +
				`<option value="Aldi Nord (Wik, Kiel)">0,79&nbsp;Aldi Nord</option>` +
				`</select></div>`,
			expected: []PriceEntry{
				{Price: 0.79, Brand: "Aldi Nord", Address: "Wik, Kiel"},
			},
		},
		{
			name: "duplicates are kept",
			page: `<div id="senderPriceBox"><select>` +
				`<option value="Netto (A)">0,99&nbsp;Netto</option>` +
				`<option value="Netto (A)">0,99&nbsp;Netto</option>` +
				`</select></div>`,
			expected: []PriceEntry{
				{Price: 0.99, Brand: "Netto", Address: "A"},
				{Price: 0.99, Brand: "Netto", Address: "A"},
			},
		},
		{
			name: "entities are decoded",
			page: `<div id="senderPriceBox"><select>` +
				`<option value="Rewe (Gaarden &amp; Ost, Kiel)">1,19&nbsp;Rewe &amp; Co</option>` +
				`</select></div>`,
			expected: []PriceEntry{
				{Price: 1.19, Brand: "Rewe & Co", Address: "Gaarden & Ost, Kiel"},
			},
		},
		{
			name: "english placeholder",
			page: `<div id="senderPriceBox"><select>` +
				`<option value="-please select- (Kiel)">0,00&nbsp;x</option>` +
				`</select></div>`,
			expected: []PriceEntry{},
		},
	}

	for _, test := range testCases {
		for name, extractor := range extractors() {
			t.Run(test.name+"/"+name, func(t *testing.T) {
				entries := extractor.Extract(context.Background(), test.page)
				diff := cmp.Diff(test.expected, entries)
				if diff != "" {
					t.Fatal(diff)
				}
			})
		}
	}
}

func TestExtractNestedDiv(t *testing.T) {
	page := `<div id="senderPriceBox">` +
		`<div class="head">Preise</div>` +
		`<select><option value="Lidl (Kiel)">0,89&nbsp;Lidl</option></select>` +
		`</div>`

	// the regex stops at the first closing tag
	require.Empty(t, RegexExtractor{}.Extract(context.Background(), page))

	entries := NewDOMExtractor(&telemetry.Recorder{}).Extract(context.Background(), page)
	require.Equal(t, []PriceEntry{{Price: 0.89, Brand: "Lidl", Address: "Kiel"}}, entries)
}

func TestDOMExtractorDropsInvisibleCharacters(t *testing.T) {
	page := `<div id="senderPriceBox"><select>` +
		"<option value=\"Lidl (Kiel)\">0,89&nbsp;Li\u200bdl\u200b</option>" +
		`</select></div>`

	entries := NewDOMExtractor(&telemetry.Recorder{}).Extract(context.Background(), page)
	require.Equal(t, []PriceEntry{{Price: 0.89, Brand: "Lidl", Address: "Kiel"}}, entries)
}

func TestNewExtractor(t *testing.T) {
	tel := &telemetry.Recorder{}

	extractor, err := NewExtractor("", tel)
	require.NoError(t, err)
	require.IsType(t, RegexExtractor{}, extractor)

	extractor, err = NewExtractor(ExtractorDOM, tel)
	require.NoError(t, err)
	require.IsType(t, DOMExtractor{}, extractor)

	_, err = NewExtractor("xpath", tel)
	require.Error(t, err)
}
