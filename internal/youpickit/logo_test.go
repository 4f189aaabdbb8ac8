package youpickit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogoResolver(t *testing.T) {
	resolver := NewLogoResolver(map[string]string{
		"Netto":     "https://logos/netto.png",
		"Rewe":      "https://logos/rewe.png",
		"Edeka":     "https://logos/edeka.png",
		"Aldi Nord": "https://logos/aldi-nord.png",
		"Lidl":      "https://logos/lidl.png",
		"Penny":     "",
	})

	testCases := []struct {
		brand    string
		expected string
	}{
		{brand: "Netto", expected: "https://logos/netto.png"},
		{brand: "  REWE ", expected: "https://logos/rewe.png"},
		{brand: "aldi nord", expected: "https://logos/aldi-nord.png"},
		{brand: "Netto Marken-Discount", expected: "https://logos/netto.png"},
		{brand: "Edekka", expected: "https://logos/edeka.png"},
		{brand: "Penny"},
		{brand: "Kaufland"},
		{brand: ""},
	}

	for _, test := range testCases {
		t.Run(test.brand, func(t *testing.T) {
			url, ok := resolver.Resolve(test.brand)
			require.Equal(t, test.expected != "", ok)
			require.Equal(t, test.expected, url)
		})
	}
}
