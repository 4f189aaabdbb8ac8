package youpickit

import (
	"sort"
	"strings"

	"homewidgets/lib/textutil"

	"github.com/antzucaro/matchr"
)

// minLogoSimilarity is the Jaro-Winkler score a brand needs to borrow the logo
// of a differently spelled key.
const minLogoSimilarity = 0.9

// LogoResolver maps the brand names found on the page to logo URLs.
type LogoResolver struct {
	exact map[string]string
	// normalized keys in sorted order, so that every lookup is deterministic
	keys       []string
	normalized map[string]string
}

func NewLogoResolver(logos map[string]string) LogoResolver {
	r := LogoResolver{
		exact:      make(map[string]string, len(logos)),
		normalized: make(map[string]string, len(logos)),
	}
	for brand, url := range logos {
		if url == "" {
			continue
		}
		r.exact[brand] = url
		key := textutil.NormalizeName(brand)
		if key == "" {
			continue
		}
		if _, exists := r.normalized[key]; exists {
			continue
		}
		r.normalized[key] = url
		r.keys = append(r.keys, key)
	}
	sort.Strings(r.keys)
	return r
}

// Resolve tries an exact match, then a case and whitespace insensitive match,
// then the longest key that prefixes the brand, then the most similar key.
func (r LogoResolver) Resolve(brand string) (string, bool) {
	if url, ok := r.exact[brand]; ok {
		return url, true
	}

	name := textutil.NormalizeName(brand)
	if name == "" {
		return "", false
	}
	if url, ok := r.normalized[name]; ok {
		return url, true
	}

	prefix := ""
	for _, key := range r.keys {
		if strings.HasPrefix(name, key) && len(key) > len(prefix) {
			prefix = key
		}
	}
	if prefix != "" {
		return r.normalized[prefix], true
	}

	best := ""
	bestScore := 0.0
	for _, key := range r.keys {
		score := matchr.JaroWinkler(name, key, false)
		if score > bestScore {
			best = key
			bestScore = score
		}
	}
	if best != "" && bestScore >= minLogoSimilarity {
		return r.normalized[best], true
	}
	return "", false
}
