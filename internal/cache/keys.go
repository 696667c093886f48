package cache

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// KeyPrefix marks every key written by the rates client so a clear can target them all.
const KeyPrefix = "rolloff_rates_cache_"

// CollectionKey returns the key for a whole-collection endpoint such as "companies".
func CollectionKey(name string) string {
	return KeyPrefix + name
}

// CityKey returns the key for a city bundle. Different spellings of the same
// city and state map to the same key.
func CityKey(city, state string) string {
	key := KeyPrefix + "city_" + Slug(city)
	if s := Slug(state); s != "" {
		key += "_" + s
	}
	return key
}

// Slug lowercases, strips diacritics and collapses every run of characters that
// are not letters or digits into a single hyphen.
func Slug(value string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripper, value)
	if err != nil {
		folded = value
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingDash = true
			continue
		}
		if pendingDash && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingDash = false
		b.WriteRune(r)
	}
	return b.String()
}
