package viewmodel

import (
	"encoding/json"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders an amount in dollars with two decimals and thousands separators.
func FormatPrice(amount float64) string {
	if amount < 0 {
		return "-$" + pricePrinter.Sprintf("%.2f", -amount)
	}
	return "$" + pricePrinter.Sprintf("%.2f", amount)
}

// PriceRange is the span of base prices offered for one size.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// String renders the range as "$350.00–$400.00".
func (r PriceRange) String() string {
	return FormatPrice(r.Min) + "–" + FormatPrice(r.Max)
}

// MarshalJSON adds the display form next to the raw bounds.
func (r PriceRange) MarshalJSON() ([]byte, error) {
	type bounds PriceRange
	return json.Marshal(struct {
		bounds
		Display string `json:"display"`
	}{bounds: bounds(r), Display: r.String()})
}
