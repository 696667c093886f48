// Package viewmodel derives the per-company and per-size price rollups shown on
// city pages. Every function is pure: inputs are never modified and results are
// never nil.
package viewmodel

import (
	"cmp"
	"slices"
	"strings"

	"github.com/octobees/rolloff-rates/internal/entity"
)

// CompanyPrice pairs a company with the lowest base price it charges in the city.
type CompanyPrice struct {
	Company entity.Company `json:"company"`
	Price   float64        `json:"price"`
}

// LowestPriceByCompany returns one entry per company referenced by a price row,
// ordered by the first row that mentions each company. Rows pointing at a
// company missing from the bundle are skipped.
func LowestPriceByCompany(data entity.CityData) []CompanyPrice {
	companies := indexCompanies(data.Companies)

	result := make([]CompanyPrice, 0)
	position := make(map[string]int)
	for _, price := range data.Prices {
		company, ok := companies[price.CompanyID]
		if !ok {
			continue
		}
		if i, seen := position[company.ID]; seen {
			if price.BasePrice < result[i].Price {
				result[i].Price = price.BasePrice
			}
			continue
		}
		position[company.ID] = len(result)
		result = append(result, CompanyPrice{Company: company, Price: price.BasePrice})
	}
	return result
}

// SizePrices holds a size and its price rows sorted by ascending base price.
type SizePrices struct {
	Size   entity.DumpsterSize    `json:"size"`
	Prices []entity.DumpsterPrice `json:"prices"`
}

// Range reports the cheapest and dearest rows of the sorted list.
func (s SizePrices) Range() PriceRange {
	if len(s.Prices) == 0 {
		return PriceRange{}
	}
	return PriceRange{
		Min: s.Prices[0].BasePrice,
		Max: s.Prices[len(s.Prices)-1].BasePrice,
	}
}

// SizesWithPrices returns, in catalogue order, every size that has at least one
// price row. Ties keep the order the rows had in the bundle.
func SizesWithPrices(data entity.CityData) []SizePrices {
	bySize := make(map[string][]entity.DumpsterPrice)
	for _, price := range data.Prices {
		bySize[price.SizeID] = append(bySize[price.SizeID], price)
	}

	result := make([]SizePrices, 0)
	emitted := make(map[string]struct{})
	for _, size := range data.DumpsterSizes {
		if _, dup := emitted[size.ID]; dup {
			continue
		}
		prices := bySize[size.ID]
		if len(prices) == 0 {
			continue
		}
		emitted[size.ID] = struct{}{}

		sorted := slices.Clone(prices)
		slices.SortStableFunc(sorted, func(a, b entity.DumpsterPrice) int {
			return cmp.Compare(a.BasePrice, b.BasePrice)
		})
		result = append(result, SizePrices{Size: size, Prices: sorted})
	}
	return result
}

// TableFilter narrows the price table. Zero values disable a filter.
type TableFilter struct {
	Company   string
	SizeYards int
}

// PriceRow is one company/size offering with the price row that backs it.
type PriceRow struct {
	Company entity.Company       `json:"company"`
	Size    entity.DumpsterSize  `json:"size"`
	Price   entity.DumpsterPrice `json:"price"`
}

// PriceTable joins every company with every size through the first price row
// matching both ids. Combinations without a price are left out.
func PriceTable(data entity.CityData, filter TableFilter) []PriceRow {
	company := strings.TrimSpace(filter.Company)

	rows := make([]PriceRow, 0)
	for _, c := range data.Companies {
		if company != "" && !strings.EqualFold(c.Name, company) {
			continue
		}
		for _, s := range data.DumpsterSizes {
			if filter.SizeYards > 0 && s.SizeYards != filter.SizeYards {
				continue
			}
			idx := slices.IndexFunc(data.Prices, func(p entity.DumpsterPrice) bool {
				return p.CompanyID == c.ID && p.SizeID == s.ID
			})
			if idx < 0 {
				continue
			}
			rows = append(rows, PriceRow{Company: c, Size: s, Price: data.Prices[idx]})
		}
	}
	return rows
}

// DefaultSizeOptions are offered on the quote form when the city has no priced sizes.
var DefaultSizeOptions = []int{10, 15, 20, 30, 40}

// SizeOptions lists the distinct yardages present in sizes, smallest first.
func SizeOptions(sizes []SizePrices) []int {
	seen := make(map[int]struct{}, len(sizes))
	options := make([]int, 0, len(sizes))
	for _, s := range sizes {
		if _, ok := seen[s.Size.SizeYards]; ok {
			continue
		}
		seen[s.Size.SizeYards] = struct{}{}
		options = append(options, s.Size.SizeYards)
	}
	if len(options) == 0 {
		return slices.Clone(DefaultSizeOptions)
	}
	slices.Sort(options)
	return options
}

func indexCompanies(companies []entity.Company) map[string]entity.Company {
	index := make(map[string]entity.Company, len(companies))
	for _, c := range companies {
		if _, ok := index[c.ID]; ok {
			continue
		}
		index[c.ID] = c
	}
	return index
}
