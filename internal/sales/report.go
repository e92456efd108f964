package sales

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// PeriodTotals aggregates the sales of one calendar day or month.
type PeriodTotals struct {
	Period  string          `json:"period"`
	Sales   int             `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

// Daily groups sales by UTC day (YYYY-MM-DD), newest first. A non-empty
// month (YYYY-MM) keeps only the days of that month.
func Daily(sales []Sale, month string) []PeriodTotals {
	return aggregate(sales, "2006-01-02", month)
}

// Monthly groups sales by UTC month (YYYY-MM), newest first. A non-empty
// year keeps only the months of that year.
func Monthly(sales []Sale, year string) []PeriodTotals {
	return aggregate(sales, "2006-01", year)
}

func aggregate(sales []Sale, layout, prefix string) []PeriodTotals {
	prefix = strings.TrimSpace(prefix)
	byKey := make(map[string]*PeriodTotals)
	for _, s := range sales {
		key := s.Timestamp.UTC().Format(layout)
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}
		row, ok := byKey[key]
		if !ok {
			row = &PeriodTotals{Period: key}
			byKey[key] = row
		}
		row.Sales++
		row.Revenue = row.Revenue.Add(s.Total)
		row.Cost = row.Cost.Add(s.Cost)
		row.Profit = row.Profit.Add(s.Margin())
	}

	out := make([]PeriodTotals, 0, len(byKey))
	for _, row := range byKey {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period > out[j].Period })
	return out
}
