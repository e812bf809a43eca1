package yahoo

import (
	"math"
	"sort"
	"time"

	"github.com/guregu/null/v6"
	"github.com/tidwall/gjson"

	"github.com/newthinker/finsight/internal/statement"
)

// skipKeys are per-statement bookkeeping fields, not line items
var skipKeys = map[string]bool{
	"maxAge":  true,
	"endDate": true,
}

// parseStatements builds a table from a quoteSummary statement list. Each
// element is one period keyed by camelCase line item with {"raw","fmt"}
// cells. Periods are ordered most recent first; row order follows the
// provider's key order in the most recent period.
func parseStatements(name string, list gjson.Result) *statement.Table {
	periods := list.Array()
	if len(periods) == 0 {
		return nil
	}
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].Get("endDate.raw").Int() > periods[j].Get("endDate.raw").Int()
	})

	dates := make([]time.Time, len(periods))
	for i, p := range periods {
		dates[i] = time.Unix(p.Get("endDate.raw").Int(), 0).UTC()
	}

	t := statement.NewTable(name, dates)
	for i, p := range periods {
		p.ForEach(func(key, cell gjson.Result) bool {
			if skipKeys[key.String()] {
				return true
			}
			t.Set(statement.Humanize(key.String()), i, rawValue(cell))
			return true
		})
	}
	return t
}

// rawValue extracts the numeric "raw" member of a Yahoo cell. Empty cells
// ({}), strings and non-finite numbers are absent.
func rawValue(cell gjson.Result) null.Float {
	raw := cell.Get("raw")
	if raw.Type != gjson.Number {
		return null.Float{}
	}
	v := raw.Float()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}
