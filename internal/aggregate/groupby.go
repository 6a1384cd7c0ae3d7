package aggregate

import (
	"sort"
	"strings"

	"triagelens/domain/table"
)

// MaxBuckets caps the number of chart categories returned by GroupBy
const MaxBuckets = 15

// UnknownCategory labels rows whose category cell is blank
const UnknownCategory = "Unknown"

// CountMetric is the metric name that selects row counting
const CountMetric = "Count"

// Mode selects how GroupBy accumulates values per category
type Mode string

const (
	ModeCount Mode = "count"
	ModeSum   Mode = "sum"
)

// Spec describes a group-by: the category column, the mode, and for
// ModeSum the column whose values are added up.
type Spec struct {
	Category    string `json:"category"`
	Mode        Mode   `json:"mode"`
	ValueColumn string `json:"value_column,omitempty"`
}

// SpecFor builds a Spec from a chart metric name: "" or "Count" counts rows,
// any other name sums that column.
func SpecFor(category, metric string) Spec {
	if metric == "" || strings.EqualFold(metric, CountMetric) {
		return Spec{Category: category, Mode: ModeCount}
	}
	return Spec{Category: category, Mode: ModeSum, ValueColumn: metric}
}

// Bucket is one chart bar
type Bucket struct {
	Category string  `json:"name"`
	Value    float64 `json:"value"`
}

// GroupBy counts or sums rows per category value. Blank categories are
// reported as "Unknown". Buckets are sorted by value, largest first, ties in
// first-seen order, and at most MaxBuckets are returned.
func GroupBy(rows *table.RowSet, spec Spec) []Bucket {
	if spec.Category == "" || rows.Len() == 0 {
		return []Bucket{}
	}

	catIdx := rows.Index(spec.Category)
	valIdx := rows.Index(spec.ValueColumn)

	totals := make(map[string]float64)
	order := make([]string, 0)
	for i := 0; i < rows.Len(); i++ {
		row := rows.Row(i)
		key := row.At(catIdx).String()
		if strings.TrimSpace(key) == "" {
			key = UnknownCategory
		}
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}

		if spec.Mode == ModeSum {
			totals[key] += row.At(valIdx).FloatOrZero()
		} else {
			totals[key]++
		}
	}

	buckets := make([]Bucket, len(order))
	for i, key := range order {
		buckets[i] = Bucket{Category: key, Value: totals[key]}
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Value > buckets[j].Value
	})

	if len(buckets) > MaxBuckets {
		buckets = buckets[:MaxBuckets]
	}
	return buckets
}
