package aggregate

import (
	"triagelens/domain/core"
	"triagelens/domain/table"

	"github.com/montanaflynn/stats"
)

// ColumnSummary describes the values of one column
type ColumnSummary struct {
	Column   string  `json:"column"`
	Rows     int     `json:"rows"`
	Empty    int     `json:"empty"`
	Distinct int     `json:"distinct"`
	Numeric  int     `json:"numeric"`
	Sum      float64 `json:"sum"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	StdDev   float64 `json:"std_dev"`
}

// Summarize profiles a column. Numeric statistics cover only the cells that
// coerce to numbers and stay zero when there are none.
func Summarize(rows *table.RowSet, column string) (ColumnSummary, error) {
	if rows == nil || !rows.HasColumn(column) {
		return ColumnSummary{}, core.NewColumnNotFoundError(column)
	}

	summary := ColumnSummary{Column: column, Rows: rows.Len()}
	distinct := make(map[string]struct{})
	var data stats.Float64Data

	for _, cell := range rows.Column(column) {
		if cell.IsEmpty() {
			summary.Empty++
			continue
		}
		distinct[cell.String()] = struct{}{}
		if f, ok := cell.Float(); ok {
			data = append(data, f)
		}
	}
	summary.Distinct = len(distinct)
	summary.Numeric = data.Len()

	if data.Len() == 0 {
		return summary, nil
	}

	// stats only errors on empty input, which is ruled out above
	summary.Sum, _ = data.Sum()
	summary.Mean, _ = data.Mean()
	summary.Median, _ = data.Median()
	summary.Min, _ = data.Min()
	summary.Max, _ = data.Max()
	summary.StdDev, _ = data.StandardDeviation()
	return summary, nil
}
