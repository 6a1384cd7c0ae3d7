package session

import (
	"time"

	"triagelens/domain/core"
	"triagelens/domain/table"
	"triagelens/internal/aggregate"
	"triagelens/internal/filter"
	"triagelens/internal/roles"
)

// View is a read-only snapshot of a State. Every derived figure is computed
// from Rows and Filters on demand. Source names the loaded rows; Pending
// names an upload still decoding or one that failed.
type View struct {
	Status     Status
	Source     string
	Pending    string
	Error      string
	Generation uint64
	LoadedAt   time.Time
	Rows       *table.RowSet
	Filters    filter.Set
}

// Loaded reports whether the view holds a dataset
func (v View) Loaded() bool {
	return v.Rows != nil
}

// Header returns the dataset header, nil when nothing is loaded
func (v View) Header() table.Header {
	if v.Rows == nil {
		return nil
	}
	return v.Rows.Header()
}

// Filtered returns the rows passing every active filter
func (v View) Filtered() *table.RowSet {
	if v.Rows == nil {
		return nil
	}
	return filter.Apply(v.Rows, v.Filters)
}

// Roles resolves every column role against the header
func (v View) Roles() roles.Map {
	return roles.ResolveAll(v.Header())
}

// Funnel computes the triage funnel over the filtered rows
func (v View) Funnel() aggregate.FunnelStats {
	return aggregate.Funnel(v.Filtered(), v.Roles())
}

// KPIs computes the headline numbers over the filtered rows
func (v View) KPIs() aggregate.KPIs {
	return aggregate.ComputeKPIs(v.Filtered(), v.Roles())
}

// ChartSpec builds the group-by for a chart request. A blank category falls
// back to the default chart column.
func (v View) ChartSpec(category, metric string) aggregate.Spec {
	if category == "" {
		category = roles.DefaultCategory(v.Header())
	}
	return aggregate.SpecFor(category, metric)
}

// Chart groups the filtered rows for a bar chart
func (v View) Chart(category, metric string) []aggregate.Bucket {
	return aggregate.GroupBy(v.Filtered(), v.ChartSpec(category, metric))
}

// Summary describes one column of the filtered rows
func (v View) Summary(column string) (aggregate.ColumnSummary, error) {
	if v.Rows == nil {
		return aggregate.ColumnSummary{}, core.ErrNoDataset
	}
	return aggregate.Summarize(v.Filtered(), column)
}

// Page returns one page of the filtered rows
func (v View) Page(index, size int) Page {
	return Paginate(v.Filtered(), index, size)
}
