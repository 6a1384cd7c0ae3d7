package session

import (
	"fmt"
	"math"
	"testing"

	"triagelens/domain/core"
	"triagelens/domain/table"
	"triagelens/internal/aggregate"
	"triagelens/internal/errors"
	"triagelens/internal/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesRows() *table.RowSet {
	return table.FromStrings("decoded", []string{"ID", "Product", "Category", "Revenue"}, [][]string{
		{"1", "Widget A", "Gadgets", "1000"},
		{"2", "Widget B", "Gadgets", "1200"},
		{"3", "Tool X", "Tools", "800"},
		{"4", "Tool Y", "Tools", "1500"},
		{"5", "Gizmo", "", "300"},
	})
}

func loaded(t *testing.T) *State {
	t.Helper()
	s := NewState()
	gen := s.BeginLoad("sales.xlsx")
	require.True(t, s.CompleteLoad(gen, salesRows(), nil))
	return s
}

func TestLoadLifecycle(t *testing.T) {
	s := NewState()
	assert.Equal(t, StatusIdle, s.View().Status)
	assert.False(t, s.View().Loaded())

	gen := s.BeginLoad("sales.xlsx")
	v := s.View()
	assert.Equal(t, StatusParsing, v.Status)
	assert.Equal(t, "", v.Source)
	assert.Equal(t, "sales.xlsx", v.Pending)

	require.True(t, s.CompleteLoad(gen, salesRows(), nil))
	v = s.View()
	assert.Equal(t, StatusReady, v.Status)
	assert.Equal(t, "sales.xlsx", v.Source)
	assert.Equal(t, "", v.Pending)
	assert.Equal(t, "sales.xlsx", v.Rows.Source(), "source is the upload name")
	assert.Equal(t, 5, v.Rows.Len())
	assert.False(t, v.LoadedAt.IsZero())
}

func TestStaleLoadIsDropped(t *testing.T) {
	s := NewState()
	first := s.BeginLoad("old.xlsx")
	second := s.BeginLoad("new.xlsx")

	assert.False(t, s.CompleteLoad(first, salesRows(), nil))
	assert.Equal(t, StatusParsing, s.View().Status)

	assert.True(t, s.CompleteLoad(second, salesRows(), nil))
	assert.Equal(t, "new.xlsx", s.View().Rows.Source())
}

func TestFailedLoadKeepsPreviousRows(t *testing.T) {
	s := loaded(t)

	gen := s.BeginLoad("broken.xlsx")
	require.True(t, s.CompleteLoad(gen, nil, errors.ParseError("empty sheet")))

	v := s.View()
	assert.Equal(t, StatusError, v.Status)
	assert.Equal(t, "empty sheet", v.Error)
	assert.Equal(t, 5, v.Rows.Len())
	assert.Equal(t, "sales.xlsx", v.Source, "failed upload does not rename the rows")
	assert.Equal(t, "sales.xlsx", v.Rows.Source())
	assert.Equal(t, "broken.xlsx", v.Pending)
}

func TestNilRowsWithoutErrorIsAParseError(t *testing.T) {
	s := NewState()
	gen := s.BeginLoad("x.xlsx")
	s.CompleteLoad(gen, nil, nil)
	assert.Equal(t, StatusError, s.View().Status)
	assert.Equal(t, "empty sheet", s.View().Error)
}

func TestNewDataClearsFilters(t *testing.T) {
	s := loaded(t)
	s.AddFilter(filter.NewRule("Category", filter.OpEquals, "tools"))
	require.Equal(t, 1, s.View().Filters.Len())

	gen := s.BeginLoad("again.xlsx")
	s.CompleteLoad(gen, salesRows(), nil)
	assert.Equal(t, 0, s.View().Filters.Len())
}

func TestResetInvalidatesInFlightLoad(t *testing.T) {
	s := loaded(t)
	gen := s.BeginLoad("late.xlsx")
	s.Reset()

	assert.False(t, s.CompleteLoad(gen, salesRows(), nil))
	v := s.View()
	assert.Equal(t, StatusIdle, v.Status)
	assert.Nil(t, v.Rows)
	assert.Equal(t, "", v.Source)
	assert.Equal(t, "", v.Pending)
}

func TestFilterMutations(t *testing.T) {
	s := loaded(t)

	tools := s.AddFilter(filter.NewRule("Category", filter.OpEquals, "tools"))
	assert.Equal(t, 2, s.View().Filtered().Len())

	noID := s.AddFilter(filter.Rule{Field: "Revenue", Operator: filter.OpGreater, Value: table.Number(1000)})
	assert.NotEmpty(t, noID.ID)
	assert.Equal(t, 1, s.View().Filtered().Len())

	gadgets := table.Text("gadgets")
	updated, err := s.UpdateFilter(tools.ID, filter.RuleUpdate{Value: &gadgets})
	require.NoError(t, err)
	assert.Equal(t, "gadgets", updated.Value.String())
	assert.Equal(t, "2", s.View().Filtered().Value(0, "ID").String())

	require.NoError(t, s.RemoveFilter(noID.ID))
	assert.Equal(t, 2, s.View().Filtered().Len())

	err = s.RemoveFilter(core.RuleID("missing"))
	assert.ErrorIs(t, err, core.ErrFilterNotFound)
	_, err = s.UpdateFilter(core.RuleID("missing"), filter.RuleUpdate{})
	assert.True(t, core.IsNotFoundError(err))

	s.ClearFilters()
	assert.Equal(t, 5, s.View().Filtered().Len())
}

func TestViewIsASnapshot(t *testing.T) {
	s := loaded(t)
	before := s.View()
	s.AddFilter(filter.NewRule("Category", filter.OpEquals, "tools"))

	assert.Equal(t, 0, before.Filters.Len())
	assert.Equal(t, 5, before.Filtered().Len())
}

func TestViewDerivations(t *testing.T) {
	s := loaded(t)
	v := s.View()

	assert.Equal(t, "Category", v.ChartSpec("", "").Category)
	assert.Equal(t, []aggregate.Bucket{
		{Category: "Gadgets", Value: 2},
		{Category: "Tools", Value: 2},
		{Category: "Unknown", Value: 1},
	}, v.Chart("", "Count"))

	byRevenue := v.Chart("Category", "Revenue")
	require.Len(t, byRevenue, 3)
	assert.Equal(t, aggregate.Bucket{Category: "Tools", Value: 2300}, byRevenue[0])

	assert.Equal(t, 5, v.Funnel().Total)
	assert.Equal(t, 5, v.KPIs().TotalRows)
	assert.False(t, v.KPIs().TruePositives.Available)
	assert.Equal(t, "ID", v.Roles().Column("patient_id"))

	summary, err := v.Summary("Revenue")
	require.NoError(t, err)
	assert.Equal(t, 4800.0, summary.Sum)
}

func TestIdleViewIsEmpty(t *testing.T) {
	v := NewState().View()

	assert.Nil(t, v.Filtered())
	assert.Empty(t, v.Chart("", ""))
	assert.Equal(t, 0, v.Funnel().Total)
	assert.Equal(t, 0, v.Page(0, 10).TotalPages)

	_, err := v.Summary("Revenue")
	assert.ErrorIs(t, err, core.ErrNoDataset)
}

func TestPaginate(t *testing.T) {
	records := make([][]string, 23)
	for i := range records {
		records[i] = []string{fmt.Sprint(i)}
	}
	rs := table.FromStrings("p", []string{"N"}, records)

	tests := []struct {
		name      string
		index     int
		size      int
		wantLen   int
		wantFirst string
		wantPages int
	}{
		{"first page", 0, 10, 10, "0", 3},
		{"last partial page", 2, 10, 3, "20", 3},
		{"past the end", 5, 10, 0, "", 3},
		{"default size", 1, 0, 10, "10", 3},
		{"negative index", -1, 5, 5, "0", 5},
		{"index overflowing offset", math.MaxInt/10 + 1, 10, 0, "", 3},
		{"largest index", math.MaxInt, 1, 0, "", 23},
		{"largest size", 0, math.MaxInt, 23, "0", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Paginate(rs, tt.index, tt.size)
			assert.Equal(t, 23, page.TotalRows)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			require.Equal(t, tt.wantLen, page.Rows.Len())
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, page.Rows.Value(0, "N").String())
			}
		})
	}
}
