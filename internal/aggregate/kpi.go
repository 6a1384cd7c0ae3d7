package aggregate

import (
	"strings"

	"triagelens/domain/table"
	"triagelens/internal/roles"
)

// KPI is a headline count. Available is false when the column the count
// depends on was not found; Value is then 0 and presentation decides how to
// show it.
type KPI struct {
	Value     int    `json:"value"`
	Available bool   `json:"available"`
	Column    string `json:"column,omitempty"`
}

// KPIs are the dashboard headline numbers
type KPIs struct {
	TotalRows     int `json:"total_rows"`
	TruePositives KPI `json:"true_positives"`
	Referrals     KPI `json:"referrals"`
}

// ComputeKPIs counts the headline numbers over rows. True positives use the
// strict flags Y, Yes and 1; referrals accept y or yes in any case.
func ComputeKPIs(rows *table.RowSet, m roles.Map) KPIs {
	return KPIs{
		TotalRows:     rows.Len(),
		TruePositives: countKPI(rows, m.Column(roles.TruePositive), isStrictYes),
		Referrals:     countKPI(rows, m.Column(roles.Referral), isYesWord),
	}
}

func countKPI(rows *table.RowSet, column string, match func(table.Cell) bool) KPI {
	if column == "" || rows == nil {
		return KPI{}
	}
	kpi := KPI{Available: true, Column: column}
	idx := rows.Index(column)
	for i := 0; i < rows.Len(); i++ {
		if match(rows.Row(i).At(idx)) {
			kpi.Value++
		}
	}
	return kpi
}

func isStrictYes(c table.Cell) bool {
	switch c.String() {
	case "Y", "Yes", "1":
		return true
	}
	f, ok := c.Float()
	return ok && c.Kind() == table.KindNumber && f == 1
}

func isYesWord(c table.Cell) bool {
	s := strings.ToLower(c.String())
	return s == "y" || s == "yes"
}
