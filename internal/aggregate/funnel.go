package aggregate

import (
	"sort"
	"strings"
	"unicode/utf8"

	"triagelens/domain/table"
	"triagelens/internal/roles"
)

const (
	// ReasonKeyLength is how many characters of an exclusion reason form its
	// breakdown key; longer reasons are cut and suffixed with "...".
	ReasonKeyLength = 20

	UnknownIdentifier = "Unknown ID"
	UnspecifiedReason = "Unspecified"
	NoNotes           = "-"
)

// Outcomes counts rows flagged in each confusion-matrix column
type Outcomes struct {
	TruePositive  int `json:"true_positive"`
	FalsePositive int `json:"false_positive"`
	TrueNegative  int `json:"true_negative"`
	FalseNegative int `json:"false_negative"`
}

// ExcludedRow is one row carrying an exclusion reason
type ExcludedRow struct {
	Identifier string `json:"id"`
	Reason     string `json:"reason"`
	Notes      string `json:"notes"`
}

// ReasonCount is one entry of the exclusion breakdown
type ReasonCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DeepDive counts problems among rows that reached the AI stage
type DeepDive struct {
	ITIssues               int `json:"it_issues"`
	MissingSourceReport    int `json:"missing_source_report"`
	MissingSecondaryReport int `json:"missing_secondary_report"`
	DiscrepancyFlag        int `json:"discrepancy_flag"`
}

// FunnelStats is the triage funnel computed over a filtered row set
type FunnelStats struct {
	Total          int           `json:"total"`
	StageYes       int           `json:"stage_yes"`
	StageNo        int           `json:"stage_no"`
	SecondaryYes   int           `json:"secondary_yes"`
	SecondaryOther int           `json:"secondary_other"`
	Outcomes       Outcomes      `json:"outcomes"`
	Excluded       []ExcludedRow `json:"excluded"`
	ExcludedCount  int           `json:"excluded_count"`
	Breakdown      []ReasonCount `json:"exclusion_breakdown"`
	DeepDive       DeepDive      `json:"deep_dive"`
}

// funnelColumns holds the header position of every role the funnel reads
type funnelColumns struct {
	stage, ai, tp, fp, tn, fn, exclude, other, report, discrep, id, name int
}

func resolveColumns(rows *table.RowSet, m roles.Map) funnelColumns {
	idx := func(r roles.Role) int { return rows.Index(m.Column(r)) }
	return funnelColumns{
		stage:   idx(roles.StageDone),
		ai:      idx(roles.AIResult),
		tp:      idx(roles.TruePositive),
		fp:      idx(roles.FalsePositive),
		tn:      idx(roles.TrueNegative),
		fn:      idx(roles.FalseNegative),
		exclude: idx(roles.ExclusionReason),
		other:   idx(roles.OtherInfo),
		report:  idx(roles.RadiologyReport),
		discrep: idx(roles.DiscrepancyFlag),
		id:      idx(roles.PatientID),
		name:    idx(roles.PatientName),
	}
}

// Funnel computes the triage funnel. Roles that did not resolve read every
// cell as Empty, so their counts are 0.
func Funnel(rows *table.RowSet, m roles.Map) FunnelStats {
	stats := FunnelStats{
		Total:     rows.Len(),
		Excluded:  []ExcludedRow{},
		Breakdown: []ReasonCount{},
	}
	if rows == nil {
		return stats
	}
	cols := resolveColumns(rows, m)

	for i := 0; i < rows.Len(); i++ {
		row := rows.Row(i)

		stageDone := isAffirmative(row.At(cols.stage))
		secondary := stageDone && hasSecondaryResult(row.At(cols.ai))
		if stageDone {
			stats.StageYes++
		}
		if secondary {
			stats.SecondaryYes++
		}

		if startsWithY(row.At(cols.tp)) {
			stats.Outcomes.TruePositive++
		}
		if startsWithY(row.At(cols.fp)) {
			stats.Outcomes.FalsePositive++
		}
		if startsWithY(row.At(cols.tn)) {
			stats.Outcomes.TrueNegative++
		}
		if startsWithY(row.At(cols.fn)) {
			stats.Outcomes.FalseNegative++
		}

		reasonCell := row.At(cols.exclude)
		if isExclusion(reasonCell) {
			stats.Excluded = append(stats.Excluded, ExcludedRow{
				Identifier: identifier(row, cols),
				Reason:     strings.TrimSpace(reasonCell.String()),
				Notes:      orDefault(row.At(cols.other).String(), NoNotes),
			})
		}

		if secondary {
			deepDive(&stats.DeepDive, row, cols)
		}
	}

	stats.StageNo = stats.Total - stats.StageYes
	stats.SecondaryOther = stats.StageYes - stats.SecondaryYes
	stats.ExcludedCount = len(stats.Excluded)
	stats.Breakdown = Breakdown(stats.Excluded)
	return stats
}

func deepDive(d *DeepDive, row table.Row, cols funnelColumns) {
	reason := strings.ToLower(row.At(cols.exclude).String())
	notes := strings.ToLower(row.At(cols.other).String())

	if strings.Contains(reason, "it") || strings.Contains(notes, "it issue") || strings.Contains(notes, "connectivity") {
		d.ITIssues++
	}

	report := row.At(cols.report)
	if report.IsEmpty() || strings.Contains(strings.ToLower(report.String()), "no report") {
		d.MissingSourceReport++
	}

	if strings.Contains(reason, "no ai report") {
		d.MissingSecondaryReport++
	}

	if startsWithY(row.At(cols.discrep)) {
		d.DiscrepancyFlag++
	}
}

// Breakdown groups exclusion reasons by ReasonKey, largest group first,
// ties in first-seen order.
func Breakdown(excluded []ExcludedRow) []ReasonCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, row := range excluded {
		key := ReasonKey(row.Reason)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	out := make([]ReasonCount, len(order))
	for i, key := range order {
		out[i] = ReasonCount{Label: key, Count: counts[key]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// ReasonKey normalizes a reason for grouping: blank reasons become
// "Unspecified", reasons longer than ReasonKeyLength characters are cut to
// that length and suffixed with "...".
func ReasonKey(reason string) string {
	if reason == "" {
		return UnspecifiedReason
	}
	if utf8.RuneCountInString(reason) <= ReasonKeyLength {
		return reason
	}
	return string([]rune(reason)[:ReasonKeyLength]) + "..."
}

func identifier(row table.Row, cols funnelColumns) string {
	if id := row.At(cols.id).String(); id != "" {
		return id
	}
	if name := row.At(cols.name).String(); name != "" {
		return name
	}
	return UnknownIdentifier
}

// isAffirmative accepts y, yes and 1 in any case
func isAffirmative(c table.Cell) bool {
	switch strings.ToLower(c.String()) {
	case "y", "yes", "1":
		return true
	}
	return false
}

func hasSecondaryResult(c table.Cell) bool {
	s := c.String()
	return s != "" && s != "N/A"
}

func startsWithY(c table.Cell) bool {
	return strings.HasPrefix(strings.ToLower(c.String()), "y")
}

func isExclusion(c table.Cell) bool {
	switch c.String() {
	case "", "N", "No":
		return false
	}
	return true
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
