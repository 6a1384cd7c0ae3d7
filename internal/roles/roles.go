package roles

import (
	"strings"
)

// Role is a semantic meaning inferred for a header column
type Role string

const (
	StageDone       Role = "stage_done"
	AIResult        Role = "ai_result"
	TruePositive    Role = "true_positive"
	FalsePositive   Role = "false_positive"
	TrueNegative    Role = "true_negative"
	FalseNegative   Role = "false_negative"
	ExclusionReason Role = "exclusion_reason"
	OtherInfo       Role = "other_info"
	RadiologyReport Role = "radiology_report"
	DiscrepancyFlag Role = "discrepancy_flag"
	PatientID       Role = "patient_id"
	PatientName     Role = "patient_name"
	Referral        Role = "referral"
	ChartCategory   Role = "chart_category"
)

// Pattern is one way a header can match a role. Text is a substring unless
// Exact is set. Exclude lists substrings that veto the match; they are always
// compared case-sensitively.
type Pattern struct {
	Text          string
	CaseSensitive bool
	Exact         bool
	Exclude       []string
}

// Matches reports whether header satisfies the pattern
func (p Pattern) Matches(header string) bool {
	h, text := header, p.Text
	if !p.CaseSensitive {
		h, text = strings.ToLower(h), strings.ToLower(text)
	}

	if p.Exact {
		if h != text {
			return false
		}
	} else if !strings.Contains(h, text) {
		return false
	}

	for _, ex := range p.Exclude {
		if strings.Contains(header, ex) {
			return false
		}
	}
	return true
}

func cs(text string) Pattern { return Pattern{Text: text, CaseSensitive: true} }
func ci(text string) Pattern { return Pattern{Text: text} }

// Table maps each role to the patterns that identify it. A header matches a
// role when any of its patterns matches.
var Table = map[Role][]Pattern{
	StageDone:       {cs("CTA done Y/N"), cs("CTA"), cs("CTA Done")},
	AIResult:        {cs("Occlusions Y/N - AI")},
	TruePositive:    {ci("true positive")},
	FalsePositive:   {ci("false positive")},
	TrueNegative:    {ci("true negative")},
	FalseNegative:   {ci("false negative")},
	ExclusionReason: {ci("exclude")},
	OtherInfo:       {ci("other information")},
	RadiologyReport: {ci("radiology report")},
	DiscrepancyFlag: {cs("AI=N & Radio=Y?")},
	PatientID:       {ci("nhs number"), ci("patient id"), ci("mrn"), {Text: "id", Exact: true}},
	PatientName:     {ci("patient name")},
	Referral:        {{Text: "thrombectomy referral", Exclude: []string{"DateTime"}}},
	ChartCategory:   {cs("Location"), cs("Category"), cs("Occlusion")},
}

// All lists the roles in a stable order for reporting
var All = []Role{
	StageDone, AIResult,
	TruePositive, FalsePositive, TrueNegative, FalseNegative,
	ExclusionReason, OtherInfo, RadiologyReport, DiscrepancyFlag,
	PatientID, PatientName, Referral, ChartCategory,
}

// Resolve returns the first header, in header order, that matches the role,
// or "" when none does.
func Resolve(header []string, role Role) string {
	return ResolveWith(header, Table[role])
}

// ResolveWith is Resolve over an explicit pattern list
func ResolveWith(header []string, patterns []Pattern) string {
	for _, h := range header {
		for _, p := range patterns {
			if p.Matches(h) {
				return h
			}
		}
	}
	return ""
}

// Map holds the resolved column for every role; "" means the role is absent
type Map map[Role]string

// ResolveAll resolves every role in Table against header
func ResolveAll(header []string) Map {
	m := make(Map, len(Table))
	for role, patterns := range Table {
		m[role] = ResolveWith(header, patterns)
	}
	return m
}

// Column returns the column for role, "" when absent
func (m Map) Column(role Role) string {
	return m[role]
}

// Has reports whether role resolved to a column
func (m Map) Has(role Role) bool {
	return m[role] != ""
}

// DefaultCategory picks the chart grouping column: the chart_category role,
// else the first header, else "".
func DefaultCategory(header []string) string {
	if col := Resolve(header, ChartCategory); col != "" {
		return col
	}
	if len(header) > 0 {
		return header[0]
	}
	return ""
}
