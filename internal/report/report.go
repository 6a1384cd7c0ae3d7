// Package report renders the funnel, KPIs and exclusions of a session as a
// markdown document, optionally converted to HTML.
package report

import (
	"fmt"
	"strings"

	"triagelens/internal/aggregate"
	"triagelens/internal/filter"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Input is everything a report is built from
type Input struct {
	Source  string
	Rows    int
	Filters []filter.Rule
	Funnel  aggregate.FunnelStats
	KPIs    aggregate.KPIs
}

// Markdown renders the report as GitHub-flavoured markdown
func Markdown(in Input) string {
	var doc strings.Builder

	title := in.Source
	if title == "" {
		title = "no dataset"
	}
	doc.WriteString(fmt.Sprintf("# Triage summary: %s\n\n", escape(title)))
	doc.WriteString(fmt.Sprintf("%d of %d rows after filtering.\n\n", in.Funnel.Total, in.Rows))

	writeFilters(&doc, in.Filters)
	writeKPIs(&doc, in.KPIs)
	writeFunnel(&doc, in.Funnel)
	writeExclusions(&doc, in.Funnel)
	return doc.String()
}

// HTML renders the report and converts it to an HTML fragment
func HTML(in Input) []byte {
	return ToHTML(Markdown(in))
}

// ToHTML converts markdown with tables enabled
func ToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, r)
}

func writeFilters(doc *strings.Builder, rules []filter.Rule) {
	doc.WriteString("## Filters\n\n")
	if len(rules) == 0 {
		doc.WriteString("None.\n\n")
		return
	}
	for _, r := range rules {
		doc.WriteString(fmt.Sprintf("- %s %s `%s`\n", escape(r.Field), r.Operator, r.Value.String()))
	}
	doc.WriteString("\n")
}

func writeKPIs(doc *strings.Builder, k aggregate.KPIs) {
	doc.WriteString("## Headline\n\n")
	doc.WriteString("| Metric | Value |\n|---|---:|\n")
	doc.WriteString(fmt.Sprintf("| Rows | %d |\n", k.TotalRows))
	doc.WriteString(fmt.Sprintf("| True positives | %s |\n", kpiValue(k.TruePositives)))
	doc.WriteString(fmt.Sprintf("| Thrombectomy referrals | %s |\n\n", kpiValue(k.Referrals)))
}

func writeFunnel(doc *strings.Builder, f aggregate.FunnelStats) {
	doc.WriteString("## Funnel\n\n")
	doc.WriteString("| Stage | Count |\n|---|---:|\n")
	doc.WriteString(fmt.Sprintf("| Total | %d |\n", f.Total))
	doc.WriteString(fmt.Sprintf("| CTA done | %d |\n", f.StageYes))
	doc.WriteString(fmt.Sprintf("| CTA not done | %d |\n", f.StageNo))
	doc.WriteString(fmt.Sprintf("| AI result | %d |\n", f.SecondaryYes))
	doc.WriteString(fmt.Sprintf("| No AI result | %d |\n\n", f.SecondaryOther))

	doc.WriteString("### Outcomes\n\n")
	doc.WriteString("| | Count |\n|---|---:|\n")
	doc.WriteString(fmt.Sprintf("| True positive | %d |\n", f.Outcomes.TruePositive))
	doc.WriteString(fmt.Sprintf("| False positive | %d |\n", f.Outcomes.FalsePositive))
	doc.WriteString(fmt.Sprintf("| True negative | %d |\n", f.Outcomes.TrueNegative))
	doc.WriteString(fmt.Sprintf("| False negative | %d |\n\n", f.Outcomes.FalseNegative))

	doc.WriteString("### Problems after AI stage\n\n")
	doc.WriteString(fmt.Sprintf("- IT issues: %d\n", f.DeepDive.ITIssues))
	doc.WriteString(fmt.Sprintf("- Missing radiology report: %d\n", f.DeepDive.MissingSourceReport))
	doc.WriteString(fmt.Sprintf("- Missing AI report: %d\n", f.DeepDive.MissingSecondaryReport))
	doc.WriteString(fmt.Sprintf("- AI=N & Radio=Y: %d\n\n", f.DeepDive.DiscrepancyFlag))
}

func writeExclusions(doc *strings.Builder, f aggregate.FunnelStats) {
	doc.WriteString(fmt.Sprintf("## Exclusions (%d)\n\n", f.ExcludedCount))
	if f.ExcludedCount == 0 {
		doc.WriteString("None.\n")
		return
	}

	doc.WriteString("| Reason | Count |\n|---|---:|\n")
	for _, rc := range f.Breakdown {
		doc.WriteString(fmt.Sprintf("| %s | %d |\n", escape(rc.Label), rc.Count))
	}

	doc.WriteString("\n| ID | Reason | Notes |\n|---|---|---|\n")
	for _, row := range f.Excluded {
		doc.WriteString(fmt.Sprintf("| %s | %s | %s |\n", escape(row.Identifier), escape(row.Reason), escape(row.Notes)))
	}
}

func kpiValue(k aggregate.KPI) string {
	if !k.Available {
		return "n/a"
	}
	return fmt.Sprintf("%d", k.Value)
}

var mdEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

func escape(s string) string {
	return mdEscaper.Replace(s)
}
