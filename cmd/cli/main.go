package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"triagelens/adapters/excel"
	"triagelens/domain/table"
	"triagelens/internal/aggregate"
	"triagelens/internal/report"
	"triagelens/internal/roles"
	"triagelens/internal/session"
	"triagelens/internal/testkit"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "triagelens-cli",
		Short:         "Inspect triage audit workbooks from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRolesCmd(),
		newFunnelCmd(),
		newChartCmd(),
		newRowsCmd(),
		newReportCmd(),
		newSampleCmd(),
	)
	return rootCmd
}

// loadFiltered reads a workbook or CSV file and applies --filter flags
func loadFiltered(path string, filters []string) (*table.RowSet, *table.RowSet, error) {
	rows, err := excel.NewDataReader(path).ReadData()
	if err != nil {
		return nil, nil, err
	}
	filtered, err := applyFilters(rows, filters)
	if err != nil {
		return nil, nil, err
	}
	return rows, filtered, nil
}

func addFilterFlag(cmd *cobra.Command, filters *[]string) {
	cmd.Flags().StringArrayVarP(filters, "filter", "f", nil,
		"Filter rule field:operator:value, repeatable (operators: contains, equals, starts_with, ends_with, gt, lt, eq, neq, is_empty, is_not_empty)")
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRolesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "roles [file]",
		Short: "Show which column plays each triage role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := excel.NewDataReader(args[0]).ReadData()
			if err != nil {
				return err
			}
			m := roles.ResolveAll(rows.Header())
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), m)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ROLE\tCOLUMN")
			for _, role := range roles.All {
				col := m.Column(role)
				if col == "" {
					col = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\n", role, col)
			}
			fmt.Fprintf(tw, "default chart category\t%s\n", roles.DefaultCategory(rows.Header()))
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newFunnelCmd() *cobra.Command {
	var filters []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "funnel [file]",
		Short: "Compute the triage funnel, outcomes and exclusions",
		Long: `Compute the triage funnel over the rows that pass every filter.

Example: triagelens-cli funnel audit.xlsx --filter "Location:equals:M1"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, filtered, err := loadFiltered(args[0], filters)
			if err != nil {
				return err
			}
			m := roles.ResolveAll(rows.Header())
			stats := aggregate.Funnel(filtered, m)
			kpis := aggregate.ComputeKPIs(filtered, m)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"funnel": stats,
					"kpis":   kpis,
				})
			}
			printFunnel(cmd.OutOrStdout(), rows.Len(), stats, kpis)
			return nil
		},
	}

	addFilterFlag(cmd, &filters)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	return cmd
}

func printFunnel(w io.Writer, totalRows int, stats aggregate.FunnelStats, kpis aggregate.KPIs) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Rows (filtered / all)\t%d / %d\t\n", stats.Total, totalRows)
	fmt.Fprintf(tw, "CTA done\t%d\t\n", stats.StageYes)
	fmt.Fprintf(tw, "CTA not done\t%d\t\n", stats.StageNo)
	fmt.Fprintf(tw, "AI result\t%d\t\n", stats.SecondaryYes)
	fmt.Fprintf(tw, "No AI result\t%d\t\n", stats.SecondaryOther)
	fmt.Fprintf(tw, "TP / FP / TN / FN\t%d / %d / %d / %d\t\n",
		stats.Outcomes.TruePositive, stats.Outcomes.FalsePositive,
		stats.Outcomes.TrueNegative, stats.Outcomes.FalseNegative)
	fmt.Fprintf(tw, "True positives (strict)\t%s\t\n", kpiText(kpis.TruePositives))
	fmt.Fprintf(tw, "Thrombectomy referrals\t%s\t\n", kpiText(kpis.Referrals))
	fmt.Fprintf(tw, "IT issues\t%d\t\n", stats.DeepDive.ITIssues)
	fmt.Fprintf(tw, "Missing radiology report\t%d\t\n", stats.DeepDive.MissingSourceReport)
	fmt.Fprintf(tw, "Missing AI report\t%d\t\n", stats.DeepDive.MissingSecondaryReport)
	fmt.Fprintf(tw, "AI=N & Radio=Y\t%d\t\n", stats.DeepDive.DiscrepancyFlag)
	tw.Flush()

	fmt.Fprintf(w, "\nExclusions: %d\n", stats.ExcludedCount)
	for _, rc := range stats.Breakdown {
		fmt.Fprintf(w, "  %-24s %d\n", rc.Label, rc.Count)
	}
}

func kpiText(k aggregate.KPI) string {
	if !k.Available {
		return "n/a"
	}
	return fmt.Sprintf("%d", k.Value)
}

func newChartCmd() *cobra.Command {
	var filters []string
	var category, metric string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "chart [file]",
		Short: "Group rows by a category column and count or sum",
		Long: `Group rows by a category column. With --metric Count (the default) rows are
counted; with any other column name that column's numeric values are summed.
At most 15 buckets are shown, largest first.

Example: triagelens-cli chart sales.xlsx --category Category --metric Revenue`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, filtered, err := loadFiltered(args[0], filters)
			if err != nil {
				return err
			}
			if category == "" {
				category = roles.DefaultCategory(rows.Header())
			}
			spec := aggregate.SpecFor(category, metric)
			buckets := aggregate.GroupBy(filtered, spec)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), buckets)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "%s\t%s\n", strings.ToUpper(spec.Category), strings.ToUpper(metricLabel(spec)))
			for _, b := range buckets {
				fmt.Fprintf(tw, "%s\t%g\n", b.Category, b.Value)
			}
			return tw.Flush()
		},
	}

	addFilterFlag(cmd, &filters)
	cmd.Flags().StringVar(&category, "category", "", "Column to group by (default: detected category column)")
	cmd.Flags().StringVar(&metric, "metric", aggregate.CountMetric, "Count, or a column to sum")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func metricLabel(spec aggregate.Spec) string {
	if spec.Mode == aggregate.ModeSum {
		return "sum of " + spec.ValueColumn
	}
	return aggregate.CountMetric
}

func newRowsCmd() *cobra.Command {
	var filters []string
	var page, size int

	cmd := &cobra.Command{
		Use:   "rows [file]",
		Short: "Print one page of the filtered rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, filtered, err := loadFiltered(args[0], filters)
			if err != nil {
				return err
			}
			p := session.Paginate(filtered, page-1, size)
			printPage(cmd.OutOrStdout(), filtered.Header(), p)
			return nil
		},
	}

	addFilterFlag(cmd, &filters)
	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	cmd.Flags().IntVar(&size, "size", session.DefaultPageSize, "Rows per page")
	return cmd
}

func printPage(w io.Writer, header table.Header, p session.Page) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for i := 0; i < p.Rows.Len(); i++ {
		row := p.Rows.Row(i)
		cells := make([]string, len(header))
		for j := range header {
			cells[j] = row.At(j).String()
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
	fmt.Fprintf(w, "\npage %d of %d, %d rows\n", p.Index+1, p.TotalPages, p.TotalRows)
}

func newReportCmd() *cobra.Command {
	var filters []string
	var format string

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Render the funnel summary as markdown or HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, filtered, err := loadFiltered(args[0], filters)
			if err != nil {
				return err
			}
			set, err := parseFilters(filters)
			if err != nil {
				return err
			}
			m := roles.ResolveAll(rows.Header())
			in := report.Input{
				Source:  rows.Source(),
				Rows:    rows.Len(),
				Filters: set.Rules(),
				Funnel:  aggregate.Funnel(filtered, m),
				KPIs:    aggregate.ComputeKPIs(filtered, m),
			}

			switch format {
			case "md", "markdown":
				_, err = io.WriteString(cmd.OutOrStdout(), report.Markdown(in))
			case "html":
				_, err = cmd.OutOrStdout().Write(report.HTML(in))
			default:
				err = fmt.Errorf("unknown format %q (use md or html)", format)
			}
			return err
		},
	}

	addFilterFlag(cmd, &filters)
	cmd.Flags().StringVar(&format, "format", "md", "Output format: md|html")
	return cmd
}

func newSampleCmd() *cobra.Command {
	var patients int
	var seed int64
	var sales bool

	cmd := &cobra.Command{
		Use:   "sample [output.xlsx]",
		Short: "Write a synthetic triage audit workbook",
		Long: `Write a synthetic workbook for trying the dashboard.

By default a stroke triage audit with one row per patient is generated.
--sales writes the small product sales table instead.

Example: triagelens-cli sample audit.xlsx --patients 500 --seed 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if sales {
				data, err = testkit.SampleWorkbook()
			} else {
				cfg := testkit.DefaultTriageConfig()
				cfg.PatientCount = patients
				cfg.Seed = seed
				data, err = testkit.TriageWorkbook(cfg)
			}
			if err != nil {
				return fmt.Errorf("failed to generate workbook: %w", err)
			}

			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", args[0], len(data))
			return nil
		},
	}

	cmd.Flags().IntVar(&patients, "patients", 250, "Number of patient rows")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic output")
	cmd.Flags().BoolVar(&sales, "sales", false, "Write the product sales table instead")
	return cmd
}
