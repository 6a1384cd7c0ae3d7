package testkit

import (
	"fmt"
	"math/rand"
	"time"
)

// TriageHeader is the column layout of a stroke triage audit sheet
var TriageHeader = []string{
	"NHS Number",
	"Patient Name",
	"Location",
	"CTA done Y/N",
	"Occlusions Y/N - AI",
	"Radiology report",
	"True positive",
	"False positive",
	"True negative",
	"False negative",
	"AI=N & Radio=Y?",
	"Thrombectomy referral Y/N",
	"Thrombectomy referral DateTime",
	"Reason to exclude",
	"Other information",
}

// TriageGeneratorConfig configures the triage audit generator
type TriageGeneratorConfig struct {
	PatientCount  int       `json:"patient_count"`
	CTARate       float64   `json:"cta_rate"`       // share of patients with a CTA scan
	AIRate        float64   `json:"ai_rate"`        // share of CTA patients with an AI read
	OcclusionRate float64   `json:"occlusion_rate"` // share of AI reads that are positive
	AIErrorRate   float64   `json:"ai_error_rate"`  // share of AI reads that disagree with radiology
	ExclusionRate float64   `json:"exclusion_rate"`
	StartDate     time.Time `json:"start_date"`
	Seed          int64     `json:"seed"`
}

// DefaultTriageConfig returns sensible defaults for triage data generation
func DefaultTriageConfig() TriageGeneratorConfig {
	return TriageGeneratorConfig{
		PatientCount:  250,
		CTARate:       0.85,
		AIRate:        0.9,
		OcclusionRate: 0.25,
		AIErrorRate:   0.08,
		ExclusionRate: 0.12,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:          42,
	}
}

var (
	triageLocations = []string{"ICA", "M1", "M2", "Basilar", "Vertebral", ""}
	exclusionText   = []string{
		"Patient declined",
		"No AI report generated",
		"IT issue - PACS upload failed",
		"Scan performed at another site",
		"Duplicate record",
	}
)

// TriageDataGenerator generates synthetic triage audit rows
type TriageDataGenerator struct {
	config TriageGeneratorConfig
	rng    *rand.Rand
}

// NewTriageDataGenerator creates a new triage data generator
func NewTriageDataGenerator(config TriageGeneratorConfig) *TriageDataGenerator {
	return &TriageDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateSheet returns the header plus one row per patient
func (g *TriageDataGenerator) GenerateSheet() Sheet {
	rows := make([][]interface{}, 0, g.config.PatientCount+1)
	header := make([]interface{}, len(TriageHeader))
	for i, h := range TriageHeader {
		header[i] = h
	}
	rows = append(rows, header)

	for i := 0; i < g.config.PatientCount; i++ {
		rows = append(rows, g.generatePatient(i))
	}
	return Sheet{Name: "Audit", Rows: rows}
}

// generatePatient walks one patient through the triage pathway
func (g *TriageDataGenerator) generatePatient(i int) []interface{} {
	nhs := fmt.Sprintf("%010d", 4000000000+int64(i)*7919)
	name := fmt.Sprintf("Patient %03d", i+1)
	location := triageLocations[g.rng.Intn(len(triageLocations))]

	cta := g.chance(g.config.CTARate)
	aiResult, report := "", ""
	tp, fp, tn, fn, discrepancy := "N", "N", "N", "N", "N"
	referral, referralAt := "N", ""

	if cta {
		report = "Report issued"
		if g.chance(0.05) {
			report = "No report available"
		}
		if g.chance(g.config.AIRate) {
			occluded := g.chance(g.config.OcclusionRate)
			aiWrong := g.chance(g.config.AIErrorRate)
			aiResult = yn(occluded != aiWrong)

			switch {
			case occluded && !aiWrong:
				tp = "Y"
			case occluded && aiWrong:
				fn, discrepancy = "Y", "Y"
			case !occluded && aiWrong:
				fp = "Y"
			default:
				tn = "Y"
			}

			if occluded && g.chance(0.6) {
				referral = "Y"
				referralAt = g.config.StartDate.Add(time.Duration(i) * 90 * time.Minute).Format("2006-01-02 15:04")
			}
		} else {
			aiResult = "N/A"
		}
	}

	exclude, other := "N", ""
	if g.chance(g.config.ExclusionRate) {
		exclude = exclusionText[g.rng.Intn(len(exclusionText))]
		if g.chance(0.3) {
			other = "Connectivity problems reported"
		}
	}

	return []interface{}{
		nhs, name, location, yn(cta), aiResult, report,
		tp, fp, tn, fn, discrepancy, referral, referralAt, exclude, other,
	}
}

func (g *TriageDataGenerator) chance(p float64) bool {
	return g.rng.Float64() < p
}

func yn(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

// TriageWorkbook generates a triage audit workbook with the given config
func TriageWorkbook(config TriageGeneratorConfig) ([]byte, error) {
	return WorkbookBytes(NewTriageDataGenerator(config).GenerateSheet())
}
