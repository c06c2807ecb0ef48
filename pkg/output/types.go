// Package output renders a finished claim and its review results.
package output

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/madgresso/madgresso/pkg/claim"
	"github.com/madgresso/madgresso/pkg/review"
)

// Report is the complete output for one claim.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Claim is the finished claim.
	Claim *claim.Summary `json:"claim"`

	// Results contains findings from each review check, if a review ran.
	Results []*review.RuleResult `json:"results,omitempty"`

	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	Items    int `json:"items"`
	Receipts int `json:"receipts"`
	Lines    int `json:"lines"`

	// Totals sums the amounts per currency. The form's default currency is
	// listed under an empty code.
	Totals []Total `json:"totals"`

	// Miles sums the mileage items.
	Miles decimal.Decimal `json:"miles"`

	// Unsummed counts items whose amount text is not a number. They are
	// left out of Totals and Miles.
	Unsummed int `json:"unsummed,omitempty"`

	RulesChecked    int `json:"rules_checked"`
	RulesWithIssues int `json:"rules_with_issues"`
	TotalIssues     int `json:"total_issues"`
}

// Total is the sum of the items in one currency.
type Total struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Items    int             `json:"items"`
}

// Metadata provides context about the run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used.
	ConfigFile string `json:"config_file,omitempty"`

	// Sources lists the claim files that were read.
	Sources []string `json:"sources,omitempty"`

	// Month and Comment are the values the claim will be submitted with.
	Month   string `json:"month"`
	Comment string `json:"comment"`

	GeneratedAt time.Time     `json:"generated_at"`
	Duration    time.Duration `json:"duration"`
}

// NewReport creates a Report for a finished claim. result may be nil when no
// review was run.
func NewReport(c *claim.Summary, result *review.Result, meta Metadata) *Report {
	report := &Report{
		Claim:    c,
		Metadata: meta,
		Summary: Summary{
			Items:    len(c.Items),
			Receipts: len(c.Receipts),
			Lines:    c.Lines,
		},
	}

	totals := make(map[string]*Total)
	for _, item := range c.Items {
		value, err := item.Value()
		if err != nil {
			report.Summary.Unsummed++
			continue
		}
		if item.IsMileage() {
			report.Summary.Miles = report.Summary.Miles.Add(value)
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(item.Currency()))
		t, ok := totals[code]
		if !ok {
			t = &Total{Currency: code}
			totals[code] = t
		}
		t.Amount = t.Amount.Add(value)
		t.Items++
	}
	for _, t := range totals {
		report.Summary.Totals = append(report.Summary.Totals, *t)
	}
	sort.Slice(report.Summary.Totals, func(i, j int) bool {
		return report.Summary.Totals[i].Currency < report.Summary.Totals[j].Currency
	})

	if result != nil {
		report.Results = result.Results
		report.Summary.RulesChecked = len(result.Results)
		report.Summary.RulesWithIssues = result.RulesWithIssues()
		report.Summary.TotalIssues = result.TotalIssues()
		if report.Metadata.Duration == 0 {
			report.Metadata.Duration = result.Metadata.EndTime.Sub(result.Metadata.StartTime)
		}
	}

	return report
}

// HasIssues returns true if any issues were detected.
func (r *Report) HasIssues() bool {
	return r.Summary.TotalIssues > 0
}
