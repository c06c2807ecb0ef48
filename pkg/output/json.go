package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/madgresso/madgresso/pkg/review"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// quietReport is the claim without its items. Month and Comment are the
// values the claim is submitted with, overrides applied.
type quietReport struct {
	Summary Summary        `json:"summary"`
	Claim   quietClaim     `json:"claim"`
	Issues  []review.Issue `json:"issues,omitempty"`
}

type quietClaim struct {
	ID       string   `json:"id"`
	Month    string   `json:"month"`
	Comment  string   `json:"comment"`
	Receipts []string `json:"receipts"`
}

// Format renders the report as JSON. Quiet output drops the items and the
// per-check results, keeping only the issues found.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if !f.opts.Quiet {
		return encoder.Encode(report)
	}

	q := quietReport{
		Summary: report.Summary,
		Claim: quietClaim{
			Month:    report.Metadata.Month,
			Comment:  report.Metadata.Comment,
			Receipts: []string{},
		},
	}
	if report.Claim != nil {
		q.Claim.ID = report.Claim.ID
		q.Claim.Receipts = append(q.Claim.Receipts, report.Claim.Receipts...)
	}
	for _, result := range report.Results {
		q.Issues = append(q.Issues, result.Issues...)
	}
	return encoder.Encode(q)
}
