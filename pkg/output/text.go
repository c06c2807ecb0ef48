package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/madgresso/madgresso/pkg/expense"
	"github.com/madgresso/madgresso/pkg/review"
)

// DefaultCurrencyLabel is shown for items in the form's default currency.
const DefaultCurrencyLabel = "(default)"

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions

	heading *color.Color
	bad     *color.Color
	good    *color.Color
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	f := &TextFormatter{
		opts:    opts,
		heading: color.New(color.Bold),
		bad:     color.New(color.FgRed),
		good:    color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{f.heading, f.bad, f.good} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return f
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "madgresso: %d items, %d receipts, %s; %d issues\n",
		report.Summary.Items,
		report.Summary.Receipts,
		f.totalsLine(report.Summary),
		report.Summary.TotalIssues)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	f.heading.Fprintln(w, "=== Expense Claim ===")
	fmt.Fprintf(w, "Month:   %s\n", report.Metadata.Month)
	fmt.Fprintf(w, "Comment: %s\n", report.Metadata.Comment)
	fmt.Fprintln(w)

	if f.opts.Verbose || len(report.Results) == 0 {
		f.formatItems(report, w)
	}

	if len(report.Claim.Receipts) > 0 {
		f.heading.Fprintln(w, "Receipts")
		for _, path := range report.Claim.Receipts {
			fmt.Fprintf(w, "  %s\n", path)
		}
		fmt.Fprintln(w)
	}

	for _, result := range report.Results {
		f.formatRuleResult(result, w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d items, %d receipts, %s\n",
		report.Summary.Items,
		report.Summary.Receipts,
		f.totalsLine(report.Summary))

	if len(report.Results) > 0 {
		fmt.Fprintf(w, "Checks: %d run, %d with issues, %d total issues\n",
			report.Summary.RulesChecked,
			report.Summary.RulesWithIssues,
			report.Summary.TotalIssues)
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "Lines processed: %d\n", report.Summary.Lines)
		fmt.Fprintf(w, "Claim ID: %s\n", report.Claim.ID)
		if len(report.Metadata.Sources) > 0 {
			fmt.Fprintf(w, "Sources: %s\n", strings.Join(report.Metadata.Sources, ", "))
		}
	}

	return nil
}

func (f *TextFormatter) formatItems(report *Report, w io.Writer) {
	f.heading.Fprintln(w, "Items")
	if len(report.Claim.Items) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i, item := range report.Claim.Items {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, formatItem(item))
	}
	fmt.Fprintln(w)
}

func formatItem(item *expense.Item) string {
	account, ok := item.Account()
	if !ok {
		account = "default"
	}

	money := item.Amount()
	switch {
	case item.IsMileage():
		money += " miles"
	case !item.UsesDefaultCurrency():
		money = item.Currency() + " " + money
	}

	return fmt.Sprintf("%s %-8s %-14s %s [account %s, %s]",
		item.Date().In(time.UTC).Format(expense.DisplayDateLayout),
		item.Type(),
		money,
		item.Description(),
		account,
		item.Subproject())
}

func (f *TextFormatter) formatRuleResult(result *review.RuleResult, w io.Writer) {
	ruleType := strings.ToUpper(string(result.RuleType))
	fmt.Fprintf(w, "[%s] %s\n", ruleType, result.RuleName)

	if result.Description != "" && f.opts.Verbose {
		fmt.Fprintf(w, "  %s\n", result.Description)
	}

	if !result.HasIssues() {
		f.good.Fprintln(w, "  No issues detected")
		fmt.Fprintln(w)
		return
	}

	f.bad.Fprintf(w, "  %d issue(s)\n", len(result.Issues))
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "  - %s\n", issue.Description)
		if f.opts.Verbose && issue.Context.Line != "" {
			fmt.Fprintf(w, "    %s\n", issue.Context.Line)
		}
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) totalsLine(s Summary) string {
	var parts []string
	for _, t := range s.Totals {
		code := t.Currency
		if code == "" {
			code = DefaultCurrencyLabel
		}
		parts = append(parts, code+" "+expense.FormatAmount(t.Amount))
	}
	if !s.Miles.IsZero() {
		parts = append(parts, expense.FormatAmount(s.Miles)+" miles")
	}
	if s.Unsummed > 0 {
		parts = append(parts, fmt.Sprintf("%d item(s) not summed", s.Unsummed))
	}
	if len(parts) == 0 {
		return "nothing claimed"
	}
	return strings.Join(parts, ", ")
}
