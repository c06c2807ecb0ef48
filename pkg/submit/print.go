package submit

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/madgresso/madgresso/pkg/claim"
	"github.com/madgresso/madgresso/pkg/expense"
	"github.com/madgresso/madgresso/pkg/output"
)

// PrintSubmitter writes the claim instead of submitting it.
type PrintSubmitter struct {
	w         io.Writer
	formatter output.Formatter
	start     time.Time

	header  Header
	started bool
	items   []*expense.Item
}

// NewPrintSubmitter creates a dry-run submitter. Each accepted item is
// written as a claim line; the finished claim is rendered with f, or a
// one-line summary when f is nil.
func NewPrintSubmitter(w io.Writer, f output.Formatter) *PrintSubmitter {
	if f == nil {
		f = output.NewTextFormatter(output.FormatOptions{Quiet: true})
	}
	return &PrintSubmitter{w: w, formatter: f}
}

// Begin writes the header.
func (p *PrintSubmitter) Begin(ctx context.Context, h Header) error {
	if p.started {
		return ErrAlreadyStarted
	}
	p.header = h
	p.started = true
	p.start = time.Now()

	_, err := fmt.Fprintf(p.w, "Dry run: claim %s\nMonth:   %s\nComment: %s\n", h.ClaimID, h.Month, h.Comment)
	return err
}

// AddItem writes one item.
func (p *PrintSubmitter) AddItem(ctx context.Context, item *expense.Item) error {
	if !p.started {
		return ErrNotStarted
	}
	p.items = append(p.items, item)
	_, err := fmt.Fprintf(p.w, "+ %s\n", item.Line())
	return err
}

// Finish renders the claim as it would have been submitted.
func (p *PrintSubmitter) Finish(ctx context.Context, s *claim.Summary) error {
	if !p.started {
		return ErrNotStarted
	}

	report := output.NewReport(accepted(s, p.items), nil, output.Metadata{
		Month:       s.MonthOr(p.header.Month),
		Comment:     s.CommentOr(p.header.Comment),
		GeneratedAt: time.Now(),
		Duration:    time.Since(p.start),
	})
	return p.formatter.Format(ctx, report, p.w)
}

// Close is a no-op.
func (p *PrintSubmitter) Close() error { return nil }
