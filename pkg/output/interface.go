package output

import (
	"context"
	"fmt"
	"io"
)

// Formatter renders a report in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json, claim, xlsx).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose enables detailed output including every item.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool

	// Color enables terminal colors in text output.
	Color bool
}

// Formats lists the names accepted by New.
var Formats = []string{"text", "json", "claim", "xlsx"}

// New returns the formatter with the given name.
func New(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "text", "":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	case "claim":
		return NewClaimFormatter(opts), nil
	case "xlsx":
		return NewXLSXFormatter(opts), nil
	default:
		return nil, fmt.Errorf("invalid output format %q (must be one of %v)", name, Formats)
	}
}
