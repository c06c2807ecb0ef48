package output

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ClaimFormatter writes the claim back in claim-file syntax. Reading the
// output again yields the same items, receipts, month and comment.
type ClaimFormatter struct {
	opts FormatOptions
}

// NewClaimFormatter creates a new claim-file formatter.
func NewClaimFormatter(opts FormatOptions) *ClaimFormatter {
	return &ClaimFormatter{opts: opts}
}

// Name returns the format name.
func (f *ClaimFormatter) Name() string {
	return "claim"
}

// Format renders the report as a claim file.
func (f *ClaimFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	c := report.Claim
	var b strings.Builder

	fmt.Fprintf(&b, "# madgresso claim %s\n", c.ID)
	if c.Month != nil {
		fmt.Fprintf(&b, "Month: %s\n", *c.Month)
	}
	if c.Comment != nil {
		fmt.Fprintf(&b, "Comment: %s\n", *c.Comment)
	}
	for _, path := range c.Receipts {
		fmt.Fprintf(&b, "Receipts: %s\n", escapeGlob(path))
	}

	// Lines without an explicit subproject take the Project default, so one
	// is written whenever it changes.
	project := ""
	for _, item := range c.Items {
		if item.Subproject() != project {
			project = item.Subproject()
			fmt.Fprintf(&b, "Project: %s\n", project)
		}
		b.WriteString(item.Line())
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// escapeGlob quotes the glob metacharacters in a literal path.
func escapeGlob(path string) string {
	var b strings.Builder
	for _, r := range path {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
