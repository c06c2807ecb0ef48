package claim

import (
	"errors"
	"fmt"
	"time"

	"github.com/madgresso/madgresso/pkg/expense"
)

var (
	// ErrConsumed is returned when the item sequence is read again after it
	// has reached its end. A claim is single pass.
	ErrConsumed = errors.New("claim items already consumed")

	// ErrNotDrained is returned by Snapshot before the item sequence has
	// been read to its end.
	ErrNotDrained = errors.New("claim not fully read")
)

// ParseError identifies the line an item could not be built from.
type ParseError struct {
	Source  string
	LineNum int
	Line    string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v (line %q)", e.Source, e.LineNum, e.Err, e.Line)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Summary is a finished claim: everything a submitter needs.
type Summary struct {
	// ID identifies this run of the claim. Submitters use it to make
	// retries idempotent.
	ID string `json:"id"`

	Receipts []string        `json:"receipts"`
	Items    []*expense.Item `json:"items"`

	// Month and Comment are nil unless a directive set them.
	Month   *string `json:"month,omitempty"`
	Comment *string `json:"comment,omitempty"`

	DefaultSubproject string    `json:"default_subproject"`
	Lines             int       `json:"lines"`
	CreatedAt         time.Time `json:"created_at"`
}

// MonthOr returns the month override, or fallback when there is none.
func (s *Summary) MonthOr(fallback string) string {
	if s.Month != nil {
		return *s.Month
	}
	return fallback
}

// CommentOr returns the comment override, or fallback when there is none.
func (s *Summary) CommentOr(fallback string) string {
	if s.Comment != nil {
		return *s.Comment
	}
	return fallback
}

// MonthLayout is the layout of the claim month, e.g. "October 2016".
const MonthLayout = "January 2006"

// MonthOf returns the claim month containing t.
func MonthOf(t time.Time) string {
	return t.Format(MonthLayout)
}
