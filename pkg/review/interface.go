package review

import (
	"context"

	"github.com/madgresso/madgresso/pkg/claim"
	"github.com/madgresso/madgresso/pkg/expense"
)

// RuleEngine is one review check. Items are fed in claim order, then
// Finalize sees the whole claim.
type RuleEngine interface {
	// Name returns the check name for reporting.
	Name() string

	Type() RuleType

	// Process examines one item. index is 1-based.
	Process(ctx context.Context, index int, item *expense.Item) error

	// Finalize completes the check and returns detected issues.
	Finalize(ctx context.Context, summary *claim.Summary) (*RuleResult, error)

	// Reset clears internal state for reuse.
	Reset()
}
