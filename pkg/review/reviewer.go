package review

import (
	"context"
	"fmt"
	"time"

	"github.com/madgresso/madgresso/pkg/claim"
	"github.com/madgresso/madgresso/pkg/config"
)

// Reviewer runs a set of checks over a claim.
type Reviewer struct {
	engines []RuleEngine

	ruleFilter map[RuleType]bool // nil means all checks
	openPDF    pdfOpener
}

// ReviewerOption configures reviewer behavior.
type ReviewerOption func(*Reviewer)

// WithRuleFilter limits the review to the named checks.
func WithRuleFilter(rules []string) ReviewerOption {
	return func(r *Reviewer) {
		if len(rules) > 0 {
			r.ruleFilter = make(map[RuleType]bool)
			for _, name := range rules {
				r.ruleFilter[RuleType(name)] = true
			}
		}
	}
}

// withPDFOpener replaces the PDF reader; used by tests.
func withPDFOpener(open pdfOpener) ReviewerOption {
	return func(r *Reviewer) {
		r.openPDF = open
	}
}

// NewReviewer creates a reviewer checking items against the given
// expense-type vocabulary.
func NewReviewer(types config.ExpenseTypes, opts ...ReviewerOption) (*Reviewer, error) {
	r := &Reviewer{openPDF: countPDFPages}
	for _, opt := range opts {
		opt(r)
	}

	for name := range r.ruleFilter {
		if !isKnownRule(name) {
			return nil, fmt.Errorf("unknown check %q (must be one of %v)", name, AllRules)
		}
	}

	for _, rule := range AllRules {
		if r.ruleFilter != nil && !r.ruleFilter[rule] {
			continue
		}
		r.engines = append(r.engines, r.createEngine(rule, types))
	}

	return r, nil
}

func isKnownRule(name RuleType) bool {
	for _, rule := range AllRules {
		if rule == name {
			return true
		}
	}
	return false
}

func (r *Reviewer) createEngine(rule RuleType, types config.ExpenseTypes) RuleEngine {
	switch rule {
	case RuleTypeUnknownType:
		return NewUnknownTypeEngine(types)
	case RuleTypeDuplicateItem:
		return NewDuplicateEngine()
	default:
		return newReceiptsEngine(r.openPDF)
	}
}

// Result contains the complete review output.
type Result struct {
	// Results contains findings from each check.
	Results []*RuleResult

	Metadata Metadata
}

// Metadata provides context about the review run.
type Metadata struct {
	ClaimID string

	StartTime time.Time
	EndTime   time.Time

	ItemsProcessed int
	Receipts       int
}

// TotalIssues returns the total number of issues across all checks.
func (r *Result) TotalIssues() int {
	total := 0
	for _, result := range r.Results {
		total += len(result.Issues)
	}
	return total
}

// RulesWithIssues returns the count of checks that found issues.
func (r *Result) RulesWithIssues() int {
	count := 0
	for _, result := range r.Results {
		if result.HasIssues() {
			count++
		}
	}
	return count
}

// Review runs every check over a finished claim.
func (r *Reviewer) Review(ctx context.Context, summary *claim.Summary) (*Result, error) {
	result := &Result{
		Results: make([]*RuleResult, 0, len(r.engines)),
		Metadata: Metadata{
			ClaimID:   summary.ID,
			StartTime: time.Now(),
			Receipts:  len(summary.Receipts),
		},
	}

	for _, engine := range r.engines {
		engine.Reset()
	}

	for i, item := range summary.Items {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result.Metadata.ItemsProcessed++
		for _, engine := range r.engines {
			if err := engine.Process(ctx, i+1, item); err != nil {
				return nil, fmt.Errorf("checking item %d with %q: %w", i+1, engine.Name(), err)
			}
		}
	}

	for _, engine := range r.engines {
		ruleResult, err := engine.Finalize(ctx, summary)
		if err != nil {
			return nil, fmt.Errorf("finalizing check %q: %w", engine.Name(), err)
		}
		result.Results = append(result.Results, ruleResult)
	}

	result.Metadata.EndTime = time.Now()

	return result, nil
}
