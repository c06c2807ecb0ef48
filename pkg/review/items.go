package review

import (
	"context"
	"fmt"
	"time"

	"github.com/madgresso/madgresso/pkg/claim"
	"github.com/madgresso/madgresso/pkg/config"
	"github.com/madgresso/madgresso/pkg/expense"
)

// UnknownTypeEngine reports items whose type code is not in the vocabulary.
// The submitter skips such items, so they would silently go missing.
type UnknownTypeEngine struct {
	types  config.ExpenseTypes
	issues []Issue
	stats  RuleStats
}

// NewUnknownTypeEngine creates the unknown_type check.
func NewUnknownTypeEngine(types config.ExpenseTypes) *UnknownTypeEngine {
	return &UnknownTypeEngine{types: types}
}

func (e *UnknownTypeEngine) Name() string   { return string(RuleTypeUnknownType) }
func (e *UnknownTypeEngine) Type() RuleType { return RuleTypeUnknownType }

// Process checks one item's type code.
func (e *UnknownTypeEngine) Process(_ context.Context, index int, item *expense.Item) error {
	e.stats.ItemsProcessed++
	if _, ok := e.types.Lookup(item.Type()); ok {
		return nil
	}

	e.stats.ItemsMatched++
	e.issues = append(e.issues, Issue{
		Type:        IssueTypeUnknownType,
		Description: fmt.Sprintf("item %d: %s not recognised, it will not be submitted", index, item.Type()),
		Context: IssueContext{
			ItemIndex: index,
			Line:      item.Line(),
			TypeCode:  item.Type(),
		},
	})
	return nil
}

// Finalize returns the items with unknown types.
func (e *UnknownTypeEngine) Finalize(_ context.Context, _ *claim.Summary) (*RuleResult, error) {
	e.stats.EndTime = time.Now()
	return &RuleResult{
		RuleName:    e.Name(),
		RuleType:    e.Type(),
		Description: "item types must be listed in expense_types",
		Issues:      e.issues,
		Stats:       e.stats,
	}, nil
}

// Reset clears internal state for reuse.
func (e *UnknownTypeEngine) Reset() {
	e.issues = nil
	e.stats = RuleStats{StartTime: time.Now()}
}

// DuplicateEngine reports items identical in every field to an earlier item,
// which usually means a claim file was given twice.
type DuplicateEngine struct {
	seen   map[string]int
	issues []Issue
	stats  RuleStats
}

// NewDuplicateEngine creates the duplicate_item check.
func NewDuplicateEngine() *DuplicateEngine {
	return &DuplicateEngine{seen: make(map[string]int)}
}

func (e *DuplicateEngine) Name() string   { return string(RuleTypeDuplicateItem) }
func (e *DuplicateEngine) Type() RuleType { return RuleTypeDuplicateItem }

// Process records one item and reports it if it was seen before.
func (e *DuplicateEngine) Process(_ context.Context, index int, item *expense.Item) error {
	e.stats.ItemsProcessed++

	key := item.String()
	first, ok := e.seen[key]
	if !ok {
		e.seen[key] = index
		return nil
	}

	e.stats.ItemsMatched++
	e.issues = append(e.issues, Issue{
		Type:        IssueTypeDuplicateItem,
		Description: fmt.Sprintf("item %d repeats item %d", index, first),
		Context: IssueContext{
			ItemIndex:  index,
			FirstIndex: first,
			Line:       item.Line(),
			TypeCode:   item.Type(),
		},
	})
	return nil
}

// Finalize returns the duplicated items.
func (e *DuplicateEngine) Finalize(_ context.Context, _ *claim.Summary) (*RuleResult, error) {
	e.stats.EndTime = time.Now()
	return &RuleResult{
		RuleName:    e.Name(),
		RuleType:    e.Type(),
		Description: "each item should appear once",
		Issues:      e.issues,
		Stats:       e.stats,
	}, nil
}

// Reset clears internal state for reuse.
func (e *DuplicateEngine) Reset() {
	e.seen = make(map[string]int)
	e.issues = nil
	e.stats = RuleStats{StartTime: time.Now()}
}
