// Package review runs consumer-side checks over a finished claim before it
// is submitted. It never judges amounts or accounts.
package review

import (
	"time"
)

// RuleType enumerates the review checks.
type RuleType string

const (
	RuleTypeUnknownType   RuleType = "unknown_type"
	RuleTypeDuplicateItem RuleType = "duplicate_item"
	RuleTypeReceipts      RuleType = "receipts"
)

// AllRules lists every check in the order they run.
var AllRules = []RuleType{RuleTypeUnknownType, RuleTypeDuplicateItem, RuleTypeReceipts}

// IssueType categorizes detected issues.
type IssueType string

const (
	// IssueTypeUnknownType indicates an item type missing from the vocabulary.
	IssueTypeUnknownType IssueType = "unknown_type"

	// IssueTypeDuplicateItem indicates an item identical to an earlier one.
	IssueTypeDuplicateItem IssueType = "duplicate_item"

	// IssueTypeMissingReceipt indicates a receipt path that no longer exists.
	IssueTypeMissingReceipt IssueType = "missing_receipt"

	// IssueTypeUnreadableReceipt indicates a PDF receipt that cannot be opened.
	IssueTypeUnreadableReceipt IssueType = "unreadable_receipt"

	// IssueTypeDuplicateReceipt indicates a receipt attached more than once.
	IssueTypeDuplicateReceipt IssueType = "duplicate_receipt"
)

// RuleResult contains findings from executing a single check.
type RuleResult struct {
	// RuleName is the name of the check that produced these results.
	RuleName string

	RuleType RuleType

	// Description says what the check looks for.
	Description string

	// Issues contains all detected problems.
	Issues []Issue

	Stats RuleStats
}

// RuleStats contains execution statistics for a check.
type RuleStats struct {
	// ItemsProcessed is the number of items examined.
	ItemsProcessed int

	// ItemsMatched is the number of items or receipts the check inspected
	// beyond the basic pass, e.g. PDFs opened.
	ItemsMatched int

	StartTime time.Time
	EndTime   time.Time
}

// HasIssues returns true if any issues were detected.
func (r *RuleResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// Issue represents a single detected problem.
type Issue struct {
	Type IssueType

	// Description is a human-readable summary of the issue.
	Description string

	Context IssueContext
}

// IssueContext locates an issue within the claim.
type IssueContext struct {
	// ItemIndex is the 1-based position of the item, 0 for receipt issues.
	ItemIndex int

	// FirstIndex is the 1-based position of the earlier duplicate.
	FirstIndex int

	// Line is the item rendered as claim-file text.
	Line string

	// TypeCode is the item's expense type.
	TypeCode string

	// Receipt is the receipt path for receipt issues.
	Receipt string
}
