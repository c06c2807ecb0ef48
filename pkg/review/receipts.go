package review

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/madgresso/madgresso/pkg/claim"
	"github.com/madgresso/madgresso/pkg/expense"
)

// pdfOpener returns the page count of a PDF file.
type pdfOpener func(path string) (int, error)

// countPDFPages opens a PDF and counts its pages. The pdf library panics on
// some malformed files, so panics are turned into errors.
func countPDFPages(path string) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	pages = r.NumPage()
	if pages == 0 {
		return 0, fmt.Errorf("PDF has no pages")
	}
	return pages, nil
}

// ReceiptsEngine checks the claim's receipt files: each must still exist,
// be attached once, and PDFs must open.
type ReceiptsEngine struct {
	openPDF pdfOpener
	stats   RuleStats
}

// NewReceiptsEngine creates the receipts check.
func NewReceiptsEngine() *ReceiptsEngine {
	return newReceiptsEngine(countPDFPages)
}

func newReceiptsEngine(open pdfOpener) *ReceiptsEngine {
	return &ReceiptsEngine{openPDF: open}
}

func (e *ReceiptsEngine) Name() string   { return string(RuleTypeReceipts) }
func (e *ReceiptsEngine) Type() RuleType { return RuleTypeReceipts }

// Process only counts items; receipts belong to the claim as a whole.
func (e *ReceiptsEngine) Process(_ context.Context, _ int, _ *expense.Item) error {
	e.stats.ItemsProcessed++
	return nil
}

// Finalize checks every receipt path of the claim.
func (e *ReceiptsEngine) Finalize(ctx context.Context, summary *claim.Summary) (*RuleResult, error) {
	var issues []Issue
	seen := make(map[string]bool)

	for _, path := range summary.Receipts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if seen[path] {
			issues = append(issues, receiptIssue(IssueTypeDuplicateReceipt, path, "attached more than once"))
			continue
		}
		seen[path] = true

		info, err := os.Stat(path)
		if err != nil {
			issues = append(issues, receiptIssue(IssueTypeMissingReceipt, path, "cannot be read: "+err.Error()))
			continue
		}
		if info.IsDir() {
			issues = append(issues, receiptIssue(IssueTypeMissingReceipt, path, "is a directory"))
			continue
		}

		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			e.stats.ItemsMatched++
			if _, err := e.openPDF(path); err != nil {
				issues = append(issues, receiptIssue(IssueTypeUnreadableReceipt, path, "is not a readable PDF: "+err.Error()))
			}
		}
	}

	e.stats.EndTime = time.Now()
	return &RuleResult{
		RuleName:    e.Name(),
		RuleType:    e.Type(),
		Description: "receipts must exist and PDFs must open",
		Issues:      issues,
		Stats:       e.stats,
	}, nil
}

// Reset clears internal state for reuse.
func (e *ReceiptsEngine) Reset() {
	e.stats = RuleStats{StartTime: time.Now()}
}

func receiptIssue(typ IssueType, path, problem string) Issue {
	return Issue{
		Type:        typ,
		Description: fmt.Sprintf("receipt %s %s", path, problem),
		Context:     IssueContext{Receipt: path},
	}
}
