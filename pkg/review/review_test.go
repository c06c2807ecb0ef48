package review

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/madgresso/madgresso/pkg/claim"
	"github.com/madgresso/madgresso/pkg/config"
	"github.com/madgresso/madgresso/pkg/parser"
)

var testTypes = config.ExpenseTypes{
	"food":  "Meals & Refreshments - Currency",
	"plane": "Airfares - International - Currency",
	"bike":  "Mileage - Bicycle rate",
}

func summaryOf(t *testing.T, content string) *claim.Summary {
	t.Helper()
	c := claim.New(parser.NewReaderSource("test.txt", strings.NewReader(content)),
		claim.WithDefaults(nil, "R10101-01"),
		claim.WithClock(func() time.Time { return time.Date(2016, 11, 25, 0, 0, 0, 0, time.UTC) }),
	)
	if _, err := c.Drain(context.Background()); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	s, err := c.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	return s
}

func resultFor(t *testing.T, r *Result, rule RuleType) *RuleResult {
	t.Helper()
	for _, rr := range r.Results {
		if rr.RuleType == rule {
			return rr
		}
	}
	t.Fatalf("no result for %s", rule)
	return nil
}

func TestReviewer_CleanClaim(t *testing.T) {
	s := summaryOf(t, `bike; 12 Oct; MIL 13; Cycle to Paddington
plane; 12 Oct; GBP 100; 6050; R10101-01; Flight
`)

	r, err := NewReviewer(testTypes)
	if err != nil {
		t.Fatalf("NewReviewer() error = %v", err)
	}
	result, err := r.Review(context.Background(), s)
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}

	if len(result.Results) != len(AllRules) {
		t.Errorf("Results = %d, want %d", len(result.Results), len(AllRules))
	}
	if result.TotalIssues() != 0 {
		t.Errorf("TotalIssues() = %d, want 0", result.TotalIssues())
	}
	if result.Metadata.ItemsProcessed != 2 || result.Metadata.ClaimID != s.ID {
		t.Errorf("Metadata = %+v", result.Metadata)
	}
}

func TestUnknownTypeEngine(t *testing.T) {
	s := summaryOf(t, `food; 12 Oct; GBP 5; lunch
taxi; 12 Oct; GBP 9; cab
`)

	r, err := NewReviewer(testTypes, WithRuleFilter([]string{"unknown_type"}))
	if err != nil {
		t.Fatalf("NewReviewer() error = %v", err)
	}
	result, err := r.Review(context.Background(), s)
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}

	rr := resultFor(t, result, RuleTypeUnknownType)
	if len(rr.Issues) != 1 {
		t.Fatalf("Issues = %d, want 1", len(rr.Issues))
	}
	issue := rr.Issues[0]
	if issue.Type != IssueTypeUnknownType || issue.Context.ItemIndex != 2 || issue.Context.TypeCode != "taxi" {
		t.Errorf("Issue = %+v", issue)
	}
	if !strings.Contains(issue.Description, "taxi not recognised") {
		t.Errorf("Description = %q", issue.Description)
	}
	if rr.Stats.ItemsProcessed != 2 {
		t.Errorf("ItemsProcessed = %d, want 2", rr.Stats.ItemsProcessed)
	}
}

func TestDuplicateEngine(t *testing.T) {
	s := summaryOf(t, `food; 12 Oct; GBP 5; lunch
food; 12 Oct 2016; GBP 5; lunch
food; 12 Oct; GBP 5.00; lunch
food; 12 Oct; GBP 5; 6050; R10101-01; lunch
food; 12 Oct; GBP 5; lunch
`)

	r, err := NewReviewer(testTypes, WithRuleFilter([]string{"duplicate_item"}))
	if err != nil {
		t.Fatalf("NewReviewer() error = %v", err)
	}
	result, err := r.Review(context.Background(), s)
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}

	rr := resultFor(t, result, RuleTypeDuplicateItem)
	if len(rr.Issues) != 2 {
		t.Fatalf("Issues = %d, want 2: %+v", len(rr.Issues), rr.Issues)
	}
	for i, want := range []int{2, 5} {
		if rr.Issues[i].Context.ItemIndex != want || rr.Issues[i].Context.FirstIndex != 1 {
			t.Errorf("Issues[%d].Context = %+v, want item %d repeating 1", i, rr.Issues[i].Context, want)
		}
	}
}

func TestReceiptsEngine(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "hotel.pdf")
	bad := filepath.Join(dir, "taxi.pdf")
	photo := filepath.Join(dir, "lunch.jpg")
	for _, p := range []string{good, bad, photo} {
		if err := os.WriteFile(p, []byte("receipt"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	s := summaryOf(t, "Receipts: "+filepath.Join(dir, "*")+"\nReceipts: "+good+"\n")
	// Remove one file after the claim was read.
	if err := os.Remove(photo); err != nil {
		t.Fatal(err)
	}

	opened := 0
	opener := func(path string) (int, error) {
		opened++
		if path == bad {
			return 0, os.ErrInvalid
		}
		return 2, nil
	}

	r, err := NewReviewer(testTypes, WithRuleFilter([]string{"receipts"}), withPDFOpener(opener))
	if err != nil {
		t.Fatalf("NewReviewer() error = %v", err)
	}
	result, err := r.Review(context.Background(), s)
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}

	rr := resultFor(t, result, RuleTypeReceipts)
	got := make(map[IssueType]string)
	for _, issue := range rr.Issues {
		got[issue.Type] = issue.Context.Receipt
	}
	want := map[IssueType]string{
		IssueTypeMissingReceipt:    photo,
		IssueTypeUnreadableReceipt: bad,
		IssueTypeDuplicateReceipt:  good,
	}
	if len(rr.Issues) != len(want) {
		t.Fatalf("Issues = %+v", rr.Issues)
	}
	for typ, path := range want {
		if got[typ] != path {
			t.Errorf("%s issue for %q, want %q", typ, got[typ], path)
		}
	}
	if opened != 2 {
		t.Errorf("opened %d PDFs, want 2", opened)
	}
}

func TestCountPDFPages_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := countPDFPages(path); err == nil {
		t.Error("countPDFPages() expected error for non-PDF file")
	}
}

func TestNewReviewer_UnknownRule(t *testing.T) {
	_, err := NewReviewer(testTypes, WithRuleFilter([]string{"amount_limit"}))
	if err == nil {
		t.Error("NewReviewer() expected error for unknown check")
	}
}

func TestReviewer_Reusable(t *testing.T) {
	s := summaryOf(t, "taxi; 12 Oct; GBP 9; cab\n")

	r, err := NewReviewer(testTypes)
	if err != nil {
		t.Fatalf("NewReviewer() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		result, err := r.Review(context.Background(), s)
		if err != nil {
			t.Fatalf("Review() error = %v", err)
		}
		if result.TotalIssues() != 1 || result.RulesWithIssues() != 1 {
			t.Errorf("run %d: TotalIssues() = %d, RulesWithIssues() = %d", i, result.TotalIssues(), result.RulesWithIssues())
		}
	}
}

func TestReviewer_ContextCancelled(t *testing.T) {
	s := summaryOf(t, "food; 12 Oct; GBP 5; lunch\n")

	r, err := NewReviewer(testTypes)
	if err != nil {
		t.Fatalf("NewReviewer() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Review(ctx, s); err != context.Canceled {
		t.Errorf("Review() error = %v, want context.Canceled", err)
	}
}
