package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/madgresso/madgresso/pkg/claim"
	"github.com/madgresso/madgresso/pkg/config"
	"github.com/madgresso/madgresso/pkg/expense"
	"github.com/madgresso/madgresso/pkg/logger"
	"github.com/madgresso/madgresso/pkg/parser"
	"github.com/madgresso/madgresso/pkg/webhook"
)

var testTypes = config.ExpenseTypes{
	"bike":  "Mileage - Bicycle rate",
	"plane": "Airfares - International - Currency",
}

const testClaim = `Month: October 2016
bike; 12 Oct; MIL 13; Cycle to Paddington
taxi; 12 Oct; GBP 9; Cab
plane; 12 Oct; GBP 100.50; 6050; R10101-01; Flight
`

func newClaim(t *testing.T, content string) *claim.Claim {
	t.Helper()
	return claim.New(parser.NewReaderSource("test.txt", strings.NewReader(content)),
		claim.WithDefaults(nil, "R10101-01"),
		claim.WithClock(func() time.Time { return time.Date(2016, 11, 25, 0, 0, 0, 0, time.UTC) }),
		claim.WithID("claim-1"),
	)
}

// recorder remembers every call and whether the claim was still being read
// when each item arrived.
type recorder struct {
	c *claim.Claim

	header   Header
	items    []*expense.Item
	streamed []bool
	summary  *claim.Summary
	closed   bool

	failAdd error
}

func (r *recorder) Begin(ctx context.Context, h Header) error {
	r.header = h
	return nil
}

func (r *recorder) AddItem(ctx context.Context, item *expense.Item) error {
	if r.failAdd != nil {
		return r.failAdd
	}
	r.items = append(r.items, item)
	if r.c != nil {
		r.streamed = append(r.streamed, !r.c.Drained())
	}
	return nil
}

func (r *recorder) Finish(ctx context.Context, s *claim.Summary) error {
	r.summary = s
	return nil
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func TestRun(t *testing.T) {
	c := newClaim(t, testClaim)
	rec := &recorder{c: c}
	var logs bytes.Buffer

	result, err := Run(context.Background(), c, rec, Header{Month: "November 2016"}, testTypes, logger.NewWithWriter(&logs))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Submitted != 2 || result.Skipped != 1 || result.ClaimID != "claim-1" {
		t.Errorf("Result = %+v", result)
	}
	if rec.header.ClaimID != "claim-1" || rec.header.Month != "November 2016" {
		t.Errorf("Header = %+v", rec.header)
	}
	if len(rec.items) != 2 || rec.items[0].Type() != "bike" || rec.items[1].Type() != "plane" {
		t.Fatalf("items = %v", rec.items)
	}
	for i, live := range rec.streamed {
		if !live {
			t.Errorf("item %d arrived after the claim was drained", i+1)
		}
	}
	if rec.summary == nil || rec.summary.MonthOr("") != "October 2016" {
		t.Errorf("Finish summary = %+v", rec.summary)
	}
	if !strings.Contains(logs.String(), "taxi not recognised, ignoring item.") {
		t.Errorf("missing skip warning in logs: %s", logs.String())
	}
	if !strings.Contains(logs.String(), `"claim_id":"claim-1"`) {
		t.Errorf("logs not tagged with the claim ID: %s", logs.String())
	}
	if rec.closed {
		t.Error("Run() closed the submitter")
	}
}

func TestRun_ParseError(t *testing.T) {
	c := newClaim(t, "bike; 12 Oct; MIL 13; ok\nbike; 31 Feb; MIL 2; bad\n")
	rec := &recorder{}

	result, err := Run(context.Background(), c, rec, Header{}, testTypes, logger.Nop())
	var perr *claim.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Run() error = %v, want *claim.ParseError", err)
	}
	if perr.LineNum != 2 {
		t.Errorf("LineNum = %d, want 2", perr.LineNum)
	}
	if result.Submitted != 1 || rec.summary != nil {
		t.Errorf("Result = %+v, Finish called = %v", result, rec.summary != nil)
	}
}

func TestRun_AddItemError(t *testing.T) {
	boom := errors.New("form rejected item")
	rec := &recorder{failAdd: boom}

	_, err := Run(context.Background(), newClaim(t, testClaim), rec, Header{}, testTypes, logger.Nop())
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	s := Multi(a, b)

	if _, err := Run(context.Background(), newClaim(t, testClaim), s, Header{}, testTypes, logger.Nop()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	for name, rec := range map[string]*recorder{"a": a, "b": b} {
		if len(rec.items) != 2 || rec.summary == nil || !rec.closed {
			t.Errorf("%s: items = %d, finished = %v, closed = %v", name, len(rec.items), rec.summary != nil, rec.closed)
		}
	}
}

func TestPrintSubmitter(t *testing.T) {
	var buf bytes.Buffer
	s := NewPrintSubmitter(&buf, nil)

	_, err := Run(context.Background(), newClaim(t, testClaim), s, Header{Month: "November 2016", Comment: "trip"}, testTypes, logger.Nop())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "Dry run: claim claim-1\n" +
		"Month:   November 2016\n" +
		"Comment: trip\n" +
		"+ bike; 12 Oct 2016; MIL 13; Cycle to Paddington\n" +
		"+ plane; 12 Oct 2016; GBP 100.50; 6050; R10101-01; Flight\n" +
		"madgresso: 2 items, 0 receipts, GBP 100.50, 13 miles; 0 issues\n"
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestPrintSubmitter_NotStarted(t *testing.T) {
	s := NewPrintSubmitter(io.Discard, nil)
	if err := s.AddItem(context.Background(), nil); !errors.Is(err, ErrNotStarted) {
		t.Errorf("AddItem() error = %v, want ErrNotStarted", err)
	}
}

func TestWebhookSubmitter(t *testing.T) {
	var header http.Header
	var body []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	s := NewWebhookSubmitter(webhook.NewClient(), config.WebhookConfig{URL: server.URL, Token: "t0k"})
	_, err := Run(context.Background(), newClaim(t, testClaim), s, Header{Month: "November 2016", Comment: "trip"}, testTypes, logger.Nop())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if header.Get("Idempotency-Key") != "claim-1" || header.Get("Authorization") != "Bearer t0k" {
		t.Errorf("headers = %v", header)
	}

	var got struct {
		ID      string                   `json:"id"`
		Month   string                   `json:"month"`
		Comment string                   `json:"comment"`
		Items   []map[string]interface{} `json:"items"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.ID != "claim-1" || got.Month != "October 2016" || got.Comment != "trip" {
		t.Errorf("payload = %+v", got)
	}
	if len(got.Items) != 2 || got.Items[1]["amount"] != "100.50" || got.Items[0]["amount_field"] != "miles" {
		t.Errorf("items = %v", got.Items)
	}
}

func TestWebhookSubmitter_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := config.WebhookConfig{URL: server.URL}

	strict := NewWebhookSubmitter(webhook.NewClient(), cfg)
	if _, err := Run(context.Background(), newClaim(t, testClaim), strict, Header{}, testTypes, logger.Nop()); err == nil {
		t.Error("Run() expected error from failing webhook")
	}

	var logs bytes.Buffer
	lenient := NewWebhookSubmitter(webhook.NewClient(), cfg, BestEffort(), WithWebhookLogger(logger.NewWithWriter(&logs)))
	if _, err := Run(context.Background(), newClaim(t, testClaim), lenient, Header{}, testTypes, logger.Nop()); err != nil {
		t.Errorf("Run() error = %v with BestEffort", err)
	}
	if !strings.Contains(logs.String(), "webhook failed") {
		t.Errorf("missing warning: %s", logs.String())
	}
}
