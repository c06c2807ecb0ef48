package submit

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/madgresso/madgresso/pkg/claim"
	"github.com/madgresso/madgresso/pkg/config"
	"github.com/madgresso/madgresso/pkg/expense"
	"github.com/madgresso/madgresso/pkg/webhook"
)

// Submission is the payload a WebhookSubmitter posts.
type Submission struct {
	ID          string          `json:"id"`
	Month       string          `json:"month"`
	Comment     string          `json:"comment"`
	Items       []*expense.Item `json:"items"`
	Receipts    []string        `json:"receipts"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// WebhookSubmitter collects the accepted items and posts the finished claim
// to a webhook endpoint.
type WebhookSubmitter struct {
	client     *webhook.Client
	cfg        config.WebhookConfig
	log        zerolog.Logger
	bestEffort bool
	now        func() time.Time

	header  Header
	started bool
	items   []*expense.Item
}

// WebhookOption configures a WebhookSubmitter.
type WebhookOption func(*WebhookSubmitter)

// WithWebhookLogger sets the logger.
func WithWebhookLogger(log zerolog.Logger) WebhookOption {
	return func(w *WebhookSubmitter) {
		w.log = log
	}
}

// BestEffort makes a failed post a logged warning instead of an error.
func BestEffort() WebhookOption {
	return func(w *WebhookSubmitter) {
		w.bestEffort = true
	}
}

// NewWebhookSubmitter creates a submitter posting to cfg.URL.
func NewWebhookSubmitter(client *webhook.Client, cfg config.WebhookConfig, opts ...WebhookOption) *WebhookSubmitter {
	w := &WebhookSubmitter{
		client: client,
		cfg:    cfg,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Begin records the header.
func (w *WebhookSubmitter) Begin(ctx context.Context, h Header) error {
	if w.started {
		return ErrAlreadyStarted
	}
	w.header = h
	w.started = true
	return nil
}

// AddItem buffers an item.
func (w *WebhookSubmitter) AddItem(ctx context.Context, item *expense.Item) error {
	if !w.started {
		return ErrNotStarted
	}
	w.items = append(w.items, item)
	return nil
}

// Finish posts the claim. The claim ID is sent as the idempotency key.
func (w *WebhookSubmitter) Finish(ctx context.Context, s *claim.Summary) error {
	if !w.started {
		return ErrNotStarted
	}

	payload := Submission{
		ID:          s.ID,
		Month:       s.MonthOr(w.header.Month),
		Comment:     s.CommentOr(w.header.Comment),
		Items:       w.items,
		Receipts:    s.Receipts,
		SubmittedAt: w.now(),
	}

	resp := w.client.Send(ctx, payload, webhook.SendOptions{
		URL:            w.cfg.URL,
		Token:          w.cfg.Token,
		Timeout:        w.cfg.Timeout,
		IdempotencyKey: s.ID,
		Event:          "claim",
	})

	name := w.cfg.Name
	if name == "" {
		name = w.cfg.URL
	}
	if !resp.Success() {
		if w.bestEffort {
			w.log.Warn().Err(resp.Error).Str("webhook", name).Msg("webhook failed")
			return nil
		}
		return resp.Error
	}

	w.log.Info().
		Str("webhook", name).
		Int("status", resp.StatusCode).
		Dur("duration", resp.Duration).
		Msg("webhook sent")
	return nil
}

// Close is a no-op.
func (w *WebhookSubmitter) Close() error { return nil }
