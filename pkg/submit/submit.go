// Package submit hands a claim's items to whatever fills in the expenses
// form. Items are streamed as they are read, so an interactive session
// drives the form line by line.
package submit

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/madgresso/madgresso/pkg/claim"
	"github.com/madgresso/madgresso/pkg/config"
	"github.com/madgresso/madgresso/pkg/expense"
	"github.com/madgresso/madgresso/pkg/logger"
)

// ErrAlreadyStarted is returned when Begin is called twice.
var ErrAlreadyStarted = errors.New("submission already started")

// ErrNotStarted is returned when items arrive before Begin.
var ErrNotStarted = errors.New("submission not started")

// Header holds the claim-level values known before any item is read. The
// claim file may still override Month and Comment; those overrides arrive
// with Finish.
type Header struct {
	ClaimID string `json:"claim_id"`
	Month   string `json:"month"`
	Comment string `json:"comment"`
}

// Submitter receives one claim. Begin is called once, then AddItem for each
// accepted item, then Finish with the drained claim. Close releases any
// resources and may be called at any point.
type Submitter interface {
	Begin(ctx context.Context, h Header) error
	AddItem(ctx context.Context, item *expense.Item) error
	Finish(ctx context.Context, s *claim.Summary) error
	Close() error
}

// Result counts what happened to the items of a claim.
type Result struct {
	ClaimID   string
	Submitted int
	Skipped   int
}

// Run reads c to its end, passing each item whose type is in the vocabulary
// to s. Items of other types are skipped with a warning. The caller closes s.
func Run(ctx context.Context, c *claim.Claim, s Submitter, h Header, types config.ExpenseTypes, log zerolog.Logger) (*Result, error) {
	if h.ClaimID == "" {
		h.ClaimID = c.ID()
	}
	result := &Result{ClaimID: h.ClaimID}
	log = logger.WithFields(log, map[string]interface{}{"claim_id": h.ClaimID})

	if err := s.Begin(ctx, h); err != nil {
		return result, fmt.Errorf("starting claim: %w", err)
	}

	for {
		item, err := c.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, err
		}

		if _, ok := types.Lookup(item.Type()); !ok {
			log.Warn().
				Str("type", item.Type()).
				Str("item", item.Line()).
				Msgf("%s not recognised, ignoring item.", item.Type())
			result.Skipped++
			continue
		}

		if err := s.AddItem(ctx, item); err != nil {
			return result, fmt.Errorf("adding item %q: %w", item.Line(), err)
		}
		result.Submitted++
		log.Debug().Str("item", item.Line()).Msg("item submitted")
	}

	summary, err := c.Snapshot()
	if err != nil {
		return result, err
	}
	if err := s.Finish(ctx, summary); err != nil {
		return result, fmt.Errorf("finishing claim: %w", err)
	}

	log.Info().
		Str("claim_id", result.ClaimID).
		Int("submitted", result.Submitted).
		Int("skipped", result.Skipped).
		Int("receipts", len(summary.Receipts)).
		Msg("claim submitted")

	return result, nil
}

// Multi returns a Submitter that forwards every call to each of ss in turn,
// stopping at the first error. Close closes all of them.
func Multi(ss ...Submitter) Submitter {
	return multi(ss)
}

type multi []Submitter

func (m multi) Begin(ctx context.Context, h Header) error {
	for _, s := range m {
		if err := s.Begin(ctx, h); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) AddItem(ctx context.Context, item *expense.Item) error {
	for _, s := range m {
		if err := s.AddItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) Finish(ctx context.Context, summary *claim.Summary) error {
	for _, s := range m {
		if err := s.Finish(ctx, summary); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// accepted returns s with its items replaced by the ones actually submitted.
func accepted(s *claim.Summary, items []*expense.Item) *claim.Summary {
	out := *s
	out.Items = append([]*expense.Item(nil), items...)
	return &out
}
