// Package claim builds an expense claim from a stream of claim-file lines.
//
// A Claim is filled in as its items are read: directives met along the way
// change the defaults for later items and set the claim's receipts, month
// and comment. Those claim-level values are only final once Next has
// returned io.EOF, and the item sequence can be read only once.
package claim

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/madgresso/madgresso/pkg/expense"
	"github.com/madgresso/madgresso/pkg/parser"
)

// Claim accumulates the state of one expense claim while its lines are read.
// It is not safe for concurrent use.
type Claim struct {
	source parser.LineSource
	log    zerolog.Logger
	now    func() time.Time
	glob   func(pattern string) ([]string, error)

	id        string
	createdAt time.Time

	defaultAccount    *string
	defaultSubproject string

	receipts []string
	items    []*expense.Item
	month    *string
	comment  *string
	lines    int

	drained bool
}

// New creates a claim reading lines from source. Sources are consumed in
// order; pass a parser.ConcatSource to read several.
func New(source parser.LineSource, opts ...Option) *Claim {
	c := &Claim{
		source: source,
		log:    zerolog.Nop(),
		now:    time.Now,
		glob:   parser.ExpandGlob,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	c.createdAt = c.now()
	return c
}

// ID returns the claim's run identifier.
func (c *Claim) ID() string { return c.id }

// Next returns the next item, first applying any directives that precede it.
// It returns io.EOF at the end of input and ErrConsumed on any call after
// that. A *ParseError is returned for an item line that cannot be built;
// state from earlier lines is kept and reading may continue.
func (c *Claim) Next(ctx context.Context) (*expense.Item, error) {
	if c.drained {
		return nil, ErrConsumed
	}

	for {
		line, err := c.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			c.drained = true
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
		c.lines++

		item, err := c.consume(line)
		if err != nil {
			return nil, err
		}
		if item != nil {
			c.items = append(c.items, item)
			return item, nil
		}
	}
}

// Drain reads the remaining lines and returns every item of the claim,
// including those already returned by Next.
func (c *Claim) Drain(ctx context.Context) ([]*expense.Item, error) {
	for {
		_, err := c.Next(ctx)
		if errors.Is(err, io.EOF) {
			return c.Items(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Drained reports whether the end of input has been reached.
func (c *Claim) Drained() bool { return c.drained }

// Items returns the items read so far.
func (c *Claim) Items() []*expense.Item {
	return append([]*expense.Item(nil), c.items...)
}

// Receipts returns the receipt paths found so far, in directive order.
func (c *Claim) Receipts() []string {
	return append([]string(nil), c.receipts...)
}

// Month returns the month override, or nil if none was given.
func (c *Claim) Month() *string { return copyString(c.month) }

// Comment returns the comment override, or nil if none was given.
func (c *Claim) Comment() *string { return copyString(c.comment) }

// DefaultSubproject returns the subproject applied to items that give none.
func (c *Claim) DefaultSubproject() string { return c.defaultSubproject }

// Snapshot returns the finished claim. It fails with ErrNotDrained until the
// item sequence has been read to its end.
func (c *Claim) Snapshot() (*Summary, error) {
	if !c.drained {
		return nil, ErrNotDrained
	}
	return &Summary{
		ID:                c.id,
		Receipts:          c.Receipts(),
		Items:             c.Items(),
		Month:             c.Month(),
		Comment:           c.Comment(),
		DefaultSubproject: c.defaultSubproject,
		Lines:             c.lines,
		CreatedAt:         c.createdAt,
	}, nil
}

// consume applies one line. It returns the item the line describes, or nil
// for any other kind of line.
func (c *Claim) consume(line *parser.Line) (*expense.Item, error) {
	cl := parser.Classify(line.Text)

	if cl.Kind == parser.KindBlank || cl.Kind == parser.KindComment {
		return nil, nil
	}

	if cl.Kind.IsDirective() {
		c.log.Debug().
			Str("source", line.Source).
			Int("line_num", line.LineNum).
			Stringer("kind", cl.Kind).
			Str("value", cl.Value).
			Msg("directive")
	}

	switch cl.Kind {
	case parser.KindReceipts:
		c.addReceipts(cl.Value, line)

	case parser.KindProject:
		c.defaultSubproject = cl.Value

	case parser.KindMonth:
		month := cl.Value
		c.month = &month

	case parser.KindCommentDirective:
		comment := cl.Value
		c.comment = &comment

	case parser.KindItem:
		return c.buildItem(cl.Fields, line)

	default:
		c.log.Warn().
			Str("source", line.Source).
			Int("line_num", line.LineNum).
			Str("line", line.Text).
			Msg("ignoring line")
	}

	return nil, nil
}

func (c *Claim) addReceipts(pattern string, line *parser.Line) {
	matches, err := c.glob(pattern)
	if err != nil {
		c.log.Warn().
			Err(err).
			Str("source", line.Source).
			Int("line_num", line.LineNum).
			Msg("ignoring receipts")
		return
	}

	for _, path := range matches {
		c.receipts = append(c.receipts, path)
		c.log.Info().Str("path", path).Msg("added receipt")
	}
}

func (c *Claim) buildItem(f parser.ItemFields, line *parser.Line) (*expense.Item, error) {
	account := c.defaultAccount
	if f.Account != nil {
		account = f.Account
	}
	subproject := c.defaultSubproject
	if f.Subproject != nil {
		subproject = *f.Subproject
	}

	item, err := expense.NewItem(f.Type, f.Date, f.Currency, f.Amount, f.Description, account, subproject, c.now())
	if err != nil {
		return nil, &ParseError{
			Source:  line.Source,
			LineNum: line.LineNum,
			Line:    line.Text,
			Err:     err,
		}
	}
	return item, nil
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
