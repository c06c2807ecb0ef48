package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/madgresso/madgresso/pkg/claim"
	"github.com/madgresso/madgresso/pkg/config"
	"github.com/madgresso/madgresso/pkg/expense"
)

// Driver event names, one JSON object per line on the driver's stdin.
const (
	EventBegin  = "begin"
	EventItem   = "item"
	EventFinish = "finish"
)

// Login carries what the driver needs to sign in to the expenses form. A nil
// Password means the user types it in the browser.
type Login struct {
	URL      string  `json:"url"`
	Username string  `json:"username"`
	Password *string `json:"password,omitempty"`
	Proxy    *string `json:"proxy,omitempty"`
}

// Event is one line of the driver protocol.
type Event struct {
	Event   string `json:"event"`
	ClaimID string `json:"claim_id,omitempty"`

	// begin
	Login   *Login  `json:"login,omitempty"`
	Month   *string `json:"month,omitempty"`
	Comment *string `json:"comment,omitempty"`

	// item
	Index int           `json:"index,omitempty"`
	Label string        `json:"label,omitempty"`
	Item  *expense.Item `json:"item,omitempty"`

	// finish; Month and Comment are only set when the claim overrides them.
	Receipts []string `json:"receipts,omitempty"`
}

// DriverSubmitter runs an external form driver and streams the claim to it.
type DriverSubmitter struct {
	path   string
	args   []string
	login  Login
	labels config.ExpenseTypes
	stdout io.Writer
	stderr io.Writer
	log    zerolog.Logger

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	enc     *json.Encoder
	claimID string
	items   int
	done    bool
}

// DriverOption configures a DriverSubmitter.
type DriverOption func(*DriverSubmitter)

// WithDriverOutput sets where the driver's stdout and stderr go. Both
// default to the current process's.
func WithDriverOutput(stdout, stderr io.Writer) DriverOption {
	return func(d *DriverSubmitter) {
		d.stdout = stdout
		d.stderr = stderr
	}
}

// WithDriverLogger sets the logger.
func WithDriverLogger(log zerolog.Logger) DriverOption {
	return func(d *DriverSubmitter) {
		d.log = log
	}
}

// NewDriverSubmitter creates a submitter for the driver executable at path.
// labels maps each type code to the label the form offers for it.
func NewDriverSubmitter(path string, args []string, login Login, labels config.ExpenseTypes, opts ...DriverOption) *DriverSubmitter {
	d := &DriverSubmitter{
		path:   path,
		args:   args,
		login:  login,
		labels: labels,
		stdout: os.Stdout,
		stderr: os.Stderr,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Begin starts the driver and sends the login details and header.
func (d *DriverSubmitter) Begin(ctx context.Context, h Header) error {
	if d.cmd != nil {
		return ErrAlreadyStarted
	}

	cmd := exec.CommandContext(ctx, d.path, d.args...) // #nosec G204 -- driver comes from the user's own config
	cmd.Stdout = d.stdout
	cmd.Stderr = d.stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("opening driver stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting driver %s: %w", d.path, err)
	}
	d.log.Debug().Str("driver", d.path).Int("pid", cmd.Process.Pid).Msg("driver started")

	d.cmd = cmd
	d.stdin = stdin
	d.enc = json.NewEncoder(stdin)
	d.claimID = h.ClaimID

	login := d.login
	return d.send(Event{
		Event:   EventBegin,
		ClaimID: h.ClaimID,
		Login:   &login,
		Month:   &h.Month,
		Comment: &h.Comment,
	})
}

// AddItem sends one item together with its form label.
func (d *DriverSubmitter) AddItem(ctx context.Context, item *expense.Item) error {
	if d.cmd == nil {
		return ErrNotStarted
	}
	d.items++
	label, _ := d.labels.Lookup(item.Type())
	return d.send(Event{
		Event:   EventItem,
		ClaimID: d.claimID,
		Index:   d.items,
		Label:   label,
		Item:    item,
	})
}

// Finish sends the receipts and any month or comment override, then waits
// for the driver to exit.
func (d *DriverSubmitter) Finish(ctx context.Context, s *claim.Summary) error {
	if d.cmd == nil {
		return ErrNotStarted
	}

	receipts := make([]string, 0, len(s.Receipts))
	for _, path := range s.Receipts {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolving receipt %s: %w", path, err)
		}
		receipts = append(receipts, abs)
	}

	if err := d.send(Event{
		Event:    EventFinish,
		ClaimID:  d.claimID,
		Month:    s.Month,
		Comment:  s.Comment,
		Receipts: receipts,
	}); err != nil {
		return err
	}

	return d.wait()
}

// Close ends the driver's input. A driver that has not seen a finish event
// should abandon the claim.
func (d *DriverSubmitter) Close() error {
	if d.cmd == nil || d.done {
		return nil
	}
	return d.wait()
}

func (d *DriverSubmitter) send(ev Event) error {
	if err := d.enc.Encode(ev); err != nil {
		return fmt.Errorf("sending %s event to driver: %w", ev.Event, err)
	}
	return nil
}

func (d *DriverSubmitter) wait() error {
	d.done = true
	_ = d.stdin.Close()
	if err := d.cmd.Wait(); err != nil {
		return fmt.Errorf("driver %s: %w", d.path, err)
	}
	d.log.Debug().Str("driver", d.path).Msg("driver exited")
	return nil
}
