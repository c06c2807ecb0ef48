package claim

import (
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Claim.
type Option func(*Claim)

// WithDefaults seeds the default account and subproject. A nil account means
// items without one accept the form's own default.
func WithDefaults(account *string, subproject string) Option {
	return func(c *Claim) {
		if account != nil {
			a := *account
			c.defaultAccount = &a
		} else {
			c.defaultAccount = nil
		}
		c.defaultSubproject = subproject
	}
}

// WithLogger sets where line reports go.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Claim) {
		c.log = log
	}
}

// WithClock sets the clock used to fill in dates that omit the year.
func WithClock(now func() time.Time) Option {
	return func(c *Claim) {
		c.now = now
	}
}

// WithGlobber replaces the filesystem lookup for Receipts directives.
func WithGlobber(glob func(pattern string) ([]string, error)) Option {
	return func(c *Claim) {
		c.glob = glob
	}
}

// WithID sets the claim ID instead of a random one.
func WithID(id string) Option {
	return func(c *Claim) {
		c.id = id
	}
}
