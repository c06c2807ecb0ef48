package parser

import (
	"context"
	"io"
)

// ConcatSource combines multiple LineSources into a single stream. Each
// source is read to its end before the next one is started, so lines keep
// the order of the sources and of the lines within them.
type ConcatSource struct {
	sources []LineSource
	index   int
	closed  bool
}

// NewConcatSource creates a LineSource that reads sources one after another.
func NewConcatSource(sources ...LineSource) *ConcatSource {
	return &ConcatSource{sources: sources}
}

// Next returns the next line of the current source, moving on to the
// following source when it is exhausted.
// Returns io.EOF when all sources are exhausted.
func (c *ConcatSource) Next(ctx context.Context) (*Line, error) {
	if c.closed {
		return nil, ErrSourceClosed
	}

	for c.index < len(c.sources) {
		line, err := c.sources[c.index].Next(ctx)
		if err == io.EOF {
			c.index++
			continue
		}
		if err != nil {
			return nil, err
		}
		return line, nil
	}

	return nil, io.EOF
}

// Close releases all source resources.
func (c *ConcatSource) Close() error {
	c.closed = true
	var firstErr error
	for _, src := range c.sources {
		if err := src.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
