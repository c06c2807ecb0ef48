// Package parser reads claim-file lines from files, readers and the terminal,
// and classifies each line.
package parser

// Line is one raw line of claim input.
type Line struct {
	// Text is the line content without its terminator.
	Text string

	// Source names where the line came from (file path, "stdin", ...).
	Source string

	// LineNum is the 1-based line number within Source.
	LineNum int
}
