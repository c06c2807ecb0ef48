package expense

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// ErrInvalidDate is returned when an item date cannot be read as a calendar date.
var ErrInvalidDate = errors.New("invalid date")

// DateFormat is one accepted spelling of an item date.
type DateFormat struct {
	Name     string   // Human-readable name
	Layout   string   // Go time layout for parsing
	HasYear  bool     // False when the year is taken from the current date
	Examples []string // Example dates
}

// DefaultDateFormats returns the date spellings accepted on item lines.
// Day-first forms come before month-first ones; 12/10 is the 12th of October.
func DefaultDateFormats() []*DateFormat {
	return []*DateFormat{
		{Name: "ISO 8601", Layout: "2006-01-02", HasYear: true, Examples: []string{"2016-10-12"}},
		{Name: "Day month year", Layout: "2 Jan 2006", HasYear: true, Examples: []string{"12 Oct 2016"}},
		{Name: "Day full month year", Layout: "2 January 2006", HasYear: true, Examples: []string{"12 October 2016"}},
		{Name: "Day month short year", Layout: "2 Jan 06", HasYear: true, Examples: []string{"12 Oct 16"}},
		{Name: "Weekday day month year", Layout: "Mon 2 Jan 2006", HasYear: true, Examples: []string{"Wed 12 Oct 2016"}},
		{Name: "Full weekday day month year", Layout: "Monday 2 January 2006", HasYear: true, Examples: []string{"Wednesday 12 October 2016"}},
		{Name: "Dashed day month year", Layout: "2-Jan-2006", HasYear: true, Examples: []string{"12-Oct-2016"}},
		{Name: "Dashed day month short year", Layout: "2-Jan-06", HasYear: true, Examples: []string{"12-Oct-16"}},
		{Name: "UK numeric", Layout: "2/1/2006", HasYear: true, Examples: []string{"12/10/2016"}},
		{Name: "UK numeric short year", Layout: "2/1/06", HasYear: true, Examples: []string{"12/10/16"}},
		{Name: "Dotted numeric", Layout: "2.1.2006", HasYear: true, Examples: []string{"12.10.2016"}},
		{Name: "Month day year", Layout: "Jan 2 2006", HasYear: true, Examples: []string{"Oct 12 2016", "Oct 12, 2016"}},
		{Name: "Full month day year", Layout: "January 2 2006", HasYear: true, Examples: []string{"October 12 2016"}},
		{Name: "Weekday month day year", Layout: "Mon Jan 2 2006", HasYear: true, Examples: []string{"Wed Oct 12 2016"}},
		{Name: "Day month", Layout: "2 Jan", Examples: []string{"12 Oct", "12th Oct"}},
		{Name: "Day full month", Layout: "2 January", Examples: []string{"12 October"}},
		{Name: "Weekday day month", Layout: "Mon 2 Jan", Examples: []string{"Wed 12 Oct"}},
		{Name: "Full weekday day full month", Layout: "Monday 2 January", Examples: []string{"Wednesday 12 October"}},
		{Name: "Dashed day month", Layout: "2-Jan", Examples: []string{"12-Oct"}},
		{Name: "UK numeric day month", Layout: "2/1", Examples: []string{"12/10"}},
		{Name: "Month day", Layout: "Jan 2", Examples: []string{"Oct 12"}},
		{Name: "Full month day", Layout: "January 2", Examples: []string{"October 12"}},
	}
}

var (
	dateFormats    = DefaultDateFormats()
	ordinalPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)\b`)
)

// ParseDate reads a free-form date. When the spelling carries no year the
// year of now is used.
func ParseDate(s string, now time.Time) (civil.Date, error) {
	norm := normalizeDate(s)
	if norm == "" {
		return civil.Date{}, fmt.Errorf("%w: empty date", ErrInvalidDate)
	}

	for _, f := range dateFormats {
		t, err := time.Parse(f.Layout, norm)
		if err != nil {
			continue
		}

		d := civil.DateOf(t)
		if !f.HasYear {
			d.Year = now.Year()
		}
		if !d.IsValid() {
			return civil.Date{}, fmt.Errorf("%w: %q is not a day in %d", ErrInvalidDate, s, d.Year)
		}
		return d, nil
	}

	return civil.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// normalizeDate collapses whitespace, drops commas and ordinal suffixes.
func normalizeDate(s string) string {
	s = strings.ReplaceAll(s, ",", " ")
	s = ordinalPattern.ReplaceAllString(s, "$1")
	return strings.Join(strings.Fields(s), " ")
}
