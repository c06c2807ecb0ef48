package parser

import (
	"regexp"
	"strings"
)

// Kind is the category a claim line falls into.
type Kind int

const (
	// KindUnrecognized is a non-blank line that matches no rule.
	KindUnrecognized Kind = iota
	// KindBlank is an empty or whitespace-only line.
	KindBlank
	// KindComment is a line starting with '#'.
	KindComment
	// KindReceipts is a "Receipts: <glob>" directive.
	KindReceipts
	// KindProject is a "Project: <subproject>" directive.
	KindProject
	// KindMonth is a "Month: <month/year>" directive.
	KindMonth
	// KindCommentDirective is a "Comment: <text>" directive.
	KindCommentDirective
	// KindItem is an expense item line.
	KindItem
)

var kindNames = map[Kind]string{
	KindUnrecognized:     "unrecognized",
	KindBlank:            "blank",
	KindComment:          "comment",
	KindReceipts:         "receipts",
	KindProject:          "project",
	KindMonth:            "month",
	KindCommentDirective: "comment-directive",
	KindItem:             "item",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsDirective reports whether the kind changes claim-level or default state.
func (k Kind) IsDirective() bool {
	switch k {
	case KindReceipts, KindProject, KindMonth, KindCommentDirective:
		return true
	}
	return false
}

// ItemFields holds the raw fields of an item line. Account and Subproject
// are nil when the line does not give them.
type ItemFields struct {
	Type        string
	Date        string
	Currency    string
	Amount      string
	Description string
	Account     *string
	Subproject  *string
}

// Classification is the result of classifying one line.
type Classification struct {
	Kind Kind

	// Value is the directive value for directive kinds.
	Value string

	// Fields holds the item fields for KindItem.
	Fields ItemFields
}

// rule is one entry of the classification table.
type rule struct {
	pattern *regexp.Regexp
	kind    Kind
	extract func(m []string) Classification
}

func directive(kind Kind) func(m []string) Classification {
	return func(m []string) Classification {
		return Classification{Kind: kind, Value: strings.TrimRight(m[1], " \t")}
	}
}

// rules is evaluated in order and the first match wins. The 4-field item
// pattern accepts any \w* currency and so shadows some lines that would also
// fit the 5-field pattern; that precedence is part of the file format.
var rules = []rule{
	{
		pattern: regexp.MustCompile(`^\s*#`),
		kind:    KindComment,
		extract: func(m []string) Classification { return Classification{Kind: KindComment} },
	},
	{
		pattern: regexp.MustCompile(`(?i)^Receipts:\s*(.*)$`),
		kind:    KindReceipts,
		extract: func(m []string) Classification {
			return Classification{Kind: KindReceipts, Value: strings.TrimSpace(m[1])}
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)^Project:\s*(.*)$`),
		kind:    KindProject,
		extract: directive(KindProject),
	},
	{
		pattern: regexp.MustCompile(`(?i)^Month:\s*(.*)$`),
		kind:    KindMonth,
		extract: directive(KindMonth),
	},
	{
		pattern: regexp.MustCompile(`(?i)^Comment:\s*(.*)$`),
		kind:    KindCommentDirective,
		extract: directive(KindCommentDirective),
	},
	{
		// <type>; <date>; <cur> <amount>; <desc>
		pattern: regexp.MustCompile(`^(\w+);\s*([^;]+);\s*(\w*)\s+([\d.]+);\s([^;]*)$`),
		kind:    KindItem,
		extract: func(m []string) Classification {
			return item(m[1], m[2], m[3], m[4], m[5], nil, nil)
		},
	},
	{
		// <type>; <date>; <cur> <amount>; <account>; <desc>
		pattern: regexp.MustCompile(`^(\w+);\s*([^;]+);\s*(\w{3})\s+([\d.]+);\s*(\d{4});\s*([^;]*)$`),
		kind:    KindItem,
		extract: func(m []string) Classification {
			account := m[5]
			return item(m[1], m[2], m[3], m[4], m[6], &account, nil)
		},
	},
	{
		// <type>; <date>; <cur> <amount>; <account>; <subproject>; <desc>
		pattern: regexp.MustCompile(`^(\w+);\s*([^;]+);\s*(\w{3})\s+([\d.]+);\s*(\d{4});\s*([\w-]+);\s*([^;]*)$`),
		kind:    KindItem,
		extract: func(m []string) Classification {
			account, subproject := m[5], m[6]
			return item(m[1], m[2], m[3], m[4], m[7], &account, &subproject)
		},
	},
}

func item(typ, date, currency, amount, desc string, account, subproject *string) Classification {
	return Classification{
		Kind: KindItem,
		Fields: ItemFields{
			Type:        typ,
			Date:        strings.TrimSpace(date),
			Currency:    currency,
			Amount:      amount,
			Description: desc,
			Account:     account,
			Subproject:  subproject,
		},
	}
}

// Classify matches one line against the rule table.
func Classify(line string) Classification {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return Classification{Kind: KindBlank}
	}

	for _, r := range rules {
		if m := r.pattern.FindStringSubmatch(line); m != nil {
			return r.extract(m)
		}
	}

	return Classification{Kind: KindUnrecognized}
}
