// Package filter implements the cheap local junk predicate that runs before
// any comment incurs extraction cost.
package filter

import "strings"

// minPostingLength is the floor below which a comment cannot plausibly be a
// job posting. Anything shorter is junk regardless of content.
const minPostingLength = 60

// Filter classifies comments as junk using length and keyword rules. It is
// pure and does no I/O. The rules are deliberately conservative: a non-job
// comment reaching the backend costs a little, a dropped real posting costs
// the product a row.
type Filter struct {
	keywords []string // lowercased
}

// New builds a Filter from a configured keyword set.
func New(keywords []string) *Filter {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lowered = append(lowered, k)
		}
	}
	return &Filter{keywords: lowered}
}

// IsJunk reports whether text is unlikely to contain a job posting.
// Rules apply in order, first match wins:
//  1. shorter than 60 characters
//  2. none of the configured keywords appears (case-insensitive substring)
func (f *Filter) IsJunk(text string) bool {
	if len(text) < minPostingLength {
		return true
	}

	lowered := strings.ToLower(text)
	for _, k := range f.keywords {
		if strings.Contains(lowered, k) {
			return false
		}
	}
	return true
}
