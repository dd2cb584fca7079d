package extract

import (
	"strings"
	"unicode"

	"github.com/technode/hiring-cli/internal/config"
	"github.com/technode/hiring-cli/internal/model"
)

// salaryFloor is the lowest plausible annual USD figure. Anything below it
// after correction is nulled rather than persisted.
const salaryFloor = 20000

// normalizeSalary validates and fixes a salary integer against the source
// text. Values under 1000 are stripped-thousands artifacts ("150" means
// 150k). A configured monthly signal in the text converts month to year
// before the plausibility floor applies.
func normalizeSalary(raw *int, text string, rules *config.Rules) *int {
	if raw == nil {
		return nil
	}

	v := *raw
	if v <= 0 {
		return nil
	}
	if v < 1000 {
		v *= 1000
	}
	if v < salaryFloor && containsAny(text, rules.MonthlyKeywords) {
		v *= 12
	}
	if v < salaryFloor {
		return nil
	}
	return &v
}

// cleanTechStack drops generic category words and duplicates, preserving
// the original order of the remaining entries.
func cleanTechStack(stack []string, rules *config.Rules) []string {
	blacklist := make(map[string]struct{}, len(rules.TechBlacklist))
	for _, b := range rules.TechBlacklist {
		blacklist[strings.ToLower(strings.TrimSpace(b))] = struct{}{}
	}

	seen := make(map[string]struct{}, len(stack))
	var clean []string
	for _, item := range stack {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, banned := blacklist[key]; banned {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		clean = append(clean, item)
	}
	return clean
}

// overrideRemote applies the deterministic keyword rules to the source
// text, overruling the backend's own remote-type guess. GLOBAL keywords win
// over US-restricted ones; with no keyword hit the backend value stands,
// collapsed to the persisted enum.
func overrideRemote(reported string, text string, rules *config.Rules) model.RemoteType {
	if containsAny(text, rules.GlobalKeywords) {
		return model.RemoteGlobal
	}
	if containsAny(text, rules.USKeywords) {
		return model.RemoteUSOnly
	}
	return model.ParseRemoteType(reported)
}

// containsAny reports whether any keyword occurs in text, case-insensitive.
// Matches must sit on word boundaries so short keywords like "est" do not
// fire inside unrelated words.
func containsAny(text string, keywords []string) bool {
	lowered := strings.ToLower(text)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if containsWord(lowered, k) {
			return true
		}
	}
	return false
}

func containsWord(text, word string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(word)

		beforeOK := i == 0 || !isWordRune(rune(text[i-1]))
		afterOK := end == len(text) || !isWordRune(rune(text[end]))
		if beforeOK && afterOK {
			return true
		}
		start = i + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
