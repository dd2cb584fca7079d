package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Rules holds the externally configurable keyword sets used by the junk
// filter and the normalization pass. Matching is case-insensitive substring.
type Rules struct {
	// JunkKeywords gates the junk filter: a comment mentioning none of
	// these is discarded before it incurs extraction cost.
	JunkKeywords []string `yaml:"junk_keywords"`
	// GlobalKeywords force remote_type to GLOBAL.
	GlobalKeywords []string `yaml:"global_keywords"`
	// USKeywords force remote_type to US_ONLY when no global keyword hits.
	USKeywords []string `yaml:"us_keywords"`
	// MonthlyKeywords signal that a stated salary is monthly, not annual.
	MonthlyKeywords []string `yaml:"monthly_keywords"`
	// TechBlacklist lists generic category words stripped from tech stacks.
	TechBlacklist []string `yaml:"tech_blacklist"`
}

// DefaultRules returns the compiled-in keyword sets.
func DefaultRules() *Rules {
	return &Rules{
		JunkKeywords: []string{
			"hiring", "engineer", "developer", "remote", "onsite", "on-site",
			"full-time", "full time", "part-time", "contract", "salary",
			"apply", "backend", "frontend", "fullstack", "devops", "stack",
			"position", "role", "job", "visa",
		},
		GlobalKeywords: []string{
			"anywhere", "worldwide", "world", "global", "apac", "asia",
			"europe/us", "all timezones", "any timezone",
		},
		USKeywords: []string{
			"us only", "us-only", "usa only", "us citizens", "us-based",
			"us based", "est", "pst", "cst", "mst", "eastern time",
			"pacific time",
		},
		MonthlyKeywords: []string{
			"per month", "/month", "/mo", "monthly", "a month", "p.m.",
		},
		TechBlacklist: []string{
			"frontend", "backend", "fullstack", "full stack", "devops",
			"engineer", "developer", "software", "web", "mobile", "cloud",
			"systems", "ui", "ux", "data", "science", "analysis",
		},
	}
}

// LoadRules reads a rules file and overlays it on the defaults. A missing
// file is not an error: the compiled-in sets apply. Only non-empty lists in
// the file replace their default counterpart.
func LoadRules(path string) (*Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rules, nil
		}
		return nil, eris.Wrapf(err, "config: read rules %s", path)
	}

	var overlay Rules
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, eris.Wrapf(err, "config: parse rules %s", path)
	}

	if len(overlay.JunkKeywords) > 0 {
		rules.JunkKeywords = overlay.JunkKeywords
	}
	if len(overlay.GlobalKeywords) > 0 {
		rules.GlobalKeywords = overlay.GlobalKeywords
	}
	if len(overlay.USKeywords) > 0 {
		rules.USKeywords = overlay.USKeywords
	}
	if len(overlay.MonthlyKeywords) > 0 {
		rules.MonthlyKeywords = overlay.MonthlyKeywords
	}
	if len(overlay.TechBlacklist) > 0 {
		rules.TechBlacklist = overlay.TechBlacklist
	}

	return rules, nil
}
