package dashboard

import (
	"sort"
	"strings"

	"github.com/technode/hiring-cli/internal/model"
)

const maskedValue = "hidden in preview"

// Teaser is the bounded public view of the table. Masking and capping
// happen at construction, so handlers can only ever see the teaser slice.
type Teaser struct {
	stats Stats
	rows  []model.JobRecord
}

// NewTeaser builds the public view from the full record set. Priority rows
// (GLOBAL remote) surface first, then the table's persisted order; the
// slice is capped at maxRows and contact fields are masked when mask is on.
func NewTeaser(records []model.JobRecord, maxRows int, mask bool) *Teaser {
	stats := Aggregate(records)

	rows := make([]model.JobRecord, len(records))
	copy(rows, records)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Priority && !rows[j].Priority
	})

	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	if mask {
		for i := range rows {
			if rows[i].ApplicationURL != "" {
				rows[i].ApplicationURL = maskedValue
			}
			if rows[i].EmailContact != "" {
				rows[i].EmailContact = maskedValue
			}
		}
	}

	return &Teaser{stats: stats, rows: rows}
}

// Stats returns the full-dataset aggregates.
func (t *Teaser) Stats() Stats {
	return t.stats
}

// JobsQuery filters and paginates within the teaser slice. Zero values
// mean "no constraint".
type JobsQuery struct {
	Tech       string
	Remote     string
	Visa       *bool
	Experience string
	Role       string
	Industry   string
	Offset     int
	Limit      int
}

// Jobs applies the query to the teaser rows. Filters never reach beyond
// the capped slice, so a filter can narrow the preview but never widen it.
func (t *Teaser) Jobs(q JobsQuery) []model.JobRecord {
	matched := make([]model.JobRecord, 0, len(t.rows))
	for _, r := range t.rows {
		if !matchJob(r, q) {
			continue
		}
		matched = append(matched, r)
	}

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return []model.JobRecord{}
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched
}

func matchJob(r model.JobRecord, q JobsQuery) bool {
	if q.Remote != "" && !strings.EqualFold(string(r.RemoteType), q.Remote) {
		return false
	}
	if q.Visa != nil {
		if r.VisaSponsorship == nil || *r.VisaSponsorship != *q.Visa {
			return false
		}
	}
	if q.Experience != "" && !containsFold(r.ExperienceLevel, q.Experience) {
		return false
	}
	if q.Role != "" && !containsFold(r.JobRole, q.Role) {
		return false
	}
	if q.Industry != "" && !containsFold(r.CompanyIndustry, q.Industry) {
		return false
	}
	if q.Tech != "" {
		found := false
		for _, tech := range r.TechStack {
			if strings.EqualFold(tech, q.Tech) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
