// Package dashboard serves the read-only teaser view of the job table.
// Aggregates are computed over the full table; row access is capped and
// masked before it ever reaches a handler.
package dashboard

import (
	"sort"

	"github.com/technode/hiring-cli/internal/model"
)

// Stats summarizes the full dataset. Counts and averages intentionally
// reflect every row, not just the teaser slice, so visitors see the true
// size of the product.
type Stats struct {
	TotalJobs          int            `json:"total_jobs"`
	RemoteDistribution map[string]int `json:"remote_distribution"`
	VisaSponsorship    int            `json:"visa_sponsorship"`
	WithSalary         int            `json:"with_salary"`
	AvgSalaryUSD       int            `json:"avg_salary_usd"`
	TopTech            []TechCount    `json:"top_tech"`
}

// TechCount is one entry of the tech frequency ranking.
type TechCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// topTechLimit caps the tech ranking length.
const topTechLimit = 15

// Aggregate computes Stats over all records.
func Aggregate(records []model.JobRecord) Stats {
	stats := Stats{
		TotalJobs:          len(records),
		RemoteDistribution: make(map[string]int),
	}

	techCounts := make(map[string]int)
	salarySum := 0

	for _, r := range records {
		stats.RemoteDistribution[string(r.RemoteType)]++
		if r.VisaSponsorship != nil && *r.VisaSponsorship {
			stats.VisaSponsorship++
		}
		if r.SalaryUSD != nil {
			stats.WithSalary++
			salarySum += *r.SalaryUSD
		}
		for _, tech := range r.TechStack {
			techCounts[tech]++
		}
	}

	if stats.WithSalary > 0 {
		stats.AvgSalaryUSD = salarySum / stats.WithSalary
	}

	stats.TopTech = make([]TechCount, 0, len(techCounts))
	for name, count := range techCounts {
		stats.TopTech = append(stats.TopTech, TechCount{Name: name, Count: count})
	}
	sort.Slice(stats.TopTech, func(i, j int) bool {
		if stats.TopTech[i].Count != stats.TopTech[j].Count {
			return stats.TopTech[i].Count > stats.TopTech[j].Count
		}
		return stats.TopTech[i].Name < stats.TopTech[j].Name
	})
	if len(stats.TopTech) > topTechLimit {
		stats.TopTech = stats.TopTech[:topTechLimit]
	}

	return stats
}
