package model

import (
	"fmt"
	"time"
)

// RemoteType classifies where a posting allows candidates to work from.
type RemoteType string

const (
	RemoteGlobal      RemoteType = "GLOBAL"
	RemoteUSOnly      RemoteType = "US_ONLY"
	RemoteUnspecified RemoteType = "UNSPECIFIED"
)

// ParseRemoteType maps a free-form backend value onto the persisted enum.
// Anything that is not a recognized value collapses to UNSPECIFIED.
func ParseRemoteType(s string) RemoteType {
	switch RemoteType(s) {
	case RemoteGlobal:
		return RemoteGlobal
	case RemoteUSOnly:
		return RemoteUSOnly
	default:
		return RemoteUnspecified
	}
}

// RawComment is one child comment of a hiring thread, as fetched.
// Consumed once by the extraction engine; retained only in snapshot files.
type RawComment struct {
	ID             int64     `json:"id"`
	ParentThreadID int64     `json:"parent_thread_id"`
	Author         string    `json:"author"`
	CreatedAt      time.Time `json:"created_at"`
	Text           string    `json:"text"`
}

// HNLink returns the permalink for the comment.
func (c RawComment) HNLink() string {
	return fmt.Sprintf("https://news.ycombinator.com/item?id=%d", c.ID)
}

// JobRecord is the structured posting extracted from one RawComment.
// Rows are keyed by CommentID; at most one record exists per comment.
type JobRecord struct {
	CommentID       string     `json:"comment_id"`
	Company         string     `json:"company"`
	JobRole         string     `json:"job_role"`
	ExperienceLevel string     `json:"experience_level"`
	CompanyIndustry string     `json:"company_industry"`
	TechStack       []string   `json:"tech_stack"`
	RemoteType      RemoteType `json:"remote_type"`
	VisaSponsorship *bool      `json:"visa_sponsorship"` // nil = unknown
	SalaryUSD       *int       `json:"salary_usd"`       // annual USD, nil when implausible
	ApplicationURL  string     `json:"application_url"`
	EmailContact    string     `json:"email_contact"`
	HNLink          string     `json:"hn_link"`
	Priority        bool       `json:"priority"` // GLOBAL postings surface first in the teaser
	ExtractedAt     time.Time  `json:"extracted_at"`
}
