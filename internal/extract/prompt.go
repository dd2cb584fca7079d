package extract

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// systemPrompt is the instruction contract sent with every extraction call.
// The backend must return a single JSON object and nothing else; anything
// that does not parse is treated as an extraction failure for that item.
const systemPrompt = `You are a strict data extraction engine. Output ONLY a single valid JSON object, no prose, no markdown, no commentary.

Extract these fields from the job post:
- company: string | null
- job_role: "Backend" | "Frontend" | "Fullstack" | "DevOps" | "Mobile" | "Data" | "ML/AI" | "Product" | "Other"
- experience_level: "Intern" | "Junior" | "Mid" | "Senior" | "Staff" | "Lead" | "Unknown"
- company_industry: string | null (infer from context, e.g. "Fintech", "Healthtech", "SaaS")
- tech_stack: array of specific technology names (e.g. ["Python", "React"]); normalize variants ("React.js" -> "React", "NodeJS" -> "Node.js"); never include generic terms like "Frontend" or "Backend"
- remote_type: "GLOBAL" | "US_ONLY" | "UNSPECIFIED"
- visa_sponsorship: true | false | null
- salary_usd: integer | null (annual USD if stated)
- application_url: string | null (only if a direct apply link is present)
- email_contact: string | null

Rules:
- If experience is not explicit, infer "Senior" for >5 years required, "Junior" for <2, else "Mid".
- If the job role is vague, infer it from the tech stack.
- Use null for anything not stated.`

// rawExtraction mirrors the backend's JSON contract before normalization.
type rawExtraction struct {
	Company         string      `json:"company"`
	JobRole         string      `json:"job_role"`
	ExperienceLevel string      `json:"experience_level"`
	CompanyIndustry string      `json:"company_industry"`
	TechStack       []string    `json:"tech_stack"`
	RemoteType      string      `json:"remote_type"`
	VisaSponsorship *bool       `json:"visa_sponsorship"`
	SalaryUSD       json.Number `json:"salary_usd"`
	ApplicationURL  string      `json:"application_url"`
	EmailContact    string      `json:"email_contact"`
}

// cleanJSONResponse strips markdown code fences some models wrap around
// their output despite the instruction contract.
func cleanJSONResponse(text string) string {
	clean := strings.TrimSpace(text)
	if strings.HasPrefix(clean, "```") {
		clean = strings.Trim(clean, "`")
		clean = strings.TrimPrefix(clean, "json")
		clean = strings.TrimSpace(clean)
	}
	return clean
}

// parseExtraction decodes the backend response into a rawExtraction.
// Falls back to slicing the first balanced-looking object out of the text
// before giving up.
func parseExtraction(text string) (*rawExtraction, error) {
	clean := cleanJSONResponse(text)

	var raw rawExtraction
	if err := json.Unmarshal([]byte(clean), &raw); err == nil {
		return &raw, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err == nil {
			return &raw, nil
		}
	}

	return nil, eris.New("extract: backend returned malformed JSON")
}
