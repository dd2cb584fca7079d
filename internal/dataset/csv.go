// Package dataset owns the persisted job table: a UTF-8, header-first CSV
// keyed by comment_id. It is the sole contract between the pipeline and the
// dashboard.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/technode/hiring-cli/internal/model"
)

// header is the fixed column order of the persisted table.
var header = []string{
	"comment_id", "company", "job_role", "experience_level",
	"company_industry", "tech_stack", "remote_type", "visa_sponsorship",
	"salary_usd", "application_url", "email_contact", "hn_link",
	"priority", "extracted_at",
}

// techSeparator joins tech_stack entries inside one CSV cell.
const techSeparator = "|"

// Table is an in-memory view of the persisted table with append-dedup
// merge semantics. All mutation happens on the run's single control
// goroutine; Flush rewrites the file atomically.
type Table struct {
	path    string
	records []model.JobRecord
	index   map[string]int // comment_id -> records position
}

// Load reads the table at path. A missing file yields an empty table; any
// other failure is fatal to the caller (the one unrecoverable condition in
// the pipeline).
func Load(path string) (*Table, error) {
	t := &Table{path: path, index: make(map[string]int)}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: read %s", path)
		}
		if first {
			first = false
			continue // header
		}
		rec, err := fromRow(row)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: parse %s", path)
		}
		t.Merge(rec)
	}

	return t, nil
}

// Len returns the number of records in the table.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns a copy of the table rows in persisted order.
func (t *Table) Records() []model.JobRecord {
	out := make([]model.JobRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Merge upserts records keyed by comment_id and returns how many were new.
// Re-merging a known id refreshes the row in place, so re-runs never
// duplicate and the id set stays stable.
func (t *Table) Merge(records ...model.JobRecord) int {
	added := 0
	for _, rec := range records {
		if pos, ok := t.index[rec.CommentID]; ok {
			t.records[pos] = rec
			continue
		}
		t.index[rec.CommentID] = len(t.records)
		t.records = append(t.records, rec)
		added++
	}
	return added
}

// Clear empties the table. Combined with Merge and Flush this is the
// derived full-overwrite operation.
func (t *Table) Clear() {
	t.records = nil
	t.index = make(map[string]int)
}

// Flush writes the whole table to disk via a temp file and rename, so a
// crash mid-write never leaves a partial or corrupt table behind.
func (t *Table) Flush() error {
	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "dataset: mkdir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".jobs-*.csv")
	if err != nil {
		return eris.Wrap(err, "dataset: create temp file")
	}
	tmpName := tmp.Name()

	writer := csv.NewWriter(tmp)
	if err := writer.Write(header); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrap(err, "dataset: write header")
	}
	for _, rec := range t.records {
		if err := writer.Write(toRow(rec)); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return eris.Wrapf(err, "dataset: write row %s", rec.CommentID)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrap(err, "dataset: flush rows")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "dataset: close temp file")
	}

	if err := os.Rename(tmpName, t.path); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "dataset: rename to %s", t.path)
	}
	return nil
}

func toRow(r model.JobRecord) []string {
	visa := ""
	if r.VisaSponsorship != nil {
		visa = strconv.FormatBool(*r.VisaSponsorship)
	}
	salary := ""
	if r.SalaryUSD != nil {
		salary = strconv.Itoa(*r.SalaryUSD)
	}
	return []string{
		r.CommentID,
		r.Company,
		r.JobRole,
		r.ExperienceLevel,
		r.CompanyIndustry,
		strings.Join(r.TechStack, techSeparator),
		string(r.RemoteType),
		visa,
		salary,
		r.ApplicationURL,
		r.EmailContact,
		r.HNLink,
		strconv.FormatBool(r.Priority),
		r.ExtractedAt.UTC().Format(time.RFC3339),
	}
}

func fromRow(row []string) (model.JobRecord, error) {
	var rec model.JobRecord
	if len(row) != len(header) {
		return rec, eris.Errorf("row has %d fields, want %d", len(row), len(header))
	}

	rec.CommentID = row[0]
	rec.Company = row[1]
	rec.JobRole = row[2]
	rec.ExperienceLevel = row[3]
	rec.CompanyIndustry = row[4]
	if row[5] != "" {
		rec.TechStack = strings.Split(row[5], techSeparator)
	}
	rec.RemoteType = model.ParseRemoteType(row[6])
	if row[7] != "" {
		v, err := strconv.ParseBool(row[7])
		if err != nil {
			return rec, eris.Wrapf(err, "visa_sponsorship %q", row[7])
		}
		rec.VisaSponsorship = &v
	}
	if row[8] != "" {
		s, err := strconv.Atoi(row[8])
		if err != nil {
			return rec, eris.Wrapf(err, "salary_usd %q", row[8])
		}
		rec.SalaryUSD = &s
	}
	rec.ApplicationURL = row[9]
	rec.EmailContact = row[10]
	rec.HNLink = row[11]
	if row[12] != "" {
		p, err := strconv.ParseBool(row[12])
		if err != nil {
			return rec, eris.Wrapf(err, "priority %q", row[12])
		}
		rec.Priority = p
	}
	if row[13] != "" {
		ts, err := time.Parse(time.RFC3339, row[13])
		if err != nil {
			return rec, eris.Wrapf(err, "extracted_at %q", row[13])
		}
		rec.ExtractedAt = ts
	}

	return rec, nil
}
