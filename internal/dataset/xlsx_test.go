package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestExportXLSX(t *testing.T) {
	dir := t.TempDir()

	table, err := Load(filepath.Join(dir, "jobs.csv"))
	require.NoError(t, err)
	table.Merge(testRecord("1"), testRecord("2"))

	out := filepath.Join(dir, "jobs.xlsx")
	require.NoError(t, table.ExportXLSX(out))

	file, err := xlsx.OpenFile(out)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Jobs", sheet.Name)
	// Header plus two data rows; contacts are exported unmasked.
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "comment_id", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "jobs@acme.example", sheet.Rows[1].Cells[10].Value)
}
