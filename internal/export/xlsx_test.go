package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/fuelsignal/leadgen-cli/internal/model"
)

func TestLeadsXLSX(t *testing.T) {
	leads := []model.Lead{
		{
			ID:          "lead-1",
			CompanyKey:  "abc cement",
			CompanyName: "ABC Cement Pvt Ltd",
			Industry:    "Cement",
			Source:      "news",
			SourceURL:   "https://example.com/a",
			Products:    []string{"Petcoke", "Furnace Oil"},
			Summary:     "Kiln expansion announced.",
			Score:       72.5,
			Confidence:  0.64,
			Priority:    model.PriorityHigh,
			Status:      model.StatusNew,
			CreatedAt:   time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
		},
		{
			ID:          "lead-2",
			CompanyName: "Harbor Logistics",
			Industry:    "Shipping",
			Score:       41,
			Confidence:  0.3,
			Priority:    model.PriorityMedium,
			Status:      model.StatusAssigned,
			CreatedAt:   time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC),
		},
	}

	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, LeadsXLSX(path, leads))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, "Leads", sheet.Name)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "ID", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Company", sheet.Rows[0].Cells[1].String())

	first := sheet.Rows[1]
	assert.Equal(t, "lead-1", first.Cells[0].String())
	assert.Equal(t, "ABC Cement Pvt Ltd", first.Cells[1].String())
	assert.Equal(t, "Cement", first.Cells[2].String())
	score, err := first.Cells[3].Float()
	require.NoError(t, err)
	assert.InDelta(t, 72.5, score, 0.001)
	assert.Equal(t, "HIGH", first.Cells[5].String())
	assert.Equal(t, "Petcoke, Furnace Oil", first.Cells[7].String())

	second := sheet.Rows[2]
	assert.Equal(t, "Harbor Logistics", second.Cells[1].String())
	assert.Equal(t, "Assigned", second.Cells[6].String())
}

func TestLeadsXLSXEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, LeadsXLSX(path, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	require.Len(t, f.Sheets[0].Rows, 1)
}
