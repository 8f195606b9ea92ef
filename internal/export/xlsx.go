// Package export writes lead reports in formats the field team already
// works with.
package export

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/fuelsignal/leadgen-cli/internal/model"
)

var leadHeaders = []string{
	"ID", "Company", "Industry", "Score", "Confidence", "Priority",
	"Status", "Products", "Summary", "Source", "Source URL", "Created At",
}

// LeadsXLSX writes one "Leads" sheet with a header row followed by one row
// per lead, preserving the order of the input slice.
func LeadsXLSX(path string, leads []model.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range leadHeaders {
		header.AddCell().SetString(h)
	}

	for _, l := range leads {
		row := sheet.AddRow()
		row.AddCell().SetString(l.ID)
		row.AddCell().SetString(l.CompanyName)
		row.AddCell().SetString(l.Industry)
		row.AddCell().SetFloatWithFormat(l.Score, "0.0")
		row.AddCell().SetFloatWithFormat(l.Confidence, "0.00")
		row.AddCell().SetString(string(l.Priority))
		row.AddCell().SetString(string(l.Status))
		row.AddCell().SetString(strings.Join(l.Products, ", "))
		row.AddCell().SetString(l.Summary)
		row.AddCell().SetString(l.Source)
		row.AddCell().SetString(l.SourceURL)
		row.AddCell().SetString(l.CreatedAt.Format("2006-01-02 15:04"))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
