// Package imports uploads product spreadsheets to the backend and serves the
// import template.
package imports

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column is one header of the product import sheet.
type Column struct {
	Header   string
	Example  string
	Width    float64
	Required bool
}

// Columns is the template header row, in order.
var Columns = []Column{
	{Header: "Name", Example: "Amoxicillin 500mg", Width: 28, Required: true},
	{Header: "Generic Name", Example: "Amoxicillin", Width: 22},
	{Header: "Category", Example: "Antibiotics", Width: 18, Required: true},
	{Header: "Manufacturer", Example: "Acme Pharma", Width: 18},
	{Header: "Unit", Example: "Box", Width: 10, Required: true},
	{Header: "Purchase Price", Example: "12.50", Width: 14, Required: true},
	{Header: "Selling Price", Example: "18.00", Width: 14, Required: true},
	{Header: "Reorder Level", Example: "20", Width: 14},
	{Header: "Batch Number", Example: "B-2026-001", Width: 16},
	{Header: "Manufacturing Date", Example: "2026-01-15", Width: 18},
	{Header: "Expiry Date", Example: "2028-01-15", Width: 14},
	{Header: "Quantity", Example: "100", Width: 10},
}

const (
	sheetName        = "Products"
	templateFilename = "product-import-template.xlsx"
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// GenerateTemplate builds the import workbook: a bold header row and one
// example row.
func GenerateTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, err
	}
	for i, col := range Columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStr(sheetName, name+"1", col.Header); err != nil {
			return nil, err
		}
		if err := f.SetCellStr(sheetName, name+"2", col.Example); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, name, name, col.Width); err != nil {
			return nil, err
		}
	}
	last, _ := excelize.ColumnNumberToName(len(Columns))
	if err := f.SetCellStyle(sheetName, "A1", last+"1", bold); err != nil {
		return nil, err
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("imports: write template: %w", err)
	}
	return buf.Bytes(), nil
}

// missingHeaders lists required template headers absent from header.
func missingHeaders(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, cell := range header {
		present[normalizeHeader(cell)] = true
	}
	var missing []string
	for _, col := range Columns {
		if col.Required && !present[normalizeHeader(col.Header)] {
			missing = append(missing, col.Header)
		}
	}
	return missing
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "*")
	return strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(s)), " ")
}
