package audit

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportService defines the contract for activity log exports.
type ExportService interface {
	ExportTimeline(ctx context.Context, filters TimelineFilters) ([]byte, error)
}

const exportSheet = "Activity"

var exportHeader = []any{"Time (UTC)", "Actor", "Action", "Entity", "Entity ID", "Details"}

// Exporter writes activity log rows as spreadsheets.
type Exporter struct{}

// NewExporter constructs an Exporter.
func NewExporter() *Exporter { return &Exporter{} }

// WriteXLSX renders rows into a single-sheet workbook.
func (Exporter) WriteXLSX(rows []TimelineRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("audit: export sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("audit: export style: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("audit: export header: %w", err)
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		return nil, fmt.Errorf("audit: export header style: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{
			row.At.UTC().Format("2006-01-02 15:04:05"),
			row.Actor,
			row.Action,
			row.Entity,
			row.EntityID,
			formatMeta(row.Meta),
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("audit: export row %d: %w", i+1, err)
		}
	}
	_ = f.SetColWidth(exportSheet, "A", "A", 20)
	_ = f.SetColWidth(exportSheet, "B", "B", 28)
	_ = f.SetColWidth(exportSheet, "F", "F", 48)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("audit: export write: %w", err)
	}
	return buf.Bytes(), nil
}

func formatMeta(meta map[string]string) string {
	if len(meta) == 0 {
		return ""
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+meta[k])
	}
	return strings.Join(parts, ", ")
}
