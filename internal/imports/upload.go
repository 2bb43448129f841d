package imports

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"

	"github.com/medistock/medistock/internal/view"
)

// DefaultMaxBytes caps an upload when no limit is configured.
const DefaultMaxBytes int64 = 5 << 20

// UploadError is a rejected upload; Message is shown to the user.
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string { return "imports: " + e.Message }

func reject(format string, args ...any) error {
	return &UploadError{Message: fmt.Sprintf(format, args...)}
}

// AsUploadError extracts an UploadError.
func AsUploadError(err error) (*UploadError, bool) {
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// allowedTypes maps an extension to the sniffed types it may carry. Some
// writers produce workbooks that only sniff as a plain zip; excelize then
// has the final say.
var allowedTypes = map[string][]string{
	".xlsx": {xlsxContentType, "application/zip"},
	".xls":  {"application/vnd.ms-excel", "application/x-ole-storage"},
}

// Upload is a file accepted for import.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// Check validates an uploaded spreadsheet before it is forwarded: size,
// extension, sniffed content type and, for .xlsx, the header row.
func Check(filename string, data []byte, maxBytes int64) (*Upload, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(data) == 0 {
		return nil, reject("The file is empty.")
	}
	if int64(len(data)) > maxBytes {
		return nil, reject("The file is larger than %s.", sizeLabel(maxBytes))
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" && ext != ".xls" {
		return nil, reject("Upload an Excel file (.xlsx or .xls).")
	}
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedTypes[ext]...) {
		return nil, reject("The file does not look like an Excel workbook (%s).", mt.String())
	}
	up := &Upload{Filename: filepath.Base(filename), ContentType: mt.String(), Data: data}
	if ext == ".xls" {
		return up, nil
	}
	up.ContentType = xlsxContentType
	rows, err := firstSheetRows(data)
	if err != nil {
		return nil, err
	}
	if missing := missingHeaders(rows[0]); len(missing) > 0 {
		return nil, reject("The header row is missing: %s. Download the template to see the expected columns.", strings.Join(missing, ", "))
	}
	up.Rows = len(rows) - 1
	if up.Rows == 0 {
		return nil, reject("The sheet has a header row but no products.")
	}
	return up, nil
}

func firstSheetRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, reject("The workbook could not be read.")
	}
	defer func() { _ = f.Close() }()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, reject("The workbook has no sheets.")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, reject("The first sheet could not be read.")
	}
	var kept [][]string
	for _, row := range rows {
		if !blank(row) {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		return nil, reject("The first sheet is empty.")
	}
	return kept, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func sizeLabel(n int64) string {
	if n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return view.Number(n) + " bytes"
}
