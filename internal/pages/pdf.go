package pages

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/medistock/medistock/internal/shared"
	"github.com/medistock/medistock/report"
)

// MsgPDFUnavailable is toasted when no PDF service is configured.
const MsgPDFUnavailable = "PDF export is not available. Use Print instead."

// PDFConverter turns a rendered document into PDF bytes.
type PDFConverter interface {
	Configured() bool
	Convert(ctx context.Context, doc report.Document) ([]byte, error)
}

// ServePDF renders page in the pdf layout, converts it and streams it as an
// attachment. Failures toast and redirect to back.
func (d Deps) ServePDF(w http.ResponseWriter, r *http.Request, back, page, title, filename string, data any) {
	if d.PDF == nil || !d.PDF.Configured() {
		d.Views.RedirectWithFlash(w, r, back, shared.FlashError, MsgPDFUnavailable)
		return
	}
	html, err := d.Views.Document(r, page, title, data)
	if err != nil {
		d.Logger.Error("render pdf document", slog.String("template", page), slog.Any("error", err))
		d.Views.RedirectWithFlash(w, r, back, shared.FlashError, "The document could not be rendered.")
		return
	}
	assets, err := report.PrintAssets()
	if err != nil {
		d.Logger.Error("load print assets", slog.Any("error", err))
	}
	out, err := d.PDF.Convert(r.Context(), report.Document{HTML: html, Assets: assets})
	if err != nil {
		d.Logger.Error("convert pdf", slog.String("template", page), slog.Any("error", err))
		msg := "The PDF could not be generated. Please try again."
		if errors.Is(err, report.ErrNotConfigured) {
			msg = MsgPDFUnavailable
		}
		d.Views.RedirectWithFlash(w, r, back, shared.FlashError, msg)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+safeFilename(filename)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func safeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '-'
	}, name)
}
