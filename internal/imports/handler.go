package imports

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medistock/medistock/internal/audit"
	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/shared"
)

// BasePath is where the import pages are mounted.
const BasePath = "/masterdata/products/import"

const productsPath = "/masterdata/products"

// multipartOverhead leaves room for the form envelope around the file.
const multipartOverhead = 64 << 10

// Handler serves the product import pages.
type Handler struct {
	pages.Deps
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(deps pages.Deps, service *Service) *Handler {
	return &Handler{Deps: deps.WithDefaults(), service: service}
}

// MountRoutes registers the import routes relative to the products router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.RBAC.RequireAll(shared.PermProductsImport))
		r.Get("/import", h.Form)
		r.Get("/import/template", h.Template)
		r.Post("/import", h.Upload)
	})
}

type formPage struct {
	MaxSize string
	Columns []Column
	Error   string
	Result  *Result
}

// Form renders the upload form.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, formPage{})
}

// Template streams the import template.
func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.Template(r.Context())
	if err != nil {
		h.Failed(w, r, BasePath, err, "download import template", http.MethodGet)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	_, _ = w.Write(file.Body)
}

// Upload validates the spreadsheet and forwards it to the backend.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.service.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit + multipartOverhead); err != nil {
		msg := "Choose a spreadsheet to upload."
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = fmt.Sprintf("The file is larger than %s.", sizeLabel(limit))
		}
		h.render(w, r, http.StatusUnprocessableEntity, formPage{Error: msg})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.render(w, r, http.StatusUnprocessableEntity, formPage{Error: "Choose a spreadsheet to upload."})
		return
	}
	defer func() { _ = file.Close() }()
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		h.render(w, r, http.StatusUnprocessableEntity, formPage{Error: "The file could not be read."})
		return
	}

	result, up, err := h.service.Import(r.Context(), header.Filename, data)
	if err != nil {
		if ue, ok := AsUploadError(err); ok {
			h.render(w, r, http.StatusUnprocessableEntity, formPage{Error: ue.Message})
			return
		}
		errs := h.MutationFailed(r.Context(), err, "import products", http.MethodPost)
		h.render(w, r, http.StatusUnprocessableEntity, formPage{Error: errs.UserMessage()})
		return
	}

	entry := audit.Entry{
		Action: audit.ActionImport,
		Entity: "product",
		Meta: map[string]string{
			"file":     up.Filename,
			"imported": strconv.Itoa(result.Imported),
			"failed":   strconv.Itoa(result.Failed),
		},
	}
	if len(result.Errors) > 0 || result.Failed > 0 {
		h.Audit.Record(r.Context(), entry)
		if h.Cache != nil {
			h.Cache.Invalidate(r.Context())
		}
		h.render(w, r, http.StatusOK, formPage{Result: result})
		return
	}
	h.Done(w, r, productsPath, result.Message(), entry)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data formPage) {
	data.MaxSize = sizeLabel(h.service.MaxBytes())
	data.Columns = Columns
	h.Views.Render(w, r, status, "pages/products/import.html", "Import products", data)
}
