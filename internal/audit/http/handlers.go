package audithttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/medistock/medistock/internal/audit"
	"github.com/medistock/medistock/internal/platform/httpx"
	"github.com/medistock/medistock/internal/rbac"
	"github.com/medistock/medistock/internal/view"
)

const (
	defaultPageSize   = 20
	maxPageSize       = 50
	defaultDateRange  = 7 * 24 * time.Hour
	maxDateRangeHours = 24 * 90
	dateLayout        = "2006-01-02"
)

// ErrNotConfigured is reported when no audit database is attached.
var ErrNotConfigured = errors.New("audit: activity log storage not configured")

// TimelineService defines the business contract for timeline data.
type TimelineService interface {
	Timeline(ctx context.Context, filters audit.TimelineFilters) (audit.Result, error)
	Export(ctx context.Context, filters audit.TimelineFilters) ([]audit.TimelineRow, error)
}

// Exporter writes activity log exports.
type Exporter interface {
	WriteXLSX(rows []audit.TimelineRow) ([]byte, error)
}

// Handler serves the activity log.
type Handler struct {
	logger   *slog.Logger
	service  TimelineService
	exporter Exporter
	views    *view.Responder
	rbac     rbac.Middleware
	now      func() time.Time
}

// NewHandler creates the activity log handler. A nil service renders the
// page with a "not configured" notice.
func NewHandler(logger *slog.Logger, service TimelineService, views *view.Responder, exporter Exporter, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		exporter: exporter,
		views:    views,
		rbac:     rbac,
		now:      time.Now,
	}
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, r, err)
		return
	}
	vm := h.buildViewModel(filters, audit.Result{Paging: audit.PagingInfo{Page: filters.Page, PageSize: filters.PageSize}})
	status := http.StatusOK
	if h.service == nil {
		vm.Error = "The activity log is not configured."
		status = http.StatusServiceUnavailable
	} else if result, err := h.service.Timeline(r.Context(), filters); err != nil {
		h.logger.Error("load audit timeline", slog.Any("error", err))
		vm.Error = "The activity log could not be loaded."
		status = http.StatusInternalServerError
	} else {
		vm = h.buildViewModel(filters, result)
	}
	h.views.Render(w, r, status, "pages/audit/index.html", "Activity log", vm)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil || h.service == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", ErrNotConfigured.Error())
		return
	}
	filters, err := h.parseFilters(r)
	if err != nil {
		h.handleFilterError(w, r, err)
		return
	}
	rows, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.handleServerError(w, "export audit timeline", err)
		return
	}
	data, err := h.exporter.WriteXLSX(rows)
	if err != nil {
		h.handleServerError(w, "encode xlsx", err)
		return
	}
	filename := fmt.Sprintf("activity-%s-%s.xlsx", filters.From.Format(dateLayout), filters.To.Format(dateLayout))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("write xlsx", slog.Any("error", err))
	}
}

func (h *Handler) parseFilters(r *http.Request) (audit.TimelineFilters, error) {
	q := r.URL.Query()
	now := h.now().UTC()
	toStr := strings.TrimSpace(q.Get("to"))
	if toStr == "" {
		toStr = now.Format(dateLayout)
	}
	toTime, err := time.Parse(dateLayout, toStr)
	if err != nil {
		return audit.TimelineFilters{}, validationError{field: "to"}
	}
	fromStr := strings.TrimSpace(q.Get("from"))
	if fromStr == "" {
		fromStr = toTime.Add(-defaultDateRange).Format(dateLayout)
	}
	fromTime, err := time.Parse(dateLayout, fromStr)
	if err != nil {
		return audit.TimelineFilters{}, validationError{field: "from"}
	}
	if fromTime.After(toTime) {
		return audit.TimelineFilters{}, validationError{field: "range"}
	}
	if toTime.Sub(fromTime) > maxDateRangeHours*time.Hour {
		return audit.TimelineFilters{}, validationError{field: "range"}
	}

	page := 1
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return audit.TimelineFilters{}, validationError{field: "page"}
		}
		page = parsed
	}
	pageSize := defaultPageSize
	if v := strings.TrimSpace(q.Get("page_size")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return audit.TimelineFilters{}, validationError{field: "page_size"}
		}
		if parsed > maxPageSize {
			parsed = maxPageSize
		}
		pageSize = parsed
	}

	return audit.TimelineFilters{
		From:     fromTime,
		To:       toTime,
		Actor:    strings.TrimSpace(q.Get("actor")),
		Entity:   strings.TrimSpace(q.Get("entity")),
		Action:   strings.TrimSpace(q.Get("action")),
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (h *Handler) buildViewModel(filters audit.TimelineFilters, result audit.Result) audit.ViewModel {
	rows := make([]audit.TimelineRow, len(result.Rows))
	copy(rows, result.Rows)
	vm := audit.ViewModel{
		Filters: audit.FiltersViewModel{
			From:   filters.From,
			To:     filters.To,
			Actor:  filters.Actor,
			Entity: filters.Entity,
			Action: filters.Action,
		},
		Rows:     rows,
		Paging:   result.Paging,
		Entities: audit.Entities(),
		Actions:  audit.Actions(),
		Export:   "/audit/export.xlsx?" + filterQuery(filters, 0).Encode(),
	}
	if result.Paging.PrevPage > 0 {
		vm.PrevURL = "/audit?" + filterQuery(filters, result.Paging.PrevPage).Encode()
	}
	if result.Paging.NextPage > 0 {
		vm.NextURL = "/audit?" + filterQuery(filters, result.Paging.NextPage).Encode()
	}
	return vm
}

func filterQuery(filters audit.TimelineFilters, page int) url.Values {
	q := url.Values{}
	q.Set("from", filters.From.Format(dateLayout))
	q.Set("to", filters.To.Format(dateLayout))
	for key, value := range map[string]string{"actor": filters.Actor, "entity": filters.Entity, "action": filters.Action} {
		if value != "" {
			q.Set(key, value)
		}
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
		if filters.PageSize != defaultPageSize {
			q.Set("page_size", strconv.Itoa(filters.PageSize))
		}
	}
	return q
}

func (h *Handler) handleFilterError(w http.ResponseWriter, r *http.Request, err error) {
	var v validationError
	if errors.As(err, &v) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid filter", "Invalid "+v.field+" filter.")
		return
	}
	h.handleServerError(w, "validate filters", err)
}

func (h *Handler) handleServerError(w http.ResponseWriter, message string, err error) {
	if h.logger != nil {
		h.logger.Error(message, slog.Any("error", err))
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

type validationError struct {
	field string
}

func (validationError) Error() string {
	return "validation failed"
}
