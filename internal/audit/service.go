package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Repository provides the timeline queries.
type Repository interface {
	AuditTimelineWindow(ctx context.Context, arg WindowParams) ([]Row, error)
	AuditTimelineAll(ctx context.Context, arg FilterParams) ([]Row, error)
}

// Result wraps a timeline page with paging info.
type Result struct {
	Rows   []TimelineRow
	Paging PagingInfo
}

// Service reads the activity log.
type Service struct {
	repo Repository
}

// NewService creates a timeline service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline loads one page of the activity log.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize
	rows, err := s.repo.AuditTimelineWindow(ctx, WindowParams{
		FilterParams: filterParams(filters),
		OffsetRows:   int32(offset),
		LimitRows:    int32(pageSize + 1),
	})
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	resultRows := make([]TimelineRow, 0, len(rows))
	for _, row := range rows {
		resultRows = append(resultRows, mapTimelineRow(row))
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: resultRows, Paging: paging}, nil
}

// Export loads every matching entry without paging.
func (s *Service) Export(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("audit: repository not configured")
	}
	rows, err := s.repo.AuditTimelineAll(ctx, filterParams(filters))
	if err != nil {
		return nil, err
	}
	result := make([]TimelineRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, mapTimelineRow(row))
	}
	return result, nil
}

func filterParams(filters TimelineFilters) FilterParams {
	to := filters.To
	if !to.IsZero() {
		// The upper bound is inclusive of the whole "to" day.
		to = to.AddDate(0, 0, 1)
	}
	return FilterParams{
		FromAt: toPgTime(filters.From),
		ToAt:   toPgTime(to),
		Actor:  optionalText(filters.Actor),
		Entity: optionalText(filters.Entity),
		Action: optionalText(strings.ToUpper(filters.Action)),
	}
}

func toPgTime(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalText(value string) pgtype.Text {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: trimmed, Valid: true}
}

func mapTimelineRow(row Row) TimelineRow {
	var ts time.Time
	if row.At.Valid {
		ts = row.At.Time
	}
	var meta map[string]string
	if len(row.Meta) > 0 {
		_ = json.Unmarshal(row.Meta, &meta)
	}
	return TimelineRow{
		At:       ts,
		Actor:    row.Actor,
		Action:   row.Action,
		Entity:   row.Entity,
		EntityID: row.EntityID,
		Meta:     meta,
	}
}
