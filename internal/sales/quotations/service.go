package quotations

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/shared"
)

// ErrInvalidTransition is returned for a status change the quotation does not allow.
var ErrInvalidTransition = errors.New("quotations: status change not allowed")

// Service wraps the /quotations resource.
type Service struct {
	resource *apiclient.Resource[Quotation]
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(client *apiclient.Client) *Service {
	return &Service{resource: apiclient.NewResource[Quotation](client, "/quotations"), now: time.Now}
}

// List loads one page.
func (s *Service) List(ctx context.Context, params apiclient.ListParams) apiclient.ListState[Quotation] {
	return apiclient.Load(ctx, func(ctx context.Context) (apiclient.Page[Quotation], error) {
		return s.resource.List(ctx, params)
	})
}

// Get loads one quotation.
func (s *Service) Get(ctx context.Context, id string) (*Quotation, error) {
	item, err := s.resource.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

// Create validates in and records the quotation.
func (s *Service) Create(ctx context.Context, in Input) (*Quotation, error) {
	if errs := in.Validate(); !errs.Empty() {
		return nil, errs
	}
	return s.resource.Create(ctx, in.Payload())
}

// SetStatus moves the quotation to status when the current status allows it.
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	q, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !q.CanMoveTo(status) {
		return ErrInvalidTransition
	}
	_, err = s.resource.Update(ctx, id, map[string]any{"status": status})
	return err
}

// Convert turns the quotation into a sale and returns the sale id, when the
// backend reports one.
func (s *Service) Convert(ctx context.Context, id string) (string, error) {
	raw, err := s.resource.Action(ctx, http.MethodPost, id, "convert", nil)
	if err != nil {
		return "", err
	}
	sale, ok := apiclient.UnwrapRecord[struct {
		ID apiclient.ID `json:"id"`
	}](raw)
	if !ok {
		return "", nil
	}
	return sale.ID.String(), nil
}

// Delete removes the quotation.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.resource.Delete(ctx, id)
}

// Today is the default quotation date.
func (s *Service) Today() time.Time { return s.now() }
