package orders

import (
	"context"
	"time"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/shared"
)

// Service wraps the /sales resource.
type Service struct {
	resource *apiclient.Resource[Sale]
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(client *apiclient.Client) *Service {
	return &Service{resource: apiclient.NewResource[Sale](client, "/sales"), now: time.Now}
}

// List loads one page.
func (s *Service) List(ctx context.Context, params apiclient.ListParams) apiclient.ListState[Sale] {
	return apiclient.Load(ctx, func(ctx context.Context) (apiclient.Page[Sale], error) {
		return s.resource.List(ctx, params)
	})
}

// Get loads one sale with its lines.
func (s *Service) Get(ctx context.Context, id string) (*Sale, error) {
	item, err := s.resource.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

// Create validates in and records the sale.
func (s *Service) Create(ctx context.Context, in Input) (*Sale, error) {
	if errs := in.Validate(); !errs.Empty() {
		return nil, errs
	}
	return s.resource.Create(ctx, in.Payload())
}

// Delete removes the sale.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.resource.Delete(ctx, id)
}

// Today is the default sale date.
func (s *Service) Today() time.Time { return s.now() }
