package procurement

import (
	"context"
	"time"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/shared"
)

// Service wraps the /purchases resource.
type Service struct {
	resource *apiclient.Resource[Purchase]
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(client *apiclient.Client) *Service {
	return &Service{resource: apiclient.NewResource[Purchase](client, "/purchases"), now: time.Now}
}

// List loads one page.
func (s *Service) List(ctx context.Context, params apiclient.ListParams) apiclient.ListState[Purchase] {
	return apiclient.Load(ctx, func(ctx context.Context) (apiclient.Page[Purchase], error) {
		return s.resource.List(ctx, params)
	})
}

// Get loads one purchase with its lines.
func (s *Service) Get(ctx context.Context, id string) (*Purchase, error) {
	item, err := s.resource.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

// Create validates in and records the purchase.
func (s *Service) Create(ctx context.Context, in Input) (*Purchase, error) {
	if errs := in.Validate(s.now()); !errs.Empty() {
		return nil, errs
	}
	return s.resource.Create(ctx, in.Payload())
}

// Receive marks the goods of a purchase as received.
func (s *Service) Receive(ctx context.Context, id string) error {
	_, err := s.resource.Update(ctx, id, map[string]any{"status": StatusReceived})
	return err
}

// Delete removes the purchase.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.resource.Delete(ctx, id)
}

// Today is the default purchase date and the limit for manufacturing dates.
func (s *Service) Today() time.Time { return s.now() }
