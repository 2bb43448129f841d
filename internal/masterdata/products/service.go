package products

import (
	"context"
	"time"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/shared"
)

// Service wraps the /products resource.
type Service struct {
	resource *apiclient.Resource[Product]
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(client *apiclient.Client) *Service {
	return &Service{resource: apiclient.NewResource[Product](client, "/products"), now: time.Now}
}

// List loads one page.
func (s *Service) List(ctx context.Context, params apiclient.ListParams) apiclient.ListState[Product] {
	return apiclient.Load(ctx, func(ctx context.Context) (apiclient.Page[Product], error) {
		return s.resource.List(ctx, params)
	})
}

// Active loads every active product for line item selects.
func (s *Service) Active(ctx context.Context) ([]Product, error) {
	items, err := s.resource.All(ctx)
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for _, p := range items {
		if p.Status == "" || p.Status == StatusActive {
			out = append(out, p)
		}
	}
	return out, nil
}

// Get loads one product with its batches.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	item, err := s.resource.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

// Create validates in and creates the product with its opening batch.
func (s *Service) Create(ctx context.Context, in Input) (*Product, error) {
	in = in.Normalize()
	if errs := in.Validate(s.now()); !errs.Empty() {
		return nil, errs
	}
	return s.resource.Create(ctx, in.Payload())
}

// Update validates in and patches the product. Batches are not edited here.
func (s *Service) Update(ctx context.Context, id string, in Input) (*Product, error) {
	in = in.Normalize()
	in.Batch = BatchInput{}
	if errs := in.Validate(s.now()); !errs.Empty() {
		return nil, errs
	}
	return s.resource.Update(ctx, id, in.Payload())
}

// Delete removes the product.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.resource.Delete(ctx, id)
}
