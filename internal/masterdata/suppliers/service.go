package suppliers

import (
	"context"

	"github.com/medistock/medistock/internal/apiclient"
	mdshared "github.com/medistock/medistock/internal/masterdata/shared"
	"github.com/medistock/medistock/internal/shared"
)

// Service wraps the /suppliers resource.
type Service struct {
	resource *apiclient.Resource[Supplier]
}

// NewService constructs a Service.
func NewService(client *apiclient.Client) *Service {
	return &Service{resource: apiclient.NewResource[Supplier](client, "/suppliers")}
}

// List loads one page.
func (s *Service) List(ctx context.Context, params apiclient.ListParams) apiclient.ListState[Supplier] {
	return apiclient.Load(ctx, func(ctx context.Context) (apiclient.Page[Supplier], error) {
		return s.resource.List(ctx, params)
	})
}

// Options loads active suppliers for selects.
func (s *Service) Options(ctx context.Context) ([]apiclient.Ref, error) {
	items, err := s.resource.All(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]apiclient.Ref, 0, len(items))
	for _, item := range items {
		if item.Active() {
			refs = append(refs, apiclient.Ref{ID: item.ID, Name: item.Name})
		}
	}
	return refs, nil
}

// Get loads one supplier.
func (s *Service) Get(ctx context.Context, id string) (*Supplier, error) {
	item, err := s.resource.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

// Create validates p and creates the supplier.
func (s *Service) Create(ctx context.Context, p mdshared.Party) (*Supplier, error) {
	p = p.Normalize()
	if errs := validate(p); !errs.Empty() {
		return nil, errs
	}
	return s.resource.Create(ctx, p.Payload(typeField))
}

// Update validates p and patches the supplier.
func (s *Service) Update(ctx context.Context, id string, p mdshared.Party) (*Supplier, error) {
	p = p.Normalize()
	if errs := validate(p); !errs.Empty() {
		return nil, errs
	}
	return s.resource.Update(ctx, id, p.UpdatePayload(typeField))
}

// Delete removes the supplier.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.resource.Delete(ctx, id)
}
