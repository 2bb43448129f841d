package lookups

import (
	"context"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/shared"
)

// Service reads and writes one reference list.
type Service struct {
	kind     Kind
	resource *apiclient.Resource[Lookup]
}

// NewService constructs a Service for kind.
func NewService(client *apiclient.Client, kind Kind) *Service {
	return &Service{kind: kind, resource: apiclient.NewResource[Lookup](client, kind.Resource)}
}

// Kind returns the list served.
func (s *Service) Kind() Kind { return s.kind }

// List loads one page.
func (s *Service) List(ctx context.Context, params apiclient.ListParams) apiclient.ListState[Lookup] {
	return apiclient.Load(ctx, func(ctx context.Context) (apiclient.Page[Lookup], error) {
		return s.resource.List(ctx, params)
	})
}

// All loads every entry for selects.
func (s *Service) All(ctx context.Context) ([]Lookup, error) {
	return s.resource.All(ctx)
}

// Options loads active entries as lookup references.
func (s *Service) Options(ctx context.Context) ([]apiclient.Ref, error) {
	items, err := s.All(ctx)
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

// Get loads one entry.
func (s *Service) Get(ctx context.Context, id string) (*Lookup, error) {
	item, err := s.resource.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

// Create validates in and creates the entry.
func (s *Service) Create(ctx context.Context, in Input) (*Lookup, error) {
	in = in.Normalize()
	if errs := in.Validate(); !errs.Empty() {
		return nil, errs
	}
	return s.resource.Create(ctx, in)
}

// Update validates in and patches the entry.
func (s *Service) Update(ctx context.Context, id string, in Input) (*Lookup, error) {
	in = in.Normalize()
	if errs := in.Validate(); !errs.Empty() {
		return nil, errs
	}
	return s.resource.Update(ctx, id, in)
}

// Delete removes the entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.resource.Delete(ctx, id)
}
