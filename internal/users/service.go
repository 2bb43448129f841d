package users

import (
	"context"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/rbac"
	"github.com/medistock/medistock/internal/shared"
)

// Service wraps the /users resource.
type Service struct {
	resource *apiclient.Resource[User]
	roles    *rbac.Service
}

// NewService constructs a Service.
func NewService(client *apiclient.Client, roles *rbac.Service) *Service {
	return &Service{resource: apiclient.NewResource[User](client, "/users"), roles: roles}
}

// List loads one page.
func (s *Service) List(ctx context.Context, params apiclient.ListParams) apiclient.ListState[User] {
	return apiclient.Load(ctx, func(ctx context.Context) (apiclient.Page[User], error) {
		return s.resource.List(ctx, params)
	})
}

// Get loads one user.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	item, err := s.resource.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

// Roles lists the assignable roles.
func (s *Service) Roles(ctx context.Context) ([]rbac.Role, error) {
	return s.roles.ListRoles(ctx)
}

// Create validates in and creates the account.
func (s *Service) Create(ctx context.Context, in Input) (*User, error) {
	in = in.Normalize()
	if errs := in.Validate(true); !errs.Empty() {
		return nil, errs
	}
	return s.resource.Create(ctx, in.Payload())
}

// Update validates in and patches the account.
func (s *Service) Update(ctx context.Context, id string, in Input) (*User, error) {
	in = in.Normalize()
	if errs := in.Validate(false); !errs.Empty() {
		return nil, errs
	}
	return s.resource.Update(ctx, id, in.Payload())
}

// Delete removes the account.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.resource.Delete(ctx, id)
}
