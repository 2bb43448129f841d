package rbac

import (
	"context"
	"sort"

	"github.com/medistock/medistock/internal/apiclient"
)

// Service reads roles and permissions from the backend.
type Service struct {
	roles       *apiclient.Resource[Role]
	permissions *apiclient.Resource[Permission]
}

// NewService constructs a Service.
func NewService(client *apiclient.Client) *Service {
	return &Service{
		roles:       apiclient.NewResource[Role](client, "/roles"),
		permissions: apiclient.NewResource[Permission](client, "/permissions"),
	}
}

// ListRoles returns all roles ordered by name.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	page, err := s.roles.List(ctx, apiclient.ListParams{})
	if err != nil {
		return nil, err
	}
	roles := page.Items
	sort.SliceStable(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

// ListPermissions returns all permissions ordered by module then code.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	page, err := s.permissions.List(ctx, apiclient.ListParams{})
	if err != nil {
		return nil, err
	}
	perms := page.Items
	sort.SliceStable(perms, func(i, j int) bool {
		if perms[i].Module != perms[j].Module {
			return perms[i].Module < perms[j].Module
		}
		return perms[i].Key() < perms[j].Key()
	})
	return perms, nil
}
