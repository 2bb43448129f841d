package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfilePermissions(t *testing.T) {
	clerk := Profile{Roles: []string{"PHARMACIST"}, Permissions: []string{"Products.View ", PermSalesCreate}}
	assert.True(t, clerk.Can(PermProductsView))
	assert.False(t, clerk.Can(PermProductsDelete))
	assert.True(t, clerk.CanAny(PermProductsDelete, PermSalesCreate))
	assert.False(t, clerk.CanAll(PermProductsDelete, PermSalesCreate))
	assert.True(t, clerk.CanAny())

	admin := Profile{Roles: []string{"admin"}}
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.CanAll(AllPermissions()...))
}
