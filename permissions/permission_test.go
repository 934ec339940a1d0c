package permissions_test

import (
	"testing"

	"deskhub/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	table := permissions.Get()
	require.NotNil(t, table)

	assert.False(t, table.Disabled)
	assert.NotEmpty(t, table.Rules)
}

func TestLookup(t *testing.T) {
	table := permissions.Get()
	require.NotNil(t, table)

	tests := []struct {
		name   string
		path   string
		method string
		found  bool
		public bool
		roles  []string
	}{
		{name: "guest booking", path: "/v1/rooms/{id}/bookings", method: "POST", found: true, public: true},
		{name: "admin status change", path: "/v1/bookings/{id}/status", method: "PATCH", found: true, roles: []string{"admin", "superadmin"}},
		{name: "public room read", path: "/v1/rooms/{id}", method: "GET", found: true, public: true},
		{name: "room delete", path: "/v1/rooms/{id}", method: "DELETE", found: true, roles: []string{"admin", "superadmin"}},
		{name: "subrouter root", path: "/v1/rooms/", method: "GET", found: true, public: true},
		{name: "owner checked later", path: "/v1/bookings/{id}/cancel", method: "POST", found: true, roles: []string{}},
		{name: "unknown route", path: "/v1/unknown", method: "GET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := table.Lookup(tt.path, tt.method)

			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.public, rule.Public)
			assert.ElementsMatch(t, tt.roles, rule.Roles)
		})
	}
}

func TestRule_Allows(t *testing.T) {
	adminOnly := permissions.Rule{Roles: []string{"admin", "superadmin"}}

	assert.True(t, adminOnly.Allows("admin"))
	assert.False(t, adminOnly.Allows("user"))
	assert.False(t, adminOnly.Allows(""))

	assert.True(t, permissions.Rule{Public: true, Roles: []string{"admin"}}.Allows(""))
	assert.True(t, permissions.Rule{}.Allows("user"))
}

func TestParse(t *testing.T) {
	table, err := permissions.Parse([]byte(`{"endpoints":[
		{"path":"/v1/desks","method":"GET","permissions":["user"]},
		{"path":"/v1/desks/","method":"GET","permissions":["admin"]}
	]}`))
	require.NoError(t, err)

	rule, ok := table.Lookup("/v1/desks", "GET")
	require.True(t, ok)
	assert.Equal(t, []string{"admin"}, rule.Roles)

	_, err = permissions.Parse([]byte(`{"endpoints":`))
	assert.Error(t, err)
}
