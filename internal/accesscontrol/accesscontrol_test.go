package accesscontrol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		permission string
		want       bool
	}{
		{"admin manages users", RoleAdmin, "users:manage", true},
		{"doctor writes prescriptions", RoleDoctor, "prescriptions:write", true},
		{"doctor cannot manage users", RoleDoctor, "users:manage", false},
		{"receptionist writes checkins", RoleReceptionist, "checkins:write", true},
		{"receptionist cannot read lab orders", RoleReceptionist, "lab_orders:read", false},
		{"lab tech writes lab orders", RoleLabTech, "lab_orders:write", true},
		{"pharmacist reads inventory", RolePharmacist, "inventory:read", true},
		{"pharmacist cannot write inventory", RolePharmacist, "inventory:write", false},
		{"supplier writes inventory", RoleSupplier, "inventory:write", true},
		{"caregiver reads patients", RoleCaregiver, "patients:read", true},
		{"caregiver cannot write patients", RoleCaregiver, "patients:write", false},
		{"unknown role holds nothing", "ghost", "patients:read", false},
		{"empty role holds nothing", "", "patients:read", false},
		{"unknown permission", RoleAdmin, "nonsense:do", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.role, tt.permission))
		})
	}
}

func TestCanAccessRoute(t *testing.T) {
	tests := []struct {
		name string
		role string
		path string
		want bool
	}{
		{"admin reaches everything", RoleAdmin, "/api/v1/users", true},
		{"admin reaches unguarded paths", RoleAdmin, "/api/v1/anything-at-all", true},
		{"doctor reaches patients", RoleDoctor, "/api/v1/patients", true},
		{"doctor reaches nested patient path", RoleDoctor, "/api/v1/patients/123", true},
		{"doctor cannot reach users", RoleDoctor, "/api/v1/users", false},
		{"receptionist reaches checkins", RoleReceptionist, "/api/v1/checkins", true},
		{"receptionist cannot reach lab orders", RoleReceptionist, "/api/v1/lab-orders", false},
		{"lab tech reaches lab orders", RoleLabTech, "/api/v1/lab-orders", true},
		{"pharmacist reaches inventory", RolePharmacist, "/api/v1/inventory", true},
		{"supplier cannot reach patients", RoleSupplier, "/api/v1/patients", false},
		{"anyone reaches auth", "ghost", "/api/v1/auth/login", true},
		{"anyone reaches health", "", "/api/v1/health", true},
		{"unknown role denied on guarded path", "ghost", "/api/v1/patients", false},
		{"unguarded path denied for non-admin", RoleDoctor, "/api/v1/exports", false},
		{"prefix must end on a segment", RoleDoctor, "/api/v1/patients-export", false},
		{"every staff role reaches profile", RoleSupplier, "/api/v1/profile", true},
		{"query string after prefix allowed", RoleDoctor, "/api/v1/patients?status=active", true},
		{"empty path denied", RoleDoctor, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccessRoute(tt.role, tt.path))
		})
	}
}

func TestDashboardForRole(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{RoleAdmin, "/admin"},
		{RoleDoctor, "/doctor"},
		{RoleReceptionist, "/reception"},
		{RoleLabTech, "/lab"},
		{RolePharmacist, "/pharmacy"},
		{RoleSupplier, "/supplier"},
		{RoleCaregiver, "/caregiver"},
		{RoleStaff, "/reception"},
		{"ghost", LoginPath},
		{"", LoginPath},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DashboardForRole(tt.role), "role %q", tt.role)
	}
}

func TestIsPublicRoute(t *testing.T) {
	assert.True(t, IsPublicRoute("/api/v1/auth/login"))
	assert.True(t, IsPublicRoute("/api/v1/health/ready"))
	assert.False(t, IsPublicRoute("/api/v1/patients"))
	assert.False(t, IsPublicRoute("/api/v1/authz"))
}

func TestValid(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleDoctor, RoleReceptionist, RoleLabTech, RolePharmacist, RoleSupplier, RoleCaregiver, RoleStaff} {
		assert.True(t, Valid(role), "role %q", role)
	}
	assert.False(t, Valid("ghost"))
	assert.False(t, Valid(""))
}

func TestPermissionsUnknownRoleNil(t *testing.T) {
	assert.Nil(t, Permissions("ghost"))
	assert.NotEmpty(t, Permissions(RoleAdmin))
}
