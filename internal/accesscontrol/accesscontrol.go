package accesscontrol

// Role identifiers. Every authenticated principal carries exactly one.
const (
	RoleAdmin        = "admin"
	RoleDoctor       = "doctor"
	RoleReceptionist = "receptionist"
	RoleLabTech      = "lab_tech"
	RolePharmacist   = "pharmacist"
	RoleSupplier     = "supplier"
	RoleCaregiver    = "caregiver"
	RoleStaff        = "staff" // legacy, maps to receptionist-level access
)

// LoginPath is the fallback landing route for unknown roles.
const LoginPath = "/login"

type roleInfo struct {
	displayName string
	dashboard   string
	permissions map[string]struct{}
}

func perms(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// roles is the static role table, built once at init and never mutated.
var roles = map[string]roleInfo{
	RoleAdmin: {
		displayName: "Administrator",
		dashboard:   "/admin",
		permissions: perms(
			"users:manage", "patients:read", "patients:write",
			"appointments:read", "appointments:write",
			"checkins:read", "checkins:write",
			"prescriptions:read", "prescriptions:write",
			"lab_orders:read", "lab_orders:write",
			"inventory:read", "inventory:write",
			"audit:read", "roles:read",
		),
	},
	RoleDoctor: {
		displayName: "Doctor",
		dashboard:   "/doctor",
		permissions: perms(
			"patients:read", "patients:write",
			"appointments:read", "appointments:write",
			"checkins:read", "checkins:write",
			"prescriptions:read", "prescriptions:write",
			"lab_orders:read", "lab_orders:write",
		),
	},
	RoleReceptionist: {
		displayName: "Receptionist",
		dashboard:   "/reception",
		permissions: perms(
			"patients:read", "patients:write",
			"appointments:read", "appointments:write",
			"checkins:read", "checkins:write",
		),
	},
	RoleLabTech: {
		displayName: "Lab Technician",
		dashboard:   "/lab",
		permissions: perms(
			"patients:read",
			"lab_orders:read", "lab_orders:write",
		),
	},
	RolePharmacist: {
		displayName: "Pharmacist",
		dashboard:   "/pharmacy",
		permissions: perms(
			"patients:read",
			"prescriptions:read", "prescriptions:write",
			"inventory:read",
		),
	},
	RoleSupplier: {
		displayName: "Supplier",
		dashboard:   "/supplier",
		permissions: perms(
			"inventory:read", "inventory:write",
		),
	},
	RoleCaregiver: {
		displayName: "Caregiver",
		dashboard:   "/caregiver",
		permissions: perms(
			"patients:read",
			"appointments:read",
			"checkins:read",
		),
	},
	RoleStaff: {
		displayName: "Staff",
		dashboard:   "/reception",
		permissions: perms(
			"patients:read",
			"appointments:read",
			"checkins:read", "checkins:write",
		),
	},
}

// routeGuard maps a path prefix to the set of roles allowed past it.
// Ordered, first matching prefix wins.
type routeGuard struct {
	prefix  string
	allowed map[string]struct{}
}

var routeGuards = []routeGuard{
	{"/api/v1/users", perms(RoleAdmin)},
	{"/api/v1/audit", perms(RoleAdmin)},
	{"/api/v1/patients", perms(RoleDoctor, RoleReceptionist, RoleCaregiver, RoleLabTech, RolePharmacist, RoleStaff)},
	{"/api/v1/appointments", perms(RoleDoctor, RoleReceptionist, RoleCaregiver, RoleStaff)},
	{"/api/v1/checkins", perms(RoleDoctor, RoleReceptionist, RoleCaregiver, RoleStaff)},
	{"/api/v1/prescriptions", perms(RoleDoctor, RolePharmacist)},
	{"/api/v1/lab-orders", perms(RoleDoctor, RoleLabTech)},
	{"/api/v1/inventory", perms(RolePharmacist, RoleSupplier)},
	{"/api/v1/roles", perms(RoleDoctor, RoleReceptionist, RoleCaregiver, RoleLabTech, RolePharmacist, RoleSupplier, RoleStaff)},
	{"/api/v1/profile", perms(RoleDoctor, RoleReceptionist, RoleCaregiver, RoleLabTech, RolePharmacist, RoleSupplier, RoleStaff)},
}

// publicPrefixes are reachable without authentication. Everything else
// is denied unless a guard entry allows the role: the guard fails
// closed, so a new route is private until it is listed here.
var publicPrefixes = []string{
	"/api/v1/auth",
	"/api/v1/health",
}

// Valid reports whether role is a known role identifier.
func Valid(role string) bool {
	_, ok := roles[role]
	return ok
}

// HasPermission reports whether the role holds the named permission.
// Unknown roles hold no permissions.
func HasPermission(role, permission string) bool {
	info, ok := roles[role]
	if !ok {
		return false
	}
	_, ok = info.permissions[permission]
	return ok
}

// Permissions returns the permission names for a role, nil for unknown roles.
func Permissions(role string) []string {
	info, ok := roles[role]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(info.permissions))
	for p := range info.permissions {
		out = append(out, p)
	}
	return out
}

// CanAccessRoute decides whether role may reach path. Admin always may.
// The first guard whose prefix matches the path decides; public
// prefixes are always allowed; anything unmatched is denied.
func CanAccessRoute(role, path string) bool {
	if role == RoleAdmin {
		return true
	}
	for _, p := range publicPrefixes {
		if hasPrefix(path, p) {
			return true
		}
	}
	for _, g := range routeGuards {
		if hasPrefix(path, g.prefix) {
			_, ok := g.allowed[role]
			return ok
		}
	}
	return false
}

// IsPublicRoute reports whether path needs no authentication.
func IsPublicRoute(path string) bool {
	for _, p := range publicPrefixes {
		if hasPrefix(path, p) {
			return true
		}
	}
	return false
}

// DashboardForRole returns the landing route for a role, or the login
// path for unknown roles.
func DashboardForRole(role string) string {
	info, ok := roles[role]
	if !ok {
		return LoginPath
	}
	return info.dashboard
}

// DisplayName returns the human label for a role, empty for unknown roles.
func DisplayName(role string) string {
	return roles[role].displayName
}

func hasPrefix(path, prefix string) bool {
	if len(path) < len(prefix) || path[:len(prefix)] != prefix {
		return false
	}
	// "/api/v1/users" must not match "/api/v1/users-export"
	return len(path) == len(prefix) || path[len(prefix)] == '/' || path[len(prefix)] == '?'
}
