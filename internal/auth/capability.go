package auth

import "inventory/api/internal/models"

// Capability checks are pure and recomputed at every call site. Activation
// is a master switch: an inactive identity keeps visitor capabilities no
// matter what role its profile stores.

func CanWrite(id models.Identity) bool {
	return id.Active && (id.Role == models.RoleMember || id.Role == models.RoleAdmin)
}

func IsAdmin(id models.Identity) bool {
	return id.Active && id.Role == models.RoleAdmin
}
