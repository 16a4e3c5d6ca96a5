package service

import "github.com/vrcface/server/internal/domain"

// Actor identifies the caller of a state-changing operation.
type Actor struct {
	ID   string
	Role domain.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role.Satisfies(domain.RoleAdmin)
}

// CanManage reports whether the actor owns the resource or is an admin.
func (a Actor) CanManage(ownerID string) bool {
	return a.ID != "" && (a.ID == ownerID || a.IsAdmin())
}
