// internal/models/actor.go
package models

// Role is the closed set of roles an authenticated actor can carry.
// Identity resolution happens upstream; the workflow only sees (id, role).
type Role string

const (
	RoleCandidate     Role = "candidate"
	RoleHiringManager Role = "hiring_manager"
	RoleSuperAdmin    Role = "super_admin"
)

// IsValid checks whether the role is a member of the closed set.
func (r Role) IsValid() bool {
	switch r {
	case RoleCandidate, RoleHiringManager, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// IsHiring reports whether the role may perform hiring-side actions.
func (r Role) IsHiring() bool {
	return r == RoleHiringManager || r == RoleSuperAdmin
}

func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated identity performing a workflow action.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}
