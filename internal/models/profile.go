package models

import "time"

type Role string

const (
	RoleVisitor Role = "visitor"
	RoleMember  Role = "member"
	RoleAdmin   Role = "admin"
)

// NormalizeRole maps unknown role strings to visitor.
func NormalizeRole(role string) Role {
	switch Role(role) {
	case RoleVisitor, RoleMember, RoleAdmin:
		return Role(role)
	default:
		return RoleVisitor
	}
}

// Profile is the durable per-user record. An inactive profile has visitor
// capabilities regardless of its stored role.
type Profile struct {
	ID        string
	Email     string
	Role      Role
	Active    bool
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
