package models

// Session is the transient identity handed out by the external auth
// provider. Replaced wholesale on every auth-state transition.
type Session struct {
	UserID    string
	Email     string
	AvatarURL string
}

// Identity is the resolved capability state of the current caller. The
// zero value is the all-visitor default.
type Identity struct {
	IsLogged  bool
	UserID    string
	Email     string
	AvatarURL string
	Role      Role
	Active    bool
}

// Visitor returns the default identity used when no session is present or
// the profile lookup comes back empty.
func Visitor() Identity {
	return Identity{Role: RoleVisitor}
}
