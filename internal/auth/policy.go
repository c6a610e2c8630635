package auth

// Role gates what a user may write. Visitors only read.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCaptain Role = "capitan"
	RoleVisitor Role = "visitante"
)

// User is the authenticated caller as extracted from its token.
type User struct {
	ID     string
	Role   Role
	TeamID string
}

// ResourceKind names a mutable part of the league.
type ResourceKind string

const (
	ResourceTeam   ResourceKind = "equipo"
	ResourcePlayer ResourceKind = "jugador"
	ResourceMatch  ResourceKind = "partido"
)

// Resource identifies the target of a write. TeamID is the owning team where
// that applies (a player's team, a match is owned by no single team).
type Resource struct {
	Kind   ResourceKind
	TeamID string
}

// CanWrite is the single capability check consulted before any mutation.
// Admins write everything; a captain manages only their own team's roster.
func CanWrite(u User, r Resource) bool {
	switch u.Role {
	case RoleAdmin:
		return true
	case RoleCaptain:
		return r.Kind == ResourcePlayer && r.TeamID != "" && r.TeamID == u.TeamID
	default:
		return false
	}
}
