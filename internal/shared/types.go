package shared

import "github.com/google/uuid"

// Role is the closed set of caller roles. Comparisons always go through
// these constants, never free-form strings from the wire.
type Role string

const (
	RoleAuthor   Role = "author"   // Regular authenticated user
	RoleReviewer Role = "reviewer" // Moderation queue access
	RoleAdmin    Role = "admin"    // Full system access
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAuthor, RoleReviewer, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// CanModerate reports whether the role may act on the review queue.
func (r Role) CanModerate() bool {
	return r == RoleReviewer || r == RoleAdmin
}

// Principal is the authenticated caller as resolved by the identity
// collaborator (JWT middleware). Lives in shared to avoid an import cycle
// between middleware and the post domain.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

// IsZero reports whether no principal was resolved (public request).
func (p Principal) IsZero() bool {
	return p.ID == uuid.Nil
}
