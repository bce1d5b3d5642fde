package user

type Role string

const (
	RoleOwner   Role = "owner"   // Company owner - full access
	RoleManager Role = "manager" // Reviews timesheets, bills clients
	RoleGuard   Role = "guard"   // Works shifts, clocks in and out
)

var RoleValues = []string{
	string(RoleOwner),
	string(RoleManager),
	string(RoleGuard),
}

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleGuard:
		return true
	}
	return false
}

// Claims is the caller identity carried in the access token.
type Claims struct {
	UserID    string
	CompanyID string
	Role      Role
	GuardID   *string // set for guard accounts
}

// IsOwner checks if caller is company owner
func (c Claims) IsOwner() bool {
	return c.Role == RoleOwner
}

// IsManager checks if caller is manager or owner
func (c Claims) IsManager() bool {
	return c.Role == RoleManager || c.Role == RoleOwner
}

// IsGuard checks if caller can only act on their own assignments
func (c Claims) IsGuard() bool {
	return c.Role == RoleGuard
}

// OwnsAssignment reports whether the caller may act on guardID's
// assignment. Managers and owners are never restricted.
func (c Claims) OwnsAssignment(guardID string) bool {
	if c.IsManager() {
		return true
	}
	return c.IsGuard() && c.GuardID != nil && *c.GuardID == guardID
}
