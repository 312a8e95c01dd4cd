package core

// Role is the closed set of account roles. Authorization decisions are
// computed from this enum, never from raw string comparison.
type Role string

const (
	RoleClient   Role = "CLIENT"
	RoleEmployee Role = "EMPLOYEE"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the known roles. Unknown roles carry
// no capabilities (fail closed).
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

// CanManageProducts reports whether the role may create, edit or delete
// catalog products.
func (r Role) CanManageProducts() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// CanViewReports reports whether the role may open the admin reports view.
func (r Role) CanViewReports() bool {
	return r == RoleAdmin || r == RoleEmployee
}

func (u *User) IsAdmin() bool    { return u != nil && u.Role == RoleAdmin }
func (u *User) IsEmployee() bool { return u != nil && u.Role == RoleEmployee }
func (u *User) IsClient() bool   { return u != nil && u.Role == RoleClient }
