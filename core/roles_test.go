package core

import "testing"

// Requirement: capabilities are computed from the role enum and unknown
// roles carry none.
func TestRole_Capabilities(t *testing.T) {
	tests := []struct {
		name           string
		role           Role
		valid          bool
		manageProducts bool
		viewReports    bool
	}{
		{name: "admin", role: RoleAdmin, valid: true, manageProducts: true, viewReports: true},
		{name: "employee", role: RoleEmployee, valid: true, manageProducts: true, viewReports: true},
		{name: "client", role: RoleClient, valid: true, manageProducts: false, viewReports: false},
		{name: "unknown role fails closed", role: Role("SUPERUSER"), valid: false, manageProducts: false, viewReports: false},
		{name: "empty role fails closed", role: Role(""), valid: false, manageProducts: false, viewReports: false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := test.role.Valid(); got != test.valid {
				t.Errorf("Valid() = %v, want %v", got, test.valid)
			}
			if got := test.role.CanManageProducts(); got != test.manageProducts {
				t.Errorf("CanManageProducts() = %v, want %v", got, test.manageProducts)
			}
			if got := test.role.CanViewReports(); got != test.viewReports {
				t.Errorf("CanViewReports() = %v, want %v", got, test.viewReports)
			}
		})
	}
}

// Requirement: role predicates on a nil user are false, never a panic.
func TestUser_RolePredicates(t *testing.T) {
	var none *User
	if none.IsAdmin() || none.IsEmployee() || none.IsClient() {
		t.Fatal("nil user should hold no role")
	}

	admin := &User{Role: RoleAdmin}
	if !admin.IsAdmin() || admin.IsClient() {
		t.Fatal("admin user misclassified")
	}
}
