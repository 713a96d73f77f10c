package models

import "testing"

func TestRoles(t *testing.T) {
	tests := []struct {
		role   Role
		valid  bool
		manage bool
	}{
		{RoleAdmin, true, true},
		{RoleEditor, true, false},
		{"", false, false},
		{"Admin", false, false},
		{"administrator", false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if got := tt.role.ManagesSite(); got != tt.manage {
				t.Errorf("ManagesSite() = %v, want %v", got, tt.manage)
			}
			u := &User{Role: tt.role}
			if u.IsAdmin() != tt.manage {
				t.Errorf("IsAdmin() = %v", u.IsAdmin())
			}
		})
	}
}

func TestUserNeeds2FASetup(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"

	// A stored secret alone does not count: the first code confirms it.
	for _, u := range []User{{}, {TOTPSecret: &secret}} {
		if !u.Needs2FASetup() {
			t.Errorf("Needs2FASetup() = false for %+v", u)
		}
	}
	enrolled := User{TOTPSecret: &secret, TOTPEnabled: true}
	if enrolled.Needs2FASetup() {
		t.Error("enrolled user should not need setup")
	}
}
