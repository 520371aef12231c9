package security

import (
	"testing"

	"quintastock/internal/core/appctx"
)

func TestCanAutoApprove(t *testing.T) {
	tests := []struct {
		name string
		user *appctx.UserContext
		want bool
	}{
		{"nil user", nil, false},
		{"supervisor", &appctx.UserContext{Role: RoleSupervisor}, true},
		{"operador without permission", &appctx.UserContext{Role: RoleOperador}, false},
		{"operador with permission", &appctx.UserContext{Role: RoleOperador, Permissions: []string{PermissionAprovar}}, true},
		{"quinta user", &appctx.UserContext{Role: RoleQuinta}, false},
		{"quinta user with permission", &appctx.UserContext{Role: RoleQuinta, Permissions: []string{PermissionAprovar}}, false},
		{"unknown role", &appctx.UserContext{Role: "Gerente"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAutoApprove(tt.user); got != tt.want {
				t.Errorf("CanAutoApprove() = %v, want %v", got, tt.want)
			}
			if got := CanApprove(tt.user); got != tt.want {
				t.Errorf("CanApprove() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanManageUsers(t *testing.T) {
	if !CanManageUsers(&appctx.UserContext{Role: RoleSupervisor}) {
		t.Error("supervisor should manage users")
	}
	if !CanManageUsers(&appctx.UserContext{Role: RoleOperador, Permissions: []string{PermissionUsuarios}}) {
		t.Error("operador with permission should manage users")
	}
	if CanManageUsers(&appctx.UserContext{Role: RoleOperador}) {
		t.Error("operador without permission should not manage users")
	}
	if CanManageUsers(nil) {
		t.Error("nil user should not manage users")
	}
}

func TestCanManageStock(t *testing.T) {
	if !CanManageStock(&appctx.UserContext{Role: RoleSupervisor}) {
		t.Error("supervisor should manage stock")
	}
	if CanManageStock(&appctx.UserContext{Role: RoleOperador, Permissions: AllPermissions}) {
		t.Error("stock management is supervisor-only regardless of permissions")
	}
	if CanManageStock(nil) {
		t.Error("nil user should not manage stock")
	}
}

func TestValidRoleAndPermission(t *testing.T) {
	for _, role := range []string{RoleOperador, RoleSupervisor, RoleQuinta} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false", role)
		}
	}
	if ValidRole("Admin") {
		t.Error("unknown role accepted")
	}

	for _, p := range AllPermissions {
		if !ValidPermission(p) {
			t.Errorf("ValidPermission(%q) = false", p)
		}
	}
	if ValidPermission("Root") {
		t.Error("unknown permission accepted")
	}
}
