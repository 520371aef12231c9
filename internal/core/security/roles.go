// Package security centralizes authorization decisions: role and permission
// constants, the approval capability check and the optional review rule.
package security

import (
	"quintastock/internal/core/appctx"
)

// Roles as displayed in the product (Portuguese, matching stored data).
const (
	RoleOperador   = "Operador"
	RoleSupervisor = "Supervisor"
	RoleQuinta     = "Quinta"
)

// Permissions gate access to functional areas.
const (
	PermissionVinhos     = "Vinhos"
	PermissionStock      = "Stock"
	PermissionMovimentar = "Movimentar Vinhos"
	PermissionHistorico  = "Histórico"
	PermissionRelatorios = "Relatórios"
	PermissionUsuarios   = "Usuários"
	PermissionAprovar    = "Aprovar"
)

// AllPermissions lists every known permission, used for validation and for
// supervisor grants.
var AllPermissions = []string{
	PermissionVinhos,
	PermissionStock,
	PermissionMovimentar,
	PermissionHistorico,
	PermissionRelatorios,
	PermissionUsuarios,
	PermissionAprovar,
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleOperador, RoleSupervisor, RoleQuinta:
		return true
	}
	return false
}

// ValidPermission reports whether permission is known.
func ValidPermission(permission string) bool {
	for _, p := range AllPermissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CanAutoApprove reports whether the user's own transfer requests are
// approved immediately on submission. Supervisors always can; operators only
// when granted the approval permission. Quinta users never can, their
// requests always wait for review.
func CanAutoApprove(u *appctx.UserContext) bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case RoleSupervisor:
		return true
	case RoleOperador:
		return u.HasPermission(PermissionAprovar)
	}
	return false
}

// CanApprove reports whether the user may decide pending transfers.
func CanApprove(u *appctx.UserContext) bool {
	return CanAutoApprove(u)
}

// CanManageUsers reports whether the user may administer accounts.
func CanManageUsers(u *appctx.UserContext) bool {
	if u == nil {
		return false
	}
	return u.Role == RoleSupervisor || u.HasPermission(PermissionUsuarios)
}

// CanManageStock reports whether the user may mutate the ledger directly
// (add wines, adjust quantities, delete entries).
func CanManageStock(u *appctx.UserContext) bool {
	if u == nil {
		return false
	}
	return u.Role == RoleSupervisor
}
