package model

import (
	"fmt"

	"autolavado/internal/apierror"
)

// Rol is the closed set of account roles. A user holds exactly one.
type Rol string

const (
	RolAdmin    Rol = "admin"
	RolEmpleado Rol = "empleado"
	RolCliente  Rol = "cliente"
)

// Roles lists every valid role in display order.
var Roles = []Rol{RolAdmin, RolEmpleado, RolCliente}

// ParseRol validates a stored or token-carried role string.
func ParseRol(s string) (Rol, error) {
	switch r := Rol(s); r {
	case RolAdmin, RolEmpleado, RolCliente:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", apierror.ErrRolDesconocido, s)
}

// Area is a role-gated dashboard context.
type Area string

const (
	AreaAdmin    Area = "admin"
	AreaEmpleado Area = "empleado"
	AreaCliente  Area = "cliente"
)

// AreaDeRol maps each role to its single dashboard area.
func AreaDeRol(r Rol) (Area, error) {
	switch r {
	case RolAdmin:
		return AreaAdmin, nil
	case RolEmpleado:
		return AreaEmpleado, nil
	case RolCliente:
		return AreaCliente, nil
	}
	return "", fmt.Errorf("%w: %q", apierror.ErrRolDesconocido, string(r))
}

// DashboardPath is the landing route of the area.
func (a Area) DashboardPath() string {
	return "/" + string(a) + "/dashboard"
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UsuarioID uint
	Rol       Rol
}

func (a Actor) EsAdmin() bool { return a.Rol == RolAdmin }

func (a Actor) EsCliente() bool { return a.Rol == RolCliente }
