package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearUsuarioRequest struct {
	Nombre   string  `json:"nombre"   validate:"required,min=2,max=100"`
	Email    string  `json:"email"    validate:"required,email"`
	Telefono *string `json:"telefono" validate:"omitempty,max=30"`
	Password string  `json:"password" validate:"required,password_fuerte"`
	Rol      string  `json:"rol"      validate:"required,oneof=admin empleado cliente"`
}

type ActualizarUsuarioRequest struct {
	Nombre   string  `json:"nombre"   validate:"omitempty,min=2,max=100"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Telefono *string `json:"telefono" validate:"omitempty,max=30"`
	Password string  `json:"password" validate:"omitempty,password_fuerte"`
	// Rol is accepted only when it equals the current role.
	Rol    string `json:"rol"    validate:"omitempty,oneof=admin empleado cliente"`
	Activo *bool  `json:"activo"`
}

type BulkUsuariosRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1,dive,gt=0"`
}

type UsuarioFilter struct {
	Rol              string
	IncluirInactivos bool
	Buscar           string
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID        uint    `json:"id"`
	Nombre    string  `json:"nombre"`
	Email     string  `json:"email"`
	Telefono  *string `json:"telefono"`
	Rol       string  `json:"rol"`
	Activo    bool    `json:"activo"`
	CreatedAt string  `json:"created_at"`
}

type BulkResponse struct {
	Solicitados int   `json:"solicitados"`
	Afectados   int64 `json:"afectados"`
}

// RegistrosUsuarioResponse bundles everything an admin inspects for one user.
type RegistrosUsuarioResponse struct {
	Usuario   UsuarioResponse    `json:"usuario"`
	Vehiculos []VehiculoResponse `json:"vehiculos"`
	Citas     []CitaResponse     `json:"citas"`
}
