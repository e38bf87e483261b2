package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RegisterRequest is the public self-registration form; it always creates a client.
type RegisterRequest struct {
	Nombre               string  `json:"nombre"                validate:"required,min=2,max=100"`
	Email                string  `json:"email"                 validate:"required,email"`
	Telefono             *string `json:"telefono"              validate:"omitempty,max=30"`
	Password             string  `json:"password"              validate:"required,password_fuerte"`
	PasswordConfirmacion string  `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type ActualizarPerfilRequest struct {
	Nombre   string  `json:"nombre"   validate:"omitempty,min=2,max=100"`
	Telefono *string `json:"telefono" validate:"omitempty,max=30"`
}

type CambiarPasswordRequest struct {
	PasswordActual       string `json:"current_password"      validate:"required"`
	Password             string `json:"password"              validate:"required,password_fuerte"`
	PasswordConfirmacion string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // seconds
	Redirect     string          `json:"redirect"`
	User         UsuarioResponse `json:"user"`
}
