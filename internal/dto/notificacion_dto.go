package dto

import "time"

type NotificacionResponse struct {
	ID        uint                   `json:"id"`
	UsuarioID uint                   `json:"usuario_id"`
	Tipo      string                 `json:"tipo"`
	Icono     string                 `json:"icono"`
	Titulo    string                 `json:"titulo"`
	Mensaje   string                 `json:"mensaje"`
	Leida     bool                   `json:"leida"`
	CitaID    *uint                  `json:"cita_id"`
	Datos     map[string]interface{} `json:"datos,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type ContadorNoLeidasResponse struct {
	UsuarioID uint  `json:"usuario_id"`
	NoLeidas  int64 `json:"no_leidas"`
}

type MarcadasResponse struct {
	Actualizadas int64 `json:"actualizadas"`
}
