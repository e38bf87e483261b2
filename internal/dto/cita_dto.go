package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearCitaRequest struct {
	// UsuarioID selects the client when an admin books; ignored for clients.
	UsuarioID     uint      `json:"usuario_id"`
	VehiculoID    uint      `json:"vehiculo_id"    validate:"required,gt=0"`
	FechaHora     time.Time `json:"fecha_hora"     validate:"required"`
	ServicioIDs   []uint    `json:"servicios"      validate:"required,min=1,dive,gt=0"`
	EmpleadoID    *uint     `json:"empleado_id"    validate:"omitempty,gt=0"`
	Observaciones *string   `json:"observaciones"  validate:"omitempty,max=500"`
}

type CancelarCitaRequest struct {
	Motivo string `json:"motivo" validate:"max=500"`
}

type ReprogramarCitaRequest struct {
	FechaHora time.Time `json:"fecha_hora" validate:"required"`
}

type AsignarEmpleadoRequest struct {
	EmpleadoID uint `json:"empleado_id" validate:"required,gt=0"`
}

// EventoCitaRequest is the body of POST /notificaciones/cita/{evento}.
type EventoCitaRequest struct {
	CitaID uint `json:"cita_id" validate:"required,gt=0"`
}

type CitaFilter struct {
	UsuarioID  uint
	EmpleadoID uint
	Estado     string
	Desde      *time.Time
	Hasta      *time.Time
	Limit      int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CitaServicioResponse struct {
	ServicioID uint            `json:"servicio_id"`
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"`
}

type CitaResponse struct {
	ID                uint                   `json:"id"`
	UsuarioID         uint                   `json:"usuario_id"`
	Cliente           string                 `json:"cliente,omitempty"`
	Vehiculo          *VehiculoResponse      `json:"vehiculo,omitempty"`
	EmpleadoID        *uint                  `json:"empleado_id"`
	FechaHora         time.Time              `json:"fecha_hora"`
	Estado            string                 `json:"estado"`
	EstadoFormatted   string                 `json:"estado_formatted"`
	Observaciones     *string                `json:"observaciones"`
	MotivoCancelacion *string                `json:"motivo_cancelacion"`
	Servicios         []CitaServicioResponse `json:"servicios"`
	Total             decimal.Decimal        `json:"total"`
	PrecioBloqueado   bool                   `json:"precio_bloqueado"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// FormularioCitaResponse feeds the admin "nueva cita" form.
type FormularioCitaResponse struct {
	Clientes  []UsuarioResponse  `json:"clientes"`
	Empleados []UsuarioResponse  `json:"empleados"`
	Servicios []ServicioResponse `json:"servicios"`
}

// EstadoFormatted is the human label of an appointment state.
func EstadoFormatted(estado string) string {
	switch estado {
	case "pendiente":
		return "Pendiente"
	case "confirmada":
		return "Confirmada"
	case "en_proceso":
		return "En Proceso"
	case "finalizada":
		return "Finalizada"
	case "cancelada":
		return "Cancelada"
	default:
		return estado
	}
}
