package model

import (
	"time"

	"gorm.io/datatypes"
)

// TipoNotificacion drives the presentation of a notification.
type TipoNotificacion string

const (
	TipoInfo    TipoNotificacion = "info"
	TipoSuccess TipoNotificacion = "success"
	TipoWarning TipoNotificacion = "warning"
)

// EventoCita is an appointment lifecycle event that produces notifications.
type EventoCita string

const (
	EventoCreada       EventoCita = "creada"
	EventoConfirmada   EventoCita = "confirmada"
	EventoIniciada     EventoCita = "iniciada"
	EventoFinalizada   EventoCita = "finalizada"
	EventoCancelada    EventoCita = "cancelada"
	EventoRecordatorio EventoCita = "recordatorio"
)

// Notificacion is owned by its target user; only that user flips Leida.
type Notificacion struct {
	ID        uint             `gorm:"primaryKey"`
	UsuarioID uint             `gorm:"not null;index:idx_notif_usuario_leida"`
	Tipo      TipoNotificacion `gorm:"type:varchar(20);not null"`
	Icono     string           `gorm:"type:varchar(40);not null"`
	Titulo    string           `gorm:"not null"`
	Mensaje   string           `gorm:"not null"`
	Leida     bool             `gorm:"not null;default:false;index:idx_notif_usuario_leida"`
	CitaID    *uint            `gorm:"index"`
	Evento    *EventoCita      `gorm:"type:varchar(20)"`
	Datos     datatypes.JSONMap
	CreatedAt time.Time
}

// TableName keeps the Spanish plural instead of GORM's "notificacions".
func (Notificacion) TableName() string { return "notificaciones" }
