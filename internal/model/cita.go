package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstadoCita is the lifecycle state of an appointment.
type EstadoCita string

const (
	EstadoPendiente  EstadoCita = "pendiente"
	EstadoConfirmada EstadoCita = "confirmada"
	EstadoEnProceso  EstadoCita = "en_proceso"
	EstadoFinalizada EstadoCita = "finalizada"
	EstadoCancelada  EstadoCita = "cancelada"
)

// Cita is a booking of one or more services for a client's vehicle.
// Total is the sum of the pivot price snapshots and never follows live
// service prices. Version guards concurrent transitions.
type Cita struct {
	ID                  uint            `gorm:"primaryKey"`
	UsuarioID           uint            `gorm:"not null;index"`
	VehiculoID          uint            `gorm:"not null;index"`
	EmpleadoID          *uint           `gorm:"index"`
	FechaHora           time.Time       `gorm:"not null;index"`
	Estado              EstadoCita      `gorm:"type:varchar(20);not null;default:'pendiente';index"`
	Observaciones       *string
	MotivoCancelacion   *string
	Total               decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	PrecioBloqueado     bool            `gorm:"not null;default:false"`
	RecordatorioEnviado bool            `gorm:"not null;default:false"`
	Version             int             `gorm:"not null;default:1"`
	FinalizadaAt        *time.Time
	CanceladaAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Usuario   *Usuario       `gorm:"foreignKey:UsuarioID"`
	Vehiculo  *Vehiculo      `gorm:"foreignKey:VehiculoID"`
	Empleado  *Usuario       `gorm:"foreignKey:EmpleadoID"`
	Servicios []CitaServicio `gorm:"foreignKey:CitaID"`
}

// TableName keeps "citas"; GORM's inflector leaves "cita" unchanged.
func (Cita) TableName() string { return "citas" }

// CitaServicio is the appointment-service association. Precio and Nombre are
// copied from the catalog at booking time and never updated afterwards.
type CitaServicio struct {
	ID         uint            `gorm:"primaryKey"`
	CitaID     uint            `gorm:"not null;index"`
	ServicioID uint            `gorm:"not null;index"`
	Nombre     string          `gorm:"not null"`
	Precio     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt  time.Time

	Servicio *Servicio `gorm:"foreignKey:ServicioID"`
}

// SumaSnapshots totals the pivot prices.
func (c *Cita) SumaSnapshots() decimal.Decimal {
	total := decimal.Zero
	for _, s := range c.Servicios {
		total = total.Add(s.Precio)
	}
	return total
}
