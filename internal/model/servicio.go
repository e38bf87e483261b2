package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Servicio is an entry of the wash catalog.
// Referenced services are deactivated, never deleted.
type Servicio struct {
	ID              uint            `gorm:"primaryKey"`
	Nombre          string          `gorm:"not null"`
	Descripcion     *string
	Categoria       string          `gorm:"type:varchar(40);not null;default:'lavado';index"`
	Precio          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Duracion        int             `gorm:"not null"` // minutes
	Activo          bool            `gorm:"not null;default:true"`
	VecesContratado int             `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
