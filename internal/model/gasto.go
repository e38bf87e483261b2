package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TipoGasto classifies operating expenses.
type TipoGasto string

const (
	GastoStock         TipoGasto = "stock"
	GastoSueldos       TipoGasto = "sueldos"
	GastoPersonal      TipoGasto = "personal"
	GastoMantenimiento TipoGasto = "mantenimiento"
	GastoOtro          TipoGasto = "otro"
)

// Gasto is an operating expense registered by an admin.
type Gasto struct {
	ID            uint            `gorm:"primaryKey"`
	Tipo          TipoGasto       `gorm:"type:varchar(20);not null;index"`
	Detalle       string          `gorm:"not null"`
	Monto         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Fecha         time.Time       `gorm:"not null;index"`
	RegistradoPor uint            `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Registrador *Usuario `gorm:"foreignKey:RegistradoPor"`
}
