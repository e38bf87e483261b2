package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CrearGastoRequest struct {
	Tipo    string          `json:"tipo"    validate:"required,oneof=stock sueldos personal mantenimiento otro"`
	Detalle string          `json:"detalle" validate:"required,min=3,max=255"`
	Monto   decimal.Decimal `json:"monto"   validate:"required,gt=0"`
	Fecha   *time.Time      `json:"fecha"`
}

type ActualizarGastoRequest struct {
	Tipo    string           `json:"tipo"    validate:"omitempty,oneof=stock sueldos personal mantenimiento otro"`
	Detalle string           `json:"detalle" validate:"omitempty,min=3,max=255"`
	Monto   *decimal.Decimal `json:"monto"`
	Fecha   *time.Time       `json:"fecha"`
}

type GastoFilter struct {
	Tipo  string
	Desde *time.Time
	Hasta *time.Time
	Page  int
	Limit int
}

type GastoResponse struct {
	ID            uint            `json:"id"`
	Tipo          string          `json:"tipo"`
	Detalle       string          `json:"detalle"`
	Monto         decimal.Decimal `json:"monto"`
	Fecha         time.Time       `json:"fecha"`
	RegistradoPor string          `json:"registrado_por"`
}

type GastoListResponse struct {
	Data  []GastoResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
