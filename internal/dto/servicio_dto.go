package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearServicioRequest struct {
	Nombre      string          `json:"nombre"      validate:"required,min=2,max=100"`
	Descripcion *string         `json:"descripcion" validate:"omitempty,max=500"`
	Categoria   string          `json:"categoria"   validate:"omitempty,max=40"`
	Precio      decimal.Decimal `json:"precio"      validate:"required,gt=0"`
	Duracion    int             `json:"duracion"    validate:"required,min=5,max=600"`
	Activo      *bool           `json:"activo"`
}

type ActualizarServicioRequest struct {
	Nombre      *string          `json:"nombre"      validate:"omitempty,min=2,max=100"`
	Descripcion *string          `json:"descripcion" validate:"omitempty,max=500"`
	Categoria   *string          `json:"categoria"   validate:"omitempty,max=40"`
	Precio      *decimal.Decimal `json:"precio"`
	Duracion    *int             `json:"duracion"    validate:"omitempty,min=5,max=600"`
	Activo      *bool            `json:"activo"`
}

type ServicioFilter struct {
	SoloActivos bool
	Categoria   string
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ServicioResponse struct {
	ID              uint            `json:"id"`
	Nombre          string          `json:"nombre"`
	Descripcion     *string         `json:"descripcion"`
	Categoria       string          `json:"categoria"`
	Precio          decimal.Decimal `json:"precio"`
	Duracion        int             `json:"duracion"`
	Activo          bool            `json:"activo"`
	VecesContratado int             `json:"veces_contratado"`
}

// ServicioPopular is one row of the popularity ranking.
type ServicioPopular struct {
	ServicioID uint            `json:"servicio_id"`
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"`
	Duracion   int             `json:"duracion"`
	Veces      int64           `json:"veces_contratado"`
}
