package repository

import (
	"context"
	"fmt"
	"time"

	"autolavado/internal/apierror"
	"autolavado/internal/dto"
	"autolavado/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CitaRepository interface {
	// Create inserts the appointment together with its service snapshots.
	Create(ctx context.Context, tx *gorm.DB, c *model.Cita) error
	FindByID(ctx context.Context, id uint) (*model.Cita, error)
	List(ctx context.Context, filter dto.CitaFilter) ([]model.Cita, error)
	// CambiarEstado persists c.Estado and the transition fields only if the
	// stored row is still in estado desde at c.Version. A lost race returns
	// ErrTransicionInvalida and leaves the row untouched.
	CambiarEstado(ctx context.Context, c *model.Cita, desde model.EstadoCita) error
	// Actualizar persists schedule and assignment fields with the same
	// version guard as CambiarEstado.
	Actualizar(ctx context.Context, c *model.Cita) error
	ListParaRecordatorio(ctx context.Context, desde, hasta time.Time) ([]model.Cita, error)
	MarcarRecordatorio(ctx context.Context, id uint) error
	CountProgramadasEntre(ctx context.Context, desde, hasta time.Time) (int64, error)
	CountCanceladasEntre(ctx context.Context, desde, hasta time.Time) (int64, error)
	CountPorEstado(ctx context.Context, desde, hasta time.Time) (map[model.EstadoCita]int64, error)
	SumIngresosEntre(ctx context.Context, desde, hasta time.Time) (decimal.Decimal, error)
	TopServicios(ctx context.Context, desde, hasta time.Time, limit int) ([]dto.ServicioPopular, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type citaRepo struct{ db *gorm.DB }

func NewCitaRepository(db *gorm.DB) CitaRepository { return &citaRepo{db: db} }

func (r *citaRepo) DB() *gorm.DB { return r.db }

func (r *citaRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Cita) error {
	return conn(r.db, tx).WithContext(ctx).Omit("Usuario", "Vehiculo", "Empleado").Create(c).Error
}

func (r *citaRepo) FindByID(ctx context.Context, id uint) (*model.Cita, error) {
	var c model.Cita
	err := r.db.WithContext(ctx).
		Preload("Servicios", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Usuario").
		Preload("Vehiculo").
		Preload("Empleado").
		First(&c, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *citaRepo) List(ctx context.Context, filter dto.CitaFilter) ([]model.Cita, error) {
	var out []model.Cita
	q := r.db.WithContext(ctx).Model(&model.Cita{})
	if filter.UsuarioID != 0 {
		q = q.Where("usuario_id = ?", filter.UsuarioID)
	}
	if filter.EmpleadoID != 0 {
		q = q.Where("empleado_id = ?", filter.EmpleadoID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Desde != nil {
		q = q.Where("fecha_hora >= ?", *filter.Desde)
	}
	if filter.Hasta != nil {
		q = q.Where("fecha_hora < ?", *filter.Hasta)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	err := q.Preload("Servicios", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Usuario").
		Preload("Vehiculo").
		Order("fecha_hora DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *citaRepo) CambiarEstado(ctx context.Context, c *model.Cita, desde model.EstadoCita) error {
	res := r.db.WithContext(ctx).Model(&model.Cita{}).
		Where("id = ? AND estado = ? AND version = ?", c.ID, desde, c.Version).
		Updates(map[string]interface{}{
			"estado":             c.Estado,
			"total":              c.Total,
			"precio_bloqueado":   c.PrecioBloqueado,
			"motivo_cancelacion": c.MotivoCancelacion,
			"finalizada_at":      c.FinalizadaAt,
			"cancelada_at":       c.CanceladaAt,
			"version":            gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cita %d ya no esta en estado %s: %w", c.ID, desde, apierror.ErrTransicionInvalida)
	}
	c.Version++
	return nil
}

func (r *citaRepo) Actualizar(ctx context.Context, c *model.Cita) error {
	res := r.db.WithContext(ctx).Model(&model.Cita{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]interface{}{
			"fecha_hora":           c.FechaHora,
			"empleado_id":          c.EmpleadoID,
			"observaciones":        c.Observaciones,
			"recordatorio_enviado": c.RecordatorioEnviado,
			"version":              gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cita %d modificada concurrentemente: %w", c.ID, apierror.ErrConflicto)
	}
	c.Version++
	return nil
}

func (r *citaRepo) ListParaRecordatorio(ctx context.Context, desde, hasta time.Time) ([]model.Cita, error) {
	var out []model.Cita
	err := r.db.WithContext(ctx).
		Where("estado = ? AND recordatorio_enviado = ? AND fecha_hora >= ? AND fecha_hora < ?",
			model.EstadoConfirmada, false, desde, hasta).
		Preload("Servicios").
		Preload("Usuario").
		Preload("Vehiculo").
		Order("fecha_hora ASC").
		Find(&out).Error
	return out, err
}

func (r *citaRepo) MarcarRecordatorio(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.Cita{}).
		Where("id = ?", id).
		Update("recordatorio_enviado", true).Error
}

func (r *citaRepo) CountProgramadasEntre(ctx context.Context, desde, hasta time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Cita{}).
		Where("fecha_hora >= ? AND fecha_hora < ? AND estado <> ?", desde, hasta, model.EstadoCancelada).
		Count(&n).Error
	return n, err
}

func (r *citaRepo) CountCanceladasEntre(ctx context.Context, desde, hasta time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Cita{}).
		Where("estado = ? AND cancelada_at >= ? AND cancelada_at < ?", model.EstadoCancelada, desde, hasta).
		Count(&n).Error
	return n, err
}

func (r *citaRepo) CountPorEstado(ctx context.Context, desde, hasta time.Time) (map[model.EstadoCita]int64, error) {
	var rows []struct {
		Estado model.EstadoCita
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Cita{}).
		Select("estado, COUNT(*) AS total").
		Where("fecha_hora >= ? AND fecha_hora < ?", desde, hasta).
		Group("estado").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[model.EstadoCita]int64, len(rows))
	for _, row := range rows {
		out[row.Estado] = row.Total
	}
	return out, nil
}

// SumIngresosEntre adds the locked totals of appointments finished in the
// window. Live service prices are never consulted.
func (r *citaRepo) SumIngresosEntre(ctx context.Context, desde, hasta time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.Cita{}).
		Select("SUM(total)").
		Where("estado = ? AND precio_bloqueado = ? AND finalizada_at >= ? AND finalizada_at < ?",
			model.EstadoFinalizada, true, desde, hasta).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// TopServicios ranks services by bookings scheduled inside the window,
// cancelled appointments excluded. Ties go to the lower service id.
func (r *citaRepo) TopServicios(ctx context.Context, desde, hasta time.Time, limit int) ([]dto.ServicioPopular, error) {
	var out []dto.ServicioPopular
	err := r.db.WithContext(ctx).Table("cita_servicios AS cs").
		Select("cs.servicio_id AS servicio_id, s.nombre AS nombre, s.precio AS precio, s.duracion AS duracion, COUNT(*) AS veces").
		Joins("JOIN citas c ON c.id = cs.cita_id").
		Joins("JOIN servicios s ON s.id = cs.servicio_id").
		Where("c.fecha_hora >= ? AND c.fecha_hora < ? AND c.estado <> ?", desde, hasta, model.EstadoCancelada).
		Group("cs.servicio_id, s.nombre, s.precio, s.duracion").
		Order("veces DESC, cs.servicio_id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
