package repository

import (
	"context"

	"autolavado/internal/apierror"
	"autolavado/internal/dto"
	"autolavado/internal/model"

	"gorm.io/gorm"
)

type ServicioRepository interface {
	Create(ctx context.Context, s *model.Servicio) error
	FindByID(ctx context.Context, id uint) (*model.Servicio, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Servicio, error)
	List(ctx context.Context, filter dto.ServicioFilter) ([]model.Servicio, error)
	// Update writes the catalog-editable columns only; veces_contratado is
	// owned by IncrementarContratados.
	Update(ctx context.Context, s *model.Servicio) error
	// DeleteSinCitas deletes the service only if no appointment references it
	// and reports whether a row was removed.
	DeleteSinCitas(ctx context.Context, id uint) (bool, error)
	IncrementarContratados(ctx context.Context, tx *gorm.DB, ids []uint) error
}

type servicioRepo struct{ db *gorm.DB }

func NewServicioRepository(db *gorm.DB) ServicioRepository { return &servicioRepo{db: db} }

func (r *servicioRepo) Create(ctx context.Context, s *model.Servicio) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *servicioRepo) FindByID(ctx context.Context, id uint) (*model.Servicio, error) {
	var s model.Servicio
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *servicioRepo) FindByIDs(ctx context.Context, ids []uint) ([]model.Servicio, error) {
	var out []model.Servicio
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *servicioRepo) List(ctx context.Context, filter dto.ServicioFilter) ([]model.Servicio, error) {
	var out []model.Servicio
	q := r.db.WithContext(ctx).Model(&model.Servicio{})
	if filter.SoloActivos {
		q = q.Where("activo = ?", true)
	}
	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}
	err := q.Order("nombre ASC, id ASC").Find(&out).Error
	return out, err
}

var columnasEditables = []string{"nombre", "descripcion", "categoria", "precio", "duracion", "activo", "updated_at"}

func (r *servicioRepo) Update(ctx context.Context, s *model.Servicio) error {
	res := r.db.WithContext(ctx).Model(s).Select(columnasEditables).Updates(s)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apierror.ErrNoEncontrado
	}
	return nil
}

func (r *servicioRepo) DeleteSinCitas(ctx context.Context, id uint) (bool, error) {
	referenced := r.db.Model(&model.CitaServicio{}).Select("1").Where("servicio_id = ?", id)
	res := r.db.WithContext(ctx).
		Where("id = ? AND NOT EXISTS (?)", id, referenced).
		Delete(&model.Servicio{})
	return res.RowsAffected > 0, res.Error
}

func (r *servicioRepo) IncrementarContratados(ctx context.Context, tx *gorm.DB, ids []uint) error {
	for _, id := range ids {
		err := conn(r.db, tx).WithContext(ctx).Model(&model.Servicio{}).
			Where("id = ?", id).
			Update("veces_contratado", gorm.Expr("veces_contratado + 1")).Error
		if err != nil {
			return err
		}
	}
	return nil
}
