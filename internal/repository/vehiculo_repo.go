package repository

import (
	"context"

	"autolavado/internal/model"

	"gorm.io/gorm"
)

type VehiculoRepository interface {
	Create(ctx context.Context, v *model.Vehiculo) error
	FindByID(ctx context.Context, id uint) (*model.Vehiculo, error)
	ListByUsuario(ctx context.Context, usuarioID uint) ([]model.Vehiculo, error)
	Update(ctx context.Context, v *model.Vehiculo) error
	Delete(ctx context.Context, id uint) error
	TieneCitas(ctx context.Context, id uint) (bool, error)
}

type vehiculoRepo struct{ db *gorm.DB }

func NewVehiculoRepository(db *gorm.DB) VehiculoRepository { return &vehiculoRepo{db: db} }

func (r *vehiculoRepo) Create(ctx context.Context, v *model.Vehiculo) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *vehiculoRepo) FindByID(ctx context.Context, id uint) (*model.Vehiculo, error) {
	var v model.Vehiculo
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (r *vehiculoRepo) ListByUsuario(ctx context.Context, usuarioID uint) ([]model.Vehiculo, error) {
	var out []model.Vehiculo
	err := r.db.WithContext(ctx).Where("usuario_id = ?", usuarioID).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *vehiculoRepo) Update(ctx context.Context, v *model.Vehiculo) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *vehiculoRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Vehiculo{}, id).Error
}

func (r *vehiculoRepo) TieneCitas(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Cita{}).Where("vehiculo_id = ?", id).Count(&n).Error
	return n > 0, err
}
