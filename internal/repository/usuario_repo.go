package repository

import (
	"context"
	"time"

	"autolavado/internal/dto"
	"autolavado/internal/model"

	"gorm.io/gorm"
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	FindByEmail(ctx context.Context, email string) (*model.Usuario, error)
	FindByID(ctx context.Context, id uint) (*model.Usuario, error)
	// ExisteEmail matches case-insensitively, active or not, ignoring excluirID.
	ExisteEmail(ctx context.Context, email string, excluirID uint) (bool, error)
	List(ctx context.Context, filter dto.UsuarioFilter) ([]model.Usuario, error)
	ListActivosPorRol(ctx context.Context, rol model.Rol) ([]model.Usuario, error)
	Update(ctx context.Context, u *model.Usuario) error
	SetActivo(ctx context.Context, ids []uint, activo bool) (int64, error)
	// DeleteSinCitas removes the given users that own no appointments and
	// returns how many were deleted.
	DeleteSinCitas(ctx context.Context, ids []uint) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountPorRol(ctx context.Context) (map[model.Rol]int64, error)
	CountCreadosEntre(ctx context.Context, rol model.Rol, desde, hasta time.Time) (int64, error)
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *usuarioRepo) FindByEmail(ctx context.Context, email string) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND activo = ?", email, true).
		First(&u).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *usuarioRepo) FindByID(ctx context.Context, id uint) (*model.Usuario, error) {
	var u model.Usuario
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *usuarioRepo) ExisteEmail(ctx context.Context, email string, excluirID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Usuario{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, excluirID).
		Count(&n).Error
	return n > 0, err
}

func (r *usuarioRepo) List(ctx context.Context, filter dto.UsuarioFilter) ([]model.Usuario, error) {
	var users []model.Usuario
	q := r.db.WithContext(ctx).Model(&model.Usuario{})
	if filter.Rol != "" {
		q = q.Where("rol = ?", filter.Rol)
	}
	if !filter.IncluirInactivos {
		q = q.Where("activo = ?", true)
	}
	if filter.Buscar != "" {
		like := "%" + filter.Buscar + "%"
		q = q.Where("nombre LIKE ? OR email LIKE ?", like, like)
	}
	err := q.Order("id ASC").Find(&users).Error
	return users, err
}

func (r *usuarioRepo) ListActivosPorRol(ctx context.Context, rol model.Rol) ([]model.Usuario, error) {
	var users []model.Usuario
	err := r.db.WithContext(ctx).
		Where("rol = ? AND activo = ?", rol, true).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

func (r *usuarioRepo) Update(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *usuarioRepo) SetActivo(ctx context.Context, ids []uint, activo bool) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Usuario{}).Where("id IN ?", ids).Update("activo", activo)
	return res.RowsAffected, res.Error
}

func (r *usuarioRepo) DeleteSinCitas(ctx context.Context, ids []uint) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referenced := tx.Model(&model.Cita{}).Select("usuario_id").Where("usuario_id IN ?", ids)
		if err := tx.Where("usuario_id IN ? AND usuario_id NOT IN (?)", ids, referenced).
			Delete(&model.Vehiculo{}).Error; err != nil {
			return err
		}
		if err := tx.Where("usuario_id IN ? AND usuario_id NOT IN (?)", ids, referenced).
			Delete(&model.Notificacion{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ? AND id NOT IN (?)", ids, referenced).Delete(&model.Usuario{})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (r *usuarioRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Usuario{}).Count(&n).Error
	return n, err
}

func (r *usuarioRepo) CountPorRol(ctx context.Context) (map[model.Rol]int64, error) {
	var rows []struct {
		Rol   model.Rol
		Total int64
	}
	err := r.db.WithContext(ctx).Model(&model.Usuario{}).
		Select("rol, COUNT(*) AS total").
		Group("rol").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[model.Rol]int64, len(model.Roles))
	for _, rol := range model.Roles {
		out[rol] = 0
	}
	for _, row := range rows {
		out[row.Rol] = row.Total
	}
	return out, nil
}

func (r *usuarioRepo) CountCreadosEntre(ctx context.Context, rol model.Rol, desde, hasta time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Usuario{}).
		Where("rol = ? AND created_at >= ? AND created_at < ?", rol, desde, hasta).
		Count(&n).Error
	return n, err
}
