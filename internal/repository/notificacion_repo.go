package repository

import (
	"context"

	"autolavado/internal/model"

	"gorm.io/gorm"
)

type NotificacionRepository interface {
	Create(ctx context.Context, n *model.Notificacion) error
	FindByID(ctx context.Context, id uint) (*model.Notificacion, error)
	SetLeida(ctx context.Context, id uint, leida bool) error
	MarcarTodasLeidas(ctx context.Context, usuarioID uint) (int64, error)
	CountNoLeidas(ctx context.Context, usuarioID uint) (int64, error)
	// ListByUsuario returns newest first; id breaks equal timestamps so the
	// order of creation within a recipient is preserved.
	ListByUsuario(ctx context.Context, usuarioID uint, limit int) ([]model.Notificacion, error)
}

type notificacionRepo struct{ db *gorm.DB }

func NewNotificacionRepository(db *gorm.DB) NotificacionRepository {
	return &notificacionRepo{db: db}
}

func (r *notificacionRepo) Create(ctx context.Context, n *model.Notificacion) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificacionRepo) FindByID(ctx context.Context, id uint) (*model.Notificacion, error) {
	var n model.Notificacion
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

func (r *notificacionRepo) SetLeida(ctx context.Context, id uint, leida bool) error {
	return r.db.WithContext(ctx).Model(&model.Notificacion{}).Where("id = ?", id).Update("leida", leida).Error
}

func (r *notificacionRepo) MarcarTodasLeidas(ctx context.Context, usuarioID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Notificacion{}).
		Where("usuario_id = ? AND leida = ?", usuarioID, false).
		Update("leida", true)
	return res.RowsAffected, res.Error
}

func (r *notificacionRepo) CountNoLeidas(ctx context.Context, usuarioID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Notificacion{}).
		Where("usuario_id = ? AND leida = ?", usuarioID, false).
		Count(&n).Error
	return n, err
}

func (r *notificacionRepo) ListByUsuario(ctx context.Context, usuarioID uint, limit int) ([]model.Notificacion, error) {
	var out []model.Notificacion
	q := r.db.WithContext(ctx).Where("usuario_id = ?", usuarioID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
