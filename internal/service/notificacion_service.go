package service

import (
	"context"
	"fmt"

	"autolavado/internal/apierror"
	"autolavado/internal/dto"
	"autolavado/internal/model"
	"autolavado/internal/repository"
)

const limiteNotificaciones = 100

type NotificacionService interface {
	Crear(ctx context.Context, n *model.Notificacion) error
	MarcarLeida(ctx context.Context, actor model.Actor, id uint) (*dto.NotificacionResponse, error)
	MarcarNoLeida(ctx context.Context, actor model.Actor, id uint) (*dto.NotificacionResponse, error)
	MarcarTodasLeidas(ctx context.Context, actor model.Actor, usuarioID uint) (int64, error)
	ContarNoLeidas(ctx context.Context, actor model.Actor, usuarioID uint) (int64, error)
	ListarPorUsuario(ctx context.Context, actor model.Actor, usuarioID uint) ([]dto.NotificacionResponse, error)
}

type notificacionService struct {
	repo repository.NotificacionRepository
}

func NewNotificacionService(repo repository.NotificacionRepository) NotificacionService {
	return &notificacionService{repo: repo}
}

func (s *notificacionService) Crear(ctx context.Context, n *model.Notificacion) error {
	if n.UsuarioID == 0 {
		return fmt.Errorf("notificacion sin destinatario: %w", apierror.ErrNoEncontrado)
	}
	return s.repo.Create(ctx, n)
}

func (s *notificacionService) MarcarLeida(ctx context.Context, actor model.Actor, id uint) (*dto.NotificacionResponse, error) {
	return s.setLeida(ctx, actor, id, true)
}

func (s *notificacionService) MarcarNoLeida(ctx context.Context, actor model.Actor, id uint) (*dto.NotificacionResponse, error) {
	return s.setLeida(ctx, actor, id, false)
}

// setLeida flips the read flag. Only the target user may do it, admins
// included.
func (s *notificacionService) setLeida(ctx context.Context, actor model.Actor, id uint, leida bool) (*dto.NotificacionResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("notificacion %d: %w", id, err)
	}
	if n.UsuarioID != actor.UsuarioID {
		return nil, fmt.Errorf("notificacion %d: %w", id, apierror.ErrNoPropietario)
	}
	if n.Leida != leida {
		if err := s.repo.SetLeida(ctx, id, leida); err != nil {
			return nil, err
		}
		n.Leida = leida
	}
	resp := toNotificacionResponse(n)
	return &resp, nil
}

func (s *notificacionService) MarcarTodasLeidas(ctx context.Context, actor model.Actor, usuarioID uint) (int64, error) {
	if usuarioID != actor.UsuarioID {
		return 0, fmt.Errorf("notificaciones de usuario %d: %w", usuarioID, apierror.ErrNoPropietario)
	}
	return s.repo.MarcarTodasLeidas(ctx, usuarioID)
}

func (s *notificacionService) ContarNoLeidas(ctx context.Context, actor model.Actor, usuarioID uint) (int64, error) {
	if err := puedeLeer(actor, usuarioID); err != nil {
		return 0, err
	}
	return s.repo.CountNoLeidas(ctx, usuarioID)
}

func (s *notificacionService) ListarPorUsuario(ctx context.Context, actor model.Actor, usuarioID uint) ([]dto.NotificacionResponse, error) {
	if err := puedeLeer(actor, usuarioID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByUsuario(ctx, usuarioID, limiteNotificaciones)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotificacionResponse, len(list))
	for i := range list {
		out[i] = toNotificacionResponse(&list[i])
	}
	return out, nil
}

// puedeLeer lets admins inspect any user's notifications.
func puedeLeer(actor model.Actor, usuarioID uint) error {
	if actor.UsuarioID == usuarioID || actor.EsAdmin() {
		return nil
	}
	return fmt.Errorf("notificaciones de usuario %d: %w", usuarioID, apierror.ErrNoPropietario)
}
