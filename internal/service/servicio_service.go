package service

import (
	"context"
	"fmt"
	"strings"

	"autolavado/internal/apierror"
	"autolavado/internal/dto"
	"autolavado/internal/model"
	"autolavado/internal/repository"

	"github.com/rs/zerolog/log"
)

type ServicioService interface {
	Listar(ctx context.Context, filter dto.ServicioFilter) ([]dto.ServicioResponse, error)
	Obtener(ctx context.Context, id uint) (*dto.ServicioResponse, error)
	Crear(ctx context.Context, req dto.CrearServicioRequest) (*dto.ServicioResponse, error)
	// Actualizar edits the catalog entry. Existing appointments keep their
	// price snapshots.
	Actualizar(ctx context.Context, id uint, req dto.ActualizarServicioRequest) (*dto.ServicioResponse, error)
	// Eliminar hard-deletes a never-booked service and deactivates a booked
	// one. The bool reports whether it was only deactivated.
	Eliminar(ctx context.Context, id uint) (bool, error)
}

type servicioService struct {
	repo repository.ServicioRepository
}

func NewServicioService(repo repository.ServicioRepository) ServicioService {
	return &servicioService{repo: repo}
}

func (s *servicioService) Listar(ctx context.Context, filter dto.ServicioFilter) ([]dto.ServicioResponse, error) {
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ServicioResponse, len(list))
	for i := range list {
		out[i] = toServicioResponse(&list[i])
	}
	return out, nil
}

func (s *servicioService) Obtener(ctx context.Context, id uint) (*dto.ServicioResponse, error) {
	sv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("servicio %d: %w", id, err)
	}
	resp := toServicioResponse(sv)
	return &resp, nil
}

func (s *servicioService) Crear(ctx context.Context, req dto.CrearServicioRequest) (*dto.ServicioResponse, error) {
	categoria := strings.ToLower(strings.TrimSpace(req.Categoria))
	if categoria == "" {
		categoria = "lavado"
	}
	sv := &model.Servicio{
		Nombre:      strings.TrimSpace(req.Nombre),
		Descripcion: req.Descripcion,
		Categoria:   categoria,
		Precio:      req.Precio,
		Duracion:    req.Duracion,
		Activo:      true,
	}
	if err := s.repo.Create(ctx, sv); err != nil {
		return nil, err
	}
	// Activo has a DB default of true, so an inactive entry is written in a
	// second step.
	if req.Activo != nil && !*req.Activo {
		sv.Activo = false
		if err := s.repo.Update(ctx, sv); err != nil {
			return nil, err
		}
	}
	resp := toServicioResponse(sv)
	return &resp, nil
}

func (s *servicioService) Actualizar(ctx context.Context, id uint, req dto.ActualizarServicioRequest) (*dto.ServicioResponse, error) {
	sv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("servicio %d: %w", id, err)
	}
	if req.Nombre != nil {
		sv.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Descripcion != nil {
		sv.Descripcion = req.Descripcion
	}
	if req.Categoria != nil {
		sv.Categoria = strings.ToLower(strings.TrimSpace(*req.Categoria))
	}
	if req.Precio != nil {
		if !req.Precio.IsPositive() {
			return nil, fmt.Errorf("precio debe ser positivo: %w", apierror.ErrConflicto)
		}
		if !req.Precio.Equal(sv.Precio) {
			log.Info().
				Uint("servicio_id", sv.ID).
				Str("anterior", sv.Precio.StringFixed(2)).
				Str("nuevo", req.Precio.StringFixed(2)).
				Msg("precio de servicio actualizado")
		}
		sv.Precio = *req.Precio
	}
	if req.Duracion != nil {
		sv.Duracion = *req.Duracion
	}
	if req.Activo != nil {
		sv.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, sv); err != nil {
		return nil, err
	}
	resp := toServicioResponse(sv)
	return &resp, nil
}

func (s *servicioService) Eliminar(ctx context.Context, id uint) (bool, error) {
	sv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("servicio %d: %w", id, err)
	}
	// The delete is conditional, so a booking that lands after FindByID
	// turns it into a deactivation.
	borrado, err := s.repo.DeleteSinCitas(ctx, id)
	if err != nil {
		return false, err
	}
	if borrado {
		return false, nil
	}
	sv.Activo = false
	return true, s.repo.Update(ctx, sv)
}
