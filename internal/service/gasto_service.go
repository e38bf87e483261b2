package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"autolavado/internal/apierror"
	"autolavado/internal/dto"
	"autolavado/internal/model"
	"autolavado/internal/repository"
)

type GastoService interface {
	Crear(ctx context.Context, actor model.Actor, req dto.CrearGastoRequest) (*dto.GastoResponse, error)
	Listar(ctx context.Context, filter dto.GastoFilter) (*dto.GastoListResponse, error)
	Obtener(ctx context.Context, id uint) (*dto.GastoResponse, error)
	Actualizar(ctx context.Context, id uint, req dto.ActualizarGastoRequest) (*dto.GastoResponse, error)
	Eliminar(ctx context.Context, id uint) error
}

type gastoService struct {
	repo  repository.GastoRepository
	ahora func() time.Time
}

func NewGastoService(repo repository.GastoRepository) GastoService {
	return &gastoService{repo: repo, ahora: time.Now}
}

func (s *gastoService) Crear(ctx context.Context, actor model.Actor, req dto.CrearGastoRequest) (*dto.GastoResponse, error) {
	fecha := s.ahora()
	if req.Fecha != nil {
		fecha = *req.Fecha
	}
	g := &model.Gasto{
		Tipo:          model.TipoGasto(req.Tipo),
		Detalle:       strings.TrimSpace(req.Detalle),
		Monto:         req.Monto,
		Fecha:         fecha,
		RegistradoPor: actor.UsuarioID,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	creado, err := s.repo.FindByID(ctx, g.ID)
	if err != nil {
		creado = g
	}
	resp := toGastoResponse(creado)
	return &resp, nil
}

func (s *gastoService) Listar(ctx context.Context, filter dto.GastoFilter) (*dto.GastoListResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.GastoListResponse{
		Data:  make([]dto.GastoResponse, len(list)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range list {
		out.Data[i] = toGastoResponse(&list[i])
	}
	return out, nil
}

func (s *gastoService) Obtener(ctx context.Context, id uint) (*dto.GastoResponse, error) {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("gasto %d: %w", id, err)
	}
	resp := toGastoResponse(g)
	return &resp, nil
}

func (s *gastoService) Actualizar(ctx context.Context, id uint, req dto.ActualizarGastoRequest) (*dto.GastoResponse, error) {
	g, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("gasto %d: %w", id, err)
	}
	if req.Tipo != "" {
		g.Tipo = model.TipoGasto(req.Tipo)
	}
	if req.Detalle != "" {
		g.Detalle = strings.TrimSpace(req.Detalle)
	}
	if req.Monto != nil {
		if !req.Monto.IsPositive() {
			return nil, fmt.Errorf("monto debe ser positivo: %w", apierror.ErrConflicto)
		}
		g.Monto = *req.Monto
	}
	if req.Fecha != nil {
		g.Fecha = *req.Fecha
	}
	if err := s.repo.Update(ctx, g); err != nil {
		return nil, err
	}
	resp := toGastoResponse(g)
	return &resp, nil
}

func (s *gastoService) Eliminar(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("gasto %d: %w", id, err)
	}
	return s.repo.Delete(ctx, id)
}

func toGastoResponse(g *model.Gasto) dto.GastoResponse {
	resp := dto.GastoResponse{
		ID:      g.ID,
		Tipo:    string(g.Tipo),
		Detalle: g.Detalle,
		Monto:   g.Monto,
		Fecha:   g.Fecha,
	}
	if g.Registrador != nil {
		resp.RegistradoPor = g.Registrador.Nombre
	}
	return resp
}
