package service

import (
	"context"
	"fmt"
	"strings"

	"autolavado/internal/apierror"
	"autolavado/internal/dto"
	"autolavado/internal/model"
	"autolavado/internal/repository"
)

type VehiculoService interface {
	Listar(ctx context.Context, actor model.Actor, usuarioID uint) ([]dto.VehiculoResponse, error)
	Obtener(ctx context.Context, actor model.Actor, id uint) (*dto.VehiculoResponse, error)
	Crear(ctx context.Context, actor model.Actor, req dto.CrearVehiculoRequest) (*dto.VehiculoResponse, error)
	Actualizar(ctx context.Context, actor model.Actor, id uint, req dto.ActualizarVehiculoRequest) (*dto.VehiculoResponse, error)
	Eliminar(ctx context.Context, actor model.Actor, id uint) error
}

type vehiculoService struct {
	repo     repository.VehiculoRepository
	usuarios repository.UsuarioRepository
}

func NewVehiculoService(repo repository.VehiculoRepository, usuarios repository.UsuarioRepository) VehiculoService {
	return &vehiculoService{repo: repo, usuarios: usuarios}
}

// Listar returns the vehicles of usuarioID. Clients only see their own;
// usuarioID 0 means the caller.
func (s *vehiculoService) Listar(ctx context.Context, actor model.Actor, usuarioID uint) ([]dto.VehiculoResponse, error) {
	if usuarioID == 0 || actor.EsCliente() {
		usuarioID = actor.UsuarioID
	}
	list, err := s.repo.ListByUsuario(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VehiculoResponse, len(list))
	for i := range list {
		out[i] = toVehiculoResponse(&list[i])
	}
	return out, nil
}

func (s *vehiculoService) Obtener(ctx context.Context, actor model.Actor, id uint) (*dto.VehiculoResponse, error) {
	v, err := s.cargar(ctx, actor, id, false)
	if err != nil {
		return nil, err
	}
	resp := toVehiculoResponse(v)
	return &resp, nil
}

// cargar enforces ownership: clients touch only their vehicles, employees
// may read but not modify.
func (s *vehiculoService) cargar(ctx context.Context, actor model.Actor, id uint, escritura bool) (*model.Vehiculo, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("vehiculo %d: %w", id, err)
	}
	switch actor.Rol {
	case model.RolAdmin:
		return v, nil
	case model.RolEmpleado:
		if !escritura {
			return v, nil
		}
		return nil, fmt.Errorf("vehiculo %d: %w", id, apierror.ErrAccesoDenegado)
	}
	if v.UsuarioID != actor.UsuarioID {
		return nil, fmt.Errorf("vehiculo %d: %w", id, apierror.ErrNoPropietario)
	}
	return v, nil
}

func (s *vehiculoService) Crear(ctx context.Context, actor model.Actor, req dto.CrearVehiculoRequest) (*dto.VehiculoResponse, error) {
	duenoID := actor.UsuarioID
	switch actor.Rol {
	case model.RolAdmin:
		if req.UsuarioID == 0 {
			return nil, fmt.Errorf("usuario_id requerido: %w", apierror.ErrNoEncontrado)
		}
		dueno, err := s.usuarios.FindByID(ctx, req.UsuarioID)
		if err != nil {
			return nil, fmt.Errorf("cliente %d: %w", req.UsuarioID, err)
		}
		if dueno.Rol != model.RolCliente {
			return nil, fmt.Errorf("usuario %d no es cliente: %w", req.UsuarioID, apierror.ErrConflicto)
		}
		duenoID = dueno.ID
	case model.RolEmpleado:
		return nil, fmt.Errorf("registrar vehiculo como empleado: %w", apierror.ErrAccesoDenegado)
	}

	v := &model.Vehiculo{
		UsuarioID: duenoID,
		Marca:     strings.TrimSpace(req.Marca),
		Modelo:    strings.TrimSpace(req.Modelo),
		Placa:     normalizarPlaca(req.Placa),
		Color:     req.Color,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	resp := toVehiculoResponse(v)
	return &resp, nil
}

func (s *vehiculoService) Actualizar(ctx context.Context, actor model.Actor, id uint, req dto.ActualizarVehiculoRequest) (*dto.VehiculoResponse, error) {
	v, err := s.cargar(ctx, actor, id, true)
	if err != nil {
		return nil, err
	}
	if req.Marca != "" {
		v.Marca = strings.TrimSpace(req.Marca)
	}
	if req.Modelo != "" {
		v.Modelo = strings.TrimSpace(req.Modelo)
	}
	if req.Placa != "" {
		v.Placa = normalizarPlaca(req.Placa)
	}
	if req.Color != nil {
		v.Color = req.Color
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	resp := toVehiculoResponse(v)
	return &resp, nil
}

func (s *vehiculoService) Eliminar(ctx context.Context, actor model.Actor, id uint) error {
	if _, err := s.cargar(ctx, actor, id, true); err != nil {
		return err
	}
	usado, err := s.repo.TieneCitas(ctx, id)
	if err != nil {
		return err
	}
	if usado {
		return fmt.Errorf("vehiculo %d tiene citas: %w", id, apierror.ErrConflicto)
	}
	return s.repo.Delete(ctx, id)
}

func normalizarPlaca(p string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(p), " ", ""))
}
