package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"autolavado/internal/apierror"
	"autolavado/internal/config"
	"autolavado/internal/dto"
	"autolavado/internal/infra"
	"autolavado/internal/model"
	"autolavado/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CitaService interface {
	Crear(ctx context.Context, actor model.Actor, req dto.CrearCitaRequest) (*dto.CitaResponse, error)
	Obtener(ctx context.Context, actor model.Actor, id uint) (*dto.CitaResponse, error)
	Listar(ctx context.Context, actor model.Actor, filter dto.CitaFilter) ([]dto.CitaResponse, error)
	Confirmar(ctx context.Context, actor model.Actor, id uint) (*dto.CitaResponse, error)
	Iniciar(ctx context.Context, actor model.Actor, id uint) (*dto.CitaResponse, error)
	Finalizar(ctx context.Context, actor model.Actor, id uint) (*dto.CitaResponse, error)
	Cancelar(ctx context.Context, actor model.Actor, id uint, motivo string) (*dto.CitaResponse, error)
	Reprogramar(ctx context.Context, actor model.Actor, id uint, fecha time.Time) (*dto.CitaResponse, error)
	AsignarEmpleado(ctx context.Context, actor model.Actor, id, empleadoID uint) (*dto.CitaResponse, error)
	// DispararEvento re-dispatches a lifecycle event for an existing appointment.
	DispararEvento(ctx context.Context, evento model.EventoCita, id uint) error
	DatosFormulario(ctx context.Context) (*dto.FormularioCitaResponse, error)
	GenerarRecibo(ctx context.Context, actor model.Actor, id uint) (string, error)
	EnviarRecordatorios(ctx context.Context, ahora time.Time) (int, error)
}

type citaService struct {
	citas      repository.CitaRepository
	servicios  repository.ServicioRepository
	vehiculos  repository.VehiculoRepository
	usuarios   repository.UsuarioRepository
	dispatcher Dispatcher

	pdfDir       string
	negocio      string
	anticipacion time.Duration
	ahora        func() time.Time
}

func NewCitaService(
	citas repository.CitaRepository,
	servicios repository.ServicioRepository,
	vehiculos repository.VehiculoRepository,
	usuarios repository.UsuarioRepository,
	dispatcher Dispatcher,
	cfg *config.Config,
) CitaService {
	return &citaService{
		citas:        citas,
		servicios:    servicios,
		vehiculos:    vehiculos,
		usuarios:     usuarios,
		dispatcher:   dispatcher,
		pdfDir:       cfg.PDFStoragePath,
		negocio:      cfg.NombreNegocio,
		anticipacion: time.Duration(cfg.RecordatorioAnticipacionHoras) * time.Hour,
		ahora:        time.Now,
	}
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// 1. Resolve the client (clients book for themselves, admins pick one)
// 2. Validate schedule, vehicle ownership and the service set
// 3. TX: insert cita + price snapshots, bump hire counts
// 4. Dispatch "creada"

func (s *citaService) Crear(ctx context.Context, actor model.Actor, req dto.CrearCitaRequest) (*dto.CitaResponse, error) {
	clienteID, err := s.resolverCliente(ctx, actor, req.UsuarioID)
	if err != nil {
		return nil, err
	}
	if len(req.ServicioIDs) == 0 {
		return nil, apierror.ErrSinServicios
	}
	if !req.FechaHora.After(s.ahora()) {
		return nil, fmt.Errorf("fecha %s: %w", req.FechaHora.Format(time.RFC3339), apierror.ErrFechaInvalida)
	}

	vehiculo, err := s.vehiculos.FindByID(ctx, req.VehiculoID)
	if err != nil {
		return nil, fmt.Errorf("vehiculo %d: %w", req.VehiculoID, err)
	}
	if vehiculo.UsuarioID != clienteID {
		return nil, fmt.Errorf("vehiculo %d: %w", req.VehiculoID, apierror.ErrNoPropietario)
	}

	ids := sinDuplicados(req.ServicioIDs)
	encontrados, err := s.servicios.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	porID := make(map[uint]model.Servicio, len(encontrados))
	for _, sv := range encontrados {
		porID[sv.ID] = sv
	}

	if req.EmpleadoID != nil {
		if err := s.validarEmpleado(ctx, *req.EmpleadoID); err != nil {
			return nil, err
		}
	}

	cita := model.Cita{
		UsuarioID:     clienteID,
		VehiculoID:    vehiculo.ID,
		EmpleadoID:    req.EmpleadoID,
		FechaHora:     req.FechaHora,
		Estado:        model.EstadoPendiente,
		Observaciones: req.Observaciones,
		Version:       1,
	}
	for _, id := range ids {
		sv, ok := porID[id]
		if !ok {
			return nil, fmt.Errorf("servicio %d: %w", id, apierror.ErrNoEncontrado)
		}
		if !sv.Activo {
			return nil, fmt.Errorf("servicio %d inactivo: %w", id, apierror.ErrConflicto)
		}
		cita.Servicios = append(cita.Servicios, model.CitaServicio{
			ServicioID: sv.ID,
			Nombre:     sv.Nombre,
			Precio:     sv.Precio,
		})
	}
	cita.Total = cita.SumaSnapshots()

	txErr := runTx(ctx, s.citas.DB(), func(tx *gorm.DB) error {
		if err := s.citas.Create(ctx, tx, &cita); err != nil {
			return err
		}
		return s.servicios.IncrementarContratados(ctx, tx, ids)
	})
	if txErr != nil {
		return nil, txErr
	}

	creada, err := s.citas.FindByID(ctx, cita.ID)
	if err != nil {
		log.Warn().Err(err).Uint("cita_id", cita.ID).Msg("cita creada pero no se pudo recargar")
		creada = &cita
	}

	log.Info().
		Uint("cita_id", creada.ID).
		Uint("usuario_id", clienteID).
		Str("total", creada.Total.StringFixed(2)).
		Msg("cita creada")

	s.dispatcher.Dispatch(ctx, model.EventoCreada, creada)
	resp := toCitaResponse(creada)
	return &resp, nil
}

func (s *citaService) resolverCliente(ctx context.Context, actor model.Actor, solicitado uint) (uint, error) {
	switch actor.Rol {
	case model.RolCliente:
		return actor.UsuarioID, nil
	case model.RolAdmin:
		if solicitado == 0 {
			return 0, fmt.Errorf("usuario_id requerido: %w", apierror.ErrNoEncontrado)
		}
		u, err := s.usuarios.FindByID(ctx, solicitado)
		if err != nil {
			return 0, fmt.Errorf("cliente %d: %w", solicitado, err)
		}
		if u.Rol != model.RolCliente || !u.Activo {
			return 0, fmt.Errorf("usuario %d no es un cliente activo: %w", solicitado, apierror.ErrConflicto)
		}
		return u.ID, nil
	}
	return 0, fmt.Errorf("crear cita como %s: %w", actor.Rol, apierror.ErrAccesoDenegado)
}

func (s *citaService) validarEmpleado(ctx context.Context, id uint) error {
	u, err := s.usuarios.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("empleado %d: %w", id, err)
	}
	if u.Rol != model.RolEmpleado || !u.Activo {
		return fmt.Errorf("usuario %d no es un empleado activo: %w", id, apierror.ErrConflicto)
	}
	return nil
}

func sinDuplicados(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// ── Lectura ───────────────────────────────────────────────────────────────────

func (s *citaService) Obtener(ctx context.Context, actor model.Actor, id uint) (*dto.CitaResponse, error) {
	c, err := s.cargar(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := toCitaResponse(c)
	return &resp, nil
}

// cargar fetches the appointment and hides other clients' bookings.
func (s *citaService) cargar(ctx context.Context, actor model.Actor, id uint) (*model.Cita, error) {
	c, err := s.citas.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cita %d: %w", id, err)
	}
	if actor.EsCliente() && c.UsuarioID != actor.UsuarioID {
		return nil, fmt.Errorf("cita %d: %w", id, apierror.ErrNoPropietario)
	}
	return c, nil
}

func (s *citaService) Listar(ctx context.Context, actor model.Actor, filter dto.CitaFilter) ([]dto.CitaResponse, error) {
	if actor.EsCliente() {
		filter.UsuarioID = actor.UsuarioID
	}
	citas, err := s.citas.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toCitaResponses(citas), nil
}

// ── Transiciones ──────────────────────────────────────────────────────────────

func (s *citaService) Confirmar(ctx context.Context, actor model.Actor, id uint) (*dto.CitaResponse, error) {
	return s.transicionar(ctx, actor, id, accionConfirmar, nil)
}

func (s *citaService) Iniciar(ctx context.Context, actor model.Actor, id uint) (*dto.CitaResponse, error) {
	return s.transicionar(ctx, actor, id, accionIniciar, nil)
}

// Finalizar locks the total: it is recomputed one last time from the
// snapshots and never changes afterwards.
func (s *citaService) Finalizar(ctx context.Context, actor model.Actor, id uint) (*dto.CitaResponse, error) {
	return s.transicionar(ctx, actor, id, accionFinalizar, func(c *model.Cita) {
		now := s.ahora()
		c.Total = c.SumaSnapshots()
		c.PrecioBloqueado = true
		c.FinalizadaAt = &now
	})
}

func (s *citaService) Cancelar(ctx context.Context, actor model.Actor, id uint, motivo string) (*dto.CitaResponse, error) {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, fmt.Errorf("cancelar cita %d: %w", id, apierror.ErrMotivoRequerido)
	}
	return s.transicionar(ctx, actor, id, accionCancelar, func(c *model.Cita) {
		now := s.ahora()
		c.MotivoCancelacion = &motivo
		c.CanceladaAt = &now
	})
}

// maxIntentosTransicion bounds re-reads after a lost compare-and-set.
const maxIntentosTransicion = 3

// transicionar validates the edge, persists it with a compare-and-set on
// (estado, version) and dispatches the event before returning. A lost CAS
// re-reads the row and validates again, so the caller gets the error for
// the state that actually won.
func (s *citaService) transicionar(ctx context.Context, actor model.Actor, id uint, accion accionCita, aplicar func(c *model.Cita)) (*dto.CitaResponse, error) {
	if err := autorizarAccion(actor, accion); err != nil {
		return nil, err
	}

	var (
		c     *model.Cita
		t     transicion
		desde model.EstadoCita
	)
	for intento := 1; ; intento++ {
		var err error
		c, err = s.cargar(ctx, actor, id)
		if err != nil {
			return nil, err
		}
		t, err = validarTransicion(accion, c.Estado)
		if err != nil {
			return nil, fmt.Errorf("cita %d: %w", id, err)
		}

		desde = c.Estado
		c.Estado = t.hacia
		if aplicar != nil {
			aplicar(c)
		}
		err = s.citas.CambiarEstado(ctx, c, desde)
		if err == nil {
			break
		}
		if !errors.Is(err, apierror.ErrTransicionInvalida) || intento >= maxIntentosTransicion {
			return nil, err
		}
		log.Debug().Uint("cita_id", id).Int("intento", intento).Msg("cita transition lost CAS, re-reading")
	}

	log.Info().
		Uint("cita_id", c.ID).
		Str("desde", string(desde)).
		Str("hacia", string(c.Estado)).
		Uint("actor", actor.UsuarioID).
		Msg("cita transition")

	s.dispatcher.Dispatch(ctx, t.evento, c)
	resp := toCitaResponse(c)
	return &resp, nil
}

// autorizarAccion: admins run every transition, employees work the
// appointment but do not confirm it, clients may only cancel their own.
func autorizarAccion(actor model.Actor, accion accionCita) error {
	switch actor.Rol {
	case model.RolAdmin:
		return nil
	case model.RolEmpleado:
		if accion != accionConfirmar {
			return nil
		}
	case model.RolCliente:
		if accion == accionCancelar {
			return nil
		}
	}
	return fmt.Errorf("%s como %s: %w", accion, actor.Rol, apierror.ErrAccesoDenegado)
}

// ── Edición ───────────────────────────────────────────────────────────────────

func (s *citaService) Reprogramar(ctx context.Context, actor model.Actor, id uint, fecha time.Time) (*dto.CitaResponse, error) {
	if actor.Rol == model.RolEmpleado {
		return nil, fmt.Errorf("reprogramar como empleado: %w", apierror.ErrAccesoDenegado)
	}
	c, err := s.cargar(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if c.Estado != model.EstadoPendiente && c.Estado != model.EstadoConfirmada {
		return nil, fmt.Errorf("reprogramar cita %d en estado %s: %w", id, c.Estado, apierror.ErrTransicionInvalida)
	}
	if !fecha.After(s.ahora()) {
		return nil, fmt.Errorf("fecha %s: %w", fecha.Format(time.RFC3339), apierror.ErrFechaInvalida)
	}
	c.FechaHora = fecha
	c.RecordatorioEnviado = false
	if err := s.citas.Actualizar(ctx, c); err != nil {
		return nil, err
	}
	resp := toCitaResponse(c)
	return &resp, nil
}

func (s *citaService) AsignarEmpleado(ctx context.Context, actor model.Actor, id, empleadoID uint) (*dto.CitaResponse, error) {
	if !actor.EsAdmin() {
		return nil, fmt.Errorf("asignar empleado: %w", apierror.ErrAccesoDenegado)
	}
	c, err := s.citas.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cita %d: %w", id, err)
	}
	if esTerminal(c.Estado) {
		return nil, fmt.Errorf("cita %d %s: %w", id, c.Estado, apierror.ErrEstadoTerminal)
	}
	if err := s.validarEmpleado(ctx, empleadoID); err != nil {
		return nil, err
	}
	c.EmpleadoID = &empleadoID
	c.Empleado = nil
	if err := s.citas.Actualizar(ctx, c); err != nil {
		return nil, err
	}
	resp := toCitaResponse(c)
	return &resp, nil
}

// ── Eventos y recordatorios ───────────────────────────────────────────────────

var eventosExternos = map[model.EventoCita]bool{
	model.EventoCreada:       true,
	model.EventoConfirmada:   true,
	model.EventoCancelada:    true,
	model.EventoRecordatorio: true,
}

func (s *citaService) DispararEvento(ctx context.Context, evento model.EventoCita, id uint) error {
	if !eventosExternos[evento] {
		return fmt.Errorf("evento %q: %w", evento, apierror.ErrNoEncontrado)
	}
	c, err := s.citas.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("cita %d: %w", id, err)
	}
	s.dispatcher.Dispatch(ctx, evento, c)
	return nil
}

// EnviarRecordatorios dispatches "recordatorio" for confirmed appointments
// starting within the reminder window and flags them so each is reminded
// once.
func (s *citaService) EnviarRecordatorios(ctx context.Context, ahora time.Time) (int, error) {
	citas, err := s.citas.ListParaRecordatorio(ctx, ahora, ahora.Add(s.anticipacion))
	if err != nil {
		return 0, err
	}
	enviados := 0
	for i := range citas {
		c := &citas[i]
		if err := s.citas.MarcarRecordatorio(ctx, c.ID); err != nil {
			log.Error().Err(err).Uint("cita_id", c.ID).Msg("recordatorio: no se pudo marcar")
			continue
		}
		s.dispatcher.Dispatch(ctx, model.EventoRecordatorio, c)
		enviados++
	}
	return enviados, nil
}

// ── Formulario y recibo ───────────────────────────────────────────────────────

func (s *citaService) DatosFormulario(ctx context.Context) (*dto.FormularioCitaResponse, error) {
	clientes, err := s.usuarios.ListActivosPorRol(ctx, model.RolCliente)
	if err != nil {
		return nil, err
	}
	empleados, err := s.usuarios.ListActivosPorRol(ctx, model.RolEmpleado)
	if err != nil {
		return nil, err
	}
	servicios, err := s.servicios.List(ctx, dto.ServicioFilter{SoloActivos: true})
	if err != nil {
		return nil, err
	}

	resp := &dto.FormularioCitaResponse{
		Clientes:  make([]dto.UsuarioResponse, len(clientes)),
		Empleados: make([]dto.UsuarioResponse, len(empleados)),
		Servicios: make([]dto.ServicioResponse, len(servicios)),
	}
	for i := range clientes {
		resp.Clientes[i] = toUsuarioResponse(&clientes[i])
	}
	for i := range empleados {
		resp.Empleados[i] = toUsuarioResponse(&empleados[i])
	}
	for i := range servicios {
		resp.Servicios[i] = toServicioResponse(&servicios[i])
	}
	return resp, nil
}

// GenerarRecibo renders the PDF receipt of a finished appointment.
func (s *citaService) GenerarRecibo(ctx context.Context, actor model.Actor, id uint) (string, error) {
	c, err := s.cargar(ctx, actor, id)
	if err != nil {
		return "", err
	}
	if c.Estado != model.EstadoFinalizada {
		return "", fmt.Errorf("recibo de cita %d en estado %s: %w", id, c.Estado, apierror.ErrConflicto)
	}
	return infra.GenerarReciboPDF(c, s.pdfDir, s.negocio)
}
