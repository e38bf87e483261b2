package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"autolavado/internal/apierror"
	"autolavado/internal/dto"
	"autolavado/internal/model"
	"autolavado/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	topServiciosLimite = 5
	cacheResumenPrefix = "dashboard:resumen:"
)

// DashboardService is read-only: it aggregates, never mutates.
type DashboardService interface {
	// Resumen computes the admin stats for the day and month containing
	// ventana. A failing sub-query yields zero for that stat only.
	Resumen(ctx context.Context, ventana time.Time) (*dto.DashboardDataResponse, error)
	Reporte(ctx context.Context, desde, hasta time.Time) (*dto.ReporteResponse, error)
	PanelEmpleado(ctx context.Context, actor model.Actor) (*dto.EmpleadoDashboardResponse, error)
	PanelCliente(ctx context.Context, actor model.Actor) (*dto.ClienteDashboardResponse, error)
}

type dashboardService struct {
	usuarios  repository.UsuarioRepository
	citas     repository.CitaRepository
	gastos    repository.GastoRepository
	vehiculos repository.VehiculoRepository
	notifs    repository.NotificacionRepository
	rdb       *redis.Client // nil disables the cache
	ttl       time.Duration
	ahora     func() time.Time
}

func NewDashboardService(
	usuarios repository.UsuarioRepository,
	citas repository.CitaRepository,
	gastos repository.GastoRepository,
	vehiculos repository.VehiculoRepository,
	notifs repository.NotificacionRepository,
	rdb *redis.Client,
	ttl time.Duration,
) DashboardService {
	return &dashboardService{
		usuarios:  usuarios,
		citas:     citas,
		gastos:    gastos,
		vehiculos: vehiculos,
		notifs:    notifs,
		rdb:       rdb,
		ttl:       ttl,
		ahora:     time.Now,
	}
}

func (s *dashboardService) Resumen(ctx context.Context, ventana time.Time) (*dto.DashboardDataResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := cacheResumenPrefix + inicioDia(ventana).Format("2006-01-02")
	if cached := s.leerCache(ctx, key); cached != nil {
		return cached, nil
	}

	out, completo := s.calcularResumen(ctx, ventana)
	// A degraded stat must not be served to every poller for the whole TTL.
	if completo {
		s.escribirCache(ctx, key, out)
	}
	return out, nil
}

// calcularResumen runs every sub-query. completo is false when at least one
// stat degraded to zero.
func (s *dashboardService) calcularResumen(ctx context.Context, ventana time.Time) (out *dto.DashboardDataResponse, completo bool) {
	dia := inicioDia(ventana)
	finDia := dia.AddDate(0, 0, 1)
	mes := inicioMes(ventana)
	finMes := mes.AddDate(0, 1, 0)

	var a agregador
	ingresosMes := a.sumar("ingresos_mes", func() (decimal.Decimal, error) { return s.citas.SumIngresosEntre(ctx, mes, finMes) })
	gastosMes := a.sumar("gastos_mes", func() (decimal.Decimal, error) { return s.gastos.SumEntre(ctx, mes, finMes) })

	populares, err := s.citas.TopServicios(ctx, mes, finMes, topServiciosLimite)
	if err != nil {
		a.degradar("servicios_populares", err)
	}
	if populares == nil {
		populares = []dto.ServicioPopular{}
	}

	roles, err := s.usuarios.CountPorRol(ctx)
	if err != nil {
		a.degradar("roles_distribucion", err)
		roles = map[model.Rol]int64{}
	}

	out = &dto.DashboardDataResponse{
		Stats: dto.DashboardStats{
			UsuariosTotales:    a.contar("usuarios_totales", func() (int64, error) { return s.usuarios.Count(ctx) }),
			CitasHoy:           a.contar("citas_hoy", func() (int64, error) { return s.citas.CountProgramadasEntre(ctx, dia, finDia) }),
			IngresosHoy:        a.sumar("ingresos_hoy", func() (decimal.Decimal, error) { return s.citas.SumIngresosEntre(ctx, dia, finDia) }),
			NuevosClientesMes:  a.contar("nuevos_clientes_mes", func() (int64, error) { return s.usuarios.CountCreadosEntre(ctx, model.RolCliente, mes, finMes) }),
			CitasCanceladasMes: a.contar("citas_canceladas_mes", func() (int64, error) { return s.citas.CountCanceladasEntre(ctx, mes, finMes) }),
			IngresosMes:        ingresosMes,
			GastosMes:          gastosMes,
			BalanceMes:         ingresosMes.Sub(gastosMes),
			ServiciosPopulares: populares,
		},
		RolesDistribucion: dto.RolesDistribucion{
			Clientes:        roles[model.RolCliente],
			Empleados:       roles[model.RolEmpleado],
			Administradores: roles[model.RolAdmin],
		},
		GeneradoAt: s.ahora(),
	}
	return out, !a.degradado
}

// agregador degrades failing stats to zero and remembers that it did.
type agregador struct{ degradado bool }

func (a *agregador) degradar(stat string, err error) {
	log.Warn().Err(err).Str("stat", stat).Msg("dashboard: stat degraded to zero")
	a.degradado = true
}

func (a *agregador) contar(stat string, fn func() (int64, error)) int64 {
	n, err := fn()
	if err != nil {
		a.degradar(stat, err)
		return 0
	}
	return n
}

func (a *agregador) sumar(stat string, fn func() (decimal.Decimal, error)) decimal.Decimal {
	v, err := fn()
	if err != nil {
		a.degradar(stat, err)
		return decimal.Zero
	}
	return v
}

// ── Cache ─────────────────────────────────────────────────────────────────────
// Read-through: any Redis failure falls back to computing the stats.

func (s *dashboardService) leerCache(ctx context.Context, key string) *dto.DashboardDataResponse {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var out dto.DashboardDataResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return &out
}

func (s *dashboardService) escribirCache(ctx context.Context, key string, v *dto.DashboardDataResponse) {
	if s.rdb == nil || s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("dashboard: cache write skipped")
	}
}

// ── Reporte ───────────────────────────────────────────────────────────────────

// Reporte aggregates an arbitrary window. Unlike Resumen, sub-query errors
// are returned.
func (s *dashboardService) Reporte(ctx context.Context, desde, hasta time.Time) (*dto.ReporteResponse, error) {
	if !hasta.After(desde) {
		return nil, fmt.Errorf("ventana %s - %s: %w", desde.Format("2006-01-02"), hasta.Format("2006-01-02"), apierror.ErrFechaInvalida)
	}
	porEstado, err := s.citas.CountPorEstado(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}
	ingresos, err := s.citas.SumIngresosEntre(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}
	gastos, err := s.gastos.SumEntre(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}
	populares, err := s.citas.TopServicios(ctx, desde, hasta, topServiciosLimite)
	if err != nil {
		return nil, err
	}

	estados := make(map[string]int64, len(porEstado))
	for _, e := range []model.EstadoCita{model.EstadoPendiente, model.EstadoConfirmada, model.EstadoEnProceso, model.EstadoFinalizada, model.EstadoCancelada} {
		estados[string(e)] = porEstado[e]
	}
	if populares == nil {
		populares = []dto.ServicioPopular{}
	}
	return &dto.ReporteResponse{
		Desde:              desde,
		Hasta:              hasta,
		CitasPorEstado:     estados,
		Ingresos:           ingresos,
		Gastos:             gastos,
		Balance:            ingresos.Sub(gastos),
		ServiciosPopulares: populares,
	}, nil
}

// ── Paneles por rol ───────────────────────────────────────────────────────────

func (s *dashboardService) PanelEmpleado(ctx context.Context, actor model.Actor) (*dto.EmpleadoDashboardResponse, error) {
	dia := inicioDia(s.ahora())
	finDia := dia.AddDate(0, 0, 1)
	citas, err := s.citas.List(ctx, dto.CitaFilter{Desde: &dia, Hasta: &finDia, Limit: 200})
	if err != nil {
		return nil, err
	}
	out := &dto.EmpleadoDashboardResponse{CitasHoy: toCitaResponses(citas)}
	for _, c := range citas {
		switch c.Estado {
		case model.EstadoPendiente, model.EstadoConfirmada:
			out.Pendientes++
		case model.EstadoEnProceso:
			out.EnProceso++
		}
	}
	out.NoLeidas, err = s.notifs.CountNoLeidas(ctx, actor.UsuarioID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *dashboardService) PanelCliente(ctx context.Context, actor model.Actor) (*dto.ClienteDashboardResponse, error) {
	ahora := s.ahora()
	citas, err := s.citas.List(ctx, dto.CitaFilter{UsuarioID: actor.UsuarioID, Desde: &ahora, Limit: 20})
	if err != nil {
		return nil, err
	}
	proximas := make([]dto.CitaResponse, 0, len(citas))
	for i := range citas {
		if !esTerminal(citas[i].Estado) {
			proximas = append(proximas, toCitaResponse(&citas[i]))
		}
	}
	vehiculos, err := s.vehiculos.ListByUsuario(ctx, actor.UsuarioID)
	if err != nil {
		return nil, err
	}
	out := &dto.ClienteDashboardResponse{
		ProximasCitas: proximas,
		Vehiculos:     make([]dto.VehiculoResponse, len(vehiculos)),
	}
	for i := range vehiculos {
		out.Vehiculos[i] = toVehiculoResponse(&vehiculos[i])
	}
	out.NoLeidas, err = s.notifs.CountNoLeidas(ctx, actor.UsuarioID)
	if err != nil {
		return nil, err
	}
	return out, nil
}
