package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The dashboard client formats money with Number.toFixed, so amounts
	// travel as JSON numbers rather than quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type DashboardStats struct {
	UsuariosTotales    int64             `json:"usuarios_totales"`
	CitasHoy           int64             `json:"citas_hoy"`
	IngresosHoy        decimal.Decimal   `json:"ingresos_hoy"`
	NuevosClientesMes  int64             `json:"nuevos_clientes_mes"`
	CitasCanceladasMes int64             `json:"citas_canceladas_mes"`
	IngresosMes        decimal.Decimal   `json:"ingresos_mes"`
	GastosMes          decimal.Decimal   `json:"gastos_mes"`
	BalanceMes         decimal.Decimal   `json:"balance_mes"`
	ServiciosPopulares []ServicioPopular `json:"servicios_populares"`
}

type RolesDistribucion struct {
	Clientes        int64 `json:"clientes"`
	Empleados       int64 `json:"empleados"`
	Administradores int64 `json:"administradores"`
}

// DashboardDataResponse is the payload polled by the admin dashboard.
type DashboardDataResponse struct {
	Stats             DashboardStats    `json:"stats"`
	RolesDistribucion RolesDistribucion `json:"rolesDistribucion"`
	GeneradoAt        time.Time         `json:"generado_at"`
}

type ReporteResponse struct {
	Desde              time.Time         `json:"desde"`
	Hasta              time.Time         `json:"hasta"`
	CitasPorEstado     map[string]int64  `json:"citas_por_estado"`
	Ingresos           decimal.Decimal   `json:"ingresos"`
	Gastos             decimal.Decimal   `json:"gastos"`
	Balance            decimal.Decimal   `json:"balance"`
	ServiciosPopulares []ServicioPopular `json:"servicios_populares"`
}

type EmpleadoDashboardResponse struct {
	CitasHoy   []CitaResponse `json:"citas_hoy"`
	Pendientes int            `json:"pendientes"`
	EnProceso  int            `json:"en_proceso"`
	NoLeidas   int64          `json:"notificaciones_no_leidas"`
}

type ClienteDashboardResponse struct {
	ProximasCitas []CitaResponse     `json:"proximas_citas"`
	Vehiculos     []VehiculoResponse `json:"vehiculos"`
	NoLeidas      int64              `json:"notificaciones_no_leidas"`
}
