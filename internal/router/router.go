package router

import (
	"time"

	"autolavado/internal/config"
	"autolavado/internal/handler"
	"autolavado/internal/infra"
	"autolavado/internal/middleware"
	"autolavado/internal/model"
	"autolavado/internal/repository"
	"autolavado/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Servicios groups the services shared by the HTTP layer and the
// background jobs started in main.
type Servicios struct {
	Auth         service.AuthService
	Citas        service.CitaService
	Servicios    service.ServicioService
	Vehiculos    service.VehiculoService
	Notificacion service.NotificacionService
	Dashboard    service.DashboardService
	Gastos       service.GastoService
	Dispatcher   *service.NotificacionDispatcher
}

// NuevosServicios wires repositories and services.
// Dependency graph: Service ← Repository ← DB/Redis. A nil cola disables
// the email and Telegram side channels.
func NuevosServicios(cfg *config.Config, db *gorm.DB, rdb *redis.Client, cola service.ColaTrabajos) *Servicios {
	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	servicioRepo := repository.NewServicioRepository(db)
	vehiculoRepo := repository.NewVehiculoRepository(db)
	citaRepo := repository.NewCitaRepository(db)
	notifRepo := repository.NewNotificacionRepository(db)
	gastoRepo := repository.NewGastoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	dispatcher := service.NewNotificacionDispatcher(notifRepo, usuarioRepo, cola, cfg.TelegramBotToken != "")
	ttl := time.Duration(cfg.DashboardCacheSegundos) * time.Second

	return &Servicios{
		Auth:         service.NewAuthService(usuarioRepo, cfg),
		Citas:        service.NewCitaService(citaRepo, servicioRepo, vehiculoRepo, usuarioRepo, dispatcher, cfg),
		Servicios:    service.NewServicioService(servicioRepo),
		Vehiculos:    service.NewVehiculoService(vehiculoRepo, usuarioRepo),
		Notificacion: service.NewNotificacionService(notifRepo),
		Dashboard:    service.NewDashboardService(usuarioRepo, citaRepo, gastoRepo, vehiculoRepo, notifRepo, rdb, ttl),
		Gastos:       service.NewGastoService(gastoRepo),
		Dispatcher:   dispatcher,
	}
}

// New returns a configured Gin engine serving svcs.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, svcs *Servicios, breakers ...*infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Env, cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(rdb, "api", 1000, time.Minute, "Demasiadas solicitudes. Intente nuevamente en un momento."))

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(svcs.Auth)
	usuariosH := handler.NewUsuariosHandler(svcs.Auth, svcs.Vehiculos, svcs.Citas)
	citasH := handler.NewCitasHandler(svcs.Citas)
	serviciosH := handler.NewServiciosHandler(svcs.Servicios)
	vehiculosH := handler.NewVehiculosHandler(svcs.Vehiculos)
	notifH := handler.NewNotificacionesHandler(svcs.Notificacion, svcs.Citas)
	dashboardH := handler.NewDashboardHandler(svcs.Dashboard)
	gastosH := handler.NewGastosHandler(svcs.Gastos)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	if rdb != nil {
		r.GET("/health", handler.Health(db, rdb, breakers...))
	}
	loginRL := middleware.LoginRateLimiter(rdb)
	r.POST("/login", loginRL, authH.Login)
	r.POST("/register", loginRL, authH.Register)
	r.POST("/auth/refresh", authH.Refresh)

	// Role redirect answers anonymous callers too (401 + login entry point)
	r.GET("/dashboard", middleware.OptionalJWT(cfg.JWTSecret), middleware.RedirigirDashboard)

	// Protected routes, any role
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	auth := r.Group("", jwtMW)
	{
		auth.GET("/perfil", authH.Perfil)
		auth.PUT("/perfil", authH.ActualizarPerfil)
		auth.PUT("/configuracion/password", authH.CambiarPassword)

		auth.GET("/vehiculos", vehiculosH.Listar)
		auth.POST("/vehiculos", vehiculosH.Crear)
		auth.GET("/vehiculos/:id", vehiculosH.Obtener)
		auth.PUT("/vehiculos/:id", vehiculosH.Actualizar)
		auth.DELETE("/vehiculos/:id", vehiculosH.Eliminar)

		auth.GET("/servicios", serviciosH.Listar)
		auth.GET("/servicios/categoria/:categoria", serviciosH.Listar)
		auth.GET("/servicios/:id", serviciosH.Obtener)

		auth.GET("/citas/:id", citasH.Obtener)
		auth.PATCH("/citas/:id/cancelar", citasH.Cancelar)

		notif := auth.Group("/notificaciones")
		{
			notif.GET("", notifH.Mias)
			notif.GET("/usuario/:usuarioId", notifH.PorUsuario)
			notif.GET("/usuario/:usuarioId/contar-no-leidas", notifH.ContarNoLeidas)
			notif.PUT("/usuario/:usuarioId/leer-todas", notifH.MarcarTodasLeidas)
			notif.PUT("/:id/leida", notifH.MarcarLeida)
			notif.PUT("/:id/noleida", notifH.MarcarNoLeida)
			notif.POST("/cita/:evento", middleware.RequireRole(model.RolAdmin, model.RolEmpleado), notifH.EventoCita)
		}
	}

	admin := r.Group("/admin", jwtMW, middleware.RequireArea(model.AreaAdmin))
	{
		admin.GET("/dashboard", dashboardH.Admin)
		admin.GET("/dashboard-data", dashboardH.Admin)
		admin.GET("/reportes", dashboardH.Reporte)

		usuarios := admin.Group("/usuarios")
		{
			usuarios.GET("", usuariosH.Listar)
			usuarios.GET("/all", usuariosH.ListarTodos)
			usuarios.POST("", usuariosH.Crear)
			usuarios.POST("/bulk-activate", usuariosH.BulkActivar)
			usuarios.POST("/bulk-deactivate", usuariosH.BulkDesactivar)
			usuarios.DELETE("/bulk-delete", usuariosH.BulkEliminar)
			usuarios.GET("/:id", usuariosH.Obtener)
			usuarios.GET("/:id/registros", usuariosH.Registros)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Eliminar)
		}

		citas := admin.Group("/citas")
		{
			citas.GET("", citasH.Listar)
			citas.GET("/create", citasH.DatosFormulario)
			citas.POST("", citasH.Crear)
			citas.GET("/:id/recibo", citasH.Recibo)
			citas.PATCH("/:id/confirmar", citasH.Confirmar)
			citas.PATCH("/:id/iniciar", citasH.Iniciar)
			citas.PATCH("/:id/finalizar", citasH.Finalizar)
			citas.PATCH("/:id/reprogramar", citasH.Reprogramar)
			citas.PATCH("/:id/asignar", citasH.AsignarEmpleado)
		}

		servicios := admin.Group("/servicios")
		{
			servicios.GET("", serviciosH.Listar)
			servicios.POST("", serviciosH.Crear)
			servicios.PUT("/:id", serviciosH.Actualizar)
			servicios.DELETE("/:id", serviciosH.Eliminar)
		}

		gastos := admin.Group("/gastos")
		{
			gastos.GET("", gastosH.Listar)
			gastos.POST("", gastosH.Crear)
			gastos.GET("/:id", gastosH.Obtener)
			gastos.PUT("/:id", gastosH.Actualizar)
			gastos.DELETE("/:id", gastosH.Eliminar)
		}

		if rdb != nil {
			admin.POST("/dlq/:queue/reprocesar", handler.ReprocesarDLQ(rdb))
		}
	}

	empleado := r.Group("/empleado", jwtMW, middleware.RequireArea(model.AreaEmpleado))
	{
		empleado.GET("/dashboard", dashboardH.Empleado)
		empleado.GET("/citas", citasH.Listar)
		empleado.PATCH("/citas/:id/iniciar", citasH.Iniciar)
		empleado.PATCH("/citas/:id/finalizar", citasH.Finalizar)
		empleado.GET("/servicios", serviciosH.Listar)
	}

	cliente := r.Group("/cliente", jwtMW, middleware.RequireArea(model.AreaCliente))
	{
		cliente.GET("/dashboard", dashboardH.Cliente)
		cliente.GET("/vehiculos", vehiculosH.Listar)
		cliente.GET("/mis-vehiculos", vehiculosH.Listar)
		cliente.GET("/citas", citasH.Listar)
		cliente.POST("/citas", citasH.Crear)
		cliente.GET("/servicios", serviciosH.Listar)
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
