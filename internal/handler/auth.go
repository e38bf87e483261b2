package handler

import (
	"net/http"

	"autolavado/internal/dto"
	"autolavado/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary Login de usuario
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Register godoc
// @Summary Registro de cliente
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "Datos del cliente"
// @Success 201 {object} dto.LoginResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Perfil ────────────────────────────────────────────────────────────────────

func (h *AuthHandler) Perfil(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.Perfil(c.Request.Context(), a)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) ActualizarPerfil(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.ActualizarPerfilRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarPerfil(c.Request.Context(), a, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) CambiarPassword(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.CambiarPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.CambiarPassword(c.Request.Context(), a, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Usuarios Handler ─────────────────────────────────────────────────────────

type UsuariosHandler struct {
	svc      service.AuthService
	vehiculo service.VehiculoService
	citas    service.CitaService
}

func NewUsuariosHandler(svc service.AuthService, vehiculo service.VehiculoService, citas service.CitaService) *UsuariosHandler {
	return &UsuariosHandler{svc: svc, vehiculo: vehiculo, citas: citas}
}

func (h *UsuariosHandler) Crear(c *gin.Context) {
	var req dto.CrearUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearUsuario(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar returns active users; ?rol= and ?buscar= narrow the result.
func (h *UsuariosHandler) Listar(c *gin.Context) {
	filter := dto.UsuarioFilter{Rol: c.Query("rol"), Buscar: c.Query("buscar")}
	h.listar(c, filter)
}

// ListarTodos includes inactive users.
func (h *UsuariosHandler) ListarTodos(c *gin.Context) {
	filter := dto.UsuarioFilter{Rol: c.Query("rol"), Buscar: c.Query("buscar"), IncluirInactivos: true}
	h.listar(c, filter)
}

func (h *UsuariosHandler) listar(c *gin.Context, filter dto.UsuarioFilter) {
	resp, err := h.svc.ListarUsuarios(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerUsuario(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Registros returns the user with their vehicles and appointments.
func (h *UsuariosHandler) Registros(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	usuario, err := h.svc.ObtenerUsuario(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	vehiculos, err := h.vehiculo.Listar(ctx, a, id)
	if err != nil {
		respondError(c, err)
		return
	}
	citas, err := h.citas.Listar(ctx, a, dto.CitaFilter{UsuarioID: id})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.RegistrosUsuarioResponse{Usuario: *usuario, Vehiculos: vehiculos, Citas: citas})
}

func (h *UsuariosHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarUsuario(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) Eliminar(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.EliminarUsuario(c.Request.Context(), a, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UsuariosHandler) BulkActivar(c *gin.Context) {
	var req dto.BulkUsuariosRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActivarUsuarios(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) BulkDesactivar(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.BulkUsuariosRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.DesactivarUsuarios(c.Request.Context(), a, req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) BulkEliminar(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.BulkUsuariosRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.EliminarUsuarios(c.Request.Context(), a, req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
