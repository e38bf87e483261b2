package handler

import (
	"net/http"

	"autolavado/internal/dto"
	"autolavado/internal/middleware"
	"autolavado/internal/model"
	"autolavado/internal/service"

	"github.com/gin-gonic/gin"
)

type ServiciosHandler struct{ svc service.ServicioService }

func NewServiciosHandler(svc service.ServicioService) *ServiciosHandler {
	return &ServiciosHandler{svc: svc}
}

// Listar shows only active services to non-admins; admins may pass
// ?todos=true to include inactive ones.
func (h *ServiciosHandler) Listar(c *gin.Context) {
	filter := dto.ServicioFilter{SoloActivos: true, Categoria: c.Param("categoria")}
	if filter.Categoria == "" {
		filter.Categoria = c.Query("categoria")
	}
	if a := middleware.Actor(c); a != nil && a.Rol == model.RolAdmin && c.Query("todos") == "true" {
		filter.SoloActivos = false
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ServiciosHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ServiciosHandler) Crear(c *gin.Context) {
	var req dto.CrearServicioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ServiciosHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarServicioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar deletes a service that was never booked; booked ones are
// deactivated instead and the response says so.
func (h *ServiciosHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	desactivado, err := h.svc.Eliminar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if desactivado {
		c.JSON(http.StatusOK, gin.H{"message": "Servicio con citas: fue desactivado", "desactivado": true})
		return
	}
	c.Status(http.StatusNoContent)
}
