package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"autolavado/internal/dto"
	"autolavado/internal/model"
	"autolavado/internal/service"

	"github.com/gin-gonic/gin"
)

type CitasHandler struct{ svc service.CitaService }

func NewCitasHandler(svc service.CitaService) *CitasHandler { return &CitasHandler{svc: svc} }

// Crear godoc
// @Summary Reservar una cita
// @Tags citas
// @Accept json
// @Produce json
// @Param body body dto.CrearCitaRequest true "Datos de la cita"
// @Success 201 {object} dto.CitaResponse
// @Failure 403 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Security BearerAuth
// @Router /cliente/citas [post]
func (h *CitasHandler) Crear(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.CrearCitaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), a, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar accepts ?estado=, ?fecha= (single day), ?desde=, ?hasta=,
// ?usuario_id=, ?empleado_id=, ?mias=true (assigned to the caller) and ?limit=.
func (h *CitasHandler) Listar(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	filter := dto.CitaFilter{Estado: c.Query("estado"), Limit: queryInt(c, "limit", 0)}
	if v, err := strconv.ParseUint(c.Query("usuario_id"), 10, 64); err == nil {
		filter.UsuarioID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("empleado_id"), 10, 64); err == nil {
		filter.EmpleadoID = uint(v)
	}
	if c.Query("mias") == "true" && a.Rol == model.RolEmpleado {
		filter.EmpleadoID = a.UsuarioID
	}

	fecha, ok := parseFecha(c, "fecha")
	if !ok {
		return
	}
	if fecha != nil {
		fin := fecha.AddDate(0, 0, 1)
		filter.Desde, filter.Hasta = fecha, &fin
	} else {
		if filter.Desde, ok = parseFecha(c, "desde"); !ok {
			return
		}
		if filter.Hasta, ok = parseFecha(c, "hasta"); !ok {
			return
		}
	}

	resp, err := h.svc.Listar(c.Request.Context(), a, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CitasHandler) Obtener(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), a, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DatosFormulario returns what the booking form needs: active clients,
// employees and services.
func (h *CitasHandler) DatosFormulario(c *gin.Context) {
	resp, err := h.svc.DatosFormulario(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CitasHandler) transicion(c *gin.Context, fn func(a model.Actor, id uint) (*dto.CitaResponse, error)) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := fn(a, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Confirmar godoc
// @Summary Confirmar una cita pendiente
// @Tags citas
// @Produce json
// @Param id path int true "ID de la cita"
// @Success 200 {object} dto.CitaResponse
// @Failure 409 {object} apierror.APIError
// @Security BearerAuth
// @Router /admin/citas/{id}/confirmar [patch]
func (h *CitasHandler) Confirmar(c *gin.Context) {
	h.transicion(c, func(a model.Actor, id uint) (*dto.CitaResponse, error) {
		return h.svc.Confirmar(c.Request.Context(), a, id)
	})
}

func (h *CitasHandler) Iniciar(c *gin.Context) {
	h.transicion(c, func(a model.Actor, id uint) (*dto.CitaResponse, error) {
		return h.svc.Iniciar(c.Request.Context(), a, id)
	})
}

func (h *CitasHandler) Finalizar(c *gin.Context) {
	h.transicion(c, func(a model.Actor, id uint) (*dto.CitaResponse, error) {
		return h.svc.Finalizar(c.Request.Context(), a, id)
	})
}

// Cancelar godoc
// @Summary Cancelar una cita
// @Tags citas
// @Accept json
// @Produce json
// @Param id path int true "ID de la cita"
// @Param body body dto.CancelarCitaRequest true "Motivo"
// @Success 200 {object} dto.CitaResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Security BearerAuth
// @Router /citas/{id}/cancelar [patch]
func (h *CitasHandler) Cancelar(c *gin.Context) {
	var req dto.CancelarCitaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.transicion(c, func(a model.Actor, id uint) (*dto.CitaResponse, error) {
		return h.svc.Cancelar(c.Request.Context(), a, id, req.Motivo)
	})
}

func (h *CitasHandler) Reprogramar(c *gin.Context) {
	var req dto.ReprogramarCitaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.transicion(c, func(a model.Actor, id uint) (*dto.CitaResponse, error) {
		return h.svc.Reprogramar(c.Request.Context(), a, id, req.FechaHora)
	})
}

func (h *CitasHandler) AsignarEmpleado(c *gin.Context) {
	var req dto.AsignarEmpleadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.transicion(c, func(a model.Actor, id uint) (*dto.CitaResponse, error) {
		return h.svc.AsignarEmpleado(c.Request.Context(), a, id, req.EmpleadoID)
	})
}

// Recibo renders the PDF receipt of a finished appointment.
func (h *CitasHandler) Recibo(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	path, err := h.svc.GenerarRecibo(c.Request.Context(), a, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	c.File(path)
}
