package handler

import (
	"context"
	"fmt"
	"net/http"

	"autolavado/internal/dto"
	"autolavado/internal/model"
	"autolavado/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificacionesHandler struct {
	svc   service.NotificacionService
	citas service.CitaService
}

func NewNotificacionesHandler(svc service.NotificacionService, citas service.CitaService) *NotificacionesHandler {
	return &NotificacionesHandler{svc: svc, citas: citas}
}

// Mias lists the caller's notifications, newest first.
func (h *NotificacionesHandler) Mias(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	h.listar(c, a, a.UsuarioID)
}

func (h *NotificacionesHandler) PorUsuario(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	usuarioID, ok := parseID(c, "usuarioId")
	if !ok {
		return
	}
	h.listar(c, a, usuarioID)
}

func (h *NotificacionesHandler) listar(c *gin.Context, a model.Actor, usuarioID uint) {
	resp, err := h.svc.ListarPorUsuario(c.Request.Context(), a, usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarcarLeida godoc
// @Summary Marcar notificacion como leida
// @Tags notificaciones
// @Produce json
// @Param id path int true "ID de la notificacion"
// @Success 200 {object} dto.NotificacionResponse
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Security BearerAuth
// @Router /notificaciones/{id}/leida [put]
func (h *NotificacionesHandler) MarcarLeida(c *gin.Context) {
	h.marcar(c, h.svc.MarcarLeida)
}

func (h *NotificacionesHandler) MarcarNoLeida(c *gin.Context) {
	h.marcar(c, h.svc.MarcarNoLeida)
}

func (h *NotificacionesHandler) marcar(c *gin.Context, fn func(ctx context.Context, a model.Actor, id uint) (*dto.NotificacionResponse, error)) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := fn(c.Request.Context(), a, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificacionesHandler) MarcarTodasLeidas(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	usuarioID, ok := parseID(c, "usuarioId")
	if !ok {
		return
	}
	n, err := h.svc.MarcarTodasLeidas(c.Request.Context(), a, usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MarcadasResponse{Actualizadas: n})
}

// ContarNoLeidas is polled by the navbar badge.
func (h *NotificacionesHandler) ContarNoLeidas(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	usuarioID, ok := parseID(c, "usuarioId")
	if !ok {
		return
	}
	n, err := h.svc.ContarNoLeidas(c.Request.Context(), a, usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ContadorNoLeidasResponse{UsuarioID: usuarioID, NoLeidas: n})
}

// EventoCita dispatches creada, confirmada, cancelada or recordatorio for
// an existing appointment.
func (h *NotificacionesHandler) EventoCita(c *gin.Context) {
	evento := model.EventoCita(c.Param("evento"))
	var req dto.EventoCitaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.citas.DispararEvento(c.Request.Context(), evento, req.CitaID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"message": fmt.Sprintf("Notificacion %s enviada", evento),
		"cita_id": req.CitaID,
	})
}
