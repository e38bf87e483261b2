package handler

import (
	"net/http"
	"time"

	"autolavado/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Admin godoc
// @Summary Estadisticas del panel de administracion
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.DashboardDataResponse
// @Failure 403 {object} apierror.APIError
// @Security BearerAuth
// @Router /admin/dashboard-data [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	resp, err := h.svc.Resumen(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DashboardHandler) Empleado(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.PanelEmpleado(c.Request.Context(), a)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DashboardHandler) Cliente(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	resp, err := h.svc.PanelCliente(c.Request.Context(), a)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reporte aggregates [desde, hasta). Without parameters it covers the
// current month; hasta is inclusive when given as a date.
func (h *DashboardHandler) Reporte(c *gin.Context) {
	desde, ok := parseFecha(c, "desde")
	if !ok {
		return
	}
	hasta, ok := parseFecha(c, "hasta")
	if !ok {
		return
	}
	now := time.Now()
	if desde == nil {
		d := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		desde = &d
	}
	var fin time.Time
	if hasta == nil {
		fin = desde.AddDate(0, 1, 0)
	} else {
		fin = *hasta
		if len(c.Query("hasta")) == len("2006-01-02") {
			fin = fin.AddDate(0, 0, 1)
		}
	}
	resp, err := h.svc.Reporte(c.Request.Context(), *desde, fin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
