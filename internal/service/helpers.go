package service

import (
	"context"
	"time"

	"autolavado/internal/dto"
	"autolavado/internal/model"

	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// inicioDia truncates t to local midnight.
func inicioDia(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func inicioMes(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// ── Mappers ──────────────────────────────────────────────────────────────────

func toUsuarioResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:        u.ID,
		Nombre:    u.Nombre,
		Email:     u.Email,
		Telefono:  u.Telefono,
		Rol:       string(u.Rol),
		Activo:    u.Activo,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func toServicioResponse(s *model.Servicio) dto.ServicioResponse {
	return dto.ServicioResponse{
		ID:              s.ID,
		Nombre:          s.Nombre,
		Descripcion:     s.Descripcion,
		Categoria:       s.Categoria,
		Precio:          s.Precio,
		Duracion:        s.Duracion,
		Activo:          s.Activo,
		VecesContratado: s.VecesContratado,
	}
}

func toVehiculoResponse(v *model.Vehiculo) dto.VehiculoResponse {
	return dto.VehiculoResponse{
		ID:        v.ID,
		UsuarioID: v.UsuarioID,
		Marca:     v.Marca,
		Modelo:    v.Modelo,
		Placa:     v.Placa,
		Color:     v.Color,
	}
}

func toCitaResponse(c *model.Cita) dto.CitaResponse {
	resp := dto.CitaResponse{
		ID:                c.ID,
		UsuarioID:         c.UsuarioID,
		EmpleadoID:        c.EmpleadoID,
		FechaHora:         c.FechaHora,
		Estado:            string(c.Estado),
		EstadoFormatted:   dto.EstadoFormatted(string(c.Estado)),
		Observaciones:     c.Observaciones,
		MotivoCancelacion: c.MotivoCancelacion,
		Servicios:         make([]dto.CitaServicioResponse, 0, len(c.Servicios)),
		Total:             c.Total,
		PrecioBloqueado:   c.PrecioBloqueado,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	if c.Usuario != nil {
		resp.Cliente = c.Usuario.Nombre
	}
	if c.Vehiculo != nil {
		v := toVehiculoResponse(c.Vehiculo)
		resp.Vehiculo = &v
	}
	for _, s := range c.Servicios {
		resp.Servicios = append(resp.Servicios, dto.CitaServicioResponse{
			ServicioID: s.ServicioID,
			Nombre:     s.Nombre,
			Precio:     s.Precio,
		})
	}
	return resp
}

func toCitaResponses(citas []model.Cita) []dto.CitaResponse {
	out := make([]dto.CitaResponse, len(citas))
	for i := range citas {
		out[i] = toCitaResponse(&citas[i])
	}
	return out
}

func toNotificacionResponse(n *model.Notificacion) dto.NotificacionResponse {
	return dto.NotificacionResponse{
		ID:        n.ID,
		UsuarioID: n.UsuarioID,
		Tipo:      string(n.Tipo),
		Icono:     n.Icono,
		Titulo:    n.Titulo,
		Mensaje:   n.Mensaje,
		Leida:     n.Leida,
		CitaID:    n.CitaID,
		Datos:     n.Datos,
		CreatedAt: n.CreatedAt,
	}
}
