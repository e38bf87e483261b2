package service

import (
	"context"
	"fmt"
	"sync"

	"autolavado/internal/model"
	"autolavado/internal/repository"
	"autolavado/internal/worker"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// Dispatcher turns appointment lifecycle events into notifications.
// Dispatch never fails the caller; persistence problems are reported on
// the error channel and logged.
type Dispatcher interface {
	Dispatch(ctx context.Context, evento model.EventoCita, cita *model.Cita)
}

// ColaTrabajos is the async side channel for email and Telegram jobs.
type ColaTrabajos interface {
	EncolarEmail(ctx context.Context, p worker.EmailJobPayload) error
	EncolarTelegram(ctx context.Context, p worker.TelegramJobPayload) error
}

// plantilla is the fixed presentation of one event.
type plantilla struct {
	tipo    model.TipoNotificacion
	icono   string
	titulo  string
	mensaje func(c *model.Cita) string
	admins  bool // also notify every active admin
}

var plantillas = map[model.EventoCita]plantilla{
	model.EventoCreada: {
		tipo: model.TipoInfo, icono: "calendar-plus", titulo: "Nueva cita registrada",
		mensaje: func(c *model.Cita) string {
			return fmt.Sprintf("Tu cita #%d quedó agendada para el %s.", c.ID, fechaCorta(c))
		},
	},
	model.EventoConfirmada: {
		tipo: model.TipoSuccess, icono: "calendar-check", titulo: "Cita confirmada",
		mensaje: func(c *model.Cita) string {
			return fmt.Sprintf("Tu cita #%d del %s fue confirmada.", c.ID, fechaCorta(c))
		},
	},
	model.EventoIniciada: {
		tipo: model.TipoInfo, icono: "car", titulo: "Servicio en proceso",
		mensaje: func(c *model.Cita) string {
			return fmt.Sprintf("Comenzamos a trabajar en tu vehículo (cita #%d).", c.ID)
		},
	},
	model.EventoFinalizada: {
		tipo: model.TipoSuccess, icono: "check-circle", titulo: "Servicio finalizado",
		mensaje: func(c *model.Cita) string {
			return fmt.Sprintf("Tu vehículo está listo. Total de la cita #%d: $%s.", c.ID, c.Total.StringFixed(2))
		},
	},
	model.EventoCancelada: {
		tipo: model.TipoWarning, icono: "calendar-times", titulo: "Cita cancelada", admins: true,
		mensaje: func(c *model.Cita) string {
			msg := fmt.Sprintf("La cita #%d del %s fue cancelada.", c.ID, fechaCorta(c))
			if c.MotivoCancelacion != nil && *c.MotivoCancelacion != "" {
				msg += " Motivo: " + *c.MotivoCancelacion
			}
			return msg
		},
	},
	model.EventoRecordatorio: {
		tipo: model.TipoInfo, icono: "bell", titulo: "Recordatorio de cita",
		mensaje: func(c *model.Cita) string {
			return fmt.Sprintf("Te esperamos el %s para tu cita #%d.", fechaCorta(c), c.ID)
		},
	},
}

func fechaCorta(c *model.Cita) string {
	return c.FechaHora.Format("02/01/2006 15:04")
}

// NotificacionDispatcher is the Dispatcher backed by the notification
// store. Recipients are written in parallel; each recipient receives a
// single record per event, so per-recipient order follows event order.
type NotificacionDispatcher struct {
	notifs   repository.NotificacionRepository
	usuarios repository.UsuarioRepository
	cola     ColaTrabajos // nil disables side channels
	telegram bool
	errores  chan error
}

// NewNotificacionDispatcher builds the dispatcher. alertasTelegram enables
// the admin chat alert on cancellations.
func NewNotificacionDispatcher(
	notifs repository.NotificacionRepository,
	usuarios repository.UsuarioRepository,
	cola ColaTrabajos,
	alertasTelegram bool,
) *NotificacionDispatcher {
	return &NotificacionDispatcher{
		notifs:   notifs,
		usuarios: usuarios,
		cola:     cola,
		telegram: alertasTelegram,
		errores:  make(chan error, 64),
	}
}

// Errores exposes dispatch failures. Sends are non-blocking; when nobody
// drains the channel, errors beyond its buffer are only logged.
func (d *NotificacionDispatcher) Errores() <-chan error { return d.errores }

// Dispatch records the event for every recipient and queues the side
// channels. The transition is already committed, so the writes ignore
// cancellation of the caller's context.
func (d *NotificacionDispatcher) Dispatch(ctx context.Context, evento model.EventoCita, cita *model.Cita) {
	ctx = context.WithoutCancel(ctx)
	p, ok := plantillas[evento]
	if !ok {
		d.reportar(fmt.Errorf("dispatch: evento desconocido %q", evento))
		return
	}

	destinatarios := []uint{cita.UsuarioID}
	if p.admins {
		admins, err := d.usuarios.ListActivosPorRol(ctx, model.RolAdmin)
		if err != nil {
			d.reportar(fmt.Errorf("dispatch %s cita %d: listar admins: %w", evento, cita.ID, err))
		}
		for _, a := range admins {
			if a.ID != cita.UsuarioID {
				destinatarios = append(destinatarios, a.ID)
			}
		}
	}

	mensaje := p.mensaje(cita)
	var wg sync.WaitGroup
	for _, uid := range destinatarios {
		wg.Add(1)
		go func(uid uint) {
			defer wg.Done()
			n := d.construir(p, evento, cita, uid, mensaje)
			if err := d.notifs.Create(ctx, n); err != nil {
				d.reportar(fmt.Errorf("dispatch %s cita %d usuario %d: %w", evento, cita.ID, uid, err))
			}
		}(uid)
	}
	wg.Wait()

	d.encolarCanales(ctx, evento, cita, mensaje)
}

func (d *NotificacionDispatcher) construir(p plantilla, evento model.EventoCita, cita *model.Cita, uid uint, mensaje string) *model.Notificacion {
	citaID := cita.ID
	ev := evento
	if uid != cita.UsuarioID && cita.Usuario != nil {
		mensaje = fmt.Sprintf("%s Cliente: %s.", mensaje, cita.Usuario.Nombre)
	}
	return &model.Notificacion{
		UsuarioID: uid,
		Tipo:      p.tipo,
		Icono:     p.icono,
		Titulo:    p.titulo,
		Mensaje:   mensaje,
		CitaID:    &citaID,
		Evento:    &ev,
		Datos: datatypes.JSONMap{
			"cita_id":    cita.ID,
			"estado":     string(cita.Estado),
			"fecha_hora": cita.FechaHora,
			"total":      cita.Total.StringFixed(2),
		},
	}
}

// encolarCanales queues the best-effort email and Telegram jobs.
func (d *NotificacionDispatcher) encolarCanales(ctx context.Context, evento model.EventoCita, cita *model.Cita, mensaje string) {
	if d.cola == nil {
		return
	}
	switch evento {
	case model.EventoRecordatorio:
		if cita.Usuario == nil || cita.Usuario.Email == "" {
			return
		}
		err := d.cola.EncolarEmail(ctx, worker.EmailJobPayload{
			ToEmail: cita.Usuario.Email,
			Subject: "Recordatorio de tu cita",
			Body:    fmt.Sprintf("Hola %s,\n\n%s\n", cita.Usuario.Nombre, mensaje),
			CitaID:  cita.ID,
		})
		if err != nil {
			log.Warn().Err(err).Uint("cita_id", cita.ID).Msg("dispatch: email job not queued")
		}
	case model.EventoCancelada:
		if !d.telegram {
			return
		}
		texto := "Cita cancelada: " + mensaje
		if cita.Usuario != nil {
			texto += " Cliente: " + cita.Usuario.Nombre
		}
		if err := d.cola.EncolarTelegram(ctx, worker.TelegramJobPayload{Texto: texto, CitaID: cita.ID}); err != nil {
			log.Warn().Err(err).Uint("cita_id", cita.ID).Msg("dispatch: telegram job not queued")
		}
	}
}

func (d *NotificacionDispatcher) reportar(err error) {
	log.Error().Err(err).Msg("notification dispatch failed")
	select {
	case d.errores <- err:
	default:
	}
}
