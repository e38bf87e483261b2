package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"autolavado/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatcherCita(cliente *model.Usuario) *model.Cita {
	motivo := "lluvia intensa"
	return &model.Cita{
		ID:                7,
		UsuarioID:         cliente.ID,
		Usuario:           cliente,
		FechaHora:         time.Date(2026, 4, 2, 10, 30, 0, 0, time.Local),
		Estado:            model.EstadoCancelada,
		Total:             decimal.RequireFromString("25"),
		MotivoCancelacion: &motivo,
	}
}

func TestDispatch_EventPresentation(t *testing.T) {
	cases := []struct {
		evento model.EventoCita
		tipo   model.TipoNotificacion
		icono  string
	}{
		{model.EventoCreada, model.TipoInfo, "calendar-plus"},
		{model.EventoConfirmada, model.TipoSuccess, "calendar-check"},
		{model.EventoIniciada, model.TipoInfo, "car"},
		{model.EventoFinalizada, model.TipoSuccess, "check-circle"},
		{model.EventoCancelada, model.TipoWarning, "calendar-times"},
		{model.EventoRecordatorio, model.TipoInfo, "bell"},
	}
	for _, tc := range cases {
		t.Run(string(tc.evento), func(t *testing.T) {
			usuarios := newStubUsuarioRepo()
			cliente := usuarios.seed("Carla", "carla@test.com", model.RolCliente)
			notifs := newStubNotificacionRepo()
			d := NewNotificacionDispatcher(notifs, usuarios, nil, false)

			d.Dispatch(context.Background(), tc.evento, dispatcherCita(cliente))

			got := notifs.porUsuario(cliente.ID)
			require.Len(t, got, 1)
			n := got[0]
			assert.Equal(t, tc.tipo, n.Tipo)
			assert.Equal(t, tc.icono, n.Icono)
			assert.NotEmpty(t, n.Titulo)
			assert.Contains(t, n.Mensaje, "#7")
			assert.False(t, n.Leida)
			require.NotNil(t, n.CitaID)
			assert.Equal(t, uint(7), *n.CitaID)
			require.NotNil(t, n.Evento)
			assert.Equal(t, tc.evento, *n.Evento)
		})
	}
}

func TestDispatch_CancelNotifiesActiveAdmins(t *testing.T) {
	usuarios := newStubUsuarioRepo()
	cliente := usuarios.seed("Carla", "carla@test.com", model.RolCliente)
	admin1 := usuarios.seed("Ana", "ana@test.com", model.RolAdmin)
	admin2 := usuarios.seed("Beto", "beto@test.com", model.RolAdmin)
	inactivo := usuarios.seed("Ciro", "ciro@test.com", model.RolAdmin)
	_, _ = usuarios.SetActivo(context.Background(), []uint{inactivo.ID}, false)
	empleado := usuarios.seed("Emilio", "emi@test.com", model.RolEmpleado)

	notifs := newStubNotificacionRepo()
	d := NewNotificacionDispatcher(notifs, usuarios, nil, false)

	d.Dispatch(context.Background(), model.EventoCancelada, dispatcherCita(cliente))

	assert.Len(t, notifs.porUsuario(cliente.ID), 1)
	for _, a := range []*model.Usuario{admin1, admin2} {
		got := notifs.porUsuario(a.ID)
		require.Len(t, got, 1, a.Nombre)
		assert.Contains(t, got[0].Mensaje, "Motivo: lluvia intensa")
		assert.Contains(t, got[0].Mensaje, "Cliente: Carla")
	}
	assert.Empty(t, notifs.porUsuario(inactivo.ID))
	assert.Empty(t, notifs.porUsuario(empleado.ID))
}

func TestDispatch_OtherEventsOnlyReachTheClient(t *testing.T) {
	usuarios := newStubUsuarioRepo()
	cliente := usuarios.seed("Carla", "carla@test.com", model.RolCliente)
	admin := usuarios.seed("Ana", "ana@test.com", model.RolAdmin)
	notifs := newStubNotificacionRepo()
	d := NewNotificacionDispatcher(notifs, usuarios, nil, false)

	d.Dispatch(context.Background(), model.EventoConfirmada, dispatcherCita(cliente))

	assert.Len(t, notifs.porUsuario(cliente.ID), 1)
	assert.Empty(t, notifs.porUsuario(admin.ID))
}

func TestDispatch_UnknownEventIsReported(t *testing.T) {
	usuarios := newStubUsuarioRepo()
	cliente := usuarios.seed("Carla", "carla@test.com", model.RolCliente)
	notifs := newStubNotificacionRepo()
	d := NewNotificacionDispatcher(notifs, usuarios, nil, false)

	d.Dispatch(context.Background(), model.EventoCita("archivada"), dispatcherCita(cliente))

	assert.Empty(t, notifs.porUsuario(cliente.ID))
	select {
	case err := <-d.Errores():
		assert.Contains(t, err.Error(), "archivada")
	default:
		t.Fatal("expected an error for an unknown event")
	}
}

func TestDispatch_AdminListFailureStillNotifiesClient(t *testing.T) {
	usuarios := newStubUsuarioRepo()
	cliente := usuarios.seed("Carla", "carla@test.com", model.RolCliente)
	usuarios.fallas = fallas{"ListActivosPorRol": errDB}
	notifs := newStubNotificacionRepo()
	d := NewNotificacionDispatcher(notifs, usuarios, nil, false)

	d.Dispatch(context.Background(), model.EventoCancelada, dispatcherCita(cliente))

	assert.Len(t, notifs.porUsuario(cliente.ID), 1)
	select {
	case err := <-d.Errores():
		assert.ErrorIs(t, err, errDB)
	default:
		t.Fatal("expected the admin lookup error")
	}
}

func TestDispatch_SideChannels(t *testing.T) {
	usuarios := newStubUsuarioRepo()
	cliente := usuarios.seed("Carla", "carla@test.com", model.RolCliente)
	notifs := newStubNotificacionRepo()
	cola := &fakeCola{}
	d := NewNotificacionDispatcher(notifs, usuarios, cola, true)
	cita := dispatcherCita(cliente)

	d.Dispatch(context.Background(), model.EventoRecordatorio, cita)
	d.Dispatch(context.Background(), model.EventoCancelada, cita)
	d.Dispatch(context.Background(), model.EventoConfirmada, cita)

	require.Len(t, cola.emails, 1)
	assert.Equal(t, "carla@test.com", cola.emails[0].ToEmail)
	assert.Equal(t, uint(7), cola.emails[0].CitaID)
	assert.True(t, strings.HasPrefix(cola.emails[0].Body, "Hola Carla"))

	require.Len(t, cola.telegram, 1)
	assert.Contains(t, cola.telegram[0].Texto, "Cita cancelada")
	assert.Equal(t, uint(7), cola.telegram[0].CitaID)
}

func TestDispatch_TelegramDisabled(t *testing.T) {
	usuarios := newStubUsuarioRepo()
	cliente := usuarios.seed("Carla", "carla@test.com", model.RolCliente)
	cola := &fakeCola{}
	d := NewNotificacionDispatcher(newStubNotificacionRepo(), usuarios, cola, false)

	d.Dispatch(context.Background(), model.EventoCancelada, dispatcherCita(cliente))

	assert.Empty(t, cola.telegram)
}

func TestDispatch_PerRecipientOrderFollowsEvents(t *testing.T) {
	usuarios := newStubUsuarioRepo()
	cliente := usuarios.seed("Carla", "carla@test.com", model.RolCliente)
	notifs := newStubNotificacionRepo()
	d := NewNotificacionDispatcher(notifs, usuarios, nil, false)
	cita := dispatcherCita(cliente)

	for _, ev := range []model.EventoCita{model.EventoCreada, model.EventoConfirmada, model.EventoIniciada, model.EventoFinalizada} {
		d.Dispatch(context.Background(), ev, cita)
	}

	got := notifs.porUsuario(cliente.ID)
	require.Len(t, got, 4)
	// newest first
	assert.Equal(t, model.EventoFinalizada, *got[0].Evento)
	assert.Equal(t, model.EventoCreada, *got[3].Evento)
}

func TestDispatch_WritesAfterCallerCancels(t *testing.T) {
	usuarios := newStubUsuarioRepo()
	cliente := usuarios.seed("Carla", "carla@test.com", model.RolCliente)
	admin := usuarios.seed("Ana", "ana@test.com", model.RolAdmin)
	notifs := newStubNotificacionRepo()
	d := NewNotificacionDispatcher(notifs, usuarios, nil, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Dispatch(ctx, model.EventoCancelada, dispatcherCita(cliente))

	assert.Len(t, notifs.porUsuario(cliente.ID), 1)
	assert.Len(t, notifs.porUsuario(admin.ID), 1)
	select {
	case err := <-d.Errores():
		t.Fatalf("unexpected dispatch error: %v", err)
	default:
	}
}
