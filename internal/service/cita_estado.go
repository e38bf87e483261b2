package service

import (
	"fmt"

	"autolavado/internal/apierror"
	"autolavado/internal/model"
)

// accionCita names an explicit lifecycle operation.
type accionCita string

const (
	accionConfirmar accionCita = "confirmar"
	accionIniciar   accionCita = "iniciar"
	accionFinalizar accionCita = "finalizar"
	accionCancelar  accionCita = "cancelar"
)

type transicion struct {
	desde  []model.EstadoCita
	hacia  model.EstadoCita
	evento model.EventoCita
}

var transiciones = map[accionCita]transicion{
	accionConfirmar: {desde: []model.EstadoCita{model.EstadoPendiente}, hacia: model.EstadoConfirmada, evento: model.EventoConfirmada},
	accionIniciar:   {desde: []model.EstadoCita{model.EstadoConfirmada}, hacia: model.EstadoEnProceso, evento: model.EventoIniciada},
	accionFinalizar: {desde: []model.EstadoCita{model.EstadoEnProceso}, hacia: model.EstadoFinalizada, evento: model.EventoFinalizada},
	accionCancelar: {
		desde:  []model.EstadoCita{model.EstadoPendiente, model.EstadoConfirmada, model.EstadoEnProceso},
		hacia:  model.EstadoCancelada,
		evento: model.EventoCancelada,
	},
}

// validarTransicion returns the transition for accion when the appointment
// is currently in actual. Cancelling a finished appointment is a
// TerminalState error; every other illegal edge is an InvalidTransition.
func validarTransicion(accion accionCita, actual model.EstadoCita) (transicion, error) {
	t, ok := transiciones[accion]
	if !ok {
		return transicion{}, fmt.Errorf("accion %q: %w", accion, apierror.ErrTransicionInvalida)
	}
	for _, d := range t.desde {
		if d == actual {
			return t, nil
		}
	}
	if accion == accionCancelar && actual == model.EstadoFinalizada {
		return t, fmt.Errorf("%s desde %s: %w", accion, actual, apierror.ErrEstadoTerminal)
	}
	return t, fmt.Errorf("%s desde %s: %w", accion, actual, apierror.ErrTransicionInvalida)
}

// TransicionValida reports whether the graph has an edge desde → hacia.
func TransicionValida(desde, hacia model.EstadoCita) bool {
	for _, t := range transiciones {
		if t.hacia != hacia {
			continue
		}
		for _, d := range t.desde {
			if d == desde {
				return true
			}
		}
	}
	return false
}

func esTerminal(e model.EstadoCita) bool {
	return e == model.EstadoFinalizada || e == model.EstadoCancelada
}
