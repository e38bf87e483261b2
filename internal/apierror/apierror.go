// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Codigo string `json:"codigo,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Error kinds shared by services and handlers. Services wrap them with
// fmt.Errorf("...: %w", err); handlers classify with errors.Is.
var (
	ErrNoAutenticado      = errors.New("autenticacion requerida")
	ErrAccesoDenegado     = errors.New("acceso denegado")
	ErrRolDesconocido     = errors.New("rol desconocido")
	ErrTransicionInvalida = errors.New("transicion de estado invalida")
	ErrEstadoTerminal     = errors.New("la cita esta en un estado terminal")
	ErrFechaInvalida      = errors.New("la fecha de la cita debe ser futura")
	ErrNoPropietario      = errors.New("el recurso pertenece a otro usuario")
	ErrNoEncontrado       = errors.New("recurso no encontrado")
	ErrMotivoRequerido    = errors.New("se requiere un motivo de cancelacion")
	ErrSinServicios       = errors.New("la cita requiere al menos un servicio")
	ErrConflicto          = errors.New("conflicto con el estado actual")
	ErrCredenciales       = errors.New("credenciales invalidas")
)

type kind struct {
	err    error
	status int
	codigo string
}

var kinds = []kind{
	{ErrNoAutenticado, http.StatusUnauthorized, "Unauthenticated"},
	{ErrCredenciales, http.StatusUnauthorized, "InvalidCredentials"},
	{ErrAccesoDenegado, http.StatusForbidden, "AccessDenied"},
	{ErrNoPropietario, http.StatusForbidden, "NotOwner"},
	{ErrRolDesconocido, http.StatusForbidden, "UnknownRole"},
	{ErrNoEncontrado, http.StatusNotFound, "NotFound"},
	{ErrTransicionInvalida, http.StatusConflict, "InvalidTransition"},
	{ErrEstadoTerminal, http.StatusConflict, "TerminalState"},
	{ErrConflicto, http.StatusConflict, "Conflict"},
	{ErrFechaInvalida, http.StatusUnprocessableEntity, "InvalidSchedule"},
	{ErrMotivoRequerido, http.StatusUnprocessableEntity, "ReasonRequired"},
	{ErrSinServicios, http.StatusUnprocessableEntity, "NoServices"},
}

// Status maps an error to its HTTP status and machine-readable code.
// Unknown errors map to 500 and an empty code.
func Status(err error) (int, string) {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status, k.codigo
		}
	}
	return http.StatusInternalServerError, ""
}

// From builds the response envelope for err. Internal errors get a generic
// message so driver or SQL details never reach the client.
func From(err error) (int, *APIError) {
	status, codigo := Status(err)
	if status == http.StatusInternalServerError {
		return status, New("Error interno del servidor")
	}
	return status, &APIError{Detail: err.Error(), Codigo: codigo}
}
