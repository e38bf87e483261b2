package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"autolavado/internal/apierror"
	"autolavado/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// LoginPath is the entry point unauthenticated callers are sent to.
const LoginPath = "/login"

// ResolverArea decides which dashboard area the actor may enter.
// With requested empty it returns the actor's own area.
func ResolverArea(actor *model.Actor, requested model.Area) (model.Area, error) {
	if actor == nil {
		return "", apierror.ErrNoAutenticado
	}
	rol, err := model.ParseRol(string(actor.Rol))
	if err != nil {
		return "", err
	}
	area, err := model.AreaDeRol(rol)
	if err != nil {
		return "", err
	}
	if requested != "" && requested != area {
		return "", fmt.Errorf("area %s para rol %s: %w", requested, rol, apierror.ErrAccesoDenegado)
	}
	return area, nil
}

// RequireArea guards a route group for a single area.
func RequireArea(area model.Area) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Actor(c)
		if _, err := ResolverArea(actor, area); err != nil {
			if errors.Is(err, apierror.ErrRolDesconocido) {
				log.Warn().Uint("usuario_id", actor.UsuarioID).Str("rol", string(actor.Rol)).Msg("rol desconocido en token")
			}
			status, body := apierror.From(err)
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Next()
	}
}

// RedirigirDashboard sends the caller to the dashboard of their role.
func RedirigirDashboard(c *gin.Context) {
	actor := Actor(c)
	area, err := ResolverArea(actor, "")
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, area.DashboardPath())
	case errors.Is(err, apierror.ErrNoAutenticado):
		c.Header("Location", LoginPath)
		c.JSON(http.StatusUnauthorized, gin.H{
			"detail": "Autenticacion requerida",
			"codigo": "Unauthenticated",
			"login":  LoginPath,
		})
	default:
		log.Warn().Err(err).Uint("usuario_id", actor.UsuarioID).Msg("rol desconocido, redirigiendo a inicio")
		c.Redirect(http.StatusFound, "/")
	}
}
