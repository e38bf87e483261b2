package middleware

import (
	"errors"
	"net/http"
	"strings"

	"autolavado/internal/apierror"
	"autolavado/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimsKey = "claims"

	tokenAcceso = "access"
)

// JWTClaims are the custom claims embedded in every access token.
type JWTClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Rol    string `json:"rol"`
	Tipo   string `json:"tipo"`
	jwt.RegisteredClaims
}

var errTokenInvalido = errors.New("token invalido o expirado")

func parseToken(header, secret string) (*JWTClaims, error) {
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil, apierror.ErrNoAutenticado
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid || claims.Tipo != tokenAcceso || claims.UserID == 0 {
		return nil, errTokenInvalido
	}
	return claims, nil
}

// JWTAuth validates the Bearer token on every protected route.
// Refresh tokens are rejected here.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseToken(c.GetHeader("Authorization"), secret)
		if err != nil {
			msg := "Autenticacion requerida"
			if errors.Is(err, errTokenInvalido) {
				msg = "Token invalido o expirado"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, &apierror.APIError{Detail: msg, Codigo: "Unauthenticated"})
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// OptionalJWT stores the claims when a valid token is present and lets
// anonymous requests through, for routes that answer both.
func OptionalJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := parseToken(c.GetHeader("Authorization"), secret); err == nil {
			c.Set(ClaimsKey, claims)
		}
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...model.Rol) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !allowed[claims.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden, &apierror.APIError{Detail: "Permisos insuficientes", Codigo: "AccessDenied"})
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
// Returns nil on anonymous requests.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}

// Actor converts the token claims into the caller identity used by services.
// The role is carried unvalidated; services and ResolverArea reject unknown ones.
func Actor(c *gin.Context) *model.Actor {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	return &model.Actor{UsuarioID: claims.UserID, Rol: model.Rol(claims.Rol)}
}
