package middleware

import (
	"encoding/json"
	"net/http"
	"testing"

	"autolavado/internal/apierror"
	"autolavado/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverArea(t *testing.T) {
	cases := []struct {
		name      string
		actor     *model.Actor
		requested model.Area
		want      model.Area
		err       error
	}{
		{"anonymous", nil, model.AreaAdmin, "", apierror.ErrNoAutenticado},
		{"admin own area", &model.Actor{UsuarioID: 1, Rol: model.RolAdmin}, "", model.AreaAdmin, nil},
		{"empleado own area", &model.Actor{UsuarioID: 2, Rol: model.RolEmpleado}, model.AreaEmpleado, model.AreaEmpleado, nil},
		{"cliente own area", &model.Actor{UsuarioID: 3, Rol: model.RolCliente}, "", model.AreaCliente, nil},
		{"empleado into admin", &model.Actor{UsuarioID: 2, Rol: model.RolEmpleado}, model.AreaAdmin, "", apierror.ErrAccesoDenegado},
		{"admin into cliente", &model.Actor{UsuarioID: 1, Rol: model.RolAdmin}, model.AreaCliente, "", apierror.ErrAccesoDenegado},
		{"unknown role", &model.Actor{UsuarioID: 9, Rol: "supervisor"}, "", "", apierror.ErrRolDesconocido},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolverArea(tc.actor, tc.requested)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func areaRouter() *gin.Engine {
	r := gin.New()
	r.GET("/dashboard", OptionalJWT(testSecret), RedirigirDashboard)
	for _, area := range []model.Area{model.AreaAdmin, model.AreaEmpleado, model.AreaCliente} {
		g := r.Group("/"+string(area), JWTAuth(testSecret), RequireArea(area))
		g.GET("/dashboard", func(c *gin.Context) { c.Status(http.StatusOK) })
	}
	return r
}

func TestRequireArea_CrossAreaIsForbidden(t *testing.T) {
	r := areaRouter()

	w := doGet(r, "/admin/dashboard", bearer(t, 2, "empleado"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	var body apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "AccessDenied", body.Codigo)

	assert.Equal(t, http.StatusOK, doGet(r, "/empleado/dashboard", bearer(t, 2, "empleado")).Code)
	assert.Equal(t, http.StatusForbidden, doGet(r, "/cliente/dashboard", bearer(t, 1, "admin")).Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/cliente/dashboard", "").Code)

	w = doGet(r, "/cliente/dashboard", bearer(t, 5, "supervisor"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "UnknownRole")
}

func TestRedirigirDashboard(t *testing.T) {
	r := areaRouter()

	for rol, path := range map[string]string{
		"admin":    "/admin/dashboard",
		"empleado": "/empleado/dashboard",
		"cliente":  "/cliente/dashboard",
	} {
		w := doGet(r, "/dashboard", bearer(t, 1, rol))
		assert.Equal(t, http.StatusFound, w.Code, rol)
		assert.Equal(t, path, w.Header().Get("Location"), rol)
	}

	w := doGet(r, "/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, LoginPath, w.Header().Get("Location"))
	assert.Contains(t, w.Body.String(), `"login":"/login"`)

	w = doGet(r, "/dashboard", bearer(t, 1, "supervisor"))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}
