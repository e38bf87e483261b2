package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"autolavado/internal/apierror"
	"autolavado/internal/dto"
	"autolavado/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.Todos()...))
	return db
}

type seedData struct {
	cliente   *model.Usuario
	vehiculo  *model.Vehiculo
	servicios []*model.Servicio
}

func seed(t *testing.T, db *gorm.DB) seedData {
	t.Helper()
	ctx := context.Background()
	cliente := &model.Usuario{Nombre: "Carla", Email: "carla@test.com", PasswordHash: "x", Rol: model.RolCliente, Activo: true}
	require.NoError(t, NewUsuarioRepository(db).Create(ctx, cliente))
	v := &model.Vehiculo{UsuarioID: cliente.ID, Marca: "Toyota", Modelo: "Yaris", Placa: "AAA111"}
	require.NoError(t, NewVehiculoRepository(db).Create(ctx, v))

	var servicios []*model.Servicio
	for _, s := range []struct{ nombre, precio string }{{"Lavado", "15.00"}, {"Encerado", "10.00"}, {"Pulido", "40.00"}} {
		sv := &model.Servicio{Nombre: s.nombre, Categoria: "lavado", Precio: decimal.RequireFromString(s.precio), Duracion: 30, Activo: true}
		require.NoError(t, NewServicioRepository(db).Create(ctx, sv))
		servicios = append(servicios, sv)
	}
	return seedData{cliente: cliente, vehiculo: v, servicios: servicios}
}

func (s seedData) cita(estado model.EstadoCita, fecha time.Time, servicios ...*model.Servicio) *model.Cita {
	c := &model.Cita{UsuarioID: s.cliente.ID, VehiculoID: s.vehiculo.ID, FechaHora: fecha, Estado: estado, Version: 1}
	for _, sv := range servicios {
		c.Servicios = append(c.Servicios, model.CitaServicio{ServicioID: sv.ID, Nombre: sv.Nombre, Precio: sv.Precio})
	}
	c.Total = c.SumaSnapshots()
	return c
}

func TestCitaRepo_CreateAndFindPreloadsSnapshots(t *testing.T) {
	db := newTestDB(t)
	s := seed(t, db)
	repo := NewCitaRepository(db)
	ctx := context.Background()

	c := s.cita(model.EstadoPendiente, time.Now().UTC().Add(time.Hour), s.servicios[0], s.servicios[1])
	require.NoError(t, repo.Create(ctx, nil, c))
	require.NotZero(t, c.ID)

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Servicios, 2)
	assert.Equal(t, "Lavado", got.Servicios[0].Nombre)
	assert.True(t, decimal.RequireFromString("25").Equal(got.Total))
	require.NotNil(t, got.Usuario)
	assert.Equal(t, "Carla", got.Usuario.Nombre)
	require.NotNil(t, got.Vehiculo)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, apierror.ErrNoEncontrado)
}

func TestCitaRepo_CambiarEstadoCompareAndSet(t *testing.T) {
	db := newTestDB(t)
	s := seed(t, db)
	repo := NewCitaRepository(db)
	ctx := context.Background()

	c := s.cita(model.EstadoPendiente, time.Now().UTC().Add(time.Hour), s.servicios[0])
	require.NoError(t, repo.Create(ctx, nil, c))

	const n = 8
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		exitos int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cp, err := repo.FindByID(ctx, c.ID)
			if err != nil {
				t.Error(err)
				return
			}
			desde := cp.Estado
			if desde != model.EstadoPendiente {
				return
			}
			cp.Estado = model.EstadoConfirmada
			if err := repo.CambiarEstado(ctx, cp, desde); err == nil {
				mu.Lock()
				exitos++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, apierror.ErrTransicionInvalida)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, exitos)

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoConfirmada, got.Estado)
	assert.Equal(t, 2, got.Version)

	// a stale version loses even when the state matches
	stale := *got
	stale.Version = 1
	stale.Estado = model.EstadoEnProceso
	assert.ErrorIs(t, repo.CambiarEstado(ctx, &stale, model.EstadoConfirmada), apierror.ErrTransicionInvalida)
}

func TestCitaRepo_ActualizarVersionGuard(t *testing.T) {
	db := newTestDB(t)
	s := seed(t, db)
	repo := NewCitaRepository(db)
	ctx := context.Background()
	c := s.cita(model.EstadoPendiente, time.Now().UTC().Add(time.Hour), s.servicios[0])
	require.NoError(t, repo.Create(ctx, nil, c))

	a, _ := repo.FindByID(ctx, c.ID)
	b, _ := repo.FindByID(ctx, c.ID)
	a.FechaHora = a.FechaHora.Add(time.Hour)
	require.NoError(t, repo.Actualizar(ctx, a))
	b.FechaHora = b.FechaHora.Add(2 * time.Hour)
	assert.ErrorIs(t, repo.Actualizar(ctx, b), apierror.ErrConflicto)
}

func TestCitaRepo_DashboardAggregates(t *testing.T) {
	db := newTestDB(t)
	s := seed(t, db)
	repo := NewCitaRepository(db)
	ctx := context.Background()

	desde := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	hasta := desde.AddDate(0, 1, 0)
	dentro := desde.Add(5 * 24 * time.Hour)
	fuera := desde.AddDate(0, -1, 0)

	fin := s.cita(model.EstadoFinalizada, dentro, s.servicios[0], s.servicios[1])
	fin.PrecioBloqueado = true
	fin.FinalizadaAt = &dentro
	require.NoError(t, repo.Create(ctx, nil, fin))

	require.NoError(t, repo.Create(ctx, nil, s.cita(model.EstadoPendiente, dentro, s.servicios[1])))

	can := s.cita(model.EstadoCancelada, dentro, s.servicios[2], s.servicios[2])
	can.CanceladaAt = &dentro
	require.NoError(t, repo.Create(ctx, nil, can))

	viejo := s.cita(model.EstadoFinalizada, fuera, s.servicios[2])
	viejo.PrecioBloqueado = true
	viejo.FinalizadaAt = &fuera
	require.NoError(t, repo.Create(ctx, nil, viejo))

	ingresos, err := repo.SumIngresosEntre(ctx, desde, hasta)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("25").Equal(ingresos), "ingresos = %s", ingresos)

	programadas, err := repo.CountProgramadasEntre(ctx, desde, hasta)
	require.NoError(t, err)
	assert.Equal(t, int64(2), programadas)

	canceladas, err := repo.CountCanceladasEntre(ctx, desde, hasta)
	require.NoError(t, err)
	assert.Equal(t, int64(1), canceladas)

	porEstado, err := repo.CountPorEstado(ctx, desde, hasta)
	require.NoError(t, err)
	assert.Equal(t, int64(1), porEstado[model.EstadoFinalizada])
	assert.Equal(t, int64(1), porEstado[model.EstadoCancelada])

	top, err := repo.TopServicios(ctx, desde, hasta, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, s.servicios[1].ID, top[0].ServicioID, "Encerado booked twice")
	assert.Equal(t, int64(2), top[0].Veces)
	assert.Equal(t, s.servicios[0].ID, top[1].ServicioID)

	vacio, err := repo.SumIngresosEntre(ctx, hasta, hasta.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.True(t, vacio.IsZero())
}

func TestCitaRepo_Recordatorios(t *testing.T) {
	db := newTestDB(t)
	s := seed(t, db)
	repo := NewCitaRepository(db)
	ctx := context.Background()
	ahora := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	cerca := s.cita(model.EstadoConfirmada, ahora.Add(2*time.Hour), s.servicios[0])
	require.NoError(t, repo.Create(ctx, nil, cerca))
	require.NoError(t, repo.Create(ctx, nil, s.cita(model.EstadoPendiente, ahora.Add(2*time.Hour), s.servicios[0])))
	require.NoError(t, repo.Create(ctx, nil, s.cita(model.EstadoConfirmada, ahora.Add(48*time.Hour), s.servicios[0])))

	list, err := repo.ListParaRecordatorio(ctx, ahora, ahora.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, cerca.ID, list[0].ID)

	require.NoError(t, repo.MarcarRecordatorio(ctx, cerca.ID))
	list, err = repo.ListParaRecordatorio(ctx, ahora, ahora.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCitaRepo_ListFilters(t *testing.T) {
	db := newTestDB(t)
	s := seed(t, db)
	repo := NewCitaRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, nil, s.cita(model.EstadoPendiente, base.Add(time.Duration(i)*24*time.Hour), s.servicios[0])))
	}
	desde := base.Add(24 * time.Hour)

	list, err := repo.List(ctx, dto.CitaFilter{UsuarioID: s.cliente.ID, Desde: &desde})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].FechaHora.After(list[1].FechaHora), "newest first")

	list, err = repo.List(ctx, dto.CitaFilter{Estado: "confirmada"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNotificacionRepo_OrderAndCounters(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificacionRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	for i, titulo := range []string{"primera", "segunda", "tercera"} {
		n := &model.Notificacion{UsuarioID: 7, Tipo: model.TipoInfo, Icono: "bell", Titulo: titulo, Mensaje: titulo, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Create(ctx, n))
	}
	require.NoError(t, repo.Create(ctx, &model.Notificacion{UsuarioID: 8, Tipo: model.TipoInfo, Icono: "bell", Titulo: "ajena", Mensaje: "x"}))

	list, err := repo.ListByUsuario(ctx, 7, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "tercera", list[0].Titulo)
	assert.Equal(t, "segunda", list[1].Titulo)

	n, err := repo.CountNoLeidas(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.NoError(t, repo.SetLeida(ctx, list[0].ID, true))
	marcadas, err := repo.MarcarTodasLeidas(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marcadas)

	n, err = repo.CountNoLeidas(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUsuarioRepo_DeleteSinCitas(t *testing.T) {
	db := newTestDB(t)
	s := seed(t, db)
	repo := NewUsuarioRepository(db)
	ctx := context.Background()
	libre := &model.Usuario{Nombre: "Dario", Email: "dario@test.com", PasswordHash: "x", Rol: model.RolCliente, Activo: true}
	require.NoError(t, repo.Create(ctx, libre))
	require.NoError(t, NewCitaRepository(db).Create(ctx, nil, s.cita(model.EstadoPendiente, time.Now().UTC(), s.servicios[0])))

	n, err := repo.DeleteSinCitas(ctx, []uint{s.cliente.ID, libre.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.FindByID(ctx, libre.ID)
	assert.ErrorIs(t, err, apierror.ErrNoEncontrado)
	_, err = repo.FindByID(ctx, s.cliente.ID)
	assert.NoError(t, err)

	porRol, err := repo.CountPorRol(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), porRol[model.RolCliente])
	assert.Equal(t, int64(0), porRol[model.RolAdmin])
}

func TestServicioRepo_UpdateKeepsHireCount(t *testing.T) {
	db := newTestDB(t)
	s := seed(t, db)
	repo := NewServicioRepository(db)
	ctx := context.Background()

	// An admin loads the service, a booking commits, then the edit is saved.
	editado, err := repo.FindByID(ctx, s.servicios[0].ID)
	require.NoError(t, err)
	require.Zero(t, editado.VecesContratado)

	require.NoError(t, repo.IncrementarContratados(ctx, nil, []uint{editado.ID}))

	editado.Precio = decimal.RequireFromString("18.50")
	editado.Activo = false
	require.NoError(t, repo.Update(ctx, editado))

	got, err := repo.FindByID(ctx, editado.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.VecesContratado)
	assert.True(t, decimal.RequireFromString("18.50").Equal(got.Precio))
	assert.False(t, got.Activo)

	assert.ErrorIs(t, repo.Update(ctx, &model.Servicio{ID: 999, Nombre: "x"}), apierror.ErrNoEncontrado)
}

func TestServicioRepo_DeleteSinCitas(t *testing.T) {
	db := newTestDB(t)
	s := seed(t, db)
	repo := NewServicioRepository(db)
	ctx := context.Background()
	reservado, libre := s.servicios[0], s.servicios[1]
	require.NoError(t, NewCitaRepository(db).Create(ctx, nil, s.cita(model.EstadoPendiente, time.Now().UTC().Add(time.Hour), reservado)))

	borrado, err := repo.DeleteSinCitas(ctx, reservado.ID)
	require.NoError(t, err)
	assert.False(t, borrado)
	_, err = repo.FindByID(ctx, reservado.ID)
	assert.NoError(t, err)

	borrado, err = repo.DeleteSinCitas(ctx, libre.ID)
	require.NoError(t, err)
	assert.True(t, borrado)
	_, err = repo.FindByID(ctx, libre.ID)
	assert.ErrorIs(t, err, apierror.ErrNoEncontrado)
}

func TestCita_TableName(t *testing.T) {
	db := newTestDB(t)
	assert.True(t, db.Migrator().HasTable("citas"))
	assert.False(t, db.Migrator().HasTable("cita"))
}
