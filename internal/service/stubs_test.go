package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"autolavado/internal/apierror"
	"autolavado/internal/dto"
	"autolavado/internal/model"
	"autolavado/internal/worker"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory Repository Stubs ────────────────────────────────────────────────
// Every stub stores copies so callers only see persisted state through
// the repository methods, like with a real database.

var errDB = errors.New("db: connection refused")

// fallas injects an error for a named method.
type fallas map[string]error

func (f fallas) de(metodo string) error {
	if f == nil {
		return nil
	}
	return f[metodo]
}

// ── Usuarios ──────────────────────────────────────────────────────────────────

type stubUsuarioRepo struct {
	mu       sync.Mutex
	users    map[uint]*model.Usuario
	nextID   uint
	conCitas map[uint]bool
	fallas   fallas
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: map[uint]*model.Usuario{}, conCitas: map[uint]bool{}, nextID: 1}
}

func (r *stubUsuarioRepo) seed(nombre, email string, rol model.Rol) *model.Usuario {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &model.Usuario{ID: r.nextID, Nombre: nombre, Email: email, Rol: rol, Activo: true, CreatedAt: time.Now()}
	r.nextID++
	r.users[u.ID] = u
	cp := *u
	return &cp
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) && u.Activo {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apierror.ErrNoEncontrado
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uint) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apierror.ErrNoEncontrado
	}
	cp := *u
	return &cp, nil
}

func (r *stubUsuarioRepo) ExisteEmail(_ context.Context, email string, excluirID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID != excluirID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUsuarioRepo) List(_ context.Context, filter dto.UsuarioFilter) ([]model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Usuario
	for _, u := range r.users {
		if filter.Rol != "" && string(u.Rol) != filter.Rol {
			continue
		}
		if !filter.IncluirInactivos && !u.Activo {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUsuarioRepo) ListActivosPorRol(ctx context.Context, rol model.Rol) ([]model.Usuario, error) {
	if err := r.fallas.de("ListActivosPorRol"); err != nil {
		return nil, err
	}
	return r.List(ctx, dto.UsuarioFilter{Rol: string(rol)})
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) SetActivo(_ context.Context, ids []uint, activo bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			u.Activo = activo
			n++
		}
	}
	return n, nil
}

func (r *stubUsuarioRepo) DeleteSinCitas(_ context.Context, ids []uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.users[id]; ok && !r.conCitas[id] {
			delete(r.users, id)
			n++
		}
	}
	return n, nil
}

func (r *stubUsuarioRepo) Count(_ context.Context) (int64, error) {
	if err := r.fallas.de("Count"); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *stubUsuarioRepo) CountPorRol(_ context.Context) (map[model.Rol]int64, error) {
	if err := r.fallas.de("CountPorRol"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.Rol]int64{}
	for _, u := range r.users {
		out[u.Rol]++
	}
	return out, nil
}

func (r *stubUsuarioRepo) CountCreadosEntre(_ context.Context, rol model.Rol, desde, hasta time.Time) (int64, error) {
	if err := r.fallas.de("CountCreadosEntre"); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.Rol == rol && !u.CreatedAt.Before(desde) && u.CreatedAt.Before(hasta) {
			n++
		}
	}
	return n, nil
}

// ── Servicios ─────────────────────────────────────────────────────────────────

type stubServicioRepo struct {
	mu        sync.Mutex
	servicios map[uint]*model.Servicio
	nextID    uint
	conCitas  map[uint]bool
}

func newStubServicioRepo() *stubServicioRepo {
	return &stubServicioRepo{servicios: map[uint]*model.Servicio{}, conCitas: map[uint]bool{}, nextID: 1}
}

func (r *stubServicioRepo) seed(nombre, precio string, activo bool) *model.Servicio {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &model.Servicio{ID: r.nextID, Nombre: nombre, Categoria: "lavado", Precio: decimal.RequireFromString(precio), Duracion: 30, Activo: activo}
	r.nextID++
	r.servicios[s.ID] = s
	cp := *s
	return &cp
}

func (r *stubServicioRepo) Create(_ context.Context, s *model.Servicio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.nextID
	r.nextID++
	cp := *s
	r.servicios[s.ID] = &cp
	return nil
}

func (r *stubServicioRepo) FindByID(_ context.Context, id uint) (*model.Servicio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.servicios[id]
	if !ok {
		return nil, apierror.ErrNoEncontrado
	}
	cp := *s
	return &cp, nil
}

func (r *stubServicioRepo) FindByIDs(_ context.Context, ids []uint) ([]model.Servicio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Servicio
	for _, id := range ids {
		if s, ok := r.servicios[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubServicioRepo) List(_ context.Context, filter dto.ServicioFilter) ([]model.Servicio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Servicio
	for _, s := range r.servicios {
		if filter.SoloActivos && !s.Activo {
			continue
		}
		if filter.Categoria != "" && s.Categoria != filter.Categoria {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubServicioRepo) Update(_ context.Context, s *model.Servicio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	actual, ok := r.servicios[s.ID]
	if !ok {
		return apierror.ErrNoEncontrado
	}
	cp := *s
	cp.VecesContratado = actual.VecesContratado
	r.servicios[s.ID] = &cp
	return nil
}

func (r *stubServicioRepo) DeleteSinCitas(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.servicios[id]; !ok || r.conCitas[id] {
		return false, nil
	}
	delete(r.servicios, id)
	return true, nil
}

func (r *stubServicioRepo) IncrementarContratados(_ context.Context, _ *gorm.DB, ids []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if s, ok := r.servicios[id]; ok {
			s.VecesContratado++
			r.conCitas[id] = true
		}
	}
	return nil
}

func (r *stubServicioRepo) setPrecio(id uint, precio string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.servicios[id].Precio = decimal.RequireFromString(precio)
}

// ── Vehiculos ─────────────────────────────────────────────────────────────────

type stubVehiculoRepo struct {
	mu        sync.Mutex
	vehiculos map[uint]*model.Vehiculo
	nextID    uint
	conCitas  map[uint]bool
}

func newStubVehiculoRepo() *stubVehiculoRepo {
	return &stubVehiculoRepo{vehiculos: map[uint]*model.Vehiculo{}, conCitas: map[uint]bool{}, nextID: 1}
}

func (r *stubVehiculoRepo) seed(usuarioID uint, placa string) *model.Vehiculo {
	v := &model.Vehiculo{UsuarioID: usuarioID, Marca: "Toyota", Modelo: "Corolla", Placa: placa}
	_ = r.Create(context.Background(), v)
	return v
}

func (r *stubVehiculoRepo) Create(_ context.Context, v *model.Vehiculo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.vehiculos {
		if o.Placa == v.Placa {
			return errors.New("duplicate key value violates unique constraint \"idx_vehiculos_placa\"")
		}
	}
	v.ID = r.nextID
	r.nextID++
	cp := *v
	r.vehiculos[v.ID] = &cp
	return nil
}

func (r *stubVehiculoRepo) FindByID(_ context.Context, id uint) (*model.Vehiculo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehiculos[id]
	if !ok {
		return nil, apierror.ErrNoEncontrado
	}
	cp := *v
	return &cp, nil
}

func (r *stubVehiculoRepo) ListByUsuario(_ context.Context, usuarioID uint) ([]model.Vehiculo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Vehiculo
	for _, v := range r.vehiculos {
		if v.UsuarioID == usuarioID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubVehiculoRepo) Update(_ context.Context, v *model.Vehiculo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	r.vehiculos[v.ID] = &cp
	return nil
}

func (r *stubVehiculoRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.vehiculos, id)
	return nil
}

func (r *stubVehiculoRepo) TieneCitas(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conCitas[id], nil
}

// ── Citas ─────────────────────────────────────────────────────────────────────

type stubCitaRepo struct {
	mu     sync.Mutex
	citas  map[uint]*model.Cita
	nextID uint
	fallas fallas
}

func newStubCitaRepo() *stubCitaRepo {
	return &stubCitaRepo{citas: map[uint]*model.Cita{}, nextID: 1}
}

func copiaCita(c *model.Cita) *model.Cita {
	cp := *c
	cp.Servicios = append([]model.CitaServicio(nil), c.Servicios...)
	return &cp
}

// put stores c as-is, assigning an id when missing.
func (r *stubCitaRepo) put(c *model.Cita) *model.Cita {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == 0 {
		c.ID = r.nextID
		r.nextID++
	}
	if c.Version == 0 {
		c.Version = 1
	}
	r.citas[c.ID] = copiaCita(c)
	return copiaCita(c)
}

func (r *stubCitaRepo) Create(_ context.Context, _ *gorm.DB, c *model.Cita) error {
	r.put(c)
	return nil
}

func (r *stubCitaRepo) FindByID(_ context.Context, id uint) (*model.Cita, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.citas[id]
	if !ok {
		return nil, apierror.ErrNoEncontrado
	}
	return copiaCita(c), nil
}

func (r *stubCitaRepo) List(_ context.Context, filter dto.CitaFilter) ([]model.Cita, error) {
	if err := r.fallas.de("List"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Cita
	for _, c := range r.citas {
		if filter.UsuarioID != 0 && c.UsuarioID != filter.UsuarioID {
			continue
		}
		if filter.EmpleadoID != 0 && (c.EmpleadoID == nil || *c.EmpleadoID != filter.EmpleadoID) {
			continue
		}
		if filter.Estado != "" && string(c.Estado) != filter.Estado {
			continue
		}
		if filter.Desde != nil && c.FechaHora.Before(*filter.Desde) {
			continue
		}
		if filter.Hasta != nil && !c.FechaHora.Before(*filter.Hasta) {
			continue
		}
		out = append(out, *copiaCita(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FechaHora.Before(out[j].FechaHora) })
	return out, nil
}

// CambiarEstado is a compare-and-set under the stub's mutex.
func (r *stubCitaRepo) CambiarEstado(_ context.Context, c *model.Cita, desde model.EstadoCita) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.citas[c.ID]
	if !ok || stored.Estado != desde || stored.Version != c.Version {
		return apierror.ErrTransicionInvalida
	}
	c.Version++
	r.citas[c.ID] = copiaCita(c)
	return nil
}

func (r *stubCitaRepo) Actualizar(_ context.Context, c *model.Cita) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.citas[c.ID]
	if !ok || stored.Version != c.Version {
		return apierror.ErrConflicto
	}
	c.Version++
	r.citas[c.ID] = copiaCita(c)
	return nil
}

func (r *stubCitaRepo) ListParaRecordatorio(_ context.Context, desde, hasta time.Time) ([]model.Cita, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Cita
	for _, c := range r.citas {
		if c.Estado == model.EstadoConfirmada && !c.RecordatorioEnviado &&
			enVentana(c.FechaHora, desde, hasta) {
			out = append(out, *copiaCita(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubCitaRepo) MarcarRecordatorio(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.citas[id]; ok {
		c.RecordatorioEnviado = true
	}
	return nil
}

func (r *stubCitaRepo) CountProgramadasEntre(_ context.Context, desde, hasta time.Time) (int64, error) {
	if err := r.fallas.de("CountProgramadasEntre"); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.citas {
		if c.Estado != model.EstadoCancelada && enVentana(c.FechaHora, desde, hasta) {
			n++
		}
	}
	return n, nil
}

func (r *stubCitaRepo) CountCanceladasEntre(_ context.Context, desde, hasta time.Time) (int64, error) {
	if err := r.fallas.de("CountCanceladasEntre"); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.citas {
		if c.Estado == model.EstadoCancelada && c.CanceladaAt != nil && enVentana(*c.CanceladaAt, desde, hasta) {
			n++
		}
	}
	return n, nil
}

func (r *stubCitaRepo) CountPorEstado(_ context.Context, desde, hasta time.Time) (map[model.EstadoCita]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.EstadoCita]int64{}
	for _, c := range r.citas {
		if enVentana(c.FechaHora, desde, hasta) {
			out[c.Estado]++
		}
	}
	return out, nil
}

func (r *stubCitaRepo) SumIngresosEntre(_ context.Context, desde, hasta time.Time) (decimal.Decimal, error) {
	if err := r.fallas.de("SumIngresosEntre"); err != nil {
		return decimal.Zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, c := range r.citas {
		if c.Estado == model.EstadoFinalizada && c.FinalizadaAt != nil && enVentana(*c.FinalizadaAt, desde, hasta) {
			total = total.Add(c.Total)
		}
	}
	return total, nil
}

func (r *stubCitaRepo) TopServicios(_ context.Context, desde, hasta time.Time, limit int) ([]dto.ServicioPopular, error) {
	if err := r.fallas.de("TopServicios"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	porID := map[uint]*dto.ServicioPopular{}
	for _, c := range r.citas {
		if c.Estado == model.EstadoCancelada || !enVentana(c.FechaHora, desde, hasta) {
			continue
		}
		for _, s := range c.Servicios {
			p, ok := porID[s.ServicioID]
			if !ok {
				p = &dto.ServicioPopular{ServicioID: s.ServicioID, Nombre: s.Nombre, Precio: s.Precio}
				porID[s.ServicioID] = p
			}
			p.Veces++
		}
	}
	out := make([]dto.ServicioPopular, 0, len(porID))
	for _, p := range porID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Veces != out[j].Veces {
			return out[i].Veces > out[j].Veces
		}
		return out[i].ServicioID < out[j].ServicioID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubCitaRepo) DB() *gorm.DB { return nil }

func enVentana(t, desde, hasta time.Time) bool {
	return !t.Before(desde) && t.Before(hasta)
}

// ── Notificaciones ────────────────────────────────────────────────────────────

type stubNotificacionRepo struct {
	mu     sync.Mutex
	notifs map[uint]*model.Notificacion
	nextID uint
	// fallarPara makes Create fail for these recipients.
	fallarPara map[uint]bool
}

func newStubNotificacionRepo() *stubNotificacionRepo {
	return &stubNotificacionRepo{notifs: map[uint]*model.Notificacion{}, nextID: 1, fallarPara: map[uint]bool{}}
}

func (r *stubNotificacionRepo) Create(ctx context.Context, n *model.Notificacion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fallarPara[n.UsuarioID] {
		return errDB
	}
	n.ID = r.nextID
	r.nextID++
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	cp := *n
	r.notifs[n.ID] = &cp
	return nil
}

func (r *stubNotificacionRepo) FindByID(_ context.Context, id uint) (*model.Notificacion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifs[id]
	if !ok {
		return nil, apierror.ErrNoEncontrado
	}
	cp := *n
	return &cp, nil
}

func (r *stubNotificacionRepo) SetLeida(_ context.Context, id uint, leida bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifs[id]
	if !ok {
		return apierror.ErrNoEncontrado
	}
	n.Leida = leida
	return nil
}

func (r *stubNotificacionRepo) MarcarTodasLeidas(_ context.Context, usuarioID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, x := range r.notifs {
		if x.UsuarioID == usuarioID && !x.Leida {
			x.Leida = true
			n++
		}
	}
	return n, nil
}

func (r *stubNotificacionRepo) CountNoLeidas(_ context.Context, usuarioID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, x := range r.notifs {
		if x.UsuarioID == usuarioID && !x.Leida {
			n++
		}
	}
	return n, nil
}

func (r *stubNotificacionRepo) ListByUsuario(_ context.Context, usuarioID uint, limit int) ([]model.Notificacion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notificacion
	for _, x := range r.notifs {
		if x.UsuarioID == usuarioID {
			out = append(out, *x)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubNotificacionRepo) porUsuario(usuarioID uint) []model.Notificacion {
	out, _ := r.ListByUsuario(context.Background(), usuarioID, 0)
	return out
}

// ── Gastos ────────────────────────────────────────────────────────────────────

type stubGastoRepo struct {
	mu     sync.Mutex
	gastos map[uint]*model.Gasto
	nextID uint
	fallas fallas
}

func newStubGastoRepo() *stubGastoRepo {
	return &stubGastoRepo{gastos: map[uint]*model.Gasto{}, nextID: 1}
}

func (r *stubGastoRepo) Create(_ context.Context, g *model.Gasto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g.ID = r.nextID
	r.nextID++
	cp := *g
	r.gastos[g.ID] = &cp
	return nil
}

func (r *stubGastoRepo) FindByID(_ context.Context, id uint) (*model.Gasto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gastos[id]
	if !ok {
		return nil, apierror.ErrNoEncontrado
	}
	cp := *g
	return &cp, nil
}

func (r *stubGastoRepo) List(_ context.Context, filter dto.GastoFilter) ([]model.Gasto, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []model.Gasto
	for _, g := range r.gastos {
		if filter.Tipo != "" && string(g.Tipo) != filter.Tipo {
			continue
		}
		all = append(all, *g)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Fecha.After(all[j].Fecha) })
	total := int64(len(all))
	from := (filter.Page - 1) * filter.Limit
	if from > len(all) {
		from = len(all)
	}
	to := from + filter.Limit
	if to > len(all) {
		to = len(all)
	}
	return all[from:to], total, nil
}

func (r *stubGastoRepo) Update(_ context.Context, g *model.Gasto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *g
	r.gastos[g.ID] = &cp
	return nil
}

func (r *stubGastoRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.gastos, id)
	return nil
}

func (r *stubGastoRepo) SumEntre(_ context.Context, desde, hasta time.Time) (decimal.Decimal, error) {
	if err := r.fallas.de("SumEntre"); err != nil {
		return decimal.Zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, g := range r.gastos {
		if enVentana(g.Fecha, desde, hasta) {
			total = total.Add(g.Monto)
		}
	}
	return total, nil
}

// ── Dispatch / queue fakes ────────────────────────────────────────────────────

type eventoDespachado struct {
	evento model.EventoCita
	citaID uint
	estado model.EstadoCita
}

// recDispatcher records every dispatched event.
type recDispatcher struct {
	mu     sync.Mutex
	events []eventoDespachado
}

func (d *recDispatcher) Dispatch(_ context.Context, evento model.EventoCita, c *model.Cita) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, eventoDespachado{evento: evento, citaID: c.ID, estado: c.Estado})
}

func (d *recDispatcher) eventos() []model.EventoCita {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.EventoCita, len(d.events))
	for i, e := range d.events {
		out[i] = e.evento
	}
	return out
}

type fakeCola struct {
	mu       sync.Mutex
	emails   []worker.EmailJobPayload
	telegram []worker.TelegramJobPayload
}

func (f *fakeCola) EncolarEmail(_ context.Context, p worker.EmailJobPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, p)
	return nil
}

func (f *fakeCola) EncolarTelegram(_ context.Context, p worker.TelegramJobPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.telegram = append(f.telegram, p)
	return nil
}
