package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"autolavado/internal/apierror"
	"autolavado/internal/config"
	"autolavado/internal/dto"
	"autolavado/internal/model"
	"autolavado/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenAcceso  = "access"
	TokenRefresh = "refresh"
)

// bcryptCost is lowered by tests.
var bcryptCost = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Registrar(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)

	CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ObtenerUsuario(ctx context.Context, id uint) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context, filter dto.UsuarioFilter) ([]dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, id uint, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	EliminarUsuario(ctx context.Context, actor model.Actor, id uint) error
	ActivarUsuarios(ctx context.Context, ids []uint) (*dto.BulkResponse, error)
	DesactivarUsuarios(ctx context.Context, actor model.Actor, ids []uint) (*dto.BulkResponse, error)
	EliminarUsuarios(ctx context.Context, actor model.Actor, ids []uint) (*dto.BulkResponse, error)

	Perfil(ctx context.Context, actor model.Actor) (*dto.UsuarioResponse, error)
	ActualizarPerfil(ctx context.Context, actor model.Actor, req dto.ActualizarPerfilRequest) (*dto.UsuarioResponse, error)
	CambiarPassword(ctx context.Context, actor model.Actor, req dto.CambiarPasswordRequest) error
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

// ── Sesión ────────────────────────────────────────────────────────────────────

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apierror.ErrCredenciales
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.ErrCredenciales
	}
	return s.emitirTokens(user)
}

// Registrar creates a client account and signs it in.
func (s *authService) Registrar(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error) {
	user, err := s.crear(ctx, req.Nombre, req.Email, req.Telefono, req.Password, model.RolCliente)
	if err != nil {
		return nil, err
	}
	log.Info().Uint("usuario_id", user.ID).Msg("cliente registrado")
	return s.emitirTokens(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("refresh token invalido o expirado: %w", apierror.ErrNoAutenticado)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["tipo"] != TokenRefresh {
		return nil, fmt.Errorf("token mal formado: %w", apierror.ErrNoAutenticado)
	}
	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return nil, fmt.Errorf("token mal formado: %w", apierror.ErrNoAutenticado)
	}

	user, err := s.repo.FindByID(ctx, uint(rawID))
	if err != nil || !user.Activo {
		return nil, fmt.Errorf("usuario no encontrado o inactivo: %w", apierror.ErrNoAutenticado)
	}
	return s.emitirTokens(user)
}

func (s *authService) emitirTokens(user *model.Usuario) (*dto.LoginResponse, error) {
	area, err := model.AreaDeRol(user.Rol)
	if err != nil {
		log.Error().Err(err).Uint("usuario_id", user.ID).Msg("usuario con rol desconocido")
		return nil, err
	}
	access, err := s.generateToken(user, TokenAcceso, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(user, TokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		Redirect:     area.DashboardPath(),
		User:         toUsuarioResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, tipo string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"rol":     string(user.Rol),
		"tipo":    tipo,
		"jti":     uuid.NewString(),
		"exp":     now.Add(duration).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ── Usuarios (admin) ──────────────────────────────────────────────────────────

func (s *authService) CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	rol, err := model.ParseRol(req.Rol)
	if err != nil {
		return nil, err
	}
	user, err := s.crear(ctx, req.Nombre, req.Email, req.Telefono, req.Password, rol)
	if err != nil {
		return nil, err
	}
	resp := toUsuarioResponse(user)
	return &resp, nil
}

func (s *authService) crear(ctx context.Context, nombre, email string, telefono *string, password string, rol model.Rol) (*model.Usuario, error) {
	email = strings.TrimSpace(email)
	existe, err := s.repo.ExisteEmail(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, fmt.Errorf("email %s ya registrado: %w", email, apierror.ErrConflicto)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		Nombre:       strings.TrimSpace(nombre),
		Email:        email,
		Telefono:     telefono,
		PasswordHash: string(hash),
		Rol:          rol,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) ObtenerUsuario(ctx context.Context, id uint) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usuario %d: %w", id, err)
	}
	resp := toUsuarioResponse(user)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context, filter dto.UsuarioFilter) ([]dto.UsuarioResponse, error) {
	if filter.Rol != "" {
		if _, err := model.ParseRol(filter.Rol); err != nil {
			return nil, err
		}
	}
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = toUsuarioResponse(&users[i])
	}
	return resp, nil
}

// ActualizarUsuario edits an account. The role is fixed at creation: a
// request carrying a different role is rejected.
func (s *authService) ActualizarUsuario(ctx context.Context, id uint, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("usuario %d: %w", id, err)
	}
	if req.Rol != "" && model.Rol(req.Rol) != user.Rol {
		return nil, fmt.Errorf("el rol de un usuario no puede cambiarse: %w", apierror.ErrConflicto)
	}
	if req.Nombre != "" {
		user.Nombre = strings.TrimSpace(req.Nombre)
	}
	if req.Email != nil && !strings.EqualFold(*req.Email, user.Email) {
		existe, err := s.repo.ExisteEmail(ctx, *req.Email, user.ID)
		if err != nil {
			return nil, err
		}
		if existe {
			return nil, fmt.Errorf("email %s ya registrado: %w", *req.Email, apierror.ErrConflicto)
		}
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Telefono != nil {
		user.Telefono = req.Telefono
	}
	if req.Activo != nil {
		user.Activo = *req.Activo
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := toUsuarioResponse(user)
	return &resp, nil
}

// EliminarUsuario deletes an account with no appointments. Accounts with
// history must be deactivated instead.
func (s *authService) EliminarUsuario(ctx context.Context, actor model.Actor, id uint) error {
	if id == actor.UsuarioID {
		return fmt.Errorf("no puede eliminarse a si mismo: %w", apierror.ErrConflicto)
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("usuario %d: %w", id, err)
	}
	n, err := s.repo.DeleteSinCitas(ctx, []uint{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("usuario %d tiene citas, desactivelo: %w", id, apierror.ErrConflicto)
	}
	return nil
}

func (s *authService) ActivarUsuarios(ctx context.Context, ids []uint) (*dto.BulkResponse, error) {
	n, err := s.repo.SetActivo(ctx, ids, true)
	if err != nil {
		return nil, err
	}
	return &dto.BulkResponse{Solicitados: len(ids), Afectados: n}, nil
}

// DesactivarUsuarios skips the caller's own account.
func (s *authService) DesactivarUsuarios(ctx context.Context, actor model.Actor, ids []uint) (*dto.BulkResponse, error) {
	n, err := s.repo.SetActivo(ctx, sinActor(ids, actor), false)
	if err != nil {
		return nil, err
	}
	return &dto.BulkResponse{Solicitados: len(ids), Afectados: n}, nil
}

// EliminarUsuarios deletes the accounts without appointments, skipping the
// caller; the rest are left untouched and show up as the difference
// between Solicitados and Afectados.
func (s *authService) EliminarUsuarios(ctx context.Context, actor model.Actor, ids []uint) (*dto.BulkResponse, error) {
	n, err := s.repo.DeleteSinCitas(ctx, sinActor(ids, actor))
	if err != nil {
		return nil, err
	}
	return &dto.BulkResponse{Solicitados: len(ids), Afectados: n}, nil
}

func sinActor(ids []uint, actor model.Actor) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != actor.UsuarioID {
			out = append(out, id)
		}
	}
	return out
}

// ── Perfil ────────────────────────────────────────────────────────────────────

func (s *authService) Perfil(ctx context.Context, actor model.Actor) (*dto.UsuarioResponse, error) {
	return s.ObtenerUsuario(ctx, actor.UsuarioID)
}

func (s *authService) ActualizarPerfil(ctx context.Context, actor model.Actor, req dto.ActualizarPerfilRequest) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, actor.UsuarioID)
	if err != nil {
		return nil, err
	}
	if req.Nombre != "" {
		user.Nombre = strings.TrimSpace(req.Nombre)
	}
	if req.Telefono != nil {
		user.Telefono = req.Telefono
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := toUsuarioResponse(user)
	return &resp, nil
}

func (s *authService) CambiarPassword(ctx context.Context, actor model.Actor, req dto.CambiarPasswordRequest) error {
	user, err := s.repo.FindByID(ctx, actor.UsuarioID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.PasswordActual)); err != nil {
		return fmt.Errorf("contraseña actual incorrecta: %w", apierror.ErrCredenciales)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return s.repo.Update(ctx, user)
}
