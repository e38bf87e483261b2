// cmd/seeduser/main.go: crea/actualiza el administrador inicial.
// Uso: ADMIN_EMAIL=... ADMIN_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"context"
	"os"
	"strings"

	"autolavado/internal/config"
	"autolavado/internal/infra"
	"autolavado/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	email := strings.ToLower(envOr("ADMIN_EMAIL", "admin@autolavado.com"))
	password := envOr("ADMIN_PASSWORD", "Admin1234")
	nombre := envOr("ADMIN_NOMBRE", "Administrador")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := infra.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	result := db.WithContext(context.Background()).Exec(`
		INSERT INTO usuarios (nombre, email, password_hash, rol, activo, created_at, updated_at)
		VALUES (?, ?, ?, ?, true, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    nombre = EXCLUDED.nombre,
		    rol = EXCLUDED.rol,
		    activo = true,
		    updated_at = NOW()
	`, nombre, email, string(hash), string(model.RolAdmin))

	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("insert")
	}
	log.Info().Str("email", email).Msg("administrador creado/actualizado")
}
