package infra

import (
	"fmt"

	"autolavado/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the Postgres pool and brings the schema up to date.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs AutoMigrate for every model and then the idempotent index
// patches AutoMigrate cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.Todos()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// revenue sums scan finished appointments by finish time
		{"idx_citas_finalizadas", `CREATE INDEX IF NOT EXISTS idx_citas_finalizadas
			ON citas (finalizada_at) WHERE estado = 'finalizada'`},
		{"idx_citas_recordatorio", `CREATE INDEX IF NOT EXISTS idx_citas_recordatorio
			ON citas (fecha_hora) WHERE estado = 'confirmada' AND recordatorio_enviado = false`},
		{"idx_notificaciones_listado", `CREATE INDEX IF NOT EXISTS idx_notificaciones_listado
			ON notificaciones (usuario_id, created_at DESC, id DESC)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("%s: %w", p.descr, err)
		}
	}
	return nil
}
