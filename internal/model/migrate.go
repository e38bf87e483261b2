package model

// Todos returns every persisted model in dependency order for AutoMigrate.
func Todos() []interface{} {
	return []interface{}{
		&Usuario{},
		&Servicio{},
		&Vehiculo{},
		&Cita{},
		&CitaServicio{},
		&Notificacion{},
		&Gasto{},
	}
}
