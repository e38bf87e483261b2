package model

import (
	"time"
)

// Usuario stores every account of the system.
// Rol: "admin" | "empleado" | "cliente"; fixed after creation.
type Usuario struct {
	ID           uint    `gorm:"primaryKey"`
	Nombre       string  `gorm:"not null"`
	Email        string  `gorm:"uniqueIndex;not null"`
	Telefono     *string `gorm:"type:varchar(30)"`
	PasswordHash string  `gorm:"not null"`
	Rol          Rol     `gorm:"type:varchar(20);not null;index"`
	Activo       bool    `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Vehiculos []Vehiculo `gorm:"foreignKey:UsuarioID"`
}
