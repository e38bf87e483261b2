package model

import "time"

// Vehiculo belongs to exactly one client.
type Vehiculo struct {
	ID        uint    `gorm:"primaryKey"`
	UsuarioID uint    `gorm:"not null;index"`
	Marca     string  `gorm:"not null"`
	Modelo    string  `gorm:"not null"`
	Placa     string  `gorm:"uniqueIndex;not null"`
	Color     *string `gorm:"type:varchar(30)"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Usuario *Usuario `gorm:"foreignKey:UsuarioID"`
}
