package dto

type CrearVehiculoRequest struct {
	// UsuarioID is honoured only for admins; clients always own what they register.
	UsuarioID uint    `json:"usuario_id"`
	Marca     string  `json:"marca"  validate:"required,min=2,max=50"`
	Modelo    string  `json:"modelo" validate:"required,min=1,max=50"`
	Placa     string  `json:"placa"  validate:"required,min=3,max=15"`
	Color     *string `json:"color"  validate:"omitempty,max=30"`
}

type ActualizarVehiculoRequest struct {
	Marca  string  `json:"marca"  validate:"omitempty,min=2,max=50"`
	Modelo string  `json:"modelo" validate:"omitempty,min=1,max=50"`
	Placa  string  `json:"placa"  validate:"omitempty,min=3,max=15"`
	Color  *string `json:"color"  validate:"omitempty,max=30"`
}

type VehiculoResponse struct {
	ID        uint    `json:"id"`
	UsuarioID uint    `json:"usuario_id"`
	Marca     string  `json:"marca"`
	Modelo    string  `json:"modelo"`
	Placa     string  `json:"placa"`
	Color     *string `json:"color"`
}
