package entity

import "time"

// Roles de usuario.
const (
	RoleAdmin    = "admin"
	RoleOperador = "operador"
)

// Usuario de la API (login JWT).
type Usuario struct {
	ID           string
	Email        string
	PasswordHash string
	EmpresaID    string
	Role         string
	Activo       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
