package dto

import "time"

// RegisterRequest entrada para registro de un usuario de la API.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	EmpresaID string `json:"empresa_id"`
	Role      string `json:"role"` // admin | operador; vacío = operador
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	EmpresaID string    `json:"empresa_id"`
	Role      string    `json:"role"`
	Activo    bool      `json:"activo"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
