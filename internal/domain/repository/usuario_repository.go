package repository

import (
	"context"

	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
)

// UsuarioRepository puerto de persistencia de usuarios.
type UsuarioRepository interface {
	Create(ctx context.Context, usuario *entity.Usuario) error
	GetByEmail(ctx context.Context, email string) (*entity.Usuario, error)
	GetByID(ctx context.Context, id string) (*entity.Usuario, error)
}
