package repository

import (
	"context"

	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
)

// EmpresaRepository puerto de persistencia de empresas (emisores).
type EmpresaRepository interface {
	Create(ctx context.Context, empresa *entity.Empresa) error
	Update(ctx context.Context, empresa *entity.Empresa) error
	GetByID(ctx context.Context, id string) (*entity.Empresa, error)
	// GetByCUIT devuelve la empresa con ese CUIT, o nil si no existe.
	GetByCUIT(ctx context.Context, cuit string) (*entity.Empresa, error)
	// FirstConCredencial devuelve la primera empresa activa con cert y llave
	// embebidos, o nil si no hay ninguna.
	FirstConCredencial(ctx context.Context) (*entity.Empresa, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Empresa, error)
}
