package repository

import (
	"context"

	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
)

// CredencialRepository puerto de lectura del almacén dedicado de credenciales.
// El core es solo-lectura sobre este almacén: la administración de registros
// vive fuera.
type CredencialRepository interface {
	// GetActivaByCUIT devuelve la credencial activa del CUIT, o nil si no hay.
	GetActivaByCUIT(ctx context.Context, cuit string) (*entity.CredencialAFIP, error)
	// FirstActiva devuelve la primera credencial activa y completa que exista,
	// sin importar el CUIT ("first found"). Nil si no hay ninguna.
	FirstActiva(ctx context.Context) (*entity.CredencialAFIP, error)
}
