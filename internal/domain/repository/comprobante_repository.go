package repository

import (
	"context"

	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
)

// ComprobanteRepository puerto de persistencia de comprobantes fiscales.
type ComprobanteRepository interface {
	Create(ctx context.Context, comprobante *entity.Comprobante) error
	Update(ctx context.Context, comprobante *entity.Comprobante) error
	GetByID(ctx context.Context, id string) (*entity.Comprobante, error)
	ListByEmpresa(ctx context.Context, empresaID string, limit, offset int) ([]*entity.Comprobante, error)
	// ListByEstado lista comprobantes en un estado dado (ej. ERROR_TRANSITORIO
	// para reprocesos desde el log de fallas).
	ListByEstado(ctx context.Context, empresaID, estado string, limit, offset int) ([]*entity.Comprobante, error)
}
