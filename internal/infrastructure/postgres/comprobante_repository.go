package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/facturador-afip/internal/domain"
	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
	"github.com/tu-usuario/facturador-afip/internal/domain/repository"
)

// Asegura que ComprobanteRepo implementa repository.ComprobanteRepository.
var _ repository.ComprobanteRepository = (*ComprobanteRepo)(nil)

// ComprobanteRepo implementación del puerto ComprobanteRepository sobre
// PostgreSQL. Los tributos se guardan como JSONB.
type ComprobanteRepo struct {
	pool *pgxpool.Pool
}

// NewComprobanteRepository construye el adaptador de persistencia de comprobantes.
func NewComprobanteRepository(pool *pgxpool.Pool) *ComprobanteRepo {
	return &ComprobanteRepo{pool: pool}
}

const comprobanteColumns = `id, empresa_id, venta_id, tipo, punto_venta, numero,
	cuit_emisor, tipo_doc_receptor, nro_doc_receptor,
	importe_total, importe_neto, importe_iva, tributos, aplicar_desglose_77,
	estado, cae, vencimiento_cae, qr_url, errores, created_at, updated_at`

// Create persiste un comprobante nuevo.
func (r *ComprobanteRepo) Create(ctx context.Context, c *entity.Comprobante) error {
	tributos, err := json.Marshal(c.Tributos)
	if err != nil {
		return fmt.Errorf("serializar tributos: %w", err)
	}
	query := `
		INSERT INTO comprobantes (` + comprobanteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err = r.pool.Exec(ctx, query,
		c.ID, c.EmpresaID, c.VentaID, c.Tipo, c.PuntoVenta, c.Numero,
		c.CUITEmisor, c.TipoDocReceptor, c.NroDocReceptor,
		c.ImporteTotal, c.ImporteNeto, c.ImporteIVA, tributos, c.AplicarDesglose77,
		c.Estado, c.CAE, c.VencimientoCAE, c.QRURL, c.Errores,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert comprobante: %w", err)
	}
	return nil
}

// Update actualiza el resultado de un comprobante (estado, CAE, errores).
func (r *ComprobanteRepo) Update(ctx context.Context, c *entity.Comprobante) error {
	query := `
		UPDATE comprobantes SET numero = $2, estado = $3, cae = $4,
			vencimiento_cae = $5, qr_url = $6, errores = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query,
		c.ID, c.Numero, c.Estado, c.CAE, c.VencimientoCAE, c.QRURL, c.Errores, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update comprobante: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un comprobante por ID, o nil si no existe.
func (r *ComprobanteRepo) GetByID(ctx context.Context, id string) (*entity.Comprobante, error) {
	query := `SELECT ` + comprobanteColumns + ` FROM comprobantes WHERE id = $1`
	c, err := scanComprobante(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get comprobante: %w", err)
	}
	return c, nil
}

// ListByEmpresa lista los comprobantes de un emisor, más recientes primero.
func (r *ComprobanteRepo) ListByEmpresa(ctx context.Context, empresaID string, limit, offset int) ([]*entity.Comprobante, error) {
	query := `
		SELECT ` + comprobanteColumns + `
		FROM comprobantes WHERE empresa_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, empresaID, limit, offset)
}

// ListByEstado lista comprobantes de un emisor en un estado dado (ej.
// ERROR_TRANSITORIO para reprocesos).
func (r *ComprobanteRepo) ListByEstado(ctx context.Context, empresaID, estado string, limit, offset int) ([]*entity.Comprobante, error) {
	query := `
		SELECT ` + comprobanteColumns + `
		FROM comprobantes WHERE empresa_id = $1 AND estado = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	return r.list(ctx, query, empresaID, estado, limit, offset)
}

func (r *ComprobanteRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Comprobante, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comprobantes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Comprobante
	for rows.Next() {
		c, err := scanComprobante(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comprobante: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanComprobante(row pgx.Row) (*entity.Comprobante, error) {
	var c entity.Comprobante
	var tributos []byte
	err := row.Scan(
		&c.ID, &c.EmpresaID, &c.VentaID, &c.Tipo, &c.PuntoVenta, &c.Numero,
		&c.CUITEmisor, &c.TipoDocReceptor, &c.NroDocReceptor,
		&c.ImporteTotal, &c.ImporteNeto, &c.ImporteIVA, &tributos, &c.AplicarDesglose77,
		&c.Estado, &c.CAE, &c.VencimientoCAE, &c.QRURL, &c.Errores,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(tributos) > 0 {
		if err := json.Unmarshal(tributos, &c.Tributos); err != nil {
			return nil, fmt.Errorf("deserializar tributos: %w", err)
		}
	}
	return &c, nil
}
