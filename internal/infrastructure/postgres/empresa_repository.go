package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/facturador-afip/internal/domain"
	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
	"github.com/tu-usuario/facturador-afip/internal/domain/repository"
)

// Asegura que EmpresaRepo implementa repository.EmpresaRepository.
var _ repository.EmpresaRepository = (*EmpresaRepo)(nil)

// EmpresaRepo implementación del puerto EmpresaRepository sobre PostgreSQL.
type EmpresaRepo struct {
	pool *pgxpool.Pool
}

// NewEmpresaRepository construye el adaptador de persistencia para empresas.
func NewEmpresaRepository(pool *pgxpool.Pool) *EmpresaRepo {
	return &EmpresaRepo{pool: pool}
}

const empresaColumns = `id, razon_social, cuit, condicion_iva, punto_venta,
	certificado_pem, clave_privada_pem, email, activa, created_at, updated_at`

// Create persiste un nuevo emisor.
func (r *EmpresaRepo) Create(ctx context.Context, e *entity.Empresa) error {
	query := `
		INSERT INTO empresas (` + empresaColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.pool.Exec(ctx, query,
		e.ID, e.RazonSocial, e.CUIT, e.CondicionIVA, e.PuntoVenta,
		e.CertificadoPEM, e.ClavePrivadaPEM, e.Email, e.Activa,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert empresa: %w", err)
	}
	return nil
}

// Update actualiza un emisor existente.
func (r *EmpresaRepo) Update(ctx context.Context, e *entity.Empresa) error {
	query := `
		UPDATE empresas SET razon_social = $2, condicion_iva = $3, punto_venta = $4,
			certificado_pem = $5, clave_privada_pem = $6, email = $7, activa = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query,
		e.ID, e.RazonSocial, e.CondicionIVA, e.PuntoVenta,
		e.CertificadoPEM, e.ClavePrivadaPEM, e.Email, e.Activa, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update empresa: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un emisor por ID, o nil si no existe.
func (r *EmpresaRepo) GetByID(ctx context.Context, id string) (*entity.Empresa, error) {
	query := `SELECT ` + empresaColumns + ` FROM empresas WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id), "get empresa")
}

// GetByCUIT obtiene un emisor por CUIT, o nil si no existe.
func (r *EmpresaRepo) GetByCUIT(ctx context.Context, cuit string) (*entity.Empresa, error) {
	query := `SELECT ` + empresaColumns + ` FROM empresas WHERE cuit = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, cuit), "get empresa by cuit")
}

// FirstConCredencial devuelve la primera empresa activa con certificado y
// llave embebidos. El orden por created_at hace la selección estable.
func (r *EmpresaRepo) FirstConCredencial(ctx context.Context) (*entity.Empresa, error) {
	query := `
		SELECT ` + empresaColumns + `
		FROM empresas
		WHERE activa AND certificado_pem <> '' AND clave_privada_pem <> ''
		ORDER BY created_at
		LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, query), "first empresa con credencial")
}

// List lista emisores paginados.
func (r *EmpresaRepo) List(ctx context.Context, limit, offset int) ([]*entity.Empresa, error) {
	query := `SELECT ` + empresaColumns + ` FROM empresas ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list empresas: %w", err)
	}
	defer rows.Close()

	var out []*entity.Empresa
	for rows.Next() {
		var e entity.Empresa
		if err := scanEmpresa(rows, &e); err != nil {
			return nil, fmt.Errorf("scan empresa: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *EmpresaRepo) scanOne(row pgx.Row, op string) (*entity.Empresa, error) {
	var e entity.Empresa
	if err := scanEmpresa(row, &e); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &e, nil
}

func scanEmpresa(row pgx.Row, e *entity.Empresa) error {
	return row.Scan(
		&e.ID, &e.RazonSocial, &e.CUIT, &e.CondicionIVA, &e.PuntoVenta,
		&e.CertificadoPEM, &e.ClavePrivadaPEM, &e.Email, &e.Activa,
		&e.CreatedAt, &e.UpdatedAt,
	)
}
