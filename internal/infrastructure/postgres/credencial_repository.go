package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
	"github.com/tu-usuario/facturador-afip/internal/domain/repository"
)

// Asegura que CredencialRepo implementa repository.CredencialRepository.
var _ repository.CredencialRepository = (*CredencialRepo)(nil)

// CredencialRepo lectura del almacén dedicado de credenciales AFIP.
// El core nunca escribe en esta tabla.
type CredencialRepo struct {
	pool *pgxpool.Pool
}

// NewCredencialRepository construye el adaptador del almacén de credenciales.
func NewCredencialRepository(pool *pgxpool.Pool) *CredencialRepo {
	return &CredencialRepo{pool: pool}
}

const credencialColumns = `id, cuit, certificado_pem, clave_privada_pem, activa, created_at, updated_at`

// GetActivaByCUIT devuelve la credencial activa del CUIT, o nil si no hay.
// Con más de un registro activo gana el más reciente.
func (r *CredencialRepo) GetActivaByCUIT(ctx context.Context, cuit string) (*entity.CredencialAFIP, error) {
	query := `
		SELECT ` + credencialColumns + `
		FROM credenciales_afip
		WHERE cuit = $1 AND activa
		ORDER BY updated_at DESC
		LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, query, cuit), "get credencial by cuit")
}

// FirstActiva devuelve la primera credencial activa y completa, sin importar
// el CUIT. El orden por created_at hace la selección estable entre llamadas.
func (r *CredencialRepo) FirstActiva(ctx context.Context) (*entity.CredencialAFIP, error) {
	query := `
		SELECT ` + credencialColumns + `
		FROM credenciales_afip
		WHERE activa AND certificado_pem <> '' AND clave_privada_pem <> ''
		ORDER BY created_at
		LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, query), "first credencial activa")
}

func (r *CredencialRepo) scanOne(row pgx.Row, op string) (*entity.CredencialAFIP, error) {
	var c entity.CredencialAFIP
	err := row.Scan(&c.ID, &c.CUIT, &c.CertificadoPEM, &c.ClavePrivadaPEM, &c.Activa, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}
