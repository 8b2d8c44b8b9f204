package empresa

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/facturador-afip/internal/application/dto"
	"github.com/tu-usuario/facturador-afip/internal/domain"
	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
	"github.com/tu-usuario/facturador-afip/internal/domain/repository"
	pkgafip "github.com/tu-usuario/facturador-afip/pkg/afip"
)

// EmpresaUseCase administración de emisores (empresas).
type EmpresaUseCase struct {
	repo repository.EmpresaRepository
}

// NewEmpresaUseCase construye el caso de uso de empresas.
func NewEmpresaUseCase(repo repository.EmpresaRepository) *EmpresaUseCase {
	return &EmpresaUseCase{repo: repo}
}

// Create da de alta un emisor. El CUIT se normaliza a solo dígitos y debe
// pasar el dígito verificador; la condición IVA debe ser una del catálogo.
func (uc *EmpresaUseCase) Create(ctx context.Context, in dto.CreateEmpresaRequest) (*dto.EmpresaResponse, error) {
	cuit := pkgafip.NormalizarCUIT(in.CUIT)
	if err := pkgafip.ValidarCUIT(cuit); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	cond := pkgafip.ParseCondicionIVA(in.CondicionIVA)
	if cond == pkgafip.NoCategorizado {
		return nil, fmt.Errorf("%w: condición IVA %q no reconocida", domain.ErrInvalidInput, in.CondicionIVA)
	}
	existente, err := uc.repo.GetByCUIT(ctx, cuit)
	if err != nil {
		return nil, err
	}
	if existente != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	e := &entity.Empresa{
		ID:              uuid.New().String(),
		RazonSocial:     in.RazonSocial,
		CUIT:            cuit,
		CondicionIVA:    string(cond),
		PuntoVenta:      in.PuntoVenta,
		CertificadoPEM:  in.CertificadoPEM,
		ClavePrivadaPEM: in.ClavePrivadaPEM,
		Email:           in.Email,
		Activa:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return toResponse(e), nil
}

// Update aplica una actualización parcial sobre el emisor.
func (uc *EmpresaUseCase) Update(ctx context.Context, id string, in dto.UpdateEmpresaRequest) (*dto.EmpresaResponse, error) {
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}

	if in.RazonSocial != nil {
		e.RazonSocial = *in.RazonSocial
	}
	if in.CondicionIVA != nil {
		cond := pkgafip.ParseCondicionIVA(*in.CondicionIVA)
		if cond == pkgafip.NoCategorizado {
			return nil, fmt.Errorf("%w: condición IVA %q no reconocida", domain.ErrInvalidInput, *in.CondicionIVA)
		}
		e.CondicionIVA = string(cond)
	}
	if in.PuntoVenta != nil {
		e.PuntoVenta = *in.PuntoVenta
	}
	if in.CertificadoPEM != nil {
		e.CertificadoPEM = *in.CertificadoPEM
	}
	if in.ClavePrivadaPEM != nil {
		e.ClavePrivadaPEM = *in.ClavePrivadaPEM
	}
	if in.Email != nil {
		e.Email = *in.Email
	}
	if in.Activa != nil {
		e.Activa = *in.Activa
	}
	e.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return toResponse(e), nil
}

// GetByID devuelve un emisor, o ErrNotFound.
func (uc *EmpresaUseCase) GetByID(ctx context.Context, id string) (*dto.EmpresaResponse, error) {
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	return toResponse(e), nil
}

// List lista emisores paginados.
func (uc *EmpresaUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.EmpresaResponse, error) {
	page.DefaultPage()
	empresas, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EmpresaResponse, 0, len(empresas))
	for _, e := range empresas {
		out = append(out, *toResponse(e))
	}
	return out, nil
}

func toResponse(e *entity.Empresa) *dto.EmpresaResponse {
	return &dto.EmpresaResponse{
		ID:           e.ID,
		RazonSocial:  e.RazonSocial,
		CUIT:         e.CUIT,
		CondicionIVA: e.CondicionIVA,
		PuntoVenta:   e.PuntoVenta,
		TieneCert:    e.TieneCredencial(),
		Email:        e.Email,
		Activa:       e.Activa,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
