package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/tu-usuario/facturador-afip/internal/domain"
	"github.com/tu-usuario/facturador-afip/internal/domain/entity"
	"github.com/tu-usuario/facturador-afip/internal/domain/repository"
	"github.com/tu-usuario/facturador-afip/pkg/logger"
)

// CredencialResuelta es el resultado de la resolución: a nombre de qué CUIT se
// firma, con qué material y de qué fuente salió.
type CredencialResuelta struct {
	CUIT            string
	CertificadoPEM  string
	ClavePrivadaPEM string
	Fuente          string // entity.Fuente*
}

// ResolverCredenciales localiza la credencial de firma de un emisor entre las
// fuentes disponibles, en orden estricto de prioridad:
//
//  1. almacén dedicado de credenciales (registro activo y completo);
//  2. cert/llave embebidos en la configuración de la empresa;
//  3. sin CUIT pedido: primera credencial activa de cualquier fuente
//     administrada ("first found", solo política no estricta);
//  4. vault local de archivos por CUIT;
//  5. credencial de entorno (flag + terna completa).
//
// Con política estricta la resolución nunca pasa de la fuente 2: una petición
// sin contexto de emisor explícito no debe firmar bajo una identidad ajena.
//
// El resolver es solo-lectura y no cachea entre llamadas: la política es por
// llamada y el material puede rotar por debajo.
type ResolverCredenciales struct {
	credRepo    repository.CredencialRepository
	empresaRepo repository.EmpresaRepository
	vault       VaultCredenciales
	entorno     CredencialEntorno
	log         *logger.Logger
}

// NewResolverCredenciales construye el resolver. vault puede ser nil.
func NewResolverCredenciales(
	credRepo repository.CredencialRepository,
	empresaRepo repository.EmpresaRepository,
	vault VaultCredenciales,
	entorno CredencialEntorno,
	log *logger.Logger,
) *ResolverCredenciales {
	return &ResolverCredenciales{
		credRepo:    credRepo,
		empresaRepo: empresaRepo,
		vault:       vault,
		entorno:     entorno,
		log:         log,
	}
}

// Resolve localiza la credencial para el CUIT pedido (vacío = sin emisor
// explícito) bajo la política dada. Devuelve ErrCredencialNoEncontrada si
// ninguna fuente permitida produjo una credencial completa.
func (r *ResolverCredenciales) Resolve(ctx context.Context, cuit string, pol PoliticaResolucion) (*CredencialResuelta, error) {
	cuit = strings.TrimSpace(cuit)

	if cuit == "" {
		if pol.Estricta {
			return nil, fmt.Errorf("%w: modo estricto sin CUIT explícito", domain.ErrCredencialNoEncontrada)
		}
		return r.resolverAnonimo(ctx)
	}

	// 1. Almacén dedicado.
	cred, err := r.credRepo.GetActivaByCUIT(ctx, cuit)
	if err != nil {
		return nil, fmt.Errorf("resolver: consultar almacén de credenciales: %w", err)
	}
	if cred != nil && cred.Completa() {
		return &CredencialResuelta{
			CUIT:            cred.CUIT,
			CertificadoPEM:  cred.CertificadoPEM,
			ClavePrivadaPEM: cred.ClavePrivadaPEM,
			Fuente:          entity.FuenteAlmacenDedicado,
		}, nil
	}

	// 2. Configuración de la empresa.
	empresa, err := r.empresaRepo.GetByCUIT(ctx, cuit)
	if err != nil {
		return nil, fmt.Errorf("resolver: consultar empresa: %w", err)
	}
	if empresa != nil && empresa.TieneCredencial() {
		return &CredencialResuelta{
			CUIT:            empresa.CUIT,
			CertificadoPEM:  empresa.CertificadoPEM,
			ClavePrivadaPEM: empresa.ClavePrivadaPEM,
			Fuente:          entity.FuenteConfigEmpresa,
		}, nil
	}

	// Modo estricto: sin vault ni entorno, aunque existan. Es preferible no
	// facturar a firmar con la identidad de otro emisor.
	if pol.Estricta {
		return nil, fmt.Errorf("%w: CUIT %s sin credencial en fuentes administradas (modo estricto)",
			domain.ErrCredencialNoEncontrada, cuit)
	}

	// 4. Vault local, clave = solo dígitos.
	if r.vault != nil && r.vault.Habilitado() {
		certPEM, keyPEM, err := r.vault.Get(soloDigitos(cuit))
		if err != nil {
			return nil, fmt.Errorf("resolver: vault local: %w", err)
		}
		if certPEM != "" && keyPEM != "" {
			return &CredencialResuelta{
				CUIT:            soloDigitos(cuit),
				CertificadoPEM:  certPEM,
				ClavePrivadaPEM: keyPEM,
				Fuente:          entity.FuenteVaultLocal,
			}, nil
		}
	}

	// 5. Entorno.
	if res := r.credencialDeEntorno(); res != nil {
		return res, nil
	}

	return nil, fmt.Errorf("%w: CUIT %s", domain.ErrCredencialNoEncontrada, cuit)
}

// resolverAnonimo selecciona la primera credencial disponible cuando la
// petición no trae CUIT (política no estricta). La selección es arbitraria
// entre emisores; se loguea en Warn para que la sustitución quede auditada.
func (r *ResolverCredenciales) resolverAnonimo(ctx context.Context) (*CredencialResuelta, error) {
	cred, err := r.credRepo.FirstActiva(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolver: primera credencial del almacén: %w", err)
	}
	if cred != nil && cred.Completa() {
		r.log.Warn().Str("cuit", cred.CUIT).Str("fuente", entity.FuenteAlmacenDedicado).
			Msg("emisión sin CUIT explícito: se selecciona una credencial arbitraria")
		return &CredencialResuelta{
			CUIT:            cred.CUIT,
			CertificadoPEM:  cred.CertificadoPEM,
			ClavePrivadaPEM: cred.ClavePrivadaPEM,
			Fuente:          entity.FuenteAlmacenDedicado,
		}, nil
	}

	empresa, err := r.empresaRepo.FirstConCredencial(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolver: primera empresa con credencial: %w", err)
	}
	if empresa != nil {
		r.log.Warn().Str("cuit", empresa.CUIT).Str("fuente", entity.FuenteConfigEmpresa).
			Msg("emisión sin CUIT explícito: se selecciona una credencial arbitraria")
		return &CredencialResuelta{
			CUIT:            empresa.CUIT,
			CertificadoPEM:  empresa.CertificadoPEM,
			ClavePrivadaPEM: empresa.ClavePrivadaPEM,
			Fuente:          entity.FuenteConfigEmpresa,
		}, nil
	}

	// El vault se indexa por CUIT: sin CUIT no hay entrada que consultar.
	if res := r.credencialDeEntorno(); res != nil {
		return res, nil
	}

	return nil, fmt.Errorf("%w: sin CUIT y sin credenciales disponibles", domain.ErrCredencialNoEncontrada)
}

func (r *ResolverCredenciales) credencialDeEntorno() *CredencialResuelta {
	if !r.entorno.Habilitada || !r.entorno.Completa() {
		return nil
	}
	return &CredencialResuelta{
		CUIT:            soloDigitos(r.entorno.CUIT),
		CertificadoPEM:  r.entorno.CertPEM,
		ClavePrivadaPEM: r.entorno.ClavePrivada,
		Fuente:          entity.FuenteEntorno,
	}
}

func soloDigitos(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
