package tenancy

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// Resolution is the outcome of a tenant lookup: the tenant plus its
// active stores ordered by name.
type Resolution struct {
	Tenant *Tenant  `json:"tenant"`
	Stores []*Store `json:"stores"`
}

// Resolver maps an inbound domain or slug to an active tenant and its
// active stores. Resolution is a pure read, no tenant or store rows are
// mutated.
type Resolver struct {
	repo   RepositoryManager
	logger Logger
}

// NewResolver returns a tenant resolver backed by the given repositories.
func NewResolver(repo RepositoryManager) *Resolver {
	return &Resolver{
		repo:   repo,
		logger: defLogger{},
	}
}

func (r *Resolver) WithLogger(logger Logger) *Resolver {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Resolve looks up a tenant by domain or slug, exactly one is expected.
// Inactive tenants never resolve.
func (r *Resolver) Resolve(ctx context.Context, domain, slug string) (*Resolution, error) {
	domain = strings.TrimSpace(domain)
	slug = strings.TrimSpace(slug)

	if domain == "" && slug == "" {
		return nil, ErrInvalidResolutionRequest
	}

	var tenant *Tenant
	var err error

	if domain != "" {
		tenant, err = r.repo.Tenants().GetActiveByDomain(ctx, domain)
	} else {
		tenant, err = r.repo.Tenants().GetActiveBySlug(ctx, slug)
	}

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrTenantNotFound.WithMetadata(map[string]any{
				"domain": domain,
				"slug":   slug,
			})
		}
		return nil, err
	}

	return r.resolveStores(ctx, tenant)
}

// ResolveByID resolves the tenant referenced by a profile's tenant id.
// Bootstrap uses this to populate the session context once a profile is
// known to be tenant bound.
func (r *Resolver) ResolveByID(ctx context.Context, tenantID uuid.UUID) (*Resolution, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidResolutionRequest
	}

	tenant, err := r.repo.Tenants().GetActiveByID(ctx, tenantID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrTenantNotFound.WithMetadata(map[string]any{
				"tenant_id": tenantID.String(),
			})
		}
		return nil, err
	}

	return r.resolveStores(ctx, tenant)
}

func (r *Resolver) resolveStores(ctx context.Context, tenant *Tenant) (*Resolution, error) {
	stores, err := r.repo.Stores().ListActiveByTenant(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	return &Resolution{
		Tenant: tenant,
		Stores: stores,
	}, nil
}
