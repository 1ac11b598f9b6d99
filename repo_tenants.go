package tenancy

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tenants is the tenant record store.
type Tenants interface {
	repository.Repository[*Tenant]

	GetActiveByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetActiveBySlug(ctx context.Context, slug string) (*Tenant, error)
	GetActiveByDomain(ctx context.Context, domain string) (*Tenant, error)
}

type tenants struct {
	repository.Repository[*Tenant]
	db *bun.DB
}

var _ Tenants = (*tenants)(nil)

func NewTenantsRepository(db *bun.DB) Tenants {
	repo := repository.NewRepository[*Tenant](db, repository.ModelHandlers[*Tenant]{
		NewRecord: func() *Tenant { return &Tenant{} },
		GetID: func(t *Tenant) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Tenant, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "slug"
		},
	})

	return &tenants{
		Repository: repo,
		db:         db,
	}
}

func (a *tenants) GetActiveByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return a.getActiveWhere(ctx, "?TableAlias.id = ?", id.String())
}

func (a *tenants) GetActiveBySlug(ctx context.Context, slug string) (*Tenant, error) {
	return a.getActiveWhere(ctx, "?TableAlias.slug = ?", slug)
}

func (a *tenants) GetActiveByDomain(ctx context.Context, domain string) (*Tenant, error) {
	return a.getActiveWhere(ctx, "?TableAlias.domain = ?", domain)
}

// getActiveWhere matches at most one row: slug and domain carry unique
// constraints among active tenants.
func (a *tenants) getActiveWhere(ctx context.Context, clause string, value string) (*Tenant, error) {
	record := &Tenant{}
	err := a.db.NewSelect().
		Model(record).
		Where(clause, value).
		Where("?TableAlias.is_active = ?", true).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"lookup": value,
				})
		}
		return nil, err
	}

	return record, nil
}
