package tenancy

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Stores is the store record store.
type Stores interface {
	repository.Repository[*Store]

	ListActiveByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Store, error)
}

type stores struct {
	repository.Repository[*Store]
	db *bun.DB
}

var _ Stores = (*stores)(nil)

func NewStoresRepository(db *bun.DB) Stores {
	repo := repository.NewRepository[*Store](db, repository.ModelHandlers[*Store]{
		NewRecord: func() *Store { return &Store{} },
		GetID: func(s *Store) uuid.UUID {
			if s == nil {
				return uuid.Nil
			}
			return s.ID
		},
		SetID: func(s *Store, id uuid.UUID) {
			if s != nil {
				s.ID = id
			}
		},
		GetIdentifier: func() string {
			return "code"
		},
	})

	return &stores{
		Repository: repo,
		db:         db,
	}
}

// ListActiveByTenant returns the tenant's active stores ordered by name
// for deterministic display.
func (a *stores) ListActiveByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Store, error) {
	var records []*Store
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.tenant_id = ?", tenantID.String()).
		Where("?TableAlias.is_active = ?", true).
		Order("name ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	if records == nil {
		records = []*Store{}
	}

	return records, nil
}
