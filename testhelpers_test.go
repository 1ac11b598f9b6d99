package tenancy_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/goliatone/go-tenancy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	sqliteCreateProfiles = `CREATE TABLE profiles (
    id TEXT NOT NULL PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    full_name TEXT,
    user_role TEXT NOT NULL,
    tenant_id TEXT,
    store_id TEXT,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    metadata TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP NULL
);`
	sqliteCreateTenants = `CREATE TABLE tenants (
    id TEXT NOT NULL PRIMARY KEY,
    name TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    domain TEXT,
    logo_url TEXT,
    primary_color TEXT,
    subscription_tier TEXT,
    subscription_status TEXT,
    trial_ends_at TIMESTAMP NULL,
    max_users INTEGER DEFAULT 0,
    max_stores INTEGER DEFAULT 0,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP NULL
);`
	sqliteCreateStores = `CREATE TABLE stores (
    id TEXT NOT NULL PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    name TEXT NOT NULL,
    code TEXT,
    address TEXT,
    city TEXT,
    region TEXT,
    postal_code TEXT,
    phone_number TEXT,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP NULL,
    FOREIGN KEY (tenant_id) REFERENCES tenants (id)
);`
)

func setupRepos(t *testing.T) (tenancy.RepositoryManager, *bun.DB, func()) {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	for _, ddl := range []string{sqliteCreateProfiles, sqliteCreateTenants, sqliteCreateStores} {
		_, err = bunDB.Exec(ddl)
		require.NoError(t, err)
	}

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}

	repo := tenancy.NewRepositoryManager(bunDB)
	repo.MustValidate()

	return repo, bunDB, cleanup
}

func seedTenant(t *testing.T, db *bun.DB, tenant *tenancy.Tenant) *tenancy.Tenant {
	t.Helper()

	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}

	_, err := db.NewInsert().Model(tenant).Exec(context.Background())
	require.NoError(t, err)
	return tenant
}

func seedStore(t *testing.T, db *bun.DB, store *tenancy.Store) *tenancy.Store {
	t.Helper()

	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}

	_, err := db.NewInsert().Model(store).Exec(context.Background())
	require.NoError(t, err)
	return store
}

func seedProfile(t *testing.T, db *bun.DB, profile *tenancy.Profile) *tenancy.Profile {
	t.Helper()

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	if profile.Role == "" {
		profile.Role = tenancy.RoleUser
	}

	_, err := db.NewInsert().Model(profile).Exec(context.Background())
	require.NoError(t, err)
	return profile
}

func countProfiles(t *testing.T, db *bun.DB) int {
	t.Helper()

	count, err := db.NewSelect().Model((*tenancy.Profile)(nil)).Count(context.Background())
	require.NoError(t, err)
	return count
}
