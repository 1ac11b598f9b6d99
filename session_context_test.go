package tenancy_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-tenancy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwitchTenant_Success(t *testing.T) {
	repo, db, cleanup := setupRepos(t)
	defer cleanup()

	tenant := seedTenant(t, db, &tenancy.Tenant{
		Name:     "Acme Retail",
		Slug:     "acme",
		IsActive: true,
	})
	first := seedStore(t, db, &tenancy.Store{TenantID: tenant.ID, Name: "Airport", IsActive: true})
	seedStore(t, db, &tenancy.Store{TenantID: tenant.ID, Name: "Westside", IsActive: true})

	navigator := &recordingNavigator{}
	sink := &capturingSink{}
	resolver := tenancy.NewResolver(repo).WithLogger(testLogger{})
	session := tenancy.NewSessionContext(resolver).
		WithLogger(testLogger{}).
		WithNavigator(navigator).
		WithActivitySink(sink)

	err := session.SwitchTenant(context.Background(), "acme")
	require.NoError(t, err)

	require.NotNil(t, session.CurrentTenant())
	assert.Equal(t, tenant.ID, session.CurrentTenant().ID)
	assert.Len(t, session.Stores(), 2)
	require.NotNil(t, session.CurrentStore())
	assert.Equal(t, first.ID, session.CurrentStore().ID)
	assert.Equal(t, []string{"/"}, navigator.Routes())

	events := sink.ByType(tenancy.ActivityEventTenantSwitched)
	require.Len(t, events, 1)
	assert.Equal(t, tenant.ID.String(), events[0].TenantID)
}

func TestSwitchTenant_FailureLeavesStateUntouched(t *testing.T) {
	repo, db, cleanup := setupRepos(t)
	defer cleanup()

	tenant := seedTenant(t, db, &tenancy.Tenant{
		Name:     "Acme Retail",
		Slug:     "acme",
		IsActive: true,
	})
	seedStore(t, db, &tenancy.Store{TenantID: tenant.ID, Name: "Airport", IsActive: true})

	navigator := &recordingNavigator{}
	resolver := tenancy.NewResolver(repo).WithLogger(testLogger{})
	session := tenancy.NewSessionContext(resolver).
		WithLogger(testLogger{}).
		WithNavigator(navigator)

	require.NoError(t, session.SwitchTenant(context.Background(), "acme"))
	before := session.Snapshot()

	err := session.SwitchTenant(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, tenancy.ErrTenantNotFound)

	after := session.Snapshot()
	assert.Equal(t, before.CurrentTenant, after.CurrentTenant)
	assert.Equal(t, before.CurrentStore, after.CurrentStore)
	assert.Equal(t, before.Stores, after.Stores)
	// only the successful switch navigated
	assert.Equal(t, []string{"/"}, navigator.Routes())
}

func TestSwitchTenant_NoStoresClearsSelection(t *testing.T) {
	repo, db, cleanup := setupRepos(t)
	defer cleanup()

	tenant := seedTenant(t, db, &tenancy.Tenant{
		Name:     "Acme Retail",
		Slug:     "acme",
		IsActive: true,
	})
	seedStore(t, db, &tenancy.Store{TenantID: tenant.ID, Name: "Airport", IsActive: true})
	seedTenant(t, db, &tenancy.Tenant{
		Name:     "Empty Co",
		Slug:     "empty",
		IsActive: true,
	})

	resolver := tenancy.NewResolver(repo).WithLogger(testLogger{})
	session := tenancy.NewSessionContext(resolver).WithLogger(testLogger{})

	require.NoError(t, session.SwitchTenant(context.Background(), "acme"))
	require.NotNil(t, session.CurrentStore())

	require.NoError(t, session.SwitchTenant(context.Background(), "empty"))
	assert.Nil(t, session.CurrentStore())
	assert.Empty(t, session.Stores())
}

func TestResolveTenant_NoNavigation(t *testing.T) {
	repo, db, cleanup := setupRepos(t)
	defer cleanup()

	tenant := seedTenant(t, db, &tenancy.Tenant{
		Name:     "Acme Retail",
		Slug:     "acme",
		IsActive: true,
	})

	navigator := &recordingNavigator{}
	resolver := tenancy.NewResolver(repo).WithLogger(testLogger{})
	session := tenancy.NewSessionContext(resolver).
		WithLogger(testLogger{}).
		WithNavigator(navigator)

	err := session.ResolveTenant(context.Background(), tenant.ID)
	require.NoError(t, err)

	require.NotNil(t, session.CurrentTenant())
	assert.Equal(t, tenant.ID, session.CurrentTenant().ID)
	assert.Empty(t, navigator.Routes())
}

func TestSetCurrentStore(t *testing.T) {
	repo, db, cleanup := setupRepos(t)
	defer cleanup()

	tenant := seedTenant(t, db, &tenancy.Tenant{
		Name:     "Acme Retail",
		Slug:     "acme",
		IsActive: true,
	})
	seedStore(t, db, &tenancy.Store{TenantID: tenant.ID, Name: "Airport", IsActive: true})
	second := seedStore(t, db, &tenancy.Store{TenantID: tenant.ID, Name: "Westside", IsActive: true})

	resolver := tenancy.NewResolver(repo).WithLogger(testLogger{})
	session := tenancy.NewSessionContext(resolver).WithLogger(testLogger{})

	require.NoError(t, session.SwitchTenant(context.Background(), "acme"))

	require.NoError(t, session.SetCurrentStore(second))
	assert.Equal(t, second.ID, session.CurrentStore().ID)

	require.NoError(t, session.SetCurrentStore(nil))
	assert.Nil(t, session.CurrentStore())
}

func TestSetCurrentStore_TenantMismatch(t *testing.T) {
	repo, db, cleanup := setupRepos(t)
	defer cleanup()

	tenant := seedTenant(t, db, &tenancy.Tenant{
		Name:     "Acme Retail",
		Slug:     "acme",
		IsActive: true,
	})
	mine := seedStore(t, db, &tenancy.Store{TenantID: tenant.ID, Name: "Airport", IsActive: true})

	other := seedTenant(t, db, &tenancy.Tenant{
		Name:     "Other Co",
		Slug:     "other",
		IsActive: true,
	})
	foreign := seedStore(t, db, &tenancy.Store{TenantID: other.ID, Name: "Elsewhere", IsActive: true})

	resolver := tenancy.NewResolver(repo).WithLogger(testLogger{})
	session := tenancy.NewSessionContext(resolver).WithLogger(testLogger{})

	require.NoError(t, session.SwitchTenant(context.Background(), "acme"))

	err := session.SetCurrentStore(foreign)
	require.Error(t, err)
	assert.True(t, tenancy.IsStoreTenantMismatch(err))
	require.NotNil(t, session.CurrentStore())
	assert.Equal(t, mine.ID, session.CurrentStore().ID)
}

func TestSetCurrentStore_NoTenantResolved(t *testing.T) {
	repo, db, cleanup := setupRepos(t)
	defer cleanup()

	store := seedStore(t, db, &tenancy.Store{TenantID: uuid.New(), Name: "Orphan", IsActive: true})

	resolver := tenancy.NewResolver(repo).WithLogger(testLogger{})
	session := tenancy.NewSessionContext(resolver).WithLogger(testLogger{})

	err := session.SetCurrentStore(store)
	require.Error(t, err)
	assert.True(t, tenancy.IsStoreTenantMismatch(err))
}

func TestSnapshot_IsACopy(t *testing.T) {
	repo, db, cleanup := setupRepos(t)
	defer cleanup()

	tenant := seedTenant(t, db, &tenancy.Tenant{
		Name:     "Acme Retail",
		Slug:     "acme",
		IsActive: true,
	})
	seedStore(t, db, &tenancy.Store{TenantID: tenant.ID, Name: "Airport", IsActive: true})

	resolver := tenancy.NewResolver(repo).WithLogger(testLogger{})
	session := tenancy.NewSessionContext(resolver).WithLogger(testLogger{})

	require.NoError(t, session.SwitchTenant(context.Background(), "acme"))

	snap := session.Snapshot()
	require.Len(t, snap.Stores, 1)
	snap.Stores[0] = nil

	require.Len(t, session.Stores(), 1)
	assert.NotNil(t, session.Stores()[0])
}
