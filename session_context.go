package tenancy

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionState is a point-in-time copy of the application session.
type SessionState struct {
	User            *Profile
	IsAuthenticated bool
	CurrentTenant   *Tenant
	Stores          []*Store
	CurrentStore    *Store
}

// SessionContext is the process-wide application session state for one
// client session. Only the bootstrapper and the context itself write to
// it; every other consumer reads through the accessors.
type SessionContext struct {
	resolver  *Resolver
	navigator Navigator
	logger    Logger
	activity  ActivitySink

	mu            sync.RWMutex
	user          *Profile
	authenticated bool
	currentTenant *Tenant
	stores        []*Store
	currentStore  *Store
}

// NewSessionContext returns an empty, unresolved session context.
func NewSessionContext(resolver *Resolver) *SessionContext {
	return &SessionContext{
		resolver:  resolver,
		navigator: noopNavigator{},
		logger:    defLogger{},
		activity:  noopActivitySink{},
	}
}

func (s *SessionContext) WithLogger(logger Logger) *SessionContext {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *SessionContext) WithNavigator(navigator Navigator) *SessionContext {
	s.navigator = normalizeNavigator(navigator)
	return s
}

// WithActivitySink configures an ActivitySink for tenant switch events.
func (s *SessionContext) WithActivitySink(sink ActivitySink) *SessionContext {
	s.activity = normalizeActivitySink(sink)
	return s
}

// User returns the current profile.
func (s *SessionContext) User() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated reports whether a profile is loaded.
func (s *SessionContext) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// CurrentTenant returns the resolved tenant, nil before resolution.
func (s *SessionContext) CurrentTenant() *Tenant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentTenant
}

// Stores returns the active stores of the current tenant.
func (s *SessionContext) Stores() []*Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Store, len(s.stores))
	copy(out, s.stores)
	return out
}

// CurrentStore returns the active store selection, nil when none.
func (s *SessionContext) CurrentStore() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentStore
}

// Snapshot returns a copy of the whole session state.
func (s *SessionContext) Snapshot() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stores := make([]*Store, len(s.stores))
	copy(stores, s.stores)

	return SessionState{
		User:            s.user,
		IsAuthenticated: s.authenticated,
		CurrentTenant:   s.currentTenant,
		Stores:          stores,
		CurrentStore:    s.currentStore,
	}
}

// ResolveTenant populates the tenant context from the profile's tenant
// id after a successful bootstrap pass. Atomic like SwitchTenant, but no
// navigation is issued.
func (s *SessionContext) ResolveTenant(ctx context.Context, tenantID uuid.UUID) error {
	resolution, err := s.resolver.ResolveByID(ctx, tenantID)
	if err != nil {
		return err
	}

	s.applyResolution(resolution)
	return nil
}

// SwitchTenant resolves the slug and replaces the tenant context
// atomically: resolver failure leaves prior state untouched. On success
// the store selection resets to the first store, or nil when the tenant
// has none, and navigation to the application root is signalled.
func (s *SessionContext) SwitchTenant(ctx context.Context, slug string) error {
	resolution, err := s.resolver.Resolve(ctx, "", slug)
	if err != nil {
		return err
	}

	s.applyResolution(resolution)
	s.navigator.Navigate("/")

	s.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventTenantSwitched,
		TenantID:  resolution.Tenant.ID.String(),
		Metadata: map[string]any{
			"slug": slug,
		},
	})

	return nil
}

// SetCurrentStore reassigns the active store in memory. The store must
// belong to the current tenant; a mismatch fails and leaves the previous
// selection in place.
func (s *SessionContext) SetCurrentStore(store *Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if store == nil {
		s.currentStore = nil
		return nil
	}

	if s.currentTenant == nil || store.TenantID != s.currentTenant.ID {
		return ErrStoreTenantMismatch.WithMetadata(map[string]any{
			"store_id":        store.ID.String(),
			"store_tenant_id": store.TenantID.String(),
		})
	}

	s.currentStore = store
	return nil
}

func (s *SessionContext) applyResolution(resolution *Resolution) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentTenant = resolution.Tenant
	s.stores = resolution.Stores

	if len(resolution.Stores) > 0 {
		s.currentStore = resolution.Stores[0]
	} else {
		s.currentStore = nil
	}
}

// setUser is the bootstrapper's write funnel for the profile slot.
func (s *SessionContext) setUser(profile *Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = profile
	s.authenticated = profile != nil
}

// clear tears the whole session state down on sign out.
func (s *SessionContext) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.authenticated = false
	s.currentTenant = nil
	s.stores = nil
	s.currentStore = nil
}

func (s *SessionContext) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	sink := normalizeActivitySink(s.activity)
	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("session context activity sink error", "error", err)
	}
}
