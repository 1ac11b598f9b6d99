package tenancy

import (
	"context"
)

var profileCtxKey = &contextKey{"profile"}
var tenantCtxKey = &contextKey{"tenant"}
var storeCtxKey = &contextKey{"store"}

type contextKey struct {
	name string
}

// WithProfileContext sets the Profile in the given context
func WithProfileContext(r context.Context, profile *Profile) context.Context {
	return context.WithValue(r, profileCtxKey, profile)
}

// ProfileFromContext finds the profile from the context.
func ProfileFromContext(ctx context.Context) (*Profile, bool) {
	raw, ok := ctx.Value(profileCtxKey).(*Profile)
	return raw, ok
}

// WithTenantContext sets the Tenant in the given context
func WithTenantContext(r context.Context, tenant *Tenant) context.Context {
	return context.WithValue(r, tenantCtxKey, tenant)
}

// TenantFromContext finds the tenant from the context.
func TenantFromContext(ctx context.Context) (*Tenant, bool) {
	raw, ok := ctx.Value(tenantCtxKey).(*Tenant)
	return raw, ok
}

// WithStoreContext sets the Store in the given context
func WithStoreContext(r context.Context, store *Store) context.Context {
	return context.WithValue(r, storeCtxKey, store)
}

// StoreFromContext finds the store from the context.
func StoreFromContext(ctx context.Context) (*Store, bool) {
	raw, ok := ctx.Value(storeCtxKey).(*Store)
	return raw, ok
}
