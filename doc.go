// Package tenancy provides tenant and session resolution primitives for
// multi-tenant point-of-sale applications: profile reconciliation, claims
// synchronization, tenant resolution, and the session bootstrap state
// machine that ties them together.
//
// Session bootstrap:
//   - Bootstrapper consumes credential authority events (process start,
//     signed in, signed out, user updated) from a mailbox and drives each
//     pass to completion before the next event is processed. Every pass
//     terminates in one of three states: authenticated, authenticated but
//     needing onboarding, or unauthenticated. Reconciler and Synchronizer
//     failures are downgraded to an unauthenticated transition plus a
//     surfaced error, never left unhandled.
//
// Profile reconciliation:
//   - Reconciler guarantees a durable profile row exists for every
//     credential record. EnsureProfile is an idempotent upsert seeded from
//     credential metadata; it never overwrites an existing profile.
//
// Claims synchronization:
//   - Synchronizer pushes the authoritative {tenant_id, role, store_id}
//     projection from the profile into the credential metadata, so tokens
//     refreshed afterwards carry self-contained authorization claims.
//     TokenService mints such tokens directly for synchronous callers.
//
// Tenant context:
//   - Resolver maps a domain or slug to an active tenant and its active
//     stores. SessionContext holds the resolved tenant, store list, and
//     current store selection; writes are funneled through the
//     Bootstrapper and the context's own switch operations.
package tenancy
