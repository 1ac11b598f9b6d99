package tenancy

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// Synchronizer pushes authoritative tenant/role/store fields from the
// profile record into the credential record's metadata so downstream
// authorization checks are self contained. The profile always wins;
// previous metadata values are overwritten unconditionally.
type Synchronizer struct {
	repo     RepositoryManager
	identity IdentityClient
	logger   Logger
	activity ActivitySink
}

// NewSynchronizer returns a claims synchronizer.
func NewSynchronizer(repo RepositoryManager, identity IdentityClient) *Synchronizer {
	return &Synchronizer{
		repo:     repo,
		identity: identity,
		logger:   defLogger{},
		activity: noopActivitySink{},
	}
}

func (s *Synchronizer) WithLogger(logger Logger) *Synchronizer {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for sync events.
func (s *Synchronizer) WithActivitySink(sink ActivitySink) *Synchronizer {
	s.activity = normalizeActivitySink(sink)
	return s
}

// SyncClaims reads the profile, verifies the referenced tenant is active,
// and writes {tenant_id, role, store_id} into the credential metadata.
// Calling twice with no intervening change yields identical claims and no
// tenant or profile mutation. The payload is returned synchronously so
// callers can use it before any token refresh lands.
func (s *Synchronizer) SyncClaims(ctx context.Context, userID uuid.UUID) (ClaimsPayload, error) {
	profile, err := s.repo.Profiles().GetByID(ctx, userID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ClaimsPayload{}, ErrUserNotFound.WithMetadata(map[string]any{
				"user_id": userID.String(),
			})
		}
		return ClaimsPayload{}, err
	}

	// A profile that has not been through onboarding carries no tenant;
	// the claims it projects are empty rather than an error.
	if profile.HasTenant() {
		tenant, err := s.repo.Tenants().GetActiveByID(ctx, *profile.TenantID)
		if err != nil || tenant == nil {
			if err != nil && !repository.IsRecordNotFound(err) {
				return ClaimsPayload{}, err
			}
			return ClaimsPayload{}, ErrTenantInactive.WithMetadata(map[string]any{
				"user_id":   userID.String(),
				"tenant_id": profile.TenantID.String(),
			})
		}
	}

	payload := PayloadFromProfile(profile)

	if err := s.identity.UpdateCredentialMetadata(ctx, userID, payload.Metadata()); err != nil {
		s.logger.Error("claims metadata write failed", "user_id", userID.String(), "error", err)
		return ClaimsPayload{}, err
	}

	s.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventClaimsSynced,
		UserID:    userID.String(),
		TenantID:  tenantIDString(profile.TenantID),
		Metadata: map[string]any{
			"role": payload.Role,
		},
	})

	return payload, nil
}

func (s *Synchronizer) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	sink := normalizeActivitySink(s.activity)
	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("synchronizer activity sink error", "error", err)
	}
}

func tenantIDString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
