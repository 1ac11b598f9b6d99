package tenancy

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Reconciler ensures a durable profile row exists for every credential
// record and repairs drift. It never overwrites an existing profile with
// credential metadata; pushing profile state back into the credential is
// the Synchronizer's job.
type Reconciler struct {
	repo     RepositoryManager
	identity IdentityClient
	logger   Logger
	activity ActivitySink
}

// NewReconciler returns a profile reconciler backed by the given repositories.
func NewReconciler(repo RepositoryManager, identity IdentityClient) *Reconciler {
	return &Reconciler{
		repo:     repo,
		identity: identity,
		logger:   defLogger{},
		activity: noopActivitySink{},
	}
}

func (r *Reconciler) WithLogger(logger Logger) *Reconciler {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// WithActivitySink configures an ActivitySink for reconciliation events.
func (r *Reconciler) WithActivitySink(sink ActivitySink) *Reconciler {
	r.activity = normalizeActivitySink(sink)
	return r
}

// LookupProfile reads the profile by credential id. A clean absence is
// reported as a not-found rich error, anything else propagates as the
// underlying lookup failure so callers can tell the two apart.
func (r *Reconciler) LookupProfile(ctx context.Context, credentialID uuid.UUID) (*Profile, error) {
	return r.repo.Profiles().GetByID(ctx, credentialID)
}

// EnsureProfile upserts the profile row for a credential. Repeated calls
// with the same credential id are idempotent and never create duplicates.
// Exactly one attempt is made; a failed store write surfaces as
// ErrProfileRepairFailed and the caller must treat the user as
// unauthenticated.
func (r *Reconciler) EnsureProfile(ctx context.Context, credentialID uuid.UUID, email string) (*Profile, error) {
	if credentialID == uuid.Nil {
		return nil, ErrProfileRepairFailed.WithMetadata(map[string]any{
			"reason": "credential id is nil",
		})
	}

	record := r.seedProfile(ctx, credentialID, email)

	var profile *Profile
	err := r.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		profile, txErr = r.repo.Profiles().GetOrCreateTx(ctx, tx, record)
		return txErr
	})

	if err != nil {
		r.logger.Error("profile reconciliation write failed", "credential_id", credentialID.String(), "error", err)
		return nil, goerrors.Wrap(err, ErrProfileRepairFailed.Category, ErrProfileRepairFailed.Message).
			WithTextCode(textCodeProfileRepairFailed).
			WithMetadata(map[string]any{
				"credential_id": credentialID.String(),
			})
	}

	r.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventProfileRepaired,
		UserID:    profile.ID.String(),
		Metadata: map[string]any{
			"email": profile.Email,
		},
	})

	return profile, nil
}

// seedProfile builds the default row for a missing profile. Credential
// metadata seeds tenant/store/role when present; a failed credential read
// only degrades the defaults, it does not block the upsert.
func (r *Reconciler) seedProfile(ctx context.Context, credentialID uuid.UUID, email string) *Profile {
	record := &Profile{
		ID:       credentialID,
		Email:    email,
		FullName: localPart(email),
		Role:     RoleUser,
		IsActive: true,
	}

	if r.identity == nil {
		return record
	}

	cred, err := r.identity.CredentialByID(ctx, credentialID)
	if err != nil || cred == nil {
		if err != nil {
			r.logger.Warn("credential lookup during reconciliation failed", "credential_id", credentialID.String(), "error", err)
		}
		return record
	}

	if record.Email == "" {
		record.Email = cred.Email
		record.FullName = localPart(cred.Email)
	}

	if name, ok := cred.MetadataString("full_name"); ok {
		record.FullName = name
	}

	if role, ok := cred.MetadataString("role"); ok {
		record.Role = role
	}

	if raw, ok := cred.MetadataString("tenant_id"); ok {
		if id, err := uuid.Parse(raw); err == nil {
			record.TenantID = &id
		}
	}

	if raw, ok := cred.MetadataString("store_id"); ok {
		if id, err := uuid.Parse(raw); err == nil {
			record.StoreID = &id
		}
	}

	return record
}

func (r *Reconciler) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	sink := normalizeActivitySink(r.activity)
	if err := sink.Record(ctx, event); err != nil {
		r.logger.Warn("reconciler activity sink error", "error", err)
	}
}
