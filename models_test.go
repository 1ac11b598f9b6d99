package tenancy_test

import (
	"testing"

	"github.com/goliatone/go-tenancy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimsPayloadMetadata(t *testing.T) {
	tenantID := uuid.New()
	payload := tenancy.ClaimsPayload{
		TenantID: &tenantID,
		Role:     tenancy.RoleAdmin,
	}

	meta := payload.Metadata()
	assert.Equal(t, tenantID.String(), meta["tenant_id"])
	assert.Equal(t, tenancy.RoleAdmin, meta["role"])
	// absent ids are written as explicit nulls so stale values get cleared
	assert.Contains(t, meta, "store_id")
	assert.Nil(t, meta["store_id"])
}

func TestPayloadFromProfile(t *testing.T) {
	tenantID := uuid.New()
	storeID := uuid.New()

	payload := tenancy.PayloadFromProfile(&tenancy.Profile{
		TenantID: &tenantID,
		StoreID:  &storeID,
		Role:     tenancy.RoleOwner,
	})

	require.NotNil(t, payload.TenantID)
	assert.Equal(t, tenantID, *payload.TenantID)
	require.NotNil(t, payload.StoreID)
	assert.Equal(t, storeID, *payload.StoreID)
	assert.Equal(t, tenancy.RoleOwner, payload.Role)

	assert.Equal(t, tenancy.ClaimsPayload{}, tenancy.PayloadFromProfile(nil))
}

func TestProfileHasTenant(t *testing.T) {
	assert.False(t, (*tenancy.Profile)(nil).HasTenant())
	assert.False(t, (&tenancy.Profile{}).HasTenant())

	nilID := uuid.Nil
	assert.False(t, (&tenancy.Profile{TenantID: &nilID}).HasTenant())

	id := uuid.New()
	assert.True(t, (&tenancy.Profile{TenantID: &id}).HasTenant())
}

func TestSessionFromCredential(t *testing.T) {
	cred := &tenancy.Credential{
		ID:    uuid.New(),
		Email: "sess@example.com",
		Metadata: map[string]any{
			"role": tenancy.RoleUser,
		},
	}

	sess := tenancy.SessionFromCredential(cred)
	require.NotNil(t, sess)
	assert.Equal(t, cred.ID.String(), sess.GetUserID())
	assert.Equal(t, "sess@example.com", sess.GetEmail())

	uid, err := sess.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, cred.ID, uid)

	assert.Nil(t, tenancy.SessionFromCredential(nil))
}

func TestHasUserUUID(t *testing.T) {
	assert.False(t, tenancy.HasUserUUID(nil))
	assert.False(t, tenancy.HasUserUUID(&tenancy.SessionObject{UserID: "nope"}))
	assert.True(t, tenancy.HasUserUUID(&tenancy.SessionObject{UserID: uuid.New().String()}))
}

func TestCredentialMetadataString(t *testing.T) {
	cred := &tenancy.Credential{
		Metadata: map[string]any{
			"full_name": "Jane Doe",
			"count":     3,
			"empty":     "",
		},
	}

	val, ok := cred.MetadataString("full_name")
	assert.True(t, ok)
	assert.Equal(t, "Jane Doe", val)

	_, ok = cred.MetadataString("count")
	assert.False(t, ok)

	_, ok = cred.MetadataString("empty")
	assert.False(t, ok)

	_, ok = (*tenancy.Credential)(nil).MetadataString("full_name")
	assert.False(t, ok)
}
