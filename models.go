package tenancy

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProfileRole is the profile's application role
type ProfileRole = string

const (
	// RoleUser is the default role for new profiles
	RoleUser ProfileRole = "user"
	// RoleManager can manage a store
	RoleManager ProfileRole = "manager"
	// RoleAdmin can manage a tenant
	RoleAdmin ProfileRole = "admin"
	// RoleOwner owns a tenant
	RoleOwner ProfileRole = "owner"
)

// Profile is the durable user profile. Its ID mirrors the credential
// record id held by the credential authority, exactly one profile per
// credential. Profiles are never deleted by this package.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:prf"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string         `bun:"email,notnull,unique" json:"email,omitempty"`
	FullName      string         `bun:"full_name" json:"full_name,omitempty"`
	Role          ProfileRole    `bun:"user_role,notnull" json:"user_role,omitempty"`
	TenantID      *uuid.UUID     `bun:"tenant_id,nullzero,type:uuid" json:"tenant_id,omitempty"`
	StoreID       *uuid.UUID     `bun:"store_id,nullzero,type:uuid" json:"store_id,omitempty"`
	IsActive      bool           `bun:"is_active" json:"is_active,omitempty"`
	Metadata      map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// HasTenant reports whether the profile is bound to a tenant.
func (p *Profile) HasTenant() bool {
	return p != nil && p.TenantID != nil && *p.TenantID != uuid.Nil
}

// AddMetadata will append information to a metadata attribute
func (p *Profile) AddMetadata(key string, val any) *Profile {
	if p.Metadata == nil {
		p.Metadata = make(map[string]any)
	}
	p.Metadata[key] = val
	return p
}

// Tenant is an organization operating one or more stores. Slug is
// globally unique among active tenants; domain, when present, too.
type Tenant struct {
	bun.BaseModel      `bun:"table:tenants,alias:tnt"`
	ID                 uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name               string     `bun:"name,notnull" json:"name,omitempty"`
	Slug               string     `bun:"slug,notnull,unique" json:"slug,omitempty"`
	Domain             *string    `bun:"domain,nullzero" json:"domain,omitempty"`
	LogoURL            string     `bun:"logo_url" json:"logo_url,omitempty"`
	PrimaryColor       string     `bun:"primary_color" json:"primary_color,omitempty"`
	SubscriptionTier   string     `bun:"subscription_tier" json:"subscription_tier,omitempty"`
	SubscriptionStatus string     `bun:"subscription_status" json:"subscription_status,omitempty"`
	TrialEndsAt        *time.Time `bun:"trial_ends_at,nullzero" json:"trial_ends_at,omitempty"`
	MaxUsers           int        `bun:"max_users" json:"max_users,omitempty"`
	MaxStores          int        `bun:"max_stores" json:"max_stores,omitempty"`
	IsActive           bool       `bun:"is_active" json:"is_active,omitempty"`
	CreatedAt          *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt          *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt          *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Store is a physical location belonging to exactly one tenant.
type Store struct {
	bun.BaseModel `bun:"table:stores,alias:str"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	TenantID      uuid.UUID  `bun:"tenant_id,notnull,type:uuid" json:"tenant_id,omitempty"`
	Tenant        *Tenant    `bun:"rel:belongs-to,join:tenant_id=id" json:"tenant,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Code          string     `bun:"code" json:"code,omitempty"`
	Address       string     `bun:"address" json:"address,omitempty"`
	City          string     `bun:"city" json:"city,omitempty"`
	Region        string     `bun:"region" json:"region,omitempty"`
	PostalCode    string     `bun:"postal_code" json:"postal_code,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	IsActive      bool       `bun:"is_active" json:"is_active,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// ClaimsPayload is the projection of profile fields carried in the
// credential record metadata and inside session tokens. Once synced it
// must equal the corresponding profile fields.
type ClaimsPayload struct {
	TenantID *uuid.UUID `json:"tenant_id,omitempty"`
	StoreID  *uuid.UUID `json:"store_id,omitempty"`
	Role     string     `json:"role,omitempty"`
}

// Metadata renders the payload as credential metadata keys.
func (c ClaimsPayload) Metadata() map[string]any {
	meta := map[string]any{
		"tenant_id": nil,
		"store_id":  nil,
		"role":      c.Role,
	}
	if c.TenantID != nil {
		meta["tenant_id"] = c.TenantID.String()
	}
	if c.StoreID != nil {
		meta["store_id"] = c.StoreID.String()
	}
	return meta
}

// PayloadFromProfile projects the authoritative claim fields out of a profile.
func PayloadFromProfile(profile *Profile) ClaimsPayload {
	if profile == nil {
		return ClaimsPayload{}
	}
	return ClaimsPayload{
		TenantID: profile.TenantID,
		StoreID:  profile.StoreID,
		Role:     profile.Role,
	}
}

func localPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
