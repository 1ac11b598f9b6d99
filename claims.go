package tenancy

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TenancyClaims are the JWT claims carried by session tokens. They embed
// the synced claims payload so downstream authorization checks are self
// contained.
type TenancyClaims struct {
	jwt.RegisteredClaims
	UID      string         `json:"uid,omitempty"`
	UserRole string         `json:"role,omitempty"`
	TenantID string         `json:"tenant_id,omitempty"`
	StoreID  string         `json:"store_id,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// UserID returns the user ID
func (c *TenancyClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Role returns the global role
func (c *TenancyClaims) Role() string {
	return c.UserRole
}

// Payload rebuilds the claims payload view of the token.
func (c *TenancyClaims) Payload() ClaimsPayload {
	payload := ClaimsPayload{Role: c.UserRole}
	if id, ok := parseOptionalUUID(c.TenantID); ok {
		payload.TenantID = id
	}
	if id, ok := parseOptionalUUID(c.StoreID); ok {
		payload.StoreID = id
	}
	return payload
}

// Expires returns the expiration time
func (c *TenancyClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *TenancyClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ApplyPayload writes the synced payload into the token claims,
// overwriting any previous tenancy values.
func (c *TenancyClaims) ApplyPayload(payload ClaimsPayload) {
	c.UserRole = payload.Role
	c.TenantID = ""
	c.StoreID = ""
	if payload.TenantID != nil {
		c.TenantID = payload.TenantID.String()
	}
	if payload.StoreID != nil {
		c.StoreID = payload.StoreID.String()
	}
}

// ClaimsDecorator can mutate claim extensions before a token is signed.
// Implementations may only touch tenancy/metadata fields and must leave
// registered claims untouched.
type ClaimsDecorator interface {
	Decorate(ctx context.Context, profile *Profile, claims *TenancyClaims) error
}

// ClaimsDecoratorFunc adapts a function into a ClaimsDecorator.
type ClaimsDecoratorFunc func(ctx context.Context, profile *Profile, claims *TenancyClaims) error

// Decorate satisfies the ClaimsDecorator interface.
func (f ClaimsDecoratorFunc) Decorate(ctx context.Context, profile *Profile, claims *TenancyClaims) error {
	if f == nil {
		return nil
	}
	return f(ctx, profile, claims)
}

type noopClaimsDecorator struct{}

func (noopClaimsDecorator) Decorate(context.Context, *Profile, *TenancyClaims) error {
	return nil
}

func normalizeClaimsDecorator(d ClaimsDecorator) ClaimsDecorator {
	if d == nil {
		return noopClaimsDecorator{}
	}
	return d
}

func parseOptionalUUID(raw string) (*uuid.UUID, bool) {
	if raw == "" {
		return nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}
