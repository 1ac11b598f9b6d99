package tenancy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Session holds attributes of a credential authority session
type Session interface {
	GetUserID() string
	GetUserUUID() (uuid.UUID, error)
	GetEmail() string
	GetData() map[string]any
}

// Credential is the external identity record owned by the credential
// authority. Read-only to this package except for metadata patches
// applied by the claims synchronizer.
type Credential struct {
	ID       uuid.UUID      `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MetadataString returns a string metadata value when present.
func (c *Credential) MetadataString(key string) (string, bool) {
	if c == nil || c.Metadata == nil {
		return "", false
	}
	if val, ok := c.Metadata[key].(string); ok && val != "" {
		return val, true
	}
	return "", false
}

// IdentityClient is the boundary to the identity store and credential
// authority. Implementations are external collaborators; this package
// only consumes the contract.
type IdentityClient interface {
	CurrentSession(ctx context.Context) (Session, error)
	CredentialByID(ctx context.Context, id uuid.UUID) (*Credential, error)
	CredentialByEmail(ctx context.Context, email string) (*Credential, error)
	UpdateCredentialMetadata(ctx context.Context, id uuid.UUID, metadata map[string]any) error
}

// Navigator receives navigation side effects issued by the bootstrapper
// and the session context.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(route string)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(route string) {
	if f != nil {
		f(route)
	}
}

type noopNavigator struct{}

func (noopNavigator) Navigate(string) {}

func normalizeNavigator(n Navigator) Navigator {
	if n == nil {
		return noopNavigator{}
	}
	return n
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] TENANCY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] TENANCY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] TENANCY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] TENANCY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
