package tenancy_test

import (
	"context"
	"sync"

	"github.com/goliatone/go-tenancy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockIdentityClient mocks the credential authority boundary.
type MockIdentityClient struct {
	mock.Mock
}

func (m *MockIdentityClient) CurrentSession(ctx context.Context) (tenancy.Session, error) {
	args := m.Called(ctx)
	if sess, ok := args.Get(0).(tenancy.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityClient) CredentialByID(ctx context.Context, id uuid.UUID) (*tenancy.Credential, error) {
	args := m.Called(ctx, id)
	if cred, ok := args.Get(0).(*tenancy.Credential); ok {
		return cred, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityClient) CredentialByEmail(ctx context.Context, email string) (*tenancy.Credential, error) {
	args := m.Called(ctx, email)
	if cred, ok := args.Get(0).(*tenancy.Credential); ok {
		return cred, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityClient) UpdateCredentialMetadata(ctx context.Context, id uuid.UUID, metadata map[string]any) error {
	args := m.Called(ctx, id, metadata)
	return args.Error(0)
}

// recordingNavigator captures navigation side effects in order.
type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.routes))
	copy(out, n.routes)
	return out
}

// capturingSink collects activity events for assertions.
type capturingSink struct {
	mu     sync.Mutex
	events []tenancy.ActivityEvent
}

func (c *capturingSink) Record(_ context.Context, event tenancy.ActivityEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturingSink) Events() []tenancy.ActivityEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]tenancy.ActivityEvent, len(c.events))
	copy(out, c.events)
	return out
}

func (c *capturingSink) ByType(eventType tenancy.ActivityEventType) []tenancy.ActivityEvent {
	var out []tenancy.ActivityEvent
	for _, event := range c.Events() {
		if event.EventType == eventType {
			out = append(out, event)
		}
	}
	return out
}

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

func sessionFor(id uuid.UUID, email string) *tenancy.SessionObject {
	return &tenancy.SessionObject{
		UserID: id.String(),
		Email:  email,
	}
}
