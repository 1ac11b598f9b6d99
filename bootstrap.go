package tenancy

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// BootstrapState identifies where a client session is in its lifecycle.
type BootstrapState string

const (
	// StateUnresolved is the initial state before any pass has run.
	StateUnresolved BootstrapState = "unresolved"
	// StateResolving is the transient state while a pass is in flight.
	StateResolving BootstrapState = "resolving"
	// StateAuthenticated is a tenant-bound authenticated session.
	StateAuthenticated BootstrapState = "authenticated"
	// StateNeedsOnboarding is authenticated but not yet tenant bound.
	StateNeedsOnboarding BootstrapState = "authenticated_needs_onboarding"
	// StateUnauthenticated is the signed-out terminal state.
	StateUnauthenticated BootstrapState = "unauthenticated"
)

// EventKind enumerates credential authority events the bootstrapper reacts to.
type EventKind string

const (
	EventBootstrap   EventKind = "bootstrap"
	EventSignedIn    EventKind = "signed_in"
	EventSignedOut   EventKind = "signed_out"
	EventUserUpdated EventKind = "user_updated"
)

// Event is a credential authority notification plus the client route that
// was current when it fired.
type Event struct {
	Kind    EventKind
	Session Session
	Route   string
}

// BootstrapRoutes holds the navigation targets issued by the bootstrapper.
type BootstrapRoutes struct {
	Root       string
	Login      string
	Onboarding string
	Dashboard  string
}

// DefaultCallTimeout bounds each boundary call made during a pass.
var DefaultCallTimeout = 10 * time.Second

// Bootstrapper drives the session bootstrap state machine. Events are
// queued on a mailbox and consumed by a single Run loop: one pass is in
// flight at a time, each pass runs to completion, and event order is
// preserved.
type Bootstrapper struct {
	identity    IdentityClient
	reconciler  *Reconciler
	syncer      *Synchronizer
	session     *SessionContext
	navigator   Navigator
	logger      Logger
	activity    ActivitySink
	routes      *BootstrapRoutes
	public      map[string]struct{}
	callTimeout time.Duration
	notify      func(error)

	mailbox chan Event

	mu         sync.RWMutex
	state      BootstrapState
	lastErr    error
	generation uint64
}

// NewBootstrapper wires the bootstrap state machine. The session context
// is the only state the bootstrapper writes to outside its own fields.
func NewBootstrapper(identity IdentityClient, reconciler *Reconciler, syncer *Synchronizer, session *SessionContext) *Bootstrapper {
	b := &Bootstrapper{
		identity:   identity,
		reconciler: reconciler,
		syncer:     syncer,
		session:    session,
		navigator:  noopNavigator{},
		logger:     defLogger{},
		activity:   noopActivitySink{},
		routes: &BootstrapRoutes{
			Root:       "/",
			Login:      "/login",
			Onboarding: "/onboarding",
			Dashboard:  "/dashboard",
		},
		callTimeout: DefaultCallTimeout,
		mailbox:     make(chan Event, 64),
		state:       StateUnresolved,
	}

	b.public = publicRouteSet(b.routes.Root, b.routes.Login, "/register", "/forgot-password", "/reset-password")

	return b
}

func (b *Bootstrapper) WithLogger(logger Logger) *Bootstrapper {
	if logger != nil {
		b.logger = logger
	}
	return b
}

func (b *Bootstrapper) WithNavigator(navigator Navigator) *Bootstrapper {
	b.navigator = normalizeNavigator(navigator)
	return b
}

// WithActivitySink configures an ActivitySink for bootstrap events.
func (b *Bootstrapper) WithActivitySink(sink ActivitySink) *Bootstrapper {
	b.activity = normalizeActivitySink(sink)
	return b
}

// WithRoutes overrides the navigation targets.
func (b *Bootstrapper) WithRoutes(routes BootstrapRoutes) *Bootstrapper {
	b.routes = &routes
	return b
}

// WithPublicRoutes replaces the set of routes that never force a login
// redirect for unauthenticated sessions.
func (b *Bootstrapper) WithPublicRoutes(routes ...string) *Bootstrapper {
	b.public = publicRouteSet(routes...)
	return b
}

// WithCallTimeout bounds each boundary call made during a pass.
func (b *Bootstrapper) WithCallTimeout(d time.Duration) *Bootstrapper {
	if d > 0 {
		b.callTimeout = d
	}
	return b
}

// WithErrorNotifier registers a callback for user-visible bootstrap
// errors. Failures never escape the state machine; they are downgraded
// to an unauthenticated transition plus this notification.
func (b *Bootstrapper) WithErrorNotifier(notify func(error)) *Bootstrapper {
	b.notify = notify
	return b
}

// State returns the current machine state.
func (b *Bootstrapper) State() BootstrapState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// LastError returns the last surfaced bootstrap error, if any.
func (b *Bootstrapper) LastError() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastErr
}

// Dispatch queues an event. Events arriving while a pass is in flight
// are processed after it completes, in arrival order; they are never
// dropped.
func (b *Bootstrapper) Dispatch(event Event) {
	b.mailbox <- event
}

// Run consumes the mailbox until the context is done. It is the single
// consumer; do not call it from more than one goroutine.
func (b *Bootstrapper) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-b.mailbox:
			b.process(ctx, event)
		}
	}
}

// RunOnce drains queued events synchronously. Useful for tests and for
// embedders with their own scheduling loop.
func (b *Bootstrapper) RunOnce(ctx context.Context) {
	for {
		select {
		case event := <-b.mailbox:
			b.process(ctx, event)
		default:
			return
		}
	}
}

func (b *Bootstrapper) process(ctx context.Context, event Event) {
	switch event.Kind {
	case EventBootstrap:
		b.resolvePass(ctx, event, false)
	case EventSignedIn:
		b.resolvePass(ctx, event, true)
	case EventSignedOut:
		b.handleSignedOut(ctx)
	case EventUserUpdated:
		b.handleUserUpdated(ctx, event)
	default:
		b.logger.Warn("ignoring unknown bootstrap event", "kind", string(event.Kind))
	}
}

// resolvePass is the shared profile-load branch for process start and
// signed-in events. It always terminates in one of the three terminal
// states.
func (b *Bootstrapper) resolvePass(ctx context.Context, event Event, dashboardNav bool) {
	from := b.State()
	gen := b.beginPass()

	sess, err := b.currentSession(ctx, event)
	if err != nil {
		b.failPass(ctx, gen, from, event.Route, err)
		return
	}

	if sess == nil {
		b.finishUnauthenticated(ctx, gen, from, event.Route, nil)
		return
	}

	uid, err := sess.GetUserUUID()
	if err != nil {
		b.failPass(ctx, gen, from, event.Route, goerrors.Wrap(err, goerrors.CategoryBadInput, "session carries an invalid user id"))
		return
	}

	profile, err := b.loadProfile(ctx, uid, sess.GetEmail())
	if err != nil {
		b.failPass(ctx, gen, from, event.Route, err)
		return
	}

	b.session.setUser(profile)

	if !profile.HasTenant() {
		b.setState(gen, StateNeedsOnboarding, nil)
		b.navigate(gen, b.routes.Onboarding)
		b.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventBootstrapResolve,
			UserID:    profile.ID.String(),
			FromState: from,
			ToState:   StateNeedsOnboarding,
		})
		return
	}

	b.setState(gen, StateAuthenticated, nil)
	if dashboardNav {
		b.navigate(gen, b.routes.Dashboard)
	}

	b.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventBootstrapResolve,
		UserID:    profile.ID.String(),
		TenantID:  tenantIDString(profile.TenantID),
		FromState: from,
		ToState:   StateAuthenticated,
	})
}

// loadProfile looks the profile up and, on failure, makes exactly one
// repair pass (reconcile, sync claims, retry the lookup once). A clean
// not-found is the expected repair trigger; any other lookup failure is
// logged before taking the same path since the original flow cannot tell
// decode failures from genuine absence.
func (b *Bootstrapper) loadProfile(ctx context.Context, uid uuid.UUID, email string) (*Profile, error) {
	tctx, cancel := b.bounded(ctx)
	profile, err := b.reconciler.LookupProfile(tctx, uid)
	cancel()

	if err == nil {
		return profile, nil
	}

	if !goerrors.IsNotFound(err) {
		b.logger.Warn("profile lookup failed with a non not-found error, attempting repair", "user_id", uid.String(), "error", err)
	}

	tctx, cancel = b.bounded(ctx)
	_, repairErr := b.reconciler.EnsureProfile(tctx, uid, email)
	cancel()
	if repairErr != nil {
		return nil, repairErr
	}

	tctx, cancel = b.bounded(ctx)
	if _, err := b.syncer.SyncClaims(tctx, uid); err != nil {
		b.logger.Warn("claims sync during repair failed", "user_id", uid.String(), "error", err)
	}
	cancel()

	tctx, cancel = b.bounded(ctx)
	profile, err = b.reconciler.LookupProfile(tctx, uid)
	cancel()
	if err != nil {
		return nil, asTimeout(err)
	}

	return profile, nil
}

func (b *Bootstrapper) handleSignedOut(ctx context.Context) {
	from := b.State()
	gen := b.beginPass()

	b.session.clear()
	b.setState(gen, StateUnauthenticated, nil)
	b.navigate(gen, b.routes.Login)

	b.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventSignedOut,
		FromState: from,
		ToState:   StateUnauthenticated,
	})
}

// handleUserUpdated reloads the profile record only; navigation and
// machine state are left alone.
func (b *Bootstrapper) handleUserUpdated(ctx context.Context, event Event) {
	sess := event.Session
	if sess == nil {
		return
	}

	uid, err := sess.GetUserUUID()
	if err != nil {
		b.logger.Warn("user update event carries an invalid user id", "error", err)
		return
	}

	tctx, cancel := b.bounded(ctx)
	defer cancel()

	profile, err := b.reconciler.LookupProfile(tctx, uid)
	if err != nil {
		b.logger.Warn("profile reload after user update failed", "user_id", uid.String(), "error", err)
		return
	}

	b.session.setUser(profile)
}

func (b *Bootstrapper) currentSession(ctx context.Context, event Event) (Session, error) {
	if event.Session != nil {
		return event.Session, nil
	}

	tctx, cancel := b.bounded(ctx)
	defer cancel()

	sess, err := b.identity.CurrentSession(tctx)
	if err != nil {
		return nil, asTimeout(err)
	}
	return sess, nil
}

// failPass downgrades any reconciler or synchronizer failure to an
// unauthenticated transition plus a surfaced error; bootstrap failures
// are never left unhandled.
func (b *Bootstrapper) failPass(ctx context.Context, gen uint64, from BootstrapState, route string, err error) {
	b.logger.Error("bootstrap pass failed", "error", err)
	b.finishUnauthenticated(ctx, gen, from, route, err)

	b.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventBootstrapFailure,
		FromState: from,
		ToState:   StateUnauthenticated,
		Metadata: map[string]any{
			"error": err.Error(),
		},
	})

	if b.notify != nil {
		b.notify(err)
	}
}

func (b *Bootstrapper) finishUnauthenticated(ctx context.Context, gen uint64, from BootstrapState, route string, err error) {
	b.session.clear()
	b.setState(gen, StateUnauthenticated, err)

	if err != nil || !b.isPublic(route) {
		b.navigate(gen, b.routes.Login)
	}
}

func (b *Bootstrapper) beginPass() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++
	b.state = StateResolving
	b.lastErr = nil
	return b.generation
}

func (b *Bootstrapper) setState(gen uint64, state BootstrapState, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.generation != gen {
		return
	}
	b.state = state
	b.lastErr = err
}

// navigate issues a navigation side effect unless a newer pass has taken
// over, which makes a late result stale.
func (b *Bootstrapper) navigate(gen uint64, route string) {
	b.mu.RLock()
	stale := b.generation != gen
	b.mu.RUnlock()

	if stale {
		b.logger.Debug("discarding stale navigation", "route", route)
		return
	}

	b.navigator.Navigate(route)
}

func (b *Bootstrapper) isPublic(route string) bool {
	_, ok := b.public[route]
	return ok
}

func (b *Bootstrapper) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.callTimeout)
}

func (b *Bootstrapper) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	sink := normalizeActivitySink(b.activity)
	if err := sink.Record(ctx, event); err != nil {
		b.logger.Warn("bootstrap activity sink error", "error", err)
	}
}

func asTimeout(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.Is(err, context.DeadlineExceeded) {
		return ErrNetworkTimeout.WithMetadata(map[string]any{
			"cause": err.Error(),
		})
	}
	return err
}

func publicRouteSet(routes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(routes))
	for _, route := range routes {
		if route != "" {
			set[route] = struct{}{}
		}
	}
	return set
}
