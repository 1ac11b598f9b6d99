package tenancy

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RegisterTenancyRoutes mounts the tenant-resolution and claims-sync
// endpoints on the given router.
func RegisterTenancyRoutes[T any](app router.Router[T], opts ...TenancyControllerOption) {

	controller := NewTenancyController(opts...)

	app.
		Post(controller.Routes.ResolveTenant, controller.ResolveTenant).
		SetName("tenancy.resolve.post")

	app.
		Post(controller.Routes.SyncClaims, controller.SyncClaims).
		SetName("tenancy.sync-claims.post")
}

type TenancyControllerRoutes struct {
	ResolveTenant string
	SyncClaims    string
}

type TenancyController struct {
	Logger       Logger
	Resolver     *Resolver
	Synchronizer *Synchronizer
	Routes       *TenancyControllerRoutes
}

type TenancyControllerOption func(*TenancyController) *TenancyController

func NewTenancyController(opts ...TenancyControllerOption) *TenancyController {
	c := &TenancyController{
		Logger: defLogger{},
		Routes: &TenancyControllerRoutes{
			ResolveTenant: "/resolve-tenant",
			SyncClaims:    "/sync-claims",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Resolver == nil {
		panic("Missing Resolver in tenancy controller...")
	}

	if c.Synchronizer == nil {
		panic("Missing Synchronizer in tenancy controller...")
	}

	return c
}

// WithControllerResolver sets the tenant resolver.
func WithControllerResolver(resolver *Resolver) TenancyControllerOption {
	return func(c *TenancyController) *TenancyController {
		c.Resolver = resolver
		return c
	}
}

// WithControllerSynchronizer sets the claims synchronizer.
func WithControllerSynchronizer(syncer *Synchronizer) TenancyControllerOption {
	return func(c *TenancyController) *TenancyController {
		c.Synchronizer = syncer
		return c
	}
}

// WithControllerLogger sets the controller logger.
func WithControllerLogger(logger Logger) TenancyControllerOption {
	return func(c *TenancyController) *TenancyController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// TenantResolutionRequest is the resolve-tenant payload. Exactly one of
// domain or slug is expected.
type TenantResolutionRequest struct {
	Domain string `form:"domain" json:"domain"`
	Slug   string `form:"slug" json:"slug"`
}

// Validate will run validation rules
func (r TenantResolutionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Domain, validation.Length(1, 253)),
		validation.Field(&r.Slug, validation.Length(1, 100)),
	)
}

func (r TenantResolutionRequest) exactlyOne() bool {
	return (r.Domain == "") != (r.Slug == "")
}

func (a *TenancyController) ResolveTenant(ctx router.Context) error {
	payload := new(TenantResolutionRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("resolve tenant parse payload", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	if !payload.exactlyOne() {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": ErrInvalidResolutionRequest.Message,
		})
	}

	resolution, err := a.Resolver.Resolve(ctx.Context(), payload.Domain, payload.Slug)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, resolution)
}

// ClaimsSyncRequest is the sync-claims payload.
type ClaimsSyncRequest struct {
	UserID string `form:"user_id" json:"user_id"`
}

// Validate will run validation rules
func (r ClaimsSyncRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, is.UUIDv4),
	)
}

func (a *TenancyController) SyncClaims(ctx router.Context) error {
	payload := new(ClaimsSyncRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("sync claims parse payload", "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "user_id must be a valid uuid",
		})
	}

	claims, err := a.Synchronizer.SyncClaims(ctx.Context(), userID)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, claims)
}

func (a *TenancyController) renderError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.TextCode {
		case textCodeInvalidResolution:
			return ctx.JSON(router.StatusBadRequest, map[string]string{"error": richErr.Message})
		case textCodeTenantNotFound, textCodeUserNotFound, textCodeTenantInactive:
			return ctx.JSON(router.StatusNotFound, map[string]string{"error": richErr.Message})
		}
	}

	a.Logger.Error("tenancy endpoint failure", "error", err)
	return ctx.JSON(router.StatusInternalServerError, map[string]string{
		"error": "internal error",
	})
}
