package tenancy

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeProfileRepairFailed = "PROFILE_REPAIR_FAILED"
	textCodeUserNotFound        = "USER_NOT_FOUND"
	textCodeTenantNotFound      = "TENANT_NOT_FOUND"
	textCodeTenantInactive      = "TENANT_INACTIVE"
	textCodeInvalidResolution   = "INVALID_RESOLUTION_REQUEST"
	textCodeStoreTenantMismatch = "STORE_TENANT_MISMATCH"
	textCodeNetworkTimeout      = "NETWORK_TIMEOUT"
)

// ErrProfileRepairFailed is returned when the reconciler cannot persist a
// repaired profile record. Callers must treat the user as unauthenticated.
var ErrProfileRepairFailed = goerrors.New("profile repair failed", goerrors.CategoryOperation).
	WithTextCode(textCodeProfileRepairFailed).
	WithCode(goerrors.CodeInternal)

// ErrUserNotFound is returned when no profile record exists for an id.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrTenantNotFound is returned when no active tenant matches a lookup.
var ErrTenantNotFound = goerrors.New("tenant not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeTenantNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrTenantInactive is returned when a referenced tenant is missing or disabled.
var ErrTenantInactive = goerrors.New("tenant is inactive", goerrors.CategoryConflict).
	WithTextCode(textCodeTenantInactive).
	WithCode(goerrors.CodeConflict)

// ErrInvalidResolutionRequest is returned when a tenant resolution request
// carries neither a domain nor a slug.
var ErrInvalidResolutionRequest = goerrors.New("either domain or slug is required", goerrors.CategoryBadInput).
	WithTextCode(textCodeInvalidResolution).
	WithCode(goerrors.CodeBadRequest)

// ErrStoreTenantMismatch is returned when a store selection does not belong
// to the current tenant.
var ErrStoreTenantMismatch = goerrors.New("store does not belong to the current tenant", goerrors.CategoryValidation).
	WithTextCode(textCodeStoreTenantMismatch).
	WithCode(goerrors.CodeBadRequest)

// ErrNetworkTimeout is returned when a bounded boundary call expires.
var ErrNetworkTimeout = goerrors.New("network call timed out", goerrors.CategoryOperation).
	WithTextCode(textCodeNetworkTimeout).
	WithCode(goerrors.CodeInternal)

// IsProfileRepairFailed will check for repair errors
func IsProfileRepairFailed(err error) bool {
	return hasTextCode(err, textCodeProfileRepairFailed)
}

// IsTenantInactive will check for inactive tenant errors
func IsTenantInactive(err error) bool {
	return hasTextCode(err, textCodeTenantInactive)
}

// IsStoreTenantMismatch will check for store/tenant mismatch errors
func IsStoreTenantMismatch(err error) bool {
	return hasTextCode(err, textCodeStoreTenantMismatch)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}
