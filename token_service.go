package tenancy

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService mints and validates tenancy session tokens.
type TokenService interface {
	Mint(ctx context.Context, profile *Profile, payload ClaimsPayload) (string, error)
	Validate(tokenString string) (*TenancyClaims, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        jwt.ClaimStrings
	logger          Logger
	decorator       ClaimsDecorator
}

// NewTokenService creates a new TokenService instance. tokenExpiration
// is in hours.
func NewTokenService(signingKey []byte, tokenExpiration int, issuer string, audience jwt.ClaimStrings, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		audience:        audience,
		logger:          logger,
		decorator:       noopClaimsDecorator{},
	}
}

// WithClaimsDecorator configures a ClaimsDecorator for enriching tokens.
func (ts *TokenServiceImpl) WithClaimsDecorator(decorator ClaimsDecorator) *TokenServiceImpl {
	ts.decorator = normalizeClaimsDecorator(decorator)
	return ts
}

// Mint signs a token carrying the synced claims payload for the profile.
func (ts *TokenServiceImpl) Mint(ctx context.Context, profile *Profile, payload ClaimsPayload) (string, error) {
	if profile == nil {
		return "", errors.New("profile must not be nil", errors.CategoryBadInput)
	}

	now := time.Now()
	claims := &TenancyClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   profile.ID.String(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.tokenExpiration) * time.Hour)),
		},
		UID: profile.ID.String(),
	}
	claims.ApplyPayload(payload)

	decorator := normalizeClaimsDecorator(ts.decorator)
	if err := decorator.Decorate(ctx, profile, claims); err != nil {
		ts.logger.Error("claims decorator failed", "error", err)
		return "", err
	}

	return ts.signClaims(claims)
}

func (ts *TokenServiceImpl) signClaims(claims *TenancyClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims
func (ts *TokenServiceImpl) Validate(tokenString string) (*TenancyClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &TenancyClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryAuth, "invalid tenancy token").
			WithCode(errors.CodeUnauthorized)
	}

	if claims, ok := token.Claims.(*TenancyClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, errors.New("unable to decode token claims", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized)
}
