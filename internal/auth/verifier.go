package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xenitab/go-oidc-middleware/oidctoken"
	"github.com/xenitab/go-oidc-middleware/options"
)

// DefaultIssuer is the issuer of Google Sign-In ID tokens.
const DefaultIssuer = "https://accounts.google.com"

// Verification errors.
var (
	ErrEmptyToken     = errors.New("empty bearer token")
	ErrMissingSubject = errors.New("token missing sub claim")
)

// Verifier checks a bearer token and returns the stable subject identifier it was issued to.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// VerifierConfig configures an OIDCVerifier.
type VerifierConfig struct {
	// Issuer is the expected iss claim; discovery and JWKS are resolved from it.
	Issuer string
	// ClientID is the registered client identifier, required in the aud claim.
	ClientID string
}

// OIDCVerifier validates ID tokens against the issuer's published signing keys.
// Signing keys are fetched on first use and refreshed by the token handler;
// verification results are never cached.
//
// Google signs ID tokens with either "https://accounts.google.com" or the bare
// "accounts.google.com" as iss, so the issuer is also accepted without its scheme.
type OIDCVerifier struct {
	tokenHandler *oidctoken.TokenHandler[map[string]any]

	bareIssuer  string
	bareHandler *oidctoken.TokenHandler[map[string]any]
}

// NewOIDCVerifier builds a verifier for the given issuer and audience.
func NewOIDCVerifier(cfg VerifierConfig) (*OIDCVerifier, error) {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}
	if cfg.ClientID == "" {
		return nil, errors.New("oidc client id is required")
	}

	// Lazy JWKS loading keeps startup independent of the identity provider being reachable.
	tokenHandler, err := oidctoken.New[map[string]any](nil,
		options.WithIssuer(issuer),
		options.WithRequiredAudience(cfg.ClientID),
		options.WithLazyLoadJwks(true),
	)
	if err != nil {
		return nil, fmt.Errorf("initialise oidc token handler: %w", err)
	}

	v := &OIDCVerifier{tokenHandler: tokenHandler}

	if bare := bareIssuer(issuer); bare != "" {
		// The bare form has no discovery document of its own; keys come from the full issuer's.
		bareHandler, err := oidctoken.New[map[string]any](nil,
			options.WithIssuer(bare),
			options.WithDiscoveryUri(strings.TrimSuffix(issuer, "/")+"/.well-known/openid-configuration"),
			options.WithRequiredAudience(cfg.ClientID),
			options.WithLazyLoadJwks(true),
		)
		if err != nil {
			return nil, fmt.Errorf("initialise oidc token handler for %s: %w", bare, err)
		}
		v.bareIssuer = bare
		v.bareHandler = bareHandler
	}

	return v, nil
}

// Verify validates signature, issuer, audience and expiry, then returns the sub claim.
func (v *OIDCVerifier) Verify(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrEmptyToken
	}

	claims, err := v.handlerFor(token).ParseToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return "", ErrMissingSubject
	}

	return subject, nil
}

// handlerFor picks the token handler by the unverified iss claim. The chosen
// handler still checks signature and issuer.
func (v *OIDCVerifier) handlerFor(token string) *oidctoken.TokenHandler[map[string]any] {
	if v.bareHandler == nil {
		return v.tokenHandler
	}

	unverified, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return v.tokenHandler
	}
	if iss, err := unverified.Claims.GetIssuer(); err == nil && iss == v.bareIssuer {
		return v.bareHandler
	}
	return v.tokenHandler
}

// bareIssuer strips the scheme from an issuer URL, returning "" when the
// issuer has no scheme.
func bareIssuer(issuer string) string {
	u, err := url.Parse(issuer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Host + strings.TrimSuffix(u.Path, "/")
}

// BearerToken extracts the credential from an Authorization header value.
// It takes the second space-separated field, so "Bearer abc" yields "abc"
// and a header without a space yields "".
func BearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
