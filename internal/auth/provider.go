// Package auth supplies the bearer token injected into the API client.
// Package auth fournit le jeton bearer injecté dans le client API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/ports"
)

// StaticToken returns a fixed token / Retourne un jeton fixe
type StaticToken string

// Token implements ports.CredentialProvider.
func (s StaticToken) Token(context.Context) (string, error) {
	token := strings.TrimSpace(string(s))
	if token == "" {
		return "", ports.ErrNoCredentials
	}
	return token, nil
}

// FileToken reads the token from a file on every call, so a refreshed file is picked up.
// FileToken relit le fichier à chaque appel pour prendre en compte un jeton renouvelé
type FileToken struct {
	Path string
}

// Token implements ports.CredentialProvider.
func (f FileToken) Token(context.Context) (string, error) {
	if f.Path == "" {
		return "", ports.ErrNoCredentials
	}
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ports.ErrNoCredentials
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ports.ErrNoCredentials
	}
	return token, nil
}

// Chain tries each provider in order, skipping those without credentials.
// Chain essaie chaque fournisseur dans l'ordre
type Chain []ports.CredentialProvider

// Token implements ports.CredentialProvider.
func (c Chain) Token(ctx context.Context) (string, error) {
	for _, p := range c {
		token, err := p.Token(ctx)
		if errors.Is(err, ports.ErrNoCredentials) {
			continue
		}
		return token, err
	}
	return "", ports.ErrNoCredentials
}

// ExpiryGuard rejects JWTs whose exp is within Skew of now; opaque tokens pass through.
// ExpiryGuard rejette les JWT expirés ; les jetons opaques passent
type ExpiryGuard struct {
	Next ports.CredentialProvider
	Skew time.Duration
	Now  func() time.Time
}

// Token implements ports.CredentialProvider.
func (g ExpiryGuard) Token(ctx context.Context) (string, error) {
	token, err := g.Next.Token(ctx)
	if err != nil {
		return "", err
	}

	exp, ok := ExpiresAt(token)
	if !ok {
		return token, nil
	}

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	if !now().Add(g.Skew).Before(exp) {
		slog.Warn("auth: configured token is expired", "expired_at", exp)
		return "", ErrTokenExpired
	}
	return token, nil
}

// NewProvider builds the provider chain: inline token first, then token file, both expiry-guarded.
// NewProvider construit la chaîne : jeton en ligne puis fichier, avec contrôle d'expiration
func NewProvider(token, tokenFile string, skew time.Duration) ports.CredentialProvider {
	return ExpiryGuard{
		Next: Chain{StaticToken(token), FileToken{Path: tokenFile}},
		Skew: skew,
	}
}
