package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer of development tokens / Émetteur des jetons de développement
const Issuer = "backoffice-mockapi"

// ErrTokenExpired returned when the configured token is past its exp claim / Retourné quand le jeton a expiré
var ErrTokenExpired = errors.New("jeton d'authentification expiré")

// Claims extends JWT claims with role / Étend les claims JWT avec le rôle
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// IssueToken signs an HS256 token for subject / Signe un jeton HS256 pour subject
func IssueToken(subject, role, key string, ttl time.Duration) (string, time.Time, error) {
	if len(key) < 32 {
		return "", time.Time{}, errors.New("JWT key too weak")
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
		Role: role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken verifies signature, expiry and issuer / Vérifie signature, expiration et émetteur
func ValidateToken(tokenStr, key string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing algorithm: %v", token.Header["alg"])
		}
		return []byte(key), nil
	}, jwt.WithIssuer(Issuer))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}

// ExpiresAt reads the exp claim without verifying the signature.
// ok is false for opaque tokens or tokens without exp.
// ExpiresAt lit le claim exp sans vérifier la signature
func ExpiresAt(tokenStr string) (exp time.Time, ok bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
