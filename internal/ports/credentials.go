package ports

import (
	"context"
	"errors"
)

// ErrNoCredentials returned when no token is configured / Retourné quand aucun token n'est configuré
var ErrNoCredentials = errors.New("aucun jeton d'authentification disponible")

// CredentialProvider supplies the bearer token for each request / Fournit le jeton bearer pour chaque requête
type CredentialProvider interface {
	// Token returns the current token or ErrNoCredentials / Retourne le jeton courant ou ErrNoCredentials
	Token(ctx context.Context) (string, error)
}
