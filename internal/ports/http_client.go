package ports

import (
	"context"
	"net/http"
	"net/url"
)

// Response is a raw backend answer, left undecoded for the normalizer / Réponse brute du backend
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// HTTPClient is the only way services reach the backend / Seul accès des services au backend
type HTTPClient interface {
	// Get fetches path with optional query / Récupère path avec query optionnelle
	Get(ctx context.Context, path string, query url.Values) (*Response, error)

	// Post sends body encoded as JSON / Envoie body encodé en JSON
	Post(ctx context.Context, path string, body any) (*Response, error)

	// Put sends body encoded as JSON / Envoie body encodé en JSON
	Put(ctx context.Context, path string, body any) (*Response, error)

	// Delete removes the resource at path / Supprime la ressource à path
	Delete(ctx context.Context, path string) (*Response, error)
}
