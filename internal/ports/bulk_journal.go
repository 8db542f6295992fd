package ports

import (
	"context"
	"errors"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
)

// ErrNotFound returned when resource not found / Retourné quand la ressource n'est pas trouvée
var ErrNotFound = errors.New("not found")

// BulkJournal persists batch runner executions / Persiste les exécutions du runner de masse
type BulkJournal interface {
	// Record stores a finished run with its items / Enregistre une exécution terminée et ses éléments
	Record(ctx context.Context, run *domain.BulkRun) error

	// List returns the most recent runs, items omitted / Retourne les exécutions récentes, sans éléments
	List(ctx context.Context, limit int) ([]*domain.BulkRun, error)

	// Get returns a run with its items or ErrNotFound / Retourne une exécution avec ses éléments ou ErrNotFound
	Get(ctx context.Context, id string) (*domain.BulkRun, error)

	// FailedUUIDs returns the UUIDs that failed in a run / Retourne les UUID en échec d'une exécution
	FailedUUIDs(ctx context.Context, id string) ([]string, error)
}
