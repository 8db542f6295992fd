package domain

import (
	"strings"
	"time"
)

// Operation names a bulk action (resource:action[:argument] pattern) / Nom d'une action de masse (pattern resource:action[:argument])
type Operation string

// Predefined actions / Actions prédéfinies
const (
	ActionDelete   = "delete"
	ActionStatut   = "statut"
	ActionModerate = "moderation"
)

// NewOperation builds an operation name / Construit un nom d'opération
func NewOperation(resource, action string, args ...string) Operation {
	parts := append([]string{resource, action}, args...)
	return Operation(strings.Join(parts, ":"))
}

// String returns operation as string / Retourne l'opération en string
func (o Operation) String() string {
	return string(o)
}

func (o Operation) part(i int) string {
	parts := strings.SplitN(string(o), ":", 3)
	if i >= len(parts) {
		return ""
	}
	return parts[i]
}

// Resource returns the resource segment ("civilites") / Retourne le segment ressource
func (o Operation) Resource() string { return o.part(0) }

// Action returns the action segment ("delete", "statut") / Retourne le segment action
func (o Operation) Action() string { return o.part(1) }

// Argument returns the optional argument ("annulee") / Retourne l'argument optionnel
func (o Operation) Argument() string { return o.part(2) }

// Retryable reports whether a journaled run of this operation can be replayed / Indique si l'opération peut être rejouée
func (o Operation) Retryable() bool {
	switch o.Action() {
	case ActionDelete:
		return o.Resource() != ""
	case ActionStatut, ActionModerate:
		return o.Resource() != "" && o.Argument() != ""
	default:
		return false
	}
}

// Item outcomes recorded in the journal / Résultats d'élément enregistrés dans le journal
const (
	ItemSucceeded = "succes"
	ItemFailed    = "echec"
)

// BulkRun is one journaled execution of the batch runner / Exécution journalisée du runner de masse
type BulkRun struct {
	ID           string        `json:"id"`
	Operation    Operation     `json:"operation"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	SuccessCount int           `json:"success_count"`
	ErrorCount   int           `json:"error_count"`
	Items        []BulkRunItem `json:"items,omitempty"`
}

// BulkRunItem is the outcome for one UUID / Résultat pour un UUID
type BulkRunItem struct {
	UUID   string `json:"uuid"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Duration returns how long the run took / Retourne la durée de l'exécution
func (r BulkRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
