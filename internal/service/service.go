// Package service holds one domain service per back-office entity. Each
// service owns its endpoint paths and validation rules and delegates the
// shared plumbing (normalization, bulk runs, export, stats) to resource.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/batch"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/export"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/ports"
)

// Common service errors
var (
	ErrMissingUUID = errors.New("uuid manquant")
	ErrInvalidUUID = errors.New("uuid invalide")
	ErrNoUUIDs     = errors.New("aucun uuid fourni")
	ErrNoUpdates   = errors.New("aucune modification fournie")
)

// checkUUID rejects identifiers that would not stay a single path segment.
// "." and ".." are resolved away by URL joining and would hit the collection or the API root.
func checkUUID(uuid string) error {
	switch uuid {
	case "":
		return ErrMissingUUID
	case ".", "..":
		return fmt.Errorf("%w: %q", ErrInvalidUUID, uuid)
	}
	return nil
}

// MetricsRecorder records service metrics / Enregistre les métriques des services
type MetricsRecorder interface {
	RecordNormalizerShape(resource, shape string)
	RecordValidation(entity string, valid bool, errors, warnings, suggestions int)
	RecordFailOpen(entity, check string)
}

// ExportSettings controls the CSV fallback / Paramètres de l'export CSV de secours
type ExportSettings struct {
	CSV      export.CSVOptions
	PageSize int // Items fetched per page while collecting rows / Éléments par page lors de la collecte
	MaxPages int // Hard stop on pagination / Arrêt forcé de la pagination
}

// DefaultExportSettings returns ';' separated CSV with BOM, 100 items per page, 50 pages max.
func DefaultExportSettings() ExportSettings {
	return ExportSettings{CSV: export.DefaultCSVOptions(), PageSize: 100, MaxPages: 50}
}

// Options carries the collaborators shared by every service / Dépendances partagées par les services
type Options struct {
	HTTP    ports.HTTPClient
	Runner  *batch.Runner
	Metrics MetricsRecorder
	Export  ExportSettings

	// StrictSubchecks turns unavailable backend checks into blocking errors.
	StrictSubchecks bool

	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Runner == nil {
		o.Runner = batch.NewRunner(batch.Options{})
	}
	if o.Export.PageSize <= 0 || o.Export.MaxPages <= 0 {
		def := DefaultExportSettings()
		if o.Export.PageSize <= 0 {
			o.Export.PageSize = def.PageSize
		}
		if o.Export.MaxPages <= 0 {
			o.Export.MaxPages = def.MaxPages
		}
	}
	if o.Export.CSV.Separator == 0 {
		o.Export.CSV = export.DefaultCSVOptions()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Services groups the eight domain services / Regroupe les huit services métier
type Services struct {
	Civilites         *CiviliteService
	Pays              *PaysService
	Villes            *VilleService
	Categories        *CategorieService
	Commandes         *CommandeService
	Commentaires      *CommentaireService
	DonInteresses     *DonInteresseService
	EchangeInteresses *EchangeInteresseService
}

// New builds every service over the same collaborators / Construit tous les services
func New(opts Options) *Services {
	return &Services{
		Civilites:         NewCiviliteService(opts),
		Pays:              NewPaysService(opts),
		Villes:            NewVilleService(opts),
		Categories:        NewCategorieService(opts),
		Commandes:         NewCommandeService(opts),
		Commentaires:      NewCommentaireService(opts),
		DonInteresses:     NewDonInteresseService(opts),
		EchangeInteresses: NewEchangeInteresseService(opts),
	}
}

// Replayer re-runs a journaled bulk operation / Rejoue une opération de masse journalisée
type Replayer interface {
	Replay(ctx context.Context, op domain.Operation, uuids []string) (*batch.Report, error)
}

// Replayers maps each resource segment to the service owning it.
func (s *Services) Replayers() map[string]Replayer {
	return map[string]Replayer{
		"civilites":          s.Civilites,
		"pays":               s.Pays,
		"villes":             s.Villes,
		"categories":         s.Categories,
		"commandes":          s.Commandes,
		"commentaires":       s.Commentaires,
		"don-interesses":     s.DonInteresses,
		"echange-interesses": s.EchangeInteresses,
	}
}

// Replay dispatches op to the service of its resource / Aiguille op vers le service de sa ressource
func (s *Services) Replay(ctx context.Context, op domain.Operation, uuids []string) (*batch.Report, error) {
	if !op.Retryable() {
		return nil, fmt.Errorf("%w: %s", ErrNotReplayable, op)
	}
	r, ok := s.Replayers()[op.Resource()]
	if !ok {
		return nil, fmt.Errorf("%w: ressource %q inconnue", ErrNotReplayable, op.Resource())
	}
	return r.Replay(ctx, op, uuids)
}
