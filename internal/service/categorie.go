package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/batch"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/dto"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/export"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/validation"
)

type categorieUpdate struct {
	UUID string
	dto.CategorieUpdate
}

// CategorieService manages product categories / Gère les catégories de produits
type CategorieService struct {
	res         *resource[domain.Categorie]
	createRules *validation.Validator[dto.CategorieCreate]
	updateRules *validation.Validator[categorieUpdate]
}

// NewCategorieService creates category service instance / Crée une instance du service catégories
func NewCategorieService(opts Options) *CategorieService {
	s := &CategorieService{res: newResource[domain.Categorie]("categories", "categories", "categorie", opts)}

	s.createRules = newValidator("categorie", opts,
		[]validation.Rule[dto.CategorieCreate]{
			validation.Required("libelle", func(d dto.CategorieCreate) string { return d.Libelle }),
			validation.MaxLength("libelle", func(d dto.CategorieCreate) string { return d.Libelle }, 100),
			validation.Matches("slug", func(d dto.CategorieCreate) string { return d.Slug }, slugRe, "minuscules, chiffres et tirets"),
			validation.MaxLength("slug", func(d dto.CategorieCreate) string { return d.Slug }, 120),
			validation.UUID("parent_uuid", func(d dto.CategorieCreate) string { return d.ParentUUID }),
			statutRule(func(d dto.CategorieCreate) string { return string(d.Statut) }),
			validation.Suggest(func(d dto.CategorieCreate) bool { return d.Description == "" },
				"une description améliore le référencement de la catégorie"),
		},
		validation.FailOpen("slug_available", func(ctx context.Context, d dto.CategorieCreate) (validation.Outcome, error) {
			if d.Slug == "" {
				return permissive("slug_available"), nil
			}
			ok, err := s.slugAvailable(ctx, d.Slug, "")
			if err != nil {
				return validation.Outcome{}, err
			}
			return availabilityOutcome("slug_available", ok, fmt.Sprintf("le slug %q est déjà utilisé", d.Slug)), nil
		}, permissive("slug_available")),
	)

	s.updateRules = newValidator("categorie", opts,
		[]validation.Rule[categorieUpdate]{
			presentNonBlank("libelle", func(d categorieUpdate) *string { return d.Libelle }),
			presentNonBlank("slug", func(d categorieUpdate) *string { return d.Slug }),
			validation.Matches("slug", func(d categorieUpdate) string { return ptr(d.Slug) }, slugRe, "minuscules, chiffres et tirets"),
			validation.UUID("parent_uuid", func(d categorieUpdate) string { return ptr(d.ParentUUID) }),
			validation.Check(func(d categorieUpdate) bool { return d.ParentUUID == nil || *d.ParentUUID != d.UUID },
				validation.SeverityError, "une catégorie ne peut pas être sa propre parente"),
			statutRule(func(d categorieUpdate) string { return string(ptr(d.Statut)) }),
		},
		validation.FailOpen("slug_available", func(ctx context.Context, d categorieUpdate) (validation.Outcome, error) {
			if d.Slug == nil {
				return permissive("slug_available"), nil
			}
			ok, err := s.slugAvailable(ctx, ptr(d.Slug), d.UUID)
			if err != nil {
				return validation.Outcome{}, err
			}
			return availabilityOutcome("slug_available", ok, fmt.Sprintf("le slug %q est déjà utilisé", ptr(d.Slug))), nil
		}, permissive("slug_available")),
	)

	return s
}

// List returns a page of categories / Retourne une page de catégories
func (s *CategorieService) List(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Categorie], error) {
	return s.res.list(ctx, params)
}

// GetActive lists active categories / Liste les catégories actives
func (s *CategorieService) GetActive(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Categorie], error) {
	params.Statut = string(domain.StatutActif)
	return s.res.list(ctx, params)
}

// GetPopular lists the active categories holding the most products / Catégories les plus fournies
func (s *CategorieService) GetPopular(ctx context.Context, limit int) (*domain.Page[domain.Categorie], error) {
	if limit <= 0 {
		limit = 10
	}
	return s.res.list(ctx, domain.ListParams{
		Page:      1,
		Limit:     limit,
		Statut:    string(domain.StatutActif),
		SortBy:    "produits_count",
		SortOrder: "desc",
	})
}

// GetChildren lists the direct sub-categories of parentUUID / Liste les sous-catégories
func (s *CategorieService) GetChildren(ctx context.Context, parentUUID string, params domain.ListParams) (*domain.Page[domain.Categorie], error) {
	if err := checkUUID(parentUUID); err != nil {
		return nil, err
	}
	return s.res.list(ctx, params.With("parent_uuid", parentUUID))
}

// Get retrieves a category by uuid / Récupère une catégorie par uuid
func (s *CategorieService) Get(ctx context.Context, uuid string) (*domain.Categorie, error) {
	return s.res.get(ctx, uuid)
}

// Validate runs the create rules without sending anything / Valide sans envoyer
func (s *CategorieService) Validate(ctx context.Context, data dto.CategorieCreate) *validation.Result {
	return s.createRules.Validate(ctx, withSlug(data))
}

// Create fills a missing slug from the libellé, validates, then posts.
// Create génère le slug manquant depuis le libellé, valide puis crée
func (s *CategorieService) Create(ctx context.Context, data dto.CategorieCreate) (*domain.Categorie, error) {
	data = withSlug(data)
	if err := validate(ctx, s.createRules, data); err != nil {
		return nil, err
	}
	return s.res.create(ctx, data)
}

func withSlug(d dto.CategorieCreate) dto.CategorieCreate {
	if d.Slug == "" {
		d.Slug = Slugify(d.Libelle)
	}
	return d
}

// Update sends a partial update; validation runs when the slug or the parent changes.
func (s *CategorieService) Update(ctx context.Context, uuid string, data dto.CategorieUpdate) (*domain.Categorie, error) {
	if data.Slug != nil || data.ParentUUID != nil {
		if err := validate(ctx, s.updateRules, categorieUpdate{UUID: uuid, CategorieUpdate: data}); err != nil {
			return nil, err
		}
	}
	return s.res.update(ctx, uuid, data)
}

// Delete deletes a category / Supprime une catégorie
func (s *CategorieService) Delete(ctx context.Context, uuid string) error {
	return s.res.remove(ctx, uuid)
}

// BulkUpdate applies the same changes to several categories / Mise à jour en masse
func (s *CategorieService) BulkUpdate(ctx context.Context, req dto.BulkUpdateRequest) ([]domain.Categorie, error) {
	return s.res.bulkUpdate(ctx, req)
}

// BulkDelete deletes several categories in one call / Suppression en masse
func (s *CategorieService) BulkDelete(ctx context.Context, uuids []string) error {
	return s.res.bulkDelete(ctx, uuids)
}

// DeleteEach deletes categories one by one / Supprime les catégories une par une
func (s *CategorieService) DeleteEach(ctx context.Context, uuids []string) (*batch.Report, error) {
	return s.res.deleteEach(ctx, uuids)
}

// ChangeStatutEach sets statut on each category through the batch runner.
func (s *CategorieService) ChangeStatutEach(ctx context.Context, statut domain.Statut, uuids []string) (*batch.Report, error) {
	if !statut.IsValid() {
		return nil, fmt.Errorf("statut %q invalide", statut)
	}
	fn := func(ctx context.Context, uuid string) error {
		_, err := s.res.update(ctx, uuid, dto.CategorieUpdate{Statut: &statut})
		return err
	}
	return s.res.run(ctx, uuids, fn, domain.ActionStatut, string(statut))
}

// Replay re-runs a journaled operation on uuids / Rejoue une opération journalisée
func (s *CategorieService) Replay(ctx context.Context, op domain.Operation, uuids []string) (*batch.Report, error) {
	if op.Action() == domain.ActionStatut {
		return s.ChangeStatutEach(ctx, domain.Statut(op.Argument()), uuids)
	}
	return s.res.replay(ctx, op, uuids)
}

// Export downloads the PDF export or builds a CSV / Exporte en PDF ou en CSV de secours
func (s *CategorieService) Export(ctx context.Context, params domain.ListParams) (*export.File, error) {
	return s.res.export(ctx, params, categorieColumns)
}

var categorieColumns = []export.Column[domain.Categorie]{
	{Header: "UUID", Value: func(c domain.Categorie) string { return c.UUID }},
	{Header: "Libellé", Value: func(c domain.Categorie) string { return c.Libelle }},
	{Header: "Slug", Value: func(c domain.Categorie) string { return c.Slug }},
	{Header: "Parent", Value: func(c domain.Categorie) string { return c.ParentUUID }},
	{Header: "Statut", Value: func(c domain.Categorie) string { return string(c.Statut) }},
	{Header: "Produits", Value: func(c domain.Categorie) string { return strconv.Itoa(c.ProduitsCount) }},
}

// Stats returns category counters / Retourne les statistiques des catégories
func (s *CategorieService) Stats(ctx context.Context) (*domain.ReferentielStats, error) {
	stats := domain.DefaultReferentielStats()
	if err := s.res.statsAt(ctx, s.res.path("stats"), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *CategorieService) slugAvailable(ctx context.Context, slug, excludeUUID string) (bool, error) {
	query := url.Values{"slug": {slug}}
	if excludeUUID != "" {
		query.Set("exclude_uuid", excludeUUID)
	}
	return checkAvailable(ctx, s.res.opts.HTTP, s.res.path("check-slug"), query)
}

// IsSlugAvailable reports whether slug is free; a failed check answers true.
// IsSlugAvailable indique si le slug est libre ; un échec de vérification renvoie true
func (s *CategorieService) IsSlugAvailable(ctx context.Context, slug, excludeUUID string) bool {
	ok, err := s.slugAvailable(ctx, slug, excludeUUID)
	if err != nil {
		slog.Warn("service: slug check unavailable, assuming free", "resource", s.res.name, "slug", slug, "err", err)
		return true
	}
	return ok
}
