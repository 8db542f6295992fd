package service

import (
	"context"
	"fmt"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/batch"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/dto"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/export"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/validation"
)

// VilleService manages cities / Gère les villes
type VilleService struct {
	res         *resource[domain.Ville]
	createRules *validation.Validator[dto.VilleCreate]
	updateRules *validation.Validator[dto.VilleUpdate]
}

// NewVilleService creates city service instance / Crée une instance du service villes
func NewVilleService(opts Options) *VilleService {
	s := &VilleService{res: newResource[domain.Ville]("villes", "villes", "ville", opts)}

	s.createRules = newValidator("ville", opts, []validation.Rule[dto.VilleCreate]{
		validation.Required("nom", func(d dto.VilleCreate) string { return d.Nom }),
		validation.MaxLength("nom", func(d dto.VilleCreate) string { return d.Nom }, 100),
		validation.Required("pays_uuid", func(d dto.VilleCreate) string { return d.PaysUUID }),
		validation.UUID("pays_uuid", func(d dto.VilleCreate) string { return d.PaysUUID }),
		validation.Matches("code_postal", func(d dto.VilleCreate) string { return d.CodePostal }, cpRe, "3 à 10 caractères").As(validation.SeverityWarning),
		statutRule(func(d dto.VilleCreate) string { return string(d.Statut) }),
		validation.Suggest(func(d dto.VilleCreate) bool { return d.Region == "" },
			"renseignez la région pour faciliter la recherche"),
	})

	s.updateRules = newValidator("ville", opts, []validation.Rule[dto.VilleUpdate]{
		presentNonBlank("nom", func(d dto.VilleUpdate) *string { return d.Nom }),
		validation.UUID("pays_uuid", func(d dto.VilleUpdate) string { return ptr(d.PaysUUID) }),
		statutRule(func(d dto.VilleUpdate) string { return string(ptr(d.Statut)) }),
	})

	return s
}

// List returns a page of cities / Retourne une page de villes
func (s *VilleService) List(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Ville], error) {
	return s.res.list(ctx, params)
}

// GetActive lists active cities / Liste les villes actives
func (s *VilleService) GetActive(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Ville], error) {
	params.Statut = string(domain.StatutActif)
	return s.res.list(ctx, params)
}

// GetByPays lists the cities of a country / Liste les villes d'un pays
func (s *VilleService) GetByPays(ctx context.Context, paysUUID string, params domain.ListParams) (*domain.Page[domain.Ville], error) {
	if err := checkUUID(paysUUID); err != nil {
		return nil, err
	}
	return s.res.list(ctx, params.With("pays_uuid", paysUUID))
}

// Get retrieves a city by uuid / Récupère une ville par uuid
func (s *VilleService) Get(ctx context.Context, uuid string) (*domain.Ville, error) {
	return s.res.get(ctx, uuid)
}

// Validate runs the create rules without sending anything / Valide sans envoyer
func (s *VilleService) Validate(ctx context.Context, data dto.VilleCreate) *validation.Result {
	return s.createRules.Validate(ctx, data)
}

// Create validates then posts a city / Valide puis crée une ville
func (s *VilleService) Create(ctx context.Context, data dto.VilleCreate) (*domain.Ville, error) {
	if err := validate(ctx, s.createRules, data); err != nil {
		return nil, err
	}
	return s.res.create(ctx, data)
}

// Update validates the fields present then sends a partial update.
func (s *VilleService) Update(ctx context.Context, uuid string, data dto.VilleUpdate) (*domain.Ville, error) {
	if err := validate(ctx, s.updateRules, data); err != nil {
		return nil, err
	}
	return s.res.update(ctx, uuid, data)
}

// Delete deletes a city / Supprime une ville
func (s *VilleService) Delete(ctx context.Context, uuid string) error {
	return s.res.remove(ctx, uuid)
}

// BulkUpdate applies the same changes to several cities / Mise à jour en masse
func (s *VilleService) BulkUpdate(ctx context.Context, req dto.BulkUpdateRequest) ([]domain.Ville, error) {
	return s.res.bulkUpdate(ctx, req)
}

// BulkDelete deletes several cities in one call / Suppression en masse
func (s *VilleService) BulkDelete(ctx context.Context, uuids []string) error {
	return s.res.bulkDelete(ctx, uuids)
}

// DeleteEach deletes cities one by one / Supprime les villes une par une
func (s *VilleService) DeleteEach(ctx context.Context, uuids []string) (*batch.Report, error) {
	return s.res.deleteEach(ctx, uuids)
}

// ChangeStatutEach sets statut on each city through the batch runner.
func (s *VilleService) ChangeStatutEach(ctx context.Context, statut domain.Statut, uuids []string) (*batch.Report, error) {
	if !statut.IsValid() {
		return nil, fmt.Errorf("statut %q invalide", statut)
	}
	fn := func(ctx context.Context, uuid string) error {
		_, err := s.res.update(ctx, uuid, dto.VilleUpdate{Statut: &statut})
		return err
	}
	return s.res.run(ctx, uuids, fn, domain.ActionStatut, string(statut))
}

// Replay re-runs a journaled operation on uuids / Rejoue une opération journalisée
func (s *VilleService) Replay(ctx context.Context, op domain.Operation, uuids []string) (*batch.Report, error) {
	if op.Action() == domain.ActionStatut {
		return s.ChangeStatutEach(ctx, domain.Statut(op.Argument()), uuids)
	}
	return s.res.replay(ctx, op, uuids)
}

// Export downloads the PDF export or builds a CSV / Exporte en PDF ou en CSV de secours
func (s *VilleService) Export(ctx context.Context, params domain.ListParams) (*export.File, error) {
	return s.res.export(ctx, params, villeColumns)
}

var villeColumns = []export.Column[domain.Ville]{
	{Header: "UUID", Value: func(v domain.Ville) string { return v.UUID }},
	{Header: "Nom", Value: func(v domain.Ville) string { return v.Nom }},
	{Header: "Code postal", Value: func(v domain.Ville) string { return v.CodePostal }},
	{Header: "Région", Value: func(v domain.Ville) string { return v.Region }},
	{Header: "Pays", Value: func(v domain.Ville) string {
		if v.Pays != nil {
			return v.Pays.Nom
		}
		return v.PaysUUID
	}},
	{Header: "Statut", Value: func(v domain.Ville) string { return string(v.Statut) }},
}

// Stats returns city counters / Retourne les statistiques des villes
func (s *VilleService) Stats(ctx context.Context) (*domain.ReferentielStats, error) {
	stats := domain.DefaultReferentielStats()
	if err := s.res.statsAt(ctx, s.res.path("stats"), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
