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

// civiliteUpdate pairs a partial update with the uuid it targets.
type civiliteUpdate struct {
	UUID string
	dto.CiviliteUpdate
}

// CiviliteService manages civilités / Gère les civilités
type CiviliteService struct {
	res         *resource[domain.Civilite]
	createRules *validation.Validator[dto.CiviliteCreate]
	updateRules *validation.Validator[civiliteUpdate]
}

// NewCiviliteService creates civilité service instance / Crée une instance du service civilités
func NewCiviliteService(opts Options) *CiviliteService {
	s := &CiviliteService{res: newResource[domain.Civilite]("civilites", "civilites", "civilite", opts)}

	s.createRules = newValidator("civilite", opts,
		[]validation.Rule[dto.CiviliteCreate]{
			validation.Required("libelle", func(d dto.CiviliteCreate) string { return d.Libelle }),
			validation.MaxLength("libelle", func(d dto.CiviliteCreate) string { return d.Libelle }, 50),
			validation.Matches("code", func(d dto.CiviliteCreate) string { return d.Code }, codeRe, "majuscules, chiffres ou _, 10 caractères max"),
			statutRule(func(d dto.CiviliteCreate) string { return string(d.Statut) }),
			validation.Between("ordre", func(d dto.CiviliteCreate) int { return d.Ordre }, 1, 999),
			validation.Suggest(func(d dto.CiviliteCreate) bool { return d.Description == "" },
				"ajoutez une description pour préciser l'usage de cette civilité"),
		},
		validation.FailOpen("code_available", func(ctx context.Context, d dto.CiviliteCreate) (validation.Outcome, error) {
			if d.Code == "" {
				return permissive("code_available"), nil
			}
			ok, err := s.codeAvailable(ctx, d.Code, "")
			if err != nil {
				return validation.Outcome{}, err
			}
			return availabilityOutcome("code_available", ok, fmt.Sprintf("le code %q est déjà utilisé", d.Code)), nil
		}, permissive("code_available")),
	)

	s.updateRules = newValidator("civilite", opts,
		[]validation.Rule[civiliteUpdate]{
			presentNonBlank("libelle", func(d civiliteUpdate) *string { return d.Libelle }),
			validation.MaxLength("libelle", func(d civiliteUpdate) string { return ptr(d.Libelle) }, 50),
			validation.Required("code", func(d civiliteUpdate) string { return ptr(d.Code) }),
			validation.Matches("code", func(d civiliteUpdate) string { return ptr(d.Code) }, codeRe, "majuscules, chiffres ou _, 10 caractères max"),
			statutRule(func(d civiliteUpdate) string { return string(ptr(d.Statut)) }),
		},
		validation.FailOpen("code_available", func(ctx context.Context, d civiliteUpdate) (validation.Outcome, error) {
			code := ptr(d.Code)
			ok, err := s.codeAvailable(ctx, code, d.UUID)
			if err != nil {
				return validation.Outcome{}, err
			}
			return availabilityOutcome("code_available", ok, fmt.Sprintf("le code %q est déjà utilisé", code)), nil
		}, permissive("code_available")),
	)

	return s
}

// List returns a page of civilités / Retourne une page de civilités
func (s *CiviliteService) List(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Civilite], error) {
	return s.res.list(ctx, params)
}

// GetActive lists civilités with statut actif / Liste les civilités actives
func (s *CiviliteService) GetActive(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Civilite], error) {
	params.Statut = string(domain.StatutActif)
	return s.res.list(ctx, params)
}

// GetByUsage lists active civilités usable in a context ("client", "vendeur") / Liste par usage
func (s *CiviliteService) GetByUsage(ctx context.Context, usage string, params domain.ListParams) (*domain.Page[domain.Civilite], error) {
	params.Statut = string(domain.StatutActif)
	return s.res.list(ctx, params.With("usage", usage))
}

// Get retrieves a civilité by uuid / Récupère une civilité par uuid
func (s *CiviliteService) Get(ctx context.Context, uuid string) (*domain.Civilite, error) {
	return s.res.get(ctx, uuid)
}

// Validate runs the create rules without sending anything / Valide sans envoyer
func (s *CiviliteService) Validate(ctx context.Context, data dto.CiviliteCreate) *validation.Result {
	return s.createRules.Validate(ctx, data)
}

// Create validates then posts a civilité / Valide puis crée une civilité
func (s *CiviliteService) Create(ctx context.Context, data dto.CiviliteCreate) (*domain.Civilite, error) {
	if err := validate(ctx, s.createRules, data); err != nil {
		return nil, err
	}
	return s.res.create(ctx, data)
}

// Update sends a partial update; the code is re-validated only when present.
// Update envoie une mise à jour partielle ; le code n'est revalidé que s'il est présent
func (s *CiviliteService) Update(ctx context.Context, uuid string, data dto.CiviliteUpdate) (*domain.Civilite, error) {
	if data.Code != nil {
		if err := validate(ctx, s.updateRules, civiliteUpdate{UUID: uuid, CiviliteUpdate: data}); err != nil {
			return nil, err
		}
	}
	return s.res.update(ctx, uuid, data)
}

// Delete deletes a civilité / Supprime une civilité
func (s *CiviliteService) Delete(ctx context.Context, uuid string) error {
	return s.res.remove(ctx, uuid)
}

// BulkUpdate applies the same changes to several civilités in one call / Applique les mêmes changements en un appel
func (s *CiviliteService) BulkUpdate(ctx context.Context, req dto.BulkUpdateRequest) ([]domain.Civilite, error) {
	return s.res.bulkUpdate(ctx, req)
}

// BulkDelete deletes several civilités in one call / Supprime plusieurs civilités en un appel
func (s *CiviliteService) BulkDelete(ctx context.Context, uuids []string) error {
	return s.res.bulkDelete(ctx, uuids)
}

// DeleteEach deletes civilités one by one, collecting partial success / Supprime un par un avec succès partiel
func (s *CiviliteService) DeleteEach(ctx context.Context, uuids []string) (*batch.Report, error) {
	return s.res.deleteEach(ctx, uuids)
}

// ChangeStatutEach sets statut on each civilité through the batch runner.
func (s *CiviliteService) ChangeStatutEach(ctx context.Context, statut domain.Statut, uuids []string) (*batch.Report, error) {
	if !statut.IsValid() {
		return nil, fmt.Errorf("statut %q invalide", statut)
	}
	fn := func(ctx context.Context, uuid string) error {
		_, err := s.res.update(ctx, uuid, dto.CiviliteUpdate{Statut: &statut})
		return err
	}
	return s.res.run(ctx, uuids, fn, domain.ActionStatut, string(statut))
}

// Replay re-runs a journaled operation on uuids / Rejoue une opération journalisée
func (s *CiviliteService) Replay(ctx context.Context, op domain.Operation, uuids []string) (*batch.Report, error) {
	if op.Action() == domain.ActionStatut {
		return s.ChangeStatutEach(ctx, domain.Statut(op.Argument()), uuids)
	}
	return s.res.replay(ctx, op, uuids)
}

// Export downloads the PDF export or builds a CSV / Exporte en PDF ou en CSV de secours
func (s *CiviliteService) Export(ctx context.Context, params domain.ListParams) (*export.File, error) {
	return s.res.export(ctx, params, civiliteColumns)
}

var civiliteColumns = []export.Column[domain.Civilite]{
	{Header: "UUID", Value: func(c domain.Civilite) string { return c.UUID }},
	{Header: "Code", Value: func(c domain.Civilite) string { return c.Code }},
	{Header: "Libellé", Value: func(c domain.Civilite) string { return c.Libelle }},
	{Header: "Description", Value: func(c domain.Civilite) string { return c.Description }},
	{Header: "Statut", Value: func(c domain.Civilite) string { return string(c.Statut) }},
	{Header: "Ordre", Value: func(c domain.Civilite) string { return strconv.Itoa(c.Ordre) }},
	{Header: "Créé le", Value: func(c domain.Civilite) string { return formatTimestamp(c.CreatedAt) }},
}

// Stats returns reference-data counters, defaults filled in / Retourne les statistiques
func (s *CiviliteService) Stats(ctx context.Context) (*domain.ReferentielStats, error) {
	stats := domain.DefaultReferentielStats()
	if err := s.res.statsAt(ctx, s.res.path("stats"), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *CiviliteService) codeAvailable(ctx context.Context, code, excludeUUID string) (bool, error) {
	query := url.Values{"code": {code}}
	if excludeUUID != "" {
		query.Set("exclude_uuid", excludeUUID)
	}
	return checkAvailable(ctx, s.res.opts.HTTP, s.res.path("check-code"), query)
}

// IsCodeAvailable reports whether code is free. A failed check answers true.
// IsCodeAvailable indique si le code est libre ; un échec de vérification renvoie true
func (s *CiviliteService) IsCodeAvailable(ctx context.Context, code, excludeUUID string) bool {
	ok, err := s.codeAvailable(ctx, code, excludeUUID)
	if err != nil {
		slog.Warn("service: code check unavailable, assuming free", "resource", s.res.name, "code", code, "err", err)
		return true
	}
	return ok
}
