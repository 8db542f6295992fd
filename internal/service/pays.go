package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/batch"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/dto"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/export"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/validation"
)

type paysUpdate struct {
	UUID string
	dto.PaysUpdate
}

// PaysService manages countries / Gère les pays
type PaysService struct {
	res         *resource[domain.Pays]
	createRules *validation.Validator[dto.PaysCreate]
	updateRules *validation.Validator[paysUpdate]
}

// NewPaysService creates country service instance / Crée une instance du service pays
func NewPaysService(opts Options) *PaysService {
	s := &PaysService{res: newResource[domain.Pays]("pays", "pays", "pays", opts)}

	s.createRules = newValidator("pays", opts,
		[]validation.Rule[dto.PaysCreate]{
			validation.Required("nom", func(d dto.PaysCreate) string { return d.Nom }),
			validation.MaxLength("nom", func(d dto.PaysCreate) string { return d.Nom }, 100),
			validation.Required("code", func(d dto.PaysCreate) string { return d.Code }),
			validation.Matches("code", func(d dto.PaysCreate) string { return d.Code }, isoRe, "code ISO à 2 lettres majuscules"),
			validation.Matches("indicatif", func(d dto.PaysCreate) string { return d.Indicatif }, telRe, "format +33").As(validation.SeverityWarning),
			statutRule(func(d dto.PaysCreate) string { return string(d.Statut) }),
			validation.Suggest(func(d dto.PaysCreate) bool { return d.Indicatif == "" },
				"renseignez l'indicatif téléphonique du pays"),
		},
		validation.FailOpen("code_available", func(ctx context.Context, d dto.PaysCreate) (validation.Outcome, error) {
			if d.Code == "" {
				return permissive("code_available"), nil
			}
			ok, err := s.codeAvailable(ctx, d.Code, "")
			if err != nil {
				return validation.Outcome{}, err
			}
			return availabilityOutcome("code_available", ok, fmt.Sprintf("le code pays %q est déjà utilisé", d.Code)), nil
		}, permissive("code_available")),
	)

	s.updateRules = newValidator("pays", opts,
		[]validation.Rule[paysUpdate]{
			presentNonBlank("nom", func(d paysUpdate) *string { return d.Nom }),
			validation.Required("code", func(d paysUpdate) string { return ptr(d.Code) }),
			validation.Matches("code", func(d paysUpdate) string { return ptr(d.Code) }, isoRe, "code ISO à 2 lettres majuscules"),
			statutRule(func(d paysUpdate) string { return string(ptr(d.Statut)) }),
		},
		validation.FailOpen("code_available", func(ctx context.Context, d paysUpdate) (validation.Outcome, error) {
			ok, err := s.codeAvailable(ctx, ptr(d.Code), d.UUID)
			if err != nil {
				return validation.Outcome{}, err
			}
			return availabilityOutcome("code_available", ok, fmt.Sprintf("le code pays %q est déjà utilisé", ptr(d.Code))), nil
		}, permissive("code_available")),
	)

	return s
}

// List returns a page of countries / Retourne une page de pays
func (s *PaysService) List(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Pays], error) {
	return s.res.list(ctx, params)
}

// GetActive lists active countries / Liste les pays actifs
func (s *PaysService) GetActive(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Pays], error) {
	params.Statut = string(domain.StatutActif)
	return s.res.list(ctx, params)
}

// Get retrieves a country by uuid / Récupère un pays par uuid
func (s *PaysService) Get(ctx context.Context, uuid string) (*domain.Pays, error) {
	return s.res.get(ctx, uuid)
}

// Validate runs the create rules without sending anything / Valide sans envoyer
func (s *PaysService) Validate(ctx context.Context, data dto.PaysCreate) *validation.Result {
	return s.createRules.Validate(ctx, normalizePays(data))
}

// Create validates then posts a country; the code is upper-cased first.
func (s *PaysService) Create(ctx context.Context, data dto.PaysCreate) (*domain.Pays, error) {
	data = normalizePays(data)
	if err := validate(ctx, s.createRules, data); err != nil {
		return nil, err
	}
	return s.res.create(ctx, data)
}

func normalizePays(d dto.PaysCreate) dto.PaysCreate {
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
	return d
}

// Update sends a partial update; the code is re-validated only when present.
func (s *PaysService) Update(ctx context.Context, uuid string, data dto.PaysUpdate) (*domain.Pays, error) {
	if data.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*data.Code))
		data.Code = &code
		if err := validate(ctx, s.updateRules, paysUpdate{UUID: uuid, PaysUpdate: data}); err != nil {
			return nil, err
		}
	}
	return s.res.update(ctx, uuid, data)
}

// Delete deletes a country / Supprime un pays
func (s *PaysService) Delete(ctx context.Context, uuid string) error {
	return s.res.remove(ctx, uuid)
}

// BulkUpdate applies the same changes to several countries / Mise à jour en masse
func (s *PaysService) BulkUpdate(ctx context.Context, req dto.BulkUpdateRequest) ([]domain.Pays, error) {
	return s.res.bulkUpdate(ctx, req)
}

// BulkDelete deletes several countries in one call / Suppression en masse
func (s *PaysService) BulkDelete(ctx context.Context, uuids []string) error {
	return s.res.bulkDelete(ctx, uuids)
}

// DeleteEach deletes countries one by one / Supprime les pays un par un
func (s *PaysService) DeleteEach(ctx context.Context, uuids []string) (*batch.Report, error) {
	return s.res.deleteEach(ctx, uuids)
}

// ChangeStatutEach sets statut on each country through the batch runner.
func (s *PaysService) ChangeStatutEach(ctx context.Context, statut domain.Statut, uuids []string) (*batch.Report, error) {
	if !statut.IsValid() {
		return nil, fmt.Errorf("statut %q invalide", statut)
	}
	fn := func(ctx context.Context, uuid string) error {
		_, err := s.res.update(ctx, uuid, dto.PaysUpdate{Statut: &statut})
		return err
	}
	return s.res.run(ctx, uuids, fn, domain.ActionStatut, string(statut))
}

// Replay re-runs a journaled operation on uuids / Rejoue une opération journalisée
func (s *PaysService) Replay(ctx context.Context, op domain.Operation, uuids []string) (*batch.Report, error) {
	if op.Action() == domain.ActionStatut {
		return s.ChangeStatutEach(ctx, domain.Statut(op.Argument()), uuids)
	}
	return s.res.replay(ctx, op, uuids)
}

// Export downloads the PDF export or builds a CSV / Exporte en PDF ou en CSV de secours
func (s *PaysService) Export(ctx context.Context, params domain.ListParams) (*export.File, error) {
	return s.res.export(ctx, params, paysColumns)
}

var paysColumns = []export.Column[domain.Pays]{
	{Header: "UUID", Value: func(p domain.Pays) string { return p.UUID }},
	{Header: "Code", Value: func(p domain.Pays) string { return p.Code }},
	{Header: "Nom", Value: func(p domain.Pays) string { return p.Nom }},
	{Header: "Indicatif", Value: func(p domain.Pays) string { return p.Indicatif }},
	{Header: "Statut", Value: func(p domain.Pays) string { return string(p.Statut) }},
}

// Stats returns country counters / Retourne les statistiques des pays
func (s *PaysService) Stats(ctx context.Context) (*domain.ReferentielStats, error) {
	stats := domain.DefaultReferentielStats()
	if err := s.res.statsAt(ctx, s.res.path("stats"), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *PaysService) codeAvailable(ctx context.Context, code, excludeUUID string) (bool, error) {
	query := url.Values{"code": {code}}
	if excludeUUID != "" {
		query.Set("exclude_uuid", excludeUUID)
	}
	return checkAvailable(ctx, s.res.opts.HTTP, s.res.path("check-code"), query)
}

// IsCodeAvailable reports whether the ISO code is free; a failed check answers true.
func (s *PaysService) IsCodeAvailable(ctx context.Context, code, excludeUUID string) bool {
	ok, err := s.codeAvailable(ctx, strings.ToUpper(code), excludeUUID)
	if err != nil {
		slog.Warn("service: code check unavailable, assuming free", "resource", s.res.name, "code", code, "err", err)
		return true
	}
	return ok
}
