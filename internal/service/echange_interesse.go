package service

import (
	"context"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/batch"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/dto"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/export"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/validation"
)

// EchangeInteresseService manages trade proposals on exchange listings / Gère les propositions d'échange
type EchangeInteresseService struct {
	*interests[domain.EchangeInteresse]
	createRules *validation.Validator[dto.EchangeInteresseCreate]
	updateRules *validation.Validator[dto.EchangeInteresseUpdate]
}

// NewEchangeInteresseService creates exchange interest service instance / Crée une instance du service
func NewEchangeInteresseService(opts Options) *EchangeInteresseService {
	s := &EchangeInteresseService{
		interests: newInterests[domain.EchangeInteresse]("echange-interesses", "echange_interesses", "echange_interesse", "echanges", "echange", "l'échange", opts),
	}

	s.createRules = newValidator("echange_interesse", opts,
		[]validation.Rule[dto.EchangeInteresseCreate]{
			validation.Required("echange_uuid", func(d dto.EchangeInteresseCreate) string { return d.EchangeUUID }),
			validation.UUID("echange_uuid", func(d dto.EchangeInteresseCreate) string { return d.EchangeUUID }),
			validation.Required("utilisateur_uuid", func(d dto.EchangeInteresseCreate) string { return d.UtilisateurUUID }),
			validation.UUID("utilisateur_uuid", func(d dto.EchangeInteresseCreate) string { return d.UtilisateurUUID }),
			validation.MaxLength("objet_propose", func(d dto.EchangeInteresseCreate) string { return d.ObjetPropose }, 200),
			validation.MaxLength("message", func(d dto.EchangeInteresseCreate) string { return d.Message }, 1000),
			validation.Check(func(d dto.EchangeInteresseCreate) bool { return !d.ValeurEstimee.IsNegative() },
				validation.SeverityError, "la valeur estimée ne peut pas être négative"),
			validation.Check(func(d dto.EchangeInteresseCreate) bool { return d.ObjetPropose != "" || d.Message != "" },
				validation.SeverityWarning, "précisez l'objet proposé ou ajoutez un message"),
			validation.Suggest(func(d dto.EchangeInteresseCreate) bool { return d.ValeurEstimee.IsZero() },
				"indiquez une valeur estimée pour faciliter la négociation"),
		},
		validation.FailOpen("annonce_active", func(ctx context.Context, d dto.EchangeInteresseCreate) (validation.Outcome, error) {
			return s.listingOutcome(ctx, d.EchangeUUID, 0)
		}, validation.Outcome{Extras: map[string]any{"annonce_active": true}}),
	)

	s.updateRules = newValidator("echange_interesse", opts, []validation.Rule[dto.EchangeInteresseUpdate]{
		presentNonBlank("message", func(d dto.EchangeInteresseUpdate) *string { return d.Message }),
		validation.MaxLength("objet_propose", func(d dto.EchangeInteresseUpdate) string { return ptr(d.ObjetPropose) }, 200),
		validation.Check(func(d dto.EchangeInteresseUpdate) bool { return d.ValeurEstimee == nil || !d.ValeurEstimee.IsNegative() },
			validation.SeverityError, "la valeur estimée ne peut pas être négative"),
		interesseStatutRule(func(d dto.EchangeInteresseUpdate) string { return string(ptr(d.Statut)) }),
	})

	return s
}

// List returns a page of exchange interests / Retourne une page d'intérêts
func (s *EchangeInteresseService) List(ctx context.Context, params domain.ListParams) (*domain.Page[domain.EchangeInteresse], error) {
	return s.res.list(ctx, params)
}

// GetByEchange lists the proposals made on one exchange / Liste les propositions d'un échange
func (s *EchangeInteresseService) GetByEchange(ctx context.Context, echangeUUID string, params domain.ListParams) (*domain.Page[domain.EchangeInteresse], error) {
	if err := checkUUID(echangeUUID); err != nil {
		return nil, err
	}
	return s.res.list(ctx, params.With("echange_uuid", echangeUUID))
}

// GetByUtilisateur lists the proposals of one user / Liste les propositions d'un utilisateur
func (s *EchangeInteresseService) GetByUtilisateur(ctx context.Context, utilisateurUUID string, params domain.ListParams) (*domain.Page[domain.EchangeInteresse], error) {
	if err := checkUUID(utilisateurUUID); err != nil {
		return nil, err
	}
	return s.res.list(ctx, params.With("utilisateur_uuid", utilisateurUUID))
}

func (s *EchangeInteresseService) Get(ctx context.Context, uuid string) (*domain.EchangeInteresse, error) {
	return s.res.get(ctx, uuid)
}

func (s *EchangeInteresseService) Validate(ctx context.Context, data dto.EchangeInteresseCreate) *validation.Result {
	return s.createRules.Validate(ctx, data)
}

// Create validates then posts a proposal / Valide puis crée une proposition
func (s *EchangeInteresseService) Create(ctx context.Context, data dto.EchangeInteresseCreate) (*domain.EchangeInteresse, error) {
	if err := validate(ctx, s.createRules, data); err != nil {
		return nil, err
	}
	return s.res.create(ctx, data)
}

func (s *EchangeInteresseService) Update(ctx context.Context, uuid string, data dto.EchangeInteresseUpdate) (*domain.EchangeInteresse, error) {
	if err := validate(ctx, s.updateRules, data); err != nil {
		return nil, err
	}
	return s.res.update(ctx, uuid, data)
}

// ChangeStatut requests a transition; confirme is not part of the exchange lifecycle.
func (s *EchangeInteresseService) ChangeStatut(ctx context.Context, uuid string, statut domain.InteresseStatut, motif string) (*domain.EchangeInteresse, error) {
	return s.changeStatut(ctx, uuid, statut, motif)
}

func (s *EchangeInteresseService) Accept(ctx context.Context, uuid string) (*domain.EchangeInteresse, error) {
	return s.changeStatut(ctx, uuid, domain.InteresseAccepte, "")
}

func (s *EchangeInteresseService) Complete(ctx context.Context, uuid string) (*domain.EchangeInteresse, error) {
	return s.changeStatut(ctx, uuid, domain.InteresseComplete, "")
}

// Refuse declines a proposal with an optional reason / Refuse une proposition
func (s *EchangeInteresseService) Refuse(ctx context.Context, uuid, motif string) (*domain.EchangeInteresse, error) {
	return s.changeStatut(ctx, uuid, domain.InteresseRefuse, motif)
}

// Cancel withdraws a proposal / Retire une proposition
func (s *EchangeInteresseService) Cancel(ctx context.Context, uuid, motif string) (*domain.EchangeInteresse, error) {
	return s.changeStatut(ctx, uuid, domain.InteresseAnnule, motif)
}

func (s *EchangeInteresseService) ChangeStatutEach(ctx context.Context, statut domain.InteresseStatut, uuids []string) (*batch.Report, error) {
	return s.changeStatutEach(ctx, statut, uuids)
}

func (s *EchangeInteresseService) Replay(ctx context.Context, op domain.Operation, uuids []string) (*batch.Report, error) {
	return s.replay(ctx, op, uuids)
}

// Conversations lists the negotiation thread / Liste le fil de négociation
func (s *EchangeInteresseService) Conversations(ctx context.Context, uuid string, params domain.ListParams) (*domain.Page[domain.Message], error) {
	return s.conversations(ctx, uuid, params)
}

func (s *EchangeInteresseService) SendMessage(ctx context.Context, uuid, contenu string) (*domain.Message, error) {
	return s.sendMessage(ctx, uuid, contenu)
}

func (s *EchangeInteresseService) AddFeedback(ctx context.Context, uuid string, req dto.FeedbackRequest) (*domain.Feedback, error) {
	return s.addFeedback(ctx, uuid, req)
}

func (s *EchangeInteresseService) Delete(ctx context.Context, uuid string) error {
	return s.res.remove(ctx, uuid)
}

func (s *EchangeInteresseService) BulkUpdate(ctx context.Context, req dto.BulkUpdateRequest) ([]domain.EchangeInteresse, error) {
	return s.res.bulkUpdate(ctx, req)
}

func (s *EchangeInteresseService) BulkDelete(ctx context.Context, uuids []string) error {
	return s.res.bulkDelete(ctx, uuids)
}

func (s *EchangeInteresseService) DeleteEach(ctx context.Context, uuids []string) (*batch.Report, error) {
	return s.res.deleteEach(ctx, uuids)
}

// Export downloads the PDF export or builds a CSV / Exporte en PDF ou en CSV de secours
func (s *EchangeInteresseService) Export(ctx context.Context, params domain.ListParams) (*export.File, error) {
	return s.res.export(ctx, params, echangeInteresseColumns)
}

var echangeInteresseColumns = []export.Column[domain.EchangeInteresse]{
	{Header: "UUID", Value: func(e domain.EchangeInteresse) string { return e.UUID }},
	{Header: "Échange", Value: func(e domain.EchangeInteresse) string { return e.EchangeUUID }},
	{Header: "Utilisateur", Value: func(e domain.EchangeInteresse) string { return e.UtilisateurUUID }},
	{Header: "Objet proposé", Value: func(e domain.EchangeInteresse) string { return e.ObjetPropose }},
	{Header: "Valeur estimée", Value: func(e domain.EchangeInteresse) string { return e.ValeurEstimee.StringFixed(2) }},
	{Header: "Statut", Value: func(e domain.EchangeInteresse) string { return string(e.Statut) }},
	{Header: "Expiration", Value: func(e domain.EchangeInteresse) string { return formatTimestamp(e.DateExpiration) }},
}

func (s *EchangeInteresseService) Stats(ctx context.Context) (*domain.InteresseStats, error) {
	return s.stats(ctx)
}
