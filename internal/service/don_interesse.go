package service

import (
	"context"
	"strconv"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/batch"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/dto"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/export"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/validation"
)

// DonInteresseService manages interests in donations / Gère les intérêts pour les dons
type DonInteresseService struct {
	*interests[domain.DonInteresse]
	createRules *validation.Validator[dto.DonInteresseCreate]
	updateRules *validation.Validator[dto.DonInteresseUpdate]
}

// NewDonInteresseService creates donation interest service instance / Crée une instance du service
func NewDonInteresseService(opts Options) *DonInteresseService {
	s := &DonInteresseService{
		interests: newInterests[domain.DonInteresse]("don-interesses", "don_interesses", "don_interesse", "dons", "don", "le don", opts),
	}

	s.createRules = newValidator("don_interesse", opts,
		[]validation.Rule[dto.DonInteresseCreate]{
			validation.Required("don_uuid", func(d dto.DonInteresseCreate) string { return d.DonUUID }),
			validation.UUID("don_uuid", func(d dto.DonInteresseCreate) string { return d.DonUUID }),
			validation.Required("utilisateur_uuid", func(d dto.DonInteresseCreate) string { return d.UtilisateurUUID }),
			validation.UUID("utilisateur_uuid", func(d dto.DonInteresseCreate) string { return d.UtilisateurUUID }),
			validation.Check(func(d dto.DonInteresseCreate) bool { return d.QuantiteDemandee >= 0 },
				validation.SeverityError, "la quantité demandée ne peut pas être négative"),
			validation.MaxLength("message", func(d dto.DonInteresseCreate) string { return d.Message }, 1000),
			validation.Suggest(func(d dto.DonInteresseCreate) bool { return d.Message == "" },
				"ajoutez un message pour présenter votre demande au donateur"),
		},
		validation.FailOpen("annonce_active", func(ctx context.Context, d dto.DonInteresseCreate) (validation.Outcome, error) {
			return s.listingOutcome(ctx, d.DonUUID, d.QuantiteDemandee)
		}, validation.Outcome{Extras: map[string]any{"annonce_active": true}}),
	)

	s.updateRules = newValidator("don_interesse", opts, []validation.Rule[dto.DonInteresseUpdate]{
		presentNonBlank("message", func(d dto.DonInteresseUpdate) *string { return d.Message }),
		validation.Check(func(d dto.DonInteresseUpdate) bool { return d.QuantiteDemandee == nil || *d.QuantiteDemandee >= 1 },
			validation.SeverityError, "la quantité demandée doit être au moins 1"),
		interesseStatutRule(func(d dto.DonInteresseUpdate) string { return string(ptr(d.Statut)) }),
	})

	return s
}

// List returns a page of donation interests / Retourne une page d'intérêts
func (s *DonInteresseService) List(ctx context.Context, params domain.ListParams) (*domain.Page[domain.DonInteresse], error) {
	return s.res.list(ctx, params)
}

// GetByDon lists the interests expressed on one donation / Liste les intérêts d'un don
func (s *DonInteresseService) GetByDon(ctx context.Context, donUUID string, params domain.ListParams) (*domain.Page[domain.DonInteresse], error) {
	if err := checkUUID(donUUID); err != nil {
		return nil, err
	}
	return s.res.list(ctx, params.With("don_uuid", donUUID))
}

// GetByUtilisateur lists the interests of one user / Liste les intérêts d'un utilisateur
func (s *DonInteresseService) GetByUtilisateur(ctx context.Context, utilisateurUUID string, params domain.ListParams) (*domain.Page[domain.DonInteresse], error) {
	if err := checkUUID(utilisateurUUID); err != nil {
		return nil, err
	}
	return s.res.list(ctx, params.With("utilisateur_uuid", utilisateurUUID))
}

// Get retrieves an interest by uuid / Récupère un intérêt par uuid
func (s *DonInteresseService) Get(ctx context.Context, uuid string) (*domain.DonInteresse, error) {
	return s.res.get(ctx, uuid)
}

// Validate runs the create rules, listing check included, without sending anything.
func (s *DonInteresseService) Validate(ctx context.Context, data dto.DonInteresseCreate) *validation.Result {
	return s.createRules.Validate(ctx, data)
}

// Create validates then posts an interest / Valide puis crée un intérêt
func (s *DonInteresseService) Create(ctx context.Context, data dto.DonInteresseCreate) (*domain.DonInteresse, error) {
	if err := validate(ctx, s.createRules, data); err != nil {
		return nil, err
	}
	return s.res.create(ctx, data)
}

// Update validates the fields present then sends a partial update.
func (s *DonInteresseService) Update(ctx context.Context, uuid string, data dto.DonInteresseUpdate) (*domain.DonInteresse, error) {
	if err := validate(ctx, s.updateRules, data); err != nil {
		return nil, err
	}
	return s.res.update(ctx, uuid, data)
}

// ChangeStatut requests a transition; the backend rejects illegal ones.
// ChangeStatut demande une transition ; le backend rejette les transitions illégales
func (s *DonInteresseService) ChangeStatut(ctx context.Context, uuid string, statut domain.InteresseStatut, motif string) (*domain.DonInteresse, error) {
	return s.changeStatut(ctx, uuid, statut, motif)
}

// Confirm moves an interest to confirme / Confirme un intérêt
func (s *DonInteresseService) Confirm(ctx context.Context, uuid string) (*domain.DonInteresse, error) {
	return s.changeStatut(ctx, uuid, domain.InteresseConfirme, "")
}

// Accept moves an interest to accepte / Accepte un intérêt
func (s *DonInteresseService) Accept(ctx context.Context, uuid string) (*domain.DonInteresse, error) {
	return s.changeStatut(ctx, uuid, domain.InteresseAccepte, "")
}

// Complete closes a fulfilled interest / Clôture un intérêt honoré
func (s *DonInteresseService) Complete(ctx context.Context, uuid string) (*domain.DonInteresse, error) {
	return s.changeStatut(ctx, uuid, domain.InteresseComplete, "")
}

// Refuse declines an interest / Refuse un intérêt
func (s *DonInteresseService) Refuse(ctx context.Context, uuid, motif string) (*domain.DonInteresse, error) {
	return s.changeStatut(ctx, uuid, domain.InteresseRefuse, motif)
}

// Cancel withdraws an interest / Annule un intérêt
func (s *DonInteresseService) Cancel(ctx context.Context, uuid, motif string) (*domain.DonInteresse, error) {
	return s.changeStatut(ctx, uuid, domain.InteresseAnnule, motif)
}

// ChangeStatutEach requests the same transition on each interest through the batch runner.
func (s *DonInteresseService) ChangeStatutEach(ctx context.Context, statut domain.InteresseStatut, uuids []string) (*batch.Report, error) {
	return s.changeStatutEach(ctx, statut, uuids)
}

// Replay re-runs a journaled operation on uuids / Rejoue une opération journalisée
func (s *DonInteresseService) Replay(ctx context.Context, op domain.Operation, uuids []string) (*batch.Report, error) {
	return s.replay(ctx, op, uuids)
}

// Conversations lists the messages exchanged about an interest / Liste les messages d'un intérêt
func (s *DonInteresseService) Conversations(ctx context.Context, uuid string, params domain.ListParams) (*domain.Page[domain.Message], error) {
	return s.conversations(ctx, uuid, params)
}

// SendMessage posts a message on an interest / Envoie un message
func (s *DonInteresseService) SendMessage(ctx context.Context, uuid, contenu string) (*domain.Message, error) {
	return s.sendMessage(ctx, uuid, contenu)
}

// AddFeedback rates a completed interest / Ajoute un retour sur un intérêt
func (s *DonInteresseService) AddFeedback(ctx context.Context, uuid string, req dto.FeedbackRequest) (*domain.Feedback, error) {
	return s.addFeedback(ctx, uuid, req)
}

// Delete deletes an interest / Supprime un intérêt
func (s *DonInteresseService) Delete(ctx context.Context, uuid string) error {
	return s.res.remove(ctx, uuid)
}

// BulkUpdate applies the same changes to several interests / Mise à jour en masse
func (s *DonInteresseService) BulkUpdate(ctx context.Context, req dto.BulkUpdateRequest) ([]domain.DonInteresse, error) {
	return s.res.bulkUpdate(ctx, req)
}

// BulkDelete deletes several interests in one call / Suppression en masse
func (s *DonInteresseService) BulkDelete(ctx context.Context, uuids []string) error {
	return s.res.bulkDelete(ctx, uuids)
}

// DeleteEach deletes interests one by one / Supprime les intérêts un par un
func (s *DonInteresseService) DeleteEach(ctx context.Context, uuids []string) (*batch.Report, error) {
	return s.res.deleteEach(ctx, uuids)
}

// Export downloads the PDF export or builds a CSV / Exporte en PDF ou en CSV de secours
func (s *DonInteresseService) Export(ctx context.Context, params domain.ListParams) (*export.File, error) {
	return s.res.export(ctx, params, donInteresseColumns)
}

var donInteresseColumns = []export.Column[domain.DonInteresse]{
	{Header: "UUID", Value: func(d domain.DonInteresse) string { return d.UUID }},
	{Header: "Don", Value: func(d domain.DonInteresse) string { return d.DonUUID }},
	{Header: "Utilisateur", Value: func(d domain.DonInteresse) string { return d.UtilisateurUUID }},
	{Header: "Quantité", Value: func(d domain.DonInteresse) string { return strconv.Itoa(d.QuantiteDemandee) }},
	{Header: "Statut", Value: func(d domain.DonInteresse) string { return string(d.Statut) }},
	{Header: "Expiration", Value: func(d domain.DonInteresse) string { return formatTimestamp(d.DateExpiration) }},
	{Header: "Message", Value: func(d domain.DonInteresse) string { return d.Message }},
}

// Stats returns interest counters, every statut present / Retourne les statistiques
func (s *DonInteresseService) Stats(ctx context.Context) (*domain.InteresseStats, error) {
	return s.stats(ctx)
}
