package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/batch"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/dto"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/export"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/normalize"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/validation"
)

// CommentaireService manages and moderates comments / Gère et modère les commentaires
type CommentaireService struct {
	res         *resource[domain.Commentaire]
	createRules *validation.Validator[dto.CommentaireCreate]
	updateRules *validation.Validator[dto.CommentaireUpdate]
}

// NewCommentaireService creates comment service instance / Crée une instance du service commentaires
func NewCommentaireService(opts Options) *CommentaireService {
	s := &CommentaireService{res: newResource[domain.Commentaire]("commentaires", "commentaires", "commentaire", opts)}

	contenu := func(d dto.CommentaireCreate) string { return strings.TrimSpace(d.Contenu) }
	s.createRules = newValidator("commentaire", opts,
		[]validation.Rule[dto.CommentaireCreate]{
			validation.Required("contenu", contenu),
			validation.MaxLength("contenu", contenu, 5000),
			validation.MinLength("contenu", contenu, 10).As(validation.SeverityWarning),
			validation.Check(func(d dto.CommentaireCreate) bool { return len([]rune(contenu(d))) <= 1000 },
				validation.SeverityWarning, "commentaire très long, pensez à le résumer"),
			validation.Between("note", func(d dto.CommentaireCreate) int { return d.Note }, 1, 5),
			validation.Required("cible_type", func(d dto.CommentaireCreate) string { return string(d.CibleType) }),
			validation.OneOf("cible_type", func(d dto.CommentaireCreate) string { return string(d.CibleType) },
				func(v string) bool { return domain.CibleType(v).IsValid() }),
			validation.Required("cible_uuid", func(d dto.CommentaireCreate) string { return d.CibleUUID }),
			validation.UUID("cible_uuid", func(d dto.CommentaireCreate) string { return d.CibleUUID }),
			validation.UUID("auteur_uuid", func(d dto.CommentaireCreate) string { return d.AuteurUUID }),
			validation.Email("auteur_email", func(d dto.CommentaireCreate) string { return d.AuteurEmail }),
			validation.Suggest(func(d dto.CommentaireCreate) bool { return d.Note == 0 },
				"ajoutez une note de 1 à 5 pour compléter l'avis"),
		},
		validation.FailOpen("contenu_propre", s.contentOutcome, validation.Outcome{
			Extras: map[string]any{"contenu_propre": true},
		}),
	)

	s.updateRules = newValidator("commentaire", opts, []validation.Rule[dto.CommentaireUpdate]{
		presentNonBlank("contenu", func(d dto.CommentaireUpdate) *string { return d.Contenu }),
		validation.Between("note", func(d dto.CommentaireUpdate) int { return ptr(d.Note) }, 1, 5),
		validation.OneOf("statut", func(d dto.CommentaireUpdate) string { return string(ptr(d.Statut)) },
			func(v string) bool { return domain.CommentaireStatut(v).IsValid() }),
	})

	return s
}

// contentOutcome flags content the backend analysis finds inappropriate.
func (s *CommentaireService) contentOutcome(ctx context.Context, d dto.CommentaireCreate) (validation.Outcome, error) {
	if strings.TrimSpace(d.Contenu) == "" {
		return validation.Outcome{Extras: map[string]any{"contenu_propre": true}}, nil
	}
	analysis, err := s.analyze(ctx, d.Contenu)
	if err != nil {
		return validation.Outcome{}, err
	}

	out := validation.Outcome{Extras: map[string]any{"contenu_propre": analysis.Propre}}
	if analysis.Sentiment != "" {
		out.Extras["sentiment"] = analysis.Sentiment
	}
	if !analysis.Propre {
		msg := "le contenu semble inapproprié"
		if len(analysis.MotsInterdits) > 0 {
			msg += " (" + strings.Join(analysis.MotsInterdits, ", ") + ")"
		}
		out.Findings = []validation.Finding{{Severity: validation.SeverityWarning, Message: msg}}
	}
	return out, nil
}

func (s *CommentaireService) analyze(ctx context.Context, contenu string) (*domain.ContentAnalysis, error) {
	resp, err := s.res.opts.HTTP.Post(ctx, s.res.path("analyse"), dto.AnalyseRequest{Contenu: contenu})
	if err != nil {
		return nil, err
	}
	analysis := domain.DefaultContentAnalysis()
	if err := normalize.Into(resp.Body, &analysis, "analyse"); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// Analyze runs the content analysis; a failed call answers clean.
// Analyze lance l'analyse du contenu ; un échec répond « propre »
func (s *CommentaireService) Analyze(ctx context.Context, contenu string) *domain.ContentAnalysis {
	analysis, err := s.analyze(ctx, contenu)
	if err != nil {
		slog.Warn("service: content analysis unavailable, assuming clean", "err", err)
		def := domain.DefaultContentAnalysis()
		return &def
	}
	return analysis
}

// List returns a page of comments / Retourne une page de commentaires
func (s *CommentaireService) List(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Commentaire], error) {
	return s.res.list(ctx, params)
}

// GetByCible lists the comments on one product, shop or article / Liste les commentaires d'une cible
func (s *CommentaireService) GetByCible(ctx context.Context, cibleType domain.CibleType, cibleUUID string, params domain.ListParams) (*domain.Page[domain.Commentaire], error) {
	if !cibleType.IsValid() {
		return nil, fmt.Errorf("type de cible %q invalide", cibleType)
	}
	if err := checkUUID(cibleUUID); err != nil {
		return nil, err
	}
	return s.res.list(ctx, params.With("cible_type", string(cibleType)).With("cible_uuid", cibleUUID))
}

// GetReported lists comments flagged by users / Liste les commentaires signalés
func (s *CommentaireService) GetReported(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Commentaire], error) {
	return s.res.list(ctx, params.With("est_signale", "true"))
}

// Get retrieves a comment by uuid / Récupère un commentaire par uuid
func (s *CommentaireService) Get(ctx context.Context, uuid string) (*domain.Commentaire, error) {
	return s.res.get(ctx, uuid)
}

// Validate runs the create rules, analysis included, without sending anything.
func (s *CommentaireService) Validate(ctx context.Context, data dto.CommentaireCreate) *validation.Result {
	return s.createRules.Validate(ctx, data)
}

// Create validates then posts a comment / Valide puis crée un commentaire
func (s *CommentaireService) Create(ctx context.Context, data dto.CommentaireCreate) (*domain.Commentaire, error) {
	if err := validate(ctx, s.createRules, data); err != nil {
		return nil, err
	}
	return s.res.create(ctx, data)
}

// Update validates the fields present then sends a partial update.
func (s *CommentaireService) Update(ctx context.Context, uuid string, data dto.CommentaireUpdate) (*domain.Commentaire, error) {
	if err := validate(ctx, s.updateRules, data); err != nil {
		return nil, err
	}
	return s.res.update(ctx, uuid, data)
}

// Moderate sets the moderation statut of a comment / Modère un commentaire
func (s *CommentaireService) Moderate(ctx context.Context, uuid string, statut domain.CommentaireStatut, motif string) (*domain.Commentaire, error) {
	if !statut.IsValid() {
		return nil, fmt.Errorf("statut de modération %q invalide", statut)
	}
	return s.res.putAt(ctx, "moderation", uuid, "moderation", dto.ModerationRequest{Statut: statut, Motif: motif})
}

// Approve publishes a comment / Approuve un commentaire
func (s *CommentaireService) Approve(ctx context.Context, uuid string) (*domain.Commentaire, error) {
	return s.Moderate(ctx, uuid, domain.CommentaireApprouve, "")
}

// Reject hides a comment with a reason / Rejette un commentaire avec un motif
func (s *CommentaireService) Reject(ctx context.Context, uuid, motif string) (*domain.Commentaire, error) {
	return s.Moderate(ctx, uuid, domain.CommentaireRejete, motif)
}

// ModerateEach applies one moderation decision to each comment through the batch runner.
func (s *CommentaireService) ModerateEach(ctx context.Context, statut domain.CommentaireStatut, uuids []string) (*batch.Report, error) {
	if !statut.IsValid() {
		return nil, fmt.Errorf("statut de modération %q invalide", statut)
	}
	fn := func(ctx context.Context, uuid string) error {
		_, err := s.Moderate(ctx, uuid, statut, "")
		return err
	}
	return s.res.run(ctx, uuids, fn, domain.ActionModerate, string(statut))
}

// Replay re-runs a journaled delete or moderation / Rejoue une suppression ou une modération
func (s *CommentaireService) Replay(ctx context.Context, op domain.Operation, uuids []string) (*batch.Report, error) {
	switch op.Action() {
	case domain.ActionModerate:
		return s.ModerateEach(ctx, domain.CommentaireStatut(op.Argument()), uuids)
	case domain.ActionDelete:
		return s.res.deleteEach(ctx, uuids)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotReplayable, op)
	}
}

// Delete deletes a comment / Supprime un commentaire
func (s *CommentaireService) Delete(ctx context.Context, uuid string) error {
	return s.res.remove(ctx, uuid)
}

// BulkUpdate applies the same changes to several comments / Mise à jour en masse
func (s *CommentaireService) BulkUpdate(ctx context.Context, req dto.BulkUpdateRequest) ([]domain.Commentaire, error) {
	return s.res.bulkUpdate(ctx, req)
}

// BulkDelete deletes several comments in one call / Suppression en masse
func (s *CommentaireService) BulkDelete(ctx context.Context, uuids []string) error {
	return s.res.bulkDelete(ctx, uuids)
}

// DeleteEach deletes comments one by one / Supprime les commentaires un par un
func (s *CommentaireService) DeleteEach(ctx context.Context, uuids []string) (*batch.Report, error) {
	return s.res.deleteEach(ctx, uuids)
}

// Export downloads the PDF export or builds a CSV / Exporte en PDF ou en CSV de secours
func (s *CommentaireService) Export(ctx context.Context, params domain.ListParams) (*export.File, error) {
	return s.res.export(ctx, params, commentaireColumns)
}

var commentaireColumns = []export.Column[domain.Commentaire]{
	{Header: "UUID", Value: func(c domain.Commentaire) string { return c.UUID }},
	{Header: "Auteur", Value: func(c domain.Commentaire) string { return c.AuteurNom }},
	{Header: "Cible", Value: func(c domain.Commentaire) string { return string(c.CibleType) + ":" + c.CibleUUID }},
	{Header: "Note", Value: func(c domain.Commentaire) string { return strconv.Itoa(c.Note) }},
	{Header: "Contenu", Value: func(c domain.Commentaire) string { return c.Contenu }},
	{Header: "Statut", Value: func(c domain.Commentaire) string { return string(c.Statut) }},
	{Header: "Signalé", Value: func(c domain.Commentaire) string { return ouiNon(c.EstSignale) }},
}

func ouiNon(b bool) string {
	if b {
		return "oui"
	}
	return "non"
}

// Stats returns moderation counters, ratings 1..5 present / Retourne les statistiques de modération
func (s *CommentaireService) Stats(ctx context.Context) (*domain.CommentaireStats, error) {
	stats := domain.DefaultCommentaireStats()
	if err := s.res.statsAt(ctx, s.res.path("stats"), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
