package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/apiclient"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/batch"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/dto"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/normalize"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/validation"
)

// interests holds what donation and exchange interests share: the statut
// lifecycle, the conversation thread, feedback and the parent listing lookup.
type interests[T any] struct {
	res      *resource[T]
	messages *resource[domain.Message]

	parentRoot string // "dons" or "echanges"
	parentKey  string // entity key of the listing / Clé d'entité de l'annonce
	parentName string // French label used in messages / Libellé utilisé dans les messages
}

func newInterests[T any](name, itemsKey, entityKey, parentRoot, parentKey, parentName string, opts Options) *interests[T] {
	return &interests[T]{
		res:        newResource[T](name, itemsKey, entityKey, opts),
		messages:   newResource[domain.Message](name, "messages", "message", opts),
		parentRoot: parentRoot,
		parentKey:  parentKey,
		parentName: parentName,
	}
}

var feedbackRules = []validation.Rule[dto.FeedbackRequest]{
	validation.Check(func(d dto.FeedbackRequest) bool { return d.Note >= 1 && d.Note <= 5 },
		validation.SeverityError, "le champ note doit être compris entre 1 et 5"),
	validation.MaxLength("commentaire", func(d dto.FeedbackRequest) string { return d.Commentaire }, 1000),
}

// listing fetches the parent donation or exchange / Récupère l'annonce parente
func (in *interests[T]) listing(ctx context.Context, uuid string) (*domain.Listing, error) {
	if err := checkUUID(uuid); err != nil {
		return nil, err
	}
	resp, err := in.res.opts.HTTP.Get(ctx, "/"+in.parentRoot+"/"+url.PathEscape(uuid), nil)
	if err != nil {
		return nil, err
	}
	return normalize.Entity[domain.Listing](resp.Body, in.parentKey)
}

// listingOutcome backs the create sub-check. A missing or closed listing is
// an error; any other lookup failure is left to the fail-open fallback.
func (in *interests[T]) listingOutcome(ctx context.Context, parentUUID string, quantite int) (validation.Outcome, error) {
	out := validation.Outcome{Extras: map[string]any{"annonce_active": true}}
	if parentUUID == "" {
		return out, nil
	}

	l, err := in.listing(ctx, parentUUID)
	if apiclient.IsStatus(err, http.StatusNotFound) {
		out.Extras["annonce_active"] = false
		out.Findings = []validation.Finding{{
			Severity: validation.SeverityError,
			Message:  fmt.Sprintf("%s %s introuvable", in.parentName, parentUUID),
		}}
		return out, nil
	}
	if err != nil {
		return validation.Outcome{}, err
	}

	if !l.IsActive() {
		out.Extras["annonce_active"] = false
		out.Findings = append(out.Findings, validation.Finding{
			Severity: validation.SeverityError,
			Message:  fmt.Sprintf("%s %s n'accepte plus de demandes", in.parentName, parentUUID),
		})
	}
	if quantite > 0 && l.QuantiteRestant > 0 && quantite > l.QuantiteRestant {
		out.Findings = append(out.Findings, validation.Finding{
			Severity: validation.SeverityWarning,
			Message:  fmt.Sprintf("quantité demandée (%d) supérieure à la quantité restante (%d)", quantite, l.QuantiteRestant),
		})
	}
	return out, nil
}

func (in *interests[T]) changeStatut(ctx context.Context, uuid string, statut domain.InteresseStatut, motif string) (*T, error) {
	if !statut.IsValid() {
		return nil, fmt.Errorf("statut %q invalide", statut)
	}
	return in.res.changeStatut(ctx, uuid, dto.StatutChange{Statut: string(statut), Motif: motif})
}

func (in *interests[T]) changeStatutEach(ctx context.Context, statut domain.InteresseStatut, uuids []string) (*batch.Report, error) {
	if !statut.IsValid() {
		return nil, fmt.Errorf("statut %q invalide", statut)
	}
	return in.res.statutEach(ctx, string(statut), uuids)
}

func (in *interests[T]) replay(ctx context.Context, op domain.Operation, uuids []string) (*batch.Report, error) {
	if op.Action() == domain.ActionStatut {
		return in.changeStatutEach(ctx, domain.InteresseStatut(op.Argument()), uuids)
	}
	return in.res.replay(ctx, op, uuids)
}

func (in *interests[T]) conversations(ctx context.Context, uuid string, params domain.ListParams) (*domain.Page[domain.Message], error) {
	if err := checkUUID(uuid); err != nil {
		return nil, err
	}
	return in.messages.listAt(ctx, in.messages.path(uuid, "conversations"), params)
}

func (in *interests[T]) sendMessage(ctx context.Context, uuid, contenu string) (*domain.Message, error) {
	if err := checkUUID(uuid); err != nil {
		return nil, err
	}
	if strings.TrimSpace(contenu) == "" {
		return nil, &validation.ValidationError{Errors: []string{"le champ contenu est obligatoire"}}
	}
	resp, err := in.res.opts.HTTP.Post(ctx, in.messages.path(uuid, "conversations"), dto.MessageRequest{Contenu: contenu})
	if err != nil {
		in.res.fail("message", err, "uuid", uuid)
		return nil, err
	}
	return in.messages.entity("message", resp.Body)
}

func (in *interests[T]) addFeedback(ctx context.Context, uuid string, req dto.FeedbackRequest) (*domain.Feedback, error) {
	if err := checkUUID(uuid); err != nil {
		return nil, err
	}
	v := newValidator(in.res.entityKey+"_feedback", in.res.opts, feedbackRules)
	if err := validate(ctx, v, req); err != nil {
		return nil, err
	}
	resp, err := in.res.opts.HTTP.Post(ctx, in.res.path(uuid, "feedback"), req)
	if err != nil {
		in.res.fail("feedback", err, "uuid", uuid)
		return nil, err
	}
	fb, err := normalize.Entity[domain.Feedback](resp.Body, "feedback")
	if err != nil {
		return nil, fmt.Errorf("feedback: %w", err)
	}
	return fb, nil
}

func (in *interests[T]) stats(ctx context.Context) (*domain.InteresseStats, error) {
	stats := domain.DefaultInteresseStats()
	if err := in.res.statsAt(ctx, in.res.path("stats"), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// interesseStatutRule rejects a statut outside the interest lifecycle.
func interesseStatutRule[U any](get func(U) string) validation.Rule[U] {
	return validation.OneOf("statut", get, func(v string) bool { return domain.InteresseStatut(v).IsValid() })
}
