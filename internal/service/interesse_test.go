package service

import (
	"errors"
	"net/http"
	"testing"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/dto"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDonInteresse() dto.DonInteresseCreate {
	return dto.DonInteresseCreate{
		DonUUID:          uuidA,
		UtilisateurUUID:  uuidB,
		Message:          "Bonjour, je suis intéressé.",
		QuantiteDemandee: 2,
	}
}

func TestDonInteresseValidate_Listing(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		valid    bool
		errors   int
		warnings int
		active   bool
	}{
		{"active listing", http.StatusOK, `{"data":{"uuid":"` + uuidA + `","statut":"disponible","quantite_restante":5}}`, true, 0, 0, true},
		{"quantity above stock", http.StatusOK, `{"don":{"uuid":"` + uuidA + `","quantite_restante":1}}`, true, 0, 1, true},
		{"closed listing", http.StatusOK, `{"uuid":"` + uuidA + `","statut":"cloture"}`, false, 1, 0, false},
		{"unpublished listing", http.StatusOK, `{"uuid":"` + uuidA + `","est_publie":false}`, false, 1, 0, false},
		{"missing listing", http.StatusNotFound, `{"message":"introuvable"}`, false, 1, 0, false},
		{"lookup outage fails open", http.StatusServiceUnavailable, ``, true, 0, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, client, _ := testOptions()
			client.On(http.MethodGet, "/dons/"+uuidA, tt.status, tt.body)

			res := NewDonInteresseService(opts).Validate(t.Context(), validDonInteresse())
			assert.Equal(t, tt.valid, res.IsValid)
			assert.Len(t, res.Errors, tt.errors)
			assert.Len(t, res.Warnings, tt.warnings)
			assert.Equal(t, tt.active, res.Extras["annonce_active"])
		})
	}
}

func TestDonInteresseValidate_Rules(t *testing.T) {
	opts, client, _ := testOptions()
	client.On(http.MethodGet, "/dons/"+uuidA, http.StatusOK, `{"uuid":"`+uuidA+`"}`)
	svc := NewDonInteresseService(opts)

	data := validDonInteresse()
	data.UtilisateurUUID = ""
	data.QuantiteDemandee = -1
	res := svc.Validate(t.Context(), data)
	assert.False(t, res.IsValid)
	assert.ElementsMatch(t, []string{
		"le champ utilisateur_uuid est obligatoire",
		"la quantité demandée ne peut pas être négative",
	}, res.Errors)

	data = validDonInteresse()
	data.Message = ""
	res = svc.Validate(t.Context(), data)
	assert.True(t, res.IsValid)
	assert.NotEmpty(t, res.Suggestions)
}

func TestDonInteresseCreate_MissingListingBlocks(t *testing.T) {
	opts, client, _ := testOptions()
	client.On(http.MethodGet, "/dons/"+uuidA, http.StatusNotFound, ``)

	_, err := NewDonInteresseService(opts).Create(t.Context(), validDonInteresse())
	var verr *validation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"le don " + uuidA + " introuvable"}, verr.Errors)
	assert.Equal(t, 0, client.CallCount(http.MethodPost, "/don-interesses"))
}

func TestDonInteresseLifecycle(t *testing.T) {
	opts, client, _ := testOptions()
	client.On(http.MethodPut, "/don-interesses/i1/statut", http.StatusOK, `{"data":{"uuid":"i1","statut":"confirme"}}`)
	svc := NewDonInteresseService(opts)

	i, err := svc.Confirm(t.Context(), "i1")
	require.NoError(t, err)
	assert.Equal(t, domain.InteresseConfirme, i.Statut)

	_, err = svc.Refuse(t.Context(), "i1", "déjà attribué")
	require.NoError(t, err)
	req, _ := client.LastRequest(http.MethodPut, "/don-interesses/i1/statut")
	assert.JSONEq(t, `{"statut":"refuse","motif":"déjà attribué"}`, string(req.Body))

	_, err = svc.ChangeStatut(t.Context(), "i1", "perdu", "")
	assert.Error(t, err)
	assert.Equal(t, 2, client.CallCount(http.MethodPut, "/don-interesses/i1/statut"))
}

func TestDonInteresseUpdate(t *testing.T) {
	opts, client, _ := testOptions()
	svc := NewDonInteresseService(opts)

	zero := 0
	_, err := svc.Update(t.Context(), "i1", dto.DonInteresseUpdate{QuantiteDemandee: &zero})
	require.Error(t, err)

	statut := domain.InteresseStatut("perdu")
	_, err = svc.Update(t.Context(), "i1", dto.DonInteresseUpdate{Statut: &statut})
	require.Error(t, err)
	assert.Equal(t, 0, client.CallCount(http.MethodPut, "/don-interesses/i1"))
}

func TestInteresseConversations(t *testing.T) {
	opts, client, _ := testOptions()
	client.On(http.MethodGet, "/don-interesses/i1/conversations", http.StatusOK,
		`{"data":{"messages":[{"uuid":"m1","contenu":"Bonjour"},{"uuid":"m2","contenu":"Disponible samedi"}]}}`)
	client.On(http.MethodPost, "/don-interesses/i1/conversations", http.StatusCreated, `{"message":{"uuid":"m3","contenu":"Merci"}}`)
	svc := NewDonInteresseService(opts)

	page, err := svc.Conversations(t.Context(), "i1", domain.ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Disponible samedi", page.Items[1].Contenu)

	msg, err := svc.SendMessage(t.Context(), "i1", "Merci")
	require.NoError(t, err)
	assert.Equal(t, "m3", msg.UUID)

	_, err = svc.SendMessage(t.Context(), "i1", "   ")
	var verr *validation.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, client.CallCount(http.MethodPost, "/don-interesses/i1/conversations"))
}

func TestInteresseFeedback(t *testing.T) {
	opts, client, metrics := testOptions()
	client.On(http.MethodPost, "/echange-interesses/e1/feedback", http.StatusCreated, `{"feedback":{"uuid":"f1","note":4}}`)
	svc := NewEchangeInteresseService(opts)

	fb, err := svc.AddFeedback(t.Context(), "e1", dto.FeedbackRequest{Note: 4, Commentaire: "Échange fluide"})
	require.NoError(t, err)
	assert.Equal(t, 4, fb.Note)

	_, err = svc.AddFeedback(t.Context(), "e1", dto.FeedbackRequest{Note: 0})
	assert.Error(t, err)
	assert.Equal(t, 1, client.CallCount(http.MethodPost, "/echange-interesses/e1/feedback"))
	assert.Equal(t, 1, metrics.Validations["echange_interesse_feedback:false"])
}

func TestEchangeInteresseValidate(t *testing.T) {
	opts, client, _ := testOptions()
	client.On(http.MethodGet, "/echanges/"+uuidA, http.StatusOK, `{"uuid":"`+uuidA+`","statut":"actif"}`)
	svc := NewEchangeInteresseService(opts)

	data := dto.EchangeInteresseCreate{
		EchangeUUID:     uuidA,
		UtilisateurUUID: uuidB,
		ObjetPropose:    "Vélo enfant",
		ValeurEstimee:   decimal.NewFromInt(15000),
	}
	res := svc.Validate(t.Context(), data)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Suggestions)

	data.ObjetPropose = ""
	data.ValeurEstimee = decimal.Zero
	res = svc.Validate(t.Context(), data)
	assert.True(t, res.IsValid)
	assert.Len(t, res.Warnings, 1)
	assert.Len(t, res.Suggestions, 1)

	data.ValeurEstimee = decimal.NewFromInt(-5)
	res = svc.Validate(t.Context(), data)
	assert.False(t, res.IsValid)
}

func TestEchangeInteresse_ParentLabel(t *testing.T) {
	opts, client, _ := testOptions()
	client.On(http.MethodGet, "/echanges/"+uuidA, http.StatusNotFound, ``)

	res := NewEchangeInteresseService(opts).Validate(t.Context(), dto.EchangeInteresseCreate{EchangeUUID: uuidA, UtilisateurUUID: uuidB, Message: "Intéressé"})
	assert.Equal(t, []string{"l'échange " + uuidA + " introuvable"}, res.Errors)
}

func TestInteresseReplay(t *testing.T) {
	opts, client, _ := testOptions()
	client.On(http.MethodPut, "/echange-interesses/a/statut", http.StatusOK, `{"uuid":"a","statut":"accepte"}`)
	client.Fail(http.MethodPut, "/echange-interesses/b/statut", errors.New("timeout"))
	svc := NewEchangeInteresseService(opts)

	report, err := svc.ChangeStatutEach(t.Context(), domain.InteresseAccepte, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.ErrorCount)

	client.On(http.MethodPut, "/echange-interesses/b/statut", http.StatusOK, `{"uuid":"b","statut":"accepte"}`)
	again, err := svc.Replay(t.Context(), report.Operation, []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, 1, again.SuccessCount)
	assert.Equal(t, 0, again.ErrorCount)
}

func TestInteresseStats_Defaults(t *testing.T) {
	opts, client, _ := testOptions()
	client.On(http.MethodGet, "/don-interesses/stats", http.StatusOK, `{"total":3,"par_statut":{"en_attente":3}}`)

	stats, err := NewDonInteresseService(opts).Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Len(t, stats.ParStatut, len(domain.AllInteresseStatuts()))
	assert.Equal(t, 3, stats.ParStatut["en_attente"])
}
