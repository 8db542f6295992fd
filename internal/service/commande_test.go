package service

import (
	"errors"
	"net/http"
	"testing"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCommande() dto.CommandeCreate {
	return dto.CommandeCreate{
		ClientUUID:       uuidA,
		ModeLivraison:    "livraison",
		AdresseLivraison: "12 rue des Manguiers, Lomé",
		Items: []domain.CommandeItem{
			{ProduitUUID: uuidB, Quantite: 2, PrixUnitaire: decimal.RequireFromString("1500.50")},
		},
	}
}

func TestCommandeValidate_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.CommandeCreate)
		want   string
	}{
		{"no client", func(d *dto.CommandeCreate) { d.ClientUUID = "" }, "le champ client_uuid est obligatoire"},
		{"no items", func(d *dto.CommandeCreate) { d.Items = nil }, "la commande doit contenir au moins un article"},
		{"zero quantity", func(d *dto.CommandeCreate) { d.Items[0].Quantite = 0 }, "la quantité de chaque article doit être au moins 1"},
		{"negative price", func(d *dto.CommandeCreate) { d.Items[0].PrixUnitaire = decimal.NewFromInt(-1) }, "le prix unitaire ne peut pas être négatif"},
		{"home delivery without address", func(d *dto.CommandeCreate) { d.AdresseLivraison = " " }, "l'adresse de livraison est obligatoire pour une livraison à domicile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, client, _ := testOptions()
			client.On(http.MethodGet, "/produits/"+uuidB+"/stock", http.StatusOK, `{"disponible":true,"stock":10}`)

			data := validCommande()
			tt.mutate(&data)
			res := NewCommandeService(opts).Validate(t.Context(), data)
			assert.False(t, res.IsValid)
			assert.Contains(t, res.Errors, tt.want)
		})
	}
}

func TestCommandeValidate_Stock(t *testing.T) {
	t.Run("insufficient stock warns", func(t *testing.T) {
		opts, client, _ := testOptions()
		client.On(http.MethodGet, "/produits/"+uuidB+"/stock", http.StatusOK, `{"data":{"disponible":true,"stock":1}}`)

		res := NewCommandeService(opts).Validate(t.Context(), validCommande())
		assert.True(t, res.IsValid)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "stock insuffisant")
		assert.Equal(t, false, res.Extras["disponibilite_stock"])
	})

	t.Run("lookup failure fails open", func(t *testing.T) {
		opts, client, metrics := testOptions()
		client.Fail(http.MethodGet, "/produits/"+uuidB+"/stock", errors.New("timeout"))

		res := NewCommandeService(opts).Validate(t.Context(), validCommande())
		assert.True(t, res.IsValid)
		assert.Equal(t, true, res.Extras["disponibilite_stock"])
		assert.Equal(t, 1, metrics.FailOpens["commande:disponibilite_stock"])
	})
}

func TestCheckStock(t *testing.T) {
	opts, client, _ := testOptions()
	client.On(http.MethodGet, "/produits/"+uuidB+"/stock", http.StatusOK, `{"disponible":true,"stock":3}`)
	svc := NewCommandeService(opts)

	assert.True(t, svc.CheckStock(t.Context(), uuidB, 3).Disponible)
	assert.False(t, svc.CheckStock(t.Context(), uuidB, 4).Disponible)
	assert.True(t, svc.CheckStock(t.Context(), uuidA, 4).Disponible, "unknown product lookup fails open")
}

func TestCommandeUpdateStatut(t *testing.T) {
	opts, client, _ := testOptions()
	client.On(http.MethodPut, "/commandes/o1/statut", http.StatusOK, `{"data":{"uuid":"o1","statut":"annulee"}}`)
	svc := NewCommandeService(opts)

	c, err := svc.Cancel(t.Context(), "o1", "rupture")
	require.NoError(t, err)
	assert.Equal(t, domain.CommandeAnnulee, c.Statut)

	req, _ := client.LastRequest(http.MethodPut, "/commandes/o1/statut")
	assert.JSONEq(t, `{"statut":"annulee","motif":"rupture"}`, string(req.Body))

	_, err = svc.UpdateStatut(t.Context(), "o1", "perdue", "")
	require.Error(t, err)
	assert.Equal(t, 1, client.CallCount(http.MethodPut, "/commandes/o1/statut"))
}

func TestCommandeAnalytics(t *testing.T) {
	opts, client, _ := testOptions()
	client.On(http.MethodGet, "/commandes/analytics", http.StatusOK, `{"data":{"points":[{"date":"2026-03-01","commandes":2,"montant":"3001.00"}]}}`)

	a, err := NewCommandeService(opts).Analytics(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, "30j", a.Periode)
	require.Len(t, a.Points, 1)
	assert.Equal(t, "3001", a.Points[0].Montant.String())
	assert.NotNil(t, a.TopProduits)

	req, _ := client.LastRequest(http.MethodGet, "/commandes/analytics")
	assert.Equal(t, "30j", req.Query.Get("periode"))
}

func TestCommandeExport_Amounts(t *testing.T) {
	opts, client, _ := testOptions()
	client.On(http.MethodGet, "/commandes", http.StatusOK, `[{"uuid":"o1","reference":"CMD-1","montant_total":"3001.5"}]`)

	f, err := NewCommandeService(opts).Export(t.Context(), domain.ListParams{})
	require.NoError(t, err)
	assert.True(t, f.Fallback)
	assert.Contains(t, string(f.Data), "3001.50")
}
