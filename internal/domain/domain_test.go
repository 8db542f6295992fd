package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatut_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		statut Statut
		valid  bool
	}{
		{"Actif", StatutActif, true},
		{"Inactif", StatutInactif, true},
		{"Empty", Statut(""), false},
		{"Uppercase", Statut("ACTIF"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.statut.IsValid())
		})
	}
}

func TestInteresseStatut_Lifecycle(t *testing.T) {
	tests := []struct {
		name     string
		statut   InteresseStatut
		terminal bool
		next     []InteresseStatut
	}{
		{"En attente", InteresseEnAttente, false, []InteresseStatut{InteresseConfirme, InteresseRefuse, InteresseAnnule, InteresseExpire}},
		{"Confirme", InteresseConfirme, false, []InteresseStatut{InteresseAccepte, InteresseRefuse, InteresseAnnule, InteresseExpire}},
		{"Accepte", InteresseAccepte, false, []InteresseStatut{InteresseComplete, InteresseRefuse, InteresseAnnule, InteresseExpire}},
		{"Complete", InteresseComplete, true, nil},
		{"Refuse", InteresseRefuse, true, nil},
		{"Expire", InteresseExpire, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.statut.IsValid())
			assert.Equal(t, tt.terminal, tt.statut.IsTerminal())
			assert.Equal(t, tt.next, tt.statut.NextStatuts())
		})
	}

	assert.False(t, InteresseStatut("livree").IsValid())
}

func TestInteresseStatut_EchangeSkipsConfirmation(t *testing.T) {
	next := InteresseEnAttente.EchangeNextStatuts()
	assert.Equal(t, InteresseAccepte, next[0])
	assert.NotContains(t, next, InteresseConfirme)
	assert.Nil(t, InteresseConfirme.EchangeNextStatuts())
}

func TestCommandeStatut_Lifecycle(t *testing.T) {
	assert.Equal(t, []CommandeStatut{CommandeConfirmee, CommandeAnnulee}, CommandeEnAttente.NextStatuts())
	assert.Equal(t, []CommandeStatut{CommandeLivree}, CommandeExpediee.NextStatuts())
	assert.Equal(t, []CommandeStatut{CommandeRemboursee}, CommandeLivree.NextStatuts())
	assert.True(t, CommandeAnnulee.IsTerminal())
	assert.False(t, CommandeLivree.IsTerminal())
	assert.False(t, CommandeStatut("perdue").IsValid())
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"RFC3339", `"2024-03-01T10:20:30Z"`, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC), false},
		{"SQL datetime", `"2024-03-01 10:20:30"`, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC), false},
		{"Date only", `"2024-03-01"`, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{"Null", `null`, time.Time{}, false},
		{"Empty string", `""`, time.Time{}, false},
		{"Garbage", `"hier"`, time.Time{}, true},
		{"Number", `12`, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.input), &ts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(ts.Time), "got %v", ts.Time)
		})
	}
}

func TestBaseModel_DecodesAuditFields(t *testing.T) {
	var c Civilite
	body := `{"uuid":"x","id":4,"libelle":"Monsieur","created_at":"2024-01-02 03:04:05","deleted_at":null}`
	require.NoError(t, json.Unmarshal([]byte(body), &c))

	assert.Equal(t, "x", c.Identifier())
	assert.Equal(t, int64(4), c.ID)
	require.NotNil(t, c.CreatedAt)
	assert.Equal(t, 2024, c.CreatedAt.Year())
	assert.False(t, c.Deleted())
}

func TestCommande_ComputedTotal(t *testing.T) {
	c := Commande{Items: []CommandeItem{
		{ProduitUUID: "p1", Quantite: 2, PrixUnitaire: decimal.RequireFromString("10.50")},
		{ProduitUUID: "p2", Quantite: 1, PrixUnitaire: decimal.RequireFromString("4.25")},
	}}
	assert.True(t, decimal.RequireFromString("25.25").Equal(c.ComputedTotal()))
}

func TestListing_IsActive(t *testing.T) {
	no := false
	tests := []struct {
		name    string
		listing Listing
		want    bool
	}{
		{"Default", Listing{}, true},
		{"Publie", Listing{Statut: "publie"}, true},
		{"Ferme", Listing{Statut: "ferme"}, false},
		{"Not published", Listing{EstPublie: &no}, false},
		{"Deleted", Listing{BaseModel: BaseModel{IsDeleted: true}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.listing.IsActive())
		})
	}
}

func TestListParams_Values(t *testing.T) {
	p := ListParams{Page: 2, Limit: 20, Search: "mon", Filters: map[string]string{"usage": "client", "vide": ""}}
	v := p.Values()

	assert.Equal(t, "2", v.Get("page"))
	assert.Equal(t, "20", v.Get("limit"))
	assert.Equal(t, "mon", v.Get("search"))
	assert.Equal(t, "client", v.Get("usage"))
	assert.False(t, v.Has("statut"))
	assert.False(t, v.Has("vide"))
	assert.Empty(t, ListParams{}.Values())
}

func TestListParams_WithDoesNotMutate(t *testing.T) {
	base := ListParams{Filters: map[string]string{"a": "1"}}
	derived := base.With("b", "2")

	assert.Len(t, base.Filters, 1)
	assert.Equal(t, "2", derived.Filters["b"])
	assert.Equal(t, "1", derived.Filters["a"])
}

func TestOperation_Parts(t *testing.T) {
	tests := []struct {
		name      string
		op        Operation
		resource  string
		action    string
		argument  string
		retryable bool
	}{
		{"Delete", NewOperation("civilites", ActionDelete), "civilites", "delete", "", true},
		{"Statut", NewOperation("commandes", ActionStatut, "annulee"), "commandes", "statut", "annulee", true},
		{"Statut without target", NewOperation("commandes", ActionStatut), "commandes", "statut", "", false},
		{"Unknown", Operation("civilites:export"), "civilites", "export", "", false},
		{"Empty", Operation(""), "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.resource, tt.op.Resource())
			assert.Equal(t, tt.action, tt.op.Action())
			assert.Equal(t, tt.argument, tt.op.Argument())
			assert.Equal(t, tt.retryable, tt.op.Retryable())
		})
	}
}

func TestPage_HasNext(t *testing.T) {
	assert.True(t, (&Page[Civilite]{Page: 1, Pages: 3}).HasNext())
	assert.False(t, (&Page[Civilite]{Page: 3, Pages: 3}).HasNext())
}
