package domain

import "github.com/shopspring/decimal"

// ReferentielStats counts reference data by statut / Statistiques d'un référentiel
type ReferentielStats struct {
	Total     int            `json:"total"`
	Actifs    int            `json:"actifs"`
	Inactifs  int            `json:"inactifs"`
	Supprimes int            `json:"supprimes"`
	Extra     map[string]int `json:"extra,omitempty"`
}

// DefaultReferentielStats is merged under backend values / Valeurs par défaut fusionnées sous le backend
func DefaultReferentielStats() ReferentielStats {
	return ReferentielStats{Extra: map[string]int{}}
}

// CommandeStats summarizes orders / Statistiques des commandes
type CommandeStats struct {
	Total           int             `json:"total"`
	ParStatut       map[string]int  `json:"par_statut"`
	ChiffreAffaires decimal.Decimal `json:"chiffre_affaires"`
	PanierMoyen     decimal.Decimal `json:"panier_moyen"`
	CommandesDuJour int             `json:"commandes_du_jour"`
	TauxAnnulation  float64         `json:"taux_annulation"`
}

// DefaultCommandeStats returns zeroed order stats with every statut present.
func DefaultCommandeStats() CommandeStats {
	par := make(map[string]int, len(AllCommandeStatuts()))
	for _, s := range AllCommandeStatuts() {
		par[string(s)] = 0
	}
	return CommandeStats{
		ParStatut:       par,
		ChiffreAffaires: decimal.Zero,
		PanierMoyen:     decimal.Zero,
	}
}

// CommandeAnalytics is the time series behind the orders dashboard / Série temporelle des commandes
type CommandeAnalytics struct {
	Periode     string           `json:"periode"`
	Points      []AnalyticsPoint `json:"points"`
	TopProduits []TopProduit     `json:"top_produits"`
	Repartition map[string]int   `json:"repartition"`
}

// AnalyticsPoint is one bucket of the series / Point de la série
type AnalyticsPoint struct {
	Date      string          `json:"date"`
	Commandes int             `json:"commandes"`
	Montant   decimal.Decimal `json:"montant"`
}

// TopProduit is a best-selling product / Produit le plus vendu
type TopProduit struct {
	ProduitUUID string `json:"produit_uuid"`
	Libelle     string `json:"libelle"`
	Quantite    int    `json:"quantite"`
}

// DefaultCommandeAnalytics returns an empty series for the given period.
func DefaultCommandeAnalytics(periode string) CommandeAnalytics {
	return CommandeAnalytics{
		Periode:     periode,
		Points:      []AnalyticsPoint{},
		TopProduits: []TopProduit{},
		Repartition: map[string]int{},
	}
}

// CommentaireStats summarizes moderation / Statistiques de modération
type CommentaireStats struct {
	Total       int            `json:"total"`
	EnAttente   int            `json:"en_attente"`
	Approuves   int            `json:"approuves"`
	Rejetes     int            `json:"rejetes"`
	Signales    int            `json:"signales"`
	NoteMoyenne float64        `json:"note_moyenne"`
	ParNote     map[string]int `json:"par_note"`
}

// DefaultCommentaireStats returns zeroed stats with ratings 1..5 present.
func DefaultCommentaireStats() CommentaireStats {
	return CommentaireStats{
		ParNote: map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0},
	}
}

// InteresseStats summarizes donation or exchange interests / Statistiques des intérêts
type InteresseStats struct {
	Total           int            `json:"total"`
	ParStatut       map[string]int `json:"par_statut"`
	TauxAcceptation float64        `json:"taux_acceptation"`
	DelaiMoyenJours float64        `json:"delai_moyen_jours"`
}

// DefaultInteresseStats returns zeroed stats with every statut present.
func DefaultInteresseStats() InteresseStats {
	par := make(map[string]int, len(AllInteresseStatuts()))
	for _, s := range AllInteresseStatuts() {
		par[string(s)] = 0
	}
	return InteresseStats{ParStatut: par}
}

// StockAvailability is the answer of the product stock lookup / Disponibilité du stock d'un produit
type StockAvailability struct {
	ProduitUUID string `json:"produit_uuid"`
	Disponible  bool   `json:"disponible"`
	Stock       int    `json:"stock"`
}

// ContentAnalysis is the answer of the comment analysis endpoint / Résultat de l'analyse de contenu
type ContentAnalysis struct {
	Propre        bool     `json:"propre"`
	Sentiment     string   `json:"sentiment,omitempty"`
	Score         float64  `json:"score,omitempty"`
	MotsInterdits []string `json:"mots_interdits,omitempty"`
}

// DefaultContentAnalysis is the permissive result used when analysis fails.
func DefaultContentAnalysis() ContentAnalysis {
	return ContentAnalysis{Propre: true, Sentiment: "neutre"}
}
