package domain

import "github.com/shopspring/decimal"

// Civilite represents a salutation record ("Monsieur", "Madame") / Représente une civilité
type Civilite struct {
	BaseModel
	Libelle     string `json:"libelle"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	Statut      Statut `json:"statut,omitempty"`
	Ordre       int    `json:"ordre,omitempty"` // Display order / Ordre d'affichage
}

// Pays represents a country / Représente un pays
type Pays struct {
	BaseModel
	Nom       string `json:"nom"`
	Code      string `json:"code"`                // ISO 3166 alpha-2
	Indicatif string `json:"indicatif,omitempty"` // Dialing prefix / Indicatif téléphonique
	Statut    Statut `json:"statut,omitempty"`
}

// Ville represents a city, with a denormalized country snapshot / Représente une ville
type Ville struct {
	BaseModel
	Nom        string `json:"nom"`
	CodePostal string `json:"code_postal,omitempty"`
	Region     string `json:"region,omitempty"`
	PaysUUID   string `json:"pays_uuid,omitempty"`
	Pays       *Pays  `json:"pays,omitempty"`
	Statut     Statut `json:"statut,omitempty"`
}

// Categorie represents a product category, optionally nested / Représente une catégorie
type Categorie struct {
	BaseModel
	Libelle       string `json:"libelle"`
	Slug          string `json:"slug,omitempty"`
	Description   string `json:"description,omitempty"`
	ParentUUID    string `json:"parent_uuid,omitempty"`
	Statut        Statut `json:"statut,omitempty"`
	Ordre         int    `json:"ordre,omitempty"`
	ProduitsCount int    `json:"produits_count,omitempty"`
}

// CommandeItem is one order line / Ligne de commande
type CommandeItem struct {
	ProduitUUID  string          `json:"produit_uuid"`
	Libelle      string          `json:"libelle,omitempty"`
	Quantite     int             `json:"quantite"`
	PrixUnitaire decimal.Decimal `json:"prix_unitaire"`
}

// Total returns quantity times unit price / Retourne quantité × prix unitaire
func (i CommandeItem) Total() decimal.Decimal {
	return i.PrixUnitaire.Mul(decimal.NewFromInt(int64(i.Quantite)))
}

// Commande represents a customer order / Représente une commande
type Commande struct {
	BaseModel
	Reference        string          `json:"reference,omitempty"`
	ClientUUID       string          `json:"client_uuid"`
	BoutiqueUUID     string          `json:"boutique_uuid,omitempty"`
	Statut           CommandeStatut  `json:"statut,omitempty"`
	Items            []CommandeItem  `json:"items,omitempty"`
	MontantTotal     decimal.Decimal `json:"montant_total"`
	ModeLivraison    string          `json:"mode_livraison,omitempty"`
	AdresseLivraison string          `json:"adresse_livraison,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}

// ComputedTotal sums the order lines / Somme des lignes de commande
func (c Commande) ComputedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Total())
	}
	return total
}

// Commentaire represents a review on a product, shop or article / Représente un commentaire
type Commentaire struct {
	BaseModel
	Contenu     string            `json:"contenu"`
	Note        int               `json:"note,omitempty"` // 1-5, 0 when absent / 0 si absente
	AuteurUUID  string            `json:"auteur_uuid,omitempty"`
	AuteurNom   string            `json:"auteur_nom,omitempty"`
	AuteurEmail string            `json:"auteur_email,omitempty"`
	CibleType   CibleType         `json:"cible_type"`
	CibleUUID   string            `json:"cible_uuid"`
	Statut      CommentaireStatut `json:"statut,omitempty"`
	EstSignale  bool              `json:"est_signale,omitempty"` // Reported by a user / Signalé par un utilisateur
}

// DonInteresse is a user's interest in a donation listing / Intérêt d'un utilisateur pour un don
type DonInteresse struct {
	BaseModel
	DonUUID          string          `json:"don_uuid"`
	UtilisateurUUID  string          `json:"utilisateur_uuid"`
	Message          string          `json:"message,omitempty"`
	QuantiteDemandee int             `json:"quantite_demandee,omitempty"`
	Statut           InteresseStatut `json:"statut,omitempty"`
	DateExpiration   *Timestamp      `json:"date_expiration,omitempty"`
}

// EchangeInteresse is a user's interest in a barter listing / Intérêt d'un utilisateur pour un échange
type EchangeInteresse struct {
	BaseModel
	EchangeUUID     string          `json:"echange_uuid"`
	UtilisateurUUID string          `json:"utilisateur_uuid"`
	Message         string          `json:"message,omitempty"`
	ObjetPropose    string          `json:"objet_propose,omitempty"`
	ValeurEstimee   decimal.Decimal `json:"valeur_estimee"`
	Statut          InteresseStatut `json:"statut,omitempty"`
	DateExpiration  *Timestamp      `json:"date_expiration,omitempty"`
}

// Listing is the parent donation or exchange an interest points to / Annonce parente (don ou échange)
type Listing struct {
	BaseModel
	Titre           string `json:"titre,omitempty"`
	Statut          string `json:"statut,omitempty"`
	EstPublie       *bool  `json:"est_publie,omitempty"`
	QuantiteRestant int    `json:"quantite_restante,omitempty"`
}

// IsActive reports whether the listing still accepts interests / Indique si l'annonce accepte des intérêts
func (l Listing) IsActive() bool {
	if l.Deleted() {
		return false
	}
	if l.EstPublie != nil && !*l.EstPublie {
		return false
	}
	switch l.Statut {
	case "", "actif", "disponible", "publie", "en_cours":
		return true
	default:
		return false
	}
}

// Message is one entry of an interest conversation / Message d'une conversation
type Message struct {
	BaseModel
	ExpediteurUUID string `json:"expediteur_uuid,omitempty"`
	Contenu        string `json:"contenu"`
	Lu             bool   `json:"lu,omitempty"`
}

// Feedback is the post-transaction rating left on an interest / Retour laissé après transaction
type Feedback struct {
	BaseModel
	Note        int    `json:"note"`
	Commentaire string `json:"commentaire,omitempty"`
}
