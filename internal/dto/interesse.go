package dto

import (
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/shopspring/decimal"
)

// DonInteresseCreate is the payload for expressing interest in a donation / Payload d'intérêt pour un don
type DonInteresseCreate struct {
	DonUUID          string `json:"don_uuid"`
	UtilisateurUUID  string `json:"utilisateur_uuid"`
	Message          string `json:"message,omitempty"`
	QuantiteDemandee int    `json:"quantite_demandee,omitempty"`
}

// DonInteresseUpdate is a partial update / Mise à jour partielle
type DonInteresseUpdate struct {
	Message          *string                 `json:"message,omitempty"`
	QuantiteDemandee *int                    `json:"quantite_demandee,omitempty"`
	Statut           *domain.InteresseStatut `json:"statut,omitempty"`
}

// EchangeInteresseCreate is the payload for proposing a trade / Payload de proposition d'échange
type EchangeInteresseCreate struct {
	EchangeUUID     string          `json:"echange_uuid"`
	UtilisateurUUID string          `json:"utilisateur_uuid"`
	Message         string          `json:"message,omitempty"`
	ObjetPropose    string          `json:"objet_propose,omitempty"`
	ValeurEstimee   decimal.Decimal `json:"valeur_estimee"`
}

// EchangeInteresseUpdate is a partial update / Mise à jour partielle
type EchangeInteresseUpdate struct {
	Message       *string                 `json:"message,omitempty"`
	ObjetPropose  *string                 `json:"objet_propose,omitempty"`
	ValeurEstimee *decimal.Decimal        `json:"valeur_estimee,omitempty"`
	Statut        *domain.InteresseStatut `json:"statut,omitempty"`
}

// MessageRequest is the body of POST /{uuid}/conversations / Corps d'envoi de message
type MessageRequest struct {
	Contenu string `json:"contenu"`
}

// FeedbackRequest is the body of POST /{uuid}/feedback / Corps d'envoi de retour
type FeedbackRequest struct {
	Note        int    `json:"note"`
	Commentaire string `json:"commentaire,omitempty"`
}
