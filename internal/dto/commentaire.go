package dto

import "github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"

// CommentaireCreate is the payload for posting a comment / Payload de création d'un commentaire
type CommentaireCreate struct {
	Contenu     string           `json:"contenu"`
	Note        int              `json:"note,omitempty"`
	AuteurUUID  string           `json:"auteur_uuid,omitempty"`
	AuteurNom   string           `json:"auteur_nom,omitempty"`
	AuteurEmail string           `json:"auteur_email,omitempty"`
	CibleType   domain.CibleType `json:"cible_type"`
	CibleUUID   string           `json:"cible_uuid"`
}

// CommentaireUpdate is a partial comment update / Mise à jour partielle d'un commentaire
type CommentaireUpdate struct {
	Contenu    *string                   `json:"contenu,omitempty"`
	Note       *int                      `json:"note,omitempty"`
	Statut     *domain.CommentaireStatut `json:"statut,omitempty"`
	EstSignale *bool                     `json:"est_signale,omitempty"`
}

// ModerationRequest is the body of PUT /{uuid}/moderation / Corps de la requête de modération
type ModerationRequest struct {
	Statut domain.CommentaireStatut `json:"statut"`
	Motif  string                   `json:"motif,omitempty"`
}

// AnalyseRequest is the body of POST /commentaires/analyse / Corps de la requête d'analyse
type AnalyseRequest struct {
	Contenu string `json:"contenu"`
}
