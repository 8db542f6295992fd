package dto

import "github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"

// CommandeCreate is the payload for placing an order / Payload de création d'une commande
type CommandeCreate struct {
	ClientUUID       string                `json:"client_uuid"`
	BoutiqueUUID     string                `json:"boutique_uuid,omitempty"`
	Items            []domain.CommandeItem `json:"items"`
	ModeLivraison    string                `json:"mode_livraison,omitempty"`
	AdresseLivraison string                `json:"adresse_livraison,omitempty"`
	Notes            string                `json:"notes,omitempty"`
}

// CommandeUpdate is a partial order update / Mise à jour partielle d'une commande
type CommandeUpdate struct {
	Statut           *domain.CommandeStatut `json:"statut,omitempty"`
	ModeLivraison    *string                `json:"mode_livraison,omitempty"`
	AdresseLivraison *string                `json:"adresse_livraison,omitempty"`
	Notes            *string                `json:"notes,omitempty"`
}
