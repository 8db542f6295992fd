package dto

import "github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"

// CiviliteCreate is the payload for creating a civilité / Payload de création d'une civilité
type CiviliteCreate struct {
	Libelle     string        `json:"libelle"`
	Code        string        `json:"code,omitempty"`
	Description string        `json:"description,omitempty"`
	Statut      domain.Statut `json:"statut,omitempty"`
	Ordre       int           `json:"ordre,omitempty"`
}

// CiviliteUpdate is a partial update, nil fields are left untouched / Mise à jour partielle, champs nil ignorés
type CiviliteUpdate struct {
	Libelle     *string        `json:"libelle,omitempty"`
	Code        *string        `json:"code,omitempty"`
	Description *string        `json:"description,omitempty"`
	Statut      *domain.Statut `json:"statut,omitempty"`
	Ordre       *int           `json:"ordre,omitempty"`
}

// PaysCreate is the payload for creating a country / Payload de création d'un pays
type PaysCreate struct {
	Nom       string        `json:"nom"`
	Code      string        `json:"code"`
	Indicatif string        `json:"indicatif,omitempty"`
	Statut    domain.Statut `json:"statut,omitempty"`
}

// PaysUpdate is a partial country update / Mise à jour partielle d'un pays
type PaysUpdate struct {
	Nom       *string        `json:"nom,omitempty"`
	Code      *string        `json:"code,omitempty"`
	Indicatif *string        `json:"indicatif,omitempty"`
	Statut    *domain.Statut `json:"statut,omitempty"`
}

// VilleCreate is the payload for creating a city / Payload de création d'une ville
type VilleCreate struct {
	Nom        string        `json:"nom"`
	CodePostal string        `json:"code_postal,omitempty"`
	Region     string        `json:"region,omitempty"`
	PaysUUID   string        `json:"pays_uuid"`
	Statut     domain.Statut `json:"statut,omitempty"`
}

// VilleUpdate is a partial city update / Mise à jour partielle d'une ville
type VilleUpdate struct {
	Nom        *string        `json:"nom,omitempty"`
	CodePostal *string        `json:"code_postal,omitempty"`
	Region     *string        `json:"region,omitempty"`
	PaysUUID   *string        `json:"pays_uuid,omitempty"`
	Statut     *domain.Statut `json:"statut,omitempty"`
}

// CategorieCreate is the payload for creating a category / Payload de création d'une catégorie
type CategorieCreate struct {
	Libelle     string        `json:"libelle"`
	Slug        string        `json:"slug,omitempty"`
	Description string        `json:"description,omitempty"`
	ParentUUID  string        `json:"parent_uuid,omitempty"`
	Statut      domain.Statut `json:"statut,omitempty"`
	Ordre       int           `json:"ordre,omitempty"`
}

// CategorieUpdate is a partial category update / Mise à jour partielle d'une catégorie
type CategorieUpdate struct {
	Libelle     *string        `json:"libelle,omitempty"`
	Slug        *string        `json:"slug,omitempty"`
	Description *string        `json:"description,omitempty"`
	ParentUUID  *string        `json:"parent_uuid,omitempty"`
	Statut      *domain.Statut `json:"statut,omitempty"`
	Ordre       *int           `json:"ordre,omitempty"`
}
