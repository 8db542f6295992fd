package domain

import (
	"net/url"
	"strconv"
)

// Page is the canonical list result / Résultat de liste canonique
type Page[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"` // Items in this page / Éléments dans cette page
	Total int `json:"total"` // Items across all pages / Éléments sur toutes les pages
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// HasNext reports whether a following page exists / Indique s'il existe une page suivante
func (p *Page[T]) HasNext() bool {
	return p.Page < p.Pages
}

// ListParams are the pagination and filter parameters of list calls / Paramètres de pagination et filtres
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	Statut    string
	SortBy    string
	SortOrder string
	Filters   map[string]string // Entity-specific filters / Filtres propres à l'entité
}

// With returns a copy carrying an extra filter / Retourne une copie avec un filtre supplémentaire
func (p ListParams) With(key, value string) ListParams {
	filters := make(map[string]string, len(p.Filters)+1)
	for k, v := range p.Filters {
		filters[k] = v
	}
	filters[key] = value
	p.Filters = filters
	return p
}

// Values encodes only the parameters that are set / Encode uniquement les paramètres renseignés
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Statut != "" {
		v.Set("statut", p.Statut)
	}
	if p.SortBy != "" {
		v.Set("sort_by", p.SortBy)
	}
	if p.SortOrder != "" {
		v.Set("sort_order", p.SortOrder)
	}
	for key, value := range p.Filters {
		if value != "" {
			v.Set(key, value)
		}
	}
	return v
}
