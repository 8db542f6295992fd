package dto

// BulkUpdateRequest is the body of POST /bulk-update / Corps de la mise à jour en masse
type BulkUpdateRequest struct {
	UUIDs   []string       `json:"uuids"`
	Updates map[string]any `json:"updates"`
}

// BulkDeleteRequest is the body of POST /bulk-delete / Corps de la suppression en masse
type BulkDeleteRequest struct {
	UUIDs []string `json:"uuids"`
}

// StatutChange is the body of PUT /{uuid}/statut / Corps du changement de statut
type StatutChange struct {
	Statut string `json:"statut"`
	Motif  string `json:"motif,omitempty"`
}
