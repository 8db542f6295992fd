package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// BaseModel provides identity, soft-delete and audit fields shared by every entity / Fournit les champs communs aux entités
type BaseModel struct {
	UUID      string     `json:"uuid"`                 // Primary external identifier / Identifiant externe principal
	ID        int64      `json:"id,omitempty"`         // Optional backend numeric ID / ID numérique optionnel
	IsDeleted bool       `json:"is_deleted,omitempty"` // Soft delete flag / Indicateur de suppression logique
	DeletedAt *Timestamp `json:"deleted_at,omitempty"` // Soft delete timestamp / Horodatage de suppression logique
	CreatedAt *Timestamp `json:"created_at,omitempty"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
	CreatedBy string     `json:"created_by,omitempty"`
	UpdatedBy string     `json:"updated_by,omitempty"`
}

// Identifier returns the entity UUID / Retourne l'UUID de l'entité
func (bm BaseModel) Identifier() string {
	return bm.UUID
}

// Deleted checks if soft-deleted / Vérifie si supprimé (soft delete)
func (bm BaseModel) Deleted() bool {
	return bm.IsDeleted || bm.DeletedAt != nil
}

// timestampLayouts are the formats the backend has been seen to emit.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp decodes the several date formats returned by the backend / Décode les formats de date du backend
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps a time value / Enveloppe une valeur de temps
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// UnmarshalJSON accepts RFC 3339, SQL-style datetimes, plain dates and null.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			ts.Time = t
			return nil
		}
	}
	return fmt.Errorf("timestamp: unsupported format %q", raw)
}

// MarshalJSON emits RFC 3339, or null for the zero time.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Format(time.RFC3339))
}
