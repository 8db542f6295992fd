// Package normalize turns the inconsistent envelopes returned by the
// back-office API into canonical pages and entities.
// Package normalize convertit les enveloppes hétérogènes du backend en pages et entités canoniques.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

var (
	// ErrNotFound returned when no entity with a uuid is found / Retourné quand aucune entité avec uuid n'est trouvée
	ErrNotFound = errors.New("ressource introuvable")

	// ErrInvalidStructure returned when the body is not a JSON object / Retourné quand le corps n'est pas un objet JSON
	ErrInvalidStructure = errors.New("structure de réponse invalide")
)

// Shape identifies which envelope a list response matched / Identifie l'enveloppe reconnue
type Shape string

const (
	ShapeArray       Shape = "array"        // [...]
	ShapeData        Shape = "data"         // {"data": [...]}
	ShapeKeyed       Shape = "keyed"        // {"civilites": [...]}
	ShapeNested      Shape = "nested"       // {"data": {"civilites": [...]}}
	ShapeSingleArray Shape = "single_array" // {"whatever": [...]} with exactly one array property
	ShapeEmpty       Shape = "empty"        // nothing usable
)

type object map[string]json.RawMessage

func kind(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

func isArray(raw json.RawMessage) bool  { return kind(raw) == '[' }
func isObject(raw json.RawMessage) bool { return kind(raw) == '{' }

func decodeObject(raw []byte) (object, error) {
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("null body")
	}
	return obj, nil
}

// keyedArray returns the array stored under key, if any.
func (o object) keyedArray(key string) (json.RawMessage, bool) {
	if key == "" {
		return nil, false
	}
	raw, ok := o[key]
	if !ok || !isArray(raw) {
		return nil, false
	}
	return raw, true
}

// singleArray returns the only array-valued property, if there is exactly one.
func (o object) singleArray() (json.RawMessage, bool) {
	var found json.RawMessage
	n := 0
	for _, raw := range o {
		if isArray(raw) {
			found = raw
			n++
		}
	}
	return found, n == 1
}

func (o object) keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// decodeItems decodes each element on its own so one malformed row does not hide the others.
func decodeItems[T any](raw json.RawMessage) []T {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		slog.Warn("normalize: array could not be decoded", "err", err)
		return []T{}
	}

	items := make([]T, 0, len(elems))
	for i, elem := range elems {
		if kind(elem) == 'n' {
			continue
		}
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			slog.Warn("normalize: skipping malformed item", "index", i, "err", err)
			continue
		}
		items = append(items, item)
	}
	return items
}

// Entity extracts a single entity from body / Extrait une entité unique du corps
//
// Lookup order: a "data" object carrying a uuid, then an entityKey object
// carrying a uuid, then the body itself when it carries a uuid.
func Entity[T any](body []byte, entityKey string) (*T, error) {
	obj, err := decodeObject(bytes.TrimSpace(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}

	candidates := []json.RawMessage{obj["data"]}
	if entityKey != "" {
		candidates = append(candidates, obj[entityKey])
	}
	candidates = append(candidates, body)

	for _, raw := range candidates {
		if !isObject(raw) || !hasUUID(raw) {
			continue
		}
		var entity T
		if err := json.Unmarshal(raw, &entity); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
		}
		return &entity, nil
	}

	return nil, ErrNotFound
}

func hasUUID(raw json.RawMessage) bool {
	var probe struct {
		UUID json.RawMessage `json:"uuid"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	switch string(bytes.TrimSpace(probe.UUID)) {
	case "", "null", `""`:
		return false
	default:
		return true
	}
}

// Into decodes body into dst, unwrapping a "data" object or one of keys first.
// Fields already set in dst survive when the backend omits them.
// Into décode body dans dst en déballant "data" ou une des clés ; les valeurs par défaut de dst sont conservées
func Into(body []byte, dst any, keys ...string) error {
	obj, err := decodeObject(bytes.TrimSpace(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}

	raw := json.RawMessage(body)
	for _, key := range append([]string{"data"}, keys...) {
		if candidate, ok := obj[key]; ok && isObject(candidate) {
			raw = candidate
			break
		}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}
	return nil
}
