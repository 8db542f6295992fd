package mockapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the JSON shape a resource answers lists with.
// The real backend is inconsistent across endpoints; the mock reproduces that.
// Envelope est la forme JSON des listes d'une ressource
type Envelope int

const (
	EnvelopeData   Envelope = iota // {"data": [...], "count", "total", "page", "pages"}
	EnvelopeKeyed                  // {"civilites": [...], "total"}
	EnvelopeNested                 // {"data": {"civilites": [...]}}
	EnvelopeArray                  // [...]
)

func (e Envelope) String() string {
	switch e {
	case EnvelopeData:
		return "data"
	case EnvelopeKeyed:
		return "keyed"
	case EnvelopeNested:
		return "nested"
	default:
		return "array"
	}
}

// envelopeFor rotates shapes across resources / Alterne les enveloppes entre ressources
func envelopeFor(index int) Envelope {
	return Envelope(index % 4)
}

func (e Envelope) list(key string, res ListResult) any {
	items := res.Items
	if items == nil {
		items = []Record{}
	}
	switch e {
	case EnvelopeData:
		return map[string]any{
			"data":  items,
			"count": len(items),
			"total": res.Total,
			"page":  res.Page,
			"pages": res.Pages,
		}
	case EnvelopeKeyed:
		return map[string]any{key: items, "total": res.Total}
	case EnvelopeNested:
		return map[string]any{"data": map[string]any{key: items, "total": res.Total, "limit": res.Limit}}
	default:
		return items
	}
}

// entity wraps a single record; nested lists map to the keyed form.
func (e Envelope) entity(key string, rec Record) any {
	switch e {
	case EnvelopeData, EnvelopeNested:
		return map[string]any{"data": rec}
	case EnvelopeKeyed:
		return map[string]any{key: rec}
	default:
		return rec
	}
}

// ErrorResponse sends a JSON error body / Envoie une erreur JSON
func ErrorResponse(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]any{"error": message, "message": message})
}

// jsonResponse sends a 200 JSON body / Envoie une réponse JSON 200
func jsonResponse(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("mockapi: encode response", "err", err)
	}
}

// decodeRecord reads a JSON object body, limited to 1MB / Lit un objet JSON (1 Mo max)
func decodeRecord(w http.ResponseWriter, r *http.Request) (Record, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var rec Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil || rec == nil {
		ErrorResponse(w, "corps JSON invalide", http.StatusBadRequest)
		return nil, false
	}
	return rec, true
}
