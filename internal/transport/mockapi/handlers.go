package mockapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
)

// resourceDef describes one REST collection served by the mock.
type resourceDef struct {
	Name      string // URL segment and store key / Segment d'URL et clé du store
	ItemsKey  string
	EntityKey string
	Statut    string // Default statut on create / Statut par défaut à la création
	Unique    string // Field behind check-code or check-slug, empty when none

	prepare func(s *Store, rec Record)        // Fills computed fields before create
	stats   func(recs []Record, deleted int) any
	extra   func(r chi.Router, h *resourceHandler)
}

// resourceHandler serves the CRUD and bulk endpoints of one collection.
type resourceHandler struct {
	def      resourceDef
	envelope Envelope
	store    *Store
}

func (h *resourceHandler) routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/stats", h.statistics)
	r.Get("/export", h.export)
	r.Post("/bulk-update", h.bulkUpdate)
	r.Post("/bulk-delete", h.bulkDelete)
	if h.def.Unique != "" {
		r.Get("/check-"+h.def.Unique, h.checkUnique)
	}
	if h.def.extra != nil {
		h.def.extra(r, h)
	}
	r.Get("/{uuid}", h.get)
	r.Put("/{uuid}", h.update)
	r.Delete("/{uuid}", h.remove)
	r.Put("/{uuid}/statut", h.changeStatut)
}

func (h *resourceHandler) notFound(w http.ResponseWriter, id string) {
	ErrorResponse(w, fmt.Sprintf("%s %s introuvable", h.def.EntityKey, id), http.StatusNotFound)
}

func (h *resourceHandler) list(w http.ResponseWriter, r *http.Request) {
	res := h.store.List(h.def.Name, r.URL.Query())
	jsonResponse(w, h.envelope.list(h.def.ItemsKey, res))
}

func (h *resourceHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	rec, ok := h.store.Get(h.def.Name, id)
	if !ok {
		h.notFound(w, id)
		return
	}
	jsonResponse(w, h.envelope.entity(h.def.EntityKey, rec))
}

// create echoes the stored record, audit fields included.
func (h *resourceHandler) create(w http.ResponseWriter, r *http.Request) {
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	if h.def.Unique != "" {
		if v := cast.ToString(rec[h.def.Unique]); v != "" && h.store.Exists(h.def.Name, h.def.Unique, v, "") {
			ErrorResponse(w, fmt.Sprintf("%s %q déjà utilisé", h.def.Unique, v), http.StatusConflict)
			return
		}
	}
	if h.def.Statut != "" && cast.ToString(rec["statut"]) == "" {
		rec["statut"] = h.def.Statut
	}
	if h.def.prepare != nil {
		h.def.prepare(h.store, rec)
	}

	created := h.store.Create(h.def.Name, rec)
	slog.Debug("mockapi: created", "resource", h.def.Name, "uuid", created.uuid())
	writeJSON(w, http.StatusCreated, h.envelope.entity(h.def.EntityKey, created))
}

func (h *resourceHandler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	patch, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	if h.def.Unique != "" {
		if v := cast.ToString(patch[h.def.Unique]); v != "" && h.store.Exists(h.def.Name, h.def.Unique, v, id) {
			ErrorResponse(w, fmt.Sprintf("%s %q déjà utilisé", h.def.Unique, v), http.StatusConflict)
			return
		}
	}
	rec, ok := h.store.Update(h.def.Name, id, patch)
	if !ok {
		h.notFound(w, id)
		return
	}
	jsonResponse(w, h.envelope.entity(h.def.EntityKey, rec))
}

func (h *resourceHandler) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	if !h.store.Delete(h.def.Name, id) {
		h.notFound(w, id)
		return
	}
	jsonResponse(w, map[string]any{"success": true, "uuid": id})
}

// changeStatut serves PUT /{uuid}/statut and PUT /{uuid}/moderation.
func (h *resourceHandler) changeStatut(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	body, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	statut := strings.TrimSpace(cast.ToString(body["statut"]))
	if statut == "" {
		ErrorResponse(w, "le champ statut est obligatoire", http.StatusUnprocessableEntity)
		return
	}
	patch := Record{"statut": statut}
	if motif := cast.ToString(body["motif"]); motif != "" {
		patch["motif"] = motif
	}
	rec, ok := h.store.Update(h.def.Name, id, patch)
	if !ok {
		h.notFound(w, id)
		return
	}
	jsonResponse(w, h.envelope.entity(h.def.EntityKey, rec))
}

type bulkBody struct {
	UUIDs   []string `json:"uuids"`
	Updates Record   `json:"updates"`
}

func decodeBulk(w http.ResponseWriter, r *http.Request) (bulkBody, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var body bulkBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		ErrorResponse(w, "corps JSON invalide", http.StatusBadRequest)
		return body, false
	}
	if len(body.UUIDs) == 0 {
		ErrorResponse(w, "aucun uuid fourni", http.StatusUnprocessableEntity)
		return body, false
	}
	return body, true
}

// bulkUpdate applies one patch to every listed record and returns those updated.
// Unknown uuids are skipped.
func (h *resourceHandler) bulkUpdate(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBulk(w, r)
	if !ok {
		return
	}
	if len(body.Updates) == 0 {
		ErrorResponse(w, "aucune mise à jour fournie", http.StatusUnprocessableEntity)
		return
	}

	updated := make([]Record, 0, len(body.UUIDs))
	for _, id := range body.UUIDs {
		if rec, ok := h.store.Update(h.def.Name, id, body.Updates); ok {
			updated = append(updated, rec)
		}
	}
	slog.Info("mockapi: bulk update", "resource", h.def.Name, "requested", len(body.UUIDs), "updated", len(updated))
	jsonResponse(w, h.envelope.list(h.def.ItemsKey, ListResult{Items: updated, Total: len(updated), Page: 1, Pages: 1, Limit: len(updated)}))
}

func (h *resourceHandler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBulk(w, r)
	if !ok {
		return
	}
	deleted := 0
	for _, id := range body.UUIDs {
		if h.store.Delete(h.def.Name, id) {
			deleted++
		}
	}
	slog.Info("mockapi: bulk delete", "resource", h.def.Name, "requested", len(body.UUIDs), "deleted", deleted)
	jsonResponse(w, map[string]any{"success": true, "deleted": deleted})
}

// checkUnique answers {"available": bool} for ?code= or ?slug=, honoring exclude_uuid.
func (h *resourceHandler) checkUnique(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	value := strings.TrimSpace(q.Get(h.def.Unique))
	if value == "" {
		ErrorResponse(w, fmt.Sprintf("paramètre %s manquant", h.def.Unique), http.StatusBadRequest)
		return
	}
	taken := h.store.Exists(h.def.Name, h.def.Unique, value, q.Get("exclude_uuid"))
	jsonResponse(w, map[string]any{"data": map[string]any{"available": !taken}})
}

// export never renders documents, so clients exercise their CSV fallback.
func (h *resourceHandler) export(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(w, fmt.Sprintf("export %s non disponible", r.URL.Query().Get("format")), http.StatusNotImplemented)
}

// statistics wraps the computed stats in the resource's envelope family.
func (h *resourceHandler) statistics(w http.ResponseWriter, r *http.Request) {
	if h.def.stats == nil {
		ErrorResponse(w, "statistiques non disponibles", http.StatusNotFound)
		return
	}
	_, _, deleted := h.store.CountBy(h.def.Name, "statut")
	stats := h.def.stats(h.store.All(h.def.Name), deleted)

	switch h.envelope {
	case EnvelopeData, EnvelopeNested:
		jsonResponse(w, map[string]any{"data": stats})
	case EnvelopeKeyed:
		jsonResponse(w, map[string]any{"stats": stats})
	default:
		jsonResponse(w, stats)
	}
}
