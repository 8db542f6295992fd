package mockapi

import (
	"cmp"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// periodeDays maps "7j", "30j" or "12m" to a day count; unknown periods mean 30 days.
func periodeDays(periode string) int {
	if n, err := strconv.Atoi(strings.TrimSuffix(periode, "j")); err == nil && strings.HasSuffix(periode, "j") && n > 0 {
		return n
	}
	if n, err := strconv.Atoi(strings.TrimSuffix(periode, "m")); err == nil && strings.HasSuffix(periode, "m") && n > 0 {
		return n * 30
	}
	return 30
}

// analytics buckets orders per creation day over the requested period.
func (h *resourceHandler) analytics(w http.ResponseWriter, r *http.Request) {
	periode := r.URL.Query().Get("periode")
	if periode == "" {
		periode = "30j"
	}
	since := h.store.now().UTC().AddDate(0, 0, -periodeDays(periode)).Format(time.DateOnly)

	type bucket struct {
		commandes int
		montant   decimal.Decimal
	}
	buckets := map[string]*bucket{}
	repartition := map[string]int{}
	quantites := map[string]int{}
	libelles := map[string]string{}

	for _, rec := range h.store.All(h.def.Name) {
		created := cast.ToString(rec["created_at"])
		if len(created) < 10 || created[:10] < since {
			continue
		}
		day := created[:10]
		b, ok := buckets[day]
		if !ok {
			b = &bucket{montant: decimal.Zero}
			buckets[day] = b
		}
		b.commandes++
		b.montant = b.montant.Add(toDecimal(rec["montant_total"]))
		repartition[cast.ToString(rec["statut"])]++

		for _, line := range commandeLines(rec) {
			id := cast.ToString(line["produit_uuid"])
			quantites[id] += cast.ToInt(line["quantite"])
			if l := cast.ToString(line["libelle"]); l != "" {
				libelles[id] = l
			}
		}
	}

	points := make([]map[string]any, 0, len(buckets))
	for _, day := range slices.Sorted(maps.Keys(buckets)) {
		points = append(points, map[string]any{
			"date":      day,
			"commandes": buckets[day].commandes,
			"montant":   buckets[day].montant.StringFixed(2),
		})
	}

	top := make([]map[string]any, 0, len(quantites))
	for _, id := range slices.Collect(maps.Keys(quantites)) {
		top = append(top, map[string]any{"produit_uuid": id, "libelle": libelles[id], "quantite": quantites[id]})
	}
	slices.SortFunc(top, func(a, b map[string]any) int {
		if n := cmp.Compare(cast.ToInt(b["quantite"]), cast.ToInt(a["quantite"])); n != 0 {
			return n
		}
		return cmp.Compare(cast.ToString(a["produit_uuid"]), cast.ToString(b["produit_uuid"]))
	})
	if len(top) > 5 {
		top = top[:5]
	}

	jsonResponse(w, map[string]any{"data": map[string]any{
		"periode":      periode,
		"points":       points,
		"top_produits": top,
		"repartition":  repartition,
	}})
}

// forbiddenWords flag a comment as not clean / Mots qui rendent un commentaire non conforme
var forbiddenWords = []string{"arnaque", "escroc", "idiot", "spam"}

var positiveWords = []string{"merci", "super", "excellent", "parfait", "bravo"}

// analyse is a naive keyword scan standing in for the moderation service.
func analyse(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	contenu := strings.ToLower(cast.ToString(body["contenu"]))

	found := []string{}
	for _, word := range forbiddenWords {
		if strings.Contains(contenu, word) {
			found = append(found, word)
		}
	}
	sentiment, score := "neutre", 0.5
	switch {
	case len(found) > 0:
		sentiment, score = "negatif", 0.1
	case slices.ContainsFunc(positiveWords, func(word string) bool { return strings.Contains(contenu, word) }):
		sentiment, score = "positif", 0.9
	}

	jsonResponse(w, map[string]any{"analyse": map[string]any{
		"propre":         len(found) == 0,
		"sentiment":      sentiment,
		"score":          score,
		"mots_interdits": found,
	}})
}

// conversations lists the messages attached to one interest.
func (h *resourceHandler) conversations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	if _, ok := h.store.Get(h.def.Name, id); !ok {
		h.notFound(w, id)
		return
	}
	q := r.URL.Query()
	q.Set("interet_uuid", id)
	res := h.store.List("messages", q)
	jsonResponse(w, map[string]any{"messages": res.Items, "total": res.Total, "page": res.Page, "pages": res.Pages})
}

func (h *resourceHandler) sendMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	if _, ok := h.store.Get(h.def.Name, id); !ok {
		h.notFound(w, id)
		return
	}
	body, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	contenu := strings.TrimSpace(cast.ToString(body["contenu"]))
	if contenu == "" {
		ErrorResponse(w, "le champ contenu est obligatoire", http.StatusUnprocessableEntity)
		return
	}

	msg := Record{"interet_uuid": id, "contenu": contenu, "lu": false}
	if claims := ClaimsFrom(r.Context()); claims != nil {
		msg["expediteur_uuid"] = claims.Subject
	}
	created := h.store.Create("messages", msg)
	writeJSON(w, http.StatusCreated, map[string]any{"message": created})
}

func (h *resourceHandler) feedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	if _, ok := h.store.Get(h.def.Name, id); !ok {
		h.notFound(w, id)
		return
	}
	body, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	note := cast.ToInt(body["note"])
	if note < 1 || note > 5 {
		ErrorResponse(w, "le champ note doit être compris entre 1 et 5", http.StatusUnprocessableEntity)
		return
	}

	fb := h.store.Create("feedbacks", Record{
		"interet_uuid": id,
		"note":         note,
		"commentaire":  cast.ToString(body["commentaire"]),
	})
	h.store.Update(h.def.Name, id, Record{"feedback_note": note})
	writeJSON(w, http.StatusCreated, map[string]any{"feedback": fb})
}

// stock answers GET /produits/{uuid}/stock / Disponibilité du stock d'un produit
func (s *Server) stock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	rec, ok := s.store.Get("produits", id)
	if !ok || rec.deleted() {
		ErrorResponse(w, fmt.Sprintf("produit %s introuvable", id), http.StatusNotFound)
		return
	}
	stock := cast.ToInt(rec["stock"])
	jsonResponse(w, map[string]any{"data": map[string]any{
		"produit_uuid": id,
		"disponible":   stock > 0,
		"stock":        stock,
	}})
}

// listing serves the parent donation or exchange of an interest.
func (s *Server) listing(resource, key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "uuid")
		rec, ok := s.store.Get(resource, id)
		if !ok {
			ErrorResponse(w, fmt.Sprintf("%s %s introuvable", key, id), http.StatusNotFound)
			return
		}
		jsonResponse(w, map[string]any{key: rec})
	}
}

type tokenRequest struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
}

// issueToken mints a development JWT signed with the mock's secret.
func (s *Server) issueToken(w http.ResponseWriter, r *http.Request) {
	if s.opts.JWTSecret == "" {
		ErrorResponse(w, "émission de jetons désactivée", http.StatusNotFound)
		return
	}
	body, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	req := tokenRequest{Subject: cast.ToString(body["subject"]), Role: cast.ToString(body["role"])}
	if req.Subject == "" {
		req.Subject = "backoffice"
	}
	if req.Role == "" {
		req.Role = "admin"
	}

	token, exp, err := auth.IssueToken(req.Subject, req.Role, s.opts.JWTSecret, s.opts.TokenTTL)
	if err != nil {
		ErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_at":   exp.UTC().Format(time.RFC3339),
	})
}
