package mockapi

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// resourceDefs lists the collections in envelope rotation order.
func resourceDefs() []resourceDef {
	return []resourceDef{
		{Name: "civilites", ItemsKey: "civilites", EntityKey: "civilite", Statut: "actif", Unique: "code", stats: referentielStats},
		{Name: "pays", ItemsKey: "pays", EntityKey: "pays", Statut: "actif", Unique: "code", stats: referentielStats},
		{Name: "villes", ItemsKey: "villes", EntityKey: "ville", Statut: "actif", stats: referentielStats},
		{Name: "categories", ItemsKey: "categories", EntityKey: "categorie", Statut: "actif", Unique: "slug", stats: referentielStats},
		{Name: "commandes", ItemsKey: "commandes", EntityKey: "commande", Statut: "en_attente",
			prepare: prepareCommande, stats: commandeStats, extra: commandeRoutes},
		{Name: "commentaires", ItemsKey: "commentaires", EntityKey: "commentaire", Statut: "en_attente",
			stats: commentaireStats, extra: commentaireRoutes},
		{Name: "don-interesses", ItemsKey: "don_interesses", EntityKey: "don_interesse", Statut: "en_attente",
			stats: interesseStats, extra: interesseRoutes},
		{Name: "echange-interesses", ItemsKey: "echange_interesses", EntityKey: "echange_interesse", Statut: "en_attente",
			stats: interesseStats, extra: interesseRoutes},
	}
}

// toDecimal reads a JSON number or numeric string / Lit un nombre JSON ou une chaîne numérique
func toDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.NewFromFloat(cast.ToFloat64(n))
	}
}

// percent rounds part/total*100 to one decimal; 0 when total is 0.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

func referentielStats(recs []Record, deleted int) any {
	actifs := 0
	for _, rec := range recs {
		if cast.ToString(rec["statut"]) == "actif" {
			actifs++
		}
	}
	return map[string]any{
		"total":     len(recs),
		"actifs":    actifs,
		"inactifs":  len(recs) - actifs,
		"supprimes": deleted,
	}
}

// commandeLines decodes the items array of an order record.
func commandeLines(rec Record) []map[string]any {
	raw := cast.ToSlice(rec["items"])
	lines := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		lines = append(lines, cast.ToStringMap(item))
	}
	return lines
}

// prepareCommande computes montant_total from the lines when absent and assigns a reference.
func prepareCommande(s *Store, rec Record) {
	if toDecimal(rec["montant_total"]).IsZero() {
		total := decimal.Zero
		for _, line := range commandeLines(rec) {
			total = total.Add(toDecimal(line["prix_unitaire"]).Mul(decimal.NewFromInt(cast.ToInt64(line["quantite"]))))
		}
		rec["montant_total"] = total.StringFixed(2)
	}
	if cast.ToString(rec["reference"]) == "" {
		rec["reference"] = fmt.Sprintf("CMD-%s-%04d", s.now().Format("20060102"), s.Len("commandes")+1)
	}
}

func commandeStats(recs []Record, _ int) any {
	par := map[string]int{}
	ca := decimal.Zero
	payees, annulees, duJour := 0, 0, 0
	today := time.Now().UTC().Format(time.DateOnly)

	for _, rec := range recs {
		statut := cast.ToString(rec["statut"])
		par[statut]++
		switch statut {
		case "annulee", "remboursee":
			annulees++
		default:
			ca = ca.Add(toDecimal(rec["montant_total"]))
			payees++
		}
		if created := cast.ToString(rec["created_at"]); len(created) >= 10 && created[:10] == today {
			duJour++
		}
	}

	panier := decimal.Zero
	if payees > 0 {
		panier = ca.Div(decimal.NewFromInt(int64(payees))).Round(2)
	}
	return map[string]any{
		"total":             len(recs),
		"par_statut":        par,
		"chiffre_affaires":  ca.StringFixed(2),
		"panier_moyen":      panier.StringFixed(2),
		"commandes_du_jour": duJour,
		"taux_annulation":   percent(annulees, len(recs)),
	}
}

func commentaireStats(recs []Record, _ int) any {
	counts := map[string]int{}
	parNote := map[string]int{}
	signales, notes, somme := 0, 0, 0
	for _, rec := range recs {
		counts[cast.ToString(rec["statut"])]++
		if cast.ToBool(rec["est_signale"]) {
			signales++
		}
		if note := cast.ToInt(rec["note"]); note >= 1 && note <= 5 {
			parNote[strconv.Itoa(note)]++
			notes++
			somme += note
		}
	}
	moyenne := 0.0
	if notes > 0 {
		moyenne = math.Round(float64(somme)/float64(notes)*100) / 100
	}
	return map[string]any{
		"total":        len(recs),
		"en_attente":   counts["en_attente"],
		"approuves":    counts["approuve"],
		"rejetes":      counts["rejete"],
		"signales":     signales,
		"note_moyenne": moyenne,
		"par_note":     parNote,
	}
}

func interesseStats(recs []Record, _ int) any {
	par := map[string]int{}
	for _, rec := range recs {
		par[cast.ToString(rec["statut"])]++
	}
	return map[string]any{
		"total":            len(recs),
		"par_statut":       par,
		"taux_acceptation": percent(par["accepte"]+par["complete"], len(recs)),
	}
}

func commandeRoutes(r chi.Router, h *resourceHandler) {
	r.Get("/analytics", h.analytics)
}

func commentaireRoutes(r chi.Router, h *resourceHandler) {
	r.Post("/analyse", analyse)
	r.Put("/{uuid}/moderation", h.changeStatut)
}

func interesseRoutes(r chi.Router, h *resourceHandler) {
	r.Get("/{uuid}/conversations", h.conversations)
	r.Post("/{uuid}/conversations", h.sendMessage)
	r.Post("/{uuid}/feedback", h.feedback)
}
