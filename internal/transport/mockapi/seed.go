package mockapi

import (
	"strconv"

	"github.com/google/uuid"
)

// seedNamespace makes seeded uuids stable across restarts.
var seedNamespace = uuid.MustParse("6f1c2f64-5d0e-4a3b-9a57-0c1b8f4e2d10")

// SeedUUID returns the deterministic uuid of the n-th seeded record of resource.
func SeedUUID(resource string, n int) string {
	return uuid.NewSHA1(seedNamespace, []byte(resource+"/"+strconv.Itoa(n))).String()
}

func line(produit, libelle string, quantite int, prix string) map[string]any {
	return map[string]any{"produit_uuid": produit, "libelle": libelle, "quantite": quantite, "prix_unitaire": prix}
}

// Seed preloads sample records / Précharge des données d'exemple
func Seed(s *Store) {
	add := func(resource string, recs ...Record) {
		for i, rec := range recs {
			rec["uuid"] = SeedUUID(resource, i+1)
			if _, ok := rec["statut"]; !ok {
				rec["statut"] = "actif"
			}
			s.Create(resource, rec)
		}
	}

	add("civilites",
		Record{"libelle": "Monsieur", "code": "M", "ordre": 1},
		Record{"libelle": "Madame", "code": "MME", "ordre": 2},
		Record{"libelle": "Mademoiselle", "code": "MLLE", "ordre": 3, "statut": "inactif"},
	)
	add("pays",
		Record{"nom": "France", "code": "FR", "indicatif": "+33"},
		Record{"nom": "Côte d'Ivoire", "code": "CI", "indicatif": "+225"},
		Record{"nom": "Sénégal", "code": "SN", "indicatif": "+221"},
	)
	add("villes",
		Record{"nom": "Paris", "code_postal": "75001", "region": "Île-de-France", "pays_uuid": SeedUUID("pays", 1)},
		Record{"nom": "Abidjan", "region": "Lagunes", "pays_uuid": SeedUUID("pays", 2)},
		Record{"nom": "Dakar", "region": "Dakar", "pays_uuid": SeedUUID("pays", 3)},
	)
	add("categories",
		Record{"libelle": "Électronique", "slug": "electronique", "ordre": 1, "produits_count": 2},
		Record{"libelle": "Téléphones", "slug": "telephones", "ordre": 2, "parent_uuid": SeedUUID("categories", 1), "produits_count": 1},
		Record{"libelle": "Maison", "slug": "maison", "ordre": 3},
	)
	add("produits",
		Record{"libelle": "Smartphone reconditionné", "stock": 12},
		Record{"libelle": "Casque audio", "stock": 0},
		Record{"libelle": "Lampe de bureau", "stock": 5},
	)
	add("dons",
		Record{"titre": "Vêtements enfant", "statut": "disponible", "est_publie": true, "quantite_restante": 4},
		Record{"titre": "Livres scolaires", "statut": "termine", "est_publie": true},
	)
	add("echanges",
		Record{"titre": "Vélo contre trottinette", "statut": "actif", "est_publie": true},
		Record{"titre": "Console rétro", "statut": "actif", "est_publie": false},
	)

	produit := SeedUUID("produits", 1)
	add("commandes",
		Record{
			"reference":     "CMD-SEED-0001",
			"client_uuid":   SeedUUID("clients", 1),
			"statut":        "livree",
			"items":         []any{line(produit, "Smartphone reconditionné", 1, "189.90")},
			"montant_total": "189.90",
		},
		Record{
			"reference":     "CMD-SEED-0002",
			"client_uuid":   SeedUUID("clients", 2),
			"statut":        "en_attente",
			"items":         []any{line(SeedUUID("produits", 3), "Lampe de bureau", 2, "24.50")},
			"montant_total": "49.00",
		},
	)
	add("commentaires",
		Record{"contenu": "Très bon vendeur, merci !", "note": 5, "cible_type": "produit", "cible_uuid": produit, "statut": "approuve"},
		Record{"contenu": "Colis arrivé abîmé", "note": 2, "cible_type": "produit", "cible_uuid": produit, "statut": "en_attente", "est_signale": true},
	)
	add("don-interesses",
		Record{"don_uuid": SeedUUID("dons", 1), "utilisateur_uuid": SeedUUID("clients", 1), "quantite_demandee": 1, "statut": "en_attente"},
	)
	add("echange-interesses",
		Record{"echange_uuid": SeedUUID("echanges", 1), "utilisateur_uuid": SeedUUID("clients", 2), "objet_propose": "Trottinette", "valeur_estimee": "80.00", "statut": "en_attente"},
	)
}
