package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/batch"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/dto"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/export"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/normalize"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/validation"
)

// modeLivraisonDomicile requires a delivery address / Exige une adresse de livraison
const modeLivraisonDomicile = "livraison"

// CommandeService manages orders / Gère les commandes
type CommandeService struct {
	res         *resource[domain.Commande]
	createRules *validation.Validator[dto.CommandeCreate]
	updateRules *validation.Validator[dto.CommandeUpdate]
}

// NewCommandeService creates order service instance / Crée une instance du service commandes
func NewCommandeService(opts Options) *CommandeService {
	s := &CommandeService{res: newResource[domain.Commande]("commandes", "commandes", "commande", opts)}

	s.createRules = newValidator("commande", opts,
		[]validation.Rule[dto.CommandeCreate]{
			validation.Required("client_uuid", func(d dto.CommandeCreate) string { return d.ClientUUID }),
			validation.UUID("client_uuid", func(d dto.CommandeCreate) string { return d.ClientUUID }),
			validation.UUID("boutique_uuid", func(d dto.CommandeCreate) string { return d.BoutiqueUUID }),
			validation.Check(func(d dto.CommandeCreate) bool { return len(d.Items) > 0 },
				validation.SeverityError, "la commande doit contenir au moins un article"),
			validation.Check(func(d dto.CommandeCreate) bool {
				for _, item := range d.Items {
					if strings.TrimSpace(item.ProduitUUID) == "" {
						return false
					}
				}
				return true
			}, validation.SeverityError, "chaque article doit référencer un produit"),
			validation.Check(func(d dto.CommandeCreate) bool {
				for _, item := range d.Items {
					if item.Quantite < 1 {
						return false
					}
				}
				return true
			}, validation.SeverityError, "la quantité de chaque article doit être au moins 1"),
			validation.Check(func(d dto.CommandeCreate) bool {
				for _, item := range d.Items {
					if item.PrixUnitaire.IsNegative() {
						return false
					}
				}
				return true
			}, validation.SeverityError, "le prix unitaire ne peut pas être négatif"),
			validation.Check(func(d dto.CommandeCreate) bool {
				return d.ModeLivraison != modeLivraisonDomicile || strings.TrimSpace(d.AdresseLivraison) != ""
			}, validation.SeverityError, "l'adresse de livraison est obligatoire pour une livraison à domicile"),
			validation.Suggest(func(d dto.CommandeCreate) bool { return d.ModeLivraison == "" },
				"précisez le mode de livraison"),
		},
		validation.FailOpen("disponibilite_stock", s.stockOutcome, permissive("disponibilite_stock")),
	)

	s.updateRules = newValidator("commande", opts, []validation.Rule[dto.CommandeUpdate]{
		validation.OneOf("statut", func(d dto.CommandeUpdate) string { return string(ptr(d.Statut)) },
			func(v string) bool { return domain.CommandeStatut(v).IsValid() }),
		presentNonBlank("adresse_livraison", func(d dto.CommandeUpdate) *string { return d.AdresseLivraison }),
	})

	return s
}

// stockOutcome warns about every line whose product lacks stock.
func (s *CommandeService) stockOutcome(ctx context.Context, d dto.CommandeCreate) (validation.Outcome, error) {
	out := validation.Outcome{Extras: map[string]any{"disponibilite_stock": true}}
	for _, item := range d.Items {
		if item.ProduitUUID == "" {
			continue
		}
		stock, err := s.stock(ctx, item.ProduitUUID)
		if err != nil {
			return validation.Outcome{}, err
		}
		if !stock.Disponible || stock.Stock < item.Quantite {
			msg := fmt.Sprintf("stock insuffisant pour le produit %s (%d demandé(s), %d disponible(s))",
				item.ProduitUUID, item.Quantite, stock.Stock)
			out.Extras["disponibilite_stock"] = false
			out.Findings = append(out.Findings, validation.Finding{Severity: validation.SeverityWarning, Message: msg})
		}
	}
	return out, nil
}

func (s *CommandeService) stock(ctx context.Context, produitUUID string) (*domain.StockAvailability, error) {
	if err := checkUUID(produitUUID); err != nil {
		return nil, err
	}
	resp, err := s.res.opts.HTTP.Get(ctx, "/produits/"+url.PathEscape(produitUUID)+"/stock", nil)
	if err != nil {
		return nil, err
	}
	stock := domain.StockAvailability{ProduitUUID: produitUUID}
	if err := normalize.Into(resp.Body, &stock); err != nil {
		return nil, err
	}
	return &stock, nil
}

// CheckStock reports whether quantite units of a product are available.
// A failed lookup answers available.
// CheckStock indique si la quantité est disponible ; un échec de lecture répond disponible
func (s *CommandeService) CheckStock(ctx context.Context, produitUUID string, quantite int) *domain.StockAvailability {
	stock, err := s.stock(ctx, produitUUID)
	if err != nil {
		slog.Warn("service: stock lookup unavailable, assuming available", "produit_uuid", produitUUID, "err", err)
		return &domain.StockAvailability{ProduitUUID: produitUUID, Disponible: true, Stock: quantite}
	}
	stock.Disponible = stock.Disponible && stock.Stock >= quantite
	return stock
}

// List returns a page of orders / Retourne une page de commandes
func (s *CommandeService) List(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Commande], error) {
	return s.res.list(ctx, params)
}

// GetByStatut lists orders in one statut / Liste les commandes d'un statut
func (s *CommandeService) GetByStatut(ctx context.Context, statut domain.CommandeStatut, params domain.ListParams) (*domain.Page[domain.Commande], error) {
	if !statut.IsValid() {
		return nil, fmt.Errorf("statut %q invalide", statut)
	}
	params.Statut = string(statut)
	return s.res.list(ctx, params)
}

// GetByClient lists the orders of a customer / Liste les commandes d'un client
func (s *CommandeService) GetByClient(ctx context.Context, clientUUID string, params domain.ListParams) (*domain.Page[domain.Commande], error) {
	if err := checkUUID(clientUUID); err != nil {
		return nil, err
	}
	return s.res.list(ctx, params.With("client_uuid", clientUUID))
}

// Get retrieves an order by uuid / Récupère une commande par uuid
func (s *CommandeService) Get(ctx context.Context, uuid string) (*domain.Commande, error) {
	return s.res.get(ctx, uuid)
}

// Validate runs the create rules, stock included, without sending anything.
func (s *CommandeService) Validate(ctx context.Context, data dto.CommandeCreate) *validation.Result {
	return s.createRules.Validate(ctx, data)
}

// Create validates then posts an order / Valide puis crée une commande
func (s *CommandeService) Create(ctx context.Context, data dto.CommandeCreate) (*domain.Commande, error) {
	if err := validate(ctx, s.createRules, data); err != nil {
		return nil, err
	}
	return s.res.create(ctx, data)
}

// Update validates the fields present then sends a partial update.
func (s *CommandeService) Update(ctx context.Context, uuid string, data dto.CommandeUpdate) (*domain.Commande, error) {
	if err := validate(ctx, s.updateRules, data); err != nil {
		return nil, err
	}
	return s.res.update(ctx, uuid, data)
}

// UpdateStatut requests a statut transition; legality is left to the backend.
// UpdateStatut demande une transition ; sa légalité est vérifiée par le backend
func (s *CommandeService) UpdateStatut(ctx context.Context, uuid string, statut domain.CommandeStatut, motif string) (*domain.Commande, error) {
	if !statut.IsValid() {
		return nil, fmt.Errorf("statut %q invalide", statut)
	}
	return s.res.changeStatut(ctx, uuid, dto.StatutChange{Statut: string(statut), Motif: motif})
}

// Cancel moves an order to annulee / Annule une commande
func (s *CommandeService) Cancel(ctx context.Context, uuid, motif string) (*domain.Commande, error) {
	return s.UpdateStatut(ctx, uuid, domain.CommandeAnnulee, motif)
}

// ChangeStatutEach requests the same transition on each order through the batch runner.
func (s *CommandeService) ChangeStatutEach(ctx context.Context, statut domain.CommandeStatut, uuids []string) (*batch.Report, error) {
	if !statut.IsValid() {
		return nil, fmt.Errorf("statut %q invalide", statut)
	}
	return s.res.statutEach(ctx, string(statut), uuids)
}

// Replay re-runs a journaled operation on uuids / Rejoue une opération journalisée
func (s *CommandeService) Replay(ctx context.Context, op domain.Operation, uuids []string) (*batch.Report, error) {
	if op.Action() == domain.ActionStatut {
		return s.ChangeStatutEach(ctx, domain.CommandeStatut(op.Argument()), uuids)
	}
	return s.res.replay(ctx, op, uuids)
}

// Delete deletes an order / Supprime une commande
func (s *CommandeService) Delete(ctx context.Context, uuid string) error {
	return s.res.remove(ctx, uuid)
}

// BulkUpdate applies the same changes to several orders / Mise à jour en masse
func (s *CommandeService) BulkUpdate(ctx context.Context, req dto.BulkUpdateRequest) ([]domain.Commande, error) {
	return s.res.bulkUpdate(ctx, req)
}

// BulkDelete deletes several orders in one call / Suppression en masse
func (s *CommandeService) BulkDelete(ctx context.Context, uuids []string) error {
	return s.res.bulkDelete(ctx, uuids)
}

// DeleteEach deletes orders one by one / Supprime les commandes une par une
func (s *CommandeService) DeleteEach(ctx context.Context, uuids []string) (*batch.Report, error) {
	return s.res.deleteEach(ctx, uuids)
}

// Export downloads the PDF export or builds a CSV / Exporte en PDF ou en CSV de secours
func (s *CommandeService) Export(ctx context.Context, params domain.ListParams) (*export.File, error) {
	return s.res.export(ctx, params, commandeColumns)
}

var commandeColumns = []export.Column[domain.Commande]{
	{Header: "UUID", Value: func(c domain.Commande) string { return c.UUID }},
	{Header: "Référence", Value: func(c domain.Commande) string { return c.Reference }},
	{Header: "Client", Value: func(c domain.Commande) string { return c.ClientUUID }},
	{Header: "Statut", Value: func(c domain.Commande) string { return string(c.Statut) }},
	{Header: "Articles", Value: func(c domain.Commande) string { return strconv.Itoa(len(c.Items)) }},
	{Header: "Montant total", Value: func(c domain.Commande) string { return c.MontantTotal.StringFixed(2) }},
	{Header: "Livraison", Value: func(c domain.Commande) string { return c.ModeLivraison }},
	{Header: "Créée le", Value: func(c domain.Commande) string { return formatTimestamp(c.CreatedAt) }},
}

// Stats returns order counters, every statut present / Retourne les statistiques des commandes
func (s *CommandeService) Stats(ctx context.Context) (*domain.CommandeStats, error) {
	stats := domain.DefaultCommandeStats()
	if err := s.res.statsAt(ctx, s.res.path("stats"), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Analytics returns the order time series for periode ("7j", "30j", "12m") / Retourne la série temporelle
func (s *CommandeService) Analytics(ctx context.Context, periode string) (*domain.CommandeAnalytics, error) {
	if periode == "" {
		periode = "30j"
	}
	analytics := domain.DefaultCommandeAnalytics(periode)
	if err := s.res.statsAt(ctx, s.res.path("analytics"), url.Values{"periode": {periode}}, &analytics); err != nil {
		return nil, err
	}
	return &analytics, nil
}
