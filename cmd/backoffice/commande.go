package main

import (
	"context"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/batch"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/dto"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/service"
	"github.com/spf13/cobra"
)

func newCommandeCmd(c *cli) *cobra.Command {
	cmd := resourceCmd(c, "commandes", "Manage orders", crud[*service.CommandeService, domain.Commande, dto.CommandeCreate, dto.CommandeUpdate]{
		service:    func(s *service.Services) *service.CommandeService { return s.Commandes },
		list:       (*service.CommandeService).List,
		get:        (*service.CommandeService).Get,
		validate:   (*service.CommandeService).Validate,
		create:     (*service.CommandeService).Create,
		update:     (*service.CommandeService).Update,
		remove:     (*service.CommandeService).Delete,
		bulkUpdate: (*service.CommandeService).BulkUpdate,
		bulkDelete: (*service.CommandeService).BulkDelete,
		deleteEach: (*service.CommandeService).DeleteEach,
		export:     (*service.CommandeService).Export,
		stats: func(s *service.CommandeService, ctx context.Context) (any, error) {
			return s.Stats(ctx)
		},
	})

	var motif string
	statut := &cobra.Command{
		Use:   "statut <uuid> <statut>",
		Short: "Move an order to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			commande, err := c.services().Commandes.UpdateStatut(cmd.Context(), args[0], domain.CommandeStatut(args[1]), motif)
			if err != nil {
				return err
			}
			return c.render(cmd, commande)
		},
	}
	statut.Flags().StringVar(&motif, "motif", "", "reason recorded with the change")

	var cancelMotif string
	cancel := &cobra.Command{
		Use:   "cancel <uuid>",
		Short: "Cancel an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commande, err := c.services().Commandes.Cancel(cmd.Context(), args[0], cancelMotif)
			if err != nil {
				return err
			}
			return c.render(cmd, commande)
		},
	}
	cancel.Flags().StringVar(&cancelMotif, "motif", "", "cancellation reason")

	var periode string
	analytics := &cobra.Command{
		Use:   "analytics",
		Short: "Show sales over a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.services().Commandes.Analytics(cmd.Context(), periode)
			if err != nil {
				return err
			}
			return c.render(cmd, a)
		},
	}
	analytics.Flags().StringVar(&periode, "periode", "30j", "period such as 7j, 30j or 12m")

	var quantite int
	stock := &cobra.Command{
		Use:   "stock <produit-uuid>",
		Short: "Check product availability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.render(cmd, c.services().Commandes.CheckStock(cmd.Context(), args[0], quantite))
		},
	}
	stock.Flags().IntVar(&quantite, "quantite", 1, "requested quantity")

	cmd.AddCommand(
		listCmd(c, "by-statut <statut>", "List orders in a status", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, p domain.ListParams) (*domain.Page[domain.Commande], error) {
				return c.services().Commandes.GetByStatut(cmd.Context(), domain.CommandeStatut(args[0]), p)
			}),
		listCmd(c, "by-client <client-uuid>", "List the orders of a customer", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, p domain.ListParams) (*domain.Page[domain.Commande], error) {
				return c.services().Commandes.GetByClient(cmd.Context(), args[0], p)
			}),
		statut,
		cancel,
		statutEachCmd(c, func(s *service.Services, ctx context.Context, statut string, uuids []string) (*batch.Report, error) {
			return s.Commandes.ChangeStatutEach(ctx, domain.CommandeStatut(statut), uuids)
		}),
		analytics,
		stock,
	)
	return cmd
}
