package main

import (
	"context"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/batch"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/dto"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/service"
	"github.com/spf13/cobra"
)

// statutEachCmd runs one status change per uuid through the batch runner.
func statutEachCmd(c *cli, fn func(s *service.Services, ctx context.Context, statut string, uuids []string) (*batch.Report, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "statut-each <statut> <uuid>...",
		Short: "Change the status of each item, reporting each outcome",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := fn(c.services(), cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}
			return c.renderReport(cmd, report)
		},
	}
}

// availabilityCmd prints whether a code or slug is free.
func availabilityCmd(c *cli, use, short string, fn func(s *service.Services, ctx context.Context, value, exclude string) bool) *cobra.Command {
	var exclude string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			available := fn(c.services(), cmd.Context(), args[0], exclude)
			return c.render(cmd, map[string]any{"value": args[0], "available": available})
		},
	}
	cmd.Flags().StringVar(&exclude, "exclude", "", "uuid of the item being edited")
	return cmd
}

func newCiviliteCmd(c *cli) *cobra.Command {
	cmd := resourceCmd(c, "civilites", "Manage civilités", crud[*service.CiviliteService, domain.Civilite, dto.CiviliteCreate, dto.CiviliteUpdate]{
		service:    func(s *service.Services) *service.CiviliteService { return s.Civilites },
		list:       (*service.CiviliteService).List,
		get:        (*service.CiviliteService).Get,
		validate:   (*service.CiviliteService).Validate,
		create:     (*service.CiviliteService).Create,
		update:     (*service.CiviliteService).Update,
		remove:     (*service.CiviliteService).Delete,
		bulkUpdate: (*service.CiviliteService).BulkUpdate,
		bulkDelete: (*service.CiviliteService).BulkDelete,
		deleteEach: (*service.CiviliteService).DeleteEach,
		export:     (*service.CiviliteService).Export,
		stats: func(s *service.CiviliteService, ctx context.Context) (any, error) {
			return s.Stats(ctx)
		},
	})

	cmd.AddCommand(
		listCmd(c, "active", "List active civilités", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, p domain.ListParams) (*domain.Page[domain.Civilite], error) {
				return c.services().Civilites.GetActive(cmd.Context(), p)
			}),
		listCmd(c, "by-usage <usage>", "List civilités for a usage", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, p domain.ListParams) (*domain.Page[domain.Civilite], error) {
				return c.services().Civilites.GetByUsage(cmd.Context(), args[0], p)
			}),
		availabilityCmd(c, "check-code <code>", "Check that a code is free",
			func(s *service.Services, ctx context.Context, code, exclude string) bool {
				return s.Civilites.IsCodeAvailable(ctx, code, exclude)
			}),
		statutEachCmd(c, func(s *service.Services, ctx context.Context, statut string, uuids []string) (*batch.Report, error) {
			return s.Civilites.ChangeStatutEach(ctx, domain.Statut(statut), uuids)
		}),
	)
	return cmd
}

func newPaysCmd(c *cli) *cobra.Command {
	cmd := resourceCmd(c, "pays", "Manage countries", crud[*service.PaysService, domain.Pays, dto.PaysCreate, dto.PaysUpdate]{
		service:    func(s *service.Services) *service.PaysService { return s.Pays },
		list:       (*service.PaysService).List,
		get:        (*service.PaysService).Get,
		validate:   (*service.PaysService).Validate,
		create:     (*service.PaysService).Create,
		update:     (*service.PaysService).Update,
		remove:     (*service.PaysService).Delete,
		bulkUpdate: (*service.PaysService).BulkUpdate,
		bulkDelete: (*service.PaysService).BulkDelete,
		deleteEach: (*service.PaysService).DeleteEach,
		export:     (*service.PaysService).Export,
		stats: func(s *service.PaysService, ctx context.Context) (any, error) {
			return s.Stats(ctx)
		},
	})

	cmd.AddCommand(
		listCmd(c, "active", "List active countries", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, p domain.ListParams) (*domain.Page[domain.Pays], error) {
				return c.services().Pays.GetActive(cmd.Context(), p)
			}),
		availabilityCmd(c, "check-code <code>", "Check that an ISO code is free",
			func(s *service.Services, ctx context.Context, code, exclude string) bool {
				return s.Pays.IsCodeAvailable(ctx, code, exclude)
			}),
		statutEachCmd(c, func(s *service.Services, ctx context.Context, statut string, uuids []string) (*batch.Report, error) {
			return s.Pays.ChangeStatutEach(ctx, domain.Statut(statut), uuids)
		}),
	)
	return cmd
}

func newVilleCmd(c *cli) *cobra.Command {
	cmd := resourceCmd(c, "villes", "Manage cities", crud[*service.VilleService, domain.Ville, dto.VilleCreate, dto.VilleUpdate]{
		service:    func(s *service.Services) *service.VilleService { return s.Villes },
		list:       (*service.VilleService).List,
		get:        (*service.VilleService).Get,
		validate:   (*service.VilleService).Validate,
		create:     (*service.VilleService).Create,
		update:     (*service.VilleService).Update,
		remove:     (*service.VilleService).Delete,
		bulkUpdate: (*service.VilleService).BulkUpdate,
		bulkDelete: (*service.VilleService).BulkDelete,
		deleteEach: (*service.VilleService).DeleteEach,
		export:     (*service.VilleService).Export,
		stats: func(s *service.VilleService, ctx context.Context) (any, error) {
			return s.Stats(ctx)
		},
	})

	cmd.AddCommand(
		listCmd(c, "active", "List active cities", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, p domain.ListParams) (*domain.Page[domain.Ville], error) {
				return c.services().Villes.GetActive(cmd.Context(), p)
			}),
		listCmd(c, "by-pays <pays-uuid>", "List the cities of a country", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, p domain.ListParams) (*domain.Page[domain.Ville], error) {
				return c.services().Villes.GetByPays(cmd.Context(), args[0], p)
			}),
		statutEachCmd(c, func(s *service.Services, ctx context.Context, statut string, uuids []string) (*batch.Report, error) {
			return s.Villes.ChangeStatutEach(ctx, domain.Statut(statut), uuids)
		}),
	)
	return cmd
}

func newCategorieCmd(c *cli) *cobra.Command {
	cmd := resourceCmd(c, "categories", "Manage categories", crud[*service.CategorieService, domain.Categorie, dto.CategorieCreate, dto.CategorieUpdate]{
		service:    func(s *service.Services) *service.CategorieService { return s.Categories },
		list:       (*service.CategorieService).List,
		get:        (*service.CategorieService).Get,
		validate:   (*service.CategorieService).Validate,
		create:     (*service.CategorieService).Create,
		update:     (*service.CategorieService).Update,
		remove:     (*service.CategorieService).Delete,
		bulkUpdate: (*service.CategorieService).BulkUpdate,
		bulkDelete: (*service.CategorieService).BulkDelete,
		deleteEach: (*service.CategorieService).DeleteEach,
		export:     (*service.CategorieService).Export,
		stats: func(s *service.CategorieService, ctx context.Context) (any, error) {
			return s.Stats(ctx)
		},
	})

	var popularLimit int
	popular := &cobra.Command{
		Use:   "popular",
		Short: "List categories with the most products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := c.services().Categories.GetPopular(cmd.Context(), popularLimit)
			if err != nil {
				return err
			}
			return c.render(cmd, page)
		},
	}
	popular.Flags().IntVar(&popularLimit, "limit", 10, "number of categories")

	cmd.AddCommand(
		listCmd(c, "active", "List active categories", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, p domain.ListParams) (*domain.Page[domain.Categorie], error) {
				return c.services().Categories.GetActive(cmd.Context(), p)
			}),
		listCmd(c, "children <parent-uuid>", "List sub-categories", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, p domain.ListParams) (*domain.Page[domain.Categorie], error) {
				return c.services().Categories.GetChildren(cmd.Context(), args[0], p)
			}),
		popular,
		availabilityCmd(c, "check-slug <slug>", "Check that a slug is free",
			func(s *service.Services, ctx context.Context, slug, exclude string) bool {
				return s.Categories.IsSlugAvailable(ctx, slug, exclude)
			}),
		statutEachCmd(c, func(s *service.Services, ctx context.Context, statut string, uuids []string) (*batch.Report, error) {
			return s.Categories.ChangeStatutEach(ctx, domain.Statut(statut), uuids)
		}),
	)
	return cmd
}
