package main

import (
	"context"
	"strings"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/dto"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/service"
	"github.com/spf13/cobra"
)

func newCommentaireCmd(c *cli) *cobra.Command {
	cmd := resourceCmd(c, "commentaires", "Manage and moderate comments", crud[*service.CommentaireService, domain.Commentaire, dto.CommentaireCreate, dto.CommentaireUpdate]{
		service:    func(s *service.Services) *service.CommentaireService { return s.Commentaires },
		list:       (*service.CommentaireService).List,
		get:        (*service.CommentaireService).Get,
		validate:   (*service.CommentaireService).Validate,
		create:     (*service.CommentaireService).Create,
		update:     (*service.CommentaireService).Update,
		remove:     (*service.CommentaireService).Delete,
		bulkUpdate: (*service.CommentaireService).BulkUpdate,
		bulkDelete: (*service.CommentaireService).BulkDelete,
		deleteEach: (*service.CommentaireService).DeleteEach,
		export:     (*service.CommentaireService).Export,
		stats: func(s *service.CommentaireService, ctx context.Context) (any, error) {
			return s.Stats(ctx)
		},
	})

	approve := &cobra.Command{
		Use:   "approve <uuid>",
		Short: "Publish a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			com, err := c.services().Commentaires.Approve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.render(cmd, com)
		},
	}

	var motif string
	reject := &cobra.Command{
		Use:   "reject <uuid>",
		Short: "Hide a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			com, err := c.services().Commentaires.Reject(cmd.Context(), args[0], motif)
			if err != nil {
				return err
			}
			return c.render(cmd, com)
		},
	}
	reject.Flags().StringVar(&motif, "motif", "", "rejection reason")

	moderateEach := &cobra.Command{
		Use:   "moderate-each <approuve|rejete> <uuid>...",
		Short: "Apply one moderation decision to each comment",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.services().Commentaires.ModerateEach(cmd.Context(), domain.CommentaireStatut(args[0]), args[1:])
			if err != nil {
				return err
			}
			return c.renderReport(cmd, report)
		},
	}

	analyze := &cobra.Command{
		Use:   "analyze <text>...",
		Short: "Run the backend content analysis on a text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.render(cmd, c.services().Commentaires.Analyze(cmd.Context(), strings.Join(args, " ")))
		},
	}

	cmd.AddCommand(
		listCmd(c, "reported", "List reported comments", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, p domain.ListParams) (*domain.Page[domain.Commentaire], error) {
				return c.services().Commentaires.GetReported(cmd.Context(), p)
			}),
		listCmd(c, "by-cible <type> <uuid>", "List the comments on a product, shop or article", cobra.ExactArgs(2),
			func(cmd *cobra.Command, args []string, p domain.ListParams) (*domain.Page[domain.Commentaire], error) {
				return c.services().Commentaires.GetByCible(cmd.Context(), domain.CibleType(args[0]), args[1], p)
			}),
		approve,
		reject,
		moderateEach,
		analyze,
	)
	return cmd
}
