package main

import (
	"context"
	"strings"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/batch"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/dto"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/service"
	"github.com/spf13/cobra"
)

// lifecycle binds the interest-specific operations shared by donations and exchanges.
type lifecycle[S, T any] struct {
	service       func(*service.Services) S
	byListing     func(S, context.Context, string, domain.ListParams) (*domain.Page[T], error)
	byUser        func(S, context.Context, string, domain.ListParams) (*domain.Page[T], error)
	changeStatut  func(S, context.Context, string, domain.InteresseStatut, string) (*T, error)
	statutEach    func(S, context.Context, domain.InteresseStatut, []string) (*batch.Report, error)
	conversations func(S, context.Context, string, domain.ListParams) (*domain.Page[domain.Message], error)
	send          func(S, context.Context, string, string) (*domain.Message, error)
	feedback      func(S, context.Context, string, dto.FeedbackRequest) (*domain.Feedback, error)
	shortcuts     map[string]domain.InteresseStatut // "accept" -> accepte
}

// transitionCmd moves one interest to a fixed or given status.
func transitionCmd[S, T any](c *cli, use, short string, args cobra.PositionalArgs, ops lifecycle[S, T], fixed domain.InteresseStatut) *cobra.Command {
	var motif string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			statut := fixed
			if statut == "" {
				statut = domain.InteresseStatut(args[1])
			}
			item, err := ops.changeStatut(ops.service(c.services()), cmd.Context(), args[0], statut, motif)
			if err != nil {
				return err
			}
			return c.render(cmd, item)
		},
	}
	cmd.Flags().StringVar(&motif, "motif", "", "reason recorded with the change")
	return cmd
}

// addLifecycle attaches status, conversation and feedback subcommands to parent.
func addLifecycle[S, T any](c *cli, parent *cobra.Command, listingArg string, ops lifecycle[S, T]) {
	svc := func() S { return ops.service(c.services()) }

	parent.AddCommand(
		listCmd(c, "by-listing <"+listingArg+">", "List the interests in a listing", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, p domain.ListParams) (*domain.Page[T], error) {
				return ops.byListing(svc(), cmd.Context(), args[0], p)
			}),
		listCmd(c, "by-utilisateur <utilisateur-uuid>", "List the interests of a user", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, p domain.ListParams) (*domain.Page[T], error) {
				return ops.byUser(svc(), cmd.Context(), args[0], p)
			}),
		transitionCmd(c, "statut <uuid> <statut>", "Request a status transition", cobra.ExactArgs(2), ops, ""),
		statutEachCmd(c, func(s *service.Services, ctx context.Context, statut string, uuids []string) (*batch.Report, error) {
			return ops.statutEach(ops.service(s), ctx, domain.InteresseStatut(statut), uuids)
		}),
		listCmd(c, "messages <uuid>", "Show the conversation of an interest", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, p domain.ListParams) (*domain.Page[domain.Message], error) {
				return ops.conversations(svc(), cmd.Context(), args[0], p)
			}),
		&cobra.Command{
			Use:   "send <uuid> <message>...",
			Short: "Post a message on an interest",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				msg, err := ops.send(svc(), cmd.Context(), args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				return c.render(cmd, msg)
			},
		},
	)

	var fb dto.FeedbackRequest
	feedback := &cobra.Command{
		Use:   "feedback <uuid>",
		Short: "Rate a completed interest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := ops.feedback(svc(), cmd.Context(), args[0], fb)
			if err != nil {
				return err
			}
			return c.render(cmd, out)
		},
	}
	feedback.Flags().IntVar(&fb.Note, "note", 0, "rating from 1 to 5")
	feedback.Flags().StringVar(&fb.Commentaire, "commentaire", "", "optional comment")
	_ = feedback.MarkFlagRequired("note")
	parent.AddCommand(feedback)

	for name, statut := range ops.shortcuts {
		parent.AddCommand(transitionCmd(c, name+" <uuid>", "Move an interest to "+string(statut), cobra.ExactArgs(1), ops, statut))
	}
}

func newDonInteresseCmd(c *cli) *cobra.Command {
	cmd := resourceCmd(c, "don-interesses", "Manage interests in donations", crud[*service.DonInteresseService, domain.DonInteresse, dto.DonInteresseCreate, dto.DonInteresseUpdate]{
		service:    func(s *service.Services) *service.DonInteresseService { return s.DonInteresses },
		list:       (*service.DonInteresseService).List,
		get:        (*service.DonInteresseService).Get,
		validate:   (*service.DonInteresseService).Validate,
		create:     (*service.DonInteresseService).Create,
		update:     (*service.DonInteresseService).Update,
		remove:     (*service.DonInteresseService).Delete,
		bulkUpdate: (*service.DonInteresseService).BulkUpdate,
		bulkDelete: (*service.DonInteresseService).BulkDelete,
		deleteEach: (*service.DonInteresseService).DeleteEach,
		export:     (*service.DonInteresseService).Export,
		stats: func(s *service.DonInteresseService, ctx context.Context) (any, error) {
			return s.Stats(ctx)
		},
	})

	addLifecycle(c, cmd, "don-uuid", lifecycle[*service.DonInteresseService, domain.DonInteresse]{
		service:       func(s *service.Services) *service.DonInteresseService { return s.DonInteresses },
		byListing:     (*service.DonInteresseService).GetByDon,
		byUser:        (*service.DonInteresseService).GetByUtilisateur,
		changeStatut:  (*service.DonInteresseService).ChangeStatut,
		statutEach:    (*service.DonInteresseService).ChangeStatutEach,
		conversations: (*service.DonInteresseService).Conversations,
		send:          (*service.DonInteresseService).SendMessage,
		feedback:      (*service.DonInteresseService).AddFeedback,
		shortcuts: map[string]domain.InteresseStatut{
			"confirm":  domain.InteresseConfirme,
			"accept":   domain.InteresseAccepte,
			"complete": domain.InteresseComplete,
			"refuse":   domain.InteresseRefuse,
			"cancel":   domain.InteresseAnnule,
		},
	})
	return cmd
}

func newEchangeInteresseCmd(c *cli) *cobra.Command {
	cmd := resourceCmd(c, "echange-interesses", "Manage exchange proposals", crud[*service.EchangeInteresseService, domain.EchangeInteresse, dto.EchangeInteresseCreate, dto.EchangeInteresseUpdate]{
		service:    func(s *service.Services) *service.EchangeInteresseService { return s.EchangeInteresses },
		list:       (*service.EchangeInteresseService).List,
		get:        (*service.EchangeInteresseService).Get,
		validate:   (*service.EchangeInteresseService).Validate,
		create:     (*service.EchangeInteresseService).Create,
		update:     (*service.EchangeInteresseService).Update,
		remove:     (*service.EchangeInteresseService).Delete,
		bulkUpdate: (*service.EchangeInteresseService).BulkUpdate,
		bulkDelete: (*service.EchangeInteresseService).BulkDelete,
		deleteEach: (*service.EchangeInteresseService).DeleteEach,
		export:     (*service.EchangeInteresseService).Export,
		stats: func(s *service.EchangeInteresseService, ctx context.Context) (any, error) {
			return s.Stats(ctx)
		},
	})

	// No confirm step in the exchange lifecycle
	addLifecycle(c, cmd, "echange-uuid", lifecycle[*service.EchangeInteresseService, domain.EchangeInteresse]{
		service:       func(s *service.Services) *service.EchangeInteresseService { return s.EchangeInteresses },
		byListing:     (*service.EchangeInteresseService).GetByEchange,
		byUser:        (*service.EchangeInteresseService).GetByUtilisateur,
		changeStatut:  (*service.EchangeInteresseService).ChangeStatut,
		statutEach:    (*service.EchangeInteresseService).ChangeStatutEach,
		conversations: (*service.EchangeInteresseService).Conversations,
		send:          (*service.EchangeInteresseService).SendMessage,
		feedback:      (*service.EchangeInteresseService).AddFeedback,
		shortcuts: map[string]domain.InteresseStatut{
			"accept":   domain.InteresseAccepte,
			"complete": domain.InteresseComplete,
			"refuse":   domain.InteresseRefuse,
			"cancel":   domain.InteresseAnnule,
		},
	})
	return cmd
}
