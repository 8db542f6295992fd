package main

import (
	"errors"
	"fmt"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/repository"
	"github.com/spf13/cobra"
)

var errJournalDisabled = errors.New("bulk journal is disabled (bulk.journal_enabled)")

func (c *cli) journal() (*repository.Journal, error) {
	if c.container.Journal == nil {
		return nil, errJournalDisabled
	}
	return c.container.Journal, nil
}

// newRunsCmd inspects and retries journaled bulk runs / Consulte et relance les exécutions journalisées
func newRunsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "runs", Short: "Inspect journaled bulk runs"}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			j, err := c.journal()
			if err != nil {
				return err
			}
			runs, err := j.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return c.render(cmd, runs)
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "number of runs")

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := c.journal()
			if err != nil {
				return err
			}
			run, err := j.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.render(cmd, run)
		},
	}

	retry := &cobra.Command{
		Use:   "retry <run-id>",
		Short: "Re-run only the failed items of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := c.journal()
			if err != nil {
				return err
			}
			run, err := j.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			failed, err := j.FailedUUIDs(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if len(failed) == 0 {
				return c.render(cmd, map[string]any{"run_id": run.ID, "message": "aucun élément en échec"})
			}

			report, err := c.services().Replay(cmd.Context(), run.Operation, failed)
			if err != nil {
				return fmt.Errorf("retry %s: %w", run.ID, err)
			}
			return c.renderReport(cmd, report)
		},
	}

	cmd.AddCommand(list, show, retry)
	return cmd
}
