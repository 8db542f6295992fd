package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/batch"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/dto"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/export"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/service"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/validation"
	"github.com/spf13/cobra"
)

// crud binds one domain service to the standard subcommands.
// S is the service, T the entity, C and U the create and update payloads.
type crud[S, T, C, U any] struct {
	service    func(*service.Services) S
	list       func(S, context.Context, domain.ListParams) (*domain.Page[T], error)
	get        func(S, context.Context, string) (*T, error)
	validate   func(S, context.Context, C) *validation.Result
	create     func(S, context.Context, C) (*T, error)
	update     func(S, context.Context, string, U) (*T, error)
	remove     func(S, context.Context, string) error
	bulkUpdate func(S, context.Context, dto.BulkUpdateRequest) ([]T, error)
	bulkDelete func(S, context.Context, []string) error
	deleteEach func(S, context.Context, []string) (*batch.Report, error)
	export     func(S, context.Context, domain.ListParams) (*export.File, error)
	stats      func(S, context.Context) (any, error)
}

// listFlags are the pagination and filter flags shared by list-like commands.
type listFlags struct {
	page      int
	limit     int
	search    string
	statut    string
	sortBy    string
	sortOrder string
	filters   map[string]string
}

func (f *listFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVar(&f.page, "page", 0, "page number")
	fl.IntVar(&f.limit, "limit", 0, "items per page")
	fl.StringVar(&f.search, "search", "", "full-text search")
	fl.StringVar(&f.statut, "statut", "", "status filter")
	fl.StringVar(&f.sortBy, "sort-by", "", "sort field")
	fl.StringVar(&f.sortOrder, "sort-order", "", "asc or desc")
	fl.StringToStringVar(&f.filters, "filter", nil, "extra filter key=value (repeatable)")
}

func (f *listFlags) params() domain.ListParams {
	return domain.ListParams{
		Page:      f.page,
		Limit:     f.limit,
		Search:    f.search,
		Statut:    f.statut,
		SortBy:    f.sortBy,
		SortOrder: f.sortOrder,
		Filters:   f.filters,
	}
}

// payloadFlags read a JSON body from --data or --file ("-" is stdin).
type payloadFlags struct {
	data string
	file string
}

func (p *payloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.data, "data", "", "JSON payload")
	cmd.Flags().StringVar(&p.file, "file", "", "JSON payload file, - for stdin")
	cmd.MarkFlagsMutuallyExclusive("data", "file")
	cmd.MarkFlagsOneRequired("data", "file")
}

func (p *payloadFlags) decode(cmd *cobra.Command, dst any) error {
	var raw []byte
	switch {
	case p.data != "":
		raw = []byte(p.data)
	case p.file == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		raw = b
	default:
		b, err := os.ReadFile(p.file)
		if err != nil {
			return fmt.Errorf("read payload: %w", err)
		}
		raw = b
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON payload: %w", err)
	}
	return nil
}

// resourceCmd builds "<use> list|get|validate|create|update|delete|..." / Construit les sous-commandes standard
func resourceCmd[S, T, C, U any](c *cli, use, short string, ops crud[S, T, C, U]) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short}
	svc := func() S { return ops.service(c.services()) }

	var lf listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List " + use,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := ops.list(svc(), cmd.Context(), lf.params())
			if err != nil {
				return err
			}
			return c.render(cmd, page)
		},
	}
	lf.register(list)

	get := &cobra.Command{
		Use:   "get <uuid>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := ops.get(svc(), cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.render(cmd, item)
		},
	}

	var vp payloadFlags
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Run client-side validation without writing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var data C
			if err := vp.decode(cmd, &data); err != nil {
				return err
			}
			return c.renderValidation(cmd, ops.validate(svc(), cmd.Context(), data))
		},
	}
	vp.register(validate)

	var cp payloadFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Validate then create an item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var data C
			if err := cp.decode(cmd, &data); err != nil {
				return err
			}
			item, err := ops.create(svc(), cmd.Context(), data)
			if err != nil {
				return err
			}
			return c.render(cmd, item)
		},
	}
	cp.register(create)

	var up payloadFlags
	update := &cobra.Command{
		Use:   "update <uuid>",
		Short: "Update an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data U
			if err := up.decode(cmd, &data); err != nil {
				return err
			}
			item, err := ops.update(svc(), cmd.Context(), args[0], data)
			if err != nil {
				return err
			}
			return c.render(cmd, item)
		},
	}
	up.register(update)

	remove := &cobra.Command{
		Use:   "delete <uuid>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ops.remove(svc(), cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.render(cmd, map[string]any{"success": true, "uuid": args[0]})
		},
	}

	deleteEach := &cobra.Command{
		Use:   "delete-each <uuid>...",
		Short: "Delete items one call at a time, reporting each outcome",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := ops.deleteEach(svc(), cmd.Context(), args)
			if err != nil {
				return err
			}
			return c.renderReport(cmd, report)
		},
	}

	var updates string
	bulkUpdate := &cobra.Command{
		Use:   "bulk-update <uuid>...",
		Short: "Apply the same field updates to several items in one call",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.BulkUpdateRequest{UUIDs: args}
			if err := json.Unmarshal([]byte(updates), &req.Updates); err != nil {
				return fmt.Errorf("invalid --updates: %w", err)
			}
			items, err := ops.bulkUpdate(svc(), cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.render(cmd, items)
		},
	}
	bulkUpdate.Flags().StringVar(&updates, "updates", "", `JSON object of fields, e.g. {"statut":"inactif"}`)
	_ = bulkUpdate.MarkFlagRequired("updates")

	bulkDelete := &cobra.Command{
		Use:   "bulk-delete <uuid>...",
		Short: "Delete several items in one call",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ops.bulkDelete(svc(), cmd.Context(), args); err != nil {
				return err
			}
			return c.render(cmd, map[string]any{"success": true, "count": len(args)})
		},
	}

	var ef listFlags
	var dir string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export as PDF, falling back to CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, err := ops.export(svc(), cmd.Context(), ef.params())
			if err != nil {
				return err
			}
			if dir == "" {
				dir = c.container.Config.Export.Directory
			}
			path, err := export.Save(dir, file)
			if err != nil {
				return err
			}
			return c.render(cmd, map[string]any{
				"path":         path,
				"content_type": file.ContentType,
				"fallback":     file.Fallback,
				"bytes":        len(file.Data),
			})
		},
	}
	ef.register(exportCmd)
	exportCmd.Flags().StringVar(&dir, "dir", "", "output directory (default export.directory)")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := ops.stats(svc(), cmd.Context())
			if err != nil {
				return err
			}
			return c.render(cmd, s)
		},
	}

	cmd.AddCommand(list, get, validate, create, update, remove, deleteEach, bulkUpdate, bulkDelete, exportCmd, stats)
	return cmd
}

// listCmd builds a list-style subcommand around a custom query.
func listCmd[T any](c *cli, use, short string, args cobra.PositionalArgs, fn func(*cobra.Command, []string, domain.ListParams) (*domain.Page[T], error)) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := fn(cmd, args, lf.params())
			if err != nil {
				return err
			}
			return c.render(cmd, page)
		},
	}
	lf.register(cmd)
	return cmd
}
