package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/batch"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/dto"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/export"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/normalize"
)

// ErrNotReplayable is returned for journaled operations a service cannot re-run.
var ErrNotReplayable = errors.New("opération non rejouable")

// resource is the REST plumbing shared by every domain service: one URL
// root, one list key and one entity key.
type resource[T any] struct {
	name      string // URL segment and metrics label / Segment d'URL et label de métrique
	itemsKey  string
	entityKey string
	opts      Options
}

func newResource[T any](name, itemsKey, entityKey string, opts Options) *resource[T] {
	return &resource[T]{
		name:      name,
		itemsKey:  itemsKey,
		entityKey: entityKey,
		opts:      opts.withDefaults(),
	}
}

// path joins escaped segments under the resource root / Construit un chemin sous la racine
func (r *resource[T]) path(segments ...string) string {
	var b strings.Builder
	b.WriteString("/")
	b.WriteString(r.name)
	for _, s := range segments {
		b.WriteString("/")
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// fail logs a failed call; the error itself is returned unchanged by callers.
func (r *resource[T]) fail(op string, err error, attrs ...any) {
	if errors.Is(err, context.Canceled) {
		return
	}
	args := append([]any{"resource", r.name, "op", op, "err", err}, attrs...)
	slog.Error("service: request failed", args...)
}

func (r *resource[T]) recordShape(shape normalize.Shape) {
	if r.opts.Metrics != nil {
		r.opts.Metrics.RecordNormalizerShape(r.name, string(shape))
	}
}

// listAt fetches and normalizes a list from path / Récupère et normalise une liste
func (r *resource[T]) listAt(ctx context.Context, path string, params domain.ListParams) (*domain.Page[T], error) {
	resp, err := r.opts.HTTP.Get(ctx, path, params.Values())
	if err != nil {
		r.fail("list", err, "path", path)
		return nil, err
	}

	page, shape := normalize.List[T](resp.Body, r.itemsKey)
	r.recordShape(shape)
	slog.Debug("service: list normalized",
		"resource", r.name,
		"shape", shape,
		"count", page.Count,
		"total", page.Total)
	return page, nil
}

func (r *resource[T]) list(ctx context.Context, params domain.ListParams) (*domain.Page[T], error) {
	return r.listAt(ctx, r.path(), params)
}

// entity unwraps a single entity from body / Extrait une entité du corps
func (r *resource[T]) entity(op string, body []byte) (*T, error) {
	e, err := normalize.Entity[T](body, r.entityKey)
	if err != nil {
		slog.Warn("service: unexpected entity response", "resource", r.name, "op", op, "err", err)
		return nil, fmt.Errorf("%s %s: %w", r.entityKey, op, err)
	}
	return e, nil
}

func (r *resource[T]) get(ctx context.Context, uuid string) (*T, error) {
	if err := checkUUID(uuid); err != nil {
		return nil, err
	}
	resp, err := r.opts.HTTP.Get(ctx, r.path(uuid), nil)
	if err != nil {
		r.fail("get", err, "uuid", uuid)
		return nil, err
	}
	return r.entity("get", resp.Body)
}

func (r *resource[T]) create(ctx context.Context, payload any) (*T, error) {
	resp, err := r.opts.HTTP.Post(ctx, r.path(), payload)
	if err != nil {
		r.fail("create", err)
		return nil, err
	}
	return r.entity("create", resp.Body)
}

func (r *resource[T]) update(ctx context.Context, uuid string, payload any) (*T, error) {
	if err := checkUUID(uuid); err != nil {
		return nil, err
	}
	resp, err := r.opts.HTTP.Put(ctx, r.path(uuid), payload)
	if err != nil {
		r.fail("update", err, "uuid", uuid)
		return nil, err
	}
	return r.entity("update", resp.Body)
}

// putAt sends payload to a sub-resource of uuid and unwraps the entity / Envoie payload à une sous-ressource
func (r *resource[T]) putAt(ctx context.Context, op, uuid, sub string, payload any) (*T, error) {
	if err := checkUUID(uuid); err != nil {
		return nil, err
	}
	resp, err := r.opts.HTTP.Put(ctx, r.path(uuid, sub), payload)
	if err != nil {
		r.fail(op, err, "uuid", uuid)
		return nil, err
	}
	return r.entity(op, resp.Body)
}

func (r *resource[T]) remove(ctx context.Context, uuid string) error {
	if err := checkUUID(uuid); err != nil {
		return err
	}
	if _, err := r.opts.HTTP.Delete(ctx, r.path(uuid)); err != nil {
		r.fail("delete", err, "uuid", uuid)
		return err
	}
	slog.Info("service: entity deleted", "resource", r.name, "uuid", uuid)
	return nil
}

// bulkUpdate sends one POST /bulk-update; it is not a client-side loop.
func (r *resource[T]) bulkUpdate(ctx context.Context, req dto.BulkUpdateRequest) ([]T, error) {
	if len(req.UUIDs) == 0 {
		return nil, ErrNoUUIDs
	}
	if len(req.Updates) == 0 {
		return nil, ErrNoUpdates
	}

	resp, err := r.opts.HTTP.Post(ctx, r.path("bulk-update"), req)
	if err != nil {
		r.fail("bulk-update", err, "count", len(req.UUIDs))
		return nil, err
	}

	page, shape := normalize.List[T](resp.Body, r.itemsKey)
	r.recordShape(shape)
	return page.Items, nil
}

func (r *resource[T]) bulkDelete(ctx context.Context, uuids []string) error {
	if len(uuids) == 0 {
		return ErrNoUUIDs
	}
	if _, err := r.opts.HTTP.Post(ctx, r.path("bulk-delete"), dto.BulkDeleteRequest{UUIDs: uuids}); err != nil {
		r.fail("bulk-delete", err, "count", len(uuids))
		return err
	}
	slog.Info("service: bulk delete sent", "resource", r.name, "count", len(uuids))
	return nil
}

// run hands a per-item function to the batch runner / Confie une fonction par élément au runner
func (r *resource[T]) run(ctx context.Context, uuids []string, fn batch.ItemFunc, action string, args ...string) (*batch.Report, error) {
	if len(uuids) == 0 {
		return nil, ErrNoUUIDs
	}
	op := domain.NewOperation(r.name, action, args...)
	return r.opts.Runner.Run(ctx, op, uuids, fn), nil
}

func (r *resource[T]) deleteEach(ctx context.Context, uuids []string) (*batch.Report, error) {
	return r.run(ctx, uuids, r.remove, domain.ActionDelete)
}

func (r *resource[T]) changeStatut(ctx context.Context, uuid string, change dto.StatutChange) (*T, error) {
	return r.putAt(ctx, "statut", uuid, "statut", change)
}

func (r *resource[T]) statutEach(ctx context.Context, statut string, uuids []string) (*batch.Report, error) {
	fn := func(ctx context.Context, uuid string) error {
		_, err := r.changeStatut(ctx, uuid, dto.StatutChange{Statut: statut})
		return err
	}
	return r.run(ctx, uuids, fn, domain.ActionStatut, statut)
}

// replay re-runs a journaled delete or statut operation / Rejoue une opération journalisée
func (r *resource[T]) replay(ctx context.Context, op domain.Operation, uuids []string) (*batch.Report, error) {
	switch op.Action() {
	case domain.ActionDelete:
		return r.deleteEach(ctx, uuids)
	case domain.ActionStatut:
		if op.Argument() == "" {
			return nil, fmt.Errorf("%w: %s", ErrNotReplayable, op)
		}
		return r.statutEach(ctx, op.Argument(), uuids)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotReplayable, op)
	}
}

// listAll walks the pages of a list until exhausted or MaxPages is hit.
func (r *resource[T]) listAll(ctx context.Context, params domain.ListParams) ([]T, error) {
	params.Limit = r.opts.Export.PageSize
	var rows []T
	for p := 1; p <= r.opts.Export.MaxPages; p++ {
		params.Page = p
		page, err := r.list(ctx, params)
		if err != nil {
			return nil, err
		}
		rows = append(rows, page.Items...)
		if !morePages(page, len(rows), params.Limit) {
			return rows, nil
		}
	}
	slog.Warn("service: export truncated", "resource", r.name, "max_pages", r.opts.Export.MaxPages, "rows", len(rows))
	return rows, nil
}

// morePages decides whether listAll fetches another page. Backends that omit
// pages/limit still get paged: by total when reported, else while pages come back full.
// morePages : page suivante selon pages, total, ou une page pleine
func morePages[T any](page *domain.Page[T], fetched, limit int) bool {
	switch {
	case len(page.Items) == 0:
		return false
	case page.HasNext():
		return true
	case page.Total > fetched:
		return true
	case page.Pages > 1:
		// Explicit pagination and this was the last page
		return false
	default:
		return page.Total <= len(page.Items) && len(page.Items) == limit
	}
}

// export asks the backend for a PDF and falls back to a client-side CSV
// built from the paginated list when that call fails.
// export demande un PDF au backend, puis produit un CSV local en cas d'échec
func (r *resource[T]) export(ctx context.Context, params domain.ListParams, columns []export.Column[T]) (*export.File, error) {
	now := r.opts.Now()

	query := params.Values()
	query.Set("format", "pdf")
	resp, err := r.opts.HTTP.Get(ctx, r.path("export"), query)
	if err == nil && len(resp.Body) > 0 {
		return &export.File{
			Name:        export.FileName(r.name, "pdf", now),
			ContentType: export.ContentTypePDF,
			Data:        resp.Body,
		}, nil
	}
	if err == nil {
		err = errors.New("export vide")
	}
	slog.Warn("service: backend export failed, building CSV", "resource", r.name, "err", err)

	rows, err := r.listAll(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", r.name, err)
	}
	data, err := export.CSV(rows, columns, r.opts.Export.CSV)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", r.name, err)
	}

	return &export.File{
		Name:        export.FileName(r.name, "csv", now),
		ContentType: export.ContentTypeCSV,
		Data:        data,
		Fallback:    true,
	}, nil
}

// formatTimestamp renders an optional timestamp for CSV cells.
func formatTimestamp(ts *domain.Timestamp) string {
	if ts == nil || ts.IsZero() {
		return ""
	}
	return ts.Format("2006-01-02 15:04:05")
}

// statsAt decodes a stats endpoint over the defaults already held in dst.
// statsAt décode un endpoint de statistiques par-dessus les valeurs par défaut de dst
func (r *resource[T]) statsAt(ctx context.Context, path string, query url.Values, dst any) error {
	resp, err := r.opts.HTTP.Get(ctx, path, query)
	if err != nil {
		r.fail("stats", err, "path", path)
		return err
	}
	if err := normalize.Into(resp.Body, dst, "stats", "statistiques"); err != nil {
		slog.Warn("service: unexpected stats response", "resource", r.name, "err", err)
		return fmt.Errorf("%s stats: %w", r.name, err)
	}
	return nil
}

// availability reads a uniqueness or stock answer, unwrapping "data" first.
// Accepted keys, first present wins: available, disponible, exists (negated).
func availability(body []byte) (bool, error) {
	var probe struct {
		Available  *bool `json:"available"`
		Disponible *bool `json:"disponible"`
		Exists     *bool `json:"exists"`
	}
	if err := normalize.Into(body, &probe); err != nil {
		return false, err
	}
	switch {
	case probe.Available != nil:
		return *probe.Available, nil
	case probe.Disponible != nil:
		return *probe.Disponible, nil
	case probe.Exists != nil:
		return !*probe.Exists, nil
	default:
		return false, fmt.Errorf("%w: disponibilité absente", normalize.ErrInvalidStructure)
	}
}
