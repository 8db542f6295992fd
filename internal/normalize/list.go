package normalize

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/spf13/cast"
)

// Pagination aliases, first present wins / Alias de pagination, le premier présent l'emporte
var (
	countKeys = []string{"count"}
	totalKeys = []string{"total", "total_items", "totalItems", "total_count"}
	pageKeys  = []string{"page", "current_page", "currentPage"}
	pagesKeys = []string{"pages", "total_pages", "totalPages", "last_page"}
	limitKeys = []string{"limit", "per_page", "perPage", "page_size"}
)

// metaNames are the sub-objects some endpoints nest pagination in.
var metaNames = []string{"pagination", "meta"}

// List extracts a page of T from body and reports which envelope matched.
// It never fails: an unrecognized body yields an empty page and a warning.
//
// Precedence, first match wins:
//  1. bare array
//  2. "data" array
//  3. itemsKey array
//  4. "data" object holding an itemsKey array or exactly one array
//  5. exactly one array property
//  6. empty page
func List[T any](body []byte, itemsKey string) (*domain.Page[T], Shape) {
	body = bytes.TrimSpace(body)

	switch kind(body) {
	case '[':
		items := decodeItems[T](body)
		return paginate(items, nil), ShapeArray
	case '{':
	default:
		slog.Warn("normalize: response is neither array nor object", "items_key", itemsKey)
		return emptyPage[T](), ShapeEmpty
	}

	obj, err := decodeObject(body)
	if err != nil {
		slog.Warn("normalize: response object could not be decoded", "items_key", itemsKey, "err", err)
		return emptyPage[T](), ShapeEmpty
	}

	if raw, ok := obj.keyedArray("data"); ok {
		return paginate(decodeItems[T](raw), []object{obj}), ShapeData
	}

	if raw, ok := obj.keyedArray(itemsKey); ok {
		return paginate(decodeItems[T](raw), []object{obj}), ShapeKeyed
	}

	if data := obj["data"]; isObject(data) {
		if inner, err := decodeObject(data); err == nil {
			raw, ok := inner.keyedArray(itemsKey)
			if !ok {
				raw, ok = inner.singleArray()
			}
			if ok {
				return paginate(decodeItems[T](raw), []object{inner, obj}), ShapeNested
			}
		}
	}

	if raw, ok := obj.singleArray(); ok {
		slog.Debug("normalize: list found by single array heuristic", "items_key", itemsKey, "keys", obj.keys())
		return paginate(decodeItems[T](raw), []object{obj}), ShapeSingleArray
	}

	slog.Warn("normalize: no list found in response", "items_key", itemsKey, "keys", obj.keys())
	return emptyPage[T](), ShapeEmpty
}

func emptyPage[T any]() *domain.Page[T] {
	return paginate([]T{}, nil)
}

// paginate builds the page, reading metadata from sources and their pagination/meta children.
func paginate[T any](items []T, sources []object) *domain.Page[T] {
	if items == nil {
		items = []T{}
	}

	scopes := make([]object, 0, len(sources)*3)
	for _, src := range sources {
		scopes = append(scopes, src)
		for _, name := range metaNames {
			if raw := src[name]; isObject(raw) {
				if meta, err := decodeObject(raw); err == nil {
					scopes = append(scopes, meta)
				}
			}
		}
	}

	page := &domain.Page[T]{Items: items, Count: len(items)}
	if n, ok := lookupInt(scopes, countKeys); ok {
		page.Count = n
	}

	page.Total = page.Count
	if n, ok := lookupInt(scopes, totalKeys); ok {
		page.Total = n
	}

	page.Page = 1
	if n, ok := lookupInt(scopes, pageKeys); ok && n > 0 {
		page.Page = n
	}

	page.Pages = 1
	if n, ok := lookupInt(scopes, pagesKeys); ok && n > 0 {
		page.Pages = n
	} else if limit, ok := lookupInt(scopes, limitKeys); ok && limit > 0 && page.Total > 0 {
		page.Pages = int(math.Ceil(float64(page.Total) / float64(limit)))
	}

	return page
}

// lookupInt returns the first non-negative integer found for any alias, scanning scopes in order.
func lookupInt(scopes []object, aliases []string) (int, bool) {
	for _, scope := range scopes {
		for _, key := range aliases {
			raw, ok := scope[key]
			if !ok {
				continue
			}
			if n, ok := toInt(raw); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// toInt accepts JSON numbers and numeric strings ("12", "12.0").
func toInt(raw json.RawMessage) (int, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil || v == nil {
		return 0, false
	}
	if num, ok := v.(json.Number); ok {
		v = num.String()
	}

	n, err := cast.ToIntE(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
