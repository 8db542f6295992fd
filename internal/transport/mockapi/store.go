package mockapi

import (
	"cmp"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// Record is one stored entity, kept as decoded JSON / Entité stockée sous forme de JSON décodé
type Record map[string]any

func (r Record) uuid() string { return cast.ToString(r["uuid"]) }

func (r Record) deleted() bool { return cast.ToBool(r["is_deleted"]) }

func (r Record) clone() Record { return maps.Clone(r) }

// reserved query keys are never used as equality filters
var reserved = map[string]bool{
	"page": true, "limit": true, "search": true, "sort_by": true, "sort_order": true,
	"include_deleted": true, "format": true,
}

// ListResult is one filtered, sorted, paginated slice of a collection.
type ListResult struct {
	Items []Record
	Total int
	Page  int
	Pages int
	Limit int
}

type collection struct {
	order []string
	items map[string]Record
}

// Store is an in-memory backend keyed by resource name / Backend en mémoire indexé par ressource
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	now         func() time.Time
}

// NewStore creates an empty store / Crée un store vide
func NewStore() *Store {
	return &Store{collections: make(map[string]*collection), now: time.Now}
}

func (s *Store) coll(resource string) *collection {
	c, ok := s.collections[resource]
	if !ok {
		c = &collection{items: make(map[string]Record)}
		s.collections[resource] = c
	}
	return c
}

// peek reads a collection without creating it; callers hold at least a read lock.
func (s *Store) peek(resource string) *collection {
	if c, ok := s.collections[resource]; ok {
		return c
	}
	return &collection{items: map[string]Record{}}
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// Create stores rec, assigning a uuid and audit fields when missing.
func (s *Store) Create(resource string, rec Record) Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec = rec.clone()
	if rec.uuid() == "" {
		rec["uuid"] = uuid.NewString()
	}
	now := s.timestamp()
	rec["created_at"] = now
	rec["updated_at"] = now
	rec["is_deleted"] = false

	c := s.coll(resource)
	if _, exists := c.items[rec.uuid()]; !exists {
		c.order = append(c.order, rec.uuid())
	}
	c.items[rec.uuid()] = rec
	return rec.clone()
}

// Get returns the record, soft-deleted ones included.
func (s *Store) Get(resource, id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.peek(resource).items[id]
	if !ok {
		return nil, false
	}
	return rec.clone(), true
}

// Update merges patch into the record; uuid and created_at are kept.
func (s *Store) Update(resource, id string, patch Record) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.coll(resource).items[id]
	if !ok || rec.deleted() {
		return nil, false
	}
	for k, v := range patch {
		if k == "uuid" || k == "created_at" {
			continue
		}
		rec[k] = v
	}
	rec["updated_at"] = s.timestamp()
	return rec.clone(), true
}

// Delete soft-deletes a record; false when missing or already deleted.
func (s *Store) Delete(resource, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.coll(resource).items[id]
	if !ok || rec.deleted() {
		return false
	}
	now := s.timestamp()
	rec["is_deleted"] = true
	rec["deleted_at"] = now
	rec["updated_at"] = now
	return true
}

// List filters, sorts and paginates a collection / Filtre, trie et pagine une collection
func (s *Store) List(resource string, q url.Values) ListResult {
	s.mu.RLock()
	c := s.peek(resource)
	all := make([]Record, 0, len(c.order))
	includeDeleted := q.Get("include_deleted") == "true"
	for _, id := range c.order {
		rec := c.items[id]
		if rec.deleted() && !includeDeleted {
			continue
		}
		if matches(rec, q) {
			all = append(all, rec.clone())
		}
	}
	s.mu.RUnlock()

	if field := q.Get("sort_by"); field != "" {
		desc := strings.EqualFold(q.Get("sort_order"), "desc")
		slices.SortStableFunc(all, func(a, b Record) int {
			n := compareValues(a[field], b[field])
			if desc {
				return -n
			}
			return n
		})
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}

	total := len(all)
	pages := max(1, (total+limit-1)/limit)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	return ListResult{Items: all[start:end], Total: total, Page: page, Pages: pages, Limit: limit}
}

func matches(rec Record, q url.Values) bool {
	if search := strings.ToLower(q.Get("search")); search != "" {
		found := false
		for _, v := range rec {
			if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), search) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for key, values := range q {
		if reserved[key] || len(values) == 0 || values[0] == "" {
			continue
		}
		if cast.ToString(rec[key]) != values[0] {
			return false
		}
	}
	return true
}

// compareValues orders numbers numerically and everything else as text.
func compareValues(a, b any) int {
	fa, errA := cast.ToFloat64E(a)
	fb, errB := cast.ToFloat64E(b)
	if errA == nil && errB == nil {
		return cmp.Compare(fa, fb)
	}
	return strings.Compare(cast.ToString(a), cast.ToString(b))
}

// Exists reports whether a live record other than exclude holds value in field.
func (s *Store) Exists(resource, field, value, exclude string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, rec := range s.peek(resource).items {
		if id == exclude || rec.deleted() {
			continue
		}
		if strings.EqualFold(cast.ToString(rec[field]), value) {
			return true
		}
	}
	return false
}

// CountBy counts live records per value of field / Compte les enregistrements par valeur de field
func (s *Store) CountBy(resource, field string) (counts map[string]int, live, deleted int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts = make(map[string]int)
	for _, rec := range s.peek(resource).items {
		if rec.deleted() {
			deleted++
			continue
		}
		live++
		if v := cast.ToString(rec[field]); v != "" {
			counts[v]++
		}
	}
	return counts, live, deleted
}

// Len returns the number of records, deleted included.
func (s *Store) Len(resource string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.peek(resource).items)
}

func (s *Store) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parts := make([]string, 0, len(s.collections))
	for _, name := range slices.Sorted(maps.Keys(s.collections)) {
		parts = append(parts, fmt.Sprintf("%s=%d", name, len(s.collections[name].items)))
	}
	return strings.Join(parts, " ")
}

// All returns the live records of a resource in insertion order.
func (s *Store) All(resource string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.peek(resource)
	out := make([]Record, 0, len(c.order))
	for _, id := range c.order {
		if rec := c.items[id]; !rec.deleted() {
			out = append(out, rec.clone())
		}
	}
	return out
}
