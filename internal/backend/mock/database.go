package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FairForge/backplane/internal/provider"
)

func (b *Backend) ListDocuments(ctx context.Context, dbID, collectionID string, queries []provider.Query) (*provider.DocumentList, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var docs []provider.Document
	for _, doc := range b.docs[collectionKey(dbID, collectionID)] {
		docs = append(docs, cloneDocument(*doc))
	}

	docs = applyQueries(docs, queries, fieldValue)
	total := len(docs)
	docs = paginate(docs, queries)

	return &provider.DocumentList{Documents: docs, Total: total}, nil
}

func (b *Backend) GetDocument(ctx context.Context, dbID, collectionID, id string) (*provider.Document, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, ok := b.docs[collectionKey(dbID, collectionID)][id]
	if !ok {
		return nil, provider.ErrNotFound
	}
	cp := cloneDocument(*doc)
	return &cp, nil
}

func (b *Backend) CreateDocument(ctx context.Context, dbID, collectionID, id string, data map[string]any) (*provider.Document, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if id == "" || id == provider.AutoID {
		id = uuid.New().String()
	}

	key := collectionKey(dbID, collectionID)
	if b.docs[key] == nil {
		b.docs[key] = make(map[string]*provider.Document)
	}
	if _, exists := b.docs[key][id]; exists {
		return nil, provider.ErrConflict
	}

	now := time.Now()
	doc := provider.Document{ID: id, CreatedAt: now, UpdatedAt: now, Data: data}
	stored := cloneDocument(doc)
	b.docs[key][id] = &stored

	cp := cloneDocument(stored)
	return &cp, nil
}

func (b *Backend) UpdateDocument(ctx context.Context, dbID, collectionID, id string, data map[string]any) (*provider.Document, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, ok := b.docs[collectionKey(dbID, collectionID)][id]
	if !ok {
		return nil, provider.ErrNotFound
	}

	for k, v := range data {
		doc.Data[k] = v
	}
	doc.UpdatedAt = time.Now()

	cp := cloneDocument(*doc)
	return &cp, nil
}

// DeleteDocument on an absent id is a silent no-op.
func (b *Backend) DeleteDocument(ctx context.Context, dbID, collectionID, id string) error {
	if err := b.wait(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.docs[collectionKey(dbID, collectionID)], id)
	return nil
}

// applyQueries evaluates filter and sort directives in order. The field
// accessor resolves directive fields for the item type so documents and file
// descriptors share one evaluator.
func applyQueries[T any](items []T, queries []provider.Query, field func(T, string) (any, bool)) []T {
	for _, q := range queries {
		switch q.Kind {
		case provider.KindFilter:
			filtered := items[:0]
			for _, item := range items {
				if matches(item, q, field) {
					filtered = append(filtered, item)
				}
			}
			items = filtered
		case provider.KindSort:
			sortItems(items, q, field)
		}
	}
	return items
}

// paginate applies limit/offset directives after filtering.
func paginate[T any](items []T, queries []provider.Query) []T {
	offset, limit := 0, -1
	for _, q := range queries {
		switch q.Kind {
		case provider.KindOffset:
			offset = q.Count
		case provider.KindLimit:
			limit = q.Count
		}
	}
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit >= 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func matches[T any](item T, q provider.Query, field func(T, string) (any, bool)) bool {
	value, ok := field(item, q.Field)
	if !ok {
		return false
	}

	switch q.Op {
	case provider.OpEqual:
		return compareValues(value, q.Value) == 0
	case provider.OpNotEqual:
		return compareValues(value, q.Value) != 0
	case provider.OpGreater:
		return compareValues(value, q.Value) > 0
	case provider.OpLess:
		return compareValues(value, q.Value) < 0
	case provider.OpContains:
		return strings.Contains(
			strings.ToLower(fmt.Sprint(value)),
			strings.ToLower(fmt.Sprint(q.Value)))
	default:
		return false
	}
}

func sortItems[T any](items []T, q provider.Query, field func(T, string) (any, bool)) {
	sort.SliceStable(items, func(i, j int) bool {
		a, _ := field(items[i], q.Field)
		b, _ := field(items[j], q.Field)
		if q.Desc {
			return compareValues(a, b) > 0
		}
		return compareValues(a, b) < 0
	})
}

func fieldValue(doc provider.Document, field string) (any, bool) {
	switch field {
	case "$id":
		return doc.ID, true
	case "$createdAt":
		return doc.CreatedAt, true
	case "$updatedAt":
		return doc.UpdatedAt, true
	}
	v, ok := doc.Data[field]
	return v, ok
}

// compareValues orders two loosely typed values: numbers numerically, times
// chronologically, everything else by string form.
func compareValues(a, b any) int {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
