// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/taibuivan/espy/internal/platform/apperr"
	"github.com/taibuivan/espy/pkg/uuid"
)

// MemoryStore keeps documents in process memory.
//
// # Concurrency
//
// Safe for concurrent use. Every read returns a copy of the stored bytes, so
// callers can never mutate stored state.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]json.RawMessage)}
}

// Read implements [Store].
func (store *MemoryStore) Read(_ context.Context, collection, id string) (json.RawMessage, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	body, ok := store.collections[collection][id]
	if !ok {
		return nil, notFound(collection, id)
	}
	return bytes.Clone(body), nil
}

// Write implements [Store].
func (store *MemoryStore) Write(_ context.Context, collection, id string, body json.RawMessage) (string, error) {
	if !json.Valid(body) {
		return "", apperr.Internal(fmt.Errorf("docstore: invalid json for %s/%s", collection, id))
	}
	if id == "" {
		id = uuid.New()
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	documents, ok := store.collections[collection]
	if !ok {
		documents = make(map[string]json.RawMessage)
		store.collections[collection] = documents
	}
	documents[id] = bytes.Clone(body)
	return id, nil
}

// BatchRead implements [Store].
func (store *MemoryStore) BatchRead(_ context.Context, collection string, ids []string) (*BatchResult, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	result := &BatchResult{}
	for _, id := range ids {
		if body, ok := store.collections[collection][id]; ok {
			result.Found = append(result.Found, Document{ID: id, Body: bytes.Clone(body)})
		} else {
			result.NotFound = append(result.NotFound, id)
		}
	}
	return result, nil
}

// Query implements [Store]. Results are ordered by id.
func (store *MemoryStore) Query(_ context.Context, collection, field string, op Op, value any) ([]Document, error) {
	match, err := matchDocument(field, op, value)
	if err != nil {
		return nil, err
	}
	wanted, err := normalize(match)
	if err != nil {
		return nil, err
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	ids := make([]string, 0, len(store.collections[collection]))
	for id := range store.collections[collection] {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var documents []Document
	for _, id := range ids {
		body := store.collections[collection][id]

		var decoded map[string]any
		if err := json.Unmarshal(body, &decoded); err != nil {
			continue
		}
		if matches(decoded[field], wanted[field], op) {
			documents = append(documents, Document{ID: id, Body: bytes.Clone(body)})
		}
	}
	return documents, nil
}

// Delete implements [Store].
func (store *MemoryStore) Delete(_ context.Context, collection, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.collections[collection], id)
	return nil
}

// Len returns the number of documents in a collection.
func (store *MemoryStore) Len(collection string) int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.collections[collection])
}

// normalize round-trips a value through JSON so it compares like decoded documents.
func normalize(value map[string]any) (map[string]any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, apperr.InvalidArgument("query value is not JSON encodable")
	}
	var decoded map[string]any
	_ = json.Unmarshal(encoded, &decoded)
	return decoded, nil
}

func matches(actual, wanted any, op Op) bool {
	if op == OpEqual {
		return reflect.DeepEqual(actual, wanted)
	}

	elements, ok := actual.([]any)
	wantedList, _ := wanted.([]any)
	if !ok || len(wantedList) != 1 {
		return false
	}
	for _, element := range elements {
		if reflect.DeepEqual(element, wantedList[0]) {
			return true
		}
	}
	return false
}
