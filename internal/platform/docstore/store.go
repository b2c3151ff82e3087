// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package docstore is the generic document store behind every catalog collection.

Documents are JSON values addressed by (collection, id). The store supports
read, write, batch read, query-by-equality and delete, and signals a missing
document as an [apperr] NOT_FOUND error so callers can tell "absent" apart
from "broken".

Implementations:

  - [PostgresStore]: JSONB rows in catalog.document (pgx).
  - [CachedStore]: a Redis read-through decorator over another Store.
  - [MemoryStore]: a process-local map for tests and local runs.

The typed helpers [Get], [GetMany] and [Put] handle JSON encoding so that
domain packages never touch raw documents.
*/
package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taibuivan/espy/internal/platform/apperr"
)

// Op is a query comparison operator.
type Op string

const (
	// OpEqual matches documents whose field equals the value.
	OpEqual Op = "=="
	// OpArrayContains matches documents whose array field contains the value.
	OpArrayContains Op = "array-contains"
)

// Document is a raw document with its id.
type Document struct {
	ID   string
	Body json.RawMessage
}

// BatchResult is the outcome of [Store.BatchRead]. Found preserves the
// order of the requested ids.
type BatchResult struct {
	Found    []Document
	NotFound []string
}

// Store is a per-collection document store.
type Store interface {
	// Read returns the document or an apperr NOT_FOUND error.
	Read(ctx context.Context, collection, id string) (json.RawMessage, error)

	// Write upserts the document and returns its id. An empty id asks the
	// store to generate one.
	Write(ctx context.Context, collection, id string, body json.RawMessage) (string, error)

	// BatchRead reads many documents at once. Missing ids are reported in
	// NotFound rather than as an error.
	BatchRead(ctx context.Context, collection string, ids []string) (*BatchResult, error)

	// Query returns every document of the collection whose field matches value.
	Query(ctx context.Context, collection, field string, op Op, value any) ([]Document, error)

	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
}

// # Typed Helpers

// Get reads and decodes a single document.
func Get[T any](ctx context.Context, store Store, collection, id string) (*T, error) {
	body, err := store.Read(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	var value T
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, apperr.Internal(fmt.Errorf("docstore: decode %s/%s: %w", collection, id, err))
	}
	return &value, nil
}

// GetMany batch-reads and decodes documents. It returns the decoded values
// in request order and the ids that were not found.
func GetMany[T any](ctx context.Context, store Store, collection string, ids []string) ([]T, []string, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}

	result, err := store.BatchRead(ctx, collection, ids)
	if err != nil {
		return nil, nil, err
	}

	values := make([]T, 0, len(result.Found))
	for _, document := range result.Found {
		var value T
		if err := json.Unmarshal(document.Body, &value); err != nil {
			return nil, nil, apperr.Internal(fmt.Errorf("docstore: decode %s/%s: %w", collection, document.ID, err))
		}
		values = append(values, value)
	}
	return values, result.NotFound, nil
}

// Put encodes and writes a document, returning its id.
func Put(ctx context.Context, store Store, collection, id string, value any) (string, error) {
	body, err := json.Marshal(value)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("docstore: encode %s/%s: %w", collection, id, err))
	}
	return store.Write(ctx, collection, id, body)
}

// QueryAll runs a query and decodes every match.
func QueryAll[T any](ctx context.Context, store Store, collection, field string, op Op, value any) ([]T, error) {
	documents, err := store.Query(ctx, collection, field, op, value)
	if err != nil {
		return nil, err
	}

	values := make([]T, 0, len(documents))
	for _, document := range documents {
		var decoded T
		if err := json.Unmarshal(document.Body, &decoded); err != nil {
			return nil, apperr.Internal(fmt.Errorf("docstore: decode %s/%s: %w", collection, document.ID, err))
		}
		values = append(values, decoded)
	}
	return values, nil
}

// notFound builds the NOT_FOUND error for a document path.
func notFound(collection, id string) error {
	return apperr.NotFound(collection + "/" + id)
}

// matchDocument builds the containment document used by [OpEqual] and
// [OpArrayContains] queries.
func matchDocument(field string, op Op, value any) (map[string]any, error) {
	switch op {
	case OpEqual:
		return map[string]any{field: value}, nil
	case OpArrayContains:
		return map[string]any{field: []any{value}}, nil
	default:
		return nil, apperr.InvalidArgument(fmt.Sprintf("unsupported query operator %q", op))
	}
}
