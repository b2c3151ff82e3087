// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/espy/internal/platform/database/schema"
	"github.com/taibuivan/espy/internal/platform/dberr"
	"github.com/taibuivan/espy/pkg/uuid"
)

// PostgresStore keeps documents as JSONB rows in catalog.document.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore over an existing pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Read implements [Store].
func (store *PostgresStore) Read(context context.Context, collection, id string) (json.RawMessage, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		schema.CatalogDocument.Body, schema.CatalogDocument.Table,
		schema.CatalogDocument.Collection, schema.CatalogDocument.ID)

	var body []byte
	if err := store.db.QueryRow(context, query, collection, id).Scan(&body); err != nil {
		return nil, dberr.Wrap(err, collection+"/"+id)
	}
	return body, nil
}

// Write implements [Store].
func (store *PostgresStore) Write(context context.Context, collection, id string, body json.RawMessage) (string, error) {
	if id == "" {
		id = uuid.New()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s) VALUES ($1, $2, $3, now())
		ON CONFLICT (%s, %s) DO UPDATE SET %s = EXCLUDED.%s, %s = now()
	`,
		schema.CatalogDocument.Table, strings.Join(schema.CatalogDocument.Columns(), ", "),
		schema.CatalogDocument.Collection, schema.CatalogDocument.ID,
		schema.CatalogDocument.Body, schema.CatalogDocument.Body, schema.CatalogDocument.UpdatedAt,
	)

	if _, err := store.db.Exec(context, query, collection, id, []byte(body)); err != nil {
		return "", dberr.Wrap(err, collection+"/"+id)
	}
	return id, nil
}

// BatchRead implements [Store].
func (store *PostgresStore) BatchRead(context context.Context, collection string, ids []string) (*BatchResult, error) {
	result := &BatchResult{}
	if len(ids) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 AND %s = ANY($2)`,
		schema.CatalogDocument.ID, schema.CatalogDocument.Body, schema.CatalogDocument.Table,
		schema.CatalogDocument.Collection, schema.CatalogDocument.ID)

	rows, err := store.db.Query(context, query, collection, ids)
	if err != nil {
		return nil, dberr.Wrap(err, collection)
	}
	defer rows.Close()

	found := make(map[string]json.RawMessage, len(ids))
	for rows.Next() {
		var id string
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return nil, dberr.Wrap(err, collection)
		}
		found[id] = body
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, collection)
	}

	// Keep the caller's order
	for _, id := range ids {
		if body, ok := found[id]; ok {
			result.Found = append(result.Found, Document{ID: id, Body: body})
		} else {
			result.NotFound = append(result.NotFound, id)
		}
	}
	return result, nil
}

// Query implements [Store] with JSONB containment, which the GIN index serves.
func (store *PostgresStore) Query(context context.Context, collection, field string, op Op, value any) ([]Document, error) {
	match, err := matchDocument(field, op, value)
	if err != nil {
		return nil, err
	}
	containment, err := json.Marshal(match)
	if err != nil {
		return nil, dberr.Wrap(err, collection)
	}

	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 AND %s @> $2::jsonb ORDER BY %s`,
		schema.CatalogDocument.ID, schema.CatalogDocument.Body, schema.CatalogDocument.Table,
		schema.CatalogDocument.Collection, schema.CatalogDocument.Body, schema.CatalogDocument.ID)

	rows, err := store.db.Query(context, query, collection, string(containment))
	if err != nil {
		return nil, dberr.Wrap(err, collection)
	}
	defer rows.Close()

	var documents []Document
	for rows.Next() {
		var document Document
		var body []byte
		if err := rows.Scan(&document.ID, &body); err != nil {
			return nil, dberr.Wrap(err, collection)
		}
		document.Body = body
		documents = append(documents, document)
	}
	return documents, dberr.Wrap(rows.Err(), collection)
}

// Delete implements [Store].
func (store *PostgresStore) Delete(context context.Context, collection, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.CatalogDocument.Table, schema.CatalogDocument.Collection, schema.CatalogDocument.ID)

	_, err := store.db.Exec(context, query, collection, id)
	return dberr.Wrap(err, collection+"/"+id)
}
