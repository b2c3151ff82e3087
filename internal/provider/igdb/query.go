// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package igdb

import (
	"fmt"
	"strconv"
	"strings"
)

// Query builds the text body of a catalog request.
//
// Example:
//
//	igdb.NewQuery().WhereIDs("id", []uint64{1, 2}).String()
//	// fields *; where id = (1,2);
type Query struct {
	search string
	fields []string
	where  []string
	sort   string
	limit  int
	offset int
}

// NewQuery starts a query selecting the given fields, or every field when none are given.
func NewQuery(fields ...string) *Query {
	if len(fields) == 0 {
		fields = []string{"*"}
	}
	return &Query{fields: fields}
}

// Search adds a full-text search term. Double quotes are stripped.
func (query *Query) Search(term string) *Query {
	query.search = strings.ReplaceAll(term, `"`, "")
	return query
}

// Where adds a filter clause. Clauses are joined with '&'.
func (query *Query) Where(format string, args ...any) *Query {
	query.where = append(query.where, fmt.Sprintf(format, args...))
	return query
}

// WhereIDs filters field to the given set of ids.
func (query *Query) WhereIDs(field string, ids []uint64) *Query {
	return query.Where("%s = (%s)", field, joinIDs(ids))
}

// Sort orders results by field in the given direction ("asc" or "desc").
func (query *Query) Sort(field, direction string) *Query {
	query.sort = field + " " + direction
	return query
}

// Limit caps the number of returned records.
func (query *Query) Limit(limit int) *Query {
	query.limit = limit
	return query
}

// Offset skips records for pagination.
func (query *Query) Offset(offset int) *Query {
	query.offset = offset
	return query
}

// String renders the query body.
func (query *Query) String() string {
	var builder strings.Builder

	if query.search != "" {
		fmt.Fprintf(&builder, "search \"%s\"; ", query.search)
	}
	fmt.Fprintf(&builder, "fields %s;", strings.Join(query.fields, ", "))
	if len(query.where) > 0 {
		fmt.Fprintf(&builder, " where %s;", strings.Join(query.where, " & "))
	}
	if query.sort != "" {
		fmt.Fprintf(&builder, " sort %s;", query.sort)
	}
	if query.limit > 0 {
		fmt.Fprintf(&builder, " limit %d;", query.limit)
	}
	if query.offset > 0 {
		fmt.Fprintf(&builder, " offset %d;", query.offset)
	}

	return builder.String()
}

func joinIDs(ids []uint64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return strings.Join(parts, ",")
}
