// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package resolver

import (
	"context"
	"log/slog"
	"slices"

	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/platform/docstore"
	"github.com/taibuivan/espy/pkg/slice"
)

// cachedLookup returns the records of ids, reading the document collection
// first and fetching only the missing ids upstream. Results follow the order
// of ids; ids unknown to both sides are skipped. A failing store read is
// treated as a full miss.
func cachedLookup[T any](
	context context.Context,
	docs docstore.Store,
	logger *slog.Logger,
	collection string,
	ids []uint64,
	idOf func(T) uint64,
	fetch func(context.Context, []uint64) ([]T, error),
) ([]T, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	byID := make(map[uint64]T, len(ids))

	cached, _, err := docstore.GetMany[T](context, docs, collection, slice.Map(ids, game.DocumentID))
	if err != nil {
		logger.Warn("cached_lookup_store_failed", slog.String("collection", collection), slog.Any("error", err))
		cached = nil
	}
	for _, record := range cached {
		byID[idOf(record)] = record
	}

	missing := slice.Filter(ids, func(id uint64) bool {
		_, ok := byID[id]
		return !ok
	})
	if len(missing) > 0 {
		fetched, err := fetch(context, missing)
		if err != nil {
			return nil, err
		}
		for _, record := range fetched {
			byID[idOf(record)] = record
		}
	}

	records := make([]T, 0, len(byID))
	for _, id := range ids {
		if record, ok := byID[id]; ok {
			records = append(records, record)
		}
	}
	return records, nil
}

// uniqueIDs drops zero and repeated ids, keeping first occurrences.
func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	unique := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

// sortedIDs merges an optional single reference with a list, sorted and deduplicated.
func sortedIDs(single *uint64, list []uint64) []uint64 {
	ids := slices.Clone(list)
	if single != nil {
		ids = append(ids, *single)
	}
	slices.Sort(ids)
	return uniqueIDs(ids)
}
