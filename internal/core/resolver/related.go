// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package resolver

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/platform/constants"
	"github.com/taibuivan/espy/internal/provider/igdb"
	"github.com/taibuivan/espy/pkg/slice"
)

// relation is how a related title attaches to an entry.
type relation int

const (
	relationParent relation = iota
	relationExpansion
	relationDlc
	relationRemake
	relationRemaster
	relationContent
)

type relatedRef struct {
	id       uint64
	relation relation
}

// relatedTitles holds the digests of an entry's related titles.
type relatedTitles struct {
	parent     *game.Digest
	expansions []game.Digest
	dlcs       []game.Digest
	remakes    []game.Digest
	remasters  []game.Digest
	contents   []game.Digest
}

func (related relatedTitles) apply(entry *game.Entry) {
	entry.Parent = related.parent
	entry.Expansions = related.expansions
	entry.Dlcs = related.dlcs
	entry.Remakes = related.remakes
	entry.Remasters = related.remasters
	entry.Contents = related.contents
}

// resolveRelated resolves the parent, expansions, dlcs, remakes, remasters
// and bundle contents of an entry.
//
// Ids are drained from a worklist guarded by a visited set seeded with the
// entry's own id, so every id is resolved at most once and the entry itself
// is never resolved again. A title listing itself as a relative gets the
// entry's own digest.
func (service *Service) resolveRelated(context context.Context, entry *game.Entry) relatedTitles {
	source := entry.IgdbGame

	var refs []relatedRef
	add := func(kind relation, ids ...uint64) {
		for _, id := range ids {
			refs = append(refs, relatedRef{id: id, relation: kind})
		}
	}

	if parent := source.Parent(); parent != nil {
		add(relationParent, *parent)
	}
	add(relationExpansion, source.Expansions...)
	add(relationExpansion, source.StandaloneExpansions...)
	add(relationDlc, source.Dlcs...)
	add(relationRemake, source.Remakes...)
	add(relationRemaster, source.Remasters...)

	prefetched := make(map[uint64]igdb.Game)
	if entry.Category == game.CategoryBundle || entry.Category == game.CategoryVersion {
		members, err := service.catalog.BundleContents(context, entry.ID)
		if err != nil {
			service.warnOn(source, "bundle_contents", err)
		}
		for _, member := range members {
			add(relationContent, member.ID)
			prefetched[member.ID] = member
		}
	}

	visited := map[uint64]struct{}{entry.ID: {}}
	var worklist []uint64
	for _, ref := range refs {
		if _, seen := visited[ref.id]; seen || ref.id == 0 {
			continue
		}
		visited[ref.id] = struct{}{}
		worklist = append(worklist, ref.id)
	}

	digests, err := service.resolveDigests(context, worklist, prefetched)
	if err != nil {
		service.warnOn(source, "related", err)
	}
	digests[entry.ID] = entry.Digest()

	var related relatedTitles
	placed := make(map[relatedRef]struct{}, len(refs))
	for _, ref := range refs {
		digest, ok := digests[ref.id]
		if _, dup := placed[ref]; !ok || dup {
			continue
		}
		placed[ref] = struct{}{}

		switch ref.relation {
		case relationParent:
			related.parent = &digest
		case relationExpansion:
			related.expansions = append(related.expansions, digest)
		case relationDlc:
			related.dlcs = append(related.dlcs, digest)
		case relationRemake:
			related.remakes = append(related.remakes, digest)
		case relationRemaster:
			related.remasters = append(related.remasters, digest)
		case relationContent:
			related.contents = append(related.contents, digest)
		}
	}
	return related
}

// resolveDigests returns a digest per id. Stored entries are truncated;
// missing ids are fetched from the catalog, or taken from prefetched, and
// run through the digest phase. Titles that fail to resolve are left out and
// the returned map is always usable.
func (service *Service) resolveDigests(context context.Context, ids []uint64, prefetched map[uint64]igdb.Game) (map[uint64]game.Digest, error) {
	digests := make(map[uint64]game.Digest, len(ids))
	if len(ids) == 0 {
		return digests, nil
	}

	entries, missing, err := service.games.Entries(context, ids)
	if err != nil {
		service.logger.Warn("related_store_read_failed", slog.Any("error", err))
		entries, missing = nil, ids
	}
	for _, entry := range entries {
		digests[entry.ID] = entry.Digest()
	}

	sources := make(map[uint64]igdb.Game, len(missing))
	toFetch := slice.Filter(missing, func(id uint64) bool {
		if source, ok := prefetched[id]; ok {
			sources[id] = source
			return false
		}
		return true
	})

	var fetchErr error
	if len(toFetch) > 0 {
		fetched, err := service.catalog.Games(context, toFetch)
		if err != nil {
			fetchErr = err
		}
		for _, source := range fetched {
			sources[source.ID] = source
		}
	}

	pending := slice.Filter(missing, func(id uint64) bool {
		_, ok := sources[id]
		return ok
	})

	resolved := make([]*game.Digest, len(pending))
	group, groupContext := errgroup.WithContext(context)
	group.SetLimit(constants.RelatedConcurrency)

	for i, id := range pending {
		group.Go(func() error {
			entry, err := service.ResolveDigest(groupContext, sources[id])
			if err != nil {
				service.warnOn(sources[id], "related_digest", err)
				return nil
			}
			digest := entry.Digest()
			resolved[i] = &digest
			return nil
		})
	}
	_ = group.Wait()

	for i, id := range pending {
		if resolved[i] != nil {
			digests[id] = *resolved[i]
		}
	}
	return digests, fetchErr
}
