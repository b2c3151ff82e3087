// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"strconv"

	"github.com/taibuivan/espy/internal/platform/constants"
	"github.com/taibuivan/espy/internal/platform/docstore"
	"github.com/taibuivan/espy/pkg/slice"
)

// DocumentRepository implements [Repository] over a document store.
type DocumentRepository struct {
	docs docstore.Store
}

func NewDocumentRepository(docs docstore.Store) *DocumentRepository {
	return &DocumentRepository{docs: docs}
}

func (repository *DocumentRepository) Entry(context context.Context, id uint64) (*Entry, error) {
	return docstore.Get[Entry](context, repository.docs, constants.CollectionGames, DocumentID(id))
}

// Entries returns the stored entries in request order and the ids that are missing.
func (repository *DocumentRepository) Entries(context context.Context, ids []uint64) ([]Entry, []uint64, error) {
	entries, missing, err := docstore.GetMany[Entry](context, repository.docs, constants.CollectionGames, slice.Map(ids, DocumentID))
	if err != nil {
		return nil, nil, err
	}

	notFound := make([]uint64, 0, len(missing))
	for _, id := range missing {
		parsed, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			continue
		}
		notFound = append(notFound, parsed)
	}
	return entries, notFound, nil
}

func (repository *DocumentRepository) SaveEntry(context context.Context, entry *Entry) error {
	_, err := docstore.Put(context, repository.docs, constants.CollectionGames, DocumentID(entry.ID), entry)
	return err
}

func (repository *DocumentRepository) ExternalGame(context context.Context, store, storeID string) (*ExternalGame, error) {
	return docstore.Get[ExternalGame](context, repository.docs, constants.CollectionExternalGames, ExternalGameID(store, storeID))
}

func (repository *DocumentRepository) SaveExternalGame(context context.Context, external ExternalGame) error {
	_, err := docstore.Put(context, repository.docs, constants.CollectionExternalGames, external.DocumentID(), external)
	return err
}

// ExternalGamesOf lists every storefront mapping pointing at a catalog id.
func (repository *DocumentRepository) ExternalGamesOf(context context.Context, igdbID uint64) ([]ExternalGame, error) {
	return docstore.QueryAll[ExternalGame](context, repository.docs, constants.CollectionExternalGames, "igdb_id", docstore.OpEqual, igdbID)
}

func (repository *DocumentRepository) Wikipedia(context context.Context, id uint64) (*WikipediaData, error) {
	return docstore.Get[WikipediaData](context, repository.docs, constants.CollectionWikipedia, DocumentID(id))
}

func (repository *DocumentRepository) GenreAnnotation(context context.Context, id uint64) (*GenreAnnotation, error) {
	return docstore.Get[GenreAnnotation](context, repository.docs, constants.CollectionGenres, DocumentID(id))
}

func (repository *DocumentRepository) RequestAnnotation(context context.Context, request AnnotationRequest) error {
	_, err := docstore.Put(context, repository.docs, constants.CollectionNeedsAnnotation, DocumentID(request.ID), request)
	return err
}

func (repository *DocumentRepository) Company(context context.Context, id uint64) (*Company, error) {
	return docstore.Get[Company](context, repository.docs, constants.CollectionCompanies, DocumentID(id))
}

func (repository *DocumentRepository) SaveCompany(context context.Context, company *Company) error {
	_, err := docstore.Put(context, repository.docs, constants.CollectionCompanies, DocumentID(company.ID), company)
	return err
}

func (repository *DocumentRepository) Collection(context context.Context, kind CollectionType, id uint64) (*Collection, error) {
	return docstore.Get[Collection](context, repository.docs, CollectionName(kind), DocumentID(id))
}

func (repository *DocumentRepository) SaveCollection(context context.Context, kind CollectionType, collection *Collection) error {
	_, err := docstore.Put(context, repository.docs, CollectionName(kind), DocumentID(collection.ID), collection)
	return err
}

// DocumentID renders a catalog id as a document id.
func DocumentID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// CollectionName is the document collection holding aggregates of kind.
func CollectionName(kind CollectionType) string {
	if kind == CollectionFranchise {
		return constants.CollectionFranchises
	}
	return constants.CollectionCollections
}
