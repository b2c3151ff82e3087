// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import "context"

// Repository persists entries and the documents that surround them.
type Repository interface {
	Entry(context context.Context, id uint64) (*Entry, error)
	Entries(context context.Context, ids []uint64) ([]Entry, []uint64, error)
	SaveEntry(context context.Context, entry *Entry) error

	ExternalGame(context context.Context, store, storeID string) (*ExternalGame, error)
	SaveExternalGame(context context.Context, external ExternalGame) error
	ExternalGamesOf(context context.Context, igdbID uint64) ([]ExternalGame, error)

	Wikipedia(context context.Context, id uint64) (*WikipediaData, error)
	GenreAnnotation(context context.Context, id uint64) (*GenreAnnotation, error)
	RequestAnnotation(context context.Context, request AnnotationRequest) error

	Company(context context.Context, id uint64) (*Company, error)
	SaveCompany(context context.Context, company *Company) error
	Collection(context context.Context, kind CollectionType, id uint64) (*Collection, error)
	SaveCollection(context context.Context, kind CollectionType, collection *Collection) error
}
