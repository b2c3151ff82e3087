// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

// ExternalGame maps a storefront id to a catalog id.
type ExternalGame struct {
	IgdbID    uint64   `json:"igdb_id"`
	StoreName string   `json:"store_name"`
	StoreID   string   `json:"store_id"`
	StoreURL  string   `json:"store_url,omitempty"`
	GogData   *GogData `json:"gog_data,omitempty"`
}

// ExternalGameID is the document id of a mapping.
func ExternalGameID(store, storeID string) string {
	return store + "_" + storeID
}

// DocumentID is the document id of the mapping.
func (external ExternalGame) DocumentID() string {
	return ExternalGameID(external.StoreName, external.StoreID)
}

// StoreEntry is a title as listed in a user's storefront library.
type StoreEntry struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	StorefrontName string `json:"storefront_name"`
	URL            string `json:"url,omitempty"`
	Image          string `json:"image,omitempty"`
}
