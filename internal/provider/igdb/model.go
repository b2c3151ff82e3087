// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package igdb

// Game is a title as returned by the games endpoint. Reference fields hold
// ids into the other endpoints.
type Game struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Category int    `json:"category"`
	Status   int    `json:"status"`
	URL      string `json:"url,omitempty"`
	Slug     string `json:"slug,omitempty"`

	Summary   string `json:"summary,omitempty"`
	Storyline string `json:"storyline,omitempty"`

	FirstReleaseDate int64    `json:"first_release_date,omitempty"`
	ReleaseDates     []uint64 `json:"release_dates,omitempty"`

	AggregatedRating float64 `json:"aggregated_rating,omitempty"`
	Follows          uint64  `json:"follows,omitempty"`
	Hypes            uint64  `json:"hypes,omitempty"`

	Genres   []uint64 `json:"genres,omitempty"`
	Keywords []uint64 `json:"keywords,omitempty"`

	Expansions           []uint64 `json:"expansions,omitempty"`
	StandaloneExpansions []uint64 `json:"standalone_expansions,omitempty"`
	Dlcs                 []uint64 `json:"dlcs,omitempty"`
	Remakes              []uint64 `json:"remakes,omitempty"`
	Remasters            []uint64 `json:"remasters,omitempty"`
	Bundles              []uint64 `json:"bundles,omitempty"`
	Platforms            []uint64 `json:"platforms,omitempty"`

	ParentGame    *uint64 `json:"parent_game,omitempty"`
	VersionParent *uint64 `json:"version_parent,omitempty"`
	VersionTitle  string  `json:"version_title,omitempty"`

	Collection  *uint64  `json:"collection,omitempty"`
	Collections []uint64 `json:"collections,omitempty"`
	Franchise   *uint64  `json:"franchise,omitempty"`
	Franchises  []uint64 `json:"franchises,omitempty"`

	InvolvedCompanies []uint64 `json:"involved_companies,omitempty"`

	Cover       *uint64  `json:"cover,omitempty"`
	Screenshots []uint64 `json:"screenshots,omitempty"`
	Artworks    []uint64 `json:"artworks,omitempty"`
	Websites    []uint64 `json:"websites,omitempty"`
}

// Parent returns parent_game, falling back to version_parent.
func (game *Game) Parent() *uint64 {
	if game.ParentGame != nil {
		return game.ParentGame
	}
	return game.VersionParent
}

// ExternalGame maps a title to its id on a storefront.
type ExternalGame struct {
	ID       uint64 `json:"id"`
	Game     uint64 `json:"game"`
	UID      string `json:"uid"`
	Category int    `json:"category"`
	URL      string `json:"url,omitempty"`
}

// External game categories for the storefronts the catalog can map.
const (
	ExternalSteam = 1
	ExternalGog   = 5
)

// Image is a cover, screenshot or artwork record.
type Image struct {
	ID      uint64 `json:"id"`
	ImageID string `json:"image_id"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// Collection is a collection or franchise record. Both endpoints share the shape.
type Collection struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Company is a developer or publisher.
type Company struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug,omitempty"`
	Description string  `json:"description,omitempty"`
	Logo        *uint64 `json:"logo,omitempty"`
}

// InvolvedCompany links a game to a company with role flags.
type InvolvedCompany struct {
	ID         uint64 `json:"id"`
	Company    uint64 `json:"company"`
	Developer  bool   `json:"developer"`
	Publisher  bool   `json:"publisher"`
	Porting    bool   `json:"porting"`
	Supporting bool   `json:"supporting"`
}

// ReleaseDate is one release of a game. Category 0 marks an exact date.
type ReleaseDate struct {
	ID       uint64         `json:"id"`
	Category int            `json:"category"`
	Date     int64          `json:"date,omitempty"`
	Status   *ReleaseStatus `json:"status,omitempty"`
}

// ReleaseStatus is the expanded status of a release date.
type ReleaseStatus struct {
	Name string `json:"name"`
}

// ReleaseDateExact is the category of a release date known to the day.
const ReleaseDateExact = 0

// Website is an external link of a game.
type Website struct {
	ID       uint64 `json:"id"`
	Category int    `json:"category"`
	URL      string `json:"url"`
}

// Keyword is a free-form tag.
type Keyword struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// Genre is a catalog genre.
type Genre struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}
