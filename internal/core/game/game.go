// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package game holds the catalog's document model.

An [Entry] is the fully merged record of one title. A [Digest] is its
summary, embedded in other entries and in company and collection
aggregates. Digests are always derived from entries, never the reverse.
*/
package game

import (
	"slices"

	"github.com/taibuivan/espy/internal/provider/igdb"
)

// Entry is the merged record of a title. Its ID is always the catalog id.
type Entry struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Status      Status   `json:"status"`
	LastUpdated int64    `json:"last_updated"`
	ReleaseDate int64    `json:"release_date,omitempty"`

	Scores Scores `json:"scores"`
	Cover  *Image `json:"cover,omitempty"`

	EspyGenres []string `json:"espy_genres,omitempty"`
	IgdbGenres []string `json:"igdb_genres,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`

	Collections []CollectionDigest `json:"collections,omitempty"`
	Franchises  []CollectionDigest `json:"franchises,omitempty"`
	Developers  []CompanyDigest    `json:"developers,omitempty"`
	Publishers  []CompanyDigest    `json:"publishers,omitempty"`

	Parent     *Digest  `json:"parent,omitempty"`
	Expansions []Digest `json:"expansions,omitempty"`
	Dlcs       []Digest `json:"dlcs,omitempty"`
	Remakes    []Digest `json:"remakes,omitempty"`
	Remasters  []Digest `json:"remasters,omitempty"`
	Contents   []Digest `json:"contents,omitempty"`

	Screenshots []Image   `json:"screenshots,omitempty"`
	Artwork     []Image   `json:"artwork,omitempty"`
	Websites    []Website `json:"websites,omitempty"`

	IgdbGame  igdb.Game  `json:"igdb_game"`
	SteamData *SteamData `json:"steam_data,omitempty"`
	GogData   *GogData   `json:"gog_data,omitempty"`
}

// NewEntry seeds an entry from a catalog title. The catalog page itself is
// always the first website.
func NewEntry(source igdb.Game) *Entry {
	entry := &Entry{
		ID:          source.ID,
		Name:        source.Name,
		Category:    CategoryFromIGDB(source.Category, source.VersionParent != nil),
		Status:      StatusFromIGDB(source.Status),
		ReleaseDate: source.FirstReleaseDate,
		IgdbGame:    source,
	}

	if source.URL != "" {
		entry.Websites = []Website{{URL: source.URL, Authority: AuthorityIgdb}}
	}

	return entry
}

// Digest truncates the entry to its summary.
func (entry *Entry) Digest() Digest {
	digest := Digest{
		ID:          entry.ID,
		Name:        entry.Name,
		Category:    entry.Category,
		Status:      entry.Status,
		ReleaseDate: entry.ReleaseDate,
		Scores:      entry.Scores,
		ParentID:    entry.IgdbGame.Parent(),
		EspyGenres:  slices.Clone(entry.EspyGenres),
		Keywords:    slices.Clone(entry.Keywords),
	}

	if entry.Parent != nil {
		digest.ParentID = &entry.Parent.ID
	}
	if entry.Cover != nil {
		digest.Cover = entry.Cover.ImageID
	}

	for _, collection := range entry.Collections {
		digest.Collections = appendUnique(digest.Collections, collection.Name)
	}
	for _, franchise := range entry.Franchises {
		digest.Franchises = appendUnique(digest.Franchises, franchise.Name)
	}
	for _, company := range entry.Developers {
		digest.Developers = appendUnique(digest.Developers, company.Slug)
	}
	for _, company := range entry.Publishers {
		digest.Publishers = appendUnique(digest.Publishers, company.Slug)
	}

	return digest
}

// Digest is the summary of an entry.
type Digest struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Status      Status   `json:"status"`
	Cover       string   `json:"cover,omitempty"`
	ReleaseDate int64    `json:"release_date,omitempty"`
	Scores      Scores   `json:"scores"`
	ParentID    *uint64  `json:"parent_id,omitempty"`

	Collections []string `json:"collections,omitempty"`
	Franchises  []string `json:"franchises,omitempty"`
	Developers  []string `json:"developers,omitempty"`
	Publishers  []string `json:"publishers,omitempty"`
	EspyGenres  []string `json:"espy_genres,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Compact drops the fields aggregates do not store.
func (digest Digest) Compact() Digest {
	digest.Keywords = nil
	digest.Developers = nil
	digest.Publishers = nil
	return digest
}

// Image references a catalog image by its image id.
type Image struct {
	ImageID string `json:"image_id"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// ImageFromIGDB converts a catalog image record.
func ImageFromIGDB(image igdb.Image) Image {
	return Image{ImageID: image.ImageID, Width: image.Width, Height: image.Height}
}

// Website is an external link with the authority that hosts it.
type Website struct {
	URL       string           `json:"url"`
	Authority WebsiteAuthority `json:"authority"`
}

// WebsiteAuthority names the host of a website.
type WebsiteAuthority string

const (
	AuthorityNull      WebsiteAuthority = "Null"
	AuthorityOfficial  WebsiteAuthority = "Official"
	AuthorityWikipedia WebsiteAuthority = "Wikipedia"
	AuthorityIgdb      WebsiteAuthority = "Igdb"
	AuthorityGog       WebsiteAuthority = "Gog"
	AuthoritySteam     WebsiteAuthority = "Steam"
	AuthorityEgs       WebsiteAuthority = "Egs"
	AuthorityYoutube   WebsiteAuthority = "Youtube"
)

// AuthorityFromIGDB maps a catalog website category. Categories Espy does
// not keep map to [AuthorityNull] and report false.
func AuthorityFromIGDB(code int) (WebsiteAuthority, bool) {
	switch code {
	case 1:
		return AuthorityOfficial, true
	case 3:
		return AuthorityWikipedia, true
	case 9:
		return AuthorityYoutube, true
	case 13:
		return AuthoritySteam, true
	case 16:
		return AuthorityEgs, true
	case 17:
		return AuthorityGog, true
	default:
		return AuthorityNull, false
	}
}

func appendUnique(values []string, value string) []string {
	if value == "" || slices.Contains(values, value) {
		return values
	}
	return append(values, value)
}
