// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"strings"

	"github.com/taibuivan/espy/internal/provider/igdb"
	"github.com/taibuivan/espy/pkg/slug"
)

// CompanyRole is a company's part in making a title.
type CompanyRole string

const (
	RoleUnknown   CompanyRole = "Unknown"
	RoleDeveloper CompanyRole = "Developer"
	RolePublisher CompanyRole = "Publisher"
	RolePorting   CompanyRole = "Porting"
	RoleSupport   CompanyRole = "Support"
	RoleDevPub    CompanyRole = "DevPub"
)

// RoleFromFlags derives a role from an involvement record.
func RoleFromFlags(involved igdb.InvolvedCompany) CompanyRole {
	switch {
	case involved.Developer && involved.Publisher:
		return RoleDevPub
	case involved.Developer:
		return RoleDeveloper
	case involved.Publisher:
		return RolePublisher
	case involved.Porting:
		return RolePorting
	case involved.Supporting:
		return RoleSupport
	default:
		return RoleUnknown
	}
}

// IsDeveloper reports whether the role lists the company among developers.
func (role CompanyRole) IsDeveloper() bool {
	return role == RoleDeveloper || role == RoleDevPub
}

// IsPublisher reports whether the role lists the company among publishers.
func (role CompanyRole) IsPublisher() bool {
	return role == RolePublisher || role == RoleDevPub
}

// CompanyDigest is a company as embedded in an entry.
type CompanyDigest struct {
	ID   uint64      `json:"id"`
	Name string      `json:"name"`
	Slug string      `json:"slug"`
	Role CompanyRole `json:"role"`
}

// Company is the aggregate document of a company with its main titles.
type Company struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description,omitempty"`
	Logo        *uint64  `json:"logo,omitempty"`
	Developed   []Digest `json:"developed,omitempty"`
	Published   []Digest `json:"published,omitempty"`
}

// CollectionType distinguishes collections from franchises.
type CollectionType string

const (
	CollectionNull      CollectionType = "Null"
	CollectionSeries    CollectionType = "Collection"
	CollectionFranchise CollectionType = "Franchise"
)

// CollectionDigest is a collection or franchise as embedded in an entry.
type CollectionDigest struct {
	ID   uint64         `json:"id"`
	Name string         `json:"name"`
	Slug string         `json:"slug"`
	Type CollectionType `json:"type"`
}

// Collection is the aggregate document of a collection or franchise.
type Collection struct {
	ID    uint64   `json:"id"`
	Name  string   `json:"name"`
	Slug  string   `json:"slug"`
	Games []Digest `json:"games,omitempty"`
}

// UpsertDigest replaces the digest with the same id in place, or appends it.
func UpsertDigest(digests []Digest, digest Digest) []Digest {
	for i := range digests {
		if digests[i].ID == digest.ID {
			digests[i] = digest
			return digests
		}
	}
	return append(digests, digest)
}

// # Company Names

var fluffTokens = toSet(
	"ag", "and", "co", "corporation", "development", "east", "entertainment",
	"game", "games", "gmbh", "inc", "interactive", "international", "limited",
	"llc", "ltd", "media", "north", "northwest", "on-line", "online", "partners",
	"production", "productions", "publishing", "software", "softworks", "studio",
	"studios", "technologies", "the", "victor", "west",
)

var locationTokens = toSet(
	"albany", "asia-pacific", "asia", "austin", "australia", "baltimore",
	"birmingham", "boston", "bucharest", "budapest", "canada", "casablanca",
	"chicago", "china", "czech", "deutschland", "edmonton", "europe", "france",
	"frankfurt", "hawaii", "italia", "japan", "kiev", "london", "manchester",
	"marin", "milan", "montpellier", "montreal", "montréal", "nordic", "paris",
	"poland", "quebec", "québec", "shanghai", "sofia", "southam", "teesside",
	"tokyo", "toronto", "uk", "usa", "vancouver",
)

// CompanySlug normalizes a company name so that regional and legal variants
// of the same studio share a slug.
//
// Example:
//
//	CompanySlug("Ubisoft Montreal Inc.") // "ubisoft"
func CompanySlug(name string) string {
	cleaned := strings.NewReplacer(".", "", ",", "").Replace(name)

	var kept []string
	for _, token := range strings.Fields(cleaned) {
		lower := strings.ToLower(token)
		if _, fluff := fluffTokens[lower]; fluff {
			continue
		}
		if _, location := locationTokens[lower]; location {
			continue
		}
		kept = append(kept, token)
	}

	return slug.From(strings.Join(kept, " "))
}

func toSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}
