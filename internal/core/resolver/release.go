// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package resolver

import (
	"cmp"
	"slices"
	"time"

	"github.com/taibuivan/espy/internal/provider/igdb"
)

// ReleaseDateCutoffYear is the first year in which storefront dates are
// trusted over catalog dates.
const ReleaseDateCutoffYear = 2008

const earlyAccess = "Early Access"

// storefrontDateLayouts are the formats the storefront renders release dates in.
var storefrontDateLayouts = []string{"Jan 2, 2006", "2 Jan, 2006"}

// catalogReleaseDate picks the earliest positive date, ordering early access
// releases after every other release. exact reports whether the chosen
// record is known to the day.
func catalogReleaseDate(records []igdb.ReleaseDate, fallback int64) (date int64, exact bool) {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b igdb.ReleaseDate) int {
		if isEarlyAccess(a) != isEarlyAccess(b) {
			if isEarlyAccess(a) {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.Date, b.Date)
	})

	for _, record := range sorted {
		if record.Date > 0 {
			return record.Date, record.Category == igdb.ReleaseDateExact
		}
	}
	return fallback, false
}

func isEarlyAccess(record igdb.ReleaseDate) bool {
	return record.Status != nil && record.Status.Name == earlyAccess
}

// parseStorefrontDate reads a storefront release date as noon UTC.
func parseStorefrontDate(text string) (int64, bool) {
	for _, layout := range storefrontDateLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed.Add(12 * time.Hour).Unix(), true
		}
	}
	return 0, false
}

// pickReleaseDate chooses between the catalog date and the storefront date.
//
// An exact catalog date always wins. Otherwise the storefront date wins when
// the catalog date is missing, in the future or later than the storefront's.
// A catalog date older than [ReleaseDateCutoffYear] is kept; any other case
// goes to the storefront.
func pickReleaseDate(catalogDate int64, exact bool, storefrontDate string, now time.Time) int64 {
	storefront, ok := parseStorefrontDate(storefrontDate)
	if !ok {
		return catalogDate
	}

	switch {
	case catalogDate <= 0:
		return storefront
	case exact:
		return catalogDate
	case catalogDate > now.Unix() || catalogDate > storefront:
		return storefront
	case time.Unix(catalogDate, 0).UTC().Year() < ReleaseDateCutoffYear:
		return catalogDate
	default:
		return storefront
	}
}
