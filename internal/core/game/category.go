// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

// Category classifies a title relative to its base game.
type Category string

const (
	CategoryMain                Category = "Main"
	CategoryDlc                 Category = "Dlc"
	CategoryExpansion           Category = "Expansion"
	CategoryBundle              Category = "Bundle"
	CategoryStandaloneExpansion Category = "StandaloneExpansion"
	CategoryEpisode             Category = "Episode"
	CategorySeason              Category = "Season"
	CategoryRemake              Category = "Remake"
	CategoryRemaster            Category = "Remaster"
	CategoryVersion             Category = "Version"
	CategoryIgnore              Category = "Ignore"
)

// CategoryFromIGDB maps the catalog's numeric category. Any title with a
// version parent is a Version regardless of its code.
func CategoryFromIGDB(code int, hasVersionParent bool) Category {
	if hasVersionParent {
		return CategoryVersion
	}

	switch code {
	case 0:
		return CategoryMain
	case 1:
		return CategoryDlc
	case 2:
		return CategoryExpansion
	case 3:
		return CategoryBundle
	case 4:
		return CategoryStandaloneExpansion
	case 6:
		return CategoryEpisode
	case 7:
		return CategorySeason
	case 8:
		return CategoryRemake
	case 9, 10, 14:
		return CategoryRemaster
	default:
		return CategoryIgnore
	}
}

// IsMain reports whether titles of this category appear in company and
// collection aggregates.
func (category Category) IsMain() bool {
	switch category {
	case CategoryMain, CategoryExpansion, CategoryStandaloneExpansion, CategoryRemake, CategoryRemaster:
		return true
	default:
		return false
	}
}

// Status is the release state of a title.
type Status string

const (
	StatusReleased    Status = "Released"
	StatusAlpha       Status = "Alpha"
	StatusBeta        Status = "Beta"
	StatusEarlyAccess Status = "EarlyAccess"
	StatusOffline     Status = "Offline"
	StatusCancelled   Status = "Cancelled"
	StatusRumored     Status = "Rumored"
	StatusDelisted    Status = "Delisted"
	StatusUnknown     Status = "Unknown"
)

// StatusFromIGDB maps the catalog's numeric status.
func StatusFromIGDB(code int) Status {
	switch code {
	case 0:
		return StatusReleased
	case 2:
		return StatusAlpha
	case 3:
		return StatusBeta
	case 4:
		return StatusEarlyAccess
	case 5:
		return StatusOffline
	case 6:
		return StatusCancelled
	case 7:
		return StatusRumored
	case 8:
		return StatusDelisted
	default:
		return StatusUnknown
	}
}
