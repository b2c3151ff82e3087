// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"math"
	"time"

	"github.com/taibuivan/espy/pkg/pointer"
)

// ClassicCutoffYear is the first year whose titles are weighted by popularity.
const ClassicCutoffYear = 2011

// ScoreSource names where an aggregator score came from.
type ScoreSource string

const (
	SourceMetacritic ScoreSource = "metacritic"
	SourceWikipedia  ScoreSource = "wikipedia"
	SourceSteam      ScoreSource = "steam"
	SourceGog        ScoreSource = "gog"
)

// precedence orders sources; a higher value wins.
func (source ScoreSource) precedence() int {
	switch source {
	case SourceMetacritic:
		return 4
	case SourceWikipedia:
		return 3
	case SourceSteam:
		return 2
	case SourceGog:
		return 1
	default:
		return 0
	}
}

// Tier is the label derived from the espy score.
type Tier string

const (
	TierMasterpiece Tier = "Masterpiece"
	TierExcellent   Tier = "Excellent"
	TierGreat       Tier = "Great"
	TierGood        Tier = "Good"
	TierMixed       Tier = "Mixed"
	TierBad         Tier = "Bad"
)

// Scores collects every rating signal of a title.
type Scores struct {
	Thumbs     *uint64 `json:"thumbs,omitempty"`
	Popularity *uint64 `json:"popularity,omitempty"`
	Hype       *uint64 `json:"hype,omitempty"`

	Metacritic       *uint64     `json:"metacritic,omitempty"`
	MetacriticSource ScoreSource `json:"metacritic_source,omitempty"`

	EspyScore *uint64 `json:"espy_score,omitempty"`
	EspyTier  Tier    `json:"espy_tier,omitempty"`
}

// AddAggregate records an aggregator score. A source never replaces one of
// higher precedence, so the outcome does not depend on call order. Zero
// scores are ignored.
func (scores *Scores) AddAggregate(score uint64, source ScoreSource) {
	if score == 0 {
		return
	}
	if scores.Metacritic != nil && source.precedence() <= scores.MetacriticSource.precedence() {
		return
	}
	scores.Metacritic = pointer.To(score)
	scores.MetacriticSource = source
}

// AddSteam records the storefront review signal.
func (scores *Scores) AddSteam(thumbs, popularity uint64) {
	scores.Thumbs = pointer.To(thumbs)
	scores.Popularity = pointer.To(popularity)
}

// Finalize computes the espy score and tier for a title released at
// releaseDate (unix seconds).
func (scores *Scores) Finalize(releaseDate int64) {
	scores.EspyScore = nil
	scores.EspyTier = ""

	if scores.Metacritic == nil {
		return
	}

	score := *scores.Metacritic
	if time.Unix(releaseDate, 0).UTC().Year() >= ClassicCutoffYear {
		score = EspyScore(score, pointer.Val(scores.Popularity))
	}

	scores.EspyScore = pointer.To(score)
	scores.EspyTier = TierFor(score)
}

// EspyScore weights an aggregator score by review count. Titles with few
// reviews are pulled down.
func EspyScore(score, popularity uint64) uint64 {
	multiplier := 1.0
	switch {
	case popularity < 100:
		multiplier = 0.85
	case popularity < 1000:
		multiplier = 0.9
	case popularity < 10000:
		multiplier = 0.95
	}
	return uint64(math.Round(float64(score) * multiplier))
}

// TierFor labels a score. Zero has no tier.
func TierFor(score uint64) Tier {
	switch {
	case score >= 95:
		return TierMasterpiece
	case score >= 90:
		return TierExcellent
	case score >= 80:
		return TierGreat
	case score >= 70:
		return TierGood
	case score > 60:
		return TierMixed
	case score > 0:
		return TierBad
	default:
		return ""
	}
}
