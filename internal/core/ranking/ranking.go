// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ranking orders catalog candidates by how well their title matches a
storefront title.

# Scoring

Titles are normalized first: accents removed, lowercased, punctuation
dropped. An exact normalized match scores [ExactMatch]. Any other candidate
scores the Dice overlap of the two token sets plus a subsequence bonus of at
most [FuzzyBonus], so "Half-Life 2" still ranks "Half-Life 2: Episode One"
above "Half-Life".
*/
package ranking

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// ExactMatch is the score of candidates whose normalized title equals the query.
	ExactMatch = 2.0
	// FuzzyBonus caps the subsequence contribution.
	FuzzyBonus = 0.25
)

// Scored pairs a candidate with its relevance.
type Scored[T any] struct {
	Item  T
	Score float64
}

// SortByRelevance orders candidates by descending relevance to title. Equal
// scores keep their input order.
func SortByRelevance[T any](title string, candidates []T, name func(T) string) []T {
	return items(rank(title, candidates, name))
}

// SortByRelevanceWithThreshold is [SortByRelevance] dropping candidates
// scoring below minimum.
func SortByRelevanceWithThreshold[T any](title string, candidates []T, name func(T) string, minimum float64) []T {
	scored := rank(title, candidates, name)
	kept := slices.DeleteFunc(scored, func(s Scored[T]) bool { return s.Score < minimum })
	return items(kept)
}

// Rank returns every candidate with its score, most relevant first.
func Rank[T any](title string, candidates []T, name func(T) string) []Scored[T] {
	return rank(title, candidates, name)
}

// Score rates how well candidate matches title.
func Score(title, candidate string) float64 {
	query, target := Normalize(title), Normalize(candidate)
	if query == "" || target == "" {
		return 0
	}
	if query == target {
		return ExactMatch
	}
	return dice(strings.Fields(query), strings.Fields(target)) + subsequenceBonus(query, target)
}

func rank[T any](title string, candidates []T, name func(T) string) []Scored[T] {
	scored := make([]Scored[T], len(candidates))
	for i, candidate := range candidates {
		scored[i] = Scored[T]{Item: candidate, Score: Score(title, name(candidate))}
	}
	slices.SortStableFunc(scored, func(a, b Scored[T]) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return scored
}

func items[T any](scored []Scored[T]) []T {
	out := make([]T, len(scored))
	for i, s := range scored {
		out[i] = s.Item
	}
	return out
}

// # Normalization

// Normalize folds a title to lowercase ASCII-ish words separated by single spaces.
func Normalize(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		case r == '\'' || r == '’':
			return -1
		default:
			return ' '
		}
	}, folded)

	return strings.Join(strings.Fields(cleaned), " ")
}

// dice is the Sørensen-Dice coefficient of two token sets.
func dice(a, b []string) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	shared := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(setA)+len(setB))
}

// subsequenceBonus rewards candidates containing the query's characters in
// order, scaled by the share of the candidate the query covers.
func subsequenceBonus(query, target string) float64 {
	matches := fuzzy.Find(query, []string{target})
	if len(matches) == 0 {
		return 0
	}

	coverage := float64(len([]rune(query))) / float64(len([]rune(target)))
	return FuzzyBonus * min(coverage, 1)
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}
