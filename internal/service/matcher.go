package service

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/rasoihub/backend/internal/models"
)

// Match strategy labels, reported on every candidate.
const (
	MatchExact         = "exact"
	MatchAlternateName = "alternate_name"
	MatchFuzzy         = "fuzzy"
	MatchSubstring     = "substring"
	MatchManual        = "manual"
)

// Confidence bands. These are policy constants shared with every other client
// of the import API, not tunables.
const (
	ExactConfidence         = 1.0
	AlternateNameConfidence = 0.85
	SubstringConfidence     = 0.75
	// AutoAcceptThreshold doubles as the fuzzy-strategy floor: fuzzy candidates
	// below it are never reported, and BestMatch refuses anything below it.
	AutoAcceptThreshold = 0.40
)

// MatchCandidate is one ranked suggestion for mapping a global ingredient onto
// a restaurant inventory row.
type MatchCandidate struct {
	IngredientID uuid.UUID `json:"ingredient_id"`
	Name         string    `json:"name"`
	Confidence   float64   `json:"similarity_score"`
	MatchType    string    `json:"match_type"`
	CurrentStock float64   `json:"current_stock"`
	Unit         string    `json:"unit"`
}

// matchTarget is the normalized view of a global ingredient.
type matchTarget struct {
	name       string
	alternates []string
}

// matchStrategy scores one inventory row name against the target.
type matchStrategy struct {
	label string
	// gated strategies run only when no earlier strategy matched the row.
	gated bool
	eval  func(t matchTarget, rowName string) (float64, bool)
}

// strategies are evaluated per row in priority order; the dedupe step keeps the
// highest-scoring hit per row, so adding a strategy is a pure extension.
var strategies = []matchStrategy{
	{label: MatchExact, eval: func(t matchTarget, rowName string) (float64, bool) {
		return ExactConfidence, t.name == rowName
	}},
	{label: MatchAlternateName, eval: func(t matchTarget, rowName string) (float64, bool) {
		for _, alt := range t.alternates {
			if alt == rowName {
				return AlternateNameConfidence, true
			}
		}
		return 0, false
	}},
	{label: MatchFuzzy, eval: func(t matchTarget, rowName string) (float64, bool) {
		ratio := nameSimilarity(t.name, rowName)
		return ratio, ratio >= AutoAcceptThreshold
	}},
	{label: MatchSubstring, gated: true, eval: func(t matchTarget, rowName string) (float64, bool) {
		return SubstringConfidence, strings.Contains(rowName, t.name) || strings.Contains(t.name, rowName)
	}},
}

// IngredientMatcher decides which inventory rows are acceptable substitutes
// for a global ingredient. It holds no state and performs no I/O; the caller
// hands it the inventory snapshot, so it is safe for concurrent use.
type IngredientMatcher struct{}

func NewIngredientMatcher() *IngredientMatcher {
	return &IngredientMatcher{}
}

// NormalizeName lowercases, trims and folds hyphens/underscores to spaces.
// Every comparison runs on this form; display keeps the original name.
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", " ")
	n = strings.ReplaceAll(n, "_", " ")
	return n
}

// nameSimilarity is the longest-matching-blocks ratio in [0,1] over the two
// strings, character by character.
func nameSimilarity(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

// FindMatches ranks every plausible inventory substitute for the global
// ingredient, highest confidence first. An empty result is a normal outcome,
// not an error. Ties keep inventory order.
func (m *IngredientMatcher) FindMatches(global *models.GlobalIngredient, inventory []models.Ingredient) []MatchCandidate {
	if len(inventory) == 0 {
		return nil
	}

	target := matchTarget{name: NormalizeName(global.Name)}
	for _, alt := range global.AlternateNames {
		target.alternates = append(target.alternates, NormalizeName(alt))
	}

	var candidates []MatchCandidate
	for _, row := range inventory {
		rowName := NormalizeName(row.Name)

		// Best hit for this row across all strategies; strict > keeps the
		// earliest (highest-priority) strategy on equal scores.
		best := MatchCandidate{Confidence: -1}
		matched := false
		for _, s := range strategies {
			if s.gated && matched {
				continue
			}
			score, ok := s.eval(target, rowName)
			if !ok {
				continue
			}
			matched = true
			if score > best.Confidence {
				best = MatchCandidate{
					IngredientID: row.ID,
					Name:         row.Name,
					Confidence:   score,
					MatchType:    s.label,
					CurrentStock: row.Quantity,
					Unit:         row.Unit,
				}
			}
		}
		if matched {
			candidates = append(candidates, best)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates
}

// BestMatch returns the top-ranked candidate, or nil when nothing clears the
// auto-accept threshold. This is the gate automatic imports use.
func (m *IngredientMatcher) BestMatch(global *models.GlobalIngredient, inventory []models.Ingredient) *MatchCandidate {
	matches := m.FindMatches(global, inventory)
	if len(matches) == 0 {
		return nil
	}
	if matches[0].Confidence >= AutoAcceptThreshold {
		best := matches[0]
		return &best
	}
	return nil
}
