// Package prefs holds the user's current filter preferences.
package prefs

import (
	"fmt"
	"slices"
	"sync"

	"github.com/hyperengineering/nextbest/internal/types"
	"github.com/hyperengineering/nextbest/internal/validation"
)

// DefaultMaxDistanceKm is the distance cap before the user changes it.
const DefaultMaxDistanceKm = 10

// Defaults returns the starting preferences: every category, 10 km, and no
// price preference.
func Defaults() types.Preferences {
	return types.Preferences{
		Categories:    slices.Clone(types.AllCategories),
		MaxDistanceKm: DefaultMaxDistanceKm,
	}
}

// State is the mutable, shared preference holder. Reads return copies.
type State struct {
	mu    sync.RWMutex
	prefs types.Preferences
}

// NewState creates a State holding initial.
func NewState(initial types.Preferences) *State {
	return &State{prefs: initial.Clone()}
}

// Get returns a copy of the current preferences.
func (s *State) Get() types.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.Clone()
}

// Set replaces the preferences after validation.
func (s *State) Set(p types.Preferences) error {
	if errs := validation.ValidatePreferences(p); len(errs) > 0 {
		return fmt.Errorf("invalid preferences: %s", errs[0].Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = p.Clone()
	return nil
}

// ToggleCategory includes c if it is excluded and excludes it otherwise.
// It returns the updated preferences.
func (s *State) ToggleCategory(c types.Category) (types.Preferences, error) {
	if !c.Valid() {
		return types.Preferences{}, fmt.Errorf("unknown category %q", c)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.prefs.Categories, c); i >= 0 {
		s.prefs.Categories = slices.Delete(s.prefs.Categories, i, i+1)
	} else {
		s.prefs.Categories = append(s.prefs.Categories, c)
	}
	return s.prefs.Clone(), nil
}

// SetMaxDistanceKm updates the distance cap.
func (s *State) SetMaxDistanceKm(km float64) error {
	if err := validation.ValidateNonNegative("max_distance_km", km); err != nil {
		return fmt.Errorf("invalid preferences: %s", err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.MaxDistanceKm = km
	return nil
}

// SetPricePrefs replaces the preferred price tiers. nil clears the preference.
func (s *State) SetPricePrefs(tiers []types.PriceTier) error {
	for _, t := range tiers {
		if !t.Valid() {
			return fmt.Errorf("unknown price tier %q", t)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.PricePrefs = slices.Clone(tiers)
	return nil
}
