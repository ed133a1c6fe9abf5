package types

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Category represents the kind of venue an item describes
type Category string

const (
	CategoryFood          Category = "food"
	CategoryEntertainment Category = "entertainment"
	CategoryActivity      Category = "activity"
)

// AllCategories lists every category in display order.
var AllCategories = []Category{CategoryFood, CategoryEntertainment, CategoryActivity}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return slices.Contains(AllCategories, c)
}

// DisplayName returns the human-readable category label.
func (c Category) DisplayName() string {
	switch c {
	case CategoryFood:
		return "Food"
	case CategoryEntertainment:
		return "Entertainment"
	case CategoryActivity:
		return "Activity"
	default:
		return string(c)
	}
}

// PriceTier represents the relative cost of an item
type PriceTier string

const (
	PriceCheap     PriceTier = "cheap"
	PriceModerate  PriceTier = "moderate"
	PriceExpensive PriceTier = "expensive"
)

// AllPriceTiers lists every price tier from cheapest to most expensive.
var AllPriceTiers = []PriceTier{PriceCheap, PriceModerate, PriceExpensive}

// ParsePriceTier accepts either the tier name or its dollar-sign symbol.
func ParsePriceTier(s string) (PriceTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cheap", "$":
		return PriceCheap, nil
	case "moderate", "$$":
		return PriceModerate, nil
	case "expensive", "$$$":
		return PriceExpensive, nil
	}
	return "", fmt.Errorf("unknown price tier %q", s)
}

// Valid reports whether p is one of the known tiers.
func (p PriceTier) Valid() bool {
	return slices.Contains(AllPriceTiers, p)
}

// Symbol renders the tier as "$", "$$" or "$$$".
func (p PriceTier) Symbol() string {
	switch p {
	case PriceCheap:
		return "$"
	case PriceModerate:
		return "$$"
	case PriceExpensive:
		return "$$$"
	default:
		return string(p)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so catalogs and requests
// may use either form.
func (p *PriceTier) UnmarshalText(text []byte) error {
	parsed, err := ParsePriceTier(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// TagGroup marks items that suit groups.
const TagGroup = "group"

// Item represents a single catalog entry. Items are treated as immutable.
type Item struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Category   Category  `json:"category" yaml:"category"`
	Rating     float64   `json:"rating" yaml:"rating"`
	Price      PriceTier `json:"price" yaml:"price"`
	DistanceKm float64   `json:"distance_km" yaml:"distance_km"`
	Tags       []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// HasTag reports whether the item carries the given tag.
func (it Item) HasTag(tag string) bool {
	return slices.Contains(it.Tags, tag)
}

// Preferences is the filter context used when ranking.
type Preferences struct {
	Categories    []Category  `json:"categories"`
	MaxDistanceKm float64     `json:"max_distance_km"`
	PricePrefs    []PriceTier `json:"price_prefs,omitempty"`
}

// IncludesCategory reports whether c is among the included categories.
func (p Preferences) IncludesCategory(c Category) bool {
	return slices.Contains(p.Categories, c)
}

// PrefersPrice reports whether tier is among the preferred price tiers.
func (p Preferences) PrefersPrice(tier PriceTier) bool {
	return slices.Contains(p.PricePrefs, tier)
}

// Clone returns a copy that shares no slices with p.
func (p Preferences) Clone() Preferences {
	return Preferences{
		Categories:    slices.Clone(p.Categories),
		MaxDistanceKm: p.MaxDistanceKm,
		PricePrefs:    slices.Clone(p.PricePrefs),
	}
}

// ScoredItem is an Item annotated with the score computed for one ranking call.
type ScoredItem struct {
	Item
	Score float64 `json:"score"`
}

// GameName identifies which experience produced a win.
type GameName string

const (
	GameRandomizer GameName = "randomizer"
	GameSwipe      GameName = "swipe"
	GameClaw       GameName = "claw"
)

// Win records one point-awarding event. Timestamp is Unix milliseconds.
type Win struct {
	Game      GameName `json:"game"`
	Label     string   `json:"label"`
	Timestamp int64    `json:"timestamp"`
	XP        int      `json:"xp"`
}

// Time returns the win timestamp as a time.Time.
func (w Win) Time() time.Time {
	return time.UnixMilli(w.Timestamp)
}

// WinInfo describes a win before the ledger stamps it.
type WinInfo struct {
	Game  GameName `json:"game"`
	Label string   `json:"label"`
}

// LedgerSnapshot is a point-in-time copy of the experience ledger.
type LedgerSnapshot struct {
	XP         int   `json:"xp"`
	RecentWins []Win `json:"recent_wins"`
	Ready      bool  `json:"ready"`
}

const kmToMiles = 0.621371

// FormatDistance renders a distance in kilometres as miles with one decimal.
func FormatDistance(km float64) string {
	return fmt.Sprintf("%.1f mi", km*kmToMiles)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string      `json:"status"`
	Version     string      `json:"version"`
	CatalogSize int         `json:"catalog_size"`
	LedgerReady bool        `json:"ledger_ready"`
	Store       *StoreStats `json:"store,omitempty"`
}

// StoreStats represents aggregate statistics about the key-value store
type StoreStats struct {
	KeyCount    int64      `json:"key_count"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// RankResponse represents the response from ranking the catalog
type RankResponse struct {
	Preferences Preferences  `json:"preferences"`
	Items       []ScoredItem `json:"items"`
}

// PickRequest represents a request for a weighted pick
type PickRequest struct {
	Preferences *Preferences `json:"preferences,omitempty"`
	Limit       int          `json:"limit,omitempty"`
}

// PickResponse represents the item chosen by a weighted pick
type PickResponse struct {
	Item       ScoredItem `json:"item"`
	Candidates int        `json:"candidates"`
}

// SpinResponse represents the outcome of a wheel spin
type SpinResponse struct {
	Segments []ScoredItem `json:"segments"`
	Result   ScoredItem   `json:"result"`
	XP       int          `json:"xp"`
	Total    int          `json:"total_xp"`
}

// SwipeDirection is the user's decision on a swipe card.
type SwipeDirection string

const (
	SwipeLike SwipeDirection = "like"
	SwipeSkip SwipeDirection = "skip"
)

// SwipeRequest represents a swipe on the current card
type SwipeRequest struct {
	Direction SwipeDirection `json:"direction"`
}

// DeckState represents the visible state of a swipe deck
type DeckState struct {
	ID        string      `json:"id"`
	Current   *ScoredItem `json:"current,omitempty"`
	Remaining int         `json:"remaining"`
	Likes     []Item      `json:"likes"`
	Skips     []Item      `json:"skips"`
	Done      bool        `json:"done"`
}

// SwipeResponse represents the result of one swipe
type SwipeResponse struct {
	Deck  DeckState `json:"deck"`
	XP    int       `json:"xp"`
	Total int       `json:"total_xp"`
}

// Prize is one slot of the claw machine.
type Prize struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// GrabResponse represents the outcome of a claw grab
type GrabResponse struct {
	Slot  int    `json:"slot"`
	Prize Prize  `json:"prize"`
	XP    int    `json:"xp"`
	Total int    `json:"total_xp"`
	Label string `json:"label"`
}

// AwardRequest represents a manual XP award
type AwardRequest struct {
	Amount int      `json:"amount"`
	Win    *WinInfo `json:"win,omitempty"`
}

// MaxDistanceRequest updates the distance cap alone
type MaxDistanceRequest struct {
	MaxDistanceKm *float64 `json:"max_distance_km"`
}

// PricePrefsRequest replaces the preferred price tiers alone
type PricePrefsRequest struct {
	PricePrefs []PriceTier `json:"price_prefs"`
}
