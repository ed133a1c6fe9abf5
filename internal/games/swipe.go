package games

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/hyperengineering/nextbest/internal/metrics"
	"github.com/hyperengineering/nextbest/internal/rank"
	"github.com/hyperengineering/nextbest/internal/types"
)

const (
	// DeckSize is how many top-ranked items a new deck holds.
	DeckSize = 10
	// LikeXP and SkipXP are awarded per swipe.
	LikeXP = 3
	SkipXP = 1
	// DefaultMaxDecks bounds how many decks are kept; the oldest is evicted.
	DefaultMaxDecks = 256
)

type deck struct {
	id    string
	cards []types.ScoredItem
	pos   int
	likes []types.Item
	skips []types.Item
}

func (d *deck) state() types.DeckState {
	s := types.DeckState{
		ID:        d.id,
		Remaining: len(d.cards) - d.pos,
		Likes:     slices.Clone(d.likes),
		Skips:     slices.Clone(d.skips),
		Done:      d.pos >= len(d.cards),
	}
	if s.Likes == nil {
		s.Likes = []types.Item{}
	}
	if s.Skips == nil {
		s.Skips = []types.Item{}
	}
	if !s.Done {
		card := d.cards[d.pos]
		s.Current = &card
	}
	return s
}

// Swipe manages swipe decks. Each deck walks the ranking one card at a time.
type Swipe struct {
	ledger   Ledger
	maxDecks int

	mu    sync.Mutex
	decks map[string]*deck
	order []string
}

// NewSwipe creates a deck manager keeping at most maxDecks decks.
// A non-positive maxDecks uses DefaultMaxDecks.
func NewSwipe(ledger Ledger, maxDecks int) *Swipe {
	if maxDecks <= 0 {
		maxDecks = DefaultMaxDecks
	}
	return &Swipe{
		ledger:   ledger,
		maxDecks: maxDecks,
		decks:    make(map[string]*deck),
	}
}

// NewDeck ranks items into a fresh deck. A deck with no matches is
// created already done.
func (s *Swipe) NewDeck(items []types.Item, prefs types.Preferences) types.DeckState {
	d := &deck{
		id:    ulid.Make().String(),
		cards: rank.Rank(items, prefs, DeckSize),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.order) >= s.maxDecks {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.decks, oldest)
	}
	s.decks[d.id] = d
	s.order = append(s.order, d.id)

	slog.Debug("deck created",
		"component", "games",
		"game", types.GameSwipe,
		"deck_id", d.id,
		"cards", len(d.cards),
	)
	return d.state()
}

// Deck returns the current state of a deck.
func (s *Swipe) Deck(id string) (types.DeckState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.decks[id]
	if !ok {
		return types.DeckState{}, ErrDeckNotFound
	}
	return d.state(), nil
}

// Swipe records a decision on the deck's current card and awards XP.
func (s *Swipe) Swipe(id string, dir types.SwipeDirection) (types.SwipeResponse, error) {
	var xp int
	var prefix string
	switch dir {
	case types.SwipeLike:
		xp, prefix = LikeXP, "👍"
	case types.SwipeSkip:
		xp, prefix = SkipXP, "👎"
	default:
		return types.SwipeResponse{}, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}

	s.mu.Lock()
	d, ok := s.decks[id]
	if !ok {
		s.mu.Unlock()
		return types.SwipeResponse{}, ErrDeckNotFound
	}
	if d.pos >= len(d.cards) {
		s.mu.Unlock()
		return types.SwipeResponse{}, ErrDeckExhausted
	}
	card := d.cards[d.pos]
	d.pos++
	if dir == types.SwipeLike {
		d.likes = append(d.likes, card.Item)
	} else {
		d.skips = append(d.skips, card.Item)
	}
	st := d.state()
	s.mu.Unlock()

	s.ledger.Award(xp, &types.WinInfo{
		Game:  types.GameSwipe,
		Label: fmt.Sprintf("%s %s", prefix, card.Name),
	})
	metrics.Picks.WithLabelValues(string(types.GameSwipe)).Inc()

	return types.SwipeResponse{
		Deck:  st,
		XP:    xp,
		Total: s.ledger.XP(),
	}, nil
}

// Len returns the number of decks currently held.
func (s *Swipe) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.decks)
}
