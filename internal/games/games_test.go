package games

import (
	"errors"
	"sync"
	"testing"

	"github.com/hyperengineering/nextbest/internal/catalog"
	"github.com/hyperengineering/nextbest/internal/prefs"
	"github.com/hyperengineering/nextbest/internal/rank"
	"github.com/hyperengineering/nextbest/internal/types"
)

// mockLedger implements Ledger for testing
type mockLedger struct {
	mu     sync.Mutex
	xp     int
	awards []award
}

type award struct {
	amount int
	win    *types.WinInfo
}

func (m *mockLedger) Award(amount int, win *types.WinInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.xp = max(0, m.xp+amount)
	m.awards = append(m.awards, award{amount: amount, win: win})
}

func (m *mockLedger) XP() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.xp
}

func testItems() []types.Item {
	return []types.Item{
		// score 2*5 + (6-1) = 15
		{ID: "a", Name: "Alpha Grill", Category: types.CategoryFood, Rating: 5, Price: types.PriceModerate, DistanceKm: 1},
		// score 2*1 + (6-5) = 3
		{ID: "b", Name: "Beta Bowl", Category: types.CategoryFood, Rating: 1, Price: types.PriceCheap, DistanceKm: 5},
		// out of range
		{ID: "c", Name: "Far Cafe", Category: types.CategoryFood, Rating: 5, Price: types.PriceCheap, DistanceKm: 50},
	}
}

func testPrefs() types.Preferences {
	return types.Preferences{
		Categories:    []types.Category{types.CategoryFood},
		MaxDistanceKm: 10,
	}
}

func TestSpin_PicksAndAwards(t *testing.T) {
	tests := []struct {
		name   string
		draw   float64
		wantID string
	}{
		{name: "low draw lands on top item", draw: 0, wantID: "a"},
		{name: "high draw lands on second item", draw: 0.99, wantID: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &mockLedger{}
			r := NewRandomizer(rank.NewSequenceSource(tt.draw), ledger)

			resp, err := r.Spin(testItems(), testPrefs())
			if err != nil {
				t.Fatalf("Spin() error = %v", err)
			}
			if resp.Result.ID != tt.wantID {
				t.Errorf("Result.ID = %q, want %q", resp.Result.ID, tt.wantID)
			}
			if len(resp.Segments) != 2 {
				t.Errorf("len(Segments) = %d, want 2", len(resp.Segments))
			}
			if resp.XP != SpinXP || resp.Total != SpinXP {
				t.Errorf("XP = %d, Total = %d, want %d", resp.XP, resp.Total, SpinXP)
			}
			if len(ledger.awards) != 1 {
				t.Fatalf("awards = %d, want 1", len(ledger.awards))
			}
			win := ledger.awards[0].win
			if win.Game != types.GameRandomizer || win.Label != "🎯 "+resp.Result.Name {
				t.Errorf("win = %+v", win)
			}
		})
	}
}

func TestSpin_CapsSegments(t *testing.T) {
	r := NewRandomizer(rank.SeededSource(1), &mockLedger{})
	resp, err := r.Spin(catalog.Default().Items(), prefs.Defaults())
	if err != nil {
		t.Fatalf("Spin() error = %v", err)
	}
	if len(resp.Segments) > WheelSegments {
		t.Errorf("len(Segments) = %d, want <= %d", len(resp.Segments), WheelSegments)
	}
	found := false
	for _, s := range resp.Segments {
		if s.ID == resp.Result.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("result %q not among segments", resp.Result.ID)
	}
}

func TestSpin_NoCandidates(t *testing.T) {
	ledger := &mockLedger{}
	r := NewRandomizer(rank.NewSequenceSource(0.5), ledger)

	p := testPrefs()
	p.Categories = nil
	_, err := r.Spin(testItems(), p)
	if !errors.Is(err, rank.ErrNoCandidates) {
		t.Fatalf("Spin() error = %v, want ErrNoCandidates", err)
	}
	if len(ledger.awards) != 0 {
		t.Error("award recorded for a failed spin")
	}
}

func TestGrab(t *testing.T) {
	tests := []struct {
		name      string
		draws     []float64
		wantSlot  int
		wantXP    int
		wantLabel string
	}{
		{name: "first slot", draws: []float64{0}, wantSlot: 0, wantXP: 5, wantLabel: "🕹️ +5 XP"},
		{name: "fourth slot", draws: []float64{0.6}, wantSlot: 3, wantXP: 20, wantLabel: "🕹️ +20 XP"},
		{name: "mystery low", draws: []float64{0.8, 0}, wantSlot: 4, wantXP: 5, wantLabel: "🕹️ Mystery +5–25 XP"},
		{name: "mystery high", draws: []float64{0.99, 0.999}, wantSlot: 4, wantXP: 25, wantLabel: "🕹️ Mystery +5–25 XP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &mockLedger{}
			c := NewClaw(rank.NewSequenceSource(tt.draws...), ledger)

			resp := c.Grab()
			if resp.Slot != tt.wantSlot {
				t.Errorf("Slot = %d, want %d", resp.Slot, tt.wantSlot)
			}
			if resp.XP != tt.wantXP {
				t.Errorf("XP = %d, want %d", resp.XP, tt.wantXP)
			}
			if resp.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", resp.Label, tt.wantLabel)
			}
			if resp.Total != tt.wantXP {
				t.Errorf("Total = %d, want %d", resp.Total, tt.wantXP)
			}
			if got := ledger.awards[0]; got.amount != tt.wantXP || got.win.Game != types.GameClaw {
				t.Errorf("award = %+v", got)
			}
		})
	}
}

func TestGrab_MysteryRange(t *testing.T) {
	c := NewClaw(rank.SeededSource(7), &mockLedger{})
	for i := 0; i < 2000; i++ {
		resp := c.Grab()
		if resp.Slot < 0 || resp.Slot >= len(Prizes()) {
			t.Fatalf("Slot = %d out of range", resp.Slot)
		}
		if resp.XP < 5 || resp.XP > 25 {
			t.Fatalf("XP = %d out of [5, 25]", resp.XP)
		}
	}
}

func TestPrizes(t *testing.T) {
	p := Prizes()
	if len(p) != 5 {
		t.Fatalf("len(Prizes()) = %d, want 5", len(p))
	}
	if p[4].Icon != "🎁" {
		t.Errorf("mystery icon = %q", p[4].Icon)
	}
	p[0].Label = "changed"
	if Prizes()[0].Label != "+5 XP" {
		t.Error("Prizes() exposed internal state")
	}
}

func TestSwipe_Flow(t *testing.T) {
	ledger := &mockLedger{}
	s := NewSwipe(ledger, 0)

	st := s.NewDeck(testItems(), testPrefs())
	if st.ID == "" {
		t.Fatal("deck has no ID")
	}
	if st.Remaining != 2 || st.Done || st.Current == nil || st.Current.ID != "a" {
		t.Fatalf("new deck = %+v", st)
	}

	resp, err := s.Swipe(st.ID, types.SwipeLike)
	if err != nil {
		t.Fatalf("Swipe(like) error = %v", err)
	}
	if resp.XP != LikeXP || resp.Total != LikeXP {
		t.Errorf("like XP = %d, Total = %d", resp.XP, resp.Total)
	}
	if resp.Deck.Current == nil || resp.Deck.Current.ID != "b" || len(resp.Deck.Likes) != 1 {
		t.Errorf("deck after like = %+v", resp.Deck)
	}
	if ledger.awards[0].win.Label != "👍 Alpha Grill" {
		t.Errorf("like label = %q", ledger.awards[0].win.Label)
	}

	resp, err = s.Swipe(st.ID, types.SwipeSkip)
	if err != nil {
		t.Fatalf("Swipe(skip) error = %v", err)
	}
	if resp.XP != SkipXP || resp.Total != LikeXP+SkipXP {
		t.Errorf("skip XP = %d, Total = %d", resp.XP, resp.Total)
	}
	if !resp.Deck.Done || resp.Deck.Current != nil || resp.Deck.Remaining != 0 {
		t.Errorf("deck after skip = %+v", resp.Deck)
	}
	if len(resp.Deck.Skips) != 1 || resp.Deck.Skips[0].ID != "b" {
		t.Errorf("skips = %v", resp.Deck.Skips)
	}
	if ledger.awards[1].win.Label != "👎 Beta Bowl" {
		t.Errorf("skip label = %q", ledger.awards[1].win.Label)
	}

	if _, err := s.Swipe(st.ID, types.SwipeLike); !errors.Is(err, ErrDeckExhausted) {
		t.Errorf("Swipe() on done deck error = %v, want ErrDeckExhausted", err)
	}

	got, err := s.Deck(st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Done || len(got.Likes) != 1 || len(got.Skips) != 1 {
		t.Errorf("Deck() = %+v", got)
	}
}

func TestSwipe_Errors(t *testing.T) {
	ledger := &mockLedger{}
	s := NewSwipe(ledger, 0)
	st := s.NewDeck(testItems(), testPrefs())

	if _, err := s.Swipe("missing", types.SwipeLike); !errors.Is(err, ErrDeckNotFound) {
		t.Errorf("unknown deck error = %v, want ErrDeckNotFound", err)
	}
	if _, err := s.Deck("missing"); !errors.Is(err, ErrDeckNotFound) {
		t.Errorf("Deck(unknown) error = %v, want ErrDeckNotFound", err)
	}
	if _, err := s.Swipe(st.ID, "superlike"); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("bad direction error = %v, want ErrInvalidDirection", err)
	}
	if len(ledger.awards) != 0 {
		t.Errorf("awards = %d, want 0 after failed swipes", len(ledger.awards))
	}
}

func TestSwipe_EmptyDeckIsDone(t *testing.T) {
	s := NewSwipe(&mockLedger{}, 0)
	p := testPrefs()
	p.MaxDistanceKm = 0.5

	st := s.NewDeck(testItems(), p)
	if !st.Done || st.Current != nil || st.Remaining != 0 {
		t.Errorf("empty deck = %+v", st)
	}
	if st.Likes == nil || st.Skips == nil {
		t.Error("likes/skips should be empty, not nil")
	}
	if _, err := s.Swipe(st.ID, types.SwipeSkip); !errors.Is(err, ErrDeckExhausted) {
		t.Errorf("error = %v, want ErrDeckExhausted", err)
	}
}

func TestSwipe_EvictsOldest(t *testing.T) {
	s := NewSwipe(&mockLedger{}, 2)
	first := s.NewDeck(testItems(), testPrefs())
	second := s.NewDeck(testItems(), testPrefs())
	third := s.NewDeck(testItems(), testPrefs())

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if _, err := s.Deck(first.ID); !errors.Is(err, ErrDeckNotFound) {
		t.Errorf("oldest deck still present: %v", err)
	}
	for _, id := range []string{second.ID, third.ID} {
		if _, err := s.Deck(id); err != nil {
			t.Errorf("Deck(%s) error = %v", id, err)
		}
	}
}
