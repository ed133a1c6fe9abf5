// Package ledger keeps the experience point total and the most recent wins,
// loading them once from durable storage and re-persisting after every change.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hyperengineering/nextbest/internal/metrics"
	"github.com/hyperengineering/nextbest/internal/store"
	"github.com/hyperengineering/nextbest/internal/types"
)

const (
	// KeyXP holds the decimal XP total.
	KeyXP = "xp"
	// KeyWins holds the JSON array of recent wins, newest first.
	KeyWins = "wins"
	// MaxRecentWins caps the win history.
	MaxRecentWins = 10
)

// Storage is the durable read side the ledger loads from.
type Storage interface {
	GetValue(ctx context.Context, key string) (string, error)
}

// Writer accepts full key-value sets for asynchronous persistence.
// Enqueue must not block on I/O.
type Writer interface {
	Enqueue(values map[string]string)
}

// mutation is a change applied before the ledger became ready, replayed on
// top of the loaded state.
type mutation func(*state, time.Time)

type state struct {
	xp   int
	wins []types.Win
}

// Ledger is the process-wide XP ledger. All methods are safe for concurrent use.
type Ledger struct {
	writer Writer
	now    func() time.Time

	mu      sync.Mutex
	st      state
	ready   bool
	queued  []queuedMutation
	loading bool
}

type queuedMutation struct {
	apply mutation
	at    time.Time
}

// New creates an uninitialized ledger that persists through w.
func New(w Writer) *Ledger {
	return &Ledger{
		writer: w,
		now:    time.Now,
		st:     state{wins: []types.Win{}},
	}
}

// ErrAlreadyLoaded is returned when Load is called more than once.
var ErrAlreadyLoaded = errors.New("ledger already loaded")

// Load reads the persisted state and makes the ledger ready. Read failures
// and malformed values fall back to defaults; the ledger becomes ready
// either way, unless ctx ends first, in which case Load returns ctx.Err()
// and may be called again. Mutations made before Load are replayed on the
// loaded state.
func (l *Ledger) Load(ctx context.Context, s Storage) error {
	l.mu.Lock()
	if l.ready || l.loading {
		l.mu.Unlock()
		return ErrAlreadyLoaded
	}
	l.loading = true
	l.mu.Unlock()

	loaded := state{
		xp:   parseXP(readKey(ctx, s, KeyXP)),
		wins: parseWins(readKey(ctx, s, KeyWins)),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Reads cut short by cancellation say nothing about the stored state.
	// Stay unready and keep the queue so defaults never overwrite it.
	if err := ctx.Err(); err != nil {
		l.loading = false
		return err
	}

	for _, q := range l.queued {
		q.apply(&loaded, q.at)
	}
	replayed := len(l.queued)
	l.queued = nil
	l.st = loaded
	l.ready = true
	l.loading = false
	metrics.LedgerXP.Set(float64(l.st.xp))

	slog.Info("ledger loaded",
		"component", "ledger",
		"xp", l.st.xp,
		"wins", len(l.st.wins),
		"replayed", replayed,
	)

	if replayed > 0 {
		l.persistLocked()
	}
	return nil
}

func readKey(ctx context.Context, s Storage, key string) string {
	v, err := s.GetValue(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("ledger key unreadable, using default",
				"component", "ledger",
				"key", key,
				"error", err,
			)
		}
		return ""
	}
	return v
}

func parseXP(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("ledger xp malformed, using 0", "component", "ledger", "value", raw)
		return 0
	}
	return max(0, n)
}

func parseWins(raw string) []types.Win {
	if raw == "" {
		return []types.Win{}
	}
	var wins []types.Win
	if err := json.Unmarshal([]byte(raw), &wins); err != nil {
		slog.Warn("ledger wins malformed, using empty history", "component", "ledger", "error", err)
		return []types.Win{}
	}
	if wins == nil {
		return []types.Win{}
	}
	if len(wins) > MaxRecentWins {
		wins = wins[:MaxRecentWins]
	}
	return wins
}

// Award adds amount to the total, flooring at zero. With win non-nil a new
// Win stamped now is prepended to the history.
func (l *Ledger) Award(amount int, win *types.WinInfo) {
	var info *types.WinInfo
	if win != nil {
		copied := *win
		info = &copied
	}
	l.apply(func(s *state, at time.Time) {
		s.xp = max(0, s.xp+amount)
		if info == nil {
			return
		}
		w := types.Win{Game: info.Game, Label: info.Label, Timestamp: at.UnixMilli(), XP: amount}
		s.wins = append([]types.Win{w}, s.wins...)
		if len(s.wins) > MaxRecentWins {
			s.wins = s.wins[:MaxRecentWins]
		}
	})

	metrics.Awards.WithLabelValues(awardMetricLabel(info)).Inc()
	if amount > 0 {
		metrics.XPAwarded.Add(float64(amount))
	}
}

// awardMetricLabel keeps the awards counter to a fixed label set; game
// names arrive from callers and are otherwise unbounded.
func awardMetricLabel(info *types.WinInfo) string {
	switch {
	case info == nil:
		return "manual"
	case info.Game == types.GameRandomizer, info.Game == types.GameSwipe, info.Game == types.GameClaw:
		return string(info.Game)
	default:
		return "other"
	}
}

// Reset sets the total to zero and clears the history.
func (l *Ledger) Reset() {
	l.apply(func(s *state, _ time.Time) {
		s.xp = 0
		s.wins = []types.Win{}
	})
}

func (l *Ledger) apply(m mutation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	at := l.now()
	m(&l.st, at)
	metrics.LedgerXP.Set(float64(l.st.xp))

	if !l.ready {
		l.queued = append(l.queued, queuedMutation{apply: m, at: at})
		return
	}
	l.persistLocked()
}

func (l *Ledger) persistLocked() {
	if l.writer == nil {
		return
	}
	values, err := encode(l.st)
	if err != nil {
		slog.Error("ledger encode failed", "component", "ledger", "error", err)
		return
	}
	l.writer.Enqueue(values)
}

func encode(s state) (map[string]string, error) {
	wins, err := json.Marshal(s.wins)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		KeyXP:   strconv.Itoa(s.xp),
		KeyWins: string(wins),
	}, nil
}

// XP returns the current total.
func (l *Ledger) XP() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.st.xp
}

// RecentWins returns a copy of the history, newest first.
func (l *Ledger) RecentWins() []types.Win {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.st.wins)
}

// Ready reports whether Load has completed.
func (l *Ledger) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}

// Snapshot returns a consistent copy of the whole ledger.
func (l *Ledger) Snapshot() types.LedgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return types.LedgerSnapshot{
		XP:         l.st.xp,
		RecentWins: slices.Clone(l.st.wins),
		Ready:      l.ready,
	}
}
