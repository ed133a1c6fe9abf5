package games

import (
	"fmt"
	"log/slog"

	"github.com/hyperengineering/nextbest/internal/metrics"
	"github.com/hyperengineering/nextbest/internal/rank"
	"github.com/hyperengineering/nextbest/internal/types"
)

const (
	// WheelSegments is how many top-ranked items go on the wheel.
	WheelSegments = 8
	// SpinXP is awarded for every completed spin.
	SpinXP = 5
)

// Randomizer spins a wheel of the best matches and lands on one by weight.
type Randomizer struct {
	src    rank.RandomSource
	ledger Ledger
}

// NewRandomizer creates a Randomizer drawing from src.
func NewRandomizer(src rank.RandomSource, ledger Ledger) *Randomizer {
	return &Randomizer{src: src, ledger: ledger}
}

// Spin ranks items, picks one of the top WheelSegments, and awards SpinXP.
// Returns rank.ErrNoCandidates when nothing matches prefs.
func (r *Randomizer) Spin(items []types.Item, prefs types.Preferences) (types.SpinResponse, error) {
	segments := rank.Rank(items, prefs, WheelSegments)
	result, err := rank.WeightedPick(r.src, segments)
	if err != nil {
		return types.SpinResponse{}, err
	}

	r.ledger.Award(SpinXP, &types.WinInfo{
		Game:  types.GameRandomizer,
		Label: fmt.Sprintf("🎯 %s", result.Name),
	})
	metrics.Picks.WithLabelValues(string(types.GameRandomizer)).Inc()

	slog.Debug("wheel spun",
		"component", "games",
		"game", types.GameRandomizer,
		"segments", len(segments),
		"item_id", result.ID,
	)

	return types.SpinResponse{
		Segments: segments,
		Result:   result,
		XP:       SpinXP,
		Total:    r.ledger.XP(),
	}, nil
}
