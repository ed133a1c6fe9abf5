package games

import (
	"fmt"
	"log/slog"

	"github.com/hyperengineering/nextbest/internal/metrics"
	"github.com/hyperengineering/nextbest/internal/rank"
	"github.com/hyperengineering/nextbest/internal/types"
)

type prizeSlot struct {
	prize types.Prize
	// base is the fixed award; spread > 0 adds a uniform bonus in [0, spread).
	base   int
	spread int
}

var prizeSlots = []prizeSlot{
	{prize: types.Prize{Icon: "⭐", Label: "+5 XP"}, base: 5},
	{prize: types.Prize{Icon: "⭐", Label: "+10 XP"}, base: 10},
	{prize: types.Prize{Icon: "⭐", Label: "+15 XP"}, base: 15},
	{prize: types.Prize{Icon: "⭐", Label: "+20 XP"}, base: 20},
	{prize: types.Prize{Icon: "🎁", Label: "Mystery +5–25 XP"}, base: 5, spread: 21},
}

// Prizes returns the claw machine's prize row in slot order.
func Prizes() []types.Prize {
	out := make([]types.Prize, len(prizeSlots))
	for i, s := range prizeSlots {
		out[i] = s.prize
	}
	return out
}

// Claw drops on a uniformly chosen prize slot.
type Claw struct {
	src    rank.RandomSource
	ledger Ledger
}

// NewClaw creates a Claw drawing from src.
func NewClaw(src rank.RandomSource, ledger Ledger) *Claw {
	return &Claw{src: src, ledger: ledger}
}

// Grab picks a slot, resolves its award, and credits the ledger.
func (c *Claw) Grab() types.GrabResponse {
	slot := rank.IntN(c.src, len(prizeSlots))
	ps := prizeSlots[slot]

	xp := ps.base
	if ps.spread > 0 {
		xp += rank.IntN(c.src, ps.spread)
	}

	label := fmt.Sprintf("🕹️ %s", ps.prize.Label)
	c.ledger.Award(xp, &types.WinInfo{Game: types.GameClaw, Label: label})
	metrics.Picks.WithLabelValues(string(types.GameClaw)).Inc()

	slog.Debug("claw grabbed",
		"component", "games",
		"game", types.GameClaw,
		"slot", slot,
		"xp", xp,
	)

	return types.GrabResponse{
		Slot:  slot,
		Prize: ps.prize,
		XP:    xp,
		Total: c.ledger.XP(),
		Label: label,
	}
}
