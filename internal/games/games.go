// Package games implements the decision games that draw from the ranked
// catalog and award experience points.
package games

import (
	"errors"

	"github.com/hyperengineering/nextbest/internal/types"
)

var (
	// ErrDeckNotFound is returned when a swipe deck ID is unknown or evicted.
	ErrDeckNotFound = errors.New("deck not found")
	// ErrDeckExhausted is returned when swiping a deck with no cards left.
	ErrDeckExhausted = errors.New("deck exhausted")
	// ErrInvalidDirection is returned for a swipe that is neither like nor skip.
	ErrInvalidDirection = errors.New("invalid swipe direction")
)

// Ledger is the subset of the XP ledger the games award through.
type Ledger interface {
	Award(amount int, win *types.WinInfo)
	XP() int
}
