// Package game holds the canonical data model shared by the tracking and
// archival pipelines: Player, Ball, Moment and Event. Both pipelines
// converge on these types via the frame normalizer, so everything
// downstream (metrics, playback, storage, reports) sees one representation.
package game

import (
	"errors"
	"fmt"

	"github.com/courtside-data/spacing.report/internal/court"
)

// Side identifies team membership within a Moment.
type Side int

const (
	SideHome Side = iota
	SideAway
)

func (s Side) String() string {
	if s == SideHome {
		return "home"
	}
	return "away"
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

// RosterSize is the number of players a complete Moment carries.
const RosterSize = 10

// PlayersPerSide is the number of players each team fields.
const PlayersPerSide = 5

// Validation failure modes for canonical records.
var (
	ErrIncompleteRoster = errors.New("incomplete roster")
	ErrMalformedRoster  = errors.New("malformed roster")
)

// Player is one player's canonical state at a single instant. Positions are
// court feet (x in [0,94], y in [0,50]). Imputed marks positions carried
// forward from a stale track rather than directly observed.
type Player struct {
	Side     Side        `json:"side"`
	PlayerID int64       `json:"player_id"`
	Position court.Point `json:"position"`
	Imputed  bool        `json:"imputed"`
}

// Ball is the ball's canonical state. Radius doubles as a height-above-floor
// proxy in archival feeds.
type Ball struct {
	Position court.Point `json:"position"`
	Radius   float64     `json:"radius"`
	Imputed  bool        `json:"imputed"`
}

// Moment is one canonical frame: the full ten-player roster plus the ball,
// with game context. Moments are value objects; construct once, share
// read-only.
type Moment struct {
	Quarter   int
	GameClock float64
	ShotClock *float64
	FrameIdx  int

	Ball    Ball
	Players []Player

	// Degraded marks frames normalized from an incomplete or
	// low-confidence track set. Degraded moments stay in the sequence but
	// are excluded from event aggregates.
	Degraded bool
}

// PlayersOn returns the players on the given side, in roster order.
func (m *Moment) PlayersOn(side Side) []Player {
	out := make([]Player, 0, PlayersPerSide)
	for _, p := range m.Players {
		if p.Side == side {
			out = append(out, p)
		}
	}
	return out
}

// BallHandler returns the player nearest the ball if within threshold feet,
// or false when nobody is close enough to plausibly have possession.
func (m *Moment) BallHandler(threshold float64) (Player, bool) {
	var best Player
	bestDist := threshold
	found := false
	for _, p := range m.Players {
		d := court.Distance(p.Position, m.Ball.Position)
		if d <= bestDist {
			bestDist = d
			best = p
			found = true
		}
	}
	return best, found
}

// ValidateRoster enforces the canonical invariant: exactly ten players,
// five per side. Violations are rejected, never silently padded.
func ValidateRoster(players []Player) error {
	if len(players) != RosterSize {
		return fmt.Errorf("%w: %d players, want %d", ErrIncompleteRoster, len(players), RosterSize)
	}
	home, away := 0, 0
	for _, p := range players {
		switch p.Side {
		case SideHome:
			home++
		case SideAway:
			away++
		default:
			return fmt.Errorf("%w: unknown side %d", ErrMalformedRoster, p.Side)
		}
	}
	if home != PlayersPerSide || away != PlayersPerSide {
		return fmt.Errorf("%w: %d home / %d away, want %d each", ErrMalformedRoster, home, away, PlayersPerSide)
	}
	return nil
}
