package game

import (
	"fmt"
	"sort"

	"github.com/courtside-data/spacing.report/internal/court"
	"github.com/courtside-data/spacing.report/internal/track"
)

// NormalizerConfig tunes what counts as a trustworthy roster.
type NormalizerConfig struct {
	// MinConfidence is the detection confidence below which a track is
	// treated as imputed rather than observed.
	MinConfidence float64

	// MinTracks is the number of sufficiently confident tracks required for
	// a non-degraded frame.
	MinTracks int
}

// DefaultNormalizerConfig returns the normalizer defaults.
func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{
		MinConfidence: 0.5,
		MinTracks:     RosterSize,
	}
}

// BallObservation is a pixel-space ball sighting for one frame. Nil means the
// detector saw no ball this frame.
type BallObservation struct {
	Center court.Point
	Radius float64
}

// FrameContext carries the game-state annotations the tracking pipeline
// attaches to each frame.
type FrameContext struct {
	FrameIdx  int
	Quarter   int
	GameClock float64
	ShotClock *float64
}

// Normalizer converts tracker output into canonical Moments. It references
// (never owns) a fitted calibration transform and keeps the last seen ball so
// short detector dropouts carry forward instead of teleporting the ball to
// the origin.
type Normalizer struct {
	cfg       NormalizerConfig
	transform *court.Transform
	lastBall  *Ball
}

// NewNormalizer builds a normalizer over a fitted calibration transform.
func NewNormalizer(transform *court.Transform, cfg NormalizerConfig) *Normalizer {
	return &Normalizer{cfg: cfg, transform: transform}
}

// NormalizeTracks builds the canonical Moment for one frame from the
// tracker's active (Confirmed and Lost) tracks. Track positions are mapped
// into court feet through the calibration transform; team labels become
// home/away by light/dark vote across the whole set. When fewer than
// MinTracks sufficiently confident tracks exist, or a full set votes onto a
// lopsided side split, the Moment is still built, flagged Degraded, and
// returned together with an ErrIncompleteRoster or ErrMalformedRoster so the
// caller decides whether to keep it.
func (n *Normalizer) NormalizeTracks(fc FrameContext, tracks []*track.Track, ball *BallObservation) (Moment, error) {
	candidates := tracks
	if len(candidates) > RosterSize {
		// Over-full frame (spectator or referee tracks): keep the most
		// confident ten.
		candidates = append([]*track.Track(nil), tracks...)
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Confidence() > candidates[j].Confidence()
		})
		candidates = candidates[:RosterSize]
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].ID() < candidates[j].ID()
		})
	}

	m := Moment{
		Quarter:   fc.Quarter,
		GameClock: fc.GameClock,
		ShotClock: fc.ShotClock,
		FrameIdx:  fc.FrameIdx,
		Players:   make([]Player, 0, RosterSize),
	}

	confident := 0
	home, away := 0, 0
	for _, tr := range candidates {
		observed := tr.State() == track.StateConfirmed && tr.Confidence() >= n.cfg.MinConfidence
		if observed {
			confident++
		}

		var side Side
		switch tr.TeamLabel() {
		case track.TeamLight:
			side = SideHome
		case track.TeamDark:
			side = SideAway
		default:
			// No jersey evidence yet: balance onto the emptier side.
			side = SideHome
			if home > away {
				side = SideAway
			}
		}
		if side == SideHome {
			home++
		} else {
			away++
		}

		m.Players = append(m.Players, Player{
			Side:     side,
			PlayerID: tr.ID(),
			Position: n.transform.Apply(tr.Position(), court.PixelToCourt),
			Imputed:  !observed,
		})
	}

	m.Ball = n.normalizeBall(ball)

	if confident < n.cfg.MinTracks {
		m.Degraded = true
		return m, fmt.Errorf("%w: %d confident tracks, want %d",
			ErrIncompleteRoster, confident, n.cfg.MinTracks)
	}

	// A full set whose jersey vote landed lopsided is no cleaner than a
	// short one: keep the frame, but never let it pass as canonical.
	if len(m.Players) == RosterSize && (home != PlayersPerSide || away != PlayersPerSide) {
		m.Degraded = true
		return m, fmt.Errorf("%w: jersey vote split %d home / %d away, want %d each",
			ErrMalformedRoster, home, away, PlayersPerSide)
	}
	return m, nil
}

// normalizeBall maps a ball sighting into court space, or carries the last
// known ball forward as imputed when the detector lost it.
func (n *Normalizer) normalizeBall(obs *BallObservation) Ball {
	if obs != nil {
		b := Ball{
			Position: n.transform.Apply(obs.Center, court.PixelToCourt),
			Radius:   obs.Radius,
		}
		n.lastBall = &b
		return b
	}
	if n.lastBall != nil {
		carried := *n.lastBall
		carried.Imputed = true
		return carried
	}
	return Ball{Imputed: true}
}

// NormalizeRecord is the archival pass-through: it validates an
// already-canonical record against the roster invariant and returns it
// unchanged. No tracking or calibration state is involved, so both pipelines
// converge on the same Moment shape.
func NormalizeRecord(m Moment) (Moment, error) {
	if err := ValidateRoster(m.Players); err != nil {
		return Moment{}, fmt.Errorf("frame %d: %w", m.FrameIdx, err)
	}
	return m, nil
}
