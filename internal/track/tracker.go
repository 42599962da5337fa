package track

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrContractViolation signals an inconsistent assignment (one detection
// consumed by two tracks). This is fatal: the session is halted rather than
// allowed to double-assign identities.
var ErrContractViolation = errors.New("association produced an inconsistent assignment")

// ErrSessionHalted is returned by every Step after a contract violation.
var ErrSessionHalted = errors.New("tracking session halted")

// Tracker owns the live track set for one tracking session. Callers must
// serialize Step calls: one session per worker, no shared mutable state
// across workers.
type Tracker struct {
	cfg    Config
	tracks map[int64]*Track
	nextID int64
	frame  int
	halted bool
}

// NewTracker creates a tracker for a fresh session.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		cfg:    cfg,
		tracks: make(map[int64]*Track),
		nextID: 1,
	}
}

// Step ingests one frame's detections and runs the full lifecycle pass:
// predict, associate, update matches, age misses, spawn tentatives, drop
// deletions. Unmatched tracks and detections are normal; the only error
// paths are a halted session and the association contract violation that
// halts it.
func (t *Tracker) Step(dets []Detection) error {
	if t.halted {
		return errors.Wrap(ErrSessionHalted, "step rejected")
	}
	t.frame++

	live := t.liveTracks()
	assignment := associate(live, dets, t.cfg)
	if !assignment.consistent() {
		// Poison this session only; other sessions own their own state.
		t.halted = true
		return errors.Wrapf(ErrContractViolation, "frame %d", t.frame)
	}

	for trIdx, detIdx := range assignment.Matches {
		tr := live[trIdx]
		tr.apply(dets[detIdx], t.cfg)
		switch tr.state {
		case StateTentative:
			if tr.hitStreak >= t.cfg.ConfirmationStreak {
				tr.state = StateConfirmed
			}
		case StateLost:
			tr.state = StateConfirmed
		}
	}

	for _, trIdx := range assignment.UnmatchedTracks {
		tr := live[trIdx]
		tr.hitStreak = 0
		tr.timeSinceUpdate++
		switch tr.state {
		case StateTentative:
			// A single miss kills an unconfirmed track.
			tr.state = StateDeleted
		case StateConfirmed:
			tr.state = StateLost
			tr.coast()
		case StateLost:
			tr.coast()
			if tr.timeSinceUpdate > t.cfg.MaxLostAge {
				tr.state = StateDeleted
			}
		}
	}

	for _, detIdx := range assignment.UnmatchedDetections {
		t.spawn(dets[detIdx])
	}

	for id, tr := range t.tracks {
		if tr.state == StateDeleted {
			delete(t.tracks, id)
		}
	}
	return nil
}

// spawn creates a Tentative track from an unmatched detection. IDs come off
// a monotonic counter and are never reassigned.
func (t *Tracker) spawn(det Detection) *Track {
	tr := &Track{
		id:         t.nextID,
		state:      StateTentative,
		position:   det.Box.GroundPoint(),
		box:        det.Box,
		confidence: det.Confidence,
		hitStreak:  1,
		teamDirty:  true,
	}
	if len(det.Appearance) > 0 {
		tr.appearance = append([]float64(nil), det.Appearance...)
	}
	if len(det.Color) > 0 {
		tr.pushColorSample(det.Color, t.cfg.ColorWindow)
	}
	t.nextID++
	t.tracks[tr.id] = tr
	return tr
}

// liveTracks returns all non-deleted tracks in ascending ID order, the
// order the association engine requires for deterministic tie-breaks.
func (t *Tracker) liveTracks() []*Track {
	out := make([]*Track, 0, len(t.tracks))
	for _, tr := range t.tracks {
		out = append(out, tr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// ActiveTracks returns the Confirmed and Lost tracks, the set the frame
// normalizer consumes, in ascending ID order.
func (t *Tracker) ActiveTracks() []*Track {
	out := make([]*Track, 0, len(t.tracks))
	for _, tr := range t.tracks {
		if tr.state == StateConfirmed || tr.state == StateLost {
			out = append(out, tr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// TrackCount returns live track totals by state.
func (t *Tracker) TrackCount() (total, tentative, confirmed, lost int) {
	for _, tr := range t.tracks {
		total++
		switch tr.state {
		case StateTentative:
			tentative++
		case StateConfirmed:
			confirmed++
		case StateLost:
			lost++
		}
	}
	return
}

// Frame returns the number of frames processed so far.
func (t *Tracker) Frame() int { return t.frame }

// Halted reports whether the session was poisoned by a contract violation.
func (t *Tracker) Halted() bool { return t.halted }
