package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detAt(x, y float64) Detection {
	return Detection{
		Box:        BBox{X: x - 10, Y: y - 40, Width: 20, Height: 40},
		Confidence: 0.9,
	}
}

func onlyTrack(t *testing.T, tr *Tracker) *Track {
	t.Helper()
	live := tr.liveTracks()
	require.Len(t, live, 1)
	return live[0]
}

func TestConfirmationStreak(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(DefaultConfig())

	// First two consecutive matches: still Tentative.
	require.NoError(t, tracker.Step([]Detection{detAt(100, 100)}))
	assert.Equal(t, StateTentative, onlyTrack(t, tracker).State())
	require.NoError(t, tracker.Step([]Detection{detAt(102, 100)}))
	assert.Equal(t, StateTentative, onlyTrack(t, tracker).State())

	// The streak-th consecutive match promotes.
	require.NoError(t, tracker.Step([]Detection{detAt(104, 100)}))
	assert.Equal(t, StateConfirmed, onlyTrack(t, tracker).State())
}

func TestTentativeDiesOnSingleMiss(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(DefaultConfig())
	require.NoError(t, tracker.Step([]Detection{detAt(100, 100)}))
	require.NoError(t, tracker.Step(nil))

	total, _, _, _ := tracker.TrackCount()
	assert.Zero(t, total, "a tentative track must not survive a miss")
}

func TestConfirmedToLostToDeleted(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxLostAge = 5
	tracker := NewTracker(cfg)

	for i := 0; i < cfg.ConfirmationStreak; i++ {
		require.NoError(t, tracker.Step([]Detection{detAt(100, 100)}))
	}
	confirmed := onlyTrack(t, tracker)
	require.Equal(t, StateConfirmed, confirmed.State())
	firstID := confirmed.ID()

	// First miss: Lost, still active for the normalizer.
	require.NoError(t, tracker.Step(nil))
	assert.Equal(t, StateLost, onlyTrack(t, tracker).State())
	assert.Len(t, tracker.ActiveTracks(), 1)

	// Coast past the lost age limit.
	for i := 0; i < cfg.MaxLostAge; i++ {
		require.NoError(t, tracker.Step(nil))
	}
	total, _, _, _ := tracker.TrackCount()
	assert.Zero(t, total)

	// A later unrelated detection must get a fresh ID, never the old one.
	require.NoError(t, tracker.Step([]Detection{detAt(100, 100)}))
	assert.Greater(t, onlyTrack(t, tracker).ID(), firstID)
}

func TestLostRematchReconfirms(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(DefaultConfig())
	for i := 0; i < 3; i++ {
		require.NoError(t, tracker.Step([]Detection{detAt(100, 100)}))
	}
	id := onlyTrack(t, tracker).ID()

	require.NoError(t, tracker.Step(nil))
	require.NoError(t, tracker.Step(nil))
	require.Equal(t, StateLost, onlyTrack(t, tracker).State())

	require.NoError(t, tracker.Step([]Detection{detAt(105, 100)}))
	got := onlyTrack(t, tracker)
	assert.Equal(t, StateConfirmed, got.State())
	assert.Equal(t, id, got.ID(), "re-matched lost track keeps its identity")
}

func TestLostTrackCoastsOnVelocity(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(DefaultConfig())
	// Establish a +10 px/frame rightward velocity.
	for i := 0; i < 4; i++ {
		require.NoError(t, tracker.Step([]Detection{detAt(100+float64(i)*10, 100)}))
	}
	tr := onlyTrack(t, tracker)
	require.Equal(t, StateConfirmed, tr.State())
	assert.InDelta(t, 10.0, tr.Velocity().X, 1e-9)

	// Two misses: position keeps extrapolating.
	require.NoError(t, tracker.Step(nil))
	require.NoError(t, tracker.Step(nil))
	tr = onlyTrack(t, tracker)
	assert.Equal(t, StateLost, tr.State())
	assert.InDelta(t, 150.0, tr.Position().X, 1e-9)

	// A detection where the object should be re-attaches to the same track.
	require.NoError(t, tracker.Step([]Detection{detAt(160, 100)}))
	tr = onlyTrack(t, tracker)
	assert.Equal(t, StateConfirmed, tr.State())
}

func TestIdentitiesStaySeparated(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(DefaultConfig())
	for i := 0; i < 5; i++ {
		dx := float64(i) * 5
		require.NoError(t, tracker.Step([]Detection{
			detAt(100+dx, 100),
			detAt(700-dx, 500),
		}))
	}
	live := tracker.liveTracks()
	require.Len(t, live, 2)
	assert.Equal(t, StateConfirmed, live[0].State())
	assert.Equal(t, StateConfirmed, live[1].State())
	// Lower ID belongs to the detection listed first on the first frame.
	assert.Less(t, live[0].Position().X, live[1].Position().X)
}

func TestGatingSpawnsInsteadOfTeleporting(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(DefaultConfig())
	for i := 0; i < 3; i++ {
		require.NoError(t, tracker.Step([]Detection{detAt(100, 100)}))
	}

	// A detection far outside the gate must not capture the track.
	require.NoError(t, tracker.Step([]Detection{detAt(900, 900)}))
	total, tentative, _, lost := tracker.TrackCount()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, tentative)
	assert.Equal(t, 1, lost)
}

func TestHaltedSessionRejectsFrames(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(DefaultConfig())
	tracker.halted = true

	err := tracker.Step([]Detection{detAt(100, 100)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionHalted)
	assert.True(t, tracker.Halted())
}

func TestDirectPositionReplace(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(DefaultConfig())
	require.NoError(t, tracker.Step([]Detection{detAt(100, 100)}))
	require.NoError(t, tracker.Step([]Detection{detAt(130, 100)}))

	// No smoothing: the estimate is exactly the observed ground point.
	tr := onlyTrack(t, tracker)
	assert.InDelta(t, 130.0, tr.Position().X, 1e-9)
	assert.InDelta(t, 100.0, tr.Position().Y, 1e-9)
	assert.InDelta(t, 30.0, tr.Velocity().X, 1e-9)
}
