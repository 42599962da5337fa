package playback

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-data/spacing.report/internal/court"
	"github.com/courtside-data/spacing.report/internal/game"
	"github.com/courtside-data/spacing.report/internal/spacing"
)

func testEvent(t *testing.T, n int) *game.Event {
	t.Helper()
	offense := []court.Point{{X: 10, Y: 25}, {X: 20, Y: 20}, {X: 20, Y: 30}, {X: 30, Y: 15}, {X: 30, Y: 35}}
	defense := []court.Point{{X: 12, Y: 25}, {X: 22, Y: 20}, {X: 40, Y: 25}, {X: 45, Y: 10}, {X: 45, Y: 40}}

	moments := make([]game.Moment, n)
	for i := range moments {
		m := game.Moment{Quarter: 1, GameClock: 720 - float64(i)*0.04, FrameIdx: i}
		for p, pos := range offense {
			m.Players = append(m.Players, game.Player{
				Side: game.SideHome, PlayerID: int64(p + 1), Position: pos,
			})
		}
		for p, pos := range defense {
			m.Players = append(m.Players, game.Player{
				Side: game.SideAway, PlayerID: int64(p + 6), Position: pos,
			})
		}
		moments[i] = m
	}
	ev, err := game.NewEvent(1, moments, game.SideHome, 10, 20)
	require.NoError(t, err)
	return ev
}

func TestTickAdvanceAndWrap(t *testing.T) {
	t.Parallel()

	c := NewController(DefaultConfig(), nil)
	require.NoError(t, c.Load(testEvent(t, 100)))
	require.NoError(t, c.SetSpeed(2.0))
	require.NoError(t, c.Play())

	// 0.5 s at 25 Hz and double speed covers 25 frames.
	cursor, err := c.Tick(500 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 25, cursor)

	require.NoError(t, c.Seek(90))
	cursor, err = c.Tick(500 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 15, cursor, "cursor wraps past the last moment")
}

func TestTickIgnoredUnlessPlaying(t *testing.T) {
	t.Parallel()

	steps := 0
	c := NewController(DefaultConfig(), func(int, game.Moment, spacing.Snapshot) { steps++ })
	require.NoError(t, c.Load(testEvent(t, 50)))

	cursor, err := c.Tick(time.Second)
	require.NoError(t, err)
	assert.Zero(t, cursor)
	assert.Zero(t, steps)

	require.NoError(t, c.Play())
	_, err = c.Tick(200 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, steps)

	c.Pause()
	assert.Equal(t, StatePaused, c.State())
	_, err = c.Tick(200 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, steps, "no step callback after pause")
}

func TestStepCallbackCarriesMetrics(t *testing.T) {
	t.Parallel()

	var gotIdx int
	var gotSnap spacing.Snapshot
	c := NewController(DefaultConfig(), func(idx int, _ game.Moment, snap spacing.Snapshot) {
		gotIdx = idx
		gotSnap = snap
	})
	require.NoError(t, c.Load(testEvent(t, 50)))
	require.NoError(t, c.Play())

	cursor, err := c.Tick(400 * time.Millisecond) // 10 frames
	require.NoError(t, err)
	assert.Equal(t, 10, cursor)
	assert.Equal(t, 10, gotIdx)
	assert.True(t, gotSnap.Defined)
	assert.Positive(t, gotSnap.HullArea)
}

func TestSeekClamps(t *testing.T) {
	t.Parallel()

	c := NewController(DefaultConfig(), nil)
	assert.ErrorIs(t, c.Seek(0), ErrNoEvent)

	require.NoError(t, c.Load(testEvent(t, 10)))
	assert.NoError(t, c.Seek(4))
	assert.Equal(t, 4, c.Cursor())

	// Out-of-range scrubs land on the nearest end instead of failing.
	assert.NoError(t, c.Seek(-1))
	assert.Equal(t, 0, c.Cursor())
	assert.NoError(t, c.Seek(25))
	assert.Equal(t, 9, c.Cursor())
}

func TestSpeedValidation(t *testing.T) {
	t.Parallel()

	c := NewController(DefaultConfig(), nil)
	assert.ErrorIs(t, c.SetSpeed(0), ErrBadSpeed)
	assert.ErrorIs(t, c.SetSpeed(-1.5), ErrBadSpeed)
	assert.NoError(t, c.SetSpeed(0.5))
}

func TestLoadRewindsAndStops(t *testing.T) {
	t.Parallel()

	c := NewController(DefaultConfig(), nil)
	assert.ErrorIs(t, c.Load(nil), ErrNoEvent)

	require.NoError(t, c.Load(testEvent(t, 20)))
	require.NoError(t, c.Play())
	_, err := c.Tick(200 * time.Millisecond)
	require.NoError(t, err)
	require.NotZero(t, c.Cursor())

	require.NoError(t, c.Load(testEvent(t, 20)))
	assert.Equal(t, StateStopped, c.State())
	assert.Zero(t, c.Cursor())
}

func TestStopRewinds(t *testing.T) {
	t.Parallel()

	c := NewController(DefaultConfig(), nil)
	require.NoError(t, c.Load(testEvent(t, 20)))
	require.NoError(t, c.Play())
	_, err := c.Tick(200 * time.Millisecond)
	require.NoError(t, err)

	c.Stop()
	assert.Equal(t, StateStopped, c.State())
	assert.Zero(t, c.Cursor())
}

func TestConcurrentCommandsDoNotRace(t *testing.T) {
	t.Parallel()

	c := NewController(DefaultConfig(), func(int, game.Moment, spacing.Snapshot) {})
	require.NoError(t, c.Load(testEvent(t, 100)))
	require.NoError(t, c.Play())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = c.Tick(40 * time.Millisecond)
				_ = c.Seek(j % 100)
				_ = c.SetSpeed(1.0)
				_ = c.State()
			}
		}()
	}
	wg.Wait()
}
