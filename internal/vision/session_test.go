package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-data/spacing.report/internal/court"
	"github.com/courtside-data/spacing.report/internal/game"
	"github.com/courtside-data/spacing.report/internal/track"
)

// scriptedDetector replays fixed detections for every frame and a centered
// ball, standing in for the real inference model.
type scriptedDetector struct {
	dets []track.Detection
}

func (d *scriptedDetector) Detect(int) ([]track.Detection, error) {
	return d.dets, nil
}

func (d *scriptedDetector) DetectBall(int) (*game.BallObservation, error) {
	return &game.BallObservation{Center: court.Point{X: 470, Y: 250}, Radius: 9}, nil
}

func tenPlayerDetections() []track.Detection {
	home := [][2]float64{{100, 250}, {200, 200}, {200, 300}, {300, 150}, {300, 350}}
	away := [][2]float64{{600, 250}, {700, 200}, {700, 300}, {800, 150}, {800, 350}}
	light := []float64{210, 210, 210}
	dark := []float64{40, 40, 40}

	var dets []track.Detection
	for _, p := range home {
		dets = append(dets, track.Detection{
			Box:        track.BBox{X: p[0] - 10, Y: p[1] - 40, Width: 20, Height: 40},
			Confidence: 0.9,
			Color:      light,
		})
	}
	for _, p := range away {
		dets = append(dets, track.Detection{
			Box:        track.BBox{X: p[0] - 10, Y: p[1] - 40, Width: 20, Height: 40},
			Confidence: 0.9,
			Color:      dark,
		})
	}
	return dets
}

func scalePairs() []court.Correspondence {
	return []court.Correspondence{
		{Pixel: court.Point{X: 0, Y: 0}, Court: court.Point{X: 0, Y: 0}},
		{Pixel: court.Point{X: 940, Y: 0}, Court: court.Point{X: 94, Y: 0}},
		{Pixel: court.Point{X: 940, Y: 500}, Court: court.Point{X: 94, Y: 50}},
		{Pixel: court.Point{X: 0, Y: 500}, Court: court.Point{X: 0, Y: 50}},
	}
}

func TestNewSessionRequiresCalibration(t *testing.T) {
	t.Parallel()

	// Collinear clicks cannot calibrate; the session must not come up.
	degenerate := []court.Correspondence{
		{Pixel: court.Point{X: 0, Y: 0}, Court: court.Point{X: 0, Y: 0}},
		{Pixel: court.Point{X: 100, Y: 100}, Court: court.Point{X: 10, Y: 10}},
		{Pixel: court.Point{X: 200, Y: 200}, Court: court.Point{X: 20, Y: 20}},
		{Pixel: court.Point{X: 300, Y: 300}, Court: court.Point{X: 30, Y: 30}},
	}
	_, err := NewSession(&scriptedDetector{}, degenerate, DefaultConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, court.ErrDegenerateCorrespondences)

	_, err = NewSession(nil, scalePairs(), DefaultConfig())
	assert.Error(t, err)
}

func TestSessionProducesEvent(t *testing.T) {
	t.Parallel()

	det := &scriptedDetector{dets: tenPlayerDetections()}
	s, err := NewSession(det, scalePairs(), DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, s.Run(10))

	// The first two frames have no confirmed tracks yet and degrade.
	assert.Equal(t, 2, s.DegradedFrames())

	ev, err := s.BuildEvent(1, game.SideHome, 100, 200)
	require.NoError(t, err)
	assert.Equal(t, 10, ev.Len())

	// Once the roster confirms, moments are clean and fully canonical.
	last := ev.Moment(9)
	assert.False(t, last.Degraded)
	require.NoError(t, game.ValidateRoster(last.Players))
	assert.InDelta(t, 47.0, last.Ball.Position.X, 1e-6)

	// Game clock counts down from the configured start.
	assert.InDelta(t, 720.0-9.0/25.0, last.GameClock, 1e-9)
}

func TestSessionSurvivesLopsidedJerseyVote(t *testing.T) {
	t.Parallel()

	// Every jersey reads light: frames keep degrading after confirmation,
	// but the session itself keeps running.
	dets := tenPlayerDetections()
	for i := range dets {
		dets[i].Color = []float64{210, 210, 210}
	}
	s, err := NewSession(&scriptedDetector{dets: dets}, scalePairs(), DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, s.Run(10))
	assert.Equal(t, 10, s.DegradedFrames())

	ev, err := s.BuildEvent(1, game.SideHome, 100, 200)
	require.NoError(t, err)
	assert.True(t, ev.Moment(9).Degraded)
}

func TestSessionEmptyBuildFails(t *testing.T) {
	t.Parallel()

	s, err := NewSession(&scriptedDetector{}, scalePairs(), DefaultConfig())
	require.NoError(t, err)

	_, err = s.BuildEvent(1, game.SideHome, 100, 200)
	assert.ErrorIs(t, err, game.ErrEmptyEvent)
}
