// Package vision runs the video pipeline: an external detector feeds the
// tracker frame by frame, the calibrated normalizer turns tracks into
// canonical Moments, and a finished session assembles them into an Event.
package vision

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/courtside-data/spacing.report/internal/court"
	"github.com/courtside-data/spacing.report/internal/game"
	"github.com/courtside-data/spacing.report/internal/monitoring"
	"github.com/courtside-data/spacing.report/internal/track"
)

// Detector is the external detection model. It owns video decoding and
// inference; the session only sees boxes.
type Detector interface {
	Detect(frameIdx int) ([]track.Detection, error)
}

// BallDetector is optionally implemented by detectors that also locate the
// ball. Sessions without it produce imputed balls throughout.
type BallDetector interface {
	DetectBall(frameIdx int) (*game.BallObservation, error)
}

// Config holds the per-session pipeline tuning.
type Config struct {
	Tracker    track.Config
	Normalizer game.NormalizerConfig

	// FrameRate converts frame indices to game-clock seconds.
	FrameRate float64

	// Quarter and ClockStart annotate the produced Moments; the detector
	// has no notion of the scoreboard.
	Quarter    int
	ClockStart float64
}

// DefaultConfig returns session defaults over a 25 Hz source.
func DefaultConfig() Config {
	return Config{
		Tracker:    track.DefaultConfig(),
		Normalizer: game.DefaultNormalizerConfig(),
		FrameRate:  25.0,
		Quarter:    1,
		ClockStart: 720.0,
	}
}

// Session drives one tracking run over a calibrated camera. Construction
// requires a successful calibration fit; there is no uncalibrated mode.
type Session struct {
	id       uuid.UUID
	cfg      Config
	detector Detector

	tracker    *track.Tracker
	normalizer *game.Normalizer

	frame    int
	moments  []game.Moment
	degraded int
}

// NewSession fits the calibration from the operator's correspondences and
// wires the pipeline. A failed fit blocks the session entirely.
func NewSession(detector Detector, pairs []court.Correspondence, cfg Config) (*Session, error) {
	if detector == nil {
		return nil, errors.New("session requires a detector")
	}
	transform, err := court.Fit(pairs)
	if err != nil {
		return nil, errors.Wrap(err, "calibration")
	}
	return &Session{
		id:         uuid.New(),
		cfg:        cfg,
		detector:   detector,
		tracker:    track.NewTracker(cfg.Tracker),
		normalizer: game.NewNormalizer(transform, cfg.Normalizer),
	}, nil
}

// ID returns the session's identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// ProcessFrame pulls the next frame's detections through the tracker and
// normalizer and appends the resulting Moment. Incomplete or lopsided
// rosters degrade the Moment but keep the session running; tracker contract
// violations are fatal and propagate.
func (s *Session) ProcessFrame() (game.Moment, error) {
	frame := s.frame
	s.frame++

	dets, err := s.detector.Detect(frame)
	if err != nil {
		return game.Moment{}, errors.Wrapf(err, "detect frame %d", frame)
	}
	if err := s.tracker.Step(dets); err != nil {
		return game.Moment{}, err
	}

	var ball *game.BallObservation
	if bd, ok := s.detector.(BallDetector); ok {
		if ball, err = bd.DetectBall(frame); err != nil {
			return game.Moment{}, errors.Wrapf(err, "detect ball frame %d", frame)
		}
	}

	fc := game.FrameContext{
		FrameIdx:  frame,
		Quarter:   s.cfg.Quarter,
		GameClock: s.cfg.ClockStart - float64(frame)/s.cfg.FrameRate,
	}
	m, err := s.normalizer.NormalizeTracks(fc, s.tracker.ActiveTracks(), ball)
	if err != nil {
		if !errors.Is(err, game.ErrIncompleteRoster) && !errors.Is(err, game.ErrMalformedRoster) {
			return game.Moment{}, err
		}
		s.degraded++
		monitoring.Logf("session %s: frame %d degraded: %v", s.id, frame, err)
	}

	s.moments = append(s.moments, m)
	return m, nil
}

// Run processes n consecutive frames.
func (s *Session) Run(n int) error {
	for i := 0; i < n; i++ {
		if _, err := s.ProcessFrame(); err != nil {
			return err
		}
	}
	return nil
}

// DegradedFrames reports how many processed frames came out degraded.
func (s *Session) DegradedFrames() int { return s.degraded }

// BuildEvent seals the session's moments into an immutable Event.
func (s *Session) BuildEvent(id int64, offense game.Side, homeTeamID, awayTeamID int64) (*game.Event, error) {
	ev, err := game.NewEvent(id, s.moments, offense, homeTeamID, awayTeamID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", s.id, err)
	}
	return ev, nil
}
