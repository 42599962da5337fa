// Package track implements the multi-object track lifecycle: frame-to-frame
// association of noisy detections, Tentative/Confirmed/Lost/Deleted state
// transitions, and per-track team-label voting. The tracker works in pixel
// space; the frame normalizer maps its output onto the court.
package track

import (
	"math"

	"github.com/courtside-data/spacing.report/internal/court"
)

// State is the lifecycle state of a track.
type State string

const (
	StateTentative State = "tentative" // new track, needs a confirmation streak
	StateConfirmed State = "confirmed" // stable identity
	StateLost      State = "lost"      // coasting on last velocity
	StateDeleted   State = "deleted"   // terminal; ID is never reused
)

// BBox is a pixel-space bounding box.
type BBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Center returns the box center.
func (b BBox) Center() court.Point {
	return court.Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// GroundPoint returns the bottom-center of the box, the player's court
// contact point used for position estimates.
func (b BBox) GroundPoint() court.Point {
	return court.Point{X: b.X + b.Width/2, Y: b.Y + b.Height}
}

// Detection is one observation from the external detector. Detections are
// transient: consumed on the frame they belong to, never stored.
type Detection struct {
	Frame      int
	Box        BBox
	Confidence float64

	// Appearance is an optional fixed-length re-identification descriptor.
	Appearance []float64

	// Color is an optional mean jersey color sample (RGB, 0..255) used for
	// team-label voting. Nil when the detector provides no crop.
	Color []float64
}

// Config holds tracker tuning. All values are plain parameters; see
// DefaultConfig for the defaults.
type Config struct {
	// ConfirmationStreak is the number of consecutive matched frames that
	// promote a Tentative track to Confirmed.
	ConfirmationStreak int

	// MaxLostAge is the number of consecutive missed frames a Confirmed
	// track may coast in Lost before deletion.
	MaxLostAge int

	// GatingDistance is the pixel distance beyond which a track/detection
	// pair is forbidden in association.
	GatingDistance float64

	// AppearanceWeight scales the appearance-descriptor distance added to
	// the normalized spatial cost.
	AppearanceWeight float64

	// AppearanceBlend is the weight of the new descriptor in the
	// exponential appearance update.
	AppearanceBlend float64

	// ColorWindow bounds the per-track jersey color sample history used for
	// team voting.
	ColorWindow int
}

// DefaultConfig returns the default tracker configuration.
func DefaultConfig() Config {
	return Config{
		ConfirmationStreak: 3,
		MaxLostAge:         30,
		GatingDistance:     100.0,
		AppearanceWeight:   0.3,
		AppearanceBlend:    0.3,
		ColorWindow:        25,
	}
}

// Track is one provisional or confirmed identity. Tracks are owned
// exclusively by their Tracker and must not be retained across Step calls.
type Track struct {
	id         int64
	state      State
	position   court.Point // ground point, pixel space
	velocity   court.Point // per-frame delta
	box        BBox
	confidence float64
	appearance []float64

	hitStreak       int
	timeSinceUpdate int

	colorSamples []float64 // brightness window for team voting
	teamLabel    TeamLabel
	teamDirty    bool
}

// ID returns the track's unique identifier. IDs are assigned monotonically
// and never reused, even after deletion.
func (tr *Track) ID() int64 { return tr.id }

// State returns the current lifecycle state.
func (tr *Track) State() State { return tr.state }

// Position returns the current pixel-space position estimate.
func (tr *Track) Position() court.Point { return tr.position }

// Velocity returns the per-frame velocity estimate.
func (tr *Track) Velocity() court.Point { return tr.velocity }

// Box returns the last accepted bounding box.
func (tr *Track) Box() BBox { return tr.box }

// Confidence returns the confidence of the last accepted detection.
func (tr *Track) Confidence() float64 { return tr.confidence }

// MissedFrames returns the consecutive frames since the last accepted match.
func (tr *Track) MissedFrames() int { return tr.timeSinceUpdate }

// Predicted returns the position extrapolated one frame forward along the
// last known velocity. Association always gates against this, not the raw
// last position.
func (tr *Track) Predicted() court.Point {
	return court.Point{X: tr.position.X + tr.velocity.X, Y: tr.position.Y + tr.velocity.Y}
}

// apply accepts a matched detection: direct position replace (no smoothing),
// velocity from the position delta, exponential appearance blend, color
// sample push, miss counter reset.
func (tr *Track) apply(det Detection, cfg Config) {
	next := det.Box.GroundPoint()
	tr.velocity = court.Point{X: next.X - tr.position.X, Y: next.Y - tr.position.Y}
	tr.position = next
	tr.box = det.Box
	tr.confidence = det.Confidence
	tr.timeSinceUpdate = 0
	tr.hitStreak++

	if len(det.Appearance) > 0 {
		if len(tr.appearance) != len(det.Appearance) {
			tr.appearance = append([]float64(nil), det.Appearance...)
		} else {
			w := cfg.AppearanceBlend
			for i := range tr.appearance {
				tr.appearance[i] = (1-w)*tr.appearance[i] + w*det.Appearance[i]
			}
		}
	}

	if len(det.Color) > 0 {
		tr.pushColorSample(det.Color, cfg.ColorWindow)
	}
}

// coast advances a Lost track one frame along its last velocity.
func (tr *Track) coast() {
	tr.position.X += tr.velocity.X
	tr.position.Y += tr.velocity.Y
}

// appearanceDistance is the cosine distance between a track's blended
// descriptor and a detection's. Returns 0 when either side has no
// descriptor, so appearance only contributes when available.
func appearanceDistance(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return 1 - cos
}
