package spacing

import (
	"gonum.org/v1/gonum/stat"

	"github.com/courtside-data/spacing.report/internal/court"
	"github.com/courtside-data/spacing.report/internal/game"
)

// Config exposes every metric parameter. The composite score is a weighted
// sum of each component divided by its normalization ceiling, clamped to
// [0, 100]; the weights are tuning, not algorithm.
type Config struct {
	// OpenThreshold is the nearest-defender distance (feet) beyond which an
	// offensive player counts as open.
	OpenThreshold float64

	HullWeight   float64
	SpreadWeight float64
	OpenWeight   float64

	// Normalization ceilings: the component value that maps to a full
	// contribution.
	HullNorm   float64 // square feet
	SpreadNorm float64 // feet
	OpenNorm   float64 // players
}

// DefaultConfig returns the spacing-score defaults.
func DefaultConfig() Config {
	return Config{
		OpenThreshold: 6.0,
		HullWeight:    0.35,
		SpreadWeight:  0.35,
		OpenWeight:    0.30,
		HullNorm:      800.0,
		SpreadNorm:    25.0,
		OpenNorm:      4.0,
	}
}

// Snapshot is the per-Moment metric set. Defined is false when the Moment
// carried fewer than three offensive players; in that case every other field
// is meaningless and the snapshot must be skipped, never read as zeros.
type Snapshot struct {
	Defined bool `json:"defined"`

	HullArea    float64 `json:"hull_area"`
	AvgPairwise float64 `json:"avg_pairwise"`

	// Hull is the offensive hull polygon, counterclockwise, for rendering.
	Hull []court.Point `json:"hull,omitempty"`

	// NearestDefender maps each offensive player's ID to the distance of the
	// closest defender. Empty when the Moment carries no defenders.
	NearestDefender map[int64]float64 `json:"nearest_defender,omitempty"`
	OpenCount       int               `json:"open_count"`

	// Half-court occupancy of the offense, for the report surfaces.
	PaintCount     int `json:"paint_count"`
	BeyondArcCount int `json:"beyond_arc_count"`

	Score float64 `json:"score"`
}

// Compute derives the spacing snapshot for one Moment with the given side on
// offense. Pure: the Moment is read, never written.
func Compute(m game.Moment, offense game.Side, cfg Config) Snapshot {
	attackers := m.PlayersOn(offense)
	if len(attackers) < 3 {
		return Snapshot{}
	}
	defenders := m.PlayersOn(offense.Opponent())

	pts := make([]court.Point, len(attackers))
	for i, p := range attackers {
		pts[i] = p.Position
	}

	hull := convexHull(pts)
	snap := Snapshot{
		Defined:         true,
		Hull:            hull,
		HullArea:        polygonArea(hull),
		AvgPairwise:     avgPairwise(pts),
		NearestDefender: make(map[int64]float64, len(attackers)),
	}

	for _, a := range attackers {
		if len(defenders) == 0 {
			break
		}
		nearest := court.Distance(a.Position, defenders[0].Position)
		for _, d := range defenders[1:] {
			if dist := court.Distance(a.Position, d.Position); dist < nearest {
				nearest = dist
			}
		}
		snap.NearestDefender[a.PlayerID] = nearest
		if nearest > cfg.OpenThreshold {
			snap.OpenCount++
		}
	}

	leftBasket := attackingLeft(pts)
	for _, p := range pts {
		if court.InPaint(p, leftBasket) {
			snap.PaintCount++
		}
		if court.BeyondArc(p, leftBasket) {
			snap.BeyondArcCount++
		}
	}

	snap.Score = score(snap, cfg)
	return snap
}

// avgPairwise is the mean distance over all unordered point pairs.
func avgPairwise(pts []court.Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	var sum float64
	var pairs int
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			sum += court.Distance(pts[i], pts[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}

// attackingLeft guesses which basket the offense is attacking from where the
// unit stands: possessions live almost entirely in one half court.
func attackingLeft(pts []court.Point) bool {
	var cx float64
	for _, p := range pts {
		cx += p.X
	}
	return cx/float64(len(pts)) < court.Length/2
}

func score(s Snapshot, cfg Config) float64 {
	v := 100 * (cfg.HullWeight*ratio(s.HullArea, cfg.HullNorm) +
		cfg.SpreadWeight*ratio(s.AvgPairwise, cfg.SpreadNorm) +
		cfg.OpenWeight*ratio(float64(s.OpenCount), cfg.OpenNorm))
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func ratio(value, norm float64) float64 {
	if norm <= 0 {
		return 0
	}
	r := value / norm
	if r > 1 {
		return 1
	}
	return r
}

// Aggregate holds per-Event metric means plus the spread of the composite
// score. Only defined snapshots of non-degraded Moments contribute;
// Contributing reports how many did.
type Aggregate struct {
	Contributing int `json:"contributing"`
	Skipped      int `json:"skipped"`

	MeanHullArea    float64 `json:"mean_hull_area"`
	MeanAvgPairwise float64 `json:"mean_avg_pairwise"`
	MeanOpenCount   float64 `json:"mean_open_count"`
	MeanScore       float64 `json:"mean_score"`

	// ScoreVariance is the sample variance of the score series, 0 with
	// fewer than two contributing moments.
	ScoreVariance float64 `json:"score_variance"`
}

// AggregateEvent computes metric means across an Event's Moments. Degraded
// Moments and undefined snapshots are skipped entirely rather than dragging
// the means toward zero.
func AggregateEvent(ev *game.Event, cfg Config) Aggregate {
	var agg Aggregate
	var hulls, spreads, opens, scores []float64

	for _, m := range ev.Moments() {
		if m.Degraded {
			agg.Skipped++
			continue
		}
		snap := Compute(m, ev.OffensiveSide, cfg)
		if !snap.Defined {
			agg.Skipped++
			continue
		}
		agg.Contributing++
		hulls = append(hulls, snap.HullArea)
		spreads = append(spreads, snap.AvgPairwise)
		opens = append(opens, float64(snap.OpenCount))
		scores = append(scores, snap.Score)
	}

	if agg.Contributing == 0 {
		return agg
	}
	agg.MeanHullArea = stat.Mean(hulls, nil)
	agg.MeanAvgPairwise = stat.Mean(spreads, nil)
	agg.MeanOpenCount = stat.Mean(opens, nil)
	agg.MeanScore = stat.Mean(scores, nil)
	if len(scores) > 1 {
		agg.ScoreVariance = stat.Variance(scores, nil)
	}
	return agg
}
