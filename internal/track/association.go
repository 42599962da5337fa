package track

import (
	"sort"

	hungarian "github.com/arthurkushman/go-hungarian"

	"github.com/courtside-data/spacing.report/internal/court"
)

// maxAppearanceDistance is the cosine-distance ceiling: identical
// descriptors score 0, opposite descriptors 2.
const maxAppearanceDistance = 2.0

// Assignment is the outcome of one association round. Unmatched tracks and
// unmatched detections are expected outcomes, not errors: they drive the
// lifecycle transitions.
type Assignment struct {
	// Matches maps track index to detection index (both into the slices
	// given to associate).
	Matches map[int]int

	UnmatchedTracks     []int
	UnmatchedDetections []int
}

// associate solves the 1:1 track/detection assignment with the Hungarian
// method over a gated similarity matrix. The pair cost combines the
// normalized spatial distance between the track's predicted position and the
// detection ground point with the appearance-descriptor distance when
// available; it is flipped into a strictly positive similarity so the solver
// maximizes total affinity. Gated-out pairs and padding cells stay at zero
// similarity and can never produce a match.
func associate(tracks []*Track, dets []Detection, cfg Config) Assignment {
	out := Assignment{Matches: make(map[int]int)}
	if len(tracks) == 0 || len(dets) == 0 {
		for i := range tracks {
			out.UnmatchedTracks = append(out.UnmatchedTracks, i)
		}
		for j := range dets {
			out.UnmatchedDetections = append(out.UnmatchedDetections, j)
		}
		return out
	}

	// Square matrix: the solver wants rows == cols. Dummy rows and columns
	// stay at zero, so real pairs always win over padding.
	n := len(tracks)
	if len(dets) > n {
		n = len(dets)
	}
	sim := make([][]float64, n)
	for r := range sim {
		sim[r] = make([]float64, n)
	}

	// Any in-gate pair lands at or above 1 on the similarity scale.
	costCeiling := 1 + cfg.AppearanceWeight*maxAppearanceDistance
	for r, tr := range tracks {
		predicted := tr.Predicted()
		for c, det := range dets {
			spatial := court.Distance(predicted, det.Box.GroundPoint()) / cfg.GatingDistance
			if spatial > 1 {
				continue // outside the gate
			}
			cost := spatial + cfg.AppearanceWeight*appearanceDistance(tr.appearance, det.Appearance)
			sim[r][c] = 1 + costCeiling - cost
		}
	}

	solved := hungarian.SolveMax(sim)

	matchedDets := make(map[int]bool, len(dets))
	for r := 0; r < len(tracks); r++ {
		for c := range solved[r] {
			if c < len(dets) && sim[r][c] > 0 {
				out.Matches[r] = c
				matchedDets[c] = true
			}
			break
		}
	}

	for r := range tracks {
		if _, ok := out.Matches[r]; !ok {
			out.UnmatchedTracks = append(out.UnmatchedTracks, r)
		}
	}
	for c := range dets {
		if !matchedDets[c] {
			out.UnmatchedDetections = append(out.UnmatchedDetections, c)
		}
	}
	sort.Ints(out.UnmatchedTracks)
	sort.Ints(out.UnmatchedDetections)
	return out
}

// consistent verifies the 1:1 contract: no detection may be consumed by two
// tracks. A violation is a programming error in the solver, never valid
// input.
func (a Assignment) consistent() bool {
	seen := make(map[int]bool, len(a.Matches))
	for _, det := range a.Matches {
		if seen[det] {
			return false
		}
		seen[det] = true
	}
	return true
}
