// Package spacing derives floor-spacing metrics from canonical Moments and
// Events: offensive convex hull area, pairwise spread, nearest-defender
// distances and a weighted composite score. Everything here is a pure
// function of its inputs.
package spacing

import (
	"sort"

	"github.com/courtside-data/spacing.report/internal/court"
)

// cross is the z component of (a-o) x (b-o): positive for a left turn.
func cross(o, a, b court.Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// convexHull computes the convex hull by Andrew's monotone chain, returning
// the polygon counterclockwise. The orientation test is non-strict, so
// points lying exactly on a hull edge stay in the polygon; they do not
// change the enclosed area. Fewer than three points come back as given.
func convexHull(pts []court.Point) []court.Point {
	if len(pts) < 3 {
		return append([]court.Point(nil), pts...)
	}

	sorted := append([]court.Point(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	var lower []court.Point
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) < 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []court.Point
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) < 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// Each chain's last point is the other chain's first.
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// polygonArea is the shoelace formula: half the absolute signed area, so the
// polygon's winding direction does not matter. Degenerate polygons (fewer
// than three vertices, or all collinear) have area zero.
func polygonArea(poly []court.Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	var sum float64
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		sum += p.X*q.Y - q.X*p.Y
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}
