package court

import "math"

// NBA court dimensions in feet. The canonical coordinate frame places the
// origin at the baseline-left corner with x running length-wise (0..94) and
// y running width-wise (0..50).
const (
	Length = 94.0
	Width  = 50.0

	// Basket centers sit 5.25 ft from each baseline on the center line.
	leftBasketX  = 5.25
	rightBasketX = Length - 5.25
	basketY      = Width / 2.0

	// Paint (key) extents.
	paintDepth     = 19.0
	paintHalfWidth = 8.0

	// Three point distances: corner threes are shorter than the arc.
	arcRadius    = 23.75
	cornerRadius = 22.0
	cornerLaneY  = 3.0
)

// Point is a 2-D coordinate, either in pixel space or court feet depending
// on the pipeline stage.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// BasketPosition returns the basket center for the given side.
func BasketPosition(leftBasket bool) Point {
	if leftBasket {
		return Point{X: leftBasketX, Y: basketY}
	}
	return Point{X: rightBasketX, Y: basketY}
}

// InPaint reports whether a court-space point is inside the paint on the
// given side.
func InPaint(p Point, leftBasket bool) bool {
	if p.Y < basketY-paintHalfWidth || p.Y > basketY+paintHalfWidth {
		return false
	}
	if leftBasket {
		return p.X >= 0 && p.X <= paintDepth
	}
	return p.X >= Length-paintDepth && p.X <= Length
}

// BeyondArc reports whether a court-space point is behind the three point
// line relative to the given basket. Corner threes use the shorter corner
// distance.
func BeyondArc(p Point, leftBasket bool) bool {
	d := Distance(p, BasketPosition(leftBasket))
	if p.Y < cornerLaneY || p.Y > Width-cornerLaneY {
		return d >= cornerRadius
	}
	return d >= arcRadius
}
