package court

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Direction selects which way a Transform maps points.
type Direction int

const (
	PixelToCourt Direction = iota
	CourtToPixel
)

// Calibration failure modes. Both are fatal to the attempt and recoverable
// by fitting again with better correspondences.
var (
	ErrInsufficientCorrespondences = errors.New("homography fit requires at least four correspondences")
	ErrDegenerateCorrespondences   = errors.New("correspondences are degenerate (collinear or coincident)")
)

// Correspondence pairs one pixel-space point with its known court-space
// location.
type Correspondence struct {
	Pixel Point
	Court Point
}

// CourtCorners returns the default court-corner targets used when an
// operator clicks the four corners of the playing surface, in click order:
// baseline-left, baseline-right, far-right, far-left.
func CourtCorners() []Point {
	return []Point{
		{X: 0, Y: 0},
		{X: Length, Y: 0},
		{X: Length, Y: Width},
		{X: 0, Y: Width},
	}
}

// Transform is an invertible planar projective mapping between pixel space
// and court space. It is immutable once fit; recalibration produces a new
// Transform so in-flight readers never observe a partial update.
type Transform struct {
	forward [9]float64 // pixel -> court, row-major 3x3
	inverse [9]float64 // court -> pixel
}

// Singular values below this fraction of the largest one indicate a
// rank-deficient design matrix, i.e. degenerate correspondences.
const degenerateRatio = 1e-9

// Fit computes the homography that best maps the pixel points onto the
// court points, by linear least squares over the stacked projection
// equations (exact at four correspondences, best-fit beyond). The scale
// ambiguity is fixed by pinning h33 = 1.
func Fit(pairs []Correspondence) (*Transform, error) {
	if len(pairs) < 4 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientCorrespondences, len(pairs))
	}

	// Two rows per correspondence:
	//   [x y 1 0 0 0 -ux -uy] h = u
	//   [0 0 0 x y 1 -vx -vy] h = v
	rows := 2 * len(pairs)
	a := mat.NewDense(rows, 8, nil)
	b := mat.NewVecDense(rows, nil)
	for i, p := range pairs {
		x, y := p.Pixel.X, p.Pixel.Y
		u, v := p.Court.X, p.Court.Y
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: SVD factorization failed", ErrDegenerateCorrespondences)
	}
	values := svd.Values(nil)
	if values[0] == 0 || values[len(values)-1] < degenerateRatio*values[0] {
		return nil, ErrDegenerateCorrespondences
	}

	var h mat.VecDense
	svd.SolveVecTo(&h, b, 8)

	t := &Transform{}
	for i := 0; i < 8; i++ {
		t.forward[i] = h.AtVec(i)
	}
	t.forward[8] = 1

	inv, err := invert3x3(t.forward)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateCorrespondences, err)
	}
	t.inverse = inv
	return t, nil
}

// Apply maps a point through the transform in the given direction.
func (t *Transform) Apply(p Point, dir Direction) Point {
	m := &t.forward
	if dir == CourtToPixel {
		m = &t.inverse
	}
	w := m[6]*p.X + m[7]*p.Y + m[8]
	return Point{
		X: (m[0]*p.X + m[1]*p.Y + m[2]) / w,
		Y: (m[3]*p.X + m[4]*p.Y + m[5]) / w,
	}
}

// ApplyAll maps a batch of points; convenience for per-frame use.
func (t *Transform) ApplyAll(pts []Point, dir Direction) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = t.Apply(p, dir)
	}
	return out
}

func invert3x3(m [9]float64) ([9]float64, error) {
	src := mat.NewDense(3, 3, append([]float64(nil), m[:]...))
	var dst mat.Dense
	if err := dst.Inverse(src); err != nil {
		return [9]float64{}, fmt.Errorf("invert homography: %w", err)
	}
	var out [9]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = dst.At(r, c)
		}
	}
	return out, nil
}
