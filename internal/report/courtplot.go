package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/courtside-data/spacing.report/internal/court"
	"github.com/courtside-data/spacing.report/internal/game"
	"github.com/courtside-data/spacing.report/internal/spacing"
)

// SaveCourtSnapshot renders one moment as a PNG: both units as scatter
// points over court-feet axes, with the offensive hull drawn as a closed
// polygon when the metrics are defined.
func SaveCourtSnapshot(path string, m game.Moment, offense game.Side, cfg spacing.Config) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("frame %d  Q%d  %.1fs", m.FrameIdx, m.Quarter, m.GameClock)
	p.X.Label.Text = "x (ft)"
	p.Y.Label.Text = "y (ft)"
	p.X.Min, p.X.Max = 0, court.Length
	p.Y.Min, p.Y.Max = 0, court.Width

	snap := spacing.Compute(m, offense, cfg)
	if snap.Defined {
		hullPts := make(plotter.XYs, 0, len(snap.Hull)+1)
		for _, h := range snap.Hull {
			hullPts = append(hullPts, plotter.XY{X: h.X, Y: h.Y})
		}
		hullPts = append(hullPts, hullPts[0]) // close the polygon
		hullLine, err := plotter.NewLine(hullPts)
		if err != nil {
			return fmt.Errorf("hull polygon: %w", err)
		}
		hullLine.Width = vg.Points(1)
		hullLine.Color = color.RGBA{R: 0x2c, G: 0x7f, B: 0xb8, A: 0xff}
		p.Add(hullLine)
		p.Legend.Add(fmt.Sprintf("hull %.0f sq ft", snap.HullArea), hullLine)
	}

	offScatter, err := unitScatter(m, offense)
	if err != nil {
		return err
	}
	offScatter.GlyphStyle.Color = color.RGBA{R: 0xd7, G: 0x30, B: 0x27, A: 0xff}
	offScatter.GlyphStyle.Radius = vg.Points(4)
	p.Add(offScatter)
	p.Legend.Add("offense", offScatter)

	defScatter, err := unitScatter(m, offense.Opponent())
	if err != nil {
		return err
	}
	defScatter.GlyphStyle.Color = color.RGBA{R: 0x45, G: 0x75, B: 0xb4, A: 0xff}
	defScatter.GlyphStyle.Radius = vg.Points(4)
	p.Add(defScatter)
	p.Legend.Add("defense", defScatter)

	ballPts := plotter.XYs{{X: m.Ball.Position.X, Y: m.Ball.Position.Y}}
	ballScatter, err := plotter.NewScatter(ballPts)
	if err != nil {
		return fmt.Errorf("ball scatter: %w", err)
	}
	ballScatter.GlyphStyle.Color = color.RGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0xff}
	ballScatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(ballScatter)
	p.Legend.Add("ball", ballScatter)

	p.Legend.Top = true

	// Match the 94x50 court aspect ratio.
	if err := p.Save(14*vg.Inch, 7.5*vg.Inch, path); err != nil {
		return fmt.Errorf("save court snapshot: %w", err)
	}
	return nil
}

func unitScatter(m game.Moment, side game.Side) (*plotter.Scatter, error) {
	players := m.PlayersOn(side)
	pts := make(plotter.XYs, 0, len(players))
	for _, p := range players {
		pts = append(pts, plotter.XY{X: p.Position.X, Y: p.Position.Y})
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("%s scatter: %w", side, err)
	}
	return sc, nil
}
