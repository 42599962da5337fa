package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/courtside-data/spacing.report/internal/game"
	"github.com/courtside-data/spacing.report/internal/spacing"
)

// WriteEventCSV exports one row per moment. Undefined metrics export as
// empty cells, never as zeros, so downstream averaging stays honest.
func WriteEventCSV(w io.Writer, ev *game.Event, cfg spacing.Config) error {
	cw := csv.NewWriter(w)
	header := []string{
		"event_id", "frame_idx", "quarter", "game_clock", "shot_clock", "degraded",
		"hull_area", "avg_pairwise", "open_count", "paint_count", "beyond_arc_count", "score",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, m := range ev.Moments() {
		row := []string{
			strconv.FormatInt(ev.ID, 10),
			strconv.Itoa(m.FrameIdx),
			strconv.Itoa(m.Quarter),
			strconv.FormatFloat(m.GameClock, 'f', 2, 64),
			"",
			strconv.FormatBool(m.Degraded),
			"", "", "", "", "", "",
		}
		if m.ShotClock != nil {
			row[4] = strconv.FormatFloat(*m.ShotClock, 'f', 2, 64)
		}

		if !m.Degraded {
			if snap := spacing.Compute(m, ev.OffensiveSide, cfg); snap.Defined {
				row[6] = strconv.FormatFloat(snap.HullArea, 'f', 2, 64)
				row[7] = strconv.FormatFloat(snap.AvgPairwise, 'f', 2, 64)
				row[8] = strconv.Itoa(snap.OpenCount)
				row[9] = strconv.Itoa(snap.PaintCount)
				row[10] = strconv.Itoa(snap.BeyondArcCount)
				row[11] = strconv.FormatFloat(snap.Score, 'f', 2, 64)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", m.FrameIdx, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
