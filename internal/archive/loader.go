// Package archive loads SportVU-style JSON game files into canonical Events.
// This is the authoritative-data pipeline: no tracking runs, every record is
// validated through the same roster invariant as the vision pipeline.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/courtside-data/spacing.report/internal/court"
	"github.com/courtside-data/spacing.report/internal/game"
	"github.com/courtside-data/spacing.report/internal/monitoring"
)

// ballID marks the ball row inside a moment's position array.
const ballID = -1

// maxFileSize caps archival game files; a full game runs tens of megabytes.
const maxFileSize = 256 * 1024 * 1024

// Game is one loaded archival game: metadata plus validated Events.
type Game struct {
	GameID   string
	GameDate string

	HomeTeamID int64
	AwayTeamID int64
	HomeName   string
	AwayName   string

	Events []*game.Event
}

type rawTeam struct {
	TeamID int64  `json:"teamid"`
	Name   string `json:"name"`
}

type rawEvent struct {
	EventID json.Number       `json:"eventId"`
	Home    rawTeam           `json:"home"`
	Visitor rawTeam           `json:"visitor"`
	Moments []json.RawMessage `json:"moments"`
}

type rawGame struct {
	GameID   string     `json:"gameid"`
	GameDate string     `json:"gamedate"`
	Events   []rawEvent `json:"events"`
}

// LoadGame reads and parses one SportVU JSON game file. Malformed moments
// and empty events are skipped with a log line; a file that yields no events
// at all is an error.
func LoadGame(path string) (*Game, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("game file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat game file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("game file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read game file: %w", err)
	}

	var raw rawGame
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse game JSON: %w", err)
	}
	if len(raw.Events) == 0 {
		return nil, fmt.Errorf("game %q has no events", raw.GameID)
	}

	g := &Game{
		GameID:     raw.GameID,
		GameDate:   raw.GameDate,
		HomeTeamID: raw.Events[0].Home.TeamID,
		AwayTeamID: raw.Events[0].Visitor.TeamID,
		HomeName:   raw.Events[0].Home.Name,
		AwayName:   raw.Events[0].Visitor.Name,
	}

	for i, re := range raw.Events {
		ev, skipped, err := parseEvent(re, int64(i))
		if err != nil {
			monitoring.Logf("game %s: event %d skipped: %v", g.GameID, i, err)
			continue
		}
		if skipped > 0 {
			monitoring.Logf("game %s: event %d dropped %d malformed moments", g.GameID, ev.ID, skipped)
		}
		g.Events = append(g.Events, ev)
	}
	if len(g.Events) == 0 {
		return nil, fmt.Errorf("game %q has no loadable events", raw.GameID)
	}
	return g, nil
}

func parseEvent(re rawEvent, fallbackID int64) (*game.Event, int, error) {
	id := fallbackID
	if n, err := re.EventID.Int64(); err == nil {
		id = n
	}

	var moments []game.Moment
	skipped := 0
	for _, rm := range re.Moments {
		m, err := parseMoment(rm, len(moments), re.Home.TeamID)
		if err != nil {
			skipped++
			continue
		}
		moments = append(moments, m)
	}

	ev, err := game.NewEvent(id, moments, inferOffense(moments), re.Home.TeamID, re.Visitor.TeamID)
	if err != nil {
		return nil, skipped, err
	}
	return ev, skipped, nil
}

// parseMoment decodes one positional moment array:
//
//	[quarter, timestamp, game_clock, shot_clock, null,
//	 [[team_id, player_id, x, y, radius], ...]]
//
// and validates it through the canonical roster invariant.
func parseMoment(raw json.RawMessage, frameIdx int, homeTeamID int64) (game.Moment, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return game.Moment{}, err
	}
	if len(fields) < 6 {
		return game.Moment{}, fmt.Errorf("moment has %d fields, want 6", len(fields))
	}

	m := game.Moment{FrameIdx: frameIdx}
	if err := json.Unmarshal(fields[0], &m.Quarter); err != nil {
		return game.Moment{}, err
	}
	if err := json.Unmarshal(fields[2], &m.GameClock); err != nil {
		return game.Moment{}, err
	}
	// Shot clock is null between possessions; keep it absent, not zero.
	if err := json.Unmarshal(fields[3], &m.ShotClock); err != nil {
		return game.Moment{}, err
	}

	var rows [][]float64
	if err := json.Unmarshal(fields[5], &rows); err != nil {
		return game.Moment{}, err
	}

	haveBall := false
	for _, row := range rows {
		if len(row) < 5 {
			return game.Moment{}, fmt.Errorf("position row has %d values, want 5", len(row))
		}
		teamID, playerID := int64(row[0]), int64(row[1])
		pos := court.Point{X: row[2], Y: row[3]}

		if playerID == ballID {
			m.Ball = game.Ball{Position: pos, Radius: row[4]}
			haveBall = true
			continue
		}

		side := game.SideAway
		if teamID == homeTeamID {
			side = game.SideHome
		}
		m.Players = append(m.Players, game.Player{
			Side:     side,
			PlayerID: playerID,
			Position: pos,
		})
	}
	if !haveBall {
		m.Ball = game.Ball{Imputed: true}
	}

	return game.NormalizeRecord(m)
}

// inferOffense votes across the event's moments for the side most often in
// possession, judged by the nearest player to the ball.
func inferOffense(moments []game.Moment) game.Side {
	home, away := 0, 0
	for i := range moments {
		handler, ok := moments[i].BallHandler(6.0)
		if !ok {
			continue
		}
		if handler.Side == game.SideHome {
			home++
		} else {
			away++
		}
	}
	if away > home {
		return game.SideAway
	}
	return game.SideHome
}
