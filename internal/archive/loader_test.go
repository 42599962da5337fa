package archive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-data/spacing.report/internal/game"
)

const (
	homeTeam = int64(1610612747)
	awayTeam = int64(1610612738)
)

// fixtureMoment builds one positional moment row set: ten players plus the
// ball near the given spot.
func fixtureMoment(quarter int, clock float64, shotClock interface{}, ballX, ballY float64) []interface{} {
	rows := [][]interface{}{
		{homeTeam, 101, 10.0, 25.0, 0.0},
		{homeTeam, 102, 20.0, 20.0, 0.0},
		{homeTeam, 103, 20.0, 30.0, 0.0},
		{homeTeam, 104, 30.0, 15.0, 0.0},
		{homeTeam, 105, 30.0, 35.0, 0.0},
		{awayTeam, 201, 12.0, 25.0, 0.0},
		{awayTeam, 202, 22.0, 20.0, 0.0},
		{awayTeam, 203, 40.0, 25.0, 0.0},
		{awayTeam, 204, 45.0, 10.0, 0.0},
		{awayTeam, 205, 45.0, 40.0, 0.0},
		{-1, -1, ballX, ballY, 6.5},
	}
	return []interface{}{quarter, 1445917732000, clock, shotClock, nil, rows}
}

func writeFixture(t *testing.T, doc map[string]interface{}) string {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "game.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func fixtureGame(t *testing.T) string {
	t.Helper()
	teams := map[string]interface{}{
		"home":    map[string]interface{}{"teamid": homeTeam, "name": "Lakers"},
		"visitor": map[string]interface{}{"teamid": awayTeam, "name": "Celtics"},
	}

	// Second event carries one malformed moment (nine players, ball intact)
	// that the loader must drop without dropping the event.
	short := fixtureMoment(1, 500.0, nil, 47.0, 25.0)
	rows := short[5].([][]interface{})
	short[5] = append(append([][]interface{}{}, rows[:9]...), rows[10])

	return writeFixture(t, map[string]interface{}{
		"gameid":   "0021500001",
		"gamedate": "2015-10-27",
		"events": []interface{}{
			map[string]interface{}{
				"eventId": 1, "home": teams["home"], "visitor": teams["visitor"],
				"moments": []interface{}{
					fixtureMoment(1, 700.0, 14.5, 10.5, 25.0),
					fixtureMoment(1, 699.96, 14.1, 10.8, 25.0),
				},
			},
			map[string]interface{}{
				"eventId": 2, "home": teams["home"], "visitor": teams["visitor"],
				"moments": []interface{}{
					fixtureMoment(1, 500.0, nil, 41.0, 25.0),
					short,
				},
			},
		},
	})
}

func TestLoadGame(t *testing.T) {
	t.Parallel()

	g, err := LoadGame(fixtureGame(t))
	require.NoError(t, err)

	assert.Equal(t, "0021500001", g.GameID)
	assert.Equal(t, "2015-10-27", g.GameDate)
	assert.Equal(t, homeTeam, g.HomeTeamID)
	assert.Equal(t, "Celtics", g.AwayName)
	require.Len(t, g.Events, 2)

	first := g.Events[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, 2, first.Len())
	assert.Equal(t, game.SideHome, first.OffensiveSide, "ball sits with the home unit")

	m := first.Moment(0)
	require.NoError(t, game.ValidateRoster(m.Players))
	assert.Equal(t, 1, m.Quarter)
	assert.Equal(t, 700.0, m.GameClock)
	require.NotNil(t, m.ShotClock)
	assert.Equal(t, 14.5, *m.ShotClock)
	assert.Equal(t, 6.5, m.Ball.Radius)

	// Player 101 maps onto the home side at its archival position.
	assert.Equal(t, game.SideHome, m.Players[0].Side)
	assert.Equal(t, int64(101), m.Players[0].PlayerID)
	assert.Equal(t, 10.0, m.Players[0].Position.X)
}

func TestLoadGameDropsMalformedMoments(t *testing.T) {
	t.Parallel()

	g, err := LoadGame(fixtureGame(t))
	require.NoError(t, err)

	second := g.Events[1]
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, 1, second.Len(), "nine-player moment is dropped, never padded")
	assert.Nil(t, second.Moment(0).ShotClock, "null shot clock stays absent")
	assert.Equal(t, game.SideAway, second.OffensiveSide, "ball sits with the away unit")
}

func TestLoadGameValidatesPath(t *testing.T) {
	t.Parallel()

	_, err := LoadGame("game.txt")
	assert.ErrorContains(t, err, ".json")

	_, err = LoadGame(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadGameRejectsEmptyGames(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, map[string]interface{}{"gameid": "empty", "events": []interface{}{}})
	_, err := LoadGame(path)
	assert.ErrorContains(t, err, "no events")
}
