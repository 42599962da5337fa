package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside-data/spacing.report/internal/court"
)

func validRoster() []Player {
	players := make([]Player, 0, RosterSize)
	for i := 0; i < PlayersPerSide; i++ {
		players = append(players, Player{
			Side:     SideHome,
			PlayerID: int64(i + 1),
			Position: court.Point{X: 10 + float64(i)*5, Y: 25},
		})
	}
	for i := 0; i < PlayersPerSide; i++ {
		players = append(players, Player{
			Side:     SideAway,
			PlayerID: int64(i + 6),
			Position: court.Point{X: 60 + float64(i)*5, Y: 25},
		})
	}
	return players
}

func TestSideOpponent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SideAway, SideHome.Opponent())
	assert.Equal(t, SideHome, SideAway.Opponent())
	assert.Equal(t, "home", SideHome.String())
	assert.Equal(t, "away", SideAway.String())
}

func TestPlayersOnKeepsRosterOrder(t *testing.T) {
	t.Parallel()

	m := Moment{Players: validRoster()}

	home := m.PlayersOn(SideHome)
	require.Len(t, home, PlayersPerSide)
	for i, p := range home {
		assert.Equal(t, SideHome, p.Side)
		assert.Equal(t, int64(i+1), p.PlayerID)
	}

	away := m.PlayersOn(SideAway)
	require.Len(t, away, PlayersPerSide)
	for _, p := range away {
		assert.Equal(t, SideAway, p.Side)
	}
}

func TestBallHandler(t *testing.T) {
	t.Parallel()

	m := Moment{
		Players: validRoster(),
		Ball:    Ball{Position: court.Point{X: 11, Y: 25}},
	}

	handler, ok := m.BallHandler(4.0)
	require.True(t, ok)
	assert.Equal(t, int64(1), handler.PlayerID)

	// Ball in open space: nobody within threshold.
	m.Ball.Position = court.Point{X: 40, Y: 5}
	_, ok = m.BallHandler(4.0)
	assert.False(t, ok)
}

func TestValidateRoster(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func([]Player) []Player
		wantErr error
	}{
		{
			name:   "full roster",
			mutate: func(p []Player) []Player { return p },
		},
		{
			name:    "nine players",
			mutate:  func(p []Player) []Player { return p[:9] },
			wantErr: ErrIncompleteRoster,
		},
		{
			name: "six and four",
			mutate: func(p []Player) []Player {
				p[5].Side = SideHome
				return p
			},
			wantErr: ErrMalformedRoster,
		},
		{
			name: "unknown side",
			mutate: func(p []Player) []Player {
				p[0].Side = Side(7)
				return p
			},
			wantErr: ErrMalformedRoster,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateRoster(tt.mutate(validRoster()))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
