// Package store persists per-event spacing aggregates to sqlite for bulk
// queries and export. Moments themselves are never stored: metrics are
// always rederivable from the source data, so the store is a cache of
// summaries, not a source of truth.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/courtside-data/spacing.report/internal/game"
	"github.com/courtside-data/spacing.report/internal/spacing"
)

type Store struct {
	*sql.DB
}

// Open opens (creating if needed) the summary database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS games (
			game_id           TEXT PRIMARY KEY,
			game_date         TEXT,
			home_team_id      BIGINT,
			away_team_id      BIGINT,
			home_name         TEXT,
			away_name         TEXT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS event_summaries (
			game_id           TEXT,
			event_id          BIGINT,
			offensive_side    TEXT,
			moment_count      BIGINT,
			contributing      BIGINT,
			skipped           BIGINT,
			duration_s        DOUBLE,
			mean_hull_area    DOUBLE,
			mean_avg_pairwise DOUBLE,
			mean_open_count   DOUBLE,
			mean_score        DOUBLE,
			score_variance    DOUBLE,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (game_id, event_id)
		);
	`)
	if err != nil {
		return nil, err
	}

	return &Store{db}, nil
}

// GameInfo is one row of game metadata.
type GameInfo struct {
	GameID     string `json:"game_id"`
	GameDate   string `json:"game_date"`
	HomeTeamID int64  `json:"home_team_id"`
	AwayTeamID int64  `json:"away_team_id"`
	HomeName   string `json:"home_name"`
	AwayName   string `json:"away_name"`
}

// EventSummary is one event's persisted aggregate row.
type EventSummary struct {
	GameID          string  `json:"game_id"`
	EventID         int64   `json:"event_id"`
	OffensiveSide   string  `json:"offensive_side"`
	MomentCount     int     `json:"moment_count"`
	Contributing    int     `json:"contributing"`
	Skipped         int     `json:"skipped"`
	DurationSeconds float64 `json:"duration_s"`
	MeanHullArea    float64 `json:"mean_hull_area"`
	MeanAvgPairwise float64 `json:"mean_avg_pairwise"`
	MeanOpenCount   float64 `json:"mean_open_count"`
	MeanScore       float64 `json:"mean_score"`
	ScoreVariance   float64 `json:"score_variance"`
}

// RecordGame upserts a game's metadata row.
func (s *Store) RecordGame(info GameInfo) error {
	_, err := s.Exec(
		`INSERT OR REPLACE INTO games (
			game_id, game_date, home_team_id, away_team_id, home_name, away_name
		) VALUES (?, ?, ?, ?, ?, ?)`,
		info.GameID, info.GameDate, info.HomeTeamID, info.AwayTeamID, info.HomeName, info.AwayName,
	)
	if err != nil {
		return fmt.Errorf("record game %s: %w", info.GameID, err)
	}
	return nil
}

// RecordEventSummary upserts one event's aggregate, derived on the spot from
// the event so stored rows can never disagree with the metric definitions.
func (s *Store) RecordEventSummary(gameID string, ev *game.Event, cfg spacing.Config) error {
	agg := spacing.AggregateEvent(ev, cfg)
	_, err := s.Exec(
		`INSERT OR REPLACE INTO event_summaries (
			game_id, event_id, offensive_side, moment_count, contributing, skipped,
			duration_s, mean_hull_area, mean_avg_pairwise, mean_open_count, mean_score,
			score_variance
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		gameID, ev.ID, ev.OffensiveSide.String(), ev.Len(), agg.Contributing, agg.Skipped,
		ev.Duration(), agg.MeanHullArea, agg.MeanAvgPairwise, agg.MeanOpenCount, agg.MeanScore,
		agg.ScoreVariance,
	)
	if err != nil {
		return fmt.Errorf("record event %d of game %s: %w", ev.ID, gameID, err)
	}
	return nil
}

// Games lists stored games, newest first.
func (s *Store) Games() ([]GameInfo, error) {
	rows, err := s.Query(`SELECT game_id, game_date, home_team_id, away_team_id, home_name, away_name
		FROM games ORDER BY timestamp DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []GameInfo
	for rows.Next() {
		var g GameInfo
		if err := rows.Scan(&g.GameID, &g.GameDate, &g.HomeTeamID, &g.AwayTeamID, &g.HomeName, &g.AwayName); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

// EventSummaries lists a game's stored event aggregates in event order.
func (s *Store) EventSummaries(gameID string) ([]EventSummary, error) {
	rows, err := s.Query(
		`SELECT game_id, event_id, offensive_side, moment_count, contributing, skipped,
			duration_s, mean_hull_area, mean_avg_pairwise, mean_open_count, mean_score,
			score_variance
		FROM event_summaries WHERE game_id = ? ORDER BY event_id ASC`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []EventSummary
	for rows.Next() {
		var es EventSummary
		if err := rows.Scan(
			&es.GameID, &es.EventID, &es.OffensiveSide, &es.MomentCount, &es.Contributing,
			&es.Skipped, &es.DurationSeconds, &es.MeanHullArea, &es.MeanAvgPairwise,
			&es.MeanOpenCount, &es.MeanScore, &es.ScoreVariance,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, es)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}
