// Package api exposes loaded games, event spacing metrics and rendered
// charts over HTTP. The caller owns the http.Server lifecycle; this package
// only builds the mux.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/courtside-data/spacing.report/internal/archive"
	"github.com/courtside-data/spacing.report/internal/game"
	"github.com/courtside-data/spacing.report/internal/monitoring"
	"github.com/courtside-data/spacing.report/internal/report"
	"github.com/courtside-data/spacing.report/internal/spacing"
	"github.com/courtside-data/spacing.report/internal/store"
)

// Server serves the spacing API over a summary store and the games loaded
// into memory for detail queries.
type Server struct {
	store   *store.Store
	metrics spacing.Config
	games   map[string]*archive.Game
}

// NewServer builds a server over the given summary store.
func NewServer(st *store.Store, metrics spacing.Config) *Server {
	return &Server{
		store:   st,
		metrics: metrics,
		games:   make(map[string]*archive.Game),
	}
}

// AddGame registers a loaded game for the detail and chart endpoints.
func (s *Server) AddGame(g *archive.Game) {
	s.games[g.GameID] = g
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.homeHandler)
	mux.HandleFunc("/api/games", s.listGames)
	mux.HandleFunc("/api/summaries", s.listSummaries)
	mux.HandleFunc("/api/events", s.eventDetail)
	mux.HandleFunc("/charts/spacing", s.spacingChart)
	return mux
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Welcome to the Spacing Report Server!"))
}

func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	games, err := s.store.Games()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list games: %v", err))
		return
	}
	s.writeJSON(w, games)
}

func (s *Server) listSummaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		s.writeJSONError(w, http.StatusBadRequest, "game_id is required")
		return
	}
	summaries, err := s.store.EventSummaries(gameID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list summaries: %v", err))
		return
	}
	s.writeJSON(w, summaries)
}

// momentDetail is the JSON shape of one moment plus its metrics.
type momentDetail struct {
	FrameIdx  int           `json:"frame_idx"`
	Quarter   int           `json:"quarter"`
	GameClock float64       `json:"game_clock"`
	ShotClock *float64      `json:"shot_clock"`
	Degraded  bool          `json:"degraded"`
	Players   []game.Player `json:"players"`
	Ball      game.Ball     `json:"ball"`

	Metrics *spacing.Snapshot `json:"metrics,omitempty"`
}

type eventDetail struct {
	GameID        string            `json:"game_id"`
	EventID       int64             `json:"event_id"`
	OffensiveSide string            `json:"offensive_side"`
	Aggregate     spacing.Aggregate `json:"aggregate"`
	Moments       []momentDetail    `json:"moments"`
}

func (s *Server) eventDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ev, gameID, ok := s.lookupEvent(w, r)
	if !ok {
		return
	}

	detail := eventDetail{
		GameID:        gameID,
		EventID:       ev.ID,
		OffensiveSide: ev.OffensiveSide.String(),
		Aggregate:     spacing.AggregateEvent(ev, s.metrics),
	}
	for _, m := range ev.Moments() {
		md := momentDetail{
			FrameIdx:  m.FrameIdx,
			Quarter:   m.Quarter,
			GameClock: m.GameClock,
			ShotClock: m.ShotClock,
			Degraded:  m.Degraded,
			Players:   m.Players,
			Ball:      m.Ball,
		}
		if !m.Degraded {
			if snap := spacing.Compute(m, ev.OffensiveSide, s.metrics); snap.Defined {
				md.Metrics = &snap
			}
		}
		detail.Moments = append(detail.Moments, md)
	}
	s.writeJSON(w, detail)
}

func (s *Server) spacingChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ev, gameID, ok := s.lookupEvent(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	title := fmt.Sprintf("Spacing %s event %d", gameID, ev.ID)
	if err := report.WriteSpacingChart(w, title, ev, s.metrics); err != nil {
		monitoring.Logf("chart render failed: %v", err)
	}
}

// lookupEvent resolves the game_id/event_id query pair against the loaded
// games, writing the error response itself on failure.
func (s *Server) lookupEvent(w http.ResponseWriter, r *http.Request) (*game.Event, string, bool) {
	gameID := r.URL.Query().Get("game_id")
	g, found := s.games[gameID]
	if !found {
		s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("game %q not loaded", gameID))
		return nil, "", false
	}
	eventID, err := strconv.ParseInt(r.URL.Query().Get("event_id"), 10, 64)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "event_id must be an integer")
		return nil, "", false
	}
	for _, ev := range g.Events {
		if ev.ID == eventID {
			return ev, gameID, true
		}
	}
	s.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("event %d not found in game %q", eventID, gameID))
	return nil, "", false
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("failed to encode response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
