// Command spacing loads basketball tracking games, derives floor-spacing
// metrics, and serves or exports the results.
//
// Usage:
//
//	spacing -game games/sample.json -db spacing.db
//	spacing -game games/sample.json -event 50 -report event50.html -csv event50.csv
//	spacing -game games/sample.json -event 50 -plot frame.png
//	spacing -game games/sample.json -serve :8080
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtside-data/spacing.report/internal/api"
	"github.com/courtside-data/spacing.report/internal/archive"
	"github.com/courtside-data/spacing.report/internal/config"
	"github.com/courtside-data/spacing.report/internal/game"
	"github.com/courtside-data/spacing.report/internal/monitoring"
	"github.com/courtside-data/spacing.report/internal/playback"
	"github.com/courtside-data/spacing.report/internal/report"
	"github.com/courtside-data/spacing.report/internal/spacing"
	"github.com/courtside-data/spacing.report/internal/store"
	"github.com/courtside-data/spacing.report/internal/version"
)

func main() {
	var (
		gamePath    = flag.String("game", "", "path to a SportVU-style JSON game file")
		dbPath      = flag.String("db", "spacing.db", "path to the summary database")
		configPath  = flag.String("config", "", "optional tuning JSON file")
		eventID     = flag.Int64("event", -1, "event id to report on (default: first event)")
		reportPath  = flag.String("report", "", "write an HTML spacing chart to this path")
		csvPath     = flag.String("csv", "", "write per-moment metrics CSV to this path")
		plotPath    = flag.String("plot", "", "write a PNG court snapshot to this path")
		play        = flag.Bool("play", false, "play the selected event headless, logging metrics")
		serveAddr   = flag.String("serve", "", "serve the HTTP API on this address (e.g. :8080)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("spacing %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if *gamePath == "" {
		log.Fatal("a -game file is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		loaded, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("load tuning config: %v", err)
		}
		tuning = loaded
	}
	metricsCfg := tuning.MetricsConfig()

	g, err := archive.LoadGame(*gamePath)
	if err != nil {
		log.Fatalf("load game: %v", err)
	}
	monitoring.Logf("loaded game %s (%s vs %s, %d events)", g.GameID, g.HomeName, g.AwayName, len(g.Events))

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	if err := persistGame(st, g, metricsCfg); err != nil {
		log.Fatalf("persist summaries: %v", err)
	}

	ev := selectEvent(g, *eventID)

	if *reportPath != "" {
		if err := writeChart(*reportPath, g.GameID, ev, metricsCfg); err != nil {
			log.Fatalf("write report: %v", err)
		}
		monitoring.Logf("wrote spacing chart for event %d to %s", ev.ID, *reportPath)
	}

	if *csvPath != "" {
		if err := writeCSV(*csvPath, ev, metricsCfg); err != nil {
			log.Fatalf("write csv: %v", err)
		}
		monitoring.Logf("wrote metrics CSV for event %d to %s", ev.ID, *csvPath)
	}

	if *plotPath != "" {
		m, ok := snapshotMoment(ev)
		if !ok {
			log.Fatalf("event %d has no renderable moment", ev.ID)
		}
		if err := report.SaveCourtSnapshot(*plotPath, m, ev.OffensiveSide, metricsCfg); err != nil {
			log.Fatalf("write plot: %v", err)
		}
		monitoring.Logf("wrote court snapshot of frame %d to %s", m.FrameIdx, *plotPath)
	}

	if *play {
		if err := playEvent(ctx, ev, tuning.PlaybackConfig()); err != nil {
			log.Fatalf("playback: %v", err)
		}
	}

	if *serveAddr != "" {
		serve(ctx, *serveAddr, st, g, metricsCfg)
	}
}

func persistGame(st *store.Store, g *archive.Game, cfg spacing.Config) error {
	err := st.RecordGame(store.GameInfo{
		GameID: g.GameID, GameDate: g.GameDate,
		HomeTeamID: g.HomeTeamID, AwayTeamID: g.AwayTeamID,
		HomeName: g.HomeName, AwayName: g.AwayName,
	})
	if err != nil {
		return err
	}
	for _, ev := range g.Events {
		if err := st.RecordEventSummary(g.GameID, ev, cfg); err != nil {
			return err
		}
	}
	monitoring.Logf("recorded %d event summaries for game %s", len(g.Events), g.GameID)
	return nil
}

func selectEvent(g *archive.Game, id int64) *game.Event {
	if id < 0 {
		return g.Events[0]
	}
	for _, ev := range g.Events {
		if ev.ID == id {
			return ev
		}
	}
	log.Fatalf("event %d not found in game %s", id, g.GameID)
	return nil
}

// snapshotMoment picks the first clean moment for the still render.
func snapshotMoment(ev *game.Event) (game.Moment, bool) {
	for _, m := range ev.Moments() {
		if !m.Degraded {
			return m, true
		}
	}
	return game.Moment{}, false
}

func writeChart(path, gameID string, ev *game.Event, cfg spacing.Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	title := fmt.Sprintf("Spacing %s event %d", gameID, ev.ID)
	return report.WriteSpacingChart(f, title, ev, cfg)
}

func writeCSV(path string, ev *game.Event, cfg spacing.Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.WriteEventCSV(f, ev, cfg)
}

// playEvent drives the controller with a wall-clock ticker for one full pass
// over the event, logging the score at each step.
func playEvent(ctx context.Context, ev *game.Event, cfg playback.Config) error {
	ctrl := playback.NewController(cfg, func(idx int, m game.Moment, snap spacing.Snapshot) {
		if snap.Defined {
			monitoring.Logf("frame %4d  clock %6.2f  hull %7.1f  score %5.1f", idx, m.GameClock, snap.HullArea, snap.Score)
		} else {
			monitoring.Logf("frame %4d  clock %6.2f  metrics unavailable", idx, m.GameClock)
		}
	})
	if err := ctrl.Load(ev); err != nil {
		return err
	}
	if err := ctrl.Play(); err != nil {
		return err
	}

	const interval = 200 * time.Millisecond
	framesPerTick := interval.Seconds() * cfg.FrameRate * cfg.Speed
	ticks := int(float64(ev.Len())/framesPerTick) + 1

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			ctrl.Pause()
			return nil
		case <-ticker.C:
			if _, err := ctrl.Tick(interval); err != nil {
				return err
			}
		}
	}
	ctrl.Stop()
	return nil
}

func serve(ctx context.Context, addr string, st *store.Store, g *archive.Game, cfg spacing.Config) {
	srv := api.NewServer(st, cfg)
	srv.AddGame(g)

	server := &http.Server{
		Addr:    addr,
		Handler: srv.ServeMux(),
	}

	go func() {
		monitoring.Logf("serving spacing API on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("server shutdown: %v", err)
	}
}
