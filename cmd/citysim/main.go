// Command citysim runs the mini-city simulation headless and serves it
// over HTTP for a browser UI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/mini-city/internal/api"
	"github.com/talgya/mini-city/internal/chronicle"
	"github.com/talgya/mini-city/internal/engine"
	"github.com/talgya/mini-city/internal/news"
)

func main() {
	setupLogging()

	cfg := engine.DefaultConfig()
	if v := os.Getenv("MINICITY_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			slog.Error("bad MINICITY_SEED", "value", v, "error", err)
			os.Exit(1)
		}
		cfg.Seed = seed
	}

	port := 8080
	if v := os.Getenv("MINICITY_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			slog.Error("bad MINICITY_PORT", "value", v, "error", err)
			os.Exit(1)
		}
		port = p
	}

	// ── News source ───────────────────────────────────────────────────
	if url := os.Getenv("MINICITY_NEWS_URL"); url != "" {
		cfg.News = news.NewClient(url)
		slog.Info("news source", "kind", "remote", "url", url)
	} else {
		cfg.News = news.NewDesk(cfg.Seed)
		slog.Info("news source", "kind", "local desk")
	}

	eng := engine.New(cfg)

	// ── Journal ───────────────────────────────────────────────────────
	var journal *chronicle.Journal
	if path := os.Getenv("MINICITY_DB"); path != "" {
		var err error
		journal, err = chronicle.Open(path)
		if err != nil {
			slog.Error("failed to open journal", "path", path, "error", err)
			os.Exit(1)
		}
		defer journal.Close()
		journal.LogSummary()
	} else {
		slog.Info("MINICITY_DB not set — city runs without a journal")
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	srv := &api.Server{Eng: eng, Journal: journal, Port: port}

	eng.OnDay = func(s engine.Stats) {
		slog.Info("day over",
			"day", s.Day,
			"treasury", "$"+humanize.Comma(int64(s.Money)),
			"population", humanize.Comma(int64(s.Population)),
		)
		if journal != nil {
			if err := journal.RecordDay(s.Day, s.Money, s.Population); err != nil {
				slog.Error("journal day write failed", "error", err)
			}
		}
	}
	eng.OnNews = func(it news.Item) {
		srv.BroadcastNews(it)
		if journal != nil {
			if err := journal.RecordHeadline(eng.Stats().Day, it); err != nil {
				slog.Error("journal headline write failed", "error", err)
			}
		}
	}

	srv.Start()

	// ── Start ─────────────────────────────────────────────────────────
	if err := eng.Start(); err != nil {
		slog.Error("engine start failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("\nMini City is open: $%s in the treasury, land for sale.\n",
		humanize.Comma(int64(eng.Stats().Money)))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", port)
	fmt.Println("Running... (Ctrl+C to stop)")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	eng.Stop()
	fmt.Println("Simulation stopped.")
}

// setupLogging configures slog from MINICITY_LOG_LEVEL (debug, info,
// warn, error; default info).
func setupLogging() {
	level := slog.LevelInfo
	switch os.Getenv("MINICITY_LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
