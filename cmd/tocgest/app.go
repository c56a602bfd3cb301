package main

import (
	"io"
	"log/slog"

	"github.com/dgallion1/tocgest/internal/config"
	"github.com/dgallion1/tocgest/internal/export"
	"github.com/dgallion1/tocgest/internal/pipeline"
)

// App owns every long-lived service. It is built once per command run and
// passed down explicitly.
type App struct {
	Config    config.Config
	Log       *slog.Logger
	Stats     *pipeline.Stats
	Processor *pipeline.Processor
	Exporter  *export.Exporter
}

func newApp(cfgFile string, logOut io.Writer) (*App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	log := newLogger(logOut, cfg.LogLevel)
	stats := pipeline.NewStats(cfg.StatsWindow)
	return &App{
		Config:    cfg,
		Log:       log,
		Stats:     stats,
		Processor: pipeline.NewProcessor(cfg, stats, log),
		Exporter:  export.New(log),
	}, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}
