package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	"github.com/sadopc/taskflow/internal/config"
	"github.com/sadopc/taskflow/internal/home"
	"github.com/sadopc/taskflow/internal/store"
	"github.com/sadopc/taskflow/internal/tui"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadOrCreate(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	logFile, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	s, err := store.New(cfg.DBPath)
	if err != nil {
		log.WithError(err).Error("open database")
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	settings, closeSettings, err := openSettings(cfg, s)
	if err != nil {
		log.WithError(err).Error("open settings backend")
		fmt.Fprintf(os.Stderr, "error opening settings: %v\n", err)
		os.Exit(1)
	}
	defer closeSettings()

	h := home.New(s, settings, home.WithDebounce(cfg.SearchDebounce()))
	defer h.Close()

	log.WithFields(log.Fields{
		"db":       cfg.DBPath,
		"settings": cfg.Settings.Backend,
	}).Info("taskflow started")

	app := tui.NewApp(h, s, cfg.ExportDir)
	p := tea.NewProgram(app, tea.WithAltScreen())

	final, err := p.Run()
	if a, ok := final.(tui.App); ok {
		a.Close()
	}
	if err != nil {
		log.WithError(err).Error("program exited with error")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	log.Info("taskflow stopped")
}

// setupLogging sends logs to the configured file. The terminal belongs to
// the UI.
func setupLogging(cfg config.Config) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(cfg.Level())
	return f, nil
}

// openSettings picks the settings backend. The SQLite store doubles as the
// default one.
func openSettings(cfg config.Config, s *store.Store) (home.SettingsSource, func(), error) {
	if cfg.Settings.Backend != config.BackendRedis {
		return s, func() {}, nil
	}

	opts, err := cfg.RedisOptions()
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	log.WithFields(log.Fields{"addr": opts.Addr, "key": cfg.Settings.Redis.Key}).Info("using redis settings")
	return store.NewRedisSettings(client, cfg.Settings.Redis.Key), func() { client.Close() }, nil
}
