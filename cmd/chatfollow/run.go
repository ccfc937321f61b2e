package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/abelbrown/chatfollow/internal/bridge"
	"github.com/abelbrown/chatfollow/internal/chatlog"
	"github.com/abelbrown/chatfollow/internal/config"
	"github.com/abelbrown/chatfollow/internal/feed"
	"github.com/abelbrown/chatfollow/internal/host"
	"github.com/abelbrown/chatfollow/internal/logging"
	"github.com/abelbrown/chatfollow/internal/otel"
	"github.com/abelbrown/chatfollow/internal/scroll"
	"github.com/abelbrown/chatfollow/internal/store"
)

func runChat() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := configFlag(fs)
	noFeed := fs.Bool("no-feed", false, "Disable the simulated participants")
	debug := fs.Bool("debug", false, "Debug-level application log")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(*cfgPath)

	level := log.InfoLevel
	if *debug {
		level = log.DebugLevel
	}
	if err := logging.Init(cfg.LogDir(), level); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Close()

	evFile, err := os.OpenFile(cfg.EventLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: open event log: %v\n", err)
		os.Exit(1)
	}
	defer evFile.Close()
	events := otel.NewLogger(evFile)
	defer events.Close()
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events.SetRingBuffer(ring)

	st := openDB(cfg)
	defer st.Close()

	if err := run(cfg, st, events, ring, !*noFeed && cfg.Feed.Enabled); err != nil {
		logging.Error("chatfollow exited with error", "err", err)
		events.Error(otel.KindError, "main", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, st *store.Store, events *otel.Logger, ring *otel.RingBuffer, withFeed bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sensor, err := scroll.NewSensor(scroll.Tolerance(cfg.Scroll.Tolerance))
	if err != nil {
		return fmt.Errorf("scroll sensor: %w", err)
	}

	hooks := host.NewHooks()
	slot := scroll.NewSlot()

	var br *bridge.Bridge
	panel := chatlog.New(hooks, slot, chatlog.Options{
		RegionName:     cfg.Scroll.RegionSelector,
		FallbackName:   cfg.Scroll.FallbackSelector,
		ControlName:    cfg.Scroll.JumpControl,
		ShowTimestamps: cfg.UI.ShowTimestamps,
		SenderWidth:    cfg.UI.SenderWidth,
		MaxMessages:    cfg.Storage.HistoryLimit,
		LoadHistory: func() tea.Cmd {
			return func() tea.Msg {
				msgs, err := st.RecentMessages(cfg.Storage.HistoryLimit)
				return chatlog.HistoryLoaded{Messages: msgs, Err: err}
			}
		},
		Log:      events,
		Ring:     ring,
		Mode:     func() scroll.Mode { return br.Interceptor().Mode() },
		AtBottom: func() bool { return br.State().AtBottom() },
	})

	br = bridge.New(bridge.Config{
		RegionSelector:   cfg.Scroll.RegionSelector,
		FallbackSelector: cfg.Scroll.FallbackSelector,
		JumpControl:      cfg.Scroll.JumpControl,
	}, sensor, scroll.NewState(), slot, func() (host.Panel, bool) { return panel, true }, events)
	br.Attach(hooks)

	logging.Info("chatfollow starting",
		"tolerance", cfg.Scroll.Tolerance,
		"db", cfg.DBPath(),
		"feed", withFeed,
		"session", events.SessionID())
	events.Info(otel.KindStartup, "main", fmt.Sprintf("tolerance=%d feed=%t", cfg.Scroll.Tolerance, withFeed))

	program := tea.NewProgram(panel, tea.WithAltScreen(), tea.WithMouseCellMotion())

	var f *feed.Feed
	if withFeed {
		f = feed.New(st, feed.Config{
			Interval: cfg.Feed.Interval,
			Burst:    cfg.Feed.Burst,
			Senders:  cfg.Feed.Senders,
		}, events)
		f.Start(ctx, program)
	}

	_, runErr := program.Run()

	cancel()
	if f != nil {
		f.Wait()
	}

	stats := br.Interceptor().Stats()
	logging.Info("chatfollow stopped",
		"mode", br.Interceptor().Mode(),
		"forwarded", stats.Forwarded,
		"suppressed", stats.Suppressed,
		"detached", stats.Detached)
	events.Info(otel.KindShutdown, "main", fmt.Sprintf("forwarded=%d suppressed=%d detached=%d",
		stats.Forwarded, stats.Suppressed, stats.Detached))

	if runErr != nil {
		return fmt.Errorf("run program: %w", runErr)
	}
	return nil
}
