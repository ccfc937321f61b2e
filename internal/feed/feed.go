// Package feed simulates chat participants. Messages are paced by a rate
// limiter, persisted, then delivered into the running program.
package feed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/abelbrown/chatfollow/internal/chatlog"
	"github.com/abelbrown/chatfollow/internal/logging"
	"github.com/abelbrown/chatfollow/internal/otel"
	"github.com/abelbrown/chatfollow/internal/store"
)

// Sender delivers messages into the UI loop. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Config paces the feed.
type Config struct {
	Interval time.Duration // mean gap between messages; <= 0 means unpaced
	Burst    int
	Senders  []string
	Limit    int // stop after this many messages; 0 runs until cancelled
}

var lines = []string{
	"did anyone look at the flaky test?",
	"pushed a fix, can someone review",
	"lunch?",
	"the deploy is green",
	"I think the cache is stale again",
	"reverting that last change for now",
	"+1",
	"meeting moved to 3pm",
	"who owns the billing service these days",
	"works on my machine",
	"ok that was a long one, scrolling back up to read it properly before I reply to anything else in here",
	"ship it",
}

// Feed produces chat messages in the background.
type Feed struct {
	store *store.Store // optional: nil skips persistence
	log   *otel.Logger // optional
	cfg   Config
	rnd   *rand.Rand
	wg    sync.WaitGroup
}

// New creates a Feed. s and log may be nil.
func New(s *store.Store, cfg Config, log *otel.Logger) *Feed {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if len(cfg.Senders) == 0 {
		cfg.Senders = []string{"anon"}
	}
	return &Feed{
		store: s,
		log:   log,
		cfg:   cfg,
		rnd:   rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6368617466)),
	}
}

// Start runs the feed in a goroutine until ctx is cancelled or Limit is reached.
func (f *Feed) Start(ctx context.Context, s Sender) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		if err := f.Run(ctx, s); err != nil {
			f.log.Error(otel.KindFeedError, "feed", err)
			logging.Error("feed stopped", "err", err)
		}
	}()
}

// Wait blocks until the goroutine started by Start exits.
func (f *Feed) Wait() {
	f.wg.Wait()
}

// Run generates, persists and delivers messages. Cancellation is not an error.
func (f *Feed) Run(ctx context.Context, s Sender) error {
	limit := rate.Inf
	if f.cfg.Interval > 0 {
		limit = rate.Every(f.cfg.Interval)
	}
	limiter := rate.NewLimiter(limit, f.cfg.Burst)

	g, ctx := errgroup.WithContext(ctx)
	out := make(chan store.Message)

	g.Go(func() error {
		defer close(out)
		for n := 0; f.cfg.Limit == 0 || n < f.cfg.Limit; n++ {
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			select {
			case out <- f.next():
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})

	g.Go(func() error {
		for m := range out {
			f.deliver(m, s)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	return nil
}

func (f *Feed) next() store.Message {
	return store.Message{
		ID:     uuid.NewString(),
		Sender: f.cfg.Senders[f.rnd.IntN(len(f.cfg.Senders))],
		Body:   lines[f.rnd.IntN(len(lines))],
		At:     time.Now(),
	}
}

// deliver persists m and hands it to the UI. A failed save still delivers:
// the message is live even if history will miss it.
func (f *Feed) deliver(m store.Message, s Sender) {
	ev := otel.Event{Level: otel.LevelDebug, Kind: otel.KindMessage, Comp: "feed", Source: m.Sender, Msg: m.ID}
	if f.store != nil {
		start := time.Now()
		saved, err := f.store.SaveMessage(m)
		ev.Dur = time.Since(start)
		ev.Extra = map[string]any{"saved": saved}
		if err != nil {
			f.log.Error(otel.KindStoreError, "feed", err)
			logging.Warn("feed: save failed", "id", m.ID, "err", err)
		}
	}
	f.log.Emit(ev)
	if s != nil {
		s.Send(chatlog.MessageReceived{Message: m})
	}
}
