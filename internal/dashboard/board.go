package dashboard

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/newthinker/pickboard/internal/core"
	"go.uber.org/zap"
)

// User-visible error prefixes.
const (
	fetchFailedPrefix   = "Failed to fetch stock recommendations: "
	triggerFailedPrefix = "Failed to trigger update: "
)

// Fetch reasons, reported to the Observer.
const (
	ReasonMount    = "mount"
	ReasonPoll     = "poll"
	ReasonFollowUp = "follow_up"
)

// Source is the recommendation engine as seen by the board.
type Source interface {
	FetchRecommendations(ctx context.Context) (*core.RecommendationSet, error)
	TriggerRecalculation(ctx context.Context) error
}

// Observer receives board outcomes, typically for metrics.
type Observer interface {
	ObserveFetch(reason string, err error, duration time.Duration)
	ObserveTrigger(err error)
	ObserveState(s State)
}

// Config holds board timing.
type Config struct {
	PollInterval   time.Duration // recurring fetch cadence
	RefreshDelay   time.Duration // wait between an acknowledged trigger and its follow-up fetch
	RequestTimeout time.Duration // per engine call
}

// DefaultConfig returns the standard 5 minute poll with a 2 second
// follow-up delay.
func DefaultConfig() Config {
	return Config{
		PollInterval:   5 * time.Minute,
		RefreshDelay:   2 * time.Second,
		RequestTimeout: 30 * time.Second,
	}
}

type eventKind int

const (
	evFetchDone eventKind = iota
	evTriggerDone
	evRefresh
)

type event struct {
	kind     eventKind
	epoch    uint64
	reason   string
	set      *core.RecommendationSet
	err      error
	duration time.Duration
	reply    chan error
}

// Board is the polling/refresh state machine behind the dashboard.
type Board struct {
	cfg      Config
	src      Source
	logger   *zap.Logger
	observer Observer

	events chan event

	mu      sync.RWMutex
	state   State
	running bool
	epoch   uint64
	cancel  context.CancelFunc
	done    chan struct{}
	wg      sync.WaitGroup

	subsMu    sync.Mutex
	subs      map[int]chan State
	nextSubID int
}

// New creates a board reading from src. It does nothing until Start.
func New(cfg Config, src Source, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.RefreshDelay < 0 {
		cfg.RefreshDelay = def.RefreshDelay
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}

	return &Board{
		cfg:    cfg,
		src:    src,
		logger: logger.Named("board"),
		events: make(chan event),
		state:  initialState(),
		subs:   make(map[int]chan State),
	}
}

// SetObserver sets the outcome observer. Call before Start.
func (b *Board) SetObserver(o Observer) {
	b.observer = o
}

// Start mounts the board: it fetches immediately and then every
// PollInterval until Stop.
func (b *Board) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return core.WrapError(core.ErrAlreadyRunning, nil)
	}
	ctx, cancel := context.WithCancel(ctx)
	b.running = true
	b.epoch++
	b.cancel = cancel
	b.done = make(chan struct{})
	version := b.state.Version
	b.state = initialState()
	b.state.Version = version
	l := &loop{b: b, ctx: ctx, epoch: b.epoch, done: b.done}
	b.mu.Unlock()

	b.wg.Add(1)
	go l.run()

	b.logger.Info("board started",
		zap.Duration("poll_interval", b.cfg.PollInterval),
		zap.Duration("refresh_delay", b.cfg.RefreshDelay),
	)
	return nil
}

// Stop unmounts the board. Timers are released, in-flight requests are
// cancelled and any result still on its way is discarded. It waits for
// background goroutines until ctx expires.
func (b *Board) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	b.epoch++
	cancel := b.cancel
	b.mu.Unlock()

	cancel()

	stopped := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		b.logger.Info("board stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the board is mounted.
func (b *Board) Running() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.running
}

// Snapshot returns the current state.
func (b *Board) Snapshot() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Subscribe returns a channel carrying the latest state. The current state
// is delivered immediately; a slow reader only misses intermediate states.
// The returned func unsubscribes.
func (b *Board) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	// Holding subsMu across the snapshot means any later apply publishes
	// to this channel.
	b.subsMu.Lock()
	ch <- b.Snapshot()
	id := b.nextSubID
	b.nextSubID++
	b.subs[id] = ch
	b.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.subsMu.Lock()
			delete(b.subs, id)
			b.subsMu.Unlock()
		})
	}
}

// Refresh asks the engine to recompute and schedules a follow-up fetch once
// it acknowledges. It returns as soon as the request is accepted; the
// outcome shows up in the state. While a request is outstanding it fails
// with core.ErrRefreshInProgress.
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.RLock()
	running, done, epoch := b.running, b.done, b.epoch
	b.mu.RUnlock()
	if !running {
		return core.WrapError(core.ErrNotRunning, nil)
	}

	reply := make(chan error, 1)
	select {
	case b.events <- event{kind: evRefresh, epoch: epoch, reply: reply}:
	case <-done:
		return core.WrapError(core.ErrNotRunning, nil)
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-done:
		return core.WrapError(core.ErrNotRunning, nil)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loop is one mount of the board. Its fields are owned by the dispatch
// goroutine.
type loop struct {
	b     *Board
	ctx   context.Context
	epoch uint64
	done  chan struct{}

	inflight int
	followUp *time.Timer
}

// run is the dispatch loop. It is the only writer of state.
func (l *loop) run() {
	b := l.b
	defer b.wg.Done()
	defer close(l.done)

	ticker := time.NewTicker(b.cfg.PollInterval)
	defer ticker.Stop()
	defer l.stopFollowUp()

	l.startFetch(ReasonMount)

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-ticker.C:
			l.startFetch(ReasonPoll)
		case <-l.followUpC():
			l.followUp = nil
			l.startFetch(ReasonFollowUp)
		case ev := <-b.events:
			if !l.alive(ev.epoch) {
				if ev.reply != nil {
					ev.reply <- core.WrapError(core.ErrNotRunning, nil)
				}
				b.logger.Debug("dropping event after teardown", zap.Int("kind", int(ev.kind)))
				continue
			}
			l.handle(ev)
		}
	}
}

// alive is the liveness guard applied to every completion.
func (l *loop) alive(epoch uint64) bool {
	if l.ctx.Err() != nil || epoch != l.epoch {
		return false
	}
	l.b.mu.RLock()
	defer l.b.mu.RUnlock()
	return l.b.running && l.b.epoch == epoch
}

func (l *loop) handle(ev event) {
	b := l.b
	switch ev.kind {
	case evRefresh:
		ev.reply <- l.startTrigger()

	case evFetchDone:
		l.inflight--
		if b.observer != nil {
			b.observer.ObserveFetch(ev.reason, ev.err, ev.duration)
		}
		if ev.err != nil {
			msg := fetchFailedPrefix + ev.err.Error()
			b.logger.Warn("fetch failed",
				zap.String("reason", ev.reason),
				zap.Duration("duration", ev.duration),
				zap.Error(ev.err),
			)
			l.apply(func(s *State) {
				s.Error = msg
			})
			return
		}
		stocks := slices.Clone(ev.set.Recommendations)
		if stocks == nil {
			stocks = []core.StockRecommendation{}
		}
		b.logger.Info("recommendations updated",
			zap.String("reason", ev.reason),
			zap.Int("count", len(stocks)),
			zap.String("last_updated", ev.set.LastUpdated),
			zap.Duration("duration", ev.duration),
		)
		l.apply(func(s *State) {
			s.Stocks = stocks
			s.LastUpdated = ev.set.LastUpdated
			s.Error = ""
		})

	case evTriggerDone:
		l.inflight--
		if b.observer != nil {
			b.observer.ObserveTrigger(ev.err)
		}
		if ev.err != nil {
			msg := triggerFailedPrefix + ev.err.Error()
			b.logger.Warn("trigger failed", zap.Error(ev.err))
			l.apply(func(s *State) {
				s.Error = msg
			})
			return
		}
		b.logger.Info("recalculation acknowledged", zap.Duration("follow_up_in", b.cfg.RefreshDelay))
		l.followUp = time.NewTimer(b.cfg.RefreshDelay)
	}
}

func (l *loop) startFetch(reason string) {
	b := l.b
	if !l.alive(l.epoch) {
		return
	}
	l.inflight++
	l.apply(func(s *State) {
		s.Error = ""
	})

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		reqCtx, cancel := context.WithTimeout(l.ctx, b.cfg.RequestTimeout)
		defer cancel()

		start := time.Now()
		set, err := b.src.FetchRecommendations(reqCtx)
		if err == nil && set == nil {
			err = core.WrapError(core.ErrParse, errors.New("no recommendation set returned"))
		}
		l.post(event{
			kind:     evFetchDone,
			epoch:    l.epoch,
			reason:   reason,
			set:      set,
			err:      err,
			duration: time.Since(start),
		})
	}()
}

func (l *loop) startTrigger() error {
	b := l.b
	if l.busy() {
		return core.WrapError(core.ErrRefreshInProgress, nil)
	}

	l.inflight++
	l.apply(func(s *State) {
		s.Error = ""
	})

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		reqCtx, cancel := context.WithTimeout(l.ctx, b.cfg.RequestTimeout)
		defer cancel()

		err := b.src.TriggerRecalculation(reqCtx)
		l.post(event{kind: evTriggerDone, epoch: l.epoch, err: err})
	}()
	return nil
}

// post hands a completion to the dispatch loop, or drops it once this mount
// is torn down.
func (l *loop) post(ev event) {
	select {
	case l.b.events <- ev:
	case <-l.ctx.Done():
	}
}

// busy reports whether any request or the follow-up delay is outstanding.
func (l *loop) busy() bool {
	return l.inflight > 0 || l.followUp != nil
}

func (l *loop) followUpC() <-chan time.Time {
	if l.followUp == nil {
		return nil
	}
	return l.followUp.C
}

func (l *loop) stopFollowUp() {
	if l.followUp != nil {
		l.followUp.Stop()
		l.followUp = nil
	}
}

// apply mutates state and publishes the result.
func (l *loop) apply(fn func(*State)) {
	b := l.b
	b.mu.Lock()
	fn(&b.state)
	b.state.Loading = l.busy()
	b.state.Version++
	b.state.UpdatedAt = time.Now()
	s := b.state
	b.mu.Unlock()

	if b.observer != nil {
		b.observer.ObserveState(s)
	}
	b.publish(s)
}

func (b *Board) publish(s State) {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- s:
		default:
			// Replace the stale state the reader has not picked up yet.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}
