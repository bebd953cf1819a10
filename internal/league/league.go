// Package league owns the canonical in-memory league document.
//
// Every mutation runs the same pipeline: transform a clone, swap it in,
// persist it through the storage chain, publish it to the other contexts on
// the broadcast channel and notify local observers. Persistence failures are
// logged and never roll back the in-memory state.
package league

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dominopro/dominopro-server/internal/broadcast"
	"github.com/dominopro/dominopro-server/internal/domain"
	domainerrors "github.com/dominopro/dominopro-server/internal/errors"
	"github.com/dominopro/dominopro-server/internal/id"
	"github.com/dominopro/dominopro-server/internal/logger"
	"github.com/dominopro/dominopro-server/internal/store"
)

const defaultPersistTimeout = 5 * time.Second

// ChangeKind says where a new state came from.
type ChangeKind string

// Change kinds.
const (
	ChangeLocal  ChangeKind = "local"
	ChangeRemote ChangeKind = "remote"
	ChangeLoaded ChangeKind = "loaded"
)

// Change is delivered to observers after the state was replaced.
// Observers share State and must not modify it.
type Change struct {
	Kind   ChangeKind
	State  *domain.LeagueState
	Events []domain.AchievementEvent
}

// Options configures a League.
type Options struct {
	// Store persists the document, normally a *store.Chain.
	Store store.Backend
	// Endpoint joins the broadcast channel. Nil disables cross-context sync.
	Endpoint *broadcast.Endpoint
	Logger   *slog.Logger
	// Clock defaults to time.Now. Calendar badges use its location.
	Clock          func() time.Time
	PersistTimeout time.Duration
	// NewID defaults to id.MustGenerate.
	NewID id.Func
	// Rand picks level-up messages. Nil uses the global source.
	Rand *rand.Rand
}

// League is the League State Container.
type League struct {
	store          store.Backend
	endpoint       *broadcast.Endpoint
	logger         *slog.Logger
	clock          func() time.Time
	newID          id.Func
	rnd            *rand.Rand
	persistTimeout time.Duration

	// commitMu serializes whole pipelines so persisted and published
	// documents follow the order of in-memory swaps.
	commitMu sync.Mutex
	// lastWrite is when the current document was published, here or by
	// the context that sent it. Guarded by commitMu.
	lastWrite time.Time

	mu     sync.RWMutex
	state  *domain.LeagueState
	active *domain.AchievementEvent

	obsMu     sync.Mutex
	observers map[uint64]func(Change)
	nextObs   uint64

	unsubscribeRemote func()
}

// New creates a container holding the initial state. Call Load to read the
// persisted document.
func New(opts Options) *League {
	l := &League{
		store:          opts.Store,
		endpoint:       opts.Endpoint,
		logger:         logger.OrDiscard(opts.Logger),
		clock:          opts.Clock,
		newID:          opts.NewID,
		rnd:            opts.Rand,
		persistTimeout: opts.PersistTimeout,
		state:          domain.NewInitialState(),
		observers:      make(map[uint64]func(Change)),
	}
	if l.clock == nil {
		l.clock = time.Now
	}
	if l.newID == nil {
		l.newID = id.MustGenerate
	}
	if l.persistTimeout <= 0 {
		l.persistTimeout = defaultPersistTimeout
	}
	if l.endpoint != nil {
		l.unsubscribeRemote = l.endpoint.Subscribe(l.applyRemote)
	}
	return l
}

// Close stops receiving remote documents. The endpoint itself is left open.
func (l *League) Close() {
	if l.unsubscribeRemote != nil {
		l.unsubscribeRemote()
	}
}

// Load replaces the in-memory state with the persisted document.
// It never fails: storage problems resolve to the initial state.
func (l *League) Load(ctx context.Context) store.LoadReport {
	var (
		state  *domain.LeagueState
		report = store.LoadReport{Source: store.SourceDefault}
	)
	if chain, ok := l.store.(*store.Chain); ok {
		state, report = chain.LoadWithReport(ctx)
	} else if l.store != nil {
		loaded, err := l.store.Load(ctx)
		if err == nil && loaded != nil {
			state, report.Source = loaded, store.SourceDurable
		} else if err != nil {
			l.logger.Warn("failed to load league state", slog.String("error", err.Error()))
		}
	}
	if state == nil {
		state = domain.NewInitialState()
	}
	state.Normalize()
	relevel(state)

	l.commitMu.Lock()
	l.mu.Lock()
	l.state = state
	l.mu.Unlock()
	l.commitMu.Unlock()

	l.logger.Info("league state loaded",
		slog.String("source", string(report.Source)),
		slog.Bool("healed", report.Healed),
		slog.Int("players", len(state.Players)),
		slog.Int("games", len(state.Games)),
		slog.Int("active_sessions", len(state.ActiveSessions)))

	l.notify(Change{Kind: ChangeLoaded, State: state})
	return report
}

// Snapshot returns a deep copy of the current state.
func (l *League) Snapshot() *domain.LeagueState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Clone()
}

// Subscribe registers an observer called after every state replacement.
// Observers run synchronously on the goroutine that made the change, after
// the commit lock is released.
func (l *League) Subscribe(fn func(Change)) (unsubscribe func()) {
	l.obsMu.Lock()
	key := l.nextObs
	l.nextObs++
	l.observers[key] = fn
	l.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.obsMu.Lock()
			delete(l.observers, key)
			l.obsMu.Unlock()
		})
	}
}

func (l *League) notify(c Change) {
	l.obsMu.Lock()
	fns := make([]func(Change), 0, len(l.observers))
	for key := uint64(0); key < l.nextObs; key++ {
		if fn, ok := l.observers[key]; ok {
			fns = append(fns, fn)
		}
	}
	l.obsMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

// commit runs one mutation through the pipeline. fn edits a private clone;
// when it returns an error nothing is swapped, persisted or published.
func (l *League) commit(ctx context.Context, op string, fn func(next *domain.LeagueState) ([]domain.AchievementEvent, error)) (*domain.LeagueState, error) {
	l.commitMu.Lock()

	l.mu.RLock()
	next := l.state.Clone()
	l.mu.RUnlock()

	events, err := fn(next)
	if err != nil {
		l.commitMu.Unlock()
		return nil, err
	}
	next.Normalize()

	l.mu.Lock()
	l.state = next
	if len(events) > 0 {
		first := events[0]
		l.active = &first
	}
	l.mu.Unlock()

	l.persist(ctx, op, next)
	l.publish(op, next)
	l.commitMu.Unlock()

	l.notify(Change{Kind: ChangeLocal, State: next, Events: events})

	return next.Clone(), nil
}

func (l *League) persist(ctx context.Context, op string, state *domain.LeagueState) {
	if l.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.persistTimeout)
	defer cancel()

	// A backend that ignores ctx keeps writing in the background; state is
	// never modified after the swap so sharing it is safe.
	done := make(chan error, 1)
	go func() { done <- l.store.Save(ctx, state) }()

	select {
	case err := <-done:
		if err != nil {
			l.logger.Warn("failed to persist league state",
				slog.String("op", op),
				slog.String("error", err.Error()))
		}
	case <-ctx.Done():
		err := domainerrors.TransactionFailed(l.store.Name(), ctx.Err())
		l.logger.Warn("league state write timed out",
			slog.String("op", op),
			slog.Duration("timeout", l.persistTimeout),
			slog.String("error", err.Error()))
	}
}

func (l *League) publish(op string, state *domain.LeagueState) {
	if l.endpoint == nil {
		return
	}
	l.lastWrite = time.Now()
	if err := l.endpoint.Publish(state); err != nil {
		l.logger.Warn("failed to broadcast league state",
			slog.String("op", op),
			slog.String("error", err.Error()))
	}
}

// applyRemote replaces the state with a document from another context.
// It is neither persisted nor re-broadcast: the sender already did both.
// A document published before this context's latest write is dropped, so
// every context settles on the last publish.
func (l *League) applyRemote(state *domain.LeagueState, sentAt time.Time) {
	state.Normalize()

	l.commitMu.Lock()
	if sentAt.Before(l.lastWrite) {
		l.commitMu.Unlock()
		l.logger.Debug("dropped stale remote league state",
			slog.Time("sent_at", sentAt),
			slog.Time("last_write", l.lastWrite))
		return
	}
	l.lastWrite = sentAt
	l.mu.Lock()
	l.state = state
	l.mu.Unlock()
	l.commitMu.Unlock()

	l.logger.Debug("applied remote league state",
		slog.Int("players", len(state.Players)),
		slog.Int("games", len(state.Games)))

	l.notify(Change{Kind: ChangeRemote, State: state})
}
