// Package store owns the single State value and the dispatch pipeline.
// Dispatch is the only mutation entry point: each action flows through
// the middleware chain (which may read state, run asynchronous effects
// and queue follow-up actions), then through the root reducer, then to
// subscribers. Reduce passes are strictly serialized; concurrent
// dispatchers interleave only at action boundaries.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jakechorley/shiftbook/pkg/core/state"
)

// Dispatch forwards an action down the pipeline.
type Dispatch func(ctx context.Context, a state.Action)

// Middleware wraps the dispatch pipeline. Calling next forwards the
// action to the rest of the chain and ultimately the reducer; a
// middleware that returns without calling next suppresses the action.
type Middleware func(api API, next Dispatch) Dispatch

// API is the store surface exposed to middleware.
type API interface {
	// State returns an immutable snapshot of the current state.
	State() state.State
	// Dispatch queues a follow-up action. It never blocks and is safe to
	// call from inside a middleware pass: the action is applied after
	// the pass currently in flight, in queue order.
	Dispatch(ctx context.Context, a state.Action)
	// Go runs an asynchronous effect on a supervised goroutine. Effects
	// report back by dispatching actions, never by touching state.
	Go(fn func())
}

// Subscriber is notified synchronously with each new state snapshot.
type Subscriber func(s state.State)

type envelope struct {
	ctx    context.Context
	action state.Action
	done   chan struct{}
}

// Store holds the current state and serializes all mutations.
type Store struct {
	logger *zap.Logger
	chain  Dispatch

	qmu      sync.Mutex
	idle     *sync.Cond
	queue    []envelope
	draining bool

	stateMu sync.RWMutex
	state   state.State

	subMu sync.Mutex
	subs  []Subscriber

	effects sync.WaitGroup
}

// New builds a store around the initial state. Middlewares run in
// registration order, ahead of the root reducer.
func New(initial state.State, logger *zap.Logger, middlewares ...Middleware) *Store {
	s := &Store{
		logger: logger,
		state:  initial,
	}
	s.idle = sync.NewCond(&s.qmu)

	chain := Dispatch(s.reduceAndNotify)
	api := &storeAPI{s: s}
	for i := len(middlewares) - 1; i >= 0; i-- {
		chain = middlewares[i](api, chain)
	}
	s.chain = chain

	s.logger.Debug("store initialized", zap.Int("middlewares", len(middlewares)))
	return s
}

// State returns the current state snapshot.
func (s *Store) State() state.State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Subscribe registers a subscriber. Subscribers are invoked synchronously
// on the dispatching goroutine after each reduce pass.
func (s *Store) Subscribe(fn Subscriber) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, fn)
}

// Dispatch applies an action and blocks until it has been reduced.
// Follow-up actions queued by middleware during the pass are applied
// before Dispatch returns; asynchronous effects it spawned are not
// waited for (see Wait).
func (s *Store) Dispatch(ctx context.Context, a state.Action) {
	env := envelope{ctx: ctx, action: a, done: make(chan struct{})}
	if s.enqueue(env) {
		s.drain()
		return
	}
	<-env.done
}

// dispatchAsync queues an action without blocking. Used by the middleware
// API so a pass in flight can add follow-ups without deadlocking.
func (s *Store) dispatchAsync(ctx context.Context, a state.Action) {
	if s.enqueue(envelope{ctx: ctx, action: a}) {
		s.drain()
	}
}

// enqueue adds the envelope and reports whether the caller became the
// drainer. At most one goroutine drains at a time; everyone else either
// waits on their done channel or returns immediately.
func (s *Store) enqueue(env envelope) bool {
	s.qmu.Lock()
	defer s.qmu.Unlock()
	s.queue = append(s.queue, env)
	if s.draining {
		return false
	}
	s.draining = true
	return true
}

func (s *Store) drain() {
	for {
		s.qmu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.idle.Broadcast()
			s.qmu.Unlock()
			return
		}
		env := s.queue[0]
		s.queue = s.queue[1:]
		s.qmu.Unlock()

		s.chain(env.ctx, env.action)
		if env.done != nil {
			close(env.done)
		}
	}
}

// reduceAndNotify is the end of the middleware chain: one serialized
// reduce pass plus synchronous subscriber notification.
func (s *Store) reduceAndNotify(_ context.Context, a state.Action) {
	s.stateMu.Lock()
	next := state.Reduce(s.state, a)
	s.state = next
	s.stateMu.Unlock()

	s.subMu.Lock()
	subs := s.subs
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(next)
	}
}

// Go runs fn on a supervised goroutine.
func (s *Store) Go(fn func()) {
	s.effects.Add(1)
	go func() {
		defer s.effects.Done()
		fn()
	}()
}

// Wait blocks until all supervised effects have finished and every
// queued action has been applied. Used at shutdown and in tests.
func (s *Store) Wait() {
	for {
		s.effects.Wait()
		s.qmu.Lock()
		if len(s.queue) == 0 && !s.draining {
			s.qmu.Unlock()
			return
		}
		s.idle.Wait()
		s.qmu.Unlock()
	}
}

type storeAPI struct {
	s *Store
}

func (a *storeAPI) State() state.State {
	return a.s.State()
}

func (a *storeAPI) Dispatch(ctx context.Context, act state.Action) {
	a.s.dispatchAsync(ctx, act)
}

func (a *storeAPI) Go(fn func()) {
	a.s.Go(fn)
}
