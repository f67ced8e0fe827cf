// Package ordersync keeps a local view of an order scope in step with the
// store by polling.
//
// Each poll refetches the whole scope and swaps the view in one step. A failed
// poll keeps the previous view and reports the error; the next tick tries again.
// Cancelling the context passed to Run stops the loop and any fetch in flight.
package ordersync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/models"
)

// FetchFunc loads the full order scope of one view.
type FetchFunc func(ctx context.Context) ([]models.Order, error)

// View is an immutable snapshot of the scope. Seq grows by one per successful poll.
type View struct {
	Orders    []models.Order `json:"orders"`
	FetchedAt time.Time      `json:"fetched_at"`
	Seq       uint64         `json:"seq"`
}

type Option func(*Synchronizer)

// WithOnUpdate is called after every successful poll with the new view.
func WithOnUpdate(fn func(View)) Option {
	return func(s *Synchronizer) { s.onUpdate = fn }
}

// WithOnError is called after every failed poll.
func WithOnError(fn func(error)) Option {
	return func(s *Synchronizer) { s.onError = fn }
}

type Synchronizer struct {
	fetch    FetchFunc
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time

	onUpdate func(View)
	onError  func(error)

	view atomic.Pointer[View]

	mu      sync.Mutex
	lastErr error
	seq     uint64
}

func New(fetch FetchFunc, interval time.Duration, log *zap.Logger, opts ...Option) *Synchronizer {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Synchronizer{fetch: fetch, interval: interval, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run polls once immediately and then every interval until ctx is done.
// It always returns ctx.Err().
func (s *Synchronizer) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	s.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh performs one poll and returns its error, if any.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	orders, err := s.fetch(ctx)
	if ctx.Err() != nil {
		// torn down while fetching; nothing may reach the view any more
		return ctx.Err()
	}
	if err != nil {
		err = apperror.Transient("poll orders", err)
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.log.Warn("order poll failed", zap.Error(err))
		if s.onError != nil {
			s.onError(err)
		}
		return err
	}

	s.mu.Lock()
	s.seq++
	v := &View{Orders: orders, FetchedAt: s.now(), Seq: s.seq}
	s.view.Store(v)
	s.lastErr = nil
	s.mu.Unlock()

	if s.onUpdate != nil {
		s.onUpdate(*v)
	}
	return nil
}

// View returns the latest view. ok is false until the first successful poll.
func (s *Synchronizer) View() (v View, ok bool) {
	p := s.view.Load()
	if p == nil {
		return View{}, false
	}
	return *p, true
}

// Err returns the error of the last poll, or nil if it succeeded.
func (s *Synchronizer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
