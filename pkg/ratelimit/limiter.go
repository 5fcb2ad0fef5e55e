// Package ratelimit implements the per-client sliding-window limiter gating
// anonymous searches served with the shared server token.
//
// Each client identifier (usually an IP address) owns one window record:
// a request count and the instant the window resets. The record store is
// bounded, evicting the least recently seen clients first, so an open
// endpoint cannot grow memory without limit.
//
// Requests carrying a caller-supplied token bypass this limiter entirely;
// the caller's own upstream quota applies instead.
package ratelimit

import (
	"container/list"
	"sync"
	"time"
)

// Result reports the outcome of a limiter check.
type Result struct {
	Allowed   bool      // whether the request may proceed
	Remaining int       // requests left in the current window
	ResetAt   time.Time // when the current window resets
}

// Limiter is a keyed sliding-window counter. Safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	ceiling  int
	window   time.Duration
	capacity int
	ll       *list.List
	records  map[string]*list.Element
	now      func() time.Time
}

type record struct {
	clientID string
	count    int
	resetAt  time.Time
}

// New creates a Limiter allowing ceiling requests per window for each
// client, tracking at most capacity clients.
func New(ceiling int, window time.Duration, capacity int) *Limiter {
	if ceiling < 1 {
		ceiling = 1
	}
	if capacity < 1 {
		capacity = 1
	}
	return &Limiter{
		ceiling:  ceiling,
		window:   window,
		capacity: capacity,
		ll:       list.New(),
		records:  make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Check records one request for clientID and reports whether it is allowed.
//
// The first request for a key, or any request after the window has reset,
// starts a fresh window with count 1. Within a window the count increments
// per request; once it passes the ceiling, requests are denied until the
// window's reset instant.
func (l *Limiter) Check(clientID string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	el, ok := l.records[clientID]
	if !ok || !now.Before(el.Value.(*record).resetAt) {
		return l.startWindow(clientID, el, now)
	}

	rec := el.Value.(*record)
	l.ll.MoveToFront(el)

	if rec.count >= l.ceiling {
		return Result{Allowed: false, Remaining: 0, ResetAt: rec.resetAt}
	}

	rec.count++
	return Result{
		Allowed:   true,
		Remaining: l.ceiling - rec.count,
		ResetAt:   rec.resetAt,
	}
}

// Peek reports the current window state for clientID without recording a
// request. A client with no live window is reported as fully available.
func (l *Limiter) Peek(clientID string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	el, ok := l.records[clientID]
	if !ok || !now.Before(el.Value.(*record).resetAt) {
		return Result{Allowed: true, Remaining: l.ceiling, ResetAt: now.Add(l.window)}
	}
	rec := el.Value.(*record)
	return Result{
		Allowed:   rec.count < l.ceiling,
		Remaining: max(0, l.ceiling-rec.count),
		ResetAt:   rec.resetAt,
	}
}

// Len reports how many client records are currently tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ll.Len()
}

// startWindow resets or creates the record for clientID with count 1.
func (l *Limiter) startWindow(clientID string, el *list.Element, now time.Time) Result {
	resetAt := now.Add(l.window)

	if el != nil {
		rec := el.Value.(*record)
		rec.count = 1
		rec.resetAt = resetAt
		l.ll.MoveToFront(el)
	} else {
		el = l.ll.PushFront(&record{clientID: clientID, count: 1, resetAt: resetAt})
		l.records[clientID] = el
		for l.ll.Len() > l.capacity {
			oldest := l.ll.Back()
			if oldest == nil {
				break
			}
			l.ll.Remove(oldest)
			delete(l.records, oldest.Value.(*record).clientID)
		}
	}

	return Result{Allowed: true, Remaining: l.ceiling - 1, ResetAt: resetAt}
}
