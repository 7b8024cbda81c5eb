package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter spaces out requests to the same host by at least minInterval.
type Limiter struct {
	mu          sync.Mutex
	hosts       map[string]time.Time
	minInterval time.Duration
}

func New(minInterval time.Duration) *Limiter {
	return &Limiter{
		hosts:       make(map[string]time.Time),
		minInterval: minInterval,
	}
}

// Allow reports whether a request to host may go out now. A refused call
// does not move the host's timestamp.
func (l *Limiter) Allow(host string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.minInterval <= 0 {
		return true
	}

	now := time.Now()
	if last, ok := l.hosts[host]; ok && now.Sub(last) < l.minInterval {
		return false
	}
	l.hosts[host] = now
	return true
}

// Wait blocks until a request to host is allowed and reserves the slot.
func (l *Limiter) Wait(host string) {
	_ = l.WaitContext(context.Background(), host)
}

// WaitContext is Wait with cancellation. The slot is only reserved when it
// returns nil.
func (l *Limiter) WaitContext(ctx context.Context, host string) error {
	for {
		l.mu.Lock()
		now := time.Now()
		last, ok := l.hosts[host]
		if !ok || l.minInterval <= 0 || now.Sub(last) >= l.minInterval {
			l.hosts[host] = now
			l.mu.Unlock()
			return nil
		}
		delay := l.minInterval - now.Sub(last)
		l.mu.Unlock()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Limiter) Reset(host string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hosts, host)
}

func (l *Limiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hosts = make(map[string]time.Time)
}
