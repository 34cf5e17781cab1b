package modal

import (
	"sync"
	"time"
)

// Gate admits one holder at a time. Form validation uses it so that a burst
// of failing fields raises a single warning dialog. Each composition root
// owns its own Gate.
type Gate struct {
	mu        sync.Mutex
	held      bool
	token     uint64
	afterFunc func(time.Duration, func())
}

// NewGate returns an open gate.
func NewGate() *Gate {
	return &Gate{afterFunc: defaultAfterFunc}
}

// TryAcquire takes the gate when free.
func (g *Gate) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held {
		return false
	}
	g.held = true
	g.token++
	return true
}

// Release frees the gate now.
func (g *Gate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held = false
}

// ReleaseAfter frees the gate after d unless it was released and taken again
// in between.
func (g *Gate) ReleaseAfter(d time.Duration) {
	g.mu.Lock()
	token := g.token
	after := g.afterFunc
	g.mu.Unlock()
	if after == nil {
		after = defaultAfterFunc
	}
	after(d, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.token == token {
			g.held = false
		}
	})
}

// Held reports whether someone holds the gate.
func (g *Gate) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}
