package service

import (
	"sync"
	"time"
)

const billNumberLayout = "20060102150405"

// billNumberGenerator issues YYYYMMDDHHMMSS bill numbers. Numbers are strictly
// increasing within the process: when the clock has not moved past the last
// issued second, the next unused second is used instead.
type billNumberGenerator struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func newBillNumberGenerator() *billNumberGenerator {
	return &billNumberGenerator{now: time.Now}
}

func (g *billNumberGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := g.now().Truncate(time.Second)
	if !t.After(g.last) {
		t = g.last.Add(time.Second)
	}
	g.last = t

	return t.Format(billNumberLayout)
}
