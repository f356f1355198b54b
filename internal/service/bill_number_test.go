package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBillNumberGenerator_Format(t *testing.T) {
	g := newBillNumberGenerator()
	fixed := time.Date(2024, 3, 5, 10, 15, 0, 0, time.Local)
	g.now = func() time.Time { return fixed }

	assert.Equal(t, "20240305101500", g.Next())
}

func TestBillNumberGenerator_SameSecond(t *testing.T) {
	g := newBillNumberGenerator()
	fixed := time.Date(2024, 3, 5, 10, 15, 0, 500, time.Local)
	g.now = func() time.Time { return fixed }

	assert.Equal(t, "20240305101500", g.Next())
	assert.Equal(t, "20240305101501", g.Next())
	assert.Equal(t, "20240305101502", g.Next())
}

func TestBillNumberGenerator_ClockCatchesUp(t *testing.T) {
	g := newBillNumberGenerator()
	now := time.Date(2024, 3, 5, 10, 15, 0, 0, time.Local)
	g.now = func() time.Time { return now }

	g.Next()
	g.Next()
	now = now.Add(10 * time.Second)
	assert.Equal(t, "20240305101510", g.Next())
}

func TestBillNumberGenerator_Concurrent(t *testing.T) {
	g := newBillNumberGenerator()

	const n = 50
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool, n)
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num := g.Next()
			mu.Lock()
			seen[num] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
}
