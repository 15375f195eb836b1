package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnectionTouchUpdatesLastSeen(t *testing.T) {
	c := &Connection{UserID: "u1"}
	assert.True(t, c.LastSeenAt().IsZero() || c.LastSeenAt().Equal(time.Unix(0, 0)))

	before := time.Now()
	c.Touch()
	after := time.Now()

	seen := c.LastSeenAt()
	assert.False(t, seen.Before(before))
	assert.False(t, seen.After(after))
}

// Touch runs on the read goroutine while the heartbeat sweep reads liveness
// from its own; both must be safe to call concurrently.
func TestConnectionLivenessIsConcurrencySafe(t *testing.T) {
	c := &Connection{UserID: "u1"}
	c.Touch()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Touch()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_ = time.Since(c.LastSeenAt())
			}
		}()
	}
	wg.Wait()

	assert.False(t, c.LastSeenAt().IsZero())
}
