package gate

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGateAdmitsUntilClosed(t *testing.T) {
	var g Gate
	assert.True(t, g.Enter())
	g.Exit()

	assert.True(t, g.Close())
	assert.True(t, g.Closed())
	assert.False(t, g.Enter())
	assert.False(t, g.Close())
}

func TestGateCloseWaitsForInflight(t *testing.T) {
	var g Gate
	var done atomic.Bool

	assert.True(t, g.Enter())
	go func() {
		time.Sleep(20 * time.Millisecond)
		done.Store(true)
		g.Exit()
	}()

	g.Close()
	assert.True(t, done.Load(), "Close returned before the admitted caller exited")
}

func TestGateConcurrent(t *testing.T) {
	var g Gate
	var active atomic.Int32
	var violations atomic.Int32
	var closed atomic.Bool

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if !g.Enter() {
					return
				}
				active.Add(1)
				if closed.Load() {
					violations.Add(1)
				}
				active.Add(-1)
				g.Exit()
			}
		}()
	}

	time.Sleep(time.Millisecond)
	g.Close()
	closed.Store(true)
	assert.Equal(t, int32(0), active.Load())

	wg.Wait()
	assert.Equal(t, int32(0), violations.Load())
}
