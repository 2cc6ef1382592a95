package alloc

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerAllocateFree(t *testing.T) {
	l := NewLedger()

	tok, err := l.Allocate(KindWiphy)
	require.NoError(t, err)
	assert.True(t, tok.Valid())
	assert.Equal(t, KindWiphy, tok.Kind())
	assert.Equal(t, 1, l.Live())
	assert.Equal(t, 1, l.LiveOf(KindWiphy))

	require.NoError(t, l.Free(tok))
	assert.Equal(t, 0, l.Live())
	assert.Equal(t, int64(1), l.Allocated(KindWiphy))
	assert.Equal(t, int64(1), l.Freed(KindWiphy))
}

func TestLedgerDoubleFree(t *testing.T) {
	l := NewLedger()

	tok, err := l.Allocate(KindBand)
	require.NoError(t, err)
	require.NoError(t, l.Free(tok))

	err = l.Free(tok)
	assert.True(t, errors.Is(err, ErrDoubleFree))
	assert.Equal(t, int64(1), l.Freed(KindBand))
}

func TestLedgerZeroTokenFree(t *testing.T) {
	l := NewLedger()
	assert.NoError(t, l.Free(Token{}))
	assert.Equal(t, "<nil>", Token{}.String())
}

func TestLedgerInjectFailure(t *testing.T) {
	l := NewLedger()
	l.InjectFailure(KindNetdev, 2)

	for i := 0; i < 2; i++ {
		_, err := l.Allocate(KindNetdev)
		assert.ErrorIs(t, err, ErrExhausted)
	}

	tok, err := l.Allocate(KindNetdev)
	require.NoError(t, err)
	assert.True(t, tok.Valid())

	// Other kinds are unaffected.
	l.InjectFailure(KindWdev, 1)
	_, err = l.Allocate(KindWiphy)
	assert.NoError(t, err)

	l.ClearFailures()
	_, err = l.Allocate(KindWdev)
	assert.NoError(t, err)
}

func TestLedgerInjectFailureReset(t *testing.T) {
	l := NewLedger()
	l.InjectFailure(KindFrame, 1)
	l.InjectFailure(KindFrame, 0)

	_, err := l.Allocate(KindFrame)
	assert.NoError(t, err)
}

func TestLedgerSnapshot(t *testing.T) {
	l := NewLedger()
	_, _ = l.Allocate(KindBand)
	_, _ = l.Allocate(KindChannels)
	tok, _ := l.Allocate(KindChannels)
	_ = l.Free(tok)

	assert.Equal(t, map[Kind]int{KindBand: 1, KindChannels: 1}, l.Snapshot())
}

func TestLedgerConcurrent(t *testing.T) {
	l := NewLedger()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tok, err := l.Allocate(KindFrame)
				if err != nil {
					t.Error(err)
					return
				}
				if err := l.Free(tok); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, l.Live())
	assert.Equal(t, int64(1600), l.Allocated(KindFrame))
	assert.Equal(t, int64(1600), l.Freed(KindFrame))
}
