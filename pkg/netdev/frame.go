package netdev

import (
	"sync"
	"sync/atomic"

	"github.com/wlancore/wlancore-go/pkg/alloc"
)

// Frame is an outbound frame buffer. Whoever accepts a frame for
// transmission must call Release exactly once.
type Frame struct {
	payload []byte

	once      sync.Once
	releases  atomic.Int32
	allocator alloc.Allocator
	tok       alloc.Token
}

// NewFrame allocates a frame carrying a copy of payload.
func NewFrame(payload []byte, a alloc.Allocator) (*Frame, error) {
	tok, err := a.Allocate(alloc.KindFrame)
	if err != nil {
		return nil, err
	}
	return &Frame{
		payload:   append([]byte(nil), payload...),
		allocator: a,
		tok:       tok,
	}, nil
}

// Len returns the payload length. A nil frame has length 0.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.payload)
}

// Release frees the frame. Only the first call has an effect; every call
// is counted. Safe on a nil frame.
func (f *Frame) Release() {
	if f == nil {
		return
	}
	f.releases.Add(1)
	f.once.Do(func() {
		f.payload = nil
		if f.allocator != nil {
			_ = f.allocator.Free(f.tok)
		}
	})
}

// ReleaseCount returns how many times Release was called.
func (f *Frame) ReleaseCount() int {
	if f == nil {
		return 0
	}
	return int(f.releases.Load())
}
