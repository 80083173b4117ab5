package stream

import (
	"context"
	"sync"

	"github.com/bplaum/gavl/pkg/packet"
)

// QueueSource is a simple in-memory pull-mode Source backed by a
// channel-fed FIFO, the minimal concrete Source used to exercise
// Connect/converter wiring and as the tail end of pkg/reorder when a
// caller wants blocking pull semantics rather than polling Read.
type QueueSource struct {
	ch    chan *packet.Packet
	flags Flags
	mu    sync.Mutex
	eof   bool
}

// NewQueueSource returns a QueueSource with the given buffer depth.
func NewQueueSource(depth int, flags Flags) *QueueSource {
	return &QueueSource{ch: make(chan *packet.Packet, depth), flags: flags}
}

// Push enqueues a packet for a future Read. Safe to call from a
// different goroutine than Read.
func (q *QueueSource) Push(p *packet.Packet) { q.ch <- p }

// Close marks the queue exhausted once drained.
func (q *QueueSource) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.eof {
		close(q.ch)
		q.eof = true
	}
}

// Read implements Source.
func (q *QueueSource) Read(ctx context.Context, dst *packet.Packet) (*packet.Packet, Status, error) {
	select {
	case p, ok := <-q.ch:
		if !ok {
			return nil, StatusEOF, nil
		}
		if dst == nil {
			return p, StatusOK, nil
		}
		*dst = *p
		return dst, StatusOK, nil
	default:
	}

	select {
	case p, ok := <-q.ch:
		if !ok {
			return nil, StatusEOF, nil
		}
		if dst == nil {
			return p, StatusOK, nil
		}
		*dst = *p
		return dst, StatusOK, nil
	case <-ctx.Done():
		return nil, StatusAgain, ctx.Err()
	}
}

// Flags implements Source.
func (q *QueueSource) Flags() Flags { return q.flags }

// Lock implements Source; QueueSource needs no external
// coordination, so Lock is a no-op pair.
func (q *QueueSource) Lock() UnlockFunc { return func() {} }

// QueueSink is the push-mode mirror of QueueSource.
type QueueSink struct {
	out   []*packet.Packet
	flags Flags
	mu    sync.Mutex
}

// NewQueueSink returns an empty QueueSink.
func NewQueueSink(flags Flags) *QueueSink { return &QueueSink{flags: flags} }

// Put implements Sink.
func (s *QueueSink) Put(ctx context.Context, p *packet.Packet) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = append(s.out, p)
	return StatusOK, nil
}

// Flags implements Sink.
func (s *QueueSink) Flags() Flags { return s.flags }

// Drain returns and clears every packet accepted so far.
func (s *QueueSink) Drain() []*packet.Packet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.out
	s.out = nil
	return out
}
