package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bplaum/gavl/pkg/ioh"
)

func newTestSession(t *testing.T) (*WriterSession, *ioh.MemoryBuffer) {
	t.Helper()
	info := NewMediaInfo()
	track, err := info.AddTrack(MediaClassVideo)
	require.NoError(t, err)
	track.Streams = append(track.Streams, StreamInfo{Class: StreamClassVideo})

	mb := ioh.NewMemoryBuffer()
	h := &Handle{IO: mb.Handle}
	return NewWriterSession(h, info), mb
}

func TestSelectTrackWithoutSeparateStreamsWritesResponse(t *testing.T) {
	s, mb := newTestSession(t)

	require.NoError(t, s.SelectTrack(0))
	assert.NotNil(t, s.Track)
	assert.Equal(t, MediaClassVideo, s.Track.Class())
	assert.NotEmpty(t, mb.Bytes())
}

func TestSelectTrackRejectsOutOfRangeIndex(t *testing.T) {
	s, _ := newTestSession(t)
	err := s.SelectTrack(5)
	assert.Error(t, err)
}

func TestStreamHandleFallsBackToSharedHandleWithoutSeparateStreams(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.SelectTrack(0))
	assert.Same(t, s.Handle.IO, s.StreamHandle(0))
}
