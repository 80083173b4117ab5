package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bplaum/gavl/pkg/ioh"
)

func TestProgramHeaderRoundTripThroughSeekableHandle(t *testing.T) {
	info := NewMediaInfo()
	track, err := info.AddTrack(MediaClassVideo)
	require.NoError(t, err)
	track.Streams = append(track.Streams, StreamInfo{Class: StreamClassVideo})
	track.DiscoverStreams()

	mb := ioh.NewMemoryBuffer()
	w := &Handle{IO: mb.Handle}
	require.NoError(t, WriteProgramHeader(w, info))

	r := &Handle{IO: ioh.NewMemoryHandle(mb.Bytes())}
	reader, err := readProgramHeader(r)
	require.NoError(t, err)
	require.Len(t, reader.Info.Tracks, 1)
	assert.Equal(t, MediaClassVideo, reader.Info.Tracks[0].Class())
	assert.Equal(t, StreamClassVideo, reader.Info.Tracks[0].Streams[0].Class)
}

func TestReadProgramHeaderRejectsWrongTag(t *testing.T) {
	mb := ioh.NewMemoryBuffer()
	require.NoError(t, ioh.WriteChunkHeader(mb.Handle, "GAVFPKTS", 0))

	r := &Handle{IO: ioh.NewMemoryHandle(mb.Bytes())}
	_, err := readProgramHeader(r)
	assert.Error(t, err)
}

func TestSocketPathExtractsPathComponent(t *testing.T) {
	assert.Equal(t, "/live/cam1", socketPath("gavf://host:1234/live/cam1"))
	assert.Equal(t, "/tmp/x.sock", socketPath("gavf-unix:///tmp/x.sock"))
}
