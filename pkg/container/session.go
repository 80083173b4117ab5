package container

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/bplaum/gavl/pkg/gavlerr"
	"github.com/bplaum/gavl/pkg/ioh"
)

// WriterSession is the producer side of a connected container: the
// current track, the handle carrying the control-message stream, and
// (when SEPARATE_STREAMS is negotiated) one listener per elementary
// stream. Grounded on §4.7's "runtime owns ... a current track, a
// per-stream array of stream handles ... and the I/O handle".
type WriterSession struct {
	Handle          *Handle
	Info            *MediaInfo
	Track           *Track
	SeparateStreams bool

	streamListeners []*ioh.Listener
	streamConns     []*ioh.Handle
}

// NewWriterSession wraps an already-open write handle together with
// the full media-info dictionary it will serve tracks from.
func NewWriterSession(h *Handle, info *MediaInfo) *WriterSession {
	return &WriterSession{Handle: h, Info: info}
}

// SelectTrack implements §4.7's SELECT_TRACK re-init sequence: stop
// active playback, copy the selected track, re-initialise streams,
// open per-stream UNIX sockets if SEPARATE_STREAMS is negotiated,
// emit the GAVF.SELECT_TRACK response, then accept the per-stream
// connections.
func (s *WriterSession) SelectTrack(index int32) error {
	s.stopPlayback()

	if index < 0 || int(index) >= len(s.Info.Tracks) {
		return gavlerr.New(gavlerr.KindProtocol, "container.SelectTrack",
			fmt.Errorf("track index %d out of range [0,%d)", index, len(s.Info.Tracks)))
	}

	selected := *s.Info.Tracks[index]
	selected.Meta = s.Info.Tracks[index].Meta.Copy()
	selected.Streams = append([]StreamInfo(nil), s.Info.Tracks[index].Streams...)
	s.Track = &selected
	s.Track.DiscoverStreams()

	if s.SeparateStreams {
		if err := s.openStreamListeners(); err != nil {
			return err
		}
	}

	if err := s.Handle.WriteMessage(NewSelectTrackResponse(s.Track)); err != nil {
		return fmt.Errorf("container: write SELECT_TRACK response: %w", err)
	}

	if s.SeparateStreams {
		return s.acceptStreamConnections()
	}
	return nil
}

// stopPlayback releases any per-stream connections from a previous
// SELECT_TRACK, per §4.7's "stops active playback" step.
func (s *WriterSession) stopPlayback() {
	for _, c := range s.streamConns {
		if c != nil {
			c.Close()
		}
	}
	s.streamConns = nil
	for _, l := range s.streamListeners {
		if l != nil {
			l.Close()
		}
	}
	s.streamListeners = nil
}

// openStreamListeners opens one UNIX-socket listener per stream in
// the newly selected track under SocketRendezvousDir, so each stream
// can be served on its own connection (§4.7's SEPARATE_STREAMS path).
func (s *WriterSession) openStreamListeners() error {
	dir := SocketRendezvousDir()
	s.streamListeners = make([]*ioh.Listener, len(s.Track.Streams))
	for i, st := range s.Track.Streams {
		path := fmt.Sprintf("%s/gavl-stream-%s-%d.sock", dir, uuid.New(), st.ID)
		l, err := ioh.ListenUnix(path)
		if err != nil {
			return fmt.Errorf("container: listen for stream %d: %w", st.ID, err)
		}
		s.streamListeners[i] = l
	}
	return nil
}

// acceptStreamConnections blocks accepting one connection on each
// per-stream listener opened by openStreamListeners, completing
// SELECT_TRACK's "accepts the per-stream connections" step.
func (s *WriterSession) acceptStreamConnections() error {
	s.streamConns = make([]*ioh.Handle, len(s.streamListeners))
	for i, l := range s.streamListeners {
		conn, err := l.Accept()
		if err != nil {
			return fmt.Errorf("container: accept stream %d connection: %w", i, err)
		}
		s.streamConns[i] = conn
	}
	return nil
}

// StreamHandle returns the per-stream connection for streamIdx under
// SEPARATE_STREAMS, or the shared control handle otherwise.
func (s *WriterSession) StreamHandle(streamIdx int) *ioh.Handle {
	if s.SeparateStreams && streamIdx < len(s.streamConns) {
		return s.streamConns[streamIdx]
	}
	return s.Handle.IO
}
