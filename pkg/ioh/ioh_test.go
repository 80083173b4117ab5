package ioh

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleReadUnread(t *testing.T) {
	h := NewMemoryHandle([]byte("hello world"))

	buf := make([]byte, 5)
	n, err := h.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))

	h.Unread([]byte("hello"))
	n, err = h.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestHandleEOF(t *testing.T) {
	h := NewMemoryHandle([]byte("ab"))
	buf := make([]byte, 2)
	_, err := h.Read(buf)
	require.NoError(t, err)

	_, err = h.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
	assert.True(t, h.GotEOF())
}

func TestAlignReadWrite(t *testing.T) {
	mb := NewMemoryBuffer()
	_, err := mb.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, mb.AlignWrite())
	assert.Equal(t, 8, len(mb.Bytes()))

	mb.Seek(0, io.SeekStart)
	buf := make([]byte, 3)
	_, err = mb.Read(buf)
	require.NoError(t, err)
	require.NoError(t, mb.AlignRead())
	assert.Equal(t, int64(8), mb.Position())
}

func TestChunkRoundTrip(t *testing.T) {
	mb := NewMemoryBuffer()

	cw, err := BeginChunk(mb.Handle, TagProgramHeader)
	require.NoError(t, err)
	_, err = cw.Write([]byte("payload-bytes"))
	require.NoError(t, err)
	require.NoError(t, cw.Commit())

	mb.Seek(0, io.SeekStart)
	hdr, err := ReadChunkHeader(mb.Handle)
	require.NoError(t, err)
	assert.Equal(t, TagProgramHeader, hdr.Tag)
	assert.Equal(t, int64(13), hdr.Length)

	payload, err := ReadChunkPayload(mb.Handle, hdr)
	require.NoError(t, err)
	got, err := io.ReadAll(payload)
	require.NoError(t, err)
	assert.Equal(t, "payload-bytes", string(got))

	// 8-byte aligned after the payload.
	assert.Equal(t, int64(0), mb.Position()%8)
}

func TestSubHandleMatchesAbsoluteRange(t *testing.T) {
	outer := NewMemoryBuffer()
	data := []byte("0123456789abcdefghij")
	_, err := outer.Write(data)
	require.NoError(t, err)

	off, length := int64(5), int64(7)
	sub, err := SubHandle(outer.Handle, off, length)
	require.NoError(t, err)

	got, err := io.ReadAll(sub)
	require.NoError(t, err)
	assert.Equal(t, data[off:off+length], got)
}

func TestResyncToTag(t *testing.T) {
	mb := NewMemoryBuffer()
	garbage := bytes.Repeat([]byte{0xAA}, 16)
	_, err := mb.Write(garbage)
	require.NoError(t, err)
	_, err = mb.Write([]byte(TagSync))
	require.NoError(t, err)

	mb.Seek(0, io.SeekStart)
	require.NoError(t, ResyncToTag(mb.Handle, TagSync))

	tagBuf := make([]byte, TagSize)
	_, err = io.ReadFull(mb.Handle, tagBuf)
	require.NoError(t, err)
	assert.Equal(t, TagSync, string(tagBuf))
}
