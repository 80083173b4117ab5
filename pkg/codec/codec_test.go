package codec

import (
	"bytes"
	"math"
	"testing"

	"github.com/bplaum/gavl/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarintLiteralLengths(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteUint64V(&buf, 0x00)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []byte{0x80}, buf.Bytes())

	buf.Reset()
	n, err = WriteUint64V(&buf, 0x80)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x40, 0x80}, buf.Bytes())

	buf.Reset()
	n, err = WriteUint64V(&buf, math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	want := append([]byte{0x00}, bytes.Repeat([]byte{0xff}, 8)...)
	assert.Equal(t, want, buf.Bytes())
}

func TestInt64VSignedBias(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteInt64V(&buf, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []byte{0xBF}, buf.Bytes())

	got, _, err := ReadInt64V(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), got)
}

func TestVarintRoundTripUnsigned(t *testing.T) {
	cases := []uint64{
		0, 1, 127, 128, 16383, 16384, 1 << 20, 1 << 27, 1 << 34,
		1 << 41, 1 << 48, 1 << 55, 1<<56 - 1, 1 << 56, math.MaxUint64,
	}
	for _, c := range cases {
		var buf bytes.Buffer
		n, err := WriteUint64V(&buf, c)
		require.NoError(t, err)
		assert.Equal(t, n, buf.Len())

		got, readLen, err := ReadUint64V(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, c, got)
		assert.Equal(t, n, readLen)
	}
}

func TestVarintRoundTripSigned(t *testing.T) {
	cases := []int64{
		0, 1, -1, 63, -64, 64, -65, math.MaxInt32, math.MinInt32,
		math.MaxInt64, math.MinInt64,
	}
	for _, c := range cases {
		var buf bytes.Buffer
		_, err := WriteInt64V(&buf, c)
		require.NoError(t, err)

		got, _, err := ReadInt64V(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteString(&buf, "hello, 世界"))

	got, err := ReadString(&buf)
	require.NoError(t, err)
	assert.Equal(t, "hello, 世界", got)
}

func TestFixedRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFixed(&buf, 0x0102030405060708, 8, BigEndian))
	got, err := ReadFixed(&buf, 8, BigEndian)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), got)

	buf.Reset()
	require.NoError(t, WriteFixed(&buf, 0x00112233, 3, LittleEndian))
	assert.Equal(t, []byte{0x33, 0x22, 0x11}, buf.Bytes())
}

func TestValueRoundTrip(t *testing.T) {
	values := []value.Value{
		value.Undefined(),
		value.Int(-42),
		value.Long(1 << 40),
		value.Float(3.5),
		value.String("hi"),
		value.Binary([]byte{1, 2, 3}),
		value.RGB(0.1, 0.2, 0.3),
		value.RGBA(0.1, 0.2, 0.3, 0.4),
		value.NewPosition(1.5, -2.5),
		value.NewAudioFormat(&value.AudioFormat{SampleRate: 48000, Channels: 2}),
		value.NewVideoFormat(&value.VideoFormat{Width: 1920, Height: 1080, FramerateNum: 30, FramerateDen: 1}),
	}

	for _, v := range values {
		var buf bytes.Buffer
		require.NoError(t, EncodeValue(&buf, v))

		got, err := DecodeValue(&buf)
		require.NoError(t, err)
		assert.True(t, value.Equal(v, got), "round trip mismatch for %v", v.Type())
	}
}

// TestDictionaryLiteralBytes pins the wire layout to the §8 scenario 3
// example: {"a": Int(1), "b": String("hi")}. Dictionary/array counts
// and the value type tag are plain unsigned varints, same family as
// a string's length prefix (0x82=count 2, 0x81='a''s length 1,
// 0x82=Int's type tag, 0x82=string-"hi"'s length 2... — Int's own
// payload stays the signed-biased int32v family so negative values
// keep round-tripping, hence 0xC1 rather than a plain 0x81 there).
func TestDictionaryLiteralBytes(t *testing.T) {
	d := value.NewDictionary()
	d.Set("a", value.Int(1))
	d.Set("b", value.String("hi"))

	var buf bytes.Buffer
	require.NoError(t, EncodeDictionary(&buf, d))

	want := []byte{
		0x82,             // count = 2
		0x81, 'a',        // key "a"
		0x82, 0xC1,       // Int(1): type tag=2, signed-biased payload
		0x81, 'b',        // key "b"
		0x84, 0x82, 'h', 'i', // String("hi"): type tag=4, len=2, bytes
	}
	assert.Equal(t, want, buf.Bytes())

	got, err := DecodeDictionary(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.True(t, d.Equal(got))
}

func TestDictionaryRoundTripPreservesOrder(t *testing.T) {
	d := value.NewDictionary()
	d.Set("z", value.Int(1))
	d.Set("a", value.String("hi"))
	d.Set("m", value.Long(99))

	var buf bytes.Buffer
	require.NoError(t, EncodeDictionary(&buf, d))

	got, err := DecodeDictionary(&buf)
	require.NoError(t, err)
	assert.True(t, d.Equal(got))
	assert.Equal(t, d.Keys(), got.Keys())
}

func TestArrayRoundTrip(t *testing.T) {
	a := value.NewArray()
	a.Push(value.Int(1))
	a.Push(value.String("x"))
	a.Push(value.FromDict(func() *value.Dictionary {
		d := value.NewDictionary()
		d.Set("k", value.Int(7))
		return d
	}()))

	var buf bytes.Buffer
	require.NoError(t, EncodeArray(&buf, a))

	got, err := DecodeArray(&buf)
	require.NoError(t, err)
	assert.True(t, a.Equal(got))
}

func TestMessageRoundTrip(t *testing.T) {
	m := Message{
		Namespace: "SRC",
		ID:        1,
		Timestamp: 123456,
		Args:      []value.Value{value.Int(3), value.String("hls")},
	}

	b, err := MessageToPacketBytes(m)
	require.NoError(t, err)

	got, err := MessageFromPacketBytes(b)
	require.NoError(t, err)
	assert.Equal(t, m.Namespace, got.Namespace)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, m.Timestamp, got.Timestamp)
	require.Len(t, got.Args, 2)
}
