package codec

import (
	"fmt"
	"io"

	"github.com/bplaum/gavl/pkg/value"
)

// EncodeValue writes v as uint64v(type) followed by the type-specific
// payload, per spec §4.2. The type tag is unsigned varint, not the
// signed family: it is a small non-negative discriminant, same as a
// dictionary/array count, and needs to reproduce the literal wire
// bytes spec §8 specifies for it.
func EncodeValue(w io.Writer, v value.Value) error {
	if _, err := WriteUint64V(w, uint64(v.Type())); err != nil {
		return fmt.Errorf("codec: write value tag: %w", err)
	}

	switch v.Type() {
	case value.TypeUndefined:
		return nil
	case value.TypeInt:
		i, _ := v.Int()
		_, err := WriteInt32V(w, i)
		return err
	case value.TypeLong:
		l, _ := v.Long()
		_, err := WriteInt64V(w, l)
		return err
	case value.TypeFloat:
		f, _ := v.Float()
		return WriteFloat64(w, f)
	case value.TypeString:
		s, _ := v.String()
		return WriteString(w, s)
	case value.TypeBinary:
		b, _ := v.Binary()
		return WriteBuffer(w, b)
	case value.TypeAudioFormat:
		f, _ := v.AudioFormat()
		return EncodeDictionary(w, audioFormatToDict(f))
	case value.TypeVideoFormat:
		f, _ := v.VideoFormat()
		return EncodeDictionary(w, videoFormatToDict(f))
	case value.TypeColorRGB:
		c, _ := v.RGB()
		if err := WriteFloat64(w, c.R); err != nil {
			return err
		}
		if err := WriteFloat64(w, c.G); err != nil {
			return err
		}
		return WriteFloat64(w, c.B)
	case value.TypeColorRGBA:
		c, _ := v.RGB()
		for _, comp := range []float64{c.R, c.G, c.B, c.A} {
			if err := WriteFloat64(w, comp); err != nil {
				return err
			}
		}
		return nil
	case value.TypePosition:
		p, _ := v.Position()
		if err := WriteFloat64(w, p.X); err != nil {
			return err
		}
		return WriteFloat64(w, p.Y)
	case value.TypeDictionary:
		d, _ := v.Dict()
		return EncodeDictionary(w, d)
	case value.TypeArray:
		a, _ := v.Arr()
		return EncodeArray(w, a)
	default:
		return fmt.Errorf("codec: unknown value type %v", v.Type())
	}
}

// DecodeValue reads a Value previously written by EncodeValue.
func DecodeValue(r io.Reader) (value.Value, error) {
	tag, _, err := ReadUint64V(r)
	if err != nil {
		return value.Undefined(), fmt.Errorf("codec: read value tag: %w", err)
	}
	typ := value.Type(tag)

	switch typ {
	case value.TypeUndefined:
		return value.Undefined(), nil
	case value.TypeInt:
		i, _, err := ReadInt32V(r)
		return value.Int(i), err
	case value.TypeLong:
		l, _, err := ReadInt64V(r)
		return value.Long(l), err
	case value.TypeFloat:
		f, err := ReadFloat64(r)
		return value.Float(f), err
	case value.TypeString:
		s, err := ReadString(r)
		return value.String(s), err
	case value.TypeBinary:
		b, err := ReadBuffer(r)
		return value.Binary(b), err
	case value.TypeAudioFormat:
		d, err := DecodeDictionary(r)
		if err != nil {
			return value.Undefined(), err
		}
		return value.NewAudioFormat(dictToAudioFormat(d)), nil
	case value.TypeVideoFormat:
		d, err := DecodeDictionary(r)
		if err != nil {
			return value.Undefined(), err
		}
		return value.NewVideoFormat(dictToVideoFormat(d)), nil
	case value.TypeColorRGB:
		r1, err := ReadFloat64(r)
		if err != nil {
			return value.Undefined(), err
		}
		g, err := ReadFloat64(r)
		if err != nil {
			return value.Undefined(), err
		}
		b, err := ReadFloat64(r)
		if err != nil {
			return value.Undefined(), err
		}
		return value.RGB(r1, g, b), nil
	case value.TypeColorRGBA:
		comps := make([]float64, 4)
		for i := range comps {
			f, err := ReadFloat64(r)
			if err != nil {
				return value.Undefined(), err
			}
			comps[i] = f
		}
		return value.RGBA(comps[0], comps[1], comps[2], comps[3]), nil
	case value.TypePosition:
		x, err := ReadFloat64(r)
		if err != nil {
			return value.Undefined(), err
		}
		y, err := ReadFloat64(r)
		if err != nil {
			return value.Undefined(), err
		}
		return value.NewPosition(x, y), nil
	case value.TypeDictionary:
		d, err := DecodeDictionary(r)
		if err != nil {
			return value.Undefined(), err
		}
		return value.FromDict(d), nil
	case value.TypeArray:
		a, err := DecodeArray(r)
		if err != nil {
			return value.Undefined(), err
		}
		return value.FromArray(a), nil
	default:
		return value.Undefined(), fmt.Errorf("codec: unknown wire value tag %d", tag)
	}
}

// EncodeDictionary writes uint64v(count) followed by, for each entry,
// string(name) + value(v), preserving iteration order.
func EncodeDictionary(w io.Writer, d *value.Dictionary) error {
	if _, err := WriteUint64V(w, uint64(d.Len())); err != nil {
		return fmt.Errorf("codec: write dict count: %w", err)
	}

	var encErr error
	d.ForEach(func(k string, v value.Value) bool {
		if err := WriteString(w, k); err != nil {
			encErr = err
			return false
		}
		if err := EncodeValue(w, v); err != nil {
			encErr = err
			return false
		}
		return true
	})
	return encErr
}

// DecodeDictionary reads a Dictionary previously written by
// EncodeDictionary, preserving iteration order (spec §3 invariant).
func DecodeDictionary(r io.Reader) (*value.Dictionary, error) {
	count, _, err := ReadUint64V(r)
	if err != nil {
		return nil, fmt.Errorf("codec: read dict count: %w", err)
	}

	d := value.NewDictionary()
	for i := uint64(0); i < count; i++ {
		key, err := ReadString(r)
		if err != nil {
			return nil, fmt.Errorf("codec: read dict key %d: %w", i, err)
		}
		v, err := DecodeValue(r)
		if err != nil {
			return nil, fmt.Errorf("codec: read dict value %d: %w", i, err)
		}
		d.Set(key, v)
	}
	return d, nil
}

// EncodeArray writes uint64v(count) followed by each entry's value
// encoding, in order.
func EncodeArray(w io.Writer, a *value.Array) error {
	if _, err := WriteUint64V(w, uint64(a.Len())); err != nil {
		return fmt.Errorf("codec: write array count: %w", err)
	}
	var encErr error
	a.ForEach(func(_ int, v value.Value) bool {
		if err := EncodeValue(w, v); err != nil {
			encErr = err
			return false
		}
		return true
	})
	return encErr
}

// DecodeArray reads an Array previously written by EncodeArray.
func DecodeArray(r io.Reader) (*value.Array, error) {
	count, _, err := ReadUint64V(r)
	if err != nil {
		return nil, fmt.Errorf("codec: read array count: %w", err)
	}
	a := value.NewArray()
	for i := uint64(0); i < count; i++ {
		v, err := DecodeValue(r)
		if err != nil {
			return nil, fmt.Errorf("codec: read array item %d: %w", i, err)
		}
		a.Push(v)
	}
	return a, nil
}

// audioFormatToDict/dictToAudioFormat and the video equivalents below
// implement "AudioFormat and VideoFormat serialize via a dictionary
// representation (so format evolution stays source-compatible at the
// wire level)" (spec §4.2).

const (
	keyAFSampleRate = "sr"
	keyAFChannels   = "ch"
	keyAFSampleFmt  = "sf"
	keyAFInterleave = "il"

	keyVFWidth      = "w"
	keyVFHeight     = "h"
	keyVFPixelFmt   = "pf"
	keyVFFrNum      = "frn"
	keyVFFrDen      = "frd"
	keyVFInterlace  = "interlace"
	keyVFChroma     = "chroma"
	keyVFFrameSize  = "framesize"
)

func audioFormatToDict(f *value.AudioFormat) *value.Dictionary {
	d := value.NewDictionary()
	d.Set(keyAFSampleRate, value.Int(f.SampleRate))
	d.Set(keyAFChannels, value.Int(f.Channels))
	d.Set(keyAFSampleFmt, value.Int(int32(f.SampleFmt)))
	d.Set(keyAFInterleave, boolValue(f.Interleave))
	return d
}

func dictToAudioFormat(d *value.Dictionary) *value.AudioFormat {
	f := &value.AudioFormat{}
	if v, ok := d.Get(keyAFSampleRate); ok {
		f.SampleRate, _ = v.Int()
	}
	if v, ok := d.Get(keyAFChannels); ok {
		f.Channels, _ = v.Int()
	}
	if v, ok := d.Get(keyAFSampleFmt); ok {
		sf, _ := v.Int()
		f.SampleFmt = value.SampleFormat(sf)
	}
	if v, ok := d.Get(keyAFInterleave); ok {
		f.Interleave = valueBool(v)
	}
	return f
}

func videoFormatToDict(f *value.VideoFormat) *value.Dictionary {
	d := value.NewDictionary()
	d.Set(keyVFWidth, value.Int(f.Width))
	d.Set(keyVFHeight, value.Int(f.Height))
	d.Set(keyVFPixelFmt, value.Int(int32(f.PixelFmt)))
	d.Set(keyVFFrNum, value.Int(f.FramerateNum))
	d.Set(keyVFFrDen, value.Int(f.FramerateDen))
	d.Set(keyVFInterlace, value.Int(int32(f.Interlace)))
	d.Set(keyVFChroma, value.Int(int32(f.Chroma)))
	d.Set(keyVFFrameSize, value.Int(f.FrameSize))
	return d
}

func dictToVideoFormat(d *value.Dictionary) *value.VideoFormat {
	f := &value.VideoFormat{}
	getInt := func(key string) int32 {
		if v, ok := d.Get(key); ok {
			i, _ := v.Int()
			return i
		}
		return 0
	}
	f.Width = getInt(keyVFWidth)
	f.Height = getInt(keyVFHeight)
	f.PixelFmt = value.PixelFormat(getInt(keyVFPixelFmt))
	f.FramerateNum = getInt(keyVFFrNum)
	f.FramerateDen = getInt(keyVFFrDen)
	f.Interlace = value.InterlaceMode(getInt(keyVFInterlace))
	f.Chroma = value.ChromaPlacement(getInt(keyVFChroma))
	f.FrameSize = getInt(keyVFFrameSize)
	return f
}

func boolValue(b bool) value.Value {
	if b {
		return value.Int(1)
	}
	return value.Int(0)
}

func valueBool(v value.Value) bool {
	i, _ := v.Int()
	return i != 0
}
