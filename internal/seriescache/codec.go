package seriescache

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/acisops/acispy/internal/series"
)

var errCorrupt = errors.New("corrupt entry")

const (
	flagStops   = 1 << 0
	flagStrings = 1 << 1
	flagMask    = 1 << 2
)

// encodeSeries lays a series out as
//
//	flags byte | unit | n uvarint | times | [stops] | values or strings | [mask]
//
// with float64 values little-endian and strings length-prefixed.
func encodeSeries(s series.Series) []byte {
	var flags byte
	if s.Stops != nil {
		flags |= flagStops
	}
	if s.IsString() {
		flags |= flagStrings
	}
	if s.Mask != nil {
		flags |= flagMask
	}
	n := len(s.Times)
	buf := make([]byte, 0, 1+len(s.Unit)+binary.MaxVarintLen64*2+n*24)
	buf = append(buf, flags)
	buf = appendString(buf, s.Unit)
	buf = binary.AppendUvarint(buf, uint64(n))
	buf = appendFloats(buf, s.Times)
	if flags&flagStops != 0 {
		buf = appendFloats(buf, s.Stops)
	}
	if flags&flagStrings != 0 {
		for _, v := range s.Strings {
			buf = appendString(buf, v)
		}
	} else {
		buf = appendFloats(buf, s.Values)
	}
	if flags&flagMask != 0 {
		for _, ok := range s.Mask {
			if ok {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		}
	}
	return buf
}

func appendFloats(buf []byte, v []float64) []byte {
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
	}
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

type reader struct {
	b   []byte
	err error
}

func (r *reader) byte() byte {
	if r.err != nil || len(r.b) < 1 {
		r.err = errCorrupt
		return 0
	}
	v := r.b[0]
	r.b = r.b[1:]
	return v
}

func (r *reader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.b)
	if n <= 0 {
		r.err = errCorrupt
		return 0
	}
	r.b = r.b[n:]
	return v
}

func (r *reader) string() string {
	n := r.uvarint()
	if r.err != nil || uint64(len(r.b)) < n {
		r.err = errCorrupt
		return ""
	}
	s := string(r.b[:n])
	r.b = r.b[n:]
	return s
}

func (r *reader) floats(n int) []float64 {
	if r.err != nil || len(r.b) < 8*n {
		r.err = errCorrupt
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(r.b[8*i:]))
	}
	r.b = r.b[8*n:]
	return out
}

func decodeSeries(data []byte) (series.Series, error) {
	r := &reader{b: data}
	flags := r.byte()
	s := series.Series{Unit: r.string()}
	n64 := r.uvarint()
	if r.err == nil && n64 > uint64(len(r.b)) {
		r.err = errCorrupt
	}
	n := int(n64)
	s.Times = r.floats(n)
	if flags&flagStops != 0 {
		s.Stops = r.floats(n)
	}
	if flags&flagStrings != 0 {
		s.Strings = make([]string, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			s.Strings = append(s.Strings, r.string())
		}
	} else {
		s.Values = r.floats(n)
	}
	if flags&flagMask != 0 {
		s.Mask = make([]bool, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			s.Mask = append(s.Mask, r.byte() != 0)
		}
	}
	if r.err == nil && len(r.b) != 0 {
		r.err = errCorrupt
	}
	if r.err != nil {
		return series.Series{}, r.err
	}
	return s, nil
}
