// Package markers implements the marker-level reader and writer spec §4.7
// describes: cursor-indexed views over a caller/arena-owned []byte, never an
// io.Reader/io.Writer, since the codec never suspends mid-stream and never
// allocates past the arena.
package markers

import (
	"encoding/binary"

	"github.com/abcouwer-jpl/jsc/jpeg/common"
	"github.com/abcouwer-jpl/jsc/jpegerr"
)

// maxMarkerScan bounds how many non-marker bytes ReadMarker will skip
// looking for the next 0xFFxx, per spec §4.7: a corrupted stream must fail
// in bounded work, not loop until the buffer is exhausted one byte at a
// time forever.
const maxMarkerScan = 1000

// Writer appends marker-framed segments to a fixed output span.
type Writer struct {
	buf []byte
	n   int
}

// NewWriter wraps buf, a zero-length-used output span sized by the caller.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.n
}

// Bytes returns the written prefix of the output span.
func (w *Writer) Bytes() []byte {
	return w.buf[:w.n]
}

func (w *Writer) reserve(n int) ([]byte, error) {
	if w.n+n > len(w.buf) {
		return nil, jpegerr.ErrBufferTooSmall
	}
	span := w.buf[w.n : w.n+n]
	w.n += n
	return span, nil
}

// WriteMarker writes a bare 2-byte marker (SOI, EOI, RSTn).
func (w *Writer) WriteMarker(m common.Marker) error {
	span, err := w.reserve(2)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint16(span, uint16(m))
	return nil
}

// WriteSegment writes marker followed by a self-inclusive 2-byte length
// field and then data.
func (w *Writer) WriteSegment(m common.Marker, data []byte) error {
	if err := w.WriteMarker(m); err != nil {
		return err
	}
	length := len(data) + 2
	if length > 0xFFFF {
		return jpegerr.ErrBadMarkerLength
	}
	span, err := w.reserve(2)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint16(span, uint16(length))
	body, err := w.reserve(len(data))
	if err != nil {
		return err
	}
	copy(body, data)
	return nil
}

// WriteBytes appends raw bytes, for entropy-coded scan data already produced
// by a BitWriter.
func (w *Writer) WriteBytes(data []byte) error {
	span, err := w.reserve(len(data))
	if err != nil {
		return err
	}
	copy(span, data)
	return nil
}

// Remaining returns the unwritten tail of the output span, for a BitWriter
// that writes the entropy-coded scan directly into this buffer in place.
func (w *Writer) Remaining() []byte {
	return w.buf[w.n:]
}

// Advance moves the write cursor forward n bytes without copying, for when
// a BitWriter has already filled Remaining() in place.
func (w *Writer) Advance(n int) error {
	if w.n+n > len(w.buf) {
		return jpegerr.ErrBufferTooSmall
	}
	w.n += n
	return nil
}

// Reader parses markers and segments out of a fixed input span.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf at position 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current read cursor.
func (r *Reader) Pos() int {
	return r.pos
}

// Seek moves the read cursor to an absolute offset (used to resume after a
// BitReader stopped at a marker).
func (r *Reader) Seek(pos int) {
	r.pos = pos
}

// Remaining returns the unconsumed tail of the input span.
func (r *Reader) Remaining() []byte {
	return r.buf[r.pos:]
}

// ReadMarker reads the next marker, tolerating 0xFF fill bytes before it.
// Per spec §4.7 this scan is capped at maxMarkerScan bytes so a stream full
// of non-0xFF junk (StructuralCorruption) fails fast instead of looping over
// the whole remaining buffer one byte at a time.
func (r *Reader) ReadMarker() (common.Marker, error) {
	scanned := 0
	for {
		if r.pos >= len(r.buf) {
			return 0, jpegerr.ErrPrematureEOS
		}
		if r.buf[r.pos] != 0xFF {
			r.pos++
			scanned++
			if scanned > maxMarkerScan {
				return 0, jpegerr.ErrBadMarkerLength
			}
			continue
		}
		// At a 0xFF: skip any run of fill bytes (0xFF 0xFF 0xFF ...).
		p := r.pos
		for p < len(r.buf) && r.buf[p] == 0xFF {
			p++
		}
		if p >= len(r.buf) {
			return 0, jpegerr.ErrPrematureEOS
		}
		b := r.buf[p]
		if b == 0x00 {
			// Stuffed byte found outside entropy data: not a marker.
			r.pos = p + 1
			scanned++
			if scanned > maxMarkerScan {
				return 0, jpegerr.ErrBadMarkerLength
			}
			continue
		}
		r.pos = p + 1
		return common.Marker(0xFF00 | uint16(b)), nil
	}
}

// ReadSegment reads a segment's self-inclusive 2-byte length field followed
// by that many minus 2 bytes, returning a view into buf (never a copy).
// Lengths that claim more data than remains, or a length below the minimum
// of 2, are rejected as "impossible length" StructuralCorruption.
func (r *Reader) ReadSegment() ([]byte, error) {
	if r.pos+2 > len(r.buf) {
		return nil, jpegerr.ErrPrematureEOS
	}
	length := int(binary.BigEndian.Uint16(r.buf[r.pos : r.pos+2]))
	if length < 2 {
		return nil, jpegerr.ErrBadMarkerLength
	}
	dataLen := length - 2
	start := r.pos + 2
	end := start + dataLen
	if end > len(r.buf) {
		return nil, jpegerr.ErrBadMarkerLength
	}
	r.pos = end
	return r.buf[start:end], nil
}

// Skip advances the cursor n bytes without interpreting them.
func (r *Reader) Skip(n int) error {
	if n < 0 || r.pos+n > len(r.buf) {
		return jpegerr.ErrPrematureEOS
	}
	r.pos += n
	return nil
}
