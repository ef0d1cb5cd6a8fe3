package huffman

import (
	"github.com/abcouwer-jpl/jsc/jpeg/common"
	"github.com/abcouwer-jpl/jsc/jpegerr"
)

// BitWriter accumulates bits into a caller-supplied output buffer, applying
// byte stuffing (0xFF -> 0xFF 0x00) as each byte is emitted. It never
// allocates: buf is sized up front by the caller from the arena.
type BitWriter struct {
	buf   []byte
	n     int // bytes written so far
	acc   uint32
	nBits int
}

// NewBitWriter wraps buf, a zero-length-used output span.
func NewBitWriter(buf []byte) *BitWriter {
	return &BitWriter{buf: buf}
}

// Len returns the number of bytes written so far.
func (w *BitWriter) Len() int {
	return w.n
}

// PutBits appends the low `size` bits of code, most-significant bit first.
// size must be in 1..24; the accumulator is 32 bits wide so a 24-bit code
// plus up to 7 leftover buffered bits never overflows it.
func (w *BitWriter) PutBits(code uint32, size int) error {
	if size == 0 {
		return nil
	}
	w.acc = (w.acc << uint(size)) | (code & ((1 << uint(size)) - 1))
	w.nBits += size
	for w.nBits >= 8 {
		b := byte(w.acc >> uint(w.nBits-8))
		if err := w.putByte(b); err != nil {
			return err
		}
		w.nBits -= 8
	}
	return nil
}

func (w *BitWriter) putByte(b byte) error {
	if w.n >= len(w.buf) {
		return jpegerr.ErrBufferTooSmall
	}
	w.buf[w.n] = b
	w.n++
	if b == 0xFF {
		if w.n >= len(w.buf) {
			return jpegerr.ErrBufferTooSmall
		}
		w.buf[w.n] = 0x00
		w.n++
	}
	return nil
}

// WriteRestartMarker flushes any pending bits (padding with 1s, as at any
// other flush point) and then emits the 2 raw marker bytes directly,
// unstuffed: a restart marker's 0xFF is never mistaken for data because it
// only ever appears byte-aligned, immediately after a flush.
func (w *BitWriter) WriteRestartMarker(m common.Marker) error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.n+2 > len(w.buf) {
		return jpegerr.ErrBufferTooSmall
	}
	w.buf[w.n] = byte(m >> 8)
	w.buf[w.n+1] = byte(m)
	w.n += 2
	return nil
}

// Flush pads any partial byte with 1 bits and emits it, per spec (this lets
// the decoder's EXTEND-on-exhaustion path synthesize trailing 1 bits too).
// It is idempotent: calling it with no pending bits is a no-op.
func (w *BitWriter) Flush() error {
	if w.nBits == 0 {
		return nil
	}
	pad := 8 - w.nBits
	b := byte((w.acc << uint(pad)) | ((1 << uint(pad)) - 1))
	w.nBits = 0
	w.acc = 0
	return w.putByte(b)
}
