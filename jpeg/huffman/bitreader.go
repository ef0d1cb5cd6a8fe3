package huffman

import (
	"github.com/abcouwer-jpl/jsc/jpeg/common"
	"github.com/abcouwer-jpl/jsc/jpegerr"
)

// BitReader pulls bits out of an entropy-coded segment, undoing byte
// stuffing (0xFF 0x00 -> 0xFF) and stopping cleanly the instant it finds a
// real marker (0xFF followed by a non-zero, non-stuffed byte) instead of
// consuming it, so the caller can hand the remaining span back to the
// marker reader.
type BitReader struct {
	buf   []byte
	pos   int
	acc   uint32
	nBits int

	atMarker  bool // true once a real marker has been found
	exhausted bool // true once padding past the marker/end has begun
}

// NewBitReader wraps buf, the byte span of one entropy-coded segment (from
// just after SOS's header to just before the next marker).
func NewBitReader(buf []byte) *BitReader {
	return &BitReader{buf: buf}
}

// Pos returns the offset of the next unread raw byte. Once AtMarker is
// true, this points at the 0xFF byte of the pending marker; any bits
// buffered past that point are discarded, matching the spec's rule that
// scan padding carries no meaning once a marker is reached.
func (r *BitReader) Pos() int {
	return r.pos
}

// AtMarker reports whether the reader has stopped at a real marker.
func (r *BitReader) AtMarker() bool {
	return r.atMarker
}

// nextRawByte returns the next de-stuffed data byte, or ok=false if a
// marker was found (sets atMarker) or the buffer ran out (sets exhausted).
func (r *BitReader) nextRawByte() (byte, bool) {
	if r.atMarker || r.pos >= len(r.buf) {
		r.exhausted = true
		return 0, false
	}
	b := r.buf[r.pos]
	if b != 0xFF {
		r.pos++
		return b, true
	}
	// b == 0xFF: either a stuffed byte or the start of a marker.
	if r.pos+1 >= len(r.buf) {
		r.exhausted = true
		return 0, false
	}
	next := r.buf[r.pos+1]
	if next == 0x00 {
		r.pos += 2
		return 0xFF, true
	}
	// Fill bytes (0xFF) before a marker are legal and skipped; anything else
	// is the marker itself.
	if next == 0xFF {
		r.pos++
		return r.nextRawByte()
	}
	r.atMarker = true
	r.exhausted = true
	return 0, false
}

// fill tops up the accumulator to at least n bits (n <= 24), padding with 1
// bits once the segment is exhausted, per the spec's "synthesize 1 bits past
// the end of data" recovery rule. Exhausted reports whether that has begun.
func (r *BitReader) fill(n int) {
	for r.nBits < n {
		b, ok := r.nextRawByte()
		if !ok {
			// Pad with a byte of 1 bits; further fills keep doing the same,
			// so decode always terminates instead of blocking forever.
			b = 0xFF
		}
		r.acc = (r.acc << 8) | uint32(b)
		r.nBits += 8
	}
}

// GetBits reads n bits (0..24) as an unsigned value, most-significant bit
// first.
func (r *BitReader) GetBits(n int) uint32 {
	if n == 0 {
		return 0
	}
	r.fill(n)
	r.nBits -= n
	v := (r.acc >> uint(r.nBits)) & ((1 << uint(n)) - 1)
	return v
}

// Exhausted reports whether the reader has started synthesizing pad bits,
// either because it hit a marker or ran off the end of buf.
func (r *BitReader) Exhausted() bool {
	return r.exhausted
}

// DiscardBuffered drops any partially-consumed byte's leftover bits,
// aligning the reader to the next raw byte boundary. Used once Pos() is
// handed off to the marker reader after a restart marker or EOI.
func (r *BitReader) DiscardBuffered() {
	r.nBits = 0
	r.acc = 0
}

// DecodeHuffman decodes one symbol using table, trying the 8-bit lookahead
// first and falling back to the bit-by-bit min/max-code search for longer
// codes. Returns jpegerr.ErrHuffmanAllOnes if no code of any length matches,
// which only happens on corrupted or truncated data.
func (r *BitReader) DecodeHuffman(table *DecodeTable) (byte, error) {
	r.fill(8)
	peek := byte((r.acc >> uint(r.nBits-8)) & 0xFF)
	entry := table.Look8[peek]
	if entry.Bits != 0 {
		r.nBits -= int(entry.Bits)
		return entry.Value, nil
	}

	// Slow path: codes longer than 8 bits. Consume the 8 bits already
	// peeked, then extend the code one bit at a time.
	r.nBits -= 8
	code := int32(peek)
	for l := 9; l <= 16; l++ {
		code = (code << 1) | int32(r.GetBits(1))
		if table.MaxCode[l] >= 0 && code <= table.MaxCode[l] {
			idx := table.ValPtr[l] + (code - table.MinCode[l])
			if idx >= 0 && int(idx) < len(table.Values) {
				return table.Values[idx], nil
			}
		}
	}
	return 0, jpegerr.ErrHuffmanAllOnes
}

// PeekMarker returns the marker AtMarker stopped at, without consuming it.
// The caller must check AtMarker first; calling this otherwise panics on a
// short buffer only if pos+1 is out of range, which AtMarker==true rules out.
func (r *BitReader) PeekMarker() common.Marker {
	return common.Marker(0xFF00 | uint16(r.buf[r.pos+1]))
}

// ConsumeMarker advances past the 2-byte marker AtMarker stopped at and
// resumes normal byte-by-byte decoding, for restart markers the decoder has
// resynchronized to. The caller is responsible for having already verified
// this is the marker it wants to consume.
func (r *BitReader) ConsumeMarker() {
	r.pos += 2
	r.atMarker = false
	r.exhausted = false
	r.acc = 0
	r.nBits = 0
}

// ReceiveExtend decodes a cat-bit magnitude-and-sign payload (the EXTEND
// procedure), the inverse of ExtendBits.
func (r *BitReader) ReceiveExtend(cat int) int32 {
	if cat == 0 {
		return 0
	}
	v := int32(r.GetBits(cat))
	if v < (1 << uint(cat-1)) {
		v += (-1 << uint(cat)) + 1
	}
	return v
}
