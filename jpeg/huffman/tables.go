// Package huffman implements the derived encode/decode Huffman tables and
// the bit-level entropy coder and decoder built on top of them, per spec §3
// and §4.5/§4.8.
package huffman

import (
	"github.com/abcouwer-jpl/jsc/jpeg/common"
	"github.com/abcouwer-jpl/jsc/jpegerr"
)

// EncodeTable holds, for every possible 8-bit symbol value, the code and bit
// length to emit for it. Only entries that actually appear in the source
// StdHuffTable/custom table are populated; the rest are never looked up.
type EncodeTable struct {
	Code [256]uint32
	Size [256]byte
}

// BuildEncodeTable derives an EncodeTable from a table's Bits/Values lists,
// assigning codes in the canonical order: shortest code length first, and
// within a length, in the order symbols appear in Values.
func BuildEncodeTable(bits [16]int, values []byte) (*EncodeTable, error) {
	var huffSize [257]byte
	p := 0
	for l := 0; l < 16; l++ {
		for i := 0; i < bits[l]; i++ {
			if p >= len(values) {
				return nil, jpegerr.ErrBadHuffmanIndex
			}
			huffSize[p] = byte(l + 1)
			p++
		}
	}
	lastP := p

	var huffCode [257]uint32
	code := uint32(0)
	size := huffSize[0]
	p = 0
	for p < lastP {
		for huffSize[p] == size {
			huffCode[p] = code
			code++
			p++
			if p >= lastP {
				break
			}
		}
		code <<= 1
		size++
	}

	t := &EncodeTable{}
	for i := 0; i < lastP; i++ {
		t.Code[values[i]] = huffCode[i]
		t.Size[values[i]] = huffSize[i]
	}
	return t, nil
}

// DecodeTable holds the derived structures spec §3 requires for fast
// decoding: an 8-bit lookahead table for the common case, and the
// min/max-code plus value-offset arrays for codes longer than 8 bits.
type DecodeTable struct {
	// Look8[byte] gives the decoded symbol and code length for any 8-bit
	// lookahead that resolves within 8 bits; Bits==0 means "look further".
	Look8 [256]struct {
		Value byte
		Bits  byte
	}
	MaxCode [18]int32 // index by code length 1..16; [0] unused, [17] sentinel
	ValPtr  [17]int32
	MinCode [17]int32
	Values  []byte
}

// BuildDecodeTable derives a DecodeTable from a table's Bits/Values lists.
func BuildDecodeTable(bits [16]int, values []byte) (*DecodeTable, error) {
	t := &DecodeTable{Values: values}
	for i := range t.Look8 {
		t.Look8[i].Bits = 0
	}

	var huffSize [257]byte
	p := 0
	for l := 0; l < 16; l++ {
		for i := 0; i < bits[l]; i++ {
			if p >= len(values) {
				return nil, jpegerr.ErrBadHuffmanIndex
			}
			huffSize[p] = byte(l + 1)
			p++
		}
	}
	lastP := p

	var huffCode [257]uint32
	code := uint32(0)
	size := huffSize[0]
	p = 0
	for p < lastP {
		for huffSize[p] == size {
			huffCode[p] = code
			code++
			p++
			if p >= lastP {
				break
			}
		}
		code <<= 1
		size++
	}

	// min/max code and value-offset per length.
	p = 0
	for l := 1; l <= 16; l++ {
		if bits[l-1] == 0 {
			t.MaxCode[l] = -1
		} else {
			t.ValPtr[l] = int32(p)
			t.MinCode[l] = int32(huffCode[p])
			p += bits[l-1]
			t.MaxCode[l] = int32(huffCode[p-1])
		}
	}
	t.MaxCode[17] = 0xFFFFF // sentinel: never satisfied, forces 16-bit bailout

	// 8-bit lookahead table: for every code of length <= 8, fill every
	// lookahead byte that has that code as a prefix.
	p = 0
	for l := 1; l <= 8; l++ {
		for i := 0; i < bits[l-1]; i++ {
			code := huffCode[p]
			sym := values[p]
			shift := 8 - l
			base := int(code) << uint(shift)
			for fill := 0; fill < (1 << uint(shift)); fill++ {
				t.Look8[base+fill].Value = sym
				t.Look8[base+fill].Bits = byte(l)
			}
			p++
		}
	}
	return t, nil
}

// Compile derives both tables from a common.StdHuffTable, the form quant/DHT
// segments and the standard tables in jpeg/common are carried in.
func Compile(std common.StdHuffTable) (*EncodeTable, *DecodeTable, error) {
	enc, err := BuildEncodeTable(std.Bits, std.Values)
	if err != nil {
		return nil, nil, err
	}
	dec, err := BuildDecodeTable(std.Bits, std.Values)
	if err != nil {
		return nil, nil, err
	}
	return enc, dec, nil
}

// Category returns the number of bits needed to represent v (spec's SSSS),
// 0 for v==0.
func Category(v int32) int {
	av := v
	if av < 0 {
		av = -av
	}
	n := 0
	for av != 0 {
		n++
		av >>= 1
	}
	return n
}

// ExtendBits returns the SSSS-bit magnitude-and-sign payload to emit after a
// category's code, for DC diffs and AC coefficients alike: positive values
// are sent as-is, negative values as (v + 2^cat - 1) so the top bit of the
// payload distinguishes sign on decode (the EXTEND procedure run backwards).
func ExtendBits(v int32, cat int) uint32 {
	if v >= 0 {
		return uint32(v)
	}
	return uint32(v + (1 << uint(cat)) - 1)
}
