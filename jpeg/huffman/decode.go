package huffman

import (
	"github.com/abcouwer-jpl/jsc/jpeg/common"
	"github.com/abcouwer-jpl/jsc/jpegerr"
)

// DecodeBlock entropy-decodes one 8x8 block into coef (natural order,
// zeroed first), the inverse of EncodeBlock. allZeroAC reports whether every
// AC coefficient came out zero, letting the IDCT take its fast path.
//
// A Huffman code that never resolves (ErrHuffmanAllOnes) or a run that would
// overflow the 64-coefficient block both indicate corrupted entropy data;
// both are reported to the caller rather than panicking or reading out of
// bounds, per spec §7's DataCorruption handling.
func DecodeBlock(r *BitReader, dcTable, acTable *DecodeTable, dcPred *int32, coef *[64]int32) (allZeroAC bool, err error) {
	for i := range coef {
		coef[i] = 0
	}

	dcCat, err := r.DecodeHuffman(dcTable)
	if err != nil {
		return true, err
	}
	if dcCat > 16 {
		return true, jpegerr.ErrHuffmanAllOnes
	}
	diff := r.ReceiveExtend(int(dcCat))
	*dcPred += diff
	coef[0] = *dcPred

	allZeroAC = true
	k := 1
	for k < 64 {
		rs, err := r.DecodeHuffman(acTable)
		if err != nil {
			return allZeroAC, err
		}
		run := int(rs >> 4)
		size := int(rs & 0x0F)

		if size == 0 {
			if run == 15 {
				// ZRL: skip 16 zero coefficients.
				k += 16
				continue
			}
			// EOB: remaining coefficients are zero.
			break
		}

		k += run
		if k >= 64 {
			// Corrupted run overruns the block; stop decoding this block's
			// AC coefficients rather than indexing past the end.
			return allZeroAC, jpegerr.ErrACRunOverflow
		}
		v := r.ReceiveExtend(size)
		coef[common.NaturalOrder[k]] = v
		allZeroAC = false
		k++
	}
	return allZeroAC, nil
}
