package huffman

import "github.com/abcouwer-jpl/jsc/jpeg/common"

// EncodeBlock entropy-codes one 8x8 block of quantized coefficients (natural
// order) per spec §4.5: DC as a difference from dcPred (updated in place),
// AC via zigzag-ordered run-length pairs with ZRL (0xF0) for runs of 16
// zeroes and EOB (0x00) once the remaining coefficients are all zero.
func EncodeBlock(w *BitWriter, coef *[64]int32, dcTable, acTable *EncodeTable, dcPred *int32) error {
	diff := coef[0] - *dcPred
	*dcPred = coef[0]

	cat := Category(diff)
	if err := w.PutBits(dcTable.Code[cat], int(dcTable.Size[cat])); err != nil {
		return err
	}
	if cat > 0 {
		if err := w.PutBits(ExtendBits(diff, cat), cat); err != nil {
			return err
		}
	}

	run := 0
	for k := 1; k < 64; k++ {
		v := coef[common.NaturalOrder[k]]
		if v == 0 {
			run++
			continue
		}
		for run >= 16 {
			if err := w.PutBits(acTable.Code[0xF0], int(acTable.Size[0xF0])); err != nil {
				return err
			}
			run -= 16
		}
		acCat := Category(v)
		sym := byte(run<<4) | byte(acCat)
		if err := w.PutBits(acTable.Code[sym], int(acTable.Size[sym])); err != nil {
			return err
		}
		if err := w.PutBits(ExtendBits(v, acCat), acCat); err != nil {
			return err
		}
		run = 0
	}
	if run > 0 {
		if err := w.PutBits(acTable.Code[0x00], int(acTable.Size[0x00])); err != nil {
			return err
		}
	}
	return nil
}
