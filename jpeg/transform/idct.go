package transform

import "github.com/abcouwer-jpl/jsc/jpeg/common"

// rangeBits controls the size of the range-limit table: CENTER = 128 <<
// rangeBits gives enough headroom for a one-1D-pass overshoot before the
// final descale, per spec §4.9. A masked table lookup replaces a branch, so
// a coefficient corrupted enough to make the IDCT overshoot can never index
// outside the table: the mask wraps any int into [0, rangeMask], and the
// table holds clamp(index-rangeCenter, 0, 255) for the whole span. Inputs
// within [-rangeCenter, rangeMask-rangeCenter] clamp exactly; inputs further
// out than that wrap to some safe byte value rather than panicking.
const rangeBits = 2
const rangeCenter = 128 << rangeBits
const rangeMask = 4*rangeCenter - 1

var rangeLimitTable = buildRangeLimitTable()

func buildRangeLimitTable() *[rangeMask + 1]byte {
	var t [rangeMask + 1]byte
	for i := range t {
		t[i] = byte(common.Clamp(i-rangeCenter, 0, 255))
	}
	return &t
}

func rangeLimit(x int) byte {
	return rangeLimitTable[(x+rangeCenter)&rangeMask]
}

// DequantDivisor fills out with the per-coefficient multiplier used to
// dequantize an IDCT input, the inverse of QuantDivisor: quantval *
// aanscale[r] * aanscale[c] / 8. out is caller-owned, so this never
// allocates.
func DequantDivisor(quant *common.QuantTable, out *[64]float64) {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			i := r*8 + c
			out[i] = float64(quant.Values[i]) * common.AANScaleFactor[r] * common.AANScaleFactor[c] / 8.0
		}
	}
}

// Dequantize multiplies each natural-order coefficient by its dequantization
// multiplier.
func Dequantize(coef *[64]int32, mul *[64]float64, out *[64]float64) {
	for i := 0; i < 64; i++ {
		out[i] = float64(coef[i]) * mul[i]
	}
}

// IDCT performs the 8x8 float AA&N inverse DCT, writing clamped 0..255
// samples to dst in row-major order. block holds dequantized coefficients in
// natural order on entry. allZeroAC lets the caller skip the column pass's
// butterfly network for the very common case of a DC-only block.
func IDCT(block *[64]float64, allZeroAC bool, dst *[64]byte) {
	var ws [64]float64

	if allZeroAC {
		// A DC-only block's column pass leaves the DC value down column 0
		// and zeros everywhere else.
		dc := block[0]
		for r := 0; r < 8; r++ {
			ws[r*8] = dc
		}
	} else {
		for c := 0; c < 8; c++ {
			idctColumn(block, c, &ws)
		}
	}

	for r := 0; r < 8; r++ {
		idctRow(&ws, r, dst)
	}
}

// idctColumn runs the even/odd butterfly down column c of block (stride 8)
// and stores the eight partial results into the matching column of ws.
func idctColumn(block *[64]float64, c int, ws *[64]float64) {
	at := func(row int) float64 { return block[row*8+c] }

	tmp0 := at(0)
	tmp1 := at(2)
	tmp2 := at(4)
	tmp3 := at(6)

	tmp10 := tmp0 + tmp2
	tmp11 := tmp0 - tmp2
	tmp13 := tmp1 + tmp3
	tmp12 := (tmp1-tmp3)*1.414213562 - tmp13

	e0 := tmp10 + tmp13
	e3 := tmp10 - tmp13
	e1 := tmp11 + tmp12
	e2 := tmp11 - tmp12

	tmp4 := at(1)
	tmp5 := at(3)
	tmp6 := at(5)
	tmp7 := at(7)

	z13 := tmp6 + tmp5
	z10 := tmp6 - tmp5
	z11 := tmp4 + tmp7
	z12 := tmp4 - tmp7

	o7 := z11 + z13
	o11 := (z11 - z13) * 1.414213562

	z5 := (z10 + z12) * 1.847759065
	o10 := 1.082392200*z12 - z5
	o12 := -2.613125930*z10 + z5

	o6 := o12 - o7
	o5 := o11 - o6
	o4 := o10 + o5

	ws[0*8+c] = e0 + o7
	ws[7*8+c] = e0 - o7
	ws[1*8+c] = e1 + o6
	ws[6*8+c] = e1 - o6
	ws[2*8+c] = e2 + o5
	ws[5*8+c] = e2 - o5
	ws[4*8+c] = e3 + o4
	ws[3*8+c] = e3 - o4
}

// idctRow runs the same butterfly across row r of ws and writes
// range-limited byte samples into the matching row of dst.
func idctRow(ws *[64]float64, r int, dst *[64]byte) {
	o := r * 8
	tmp10 := ws[o+0] + ws[o+4]
	tmp11 := ws[o+0] - ws[o+4]
	tmp13 := ws[o+2] + ws[o+6]
	tmp12 := (ws[o+2]-ws[o+6])*1.414213562 - tmp13

	e0 := tmp10 + tmp13
	e3 := tmp10 - tmp13
	e1 := tmp11 + tmp12
	e2 := tmp11 - tmp12

	z13 := ws[o+5] + ws[o+3]
	z10 := ws[o+5] - ws[o+3]
	z11 := ws[o+1] + ws[o+7]
	z12 := ws[o+1] - ws[o+7]

	o7 := z11 + z13
	o11 := (z11 - z13) * 1.414213562

	z5 := (z10 + z12) * 1.847759065
	o10 := 1.082392200*z12 - z5
	o12 := -2.613125930*z10 + z5

	o6 := o12 - o7
	o5 := o11 - o6
	o4 := o10 + o5

	dst[o+0] = rangeLimit(descale(e0 + o7))
	dst[o+7] = rangeLimit(descale(e0 - o7))
	dst[o+1] = rangeLimit(descale(e1 + o6))
	dst[o+6] = rangeLimit(descale(e1 - o6))
	dst[o+2] = rangeLimit(descale(e2 + o5))
	dst[o+5] = rangeLimit(descale(e2 - o5))
	dst[o+4] = rangeLimit(descale(e3 + o4))
	dst[o+3] = rangeLimit(descale(e3 - o4))
}

// StoreBlock copies a decoded 8x8 byte block into a row-major stride-
// addressed destination, the decode-side inverse of LevelShift.
func StoreBlock(dst [][]byte, originX, originY int, block *[64]byte) {
	for r := 0; r < 8; r++ {
		copy(dst[originY+r][originX:originX+8], block[r*8:r*8+8])
	}
}

// descale re-centers an IDCT output around 128, rounding to nearest. The
// 1/8 scale of the two 1-D passes is already folded into DequantDivisor's
// multipliers, so no further division happens here.
func descale(x float64) int {
	return int(x + 128.5)
}
