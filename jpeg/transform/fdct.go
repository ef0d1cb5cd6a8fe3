// Package transform implements the floating-point AA&N forward and inverse
// DCT and the quantization/dequantization steps that sit next to it, per
// spec §4.4 and §4.9.
package transform

import "github.com/abcouwer-jpl/jsc/jpeg/common"

// FDCT performs the 8x8 float AA&N forward DCT in place. block holds 64
// level-shifted samples in natural row-major order on entry (values
// -128..127, as LevelShift produces) and 64
// unscaled DCT coefficients in natural order on exit. The row pass and then
// column pass decomposition follows the textbook separable AA&N
// factorization: each 1-D pass only needs 5 multiplies instead of 8.
func FDCT(block *[64]float64) {
	// Row pass.
	for row := 0; row < 8; row++ {
		o := row * 8
		fdct1D(block[o : o+8])
	}
	// Column pass: gather a column into a scratch buffer, transform, store.
	var col [8]float64
	for c := 0; c < 8; c++ {
		for r := 0; r < 8; r++ {
			col[r] = block[r*8+c]
		}
		fdct1D(col[:])
		for r := 0; r < 8; r++ {
			block[r*8+c] = col[r]
		}
	}
}

// fdct1D transforms 8 values in place using the classic AA&N even/odd
// decomposition (5 multiplies instead of 8 per 1-D pass).
func fdct1D(v []float64) {
	t0 := v[0] + v[7]
	t7 := v[0] - v[7]
	t1 := v[1] + v[6]
	t6 := v[1] - v[6]
	t2 := v[2] + v[5]
	t5 := v[2] - v[5]
	t3 := v[3] + v[4]
	t4 := v[3] - v[4]

	// Even part.
	t10 := t0 + t3
	t13 := t0 - t3
	t11 := t1 + t2
	t12 := t1 - t2

	v[0] = t10 + t11
	v[4] = t10 - t11

	z1 := (t12 + t13) * 0.707106781 // cos(4*pi/16)
	v[2] = t13 + z1
	v[6] = t13 - z1

	// Odd part.
	t10 = t4 + t5
	t11 = t5 + t6
	t12 = t6 + t7

	z5 := (t10 - t12) * 0.382683433 // cos(6*pi/16)
	z2 := 0.541196100*t10 + z5      // sqrt(2)*cos(6*pi/16)
	z4 := 1.306562965*t12 + z5      // sqrt(2)*cos(2*pi/16)
	z3 := t11 * 0.707106781

	z11 := t7 + z3
	z13 := t7 - z3

	v[5] = z13 + z2
	v[3] = z13 - z2
	v[1] = z11 + z4
	v[7] = z11 - z4
}

// LevelShift centers 8-bit samples (0..255) to the signed range (-128..127)
// expected by FDCT, reading from a row-major stride-addressed source.
func LevelShift(src [][]byte, originX, originY int, dst *[64]float64) {
	for r := 0; r < 8; r++ {
		row := src[originY+r]
		for c := 0; c < 8; c++ {
			dst[r*8+c] = float64(row[originX+c]) - 128
		}
	}
}

// QuantDivisor fills out with the per-coefficient reciprocal divisor used to
// quantize a raw FDCT output, per spec §4.4:
//
//	1 / (quantval[r,c] * aanscalefactor[r] * aanscalefactor[c] * (needsExtraQuant ? 16 : 8))
//
// out is caller-owned (typically a slot in a fixed-size per-MCU array) so
// this never allocates.
func QuantDivisor(quant *common.QuantTable, needsExtraQuant bool, out *[64]float64) {
	scale := 8.0
	if needsExtraQuant {
		scale = 16.0
	}
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			i := r*8 + c
			out[i] = 1.0 / (float64(quant.Values[i]) * common.AANScaleFactor[r] * common.AANScaleFactor[c] * scale)
		}
	}
}

// Quantize multiplies each raw FDCT coefficient by its reciprocal divisor
// and rounds to the nearest integer using the spec's positive-bias trick
// ((int)(x + 16384.5) - 16384), writing results in natural order.
func Quantize(raw *[64]float64, divisor *[64]float64, out *[64]int32) {
	for i := 0; i < 64; i++ {
		x := raw[i] * divisor[i]
		out[i] = int32(int(x+16384.5) - 16384)
	}
}
