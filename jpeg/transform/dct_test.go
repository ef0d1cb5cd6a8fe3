package transform

import (
	"math"
	"testing"

	"github.com/abcouwer-jpl/jsc/jpeg/common"
)

func samplesToCentered(samples [64]byte) [64]float64 {
	var out [64]float64
	for i, s := range samples {
		out[i] = float64(s) - 128
	}
	return out
}

func TestFDCTIDCTRoundTripFlatBlock(t *testing.T) {
	var samples [64]byte
	for i := range samples {
		samples[i] = 130
	}
	block := samplesToCentered(samples)
	FDCT(&block)

	// A flat block should carry all of its energy in the DC term.
	for i := 1; i < 64; i++ {
		if math.Abs(block[i]) > 1e-6 {
			t.Fatalf("expected AC coefficient %d to be ~0, got %v", i, block[i])
		}
	}

	// FDCT leaves its output scaled by 8*aan[r]*aan[c] and IDCT expects
	// input scaled by aan[r]*aan[c]/8, so the coefficients differ by 64.
	for i := range block {
		block[i] /= 64
	}

	var out [64]byte
	IDCT(&block, true, &out)
	for i, v := range out {
		if v != 130 {
			t.Fatalf("sample %d: got %d, want 130", i, v)
		}
	}
}

func TestFDCTIDCTRoundTripRamp(t *testing.T) {
	var samples [64]byte
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			samples[r*8+c] = byte(r*16 + c*8)
		}
	}
	block := samplesToCentered(samples)
	FDCT(&block)
	// Rescale from FDCT's output scaling to IDCT's input scaling (factor 64).
	for i := range block {
		block[i] /= 64
	}

	allZeroAC := true
	for i := 1; i < 64; i++ {
		if block[i] != 0 {
			allZeroAC = false
			break
		}
	}

	var out [64]byte
	IDCT(&block, allZeroAC, &out)

	for i := range samples {
		diff := int(out[i]) - int(samples[i])
		if diff < -2 || diff > 2 {
			t.Fatalf("sample %d: got %d, want approx %d", i, out[i], samples[i])
		}
	}
}

func TestQuantizeDequantizeRoundTrip(t *testing.T) {
	quant := &common.QuantTable{Values: common.DefaultLuminanceQuantTable}

	var samples [64]byte
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			samples[r*8+c] = byte(64 + r*8 - c*4)
		}
	}
	block := samplesToCentered(samples)
	FDCT(&block)

	var div [64]float64
	QuantDivisor(quant, false, &div)
	var coef [64]int32
	Quantize(&block, &div, &coef)

	var mul [64]float64
	DequantDivisor(quant, &mul)
	var dq [64]float64
	Dequantize(&coef, &mul, &dq)

	allZeroAC := true
	for i := 1; i < 64; i++ {
		if coef[i] != 0 {
			allZeroAC = false
			break
		}
	}

	var out [64]byte
	IDCT(&dq, allZeroAC, &out)

	for i := range samples {
		diff := int(out[i]) - int(samples[i])
		if diff < -12 || diff > 12 {
			t.Fatalf("sample %d: got %d, want approx %d (quantized round trip)", i, out[i], samples[i])
		}
	}
}

func TestQuantDivisorExtraQuantHalvesValues(t *testing.T) {
	quant := &common.QuantTable{Values: common.DefaultChrominanceQuantTable}
	var d1, d2 [64]float64
	QuantDivisor(quant, false, &d1)
	QuantDivisor(quant, true, &d2)
	for i := range d1 {
		got := d2[i]
		want := d1[i] / 2
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("index %d: extra-quant divisor %v, want half of %v", i, got, d1[i])
		}
	}
}

func TestRangeLimitClampsOutOfRangeSamples(t *testing.T) {
	cases := []struct {
		in   int
		want byte
	}{
		{-512, 0},
		{-1, 0},
		{0, 0},
		{128, 128},
		{255, 255},
		{256, 255},
		{1500, 255},
	}
	for _, c := range cases {
		got := rangeLimit(c.in)
		if got != c.want {
			t.Fatalf("rangeLimit(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
