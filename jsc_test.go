package jsc

import (
	"testing"

	"github.com/abcouwer-jpl/jsc/arena"
	"github.com/abcouwer-jpl/jsc/jpeg/baseline"
	"github.com/abcouwer-jpl/jsc/jpeg/common"
)

func newArena(width, ncomp int) *arena.Arena {
	return arena.New(make([]byte, SizeHint(width, ncomp)*2))
}

func fillGray(width, height int, value byte) []byte {
	buf := make([]byte, width*height)
	for i := range buf {
		buf[i] = value
	}
	return buf
}

func fillRandomRGB(width, height int, seed uint32) []byte {
	buf := make([]byte, width*height*3)
	x := seed
	for i := range buf {
		x = x*1664525 + 1013904223
		buf[i] = byte(x >> 24)
	}
	return buf
}

func maxAbsDiff(a, b []byte) int {
	max := 0
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max
}

func rmsError(a, b []byte) float64 {
	sum := 0.0
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	if len(a) == 0 {
		return 0
	}
	return sqrtApprox(sum / float64(len(a)))
}

// sqrtApprox is a dependency-free Newton's-method square root, used only to
// check RMS error bounds in tests.
func sqrtApprox(x float64) float64 {
	if x == 0 {
		return 0
	}
	z := x
	for i := 0; i < 30; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}

func TestCompressGray512SingleValue(t *testing.T) {
	const w, h = 512, 512
	pixels := fillGray(w, h, 128)
	img := Image{Width: w, Height: h, NumComponents: 1, ColorSpace: ColorGray, Pixels: pixels}

	ar := newArena(w, 1)
	out := make([]byte, w*h)
	n, err := Compress(img, out, ar, 85)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	data := out[:n]
	if data[0] != 0xFF || data[1] != 0xD8 {
		t.Fatalf("missing SOI")
	}
	if data[n-2] != 0xFF || data[n-1] != 0xD9 {
		t.Fatalf("missing EOI")
	}

	ar.Reset()
	decoded, err := Decompress(data, ar)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if decoded.Width != w || decoded.Height != h {
		t.Fatalf("dimensions = %dx%d, want %dx%d", decoded.Width, decoded.Height, w, h)
	}
	for i, v := range decoded.Pixels {
		if v != 128 {
			t.Fatalf("pixel %d = %d, want 128", i, v)
			break
		}
	}
}

func TestCompressRGB512RandomQuality(t *testing.T) {
	const w, h = 512, 512
	pixels := fillRandomRGB(w, h, 42)
	img := Image{Width: w, Height: h, NumComponents: 3, ColorSpace: ColorYCbCr, Pixels: pixels}

	ar := newArena(w, 3)
	out := make([]byte, w*h*3)
	n, err := Compress(img, out, ar, 75)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if ratio := float64(w*h*3) / float64(n); ratio < 3 {
		t.Errorf("compression ratio = %.2f, want >= 3", ratio)
	}

	ar.Reset()
	decoded, err := Decompress(out[:n], ar)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if rms := rmsError(pixels, decoded.Pixels); rms > 15 {
		t.Errorf("RMS error = %.2f, want <= 15", rms)
	}

	ar.Reset()
	reencoded := make([]byte, w*h*3)
	n2, err := Compress(decoded, reencoded, ar, 75)
	if err != nil {
		t.Fatalf("re-Compress: %v", err)
	}
	if n2 != n {
		t.Errorf("idempotence: re-encoded length %d != original %d", n2, n)
	} else {
		for i := 0; i < n; i++ {
			if out[i] != reencoded[i] {
				t.Fatalf("idempotence: byte %d differs: %x != %x", i, out[i], reencoded[i])
			}
		}
	}
}

func TestCompressOddDimensions(t *testing.T) {
	const w, h = 514, 513
	pixels := fillRandomRGB(w, h, 7)
	img := Image{Width: w, Height: h, NumComponents: 3, ColorSpace: ColorYCbCr, Pixels: pixels}

	ar := newArena(w, 3)
	out := make([]byte, w*h*3)
	n, err := Compress(img, out, ar, 75)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	ar.Reset()
	decoded, err := Decompress(out[:n], ar)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if decoded.Width != w || decoded.Height != h {
		t.Fatalf("dimensions = %dx%d, want %dx%d", decoded.Width, decoded.Height, w, h)
	}
}

func TestCompressSingleColorLowError(t *testing.T) {
	const w, h = 512, 512
	pixels := fillGray(w, h, 200)
	img := Image{Width: w, Height: h, NumComponents: 1, ColorSpace: ColorGray, Pixels: pixels}

	ar := newArena(w, 1)
	out := make([]byte, w*h)
	n, err := Compress(img, out, ar, 90)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	ar.Reset()
	decoded, err := Decompress(out[:n], ar)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if d := maxAbsDiff(pixels, decoded.Pixels); d > 8 {
		t.Errorf("max per-sample error = %d, want <= 8", d)
	}
}

func TestCompressBufferTooSmallReturnsCleanly(t *testing.T) {
	const w, h = 64, 64
	pixels := fillRandomRGB(w, h, 99)
	img := Image{Width: w, Height: h, NumComponents: 3, ColorSpace: ColorYCbCr, Pixels: pixels}

	ar := newArena(w, 3)
	out := make([]byte, 4) // far too small
	_, err := Compress(img, out, ar, 95)
	if err == nil {
		t.Fatal("expected an error for an undersized output buffer")
	}
}

func TestDecompressCorruptedRestartSection(t *testing.T) {
	const w, h = 256, 256
	pixels := fillRandomRGB(w, h, 13)
	img := Image{Width: w, Height: h, NumComponents: 3, ColorSpace: ColorYCbCr, Pixels: pixels}

	ar := newArena(w, 3)
	out := make([]byte, w*h*3)
	n, err := CompressWithRestarts(img, out, ar, 75, 5)
	if err != nil {
		t.Fatalf("CompressWithRestarts: %v", err)
	}
	data := append([]byte(nil), out[:n]...)

	// Flip roughly 1% of bytes in the middle third of the file, the entropy
	// coded region for a file this small.
	lo, hi := n/3, 2*n/3
	x := uint32(2026)
	for i := lo; i < hi; i++ {
		x = x*1664525 + 1013904223
		if x%100 == 0 {
			data[i] ^= 0xFF
		}
	}

	ar.Reset()
	decoded, err := Decompress(data, ar)
	if err != nil {
		// A suspended decode is an acceptable outcome of corruption too, as
		// long as it's a typed error rather than a crash.
		return
	}
	if decoded.Width != w || decoded.Height != h {
		t.Fatalf("dimensions = %dx%d, want %dx%d", decoded.Width, decoded.Height, w, h)
	}
	if rms := rmsError(pixels, decoded.Pixels); rms > 255 {
		t.Errorf("RMS error = %.2f, want <= 255", rms)
	}
}

func TestDecompressImpossibleMarkerLength(t *testing.T) {
	ar := newArena(64, 1)
	// SOI, then a DHT claiming a 9000-byte payload with nothing behind it.
	data := []byte{0xFF, 0xD8, 0xFF, 0xC4, 0x23, 0x28}
	_, err := Decompress(data, ar)
	if err == nil {
		t.Fatal("expected a suspended/error result for an impossible marker length")
	}
}

func TestDecompressDimensionCompliance(t *testing.T) {
	const w, h = 16, 16
	pixels := fillGray(w, h, 64)
	img := Image{Width: w, Height: h, NumComponents: 1, ColorSpace: ColorGray, Pixels: pixels}

	ar := newArena(w, 1)
	out := make([]byte, w*h+1024) // headers alone exceed w*h at 16x16
	n, err := Compress(img, out, ar, 80)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	ar.Reset()
	if _, err := Decompress(out[:n], ar); err != nil {
		t.Fatalf("Decompress: %v", err)
	}

	tooBig := Image{Width: 65501, Height: 16, NumComponents: 1, ColorSpace: ColorGray, Pixels: make([]byte, 65501*16)}
	arBig := newArena(65501, 1)
	if _, err := Compress(tooBig, make([]byte, 1), arBig, 80); err == nil {
		t.Fatal("expected an error for width 65501")
	}
}

func TestDecompressGarbageNeverCrashes(t *testing.T) {
	const w, h = 32, 32
	pixels := fillGray(w, h, 100)
	img := Image{Width: w, Height: h, NumComponents: 1, ColorSpace: ColorGray, Pixels: pixels}

	ar := newArena(w, 1)
	out := make([]byte, w*h)
	n, err := Compress(img, out, ar, 80)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	base := out[:n]

	values := []byte{0x00, 0x01, 0x7F, 0xFF, 0xD8, 0xD9}
	for offset := 0; offset < len(base); offset += 7 {
		for _, v := range values {
			mutated := append([]byte(nil), base...)
			mutated[offset] = v

			func() {
				defer func() {
					if r := recover(); r != nil {
						t.Fatalf("panic at offset %d value %x: %v", offset, v, r)
					}
				}()
				ar.Reset()
				_, _ = Decompress(mutated, ar)
			}()
		}
	}
}

func TestComponentCountMatchesColorSpace(t *testing.T) {
	cases := []struct {
		cs   common.ColorSpace
		n    int
	}{
		{ColorGray, 1},
		{ColorYCbCr, 3},
		{ColorBGYCC, 3},
		{ColorCMYK, 4},
		{ColorYCCK, 4},
	}
	for _, tc := range cases {
		hMax, vMax, err := baseline.MaxSamplingFactors(tc.cs)
		if err != nil {
			t.Fatalf("%v: %v", tc.cs, err)
		}
		if hMax < 1 || vMax < 1 {
			t.Fatalf("%v: hMax=%d vMax=%d", tc.cs, hMax, vMax)
		}

		const w, h = 16, 16
		img := Image{Width: w, Height: h, NumComponents: tc.n, ColorSpace: tc.cs, Pixels: make([]byte, w*h*tc.n)}
		out := make([]byte, 4096)
		n, err := Compress(img, out, newArena(w, tc.n), 80)
		if err != nil {
			t.Fatalf("%v: Compress: %v", tc.cs, err)
		}
		nf := -1
		for i := 0; i+9 < n; i++ {
			if out[i] == 0xFF && out[i+1] == byte(common.SOF0&0xFF) {
				nf = int(out[i+9])
				break
			}
		}
		if nf != tc.n {
			t.Fatalf("%v: SOF0 component count = %d, want %d", tc.cs, nf, tc.n)
		}
	}
}
