package baseline

import (
	"testing"

	"github.com/abcouwer-jpl/jsc/arena"
	"github.com/abcouwer-jpl/jsc/jpeg/common"
)

func encodeGray(t *testing.T, width, height int, value byte, quality int) []byte {
	t.Helper()
	pixels := make([]byte, width*height)
	for i := range pixels {
		pixels[i] = value
	}
	ar := arena.New(make([]byte, arena.SizeHint(width, 1)*2))
	enc, err := NewEncoder(ar, Options{Quality: quality})
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	out := make([]byte, width*height+1024)
	n, err := enc.Encode(width, height, common.ColorGray, pixels, out)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return out[:n]
}

func TestEncodeGrayMarkerSequence(t *testing.T) {
	data := encodeGray(t, 16, 16, 128, 85)

	if data[0] != 0xFF || data[1] != 0xD8 {
		t.Fatalf("missing SOI")
	}
	if data[2] != 0xFF || data[3] != byte(common.APP0&0xFF) {
		t.Fatalf("expected JFIF APP0 after SOI, got %x %x", data[2], data[3])
	}
	if data[len(data)-2] != 0xFF || data[len(data)-1] != 0xD9 {
		t.Fatalf("missing EOI")
	}

	// Every 0xFF byte in the scan region must be followed by 0x00 or a
	// restart marker code; scan for the SOS marker then check the remainder
	// up to EOI.
	sosOff := -1
	for i := 0; i+1 < len(data); i++ {
		if data[i] == 0xFF && data[i+1] == byte(common.SOS&0xFF) {
			sosOff = i
			break
		}
	}
	if sosOff < 0 {
		t.Fatal("no SOS marker found")
	}
	length := int(data[sosOff+2])<<8 | int(data[sosOff+3])
	scanStart := sosOff + 2 + length
	for i := scanStart; i+1 < len(data)-2; i++ {
		if data[i] == 0xFF {
			next := data[i+1]
			if next == 0x00 {
				continue
			}
			if next >= 0xD0 && next <= 0xD7 {
				continue
			}
			t.Fatalf("unescaped 0xFF at offset %d followed by %x", i, next)
		}
	}
}

func TestEncodeDecodeGrayRoundTrip(t *testing.T) {
	const w, h = 64, 48
	data := encodeGray(t, w, h, 128, 85)

	ar := arena.New(make([]byte, arena.SizeHint(w, 1)*2))
	dec, err := NewDecoder(ar, Options{})
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	img, err := dec.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != w || img.Height != h {
		t.Fatalf("dimensions = %dx%d, want %dx%d", img.Width, img.Height, w, h)
	}
	for i, v := range img.Pixels {
		if v != 128 {
			t.Fatalf("pixel %d = %d, want 128", i, v)
		}
	}
}

func TestEncodeRejectsOversizedDimensions(t *testing.T) {
	ar := arena.New(make([]byte, 1<<20))
	enc, err := NewEncoder(ar, Options{Quality: 80})
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	pixels := make([]byte, 1)
	out := make([]byte, 64)
	if _, err := enc.Encode(65501, 1, common.ColorGray, pixels, out); err == nil {
		t.Fatal("expected an error for width 65501")
	}
}

func TestEncodeRejectsEmptyImage(t *testing.T) {
	ar := arena.New(make([]byte, 1<<20))
	enc, err := NewEncoder(ar, Options{Quality: 80})
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	out := make([]byte, 64)
	if _, err := enc.Encode(0, 10, common.ColorGray, nil, out); err == nil {
		t.Fatal("expected an error for a zero-width image")
	}
}

func TestEncodeBufferTooSmall(t *testing.T) {
	const w, h = 128, 128
	pixels := make([]byte, w*h)
	for i := range pixels {
		pixels[i] = byte(i)
	}
	ar := arena.New(make([]byte, arena.SizeHint(w, 1)*2))
	enc, err := NewEncoder(ar, Options{Quality: 95})
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	out := make([]byte, 8)
	if _, err := enc.Encode(w, h, common.ColorGray, pixels, out); err == nil {
		t.Fatal("expected an error for an undersized output buffer")
	}
}

func TestDecodeRejectsMissingSOI(t *testing.T) {
	ar := arena.New(make([]byte, 1<<16))
	dec, err := NewDecoder(ar, Options{})
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	if _, err := dec.Decode([]byte{0x00, 0x01, 0x02}); err == nil {
		t.Fatal("expected an error for data with no SOI")
	}
}

func TestDecodeRejectsImpossibleMarkerLength(t *testing.T) {
	ar := arena.New(make([]byte, 1<<16))
	dec, err := NewDecoder(ar, Options{})
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	data := []byte{0xFF, 0xD8, 0xFF, 0xC4, 0x7F, 0xFF}
	if _, err := dec.Decode(data); err == nil {
		t.Fatal("expected an error for an impossible DHT length")
	}
}

func TestEncodeDecodeCMYKRoundTripUntransformed(t *testing.T) {
	const w, h = 16, 16
	pixels := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		pixels[i*4+0] = 10
		pixels[i*4+1] = 20
		pixels[i*4+2] = 30
		pixels[i*4+3] = 40
	}
	ar := arena.New(make([]byte, arena.SizeHint(w, 4)*2))
	enc, err := NewEncoder(ar, Options{Quality: 95})
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	out := make([]byte, w*h*4+1024)
	n, err := enc.Encode(w, h, common.ColorCMYK, pixels, out)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := out[:n]

	// A plain-CMYK Adobe marker must tag transform code 0 ("no translation").
	found := false
	for i := 0; i+11 < len(data); i++ {
		if data[i] == 0xFF && data[i+1] == byte(common.APP14&0xFF) && string(data[i+4:i+9]) == "Adobe" {
			found = true
			if data[i+15] != 0 {
				t.Fatalf("Adobe transform code = %d, want 0 for CMYK", data[i+15])
			}
		}
	}
	if !found {
		t.Fatal("expected an Adobe APP14 segment for CMYK output")
	}

	ar.Reset()
	dec, err := NewDecoder(ar, Options{})
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	img, err := dec.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.ColorSpace != common.ColorCMYK {
		t.Fatalf("ColorSpace = %v, want ColorCMYK", img.ColorSpace)
	}
	for i, v := range img.Pixels {
		if diff := int(v) - int(pixels[i]); diff < -2 || diff > 2 {
			t.Fatalf("pixel %d = %d, want near %d (untransformed CMYK round trip)", i, v, pixels[i])
		}
	}
}

func TestDecodeRecordsWarningOnRestartMismatch(t *testing.T) {
	const w, h = 64, 64
	pixels := make([]byte, w*h)
	for i := range pixels {
		pixels[i] = byte(i % 256)
	}
	ar := arena.New(make([]byte, arena.SizeHint(w, 1)*2))
	enc, err := NewEncoder(ar, Options{Quality: 80, RestartRows: 2})
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	out := make([]byte, w*h+1024)
	n, err := enc.Encode(w, h, common.ColorGray, pixels, out)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := out[:n]

	// Bump the first restart marker's number so it no longer matches what
	// the decoder expects (RST0 -> RST1), without disturbing anything else.
	flipped := false
	for i := 0; i+1 < len(data)-2; i++ {
		if data[i] == 0xFF && data[i+1] == byte(common.RSTMarker(0)&0xFF) {
			data[i+1] = byte(common.RSTMarker(1) & 0xFF)
			flipped = true
			break
		}
	}
	if !flipped {
		t.Fatal("expected at least one RST0 marker to flip")
	}

	ar.Reset()
	dec, err := NewDecoder(ar, Options{})
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	img, err := dec.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(img.Warnings) != 1 {
		t.Fatalf("len(Warnings) = %d, want exactly 1", len(img.Warnings))
	}
}

func TestEncodeDecodeWithRestartMarkers(t *testing.T) {
	const w, h = 64, 64
	pixels := make([]byte, w*h)
	for i := range pixels {
		pixels[i] = byte(i % 256)
	}
	ar := arena.New(make([]byte, arena.SizeHint(w, 1)*2))
	enc, err := NewEncoder(ar, Options{Quality: 80, RestartRows: 2})
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	out := make([]byte, w*h+1024)
	n, err := enc.Encode(w, h, common.ColorGray, pixels, out)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := out[:n]

	foundRST := false
	for i := 0; i+1 < len(data); i++ {
		if data[i] == 0xFF && data[i+1] >= 0xD0 && data[i+1] <= 0xD7 {
			foundRST = true
			break
		}
	}
	if !foundRST {
		t.Fatal("expected at least one restart marker in the entropy-coded region")
	}

	ar.Reset()
	dec, err := NewDecoder(ar, Options{})
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	img, err := dec.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != w || img.Height != h {
		t.Fatalf("dimensions = %dx%d, want %dx%d", img.Width, img.Height, w, h)
	}
}
