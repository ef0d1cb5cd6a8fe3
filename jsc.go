// Package jsc is a baseline JPEG (ISO/IEC 10918-1, sequential Huffman)
// encoder/decoder for memory- and failure-constrained hosts: every
// allocation comes from a caller-supplied working arena, there is no
// background state, and a malformed input is always reported as an error,
// never a panic.
//
// Compress and Decompress are the two entry points; everything else lives
// under jpeg/ as internal pipeline stages (color conversion, sampling,
// DCT/quantization, Huffman entropy coding, marker framing).
package jsc

import (
	"github.com/abcouwer-jpl/jsc/arena"
	"github.com/abcouwer-jpl/jsc/jpeg/baseline"
	"github.com/abcouwer-jpl/jsc/jpeg/common"
	"github.com/abcouwer-jpl/jsc/jpegerr"
)

// Image is an interleaved width*height*NumComponents byte buffer — the sole
// data model this module uses on either side of the codec, per
// SPEC_FULL.md's reasons for declining image.Image. ColorSpace names the
// JPEG color space; Pixels hold RGB samples for ColorYCbCr/ColorBGYCC and
// CMYK samples for ColorYCCK (see baseline.Image).
type Image = baseline.Image

// ColorSpace re-exports jpeg/common.ColorSpace so callers never need to
// import jpeg/common directly for the handful of constants Compress needs.
type ColorSpace = common.ColorSpace

// Color space constants for Compress's input.
const (
	ColorGray  = common.ColorGray
	ColorRGB   = common.ColorRGB
	ColorYCbCr = common.ColorYCbCr
	ColorCMYK  = common.ColorCMYK
	ColorYCCK  = common.ColorYCCK
	ColorBGYCC = common.ColorBGYCC
)

// defaultSectionRows is the moderate restart density spec §6 describes for
// plain Compress: roughly one restart section per 64 pixel rows.
const defaultSectionRows = 64

// SizeHint returns arena.SizeHint's working-arena size for an image of the
// given width and component count. It is enough only for small images; see
// arena.SizeHint for what Compress and Decompress actually hold.
func SizeHint(width, ncomp int) int {
	return arena.SizeHint(width, ncomp)
}

// Compress encodes image into output at the given quality (1..100),
// choosing a moderate default restart-marker density (roughly H/64
// sections), and returns the number of bytes written. working is the
// caller-sized arena every allocation the encoder needs comes from; reset
// it (or use a fresh one) between calls.
func Compress(image Image, output []byte, working *arena.Arena, quality int) (int, error) {
	sections := image.Height / defaultSectionRows
	if sections < 1 {
		sections = 1
	}
	return CompressWithRestarts(image, output, working, quality, sections)
}

// CompressWithRestarts is Compress with explicit control over how many
// independently-decodable restart sections the image is divided into.
// nRestartSections <= 1 disables restart markers entirely.
func CompressWithRestarts(image Image, output []byte, working *arena.Arena, quality, nRestartSections int) (int, error) {
	cs := image.ColorSpace
	if cs == common.ColorRGB {
		// RGB is a caller-facing format, not a JPEG-internal one: the standard
		// JFIF choice is to encode it as YCbCr, the same byte-triplet layout
		// colorSpaceLayout's YCbCr plan already expects.
		cs = common.ColorYCbCr
	}

	opts := baseline.Options{Quality: quality}
	if nRestartSections > 1 {
		_, vMax, err := baseline.MaxSamplingFactors(cs)
		if err != nil {
			return 0, err
		}
		mcusPerCol := common.DivCeil(image.Height, vMax*8)
		opts.RestartRows = common.DivCeil(mcusPerCol, nRestartSections)
		if opts.RestartRows < 1 {
			opts.RestartRows = 1
		}
	}

	enc, err := baseline.NewEncoder(working, opts)
	if err != nil {
		return 0, err
	}
	return enc.Encode(image.Width, image.Height, cs, image.Pixels, output)
}

// Decompress parses data as a baseline JPEG bitstream and reconstructs the
// image into working, the caller-sized arena every allocation the decoder
// needs (including the returned Image.Pixels) comes from.
func Decompress(data []byte, working *arena.Arena) (Image, error) {
	dec, err := baseline.NewDecoder(working, baseline.Options{})
	if err != nil {
		return Image{}, err
	}
	return dec.Decode(data)
}

// ErrBufferTooSmall is returned by Compress/CompressWithRestarts when
// output is not large enough to hold the compressed bitstream; re-exported
// so callers can check it with errors.Is without importing jpegerr.
var ErrBufferTooSmall = jpegerr.ErrBufferTooSmall
