// Package jpegerr defines the typed failure taxonomy every package under
// jpeg/ reports through. Every failure is recoverable: the codec never
// panics on malformed input, it returns one of these sentinel errors (or an
// error wrapping one, checkable with errors.Is).
package jpegerr

import (
	"errors"
	"strconv"
)

// InvariantViolated: a programming-error-shaped failure (nil argument,
// methods called out of sequence). These indicate a caller bug, not bad
// input, but are still returned rather than panicking.
var (
	ErrNilArena      = errors.New("jpeg: nil arena")
	ErrSequenceError = errors.New("jpeg: method called out of sequence")
)

// UnsupportedFeature: well-formed JPEG features this baseline-only core
// does not implement.
var (
	ErrUnsupportedSOF        = errors.New("jpeg: unsupported SOF marker (not baseline SOF0)")
	ErrUnsupportedPrecision  = errors.New("jpeg: unsupported sample precision (only 8-bit supported)")
	ErrFractSampleNotImpl    = errors.New("jpeg: fractional sampling ratio not implemented")
	ErrUnsupportedQuantPrec  = errors.New("jpeg: unsupported quantization table precision")
	ErrUnsupportedArithCoded = errors.New("jpeg: arithmetic coding not supported")
)

// StructuralCorruption: the marker stream does not describe a legal JPEG.
var (
	ErrMissingSOI        = errors.New("jpeg: missing SOI marker")
	ErrDuplicateSOI      = errors.New("jpeg: duplicate SOI marker")
	ErrDuplicateSOF      = errors.New("jpeg: duplicate SOF marker")
	ErrSOSBeforeSOF      = errors.New("jpeg: SOS before SOF")
	ErrBadMarkerLength   = errors.New("jpeg: marker length out of range")
	ErrBadComponentID    = errors.New("jpeg: bad component id")
	ErrBadSamplingFactor = errors.New("jpeg: sampling factor out of range 1..4")
	ErrBadQuantIndex     = errors.New("jpeg: quantization table index out of range")
	ErrBadHuffmanIndex   = errors.New("jpeg: Huffman table index out of range")
	ErrNoQuantTable      = errors.New("jpeg: component references an undefined quantization table")
	ErrNoHuffmanTable    = errors.New("jpeg: component references an undefined Huffman table")
	ErrBadMCUSize        = errors.New("jpeg: sum of sampling factors exceeds MCU limit")
	ErrEmptyImage        = errors.New("jpeg: zero width or height")
	ErrDimensionTooLarge = errors.New("jpeg: width or height exceeds 65500")
	ErrTooManyComponents = errors.New("jpeg: more than 4 components")
)

// DataCorruption: the bitstream itself is damaged. These are recoverable
// mid-stream; the decoder degrades rather than aborting.
var (
	ErrHuffmanAllOnes  = errors.New("jpeg: Huffman code exhausted all 16 lengths (all-ones code)")
	ErrPrematureEOS    = errors.New("jpeg: premature end of entropy-coded segment")
	ErrRestartMismatch = errors.New("jpeg: restart marker sequence mismatch")
	ErrACRunOverflow   = errors.New("jpeg: AC coefficient run overruns the 64-coefficient block")
)

// ResourceExhaustion: the caller-supplied buffers were too small.
var (
	ErrOutOfMemory    = errors.New("jpeg: arena exhausted")
	ErrBufferTooSmall = errors.New("jpeg: output buffer too small")
)

// Invalid arguments to the top-level API.
var (
	ErrInvalidQuality    = errors.New("jpeg: quality out of range 1..100")
	ErrInvalidDimensions = errors.New("jpeg: invalid image dimensions")
	ErrInvalidComponents = errors.New("jpeg: invalid component count")
)

// Suspended wraps JPEG_SUSPENDED per spec: the decoder encountered an
// UnsupportedFeature or StructuralCorruption condition and stopped
// producing further output. Cause is always non-nil and is one of the
// sentinels above (or a wrap of one).
type Suspended struct {
	Cause error
}

func (s *Suspended) Error() string {
	return "jpeg: suspended: " + s.Cause.Error()
}

func (s *Suspended) Unwrap() error {
	return s.Cause
}

// Suspend wraps cause as a Suspended failure.
func Suspend(cause error) error {
	return &Suspended{Cause: cause}
}

// Warning records a single DataCorruption-class recovery. The decoder
// collects at most one Warning per scan segment per spec ("a warning is
// recorded exactly once per segment").
type Warning struct {
	Cause  error
	Offset int
}

func (w *Warning) Error() string {
	return "jpeg: warning at offset " + strconv.Itoa(w.Offset) + ": " + w.Cause.Error()
}

func (w *Warning) Unwrap() error {
	return w.Cause
}
