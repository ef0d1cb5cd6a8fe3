package common

// NaturalOrder maps a position in the zigzag-ordered bitstream
// representation (low frequency to high frequency) to its natural-order 8x8
// block index (row-major, 0..63). This is the same permutation
// libjpeg-family codecs call jpeg_natural_order:
// NaturalOrder[zigzagIndex] == naturalIndex.
var NaturalOrder = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// AANScaleFactor is the AA&N (Arai, Agui, Nakajima) per-frequency scale
// factor table used by both the forward and inverse float DCT, indexed 0..7
// along a row or column.
var AANScaleFactor = [8]float64{
	1.0, 1.387039845, 1.306562965, 1.175875602,
	1.0, 0.785694958, 0.541196100, 0.275899379,
}
