package common

// QuantTable is one quantization table slot (spec §3 "Tables"): 64 entries
// in natural order, plus a Sent flag the marker writer uses to suppress
// duplicate DQT segments within a stream.
type QuantTable struct {
	Values [64]uint16
	Sent   bool
}

// DefaultLuminanceQuantTable is the standard ITU-T T.81 Annex K luminance
// quantization table (natural order).
var DefaultLuminanceQuantTable = [64]uint16{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

// DefaultChrominanceQuantTable is the standard ITU-T T.81 Annex K
// chrominance quantization table (natural order).
var DefaultChrominanceQuantTable = [64]uint16{
	17, 18, 24, 47, 99, 99, 99, 99,
	18, 21, 26, 66, 99, 99, 99, 99,
	24, 26, 56, 99, 99, 99, 99, 99,
	47, 66, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

// QualityScale converts a 1..100 quality value to the percentage scale
// factor used by ScaleQuantTable, per spec §6:
//
//	q <= 50: scale = 5000/q
//	q >  50: scale = 200 - 2*q
func QualityScale(quality int) int {
	if quality <= 0 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	if quality <= 50 {
		return 5000 / quality
	}
	return 200 - 2*quality
}

// ScaleQuantTable scales base by the given quality (1..100), clamping each
// entry to [1,255] if forceBaseline is set (baseline JPEG requires 8-bit
// quantization values) or [1,32767] otherwise, per spec §6.
func ScaleQuantTable(base [64]uint16, quality int, forceBaseline bool) [64]uint16 {
	scale := QualityScale(quality)
	max := 32767
	if forceBaseline {
		max = 255
	}
	var out [64]uint16
	for i, v := range base {
		scaled := (int(v)*scale + 50) / 100
		if scaled < 1 {
			scaled = 1
		}
		if scaled > max {
			scaled = max
		}
		out[i] = uint16(scaled)
	}
	return out
}
