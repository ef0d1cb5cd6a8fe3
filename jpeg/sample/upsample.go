package sample

// UpsampleMethod selects which algorithm Upsample runs, the decode-side
// mirror of DownsampleMethod.
type UpsampleMethod int

const (
	UpsampleFullsize UpsampleMethod = iota // h==maxH, v==maxV: no-op
	UpsampleH2V1Fancy                      // triangle-filtered horizontal 1:2
	UpsampleH2V2Fancy                      // triangle-filtered both axes 1:2
	UpsampleIntReplicate                   // general integer pixel replication
)

// SelectUpsampleMethod mirrors SelectDownsampleMethod's ratio-based choice.
func SelectUpsampleMethod(hRatio, vRatio int) UpsampleMethod {
	switch {
	case hRatio == 1 && vRatio == 1:
		return UpsampleFullsize
	case hRatio == 2 && vRatio == 1:
		return UpsampleH2V1Fancy
	case hRatio == 2 && vRatio == 2:
		return UpsampleH2V2Fancy
	default:
		return UpsampleIntReplicate
	}
}

// Upsample expands src (srcWidth x srcHeight) by (hRatio, vRatio) into dst
// (srcWidth*hRatio x srcHeight*vRatio), clipped to dstWidth/dstHeight at the
// image's true (possibly odd) edge. scratch is a caller-supplied (from the
// arena) dstHeight x srcWidth work area; only UpsampleH2V2Fancy uses it, for
// its intermediate vertically-expanded plane.
func Upsample(method UpsampleMethod, src [][]byte, srcWidth, srcHeight int, dst [][]byte, dstWidth, dstHeight, hRatio, vRatio int, scratch [][]byte) {
	switch method {
	case UpsampleFullsize:
		fullsizeUpsample(src, dst, dstWidth, dstHeight)
	case UpsampleH2V1Fancy:
		h2v1Fancy(src, srcWidth, srcHeight, dst, dstWidth, dstHeight)
	case UpsampleH2V2Fancy:
		h2v2Fancy(src, srcWidth, srcHeight, dst, dstWidth, dstHeight, scratch)
	default:
		intUpsample(src, srcWidth, srcHeight, dst, dstWidth, dstHeight, hRatio, vRatio)
	}
}

func fullsizeUpsample(src, dst [][]byte, width, height int) {
	for r := 0; r < height; r++ {
		copy(dst[r][:width], src[r][:width])
	}
}

// h2v1Fancy triangle-interpolates horizontally: each source sample expands
// to two output samples weighted 3/4 toward the nearer neighbor, 1/4 toward
// the farther one, replicating at the row's edges.
func h2v1Fancy(src [][]byte, srcWidth, srcHeight int, dst [][]byte, dstWidth, dstHeight int) {
	for r := 0; r < dstHeight; r++ {
		sr := r
		if sr >= srcHeight {
			sr = srcHeight - 1
		}
		row := src[sr]
		for sc := 0; sc < srcWidth; sc++ {
			left := sc - 1
			if left < 0 {
				left = 0
			}
			right := sc + 1
			if right >= srcWidth {
				right = srcWidth - 1
			}
			cur := int(row[sc])
			out0 := (cur*3 + int(row[left]) + 2) / 4
			out1 := (cur*3 + int(row[right]) + 2) / 4
			if dc := sc * 2; dc < dstWidth {
				dst[r][dc] = byte(out0)
			}
			if dc := sc*2 + 1; dc < dstWidth {
				dst[r][dc] = byte(out1)
			}
		}
	}
}

// h2v2Fancy applies the same triangle filter independently on each axis:
// first expand vertically into the caller-supplied scratch plane (at least
// dstHeight x srcWidth), then expand that horizontally into dst.
func h2v2Fancy(src [][]byte, srcWidth, srcHeight int, dst [][]byte, dstWidth, dstHeight int, scratch [][]byte) {
	for r := 0; r < dstHeight; r++ {
		sr := r / 2
		above := sr - 1
		if above < 0 {
			above = 0
		}
		below := sr + 1
		if below >= srcHeight {
			below = srcHeight - 1
		}
		if sr >= srcHeight {
			sr = srcHeight - 1
		}
		near, far := src[sr], src[above]
		if r%2 == 1 {
			far = src[below]
		}
		row := scratch[r]
		for c := 0; c < srcWidth; c++ {
			row[c] = byte((int(near[c])*3 + int(far[c]) + 2) / 4)
		}
	}
	h2v1Fancy(scratch[:dstHeight], srcWidth, dstHeight, dst, dstWidth, dstHeight)
}

// intUpsample replicates each source sample into an hRatio x vRatio block,
// the safe general-case fallback for non-power-of-two ratios.
func intUpsample(src [][]byte, srcWidth, srcHeight int, dst [][]byte, dstWidth, dstHeight, hRatio, vRatio int) {
	for r := 0; r < dstHeight; r++ {
		sr := r / vRatio
		if sr >= srcHeight {
			sr = srcHeight - 1
		}
		row := src[sr]
		for c := 0; c < dstWidth; c++ {
			sc := c / hRatio
			if sc >= srcWidth {
				sc = srcWidth - 1
			}
			dst[r][c] = row[sc]
		}
	}
}
