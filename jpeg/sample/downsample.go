// Package sample implements the encode-side downsamplers and decode-side
// upsamplers spec §4.3 and §4.10 require, one function per sampling-factor
// shape selected through a small sum type instead of the function-pointer
// dispatch a C implementation would use (spec §9's redesign note).
package sample

import "github.com/abcouwer-jpl/jsc/jpeg/common"

// DownsampleMethod selects which algorithm Downsample runs, chosen once per
// component from its (h,v) sampling factors relative to the image's max.
type DownsampleMethod int

const (
	DownsampleFullsize DownsampleMethod = iota // h==maxH, v==maxV: no-op
	DownsampleH2V1Box                          // 2:1 horizontal box filter
	DownsampleH2V2Box                          // 2:1 box filter both axes
	DownsampleIntBox                           // general integer box filter
)

// SelectDownsampleMethod picks the fastest applicable method for a
// component's horizontal/vertical subsampling ratio (maxH/h, maxV/v).
func SelectDownsampleMethod(hRatio, vRatio int) DownsampleMethod {
	switch {
	case hRatio == 1 && vRatio == 1:
		return DownsampleFullsize
	case hRatio == 2 && vRatio == 1:
		return DownsampleH2V1Box
	case hRatio == 2 && vRatio == 2:
		return DownsampleH2V2Box
	default:
		return DownsampleIntBox
	}
}

// Downsample reduces src (srcWidth x srcHeight valid samples, possibly
// narrower than each row's backing slice) by (hRatio, vRatio) into dst
// (ceil(srcWidth/hRatio) x ceil(srcHeight/vRatio)), per the method
// SelectDownsampleMethod chose. Edge columns/rows short of a full
// hRatio x vRatio block are replicated from the last valid sample, matching
// the box filter's edge handling in spec §4.3.
func Downsample(method DownsampleMethod, src [][]byte, srcWidth, srcHeight int, dst [][]byte, hRatio, vRatio int) {
	switch method {
	case DownsampleFullsize:
		fullsizeDownsample(src, srcWidth, srcHeight, dst)
	case DownsampleH2V1Box:
		h2v1Box(src, srcWidth, srcHeight, dst)
	case DownsampleH2V2Box:
		h2v2Box(src, srcWidth, srcHeight, dst)
	default:
		intDownsample(src, srcWidth, srcHeight, dst, hRatio, vRatio)
	}
}

func fullsizeDownsample(src [][]byte, width, height int, dst [][]byte) {
	for r := 0; r < height; r++ {
		copy(dst[r][:width], src[r][:width])
	}
}

func sampleAt(src [][]byte, width, height, r, c int) byte {
	if r >= height {
		r = height - 1
	}
	if c >= width {
		c = width - 1
	}
	return src[r][c]
}

func h2v1Box(src [][]byte, width, height int, dst [][]byte) {
	dstWidth := common.DivCeil(width, 2)
	for r := 0; r < height; r++ {
		for c := 0; c < dstWidth; c++ {
			a := int(sampleAt(src, width, height, r, 2*c))
			b := int(sampleAt(src, width, height, r, 2*c+1))
			dst[r][c] = byte((a + b + 1) / 2)
		}
	}
}

func h2v2Box(src [][]byte, width, height int, dst [][]byte) {
	dstWidth := common.DivCeil(width, 2)
	dstHeight := common.DivCeil(height, 2)
	for r := 0; r < dstHeight; r++ {
		for c := 0; c < dstWidth; c++ {
			sum := int(sampleAt(src, width, height, 2*r, 2*c)) +
				int(sampleAt(src, width, height, 2*r, 2*c+1)) +
				int(sampleAt(src, width, height, 2*r+1, 2*c)) +
				int(sampleAt(src, width, height, 2*r+1, 2*c+1))
			dst[r][c] = byte((sum + 2) / 4)
		}
	}
}

// intDownsample handles arbitrary integer ratios with a plain box filter and
// an alternating +0/+1 rounding bias across output columns, the same trick
// libjpeg's jcsample.c uses to avoid a systematic downward bias when the
// block area doesn't divide the rounding evenly.
func intDownsample(src [][]byte, width, height int, dst [][]byte, hRatio, vRatio int) {
	dstWidth := common.DivCeil(width, hRatio)
	dstHeight := common.DivCeil(height, vRatio)
	area := hRatio * vRatio
	for r := 0; r < dstHeight; r++ {
		bias := area / 2
		for c := 0; c < dstWidth; c++ {
			sum := 0
			for dv := 0; dv < vRatio; dv++ {
				for dh := 0; dh < hRatio; dh++ {
					sum += int(sampleAt(src, width, height, r*vRatio+dv, c*hRatio+dh))
				}
			}
			dst[r][c] = byte((sum + bias) / area)
			bias = 2*(area/2) + 1 - bias // alternate the rounding bias each column
		}
	}
}
