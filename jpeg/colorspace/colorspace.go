// Package colorspace implements the encode-side conversions and decode-side
// deconversions of spec §4.2 and §4.6/§4.10: GRAY/RGB/YCbCr/CMYK/YCCK/BGYCC,
// plus interpretation of the Adobe APP14 color-transform code.
package colorspace

import "github.com/abcouwer-jpl/jsc/jpeg/common"

func clamp(v int) byte {
	return byte(common.Clamp(v, 0, 255))
}

// RGBToYCbCr converts one RGB pixel to YCbCr using the same 16-bit
// fixed-point constants as the ITU-T T.871 full-range transform.
func RGBToYCbCr(r, g, b byte) (y, cb, cr byte) {
	ri, gi, bi := int(r), int(g), int(b)
	yy := (19595*ri + 38470*gi + 7471*bi + 32768) >> 16
	cbVal := (-11056*ri - 21712*gi + 32768*bi + 8421376) >> 16
	crVal := (32768*ri - 27440*gi - 5328*bi + 8421376) >> 16
	return clamp(yy), clamp(cbVal), clamp(crVal)
}

// YCbCrToRGB is the inverse of RGBToYCbCr.
func YCbCrToRGB(y, cb, cr byte) (r, g, b byte) {
	yy := int(y)
	cbVal := int(cb) - 128
	crVal := int(cr) - 128

	ri := yy + (91881*crVal)>>16
	gi := yy - ((22554*cbVal + 46802*crVal) >> 16)
	bi := yy + (116130*cbVal)>>16
	return clamp(ri), clamp(gi), clamp(bi)
}

// RGBToGray converts one RGB pixel to a single luma sample using the same
// weights as the Y channel of RGBToYCbCr, per spec §4.2's GRAY row.
func RGBToGray(r, g, b byte) byte {
	y, _, _ := RGBToYCbCr(r, g, b)
	return y
}

// BG_YCC differs from YCbCr only in the extra quantization factor applied
// to its chroma channels downstream (spec §4.2): the channel values are
// identical to YCbCr, so the RGB<->BGYCC conversions below are the plain
// YCbCr transform.

// RGBToBGYCC converts one RGB pixel to the "big gamut" YCC variant: the
// sample transform is identical to ordinary YCbCr, the difference is
// entirely in which quantization table the caller attaches to the chroma
// components (see common.Component.NeedsExtraQuant).
func RGBToBGYCC(r, g, b byte) (y, cb, cr byte) {
	return RGBToYCbCr(r, g, b)
}

// BGYCCToRGB is the inverse of RGBToBGYCC.
func BGYCCToRGB(y, cb, cr byte) (r, g, b byte) {
	return YCbCrToRGB(y, cb, cr)
}

// CMYKToYCCK converts one CMYK pixel to YCCK: the C/M/Y channels go through
// the ordinary RGB->YCbCr transform using (255-C, 255-M, 255-Y) as the RGB
// input (Adobe's inverted-CMYK convention), K passes through unchanged.
func CMYKToYCCK(c, m, ye, k byte) (y, cb, cr, kOut byte) {
	yy, cb2, cr2 := RGBToYCbCr(255-c, 255-m, 255-ye)
	return yy, cb2, cr2, k
}

// YCCKToCMYK is the inverse of CMYKToYCCK.
func YCCKToCMYK(y, cb, cr, k byte) (c, m, ye, kOut byte) {
	r, g, b := YCbCrToRGB(y, cb, cr)
	return 255 - r, 255 - g, 255 - b, k
}

// AdobeTransform is the color-transform code carried in an Adobe APP14
// segment, spec §9.
type AdobeTransform int

const (
	AdobeTransformUnknown AdobeTransform = -1
	AdobeTransformCMYK    AdobeTransform = 0
	AdobeTransformYCbCr   AdobeTransform = 1
	AdobeTransformYCCK    AdobeTransform = 2
)

// ResolveAdobeTransform maps a raw APP14 transform code to the color space
// a 4-component image should be interpreted as, per spec §9: 0 means CMYK,
// 2 means YCCK, anything else is non-standard and is treated as YCCK with a
// warning (the most common real-world producer mistake).
func ResolveAdobeTransform(code int) (cs common.ColorSpace, nonStandard bool) {
	switch AdobeTransform(code) {
	case AdobeTransformCMYK:
		return common.ColorCMYK, false
	case AdobeTransformYCCK:
		return common.ColorYCCK, false
	default:
		return common.ColorYCCK, true
	}
}
