package baseline

import (
	"github.com/abcouwer-jpl/jsc/arena"
	"github.com/abcouwer-jpl/jsc/jpeg/colorspace"
	"github.com/abcouwer-jpl/jsc/jpeg/common"
	"github.com/abcouwer-jpl/jsc/jpeg/huffman"
	"github.com/abcouwer-jpl/jsc/jpeg/markers"
	"github.com/abcouwer-jpl/jsc/jpeg/sample"
	"github.com/abcouwer-jpl/jsc/jpeg/transform"
	"github.com/abcouwer-jpl/jsc/jpegerr"
)

// maxHeaderMarkers bounds the marker-parsing loop per spec §5/§4.7: a
// corrupted file of nothing but recognized-but-useless markers fails in
// bounded work rather than spinning until the buffer runs out.
const maxHeaderMarkers = 1000

// Image is a decoded picture: interleaved width*height*NumComponents bytes,
// resident in the Decoder's arena. ColorSpace names the JPEG color space of
// the stream; Pixels are deconverted from it: RGB for ColorYCbCr and
// ColorBGYCC, CMYK for ColorYCCK, and the samples as coded for ColorGray and
// ColorCMYK. Encoder.Encode reads pixels by the same convention.
type Image struct {
	Width, Height int
	NumComponents int
	ColorSpace    common.ColorSpace
	Pixels        []byte

	// Warnings holds the DataCorruption-class recoveries the scan
	// triggered, per spec §7: at most one per segment, recorded rather
	// than silently swallowed.
	Warnings []*jpegerr.Warning
}

// Decoder parses a baseline JPEG bitstream and reconstructs pixel data,
// mirroring Encoder's pipeline in reverse: marker parsing, Huffman entropy
// decoding, dequantization+IDCT, upsampling, and color deconversion.
type Decoder struct {
	ar   *arena.Arena
	opts Options
}

// NewDecoder builds a Decoder over ar with the given options (validated in
// place).
func NewDecoder(ar *arena.Arena, opts Options) (*Decoder, error) {
	if ar == nil {
		return nil, jpegerr.ErrNilArena
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Decoder{ar: ar, opts: opts}, nil
}

// Decode parses data as a baseline JPEG stream and returns the reconstructed
// image. Every rejection the marker reader and entropy decoder can hit is
// reported as a jpegerr.Suspended wrapping a typed cause, per spec §7 — the
// caller sees one non-fatal failure, never a crash or an out-of-bounds read.
func (d *Decoder) Decode(data []byte) (Image, error) {
	r := markers.NewReader(data)

	m, err := r.ReadMarker()
	if err != nil {
		return Image{}, jpegerr.Suspend(err)
	}
	if m != common.SOI {
		return Image{}, jpegerr.Suspend(jpegerr.ErrMissingSOI)
	}

	var quantTables [4]*common.QuantTable
	var dcDecode, acDecode [4]*huffman.DecodeTable
	var compStorage [4]Component
	var comps []Component
	var width, height int
	sofSeen := false
	hasAdobe := false
	adobeTransform := 0
	restartInterval := 0

	for iter := 0; ; iter++ {
		if iter >= maxHeaderMarkers {
			return Image{}, jpegerr.Suspend(jpegerr.ErrBadMarkerLength)
		}
		m, err := r.ReadMarker()
		if err != nil {
			return Image{}, jpegerr.Suspend(err)
		}

		switch {
		case m == common.SOI:
			return Image{}, jpegerr.Suspend(jpegerr.ErrDuplicateSOI)

		case common.IsAPPn(m) || m == common.COM:
			seg, err := r.ReadSegment()
			if err != nil {
				return Image{}, jpegerr.Suspend(err)
			}
			if m == common.APP14 && len(seg) >= 12 && string(seg[0:5]) == "Adobe" {
				hasAdobe = true
				adobeTransform = int(seg[11])
			}

		case m == common.DQT:
			seg, err := r.ReadSegment()
			if err != nil {
				return Image{}, jpegerr.Suspend(err)
			}
			if err := d.parseDQT(seg, &quantTables); err != nil {
				return Image{}, jpegerr.Suspend(err)
			}

		case m == common.DHT:
			seg, err := r.ReadSegment()
			if err != nil {
				return Image{}, jpegerr.Suspend(err)
			}
			if err := d.parseDHT(seg, &dcDecode, &acDecode); err != nil {
				return Image{}, jpegerr.Suspend(err)
			}

		case m == common.SOF0:
			if sofSeen {
				return Image{}, jpegerr.Suspend(jpegerr.ErrDuplicateSOF)
			}
			seg, err := r.ReadSegment()
			if err != nil {
				return Image{}, jpegerr.Suspend(err)
			}
			w, h, n, err := parseSOF(seg, compStorage[:])
			if err != nil {
				return Image{}, jpegerr.Suspend(err)
			}
			width, height, comps = w, h, compStorage[:n]
			if err := finalizeGeometry(d.ar, width, height, comps); err != nil {
				return Image{}, jpegerr.Suspend(err)
			}
			sofSeen = true

		case common.IsSOF(m):
			return Image{}, jpegerr.Suspend(jpegerr.ErrUnsupportedSOF)

		case m == common.DRI:
			seg, err := r.ReadSegment()
			if err != nil {
				return Image{}, jpegerr.Suspend(err)
			}
			if len(seg) < 2 {
				return Image{}, jpegerr.Suspend(jpegerr.ErrBadMarkerLength)
			}
			restartInterval = int(seg[0])<<8 | int(seg[1])

		case m == common.SOS:
			if !sofSeen {
				return Image{}, jpegerr.Suspend(jpegerr.ErrSOSBeforeSOF)
			}
			seg, err := r.ReadSegment()
			if err != nil {
				return Image{}, jpegerr.Suspend(err)
			}
			if len(seg) < 1 {
				return Image{}, jpegerr.Suspend(jpegerr.ErrBadMarkerLength)
			}
			ns := int(seg[0])
			if ns == 0 {
				// Pseudo-SOS with zero components: a tolerated quirk, not a
				// feature. Nothing follows to decode; keep scanning markers.
				continue
			}
			if len(seg) < 1+ns*2+3 {
				return Image{}, jpegerr.Suspend(jpegerr.ErrBadMarkerLength)
			}
			if err := attachScanTables(seg[1:1+ns*2], comps, quantTables); err != nil {
				return Image{}, jpegerr.Suspend(err)
			}
			cs := resolveColorSpace(len(comps), hasAdobe, adobeTransform)

			img, err := d.decodeScan(r.Remaining(), width, height, cs, comps, restartInterval, &dcDecode, &acDecode)
			if err != nil {
				return Image{}, jpegerr.Suspend(err)
			}
			return img, nil

		case common.IsRST(m):
			// A restart marker encountered outside an active scan is stray
			// noise; skip it and keep looking for a real segment.

		default:
			if common.HasLength(m) {
				if _, err := r.ReadSegment(); err != nil {
					return Image{}, jpegerr.Suspend(err)
				}
			}
		}
	}
}

func (d *Decoder) parseDQT(seg []byte, quantTables *[4]*common.QuantTable) error {
	pos := 0
	for pos < len(seg) {
		pq := seg[pos] >> 4
		tq := seg[pos] & 0x0F
		pos++
		if pq != 0 {
			return jpegerr.ErrUnsupportedQuantPrec
		}
		if tq >= 4 {
			return jpegerr.ErrBadQuantIndex
		}
		if pos+64 > len(seg) {
			return jpegerr.ErrBadMarkerLength
		}
		qt := &common.QuantTable{}
		for i := 0; i < 64; i++ {
			qt.Values[i] = uint16(seg[pos+i])
		}
		pos += 64
		quantTables[tq] = qt
	}
	return nil
}

func (d *Decoder) parseDHT(seg []byte, dcDecode, acDecode *[4]*huffman.DecodeTable) error {
	pos := 0
	for pos < len(seg) {
		if pos+17 > len(seg) {
			return jpegerr.ErrBadMarkerLength
		}
		tc := seg[pos] >> 4
		th := seg[pos] & 0x0F
		if tc > 1 || th >= 4 {
			return jpegerr.ErrBadHuffmanIndex
		}
		var bits [16]int
		total := 0
		for i := 0; i < 16; i++ {
			bits[i] = int(seg[pos+1+i])
			total += bits[i]
		}
		pos += 17
		if pos+total > len(seg) {
			return jpegerr.ErrBadMarkerLength
		}
		values, err := d.ar.Alloc(total)
		if err != nil {
			return err
		}
		copy(values, seg[pos:pos+total])
		pos += total

		dec, err := huffman.BuildDecodeTable(bits, values)
		if err != nil {
			return err
		}
		if tc == 0 {
			dcDecode[th] = dec
		} else {
			acDecode[th] = dec
		}
	}
	return nil
}

// parseSOF reads SOF0's payload into out (capacity 4) and returns the
// decoded width, height, and component count. Component IDs that collide
// are remapped to max-seen-ID+1, a deliberate lenient mode for malformed
// encoders per spec §9.
func parseSOF(seg []byte, out []Component) (width, height, n int, err error) {
	if len(seg) < 6 {
		return 0, 0, 0, jpegerr.ErrBadMarkerLength
	}
	precision := seg[0]
	if precision != 8 {
		return 0, 0, 0, jpegerr.ErrUnsupportedPrecision
	}
	height = int(seg[1])<<8 | int(seg[2])
	width = int(seg[3])<<8 | int(seg[4])
	n = int(seg[5])
	if width == 0 || height == 0 {
		return 0, 0, 0, jpegerr.ErrEmptyImage
	}
	if width > maxDimension || height > maxDimension {
		return 0, 0, 0, jpegerr.ErrDimensionTooLarge
	}
	if n == 0 || n > 4 {
		return 0, 0, 0, jpegerr.ErrTooManyComponents
	}
	if len(seg) < 6+n*3 {
		return 0, 0, 0, jpegerr.ErrBadMarkerLength
	}

	maxID := byte(0)
	var seenID [256]bool
	for i := 0; i < n; i++ {
		o := 6 + i*3
		id := seg[o]
		h := seg[o+1] >> 4
		v := seg[o+1] & 0x0F
		qs := seg[o+2]
		if h < 1 || h > 4 || v < 1 || v > 4 {
			return 0, 0, 0, jpegerr.ErrBadSamplingFactor
		}
		if qs >= 4 {
			return 0, 0, 0, jpegerr.ErrBadQuantIndex
		}
		if seenID[id] {
			id = maxID + 1
		}
		seenID[id] = true
		if id > maxID {
			maxID = id
		}
		out[i] = Component{}
		out[i].ID = id
		out[i].Index = i
		out[i].H, out[i].V = int(h), int(v)
		out[i].QuantSlot = int(qs)
	}
	return width, height, n, nil
}

// attachScanTables reads SOS's per-component table-selector bytes, matches
// each to its SOF component by ID, and latches quantization tables.
func attachScanTables(sel []byte, comps []Component, quantTables [4]*common.QuantTable) error {
	for i := 0; i < len(sel); i += 2 {
		id := sel[i]
		tables := sel[i+1]
		dc, ac := int(tables>>4), int(tables&0x0F)
		if dc >= 2 || ac >= 2 {
			return jpegerr.ErrBadHuffmanIndex
		}
		for ci := range comps {
			if comps[ci].ID == id {
				comps[ci].DCTableSlot = dc
				comps[ci].ACTableSlot = ac
				break
			}
		}
	}
	for ci := range comps {
		qt := quantTables[comps[ci].QuantSlot]
		if qt == nil {
			return jpegerr.ErrNoQuantTable
		}
		comps[ci].QuantTbl = qt
	}
	return nil
}

// resolveColorSpace maps a component count and optional Adobe APP14
// transform code to the JPEG-internal color space, per spec §9.
func resolveColorSpace(ncomp int, hasAdobe bool, adobeTransform int) common.ColorSpace {
	switch ncomp {
	case 1:
		return common.ColorGray
	case 3:
		return common.ColorYCbCr
	case 4:
		if hasAdobe {
			cs, _ := colorspace.ResolveAdobeTransform(adobeTransform)
			return cs
		}
		return common.ColorYCCK
	default:
		return common.ColorUnknown
	}
}

// decodeScan entropy-decodes the MCU grid, runs dequantization+IDCT per
// block, upsamples each component back to full resolution, and deconverts
// into an interleaved output image. Component planes are pre-filled with a
// neutral gray 128 before decoding starts, so any block the entropy decoder
// never reaches (because the stream was corrupt and recovery left it
// unwritten) renders as flat gray instead of uninitialized black, per spec
// §4.8's recovery behavior and §7's DataCorruption handling.
func (d *Decoder) decodeScan(scanData []byte, width, height int, cs common.ColorSpace, comps []Component, restartInterval int, dcDecode, acDecode *[4]*huffman.DecodeTable) (Image, error) {
	for ci := range comps {
		for r := range comps[ci].Plane {
			row := comps[ci].Plane[r]
			for c := range row {
				row[c] = 128
			}
		}
	}

	hMax, vMax := maxSamplingFactors(comps)
	mcusPerRow := common.DivCeil(width, hMax*8)
	mcusPerCol := common.DivCeil(height, vMax*8)
	total := mcusPerRow * mcusPerCol

	var divisorStorage [4][64]float64
	divisors := divisorStorage[:len(comps)]
	for i := range comps {
		transform.DequantDivisor(comps[i].QuantTbl, &divisors[i])
	}

	br := huffman.NewBitReader(scanData)
	var dcPredStorage [4]int32
	dcPred := dcPredStorage[:len(comps)]
	restartsToGo := restartInterval
	nextRestartNum := 0

	var coef [64]int32
	var raw [64]float64
	var blockBytes [64]byte
	var warnings []*jpegerr.Warning
	warnedThisSegment := false

decodeLoop:
	for mcuIdx := 0; mcuIdx < total; mcuIdx++ {
		mcuRow, mcuCol := mcuIdx/mcusPerRow, mcuIdx%mcusPerRow
		for ci := range comps {
			c := &comps[ci]
			dc := dcDecode[c.DCTableSlot]
			ac := acDecode[c.ACTableSlot]
			if dc == nil || ac == nil {
				break decodeLoop
			}
			for bv := 0; bv < c.V; bv++ {
				for bh := 0; bh < c.H; bh++ {
					allZeroAC, err := huffman.DecodeBlock(br, dc, ac, &dcPred[ci], &coef)
					if err != nil {
						break decodeLoop
					}
					transform.Dequantize(&coef, &divisors[ci], &raw)
					transform.IDCT(&raw, allZeroAC, &blockBytes)
					blockCol := mcuCol*c.H + bh
					blockRow := mcuRow*c.V + bv
					transform.StoreBlock(c.Plane, blockCol*8, blockRow*8, &blockBytes)
				}
			}
		}

		if restartInterval > 0 {
			restartsToGo--
			if restartsToGo == 0 && mcuIdx < total-1 {
				ok, mismatch := resyncToRestart(br, nextRestartNum)
				if mismatch && !warnedThisSegment {
					warnings = append(warnings, &jpegerr.Warning{
						Cause:  jpegerr.ErrRestartMismatch,
						Offset: br.Pos(),
					})
					warnedThisSegment = true
					d.opts.trace(1, jpegerr.ErrRestartMismatch.Error())
				}
				if !ok {
					break decodeLoop
				}
				nextRestartNum = (nextRestartNum + 1) % 8
				restartsToGo = restartInterval
				for i := range dcPred {
					dcPred[i] = 0
				}
			}
		}
	}

	img, err := d.reconstruct(width, height, cs, comps)
	if err != nil {
		return Image{}, err
	}
	img.Warnings = warnings
	return img, nil
}

// resyncToRestart implements spec §4.8's restart-resync decision table in
// its two most common, safety-preserving outcomes: a restart marker is
// consumed and decoding continues; anything else (a different marker, or
// the buffer running out without ever finding one) is left alone and
// treated as the end of usable scan data, triggering the gray-fill recovery
// path for what remains. mismatch reports whether the marker found was not
// the expected RSTn, the corrupt-data case jpeg_resync_to_restart always
// warns on; a matching marker is the ordinary case and warns on nothing.
func resyncToRestart(br *huffman.BitReader, expected int) (ok, mismatch bool) {
	br.DiscardBuffered()
	if !br.AtMarker() {
		return false, false
	}
	m := br.PeekMarker()
	if !common.IsRST(m) {
		return false, false
	}
	mismatch = common.RSTNum(m) != expected
	br.ConsumeMarker()
	return true, mismatch
}

// reconstruct upsamples each component back to full image resolution and
// deconverts into an interleaved output buffer.
func (d *Decoder) reconstruct(width, height int, cs common.ColorSpace, comps []Component) (Image, error) {
	hMax, vMax := maxSamplingFactors(comps)

	var fullStorage [4][][]byte
	full := fullStorage[:len(comps)]
	for ci := range comps {
		c := &comps[ci]
		plane, err := d.ar.AllocRows(height, width)
		if err != nil {
			return Image{}, err
		}
		hRatio, vRatio := hMax/c.H, vMax/c.V
		method := sample.SelectUpsampleMethod(hRatio, vRatio)
		var scratch [][]byte
		if method == sample.UpsampleH2V2Fancy {
			s, err := d.ar.AllocRows(height, c.DownsampledWidth)
			if err != nil {
				return Image{}, err
			}
			scratch = s
		}
		sample.Upsample(method, c.Plane, c.DownsampledWidth, c.DownsampledHeight, plane, width, height, hRatio, vRatio, scratch)
		full[ci] = plane
	}

	pixels, err := d.ar.Alloc(width * height * len(comps))
	if err != nil {
		return Image{}, err
	}

	switch cs {
	case common.ColorGray:
		for r := 0; r < height; r++ {
			copy(pixels[r*width:(r+1)*width], full[0][r])
		}
	case common.ColorYCbCr, common.ColorBGYCC:
		for r := 0; r < height; r++ {
			for c := 0; c < width; c++ {
				var rr, gg, bb byte
				if cs == common.ColorBGYCC {
					rr, gg, bb = colorspace.BGYCCToRGB(full[0][r][c], full[1][r][c], full[2][r][c])
				} else {
					rr, gg, bb = colorspace.YCbCrToRGB(full[0][r][c], full[1][r][c], full[2][r][c])
				}
				off := (r*width + c) * 3
				pixels[off], pixels[off+1], pixels[off+2] = rr, gg, bb
			}
		}
	case common.ColorYCCK:
		for r := 0; r < height; r++ {
			for c := 0; c < width; c++ {
				cc, mm, yy, kk := colorspace.YCCKToCMYK(full[0][r][c], full[1][r][c], full[2][r][c], full[3][r][c])
				off := (r*width + c) * 4
				pixels[off], pixels[off+1], pixels[off+2], pixels[off+3] = cc, mm, yy, kk
			}
		}
	case common.ColorCMYK:
		for r := 0; r < height; r++ {
			for c := 0; c < width; c++ {
				off := (r*width + c) * 4
				pixels[off], pixels[off+1], pixels[off+2], pixels[off+3] =
					full[0][r][c], full[1][r][c], full[2][r][c], full[3][r][c]
			}
		}
	default:
		return Image{}, jpegerr.ErrInvalidComponents
	}

	return Image{
		Width:         width,
		Height:        height,
		NumComponents: len(comps),
		ColorSpace:    cs,
		Pixels:        pixels,
	}, nil
}
