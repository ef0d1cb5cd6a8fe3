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

const maxDimension = 65500

// Encoder drives the whole encode pipeline: color conversion, downsampling,
// FDCT+quantization, Huffman entropy coding, and marker framing, writing
// directly into a caller-sized output buffer with no intermediate
// allocation beyond what the arena provides.
type Encoder struct {
	ar   *arena.Arena
	opts Options
}

// NewEncoder builds an Encoder over ar with the given options (validated in
// place).
func NewEncoder(ar *arena.Arena, opts Options) (*Encoder, error) {
	if ar == nil {
		return nil, jpegerr.ErrNilArena
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Encoder{ar: ar, opts: opts}, nil
}

// Encode compresses an interleaved width*height*ncomp byte image into out
// using cs as the JPEG color space, returning the number of bytes written.
// pixels are RGB for ColorYCbCr and ColorBGYCC, CMYK for ColorYCCK, and the
// samples to code for ColorGray and ColorCMYK.
func (e *Encoder) Encode(width, height int, cs common.ColorSpace, pixels []byte, out []byte) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, jpegerr.ErrEmptyImage
	}
	if width > maxDimension || height > maxDimension {
		return 0, jpegerr.ErrDimensionTooLarge
	}

	comps, err := planComponents(e.ar, width, height, cs)
	if err != nil {
		return 0, err
	}

	if err := e.convertAndDownsample(width, height, cs, pixels, comps); err != nil {
		return 0, err
	}

	lumQuant := &common.QuantTable{Values: common.ScaleQuantTable(common.DefaultLuminanceQuantTable, e.opts.Quality, true)}
	chromQuant := &common.QuantTable{Values: common.ScaleQuantTable(common.DefaultChrominanceQuantTable, e.opts.Quality, true)}
	quantTables := [2]*common.QuantTable{lumQuant, chromQuant}
	for i := range comps {
		comps[i].QuantTbl = quantTables[comps[i].QuantSlot]
	}

	dcEnc := [2]*huffman.EncodeTable{}
	acEnc := [2]*huffman.EncodeTable{}
	dcEnc[0], _, err = huffman.Compile(common.StandardDCLuminance)
	if err != nil {
		return 0, err
	}
	dcEnc[1], _, err = huffman.Compile(common.StandardDCChrominance)
	if err != nil {
		return 0, err
	}
	acEnc[0], _, err = huffman.Compile(common.StandardACLuminance)
	if err != nil {
		return 0, err
	}
	acEnc[1], _, err = huffman.Compile(common.StandardACChrominance)
	if err != nil {
		return 0, err
	}

	w := markers.NewWriter(out)
	if err := e.writeHeaders(w, width, height, cs, comps, quantTables); err != nil {
		return 0, err
	}

	hMax, vMax := maxSamplingFactors(comps)
	mcusPerRow := common.DivCeil(width, hMax*8)
	mcusPerCol := common.DivCeil(height, vMax*8)

	restartInterval := 0
	if e.opts.RestartRows > 0 {
		restartInterval = mcusPerRow * e.opts.RestartRows
	}
	if err := w.WriteSegment(common.SOS, e.sosPayload(comps)); err != nil {
		return 0, err
	}

	var divisorStorage [4][64]float64
	divisors := divisorStorage[:len(comps)]
	for i := range comps {
		transform.QuantDivisor(comps[i].QuantTbl, comps[i].NeedsExtraQuant, &divisors[i])
	}

	bw := huffman.NewBitWriter(w.Remaining())
	var dcPredStorage [4]int32
	dcPred := dcPredStorage[:len(comps)]
	mcuCount := 0
	restartsToGo := restartInterval
	nextRestartNum := 0

	var block [64]float64
	var coef [64]int32

	for mcuRow := 0; mcuRow < mcusPerCol; mcuRow++ {
		for mcuCol := 0; mcuCol < mcusPerRow; mcuCol++ {
			for ci := range comps {
				c := &comps[ci]
				for bv := 0; bv < c.V; bv++ {
					for bh := 0; bh < c.H; bh++ {
						blockCol := mcuCol*c.H + bh
						blockRow := mcuRow*c.V + bv
						transform.LevelShift(c.Plane, blockCol*8, blockRow*8, &block)
						transform.FDCT(&block)
						transform.Quantize(&block, &divisors[ci], &coef)
						if err := huffman.EncodeBlock(bw, &coef, dcEnc[c.DCTableSlot], acEnc[c.ACTableSlot], &dcPred[ci]); err != nil {
							return 0, err
						}
					}
				}
			}
			mcuCount++
			if restartInterval > 0 {
				restartsToGo--
				if restartsToGo == 0 && mcuCount < mcusPerRow*mcusPerCol {
					if err := bw.WriteRestartMarker(common.RSTMarker(nextRestartNum)); err != nil {
						return 0, err
					}
					nextRestartNum = (nextRestartNum + 1) % 8
					restartsToGo = restartInterval
					for i := range dcPred {
						dcPred[i] = 0
					}
				}
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	if err := w.Advance(bw.Len()); err != nil {
		return 0, err
	}
	if err := w.WriteMarker(common.EOI); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

// convertAndDownsample runs the color converter and per-component
// downsampler, filling each component's Plane, per spec §4.2/§4.3.
func (e *Encoder) convertAndDownsample(width, height int, cs common.ColorSpace, pixels []byte, comps []Component) error {
	hMax, vMax := maxSamplingFactors(comps)

	// One full-resolution plane per component, each a separate arena block
	// so sample.Downsample can be handed a genuine [][]byte row table with no
	// intermediate slicing trick. planComponents rejects layouts of more
	// than 4 components, so a fixed-size array holds the per-channel row
	// tables with no make() outside the arena.
	var channelStorage [4][][]byte
	channels := channelStorage[:len(comps)]
	for i := range comps {
		plane, err := e.ar.AllocRows(height, width)
		if err != nil {
			return err
		}
		channels[i] = plane
	}

	switch cs {
	case common.ColorGray:
		for r := 0; r < height; r++ {
			for c := 0; c < width; c++ {
				channels[0][r][c] = pixels[r*width+c]
			}
		}
	case common.ColorYCbCr, common.ColorBGYCC:
		for r := 0; r < height; r++ {
			for c := 0; c < width; c++ {
				off := (r*width + c) * 3
				var y, cb, cr byte
				if cs == common.ColorBGYCC {
					y, cb, cr = colorspace.RGBToBGYCC(pixels[off], pixels[off+1], pixels[off+2])
				} else {
					y, cb, cr = colorspace.RGBToYCbCr(pixels[off], pixels[off+1], pixels[off+2])
				}
				channels[0][r][c] = y
				channels[1][r][c] = cb
				channels[2][r][c] = cr
			}
		}
	case common.ColorYCCK:
		for r := 0; r < height; r++ {
			for c := 0; c < width; c++ {
				off := (r*width + c) * 4
				y, cb, cr, k := colorspace.CMYKToYCCK(pixels[off], pixels[off+1], pixels[off+2], pixels[off+3])
				channels[0][r][c] = y
				channels[1][r][c] = cb
				channels[2][r][c] = cr
				channels[3][r][c] = k
			}
		}
	case common.ColorCMYK:
		// Plain CMYK carries no translation (jcparam.c's JCS_CMYK case):
		// each channel is independent full-resolution detail, copied
		// through unchanged.
		for r := 0; r < height; r++ {
			for c := 0; c < width; c++ {
				off := (r*width + c) * 4
				channels[0][r][c] = pixels[off]
				channels[1][r][c] = pixels[off+1]
				channels[2][r][c] = pixels[off+2]
				channels[3][r][c] = pixels[off+3]
			}
		}
	default:
		return jpegerr.ErrInvalidComponents
	}

	for ci := range comps {
		c := &comps[ci]
		hRatio, vRatio := hMax/c.H, vMax/c.V
		method := sample.SelectDownsampleMethod(hRatio, vRatio)
		sample.Downsample(method, channels[ci], width, height, c.Plane, hRatio, vRatio)
		replicateEdges(c)
	}
	return nil
}

// writeHeaders emits the SOI..DHT marker sequence per spec §4.6: SOI, a
// JFIF APP0 (or an Adobe APP14 for the color spaces a plain JFIF reader
// would not expect), one DQT per distinct quant slot in use, SOF0, one DHT
// per distinct (class, slot) in use, and an optional DRI.
func (e *Encoder) writeHeaders(w *markers.Writer, width, height int, cs common.ColorSpace, comps []Component, quantTables [2]*common.QuantTable) error {
	if err := w.WriteMarker(common.SOI); err != nil {
		return err
	}

	switch cs {
	case common.ColorYCCK, common.ColorCMYK:
		transformCode := byte(colorspace.AdobeTransformYCCK)
		if cs == common.ColorCMYK {
			transformCode = byte(colorspace.AdobeTransformCMYK)
		}
		adobe := [12]byte{'A', 'd', 'o', 'b', 'e', 0, 0, 100, 0, 0, 0, transformCode}
		if err := w.WriteSegment(common.APP14, adobe[:]); err != nil {
			return err
		}
	default:
		jfif := [14]byte{'J', 'F', 'I', 'F', 0, 1, 1, 0, 0, 1, 0, 1, 0, 0}
		if err := w.WriteSegment(common.APP0, jfif[:]); err != nil {
			return err
		}
	}

	var slotsUsed [2]bool
	for i := range comps {
		slotsUsed[comps[i].QuantSlot] = true
	}
	for slot := 0; slot < 2; slot++ {
		if !slotsUsed[slot] {
			continue
		}
		var payload [65]byte
		payload[0] = byte(slot)
		for i, v := range quantTables[slot].Values {
			payload[1+i] = byte(v)
		}
		if err := w.WriteSegment(common.DQT, payload[:]); err != nil {
			return err
		}
	}

	if err := e.writeSOF(w, width, height, comps); err != nil {
		return err
	}

	var dcUsed, acUsed [2]bool
	for i := range comps {
		dcUsed[comps[i].DCTableSlot] = true
		acUsed[comps[i].ACTableSlot] = true
	}
	if dcUsed[0] {
		if err := writeDHT(w, 0, 0, common.StandardDCLuminance); err != nil {
			return err
		}
	}
	if dcUsed[1] {
		if err := writeDHT(w, 0, 1, common.StandardDCChrominance); err != nil {
			return err
		}
	}
	if acUsed[0] {
		if err := writeDHT(w, 1, 0, common.StandardACLuminance); err != nil {
			return err
		}
	}
	if acUsed[1] {
		if err := writeDHT(w, 1, 1, common.StandardACChrominance); err != nil {
			return err
		}
	}

	if e.opts.RestartRows > 0 {
		hMax, vMax := maxSamplingFactors(comps)
		mcusPerRow := common.DivCeil(width, hMax*8)
		_ = vMax
		interval := mcusPerRow * e.opts.RestartRows
		var dri [2]byte
		dri[0] = byte(interval >> 8)
		dri[1] = byte(interval)
		if err := w.WriteSegment(common.DRI, dri[:]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeSOF(w *markers.Writer, width, height int, comps []Component) error {
	var payload [8 + 4*3]byte
	payload[0] = 8 // sample precision
	payload[1] = byte(height >> 8)
	payload[2] = byte(height)
	payload[3] = byte(width >> 8)
	payload[4] = byte(width)
	payload[5] = byte(len(comps))
	for i := range comps {
		o := 6 + i*3
		payload[o] = comps[i].ID
		payload[o+1] = byte(comps[i].H<<4 | comps[i].V)
		payload[o+2] = byte(comps[i].QuantSlot)
	}
	n := 6 + len(comps)*3
	return w.WriteSegment(common.SOF0, payload[:n])
}

func writeDHT(w *markers.Writer, class, slot int, tbl common.StdHuffTable) error {
	var payload [17 + 256]byte
	payload[0] = byte(class<<4 | slot)
	total := 0
	for i, n := range tbl.Bits {
		payload[1+i] = byte(n)
		total += n
	}
	copy(payload[17:], tbl.Values[:total])
	return w.WriteSegment(common.DHT, payload[:17+total])
}

func (e *Encoder) sosPayload(comps []Component) []byte {
	var buf [1 + 4*2 + 3]byte
	n := 0
	buf[n] = byte(len(comps))
	n++
	for i := range comps {
		buf[n] = comps[i].ID
		buf[n+1] = byte(comps[i].DCTableSlot<<4 | comps[i].ACTableSlot)
		n += 2
	}
	buf[n], buf[n+1], buf[n+2] = 0, 63, 0 // Ss=0, Se=63, Ah/Al=0 for baseline
	n += 3
	return buf[:n]
}
