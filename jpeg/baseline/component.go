// Package baseline implements the MCU-level encoder and decoder: component
// geometry, the main/coefficient controllers of spec §4.11, and the
// Encoder/Decoder driver loops that tie color conversion, sampling, DCT, and
// entropy coding together into a complete baseline JPEG bitstream.
package baseline

import (
	"github.com/abcouwer-jpl/jsc/arena"
	"github.com/abcouwer-jpl/jsc/jpeg/common"
	"github.com/abcouwer-jpl/jsc/jpegerr"
)

// Component extends common.Component with the arena-resident sample plane
// it owns: the component's downsampled, block-padded pixel data, used by
// both directions (written by the downsampler on encode, by the upsampler's
// input on decode).
type Component struct {
	common.Component
	Plane [][]byte // rows 0..HeightInBlocks*8-1, each WidthInBlocks*8 wide
}

// maxBlocksPerMCU is the spec §3 invariant ceiling on sum(h_i * v_i).
const maxBlocksPerMCU = 10

// planLayout describes one component's sampling factors and table slots
// before geometry is computed, indexed by the color space's channel order.
type planLayout struct {
	h, v            int
	quantSlot       int
	dcSlot, acSlot  int
	needsExtraQuant bool
}

// colorSpaceLayout returns the component count and per-component sampling
// plan for a JPEG-internal color space, per spec §4.2's table. Luminance-like
// channels (Y, K, GRAY) sample at the frame's maximum factor; chroma samples
// at 4:2:0 (half resolution both axes), the universal JFIF convention.
func colorSpaceLayout(cs common.ColorSpace) ([]planLayout, error) {
	switch cs {
	case common.ColorGray:
		return []planLayout{
			{h: 1, v: 1, quantSlot: 0, dcSlot: 0, acSlot: 0},
		}, nil
	case common.ColorYCbCr:
		return []planLayout{
			{h: 2, v: 2, quantSlot: 0, dcSlot: 0, acSlot: 0},
			{h: 1, v: 1, quantSlot: 1, dcSlot: 1, acSlot: 1},
			{h: 1, v: 1, quantSlot: 1, dcSlot: 1, acSlot: 1},
		}, nil
	case common.ColorBGYCC:
		return []planLayout{
			{h: 2, v: 2, quantSlot: 0, dcSlot: 0, acSlot: 0},
			{h: 1, v: 1, quantSlot: 1, dcSlot: 1, acSlot: 1, needsExtraQuant: true},
			{h: 1, v: 1, quantSlot: 1, dcSlot: 1, acSlot: 1, needsExtraQuant: true},
		}, nil
	case common.ColorYCCK:
		return []planLayout{
			{h: 2, v: 2, quantSlot: 0, dcSlot: 0, acSlot: 0},
			{h: 1, v: 1, quantSlot: 1, dcSlot: 1, acSlot: 1},
			{h: 1, v: 1, quantSlot: 1, dcSlot: 1, acSlot: 1},
			{h: 2, v: 2, quantSlot: 0, dcSlot: 0, acSlot: 0},
		}, nil
	case common.ColorCMYK:
		// Plain CMYK gets no translation (jcparam.c's JCS_CMYK case): every
		// channel is independent full-resolution detail, so all four
		// components sample at 1,1 and share one quant/Huffman table slot.
		return []planLayout{
			{h: 1, v: 1, quantSlot: 0, dcSlot: 0, acSlot: 0},
			{h: 1, v: 1, quantSlot: 0, dcSlot: 0, acSlot: 0},
			{h: 1, v: 1, quantSlot: 0, dcSlot: 0, acSlot: 0},
			{h: 1, v: 1, quantSlot: 0, dcSlot: 0, acSlot: 0},
		}, nil
	default:
		return nil, jpegerr.ErrInvalidComponents
	}
}

// planComponents builds the Component list for an image of the given
// dimensions and color space, allocating each component's sample plane from
// ar. Quant table pointers are not yet attached; callers fill QuantTbl after
// building or scaling the tables.
func planComponents(ar *arena.Arena, width, height int, cs common.ColorSpace) ([]Component, error) {
	layout, err := colorSpaceLayout(cs)
	if err != nil {
		return nil, err
	}
	if len(layout) > 4 {
		return nil, jpegerr.ErrTooManyComponents
	}

	comps := make([]Component, len(layout))
	for i, l := range layout {
		c := &comps[i]
		c.ID = byte(i + 1)
		c.Index = i
		c.H, c.V = l.h, l.v
		c.QuantSlot = l.quantSlot
		c.DCTableSlot, c.ACTableSlot = l.dcSlot, l.acSlot
		c.NeedsExtraQuant = l.needsExtraQuant
	}
	if err := finalizeGeometry(ar, width, height, comps); err != nil {
		return nil, err
	}
	return comps, nil
}

// finalizeGeometry computes each component's block-grid geometry from its
// already-set H/V sampling factors (filled by colorSpaceLayout on encode, or
// parsed straight out of SOF on decode) and allocates its sample plane from
// ar. It is the shared tail of the encode and decode component-setup paths.
func finalizeGeometry(ar *arena.Arena, width, height int, comps []Component) error {
	hMax, vMax := maxSamplingFactors(comps)
	mcusPerRow := common.DivCeil(width, hMax*8)
	mcusPerCol := common.DivCeil(height, vMax*8)

	blocksInMCU := 0
	for i := range comps {
		c := &comps[i]
		c.WidthInBlocks = mcusPerRow * c.H
		c.HeightInBlocks = mcusPerCol * c.V
		c.DownsampledWidth = common.DivCeil(width*c.H, hMax)
		c.DownsampledHeight = common.DivCeil(height*c.V, vMax)
		c.LastColWidth = c.DownsampledWidth - (c.WidthInBlocks-1)*8
		c.LastRowHeight = c.DownsampledHeight - (c.HeightInBlocks-1)*8
		c.MCUWidth, c.MCUHeight = c.H, c.V
		c.MCUBlocks = c.H * c.V

		blocksInMCU += c.MCUBlocks

		rows, err := ar.AllocRows(c.HeightInBlocks*8, c.WidthInBlocks*8)
		if err != nil {
			return err
		}
		c.Plane = rows
	}
	if blocksInMCU > maxBlocksPerMCU {
		return jpegerr.ErrBadMCUSize
	}
	return nil
}

// MaxSamplingFactors returns a color space's frame-level maximum horizontal
// and vertical sampling factors, for callers that need iMCU row geometry
// before an Encoder/Decoder has built a Component list (e.g. to translate a
// restart-section count into a restart interval).
func MaxSamplingFactors(cs common.ColorSpace) (hMax, vMax int, err error) {
	layout, err := colorSpaceLayout(cs)
	if err != nil {
		return 0, 0, err
	}
	hMax, vMax = 1, 1
	for _, l := range layout {
		if l.h > hMax {
			hMax = l.h
		}
		if l.v > vMax {
			vMax = l.v
		}
	}
	return hMax, vMax, nil
}

func maxSamplingFactors(comps []Component) (hMax, vMax int) {
	hMax, vMax = 1, 1
	for i := range comps {
		if comps[i].H > hMax {
			hMax = comps[i].H
		}
		if comps[i].V > vMax {
			vMax = comps[i].V
		}
	}
	return hMax, vMax
}

// replicateEdges fills the block-padding margin of a component's plane
// (columns beyond DownsampledWidth, rows beyond DownsampledHeight) by
// repeating the last valid sample, so the FDCT never reads uninitialized
// padding, per spec §4.3's edge-padding rule.
func replicateEdges(c *Component) {
	w, h := c.DownsampledWidth, c.DownsampledHeight
	fullW, fullH := c.WidthInBlocks*8, c.HeightInBlocks*8
	for r := 0; r < h; r++ {
		row := c.Plane[r]
		for col := w; col < fullW; col++ {
			row[col] = row[w-1]
		}
	}
	for r := h; r < fullH; r++ {
		copy(c.Plane[r], c.Plane[h-1])
	}
}
