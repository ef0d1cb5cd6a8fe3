package sample

import "testing"

func makeRows(w, h int, fill func(r, c int) byte) [][]byte {
	rows := make([][]byte, h)
	for r := 0; r < h; r++ {
		rows[r] = make([]byte, w)
		for c := 0; c < w; c++ {
			rows[r][c] = fill(r, c)
		}
	}
	return rows
}

func TestFullsizeDownsampleCopies(t *testing.T) {
	src := makeRows(8, 8, func(r, c int) byte { return byte(r*8 + c) })
	dst := makeRows(8, 8, func(r, c int) byte { return 0 })
	Downsample(DownsampleFullsize, src, 8, 8, dst, 1, 1)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if dst[r][c] != src[r][c] {
				t.Fatalf("mismatch at (%d,%d)", r, c)
			}
		}
	}
}

func TestH2V2BoxAveragesFlatBlock(t *testing.T) {
	src := makeRows(8, 8, func(r, c int) byte { return 100 })
	dst := makeRows(4, 4, func(r, c int) byte { return 0 })
	Downsample(DownsampleH2V2Box, src, 8, 8, dst, 2, 2)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if dst[r][c] != 100 {
				t.Fatalf("flat block should downsample to 100, got %d", dst[r][c])
			}
		}
	}
}

func TestH2V1BoxOddWidthReplicatesEdge(t *testing.T) {
	src := makeRows(3, 1, func(r, c int) byte { return byte(10 * (c + 1)) }) // 10,20,30
	dst := makeRows(2, 1, func(r, c int) byte { return 0 })
	Downsample(DownsampleH2V1Box, src, 3, 1, dst, 2, 1)
	if dst[0][0] != 15 {
		t.Fatalf("dst[0][0] = %d, want 15", dst[0][0])
	}
	// Last output column pairs column 2 (value 30) with replicated column 2.
	if dst[0][1] != 30 {
		t.Fatalf("dst[0][1] = %d, want 30 (edge replication)", dst[0][1])
	}
}

func TestIntUpsampleReplicates(t *testing.T) {
	src := makeRows(2, 2, func(r, c int) byte { return byte(r*2 + c) })
	dst := makeRows(4, 4, func(r, c int) byte { return 0 })
	Upsample(UpsampleIntReplicate, src, 2, 2, dst, 4, 4, 2, 2, nil)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			want := src[r/2][c/2]
			if dst[r][c] != want {
				t.Fatalf("dst[%d][%d] = %d, want %d", r, c, dst[r][c], want)
			}
		}
	}
}

func TestH2V2FancyFlatBlockStaysFlat(t *testing.T) {
	src := makeRows(4, 4, func(r, c int) byte { return 77 })
	dst := makeRows(8, 8, func(r, c int) byte { return 0 })
	scratch := makeRows(4, 8, func(r, c int) byte { return 0 })
	Upsample(UpsampleH2V2Fancy, src, 4, 4, dst, 8, 8, 2, 2, scratch)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if dst[r][c] != 77 {
				t.Fatalf("flat block should upsample to 77, got %d at (%d,%d)", dst[r][c], r, c)
			}
		}
	}
}

func TestSelectMethodMatchesRatios(t *testing.T) {
	if SelectDownsampleMethod(1, 1) != DownsampleFullsize {
		t.Fatalf("expected fullsize for 1:1")
	}
	if SelectDownsampleMethod(2, 2) != DownsampleH2V2Box {
		t.Fatalf("expected h2v2 box for 2:2")
	}
	if SelectDownsampleMethod(4, 1) != DownsampleIntBox {
		t.Fatalf("expected int box for 4:1")
	}
	if SelectUpsampleMethod(2, 1) != UpsampleH2V1Fancy {
		t.Fatalf("expected h2v1 fancy for 2:1")
	}
}
