package editor

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeMask(t *testing.T, data []byte) *image.Gray {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	gray, ok := img.(*image.Gray)
	require.True(t, ok, "mask must decode as grayscale")
	return gray
}

func TestExportMaskIdempotent(t *testing.T) {
	s := NewMaskSession()
	s.Attach(Size{Width: 200, Height: 100}, Size{Width: 200, Height: 100})

	s.BeginStroke(20, 20, 16)
	s.ExtendStroke(60, 40)
	s.ExtendStroke(120, 80)
	s.EndStroke()

	first, err := s.ExportMask()
	require.NoError(t, err)
	second, err := s.ExportMask()
	require.NoError(t, err)
	require.Equal(t, first, second, "repeated export without new strokes must be byte-identical")
}

func TestSingleTapRendersDab(t *testing.T) {
	s := NewMaskSession()
	s.Attach(Size{Width: 100, Height: 100}, Size{Width: 100, Height: 100})

	s.Clear()
	s.BeginStroke(50, 50, 30)
	s.EndStroke()

	data, err := s.ExportMask()
	require.NoError(t, err)
	gray := decodeMask(t, data)

	require.Equal(t, 100, gray.Bounds().Dx())
	require.Equal(t, 100, gray.Bounds().Dy())

	white := 0
	minX, minY, maxX, maxY := 100, 100, -1, -1
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			v := gray.GrayAt(x, y).Y
			require.Contains(t, []uint8{0, 255}, v, "mask must be strictly binary")
			if v == 255 {
				white++
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}

	// One circular dab of diameter 30 centered at (50,50): area near
	// pi*15^2 and extent near 30px on both axes.
	require.InDelta(t, 707, white, 60)
	require.InDelta(t, 30, maxX-minX+1, 2)
	require.InDelta(t, 30, maxY-minY+1, 2)
	require.InDelta(t, 50, float64(minX+maxX)/2, 1.5)
	require.InDelta(t, 50, float64(minY+maxY)/2, 1.5)
}

func TestClearProducesAllBlackMask(t *testing.T) {
	s := NewMaskSession()
	s.Attach(Size{Width: 64, Height: 48}, Size{Width: 64, Height: 48})

	s.BeginStroke(10, 10, 8)
	s.ExtendStroke(40, 30)
	s.EndStroke()
	s.Clear()

	require.Zero(t, s.StrokeCount())
	require.NotNil(t, s.CurrentMask(), "mask must be current after clear")

	gray := decodeMask(t, s.CurrentMask())
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			require.EqualValues(t, 0, gray.GrayAt(x, y).Y)
		}
	}
}

func TestStrokeScalesScreenToImageSpace(t *testing.T) {
	s := NewMaskSession()
	// Image displayed at half resolution: screen coords double into
	// image space, and so does the brush size.
	s.Attach(Size{Width: 200, Height: 100}, Size{Width: 400, Height: 200})

	s.BeginStroke(100, 50, 20)
	s.EndStroke()

	data, err := s.ExportMask()
	require.NoError(t, err)
	gray := decodeMask(t, data)
	require.Equal(t, 400, gray.Bounds().Dx())
	require.Equal(t, 200, gray.Bounds().Dy())
	// Dab lands at (200,100) in image space with diameter 40.
	require.EqualValues(t, 255, gray.GrayAt(200, 100).Y)
	require.EqualValues(t, 255, gray.GrayAt(200-18, 100).Y)
	require.EqualValues(t, 0, gray.GrayAt(200-25, 100).Y)
}

func TestPerPointBrushSize(t *testing.T) {
	s := NewMaskSession()
	s.Attach(Size{Width: 200, Height: 200}, Size{Width: 200, Height: 200})

	s.BeginStroke(50, 100, 10)
	s.SetBrushSize(40)
	s.ExtendStroke(150, 100)
	s.EndStroke()

	data, err := s.ExportMask()
	require.NoError(t, err)
	gray := decodeMask(t, data)
	// Near the start the stroke is thin; near the end it is wide.
	require.EqualValues(t, 0, gray.GrayAt(55, 100-15).Y)
	require.EqualValues(t, 255, gray.GrayAt(145, 100-15).Y)
}

func TestOpsAreNoOpsWhenUnattachedOrProcessing(t *testing.T) {
	s := NewMaskSession()

	// Not attached yet: everything tolerated, nothing recorded.
	s.BeginStroke(10, 10, 30)
	s.ExtendStroke(20, 20)
	s.EndStroke()
	require.Zero(t, s.StrokeCount())

	data, err := s.ExportMask()
	require.NoError(t, err)
	require.Nil(t, data)

	s.Attach(Size{Width: 100, Height: 100}, Size{Width: 100, Height: 100})
	s.SetProcessing(true)
	s.BeginStroke(10, 10, 30)
	require.False(t, s.Drawing())
	s.SetProcessing(false)

	s.BeginStroke(10, 10, 30)
	require.True(t, s.Drawing())
	s.EndStroke()
	require.Equal(t, 1, s.StrokeCount())
}

func TestToImageSpace(t *testing.T) {
	tests := []struct {
		name               string
		x, y               float64
		displayed, natural Size
		wantX, wantY       float64
	}{
		{"identity", 10, 20, Size{100, 100}, Size{100, 100}, 10, 20},
		{"upscale", 10, 20, Size{100, 50}, Size{400, 200}, 40, 80},
		{"downscale", 300, 150, Size{600, 300}, Size{200, 100}, 100, 50},
		{"unattached passthrough", 7, 9, Size{}, Size{100, 100}, 7, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotX, gotY := ToImageSpace(tt.x, tt.y, tt.displayed, tt.natural)
			require.InDelta(t, tt.wantX, gotX, 1e-9)
			require.InDelta(t, tt.wantY, gotY, 1e-9)
		})
	}
}
