package editor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegionAspectLock(t *testing.T) {
	element := Size{Width: 400, Height: 225}
	natural := Size{Width: 1600, Height: 900} // 16:9

	drags := []struct {
		name           string
		x0, y0, x1, y1 float64
	}{
		{"wide drag", 50, 50, 250, 150},
		{"tall drag", 50, 20, 130, 200},
		{"reverse drag", 300, 200, 100, 60},
		{"near square", 10, 10, 110, 105},
	}
	for _, d := range drags {
		t.Run(d.name, func(t *testing.T) {
			sel := NewRegionSelector(element, natural)
			sel.Begin(d.x0, d.y0)
			rect, ok := sel.End(d.x1, d.y1)
			require.True(t, ok)
			require.InDelta(t, 16.0/9.0, rect.Width/rect.Height, 0.01,
				"committed selection must match the natural aspect ratio")
			require.GreaterOrEqual(t, rect.X, 0.0)
			require.GreaterOrEqual(t, rect.Y, 0.0)
			require.LessOrEqual(t, rect.X+rect.Width, element.Width+1e-9)
			require.LessOrEqual(t, rect.Y+rect.Height, element.Height+1e-9)
		})
	}
}

func TestRegionMinimumSizeRejection(t *testing.T) {
	sel := NewRegionSelector(Size{Width: 400, Height: 300}, Size{Width: 4000, Height: 3000})
	sel.Begin(100, 100)

	_, ok := sel.Update(110, 110)
	require.False(t, ok, "10x10 raw drag is below the 20px floor")

	_, ok = sel.End(110, 110)
	require.False(t, ok)
	_, committed := sel.Committed()
	require.False(t, committed)

	// One thin axis is enough to reject.
	sel.Begin(100, 100)
	_, ok = sel.End(300, 110)
	require.False(t, ok)
}

func TestRegionNormalizationScaleInvariance(t *testing.T) {
	// The same relative selection (central 50% x 50%) against a 400px
	// element and a 4000px element must normalize identically.
	small := ToNormalized(
		SelectionRect{X: 100, Y: 75, Width: 200, Height: 150},
		Size{Width: 400, Height: 300},
	)
	large := ToNormalized(
		SelectionRect{X: 1000, Y: 750, Width: 2000, Height: 1500},
		Size{Width: 4000, Height: 3000},
	)

	require.Equal(t, NormalizedRegion{Top: 250, Left: 250, Bottom: 750, Right: 750}, small)
	require.InDelta(t, small.Top, large.Top, 1)
	require.InDelta(t, small.Left, large.Left, 1)
	require.InDelta(t, small.Bottom, large.Bottom, 1)
	require.InDelta(t, small.Right, large.Right, 1)
}

func TestRegionNormalizedRange(t *testing.T) {
	element := Size{Width: 640, Height: 360}
	n := ToNormalized(SelectionRect{X: 0, Y: 0, Width: 640, Height: 360}, element)
	require.Equal(t, NormalizedRegion{Top: 0, Left: 0, Bottom: 1000, Right: 1000}, n)
}

func TestRegionClampToElementBounds(t *testing.T) {
	element := Size{Width: 400, Height: 225}
	natural := Size{Width: 1600, Height: 900}

	sel := NewRegionSelector(element, natural)
	sel.Begin(380, 200)
	rect, ok := sel.End(200, 100) // drag up-left from near the corner
	require.True(t, ok)
	require.GreaterOrEqual(t, rect.X, 0.0)
	require.GreaterOrEqual(t, rect.Y, 0.0)
	require.LessOrEqual(t, rect.X+rect.Width, element.Width+1e-9)
	require.LessOrEqual(t, rect.Y+rect.Height, element.Height+1e-9)
}

func TestRegionCancelDiscardsSelection(t *testing.T) {
	sel := NewRegionSelector(Size{Width: 400, Height: 300}, Size{Width: 800, Height: 600})
	sel.Begin(10, 10)
	_, ok := sel.End(200, 200)
	require.True(t, ok)

	sel.Cancel()
	_, committed := sel.Committed()
	require.False(t, committed)
	_, ok = sel.Normalized()
	require.False(t, ok)
}

func TestRegionUpdateWithoutBegin(t *testing.T) {
	sel := NewRegionSelector(Size{Width: 400, Height: 300}, Size{Width: 800, Height: 600})
	_, ok := sel.Update(100, 100)
	require.False(t, ok)
	_, ok = sel.End(100, 100)
	require.False(t, ok)
}
