package session

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tmercier/yardstage/internal/editor"
)

func sourcePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	st := NewStore()
	s := st.Create(sourcePNG(t, 1200, 800), "image/png", 1200, 800)
	s.AttachViewport(editor.Size{Width: 600, Height: 400})
	return s
}

func TestStoreCreateAndGet(t *testing.T) {
	st := NewStore()
	s := st.Create(sourcePNG(t, 10, 10), "image/png", 10, 10)
	require.NotEmpty(t, s.ID)
	require.Same(t, s, st.Get(s.ID))
	require.Nil(t, st.Get("missing"))

	st.Delete(s.ID)
	require.Nil(t, st.Get(s.ID))
}

func TestNewUploadStartsClean(t *testing.T) {
	st := NewStore()
	first := st.Create(sourcePNG(t, 100, 100), "image/png", 100, 100)
	first.AttachViewport(editor.Size{Width: 100, Height: 100})
	require.NoError(t, first.ApplyStrokes([]StrokeInput{strokeAt(50, 50, 20)}))
	first.ApplyResult(Version{ID: "v1", MIME: "image/png", Data: []byte{1}})

	second := st.Create(sourcePNG(t, 200, 200), "image/png", 200, 200)
	state := second.Snapshot()
	require.Zero(t, state.StrokeCount)
	require.Zero(t, state.HistoryLen)
	require.False(t, state.HasMask)
	require.False(t, state.HasRegion)
}

func strokeAt(x, y, size float64) StrokeInput {
	in := StrokeInput{BrushSize: size}
	in.Points = append(in.Points, struct {
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
		Size float64 `json:"size,omitempty"`
	}{X: x, Y: y})
	return in
}

func TestApplyStrokesRequiresViewport(t *testing.T) {
	st := NewStore()
	s := st.Create(sourcePNG(t, 100, 100), "image/png", 100, 100)
	err := s.ApplyStrokes([]StrokeInput{strokeAt(10, 10, 30)})
	require.Error(t, err)
}

func TestApplyStrokesUpdatesMask(t *testing.T) {
	s := newTestSession(t)
	require.False(t, s.HasMask())

	require.NoError(t, s.ApplyStrokes([]StrokeInput{strokeAt(300, 200, 30)}))
	require.True(t, s.HasMask())
	require.Equal(t, 1, s.Snapshot().StrokeCount)

	mask, err := s.MaskPNG()
	require.NoError(t, err)
	cfg, err := png.Decode(bytes.NewReader(mask))
	require.NoError(t, err)
	// Mask pixels live in image space, not viewport space.
	require.Equal(t, 1200, cfg.Bounds().Dx())
	require.Equal(t, 800, cfg.Bounds().Dy())

	s.ClearMask()
	require.False(t, s.HasMask())
}

func TestCurrentImageFollowsHistory(t *testing.T) {
	s := newTestSession(t)

	data, mime := s.CurrentImage()
	require.Equal(t, s.SourceData, data)
	require.Equal(t, "image/png", mime)

	s.ApplyResult(Version{ID: "a", MIME: "image/png", Data: []byte("gen-a")})
	s.ApplyResult(Version{ID: "b", MIME: "image/png", Data: []byte("gen-b")})

	data, _ = s.CurrentImage()
	require.Equal(t, []byte("gen-b"), data)

	v, ok := s.Undo()
	require.True(t, ok)
	require.Equal(t, "a", v.ID)
	data, _ = s.CurrentImage()
	require.Equal(t, []byte("gen-a"), data)

	v, ok = s.Redo()
	require.True(t, ok)
	require.Equal(t, "b", v.ID)
}

func TestApplyResultClearsSelection(t *testing.T) {
	s := newTestSession(t)

	_, _, ok := s.SelectRegion(100, 100, 400, 300)
	require.True(t, ok)
	_, committed := s.CommittedRegion()
	require.True(t, committed)

	s.ApplyResult(Version{ID: "v", MIME: "image/png", Data: []byte{1}})
	_, committed = s.CommittedRegion()
	require.False(t, committed)
}

func TestSelectRegionTooSmall(t *testing.T) {
	s := newTestSession(t)
	_, _, ok := s.SelectRegion(100, 100, 105, 105)
	require.False(t, ok)
}

func TestVersionByID(t *testing.T) {
	s := newTestSession(t)
	s.ApplyResult(Version{ID: "a", MIME: "image/png", Data: []byte("a")})
	s.ApplyResult(Version{ID: "b", MIME: "image/png", Data: []byte("b")})
	s.Undo()

	// Identity lookup ignores the history index.
	v, ok := s.VersionByID("b")
	require.True(t, ok)
	require.Equal(t, []byte("b"), v.Data)

	_, ok = s.VersionByID("missing")
	require.False(t, ok)
}

func TestSnapshotFlags(t *testing.T) {
	s := newTestSession(t)
	state := s.Snapshot()
	require.False(t, state.CanUndo)
	require.False(t, state.CanRedo)
	require.False(t, state.HasRef)

	s.SetReference([]byte("ref"), "image/jpeg")
	s.ApplyResult(Version{ID: "a", MIME: "image/png"})
	s.ApplyResult(Version{ID: "b", MIME: "image/png"})
	s.ApplyResult(Version{ID: "c", MIME: "image/png"})
	s.Undo()

	state = s.Snapshot()
	require.True(t, state.CanUndo)
	require.True(t, state.CanRedo)
	require.True(t, state.HasRef)
	require.Equal(t, 3, state.HistoryLen)
	require.Equal(t, 1, state.HistoryIdx)
}
