package editor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistoryAppendAdvances(t *testing.T) {
	h := NewHistory[string]()
	require.Equal(t, 0, h.Len())
	require.Equal(t, -1, h.Index())

	h.Append("a")
	h.Append("b")
	require.Equal(t, 2, h.Len())
	require.Equal(t, 1, h.Index())

	cur, ok := h.Current()
	require.True(t, ok)
	require.Equal(t, "b", cur)
}

func TestHistoryLinearity(t *testing.T) {
	h := NewHistory[string]()
	h.Append("A")
	h.Append("B")
	h.Append("C")
	require.Equal(t, 2, h.Index())

	entry, ok := h.Undo()
	require.True(t, ok)
	require.Equal(t, "B", entry)
	entry, ok = h.Undo()
	require.True(t, ok)
	require.Equal(t, "A", entry)

	// Appending after undo discards the redo branch.
	h.Append("D")
	require.Equal(t, 2, h.Len())
	require.Equal(t, 1, h.Index())

	cur, ok := h.Current()
	require.True(t, ok)
	require.Equal(t, "D", cur)

	_, ok = h.Redo()
	require.False(t, ok, "no stale redo branch may survive a fresh append")
}

func TestHistoryBoundarySafety(t *testing.T) {
	h := NewHistory[string]()

	_, ok := h.Undo()
	require.False(t, ok)
	_, ok = h.Redo()
	require.False(t, ok)
	_, ok = h.Current()
	require.False(t, ok)

	h.Append("only")
	_, ok = h.Undo()
	require.False(t, ok, "single entry: undo is a no-op")
	_, ok = h.Redo()
	require.False(t, ok, "single entry: redo is a no-op")
	require.False(t, h.CanUndo())
	require.False(t, h.CanRedo())

	cur, ok := h.Current()
	require.True(t, ok)
	require.Equal(t, "only", cur)
}

func TestHistoryUndoRedoRoundTrip(t *testing.T) {
	h := NewHistory[int]()
	h.Append(1)
	h.Append(2)
	h.Append(3)

	v, ok := h.Undo()
	require.True(t, ok)
	require.Equal(t, 2, v)
	require.True(t, h.CanRedo())

	v, ok = h.Redo()
	require.True(t, ok)
	require.Equal(t, 3, v)
	require.False(t, h.CanRedo())
	require.Equal(t, 3, h.Len(), "undo/redo never mutate contents")
}

func TestHistoryReset(t *testing.T) {
	h := NewHistory[string]()
	h.Append("a")
	h.Append("b")
	h.Reset()

	require.Equal(t, 0, h.Len())
	require.Equal(t, -1, h.Index())
	_, ok := h.Current()
	require.False(t, ok)
}
