package editor

// History is a linear, branch-discarding undo/redo timeline over generated
// image versions. Appending while the index is not at the tail truncates the
// redo branch first — an edit after an undo discards the future, standard
// editor semantics.
//
// None of the operations can fail; boundary navigation returns the zero
// value and false instead of panicking, so callers branch on presence.
type History[T any] struct {
	entries []T
	index   int
}

// NewHistory returns an empty history.
func NewHistory[T any]() *History[T] {
	return &History[T]{index: -1}
}

// Append truncates any redo branch, appends entry, and moves the index to
// the new tail. This is the only way content enters the history.
func (h *History[T]) Append(entry T) {
	h.entries = append(h.entries[:h.index+1], entry)
	h.index = len(h.entries) - 1
}

// Undo steps the index back and returns the entry now current.
// At the start of history it is a no-op returning (zero, false).
func (h *History[T]) Undo() (T, bool) {
	if h.index <= 0 {
		var zero T
		return zero, false
	}
	h.index--
	return h.entries[h.index], true
}

// Redo steps the index forward and returns the entry now current.
// At the tail it is a no-op returning (zero, false).
func (h *History[T]) Redo() (T, bool) {
	if h.index >= len(h.entries)-1 {
		var zero T
		return zero, false
	}
	h.index++
	return h.entries[h.index], true
}

// Current returns the entry at the index, or (zero, false) when empty.
func (h *History[T]) Current() (T, bool) {
	if h.index < 0 {
		var zero T
		return zero, false
	}
	return h.entries[h.index], true
}

// At returns the entry at position i without moving the index.
func (h *History[T]) At(i int) (T, bool) {
	if i < 0 || i >= len(h.entries) {
		var zero T
		return zero, false
	}
	return h.entries[i], true
}

// Len returns the number of entries.
func (h *History[T]) Len() int {
	return len(h.entries)
}

// Index returns the current position, or -1 when empty. Exposed so the UI
// can disable undo/redo affordances at the boundaries.
func (h *History[T]) Index() int {
	return h.index
}

// CanUndo reports whether Undo would move the index.
func (h *History[T]) CanUndo() bool {
	return h.index > 0
}

// CanRedo reports whether Redo would move the index.
func (h *History[T]) CanRedo() bool {
	return h.index < len(h.entries)-1
}

// Reset drops all entries. Only called when the underlying source image
// changes; mid-session the history is never destroyed.
func (h *History[T]) Reset() {
	h.entries = nil
	h.index = -1
}
