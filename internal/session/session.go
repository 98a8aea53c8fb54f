// Package session owns the per-upload editing state: the source photo, the
// mask capture session, the version history, and the region selector. One
// session maps to exactly one source image; uploading a new photo creates a
// fresh session, which is how strokes, history, and selection get reset
// together.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tmercier/yardstage/internal/editor"
	"github.com/tmercier/yardstage/internal/imagegen"
)

// Version is one generated image in the session's history. Entries are
// opaque to the editing core; only identity and order matter to it.
type Version struct {
	ID        string    `json:"id"`
	MIME      string    `json:"mime"`
	Note      string    `json:"note,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	Data []byte `json:"-"`
}

// Session is the server-side state for one uploaded photo. All methods are
// safe for concurrent use; handler goroutines and generation workers share
// a session.
type Session struct {
	mu sync.Mutex

	ID         string
	SourceData []byte
	SourceMIME string
	Width      int
	Height     int
	CreatedAt  time.Time

	// Reference is an optional product photo attached to generation
	// requests so the model reproduces the exact product design.
	Reference *imagegen.ReferenceImage

	mask     *editor.MaskSession
	history  *editor.History[Version]
	selector *editor.RegionSelector
}

func newSession(data []byte, mime string, width, height int) *Session {
	return &Session{
		ID:         uuid.NewString(),
		SourceData: data,
		SourceMIME: mime,
		Width:      width,
		Height:     height,
		CreatedAt:  time.Now(),
		mask:       editor.NewMaskSession(),
		history:    editor.NewHistory[Version](),
	}
}

// AttachViewport binds the browser's displayed image size to the session so
// pointer coordinates can be scaled into image space. Called whenever the
// element is laid out or resized.
func (s *Session) AttachViewport(displayed editor.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	natural := editor.Size{Width: float64(s.Width), Height: float64(s.Height)}
	s.mask.Attach(displayed, natural)
	s.selector = editor.NewRegionSelector(displayed, natural)
}

// StrokeInput is one pointer gesture as submitted by the browser, in CSS
// pixels relative to the displayed image.
type StrokeInput struct {
	BrushSize float64 `json:"brushSize"`
	Points    []struct {
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
		Size float64 `json:"size,omitempty"`
	} `json:"points"`
}

// ApplyStrokes replays pointer gestures through the mask session in
// dispatch order. Per-point sizes let mid-stroke brush changes replay
// faithfully; points without a size use the stroke's brush size.
func (s *Session) ApplyStrokes(strokes []StrokeInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mask.Attached() {
		return fmt.Errorf("viewport not attached")
	}
	for _, in := range strokes {
		if len(in.Points) == 0 {
			continue
		}
		first := in.Points[0]
		size := first.Size
		if size == 0 {
			size = in.BrushSize
		}
		s.mask.BeginStroke(first.X, first.Y, size)
		for _, p := range in.Points[1:] {
			if p.Size > 0 {
				s.mask.SetBrushSize(p.Size)
			}
			s.mask.ExtendStroke(p.X, p.Y)
		}
		s.mask.EndStroke()
	}
	return nil
}

// ClearMask empties the stroke log; the exported mask immediately reflects
// the all-black state.
func (s *Session) ClearMask() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mask.Clear()
}

// MaskPNG returns the current mask, exporting it if the stroke log has
// never been exported. Nil when no viewport is attached yet.
func (s *Session) MaskPNG() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if data := s.mask.CurrentMask(); data != nil {
		return data, nil
	}
	return s.mask.ExportMask()
}

// HasMask reports whether at least one stroke has been sealed.
func (s *Session) HasMask() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mask.HasMask()
}

// SelectRegion resolves a drag gesture into a committed, aspect-locked
// selection. Returns (rect, normalized, true) or ok=false for drags below
// the minimum size.
func (s *Session) SelectRegion(startX, startY, endX, endY float64) (editor.SelectionRect, editor.NormalizedRegion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selector == nil {
		return editor.SelectionRect{}, editor.NormalizedRegion{}, false
	}
	s.selector.Begin(startX, startY)
	rect, ok := s.selector.End(endX, endY)
	if !ok {
		return editor.SelectionRect{}, editor.NormalizedRegion{}, false
	}
	norm, _ := s.selector.Normalized()
	return rect, norm, true
}

// CancelRegion discards any committed selection.
func (s *Session) CancelRegion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selector != nil {
		s.selector.Cancel()
	}
}

// CommittedRegion returns the committed selection in normalized space.
func (s *Session) CommittedRegion() (editor.NormalizedRegion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selector == nil {
		return editor.NormalizedRegion{}, false
	}
	return s.selector.Normalized()
}

// SetProcessing toggles stroke input while a generation request is in
// flight.
func (s *Session) SetProcessing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mask.SetProcessing(v)
}

// ApplyResult appends a generated version to the history (discarding any
// redo branch) and clears the submitted selection.
func (s *Session) ApplyResult(v Version) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Append(v)
	if s.selector != nil {
		s.selector.Cancel()
	}
	log.Info().
		Str("session", s.ID).
		Str("version", v.ID).
		Int("history_len", s.history.Len()).
		Msg("Generated version appended to history")
}

// Undo steps the history back. ok=false at the boundary.
func (s *Session) Undo() (Version, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Undo()
}

// Redo steps the history forward. ok=false at the boundary.
func (s *Session) Redo() (Version, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Redo()
}

// Current returns the version at the history index.
func (s *Session) Current() (Version, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Current()
}

// CurrentImage returns the image the next edit applies to: the current
// history version, or the source photo if nothing has been generated yet.
func (s *Session) CurrentImage() ([]byte, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.history.Current(); ok {
		return v.Data, v.MIME
	}
	return s.SourceData, s.SourceMIME
}

// VersionByID looks up a history entry by its identity.
func (s *Session) VersionByID(id string) (Version, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// History entries are opaque to the core, so identity lookups walk
	// the timeline from the outside.
	for i := 0; i < s.history.Len(); i++ {
		if v, ok := s.history.At(i); ok && v.ID == id {
			return v, true
		}
	}
	return Version{}, false
}

// SetReference attaches a product reference photo to the session.
func (s *Session) SetReference(data []byte, mime string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reference = &imagegen.ReferenceImage{Data: data, MIME: mime}
}

// State is the JSON snapshot the UI polls to keep its affordances in sync.
type State struct {
	ID          string `json:"id"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	HistoryLen  int    `json:"historyLen"`
	HistoryIdx  int    `json:"historyIndex"`
	CanUndo     bool   `json:"canUndo"`
	CanRedo     bool   `json:"canRedo"`
	StrokeCount int    `json:"strokeCount"`
	HasMask     bool   `json:"hasMask"`
	HasRegion   bool   `json:"hasRegion"`
	HasRef      bool   `json:"hasReference"`
}

// Snapshot returns the session's UI-facing state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	hasRegion := false
	if s.selector != nil {
		_, hasRegion = s.selector.Committed()
	}
	return State{
		ID:          s.ID,
		Width:       s.Width,
		Height:      s.Height,
		HistoryLen:  s.history.Len(),
		HistoryIdx:  s.history.Index(),
		CanUndo:     s.history.CanUndo(),
		CanRedo:     s.history.CanRedo(),
		StrokeCount: s.mask.StrokeCount(),
		HasMask:     s.mask.HasMask(),
		HasRegion:   hasRegion,
		HasRef:      s.Reference != nil,
	}
}

// --- Store ---

// Store is the in-memory session registry. Sessions are never persisted;
// they live for the server process.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates an empty registry.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a new session for an uploaded photo. Any previous
// session for another photo keeps existing until the server restarts, but
// its state is untouched: strokes, history, and selection never leak across
// source images.
func (st *Store) Create(data []byte, mime string, width, height int) *Session {
	s := newSession(data, mime, width, height)
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	log.Info().
		Str("session", s.ID).
		Str("mime", mime).
		Int("width", width).
		Int("height", height).
		Msg("Session created")
	return s
}

// Get returns the session with the given ID, or nil.
func (st *Store) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sessions[id]
}

// Delete removes a session.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}
