package ink

import "errors"

// ErrNoActiveStroke is returned by AddPoint when no stroke has been started.
var ErrNoActiveStroke = errors.New("no active stroke")

// Point is a single pointer sample in surface-local pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Midpoint returns the point halfway between p and q.
func Midpoint(p, q Point) Point {
	return Point{
		X: p.X + (q.X-p.X)/2,
		Y: p.Y + (q.Y-p.Y)/2,
	}
}

// Stroke is one continuous pointer-drag gesture, in sample order.
type Stroke []Point

// Drawing is the ordered set of strokes of one review session.
type Drawing []Stroke

// Points returns the total number of samples across all strokes.
func (d Drawing) Points() int {
	n := 0
	for _, s := range d {
		n += len(s)
	}
	return n
}

// Store holds the drawing of one overlay instance. It is append-only except
// for popping the most recent stroke.
type Store struct {
	strokes []Stroke
	onEmpty func(empty bool)
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// SetEmptyHandler registers fn to be called whenever the drawing switches
// between empty and non-empty.
func (s *Store) SetEmptyHandler(fn func(empty bool)) {
	s.onEmpty = fn
}

// StartStroke appends a new empty stroke.
func (s *Store) StartStroke() {
	wasEmpty := len(s.strokes) == 0
	s.strokes = append(s.strokes, nil)
	if wasEmpty {
		s.notify(false)
	}
}

// AddPoint appends p to the most recently started stroke.
func (s *Store) AddPoint(p Point) error {
	if len(s.strokes) == 0 {
		return ErrNoActiveStroke
	}
	last := len(s.strokes) - 1
	s.strokes[last] = append(s.strokes[last], p)
	return nil
}

// UndoLastStroke removes the most recent stroke. It reports whether a stroke
// was removed.
func (s *Store) UndoLastStroke() bool {
	if len(s.strokes) == 0 {
		return false
	}
	s.strokes[len(s.strokes)-1] = nil
	s.strokes = s.strokes[:len(s.strokes)-1]
	if len(s.strokes) == 0 {
		s.notify(true)
	}
	return true
}

// Clear discards every stroke.
func (s *Store) Clear() {
	wasEmpty := len(s.strokes) == 0
	s.strokes = nil
	if !wasEmpty {
		s.notify(true)
	}
}

// All returns the current drawing. The returned value is a view that later
// mutations of the store never change.
func (s *Store) All() Drawing {
	d := make(Drawing, len(s.strokes))
	for i, st := range s.strokes {
		d[i] = st[:len(st):len(st)]
	}
	return d
}

// Len returns the number of strokes.
func (s *Store) Len() int {
	return len(s.strokes)
}

// Empty reports whether the drawing has no strokes.
func (s *Store) Empty() bool {
	return len(s.strokes) == 0
}

func (s *Store) notify(empty bool) {
	if s.onEmpty != nil {
		s.onEmpty(empty)
	}
}
