package marker

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Store holds the marker sequence. It is not safe for concurrent use; the
// host drives it from a single event loop.
type Store struct {
	layer   Layer
	log     zerolog.Logger
	markers []Marker
}

// NewStore returns an empty store drawing through layer.
func NewStore(layer Layer, log zerolog.Logger) *Store {
	return &Store{layer: layer, log: log}
}

// Len returns the number of markers.
func (s *Store) Len() int {
	return len(s.markers)
}

// All returns a copy of the sequence in order.
func (s *Store) All() []Marker {
	out := make([]Marker, len(s.markers))
	copy(out, s.markers)
	return out
}

// At returns the marker with the given id.
func (s *Store) At(id int) (Marker, error) {
	if err := s.check(id); err != nil {
		return Marker{}, err
	}
	return s.markers[id], nil
}

// Add appends a marker at pos with the given color. If the layer cannot
// create the visual marker the store is left unchanged.
func (s *Store) Add(pos Position, color Color) (Marker, error) {
	handle, err := s.layer.CreateVisualMarker(pos, Style{Color: color})
	if err != nil {
		return Marker{}, fmt.Errorf("create visual marker: %w", err)
	}
	m := Marker{
		ID:       len(s.markers),
		Position: pos,
		Color:    color,
		Handle:   handle,
	}
	s.markers = append(s.markers, m)
	s.layer.BindDetailView(handle, detailOf(m))
	s.log.Debug().Int("id", m.ID).Str("color", string(color)).Stringer("pos", pos).Msg("marker added")
	return m, nil
}

// Remove deletes the marker with the given id, releases its visual handle
// and relabels every later marker so IDs stay dense.
func (s *Store) Remove(id int) error {
	if err := s.check(id); err != nil {
		return err
	}
	s.layer.DestroyVisualMarker(s.markers[id].Handle)
	s.markers = append(s.markers[:id], s.markers[id+1:]...)
	for i := id; i < len(s.markers); i++ {
		s.markers[i].ID = i
		s.layer.BindDetailView(s.markers[i].Handle, detailOf(s.markers[i]))
	}
	s.log.Debug().Int("id", id).Int("remaining", len(s.markers)).Msg("marker removed")
	return nil
}

// Clear releases every visual handle and empties the sequence. It returns
// the number of markers released.
func (s *Store) Clear() int {
	n := len(s.markers)
	for _, m := range s.markers {
		s.layer.DestroyVisualMarker(m.Handle)
	}
	s.markers = nil
	if n > 0 {
		s.log.Debug().Int("released", n).Msg("markers cleared")
	}
	return n
}

// SetNote overwrites the note of the marker with the given id.
func (s *Store) SetNote(id int, text string) error {
	if err := s.check(id); err != nil {
		return err
	}
	s.markers[id].Note = text
	s.layer.BindDetailView(s.markers[id].Handle, detailOf(s.markers[id]))
	s.log.Debug().Int("id", id).Int("note_len", len(text)).Msg("marker note saved")
	return nil
}

// Query returns, in sequence order, every marker for which pred holds.
func (s *Store) Query(pred func(Marker) bool) []Marker {
	return lo.Filter(s.markers, func(m Marker, _ int) bool {
		return pred(m)
	})
}

func (s *Store) check(id int) error {
	if id < 0 || id >= len(s.markers) {
		err := &OutOfRangeError{ID: id, Len: len(s.markers)}
		s.log.Warn().Err(err).Msg("marker lookup rejected")
		return err
	}
	return nil
}
