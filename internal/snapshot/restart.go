package snapshot

import (
	"errors"

	"github.com/polarsim/iceflow/internal/field"
	"github.com/polarsim/iceflow/internal/model"
)

// ErrNoThickness indicates a snapshot without a thickness field, which
// cannot seed a restart.
var ErrNoThickness = errors.New("snapshot: no thickness field, cannot restart")

// Restore loads a snapshot's thickness into the model and returns the
// snapshot's time and step, so a simulation can resume exactly where
// the written run stood. The snapshot must contain a field mapped from
// the store's thickness.
func Restore(path string, m *model.Model) (t float64, step int, err error) {
	s, err := Load(path)
	if err != nil {
		return 0, 0, err
	}
	h, ok := s.Field(field.NameThickness)
	if !ok {
		return 0, 0, ErrNoThickness
	}
	if err := m.SetThickness(h); err != nil {
		return 0, 0, err
	}
	return s.Time, s.Step, nil
}
