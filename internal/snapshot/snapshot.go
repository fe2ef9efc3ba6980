// Package snapshot persists field snapshots at output events and loads
// them back for plotting and restarts. One JSON file per event; files
// round-trip exactly and are never overwritten by the engine.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/polarsim/iceflow/internal/field"
)

// Snap is a consistent snapshot of selected fields at one simulation
// time. Field data is deep-copied at capture so later stepping cannot
// leak into a buffered write.
type Snap struct {
	Time   float64              `json:"t"`
	Step   int                  `json:"step"`
	Nx     int                  `json:"nx"`
	Ny     int                  `json:"ny"`
	Dx     float64              `json:"dx"`
	Dy     float64              `json:"dy"`
	Fields map[string][]float64 `json:"fields"`
}

// Capture copies the mapped fields out of the store. The mapping is
// output-name -> store field name; unknown store names are an error.
func Capture(st *field.Store, mapping map[string]string, dx, dy, t float64, step int) (*Snap, error) {
	s := &Snap{
		Time:   t,
		Step:   step,
		Nx:     st.Nx,
		Ny:     st.Ny,
		Dx:     dx,
		Dy:     dy,
		Fields: make(map[string][]float64, len(mapping)),
	}
	for out, name := range mapping {
		f, err := st.ByName(name)
		if err != nil {
			return nil, err
		}
		data := make([]float64, len(f.Data))
		copy(data, f.Data)
		s.Fields[out] = data
	}
	return s, nil
}

// Field returns a named field from the snapshot as a Field value.
func (s *Snap) Field(name string) (*field.Field, bool) {
	data, ok := s.Fields[name]
	if !ok || len(data) != s.Nx*s.Ny {
		return nil, false
	}
	return field.FromSlice(s.Nx, s.Ny, data), true
}

// FileName returns the canonical per-event file name.
func FileName(step int) string { return fmt.Sprintf("snap_%06d.json", step) }

// Write serializes the snapshot into dir. An existing file for the
// same step is an error: the engine never clobbers prior output.
func (s *Snap) Write(dir string) error {
	path := filepath.Join(dir, FileName(s.Step))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return &IOError{Path: path, Op: "create", Err: err}
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", " ")
	if err := enc.Encode(s); err != nil {
		return &IOError{Path: path, Op: "encode", Err: err}
	}
	return nil
}

// Load reads one snapshot file.
func Load(path string) (*Snap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Op: "read", Err: err}
	}
	var s Snap
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &IOError{Path: path, Op: "decode", Err: err}
	}
	return &s, nil
}

// List returns the snapshot files in dir, oldest first.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &IOError{Path: dir, Op: "list", Err: err}
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "snap_") && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Latest returns the newest snapshot file in dir.
func Latest(dir string) (string, error) {
	names, err := List(dir)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", &IOError{Path: dir, Op: "list", Err: os.ErrNotExist}
	}
	return names[len(names)-1], nil
}
