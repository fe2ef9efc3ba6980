package diag

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
)

// WriteCSV streams the recorded series as CSV: time, step, then one
// column per metric in name order.
func (r *Recorder) WriteCSV(w io.Writer) error {
	names := make([]string, 0, len(r.Metrics))
	for _, m := range r.Metrics {
		names = append(names, m.Name())
	}
	sort.Strings(names)

	cw := csv.NewWriter(w)
	header := append([]string{"time", "step"}, names...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range r.Rows {
		rec := []string{
			strconv.FormatFloat(row.Time, 'g', -1, 64),
			strconv.Itoa(row.Step),
		}
		for _, name := range names {
			rec = append(rec, strconv.FormatFloat(row.Values[name], 'g', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
