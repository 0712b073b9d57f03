package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// ExportJSON writes the run metadata, including its sampled series, as
// indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// ExportCSV writes the sampled series as time,temperature,particles rows.
func ExportCSV(w io.Writer, meta *RunMetadata) error {
	if len(meta.Temperatures) != len(meta.Times) {
		return fmt.Errorf("run %s: %d times but %d temperatures", meta.ID, len(meta.Times), len(meta.Temperatures))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "temperature", "particles"}); err != nil {
		return err
	}
	for i, t := range meta.Times {
		count := ""
		if i < len(meta.Counts) {
			count = strconv.Itoa(meta.Counts[i])
		}
		row := []string{
			strconv.FormatFloat(t, 'f', 6, 64),
			strconv.FormatFloat(meta.Temperatures[i], 'f', 3, 64),
			count,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
