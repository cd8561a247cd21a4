package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"bitacora/internal/core"
)

// ParseRemoteCSV reads a published-sheet export: first row is a header,
// remaining rows map positionally. Rows without a date are skipped and
// counted, never failing the batch.
func ParseRemoteCSV(r io.Reader) (recs []core.Record, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("parse remote csv: %w", err)
	}
	for i, row := range rows {
		if i == 0 {
			continue // header row
		}
		rec, ok := NormalizeColumns(row)
		if !ok {
			skipped++
			continue
		}
		recs = append(recs, rec)
	}
	return recs, skipped, nil
}

// ParseUploadCSV reads a locally uploaded file with header detection:
// the first row names columns, looked up by the case-sensitive upload
// header names. Missing headers default per the normalizer.
func ParseUploadCSV(r io.Reader) (recs []core.Record, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("parse upload csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, nil
	}

	header := rows[0]
	for _, row := range rows[1:] {
		raw := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				raw[name] = row[i]
			}
		}
		rec, ok := Normalize(raw, SourceUpload)
		if !ok {
			skipped++
			continue
		}
		recs = append(recs, rec)
	}
	return recs, skipped, nil
}
