// Package ingest turns heterogeneous input rows into canonical records
// and appends them to the store in all-or-nothing batches. Three source
// shapes feed the same normalizer: manual form fields, the remote
// published sheet, and locally uploaded CSV files.
package ingest

import (
	"strings"

	"bitacora/internal/core"
)

// SourceKind selects the column mapping for Normalize.
type SourceKind string

const (
	SourceManual SourceKind = "manual"
	SourceRemote SourceKind = "remote"
	SourceUpload SourceKind = "upload"
)

// Column names per source. Manual uses the form field ids; upload uses
// the case-sensitive spreadsheet headers. The remote CSV export carries
// no usable header names and maps positionally via NormalizeColumns.
var columnNames = map[SourceKind]struct {
	date, hours, activity, detail, month string
}{
	SourceManual: {date: "fecha", hours: "cantidadHoras", activity: "actividad", detail: "detalle", month: "mes"},
	SourceUpload: {date: "Fecha", hours: "CantidadHoras", activity: "Actividad", detail: "Detalle", month: "Mes"},
}

// Normalize maps a named-column row into a canonical record. Missing
// columns default to empty string or zero; a malformed hours value
// coerces to 0. The second return is false when the row has no usable
// date, which bulk ingestion skips silently.
func Normalize(raw map[string]string, kind SourceKind) (core.Record, bool) {
	cols, ok := columnNames[kind]
	if !ok {
		return core.Record{}, false
	}
	rec := core.Record{
		Date:     strings.TrimSpace(raw[cols.date]),
		Hours:    core.ParseHours(raw[cols.hours]),
		Activity: strings.TrimSpace(raw[cols.activity]),
		Detail:   strings.TrimSpace(raw[cols.detail]),
		Month:    strings.TrimSpace(raw[cols.month]),
	}
	return rec, rec.Date != ""
}

// NormalizeColumns maps a positional remote row in the fixed order
// {date, month, activity, detail, hours}. Short rows pad with defaults.
func NormalizeColumns(cols []string) (core.Record, bool) {
	get := func(i int) string {
		if i < 0 || i >= len(cols) {
			return ""
		}
		return strings.TrimSpace(cols[i])
	}
	rec := core.Record{
		Date:     get(0),
		Month:    get(1),
		Activity: get(2),
		Detail:   get(3),
		Hours:    core.ParseHours(get(4)),
	}
	return rec, rec.Date != ""
}
