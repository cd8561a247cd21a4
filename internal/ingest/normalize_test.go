package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitacora/internal/core"
)

func TestNormalizeManualAndUploadConverge(t *testing.T) {
	want := core.Record{
		Date:     "2026-03-15",
		Hours:    2.5,
		Activity: "Soporte",
		Detail:   "Revisión de tickets",
		Month:    "Marzo",
	}

	manual, ok := Normalize(map[string]string{
		"fecha":         "2026-03-15",
		"cantidadHoras": "2,5",
		"actividad":     "Soporte",
		"detalle":       "Revisión de tickets",
		"mes":           "Marzo",
	}, SourceManual)
	require.True(t, ok)
	assert.Equal(t, want, manual)

	upload, ok := Normalize(map[string]string{
		"Fecha":         "2026-03-15",
		"CantidadHoras": "2.5",
		"Actividad":     "Soporte",
		"Detalle":       "Revisión de tickets",
		"Mes":           "Marzo",
	}, SourceUpload)
	require.True(t, ok)
	assert.Equal(t, want, upload)

	positional, ok := NormalizeColumns([]string{"2026-03-15", "Marzo", "Soporte", "Revisión de tickets", "2.5"})
	require.True(t, ok)
	assert.Equal(t, want, positional)
}

func TestNormalizeSkipsRowsWithoutDate(t *testing.T) {
	_, ok := Normalize(map[string]string{
		"Fecha":         "   ",
		"CantidadHoras": "3",
		"Actividad":     "Formación",
	}, SourceUpload)
	assert.False(t, ok)

	_, ok = NormalizeColumns([]string{"", "Marzo", "Soporte", "", "1"})
	assert.False(t, ok)
}

func TestNormalizeCoercesBadHoursToZero(t *testing.T) {
	rec, ok := Normalize(map[string]string{
		"Fecha":         "2026-03-15",
		"CantidadHoras": "no-numeric",
	}, SourceUpload)
	require.True(t, ok)
	assert.Zero(t, rec.Hours)
}

func TestNormalizeUnknownKind(t *testing.T) {
	_, ok := Normalize(map[string]string{"Fecha": "2026-03-15"}, SourceKind("sftp"))
	assert.False(t, ok)
}

func TestNormalizeColumnsShortRow(t *testing.T) {
	rec, ok := NormalizeColumns([]string{"2026-03-15", "Marzo"})
	require.True(t, ok)
	assert.Equal(t, "2026-03-15", rec.Date)
	assert.Equal(t, "Marzo", rec.Month)
	assert.Empty(t, rec.Activity)
	assert.Empty(t, rec.Detail)
	assert.Zero(t, rec.Hours)
}
