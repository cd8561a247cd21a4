package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRemoteCSVSkipsHeaderAndDatelessRows(t *testing.T) {
	payload := strings.Join([]string{
		"Fecha,Mes,Actividad,Detalle,CantidadHoras",
		"2026-03-01,Marzo,Soporte,Tickets,2",
		",Marzo,Hueco,,1",
		"2026-03-02,Marzo,Desarrollo,Feature,3.5",
		",,,,",
	}, "\n")

	recs, skipped, err := ParseRemoteCSV(strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, recs, 2)

	assert.Equal(t, "2026-03-01", recs[0].Date)
	assert.Equal(t, "Soporte", recs[0].Activity)
	assert.Equal(t, 2.0, recs[0].Hours)
	assert.Equal(t, "2026-03-02", recs[1].Date)
	assert.Equal(t, 3.5, recs[1].Hours)
}

func TestParseUploadCSVByHeaderName(t *testing.T) {
	payload := strings.Join([]string{
		"Detalle,Fecha,CantidadHoras,Actividad,Mes",
		"Tickets,2026-03-01,2,Soporte,Marzo",
		"Feature,2026-03-02,\"2,5\",Desarrollo,Marzo",
	}, "\n")

	recs, skipped, err := ParseUploadCSV(strings.NewReader(payload))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, recs, 2)

	assert.Equal(t, "2026-03-01", recs[0].Date)
	assert.Equal(t, "Tickets", recs[0].Detail)
	assert.Equal(t, 2.5, recs[1].Hours)
	assert.Equal(t, "Desarrollo", recs[1].Activity)
}

func TestParseUploadCSVPreservesRowOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString("Fecha,CantidadHoras,Actividad,Detalle,Mes\n")
	dates := []string{"2026-01-05", "2026-01-03", "2026-01-09", "2026-01-01"}
	for _, d := range dates {
		b.WriteString(d + ",1,Soporte,,Enero\n")
	}

	recs, skipped, err := ParseUploadCSV(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, recs, len(dates))
	for i, d := range dates {
		assert.Equal(t, d, recs[i].Date, "row %d out of order", i)
	}
}

func TestParseUploadCSVEmptyStream(t *testing.T) {
	recs, skipped, err := ParseUploadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Zero(t, skipped)
}

func TestParseRemoteCSVMalformed(t *testing.T) {
	_, _, err := ParseRemoteCSV(strings.NewReader("a,\"unterminated\nb,2"))
	assert.Error(t, err)
}
