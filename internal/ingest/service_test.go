package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitacora/internal/core"
	"bitacora/internal/log"
	"bitacora/internal/store"
)

type stubSource struct {
	name    string
	recs    []core.Record
	skipped int
	err     error
	calls   int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context) ([]core.Record, int, error) {
	s.calls++
	return s.recs, s.skipped, s.err
}

func discardLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newTestService(st store.RecordStore) *Service {
	return NewService(st, nil, discardLogger(), 5*time.Second)
}

func TestLoadFromAppendsBatch(t *testing.T) {
	st := store.NewMemory()
	svc := newTestService(st)

	src := &stubSource{
		name: "remote-csv",
		recs: []core.Record{
			{Date: "2026-03-01", Hours: 2, Activity: "Soporte", Month: "Marzo"},
			{Date: "2026-03-02", Hours: 3, Activity: "Desarrollo", Month: "Marzo"},
		},
		skipped: 1,
	}

	res, err := svc.LoadFrom(context.Background(), src)
	require.NoError(t, err)
	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, "remote-csv", res.Source)
	assert.Equal(t, 2, res.Appended)
	assert.Equal(t, 1, res.Skipped)

	recs, err := st.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "2026-03-01", recs[0].Date)
	assert.Equal(t, "2026-03-02", recs[1].Date)
}

func TestLoadFromFailureLeavesStoreUntouched(t *testing.T) {
	st := store.NewMemory()
	svc := newTestService(st)

	src := &stubSource{name: "remote-csv", err: errors.New("endpoint down")}

	_, err := svc.LoadFrom(context.Background(), src)
	require.Error(t, err)

	n, err := st.Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadFromServesCachedPayload(t *testing.T) {
	st := store.NewMemory()
	svc := newTestService(st)

	src := &stubSource{
		name: "remote-csv",
		recs: []core.Record{{Date: "2026-03-01", Hours: 1}},
	}

	_, err := svc.LoadFrom(context.Background(), src)
	require.NoError(t, err)
	_, err = svc.LoadFrom(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls, "second load should hit the cache")

	n, err := st.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n, "each load appends its batch")
}

func TestLoadUploadAppendsInOrder(t *testing.T) {
	st := store.NewMemory()
	svc := newTestService(st)

	payload := strings.Join([]string{
		"Fecha,CantidadHoras,Actividad,Detalle,Mes",
		"2026-03-01,1,Soporte,,Marzo",
		",9,SinFecha,,Marzo",
		"2026-03-02,2,Desarrollo,,Marzo",
	}, "\n")

	res, err := svc.LoadUpload(context.Background(), strings.NewReader(payload), "marzo.csv")
	require.NoError(t, err)
	assert.Equal(t, string(SourceUpload), res.Source)
	assert.Equal(t, 2, res.Appended)
	assert.Equal(t, 1, res.Skipped)

	recs, err := st.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Soporte", recs[0].Activity)
	assert.Equal(t, "Desarrollo", recs[1].Activity)
}

func TestLoadUploadEmptyBatch(t *testing.T) {
	st := store.NewMemory()
	svc := newTestService(st)

	res, err := svc.LoadUpload(context.Background(), strings.NewReader("Fecha,CantidadHoras\n"), "vacio.csv")
	require.NoError(t, err)
	assert.Zero(t, res.Appended)

	n, err := st.Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
