package view

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitacora/internal/core"
)

func sampleRecords(n int, month func(i int) string) []core.Record {
	recs := make([]core.Record, n)
	for i := range recs {
		recs[i] = core.Record{
			Date:     fmt.Sprintf("2024-01-%02d", i%28+1),
			Hours:    1,
			Activity: fmt.Sprintf("actividad %d", i),
			Detail:   "detalle",
			Month:    month(i),
		}
	}
	return recs
}

func TestApplyFiltersPreservesOrder(t *testing.T) {
	recs := sampleRecords(10, func(i int) string {
		if i%2 == 0 {
			return "Enero"
		}
		return "Febrero"
	})

	rows := ApplyFilters(recs, core.Criteria{Month: "Enero"})
	require.Len(t, rows, 5)
	for i := 1; i < len(rows); i++ {
		assert.Greater(t, rows[i].Index, rows[i-1].Index, "filtering must not reorder")
	}
	assert.Equal(t, 0, rows[0].Index)
	assert.Equal(t, 8, rows[4].Index)
}

func TestApplyFiltersEmptyCriteriaIsIdentity(t *testing.T) {
	recs := sampleRecords(7, func(int) string { return "Enero" })
	rows := ApplyFilters(recs, core.Criteria{})
	require.Len(t, rows, 7)
	for i, row := range rows {
		assert.Equal(t, i, row.Index)
		assert.Equal(t, recs[i], row.Record)
	}
}

func TestTotalHoursOverFilteredSetNotPage(t *testing.T) {
	recs := make([]core.Record, 30)
	for i := range recs {
		recs[i] = core.Record{Date: "2024-01-01", Hours: 0.5, Month: "Enero"}
	}

	p := Build(recs, core.Criteria{Month: "Enero"}, 10, 2)
	assert.Equal(t, 15.0, p.TotalHours, "total covers all 30 matches, not the page of 10")
	assert.Len(t, p.Slice, 10)
}

func TestTotalHoursEmpty(t *testing.T) {
	assert.Equal(t, 0.0, TotalHours(nil))
}

func TestPaginateClampsStalePage(t *testing.T) {
	// 25 records, 12 matching "Enero", page size 10: pageCount 2 and a
	// stale request for page 5 repairs to the last page with 2 rows.
	recs := sampleRecords(25, func(i int) string {
		if i < 12 {
			return "Enero"
		}
		return "Febrero"
	})

	p := Build(recs, core.Criteria{Month: "Enero"}, 10, 5)
	assert.Equal(t, 2, p.PageCount)
	assert.Equal(t, 2, p.Page)
	require.Len(t, p.Slice, 2)
	assert.Equal(t, 10, p.Slice[0].Index)
	assert.Equal(t, 11, p.Slice[1].Index)
}

func TestPaginateBounds(t *testing.T) {
	cases := []struct {
		name           string
		rows           int
		pageSize       int
		requested      int
		wantCount      int
		wantPage       int
		wantSliceLen   int
	}{
		{"empty sequence coerces to page 1", 0, 10, 7, 0, 1, 0},
		{"exact multiple", 20, 10, 2, 2, 2, 10},
		{"partial last page", 21, 10, 3, 3, 3, 1},
		{"requested below 1 clamps up", 5, 10, 0, 1, 1, 5},
		{"negative request clamps up", 5, 10, -4, 1, 1, 5},
		{"single page", 3, 10, 1, 1, 1, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recs := sampleRecords(tc.rows, func(int) string { return "Enero" })
			rows := ApplyFilters(recs, core.Criteria{})
			count, page, slice := Paginate(rows, tc.pageSize, tc.requested)
			assert.Equal(t, tc.wantCount, count)
			assert.Equal(t, tc.wantPage, page)
			assert.Len(t, slice, tc.wantSliceLen)
			assert.GreaterOrEqual(t, page, 1)
			if count > 0 {
				assert.LessOrEqual(t, page, count)
			}
		})
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	recs := sampleRecords(25, func(i int) string {
		if i%3 == 0 {
			return "Enero"
		}
		return "Marzo"
	})
	c := core.Criteria{Month: "Enero", Activity: "actividad"}

	first := Build(recs, c, 10, 1)
	second := Build(recs, c, 10, 1)
	assert.Equal(t, first, second, "derivation must be pure")
}

func TestProjectionNavigation(t *testing.T) {
	recs := sampleRecords(25, func(int) string { return "Enero" })

	p := Build(recs, core.Criteria{}, 10, 1)
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.Equal(t, []int{1, 2, 3}, p.Pages())

	p = Build(recs, core.Criteria{}, 10, 3)
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())
}
