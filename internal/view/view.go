// Package view derives the user-facing projection of a record set:
// filtered subsequence, aggregate hours, and the paginated slice.
// Everything here is a pure function of its inputs; the projection is
// rebuilt from scratch after every store mutation.
package view

import (
	"bitacora/internal/core"
)

// Row pairs a record with its position in the originating store, so the
// rendering side can wire edit and attachment actions back to the right
// record after filtering has reordered nothing but dropped some rows.
type Row struct {
	Index  int
	Record core.Record
}

// Projection is the derived view state handed to the renderer. It is
// never stored.
type Projection struct {
	Filtered   []Row
	TotalHours float64
	PageCount  int
	Page       int // effective page, always in [1, max(PageCount,1)]
	Slice      []Row
}

// ApplyFilters returns the ordered subsequence of records matching all
// active predicates. Insertion order is preserved.
func ApplyFilters(records []core.Record, c core.Criteria) []Row {
	out := make([]Row, 0, len(records))
	for i, r := range records {
		if c.Matches(r) {
			out = append(out, Row{Index: i, Record: r})
		}
	}
	return out
}

// TotalHours sums the hours field over the whole sequence. Callers must
// pass the full filtered set, never a page slice: the displayed total
// reflects all matches independent of pagination.
func TotalHours(rows []Row) float64 {
	var total float64
	for _, r := range rows {
		total += r.Record.Hours
	}
	return total
}

// Paginate computes the page count for the sequence, repairs the
// requested page into the valid range and returns the corresponding
// slice. A requested page beyond the end clamps to the last page, and
// an empty sequence yields page 1 of 0 with an empty slice.
func Paginate(rows []Row, pageSize, requestedPage int) (pageCount, effectivePage int, slice []Row) {
	if pageSize < 1 {
		pageSize = 1
	}
	pageCount = (len(rows) + pageSize - 1) / pageSize

	effectivePage = requestedPage
	if effectivePage < 1 {
		effectivePage = 1
	}
	if pageCount > 0 && effectivePage > pageCount {
		effectivePage = pageCount
	}
	if pageCount == 0 {
		effectivePage = 1
	}

	start := (effectivePage - 1) * pageSize
	if start >= len(rows) {
		return pageCount, effectivePage, nil
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return pageCount, effectivePage, rows[start:end]
}

// Build runs the full filter, aggregate and paginate pipeline.
func Build(records []core.Record, c core.Criteria, pageSize, requestedPage int) Projection {
	filtered := ApplyFilters(records, c)
	pageCount, page, slice := Paginate(filtered, pageSize, requestedPage)
	return Projection{
		Filtered:   filtered,
		TotalHours: TotalHours(filtered),
		PageCount:  pageCount,
		Page:       page,
		Slice:      slice,
	}
}

// HasPrev reports whether a previous page exists. At page 1 navigation
// backwards is a no-op.
func (p Projection) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a further page exists.
func (p Projection) HasNext() bool { return p.Page < p.PageCount }

// Pages lists the page numbers 1..PageCount for rendering the pager.
func (p Projection) Pages() []int {
	out := make([]int, p.PageCount)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
