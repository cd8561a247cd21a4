package http

import (
	"net/http"
	"net/url"

	"bitacora/internal/core"
	"bitacora/internal/log"
	"bitacora/internal/view"
)

// recordRow is the template model for one table row.
type recordRow struct {
	Index    int
	Date     string
	Hours    string
	Activity string
	Detail   string
	Month    string

	HasEvidence bool
	EvidenceRef string

	Editing      bool
	PendDate     string
	PendHours    string
	PendActivity string
	PendDetail   string
	PendMonth    string
}

// recordsView is the template model for the records partial.
type recordsView struct {
	Rows       []recordRow
	Count      int
	TotalHours string

	Page      int
	PageCount int
	HasPrev   bool
	HasNext   bool
	PrevPage  int
	NextPage  int
	Pages     []int

	Fecha     string
	Mes       string
	Actividad string

	// Query carries the active filters so pagination links keep them.
	Query string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := struct {
		RemoteEnabled bool
	}{
		RemoteEnabled: s.remote != nil,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err.Error(), "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleRecordsPartial renders the filtered, paginated records table.
func (s *Server) handleRecordsPartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	logger := log.FromContext(r.Context())

	criteria := parseCriteria(r)
	page := parsePage(r)

	records, err := s.store.Records(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Record listing failed", log.FieldError, err.Error())
		_, _ = w.Write([]byte(`<div class="placeholder">Error cargando registros</div>`))
		return
	}

	projection := view.Build(records, criteria, s.pageSize, page)
	data := s.buildRecordsView(criteria, projection)

	if err := s.templates.ExecuteTemplate(w, "records.html", data); err != nil {
		logger.ErrorContext(r.Context(), "Records template execution failed",
			log.FieldError, err.Error(), "template", "records.html", log.FieldPage, projection.Page)
		_, _ = w.Write([]byte(`<div class="placeholder">Error mostrando registros</div>`))
	}
}

func (s *Server) buildRecordsView(criteria core.Criteria, p view.Projection) recordsView {
	data := recordsView{
		Count:      len(p.Filtered),
		TotalHours: formatHours(p.TotalHours),
		Page:       p.Page,
		PageCount:  p.PageCount,
		HasPrev:    p.HasPrev(),
		HasNext:    p.HasNext(),
		PrevPage:   p.Page - 1,
		NextPage:   p.Page + 1,
		Pages:      p.Pages(),
		Fecha:      criteria.Date,
		Mes:        criteria.Month,
		Actividad:  criteria.Activity,
		Query:      encodeCriteria(criteria),
	}

	for _, row := range p.Slice {
		rr := recordRow{
			Index:    row.Index,
			Date:     row.Record.Date,
			Hours:    formatHours(row.Record.Hours),
			Activity: row.Record.Activity,
			Detail:   row.Record.Detail,
			Month:    row.Record.Month,
		}
		if row.Record.HasEvidence() {
			rr.HasEvidence = true
			rr.EvidenceRef = *row.Record.Evidence
		}
		if pending, ok := s.sessions.Pending(row.Index); ok {
			rr.Editing = true
			rr.PendDate = pending.Date
			rr.PendHours = pending.Hours
			rr.PendActivity = pending.Activity
			rr.PendDetail = pending.Detail
			rr.PendMonth = pending.Month
		}
		data.Rows = append(data.Rows, rr)
	}
	return data
}

func encodeCriteria(c core.Criteria) string {
	q := url.Values{}
	if c.Date != "" {
		q.Set("fecha", c.Date)
	}
	if c.Month != "" {
		q.Set("mes", c.Month)
	}
	if c.Activity != "" {
		q.Set("actividad", c.Activity)
	}
	if len(q) == 0 {
		return ""
	}
	return "&" + q.Encode()
}
