package http

import (
	"html/template"
	"net/http"
	"strconv"

	"bitacora/internal/ingest"
	"bitacora/internal/log"
)

const maxUploadBytes = 10 << 20

// handleCreateRecord appends a single record from the manual entry form.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		logger.ErrorContext(r.Context(), "Parse form error", log.FieldError, err.Error(), log.FieldPath, r.URL.Path)
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}

	raw := map[string]string{
		"fecha":         sanitizeInput(r.Form.Get("fecha")),
		"cantidadHoras": sanitizeInput(r.Form.Get("cantidadHoras")),
		"actividad":     sanitizeInput(r.Form.Get("actividad")),
		"detalle":       sanitizeInput(r.Form.Get("detalle")),
		"mes":           sanitizeInput(r.Form.Get("mes")),
	}

	rec, ok := ingest.Normalize(raw, ingest.SourceManual)
	if !ok {
		UnprocessableEntityError("La fecha es obligatoria").Write(w)
		return
	}

	index, err := s.store.Append(r.Context(), rec)
	if err != nil {
		logger.ErrorContext(r.Context(), "Record append error",
			log.FieldError, err.Error(), log.FieldActivity, rec.Activity)
		InternalServerError("Error al guardar el registro").Write(w)
		return
	}

	logger.InfoContext(r.Context(), "Record created",
		log.FieldIndex, index, log.FieldActivity, rec.Activity, log.FieldHours, rec.Hours)

	NewHTMXResponse().
		TriggerRecordCreated(index).
		TriggerFormReset().
		BodyHTML(`<div class="success">Registro guardado: ` +
			template.HTMLEscapeString(rec.Activity) +
			` (` + template.HTMLEscapeString(formatHours(rec.Hours)) + ` h)</div>`).
		Write(w)
}

// handleUpload ingests an uploaded CSV file as one batch.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.ErrorContext(r.Context(), "Parse multipart error", log.FieldError, err.Error())
		BadRequestError("Archivo no válido").Write(w)
		return
	}

	file, header, err := r.FormFile("archivo")
	if err != nil {
		BadRequestError("Falta el archivo CSV").Write(w)
		return
	}
	defer file.Close()

	res, err := s.ingestor.LoadUpload(r.Context(), file, header.Filename)
	if err != nil {
		logger.ErrorContext(r.Context(), "Upload ingestion failed",
			log.FieldError, err.Error(), log.FieldFile, header.Filename)
		UnprocessableEntityError("No se pudo procesar el archivo CSV").Write(w)
		return
	}

	s.writeBatchResult(w, res)
}

// handleImport loads the configured remote sheet as one batch.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	if s.remote == nil {
		NotFoundError("No hay origen remoto configurado").Write(w)
		return
	}

	res, err := s.ingestor.LoadFrom(r.Context(), s.remote)
	if err != nil {
		logger.ErrorContext(r.Context(), "Remote import failed",
			log.FieldError, err.Error(), log.FieldSource, s.remote.Name())
		ErrorResponse(http.StatusBadGateway, "No se pudo cargar la hoja remota").Write(w)
		return
	}

	s.writeBatchResult(w, res)
}

func (s *Server) writeBatchResult(w http.ResponseWriter, res ingest.Result) {
	body := `<div class="success">Registros cargados: ` + strconv.Itoa(res.Appended)
	if res.Skipped > 0 {
		body += ` (omitidos sin fecha: ` + strconv.Itoa(res.Skipped) + `)`
	}
	body += `</div>`

	NewHTMXResponse().
		TriggerBatchIngested(res.BatchID, res.Source, res.Appended, res.Skipped).
		BodyHTML(body).
		Write(w)
}

// editableFields maps posted form values to store field updates.
func editChanges(r *http.Request) map[string]string {
	changes := make(map[string]string)
	for form, field := range map[string]string{
		"fecha":         "date",
		"cantidadHoras": "hours",
		"actividad":     "activity",
		"detalle":       "detail",
		"mes":           "month",
	} {
		if r.Form.Has(form) {
			changes[field] = sanitizeInput(r.Form.Get(form))
		}
	}
	return changes
}

