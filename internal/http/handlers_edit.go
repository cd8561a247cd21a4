package http

import (
	"errors"
	"io"
	"net/http"
	"path"

	"bitacora/internal/core"
	"bitacora/internal/evidence"
	"bitacora/internal/log"
	"bitacora/internal/session"
)

// handleBeginEdit opens an edit session for a row. The refreshed table
// renders the row as inputs seeded with its current values.
func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	index, err := parseIndex(r)
	if err != nil {
		BadRequestError("Índice no válido").Write(w)
		return
	}

	if _, err := s.sessions.BeginEdit(r.Context(), index); err != nil {
		switch {
		case errors.Is(err, session.ErrAlreadyEditing):
			ConflictError("El registro ya está en edición").Write(w)
		case errors.Is(err, core.ErrIndexOutOfRange):
			NotFoundError("Registro no encontrado").Write(w)
		default:
			logger.ErrorContext(r.Context(), "Begin edit failed",
				log.FieldError, err.Error(), log.FieldIndex, index)
			InternalServerError("Error al iniciar la edición").Write(w)
		}
		return
	}

	logger.InfoContext(r.Context(), "Edit session opened", log.FieldIndex, index)

	NewHTMXResponse().
		TriggerViewRefresh().
		Write(w)
}

// handleCommitEdit applies the posted values to the record and closes
// the session. Values for fields the form omits keep their pending
// capture; a malformed hours value coerces to zero.
func (s *Server) handleCommitEdit(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	index, err := parseIndex(r)
	if err != nil {
		BadRequestError("Índice no válido").Write(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		BadRequestError("Formato de solicitud no válido").Write(w)
		return
	}

	if err := s.sessions.Commit(r.Context(), index, editChanges(r)); err != nil {
		switch {
		case errors.Is(err, session.ErrNoSession):
			ConflictError("El registro no está en edición").Write(w)
		case errors.Is(err, core.ErrIndexOutOfRange):
			NotFoundError("Registro no encontrado").Write(w)
		default:
			logger.ErrorContext(r.Context(), "Commit edit failed",
				log.FieldError, err.Error(), log.FieldIndex, index)
			InternalServerError("Error al guardar los cambios").Write(w)
		}
		return
	}

	logger.InfoContext(r.Context(), "Edit committed", log.FieldIndex, index)

	if err := s.events.PublishRecordEdited(r.Context(), index); err != nil {
		logger.WarnContext(r.Context(), "Edit event publish failed",
			log.FieldError, err.Error(), log.FieldIndex, index)
	}

	NewHTMXResponse().
		TriggerRecordEdited(index).
		Write(w)
}

// handleAttachEvidence stores an uploaded attachment and links it to
// the record. Attaching again replaces the reference, never the record.
func (s *Server) handleAttachEvidence(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	index, err := parseIndex(r)
	if err != nil {
		BadRequestError("Índice no válido").Write(w)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		BadRequestError("Archivo no válido").Write(w)
		return
	}

	file, header, err := r.FormFile("evidencia")
	if err != nil {
		BadRequestError("Falta el archivo de evidencia").Write(w)
		return
	}
	defer file.Close()

	ref, err := s.evidence.Save(file, header.Filename)
	if err != nil {
		logger.ErrorContext(r.Context(), "Evidence save failed",
			log.FieldError, err.Error(), log.FieldIndex, index)
		InternalServerError("Error al guardar la evidencia").Write(w)
		return
	}

	if err := s.store.SetEvidence(r.Context(), index, ref); err != nil {
		if errors.Is(err, core.ErrIndexOutOfRange) {
			NotFoundError("Registro no encontrado").Write(w)
			return
		}
		logger.ErrorContext(r.Context(), "Evidence link failed",
			log.FieldError, err.Error(), log.FieldIndex, index)
		InternalServerError("Error al vincular la evidencia").Write(w)
		return
	}

	logger.InfoContext(r.Context(), "Evidence attached",
		log.FieldIndex, index, log.FieldEvidenceRef, ref)

	NewHTMXResponse().
		TriggerEvidenceAttached(index).
		Write(w)
}

// handleServeEvidence streams a stored attachment.
func (s *Server) handleServeEvidence(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	rc, err := s.evidence.Open(evidence.RefPrefix + path.Base(name))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer rc.Close()

	w.Header().Set("Cache-Control", "private, max-age=86400")
	_, _ = io.Copy(w, rc)
}
