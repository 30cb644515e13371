package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"real-estate-system/internal/adapters/notifier"
	"real-estate-system/internal/adapters/stream"
	"real-estate-system/internal/contextkeys"
	"real-estate-system/internal/core/domain"
	"real-estate-system/internal/core/port"
	"real-estate-system/internal/core/port/usecases_port"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type DocumentHandler struct {
	ingestUC   usecases_port.IngestListingsUseCasePort
	getUC      usecases_port.GetDocumentUseCasePort
	navigateUC usecases_port.NavigateDocumentUseCasePort
	notifier   *notifier.SSENotifier
}

func NewDocumentHandler(
	ingestUC usecases_port.IngestListingsUseCasePort,
	getUC usecases_port.GetDocumentUseCasePort,
	navigateUC usecases_port.NavigateDocumentUseCasePort,
	notifier *notifier.SSENotifier,
) *DocumentHandler {
	return &DocumentHandler{
		ingestUC:   ingestUC,
		getUC:      getUC,
		navigateUC: navigateUC,
		notifier:   notifier,
	}
}

// CreateDocument - POST /documents, тело - NDJSON событий инструментов.
// Клиент может передать ?document_id=, чтобы подписаться на SSE до начала загрузки.
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateDocument"})

	documentID := uuid.New()
	if raw := r.URL.Query().Get("document_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			logger.Warn("Invalid document_id query parameter", port.Fields{"provided_id": raw})
			WriteJSONError(w, http.StatusBadRequest, "Invalid 'document_id' query parameter")
			return
		}
		documentID = parsed
	}

	h.ingest(w, r, logger, documentID, domain.IngestionCreate)
}

// UpdateDocument - POST /documents/{documentID}/updates
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "UpdateDocument"})

	documentID, ok := parseDocumentID(w, r, logger)
	if !ok {
		return
	}
	h.ingest(w, r, logger, documentID, domain.IngestionUpdate)
}

func (h *DocumentHandler) ingest(w http.ResponseWriter, r *http.Request, logger port.LoggerPort, documentID uuid.UUID, kind domain.IngestionKind) {
	handlerLogger := logger.WithFields(port.Fields{"document_id": documentID.String()})
	handlerLogger.Info("Processing ingestion request", nil)

	report, err := h.ingestUC.Execute(r.Context(), documentID, kind, stream.NewDecoderStream(r.Body))
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrStreamInterrupted):
		// версии финализированы, клиент узнает об обрыве по флагу interrupted
		handlerLogger.Warn("Ingestion finished on interrupted stream", port.Fields{"error": err.Error()})
	case errors.Is(err, domain.ErrDocumentNotFound):
		handlerLogger.Warn("Update requested for unknown document", nil)
		WriteJSONError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, domain.ErrIngestionAborted):
		handlerLogger.Info("Ingestion aborted by producer", nil)
		RespondWithJSON(w, http.StatusConflict, toIngestionResponse(documentID, report))
		return
	case errors.Is(err, context.Canceled):
		handlerLogger.Info("Client went away, ingestion abandoned", nil)
		return
	default:
		handlerLogger.Error("IngestListings use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to ingest listings")
		return
	}

	status := http.StatusOK
	if kind == domain.IngestionCreate {
		status = http.StatusCreated
	}
	handlerLogger.Info("Ingestion finished", port.Fields{"versions_appended": report.VersionsAppended})
	RespondWithJSON(w, status, toIngestionResponse(documentID, report))
}

// GetDocument - GET /documents/{documentID}, текущая версия
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetDocument"})

	documentID, ok := parseDocumentID(w, r, logger)
	if !ok {
		return
	}

	doc, ok := h.loadDocument(w, r, logger, documentID)
	if !ok {
		return
	}

	latest, err := doc.Latest()
	if err != nil {
		WriteJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	RespondWithJSON(w, http.StatusOK, DocumentResponse{
		DocumentID:   documentID.String(),
		VersionCount: doc.Count(),
		Current:      toVersionResponse(latest),
	})
}

// GetVersion - GET /documents/{documentID}/versions/{index}
func (h *DocumentHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetVersion"})

	documentID, ok := parseDocumentID(w, r, logger)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid version index in URL")
		return
	}

	doc, ok := h.loadDocument(w, r, logger, documentID)
	if !ok {
		return
	}

	version, err := doc.Version(index)
	if err != nil {
		WriteJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusOK, toVersionResponse(version))
}

// NavigateDocument - GET /documents/{documentID}/navigate?from=&direction=prev|next
func (h *DocumentHandler) NavigateDocument(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "NavigateDocument"})

	documentID, ok := parseDocumentID(w, r, logger)
	if !ok {
		return
	}

	query := r.URL.Query()
	from, err := strconv.Atoi(query.Get("from"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Query parameter 'from' must be an integer")
		return
	}
	direction, err := domain.ParseNavigationDirection(query.Get("direction"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.navigateUC.Execute(r.Context(), documentID, from, direction)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) || errors.Is(err, domain.ErrVersionOutOfRange) {
			WriteJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		logger.Error("NavigateDocument use case failed", err, port.Fields{"document_id": documentID.String()})
		WriteJSONError(w, http.StatusInternalServerError, "Failed to navigate document")
		return
	}

	RespondWithJSON(w, http.StatusOK, NavigationResponse{
		VersionResponse:  toVersionResponse(result.Version),
		IsCurrentVersion: result.IsCurrentVersion,
	})
}

// SubscribeToDocument - GET /documents/{documentID}/subscribe, SSE-поток событий версий
func (h *DocumentHandler) SubscribeToDocument(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SubscribeToDocument"})

	documentID, ok := parseDocumentID(w, r, logger)
	if !ok {
		return
	}
	handlerLogger := logger.WithFields(port.Fields{"document_id": documentID.String()})

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteJSONError(w, http.StatusInternalServerError, "Streaming is not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := h.notifier.AddClient(documentID.String())
	defer h.notifier.RemoveClient(documentID.String(), clientChan)

	fmt.Fprint(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case frame := <-clientChan:
			if _, err := w.Write(frame); err != nil {
				handlerLogger.Error("Error writing to client, closing SSE connection", err, nil)
				return
			}
			flusher.Flush()

		case <-ticker.C:
			// строка с двоеточия - комментарий SSE, держит соединение живым
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			handlerLogger.Info("SSE client disconnected", nil)
			return
		}
	}
}

func (h *DocumentHandler) loadDocument(w http.ResponseWriter, r *http.Request, logger port.LoggerPort, documentID uuid.UUID) (*domain.Document, bool) {
	doc, err := h.getUC.Execute(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			WriteJSONError(w, http.StatusNotFound, err.Error())
			return nil, false
		}
		logger.Error("GetDocument use case failed", err, port.Fields{"document_id": documentID.String()})
		WriteJSONError(w, http.StatusInternalServerError, "Failed to load document")
		return nil, false
	}
	return doc, true
}

func parseDocumentID(w http.ResponseWriter, r *http.Request, logger port.LoggerPort) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "documentID")
	documentID, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("Invalid document ID format in URL", port.Fields{"provided_id": raw})
		WriteJSONError(w, http.StatusBadRequest, "Invalid document ID in URL")
		return uuid.Nil, false
	}
	return documentID, true
}
