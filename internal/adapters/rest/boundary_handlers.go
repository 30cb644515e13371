package rest

import (
	"encoding/json"
	"net/http"
	"real-estate-system/internal/contextkeys"
	"real-estate-system/internal/core/port"
	"real-estate-system/internal/core/port/usecases_port"
	"strings"
)

// MaxBatchAddresses - предел адресов в одном пакетном запросе
const MaxBatchAddresses = 200

const defaultSessionID = "default"

type BoundaryHandler struct {
	resolveUC      usecases_port.ResolveBoundaryUseCasePort
	resolveBatchUC usecases_port.ResolveBoundariesUseCasePort
}

func NewBoundaryHandler(resolveUC usecases_port.ResolveBoundaryUseCasePort, resolveBatchUC usecases_port.ResolveBoundariesUseCasePort) *BoundaryHandler {
	return &BoundaryHandler{
		resolveUC:      resolveUC,
		resolveBatchUC: resolveBatchUC,
	}
}

// sessionID - сессия рендеринга: X-Session-ID, затем ?document_id=, иначе общая
func sessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Session-ID")); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.URL.Query().Get("document_id")); id != "" {
		return id
	}
	return defaultSessionID
}

// GetBoundary - GET /boundaries?address=...
// Неразрешенный адрес - это не ошибка, а результат с resolved=false.
func (h *BoundaryHandler) GetBoundary(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetBoundary"})

	address := r.URL.Query().Get("address")
	if strings.TrimSpace(address) == "" {
		logger.Warn("Query parameter 'address' is required", nil)
		WriteJSONError(w, http.StatusBadRequest, "Query parameter 'address' is required")
		return
	}

	result := h.resolveUC.Execute(r.Context(), sessionID(r), address)
	RespondWithJSON(w, http.StatusOK, result)
}

// ResolveBatch - POST /boundaries/batch
func (h *BoundaryHandler) ResolveBatch(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ResolveBatch"})

	var req BatchBoundariesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode batch boundaries request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Addresses) > MaxBatchAddresses {
		WriteJSONError(w, http.StatusBadRequest, "Too many addresses in one batch")
		return
	}

	session := sessionID(r)
	handlerLogger := logger.WithFields(port.Fields{
		"session_id": session,
		"addresses":  len(req.Addresses),
	})

	results, err := h.resolveBatchUC.Execute(r.Context(), session, req.Addresses)
	if err != nil {
		handlerLogger.Warn("Batch resolution cancelled", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusServiceUnavailable, "Batch resolution was cancelled")
		return
	}

	handlerLogger.Info("Batch resolved", nil)
	RespondWithJSON(w, http.StatusOK, BatchBoundariesResponse{Results: results})
}
