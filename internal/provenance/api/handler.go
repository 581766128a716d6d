package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/agritrace-lab/agritrace/internal/api/v1"
	httperr "github.com/agritrace-lab/agritrace/internal/core/errors"
	"github.com/agritrace-lab/agritrace/internal/core/storage"
	"github.com/agritrace-lab/agritrace/internal/ledger"
	"github.com/agritrace-lab/agritrace/internal/provenance"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgBatchNotFound  = "Batch not found"
)

// Handler handles provenance HTTP requests.
type Handler struct {
	core             *provenance.Service
	maxBodySizeBytes int
}

// NewHandler creates a new provenance API handler.
func NewHandler(core *provenance.Service, maxBodySizeBytes int) *Handler {
	return &Handler{
		core:             core,
		maxBodySizeBytes: maxBodySizeBytes,
	}
}

// HandleCreateBatch handles POST /v1/batches.
func (h *Handler) HandleCreateBatch(c *gin.Context) {
	var req v1.CreateBatchRequest
	if !h.bindJSON(c, &req) {
		return
	}

	batch, err := h.core.CreateBatch(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, provenance.ErrGenesisIncomplete) && batch != nil {
			// The batch is durably created; surface the partial state
			// rather than pretending the whole operation failed cleanly.
			c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpGenesisIncompleteError,
				Message:   err.Error(),
				Details:   map[string]interface{}{"batch_id": batch.ID},
			})
			return
		}
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, batch)
}

// HandleListBatches handles GET /v1/batches?producer_id=...
func (h *Handler) HandleListBatches(c *gin.Context) {
	batches, err := h.core.ListBatches(c.Request.Context(), c.Query("producer_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	if batches == nil {
		batches = []*v1.Batch{}
	}
	c.JSON(http.StatusOK, gin.H{"batches": batches})
}

// HandleGetBatch handles GET /v1/batches/{id}.
func (h *Handler) HandleGetBatch(c *gin.Context) {
	trace, err := h.core.GetTrace(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trace.Batch)
}

// HandleAppendEvent handles POST /v1/batches/{id}/events.
func (h *Handler) HandleAppendEvent(c *gin.Context) {
	batchID := c.Param("id")

	var req v1.AppendEventRequest
	if !h.bindJSON(c, &req) {
		return
	}

	event, err := h.core.AppendEvent(c.Request.Context(), batchID, &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	slog.Info("Appended custody event",
		"batch_id", batchID,
		"event_id", event.ID,
		"actor_role", event.ActorRole)
	c.JSON(http.StatusCreated, event)
}

// HandleTrace handles GET /v1/batches/{id}/trace.
func (h *Handler) HandleTrace(c *gin.Context) {
	trace, err := h.core.GetTrace(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trace)
}

// HandleVerify handles GET /v1/batches/{id}/verify.
func (h *Handler) HandleVerify(c *gin.Context) {
	results, err := h.core.VerifyTrace(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	valid := true
	for _, r := range results {
		if !r.Valid {
			valid = false
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid, "events": results})
}

// bindJSON reads the request body under the configured size limit and
// decodes it into dst. Writes the error response and returns false on
// failure.
func (h *Handler) bindJSON(c *gin.Context, dst interface{}) bool {
	maxBytes := int64(h.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   msgReadBodyFailed,
		})
		return false
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		c.JSON(http.StatusRequestEntityTooLarge, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Request body exceeds maximum allowed size",
			Details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		})
		return false
	}

	if err := json.Unmarshal(bodyBytes, dst); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   msgInvalidJSON,
		})
		return false
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	return true
}

// writeError maps core errors onto the HTTP error taxonomy. Every
// failure kind stays distinct and inspectable; nothing collapses into
// a generic catch-all except genuinely unclassified errors.
func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *v1.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   verr.Error(),
			Details:   verr.Details(),
		})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpNotFoundError,
			Message:   msgBatchNotFound,
		})
	case errors.Is(err, storage.ErrDuplicate):
		c.JSON(http.StatusConflict, httperr.ErrorResponse{
			ErrorType: httperr.HttpDuplicateError,
			Message:   err.Error(),
		})
	case errors.Is(err, ledger.ErrUnavailable):
		slog.Error("Ledger unavailable", "error", err)
		c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
			ErrorType: httperr.HttpLedgerUnavailableError,
			Message:   err.Error(),
		})
	case errors.Is(err, provenance.ErrPersistence):
		slog.Error("Store write failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpPersistenceError,
			Message:   err.Error(),
		})
	default:
		slog.Error("Unhandled provenance error", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   err.Error(),
		})
	}
}
