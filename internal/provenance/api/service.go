package api

import (
	"github.com/gin-gonic/gin"

	"github.com/agritrace-lab/agritrace/internal/provenance"
)

// Service provides the provenance HTTP API.
type Service struct {
	core             *provenance.Service
	maxBodySizeBytes int
}

// NewService creates a new provenance API service.
func NewService(core *provenance.Service, maxBodySizeMB int) *Service {
	if core == nil {
		panic("api: provenance core must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		core:             core,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the provenance API routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	handler := NewHandler(s.core, s.maxBodySizeBytes)

	batches := r.Group("/v1/batches")
	{
		batches.POST("", handler.HandleCreateBatch)
		batches.GET("", handler.HandleListBatches)
		batches.GET("/:id", handler.HandleGetBatch)
		batches.POST("/:id/events", handler.HandleAppendEvent)
		batches.GET("/:id/trace", handler.HandleTrace)
		batches.GET("/:id/verify", handler.HandleVerify)
	}
}
