package handlers

import (
	"net/http"

	"github.com/ndewijer/finpilot-backend/internal/api/response"
	"github.com/ndewijer/finpilot-backend/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// Health checks the health of the system and database connectivity.
// Missing provider keys are reported but do not make the service unhealthy.
//
// Endpoint: GET /api/system/health
// Response: 200 OK with model.HealthStatus
// Error: 503 Service Unavailable if the database is unreachable
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	status := h.systemService.CheckHealth()
	if status.Status != "healthy" {
		response.RespondJSON(w, http.StatusServiceUnavailable, status)
		return
	}

	response.RespondJSON(w, http.StatusOK, status)
}
