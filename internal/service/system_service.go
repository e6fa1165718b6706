package service

import (
	"database/sql"

	"github.com/ndewijer/finpilot-backend/internal/database"
	"github.com/ndewijer/finpilot-backend/internal/model"
)

// SystemService handles system-related operations
type SystemService struct {
	db      *sql.DB
	news    NewsProvider
	advisor Advisor
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB, news NewsProvider, advisor Advisor) *SystemService {
	return &SystemService{
		db:      db,
		news:    news,
		advisor: advisor,
	}
}

// CheckHealth reports the database state and whether the external providers are configured.
// Only a database failure makes the service unhealthy.
func (s *SystemService) CheckHealth() model.HealthStatus {
	status := model.HealthStatus{
		Status:   "healthy",
		Database: "connected",
		Quotes:   configuredState(s.news != nil && s.news.HasAPIKey()),
		Advisor:  configuredState(s.advisor != nil && s.advisor.Configured()),
	}

	if err := database.HealthCheck(s.db); err != nil {
		status.Status = "unhealthy"
		status.Database = "disconnected"
		status.Error = err.Error()
	}

	return status
}

func configuredState(ok bool) string {
	if ok {
		return "configured"
	}
	return "not_configured"
}
