// Package app provides application use cases.
package app

import (
	"context"
	"time"
)

// Clock provides time for deterministic testing.
type Clock interface {
	Now() time.Time
}

// HealthUsecase defines the health check use case.
type HealthUsecase interface {
	Handle(ctx context.Context) (HealthResult, error)
}

// HealthResult represents the health check response.
type HealthResult struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Events    int       `json:"events"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// CatalogInfo is the catalog surface the health check reads.
type CatalogInfo interface {
	Len() int
	UpdatedAt() time.Time
}

// HealthService implements HealthUsecase.
type HealthService struct {
	Version string
	Catalog CatalogInfo
}

// Handle returns the current health status.
func (s HealthService) Handle(ctx context.Context) (HealthResult, error) {
	result := HealthResult{
		Status:  "ok",
		Version: s.Version,
	}
	if s.Catalog != nil {
		result.Events = s.Catalog.Len()
		result.UpdatedAt = s.Catalog.UpdatedAt()
	}
	return result, nil
}
