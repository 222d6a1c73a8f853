package server

import (
	"context"

	"github.com/tanmay/corebank/backend/internal/warehouse"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// WarehouseHealthService verifies warehouse connectivity as part of health
// checks.
type WarehouseHealthService struct {
	Client warehouse.Client
}

// Probe implements the HealthService interface.
func (s WarehouseHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.VerifyConnectivity(ctx)
}
