package wikigate

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// HealthService provides health monitoring functionality as an extension to Service
type HealthService struct {
	*Service
}

// NewHealthService creates a new health service extension
func NewHealthService(service *Service) *HealthService {
	return &HealthService{Service: service}
}

// Health performs a comprehensive health check of the database connection.
// Returns detailed status including latency, connection pool statistics, and error information.
func (hs *HealthService) Health(ctx context.Context) dbkit.HealthStatus {
	// Check if we have a DBKit instance
	if db, ok := hs.db.(*dbkit.DBKit); ok {
		return db.Health(ctx)
	}

	// Some other IDB implementation: do a basic ping
	return dbkit.HealthStatus{
		Healthy: hs.IsHealthy(ctx),
		Error:   "Limited health check - not a DBKit instance",
	}
}

// IsHealthy performs a simple health check of the database connection.
// Returns true if the database is reachable, false otherwise.
func (hs *HealthService) IsHealthy(ctx context.Context) bool {
	// Check if we have a DBKit instance
	if db, ok := hs.db.(*dbkit.DBKit); ok {
		return db.IsHealthy(ctx)
	}

	// Some other IDB implementation: try to ping
	var count int
	err := hs.db.NewSelect().Model((*struct{})(nil)).ColumnExpr("1").Limit(1).Scan(ctx, &count)
	return err == nil
}

// GetPoolStats returns connection pool statistics for monitoring.
// Returns zero values if the database instance doesn't support pool statistics.
func (hs *HealthService) GetPoolStats() dbkit.PoolStats {
	// Check if we have a DBKit instance
	if db, ok := hs.db.(*dbkit.DBKit); ok {
		sqlStats := db.Stats()
		return dbkit.PoolStatsFromSQL(sqlStats)
	}

	// Return zero values for non-DBKit instances
	return dbkit.PoolStats{}
}

// Ping performs a basic connectivity test to the database.
// Returns an error if the database is not reachable.
func (hs *HealthService) Ping(ctx context.Context) error {
	// Use a simple query to test connectivity
	var result int
	return hs.db.NewSelect().Model((*struct{})(nil)).ColumnExpr("1").Limit(1).Scan(ctx, &result)
}

// GateHealthStatus combines database reachability with authorization gate
// metrics into a single status for readiness endpoints.
type GateHealthStatus struct {
	Database    dbkit.HealthStatus `json:"database"`
	GateHealthy bool               `json:"gate_healthy"`
	Gate        GateMetrics        `json:"gate"`
}

// GateHealth returns the combined status of the database and the decision
// gate. The overall system is healthy only when both are.
func (hs *HealthService) GateHealth(ctx context.Context) GateHealthStatus {
	return GateHealthStatus{
		Database:    hs.Health(ctx),
		GateHealthy: hs.IsGateHealthy(),
		Gate:        hs.GetGateMetrics(),
	}
}

// Healthy reports whether both the database and the decision gate are within
// acceptable bounds.
func (hs *HealthService) Healthy(ctx context.Context) bool {
	return hs.IsHealthy(ctx) && hs.IsGateHealthy()
}
