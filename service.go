package wikigate

import (
	"context"
	"time"

	"github.com/fernandezvara/dbkit"
)

// Service is the composition root: it wires the bun-backed stores into the
// Resolver, the ShareGate and the Guard, and exposes the management
// operations (wikis, documents, grants, shares, stars) on top.
//
// Error Handling:
// All database operations use dbkit's chainable error wrapping to provide
// detailed context about failed operations. Decision errors carry the
// wikigate taxonomy; use IsForbidden, IsNotFound, IsIntegrity, IsExpired and
// IsUnauthenticated to classify them.
//
// Example:
//
//	ops := wikigate.DefaultOperations()
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	service := wikigate.NewService(ops, db)
type Service struct {
	db       dbkit.IDB
	ops      *OperationSet
	resolver *Resolver
	shares   *ShareGate
	guard    *Guard
	monitor  *gateMonitor
}

// NewService creates a new WikiGate service. The service itself implements
// DocumentReader and MembershipReader, so the resolver and share gate read
// through the same database handle; higher-level callers depend only on the
// resolver's narrow interface.
func NewService(ops *OperationSet, db dbkit.IDB) *Service {
	s := &Service{
		db:      db,
		ops:     ops,
		monitor: newGateMonitor(),
	}
	s.resolver = NewResolver(s, s)
	s.resolver.monitor = s.monitor
	s.shares = NewShareGate(s)
	s.guard = NewGuard(ops, s.resolver, s.shares)
	return s
}

// Operations returns the operation table.
func (s *Service) Operations() *OperationSet {
	return s.ops
}

// Resolver returns the authority resolver.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// Guard returns the per-request gate.
func (s *Service) Guard() *Guard {
	return s.guard
}

// ============================================================================
// DECISIONS
// ============================================================================

// Resolve decides whether the actor may exercise the required capability on
// the document. See Resolver.Resolve.
func (s *Service) Resolve(ctx context.Context, actorID, documentID string, required Capability) (Decision, error) {
	return s.resolver.Resolve(ctx, actorID, documentID, required)
}

// Authorize is Resolve mapped onto the error taxonomy. See Resolver.Authorize.
func (s *Service) Authorize(ctx context.Context, actorID, documentID string, required Capability) error {
	return s.resolver.Authorize(ctx, actorID, documentID, required)
}

// GetEffectiveCapability returns the actor's effective capability on the
// document. It runs the exact same rule chain as Resolve, so UI layers can
// rely on it agreeing with the gate.
func (s *Service) GetEffectiveCapability(ctx context.Context, actorID, documentID string) (Capability, error) {
	capability, _, err := s.resolver.EffectiveCapability(ctx, actorID, documentID)
	return capability, err
}

// ResolvePublicAccess validates capability-free share access. See
// ShareGate.ResolvePublicAccess.
func (s *Service) ResolvePublicAccess(ctx context.Context, documentID, token, password string) error {
	return s.shares.ResolvePublicAccess(ctx, documentID, token, password)
}

// Check gates one request through the operation table. See Guard.Check.
func (s *Service) Check(ctx context.Context, req GuardRequest) error {
	return s.guard.Check(ctx, req)
}

// ============================================================================
// GATE METRICS
// ============================================================================

// GetGateMetrics returns the current decision metrics.
func (s *Service) GetGateMetrics() GateMetrics {
	return s.monitor.getMetrics()
}

// ResetGateMetrics resets all decision metrics.
func (s *Service) ResetGateMetrics() {
	s.monitor.reset()
}

// IsGateHealthy checks if decision latency and fault rate are within
// acceptable thresholds.
func (s *Service) IsGateHealthy() bool {
	metrics := s.GetGateMetrics()

	// Too few decisions to judge
	if metrics.TotalDecisions < 10 {
		return true
	}

	// Any sustained integrity fault rate means the tree is corrupt
	faultRate := float64(metrics.IntegrityFaults) / float64(metrics.TotalDecisions)
	if faultRate > 0.01 {
		return false
	}

	if metrics.AverageDuration > time.Second {
		return false
	}

	return true
}

// ============================================================================
// AUDIT LOG
// ============================================================================

// GetAuditLog retrieves audit log entries with optional filters.
func (s *Service) GetAuditLog(ctx context.Context, filter AuditLogFilter) ([]AccessAuditLog, error) {
	var logs []AccessAuditLog
	q := s.conn(ctx).NewSelect().Model(&logs)
	if filter.ActorID != "" {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.TargetUserID != "" {
		q = q.Where("target_user_id = ?", filter.TargetUserID)
	}
	if filter.DocumentID != "" {
		q = q.Where("document_id = ?", filter.DocumentID)
	}
	if filter.WikiID != "" {
		q = q.Where("wiki_id = ?", filter.WikiID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if !filter.Since.IsZero() {
		q = q.Where("timestamp >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("timestamp <= ?", filter.Until)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 100 // Default limit
	}
	q = q.Limit(limit)

	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	q = q.Order("timestamp DESC")
	err := dbkit.WithErr1(q.Scan(ctx), "GetAuditLog").Err()
	if err != nil {
		return nil, err
	}

	return logs, nil
}
