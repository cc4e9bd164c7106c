package wikigate

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// DocumentReader is the read-only view of the document tree the resolver and
// share gate depend on. Reads are potentially blocking I/O and are not assumed
// to be transactionally consistent with each other.
type DocumentReader interface {
	// GetDocument returns the document or an ErrNotFound error.
	GetDocument(ctx context.Context, documentID string) (*Document, error)

	// GetGrant returns the explicit grant for (document, user), or (nil, nil)
	// if none exists.
	GetGrant(ctx context.Context, documentID, userID string) (*DocGrant, error)
}

// MembershipReader is the read-only view of wikis and their rosters.
type MembershipReader interface {
	// GetWiki returns the wiki or an ErrNotFound error.
	GetWiki(ctx context.Context, wikiID string) (*Wiki, error)

	// GetMembership returns the user's membership in the wiki, or (nil, nil)
	// if the user is not a member.
	GetMembership(ctx context.Context, wikiID, userID string) (*WikiMember, error)
}

// Database defines the database operations interface for dependency injection.
type Database interface {
	dbkit.IDB
}

// Authorizer is the narrow decision interface higher-level services depend on.
// Only the resolver combines the stores into a decision; callers never
// re-implement any part of the rule chain.
type Authorizer interface {
	Resolve(ctx context.Context, actorID, documentID string, required Capability) (Decision, error)
	Authorize(ctx context.Context, actorID, documentID string, required Capability) error
	EffectiveCapability(ctx context.Context, actorID, documentID string) (Capability, Rule, error)
}

// PublicAccessResolver validates capability-free share access.
type PublicAccessResolver interface {
	ResolvePublicAccess(ctx context.Context, documentID, token, password string) error
}

// GuardChecker is what the HTTP middleware needs from the service: the request
// gate plus the access view loader.
type GuardChecker interface {
	Check(ctx context.Context, req GuardRequest) error
	GetAccess(ctx context.Context, actorID, documentID string) (*Access, error)
}

// TransactionManager defines the transaction management interface.
type TransactionManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(ctx context.Context) error) error
	ReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// HealthMonitor defines the health monitoring interface.
type HealthMonitor interface {
	Health(ctx context.Context) dbkit.HealthStatus
	IsHealthy(ctx context.Context) bool
	Ping(ctx context.Context) error
	GetPoolStats() dbkit.PoolStats
}
