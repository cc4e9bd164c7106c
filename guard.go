package wikigate

import (
	"context"
	"fmt"
)

// GuardRequest carries everything the gate needs about an inbound operation.
type GuardRequest struct {
	// Operation is the identifier looked up in the OperationSet.
	Operation string

	// ActorID is the authenticated user, or empty for an anonymous visitor.
	ActorID string

	// DocumentID is the target document.
	DocumentID string

	// ShareToken and SharePassword are consulted only on public-share routes.
	ShareToken    string
	SharePassword string
}

// Guard is the per-request gate. It resolves the required capability from the
// operation table and delegates to the Resolver (authenticated routes) or the
// ShareGate (public-share routes), rejecting before any business logic runs.
//
// The guard is pure: on allow it mutates nothing, so a request cancelled
// mid-check needs no rollback.
type Guard struct {
	ops      *OperationSet
	resolver Authorizer
	shares   PublicAccessResolver
}

// NewGuard creates a Guard over an operation table and the two decision paths.
func NewGuard(ops *OperationSet, resolver Authorizer, shares PublicAccessResolver) *Guard {
	return &Guard{
		ops:      ops,
		resolver: resolver,
		shares:   shares,
	}
}

// Check gates one request. Returns nil on allow. On deny the error carries the
// taxonomy: ErrInvalidOperation for an unknown operation, ErrUnauthenticated
// for a missing actor on an authenticated route, and whatever the delegated
// decision path produced otherwise.
func (g *Guard) Check(ctx context.Context, req GuardRequest) error {
	op := g.ops.Get(req.Operation)
	if op == nil {
		return NewError(ErrInvalidOperation, fmt.Sprintf("operation %q not defined", req.Operation)).
			WithOperation(req.Operation)
	}

	if op.IsPublic() {
		// Actor identity is ignored entirely on share routes.
		if err := g.shares.ResolvePublicAccess(ctx, req.DocumentID, req.ShareToken, req.SharePassword); err != nil {
			if e, ok := err.(*Error); ok {
				return e.WithOperation(req.Operation)
			}
			return err
		}
		return nil
	}

	if req.ActorID == "" {
		return NewError(ErrUnauthenticated, "operation requires an authenticated actor").
			WithOperation(req.Operation).
			WithDocument(req.DocumentID)
	}

	if err := g.resolver.Authorize(ctx, req.ActorID, req.DocumentID, op.RequiredCapability()); err != nil {
		if e, ok := err.(*Error); ok {
			return e.WithOperation(req.Operation)
		}
		return err
	}
	return nil
}

// GetAccess resolves the actor's effective capability on a document into an
// Access view. This can be stored in context for use in handlers.
func (g *Guard) GetAccess(ctx context.Context, actorID, documentID string) (*Access, error) {
	capability, rule, err := g.resolver.EffectiveCapability(ctx, actorID, documentID)
	if err != nil {
		return nil, err
	}
	return &Access{
		ActorID:    actorID,
		DocumentID: documentID,
		Capability: capability,
		Rule:       rule,
	}, nil
}
