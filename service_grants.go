package wikigate

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// GRANT OPERATIONS
// ============================================================================

// GrantCapability gives a user an explicit capability on a document.
// Only the document's creator may create grants. A second grant for the same
// user replaces the capability in place (grants are unique per document and
// user); granting the exact capability the user already holds is an error.
//
// Example:
//
//	err := service.GrantCapability(ctx, docID, userID, wikigate.CapabilityEditable)
func (s *Service) GrantCapability(ctx context.Context, documentID, userID string, capability Capability) (*DocGrant, error) {
	if !capability.Valid() {
		return nil, NewError(ErrInvalidCapability, fmt.Sprintf("cannot grant capability %q", capability)).
			WithDocument(documentID).
			WithUser(userID)
	}

	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.CreatorID != actorID {
		return nil, NewError(ErrForbidden, "only the document creator may manage grants").
			WithDocument(documentID).
			WithActor(actorID)
	}

	previous, err := s.GetGrant(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	if previous != nil && previous.Capability == capability {
		return nil, NewError(ErrGrantExists, "user already holds this capability").
			WithDocument(documentID).
			WithUser(userID).
			WithCapability(capability)
	}

	grant := &DocGrant{
		DocumentID: documentID,
		UserID:     userID,
		Capability: capability,
		CreatedBy:  actorID,
	}

	err = s.Transaction(ctx, func(ctx context.Context) error {
		if previous != nil {
			result, err := s.conn(ctx).NewUpdate().Table("doc_grants").
				Set("capability = ?", capability).
				Set("updated_at = current_timestamp").
				Where("document_id = ? AND user_id = ?", documentID, userID).
				Exec(ctx)
			return dbkit.WithErr(result, err, "UpdateGrant").Err()
		}
		result, err := s.conn(ctx).NewInsert().Model(grant).Exec(ctx)
		return dbkit.WithErr(result, err, "CreateGrant").Err()
	})
	if err != nil {
		return nil, NewError(ErrDatabase, "failed to store grant").
			WithDocument(documentID).
			WithUser(userID)
	}

	entry := auditFromContext(ctx, AuditActionGranted)
	entry.DocumentID = documentID
	entry.WikiID = doc.WikiID
	entry.TargetUserID = userID
	entry.NewCapability = capability
	if previous != nil {
		entry.PreviousCapability = previous.Capability
	}
	_ = s.logAudit(ctx, entry) // Log error but don't fail the grant

	if previous != nil {
		previous.Capability = capability
		return previous, nil
	}
	return grant, nil
}

// RevokeGrant removes a user's explicit grant on a document. Only the
// document's creator may revoke. The revocation is a plain row delete, so it
// is visible to every subsequent resolve.
func (s *Service) RevokeGrant(ctx context.Context, documentID, userID string) error {
	actorID, err := requireActor(ctx)
	if err != nil {
		return err
	}

	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.CreatorID != actorID {
		return NewError(ErrForbidden, "only the document creator may manage grants").
			WithDocument(documentID).
			WithActor(actorID)
	}

	previous, err := s.GetGrant(ctx, documentID, userID)
	if err != nil {
		return err
	}
	if previous == nil {
		return NewError(ErrGrantNotFound, "user has no grant on this document").
			WithDocument(documentID).
			WithUser(userID)
	}

	result, err := s.conn(ctx).NewDelete().Table("doc_grants").
		Where("document_id = ? AND user_id = ?", documentID, userID).
		Exec(ctx)
	if err := dbkit.WithErr(result, err, "RevokeGrant").Err(); err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NewError(ErrGrantNotFound, "user has no grant on this document").
			WithDocument(documentID).
			WithUser(userID)
	}

	entry := auditFromContext(ctx, AuditActionRevoked)
	entry.DocumentID = documentID
	entry.WikiID = doc.WikiID
	entry.TargetUserID = userID
	entry.PreviousCapability = previous.Capability
	_ = s.logAudit(ctx, entry)

	return nil
}

// HasGrant checks if a user has an explicit grant on a document.
// This is more efficient than GetGrant when you only need existence.
func (s *Service) HasGrant(ctx context.Context, documentID, userID string) bool {
	exists, err := dbkit.Exists[DocGrant](ctx, s.conn(ctx), func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("document_id = ? AND user_id = ?", documentID, userID)
	})
	if err != nil {
		return false
	}
	return exists
}

// CountGrants returns the number of explicit grants on a document.
func (s *Service) CountGrants(ctx context.Context, documentID string) (int, error) {
	return dbkit.Count[DocGrant](ctx, s.conn(ctx), func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("document_id = ?", documentID)
	})
}
