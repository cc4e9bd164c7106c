package wikigate

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// DATA RETRIEVAL (Service implements DocumentReader and MembershipReader)
// ============================================================================

// GetDocument retrieves a document by ID. Returns ErrNotFound if absent.
func (s *Service) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	var doc Document
	err := dbkit.WithErr1(s.conn(ctx).NewSelect().Model(&doc).Where("id = ?", documentID).Limit(1).Scan(ctx), "GetDocument").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrNotFound, "document not found").WithDocument(documentID)
		}
		return nil, err
	}
	return &doc, nil
}

// GetGrant retrieves the explicit grant for (document, user).
// Returns (nil, nil) if no grant exists.
func (s *Service) GetGrant(ctx context.Context, documentID, userID string) (*DocGrant, error) {
	var grant DocGrant
	err := dbkit.WithErr1(s.conn(ctx).NewSelect().Model(&grant).Where("document_id = ? AND user_id = ?", documentID, userID).Limit(1).Scan(ctx), "GetGrant").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

// GetWiki retrieves a wiki by ID. Returns ErrNotFound if absent.
func (s *Service) GetWiki(ctx context.Context, wikiID string) (*Wiki, error) {
	var wiki Wiki
	err := dbkit.WithErr1(s.conn(ctx).NewSelect().Model(&wiki).Where("id = ?", wikiID).Limit(1).Scan(ctx), "GetWiki").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrNotFound, "wiki not found").WithWiki(wikiID)
		}
		return nil, err
	}
	return &wiki, nil
}

// GetMembership retrieves the user's membership in a wiki.
// Returns (nil, nil) if the user is not a member.
func (s *Service) GetMembership(ctx context.Context, wikiID, userID string) (*WikiMember, error) {
	var member WikiMember
	err := dbkit.WithErr1(s.conn(ctx).NewSelect().Model(&member).Where("wiki_id = ? AND user_id = ?", wikiID, userID).Limit(1).Scan(ctx), "GetMembership").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// GetWikiMembers retrieves all memberships of a wiki.
func (s *Service) GetWikiMembers(ctx context.Context, wikiID string) ([]WikiMember, error) {
	var members []WikiMember
	err := dbkit.WithErr1(s.conn(ctx).NewSelect().Model(&members).Where("wiki_id = ?", wikiID).Scan(ctx), "GetWikiMembers").Err()
	if err != nil {
		return nil, err
	}
	return members, nil
}

// GetChildren retrieves the direct children of a document.
func (s *Service) GetChildren(ctx context.Context, documentID string) ([]Document, error) {
	var children []Document
	err := dbkit.WithErr1(s.conn(ctx).NewSelect().Model(&children).Where("parent_id = ?", documentID).Order("created_at ASC").Scan(ctx), "GetChildren").Err()
	if err != nil {
		return nil, err
	}
	return children, nil
}

// GetGrants retrieves all explicit grants on a document.
func (s *Service) GetGrants(ctx context.Context, documentID string) ([]DocGrant, error) {
	var grants []DocGrant
	err := dbkit.WithErr1(s.conn(ctx).NewSelect().Model(&grants).Where("document_id = ?", documentID).Scan(ctx), "GetGrants").Err()
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// GetAccess resolves the actor's effective capability on a document into an
// Access view. This can be stored in context for use in handlers.
func (s *Service) GetAccess(ctx context.Context, actorID, documentID string) (*Access, error) {
	capability, rule, err := s.resolver.EffectiveCapability(ctx, actorID, documentID)
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

// GetAccessFromContext resolves an Access view using the actor ID from context.
func (s *Service) GetAccessFromContext(ctx context.Context, documentID string) (*Access, error) {
	return s.GetAccess(ctx, GetActorID(ctx), documentID)
}
