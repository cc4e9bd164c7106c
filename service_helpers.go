package wikigate

import (
	"context"
	"fmt"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// INTERNAL HELPERS
// ============================================================================

func (s *Service) logAudit(ctx context.Context, entry *AuditEntry) error {
	_, err := s.conn(ctx).NewInsert().Model(entry.ToModel()).Exec(ctx)
	return dbkit.WithErr1(err, "LogAudit").Err()
}

// auditFromContext seeds an AuditEntry with the request metadata in context.
func auditFromContext(ctx context.Context, action AuditAction) *AuditEntry {
	ac := GetAuditContext(ctx)
	return &AuditEntry{
		ActorID:   ac.ActorID,
		Action:    action,
		IPAddress: ac.IPAddress,
		UserAgent: ac.UserAgent,
		RequestID: ac.RequestID,
	}
}

// requireActor returns the actor ID from context or ErrNoActorID.
func requireActor(ctx context.Context) (string, error) {
	actorID := GetActorID(ctx)
	if actorID == "" {
		return "", NewError(ErrNoActorID, "actor ID required for this operation")
	}
	return actorID, nil
}

// canManageWiki reports whether the actor may change a wiki's roster:
// the wiki's creator or an admin member.
func (s *Service) canManageWiki(ctx context.Context, actorID string, wiki *Wiki) (bool, error) {
	if wiki.CreatorID == actorID {
		return true, nil
	}
	member, err := s.GetMembership(ctx, wiki.ID, actorID)
	if err != nil {
		return false, err
	}
	return member != nil && member.Role == RoleAdmin, nil
}

// canCreateIn reports whether the actor may create documents in a wiki:
// the creator or any member.
func (s *Service) canCreateIn(ctx context.Context, actorID string, wiki *Wiki) (bool, error) {
	if wiki.CreatorID == actorID {
		return true, nil
	}
	member, err := s.GetMembership(ctx, wiki.ID, actorID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}

// collectSubtree gathers a document and all its descendants, breadth first.
// The walk is bounded by maxTreeDepth levels; a deeper tree is corruption.
func (s *Service) collectSubtree(ctx context.Context, root *Document) ([]Document, error) {
	subtree := []Document{*root}
	frontier := []string{root.ID}
	seen := map[string]bool{root.ID: true}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= maxTreeDepth {
			return nil, NewError(ErrIntegrity, "subtree exceeds depth bound").
				WithDocument(root.ID).
				WithWiki(root.WikiID)
		}

		var next []string
		for _, id := range frontier {
			children, err := s.GetChildren(ctx, id)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				if seen[child.ID] {
					return nil, NewError(ErrIntegrity, fmt.Sprintf("cycle through document %s", child.ID)).
						WithDocument(root.ID).
						WithWiki(root.WikiID)
				}
				seen[child.ID] = true
				subtree = append(subtree, child)
				next = append(next, child.ID)
			}
		}
		frontier = next
	}

	return subtree, nil
}

// wouldCycle reports whether re-parenting documentID under newParent would
// create a cycle: newParent must not be the document itself or any of its
// descendants, which is equivalent to documentID not appearing on newParent's
// ancestor chain.
func (s *Service) wouldCycle(ctx context.Context, documentID string, newParent *Document) (bool, error) {
	if newParent.ID == documentID {
		return true, nil
	}

	seen := map[string]bool{newParent.ID: true}
	parentID := newParent.ParentID
	for depth := 0; parentID != ""; depth++ {
		if depth >= maxTreeDepth || seen[parentID] {
			return false, NewError(ErrIntegrity, "cycle in document tree").
				WithDocument(newParent.ID).
				WithWiki(newParent.WikiID)
		}
		if parentID == documentID {
			return true, nil
		}
		seen[parentID] = true

		parent, err := s.GetDocument(ctx, parentID)
		if err != nil {
			if IsNotFound(err) {
				return false, NewError(ErrIntegrity, "dangling parent reference").
					WithDocument(newParent.ID).
					WithWiki(newParent.WikiID)
			}
			return false, err
		}
		parentID = parent.ParentID
	}

	return false, nil
}
