package wikigate

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// DOCUMENT OPERATIONS
// ============================================================================

// CreateDocument creates a document in a wiki, optionally under a parent.
// The actor (from context) must be the wiki's creator or a member. A parent
// must exist and belong to the same wiki.
func (s *Service) CreateDocument(ctx context.Context, wikiID, parentID, title string, content []byte) (*Document, error) {
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	wiki, err := s.GetWiki(ctx, wikiID)
	if err != nil {
		return nil, err
	}
	ok, err := s.canCreateIn(ctx, actorID, wiki)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewError(ErrForbidden, "actor cannot create documents in this wiki").
			WithWiki(wikiID).
			WithActor(actorID)
	}

	if parentID != "" {
		parent, err := s.GetDocument(ctx, parentID)
		if err != nil {
			if IsNotFound(err) {
				return nil, NewError(ErrInvalidParent, "parent document does not exist").
					WithWiki(wikiID).
					WithDocument(parentID)
			}
			return nil, err
		}
		if parent.WikiID != wikiID {
			return nil, NewError(ErrInvalidParent, "parent belongs to another wiki").
				WithWiki(wikiID).
				WithDocument(parentID)
		}
	}

	doc := &Document{
		WikiID:    wikiID,
		ParentID:  parentID,
		CreatorID: actorID,
		Title:     title,
		Status:    StatusPrivate,
		Content:   content,
		Version:   1,
	}
	result, err := s.conn(ctx).NewInsert().Model(doc).Exec(ctx)
	if err := dbkit.WithErr(result, err, "CreateDocument").Err(); err != nil {
		return nil, NewError(ErrDatabase, "failed to create document").
			WithWiki(wikiID).
			WithActor(actorID)
	}
	return doc, nil
}

// UpdateDocument replaces a document's content. Requires editable.
// The version counter bumps on every write.
func (s *Service) UpdateDocument(ctx context.Context, documentID string, content []byte) error {
	actorID, err := requireActor(ctx)
	if err != nil {
		return err
	}
	if err := s.Authorize(ctx, actorID, documentID, CapabilityEditable); err != nil {
		return err
	}

	result, err := s.conn(ctx).NewUpdate().Table("documents").
		Set("content = ?", content).
		Set("version = version + 1").
		Set("updated_at = current_timestamp").
		Where("id = ?", documentID).
		Exec(ctx)
	if err := dbkit.WithErr(result, err, "UpdateDocument").Err(); err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NewError(ErrNotFound, "document not found").WithDocument(documentID)
	}
	return nil
}

// MoveDocument re-parents a document. Requires createUser on the document,
// since moving changes what its subtree inherits. An empty newParentID makes
// the document a root of its wiki.
//
// The new parent must exist, belong to the same wiki, and not be the document
// itself or one of its descendants.
func (s *Service) MoveDocument(ctx context.Context, documentID, newParentID string) error {
	actorID, err := requireActor(ctx)
	if err != nil {
		return err
	}
	if err := s.Authorize(ctx, actorID, documentID, CapabilityCreateUser); err != nil {
		return err
	}

	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	if newParentID != "" {
		newParent, err := s.GetDocument(ctx, newParentID)
		if err != nil {
			if IsNotFound(err) {
				return NewError(ErrInvalidParent, "new parent does not exist").
					WithDocument(documentID)
			}
			return err
		}
		if newParent.WikiID != doc.WikiID {
			return NewError(ErrInvalidParent, "new parent belongs to another wiki").
				WithDocument(documentID).
				WithWiki(doc.WikiID)
		}
		cycles, err := s.wouldCycle(ctx, documentID, newParent)
		if err != nil {
			return err
		}
		if cycles {
			return NewError(ErrInvalidParent, "new parent is the document or one of its descendants").
				WithDocument(documentID).
				WithWiki(doc.WikiID)
		}
	}

	result, err := s.conn(ctx).NewUpdate().Table("documents").
		Set("parent_id = ?", nullableID(newParentID)).
		Set("updated_at = current_timestamp").
		Where("id = ?", documentID).
		Exec(ctx)
	return dbkit.WithErr(result, err, "MoveDocument").Err()
}

// DeleteDocument deletes a document and its whole subtree, including every
// descendant's grants and stars, in one transaction. Requires createUser.
//
// Cascade (rather than re-parent) keeps the ancestor-inheritance rules
// honest: a child never silently gains a new grant chain because its parent
// disappeared.
func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	actorID, err := requireActor(ctx)
	if err != nil {
		return err
	}
	if err := s.Authorize(ctx, actorID, documentID, CapabilityCreateUser); err != nil {
		return err
	}

	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	subtree, err := s.collectSubtree(ctx, doc)
	if err != nil {
		return err
	}
	ids := make([]string, len(subtree))
	for i, d := range subtree {
		ids[i] = d.ID
	}

	err = s.Transaction(ctx, func(ctx context.Context) error {
		result, err := s.conn(ctx).NewDelete().Table("doc_grants").
			Where("document_id IN (?)", bun.In(ids)).
			Exec(ctx)
		if err := dbkit.WithErr(result, err, "DeleteSubtreeGrants").Err(); err != nil {
			return err
		}

		result, err = s.conn(ctx).NewDelete().Table("doc_stars").
			Where("document_id IN (?)", bun.In(ids)).
			Exec(ctx)
		if err := dbkit.WithErr(result, err, "DeleteSubtreeStars").Err(); err != nil {
			return err
		}

		result, err = s.conn(ctx).NewDelete().Table("documents").
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx)
		return dbkit.WithErr(result, err, "DeleteSubtree").Err()
	})
	if err != nil {
		return err
	}

	entry := auditFromContext(ctx, AuditActionDeleted)
	entry.DocumentID = documentID
	entry.WikiID = doc.WikiID
	entry.Metadata = map[string]any{"descendants": len(ids) - 1}
	_ = s.logAudit(ctx, entry)

	return nil
}

// GetPublicChildren lists the public children of a shared document, for
// rendering a shared subtree's navigation. The caller's token must open the
// parent; children that are private (or in a private branch) are omitted.
func (s *Service) GetPublicChildren(ctx context.Context, documentID, token, password string) ([]Document, error) {
	if err := s.ResolvePublicAccess(ctx, documentID, token, password); err != nil {
		return nil, err
	}

	children, err := s.GetChildren(ctx, documentID)
	if err != nil {
		return nil, err
	}

	public := make([]Document, 0, len(children))
	for _, child := range children {
		if child.Status == StatusPublic {
			public = append(public, child)
		}
	}
	return public, nil
}

// CountDocuments returns the number of documents in a wiki.
func (s *Service) CountDocuments(ctx context.Context, wikiID string) (int, error) {
	return dbkit.Count[Document](ctx, s.conn(ctx), func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("wiki_id = ?", wikiID)
	})
}

// nullableID maps an empty ID to NULL for nullable foreign keys.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
