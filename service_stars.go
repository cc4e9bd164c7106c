package wikigate

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// STARS
// ============================================================================
// Stars are bookmarks, not authority: they read through the same stores but
// never influence a decision.

// StarDocument bookmarks a document for the actor in context.
// The actor must be able to read the document.
func (s *Service) StarDocument(ctx context.Context, documentID string) error {
	actorID, err := requireActor(ctx)
	if err != nil {
		return err
	}
	if err := s.Authorize(ctx, actorID, documentID, CapabilityReadable); err != nil {
		return err
	}

	star := &DocStar{
		UserID:     actorID,
		DocumentID: documentID,
	}
	result, err := s.conn(ctx).NewInsert().Model(star).
		On("CONFLICT (user_id, document_id) WHERE document_id IS NOT NULL DO NOTHING").
		Exec(ctx)
	return dbkit.WithErr(result, err, "StarDocument").Err()
}

// StarWiki bookmarks a wiki for the actor in context.
func (s *Service) StarWiki(ctx context.Context, wikiID string) error {
	actorID, err := requireActor(ctx)
	if err != nil {
		return err
	}
	if _, err := s.GetWiki(ctx, wikiID); err != nil {
		return err
	}

	star := &DocStar{
		UserID: actorID,
		WikiID: wikiID,
	}
	result, err := s.conn(ctx).NewInsert().Model(star).
		On("CONFLICT (user_id, wiki_id) WHERE wiki_id IS NOT NULL DO NOTHING").
		Exec(ctx)
	return dbkit.WithErr(result, err, "StarWiki").Err()
}

// UnstarDocument removes the actor's bookmark of a document.
func (s *Service) UnstarDocument(ctx context.Context, documentID string) error {
	actorID, err := requireActor(ctx)
	if err != nil {
		return err
	}
	result, err := s.conn(ctx).NewDelete().Table("doc_stars").
		Where("user_id = ? AND document_id = ?", actorID, documentID).
		Exec(ctx)
	return dbkit.WithErr(result, err, "UnstarDocument").Err()
}

// UnstarWiki removes the actor's bookmark of a wiki.
func (s *Service) UnstarWiki(ctx context.Context, wikiID string) error {
	actorID, err := requireActor(ctx)
	if err != nil {
		return err
	}
	result, err := s.conn(ctx).NewDelete().Table("doc_stars").
		Where("user_id = ? AND wiki_id = ?", actorID, wikiID).
		Exec(ctx)
	return dbkit.WithErr(result, err, "UnstarWiki").Err()
}

// GetStars retrieves all bookmarks of a user.
func (s *Service) GetStars(ctx context.Context, userID string) ([]DocStar, error) {
	var stars []DocStar
	err := dbkit.WithErr1(s.conn(ctx).NewSelect().Model(&stars).Where("user_id = ?", userID).Order("created_at DESC").Scan(ctx), "GetStars").Err()
	if err != nil {
		return nil, err
	}
	return stars, nil
}
