package wikigate

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// WIKI AND MEMBERSHIP OPERATIONS
// ============================================================================

// CreateWiki creates a new wiki owned by the actor in context.
func (s *Service) CreateWiki(ctx context.Context, name string, visibility Status) (*Wiki, error) {
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !visibility.Valid() {
		visibility = StatusPrivate
	}

	wiki := &Wiki{
		CreatorID:  actorID,
		Name:       name,
		Visibility: visibility,
	}
	result, err := s.conn(ctx).NewInsert().Model(wiki).Exec(ctx)
	if err := dbkit.WithErr(result, err, "CreateWiki").Err(); err != nil {
		return nil, NewError(ErrDatabase, "failed to create wiki").WithActor(actorID)
	}
	return wiki, nil
}

// SetWikiVisibility flips a wiki between private and public.
// Only the wiki's creator may change it.
func (s *Service) SetWikiVisibility(ctx context.Context, wikiID string, visibility Status) error {
	actorID, err := requireActor(ctx)
	if err != nil {
		return err
	}
	if !visibility.Valid() {
		return NewError(ErrInvalidRole, "visibility must be private or public").WithWiki(wikiID)
	}

	wiki, err := s.GetWiki(ctx, wikiID)
	if err != nil {
		return err
	}
	if wiki.CreatorID != actorID {
		return NewError(ErrForbidden, "only the wiki creator may change visibility").
			WithWiki(wikiID).
			WithActor(actorID)
	}

	result, err := s.conn(ctx).NewUpdate().Table("wikis").
		Set("visibility = ?", visibility).
		Set("updated_at = current_timestamp").
		Where("id = ?", wikiID).
		Exec(ctx)
	return dbkit.WithErr(result, err, "SetWikiVisibility").Err()
}

// AddMember adds a user to a wiki's roster. The actor must be the wiki's
// creator or an admin member.
func (s *Service) AddMember(ctx context.Context, wikiID, userID string, role MemberRole) error {
	actorID, err := requireActor(ctx)
	if err != nil {
		return err
	}
	if !role.Valid() {
		return NewError(ErrInvalidRole, "role must be member or admin").
			WithWiki(wikiID).
			WithUser(userID)
	}

	wiki, err := s.GetWiki(ctx, wikiID)
	if err != nil {
		return err
	}
	ok, err := s.canManageWiki(ctx, actorID, wiki)
	if err != nil {
		return err
	}
	if !ok {
		return NewError(ErrForbidden, "actor cannot manage this wiki's members").
			WithWiki(wikiID).
			WithActor(actorID)
	}

	existing, err := s.GetMembership(ctx, wikiID, userID)
	if err != nil {
		return err
	}
	if existing != nil {
		return NewError(ErrMemberExists, "user is already a member").
			WithWiki(wikiID).
			WithUser(userID)
	}

	member := &WikiMember{
		WikiID: wikiID,
		UserID: userID,
		Role:   role,
	}
	result, err := s.conn(ctx).NewInsert().Model(member).Exec(ctx)
	if err := dbkit.WithErr(result, err, "AddMember").Err(); err != nil {
		if dbkit.IsDuplicate(err) {
			return NewError(ErrMemberExists, "user is already a member").
				WithWiki(wikiID).
				WithUser(userID)
		}
		return NewError(ErrDatabase, "failed to add member").
			WithWiki(wikiID).
			WithUser(userID)
	}

	entry := auditFromContext(ctx, AuditActionMemberAdded)
	entry.WikiID = wikiID
	entry.TargetUserID = userID
	entry.Detail = string(role)
	_ = s.logAudit(ctx, entry) // Log error but don't fail the change

	return nil
}

// RemoveMember removes a user from a wiki's roster. The actor must be the
// wiki's creator or an admin member.
func (s *Service) RemoveMember(ctx context.Context, wikiID, userID string) error {
	actorID, err := requireActor(ctx)
	if err != nil {
		return err
	}

	wiki, err := s.GetWiki(ctx, wikiID)
	if err != nil {
		return err
	}
	ok, err := s.canManageWiki(ctx, actorID, wiki)
	if err != nil {
		return err
	}
	if !ok {
		return NewError(ErrForbidden, "actor cannot manage this wiki's members").
			WithWiki(wikiID).
			WithActor(actorID)
	}

	result, err := s.conn(ctx).NewDelete().Table("wiki_members").
		Where("wiki_id = ? AND user_id = ?", wikiID, userID).
		Exec(ctx)
	if err := dbkit.WithErr(result, err, "RemoveMember").Err(); err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NewError(ErrMemberNotFound, "user is not a member").
			WithWiki(wikiID).
			WithUser(userID)
	}

	entry := auditFromContext(ctx, AuditActionMemberRemoved)
	entry.WikiID = wikiID
	entry.TargetUserID = userID
	_ = s.logAudit(ctx, entry)

	return nil
}

// CountMembers returns the number of users in a wiki's roster.
func (s *Service) CountMembers(ctx context.Context, wikiID string) (int, error) {
	return dbkit.Count[WikiMember](ctx, s.conn(ctx), func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("wiki_id = ?", wikiID)
	})
}
