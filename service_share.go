package wikigate

import (
	"context"
	"time"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// SHARE STATE MACHINE
// ============================================================================

// ShareDocument transitions a document's visibility state. The actor (from
// context) must hold editable or above, verified through the resolver.
//
// Enabling sets status to public and stores a generated token plus the
// optional password hash and expiry. Re-enabling is idempotent on the token:
// the existing token is kept and only password/expiry are updated, so active
// share links keep working and no duplicate shares accumulate.
//
// Disabling clears token, password and expiry and reverts status to private;
// the old token stops working immediately.
func (s *Service) ShareDocument(ctx context.Context, documentID string, opts ShareOptions) (*ShareConfig, error) {
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Authorize(ctx, actorID, documentID, CapabilityEditable); err != nil {
		return nil, err
	}

	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if !opts.Enable {
		return nil, s.disableShare(ctx, doc)
	}
	return s.enableShare(ctx, doc, opts)
}

func (s *Service) enableShare(ctx context.Context, doc *Document, opts ShareOptions) (*ShareConfig, error) {
	token := doc.ShareToken
	if token == "" {
		token = newShareToken()
	}

	var passwordHash []byte
	if opts.Password != "" {
		var err error
		passwordHash, err = hashSharePassword(opts.Password)
		if err != nil {
			return nil, err
		}
	}

	err := s.Transaction(ctx, func(ctx context.Context) error {
		result, err := s.conn(ctx).NewUpdate().Table("documents").
			Set("status = ?", StatusPublic).
			Set("share_token = ?", token).
			Set("share_password_hash = ?", passwordHash).
			Set("share_expires_at = ?", nullableTime(opts.ExpiresAt)).
			Set("updated_at = current_timestamp").
			Where("id = ?", doc.ID).
			Exec(ctx)
		return dbkit.WithErr(result, err, "EnableShare").Err()
	})
	if err != nil {
		return nil, err
	}

	entry := auditFromContext(ctx, AuditActionShared)
	entry.DocumentID = doc.ID
	entry.WikiID = doc.WikiID
	entry.Metadata = map[string]any{
		"password_protected": len(passwordHash) > 0,
		"expires":            !opts.ExpiresAt.IsZero(),
	}
	_ = s.logAudit(ctx, entry)

	return &ShareConfig{
		DocumentID:        doc.ID,
		Token:             token,
		PasswordProtected: len(passwordHash) > 0,
		ExpiresAt:         opts.ExpiresAt,
	}, nil
}

func (s *Service) disableShare(ctx context.Context, doc *Document) error {
	// Already private: nothing to clear, disabling twice is not an error.
	if !doc.Shared() && doc.Status == StatusPrivate {
		return nil
	}

	err := s.Transaction(ctx, func(ctx context.Context) error {
		result, err := s.conn(ctx).NewUpdate().Table("documents").
			Set("status = ?", StatusPrivate).
			Set("share_token = NULL").
			Set("share_password_hash = NULL").
			Set("share_expires_at = NULL").
			Set("updated_at = current_timestamp").
			Where("id = ?", doc.ID).
			Exec(ctx)
		return dbkit.WithErr(result, err, "DisableShare").Err()
	})
	if err != nil {
		return err
	}

	entry := auditFromContext(ctx, AuditActionUnshared)
	entry.DocumentID = doc.ID
	entry.WikiID = doc.WikiID
	_ = s.logAudit(ctx, entry)

	return nil
}

// GetShareConfig returns a document's share view for rendering. Requires
// editable (the share token is a credential; readers never see it).
func (s *Service) GetShareConfig(ctx context.Context, documentID string) (*ShareConfig, error) {
	actorID, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Authorize(ctx, actorID, documentID, CapabilityEditable); err != nil {
		return nil, err
	}

	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return doc.Share(), nil
}

// nullableTime maps a zero time to NULL for nullable timestamp columns.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
