package wikigate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ShareOptions configures a ShareDocument call.
type ShareOptions struct {
	// Enable turns public sharing on or off. Disabling clears the token,
	// password and expiry and reverts the document to private.
	Enable bool

	// Password, if non-empty, protects the share link. Stored as a bcrypt
	// hash, never in the clear.
	Password string

	// ExpiresAt, if non-zero, is the instant the share link stops working.
	ExpiresAt time.Time
}

// newShareToken generates a unique share token.
func newShareToken() string {
	return uuid.NewString()
}

// hashSharePassword hashes a share password for storage.
func hashSharePassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewError(ErrDatabase, "failed to hash share password")
	}
	return hash, nil
}

// checkSharePassword compares a supplied password against the stored hash.
func checkSharePassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// ShareGate validates capability-free public access to shared documents.
// It is a read path parallel to the Resolver and never grants edit rights;
// the two are deliberately not merged.
type ShareGate struct {
	docs DocumentReader
	now  func() time.Time
}

// NewShareGate creates a ShareGate over the document store.
func NewShareGate(docs DocumentReader) *ShareGate {
	return &ShareGate{
		docs: docs,
		now:  time.Now,
	}
}

// ResolvePublicAccess checks whether the supplied token (and password, if the
// share is protected) opens read access to the document.
//
// A share covers the whole subtree under the shared document: the token may
// belong to the requested document or any of its ancestors. Every document on
// the path from the target up to the token holder must be public; a node made
// private overrides the inherited share for everything below it.
//
// Returns nil on allow, ErrForbidden on token/password/status mismatch,
// ErrExpired past the expiry, ErrNotFound if the document does not exist and
// ErrIntegrity if the walk hits corruption.
func (g *ShareGate) ResolvePublicAccess(ctx context.Context, documentID, token, password string) error {
	if token == "" {
		return NewError(ErrForbidden, "share token required").WithDocument(documentID)
	}

	doc, err := g.docs.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	cur := doc
	for depth := 0; ; depth++ {
		if depth >= maxTreeDepth {
			return NewError(ErrIntegrity, "ancestor chain exceeds depth bound").
				WithDocument(documentID).
				WithWiki(doc.WikiID)
		}
		if seen[cur.ID] {
			return NewError(ErrIntegrity, "cycle in document tree").
				WithDocument(documentID).
				WithWiki(doc.WikiID)
		}
		seen[cur.ID] = true

		// A private node cuts off its subtree from any inherited share.
		if cur.Status != StatusPublic {
			return NewError(ErrForbidden, "document is not public").WithDocument(documentID)
		}

		if cur.ShareToken == token {
			return g.checkShare(cur, documentID, password)
		}

		if cur.ParentID == "" {
			return NewError(ErrForbidden, "share token does not match").WithDocument(documentID)
		}

		parent, err := g.docs.GetDocument(ctx, cur.ParentID)
		if err != nil {
			if IsNotFound(err) {
				return NewError(ErrIntegrity, "dangling parent reference").
					WithDocument(documentID).
					WithWiki(doc.WikiID)
			}
			return err
		}
		cur = parent
	}
}

// checkShare validates password and expiry of the share carried by holder.
func (g *ShareGate) checkShare(holder *Document, requestedID, password string) error {
	if len(holder.SharePasswordHash) > 0 && !checkSharePassword(holder.SharePasswordHash, password) {
		return NewError(ErrForbidden, "share password mismatch").WithDocument(requestedID)
	}
	if !holder.ShareExpiresAt.IsZero() && !g.now().Before(holder.ShareExpiresAt) {
		return NewError(ErrExpired, "share link expired").WithDocument(requestedID)
	}
	return nil
}
