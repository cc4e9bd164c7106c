package wikigate

import (
	"time"

	"github.com/uptrace/bun"
)

// Wiki is a namespace containing a forest of documents and a member roster.
// The wiki's creator implicitly holds full authority over every document in it.
type Wiki struct {
	bun.BaseModel `bun:"table:wikis,alias:w"`

	ID         string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	CreatorID  string    `bun:"creator_id,notnull"`
	Name       string    `bun:"name,notnull"`
	Visibility Status    `bun:"visibility,notnull,default:'private'"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// WikiMember records a user's membership in a wiki. Unique per (wiki, user).
type WikiMember struct {
	bun.BaseModel `bun:"table:wiki_members,alias:wm"`

	ID        string     `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	WikiID    string     `bun:"wiki_id,notnull"`
	UserID    string     `bun:"user_id,notnull"`
	Role      MemberRole `bun:"role,notnull"`
	CreatedAt time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// Document is a node in a wiki's document forest. ParentID empty means the
// document is a root of its wiki. All ancestors of a document belong to the
// same wiki and the parent chain terminates within maxTreeDepth.
//
// The share columns hold the public-share configuration. Invariant: ShareToken
// is set iff sharing made the document public; disabling the share clears all
// three columns and reverts status to private.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID        string `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	WikiID    string `bun:"wiki_id,notnull"`
	ParentID  string `bun:"parent_id,nullzero"`
	CreatorID string `bun:"creator_id,notnull"`
	Title     string `bun:"title,notnull"`
	Status    Status `bun:"status,notnull,default:'private'"`

	// Content is opaque to the authorization core.
	Content []byte `bun:"content"`
	Version int64  `bun:"version,notnull,default:1"`

	ShareToken        string    `bun:"share_token,nullzero"`
	SharePasswordHash []byte    `bun:"share_password_hash,nullzero"`
	ShareExpiresAt    time.Time `bun:"share_expires_at,nullzero"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// IsRoot reports whether the document is a root of its wiki.
func (d *Document) IsRoot() bool {
	return d.ParentID == ""
}

// Shared reports whether the document carries an active share configuration.
func (d *Document) Shared() bool {
	return d.ShareToken != ""
}

// Share returns a view of the document's share configuration, or nil if the
// document is not shared. The password hash is never exposed.
func (d *Document) Share() *ShareConfig {
	if !d.Shared() {
		return nil
	}
	return &ShareConfig{
		DocumentID:        d.ID,
		Token:             d.ShareToken,
		PasswordProtected: len(d.SharePasswordHash) > 0,
		ExpiresAt:         d.ShareExpiresAt,
	}
}

// ShareConfig is the public view of a document's share state.
type ShareConfig struct {
	DocumentID        string
	Token             string
	PasswordProtected bool
	ExpiresAt         time.Time // zero means no expiry
}

// Expired reports whether the share is past its expiry at the given time.
func (sc *ShareConfig) Expired(now time.Time) bool {
	return !sc.ExpiresAt.IsZero() && !now.Before(sc.ExpiresAt)
}

// DocGrant is an explicit authority record: (document, user, capability).
// Created only by the document's creator. Unique per (document, user).
// The capability is exact; a grant never escalates beyond its level.
type DocGrant struct {
	bun.BaseModel `bun:"table:doc_grants,alias:dg"`

	ID         string     `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	DocumentID string     `bun:"document_id,notnull"`
	UserID     string     `bun:"user_id,notnull"`
	Capability Capability `bun:"capability,notnull"`
	CreatedBy  string     `bun:"created_by,notnull"`
	CreatedAt  time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt  time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// DocStar is a user's bookmark of a wiki or a document. Exactly one of
// WikiID/DocumentID is set. Not security relevant.
type DocStar struct {
	bun.BaseModel `bun:"table:doc_stars,alias:st"`

	ID         string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID     string    `bun:"user_id,notnull"`
	WikiID     string    `bun:"wiki_id,nullzero"`
	DocumentID string    `bun:"document_id,nullzero"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// AccessAuditLog records authorization-relevant state changes (grants, shares,
// membership) and detected integrity faults, for compliance and operator
// attention.
type AccessAuditLog struct {
	bun.BaseModel `bun:"table:access_audit_log,alias:aal"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Timestamp time.Time `bun:"timestamp,notnull,default:current_timestamp"`

	// Who performed the action
	ActorID string `bun:"actor_id,notnull"`

	// What action was performed
	Action string `bun:"action,notnull"`

	// Target of the action
	DocumentID   string `bun:"document_id,nullzero"`
	WikiID       string `bun:"wiki_id,nullzero"`
	TargetUserID string `bun:"target_user_id,nullzero"`

	// Capability transition for grant changes
	PreviousCapability Capability `bun:"previous_capability,nullzero"`
	NewCapability      Capability `bun:"new_capability,nullzero"`

	// Free-form detail (integrity fault description, share changes)
	Detail string `bun:"detail,nullzero"`

	// Request metadata for forensics
	IPAddress string `bun:"ip_address"`
	UserAgent string `bun:"user_agent"`
	RequestID string `bun:"request_id"`

	// Additional context (JSON)
	Metadata map[string]any `bun:"metadata,type:jsonb"`
}

// AuditAction represents the type of action in the audit log.
type AuditAction string

const (
	AuditActionGranted        AuditAction = "granted"
	AuditActionRevoked        AuditAction = "revoked"
	AuditActionShared         AuditAction = "shared"
	AuditActionUnshared       AuditAction = "unshared"
	AuditActionMemberAdded    AuditAction = "member_added"
	AuditActionMemberRemoved  AuditAction = "member_removed"
	AuditActionDeleted        AuditAction = "deleted"
	AuditActionIntegrityFault AuditAction = "integrity_fault"
)

// AuditEntry is used to create new audit log entries.
type AuditEntry struct {
	ActorID            string
	Action             AuditAction
	DocumentID         string
	WikiID             string
	TargetUserID       string
	PreviousCapability Capability
	NewCapability      Capability
	Detail             string
	IPAddress          string
	UserAgent          string
	RequestID          string
	Metadata           map[string]any
}

// ToModel converts an AuditEntry to an AccessAuditLog model.
func (e *AuditEntry) ToModel() *AccessAuditLog {
	return &AccessAuditLog{
		ActorID:            e.ActorID,
		Action:             string(e.Action),
		DocumentID:         e.DocumentID,
		WikiID:             e.WikiID,
		TargetUserID:       e.TargetUserID,
		PreviousCapability: e.PreviousCapability,
		NewCapability:      e.NewCapability,
		Detail:             e.Detail,
		IPAddress:          e.IPAddress,
		UserAgent:          e.UserAgent,
		RequestID:          e.RequestID,
		Metadata:           e.Metadata,
		Timestamp:          time.Now(),
	}
}
