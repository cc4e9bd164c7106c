package wikigate

import (
	"github.com/fernandezvara/dbkit"
)

// MigrationService provides migration management functionality as an extension to Service
type MigrationService struct {
	*Service
}

// NewMigrationService creates a new migration service extension
func NewMigrationService(service *Service) *MigrationService {
	return &MigrationService{Service: service}
}

// Migrations returns all database migrations required for WikiGate.
// Use dbkit.Migrate(ctx, service.Migrations()) to run migrations.
// Use dbkit.MigrationStatus(ctx, service.Migrations()) to check status.
func (ms *MigrationService) Migrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "wikigate-001",
			Description: "Create wikis table",
			SQL: `
                CREATE TABLE IF NOT EXISTS wikis (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    creator_id TEXT NOT NULL,
                    name TEXT NOT NULL,
                    visibility TEXT NOT NULL DEFAULT 'private',
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "wikigate-002",
			Description: "Create wiki_members table",
			SQL: `
                CREATE TABLE IF NOT EXISTS wiki_members (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    wiki_id UUID NOT NULL REFERENCES wikis(id),
                    user_id TEXT NOT NULL,
                    role TEXT NOT NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    UNIQUE (wiki_id, user_id)
                )`,
		},
		{
			ID:          "wikigate-003",
			Description: "Create documents table",
			SQL: `
                CREATE TABLE IF NOT EXISTS documents (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    wiki_id UUID NOT NULL REFERENCES wikis(id),
                    parent_id UUID REFERENCES documents(id),
                    creator_id TEXT NOT NULL,
                    title TEXT NOT NULL,
                    status TEXT NOT NULL DEFAULT 'private',
                    content BYTEA,
                    version BIGINT NOT NULL DEFAULT 1,
                    share_token TEXT,
                    share_password_hash BYTEA,
                    share_expires_at TIMESTAMPTZ,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "wikigate-004",
			Description: "Create documents indexes",
			SQL: `
                CREATE INDEX IF NOT EXISTS idx_documents_wiki ON documents (wiki_id);
                CREATE INDEX IF NOT EXISTS idx_documents_parent ON documents (parent_id);
                CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_share_token ON documents (share_token) WHERE share_token IS NOT NULL`,
		},
		{
			ID:          "wikigate-005",
			Description: "Create doc_grants table",
			SQL: `
                CREATE TABLE IF NOT EXISTS doc_grants (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    document_id UUID NOT NULL REFERENCES documents(id),
                    user_id TEXT NOT NULL,
                    capability TEXT NOT NULL,
                    created_by TEXT NOT NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    UNIQUE (document_id, user_id)
                )`,
		},
		{
			ID:          "wikigate-006",
			Description: "Create doc_stars table",
			SQL: `
                CREATE TABLE IF NOT EXISTS doc_stars (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    user_id TEXT NOT NULL,
                    wiki_id UUID,
                    document_id UUID,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    CHECK ((wiki_id IS NULL) <> (document_id IS NULL))
                );
                CREATE UNIQUE INDEX IF NOT EXISTS idx_doc_stars_document ON doc_stars (user_id, document_id) WHERE document_id IS NOT NULL;
                CREATE UNIQUE INDEX IF NOT EXISTS idx_doc_stars_wiki ON doc_stars (user_id, wiki_id) WHERE wiki_id IS NOT NULL`,
		},
		{
			ID:          "wikigate-007",
			Description: "Create access_audit_log table",
			SQL: `
                CREATE TABLE IF NOT EXISTS access_audit_log (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    timestamp TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    actor_id TEXT NOT NULL,
                    action TEXT NOT NULL,
                    document_id TEXT,
                    wiki_id TEXT,
                    target_user_id TEXT,
                    previous_capability TEXT,
                    new_capability TEXT,
                    detail TEXT,
                    ip_address TEXT,
                    user_agent TEXT,
                    request_id TEXT,
                    metadata JSONB
                )`,
		},
	}
}
