package wikigate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContextActorID tests actor ID storage and retrieval
func TestContextActorID(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "", GetActorID(ctx))

	ctx = WithActorID(ctx, "user1")
	assert.Equal(t, "user1", GetActorID(ctx))
	assert.Equal(t, "user1", MustGetActorID(ctx))
}

// TestContextMustGetActorIDPanics tests the panic on a missing actor
func TestContextMustGetActorIDPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustGetActorID(context.Background())
	})
}

// TestContextRequestMetadata tests IP, user agent and request ID helpers
func TestContextRequestMetadata(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "", GetIPAddress(ctx))
	assert.Equal(t, "", GetUserAgent(ctx))
	assert.Equal(t, "", GetRequestID(ctx))

	ctx = WithIPAddress(ctx, "203.0.113.9")
	ctx = WithUserAgent(ctx, "test-agent")
	ctx = WithRequestID(ctx, "req-42")

	assert.Equal(t, "203.0.113.9", GetIPAddress(ctx))
	assert.Equal(t, "test-agent", GetUserAgent(ctx))
	assert.Equal(t, "req-42", GetRequestID(ctx))
}

// TestContextAccess tests the Access view helpers
func TestContextAccess(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetAccess(ctx))
	assert.Nil(t, FromContext(ctx))

	access := &Access{ActorID: "user1", DocumentID: "doc1", Capability: CapabilityReadable}
	ctx = WithAccess(ctx, access)

	assert.Equal(t, access, GetAccess(ctx))
	assert.Equal(t, access, FromContext(ctx))
}

// TestAuditContextRoundTrip tests GetAuditContext/WithAuditContext
func TestAuditContextRoundTrip(t *testing.T) {
	ac := AuditContext{
		ActorID:   "user1",
		IPAddress: "203.0.113.9",
		UserAgent: "test-agent",
		RequestID: "req-42",
	}

	ctx := WithAuditContext(context.Background(), ac)
	assert.Equal(t, ac, GetAuditContext(ctx))

	// Empty fields do not overwrite existing values
	ctx = WithAuditContext(ctx, AuditContext{RequestID: "req-43"})
	got := GetAuditContext(ctx)
	assert.Equal(t, "user1", got.ActorID)
	assert.Equal(t, "req-43", got.RequestID)
}

// TestAccessPredicates tests the Access capability helpers
func TestAccessPredicates(t *testing.T) {
	a := &Access{ActorID: "user1", Capability: CapabilityEditable, Rule: RuleGrant}
	assert.True(t, a.CanRead())
	assert.True(t, a.CanEdit())
	assert.False(t, a.CanAdminister())
	assert.False(t, a.IsAnonymous())

	anon := &Access{Capability: CapabilityReadable, Rule: RulePublicWiki}
	assert.True(t, anon.IsAnonymous())
	assert.True(t, anon.CanRead())
	assert.False(t, anon.CanEdit())

	none := &Access{ActorID: "user1"}
	assert.False(t, none.CanRead())
	assert.False(t, none.Can(CapabilityNone), "none is not a grantable requirement")
}
