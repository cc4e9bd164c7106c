package wikigate

import (
	"context"
)

// Context keys for WikiGate values.
type contextKey string

const (
	contextKeyActorID   contextKey = "wikigate:actor_id"
	contextKeyIPAddress contextKey = "wikigate:ip_address"
	contextKeyUserAgent contextKey = "wikigate:user_agent"
	contextKeyRequestID contextKey = "wikigate:request_id"
	contextKeyAccess    contextKey = "wikigate:access"
)

// WithActorID adds the requesting user's ID to the context.
// Mutating operations and audit records require it.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, contextKeyActorID, actorID)
}

// GetActorID retrieves the actor ID from context.
// Returns empty string if not set (anonymous request).
func GetActorID(ctx context.Context) string {
	if v := ctx.Value(contextKeyActorID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// MustGetActorID retrieves the actor ID from context.
// Panics if not set.
func MustGetActorID(ctx context.Context) string {
	actorID := GetActorID(ctx)
	if actorID == "" {
		panic("wikigate: actor ID not in context")
	}
	return actorID
}

// WithIPAddress adds the client IP address to the context (for audit).
func WithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKeyIPAddress, ip)
}

// GetIPAddress retrieves the IP address from context.
func GetIPAddress(ctx context.Context) string {
	if v := ctx.Value(contextKeyIPAddress); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithUserAgent adds the user agent to the context (for audit).
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, contextKeyUserAgent, ua)
}

// GetUserAgent retrieves the user agent from context.
func GetUserAgent(ctx context.Context) string {
	if v := ctx.Value(contextKeyUserAgent); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context (for audit and correlation).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(contextKeyRequestID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithAccess adds a resolved Access view to the context.
// This is set by middleware and can be retrieved in handlers.
func WithAccess(ctx context.Context, access *Access) context.Context {
	return context.WithValue(ctx, contextKeyAccess, access)
}

// GetAccess retrieves the Access view from context.
// Returns nil if not set.
func GetAccess(ctx context.Context) *Access {
	if v := ctx.Value(contextKeyAccess); v != nil {
		if a, ok := v.(*Access); ok {
			return a
		}
	}
	return nil
}

// FromContext retrieves the Access view from context.
// Alias for GetAccess for convenience.
func FromContext(ctx context.Context) *Access {
	return GetAccess(ctx)
}

// AuditContext holds all audit-related information from context.
type AuditContext struct {
	ActorID   string
	IPAddress string
	UserAgent string
	RequestID string
}

// GetAuditContext extracts all audit information from context.
func GetAuditContext(ctx context.Context) AuditContext {
	return AuditContext{
		ActorID:   GetActorID(ctx),
		IPAddress: GetIPAddress(ctx),
		UserAgent: GetUserAgent(ctx),
		RequestID: GetRequestID(ctx),
	}
}

// WithAuditContext adds all audit information to context at once.
func WithAuditContext(ctx context.Context, ac AuditContext) context.Context {
	if ac.ActorID != "" {
		ctx = WithActorID(ctx, ac.ActorID)
	}
	if ac.IPAddress != "" {
		ctx = WithIPAddress(ctx, ac.IPAddress)
	}
	if ac.UserAgent != "" {
		ctx = WithUserAgent(ctx, ac.UserAgent)
	}
	if ac.RequestID != "" {
		ctx = WithRequestID(ctx, ac.RequestID)
	}
	return ctx
}
