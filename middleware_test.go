package wikigate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGuard is a GuardChecker that records the last request and returns a
// configured result.
type stubGuard struct {
	checkErr  error
	access    *Access
	accessErr error
	lastReq   GuardRequest
}

func (s *stubGuard) Check(ctx context.Context, req GuardRequest) error {
	s.lastReq = req
	return s.checkErr
}

func (s *stubGuard) GetAccess(ctx context.Context, actorID, documentID string) (*Access, error) {
	return s.access, s.accessErr
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

// TestMiddlewareRequireAllows tests that an allowed request reaches the handler
func TestMiddlewareRequireAllows(t *testing.T) {
	guard := &stubGuard{}
	mw := NewMiddleware(guard)

	handler, called := okHandler()
	mux := http.NewServeMux()
	mux.Handle("GET /documents/{docID}", mw.Require(OpDocumentRead, DocumentFromParam("docID"))(handler))

	req := httptest.NewRequest(http.MethodGet, "/documents/doc1", nil)
	req = req.WithContext(WithActorID(req.Context(), "user1"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *called)
	assert.Equal(t, OpDocumentRead, guard.lastReq.Operation)
	assert.Equal(t, "user1", guard.lastReq.ActorID)
	assert.Equal(t, "doc1", guard.lastReq.DocumentID)
}

// TestMiddlewareRequireStatusCodes tests the default error mapping
func TestMiddlewareRequireStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"Unauthenticated", NewError(ErrUnauthenticated, ""), http.StatusUnauthorized},
		{"Forbidden", NewError(ErrForbidden, ""), http.StatusForbidden},
		{"NotFound", NewError(ErrNotFound, ""), http.StatusNotFound},
		{"Expired", NewError(ErrExpired, ""), http.StatusGone},
		{"InvalidOperation", NewError(ErrInvalidOperation, ""), http.StatusBadRequest},
		{"Integrity", NewError(ErrIntegrity, ""), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := &stubGuard{checkErr: tt.err}
			mw := NewMiddleware(guard)

			handler, called := okHandler()
			wrapped := mw.Require(OpDocumentRead, StaticDocument("doc1"))(handler)

			req := httptest.NewRequest(http.MethodGet, "/documents/doc1", nil)
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			assert.False(t, *called)
		})
	}
}

// TestMiddlewareShareCredentials tests token and password extraction on share routes
func TestMiddlewareShareCredentials(t *testing.T) {
	guard := &stubGuard{}
	mw := NewMiddleware(guard)

	handler, _ := okHandler()
	wrapped := mw.Require(OpDocumentPublic, StaticDocument("doc1"))(handler)

	req := httptest.NewRequest(http.MethodGet, "/public/doc1?token=tok-1&password=qp", nil)
	req.Header.Set("X-Share-Password", "hdr")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, "tok-1", guard.lastReq.ShareToken)
	// Header wins over the query parameter
	assert.Equal(t, "hdr", guard.lastReq.SharePassword)

	req = httptest.NewRequest(http.MethodGet, "/public/doc1?token=tok-1&password=qp", nil)
	wrapped.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "qp", guard.lastReq.SharePassword)
}

// TestMiddlewareMissingDocumentID tests extractor failure handling
func TestMiddlewareMissingDocumentID(t *testing.T) {
	guard := &stubGuard{}
	mw := NewMiddleware(guard)

	handler, called := okHandler()
	wrapped := mw.Require(OpDocumentRead, DocumentFromQuery("doc"))(handler)

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, *called)
}

// TestMiddlewareCustomActorExtractor tests the WithActorExtractor option
func TestMiddlewareCustomActorExtractor(t *testing.T) {
	guard := &stubGuard{}
	mw := NewMiddleware(guard, WithActorExtractor(func(r *http.Request) string {
		return r.Header.Get("X-User-ID")
	}))

	handler, _ := okHandler()
	wrapped := mw.Require(OpDocumentRead, StaticDocument("doc1"))(handler)

	req := httptest.NewRequest(http.MethodGet, "/documents/doc1", nil)
	req.Header.Set("X-User-ID", "header-user")
	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "header-user", guard.lastReq.ActorID)
}

// TestMiddlewareCustomErrorHandler tests the WithErrorHandler option
func TestMiddlewareCustomErrorHandler(t *testing.T) {
	guard := &stubGuard{checkErr: NewError(ErrForbidden, "")}
	var got error
	mw := NewMiddleware(guard, WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusTeapot)
	}))

	handler, _ := okHandler()
	wrapped := mw.Require(OpDocumentRead, StaticDocument("doc1"))(handler)

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.True(t, IsForbidden(got))
}

// TestMiddlewareLoadAccess tests the access view loader
func TestMiddlewareLoadAccess(t *testing.T) {
	access := &Access{ActorID: "user1", DocumentID: "doc1", Capability: CapabilityEditable, Rule: RuleGrant}
	guard := &stubGuard{access: access}
	mw := NewMiddleware(guard)

	var seen *Access
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	})

	wrapped := mw.LoadAccess(StaticDocument("doc1"))(handler)
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, seen)
	assert.True(t, seen.CanEdit())
	assert.False(t, seen.CanAdminister())
	assert.Equal(t, RuleGrant, seen.Rule)
}

// TestMiddlewareLoadAccessFailureContinues tests that a failed load does not block the handler
func TestMiddlewareLoadAccessFailureContinues(t *testing.T) {
	guard := &stubGuard{accessErr: NewError(ErrNotFound, "")}
	mw := NewMiddleware(guard)

	handler, called := okHandler()
	wrapped := mw.LoadAccess(StaticDocument("doc1"))(handler)
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, *called)
}

// TestMiddlewareInjectAuditContext tests audit metadata extraction
func TestMiddlewareInjectAuditContext(t *testing.T) {
	guard := &stubGuard{}
	mw := NewMiddleware(guard, WithActorExtractor(func(r *http.Request) string {
		return r.Header.Get("X-User-ID")
	}))

	var ac AuditContext
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac = GetAuditContext(r.Context())
	})

	wrapped := mw.InjectAuditContext()(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("X-Request-ID", "req-42")
	req.Header.Set("X-User-ID", "user1")
	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "203.0.113.9", ac.IPAddress)
	assert.Equal(t, "test-agent", ac.UserAgent)
	assert.Equal(t, "req-42", ac.RequestID)
	assert.Equal(t, "user1", ac.ActorID)
}

// TestMiddlewareEndToEnd tests the middleware against a real guard over the in-memory store
func TestMiddlewareEndToEnd(t *testing.T) {
	store := newMemStore()
	store.addWiki("wiki1", "owner", StatusPrivate)
	store.addDocument("doc1", "wiki1", "", "creator")
	store.addGrant("doc1", "reader", CapabilityReadable)

	guard := newTestGuard(store)
	mw := NewMiddleware(guard)

	handler, _ := okHandler()
	mux := http.NewServeMux()
	mux.Handle("GET /documents/{docID}", mw.Require(OpDocumentRead, DocumentFromParam("docID"))(handler))
	mux.Handle("PUT /documents/{docID}", mw.Require(OpDocumentUpdate, DocumentFromParam("docID"))(handler))

	get := func(method, path, actor string) int {
		req := httptest.NewRequest(method, path, nil)
		if actor != "" {
			req = req.WithContext(WithActorID(req.Context(), actor))
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, get(http.MethodGet, "/documents/doc1", "reader"))
	assert.Equal(t, http.StatusForbidden, get(http.MethodPut, "/documents/doc1", "reader"))
	assert.Equal(t, http.StatusOK, get(http.MethodPut, "/documents/doc1", "creator"))
	assert.Equal(t, http.StatusUnauthorized, get(http.MethodGet, "/documents/doc1", ""))
	assert.Equal(t, http.StatusNotFound, get(http.MethodGet, "/documents/missing", "reader"))
}
