package wikigate

import (
	"net/http"
)

// Middleware provides HTTP middleware that gates handlers through the Guard.
type Middleware struct {
	guard        GuardChecker
	getActorID   func(*http.Request) string
	errorHandler func(http.ResponseWriter, *http.Request, error)
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware)

// NewMiddleware creates a new Middleware instance.
//
// Example:
//
//	mw := wikigate.NewMiddleware(service,
//	    wikigate.WithActorExtractor(func(r *http.Request) string {
//	        return r.Context().Value("user_id").(string)
//	    }),
//	)
func NewMiddleware(guard GuardChecker, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		guard:        guard,
		getActorID:   defaultGetActorID,
		errorHandler: defaultErrorHandler,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithActorExtractor sets a custom function to extract the actor ID from a request.
func WithActorExtractor(fn func(*http.Request) string) MiddlewareOption {
	return func(m *Middleware) {
		m.getActorID = fn
	}
}

// WithErrorHandler sets a custom error handler for middleware.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) MiddlewareOption {
	return func(m *Middleware) {
		m.errorHandler = fn
	}
}

func defaultGetActorID(r *http.Request) string {
	return GetActorID(r.Context())
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case IsUnauthenticated(err):
		http.Error(w, "Unauthenticated", http.StatusUnauthorized)
	case IsForbidden(err):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case IsNotFound(err):
		http.Error(w, "Not Found", http.StatusNotFound)
	case IsExpired(err):
		http.Error(w, "Share Expired", http.StatusGone)
	case IsInvalidOperation(err):
		http.Error(w, "Bad Request", http.StatusBadRequest)
	default:
		// Integrity faults and store failures stay opaque to the caller.
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// DocumentExtractor extracts the target document ID from an HTTP request.
type DocumentExtractor func(*http.Request) (documentID string, err error)

// DocumentFromParam creates a DocumentExtractor that reads the document ID
// from a URL path parameter. Compatible with chi, gorilla/mux, and standard
// library patterns.
//
// Example:
//
//	// For route /documents/{docID}
//	mw.Require(wikigate.OpDocumentRead, wikigate.DocumentFromParam("docID"))
func DocumentFromParam(paramName string) DocumentExtractor {
	return func(r *http.Request) (string, error) {
		documentID := r.PathValue(paramName)
		if documentID == "" {
			// Try context (set by router middleware)
			if v := r.Context().Value(paramName); v != nil {
				if s, ok := v.(string); ok {
					documentID = s
				}
			}
		}
		if documentID == "" {
			return "", NewError(ErrNotFound, "document ID not found in request")
		}
		return documentID, nil
	}
}

// DocumentFromQuery creates a DocumentExtractor that reads the document ID
// from a query parameter.
func DocumentFromQuery(queryParam string) DocumentExtractor {
	return func(r *http.Request) (string, error) {
		documentID := r.URL.Query().Get(queryParam)
		if documentID == "" {
			return "", NewError(ErrNotFound, "document ID not found in query")
		}
		return documentID, nil
	}
}

// DocumentFromHeader creates a DocumentExtractor that reads the document ID
// from a header.
func DocumentFromHeader(headerName string) DocumentExtractor {
	return func(r *http.Request) (string, error) {
		documentID := r.Header.Get(headerName)
		if documentID == "" {
			return "", NewError(ErrNotFound, "document ID not found in header")
		}
		return documentID, nil
	}
}

// StaticDocument creates a DocumentExtractor that always returns the same ID.
func StaticDocument(documentID string) DocumentExtractor {
	return func(r *http.Request) (string, error) {
		return documentID, nil
	}
}

// shareCredentials pulls the share token and optional password from a request.
// The token comes from the "token" query parameter; the password from the
// X-Share-Password header, falling back to the "password" query parameter.
func shareCredentials(r *http.Request) (token, password string) {
	token = r.URL.Query().Get("token")
	password = r.Header.Get("X-Share-Password")
	if password == "" {
		password = r.URL.Query().Get("password")
	}
	return token, password
}

// Require creates middleware that gates a handler behind one operation from
// the operation table. Authenticated routes check the actor's authority;
// public-share routes check the token instead.
//
// Example:
//
//	router.Handle("/documents/{docID}",
//	    mw.Require(wikigate.OpDocumentUpdate, wikigate.DocumentFromParam("docID"))(updateHandler))
func (m *Middleware) Require(operation string, extractor DocumentExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			documentID, err := extractor(r)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}

			token, password := shareCredentials(r)
			req := GuardRequest{
				Operation:     operation,
				ActorID:       m.getActorID(r),
				DocumentID:    documentID,
				ShareToken:    token,
				SharePassword: password,
			}

			if err := m.guard.Check(r.Context(), req); err != nil {
				m.errorHandler(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoadAccess creates middleware that resolves the actor's effective capability
// on the target document and stores the Access view in context. Use this when
// the handler itself decides what to render.
//
// Example:
//
//	router.Handle("/documents/{docID}",
//	    mw.LoadAccess(wikigate.DocumentFromParam("docID"))(detailHandler))
//
//	func detailHandler(w http.ResponseWriter, r *http.Request) {
//	    access := wikigate.FromContext(r.Context())
//	    if access != nil && access.CanEdit() {
//	        // Show the editor controls
//	    }
//	}
func (m *Middleware) LoadAccess(extractor DocumentExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			documentID, err := extractor(r)
			if err != nil {
				// No target document, continue without access view
				next.ServeHTTP(w, r)
				return
			}

			access, err := m.guard.GetAccess(r.Context(), m.getActorID(r), documentID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithAccess(r.Context(), access)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// InjectAuditContext creates middleware that extracts audit information from
// the request and adds it to the context for use in grant, share and
// membership operations.
//
// Example:
//
//	router.Use(mw.InjectAuditContext())
func (m *Middleware) InjectAuditContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Extract IP address
			ip := r.Header.Get("X-Forwarded-For")
			if ip == "" {
				ip = r.Header.Get("X-Real-IP")
			}
			if ip == "" {
				ip = r.RemoteAddr
			}
			ctx = WithIPAddress(ctx, ip)

			// Extract User Agent
			ctx = WithUserAgent(ctx, r.UserAgent())

			// Extract Request ID (commonly set by other middleware)
			requestID := r.Header.Get("X-Request-ID")
			if requestID != "" {
				ctx = WithRequestID(ctx, requestID)
			}

			// Propagate actor ID if the extractor found one
			actorID := m.getActorID(r)
			if actorID != "" {
				ctx = WithActorID(ctx, actorID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
