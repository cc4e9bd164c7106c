package wikigate

import (
	"errors"
	"fmt"
)

// Sentinel errors for WikiGate decisions and operations.
var (
	// ErrUnauthenticated is returned when an authenticated route is hit
	// without an actor. Retryable after login.
	ErrUnauthenticated = errors.New("wikigate: unauthenticated")

	// ErrForbidden is returned when the actor is known but the resolved
	// capability does not cover the requested one. Terminal for the request.
	ErrForbidden = errors.New("wikigate: forbidden")

	// ErrNotFound is returned when a document or wiki does not exist.
	ErrNotFound = errors.New("wikigate: not found")

	// ErrIntegrity is returned when the document tree is corrupt: a cycle,
	// a dangling parent, or an ancestor outside the document's wiki.
	// Always resolved as deny, never as a plain ErrForbidden.
	ErrIntegrity = errors.New("wikigate: tree integrity fault")

	// ErrExpired is returned when a share link is past its expiry.
	ErrExpired = errors.New("wikigate: share expired")

	// ErrInvalidOperation is returned when an operation is not defined in
	// the operation set.
	ErrInvalidOperation = errors.New("wikigate: invalid operation")

	// ErrInvalidCapability is returned for a capability outside the lattice.
	ErrInvalidCapability = errors.New("wikigate: invalid capability")

	// ErrInvalidRole is returned for a membership role that is not defined.
	ErrInvalidRole = errors.New("wikigate: invalid role")

	// ErrInvalidParent is returned when a create or move targets a parent
	// that would break the tree (missing, cross-wiki, or a descendant).
	ErrInvalidParent = errors.New("wikigate: invalid parent")

	// ErrGrantExists is returned when creating a grant the user already has.
	ErrGrantExists = errors.New("wikigate: grant already exists")

	// ErrGrantNotFound is returned when revoking a grant the user does not have.
	ErrGrantNotFound = errors.New("wikigate: grant not found")

	// ErrMemberExists is returned when adding a user already in the wiki.
	ErrMemberExists = errors.New("wikigate: member already exists")

	// ErrMemberNotFound is returned when removing a user not in the wiki.
	ErrMemberNotFound = errors.New("wikigate: member not found")

	// ErrNoActorID is returned when an operation that mutates state is
	// called without an actor ID in context.
	ErrNoActorID = errors.New("wikigate: no actor ID in context")

	// ErrDatabase is returned when a database operation fails.
	ErrDatabase = errors.New("wikigate: database error")
)

// Error wraps a sentinel error with decision context.
type Error struct {
	Err        error      // Underlying sentinel error
	Message    string     // Additional context
	DocumentID string     // Document involved (if applicable)
	WikiID     string     // Wiki involved (if applicable)
	ActorID    string     // Actor whose request triggered the error
	UserID     string     // Target user (if applicable)
	Capability Capability // Capability involved (if applicable)
	Operation  string     // Guarded operation (if applicable)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithDocument adds document information to the error.
func (e *Error) WithDocument(documentID string) *Error {
	e.DocumentID = documentID
	return e
}

// WithWiki adds wiki information to the error.
func (e *Error) WithWiki(wikiID string) *Error {
	e.WikiID = wikiID
	return e
}

// WithActor adds the requesting actor to the error.
func (e *Error) WithActor(actorID string) *Error {
	e.ActorID = actorID
	return e
}

// WithUser adds the target user to the error.
func (e *Error) WithUser(userID string) *Error {
	e.UserID = userID
	return e
}

// WithCapability adds the capability involved to the error.
func (e *Error) WithCapability(c Capability) *Error {
	e.Capability = c
	return e
}

// WithOperation adds the guarded operation to the error.
func (e *Error) WithOperation(operation string) *Error {
	e.Operation = operation
	return e
}

// IsUnauthenticated checks if an error is a missing-actor error.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// IsForbidden checks if an error is a capability denial.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsNotFound checks if an error is a missing document or wiki.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsIntegrity checks if an error is a tree integrity fault.
func IsIntegrity(err error) bool {
	return errors.Is(err, ErrIntegrity)
}

// IsExpired checks if an error is an expired share link.
func IsExpired(err error) bool {
	return errors.Is(err, ErrExpired)
}

// IsInvalidOperation checks if an error is an undefined operation.
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}
