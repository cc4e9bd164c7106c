package wikigate

import (
	"fmt"
	"sync"
)

// OperationSet is the static table mapping operation identifiers to the
// capability they require. It is created at startup and should be treated as
// immutable after initialization. The guard consults it per request; there is
// no runtime reflection anywhere in the dispatch path.
type OperationSet struct {
	mu  sync.RWMutex
	ops map[string]*OperationDefinition
}

// OperationDefinition describes one guarded operation: the capability it
// requires, or the public-share flag for token-based routes.
type OperationDefinition struct {
	name     string
	required Capability
	public   bool
	set      *OperationSet
}

// NewOperationSet creates an empty operation set.
func NewOperationSet() *OperationSet {
	return &OperationSet{
		ops: make(map[string]*OperationDefinition),
	}
}

// Define starts defining an operation.
// Returns an OperationDefinition builder for fluent configuration.
//
// Example:
//
//	ops.Define("document.update").Requires(CapabilityEditable).
//	    Define("document.public").Public()
func (s *OperationSet) Define(name string) *OperationDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()

	op := &OperationDefinition{
		name: name,
		set:  s,
	}
	s.ops[name] = op
	return op
}

// Get returns the definition for an operation, or nil if not defined.
func (s *OperationSet) Get(name string) *OperationDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ops[name]
}

// Names returns all defined operation names.
func (s *OperationSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.ops))
	for name := range s.ops {
		names = append(names, name)
	}
	return names
}

// Validate checks if an operation is defined.
func (s *OperationSet) Validate(name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.ops[name]; !exists {
		return fmt.Errorf("%w: operation %q not defined", ErrInvalidOperation, name)
	}
	return nil
}

// Requires sets the capability an authenticated actor must hold.
func (d *OperationDefinition) Requires(c Capability) *OperationDefinition {
	d.required = c
	return d
}

// Public marks the operation as a public-share route: the guard validates the
// share token instead of the actor's authority, and ignores actor identity
// entirely.
func (d *OperationDefinition) Public() *OperationDefinition {
	d.public = true
	return d
}

// Define continues defining operations on the parent set (fluent API).
func (d *OperationDefinition) Define(name string) *OperationDefinition {
	return d.set.Define(name)
}

// Name returns the operation name.
func (d *OperationDefinition) Name() string {
	return d.name
}

// RequiredCapability returns the capability the operation requires.
func (d *OperationDefinition) RequiredCapability() Capability {
	return d.required
}

// IsPublic reports whether the operation is a public-share route.
func (d *OperationDefinition) IsPublic() bool {
	return d.public
}

// DefaultOperations returns the standard operation table for a wiki platform.
// Applications may extend it or build their own set.
func DefaultOperations() *OperationSet {
	ops := NewOperationSet()

	ops.Define(OpDocumentRead).Requires(CapabilityReadable).
		Define(OpDocumentUpdate).Requires(CapabilityEditable).
		Define(OpDocumentMove).Requires(CapabilityCreateUser).
		Define(OpDocumentDelete).Requires(CapabilityCreateUser).
		Define(OpDocumentShare).Requires(CapabilityEditable).
		Define(OpGrantCreate).Requires(CapabilityCreateUser).
		Define(OpGrantRevoke).Requires(CapabilityCreateUser).
		Define(OpMemberAdd).Requires(CapabilityCreateUser).
		Define(OpMemberRemove).Requires(CapabilityCreateUser).
		Define(OpDocumentPublic).Public().
		Define(OpDocumentPublicChildren).Public()

	return ops
}

// Standard operation identifiers used by DefaultOperations.
const (
	OpDocumentRead           = "document.read"
	OpDocumentUpdate         = "document.update"
	OpDocumentMove           = "document.move"
	OpDocumentDelete         = "document.delete"
	OpDocumentShare          = "document.share"
	OpGrantCreate            = "grant.create"
	OpGrantRevoke            = "grant.revoke"
	OpMemberAdd              = "member.add"
	OpMemberRemove           = "member.remove"
	OpDocumentPublic         = "document.public"
	OpDocumentPublicChildren = "document.public.children"
)
