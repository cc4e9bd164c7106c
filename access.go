package wikigate

// Access is a resolved view of one actor's authority over one document.
// It is typically loaded by middleware and stored in context so handlers can
// decide what to render without re-querying.
//
// An Access is a snapshot: it reflects the grants and memberships at the time
// it was resolved.
type Access struct {
	ActorID    string
	DocumentID string
	Capability Capability
	Rule       Rule
}

// Can reports whether the snapshot covers the required capability.
func (a *Access) Can(required Capability) bool {
	return a.Capability.Covers(required)
}

// CanRead reports whether the actor may view the document.
func (a *Access) CanRead() bool {
	return a.Can(CapabilityReadable)
}

// CanEdit reports whether the actor may modify the document.
func (a *Access) CanEdit() bool {
	return a.Can(CapabilityEditable)
}

// CanAdminister reports whether the actor may delete the document and manage
// its grants.
func (a *Access) CanAdminister() bool {
	return a.Can(CapabilityCreateUser)
}

// IsAnonymous reports whether the snapshot was resolved without an actor.
func (a *Access) IsAnonymous() bool {
	return a.ActorID == ""
}
