package wikigate

import (
	"context"
	"fmt"
	"log"
	"time"
)

// maxTreeDepth bounds every ancestor walk. A chain longer than this is treated
// as corruption, so a cycle can never hang a request or overflow the stack.
const maxTreeDepth = 64

// Rule identifies which resolution rule produced a decision. Rules are checked
// in declaration order; the first match wins.
type Rule int8

const (
	// RuleNone means no rule matched: the actor has no authority.
	RuleNone Rule = iota

	// RuleDocumentCreator: the actor created the document.
	RuleDocumentCreator

	// RuleWikiCreator: the actor created the document's wiki.
	RuleWikiCreator

	// RuleGrant: an explicit grant on the document itself.
	RuleGrant

	// RuleInheritedGrant: the nearest ancestor carrying a grant for the actor.
	RuleInheritedGrant

	// RuleWikiAdmin: the actor is an admin member of the wiki.
	RuleWikiAdmin

	// RuleWikiMember: the actor is a plain member of the wiki.
	RuleWikiMember

	// RulePublicWiki: the wiki itself is public.
	RulePublicWiki
)

// String returns a short name for the rule.
func (r Rule) String() string {
	switch r {
	case RuleNone:
		return "none"
	case RuleDocumentCreator:
		return "document_creator"
	case RuleWikiCreator:
		return "wiki_creator"
	case RuleGrant:
		return "grant"
	case RuleInheritedGrant:
		return "inherited_grant"
	case RuleWikiAdmin:
		return "wiki_admin"
	case RuleWikiMember:
		return "wiki_member"
	case RulePublicWiki:
		return "public_wiki"
	}
	return fmt.Sprintf("rule(%d)", int8(r))
}

// Decision is the outcome of resolving (actor, document, requested capability).
type Decision struct {
	// Allowed reports whether the effective capability covers the request.
	Allowed bool

	// Capability is the actor's effective capability on the document,
	// regardless of what was requested.
	Capability Capability

	// Rule is the resolution rule that determined the capability.
	Rule Rule
}

// Resolver is the single authority over document access decisions. It combines
// document ownership, explicit grants, ancestor inheritance and wiki
// membership into one decision; no other component may duplicate this logic.
//
// The resolver only reads. It depends on narrow store interfaces so callers
// can wire any persistence behind it.
type Resolver struct {
	docs    DocumentReader
	members MembershipReader
	monitor *gateMonitor // optional decision metrics
}

// NewResolver creates a Resolver over the given read-only stores.
func NewResolver(docs DocumentReader, members MembershipReader) *Resolver {
	return &Resolver{
		docs:    docs,
		members: members,
	}
}

// Resolve decides whether the actor may exercise the required capability on
// the document. An empty actorID resolves as an anonymous visitor.
//
// The returned error is nil for a clean allow or deny. It is non-nil when the
// document does not exist (ErrNotFound), the tree is corrupt (ErrIntegrity),
// or a store read failed; all of these resolve as deny.
func (r *Resolver) Resolve(ctx context.Context, actorID, documentID string, required Capability) (Decision, error) {
	start := time.Now()

	if !required.Valid() {
		return Decision{}, NewError(ErrInvalidCapability, fmt.Sprintf("cannot request capability %q", required)).
			WithDocument(documentID).
			WithActor(actorID)
	}

	capability, rule, err := r.effective(ctx, actorID, documentID)
	if err != nil {
		r.record(start, false, IsIntegrity(err))
		return Decision{}, err
	}

	d := Decision{
		Allowed:    capability.Covers(required),
		Capability: capability,
		Rule:       rule,
	}
	r.record(start, d.Allowed, false)
	return d, nil
}

// Authorize is Resolve mapped onto the error taxonomy: nil on allow,
// ErrForbidden with context on deny.
func (r *Resolver) Authorize(ctx context.Context, actorID, documentID string, required Capability) error {
	d, err := r.Resolve(ctx, actorID, documentID, required)
	if err != nil {
		return err
	}
	if !d.Allowed {
		return NewError(ErrForbidden, "insufficient capability").
			WithDocument(documentID).
			WithActor(actorID).
			WithCapability(required)
	}
	return nil
}

// EffectiveCapability returns the actor's effective capability on the document
// and the rule that produced it. UI layers use this to decide which controls
// to render; it runs the exact same rule chain as Resolve.
func (r *Resolver) EffectiveCapability(ctx context.Context, actorID, documentID string) (Capability, Rule, error) {
	return r.effective(ctx, actorID, documentID)
}

// effective runs the rule chain, first match wins:
//
//  1. document creator           -> createUser
//  2. wiki creator               -> createUser
//  3. explicit grant             -> exactly the granted capability
//  4. nearest-ancestor grant     -> exactly the inherited capability
//  5. wiki admin member          -> editable
//     plain member / public wiki -> readable
//  6. nothing                    -> none
func (r *Resolver) effective(ctx context.Context, actorID, documentID string) (Capability, Rule, error) {
	doc, err := r.docs.GetDocument(ctx, documentID)
	if err != nil {
		return CapabilityNone, RuleNone, err
	}

	if actorID != "" && doc.CreatorID == actorID {
		return CapabilityCreateUser, RuleDocumentCreator, nil
	}

	wiki, err := r.members.GetWiki(ctx, doc.WikiID)
	if err != nil {
		if IsNotFound(err) {
			return CapabilityNone, RuleNone, r.integrityFault(doc, "document references a missing wiki")
		}
		return CapabilityNone, RuleNone, err
	}

	if actorID != "" && wiki.CreatorID == actorID {
		return CapabilityCreateUser, RuleWikiCreator, nil
	}

	if actorID != "" {
		grant, err := r.docs.GetGrant(ctx, doc.ID, actorID)
		if err != nil {
			return CapabilityNone, RuleNone, err
		}
		if grant != nil {
			return grant.Capability, RuleGrant, nil
		}

		inherited, found, err := r.inheritedGrant(ctx, doc, actorID)
		if err != nil {
			return CapabilityNone, RuleNone, err
		}
		if found {
			return inherited, RuleInheritedGrant, nil
		}

		member, err := r.members.GetMembership(ctx, doc.WikiID, actorID)
		if err != nil {
			return CapabilityNone, RuleNone, err
		}
		if member != nil {
			if member.Role == RoleAdmin {
				return CapabilityEditable, RuleWikiAdmin, nil
			}
			return CapabilityReadable, RuleWikiMember, nil
		}
	}

	if wiki.Visibility == StatusPublic {
		return CapabilityReadable, RulePublicWiki, nil
	}

	return CapabilityNone, RuleNone, nil
}

// inheritedGrant walks the parent chain looking for the nearest ancestor
// carrying an explicit grant for the actor. The walk is bounded: a cycle, a
// dangling parent or an ancestor outside the document's wiki is a data
// integrity fault, not a permission decision, and fails closed.
//
// A parent may be deleted between two reads of the walk; that surfaces the
// same way as a dangling reference.
func (r *Resolver) inheritedGrant(ctx context.Context, doc *Document, actorID string) (Capability, bool, error) {
	seen := map[string]bool{doc.ID: true}
	parentID := doc.ParentID

	for depth := 0; parentID != ""; depth++ {
		if depth >= maxTreeDepth {
			return CapabilityNone, false, r.integrityFault(doc, "ancestor chain exceeds depth bound")
		}
		if seen[parentID] {
			return CapabilityNone, false, r.integrityFault(doc, "cycle in document tree")
		}
		seen[parentID] = true

		parent, err := r.docs.GetDocument(ctx, parentID)
		if err != nil {
			if IsNotFound(err) {
				return CapabilityNone, false, r.integrityFault(doc, fmt.Sprintf("dangling parent reference %s", parentID))
			}
			return CapabilityNone, false, err
		}
		if parent.WikiID != doc.WikiID {
			return CapabilityNone, false, r.integrityFault(doc, "ancestor belongs to another wiki")
		}

		grant, err := r.docs.GetGrant(ctx, parent.ID, actorID)
		if err != nil {
			return CapabilityNone, false, err
		}
		if grant != nil {
			return grant.Capability, true, nil
		}

		parentID = parent.ParentID
	}

	return CapabilityNone, false, nil
}

// integrityFault builds the ErrIntegrity error and flags it for operator
// attention. Integrity faults must never be swallowed into a plain deny.
func (r *Resolver) integrityFault(doc *Document, detail string) error {
	log.Printf("wikigate: integrity fault on document %s (wiki %s): %s", doc.ID, doc.WikiID, detail)
	return NewError(ErrIntegrity, detail).
		WithDocument(doc.ID).
		WithWiki(doc.WikiID)
}

func (r *Resolver) record(start time.Time, allowed, integrity bool) {
	if r.monitor != nil {
		r.monitor.recordDecision(time.Since(start), allowed, integrity)
	}
}
