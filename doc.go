// Package wikigate provides document authorization and visibility control for
// collaborative wiki platforms.
//
// WikiGate decides, for every (actor, document, operation) triple, whether the
// operation may proceed. Decisions combine document ownership, explicit
// per-document grants, grant inheritance along the document tree, wiki
// membership, and public share links into a single deterministic rule chain.
//
// # Core Concepts
//
// Capability: one of three ordered levels of authority over a document.
// "readable" < "editable" < "createUser". A capability covers every level at
// or below it; createUser additionally allows granting, moving, deleting and
// sharing.
//
// Document tree: documents form a forest inside each wiki. A grant placed on a
// document also applies to its descendants; when several ancestors carry
// grants for the same user, the closest one wins.
//
// Share: a document can be published behind an unguessable token, optionally
// password-protected and time-limited. Share access is capability-free
// read-only access, resolved independently of the membership rules.
//
// # Resolution Order
//
// The resolver evaluates rules in a fixed order and the first match wins:
//
//  1. Document creator -> createUser
//  2. Wiki creator -> createUser
//  3. Explicit grant on the document -> the granted capability
//  4. Grant on the nearest ancestor -> the granted capability
//  5. Wiki membership: admin -> editable, member -> readable
//  6. Public wiki -> readable
//  7. Otherwise: deny
//
// Tree walks are bounded and cycle-checked; a malformed tree fails closed.
//
// # Basic Usage
//
//	// 1. Define the guarded operations (at application startup)
//	ops := wikigate.DefaultOperations()
//
//	// 2. Create the service
//	service := wikigate.NewService(ops, db)
//
//	// 3. Run migrations
//	db.Migrate(ctx, wikigate.NewMigrationService(service).Migrations())
//
//	// 4. Manage authority
//	service.GrantCapability(ctx, docID, userID, wikigate.CapabilityEditable)
//	service.ShareDocument(ctx, docID, wikigate.ShareOptions{Enable: true})
//
//	// 5. Check authority
//	if err := service.Authorize(ctx, userID, docID, wikigate.CapabilityEditable); err == nil {
//	    // user may edit
//	}
//
// # Middleware Usage
//
//	mw := wikigate.NewMiddleware(service.Guard())
//
//	mux.Handle("GET /documents/{docID}",
//	    mw.Require(wikigate.OpDocumentRead, wikigate.DocumentFromParam("docID"))(readHandler))
//
//	mux.Handle("PUT /documents/{docID}",
//	    mw.Require(wikigate.OpDocumentUpdate, wikigate.DocumentFromParam("docID"))(updateHandler))
//
// # Audit Log
//
// All authority changes (grants, revocations, shares, membership changes,
// deletions) and detected tree integrity faults are logged with the acting
// user, the target, the capability transition and request metadata.
package wikigate
