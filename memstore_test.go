package wikigate

import (
	"context"
	"time"
)

// memStore is an in-memory DocumentReader/MembershipReader used by the
// resolver, share gate and guard tests. No database required.
type memStore struct {
	wikis   map[string]*Wiki
	docs    map[string]*Document
	members map[string]*WikiMember // key: wikiID + "/" + userID
	grants  map[string]*DocGrant   // key: documentID + "/" + userID
}

func newMemStore() *memStore {
	return &memStore{
		wikis:   make(map[string]*Wiki),
		docs:    make(map[string]*Document),
		members: make(map[string]*WikiMember),
		grants:  make(map[string]*DocGrant),
	}
}

func (m *memStore) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	doc, ok := m.docs[documentID]
	if !ok {
		return nil, NewError(ErrNotFound, "document not found").WithDocument(documentID)
	}
	return doc, nil
}

func (m *memStore) GetGrant(ctx context.Context, documentID, userID string) (*DocGrant, error) {
	return m.grants[documentID+"/"+userID], nil
}

func (m *memStore) GetWiki(ctx context.Context, wikiID string) (*Wiki, error) {
	wiki, ok := m.wikis[wikiID]
	if !ok {
		return nil, NewError(ErrNotFound, "wiki not found").WithWiki(wikiID)
	}
	return wiki, nil
}

func (m *memStore) GetMembership(ctx context.Context, wikiID, userID string) (*WikiMember, error) {
	return m.members[wikiID+"/"+userID], nil
}

func (m *memStore) addWiki(id, creatorID string, visibility Status) *Wiki {
	w := &Wiki{ID: id, CreatorID: creatorID, Name: id, Visibility: visibility}
	m.wikis[id] = w
	return w
}

func (m *memStore) addDocument(id, wikiID, parentID, creatorID string) *Document {
	d := &Document{
		ID:        id,
		WikiID:    wikiID,
		ParentID:  parentID,
		CreatorID: creatorID,
		Title:     id,
		Status:    StatusPrivate,
		Version:   1,
	}
	m.docs[id] = d
	return d
}

func (m *memStore) addMember(wikiID, userID string, role MemberRole) *WikiMember {
	wm := &WikiMember{WikiID: wikiID, UserID: userID, Role: role}
	m.members[wikiID+"/"+userID] = wm
	return wm
}

func (m *memStore) addGrant(documentID, userID string, c Capability) *DocGrant {
	g := &DocGrant{DocumentID: documentID, UserID: userID, Capability: c}
	m.grants[documentID+"/"+userID] = g
	return g
}

func (m *memStore) share(documentID, token string, passwordHash []byte, expiresAt time.Time) {
	doc := m.docs[documentID]
	doc.Status = StatusPublic
	doc.ShareToken = token
	doc.SharePasswordHash = passwordHash
	doc.ShareExpiresAt = expiresAt
}
