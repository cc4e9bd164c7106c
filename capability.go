package wikigate

import (
	"database/sql/driver"
	"fmt"
)

// Capability is one level of authority over a document. Capabilities form a
// total order: a higher capability covers every lower one, so lattice
// comparison is plain integer comparison.
type Capability int8

const (
	// CapabilityNone is the zero value: no authority at all.
	CapabilityNone Capability = iota

	// CapabilityReadable allows viewing a document.
	CapabilityReadable

	// CapabilityEditable allows modifying a document's content and
	// managing its share configuration. Implies readable.
	CapabilityEditable

	// CapabilityCreateUser is full administration: delete the document,
	// manage grants and members. Implies editable and readable.
	CapabilityCreateUser
)

const (
	capabilityNameReadable   = "readable"
	capabilityNameEditable   = "editable"
	capabilityNameCreateUser = "createUser"
)

// String returns the wire name of the capability.
func (c Capability) String() string {
	switch c {
	case CapabilityNone:
		return "none"
	case CapabilityReadable:
		return capabilityNameReadable
	case CapabilityEditable:
		return capabilityNameEditable
	case CapabilityCreateUser:
		return capabilityNameCreateUser
	}
	return fmt.Sprintf("capability(%d)", int8(c))
}

// Valid reports whether the capability is one a grant or operation may carry.
// CapabilityNone is not grantable.
func (c Capability) Valid() bool {
	return c >= CapabilityReadable && c <= CapabilityCreateUser
}

// Covers reports whether holding c satisfies a requirement for required.
// Nothing covers an invalid requirement, and CapabilityNone covers nothing.
func (c Capability) Covers(required Capability) bool {
	if !required.Valid() {
		return false
	}
	return c >= required
}

// ParseCapability converts a wire name into a Capability.
func ParseCapability(s string) (Capability, error) {
	switch s {
	case capabilityNameReadable:
		return CapabilityReadable, nil
	case capabilityNameEditable:
		return CapabilityEditable, nil
	case capabilityNameCreateUser:
		return CapabilityCreateUser, nil
	}
	return CapabilityNone, NewError(ErrInvalidCapability, fmt.Sprintf("unknown capability %q", s))
}

// Value stores the capability as its wire name. CapabilityNone stores as NULL.
func (c Capability) Value() (driver.Value, error) {
	if c == CapabilityNone {
		return nil, nil
	}
	if !c.Valid() {
		return nil, NewError(ErrInvalidCapability, fmt.Sprintf("cannot store capability %d", int8(c)))
	}
	return c.String(), nil
}

// Scan reads a capability from its stored wire name.
func (c *Capability) Scan(src any) error {
	if src == nil {
		*c = CapabilityNone
		return nil
	}
	var name string
	switch v := src.(type) {
	case string:
		name = v
	case []byte:
		name = string(v)
	default:
		return NewError(ErrInvalidCapability, fmt.Sprintf("cannot scan %T into Capability", src))
	}
	parsed, err := ParseCapability(name)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Status is a document's (or wiki's) visibility state.
type Status string

const (
	// StatusPrivate restricts access to the authority rules.
	StatusPrivate Status = "private"

	// StatusPublic opens read access through the wiki or a share token.
	StatusPublic Status = "public"
)

// Valid reports whether the status is one of the two known states.
func (s Status) Valid() bool {
	return s == StatusPrivate || s == StatusPublic
}

// MemberRole is a user's role inside a wiki.
type MemberRole string

const (
	// RoleMember is plain membership: read access to the wiki's documents.
	RoleMember MemberRole = "member"

	// RoleAdmin adds content management over the wiki's documents.
	RoleAdmin MemberRole = "admin"
)

// Valid reports whether the role is one of the two known roles.
func (r MemberRole) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}
