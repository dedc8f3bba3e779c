// Package privacy redacts contact details that a viewer is not entitled to
// see.
//
// Visibility is decided per record, in this order:
//
//  1. admin and super_admin see everything;
//  2. the creator of the parent grid sees every child record;
//  3. the creator of a record sees their own record;
//  4. everyone else gets a copy with every sensitive field removed.
//
// Each record type declares its own closed set of sensitive fields through
// the Record interface, so redaction never depends on inspecting field names
// at runtime.
package privacy

import (
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
)

// Viewer is the caller a record is being prepared for. An empty ID is an
// unauthenticated caller.
type Viewer struct {
	ID   string
	Role role.Role
}

// Guest is the unauthenticated viewer.
var Guest = Viewer{Role: role.RoleGuest}

// Record is implemented by value types that carry contact details.
type Record[T any] interface {
	// CreatorID is the identity that authored the record.
	CreatorID() string

	// Redacted returns a shallow copy with every sensitive field cleared.
	Redacted() T
}

// Entitled reports whether viewer may see the contact details of a record
// created by creatorID under a grid owned by ownerID.
func Entitled(viewer Viewer, ownerID, creatorID string) bool {
	if viewer.Role.IsAdminTier() {
		return true
	}
	if viewer.ID == "" {
		return false
	}
	return viewer.ID == ownerID || viewer.ID == creatorID
}

// FilterContactFields returns record unchanged when viewer is entitled to it
// and a redacted copy otherwise. ownerID is the creator of the parent grid.
func FilterContactFields[T Record[T]](record T, viewer Viewer, ownerID string) T {
	if Entitled(viewer, ownerID, record.CreatorID()) {
		return record
	}
	return record.Redacted()
}

// FilterAll applies FilterContactFields to every record independently.
// ownerOf returns the parent grid's creator for a record.
func FilterAll[T Record[T]](records []T, viewer Viewer, ownerOf func(T) string) []T {
	filtered := make([]T, len(records))
	for i, record := range records {
		filtered[i] = FilterContactFields(record, viewer, ownerOf(record))
	}
	return filtered
}
