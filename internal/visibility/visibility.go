// Package visibility decides which trophies a caller may read or change.
package visibility

import "trophyangler/internal/domain"

// CanRead is true for public trophies and for the owner's own records.
func CanRead(caller domain.Caller, t *domain.Trophy) bool {
	if t == nil {
		return false
	}
	return t.IsPublic || isOwner(caller, t)
}

// CanWrite is true only for the owner.
func CanWrite(caller domain.Caller, t *domain.Trophy) bool {
	if t == nil {
		return false
	}
	return isOwner(caller, t)
}

func isOwner(caller domain.Caller, t *domain.Trophy) bool {
	return !caller.Anonymous() && caller.ID == t.OwnerID
}
