package rbac

import (
	"fmt"

	"github.com/ppl-hub/practicum/internal/shared"
)

// Authorize allows the identity when its role is in the policy's role set.
func Authorize(id shared.Identity, p Policy) error {
	if id.IsZero() {
		return shared.ErrUnauthenticated
	}
	if p.Roles.Has(id.Role) {
		return nil
	}
	return fmt.Errorf("%w: %s", shared.ErrForbidden, p.Name)
}

// AuthorizeOwnerOrRole also allows the identity when the policy admits owners and
// the identity is one of owners.
func AuthorizeOwnerOrRole(id shared.Identity, p Policy, owners ...int64) error {
	if id.IsZero() {
		return shared.ErrUnauthenticated
	}
	if p.Roles.Has(id.Role) {
		return nil
	}
	if p.AllowOwner {
		for _, owner := range owners {
			if owner != 0 && owner == id.UserID {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s", shared.ErrForbidden, p.Name)
}

// IsOwner reports whether id owns the record of ownerID.
func IsOwner(id shared.Identity, ownerID int64) bool {
	return !id.IsZero() && ownerID != 0 && id.UserID == ownerID
}
