package services

import (
	"fmt"

	"github.com/lborres/quora/core"
)

// Privilege is the kind of mutation being attempted on a resource.
type Privilege int

const (
	PrivilegeEdit Privilege = iota + 1
	PrivilegeDelete
)

func (p Privilege) String() string {
	switch p {
	case PrivilegeEdit:
		return "edit"
	case PrivilegeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// CanMutate decides whether actor may apply p to resource. Edits are
// owner-only; deletes are allowed for the owner or any admin. Identities
// are compared by internal id.
func CanMutate(actor *core.User, resource core.Owned, p Privilege) error {
	kind := resource.Kind()
	isOwner := actor != nil && actor.ID == resource.OwnerID()

	switch p {
	case PrivilegeEdit:
		if isOwner {
			return nil
		}
		return core.ErrOwnerOnly.WithMessage(fmt.Sprintf("Only the %s owner can edit the %s", kind, kind))
	case PrivilegeDelete:
		if isOwner || actor.IsAdmin() {
			return nil
		}
		return core.ErrOwnerOrAdminOnly.WithMessage(fmt.Sprintf("Only the %s owner or admin can delete the %s", kind, kind))
	default:
		return fmt.Errorf("unknown privilege %d", int(p))
	}
}
