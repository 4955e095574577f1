package player

import crerr "github.com/cockroachdb/errors"

// ErrIdentityConflict marks a write that would break external id uniqueness.
var ErrIdentityConflict = crerr.New("player identity conflict")

func NewIdentityConflict(ns Namespace, value, ownerID string) error {
	return crerr.Wrapf(ErrIdentityConflict, "%s id %q already belongs to player %s", ns, value, ownerID)
}
