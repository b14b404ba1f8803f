// Package store persists a membership.State's restart-critical subset
// (Snapshot) so a member can reload id, gen, history, and forced_reconfigs
// and continue the protocol across a restart.
package store

import "github.com/luxfi/membership/membership"

// Store saves and loads a membership.Snapshot.
type Store interface {
	Save(snap membership.Snapshot) error
	Load() (membership.Snapshot, bool, error)
}
