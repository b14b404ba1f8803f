package membership

import "fmt"

// MaxVoteDepth bounds how deeply a SignedVote's DAG may nest. Votes are
// deserialized from untrusted peers or from a persisted snapshot, so the
// depth must be bounded before any recursive algebra (Unpack, Supersedes,
// Reconfigs, Simplify) runs over it; 64 is ample since the natural depth
// of an honest DAG is O(log n) in the member count.
const MaxVoteDepth = 64

// CheckDepth verifies that no branch of sv's DAG exceeds MaxVoteDepth,
// returning an error that states the depth limit if one does. It is the one
// piece of this package's recursive vote algebra that is not purely a
// function of the DAG's logical shape: it exists solely to bound the cost
// of processing adversarially deep input crossing a decode boundary (a
// wire packet or a reloaded snapshot), not to reject anything a Validate
// call would otherwise accept.
func CheckDepth(sv SignedVote) error {
	return checkDepth(sv, 1)
}

func checkDepth(sv SignedVote, depth int) error {
	if depth > MaxVoteDepth {
		return fmt.Errorf("membership: vote nesting exceeds max depth %d", MaxVoteDepth)
	}
	for _, child := range sv.Vote.Ballot.Votes {
		if err := checkDepth(child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// CheckSnapshotDepth applies CheckDepth to every history entry in snap,
// the boundary at which a persisted snapshot re-enters the trusted
// process.
func CheckSnapshotDepth(snap Snapshot) error {
	for _, sv := range snap.History {
		if err := CheckDepth(sv); err != nil {
			return err
		}
	}
	return nil
}
