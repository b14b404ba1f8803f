package membership

import "github.com/luxfi/ids"

// VoterReconfig pairs a reconfig with the voter whose Propose leaf it came
// from. Attribution always traces to the leaf, never to the vote that
// happens to carry it.
type VoterReconfig struct {
	Voter    ids.NodeID
	Reconfig Reconfig
}

// Unpack flattens sv's DAG into the set of every SignedVote it
// transitively acknowledges, including itself. Propose ballots are leaves.
func (sv SignedVote) Unpack() []SignedVote {
	seen := make(map[string]SignedVote)
	sv.unpackInto(seen)

	out := make([]SignedVote, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	return sortedSignedVotes(out)
}

func (sv SignedVote) unpackInto(seen map[string]SignedVote) {
	key := voteOrderKey(sv)
	if _, ok := seen[key]; ok {
		return
	}
	seen[key] = sv

	if sv.Vote.Ballot.Kind == BallotPropose {
		return
	}
	for _, child := range sv.Vote.Ballot.Votes {
		child.unpackInto(seen)
	}
}

// Supersedes reports whether sv has seen at least everything other has
// seen: true iff sv equals other, or other appears somewhere inside sv's
// DAG (excluding sv itself).
func (sv SignedVote) Supersedes(other SignedVote) bool {
	if voteOrderKey(sv) == voteOrderKey(other) {
		return true
	}
	if sv.Vote.Ballot.Kind == BallotPropose {
		return false
	}
	for _, child := range sv.Vote.Ballot.Votes {
		if child.Supersedes(other) {
			return true
		}
	}
	return false
}

// Reconfigs harvests the (voter, reconfig) pair from every Propose leaf
// reachable from sv.
func (sv SignedVote) Reconfigs() []VoterReconfig {
	seen := make(map[VoterReconfig]struct{})
	for _, leaf := range sv.Unpack() {
		if leaf.Vote.Ballot.Kind != BallotPropose {
			continue
		}
		seen[VoterReconfig{Voter: leaf.Voter, Reconfig: leaf.Vote.Ballot.Propose}] = struct{}{}
	}

	out := make([]VoterReconfig, 0, len(seen))
	for vr := range seen {
		out = append(out, vr)
	}
	return out
}

// reconfigsOnly projects Reconfigs() down to the bare reconfig set,
// discarding voter attribution.
func (sv SignedVote) reconfigsOnly() reconfigSet {
	vrs := sv.Reconfigs()
	items := make([]Reconfig, len(vrs))
	for i, vr := range vrs {
		items[i] = vr.Reconfig
	}
	return newReconfigSet(items)
}

// Simplify removes, from a Merge or SuperMajority ballot, any child
// superseded by another child. Propose ballots are already in simplest
// form. Simplify is idempotent: simplifying an already-simplified ballot
// is a no-op.
func (b Ballot) Simplify() Ballot {
	if b.Kind == BallotPropose {
		return b
	}

	simplified := simplifyVotes(b.Votes)
	return Ballot{Kind: b.Kind, Votes: simplified}
}

func simplifyVotes(votes []SignedVote) []SignedVote {
	kept := make([]SignedVote, 0, len(votes))
	for i, v := range votes {
		supersededByOther := false
		for j, other := range votes {
			if i == j {
				continue
			}
			if voteOrderKey(other) != voteOrderKey(v) && other.Supersedes(v) {
				supersededByOther = true
				break
			}
		}
		if !supersededByOther {
			kept = append(kept, v)
		}
	}
	return dedupSignedVotes(kept)
}
