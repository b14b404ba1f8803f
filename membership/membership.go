package membership

import (
	"sort"

	"github.com/luxfi/ids"
)

// Members computes the member set at the end of generation gen by
// replaying ForcedReconfigs[0], then for each history entry in ascending
// generation order applying ForcedReconfigs[i] and resolveVotes of the
// decided SuperMajority ballot, stopping once gen is reached.
func (s *State) Members(gen Generation) ([]ids.NodeID, error) {
	members := make(map[ids.NodeID]struct{})

	for _, r := range s.ForcedReconfigs[0] {
		r.apply(members)
	}

	if gen == 0 {
		return sortedMembers(members), nil
	}

	historyGens := make([]Generation, 0, len(s.History))
	for g := range s.History {
		historyGens = append(historyGens, g)
	}
	sort.Slice(historyGens, func(i, j int) bool { return historyGens[i] < historyGens[j] })

	for _, g := range historyGens {
		for _, r := range s.ForcedReconfigs[g] {
			r.apply(members)
		}

		vote := s.History[g]
		if vote.Vote.Ballot.Kind != BallotSuperMajority {
			return nil, InvalidVoteInHistoryError{Vote: vote}
		}

		for _, r := range resolveVotes(vote.Vote.Ballot.Votes).toSlice() {
			r.apply(members)
		}

		if g == gen {
			return sortedMembers(members), nil
		}
	}

	return nil, InvalidGenerationError{Generation: gen}
}

func sortedMembers(members map[ids.NodeID]struct{}) []ids.NodeID {
	out := make([]ids.NodeID, 0, len(members))
	for m := range members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return nodeIDLess(out[i], out[j]) })
	return out
}

// resolveVotes computes the reconfig multiset obtained from each vote's
// Reconfigs() projected to its bare reconfig set, and returns the set with
// the highest count. Ties break by reconfigSet's deterministic total
// order. An empty input yields the empty set.
func resolveVotes(votes []SignedVote) reconfigSet {
	counts := countVotes(votes)
	if len(counts) == 0 {
		return newReconfigSet(nil)
	}

	var winner reconfigSet
	winnerCount := -1
	first := true
	for _, b := range counts {
		if first || b.count > winnerCount || (b.count == winnerCount && b.set.less(winner)) {
			winner = b.set
			winnerCount = b.count
			first = false
		}
	}
	return winner
}
