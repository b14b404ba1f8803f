// Package membership implements the per-member voting state machine for
// Byzantine fault tolerant dynamic group membership: a fixed-identity set
// of participants agreeing, generation by generation, on Join/Leave
// reconfigurations of the group.
//
// Invariants maintained by State (see errors.go and *_test.go for the
// properties that exercise them):
//
//   - For every g in State.History, History[g].Ballot is a SuperMajority
//     ballot whose votes form a super-majority under Members(g-1).
//   - PendingGen >= Gen; PendingGen > Gen iff Votes is non-empty.
//   - Votes[v].Vote.Gen == PendingGen for every recorded voter v.
//   - A voter appears at most once in Votes; the recorded entry is the one
//     not superseded by any other known vote from that voter.
//   - Keys of History form a contiguous ascending prefix {1, ..., Gen} once
//     Gen >= 1.
//   - Members(0) is fully determined by ForcedReconfigs[0]; Members(g) for
//     g > 0 replays ForcedReconfigs and resolveVotes(History[i]) for
//     i = 0..g in order.
package membership
