package membership

import "github.com/luxfi/ids"

// Validate checks an incoming SignedVote in order: signature, generation,
// membership, compatibility with any existing recorded vote from the same
// voter, and finally ballot-specific validation.
func (s *State) Validate(vote SignedVote) error {
	members, err := s.Members(s.Gen)
	if err != nil {
		return err
	}

	msg := CanonicalBytes(vote.Vote.Gen, vote.Vote.Ballot)
	if verr := s.crypto.Verify(vote.Voter, msg, vote.Sig); verr != nil {
		return InvalidSignatureError{cause: verr}
	}

	if vote.Vote.Gen != s.Gen+1 {
		return VoteNotForNextGenerationError{
			VoteGen:    vote.Vote.Gen,
			Gen:        s.Gen,
			PendingGen: s.PendingGen,
		}
	}

	if !containsNodeID(members, vote.Voter) {
		return VoteFromNonMemberError{Voter: vote.Voter, Members: members}
	}

	if existing, ok := s.Votes[vote.Voter]; ok {
		if !vote.Supersedes(existing) && !existing.Supersedes(vote) {
			return ExistingVoteIncompatibleWithNewVoteError{ExistingVote: existing}
		}
	}

	if s.PendingGen == s.Gen {
		// Starting a vote for the next generation.
		return s.validateBallot(vote.Vote.Gen, vote.Vote.Ballot)
	}

	// A vote for the generation already in flight: nobody may change the
	// reconfig they have already committed to.
	contributions := make(map[VoterReconfig]struct{})
	for _, existing := range s.votesSlice() {
		for _, vr := range existing.Reconfigs() {
			contributions[vr] = struct{}{}
		}
	}
	for _, vr := range vote.Reconfigs() {
		contributions[vr] = struct{}{}
	}

	voters := make(map[ids.NodeID]struct{}, len(contributions))
	for vr := range contributions {
		voters[vr.Voter] = struct{}{}
	}
	if len(voters) != len(contributions) {
		all := make([]VoterReconfig, 0, len(contributions))
		for vr := range contributions {
			all = append(all, vr)
		}
		return VoterChangedMindError{Reconfigs: all}
	}

	return s.validateBallot(vote.Vote.Gen, vote.Vote.Ballot)
}

func (s *State) validateBallot(gen Generation, ballot Ballot) error {
	switch ballot.Kind {
	case BallotPropose:
		return s.ValidateReconfig(ballot.Propose)

	case BallotMerge:
		for _, child := range ballot.Votes {
			if child.Vote.Gen != gen {
				return VoteNotForNextGenerationError{VoteGen: child.Vote.Gen, Gen: gen, PendingGen: gen}
			}
			if err := s.Validate(child); err != nil {
				return err
			}
		}
		return nil

	case BallotSuperMajority:
		members, err := s.Members(s.Gen)
		if err != nil {
			return err
		}

		flattened := flattenAll(ballot.Votes)
		ok, err := s.isSuperMajority(flattened)
		if err != nil {
			return err
		}
		if !ok {
			return SuperMajorityBallotIsNotSuperMajorityError{Ballot: ballot, Members: members}
		}

		for _, child := range ballot.Votes {
			if child.Vote.Gen != gen {
				return VoteNotForNextGenerationError{VoteGen: child.Vote.Gen, Gen: gen, PendingGen: gen}
			}
			if err := s.Validate(child); err != nil {
				return err
			}
		}
		return nil

	default:
		return nil
	}
}

// flattenAll unpacks every vote and merges the results into one set,
// mirroring the Rust source's `votes.iter().flat_map(unpack_votes)`.
func flattenAll(votes []SignedVote) []SignedVote {
	seen := make(map[string]SignedVote)
	for _, v := range votes {
		for _, atom := range v.Unpack() {
			seen[voteOrderKey(atom)] = atom
		}
	}
	out := make([]SignedVote, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	return out
}

// ValidateReconfig checks a proposed reconfig against the current member
// set and the soft capacity.
func (s *State) ValidateReconfig(r Reconfig) error {
	members, err := s.Members(s.Gen)
	if err != nil {
		return err
	}

	switch r.Kind {
	case ReconfigJoin:
		if containsNodeID(members, r.Actor) {
			return JoinRequestForExistingMemberError{Requester: r.Actor, Members: members}
		}
		if len(members) >= SoftMaxMembers {
			return MembersAtCapacityError{Members: members}
		}
		return nil

	case ReconfigLeave:
		if !containsNodeID(members, r.Actor) {
			return LeaveRequestForNonMemberError{Requester: r.Actor, Members: members}
		}
		return nil

	default:
		return nil
	}
}

func containsNodeID(members []ids.NodeID, a ids.NodeID) bool {
	for _, m := range members {
		if m == a {
			return true
		}
	}
	return false
}
