package membership

import (
	"sort"

	"github.com/luxfi/ids"
)

// Propose builds, validates, and casts a vote proposing reconfig for the
// next generation, returning the packets to broadcast to every current
// member.
func (s *State) Propose(r Reconfig) ([]Packet, error) {
	vote := s.buildVote(s.Gen+1, ProposeBallot(r))

	if err := s.Validate(vote); err != nil {
		return nil, err
	}
	return s.castVote(vote)
}

// HandleVote is the single entry point peers (and the local owner's own
// broadcasts, looped back) feed votes through. It validates, logs, and
// then drives the generation forward: split-vote merge, SM/SM decision,
// super-majority broadcast, or a plain contribution, in that order. The
// first matching branch wins.
func (s *State) HandleVote(vote SignedVote) ([]Packet, error) {
	if err := s.Validate(vote); err != nil {
		return nil, err
	}

	s.logVote(vote)
	s.PendingGen = vote.Vote.Gen

	currentVotes := s.votesSlice()

	if split, err := s.isSplitVote(currentVotes); err != nil {
		return nil, err
	} else if split {
		s.log.Info("detected split vote")
		s.metric.observeSplitVote()
		return s.handleSplitVote(currentVotes)
	}

	if smsm, err := s.isSuperMajorityOverSuperMajorities(currentVotes); err != nil {
		return nil, err
	} else if smsm {
		s.log.Info("detected super majority over super majorities")
		return s.handleSuperMajorityOverSuperMajorities(vote, currentVotes)
	}

	if sm, err := s.isSuperMajority(currentVotes); err != nil {
		return nil, err
	} else if sm {
		s.log.Info("detected super majority")
		return s.handleSuperMajority(currentVotes)
	}

	// We don't yet have enough votes to act. If we have not voted this
	// generation, this is where we contribute: echo the received ballot.
	if _, voted := s.Votes[s.crypto.Identity()]; !voted {
		ours := s.buildVote(s.PendingGen, vote.Vote.Ballot)
		return s.castVote(ours)
	}

	return nil, nil
}

func (s *State) handleSplitVote(currentVotes []SignedVote) ([]Packet, error) {
	mergeVote := s.buildVote(s.PendingGen, MergeBallot(currentVotes).Simplify())

	if ours, voted := s.Votes[s.crypto.Identity()]; voted {
		ourReconfigs := ours.reconfigsOnly()
		mergeReconfigs := mergeVote.reconfigsOnly()
		if ourReconfigs.key() == mergeReconfigs.key() {
			s.log.Info("merge vote carried no new information, waiting for more votes")
			return nil, nil
		}
	}

	s.log.Info("casting merge vote")
	return s.castVote(mergeVote)
}

func (s *State) handleSuperMajorityOverSuperMajorities(received SignedVote, currentVotes []SignedVote) ([]Packet, error) {
	members, err := s.Members(s.Gen)
	if err != nil {
		return nil, err
	}

	var decided SignedVote
	haveDecision := false

	if containsNodeID(members, s.crypto.Identity()) {
		ballot := SuperMajorityBallot(currentVotes).Simplify()
		decided = s.buildVote(s.PendingGen, ballot)
		haveDecision = true
	} else {
		// We were not a member; the sender must be onboarding us or
		// keeping us current. Only adopt it into history if it really is
		// an SM/SM proof on its own terms.
		shouldAdopt, err := s.isSuperMajorityOverSuperMajorities(received.Unpack())
		if err != nil {
			return nil, err
		}
		if shouldAdopt {
			s.log.Info("adopting vote into history")
			decided = received
			haveDecision = true
		}
	}

	if haveDecision {
		s.History[s.PendingGen] = decided
		s.Votes = make(map[ids.NodeID]SignedVote)
		s.Gen = s.PendingGen

		newMembers, err := s.Members(s.Gen)
		if err != nil {
			return nil, err
		}
		s.notifyMembershipChange(members, newMembers)
		s.metric.observeGenerationDecided(len(newMembers))
	}

	return nil, nil
}

func (s *State) handleSuperMajority(currentVotes []SignedVote) ([]Packet, error) {
	superMajorityReconfigs := resolveVotes(currentVotes)

	if ours, voted := s.Votes[s.crypto.Identity()]; voted {
		// We may have committed to reconfigs the super-majority did not
		// see; we cannot change our mind, only wait for split-vote or
		// SM/SM to resolve it.
		committed := resolveVotes(ours.Unpack())
		smSet := superMajorityReconfigs.toMap()
		for _, r := range committed.toSlice() {
			if _, ok := smSet[r]; !ok {
				s.log.Info("committed to reconfigs the super majority has not seen, waiting")
				return nil, nil
			}
		}

		if ours.IsSuperMajorityBallot() {
			s.log.Info("already sent a super majority, waiting for split vote or SM/SM")
			return nil, nil
		}
	}

	s.log.Info("broadcasting super majority")
	vote := s.buildVote(s.PendingGen, SuperMajorityBallot(currentVotes).Simplify())
	return s.castVote(vote)
}

// AntiEntropy is a stateless, idempotent catch-up stream for peer: every
// history entry after fromGen, in ascending order, then every vote
// currently in flight this generation, each wrapped as a packet addressed
// to peer.
func (s *State) AntiEntropy(fromGen Generation, peer ids.NodeID) []Packet {
	s.log.Info("anti-entropy", "peer", peer, "from_gen", fromGen)

	historyGens := make([]Generation, 0, len(s.History))
	for g := range s.History {
		if g > fromGen {
			historyGens = append(historyGens, g)
		}
	}
	sort.Slice(historyGens, func(i, j int) bool { return historyGens[i] < historyGens[j] })

	packets := make([]Packet, 0, len(historyGens)+len(s.Votes))
	for _, g := range historyGens {
		packets = append(packets, s.send(s.History[g], peer))
	}
	for _, vote := range s.votesSlice() {
		packets = append(packets, s.send(vote, peer))
	}
	return packets
}
