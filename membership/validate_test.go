package membership

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"
)

func TestValidateAcceptsFreshPropose(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(2)
	st := tc.state(0)
	newcomer := ids.GenerateTestNodeID()

	vote := st.buildVote(1, ProposeBallot(Join(newcomer)))
	require.NoError(st.Validate(vote))
}

func TestValidateRejectsBadSignature(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(2)
	st := tc.state(0)
	newcomer := ids.GenerateTestNodeID()

	vote := st.buildVote(1, ProposeBallot(Join(newcomer)))
	vote.Sig[0] ^= 0xFF

	err := st.Validate(vote)
	require.Error(err)
	require.IsType(InvalidSignatureError{}, err)
}

func TestValidateRejectsWrongGeneration(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(2)
	st := tc.state(0)
	newcomer := ids.GenerateTestNodeID()

	vote := st.buildVote(2, ProposeBallot(Join(newcomer)))
	err := st.Validate(vote)
	require.Error(err)
	require.IsType(VoteNotForNextGenerationError{}, err)
}

func TestValidateRejectsVoteFromNonMember(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(2)
	st := tc.state(0)
	outsider := tc.ring.newSigner(99)
	newcomer := ids.GenerateTestNodeID()

	msg := CanonicalBytes(1, ProposeBallot(Join(newcomer)))
	vote := SignedVote{
		Vote:  Vote{Gen: 1, Ballot: ProposeBallot(Join(newcomer))},
		Voter: outsider.id,
		Sig:   outsider.Sign(msg),
	}

	err := st.Validate(vote)
	require.Error(err)
	require.IsType(VoteFromNonMemberError{}, err)
}

func TestValidateRejectsJoinForExistingMember(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(2)
	st := tc.state(0)

	vote := st.buildVote(1, ProposeBallot(Join(tc.id(1))))
	err := st.Validate(vote)
	require.Error(err)
	require.IsType(JoinRequestForExistingMemberError{}, err)
}

func TestValidateRejectsLeaveForNonMember(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(2)
	st := tc.state(0)
	outsider := ids.GenerateTestNodeID()

	vote := st.buildVote(1, ProposeBallot(Leave(outsider)))
	err := st.Validate(vote)
	require.Error(err)
	require.IsType(LeaveRequestForNonMemberError{}, err)
}

func TestValidateRejectsCapacityOverflow(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(SoftMaxMembers)
	st := tc.state(0)
	newcomer := ids.GenerateTestNodeID()

	vote := st.buildVote(1, ProposeBallot(Join(newcomer)))
	err := st.Validate(vote)
	require.Error(err)
	require.IsType(MembersAtCapacityError{}, err)
}

func TestValidateRejectsIncompatibleExistingVote(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(3)
	st := tc.state(0)
	alice := ids.GenerateTestNodeID()
	bob := ids.GenerateTestNodeID()

	first := proposeVote(tc.id(1), alice, 1)
	st.Votes[tc.id(1)] = first

	// A second, unrelated vote from the same voter, for the same
	// generation, that neither supersedes nor is superseded by the first.
	second := proposeVote(tc.id(1), bob, 1)
	// Re-sign with the real secret so the signature check passes first.
	msg := CanonicalBytes(1, ProposeBallot(Join(bob)))
	second.Sig = fakeSign(tc.ring.secrets[tc.id(1)], msg)

	err := st.Validate(second)
	require.Error(err)
	require.IsType(ExistingVoteIncompatibleWithNewVoteError{}, err)
}

func TestValidateRejectsVoterChangingMindWithinGeneration(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(3)
	st := tc.state(0)
	alice := ids.GenerateTestNodeID()
	bob := ids.GenerateTestNodeID()

	// st has already absorbed a Merge vote (PendingGen != Gen) in which
	// voter 1 proposed alice, via a top-level vote authored by voter 0.
	leafAlice := proposeVote(tc.id(1), alice, 1)
	leafAlice.Sig = fakeSign(tc.ring.secrets[tc.id(1)], CanonicalBytes(1, ProposeBallot(Join(alice))))
	mergeBallot := MergeBallot([]SignedVote{leafAlice})
	merge := SignedVote{
		Vote:  Vote{Gen: 1, Ballot: mergeBallot},
		Voter: tc.id(0),
		Sig:   fakeSign(tc.ring.secrets[tc.id(0)], CanonicalBytes(1, mergeBallot)),
	}
	st.PendingGen = 1
	st.logVote(merge)

	// Voter 2 now forwards a Merge bundling a Propose(bob) leaf from voter
	// 1: the same voter contributing a second, different reconfig within
	// the same generation, this time discovered only by aggregating
	// Reconfigs() across the whole in-flight vote set rather than by the
	// direct existing-vote check (voter 2's own top-level vote is new).
	leafBob := proposeVote(tc.id(1), bob, 1)
	leafBob.Sig = fakeSign(tc.ring.secrets[tc.id(1)], CanonicalBytes(1, ProposeBallot(Join(bob))))
	forwardedBallot := MergeBallot([]SignedVote{leafBob})
	forwarded := SignedVote{
		Vote:  Vote{Gen: 1, Ballot: forwardedBallot},
		Voter: tc.id(2),
		Sig:   fakeSign(tc.ring.secrets[tc.id(2)], CanonicalBytes(1, forwardedBallot)),
	}

	err := st.Validate(forwarded)
	require.Error(err)
	require.IsType(VoterChangedMindError{}, err)
}

