package membership

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"
)

func TestProposeBroadcastsToEveryMember(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(3)
	st := tc.state(0)
	newcomer := ids.GenerateTestNodeID()

	packets, err := st.Propose(Join(newcomer))
	require.NoError(err)
	require.Len(packets, 3)

	dests := make(map[ids.NodeID]bool)
	for _, p := range packets {
		require.Equal(st.ID(), p.Source)
		dests[p.Dest] = true
	}
	for i := 0; i < 3; i++ {
		require.True(dests[tc.id(i)])
	}
	require.Equal(Generation(1), st.PendingGen)
}

func TestProposeRejectsInvalidReconfig(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(2)
	st := tc.state(0)

	_, err := st.Propose(Join(tc.id(1)))
	require.Error(err)
	require.IsType(JoinRequestForExistingMemberError{}, err)
}

func TestHandleVoteEchoesUnseenContribution(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(3)
	proposer := tc.state(0)
	receiver := tc.state(1)
	newcomer := ids.GenerateTestNodeID()

	packets, err := proposer.Propose(Join(newcomer))
	require.NoError(err)

	var toReceiver SignedVote
	for _, p := range packets {
		if p.Dest == tc.id(1) {
			toReceiver = p.Vote
		}
	}

	echoed, err := receiver.HandleVote(toReceiver)
	require.NoError(err)
	require.NotEmpty(echoed, "a member that has not yet voted echoes the received ballot")
	require.Equal(Generation(1), receiver.PendingGen)
}

func TestHandleVoteDoesNotReEchoOnceVoted(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(3)
	proposer := tc.state(0)
	receiver := tc.state(1)
	newcomer := ids.GenerateTestNodeID()

	packets, err := proposer.Propose(Join(newcomer))
	require.NoError(err)

	var toReceiver SignedVote
	for _, p := range packets {
		if p.Dest == tc.id(1) {
			toReceiver = p.Vote
		}
	}

	_, err = receiver.HandleVote(toReceiver)
	require.NoError(err)

	// Redelivering the exact same vote must not produce a second echo:
	// receiver has already voted this generation.
	again, err := receiver.HandleVote(toReceiver)
	require.NoError(err)
	require.Empty(again)
}

func TestHandleVoteDecidesOnSuperMajorityThenSMSM(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(4)
	newcomer := ids.GenerateTestNodeID()

	// Members a and b independently propose the same reconfig; the
	// observer (d) is itself a member and echoes its own Propose on the
	// first of these, so after the second it has seen 3 of 4 members
	// agree and crosses the super-majority threshold on its own.
	votes := make([]SignedVote, 2)
	for i := 0; i < 2; i++ {
		votes[i] = tc.state(i).buildVote(1, ProposeBallot(Join(newcomer)))
	}

	observer := tc.state(3)
	var smPackets []Packet
	for i := 0; i < 2; i++ {
		packets, err := observer.HandleVote(votes[i])
		require.NoError(err)
		if i == 1 {
			smPackets = packets
		}
	}
	require.NotEmpty(smPackets, "the second vote should tip the observer into broadcasting a super majority")

	var smVote SignedVote
	for _, p := range smPackets {
		if p.Dest == tc.id(3) {
			smVote = p.Vote
		}
	}
	require.True(smVote.IsSuperMajorityBallot())

	// Feed the same super-majority ballot back, recast as if forwarded by
	// a and then by b, until the observer itself sees SM/SM and decides.
	for i := 0; i < 2; i++ {
		relayed := smVote
		relayed.Voter = tc.id(i)
		relayed.Sig = fakeSign(tc.ring.secrets[tc.id(i)], CanonicalBytes(1, smVote.Vote.Ballot))
		_, err := observer.HandleVote(relayed)
		require.NoError(err)
	}

	require.Equal(Generation(1), observer.Gen, "observer should have decided generation 1")
	require.Contains(observer.History, Generation(1))

	members, err := observer.Members(1)
	require.NoError(err)
	require.Contains(members, newcomer)
}
