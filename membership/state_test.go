package membership

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"
)

// recordingListener is a validators.SetCallbackListener that records every
// call it receives, for asserting on membership-change notifications.
type recordingListener struct {
	added   []ids.NodeID
	removed []ids.NodeID
}

func (r *recordingListener) OnValidatorAdded(nodeID ids.NodeID, weight uint64) {
	r.added = append(r.added, nodeID)
}

func (r *recordingListener) OnValidatorRemoved(nodeID ids.NodeID, weight uint64) {
	r.removed = append(r.removed, nodeID)
}

func (r *recordingListener) OnValidatorWeightChanged(nodeID ids.NodeID, oldWeight, newWeight uint64) {
}

func TestForceJoinNotifiesRegisteredListener(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(1)
	st := tc.state(0)
	actor := ids.GenerateTestNodeID()

	listener := &recordingListener{}
	st.RegisterSetCallbackListener(listener)

	st.ForceJoin(actor)
	require.Equal([]ids.NodeID{actor}, listener.added)
	require.Empty(listener.removed)

	st.ForceLeave(actor)
	require.Equal([]ids.NodeID{actor}, listener.removed)
}

func TestForceJoinThenForceLeaveCancelsOut(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(1)
	st := tc.state(0)
	actor := tc.id(0)

	st.ForceJoin(actor)
	st.ForceLeave(actor)

	require.Len(st.ForcedReconfigs[0], 1, "the later forced reconfig replaces the earlier one for the same actor")
	require.Equal(ReconfigLeave, st.ForcedReconfigs[0][0].Kind)
}

func TestSnapshotRoundTripsThroughRestore(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(2)
	st := tc.state(0)
	newcomer := ids.GenerateTestNodeID()

	smBallot := SuperMajorityBallot([]SignedVote{
		proposeVote(tc.id(0), newcomer, 1),
		proposeVote(tc.id(1), newcomer, 1),
	})
	st.History[1] = SignedVote{Vote: Vote{Gen: 1, Ballot: smBallot}, Voter: tc.id(0), Sig: Signature{1}}
	st.Gen = 1
	st.PendingGen = 2
	st.Votes[tc.id(0)] = proposeVote(tc.id(0), newcomer, 3)

	snap := st.Snapshot()
	require.Equal(st.ID(), snap.ID)
	require.Equal(Generation(1), snap.Gen)

	restored, err := New(tc.state(0).crypto, nil, nil)
	require.NoError(err)
	restored.Restore(snap)

	require.Equal(Generation(1), restored.Gen)
	require.Equal(Generation(1), restored.PendingGen, "PendingGen resets to Gen on restore")
	require.Empty(restored.Votes, "in-flight votes are not persisted")
	require.Contains(restored.History, Generation(1))
}

func TestRestoreOfEmptySnapshotInitializesMaps(t *testing.T) {
	require := require.New(t)

	tc := newTestCluster(1)
	st := tc.state(0)

	st.Restore(Snapshot{})
	require.NotNil(st.ForcedReconfigs)
	require.NotNil(st.History)
	require.NotNil(st.Votes)
}
