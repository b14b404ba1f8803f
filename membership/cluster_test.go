package membership

import (
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
)

// testCluster bootstraps n members who are all forced members of each
// other at generation 0, sharing one fakeKeyRing so their States can
// verify each other's votes.
type testCluster struct {
	ring    *fakeKeyRing
	states  []*State
	idOrder []ids.NodeID
}

func newTestCluster(n int) *testCluster {
	ring := newFakeKeyRing()

	tc := &testCluster{ring: ring}
	cryptos := make([]*fakeCrypto, n)
	for i := 0; i < n; i++ {
		cryptos[i] = ring.newSigner(uint64(i) + 1)
		tc.idOrder = append(tc.idOrder, cryptos[i].id)
	}

	for i := 0; i < n; i++ {
		st, err := New(cryptos[i], log.NewNoOpLogger(), nil)
		if err != nil {
			panic(err)
		}
		for _, id := range tc.idOrder {
			st.ForceJoin(id)
		}
		tc.states = append(tc.states, st)
	}
	return tc
}

func (tc *testCluster) state(i int) *State {
	return tc.states[i]
}

func (tc *testCluster) id(i int) ids.NodeID {
	return tc.idOrder[i]
}
