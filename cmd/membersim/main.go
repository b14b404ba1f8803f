// Command membersim bootstraps a small cluster of members, proposes a
// reconfiguration from one of them, drains the transport, and runs one
// round of anti-entropy between every pair of members before printing each
// member's resulting view of the group. It exists for manual exercising of the protocol and for
// onboarding demos, not as a long-running service.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/membership/membership"
	"github.com/luxfi/membership/signer"
	"github.com/luxfi/membership/store"
	"github.com/luxfi/membership/transport"
)

func main() {
	members := flag.Int("members", 4, "number of members to bootstrap")
	rounds := flag.Int("rounds", 32, "maximum transport drain rounds before giving up")
	snapshotDir := flag.String("snapshot-dir", "", "directory to persist each member's snapshot to (disabled if empty)")
	flag.Parse()

	logger := log.NewLogger("membersim")

	if *members < 1 {
		logger.Error("members must be at least 1", "members", *members)
		os.Exit(1)
	}

	ring := signer.NewKeyRing()
	router := transport.NewRouter()

	cryptos := make([]*signer.BLS, *members)
	states := make(map[ids.NodeID]*membership.State, *members)
	idList := make([]ids.NodeID, 0, *members)

	for i := range cryptos {
		crypto, err := signer.New(ring)
		if err != nil {
			logger.Error("generate signer", "index", i, "error", err)
			os.Exit(1)
		}
		cryptos[i] = crypto

		st, err := membership.New(crypto, logger, nil)
		if err != nil {
			logger.Error("create state", "index", i, "error", err)
			os.Exit(1)
		}
		states[crypto.Identity()] = st
		idList = append(idList, crypto.Identity())
	}

	// Forced genesis: every bootstrapped member already knows about every
	// other bootstrapped member at generation 0.
	for _, st := range states {
		for _, id := range idList {
			st.ForceJoin(id)
		}
	}

	newcomer, err := signer.New(ring)
	if err != nil {
		logger.Error("generate newcomer signer", "error", err)
		os.Exit(1)
	}

	founder := idList[0]
	logger.Info("proposing join", "founder", founder, "newcomer", newcomer.Identity())

	packets, err := states[founder].Propose(membership.Join(newcomer.Identity()))
	if err != nil {
		logger.Error("propose", "error", err)
		os.Exit(1)
	}
	router.Enqueue(packets...)

	drain(logger, router, states, *rounds)

	for _, peer := range idList {
		for _, other := range idList {
			if peer == other {
				continue
			}
			router.Enqueue(states[peer].AntiEntropy(0, other)...)
		}
	}
	drain(logger, router, states, *rounds)

	for _, id := range idList {
		st := states[id]
		roster, err := st.Members(st.Gen)
		if err != nil {
			logger.Error("members", "member", id, "error", err)
			continue
		}
		fmt.Printf("member %s: generation=%d roster=%v\n", id, st.Gen, roster)

		if *snapshotDir == "" {
			continue
		}
		f := store.NewJSONFile(filepath.Join(*snapshotDir, id.String()+".json"))
		if err := f.Save(st.Snapshot()); err != nil {
			logger.Error("save snapshot", "member", id, "error", err)
		}
	}
}

// drain delivers every queued packet, feeding replies back into the
// router, until it empties or the round budget runs out.
func drain(logger log.Logger, router *transport.Router, states map[ids.NodeID]*membership.State, maxRounds int) {
	for round := 0; round < maxRounds; round++ {
		dests := router.Destinations()
		if len(dests) == 0 {
			return
		}
		for _, dest := range dests {
			st, ok := states[dest]
			if !ok {
				router.Drop(dest)
				continue
			}
			for {
				packet, ok := router.DeliverNext(dest)
				if !ok {
					break
				}
				out, err := st.HandleVote(packet.Vote)
				if err != nil {
					logger.Error("handle vote", "dest", dest, "error", err)
					continue
				}
				router.Enqueue(out...)
			}
		}
	}
	logger.Warn("transport did not quiesce within round budget", "rounds", maxRounds)
}
