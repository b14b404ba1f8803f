package membership

import (
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/validators"
	"github.com/prometheus/client_golang/prometheus"
)

// State is one participant's view of the protocol. It is mutated only by
// its owner, on Propose, HandleVote, and the ForceJoin/ForceLeave
// bootstrap operations, and is never destroyed during protocol execution.
//
// A State is single-threaded per instance: the host must serialize all
// mutating calls if it shares a State across goroutines. Reading Members
// is pure and safe to call concurrently with other reads.
type State struct {
	crypto Crypto
	log    log.Logger
	metric *Metrics

	// Gen is the latest decided generation.
	Gen Generation
	// PendingGen is the current in-flight generation; PendingGen is always
	// Gen or Gen+1.
	PendingGen Generation
	// ForcedReconfigs maps generation to the bootstrap edits applied
	// deterministically during membership projection.
	ForcedReconfigs map[Generation][]Reconfig
	// History maps a decided generation to the SignedVote (always a
	// SuperMajority ballot) that proves its decision.
	History map[Generation]SignedVote
	// Votes maps voter identity to the highest SignedVote observed this
	// generation, ordered by Supersedes.
	Votes map[ids.NodeID]SignedVote
	// Faulty is a diagnostic flag; the core never consults it.
	Faulty bool

	// listeners are notified whenever a bootstrap edit or a decided
	// generation changes the member set, mirroring how a validator set
	// manager fans out Add/Remove/WeightChanged callbacks to subscribers.
	listeners []validators.SetCallbackListener
}

// RegisterSetCallbackListener subscribes l to every future member-set
// change. It does not replay the current roster; a listener that needs
// the starting set should call Members before registering.
func (s *State) RegisterSetCallbackListener(l validators.SetCallbackListener) {
	s.listeners = append(s.listeners, l)
}

// notifyMembershipChange diffs before and after and fires
// OnValidatorAdded/OnValidatorRemoved on every registered listener for the
// difference. This protocol carries no per-member weight, so every
// member is reported with weight 1, matching an unweighted validator set.
func (s *State) notifyMembershipChange(before, after []ids.NodeID) {
	if len(s.listeners) == 0 {
		return
	}

	beforeSet := make(map[ids.NodeID]struct{}, len(before))
	for _, id := range before {
		beforeSet[id] = struct{}{}
	}
	afterSet := make(map[ids.NodeID]struct{}, len(after))
	for _, id := range after {
		afterSet[id] = struct{}{}
	}

	for _, id := range after {
		if _, ok := beforeSet[id]; !ok {
			for _, l := range s.listeners {
				l.OnValidatorAdded(id, 1)
			}
		}
	}
	for _, id := range before {
		if _, ok := afterSet[id]; !ok {
			for _, l := range s.listeners {
				l.OnValidatorRemoved(id, 1)
			}
		}
	}
}

// New creates a fresh State owned by the identity crypto signs for. All
// maps start empty and Gen == PendingGen == 0.
func New(crypto Crypto, logger log.Logger, registerer prometheus.Registerer) (*State, error) {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}

	metric, err := NewMetrics(registerer)
	if err != nil {
		return nil, err
	}

	return &State{
		crypto:          crypto,
		log:             logger,
		metric:          metric,
		ForcedReconfigs: make(map[Generation][]Reconfig),
		History:         make(map[Generation]SignedVote),
		Votes:           make(map[ids.NodeID]SignedVote),
	}, nil
}

// ID returns the identity this State is owned by.
func (s *State) ID() ids.NodeID {
	return s.crypto.Identity()
}

// ForceJoin injects a bootstrap Join for actor at the current generation,
// clearing any bootstrap Leave previously forced for the same actor.
func (s *State) ForceJoin(actor ids.NodeID) {
	before, err := s.Members(s.Gen)
	if err != nil {
		before = nil
	}
	s.setForcedReconfig(actor, Join(actor))
	if after, err := s.Members(s.Gen); err == nil {
		s.notifyMembershipChange(before, after)
	}
}

// ForceLeave injects a bootstrap Leave for actor at the current
// generation, clearing any bootstrap Join previously forced for the same
// actor.
func (s *State) ForceLeave(actor ids.NodeID) {
	before, err := s.Members(s.Gen)
	if err != nil {
		before = nil
	}
	s.setForcedReconfig(actor, Leave(actor))
	if after, err := s.Members(s.Gen); err == nil {
		s.notifyMembershipChange(before, after)
	}
}

func (s *State) setForcedReconfig(actor ids.NodeID, r Reconfig) {
	existing := s.ForcedReconfigs[s.Gen]
	filtered := existing[:0:0]
	for _, e := range existing {
		if e.Actor == actor {
			continue
		}
		filtered = append(filtered, e)
	}
	s.ForcedReconfigs[s.Gen] = append(filtered, r)
}

// buildVote signs a fresh Vote{gen, ballot} as this member.
func (s *State) buildVote(gen Generation, ballot Ballot) SignedVote {
	msg := CanonicalBytes(gen, ballot)
	return SignedVote{
		Vote:  Vote{Gen: gen, Ballot: ballot},
		Voter: s.crypto.Identity(),
		Sig:   s.crypto.Sign(msg),
	}
}

// castVote records vote as our own, bumps PendingGen, and broadcasts it to
// the current members.
func (s *State) castVote(vote SignedVote) ([]Packet, error) {
	s.PendingGen = vote.Vote.Gen
	s.logVote(vote)
	s.metric.observeVoteCast()
	return s.broadcast(vote)
}

// logVote absorbs every atomic vote reachable from vote into s.Votes: a
// voter's recorded entry is replaced only when the new vote supersedes it.
func (s *State) logVote(vote SignedVote) {
	for _, atom := range vote.Unpack() {
		existing, ok := s.Votes[atom.Voter]
		if !ok {
			s.Votes[atom.Voter] = atom
			continue
		}
		if atom.Supersedes(existing) {
			s.Votes[atom.Voter] = atom
		}
	}
}

func (s *State) votesSlice() []SignedVote {
	out := make([]SignedVote, 0, len(s.Votes))
	for _, v := range s.Votes {
		out = append(out, v)
	}
	return out
}

func (s *State) broadcast(vote SignedVote) ([]Packet, error) {
	members, err := s.Members(s.Gen)
	if err != nil {
		return nil, err
	}

	packets := make([]Packet, 0, len(members))
	for _, member := range members {
		packets = append(packets, s.send(vote, member))
	}
	return packets, nil
}

func (s *State) send(vote SignedVote, dest ids.NodeID) Packet {
	return Packet{Source: s.crypto.Identity(), Vote: vote, Dest: dest}
}

// Snapshot is the persisted subset of State: enough to reload a member and
// resume the protocol (Members is re-derived from ForcedReconfigs and
// History; Votes for the in-flight generation are not persisted and are
// instead recovered via anti-entropy after restart).
type Snapshot struct {
	ID              ids.NodeID                `json:"id"`
	Gen             Generation                `json:"gen"`
	ForcedReconfigs map[Generation][]Reconfig `json:"forced_reconfigs"`
	History         map[Generation]SignedVote `json:"history"`
}

// Snapshot captures the persisted subset of s.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		ID:              s.crypto.Identity(),
		Gen:             s.Gen,
		ForcedReconfigs: s.ForcedReconfigs,
		History:         s.History,
	}
}

// Restore reloads a persisted Snapshot into s. PendingGen and Votes reset
// to Gen / empty: any in-flight, undecided generation is recovered purely
// through anti-entropy from peers, never from local persistence.
func (s *State) Restore(snap Snapshot) {
	s.Gen = snap.Gen
	s.PendingGen = snap.Gen
	s.ForcedReconfigs = snap.ForcedReconfigs
	if s.ForcedReconfigs == nil {
		s.ForcedReconfigs = make(map[Generation][]Reconfig)
	}
	s.History = snap.History
	if s.History == nil {
		s.History = make(map[Generation]SignedVote)
	}
	s.Votes = make(map[ids.NodeID]SignedVote)
}
