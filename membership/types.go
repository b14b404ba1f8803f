package membership

import (
	"bytes"

	"github.com/luxfi/ids"
)

// nodeIDLess orders identities by their canonical byte representation, the
// total order the spec requires of A.
func nodeIDLess(a, b ids.NodeID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// SoftMaxMembers is the configured cap on joinable members.
const SoftMaxMembers = 7

// Generation is a monotonically increasing epoch counter. Generation 0 is
// the forced bootstrap epoch; every decided reconfiguration advances it by
// one.
type Generation = uint64

// Signature is the opaque, totally ordered authentication tag a Signer
// produces over a canonical vote encoding. It is sized for a compressed
// BLS signature, the concrete scheme the signer package implements, but
// nothing in this package depends on that choice beyond the fixed width.
type Signature [96]byte

// Signer produces signatures bound to this member's identity.
type Signer interface {
	Identity() ids.NodeID
	Sign(msg []byte) Signature
}

// Verifier checks a signature against a claimed voter identity.
type Verifier interface {
	Verify(voter ids.NodeID, msg []byte, sig Signature) error
}

// Crypto is the host-provided collaborator a State is configured with: a
// signer for the member's own votes and a verifier for everyone else's.
type Crypto interface {
	Signer
	Verifier
}

// ReconfigKind distinguishes the two atomic membership edits.
type ReconfigKind uint8

const (
	// ReconfigJoin admits an identity into the member set.
	ReconfigJoin ReconfigKind = iota
	// ReconfigLeave removes an identity from the member set.
	ReconfigLeave
)

func (k ReconfigKind) String() string {
	switch k {
	case ReconfigJoin:
		return "Join"
	case ReconfigLeave:
		return "Leave"
	default:
		return "Unknown"
	}
}

// Reconfig is an atomic membership edit: Join(a) or Leave(a).
type Reconfig struct {
	Kind  ReconfigKind
	Actor ids.NodeID
}

// Join builds a Join reconfig.
func Join(a ids.NodeID) Reconfig { return Reconfig{Kind: ReconfigJoin, Actor: a} }

// Leave builds a Leave reconfig.
func Leave(a ids.NodeID) Reconfig { return Reconfig{Kind: ReconfigLeave, Actor: a} }

func (r Reconfig) String() string {
	return r.Kind.String() + "(" + r.Actor.String() + ")"
}

// apply mutates members in place according to this reconfig.
func (r Reconfig) apply(members map[ids.NodeID]struct{}) {
	switch r.Kind {
	case ReconfigJoin:
		members[r.Actor] = struct{}{}
	case ReconfigLeave:
		delete(members, r.Actor)
	}
}

// less gives Reconfig the deterministic total order used to break
// resolveVotes ties and to keep reconfig sets in canonical form: by kind,
// then by actor bytes.
func (r Reconfig) less(o Reconfig) bool {
	if r.Kind != o.Kind {
		return r.Kind < o.Kind
	}
	return nodeIDLess(r.Actor, o.Actor)
}

// BallotKind distinguishes the three ballot shapes.
type BallotKind uint8

const (
	// BallotPropose is a leaf ballot: a single proposed reconfig.
	BallotPropose BallotKind = iota
	// BallotMerge unions the votes observed so far in the current
	// generation, without asserting anything about their weight.
	BallotMerge
	// BallotSuperMajority asserts that the contained votes already form a
	// super-majority.
	BallotSuperMajority
)

func (k BallotKind) String() string {
	switch k {
	case BallotPropose:
		return "Propose"
	case BallotMerge:
		return "Merge"
	case BallotSuperMajority:
		return "SuperMajority"
	default:
		return "Unknown"
	}
}

// Ballot is the recursive proposal structure voted on within a generation.
// Exactly one of Propose / Votes is meaningful, selected by Kind.
type Ballot struct {
	Kind    BallotKind
	Propose Reconfig     // valid iff Kind == BallotPropose
	Votes   []SignedVote // valid iff Kind == BallotMerge || Kind == BallotSuperMajority
}

// ProposeBallot builds a leaf Propose ballot.
func ProposeBallot(r Reconfig) Ballot {
	return Ballot{Kind: BallotPropose, Propose: r}
}

// MergeBallot builds a Merge ballot over the given votes.
func MergeBallot(votes []SignedVote) Ballot {
	return Ballot{Kind: BallotMerge, Votes: votes}
}

// SuperMajorityBallot builds a SuperMajority ballot over the given votes.
func SuperMajorityBallot(votes []SignedVote) Ballot {
	return Ballot{Kind: BallotSuperMajority, Votes: votes}
}

// Vote is the (generation, ballot) payload that gets signed.
type Vote struct {
	Gen    Generation
	Ballot Ballot
}

// SignedVote is a node in the vote DAG: a Vote authenticated by its voter.
// Leaves are always Propose ballots.
type SignedVote struct {
	Vote  Vote
	Voter ids.NodeID
	Sig   Signature
}

// IsSuperMajorityBallot reports whether sv asserts a SuperMajority.
func (sv SignedVote) IsSuperMajorityBallot() bool {
	return sv.Vote.Ballot.Kind == BallotSuperMajority
}

// Packet is the on-wire envelope a transport delivers: a SignedVote
// addressed from source to dest.
type Packet struct {
	Source ids.NodeID
	Vote   SignedVote
	Dest   ids.NodeID
}
