package membership

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"
)

// ErrMembership is the sentinel every error type in this file wraps, so
// callers that only care "was this a membership error" can use
// errors.Is(err, membership.ErrMembership) instead of a type switch.
var ErrMembership = errors.New("membership")

// NoMembersError is returned when an operation requires a non-empty
// member set but none has been bootstrapped yet.
type NoMembersError struct{}

func (NoMembersError) Error() string { return "membership: no members" }
func (NoMembersError) Unwrap() error { return ErrMembership }

// WrongDestinationError signals a packet delivered to the wrong recipient.
// The core never raises this itself; it exists for transports to report
// misrouted packets through the same error taxonomy.
type WrongDestinationError struct {
	Dest, Actor ids.NodeID
}

func (e WrongDestinationError) Error() string {
	return fmt.Sprintf("membership: packet was not destined for this actor: %s != %s", e.Dest, e.Actor)
}
func (WrongDestinationError) Unwrap() error { return ErrMembership }

// MembersAtCapacityError rejects a Join once the soft cap is reached.
type MembersAtCapacityError struct {
	Members []ids.NodeID
}

func (e MembersAtCapacityError) Error() string {
	return fmt.Sprintf("membership: cannot accept new join requests, members at capacity: %v", e.Members)
}
func (MembersAtCapacityError) Unwrap() error { return ErrMembership }

// JoinRequestForExistingMemberError rejects a Join for an actor already a
// member.
type JoinRequestForExistingMemberError struct {
	Requester ids.NodeID
	Members   []ids.NodeID
}

func (e JoinRequestForExistingMemberError) Error() string {
	return fmt.Sprintf("membership: existing member %s cannot request to join again (members: %v)", e.Requester, e.Members)
}
func (JoinRequestForExistingMemberError) Unwrap() error { return ErrMembership }

// LeaveRequestForNonMemberError rejects a Leave for an actor not a member.
type LeaveRequestForNonMemberError struct {
	Requester ids.NodeID
	Members   []ids.NodeID
}

func (e LeaveRequestForNonMemberError) Error() string {
	return fmt.Sprintf("membership: %s must be a member to request to leave (members: %v)", e.Requester, e.Members)
}
func (LeaveRequestForNonMemberError) Unwrap() error { return ErrMembership }

// VoteNotForNextGenerationError rejects a vote whose generation does not
// immediately follow the current decided generation.
type VoteNotForNextGenerationError struct {
	VoteGen, Gen, PendingGen Generation
}

func (e VoteNotForNextGenerationError) Error() string {
	return fmt.Sprintf("membership: a vote is always for the next generation: vote gen %d != %d + 1", e.VoteGen, e.Gen)
}
func (VoteNotForNextGenerationError) Unwrap() error { return ErrMembership }

// VoteFromNonMemberError rejects a vote from an identity outside the
// current member set.
type VoteFromNonMemberError struct {
	Voter   ids.NodeID
	Members []ids.NodeID
}

func (e VoteFromNonMemberError) Error() string {
	return fmt.Sprintf("membership: vote from non member (%s not in %v)", e.Voter, e.Members)
}
func (VoteFromNonMemberError) Unwrap() error { return ErrMembership }

// VoterChangedMindError rejects a vote that would have its voter
// contribute two distinct reconfigs within the same generation.
type VoterChangedMindError struct {
	Reconfigs []VoterReconfig
}

func (e VoterChangedMindError) Error() string {
	return fmt.Sprintf("membership: voter changed their mind: %v", e.Reconfigs)
}
func (VoterChangedMindError) Unwrap() error { return ErrMembership }

// ExistingVoteIncompatibleWithNewVoteError rejects a vote that neither
// supersedes, nor is superseded by, the voter's existing recorded vote.
type ExistingVoteIncompatibleWithNewVoteError struct {
	ExistingVote SignedVote
}

func (e ExistingVoteIncompatibleWithNewVoteError) Error() string {
	return "membership: existing vote not compatible with new vote"
}
func (ExistingVoteIncompatibleWithNewVoteError) Unwrap() error { return ErrMembership }

// SuperMajorityBallotIsNotSuperMajorityError flags a SuperMajority ballot
// whose votes do not actually meet the threshold: malformed or
// adversarial.
type SuperMajorityBallotIsNotSuperMajorityError struct {
	Ballot  Ballot
	Members []ids.NodeID
}

func (e SuperMajorityBallotIsNotSuperMajorityError) Error() string {
	return fmt.Sprintf("membership: super majority ballot does not actually have super majority (members: %v)", e.Members)
}
func (SuperMajorityBallotIsNotSuperMajorityError) Unwrap() error { return ErrMembership }

// InvalidGenerationError is returned when Members is asked for a
// generation it cannot reach by replaying history.
type InvalidGenerationError struct {
	Generation Generation
}

func (e InvalidGenerationError) Error() string {
	return fmt.Sprintf("membership: invalid generation %d", e.Generation)
}
func (InvalidGenerationError) Unwrap() error { return ErrMembership }

// InvalidVoteInHistoryError flags a history entry whose ballot is not a
// SuperMajority, which should be impossible for honestly maintained state.
type InvalidVoteInHistoryError struct {
	Vote SignedVote
}

func (e InvalidVoteInHistoryError) Error() string {
	return "membership: history contains an invalid vote"
}
func (InvalidVoteInHistoryError) Unwrap() error { return ErrMembership }

// InvalidSignatureError rejects a vote whose signature does not verify.
type InvalidSignatureError struct {
	cause error
}

func (e InvalidSignatureError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("membership: invalid signature: %v", e.cause)
	}
	return "membership: invalid signature"
}
func (e InvalidSignatureError) Unwrap() error { return ErrMembership }

// EncodingError wraps a failure from the wire codec.
type EncodingError struct {
	cause error
}

// NewEncodingError wraps cause as an EncodingError.
func NewEncodingError(cause error) EncodingError {
	return EncodingError{cause: cause}
}

func (e EncodingError) Error() string {
	return fmt.Sprintf("membership: encoding failure: %v", e.cause)
}
func (e EncodingError) Unwrap() []error { return []error{ErrMembership, e.cause} }
