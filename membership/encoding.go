package membership

import (
	"bytes"
	"encoding/binary"
	"sort"
)

// CanonicalBytes produces the deterministic, injective byte encoding of
// (ballot, gen) that gets signed and verified. It never includes the
// voter or signature fields, emits nested vote sets in their canonical
// order, and length-prefixes every variable-length element so distinct
// logical values never collide on the same byte string.
func CanonicalBytes(gen Generation, ballot Ballot) []byte {
	var buf bytes.Buffer
	writeUint64(&buf, gen)
	writeBallot(&buf, ballot)
	return buf.Bytes()
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeUvarint(buf, uint64(len(b)))
	buf.Write(b)
}

func writeReconfig(buf *bytes.Buffer, r Reconfig) {
	buf.WriteByte(byte(r.Kind))
	buf.Write(r.Actor[:])
}

func writeBallot(buf *bytes.Buffer, b Ballot) {
	buf.WriteByte(byte(b.Kind))
	switch b.Kind {
	case BallotPropose:
		writeReconfig(buf, b.Propose)
	case BallotMerge, BallotSuperMajority:
		sorted := sortedSignedVotes(b.Votes)
		writeUvarint(buf, uint64(len(sorted)))
		for _, sv := range sorted {
			writeBytes(buf, encodeSignedVote(sv))
		}
	}
}

// encodeSignedVote canonically encodes a full SignedVote, including voter
// and signature: unlike CanonicalBytes (the signing domain of the
// outermost vote), nested votes inside a Merge/SuperMajority ballot must
// carry their own authentication so the containing ballot actually vouches
// for who cast each child vote.
func encodeSignedVote(sv SignedVote) []byte {
	var buf bytes.Buffer
	buf.Write(sv.Voter[:])
	buf.Write(sv.Sig[:])
	writeBytes(&buf, CanonicalBytes(sv.Vote.Gen, sv.Vote.Ballot))
	return buf.Bytes()
}

// voteOrderKey is the canonical sort/dedup key for a SignedVote: its own
// encoding. Two SignedVotes with identical (voter, sig, gen, ballot) are
// indistinguishable and collapse to the same key.
func voteOrderKey(sv SignedVote) string {
	return string(encodeSignedVote(sv))
}

func sortedSignedVotes(votes []SignedVote) []SignedVote {
	out := make([]SignedVote, len(votes))
	copy(out, votes)
	sort.Slice(out, func(i, j int) bool {
		return voteOrderKey(out[i]) < voteOrderKey(out[j])
	})
	return out
}

// dedupSignedVotes drops exact duplicates (same canonical encoding),
// preserving canonical order. Used wherever a caller builds a vote set by
// hand and may have repeated an element.
func dedupSignedVotes(votes []SignedVote) []SignedVote {
	sorted := sortedSignedVotes(votes)
	out := make([]SignedVote, 0, len(sorted))
	var lastKey string
	for i, sv := range sorted {
		key := voteOrderKey(sv)
		if i == 0 || key != lastKey {
			out = append(out, sv)
		}
		lastKey = key
	}
	return out
}

// reconfigSet is a canonically sorted, deduplicated set of Reconfigs, used
// as a map/comparison key for vote counting.
type reconfigSet struct {
	items []Reconfig
}

func newReconfigSet(items []Reconfig) reconfigSet {
	sorted := make([]Reconfig, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].less(sorted[j]) })

	out := sorted[:0:0]
	for i, r := range sorted {
		if i == 0 || r != sorted[i-1] {
			out = append(out, r)
		}
	}
	return reconfigSet{items: out}
}

// key returns a string uniquely identifying this set's contents, suitable
// for use as a map key.
func (s reconfigSet) key() string {
	var buf bytes.Buffer
	for _, r := range s.items {
		writeReconfig(&buf, r)
	}
	return buf.String()
}

// less gives reconfigSet the deterministic total order used to break ties
// in resolveVotes: shorter sets first, then lexicographic by element.
func (s reconfigSet) less(o reconfigSet) bool {
	if len(s.items) != len(o.items) {
		return len(s.items) < len(o.items)
	}
	for i := range s.items {
		if s.items[i] != o.items[i] {
			return s.items[i].less(o.items[i])
		}
	}
	return false
}

func (s reconfigSet) equalTo(other map[Reconfig]struct{}) bool {
	if len(s.items) != len(other) {
		return false
	}
	for _, r := range s.items {
		if _, ok := other[r]; !ok {
			return false
		}
	}
	return true
}

func (s reconfigSet) toSlice() []Reconfig {
	out := make([]Reconfig, len(s.items))
	copy(out, s.items)
	return out
}

func (s reconfigSet) toMap() map[Reconfig]struct{} {
	out := make(map[Reconfig]struct{}, len(s.items))
	for _, r := range s.items {
		out[r] = struct{}{}
	}
	return out
}
