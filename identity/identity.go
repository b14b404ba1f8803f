// Package identity gives the membership core's abstract, totally ordered
// participant identity a concrete shape: a luxfi/ids.NodeID derived from a
// compressed BLS public key.
package identity

import (
	"crypto/sha256"

	"github.com/luxfi/ids"
)

// NodeID is the stable, totally ordered identity a member signs and is
// known by. Reusing ids.NodeID keeps membership interoperable with the rest
// of the luxfi stack instead of inventing a parallel identity type.
type NodeID = ids.NodeID

// FromPublicKey derives a NodeID from a compressed BLS public key's bytes
// by truncating their SHA-256 digest to NodeID's width. Taking raw bytes
// rather than a *bls.PublicKey keeps this package free of a dependency on
// the bls package; the signer package is the one place that pairs the two.
// This is a simplification of the cert-hash derivation used elsewhere in
// the stack (see DESIGN.md): deterministic and collision-resistant enough
// for simulation and test use, but not a substitute for a real
// certificate-backed node-ID scheme.
func FromPublicKey(pub []byte) NodeID {
	digest := sha256.Sum256(pub)

	var id NodeID
	copy(id[:], digest[:len(id)])
	return id
}
