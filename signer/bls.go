// Package signer provides a concrete BLS-backed implementation of the
// membership package's Signer/Verifier interfaces, pairing a NodeID with
// a BLS keypair the same way a validator set pairs a NodeID with its
// signing key.
package signer

import (
	"fmt"
	"sync"

	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/ids"

	"github.com/luxfi/membership/identity"
	"github.com/luxfi/membership/membership"
)

// KeyRing resolves an identity back to the BLS public key it was derived
// from, the NodeID -> PublicKey directory every BLS instance sharing the
// ring is registered into.
type KeyRing struct {
	mu   sync.RWMutex
	keys map[ids.NodeID]*bls.PublicKey
}

// NewKeyRing creates an empty KeyRing.
func NewKeyRing() *KeyRing {
	return &KeyRing{keys: make(map[ids.NodeID]*bls.PublicKey)}
}

// Register associates pub with the identity it derives to. Safe to call
// concurrently.
func (r *KeyRing) Register(pub *bls.PublicKey) ids.NodeID {
	id := identity.FromPublicKey(bls.PublicKeyToCompressedBytes(pub))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[id] = pub
	return id
}

func (r *KeyRing) lookup(id ids.NodeID) (*bls.PublicKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pub, ok := r.keys[id]
	return pub, ok
}

// BLS is a membership.Crypto backed by a BLS keypair. Its Verify method
// resolves the claimed voter against a shared KeyRing, so every BLS
// instance that is to interoperate must share (or separately populate)
// the same ring.
type BLS struct {
	sk   *bls.SecretKey
	pub  *bls.PublicKey
	id   ids.NodeID
	ring *KeyRing
}

// New generates a fresh BLS keypair, registers its public key in ring,
// and returns a Signer/Verifier bound to the derived identity.
func New(ring *KeyRing) (*BLS, error) {
	sk, err := bls.NewSecretKey()
	if err != nil {
		return nil, fmt.Errorf("signer: generate key: %w", err)
	}

	pub := sk.PublicKey()
	id := ring.Register(pub)
	return &BLS{sk: sk, pub: pub, id: id, ring: ring}, nil
}

// Identity returns the identity this signer signs as.
func (b *BLS) Identity() ids.NodeID {
	return b.id
}

// PublicKey returns the raw BLS public key backing this identity.
func (b *BLS) PublicKey() *bls.PublicKey {
	return b.pub
}

// Sign signs msg, returning it packed into a membership.Signature. A
// signing failure has no retry the caller could usefully perform, so it
// degrades to the zero signature, which Verify will simply reject.
func (b *BLS) Sign(msg []byte) membership.Signature {
	sig, err := b.sk.Sign(msg)
	if err != nil {
		return membership.Signature{}
	}

	var out membership.Signature
	copy(out[:], bls.SignatureToBytes(sig))
	return out
}

// Verify checks sig against msg for the claimed voter, resolving voter to
// a public key via the shared KeyRing.
func (b *BLS) Verify(voter ids.NodeID, msg []byte, sig membership.Signature) error {
	pub, ok := b.ring.lookup(voter)
	if !ok {
		return fmt.Errorf("signer: unknown voter %s", voter)
	}

	parsed, err := bls.SignatureFromBytes(sig[:])
	if err != nil {
		return fmt.Errorf("signer: malformed signature for %s: %w", voter, err)
	}
	if !bls.Verify(pub, parsed, msg) {
		return fmt.Errorf("signer: signature does not verify for %s", voter)
	}
	return nil
}
