package membership

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/luxfi/ids"
)

// fakeCrypto is a deliberately non-cryptographic Signer/Verifier used only
// by this package's unit tests: a signature is just a hash of
// (secret, msg), and verification recomputes it. Real signing is
// exercised separately by the signer package and the integration tests
// that use it.
type fakeCrypto struct {
	id     ids.NodeID
	secret uint64
	ring   *fakeKeyRing
}

type fakeKeyRing struct {
	mu      sync.Mutex
	secrets map[ids.NodeID]uint64
}

func newFakeKeyRing() *fakeKeyRing {
	return &fakeKeyRing{secrets: make(map[ids.NodeID]uint64)}
}

func (r *fakeKeyRing) newSigner(seed uint64) *fakeCrypto {
	id := ids.GenerateTestNodeID()

	r.mu.Lock()
	r.secrets[id] = seed
	r.mu.Unlock()

	return &fakeCrypto{id: id, secret: seed, ring: r}
}

func (c *fakeCrypto) Identity() ids.NodeID {
	return c.id
}

func (c *fakeCrypto) Sign(msg []byte) Signature {
	return fakeSign(c.secret, msg)
}

func (c *fakeCrypto) Verify(voter ids.NodeID, msg []byte, sig Signature) error {
	c.ring.mu.Lock()
	secret, ok := c.ring.secrets[voter]
	c.ring.mu.Unlock()
	if !ok {
		return fmt.Errorf("fakeCrypto: unknown voter %s", voter)
	}
	if fakeSign(secret, msg) != sig {
		return fmt.Errorf("fakeCrypto: signature mismatch for %s", voter)
	}
	return nil
}

func fakeSign(secret uint64, msg []byte) Signature {
	h := fnv.New64a()
	var secretBytes [8]byte
	for i := range secretBytes {
		secretBytes[i] = byte(secret >> (8 * i))
	}
	h.Write(secretBytes[:])
	h.Write(msg)
	sum := h.Sum64()

	var sig Signature
	for i := 0; i < 8; i++ {
		sig[i] = byte(sum >> (8 * i))
	}
	return sig
}
