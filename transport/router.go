// Package transport provides the packet delivery mechanism that routes
// membership.Packet values between member states, possibly reordering,
// duplicating, or dropping them.
package transport

import (
	"sync"

	"github.com/luxfi/ids"

	"github.com/luxfi/membership/membership"
)

// Router is an in-process, goroutine-safe packet router. It queues
// packets per destination and lets a driver (test or CLI) control
// delivery order explicitly, including dropping or duplicating packets to
// exercise the protocol's tolerance for an unreliable network.
type Router struct {
	mu     sync.Mutex
	queues map[ids.NodeID][]membership.Packet
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{queues: make(map[ids.NodeID][]membership.Packet)}
}

// Enqueue appends packets to their respective destination queues.
func (r *Router) Enqueue(packets ...membership.Packet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range packets {
		r.queues[p.Dest] = append(r.queues[p.Dest], p)
	}
}

// Pending reports how many packets are queued for dest.
func (r *Router) Pending(dest ids.NodeID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queues[dest])
}

// Len reports the total number of queued packets across all destinations.
func (r *Router) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, q := range r.queues {
		total += len(q)
	}
	return total
}

// DeliverNext pops and returns the oldest queued packet for dest. The
// caller is expected to feed it to the destination's HandleVote. Returns
// false if no packet is queued.
func (r *Router) DeliverNext(dest ids.NodeID) (membership.Packet, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := r.queues[dest]
	if len(q) == 0 {
		return membership.Packet{}, false
	}

	p := q[0]
	r.queues[dest] = q[1:]
	return p, true
}

// Drop discards every packet currently queued for dest, simulating a
// partition.
func (r *Router) Drop(dest ids.NodeID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.queues[dest])
	delete(r.queues, dest)
	return n
}

// Duplicate re-enqueues the oldest queued packet for dest behind itself,
// simulating a transport that delivers the same packet twice.
func (r *Router) Duplicate(dest ids.NodeID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := r.queues[dest]
	if len(q) == 0 {
		return false
	}
	r.queues[dest] = append([]membership.Packet{q[0]}, q...)
	return true
}

// Destinations lists every identity with at least one packet queued,
// useful for a driver loop that wants to drain everything.
func (r *Router) Destinations() []ids.NodeID {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ids.NodeID, 0, len(r.queues))
	for dest, q := range r.queues {
		if len(q) > 0 {
			out = append(out, dest)
		}
	}
	return out
}
