// Copyright © 2020 AMIS Technologies
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package local implements an in-process loopback transport for tests
// and local simulation: every participant in a run shares one Network,
// and sending a message is just calling the recipient's Dispatch in the
// caller's own goroutine.
package local

import (
	"fmt"
	"sort"
	"sync"

	"github.com/getamis/sirius/log"

	"github.com/bt-protocols/anonbt/transport"
	"github.com/bt-protocols/anonbt/wire"
)

// Network is the shared registry every local.PeerManager in a
// simulation is attached to. Membership (the id set) and dispatch
// targets (the receivers) are tracked separately so a participant's
// PeerManager can be handed to its own constructor before the
// participant itself exists to receive anything — Reserve first, Bind
// once the receiver is built.
type Network struct {
	mu        sync.RWMutex
	ids       map[string]bool
	receivers map[string]transport.Receiver
}

// NewNetwork creates an empty network. Reserve every participant
// before any of them starts sending.
func NewNetwork() *Network {
	return &Network{
		ids:       make(map[string]bool),
		receivers: make(map[string]transport.Receiver),
	}
}

// Reserve registers id as a group member and returns a PeerManager
// bound to it. The PeerManager is usable for PeerIDs/NumPeers
// immediately; sends to it won't be delivered until Bind supplies its
// receiver. Not safe to call concurrently with Broadcast/SendTo.
func (n *Network) Reserve(id string) *PeerManager {
	n.mu.Lock()
	n.ids[id] = true
	n.mu.Unlock()
	return &PeerManager{net: n, self: id}
}

// Bind attaches id's dispatch target. Call once per reserved id before
// any participant starts sending.
func (n *Network) Bind(id string, recv transport.Receiver) {
	n.mu.Lock()
	n.receivers[id] = recv
	n.mu.Unlock()
}

// Join is a convenience for the common case of a pre-built receiver:
// Reserve followed by Bind.
func (n *Network) Join(id string, recv transport.Receiver) *PeerManager {
	pm := n.Reserve(id)
	n.Bind(id, recv)
	return pm
}

func (n *Network) peerIDs(exclude string) []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	ids := make([]string, 0, len(n.ids))
	for id := range n.ids {
		if id == exclude {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (n *Network) numPeers(exclude string) uint32 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	count := len(n.ids)
	if n.ids[exclude] {
		count--
	}
	return uint32(count)
}

func (n *Network) deliver(id string, env wire.Envelope) {
	n.mu.RLock()
	recv, ok := n.receivers[id]
	n.mu.RUnlock()
	if !ok {
		log.Warn("local: send to unknown peer", "to", id, "tag", env.Tag)
		return
	}
	// Dispatched synchronously, in the sender's own goroutine: this
	// preserves per-sender FIFO order at every receiver, which the
	// round barrier depends on. Cross-sender interleaving at a shared
	// receiver is unconstrained and unaffected by this choice.
	if err := recv.Dispatch(env); err != nil {
		log.Warn("local: dispatch failed", "to", id, "tag", env.Tag, "err", err)
	}
}

// PeerManager is a transport.PeerManager backed by a Network.
type PeerManager struct {
	net  *Network
	self string
}

var _ transport.PeerManager = (*PeerManager)(nil)

func (p *PeerManager) SelfID() string { return p.self }

func (p *PeerManager) NumPeers() uint32 { return p.net.numPeers(p.self) }

func (p *PeerManager) PeerIDs() []string { return p.net.peerIDs(p.self) }

func (p *PeerManager) Broadcast(env wire.Envelope) {
	for _, id := range p.net.peerIDs(p.self) {
		p.net.deliver(id, env)
	}
}

func (p *PeerManager) SendTo(id string, env wire.Envelope) {
	if id == p.self {
		panic(fmt.Sprintf("local: %s attempted to send to itself", p.self))
	}
	p.net.deliver(id, env)
}
