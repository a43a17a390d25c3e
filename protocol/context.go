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

// Package protocol holds the shared round context and primitives every
// subprotocol (parity, veto, collision, notify, transmit, anontx) is
// built on, so those packages can stay siblings instead of importing
// each other's internals.
package protocol

import (
	"context"
	"io"

	"github.com/bt-protocols/anonbt/mailbox"
	"github.com/bt-protocols/anonbt/transport"
	"github.com/bt-protocols/anonbt/wire"
)

// Context is the per-invocation state every subprotocol round reads
// from: who am I, who else is in the group, where do inbound messages
// land, and how much randomness/soundness do I have to spend.
type Context struct {
	Self        string
	Peers       transport.PeerManager
	Mailbox     *mailbox.Mailbox
	Rng         io.Reader
	Security    uint
	MessageBits uint
	OrderedIDs  []string
}

// N is the total group size, self included.
func (c *Context) N() uint32 {
	return c.Peers.NumPeers() + 1
}

// Barrier implements the universal "*_finished broadcast+wait" that
// closes every subprotocol round: broadcast a finished token, wait for
// one from each of the n-1 peers, then clear the bucket so a late
// straggler from this round cannot contaminate the next one.
func (c *Context) Barrier(ctx context.Context, tag wire.Tag) error {
	c.Peers.Broadcast(wire.FinishedMessage(c.Self, tag))
	bucket := c.Mailbox.Bucket(tag)
	if _, err := bucket.WaitForSize(ctx, int(c.N())-1); err != nil {
		return err
	}
	bucket.Clear()
	return nil
}

// RandomBit draws a single uniformly random bit from rng.
func RandomBit(rng io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(rng, b[:]); err != nil {
		return 0, err
	}
	return b[0] & 1, nil
}

// ClosedFormShares samples an n-entry bit vector whose XOR equals
// target: n-1 entries are drawn uniformly at random, and the remaining
// entry is fixed to their XOR combined with target. This is the
// closed-form alternative to rejection sampling; either construction is
// uniform over the set of vectors with the required parity.
func ClosedFormShares(rng io.Reader, n uint32, target uint8) ([]uint8, error) {
	shares := make([]uint8, n)
	acc := uint8(0)
	for i := uint32(1); i < n; i++ {
		b, err := RandomBit(rng)
		if err != nil {
			return nil, err
		}
		shares[i] = b
		acc ^= b
	}
	shares[0] = acc ^ target
	return shares, nil
}
