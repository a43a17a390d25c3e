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

// Package parity implements the anonymous one-bit XOR that every other
// subprotocol in this repository is ultimately built from.
package parity

import (
	"context"

	"github.com/bt-protocols/anonbt/protocol"
	"github.com/bt-protocols/anonbt/wire"
)

// ShareXOR runs the share-and-collect stage common to a full parity
// round and to notification's one-sided round: sample a share vector
// whose XOR is input, retain one share, send the rest to the other
// peers, then wait for all n shares (including the retained one) and
// return their XOR. Exported so protocol/notify can reuse it without
// running the broadcast stage below.
func ShareXOR(ctx context.Context, pc *protocol.Context, input uint8) (uint8, error) {
	n := pc.N()
	shares, err := protocol.ClosedFormShares(pc.Rng, n, input)
	if err != nil {
		return 0, err
	}

	if err := pc.Mailbox.Dispatch(wire.BitMessage(pc.Self, wire.TagParitySharedKey, shares[0])); err != nil {
		return 0, err
	}
	peers := pc.Peers.PeerIDs()
	for i, id := range peers {
		pc.Peers.SendTo(id, wire.BitMessage(pc.Self, wire.TagParitySharedKey, shares[i+1]))
	}

	bucket := pc.Mailbox.Bucket(wire.TagParitySharedKey)
	entries, err := bucket.WaitForSize(ctx, int(n))
	if err != nil {
		return 0, err
	}
	bucket.Clear()

	x := uint8(0)
	for _, e := range entries {
		x ^= e.Bit
	}
	return x, nil
}

// Execute runs one full anonymous-XOR round (the public contract
// execute_parity): every participant contributes input, and every
// participant learns XOR(inputs) without learning any single other
// input. broadcastsLast controls whether this participant withholds
// its own broadcast until every other has broadcast first, which Veto
// uses to rotate who is informed last.
func Execute(ctx context.Context, pc *protocol.Context, input uint8, broadcastsLast bool) (uint8, error) {
	x, err := ShareXOR(ctx, pc, input)
	if err != nil {
		return 0, err
	}

	bucket := pc.Mailbox.Bucket(wire.TagParityKeyXORResult)
	want := int(pc.N()) - 1

	broadcastSelf := func() {
		pc.Peers.Broadcast(wire.BitMessage(pc.Self, wire.TagParityKeyXORResult, x))
	}

	var entries []wire.Envelope
	if broadcastsLast {
		entries, err = bucket.WaitForSize(ctx, want)
		if err != nil {
			return 0, err
		}
		broadcastSelf()
	} else {
		broadcastSelf()
		entries, err = bucket.WaitForSize(ctx, want)
		if err != nil {
			return 0, err
		}
	}
	bucket.Clear()

	result := x
	for _, e := range entries {
		result ^= e.Bit
	}

	if err := pc.Barrier(ctx, wire.TagParityFinished); err != nil {
		return 0, err
	}
	return result, nil
}
