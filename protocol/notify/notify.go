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

// Package notify implements covert sender-to-recipient notification: a
// designated sender picks a recipient by node_id, the recipient learns
// it was picked, and nobody else learns anything.
package notify

import (
	"context"
	"errors"

	"github.com/bt-protocols/anonbt/protocol"
	"github.com/bt-protocols/anonbt/protocol/parity"
	"github.com/bt-protocols/anonbt/wire"
)

// ErrSelfNotify is returned synchronously, before any network I/O, when
// a participant names itself as the notification target.
var ErrSelfNotify = errors.New("notify: target equals own node id")

// Result reports whether this participant was the notification target.
// It depends only on the other participants' targets: an empty target
// (not a sender) makes this participant contribute zero inputs in every
// round, since no ordered_ids entry ever equals the empty string, but it
// can still be notified by a peer.
type Result struct {
	Notified bool
}

// Execute iterates every candidate recipient p in OrderedIDs, running
// Security one-sided parity rounds for each: every participant's share
// contributes a random bit iff p is its chosen target (else zero), and
// only p ever learns the XOR, by point-to-point send instead of
// broadcast.
func Execute(ctx context.Context, pc *protocol.Context, target string) (Result, error) {
	if target != "" && target == pc.Self {
		return Result{}, ErrSelfNotify
	}

	result := uint8(0)
	bucket := pc.Mailbox.Bucket(wire.TagParityKeyXORResult)
	want := int(pc.N()) - 1

	for _, p := range pc.OrderedIDs {
		for i := uint(0); i < pc.Security; i++ {
			roundInput := uint8(0)
			if target == p {
				b, err := protocol.RandomBit(pc.Rng)
				if err != nil {
					return Result{}, err
				}
				roundInput = b
			}

			x, err := parity.ShareXOR(ctx, pc, roundInput)
			if err != nil {
				return Result{}, err
			}

			if pc.Self != p {
				pc.Peers.SendTo(p, wire.BitMessage(pc.Self, wire.TagParityKeyXORResult, x))
			} else {
				entries, err := bucket.WaitForSize(ctx, want)
				if err != nil {
					return Result{}, err
				}
				bucket.Clear()
				r := x
				for _, e := range entries {
					r ^= e.Bit
				}
				result |= r
			}

			if err := pc.Barrier(ctx, wire.TagParityFinished); err != nil {
				return Result{}, err
			}
		}
	}

	if err := pc.Barrier(ctx, wire.TagNotificationFinished); err != nil {
		return Result{}, err
	}
	return Result{Notified: result == 1}, nil
}
