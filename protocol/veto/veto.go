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

// Package veto implements the anonymous-OR protocol: the result is 1
// iff at least one participant's input is 1, amplified over beta
// rounds per rotation of the last broadcaster to bound the false
// negative rate at 2^-beta while never biasing who learns a veto
// first.
package veto

import (
	"context"

	"github.com/bt-protocols/anonbt/protocol"
	"github.com/bt-protocols/anonbt/protocol/parity"
	"github.com/bt-protocols/anonbt/wire"
)

// Result is the outcome of a veto round. OwnInput is this participant's
// own random parity input in the deciding round — the round whose
// result is Value, i.e. the round that fired, or the final round of the
// rotation if none did. Collision detection needs this bit to tell
// apart "I fired the deciding round" from "someone else did."
type Result struct {
	Value    uint8
	OwnInput uint8
}

// Execute runs the full rotation of last-broadcasters, each with
// Security independent parity rounds, stopping at the first round that
// returns 1 (the OR is already established; further rounds cannot
// un-set it). It always finishes with the veto_finished barrier, even
// on early exit.
func Execute(ctx context.Context, pc *protocol.Context, input uint8) (Result, error) {
	result := uint8(0)
	ownInput := uint8(0)

rotation:
	for _, lastBroadcaster := range pc.OrderedIDs {
		broadcastsLast := lastBroadcaster == pc.Self
		for i := uint(0); i < pc.Security; i++ {
			roundInput := uint8(0)
			if input == 1 {
				b, err := protocol.RandomBit(pc.Rng)
				if err != nil {
					return Result{}, err
				}
				roundInput = b
			}

			r, err := parity.Execute(ctx, pc, roundInput, broadcastsLast)
			if err != nil {
				return Result{}, err
			}
			result = r
			ownInput = roundInput
			if result == 1 {
				break rotation
			}
		}
	}

	if err := pc.Barrier(ctx, wire.TagVetoFinished); err != nil {
		return Result{}, err
	}
	return Result{Value: result, OwnInput: ownInput}, nil
}
