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

// Package collision classifies the group's aggregate input into "no
// sender", "exactly one sender", or "collision (two or more)" using
// two chained veto rounds.
package collision

import (
	"context"

	"github.com/bt-protocols/anonbt/protocol"
	"github.com/bt-protocols/anonbt/protocol/veto"
	"github.com/bt-protocols/anonbt/wire"
)

// Result classifies the outcome of a collision detection round.
type Result uint8

const (
	NoSender Result = iota
	OneSender
	Collision
)

// Execute runs phase A (veto over the raw inputs) and, if it fired,
// phase B (veto over "I am a sender and did not contribute the bit that
// decided phase A") to distinguish a single sender from a collision of
// two or more. A non-sender carries no information distinguishing one
// sender from several, so phase B's input is 1 only for a sender whose
// own phase-A deciding-round bit was 0 — i.e. someone else's bit is what
// fired phase A.
func Execute(ctx context.Context, pc *protocol.Context, input uint8) (Result, error) {
	phaseA, err := veto.Execute(ctx, pc, input)
	if err != nil {
		return 0, err
	}

	result := NoSender
	if phaseA.Value == 1 {
		phaseBInput := uint8(0)
		if input == 1 && phaseA.OwnInput == 0 {
			phaseBInput = 1
		}
		phaseB, err := veto.Execute(ctx, pc, phaseBInput)
		if err != nil {
			return 0, err
		}
		if phaseB.Value == 0 {
			result = OneSender
		} else {
			result = Collision
		}
	}

	if err := pc.Barrier(ctx, wire.TagCollisionDetectionFinished); err != nil {
		return 0, err
	}
	return result, nil
}
