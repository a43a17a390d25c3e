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

// Package anontx glues collision detection, notification, and
// fixed-role transmission into the top-level "send one anonymous
// message" operation.
package anontx

import (
	"context"

	"github.com/bt-protocols/anonbt/protocol"
	"github.com/bt-protocols/anonbt/protocol/collision"
	"github.com/bt-protocols/anonbt/protocol/notify"
	"github.com/bt-protocols/anonbt/protocol/transmit"
	"github.com/bt-protocols/anonbt/wire"
)

// Result is the outcome of one full anonymous transmission attempt.
type Result struct {
	Aborted      bool
	Collision    collision.Result
	Notification notify.Result
	Transmission transmit.Result
}

// Execute runs collision detection on "do I want to send", then
// notification to pick out the receiver, then the fixed-role bit-by-bit
// transfer. notifyTarget is this participant's own candidate recipient,
// or "" if it is not attempting to send this round.
func Execute(ctx context.Context, pc *protocol.Context, notifyTarget string, message []byte) (Result, error) {
	isSender := notifyTarget != ""
	csInput := uint8(0)
	if isSender {
		csInput = 1
	}

	csResult, err := collision.Execute(ctx, pc, csInput)
	if err != nil {
		return Result{}, err
	}
	if csResult != collision.OneSender {
		return Result{Aborted: true, Collision: csResult}, nil
	}

	notifyResult, err := notify.Execute(ctx, pc, notifyTarget)
	if err != nil {
		return Result{}, err
	}

	role := transmit.RoleHelper
	switch {
	case isSender:
		role = transmit.RoleSender
	case notifyResult.Notified:
		role = transmit.RoleReceiver
	}

	txResult, err := transmit.Execute(ctx, pc, role, message)
	if err != nil {
		return Result{}, err
	}

	if err := pc.Barrier(ctx, wire.TagMessageFinished); err != nil {
		return Result{}, err
	}

	return Result{
		Collision:    csResult,
		Notification: notifyResult,
		Transmission: txResult,
	}, nil
}
