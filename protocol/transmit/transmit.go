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

// Package transmit implements fixed-role anonymous transmission: given
// a chosen sender and receiver (everyone else is a helper), it moves an
// AMDC-encoded bitstring one parity round per bit, with the receiver
// masking the result against a private one-time pad so helpers and the
// sender see only random noise.
package transmit

import (
	"context"
	"errors"

	"github.com/bt-protocols/anonbt/amdc"
	"github.com/bt-protocols/anonbt/protocol"
	"github.com/bt-protocols/anonbt/protocol/parity"
	"github.com/bt-protocols/anonbt/protocol/veto"
	"github.com/bt-protocols/anonbt/wire"
)

// ErrBadMessageLength is returned when the sender's message does not
// match the configured message length in bits.
var ErrBadMessageLength = errors.New("transmit: message length does not match the configured message_length")

// Role names a participant's part in a single fixed-role transmission.
type Role uint8

const (
	RoleHelper Role = iota
	RoleSender
	RoleReceiver
)

// Result reports the outcome of a fixed-role transmission. Message and
// OK are populated only for the receiver; Tampered is meaningful for
// every participant, since the closing veto round is anonymous and its
// result is visible to the whole group.
type Result struct {
	Message  []byte
	OK       bool
	Tampered bool
}

// Execute runs one fixed-role transmission of pc.MessageBits bits.
// message is only consulted when role is RoleSender.
func Execute(ctx context.Context, pc *protocol.Context, role Role, message []byte) (Result, error) {
	m := pc.MessageBits
	lengthBits, err := amdc.EncodedLength(pc.Security, m)
	if err != nil {
		return Result{}, err
	}

	var codeword []byte
	if role == RoleSender {
		if uint(len(message))*8 != m {
			return Result{}, ErrBadMessageLength
		}
		codeword, err = amdc.Encode(pc.Rng, message, m, pc.Security)
		if err != nil {
			return Result{}, err
		}
	}

	var otp []byte
	if role == RoleReceiver {
		otp = make([]byte, bitsFor(lengthBits))
		for r := uint(0); r < lengthBits; r++ {
			b, err := protocol.RandomBit(pc.Rng)
			if err != nil {
				return Result{}, err
			}
			setBit(otp, r, b)
		}
	}

	received := make([]byte, bitsFor(lengthBits))
	for r := uint(0); r < lengthBits; r++ {
		var input uint8
		switch role {
		case RoleSender:
			input = getBit(codeword, r)
		case RoleReceiver:
			input = getBit(otp, r)
		}

		out, err := parity.Execute(ctx, pc, input, false)
		if err != nil {
			return Result{}, err
		}
		if role == RoleReceiver {
			setBit(received, r, out^getBit(otp, r))
		}
	}

	var ok bool
	var plaintext []byte
	if role == RoleReceiver {
		ok, plaintext, err = amdc.Decode(received, m, pc.Security)
		if err != nil {
			return Result{}, err
		}
	}

	vetoInput := uint8(0)
	if role == RoleReceiver && !ok {
		vetoInput = 1
	}
	tampered, err := veto.Execute(ctx, pc, vetoInput)
	if err != nil {
		return Result{}, err
	}

	if err := pc.Barrier(ctx, wire.TagFixedMessageFinished); err != nil {
		return Result{}, err
	}

	result := Result{Tampered: tampered.Value == 1}
	if role == RoleReceiver {
		result.Message = plaintext
		result.OK = ok
	}
	return result, nil
}
