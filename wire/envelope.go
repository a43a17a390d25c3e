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

// Package wire defines the tagged envelope records that cross the
// transport boundary and a CBOR codec for them. Nothing in mailbox or
// protocol/* depends on the codec; it exists solely for
// transport/libp2pnet, which needs to put an Envelope on a byte stream.
package wire

import "github.com/fxamacker/cbor/v2"

// Tag classifies an inbound message.
type Tag string

const (
	TagNodeID                     Tag = "node_id"
	TagParitySharedKey            Tag = "parity_shared_key"
	TagParityKeyXORResult         Tag = "parity_key_xor_result"
	TagParityFinished             Tag = "parity_finished"
	TagVetoFinished               Tag = "veto_finished"
	TagCollisionDetectionFinished Tag = "collision_detection_finished"
	TagNotificationFinished       Tag = "notification_finished"
	TagFixedMessageFinished       Tag = "fixed_message_finished"
	TagMessageFinished            Tag = "message_finished"
)

// KnownTags lists every tag the mailbox dispatcher accepts; anything else
// is ErrUnknownTag.
var KnownTags = []Tag{
	TagNodeID,
	TagParitySharedKey,
	TagParityKeyXORResult,
	TagParityFinished,
	TagVetoFinished,
	TagCollisionDetectionFinished,
	TagNotificationFinished,
	TagFixedMessageFinished,
	TagMessageFinished,
}

// Envelope is a key/value record with a single string key (Tag) and a
// value of type bit or string depending on the tag. Bit and Str are
// mutually exclusive by convention; which one is meaningful is
// determined by Tag.
type Envelope struct {
	From string `cbor:"from"`
	Tag  Tag    `cbor:"tag"`
	Bit  uint8  `cbor:"bit,omitempty"`
	Str  string `cbor:"str,omitempty"`
}

// BitMessage builds a bit-valued envelope (parity_shared_key,
// parity_key_xor_result).
func BitMessage(from string, tag Tag, bit uint8) Envelope {
	return Envelope{From: from, Tag: tag, Bit: bit}
}

// StrMessage builds a string-valued envelope (node_id).
func StrMessage(from string, tag Tag, str string) Envelope {
	return Envelope{From: from, Tag: tag, Str: str}
}

// FinishedMessage builds a presence-only envelope for a *_finished tag.
func FinishedMessage(from string, tag Tag) Envelope {
	return Envelope{From: from, Tag: tag}
}

// Encode serializes an envelope for the wire.
func Encode(e Envelope) ([]byte, error) {
	return cbor.Marshal(e)
}

// Decode deserializes an envelope read off the wire.
func Decode(b []byte) (Envelope, error) {
	var e Envelope
	err := cbor.Unmarshal(b, &e)
	return e, err
}
