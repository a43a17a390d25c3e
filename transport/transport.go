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

// Package transport defines the boundary between a party's protocol
// logic and whatever carries envelopes between processes. The core
// protocol packages only ever see a PeerManager; they never know
// whether it is backed by an in-process loopback (transport/local,
// used by tests and single-process simulations) or a real libp2p
// network (transport/libp2pnet).
package transport

import "github.com/bt-protocols/anonbt/wire"

// PeerManager is the minimal view a participant needs of its group: its
// own ID, how many peers exist, and their IDs, plus a way to get a
// message to one or all of them.
type PeerManager interface {
	SelfID() string
	NumPeers() uint32
	PeerIDs() []string
	Broadcast(env wire.Envelope)
	SendTo(id string, env wire.Envelope)
}

// Receiver accepts an inbound envelope from the transport layer. A
// mailbox.Mailbox satisfies this; transports hold a Receiver rather
// than a concrete *mailbox.Mailbox so they can be tested against a
// fake.
type Receiver interface {
	Dispatch(env wire.Envelope) error
}
