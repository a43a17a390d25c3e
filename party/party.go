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

// Package party is the callable façade a host process embeds: one
// Party per participant, constructed with its transport and driven by
// synchronous Execute* calls from a single goroutine, exactly as the
// teacher's DKG/Reshare/Signer types are driven by their owning
// process. The only other goroutine touching a Party is the
// transport's, which calls Dispatch as inbound envelopes arrive.
package party

import (
	"context"
	"crypto/rand"
	"io"
	"sort"

	"github.com/getamis/sirius/log"

	"github.com/bt-protocols/anonbt/logger"
	"github.com/bt-protocols/anonbt/mailbox"
	"github.com/bt-protocols/anonbt/protocol"
	"github.com/bt-protocols/anonbt/protocol/anontx"
	"github.com/bt-protocols/anonbt/protocol/collision"
	"github.com/bt-protocols/anonbt/protocol/notify"
	"github.com/bt-protocols/anonbt/protocol/parity"
	"github.com/bt-protocols/anonbt/protocol/transmit"
	"github.com/bt-protocols/anonbt/protocol/veto"
	"github.com/bt-protocols/anonbt/transport"
	"github.com/bt-protocols/anonbt/wire"
)

// Party drives the full subprotocol stack for a single participant.
type Party struct {
	id          string
	peers       transport.PeerManager
	mbox        *mailbox.Mailbox
	security    uint
	rng         io.Reader
	messageBits uint
	orderedIDs  []string

	logger log.Logger
}

// New builds a Party bound to peers, targeting per-subprotocol
// soundness 1-2^-security.
func New(peers transport.PeerManager, security uint, opts ...Option) (*Party, error) {
	p := &Party{
		id:          peers.SelfID(),
		peers:       peers,
		mbox:        mailbox.New(),
		security:    security,
		rng:         rand.Reader,
		messageBits: defaultMessageBits,
		logger:      logger.Logger().New("id", peers.SelfID()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Dispatch is the on_message callback target: the transport calls this
// once per inbound envelope.
func (p *Party) Dispatch(env wire.Envelope) error {
	return p.mbox.Dispatch(env)
}

// ctx bundles this Party's fields into the protocol.Context the
// subprotocol packages operate on. orderedIDs must already be
// populated by Handshake.
func (p *Party) ctx() *protocol.Context {
	return &protocol.Context{
		Self:        p.id,
		Peers:       p.peers,
		Mailbox:     p.mbox,
		Rng:         p.rng,
		Security:    p.security,
		MessageBits: p.messageBits,
		OrderedIDs:  p.orderedIDs,
	}
}

// Handshake establishes the total order of participants: broadcast our
// node_id, collect everyone else's, sort the union. Every honest
// participant computes the identical ordered_ids, which every
// subsequent subprotocol relies on (for the broadcasts_last rotation in
// Veto and the spectator rotation in Notification).
func (p *Party) Handshake(ctx context.Context) error {
	p.peers.Broadcast(wire.StrMessage(p.id, wire.TagNodeID, p.id))

	want := int(p.peers.NumPeers())
	bucket := p.mbox.Bucket(wire.TagNodeID)
	entries, err := bucket.WaitForSize(ctx, want)
	if err != nil {
		return err
	}
	bucket.Clear()

	seen := map[string]bool{p.id: true}
	ids := make([]string, 0, want+1)
	ids = append(ids, p.id)
	for _, e := range entries {
		if seen[e.Str] {
			p.logger.Error("duplicate node id during handshake", "id", e.Str)
			return ErrDuplicateID
		}
		seen[e.Str] = true
		ids = append(ids, e.Str)
	}
	sort.Strings(ids)
	p.orderedIDs = ids
	p.logger.Debug("handshake complete", "orderedIDs", p.orderedIDs)
	return nil
}

// ExecuteParity runs one anonymous-XOR round (§4.4).
func (p *Party) ExecuteParity(ctx context.Context, input uint8, broadcastsLast bool) (uint8, error) {
	return parity.Execute(ctx, p.ctx(), input, broadcastsLast)
}

// ExecuteVeto runs the anonymous-OR protocol (§4.5).
func (p *Party) ExecuteVeto(ctx context.Context, input uint8) (uint8, error) {
	r, err := veto.Execute(ctx, p.ctx(), input)
	if err != nil {
		return 0, err
	}
	return r.Value, nil
}

// ExecuteCollisionDetection classifies the group's senders (§4.6).
func (p *Party) ExecuteCollisionDetection(ctx context.Context, input uint8) (collision.Result, error) {
	return collision.Execute(ctx, p.ctx(), input)
}

// ExecuteNotification runs covert sender-to-recipient notification
// (§4.7). target is this participant's own chosen recipient, or "" if
// it is not attempting to notify anyone this round.
func (p *Party) ExecuteNotification(ctx context.Context, target string) (notify.Result, error) {
	return notify.Execute(ctx, p.ctx(), target)
}

// ExecuteFixedTransmission runs fixed-role anonymous transmission
// (§4.8) with an explicitly chosen role.
func (p *Party) ExecuteFixedTransmission(ctx context.Context, role transmit.Role, message []byte) (transmit.Result, error) {
	return transmit.Execute(ctx, p.ctx(), role, message)
}

// ExecuteMessageTransmission runs the full orchestrator (§4.9):
// collision detection, notification, and fixed-role transmission
// chained end to end. notifyTarget is this participant's own candidate
// recipient, or "" to sit this round out as a helper/voter only.
func (p *Party) ExecuteMessageTransmission(ctx context.Context, notifyTarget string, message []byte) (anontx.Result, error) {
	return anontx.Execute(ctx, p.ctx(), notifyTarget, message)
}
