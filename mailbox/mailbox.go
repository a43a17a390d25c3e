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

// Package mailbox implements the per-tag inbox dispatcher and the
// wait-for-size barrier primitive shared by every subprotocol round: one
// buffered bucket per message tag, classified by a single dispatcher,
// generalized from "pop the next message" to "block until a named
// bucket's multiset reaches size n", which several subprotocols need in
// order to see every peer's share before computing a result.
package mailbox

import (
	"context"
	"errors"
	"sync"

	"github.com/bt-protocols/anonbt/wire"
)

// ErrUnknownTag is returned by Dispatch for a tag outside wire.KnownTags;
// this is treated as fatal (protocol desync) by callers.
var ErrUnknownTag = errors.New("mailbox: unknown tag")

// Bucket is a thread-safe multiset of envelopes for a single tag. The
// order items arrive in is not significant; only the multiset matters.
type Bucket struct {
	mu     sync.Mutex
	items  []wire.Envelope
	signal chan struct{}
}

func newBucket() *Bucket {
	return &Bucket{signal: make(chan struct{})}
}

// Append adds an envelope to the bucket and wakes any waiters.
func (b *Bucket) Append(e wire.Envelope) {
	b.mu.Lock()
	b.items = append(b.items, e)
	old := b.signal
	b.signal = make(chan struct{})
	b.mu.Unlock()
	close(old)
}

// Len reports the current size of the bucket.
func (b *Bucket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// WaitForSize blocks until the bucket holds at least n items, then
// returns a snapshot of the first n. Any items beyond n are left in the
// bucket; a spurious extra is a protocol violation by a peer, not
// something this primitive reconciles. The only suspension point in the
// whole protocol stack is here and in the finished-barrier built on top
// of it.
func (b *Bucket) WaitForSize(ctx context.Context, n int) ([]wire.Envelope, error) {
	for {
		b.mu.Lock()
		if len(b.items) >= n {
			out := make([]wire.Envelope, n)
			copy(out, b.items[:n])
			b.mu.Unlock()
			return out, nil
		}
		wait := b.signal
		b.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Clear empties the bucket. Callers clear a bucket right after the
// WaitForSize that consumed the current round's entries; the
// finished-barrier closing each round (protocol.Context.Barrier) is what
// keeps peers from sending the next round's entries for this tag before
// then.
func (b *Bucket) Clear() {
	b.mu.Lock()
	b.items = nil
	b.mu.Unlock()
}

// Mailbox is the single inbox dispatcher: one bucket per known tag, fed
// by the transport's reader goroutine(s) and drained by the
// participant's driver goroutine.
type Mailbox struct {
	buckets map[wire.Tag]*Bucket
}

// New allocates a mailbox with one empty bucket per wire.KnownTags entry.
func New() *Mailbox {
	m := &Mailbox{buckets: make(map[wire.Tag]*Bucket, len(wire.KnownTags))}
	for _, t := range wire.KnownTags {
		m.buckets[t] = newBucket()
	}
	return m
}

// Dispatch classifies an inbound envelope by its tag and appends it to
// the matching bucket. This is the target of the transport's on_message
// callback.
func (m *Mailbox) Dispatch(e wire.Envelope) error {
	b, ok := m.buckets[e.Tag]
	if !ok {
		return ErrUnknownTag
	}
	b.Append(e)
	return nil
}

// Bucket returns the named bucket. It panics for a tag outside
// wire.KnownTags, which would be a programmer error (every tag the core
// protocol logic touches is a compile-time constant).
func (m *Mailbox) Bucket(tag wire.Tag) *Bucket {
	b, ok := m.buckets[tag]
	if !ok {
		panic("mailbox: no bucket for tag " + string(tag))
	}
	return b
}
