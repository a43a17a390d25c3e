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

package party

import (
	"io"

	"github.com/getamis/sirius/log"
)

// defaultMessageBits is the reference message length: 64 bits, 8 ASCII
// characters, per the configuration surface's default.
const defaultMessageBits = 64

// Option configures a Party at construction time, in the style of
// libp2p.Option (github.com/libp2p/go-libp2p-core), one of this
// module's own dependencies.
type Option func(*Party)

// WithRNG overrides the source of randomness used for share sampling,
// AMDC key material, and veto coin flips. Defaults to crypto/rand.
func WithRNG(rng io.Reader) Option {
	return func(p *Party) {
		p.rng = rng
	}
}

// WithMessageBits sets the fixed message length, in bits, that
// ExecuteFixedTransmission and ExecuteMessageTransmission operate over.
// Defaults to 64.
func WithMessageBits(bits uint) Option {
	return func(p *Party) {
		p.messageBits = bits
	}
}

// WithLogger overrides the Party's logger. Defaults to the
// process-wide logger.Logger().
func WithLogger(l log.Logger) Option {
	return func(p *Party) {
		p.logger = l.New("id", p.id)
	}
}
