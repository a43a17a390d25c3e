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

// Package amdc implements the Algebraic Manipulation Detection Code: a
// polynomial-evaluation MAC over GF(2)[x], keyed by a disclosed random
// element theta, appended to a message so tampering is caught with
// probability at least 1-2^(-beta).
package amdc

import (
	"errors"
	"io"
	"math"

	"github.com/bt-protocols/anonbt/gf2"
)

var (
	// ErrUnknownGamma is returned when no irreducible polynomial is
	// tabulated for the gamma derived from (beta, m).
	ErrUnknownGamma = errors.New("amdc: no irreducible polynomial tabulated for this gamma")
	// ErrBadLength is returned when an encoded codeword's length does not
	// match d*gamma + 2*gamma for the governing (beta, m).
	ErrBadLength = errors.New("amdc: encoded length does not match the governing (beta, m)")

	// maxD bounds the search for the smallest odd d; in practice d is
	// small (at most 11 for m=64 and beta >= 3).
	maxD = uint(8191)
)

// Params holds the derived AMDC parameters for a given (beta, m).
type Params struct {
	D     uint
	Gamma uint
	B     *gf2.Polynomial
}

// EncodedBits is the bit length of a codeword produced under p.
func (p Params) EncodedBits() uint {
	return p.D*p.Gamma + 2*p.Gamma
}

// DeriveParams finds the smallest odd d >= 1 with d*(beta+log2(d+1)) >= m,
// and the corresponding gamma = ceil(beta+log2(d+1)), looking up the
// matching irreducible polynomial in the compiled table.
func DeriveParams(beta, m uint) (Params, error) {
	for d := uint(1); d <= maxD; d += 2 {
		width := float64(beta) + math.Log2(float64(d+1))
		if float64(d)*width >= float64(m) {
			gamma := uint(math.Ceil(width))
			b, ok := irreduciblePolynomials[gamma]
			if !ok {
				return Params{}, ErrUnknownGamma
			}
			return Params{D: d, Gamma: gamma, B: b}, nil
		}
	}
	return Params{}, ErrUnknownGamma
}

// EncodedLength returns the codeword length, in bits, for (beta, m).
func EncodedLength(beta, m uint) (uint, error) {
	p, err := DeriveParams(beta, m)
	if err != nil {
		return 0, err
	}
	return p.EncodedBits(), nil
}

// splitBlocks carves a d*gamma-bit padded message into d gamma-bit
// polynomials u_1..u_d (returned 0-indexed).
func splitBlocks(paddedFull []byte, d, gamma uint) []*gf2.Polynomial {
	blocks := make([]*gf2.Polynomial, d)
	for i := uint(0); i < d; i++ {
		bits := extractBits(paddedFull, int(i*gamma), int(gamma))
		blocks[i] = gf2.FromBytesMSB(bits, int(gamma))
	}
	return blocks
}

// authTag computes f(x) = theta^(d+2) + sum_{i=1}^{d} u_i * theta^i mod b(x).
func authTag(theta *gf2.Polynomial, blocks []*gf2.Polynomial, p Params) (*gf2.Polynomial, error) {
	f := theta.Exp(uint(p.D) + 2)
	for i, u := range blocks {
		f = f.Add(u.Mul(theta.Exp(uint(i) + 1)))
	}
	return f.Mod(p.B)
}

// Encode produces an AMDC codeword for message (its first m bits are
// significant, zero-padded afterwards) under security parameter beta. The
// resulting codeword always has EncodedLength(beta, m) bits regardless of
// message contents, so its length alone reveals nothing about the
// plaintext beyond (beta, m), both of which are public.
func Encode(rng io.Reader, message []byte, m, beta uint) ([]byte, error) {
	params, err := DeriveParams(beta, m)
	if err != nil {
		return nil, err
	}
	d, gamma := params.D, params.Gamma

	theta, err := gf2.Random(rng, int(gamma))
	if err != nil {
		return nil, err
	}

	paddedFull := zeroPadTo(message, m, d*gamma)
	blocks := splitBlocks(paddedFull, d, gamma)
	tau, err := authTag(theta, blocks, params)
	if err != nil {
		return nil, err
	}

	out := make([]byte, bitsFor(int(params.EncodedBits())))
	writeBits(out, 0, paddedFull, int(d*gamma))
	writeBits(out, int(d*gamma), theta.BytesMSB(int(gamma)), int(gamma))
	writeBits(out, int(d*gamma+gamma), tau.BytesMSB(int(gamma)), int(gamma))
	return out, nil
}

// Decode recomputes the authentication tag over an AMDC codeword and
// compares it against the transmitted one. It always returns the decoded
// m-bit message (even when ok is false); tamper detection is a protocol
// result here, not an error.
func Decode(encoded []byte, m, beta uint) (ok bool, message []byte, err error) {
	params, err := DeriveParams(beta, m)
	if err != nil {
		return false, nil, err
	}
	d, gamma := params.D, params.Gamma

	if len(encoded) != bitsFor(int(params.EncodedBits())) {
		return false, nil, ErrBadLength
	}

	paddedFull := extractBits(encoded, 0, int(d*gamma))
	theta := gf2.FromBytesMSB(extractBits(encoded, int(d*gamma), int(gamma)), int(gamma))
	tauRecv := gf2.FromBytesMSB(extractBits(encoded, int(d*gamma+gamma), int(gamma)), int(gamma))

	blocks := splitBlocks(paddedFull, d, gamma)
	tauCalc, err := authTag(theta, blocks, params)
	if err != nil {
		return false, nil, err
	}

	message = extractBits(paddedFull, 0, int(m))
	return tauCalc.Equal(tauRecv), message, nil
}
