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

// Package gf2 implements polynomial arithmetic over the two-element field
// GF(2). Coefficients are represented as a single big.Int where bit i holds
// the coefficient of x^i; big.Int keeps a small-degree polynomial in a
// single machine word and grows transparently for large degrees, covering
// both regimes without needing two separate code paths. Every operation
// returns a freshly allocated Polynomial.
package gf2

import (
	"errors"
	"io"
	"math/big"
)

var (
	// ErrNilDivisor is returned by DivMod if the divisor is the zero polynomial.
	ErrNilDivisor = errors.New("gf2: division by the zero polynomial")
)

// Polynomial is an element of GF(2)[x]. The zero value is the zero polynomial.
type Polynomial struct {
	bits *big.Int
}

// Zero returns the zero polynomial.
func Zero() *Polynomial {
	return &Polynomial{bits: new(big.Int)}
}

// One returns the constant polynomial 1.
func One() *Polynomial {
	return &Polynomial{bits: big.NewInt(1)}
}

// FromBytesMSB builds a polynomial from a byte slice interpreted as bitLen
// coefficients, most-significant bit first: bit 0 of the slice is the
// coefficient of x^(bitLen-1).
func FromBytesMSB(b []byte, bitLen int) *Polynomial {
	v := new(big.Int).SetBytes(b)
	// SetBytes treats b as MSB-first, big-endian; the bitLen coefficients
	// occupy the top of the slice, so the slack low bits of the last byte
	// are shifted out before masking.
	if slack := len(b)*8 - bitLen; slack > 0 {
		v.Rsh(v, uint(slack))
	}
	mask := new(big.Int).Lsh(big.NewInt(1), uint(bitLen))
	mask.Sub(mask, big.NewInt(1))
	v.And(v, mask)
	return &Polynomial{bits: v}
}

// FromUint64 builds a polynomial whose coefficients are the bits of v.
func FromUint64(v uint64) *Polynomial {
	return &Polynomial{bits: new(big.Int).SetUint64(v)}
}

// Term returns the monomial x^degree. Unlike FromUint64, degree is not
// bounded by the machine word size, which matters for the AMDC table's
// degree-64 entry.
func Term(degree uint) *Polynomial {
	return &Polynomial{bits: new(big.Int).Lsh(big.NewInt(1), degree)}
}

// BytesMSB renders the polynomial as exactly bitLen coefficients,
// most-significant bit first starting at bit 0 of the slice (the layout
// FromBytesMSB reads), left-padding with zero coefficients as needed;
// slack bits at the end of the last byte are zero. It panics if the polynomial's degree is >= bitLen, enforcing
// the "left-pad-shorter" convention used throughout before XOR/addition.
func (p *Polynomial) BytesMSB(bitLen int) []byte {
	if p.Degree() >= bitLen {
		panic("gf2: BytesMSB: polynomial does not fit in bitLen bits")
	}
	byteLen := (bitLen + 7) / 8
	out := make([]byte, byteLen)
	raw := new(big.Int).Lsh(p.bits, uint(byteLen*8-bitLen)).Bytes()
	copy(out[byteLen-len(raw):], raw)
	return out
}

// Degree returns the degree of p, or -1 for the zero polynomial.
func (p *Polynomial) Degree() int {
	if p == nil || p.bits.Sign() == 0 {
		return -1
	}
	return p.bits.BitLen() - 1
}

// Bit returns the coefficient of x^i, 0 or 1.
func (p *Polynomial) Bit(i int) uint {
	if p == nil || i < 0 {
		return 0
	}
	return p.bits.Bit(i)
}

// IsZero reports whether p is the zero polynomial.
func (p *Polynomial) IsZero() bool {
	return p == nil || p.bits.Sign() == 0
}

// Equal reports whether p and q represent the same polynomial.
func (p *Polynomial) Equal(q *Polynomial) bool {
	return p.bits.Cmp(q.bits) == 0
}

// Add returns p+q, which in characteristic 2 is XOR of the coefficient
// vectors (so it also serves as subtraction).
func (p *Polynomial) Add(q *Polynomial) *Polynomial {
	return &Polynomial{bits: new(big.Int).Xor(p.bits, q.bits)}
}

// Mul returns the carryless (GF(2)) product of p and q.
func (p *Polynomial) Mul(q *Polynomial) *Polynomial {
	result := new(big.Int)
	shifted := new(big.Int).Set(q.bits)
	tmp := new(big.Int)
	for i := 0; i <= p.Degree(); i++ {
		if p.bits.Bit(i) == 1 {
			result.Xor(result, tmp.Lsh(shifted, uint(i)))
		}
	}
	return &Polynomial{bits: result}
}

// Exp returns p raised to the non-negative integer power n, via repeated
// squaring.
func (p *Polynomial) Exp(n uint) *Polynomial {
	result := One()
	base := p
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return result
}

// DivMod performs schoolbook shift-and-XOR Euclidean division, returning
// (quotient, remainder) such that p = quotient*d + remainder and
// deg(remainder) < deg(d). It is total except for division by zero.
func (p *Polynomial) DivMod(d *Polynomial) (quotient, remainder *Polynomial, err error) {
	if d.IsZero() {
		return nil, nil, ErrNilDivisor
	}
	remainder = &Polynomial{bits: new(big.Int).Set(p.bits)}
	dDeg := d.Degree()
	q := new(big.Int)
	for remainder.Degree() >= dDeg {
		shift := uint(remainder.Degree() - dDeg)
		shiftedDivisor := new(big.Int).Lsh(d.bits, shift)
		remainder.bits.Xor(remainder.bits, shiftedDivisor)
		q.SetBit(q, int(shift), 1)
	}
	return &Polynomial{bits: q}, remainder, nil
}

// Mod is a convenience wrapper around DivMod returning only the remainder.
func (p *Polynomial) Mod(d *Polynomial) (*Polynomial, error) {
	_, r, err := p.DivMod(d)
	return r, err
}

// String renders p in sparse x^i + x^j + ... form, highest degree first.
func (p *Polynomial) String() string {
	if p.IsZero() {
		return "0"
	}
	s := ""
	for i := p.Degree(); i >= 0; i-- {
		if p.bits.Bit(i) == 0 {
			continue
		}
		if s != "" {
			s += " + "
		}
		switch i {
		case 0:
			s += "1"
		case 1:
			s += "x"
		default:
			s += "x^" + big.NewInt(int64(i)).String()
		}
	}
	return s
}

// Random draws a uniformly random polynomial of exactly bitLen coefficients
// (i.e. 0 <= degree < bitLen) from rng.
func Random(rng io.Reader, bitLen int) (*Polynomial, error) {
	byteLen := (bitLen + 7) / 8
	buf := make([]byte, byteLen)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, err
	}
	return FromBytesMSB(buf, bitLen), nil
}
