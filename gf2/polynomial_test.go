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

package gf2

import (
	"bytes"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

func TestGF2(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "GF2 Polynomial Suite")
}

var _ = Describe("Polynomial", func() {
	Context("Add", func() {
		DescribeTable("is XOR of coefficients", func(a, b, expected uint64) {
			got := FromUint64(a).Add(FromUint64(b))
			Expect(got.Equal(FromUint64(expected))).Should(BeTrue())
		},
			Entry("1^2", uint64(1), uint64(2), uint64(3)),
			Entry("self-inverse", uint64(7), uint64(7), uint64(0)),
		)
	})

	Context("Mul and Exp", func() {
		It("computes carryless multiplication", func() {
			// x * x = x^2
			x := FromUint64(2)
			got := x.Mul(x)
			Expect(got.Equal(FromUint64(4))).Should(BeTrue())
		})

		It("agrees with repeated multiplication for Exp", func() {
			x := FromUint64(0b11) // x+1
			exp3 := x.Exp(3)
			manual := x.Mul(x).Mul(x)
			Expect(exp3.Equal(manual)).Should(BeTrue())
		})

		It("treats Exp(0) as the multiplicative identity", func() {
			x := FromUint64(0b101)
			Expect(x.Exp(0).Equal(One())).Should(BeTrue())
		})
	})

	Context("DivMod", func() {
		It("satisfies p = q*d + r with deg(r) < deg(d)", func() {
			p := FromUint64(0b110101)
			d := FromUint64(0b1011)
			q, r, err := p.DivMod(d)
			Expect(err).Should(BeNil())
			Expect(r.Degree()).Should(BeNumerically("<", d.Degree()))
			reconstructed := q.Mul(d).Add(r)
			Expect(reconstructed.Equal(p)).Should(BeTrue())
		})

		It("rejects division by the zero polynomial", func() {
			_, _, err := FromUint64(5).DivMod(Zero())
			Expect(err).Should(Equal(ErrNilDivisor))
		})
	})

	Context("MSB byte round-trip", func() {
		It("round-trips through BytesMSB/FromBytesMSB", func() {
			p := FromUint64(0b10110)
			bitLen := 8
			b := p.BytesMSB(bitLen)
			got := FromBytesMSB(b, bitLen)
			Expect(got.Equal(p)).Should(BeTrue())
		})

		It("left-pads shorter polynomials with zero coefficients", func() {
			p := FromUint64(1)
			b := p.BytesMSB(16)
			Expect(bytes.Equal(b, []byte{0x00, 0x01})).Should(BeTrue())
		})
	})

	Context("Random", func() {
		It("returns a polynomial confined to the requested bit length", func() {
			rng := bytes.NewReader(bytes.Repeat([]byte{0xFF}, 32))
			p, err := Random(rng, 13)
			Expect(err).Should(BeNil())
			Expect(p.Degree()).Should(BeNumerically("<", 13))
		})
	})
})
