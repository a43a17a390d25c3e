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

package amdc

import (
	"crypto/rand"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

func TestAMDC(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AMDC Suite")
}

var _ = Describe("AMDC", func() {
	Context("DeriveParams", func() {
		It("is a function of (beta, m) alone", func() {
			p1, err := DeriveParams(5, 64)
			Expect(err).Should(BeNil())
			p2, err := DeriveParams(5, 64)
			Expect(err).Should(BeNil())
			Expect(p1).Should(Equal(p2))
		})

		It("fails closed for an untabulated gamma", func() {
			_, err := DeriveParams(0, 0)
			// beta=0 degenerates d*(0+log2(d+1))>=0 immediately at d=1,
			// gamma=ceil(log2(2))=1, which is not in the table.
			Expect(err).Should(Equal(ErrUnknownGamma))
		})
	})

	Context("round-trip", func() {
		DescribeTable("Decode(Encode(m)) == (true, m)", func(beta uint, message string) {
			m := uint(len(message) * 8)
			codeword, err := Encode(rand.Reader, []byte(message), m, beta)
			Expect(err).Should(BeNil())

			ok, decoded, err := Decode(codeword, m, beta)
			Expect(err).Should(BeNil())
			Expect(ok).Should(BeTrue())
			Expect(string(decoded)).Should(Equal(message))
		},
			Entry("beta=3, short", uint(3), "Hi"),
			Entry("beta=5, 8 chars", uint(5), "Hello 2!"),
			Entry("beta=8, empty", uint(8), ""),
		)

		It("produces a codeword length that depends only on (beta, m)", func() {
			n, err := EncodedLength(5, 64)
			Expect(err).Should(BeNil())

			c1, err := Encode(rand.Reader, []byte("AAAAAAAA"), 64, 5)
			Expect(err).Should(BeNil())
			c2, err := Encode(rand.Reader, []byte("zzzzzzzz"), 64, 5)
			Expect(err).Should(BeNil())

			Expect(uint(len(c1) * 8)).Should(BeNumerically(">=", n))
			Expect(len(c1)).Should(Equal(len(c2)))
		})
	})

	Context("tamper detection", func() {
		It("flips ok to false with high probability when a bit is corrupted", func() {
			message := "Hello 2!"
			m := uint(len(message) * 8)
			beta := uint(5)
			failures := 0
			trials := 20
			for i := 0; i < trials; i++ {
				codeword, err := Encode(rand.Reader, []byte(message), m, beta)
				Expect(err).Should(BeNil())
				codeword[7] ^= 0x01 // flip a bit inside the padded-message region

				ok, _, err := Decode(codeword, m, beta)
				Expect(err).Should(BeNil())
				if ok {
					failures++
				}
			}
			// Expected false-negative rate is <= 2^-5 per trial; 20 trials
			// should essentially never let one slip through undetected.
			Expect(failures).Should(BeNumerically("<=", 1))
		})

		It("rejects a codeword of the wrong length", func() {
			_, _, err := Decode([]byte{0x00}, 64, 5)
			Expect(err).Should(Equal(ErrBadLength))
		})
	})
})
