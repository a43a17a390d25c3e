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

package mailbox

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/bt-protocols/anonbt/wire"
)

func TestMailbox(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Mailbox Suite")
}

var _ = Describe("Mailbox", func() {
	It("rejects an unknown tag", func() {
		m := New()
		err := m.Dispatch(wire.Envelope{From: "1", Tag: "bogus"})
		Expect(err).Should(Equal(ErrUnknownTag))
	})

	It("classifies by tag into independent buckets", func() {
		m := New()
		Expect(m.Dispatch(wire.BitMessage("1", wire.TagParitySharedKey, 1))).Should(Succeed())
		Expect(m.Dispatch(wire.FinishedMessage("1", wire.TagParityFinished))).Should(Succeed())
		Expect(m.Bucket(wire.TagParitySharedKey).Len()).Should(Equal(1))
		Expect(m.Bucket(wire.TagParityFinished).Len()).Should(Equal(1))
	})

	Context("WaitForSize", func() {
		It("returns immediately once the bucket already has n items", func() {
			b := newBucket()
			b.Append(wire.BitMessage("1", wire.TagParitySharedKey, 0))
			b.Append(wire.BitMessage("2", wire.TagParitySharedKey, 1))
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			got, err := b.WaitForSize(ctx, 2)
			Expect(err).Should(BeNil())
			Expect(got).Should(HaveLen(2))
		})

		It("unblocks as soon as the nth item arrives", func() {
			b := newBucket()
			done := make(chan []wire.Envelope, 1)
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				got, err := b.WaitForSize(ctx, 3)
				Expect(err).Should(BeNil())
				done <- got
			}()
			b.Append(wire.BitMessage("1", wire.TagParitySharedKey, 0))
			b.Append(wire.BitMessage("2", wire.TagParitySharedKey, 1))
			Consistently(done, 100*time.Millisecond).ShouldNot(Receive())
			b.Append(wire.BitMessage("3", wire.TagParitySharedKey, 1))
			Eventually(done, time.Second).Should(Receive(HaveLen(3)))
		})

		It("respects context cancellation", func() {
			b := newBucket()
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := b.WaitForSize(ctx, 1)
			Expect(err).Should(Equal(context.Canceled))
		})

		It("is cleared between rounds", func() {
			b := newBucket()
			b.Append(wire.BitMessage("1", wire.TagParitySharedKey, 1))
			b.Clear()
			Expect(b.Len()).Should(Equal(0))
		})
	})
})
