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

package party_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/bt-protocols/anonbt/party"
	"github.com/bt-protocols/anonbt/protocol/collision"
	"github.com/bt-protocols/anonbt/protocol/transmit"
	"github.com/bt-protocols/anonbt/transport/local"
)

func TestParty(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Party Suite")
}

// buildGroup wires a local.Network of len(ids) parties and runs the
// handshake on all of them concurrently, returning a ready-to-drive
// map keyed by node id.
func buildGroup(ids []string, security uint) map[string]*party.Party {
	net := local.NewNetwork()
	parties := make(map[string]*party.Party, len(ids))
	for _, id := range ids {
		pm := net.Reserve(id)
		p, err := party.New(pm, security, party.WithRNG(rand.Reader))
		Expect(err).Should(BeNil())
		parties[id] = p
		net.Bind(id, p)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			Expect(parties[id].Handshake(ctx)).Should(Succeed())
		}(id)
	}
	wg.Wait()
	return parties
}

// runAllVeto drives ExecuteVeto concurrently for every party in the group
// and returns each party's result keyed by id, panicking the test on the
// first error via Gomega's synchronized assertions run in-goroutine.
func runAllVeto(parties map[string]*party.Party, inputs map[string]uint8) map[string]uint8 {
	results := make(map[string]uint8, len(parties))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for id, p := range parties {
		wg.Add(1)
		go func(id string, p *party.Party) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			r, err := p.ExecuteVeto(ctx, inputs[id])
			Expect(err).Should(BeNil())
			mu.Lock()
			results[id] = r
			mu.Unlock()
		}(id, p)
	}
	wg.Wait()
	return results
}

func runAllCollision(parties map[string]*party.Party, inputs map[string]uint8) map[string]collision.Result {
	results := make(map[string]collision.Result, len(parties))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for id, p := range parties {
		wg.Add(1)
		go func(id string, p *party.Party) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			r, err := p.ExecuteCollisionDetection(ctx, inputs[id])
			Expect(err).Should(BeNil())
			mu.Lock()
			results[id] = r
			mu.Unlock()
		}(id, p)
	}
	wg.Wait()
	return results
}

// entriesForEachSingleton builds one ginkgo Entry per index into ids,
// labeled with the sender's node id.
func entriesForEachSingleton(ids []string) []TableEntry {
	entries := make([]TableEntry, len(ids))
	for i, id := range ids {
		entries[i] = Entry("sender="+id, i)
	}
	return entries
}

// entriesForCombinations enumerates every k-subset of indices into ids
// (via gonum's combin.Combinations) and builds one ginkgo Entry per
// subset, rather than hand-listing every pairing by hand.
func entriesForCombinations(ids []string, k int) []TableEntry {
	subsets := combin.Combinations(len(ids), k)
	entries := make([]TableEntry, len(subsets))
	for i, subset := range subsets {
		labels := make([]string, len(subset))
		for j, idx := range subset {
			labels[j] = ids[idx]
		}
		entries[i] = Entry(fmt.Sprintf("senders=%v", labels), subset)
	}
	return entries
}

var _ = Describe("Party", func() {
	Context("veto", func() {
		It("S1: two nodes, both input 0, result 0 at both", func() {
			parties := buildGroup([]string{"1", "2"}, 3)
			results := runAllVeto(parties, map[string]uint8{"1": 0, "2": 0})
			Expect(results["1"]).Should(Equal(uint8(0)))
			Expect(results["2"]).Should(Equal(uint8(0)))
		})

		It("S2: three nodes, one vetoes, result 1 at all", func() {
			parties := buildGroup([]string{"1", "2", "3"}, 3)
			results := runAllVeto(parties, map[string]uint8{"1": 0, "2": 1, "3": 0})
			Expect(results["1"]).Should(Equal(uint8(1)))
			Expect(results["2"]).Should(Equal(uint8(1)))
			Expect(results["3"]).Should(Equal(uint8(1)))
		})
	})

	Context("collision detection", func() {
		It("S3: no sender, result 0 at all", func() {
			parties := buildGroup([]string{"1", "2", "3"}, 3)
			results := runAllCollision(parties, map[string]uint8{"1": 0, "2": 0, "3": 0})
			for _, r := range results {
				Expect(r).Should(Equal(collision.NoSender))
			}
		})

		It("S4: exactly one sender, result 1 at all", func() {
			parties := buildGroup([]string{"1", "2", "3"}, 3)
			results := runAllCollision(parties, map[string]uint8{"1": 1, "2": 0, "3": 0})
			for _, r := range results {
				Expect(r).Should(Equal(collision.OneSender))
			}
		})

		It("classifies two simultaneous senders as a collision", func() {
			parties := buildGroup([]string{"1", "2", "3"}, 3)
			results := runAllCollision(parties, map[string]uint8{"1": 1, "2": 1, "3": 0})
			for _, r := range results {
				Expect(r).Should(Equal(collision.Collision))
			}
		})

		ids := []string{"1", "2", "3", "4"}

		DescribeTable("exactly one sender, at every position",
			func(senderIdx int) {
				parties := buildGroup(ids, 3)
				inputs := make(map[string]uint8, len(ids))
				for i, id := range ids {
					if i == senderIdx {
						inputs[id] = 1
					} else {
						inputs[id] = 0
					}
				}
				results := runAllCollision(parties, inputs)
				for _, r := range results {
					Expect(r).Should(Equal(collision.OneSender))
				}
			},
			entriesForEachSingleton(ids)...,
		)

		DescribeTable("every pair of simultaneous senders is a collision",
			func(senderIdxs []int) {
				parties := buildGroup(ids, 3)
				inputs := make(map[string]uint8, len(ids))
				for _, id := range ids {
					inputs[id] = 0
				}
				for _, idx := range senderIdxs {
					inputs[ids[idx]] = 1
				}
				results := runAllCollision(parties, inputs)
				for _, r := range results {
					Expect(r).Should(Equal(collision.Collision))
				}
			},
			entriesForCombinations(ids, 2)...,
		)
	})

	Context("notification", func() {
		It("S5: the chosen recipient observes 1, nobody else does", func() {
			parties := buildGroup([]string{"1", "2", "3"}, 3)
			results := make(map[string]bool, 3)
			var mu sync.Mutex
			var wg sync.WaitGroup
			targets := map[string]string{"1": "2", "2": "", "3": ""}
			for id, p := range parties {
				wg.Add(1)
				go func(id string, p *party.Party) {
					defer wg.Done()
					ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer cancel()
					r, err := p.ExecuteNotification(ctx, targets[id])
					Expect(err).Should(BeNil())
					mu.Lock()
					results[id] = r.Notified
					mu.Unlock()
				}(id, p)
			}
			wg.Wait()
			Expect(results["2"]).Should(BeTrue())
			Expect(results["1"]).Should(BeFalse())
			Expect(results["3"]).Should(BeFalse())
		})
	})

	Context("full anonymous transmission", func() {
		It("S7: the receiver reconstructs the message, the third party does not", func() {
			parties := buildGroup([]string{"1", "2", "3"}, 5)
			message := []byte("Hello 2!")

			type outcome struct {
				result transmit.Result
			}
			results := make(map[string]outcome, 3)
			var mu sync.Mutex
			var wg sync.WaitGroup
			notifyTargets := map[string]string{"1": "2", "2": "", "3": ""}
			for id, p := range parties {
				wg.Add(1)
				go func(id string, p *party.Party) {
					defer wg.Done()
					ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
					defer cancel()
					r, err := p.ExecuteMessageTransmission(ctx, notifyTargets[id], message)
					Expect(err).Should(BeNil())
					Expect(r.Aborted).Should(BeFalse())
					mu.Lock()
					results[id] = outcome{result: r.Transmission}
					mu.Unlock()
				}(id, p)
			}
			wg.Wait()

			Expect(results["2"].result.OK).Should(BeTrue())
			Expect(string(results["2"].result.Message)).Should(Equal("Hello 2!"))
			Expect(results["3"].result.Message).Should(BeNil())
			Expect(results["1"].result.Tampered).Should(BeFalse())
			Expect(results["2"].result.Tampered).Should(BeFalse())
			Expect(results["3"].result.Tampered).Should(BeFalse())
		})
	})
})
