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

package libp2pnet

import (
	"context"
	"io/ioutil"
	"sort"
	"sync"
	"time"

	"github.com/getamis/sirius/log"
	"github.com/libp2p/go-libp2p-core/helpers"
	"github.com/libp2p/go-libp2p-core/host"
	"github.com/libp2p/go-libp2p-core/network"
	"github.com/libp2p/go-libp2p-core/peer"
	"github.com/libp2p/go-libp2p-core/protocol"
	"github.com/multiformats/go-multiaddr"

	"github.com/bt-protocols/anonbt/transport"
	"github.com/bt-protocols/anonbt/wire"
)

// Protocol is the libp2p protocol ID this package's streams speak.
const Protocol protocol.ID = "/anonbt/1.0.0"

// PeerManager is a transport.PeerManager backed by a libp2p host. It
// sends by opening a fresh stream per envelope and half-closing it after
// the write, and receives via a stream handler registered by the caller
// with SetStreamHandler(Protocol, pm.HandleStream).
type PeerManager struct {
	id    string
	host  host.Host
	peers map[string]string // peer ID -> dialable multiaddr
	recv  transport.Receiver
}

var _ transport.PeerManager = (*PeerManager)(nil)

// New creates a PeerManager. recv is fed every envelope read off an
// inbound stream.
func New(id string, h host.Host, recv transport.Receiver) *PeerManager {
	return &PeerManager{
		id:    id,
		host:  h,
		peers: make(map[string]string),
		recv:  recv,
	}
}

// AddPeer registers a peer's dialable multiaddr.
func (p *PeerManager) AddPeer(peerID, addr string) {
	p.peers[peerID] = addr
}

// SetReceiver attaches the dispatch target for inbound streams. Useful
// when the Receiver (typically a *party.Party) cannot be constructed
// until after its PeerManager exists; set it before registering
// HandleStream with the host, and before any peer can reach this node.
func (p *PeerManager) SetReceiver(recv transport.Receiver) {
	p.recv = recv
}

func (p *PeerManager) SelfID() string { return p.id }

func (p *PeerManager) NumPeers() uint32 { return uint32(len(p.peers)) }

func (p *PeerManager) PeerIDs() []string {
	ids := make([]string, 0, len(p.peers))
	for id := range p.peers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *PeerManager) Broadcast(env wire.Envelope) {
	for _, id := range p.PeerIDs() {
		p.SendTo(id, env)
	}
}

func (p *PeerManager) SendTo(id string, env wire.Envelope) {
	addr, ok := p.peers[id]
	if !ok {
		log.Warn("libp2pnet: send to unknown peer", "to", id, "tag", env.Tag)
		return
	}
	if err := p.send(context.Background(), addr, env); err != nil {
		log.Warn("libp2pnet: send failed", "to", id, "tag", env.Tag, "err", err)
	}
}

func (p *PeerManager) send(ctx context.Context, target string, env wire.Envelope) error {
	maddr, err := multiaddr.NewMultiaddr(target)
	if err != nil {
		log.Warn("libp2pnet: cannot parse target address", "target", target, "err", err)
		return err
	}
	info, err := peer.AddrInfoFromP2pAddr(maddr)
	if err != nil {
		log.Warn("libp2pnet: cannot parse addr", "addr", maddr, "err", err)
		return err
	}

	s, err := p.host.NewStream(ctx, info.ID, Protocol)
	if err != nil {
		log.Warn("libp2pnet: cannot create a new stream", "from", p.host.ID(), "to", target, "err", err)
		return err
	}

	bs, err := wire.Encode(env)
	if err != nil {
		log.Warn("libp2pnet: cannot encode envelope", "err", err)
		return err
	}

	if _, err := s.Write(bs); err != nil {
		log.Warn("libp2pnet: cannot write message to stream", "err", err)
		return err
	}
	if err := helpers.FullClose(s); err != nil {
		log.Warn("libp2pnet: cannot close the stream", "err", err)
		return err
	}

	log.Debug("libp2pnet: sent envelope", "peer", target, "tag", env.Tag)
	return nil
}

// HandleStream reads one CBOR-encoded envelope off s and dispatches it.
// Register with host.SetStreamHandler(Protocol, pm.HandleStream).
func (p *PeerManager) HandleStream(s network.Stream) {
	buf, err := ioutil.ReadAll(s)
	if err != nil {
		log.Warn("libp2pnet: cannot read data from stream", "err", err)
		return
	}
	s.Close()

	env, err := wire.Decode(buf)
	if err != nil {
		log.Warn("libp2pnet: cannot decode envelope", "err", err)
		return
	}

	log.Debug("libp2pnet: received envelope", "from", env.From, "tag", env.Tag)
	if err := p.recv.Dispatch(env); err != nil {
		log.Warn("libp2pnet: dispatch failed", "tag", env.Tag, "err", err)
	}
}

// EnsureAllConnected dials every registered peer, retrying with a fixed
// backoff until each connection succeeds.
func (p *PeerManager) EnsureAllConnected() {
	var wg sync.WaitGroup
	for _, addr := range p.peers {
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			logger := log.New("to", addr)
			for {
				if err := connect(context.Background(), p.host, addr); err != nil {
					logger.Warn("libp2pnet: failed to connect to peer", "err", err)
					time.Sleep(3 * time.Second)
					continue
				}
				logger.Debug("libp2pnet: successfully connected to peer")
				return
			}
		}(addr)
	}
	wg.Wait()
}
