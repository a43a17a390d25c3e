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

// Package libp2pnet is a real point-to-point transport.PeerManager over
// github.com/libp2p/go-libp2p, framing every stream with CBOR envelopes
// (package wire) rather than protobuf, since nothing in this repo has a
// .proto source to compile.
package libp2pnet

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p-core/crypto"
	"github.com/libp2p/go-libp2p-core/host"
	"github.com/libp2p/go-libp2p-core/peer"
	"github.com/multiformats/go-multiaddr"
)

// MakeHost creates a libp2p host listening on 127.0.0.1:port, with a
// deterministic identity derived from port (fine for a closed set of
// known participants dialing each other by pre-shared address; not
// meant to resist identity spoofing by an outside attacker).
func MakeHost(port int64) (host.Host, error) {
	addr, err := multiaddr.NewMultiaddr(fmt.Sprintf("/ip4/127.0.0.1/tcp/%d", port))
	if err != nil {
		return nil, err
	}

	priv, err := generateIdentity(port)
	if err != nil {
		return nil, err
	}

	return libp2p.New(
		libp2p.ListenAddrs(addr),
		libp2p.Identity(priv),
	)
}

// PeerAddr computes the full dialable multiaddr (including the /p2p/
// peer ID suffix) for a host that MakeHost(port) would create.
func PeerAddr(port int64) (string, error) {
	priv, err := generateIdentity(port)
	if err != nil {
		return "", err
	}
	pid, err := peer.IDFromPrivateKey(priv)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/ip4/127.0.0.1/tcp/%d/p2p/%s", port, pid), nil
}

func generateIdentity(port int64) (crypto.PrivKey, error) {
	r := rand.New(rand.NewSource(port))
	priv, _, err := crypto.GenerateKeyPairWithReader(crypto.Ed25519, 256, r)
	return priv, err
}

func connect(ctx context.Context, h host.Host, target string) error {
	maddr, err := multiaddr.NewMultiaddr(target)
	if err != nil {
		return err
	}
	info, err := peer.AddrInfoFromP2pAddr(maddr)
	if err != nil {
		return err
	}
	return h.Connect(ctx, *info)
}
