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

// Package config is the YAML configuration surface a cmd/anonbt node
// reads at startup.
package config

import (
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// Peer is one entry of a node's static peer list.
type Peer struct {
	ID   string `yaml:"id"`
	Addr string `yaml:"addr"`
}

// Config is the full configuration surface a node needs: security,
// message length, connection cap, and the static peer set a
// libp2pnet.PeerManager dials.
type Config struct {
	NodeID         string `yaml:"node_id"`
	Port           int64  `yaml:"port"`
	Security       uint   `yaml:"security"`
	MessageLength  uint   `yaml:"message_length"`
	MaxConnections int    `yaml:"max_connections"`
	Peers          []Peer `yaml:"peers"`
}

// ReadFile loads and parses a YAML config file.
func ReadFile(path string) (*Config, error) {
	c := &Config{}
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, err
	}
	return c, nil
}
