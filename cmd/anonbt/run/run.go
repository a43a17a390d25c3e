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

// Package run implements the "anonbt run" subcommand: read a node's
// YAML config, bring up its libp2p host, connect to its static peer
// set, and drive one ExecuteMessageTransmission.
package run

import (
	"context"
	"time"

	"github.com/getamis/sirius/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bt-protocols/anonbt/config"
	"github.com/bt-protocols/anonbt/logger"
	"github.com/bt-protocols/anonbt/party"
	"github.com/bt-protocols/anonbt/transport/libp2pnet"
)

var configFile string

// Cmd is the "anonbt run" subcommand.
var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single anonymous transmission round",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		configFile = viper.GetString("config")
		notify := viper.GetString("notify")
		message := viper.GetString("message")

		logger.SetLogger(log.New("cmd", "anonbt"))

		c, err := config.ReadFile(configFile)
		if err != nil {
			log.Crit("Failed to read config file", "configFile", configFile, "err", err)
		}

		host, err := libp2pnet.MakeHost(c.Port)
		if err != nil {
			log.Crit("Failed to create a libp2p host", "err", err)
		}

		pm := libp2pnet.New(c.NodeID, host, nil)
		for _, peer := range c.Peers {
			pm.AddPeer(peer.ID, peer.Addr)
		}

		pt, err := party.New(pm, c.Security, party.WithMessageBits(c.MessageLength))
		if err != nil {
			log.Crit("Failed to construct party", "err", err)
		}
		pm.SetReceiver(pt)

		host.SetStreamHandler(libp2pnet.Protocol, pm.HandleStream)

		pm.EnsureAllConnected()

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := pt.Handshake(ctx); err != nil {
			log.Crit("Handshake failed", "err", err)
		}

		result, err := pt.ExecuteMessageTransmission(ctx, notify, []byte(message))
		if err != nil {
			log.Crit("Transmission failed", "err", err)
		}
		log.Info("Transmission complete", "aborted", result.Aborted, "notified", result.Notification.Notified)
		return nil
	},
}

func init() {
	Cmd.Flags().String("config", "", "node config file path")
	Cmd.Flags().String("notify", "", "node id to notify as the anonymous recipient, empty if not sending")
	Cmd.Flags().String("message", "", "message to send, only meaningful when --notify is set")
}
