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

package party

import "errors"

var (
	// ErrDuplicateID is returned by Handshake when two participants
	// report the same node_id; the protocol is unsound with duplicate
	// ids, so this is fatal.
	ErrDuplicateID = errors.New("party: duplicate node id during handshake")
	// ErrTransportClosed surfaces a transport-layer failure as the
	// abort of whatever round was in flight.
	ErrTransportClosed = errors.New("party: transport closed")
)
