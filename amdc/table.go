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

import "github.com/bt-protocols/anonbt/gf2"

// irreducibleTaps lists, for each supported degree gamma, the exponents of
// the nonzero terms of a fixed irreducible (in fact primitive) polynomial
// of that degree over GF(2), taken from the standard low-weight
// maximal-length-LFSR tap tables (e.g. Xilinx XAPP 052). gamma itself and 0
// are always members and are omitted here for brevity; buildTable adds
// them back in.
var irreducibleTaps = map[uint][]uint{
	2:  {1},
	3:  {1},
	4:  {1},
	5:  {2},
	6:  {1},
	7:  {1},
	8:  {6, 5, 4},
	9:  {4},
	10: {3},
	11: {2},
	12: {6, 4, 1},
	13: {4, 3, 1},
	14: {5, 3, 1},
	15: {1},
	16: {12, 3, 1},
	17: {3},
	18: {7},
	19: {5, 2, 1},
	20: {3},
	21: {2},
	22: {1},
	23: {5},
	24: {7, 2, 1},
	25: {3},
	26: {6, 2, 1},
	27: {5, 2, 1},
	28: {3},
	29: {2},
	30: {6, 4, 1},
	31: {3},
	32: {7, 5, 3, 2, 1},
	33: {13},
	34: {8, 4, 3},
	35: {2},
	36: {11},
	37: {6, 4, 1},
	38: {6, 5, 1},
	39: {4},
	40: {5, 4, 3},
	41: {3},
	42: {41, 20, 19},
	43: {6, 4, 3},
	44: {6, 5, 2},
	45: {4, 3, 1},
	46: {8, 7, 6},
	47: {5},
	48: {47, 21, 20},
	49: {9},
	50: {4, 3, 2},
	51: {6, 3, 1},
	52: {3},
	53: {6, 2, 1},
	54: {8, 6, 3},
	55: {6, 2, 1},
	56: {7, 4, 2},
	57: {5, 3, 2},
	58: {19},
	59: {7, 4, 2},
	60: {1},
	61: {5, 2, 1},
	62: {6, 5, 3},
	63: {1},
	64: {4, 3, 1},
}

// irreduciblePolynomials is the compiled gamma -> b(x) table that
// amdc.Encode/Decode look up. A missing entry is ErrUnknownGamma.
var irreduciblePolynomials = buildTable()

func buildTable() map[uint]*gf2.Polynomial {
	table := make(map[uint]*gf2.Polynomial, len(irreducibleTaps))
	for gamma, taps := range irreducibleTaps {
		p := gf2.Term(gamma)
		for _, t := range taps {
			p = p.Add(gf2.Term(t))
		}
		p = p.Add(gf2.One())
		table[gamma] = p
	}
	return table
}
