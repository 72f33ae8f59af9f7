// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package text

import "math"

/*
Aho–Corasick automaton over rune keys with leftmost-first resolution.

- buildAutomaton(patterns) builds a trie with failure links and propagated outputs.
- scan(keys, check) walks the keys, keeps the best candidate seen so far
  (smallest start, then lowest pattern index) and commits it as soon as no
  pattern still in progress could beat it.

Every state in the fail chain of the current state is a prefix still in
progress. The current state is the deepest of them, and none of them deeper
than i-best.start can be a leaf (its pattern would have started earlier and
replaced best). So the commit test only has to look at the current state:

  depth <  i-best.start  nothing in progress started at or before best
  depth == i-best.start  something started exactly with best; it can only
                         win with a lower pattern index (below[state])
  depth >  i-best.start  something started earlier; keep reading

Input is read once, except when an earlier-listed pattern that overlaps the
committed match was still in progress. Then the scan resumes at best.end.
*/

// checkEvery is how many runes are consumed between deadline checks
const checkEvery = 1 << 10

// acNode is one state in the automaton
type acNode struct {
	next  map[rune]int
	fail  int
	depth int   // length in runes of the trie prefix this state spells
	out   []int // pattern indexes ending here, including those reached through fail links
	below int   // lowest pattern index ending strictly below this state in the trie
}

type automaton struct {
	nodes []acNode
	lens  []int // pattern lengths in runes
}

// hit is a resolved match in rune positions: runes [start, end) matched pattern
type hit struct {
	start   int
	end     int
	pattern int
}

func (h hit) ok() bool { return h.pattern >= 0 }

// better reports whether h beats the current candidate under leftmost-first rules
func (h hit) better(cur hit) bool {
	if !cur.ok() {
		return true
	}
	if h.start != cur.start {
		return h.start < cur.start
	}
	return h.pattern < cur.pattern
}

var noHit = hit{pattern: -1}

// buildAutomaton constructs the automaton for the already-keyed patterns
func buildAutomaton(patterns [][]rune) *automaton {
	a := &automaton{
		nodes: []acNode{{next: map[rune]int{}, below: math.MaxInt}}, // state 0 = root
		lens:  make([]int, len(patterns)),
	}
	parent := []int{-1}

	// 1) trie edges
	for i, pat := range patterns {
		a.lens[i] = len(pat)
		cur := 0
		for _, r := range pat {
			nx, ok := a.nodes[cur].next[r]
			if !ok {
				a.nodes = append(a.nodes, acNode{next: map[rune]int{}, depth: a.nodes[cur].depth + 1, below: math.MaxInt})
				parent = append(parent, cur)
				nx = len(a.nodes) - 1
				a.nodes[cur].next[r] = nx
			}
			cur = nx
		}
		a.nodes[cur].out = append(a.nodes[cur].out, i)
	}

	// children always come after their parent, so one reverse pass
	// pushes the lowest index up the trie; out holds trie outputs only here
	for s := len(a.nodes) - 1; s > 0; s-- {
		low := a.nodes[s].below
		if len(a.nodes[s].out) > 0 {
			low = min(low, a.nodes[s].out[0])
		}
		p := parent[s]
		a.nodes[p].below = min(a.nodes[p].below, low)
	}

	// 2) BFS to set fail links and propagate outputs
	queue := make([]int, 0, len(a.nodes))
	for _, child := range a.nodes[0].next {
		a.nodes[child].fail = 0
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		for c, s := range a.nodes[r].next {
			queue = append(queue, s)
			f := a.nodes[r].fail
			for f > 0 {
				if _, ok := a.nodes[f].next[c]; ok {
					break
				}
				f = a.nodes[f].fail
			}
			if nx, ok := a.nodes[f].next[c]; ok {
				f = nx
			} else {
				f = 0
			}
			a.nodes[s].fail = f
			if len(a.nodes[f].out) > 0 {
				a.nodes[s].out = append(a.nodes[s].out, a.nodes[f].out...)
			}
		}
	}
	return a
}

// step follows goto/fail edges for one key
func (a *automaton) step(state int, c rune) int {
	for state > 0 {
		if _, ok := a.nodes[state].next[c]; ok {
			break
		}
		state = a.nodes[state].fail
	}
	if nx, ok := a.nodes[state].next[c]; ok {
		return nx
	}
	return 0
}

// scan returns the non-overlapping leftmost-first hits over keys, in order.
// check is called every checkEvery runes with the current rune position; a
// non-nil error aborts the scan.
func (a *automaton) scan(keys []rune, check func(pos int) error) ([]hit, error) {
	var hits []hit
	best := noHit
	state := 0
	steps := 0

	for i := 0; i < len(keys) || best.ok(); {
		if i == len(keys) {
			hits = append(hits, best)
			i, state, best = best.end, 0, noHit
			continue
		}

		steps++
		if steps%checkEvery == 0 {
			if err := check(i); err != nil {
				return nil, err
			}
		}

		state = a.step(state, keys[i])
		i++

		for _, p := range a.nodes[state].out {
			if h := (hit{start: i - a.lens[p], end: i, pattern: p}); h.better(best) {
				best = h
			}
		}

		if best.ok() && a.canCommit(state, i, best) {
			hits = append(hits, best)
			i, state, best = best.end, 0, noHit
		}
	}
	return hits, nil
}

// canCommit reports whether no prefix in progress at state can still beat best
func (a *automaton) canCommit(state, i int, best hit) bool {
	switch depth := a.nodes[state].depth; {
	case depth < i-best.start:
		return true
	case depth == i-best.start:
		return a.nodes[state].below > best.pattern
	default:
		return false
	}
}
