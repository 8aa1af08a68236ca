// groupparse.go
/*
fixdecoder — FIX protocol decoder tools
Copyright (C) 2025 Steve Clarke <stephenlclarke@mac.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.

In accordance with section 13 of the AGPL, if you modify this program,
your modified version must prominently offer all users interacting with it
remotely through a computer network an opportunity to receive the source
code of your version.
*/

// Package groupparse reconstructs FIX repeating groups from a tokenized
// message's ordered tag sequence, using per-message-type group definitions
// from the dictionary. Reconstruction is purely positional; it performs no
// content validation. Only the top level of each group is reconstructed:
// nested subgroup definitions are not descended into.
package groupparse

import (
	"github.com/stephenlclarke/fixlogreader/dictionary"
	"github.com/stephenlclarke/fixlogreader/tokenize"
)

// maxInstances is the sanity ceiling on a declared group count: a
// count-tag value greater than this causes the whole group to be
// skipped, not truncated.
const maxInstances = 100

// Instance is one repeating-group occurrence: the member tag/value pairs
// that belong to it, in wire order.
type Instance []tokenize.TagValue

// Parse reconstructs every group declared for this message type that is
// actually present in pm. It returns nil without doing any work when
// materialize is false or groups is empty, skipping the expensive
// reconstruction entirely when the caller did not project the groups
// column.
func Parse(pm *tokenize.ParsedMessage, groups map[int]*dictionary.Group, materialize bool) map[int][]Instance {
	if !materialize || len(groups) == 0 {
		return nil
	}

	var out map[int][]Instance

	for countTag, def := range groups {
		instances := parseOne(pm, def)
		if len(instances) == 0 {
			continue
		}
		if out == nil {
			out = make(map[int][]Instance, len(groups))
		}
		out[countTag] = instances
	}

	return out
}

func parseOne(pm *tokenize.ParsedMessage, def *dictionary.Group) []Instance {
	raw, ok := pm.Overflow[def.CountTag]
	if !ok {
		return nil
	}

	n, ok := parsePositiveInt(raw)
	if !ok || n <= 0 || n > maxInstances {
		return nil
	}

	start := firstOccurrence(pm.Ordered, def.CountTag)
	if start < 0 {
		return nil
	}

	if len(def.Members) == 0 {
		return nil
	}

	memberSet := make(map[int]bool, len(def.Members))
	for _, tag := range def.Members {
		memberSet[tag] = true
	}
	delimTag := def.Members[0]

	var instances []Instance
	pos := start + 1

	for len(instances) < n && pos < len(pm.Ordered) {
		var instance Instance

		for pos < len(pm.Ordered) {
			tv := pm.Ordered[pos]

			if !memberSet[tv.Tag] {
				break
			}
			if tv.Tag == delimTag && len(instance) > 0 {
				break
			}

			instance = append(instance, tv)
			pos++
		}

		if len(instance) == 0 {
			break
		}

		instances = append(instances, instance)
	}

	return instances
}

func firstOccurrence(ordered []tokenize.TagValue, tag int) int {
	for i, tv := range ordered {
		if tv.Tag == tag {
			return i
		}
	}
	return -1
}

func parsePositiveInt(b []byte) (int, bool) {
	if len(b) == 0 {
		return 0, false
	}

	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}

	return n, true
}
