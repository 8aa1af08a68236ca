// tokenize.go
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

// Package tokenize splits one raw FIX message line into tag/value pairs,
// borrowing byte slices from the caller's buffer instead of allocating
// copies. Each pair is recorded in the ordered tag sequence that group
// reconstruction needs, and is also routed to either a promoted hot slot or
// the overflow map.
package tokenize

// HotTags is the fixed, ordered set of 19 tags promoted to dedicated slots.
// Index i in ParsedMessage.Hot corresponds to HotTags[i].
var HotTags = [19]int{35, 49, 56, 34, 52, 11, 37, 17, 55, 54, 150, 39, 44, 38, 14, 151, 31, 32, 58}

var hotIndex = func() map[int]int {
	m := make(map[int]int, len(HotTags))
	for i, tag := range HotTags {
		m[tag] = i
	}
	return m
}()

// HotIndex returns the slot index for tag and true if tag is one of the 19
// hot tags.
func HotIndex(tag int) (int, bool) {
	i, ok := hotIndex[tag]
	return i, ok
}

// TagValue is one (tag, value) pair in wire order. Value borrows from the
// line buffer passed to Tokenize.
type TagValue struct {
	Tag   int
	Value []byte
}

// ParsedMessage is the transient result of tokenizing a single line. Hot
// slots and the overflow map borrow their values from Raw; Raw outlives
// the ParsedMessage only as long as the caller keeps the line buffer
// alive, which is why a ParsedMessage must be discarded at row emission.
type ParsedMessage struct {
	Hot    [19][]byte
	HotSet [19]bool

	Overflow map[int][]byte
	Ordered  []TagValue

	Raw []byte
	Err string
}

// HotValue returns the raw bytes stored for a hot tag, or (nil, false) if
// that tag was never present in the line.
func (p *ParsedMessage) HotValue(tag int) ([]byte, bool) {
	i, ok := HotIndex(tag)
	if !ok || !p.HotSet[i] {
		return nil, false
	}
	return p.Hot[i], true
}

const (
	errEmptyMessage    = "Empty message"
	errMissingEquals   = "Invalid tag format (missing '=')"
	errBadTag          = "Failed to parse tag"
	errNoValidTags     = "No valid tags found"
	errMissingMsgType  = "Missing required tag 35 (MsgType)"
)

// Tokenize scans line for delim-separated tag=value segments. It never
// allocates per-value copies: every TagValue.Value and hot-slot entry is a
// sub-slice of line.
func Tokenize(line []byte, delim byte) *ParsedMessage {
	pm := &ParsedMessage{Raw: line}

	if len(line) == 0 {
		pm.Err = errEmptyMessage
		return pm
	}

	var segErr string
	tagCount := 0

	start := 0
	for i := 0; i <= len(line); i++ {
		if i < len(line) && line[i] != delim {
			continue
		}
		segment := line[start:i]
		start = i + 1

		if len(segment) == 0 {
			continue
		}

		eq := indexByte(segment, '=')
		if eq < 0 {
			if segErr == "" {
				segErr = errMissingEquals
			}
			continue
		}

		tagBytes := segment[:eq]
		valBytes := segment[eq+1:]

		tag, ok := parseDigits(tagBytes)
		if !ok {
			if segErr == "" {
				segErr = errBadTag
			}
			continue
		}

		tagCount++
		pm.Ordered = append(pm.Ordered, TagValue{Tag: tag, Value: valBytes})

		if idx, hot := HotIndex(tag); hot {
			pm.Hot[idx] = valBytes
			pm.HotSet[idx] = true
		} else {
			if pm.Overflow == nil {
				pm.Overflow = make(map[int][]byte)
			}
			pm.Overflow[tag] = valBytes
		}
	}

	switch {
	case segErr != "":
		pm.Err = segErr
	case tagCount == 0:
		pm.Err = errNoValidTags
	default:
		if v, ok := pm.HotValue(35); !ok || len(v) == 0 {
			pm.Err = errMissingMsgType
		}
	}

	return pm
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

// parseDigits parses a non-empty run of ASCII digits into a non-negative
// int. Any other byte, or an empty span, is rejected.
func parseDigits(b []byte) (int, bool) {
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
