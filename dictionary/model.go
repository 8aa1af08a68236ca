// model.go
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

// Package dictionary holds the typed, in-memory representation of a FIX
// dialect: fields, enums, messages, components, and repeating groups,
// built once per query from QuickFIX-style XML.
package dictionary

// EnumValue is one {enum, description} pair for a field.
type EnumValue struct {
	Enum        string
	Description string
}

// Field is a single FIX field definition: its tag, name, wire type, and the
// ordered set of enum values it may take. Type is an opaque label here, not
// a coercion instruction (the coerce package decides how to parse a value).
type Field struct {
	Tag    int
	Name   string
	Type   string
	Values []EnumValue
}

// Group is a repeating-group definition. CountTag is the field whose value
// announces the instance count. Members[0] is the delimiter tag: its
// recurrence marks an instance boundary. Subgroups maps a nested count tag
// to its own Group definition.
type Group struct {
	CountTag int
	Members  []int
	Subgroups map[int]*Group
}

// Message is one FIX message type: its name/msgtype, the required/optional
// tags recorded for introspection only, and its repeating groups keyed by
// count tag.
type Message struct {
	Name       string
	MsgType    string
	MsgCat     string
	Required   []int
	Optional   []int
	Groups     map[int]*Group
}

// component is a loader-internal, pre-expansion construct: after Load
// returns, components no longer exist as distinct entries — their fields
// and groups have been merged into every message (or component) that
// references them.
type component struct {
	name       string
	fields     []fieldRef
	groups     []rawGroup
	components []componentRef
}

// Dictionary is the complete, load-time-built catalog used by the group
// parser (group definitions per message type), the scan driver's
// custom-column resolution, and the introspection table functions. The
// tokenizer does not consult it: its hot-tag index is fixed.
type Dictionary struct {
	Fields     map[int]Field
	Messages   map[string]Message // keyed by MsgType symbol, e.g. "D"
	NameToTag  map[string]int

	components map[string]component // loader-internal; gone after Load in spirit, kept for ApplyOverlay bookkeeping
}

// FieldByName resolves a field by its dictionary name. ok is false when the
// name is not defined.
func (d *Dictionary) FieldByName(name string) (Field, bool) {
	tag, ok := d.NameToTag[name]
	if !ok {
		return Field{}, false
	}
	f, ok := d.Fields[tag]
	return f, ok
}

// FieldByTag resolves a field by its numeric tag, whether or not that tag
// was ever named by the dictionary.
func (d *Dictionary) FieldByTag(tag int) (Field, bool) {
	f, ok := d.Fields[tag]
	return f, ok
}

// GroupsForMsgType returns the (possibly nil) group-definition map for a
// message type symbol, e.g. "D" or "8".
func (d *Dictionary) GroupsForMsgType(msgType string) map[int]*Group {
	msg, ok := d.Messages[msgType]
	if !ok {
		return nil
	}
	return msg.Groups
}
