// introspect.go
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

// Package introspect exposes three thin, read-only projections over a
// Dictionary: the flat field catalog, per-message field usage, and the
// group catalog. None of them touch a log line; they exist so a host can
// let a user browse the dialect it loaded.
package introspect

import (
	"sort"
	"strconv"
	"strings"

	"github.com/stephenlclarke/fixlogreader/dictionary"
	sqlhost "github.com/stephenlclarke/fixlogreader/sql"
)

// FieldUsage is one (message, field) pairing: which message uses this
// field, whether it's required, and — when the field lives inside a
// repeating group instead of directly on the message — the group's count
// tag. GroupCountTag is 0 for a field that is not a group member.
type FieldUsage struct {
	Tag           int
	FieldName     string
	MessageName   string
	MsgType       string
	Required      bool
	GroupCountTag int
}

// GroupCatalogEntry describes one repeating-group definition, merged
// across every message that declares it under the same count tag.
type GroupCatalogEntry struct {
	CountTag     int
	DelimiterTag int
	MemberTags   []int
	MessageTypes []string
}

// FieldsTableFunction lists every field in the dictionary, sorted by tag,
// along with how many distinct message types reference it.
type FieldsTableFunction struct {
	Dictionary *dictionary.Dictionary
}

var fieldsSchema = sqlhost.Schema{
	{Name: "Tag", Type: sqlhost.TypeInt64},
	{Name: "Name", Type: sqlhost.TypeText},
	{Name: "Type", Type: sqlhost.TypeText},
	{Name: "MessageCount", Type: sqlhost.TypeInt64},
}

func (tf *FieldsTableFunction) Schema() sqlhost.Schema { return fieldsSchema }

func (tf *FieldsTableFunction) RowIter(ctx *sqlhost.Context) (sqlhost.RowIter, error) {
	usageCount := fieldMessageCounts(tf.Dictionary)

	tags := make([]int, 0, len(tf.Dictionary.Fields))
	for tag := range tf.Dictionary.Fields {
		tags = append(tags, tag)
	}
	sort.Ints(tags)

	rows := make([]sqlhost.Row, 0, len(tags))
	for _, tag := range tags {
		f := tf.Dictionary.Fields[tag]
		rows = append(rows, sqlhost.NewRow(int64(tag), f.Name, f.Type, int64(usageCount[tag])))
	}

	return sqlhost.RowsToRowIter(rows...), nil
}

// fieldMessageCounts counts, for each tag, how many distinct message types
// reference it directly or as a group member (including nested subgroups).
func fieldMessageCounts(dict *dictionary.Dictionary) map[int]int {
	seen := make(map[int]map[string]bool)

	mark := func(tag int, msgType string) {
		if seen[tag] == nil {
			seen[tag] = make(map[string]bool)
		}
		seen[tag][msgType] = true
	}

	for _, msg := range dict.Messages {
		for _, tag := range msg.Required {
			mark(tag, msg.MsgType)
		}
		for _, tag := range msg.Optional {
			mark(tag, msg.MsgType)
		}
		for _, g := range msg.Groups {
			markGroupTags(g, msg.MsgType, mark)
		}
	}

	counts := make(map[int]int, len(seen))
	for tag, msgTypes := range seen {
		counts[tag] = len(msgTypes)
	}
	return counts
}

func markGroupTags(g *dictionary.Group, msgType string, mark func(tag int, msgType string)) {
	mark(g.CountTag, msgType)
	for _, tag := range g.Members {
		mark(tag, msgType)
	}
	for _, sub := range g.Subgroups {
		markGroupTags(sub, msgType, mark)
	}
}

// MessageFieldsTableFunction lists every (message, field) usage pair,
// sorted by tag then message type for determinism.
type MessageFieldsTableFunction struct {
	Dictionary *dictionary.Dictionary
}

var messageFieldsSchema = sqlhost.Schema{
	{Name: "Tag", Type: sqlhost.TypeInt64},
	{Name: "FieldName", Type: sqlhost.TypeText},
	{Name: "MessageName", Type: sqlhost.TypeText},
	{Name: "MsgType", Type: sqlhost.TypeText},
	{Name: "Required", Type: sqlhost.TypeInt64},
	{Name: "GroupCountTag", Type: sqlhost.TypeInt64},
}

func (tf *MessageFieldsTableFunction) Schema() sqlhost.Schema { return messageFieldsSchema }

func (tf *MessageFieldsTableFunction) RowIter(ctx *sqlhost.Context) (sqlhost.RowIter, error) {
	usages := collectFieldUsage(tf.Dictionary)

	sort.Slice(usages, func(i, j int) bool {
		if usages[i].Tag != usages[j].Tag {
			return usages[i].Tag < usages[j].Tag
		}
		return usages[i].MsgType < usages[j].MsgType
	})

	rows := make([]sqlhost.Row, 0, len(usages))
	for _, u := range usages {
		rows = append(rows, sqlhost.NewRow(
			int64(u.Tag), u.FieldName, u.MessageName, u.MsgType, boolToInt64(u.Required), int64(u.GroupCountTag),
		))
	}

	return sqlhost.RowsToRowIter(rows...), nil
}

func collectFieldUsage(dict *dictionary.Dictionary) []FieldUsage {
	var out []FieldUsage

	for _, msg := range dict.Messages {
		for _, tag := range msg.Required {
			out = append(out, newFieldUsage(dict, tag, msg, true, 0))
		}
		for _, tag := range msg.Optional {
			out = append(out, newFieldUsage(dict, tag, msg, false, 0))
		}
		for _, g := range msg.Groups {
			out = append(out, collectGroupFieldUsage(dict, g, msg)...)
		}
	}

	return out
}

func collectGroupFieldUsage(dict *dictionary.Dictionary, g *dictionary.Group, msg dictionary.Message) []FieldUsage {
	var out []FieldUsage

	for _, tag := range g.Members {
		out = append(out, newFieldUsage(dict, tag, msg, false, g.CountTag))
	}
	for _, sub := range g.Subgroups {
		out = append(out, collectGroupFieldUsage(dict, sub, msg)...)
	}

	return out
}

func newFieldUsage(dict *dictionary.Dictionary, tag int, msg dictionary.Message, required bool, groupCountTag int) FieldUsage {
	name := ""
	if f, ok := dict.FieldByTag(tag); ok {
		name = f.Name
	}

	return FieldUsage{
		Tag:           tag,
		FieldName:     name,
		MessageName:   msg.Name,
		MsgType:       msg.MsgType,
		Required:      required,
		GroupCountTag: groupCountTag,
	}
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// GroupsTableFunction lists every distinct repeating-group definition
// (merged by count tag across messages), sorted by count tag.
type GroupsTableFunction struct {
	Dictionary *dictionary.Dictionary
}

var groupsSchema = sqlhost.Schema{
	{Name: "CountTag", Type: sqlhost.TypeInt64},
	{Name: "DelimiterTag", Type: sqlhost.TypeInt64},
	{Name: "MemberTags", Type: sqlhost.TypeText},
	{Name: "MessageTypes", Type: sqlhost.TypeText},
}

func (tf *GroupsTableFunction) Schema() sqlhost.Schema { return groupsSchema }

func (tf *GroupsTableFunction) RowIter(ctx *sqlhost.Context) (sqlhost.RowIter, error) {
	entries := collectGroupCatalog(tf.Dictionary)

	sort.Slice(entries, func(i, j int) bool { return entries[i].CountTag < entries[j].CountTag })

	rows := make([]sqlhost.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, sqlhost.NewRow(
			int64(e.CountTag), int64(e.DelimiterTag), formatIntList(e.MemberTags), formatStringList(e.MessageTypes),
		))
	}

	return sqlhost.RowsToRowIter(rows...), nil
}

func collectGroupCatalog(dict *dictionary.Dictionary) []GroupCatalogEntry {
	byCountTag := make(map[int]*GroupCatalogEntry)
	msgTypeSets := make(map[int]map[string]bool)

	var walk func(g *dictionary.Group, msgType string)
	walk = func(g *dictionary.Group, msgType string) {
		if len(g.Members) == 0 {
			return
		}

		entry, ok := byCountTag[g.CountTag]
		if !ok {
			entry = &GroupCatalogEntry{
				CountTag:     g.CountTag,
				DelimiterTag: g.Members[0],
				MemberTags:   append([]int(nil), g.Members...),
			}
			byCountTag[g.CountTag] = entry
			msgTypeSets[g.CountTag] = make(map[string]bool)
		}
		msgTypeSets[g.CountTag][msgType] = true

		for _, sub := range g.Subgroups {
			walk(sub, msgType)
		}
	}

	for _, msg := range dict.Messages {
		for _, g := range msg.Groups {
			walk(g, msg.MsgType)
		}
	}

	out := make([]GroupCatalogEntry, 0, len(byCountTag))
	for countTag, entry := range byCountTag {
		types := make([]string, 0, len(msgTypeSets[countTag]))
		for t := range msgTypeSets[countTag] {
			types = append(types, t)
		}
		sort.Strings(types)
		entry.MessageTypes = types
		out = append(out, *entry)
	}

	return out
}

func formatIntList(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

func formatStringList(xs []string) string {
	return strings.Join(xs, ",")
}
