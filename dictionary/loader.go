// loader.go
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
package dictionary

import (
	"encoding/xml"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
	goerrors "gopkg.in/src-d/go-errors.v1"
)

// ErrLoad is the sentinel kind wrapping any dictionary parse failure: a
// malformed XML document or a group element missing its name attribute.
// Implementers elsewhere can test with dictionary.ErrLoad.Is(err).
var ErrLoad = goerrors.NewKind("dictionary: %s")

type rawValue struct {
	Enum        string `xml:"enum,attr"`
	Description string `xml:"description,attr"`
}

type rawField struct {
	Tag    int        `xml:"number,attr"`
	Name   string     `xml:"name,attr"`
	Type   string     `xml:"type,attr"`
	Values []rawValue `xml:"value"`
}

type fieldRef struct {
	Name     string `xml:"name,attr"`
	Required string `xml:"required,attr"`
}

type componentRef struct {
	Name     string `xml:"name,attr"`
	Required string `xml:"required,attr"`
}

// rawGroup is the pre-resolution shape of a repeating group: name is the
// count-tag's field name, Fields are member tags in document order, Groups
// nest.
type rawGroup struct {
	Name       string         `xml:"name,attr"`
	Required   string         `xml:"required,attr"`
	Fields     []fieldRef     `xml:"field"`
	Groups     []rawGroup     `xml:"group"`
	Components []componentRef `xml:"component"`
}

type rawComponent struct {
	Name       string         `xml:"name,attr"`
	Fields     []fieldRef     `xml:"field"`
	Groups     []rawGroup     `xml:"group"`
	Components []componentRef `xml:"component"`
}

type rawMessage struct {
	Name       string         `xml:"name,attr"`
	MsgType    string         `xml:"msgtype,attr"`
	MsgCat     string         `xml:"msgcat,attr"`
	Fields     []fieldRef     `xml:"field"`
	Groups     []rawGroup     `xml:"group"`
	Components []componentRef `xml:"component"`
}

type rawDictionary struct {
	XMLName     xml.Name       `xml:"fix"`
	Major       string         `xml:"major,attr"`
	Minor       string         `xml:"minor,attr"`
	ServicePack string         `xml:"servicepack,attr"`
	Fields      []rawField     `xml:"fields>field"`
	Components  []rawComponent `xml:"components>component"`
	Messages    []rawMessage   `xml:"messages>message"`
}

func decodeXML(r io.Reader) (*rawDictionary, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var raw rawDictionary
	if err := dec.Decode(&raw); err != nil {
		return nil, ErrLoad.New(err.Error())
	}

	return &raw, nil
}

// Load parses a QuickFIX-style XML dictionary from r and builds a fully
// expanded Dictionary: components have been merged into every message (and
// component) that references them, and every group definition is resolved,
// including nesting.
func Load(r io.Reader) (*Dictionary, error) {
	raw, err := decodeXML(r)
	if err != nil {
		return nil, err
	}

	d := &Dictionary{
		Fields:     make(map[int]Field, len(raw.Fields)),
		Messages:   make(map[string]Message, len(raw.Messages)),
		NameToTag:  make(map[string]int, len(raw.Fields)),
		components: make(map[string]component, len(raw.Components)),
	}

	if err := loadFieldsAndComponents(raw, d); err != nil {
		return nil, err
	}

	for _, m := range raw.Messages {
		msg, err := buildMessage(m, d)
		if err != nil {
			return nil, err
		}
		d.Messages[msg.MsgType] = msg
	}

	return d, nil
}

// ApplyOverlay merges a second XML document's fields and messages into an
// already-loaded Dictionary. Overlay entries replace existing ones sharing
// the same tag / msgtype: the overlay always wins. Components are not
// reparsed by an overlay; overlay messages may still reference components
// already known to the base dictionary.
func (d *Dictionary) ApplyOverlay(r io.Reader) error {
	raw, err := decodeXML(r)
	if err != nil {
		return err
	}

	for _, f := range raw.Fields {
		field := Field{Tag: f.Tag, Name: f.Name, Type: f.Type, Values: toEnumValues(f.Values)}
		d.Fields[f.Tag] = field
		d.NameToTag[f.Name] = f.Tag
	}

	for _, m := range raw.Messages {
		msg, err := buildMessage(m, d)
		if err != nil {
			return err
		}
		d.Messages[msg.MsgType] = msg
	}

	return nil
}

func toEnumValues(vs []rawValue) []EnumValue {
	if len(vs) == 0 {
		return nil
	}
	out := make([]EnumValue, len(vs))
	for i, v := range vs {
		out[i] = EnumValue{Enum: v.Enum, Description: v.Description}
	}
	return out
}

func loadFieldsAndComponents(raw *rawDictionary, d *Dictionary) error {
	for _, f := range raw.Fields {
		d.Fields[f.Tag] = Field{Tag: f.Tag, Name: f.Name, Type: f.Type, Values: toEnumValues(f.Values)}
		d.NameToTag[f.Name] = f.Tag
	}

	// Components must be indexed before any message/component resolution
	// because they may reference each other.
	rawComps := make(map[string]rawComponent, len(raw.Components))
	for _, c := range raw.Components {
		rawComps[c.Name] = c
	}

	for _, c := range raw.Components {
		comp, err := resolveComponent(c, rawComps, d, map[string]bool{})
		if err != nil {
			return err
		}
		d.components[c.Name] = comp
	}

	return nil
}

// resolveComponent converts a rawComponent into the loader-internal
// component shape, expanding any nested component references. `seen`
// guards against a cyclic component graph: groups can't cycle since they
// nest literally in the XML tree, but a component may reference another
// component by name, so that path is guarded explicitly.
func resolveComponent(c rawComponent, rawComps map[string]rawComponent, d *Dictionary, seen map[string]bool) (component, error) {
	if seen[c.Name] {
		return component{}, ErrLoad.New(fmt.Sprintf("cyclic component reference: %s", c.Name))
	}
	seen[c.Name] = true
	defer delete(seen, c.Name)

	out := component{name: c.Name, fields: c.Fields, groups: c.Groups}

	for _, ref := range c.Components {
		sub, ok := rawComps[ref.Name]
		if !ok {
			continue
		}
		resolved, err := resolveComponent(sub, rawComps, d, seen)
		if err != nil {
			return component{}, err
		}
		// Fields inherited from a nested component are themselves subject
		// to the *outer* ref's required flag: a component's required
		// attribute overrides each member field's own declared
		// required-ness.
		for _, f := range resolved.fields {
			out.fields = append(out.fields, fieldRef{Name: f.Name, Required: ref.Required})
		}
		out.groups = append(out.groups, resolved.groups...)
	}

	return out, nil
}

func resolveTag(name string, d *Dictionary) int {
	if tag, ok := d.NameToTag[name]; ok {
		return tag
	}
	// An unknown field name referenced by a group resolves to tag 0 rather
	// than being rejected at load time.
	return 0
}

func buildGroup(g rawGroup, d *Dictionary) (*Group, error) {
	if g.Name == "" {
		return nil, ErrLoad.New("group element missing required name attribute")
	}

	members := make([]int, 0, len(g.Fields))
	for _, fr := range g.Fields {
		members = append(members, resolveTag(fr.Name, d))
	}

	for _, cref := range g.Components {
		if comp, ok := d.components[cref.Name]; ok {
			for _, fr := range comp.fields {
				members = append(members, resolveTag(fr.Name, d))
			}
		}
	}

	if len(members) == 0 {
		return nil, ErrLoad.New(fmt.Sprintf("group %q has no member fields", g.Name))
	}

	group := &Group{
		CountTag: resolveTag(g.Name, d),
		Members:  members,
	}

	if len(g.Groups) > 0 {
		group.Subgroups = make(map[int]*Group, len(g.Groups))
		for _, sg := range g.Groups {
			sub, err := buildGroup(sg, d)
			if err != nil {
				return nil, err
			}
			group.Subgroups[sub.CountTag] = sub
		}
	}

	return group, nil
}

// buildMessage expands a rawMessage's direct fields, component references,
// and direct groups into a fully merged Message: required/optional tag
// lists and a flat map of count-tag -> Group definition (possibly nested).
func buildMessage(m rawMessage, d *Dictionary) (Message, error) {
	msg := Message{
		Name:    m.Name,
		MsgType: m.MsgType,
		MsgCat:  m.MsgCat,
		Groups:  make(map[int]*Group),
	}

	appendFieldRef := func(fr fieldRef) {
		tag := resolveTag(fr.Name, d)
		if fr.Required == "Y" {
			msg.Required = append(msg.Required, tag)
		} else {
			msg.Optional = append(msg.Optional, tag)
		}
	}

	for _, fr := range m.Fields {
		appendFieldRef(fr)
	}

	for _, cref := range m.Components {
		comp, ok := d.components[cref.Name]
		if !ok {
			continue
		}

		for _, fr := range comp.fields {
			// The component ref's required flag overrides each field's own
			// declared required-ness.
			appendFieldRef(fieldRef{Name: fr.Name, Required: cref.Required})
		}

		for _, g := range comp.groups {
			group, err := buildGroup(g, d)
			if err != nil {
				return Message{}, err
			}
			msg.Groups[group.CountTag] = group
		}
	}

	for _, g := range m.Groups {
		group, err := buildGroup(g, d)
		if err != nil {
			return Message{}, err
		}
		msg.Groups[group.CountTag] = group
	}

	return msg, nil
}
