// bind.go
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

// Package scan is the bind/scan driver: it validates query options once
// (bind phase), then streams tokenized, coerced rows out of the bound
// file set (scan phase), honoring column projection along the way.
package scan

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/stephenlclarke/fixlogreader/dictionary"
	"github.com/stephenlclarke/fixlogreader/linesource"
	sqlhost "github.com/stephenlclarke/fixlogreader/sql"
)

// literalSOHToken is the escape the CLI and table-function options accept
// in place of typing a raw 0x01 byte.
const literalSOHToken = `\x01`

// BindOptions is the raw, unvalidated set of options a caller supplies.
type BindOptions struct {
	Paths          []string
	DictionaryPath string
	OverlayPath    string
	Delimiter      string
	RTags          []string
	TagIDs         []int
}

// BoundScan is the immutable result of a successful bind: a dictionary, a
// delimiter, a resolved custom-column list, the full output schema, and
// the shared file set the scan phase will drain.
type BoundScan struct {
	Dictionary    *dictionary.Dictionary
	Delimiter     byte
	CustomColumns []CustomColumn
	Schema        sqlhost.Schema
	Files         *linesource.FileSet

	fs HostFileSystem
}

// Bind validates opts against fs and, on success, returns a BoundScan
// ready to be partitioned. No file is opened yet; only the dictionary (and
// optional overlay) are read eagerly, to fail fast before any row work.
func Bind(ctx context.Context, fs HostFileSystem, opts BindOptions) (*BoundScan, error) {
	paths, err := expandGlobs(fs, opts.Paths)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrEmptyGlob.New(fmt.Sprintf("%v", opts.Paths))
	}

	dict, err := resolveDictionary(fs, opts)
	if err != nil {
		return nil, err
	}

	delim, err := resolveDelimiter(opts.Delimiter)
	if err != nil {
		return nil, err
	}

	custom, err := resolveCustomColumns(dict, opts.RTags, opts.TagIDs)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"files":  len(paths),
		"custom": len(custom),
		"delim":  fmt.Sprintf("%#x", delim),
	}).Debug("scan: bind complete")

	return &BoundScan{
		Dictionary:    dict,
		Delimiter:     delim,
		CustomColumns: custom,
		Schema:        buildSchema(custom),
		Files:         linesource.NewFileSet(paths),
		fs:            fs,
	}, nil
}

func expandGlobs(fs HostFileSystem, patterns []string) ([]string, error) {
	var out []string

	for _, pattern := range patterns {
		matches, err := fs.Glob(pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}

	return out, nil
}

func resolveDictionary(fs HostFileSystem, opts BindOptions) (*dictionary.Dictionary, error) {
	var dict *dictionary.Dictionary

	if opts.DictionaryPath == "" {
		d, err := dictionary.Embedded()
		if err != nil {
			return nil, ErrDictionary.New(err.Error())
		}
		dict = d
	} else {
		r, err := fs.Open(opts.DictionaryPath)
		if err != nil {
			return nil, ErrDictionary.New(err.Error())
		}
		defer r.Close()

		d, err := dictionary.Load(r)
		if err != nil {
			return nil, ErrDictionary.New(err.Error())
		}
		dict = d
	}

	if opts.OverlayPath != "" {
		r, err := fs.Open(opts.OverlayPath)
		if err != nil {
			return nil, ErrDictionary.New(err.Error())
		}
		defer r.Close()

		if err := dict.ApplyOverlay(r); err != nil {
			return nil, ErrDictionary.New(err.Error())
		}
	}

	return dict, nil
}

func resolveDelimiter(raw string) (byte, error) {
	switch {
	case raw == "":
		return '|', nil
	case raw == literalSOHToken:
		return 0x01, nil
	case len(raw) == 1:
		return raw[0], nil
	default:
		return 0, ErrDelimiter.New(raw)
	}
}

// resolveCustomColumns resolves rtags (by name, must exist) and tagIDs
// (by number, unknown tolerated as Tag<N>) into a deduplicated list of
// custom columns, preserving first-seen order across both lists with
// rtags processed first.
func resolveCustomColumns(dict *dictionary.Dictionary, rtags []string, tagIDs []int) ([]CustomColumn, error) {
	seen := make(map[int]bool)
	var out []CustomColumn

	for _, name := range rtags {
		f, ok := dict.FieldByName(name)
		if !ok {
			return nil, ErrUnknownRTag.New(name)
		}
		if seen[f.Tag] {
			continue
		}
		seen[f.Tag] = true
		out = append(out, CustomColumn{Tag: f.Tag, Name: f.Name})
	}

	for _, tag := range tagIDs {
		if seen[tag] {
			continue
		}
		seen[tag] = true

		name := fmt.Sprintf("Tag%d", tag)
		if f, ok := dict.FieldByTag(tag); ok {
			name = f.Name
		}
		out = append(out, CustomColumn{Tag: tag, Name: name})
	}

	return out, nil
}

func buildSchema(custom []CustomColumn) sqlhost.Schema {
	schema := make(sqlhost.Schema, 0, numFixedColumns+len(custom))

	for _, c := range fixedColumns {
		schema = append(schema, &sqlhost.Column{Name: c.name, Type: c.typ, Nullable: true})
	}
	for _, c := range custom {
		schema = append(schema, &sqlhost.Column{Name: c.Name, Type: sqlhost.TypeText, Nullable: true})
	}

	return schema
}
