// sql.go
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

// Package sql is a narrow, local stand-in for the row/schema/table-function
// surface a real SQL query engine exposes to a table function. It mirrors
// the naming conventions of that family of engine (Row, RowIter, Context,
// Schema, Column, TableFunction) without pulling in the engine itself,
// which sits outside this project's scope: callers only ever need to
// produce rows against a declared schema, not plan or execute queries.
package sql

import (
	"context"
	"io"
)

// Row is one result row: column values in schema order.
type Row []interface{}

// NewRow builds a Row from positional values.
func NewRow(values ...interface{}) Row {
	r := make(Row, len(values))
	copy(r, values)
	return r
}

// RowIter is a pull-based cursor over a table function's result rows.
type RowIter interface {
	Next(ctx *Context) (Row, error)
	Close(ctx *Context) error
}

// Context carries cancellation and, in a full engine, session state. Here
// it wraps a context.Context so a table function can respect cancellation
// on a long scan.
type Context struct {
	context.Context
}

// NewContext wraps an existing context.Context.
func NewContext(ctx context.Context) *Context {
	return &Context{Context: ctx}
}

// NewEmptyContext returns a Context with no deadline or values, for tests
// and standalone invocations.
func NewEmptyContext() *Context {
	return &Context{Context: context.Background()}
}

// Column describes one output column: its name, declared type, and
// nullability.
type Column struct {
	Name     string
	Type     Type
	Nullable bool
}

// Schema is an ordered list of columns.
type Schema []*Column

// Type enumerates the column types a table function can declare. It is
// deliberately smaller than a real engine's type system: just enough to
// describe the values this project actually produces.
type Type int

const (
	TypeInt64 Type = iota
	TypeFloat64
	TypeText
	TypeTimestamp
	TypeBlob
)

func (t Type) String() string {
	switch t {
	case TypeInt64:
		return "BIGINT"
	case TypeFloat64:
		return "DOUBLE"
	case TypeText:
		return "TEXT"
	case TypeTimestamp:
		return "DATETIME"
	case TypeBlob:
		return "BLOB"
	default:
		return "UNKNOWN"
	}
}

// TableFunction is implemented by a bound, ready-to-scan table function:
// the schema it will produce and the row iterator to produce it.
type TableFunction interface {
	Schema() Schema
	RowIter(ctx *Context) (RowIter, error)
}

// sliceRowIter adapts a pre-built []Row to the RowIter interface, used by
// the dictionary-introspection table functions whose output fits in memory.
type sliceRowIter struct {
	rows []Row
	pos  int
}

// RowsToRowIter returns a RowIter that yields rows in order, then io.EOF.
func RowsToRowIter(rows ...Row) RowIter {
	return &sliceRowIter{rows: rows}
}

func (it *sliceRowIter) Next(ctx *Context) (Row, error) {
	if it.pos >= len(it.rows) {
		return nil, io.EOF
	}
	r := it.rows[it.pos]
	it.pos++
	return r, nil
}

func (it *sliceRowIter) Close(ctx *Context) error {
	return nil
}
