// scaniter.go
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

package scan

import (
	"io"
	"strings"

	"github.com/stephenlclarke/fixlogreader/coerce"
	"github.com/stephenlclarke/fixlogreader/groupparse"
	"github.com/stephenlclarke/fixlogreader/linesource"
	sqlhost "github.com/stephenlclarke/fixlogreader/sql"
	"github.com/stephenlclarke/fixlogreader/tokenize"
)

// Projection records, per schema column index, whether a query selected
// that column. A nil Projection means every column is selected.
type Projection []bool

// AllColumns returns a Projection that selects every one of n columns.
func AllColumns(n int) Projection {
	p := make(Projection, n)
	for i := range p {
		p[i] = true
	}
	return p
}

func (p Projection) want(i int) bool {
	return p == nil || (i < len(p) && p[i])
}

// ScanIter streams rows out of a BoundScan's file set. It is built fresh
// per query via NewPartition; several ScanIters may share one BoundScan
// read-only, draining the same FileSet under its internal mutex.
type ScanIter struct {
	bound      *BoundScan
	projection Projection
	needTags   bool
	needGroups bool

	framer *linesource.Framer
	file   io.ReadCloser
}

// NewPartition builds a ScanIter over bound, honoring projection (nil for
// "select everything"). Opening the first file is deferred to the first
// call to Next.
func (b *BoundScan) NewPartition(projection Projection) *ScanIter {
	return &ScanIter{
		bound:      b,
		projection: projection,
		needTags:   projection.want(ColTags),
		needGroups: projection.want(ColGroups),
	}
}

// Next returns the next row, or io.EOF once every bound file is exhausted.
// It checks ctx for cancellation once per row.
func (it *ScanIter) Next(ctx *sqlhost.Context) (sqlhost.Row, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if it.framer == nil {
			ok, err := it.openNextFile()
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, io.EOF
			}
		}

		line, err := it.framer.Next()
		if err == io.EOF {
			it.closeCurrentFile()
			continue
		}
		if err != nil {
			it.closeCurrentFile()
			return nil, err
		}
		if len(line) == 0 {
			continue
		}

		return it.buildRow(line), nil
	}
}

// Close releases any file still held open by this iterator.
func (it *ScanIter) Close(ctx *sqlhost.Context) error {
	it.closeCurrentFile()
	return nil
}

func (it *ScanIter) openNextFile() (bool, error) {
	path, ok := it.bound.Files.NextPath()
	if !ok {
		return false, nil
	}

	rc, err := it.bound.fs.Open(path)
	if err != nil {
		return false, err
	}

	it.file = rc
	it.framer = linesource.NewFramer(rc)

	return true, nil
}

func (it *ScanIter) closeCurrentFile() {
	if it.file != nil {
		it.file.Close()
		it.file = nil
	}
	it.framer = nil
}

func (it *ScanIter) buildRow(line []byte) sqlhost.Row {
	pm := tokenize.Tokenize(line, it.bound.Delimiter)

	var accum []string
	if pm.Err != "" {
		accum = append(accum, pm.Err)
	}

	values := make([]interface{}, numFixedColumns+len(it.bound.CustomColumns))

	for i, col := range fixedColumns {
		if !it.projection.want(i) {
			continue
		}

		switch col.kind {
		case kindHotString:
			if raw, ok := pm.HotValue(col.tag); ok {
				values[i] = string(raw)
			}
		case kindHotInt:
			values[i] = it.coerceHotInt(pm, col, &accum)
		case kindHotFloat:
			values[i] = it.coerceHotFloat(pm, col, &accum)
		case kindHotTimestamp:
			values[i] = it.coerceHotTimestamp(pm, col, &accum)
		case kindTags:
			values[i] = buildTags(pm)
		case kindGroups:
			values[i] = buildGroups(it.bound, pm, it.needGroups)
		case kindRaw:
			values[i] = string(pm.Raw)
		case kindParseError:
			// filled in below, once every other column has contributed
			// its diagnostics to accum.
		}
	}

	if it.projection.want(ColParseError) && len(accum) > 0 {
		values[ColParseError] = strings.Join(accum, "; ")
	}

	for i, cc := range it.bound.CustomColumns {
		idx := numFixedColumns + i
		if !it.projection.want(idx) {
			continue
		}
		values[idx] = customValue(pm, cc)
	}

	return sqlhost.Row(values)
}

func (it *ScanIter) coerceHotInt(pm *tokenize.ParsedMessage, col fixedColumn, accum *[]string) interface{} {
	raw, ok := pm.HotValue(col.tag)
	if !ok {
		return nil
	}

	v, ok, diag := coerce.Int64(col.name, raw)
	if diag != "" {
		*accum = append(*accum, diag)
	}
	if !ok {
		return nil
	}

	return v
}

func (it *ScanIter) coerceHotFloat(pm *tokenize.ParsedMessage, col fixedColumn, accum *[]string) interface{} {
	raw, ok := pm.HotValue(col.tag)
	if !ok {
		return nil
	}

	v, ok, diag := coerce.Float64(col.name, raw)
	if diag != "" {
		*accum = append(*accum, diag)
	}
	if !ok {
		return nil
	}

	return v
}

func (it *ScanIter) coerceHotTimestamp(pm *tokenize.ParsedMessage, col fixedColumn, accum *[]string) interface{} {
	raw, ok := pm.HotValue(col.tag)
	if !ok {
		return nil
	}

	v, ok, diag := coerce.Timestamp(col.name, raw)
	if diag != "" {
		*accum = append(*accum, diag)
	}
	if !ok {
		return nil
	}

	return v
}

func buildTags(pm *tokenize.ParsedMessage) interface{} {
	if len(pm.Overflow) == 0 {
		return nil
	}

	tags := make(map[int32]string, len(pm.Overflow))
	for tag, v := range pm.Overflow {
		tags[int32(tag)] = string(v)
	}

	return tags
}

func buildGroups(bound *BoundScan, pm *tokenize.ParsedMessage, materialize bool) interface{} {
	if !materialize {
		return nil
	}

	msgType, ok := pm.HotValue(35)
	if !ok || len(msgType) == 0 {
		return nil
	}

	defs := bound.Dictionary.GroupsForMsgType(string(msgType))
	if len(defs) == 0 {
		return nil
	}

	parsed := groupparse.Parse(pm, defs, true)
	if len(parsed) == 0 {
		return nil
	}

	out := make(map[int32][]map[int32]string, len(parsed))
	for countTag, instances := range parsed {
		list := make([]map[int32]string, 0, len(instances))
		for _, inst := range instances {
			m := make(map[int32]string, len(inst))
			for _, tv := range inst {
				m[int32(tv.Tag)] = string(tv.Value)
			}
			list = append(list, m)
		}
		out[int32(countTag)] = list
	}

	return out
}

func customValue(pm *tokenize.ParsedMessage, cc CustomColumn) interface{} {
	if raw, ok := pm.HotValue(cc.Tag); ok {
		return string(raw)
	}
	if raw, ok := pm.Overflow[cc.Tag]; ok {
		return string(raw)
	}
	return nil
}
