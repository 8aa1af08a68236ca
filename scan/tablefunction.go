// tablefunction.go
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

import sqlhost "github.com/stephenlclarke/fixlogreader/sql"

// TableFunction adapts a BoundScan to the local sql.TableFunction
// interface, so the registration surface a real query engine expects
// (schema + row iterator) can be exercised without that engine attached.
type TableFunction struct {
	Bound      *BoundScan
	Projection Projection
}

var _ sqlhost.TableFunction = (*TableFunction)(nil)

// Schema returns the bound output schema (fixed columns plus any custom
// tag columns resolved at bind time).
func (tf *TableFunction) Schema() sqlhost.Schema {
	return tf.Bound.Schema
}

// RowIter starts a single-partition scan. A host that wants intra-query
// parallelism would call NewPartition directly, once per worker, sharing
// the same BoundScan.
func (tf *TableFunction) RowIter(ctx *sqlhost.Context) (sqlhost.RowIter, error) {
	return tf.Bound.NewPartition(tf.Projection), nil
}
