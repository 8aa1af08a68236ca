// schema.go
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

// kind tags how a fixed column's value is produced out of a tokenized
// message.
type kind int

const (
	kindHotString kind = iota
	kindHotInt
	kindHotFloat
	kindHotTimestamp
	kindTags
	kindGroups
	kindRaw
	kindParseError
)

// fixedColumn describes one of the 23 built-in columns.
type fixedColumn struct {
	name string
	typ  sqlhost.Type
	tag  int // source FIX tag, 0 if not tag-sourced
	kind kind
}

// Column indices into the fixed schema, named for readability at call
// sites (scaniter.go, and callers such as cmd/fixscan that need to know,
// say, where raw_message lives).
const (
	ColMsgType = iota
	ColSenderCompID
	ColTargetCompID
	ColMsgSeqNum
	ColSendingTime
	ColClOrdID
	ColOrderID
	ColExecID
	ColSymbol
	ColSide
	ColExecType
	ColOrdStatus
	ColPrice
	ColOrderQty
	ColCumQty
	ColLeavesQty
	ColLastPx
	ColLastQty
	ColText
	ColTags
	ColGroups
	ColRawMessage
	ColParseError

	numFixedColumns
)

var fixedColumns = [numFixedColumns]fixedColumn{
	ColMsgType:      {"MsgType", sqlhost.TypeText, 35, kindHotString},
	ColSenderCompID: {"SenderCompID", sqlhost.TypeText, 49, kindHotString},
	ColTargetCompID: {"TargetCompID", sqlhost.TypeText, 56, kindHotString},
	ColMsgSeqNum:    {"MsgSeqNum", sqlhost.TypeInt64, 34, kindHotInt},
	ColSendingTime:  {"SendingTime", sqlhost.TypeTimestamp, 52, kindHotTimestamp},
	ColClOrdID:      {"ClOrdID", sqlhost.TypeText, 11, kindHotString},
	ColOrderID:      {"OrderID", sqlhost.TypeText, 37, kindHotString},
	ColExecID:       {"ExecID", sqlhost.TypeText, 17, kindHotString},
	ColSymbol:       {"Symbol", sqlhost.TypeText, 55, kindHotString},
	ColSide:         {"Side", sqlhost.TypeText, 54, kindHotString},
	ColExecType:     {"ExecType", sqlhost.TypeText, 150, kindHotString},
	ColOrdStatus:    {"OrdStatus", sqlhost.TypeText, 39, kindHotString},
	ColPrice:        {"Price", sqlhost.TypeFloat64, 44, kindHotFloat},
	ColOrderQty:     {"OrderQty", sqlhost.TypeFloat64, 38, kindHotFloat},
	ColCumQty:       {"CumQty", sqlhost.TypeFloat64, 14, kindHotFloat},
	ColLeavesQty:    {"LeavesQty", sqlhost.TypeFloat64, 151, kindHotFloat},
	ColLastPx:       {"LastPx", sqlhost.TypeFloat64, 31, kindHotFloat},
	ColLastQty:      {"LastQty", sqlhost.TypeFloat64, 32, kindHotFloat},
	ColText:         {"Text", sqlhost.TypeText, 58, kindHotString},
	ColTags:         {"tags", sqlhost.TypeBlob, 0, kindTags},
	ColGroups:       {"groups", sqlhost.TypeBlob, 0, kindGroups},
	ColRawMessage:   {"raw_message", sqlhost.TypeText, 0, kindRaw},
	ColParseError:   {"parse_error", sqlhost.TypeText, 0, kindParseError},
}

// CustomColumn is one user-declared extra column, resolved at bind time
// either by name (against the dictionary) or by raw tag number.
type CustomColumn struct {
	Tag  int
	Name string
}
