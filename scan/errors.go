// errors.go
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

import goerrors "gopkg.in/src-d/go-errors.v1"

// Bind errors fail the whole query before any row is produced. Each is a
// typed kind so callers can test for a specific failure with the kind's Is
// method (for example ErrEmptyGlob.Is(err)) instead of matching on message
// text.
var (
	ErrEmptyGlob   = goerrors.NewKind("no files matched: %s")
	ErrDictionary  = goerrors.NewKind("dictionary: %s")
	ErrDelimiter   = goerrors.NewKind("invalid delimiter: %s")
	ErrUnknownRTag = goerrors.NewKind("unknown field name in rtags: %s")
)
