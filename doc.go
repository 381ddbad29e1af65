// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package cirjson implements a streaming token reader and writer for
// the CirJSON wire format: JSON extended with one rule, that every
// object opens with a mandatory "__cirJsonId__" string property and
// every array opens with a string identity element.
//
// The package exposes a pull-style Reader (and a feed-driven
// AsyncReader for callers that cannot block on input), a
// call-sequence-validated Writer, and an immutable Factory built
// through Builder that carries feature bits, resource constraints and
// buffer pooling for every stream it constructs. Identity strings are
// validated syntactically but never interpreted; they pass through to
// the caller as ordinary string values.
package cirjson
