// Copyright (C) 2026 Columnstore, Inc.
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

package distributed

import "strings"

// localTablePlaceholder is the identifier a Distributed table's stored
// query text uses in place of a concrete database/table pair; RewriteForShard
// substitutes in the remote names before the query is sent to a shard.
// This engine has no SQL parser of its own (expr's Action/Function types
// operate on already-planned column pipelines, not query text), so the
// rewrite works the same way the rest of this engine's "query text" does
// everywhere else it appears: by identifier substitution rather than AST
// manipulation.
const localTablePlaceholder = "$TABLE"

// RewriteForShard substitutes remoteDatabase/remoteTable into query's
// table placeholder, the per-shard rewrite spec §4.G requires before a
// query is forwarded to a specific shard.
func RewriteForShard(query, remoteDatabase, remoteTable string) string {
	return strings.ReplaceAll(query, localTablePlaceholder, remoteDatabase+"."+remoteTable)
}
