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

package expr

import "github.com/columnstore/columnstore/column"

// Function is a scalar (or lambda-capturing) vectorized function: given
// its argument columns (already row-count-aligned), it produces one
// output column. Implementations are monomorphized function objects
// rather than a virtual-call chain over a generic AST node (spec §9
// design note on "dynamic dispatch in expression execution").
type Function interface {
	Name() string
	// Execute computes the result over non-nullable argument columns. The
	// caller (executeWithNullPropagation) handles nullable peeling/wrapping
	// unless HandlesNulls returns true.
	Execute(args []column.Column) (column.Column, error)
	// HandlesNulls reports whether this function wants to see Nullable
	// columns directly (and is responsible for its own null semantics)
	// instead of the engine's default peel-execute-rewrap behavior.
	HandlesNulls() bool
}

// executeWithNullPropagation implements the spec §4.C default nullable
// handling: if the function does not declare special null handling, peel
// nullable inputs, run the function on inner columns, then wrap the
// result in a nullable column whose mask is the OR of the input masks.
// The function runs once over the whole inner columns, so rows that are
// null (including rows null in every input) are computed too; their
// values are masked out, not skipped.
func executeWithNullPropagation(fn Function, args []column.Column) (column.Column, error) {
	if fn.HandlesNulls() {
		return fn.Execute(args)
	}

	var mask []bool
	inner := make([]column.Column, len(args))
	any := false
	for i, a := range args {
		if n, ok := a.(*column.Nullable); ok {
			any = true
			inner[i] = n.Inner()
			if mask == nil {
				mask = make([]bool, n.Len())
			}
			for r := 0; r < n.Len(); r++ {
				if n.IsNullAt(r) {
					mask[r] = true
				}
			}
		} else {
			inner[i] = a
		}
	}
	if !any {
		return fn.Execute(args)
	}

	result, err := fn.Execute(inner)
	if err != nil {
		return nil, err
	}
	// an all-null row never had its value computed meaningfully by fn, but
	// the default propagation rule only requires the mask be set -- the
	// underlying value is simply ignored downstream wherever it is null.
	return column.WrapNullable(result, mask)
}
