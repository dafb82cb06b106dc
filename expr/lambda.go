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

import (
	"github.com/columnstore/columnstore/block"
	"github.com/columnstore/columnstore/column"
	"github.com/columnstore/columnstore/errs"
)

// Capture is a closure over Field values, the higher-order argument of
// ArrayMap (spec §4.C's arrayMap-style lambda consumer). It is evaluated
// once per array element rather than compiled into the action list, since
// its body is typically a handful of scalar operations where the
// interpretation overhead is negligible next to the surrounding array
// traversal cost.
type Capture func(elem column.Field) (column.Field, error)

// ArrayMap applies Fn to every element of the array column ArrayName,
// producing a new array column under ResultName with the same per-row
// element counts.
type ArrayMap struct {
	ArrayName  string
	ResultName string
	Fn         Capture
}

func (a ArrayMap) Describe() (reads []string, result string) {
	return []string{a.ArrayName}, a.ResultName
}

func (a ArrayMap) Apply(b *block.Block) (*block.Block, error) {
	src, ok := b.ColumnByName(a.ArrayName)
	if !ok {
		return nil, errs.New(errs.InvalidInput, "UNKNOWN_IDENTIFIER", "no such column %q", a.ArrayName)
	}
	arr, ok := src.(*column.Array)
	if !ok {
		return nil, errs.ErrLogical("expr: arrayMap requires an Array column")
	}
	rows := make([][]column.Field, arr.Len())
	childKind := column.KindInt
	seenKind := false
	for i := 0; i < arr.Len(); i++ {
		row := arr.Get(i).A
		mapped := make([]column.Field, len(row))
		for j, elem := range row {
			v, err := a.Fn(elem)
			if err != nil {
				return nil, err
			}
			mapped[j] = v
			if !seenKind {
				childKind = v.Kind
				seenKind = true
			}
		}
		rows[i] = mapped
	}
	out := column.NewArray(newColumnForKind(childKind))
	for _, mapped := range rows {
		if err := out.AppendRow(mapped); err != nil {
			return nil, err
		}
	}
	return block.New(append(append([]string(nil), b.Names...), a.ResultName),
		append(append([]column.Column(nil), b.Columns...), out))
}

// newColumnForKind creates an empty column whose native representation
// matches kind, used when ArrayMap needs to build the result array's child
// column before it has seen every mapped value's type.
func newColumnForKind(kind column.Kind) column.Column {
	switch kind {
	case column.KindFloat:
		return column.NewFloat64Column(nil)
	case column.KindBool:
		return column.NewBoolColumn(nil)
	case column.KindString:
		return column.NewStringColumn(nil)
	default:
		return column.NewInt64Column(nil)
	}
}
