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
	"github.com/columnstore/columnstore/column"
	"github.com/columnstore/columnstore/errs"
)

// arithOp is a two-argument int64/float64 kernel, dispatched on the
// argument columns' concrete type by binaryNumeric -- the same "decide the kernel
// once per call, then loop straight over values" shape the teacher's
// vectorized bytecode ops use, just without the bytecode.
type arithOp struct {
	name  string
	ints  func(a, b int64) int64
	float func(a, b float64) float64
}

func (o arithOp) Name() string      { return o.name }
func (o arithOp) HandlesNulls() bool { return false }

func (o arithOp) Execute(args []column.Column) (column.Column, error) {
	if len(args) != 2 {
		return nil, errs.ErrLogical("expr: " + o.name + " takes exactly 2 arguments")
	}
	return binaryNumeric(args[0], args[1], o.ints, o.float)
}

func binaryNumeric(a, b column.Column, ints func(a, b int64) int64, floats func(a, b float64) float64) (column.Column, error) {
	if a.Len() != b.Len() {
		return nil, errs.ErrSizesDontMatch(a.Len(), b.Len())
	}
	n := a.Len()
	_, aFloat := isFloatColumn(a)
	_, bFloat := isFloatColumn(b)
	if aFloat || bFloat {
		out := column.NewFloat64Column(nil)
		for i := 0; i < n; i++ {
			out.InsertField(column.Float(floats(asFloat(a.Get(i)), asFloat(b.Get(i)))))
		}
		return out, nil
	}
	out := column.NewInt64Column(nil)
	for i := 0; i < n; i++ {
		out.InsertField(column.Int(ints(a.Get(i).I, b.Get(i).I)))
	}
	return out, nil
}

func isFloatColumn(c column.Column) (column.Column, bool) {
	_, ok := c.(*column.Vector[float64])
	return c, ok
}

func asFloat(f column.Field) float64 {
	if f.Kind == column.KindFloat {
		return f.F
	}
	return float64(f.I)
}

// Add, Sub, Mul are the spec's §4.C baseline arithmetic builtins.
var (
	Add = arithOp{name: "plus", ints: func(a, b int64) int64 { return a + b }, float: func(a, b float64) float64 { return a + b }}
	Sub = arithOp{name: "minus", ints: func(a, b int64) int64 { return a - b }, float: func(a, b float64) float64 { return a - b }}
	Mul = arithOp{name: "multiply", ints: func(a, b int64) int64 { return a * b }, float: func(a, b float64) float64 { return a * b }}
)

// cmpOp is a two-argument comparison builtin, producing a bool column.
type cmpOp struct {
	name string
	less bool
	eq   bool
	gt   bool
}

func (o cmpOp) Name() string       { return o.name }
func (o cmpOp) HandlesNulls() bool { return false }

func (o cmpOp) Execute(args []column.Column) (column.Column, error) {
	if len(args) != 2 {
		return nil, errs.ErrLogical("expr: " + o.name + " takes exactly 2 arguments")
	}
	a, b := args[0], args[1]
	if a.Len() != b.Len() {
		return nil, errs.ErrSizesDontMatch(a.Len(), b.Len())
	}
	out := column.NewBoolColumn(nil)
	for i := 0; i < a.Len(); i++ {
		c := column.Compare(a.Get(i), b.Get(i))
		keep := (c < 0 && o.less) || (c == 0 && o.eq) || (c > 0 && o.gt)
		out.InsertField(column.Bool(keep))
	}
	return out, nil
}

// Equals, Less, LessOrEquals, Greater, GreaterOrEquals are the spec's
// §4.C baseline comparison builtins, all returning a non-nullable bool
// column (nullability is restored by executeWithNullPropagation).
var (
	Equals          = cmpOp{name: "equals", eq: true}
	NotEquals       = cmpOp{name: "notEquals", less: true, gt: true}
	Less            = cmpOp{name: "less", less: true}
	LessOrEquals    = cmpOp{name: "lessOrEquals", less: true, eq: true}
	Greater         = cmpOp{name: "greater", gt: true}
	GreaterOrEquals = cmpOp{name: "greaterOrEquals", gt: true, eq: true}
)
