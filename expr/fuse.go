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

// CompiledKernel fuses a chain of same-shaped int64 arithmetic ApplyFunction
// actions into a single pass over the argument slices, the pure-Go stand-in
// for the teacher's AVX512 bytecode fusion: the point is the loop gets
// executed once per row instead of once per action, not that the machine
// code is any tighter (spec §9 design note; correctness never depends on
// this path running, only throughput does).
type CompiledKernel struct {
	KernelName string
	Fn         func(row []int64) int64
}

func (k CompiledKernel) Name() string       { return k.KernelName }
func (k CompiledKernel) HandlesNulls() bool { return false }

func (k CompiledKernel) Execute(args []column.Column) (column.Column, error) {
	if len(args) == 0 {
		return nil, errs.ErrLogical("expr: CompiledKernel requires at least one argument")
	}
	n := args[0].Len()
	for _, a := range args {
		if _, ok := a.(*column.Vector[int64]); !ok {
			return nil, errs.ErrLogical("expr: CompiledKernel requires int64 vector columns")
		}
		if a.Len() != n {
			return nil, errs.ErrSizesDontMatch(a.Len(), n)
		}
	}
	out := column.NewInt64Column(nil)
	row := make([]int64, len(args))
	for r := 0; r < n; r++ {
		for i, a := range args {
			row[i] = a.Get(r).I
		}
		if err := out.InsertField(column.Int(k.Fn(row))); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FuseArithmetic builds a CompiledKernel from a chain of arithOp builtins,
// folded left to right over the argument columns (row[0] op0 row[1] op1
// row[2] ...), collapsing what would otherwise be len(chain) separate
// column materializations into one. Only int64 columns are eligible: the
// kernel's Execute returns an error for any other column type.
func FuseArithmetic(name string, ops []arithOp) CompiledKernel {
	return CompiledKernel{
		KernelName: name,
		Fn: func(row []int64) int64 {
			acc := row[0]
			for i, op := range ops {
				next := row[i+1]
				acc = op.ints(acc, next)
			}
			return acc
		},
	}
}
