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

// Package expr implements the compiled action-list expression engine
// (spec §4.C): a list of actions applied left-to-right over a mutating
// Block. Unlike a tree-walking evaluator, every action names its inputs
// and output by column name so the whole chain can be type-checked once,
// against a zero-row sample block, before any row is touched.
package expr

import (
	"github.com/columnstore/columnstore/block"
	"github.com/columnstore/columnstore/column"
	"github.com/columnstore/columnstore/errs"
)

// Action is one step of an ActionList. Apply mutates b in place
// (conceptually -- since Block holds slices, Apply returns the new Block
// value for the caller to keep using).
type Action interface {
	Apply(b *block.Block) (*block.Block, error)
	// Describe names the columns this action reads and the one it
	// produces, used by Prepare to catch unknown identifiers and
	// duplicate result names before execution.
	Describe() (reads []string, result string)
}

// AddColumn appends a materialized constant column under ResultName.
type AddColumn struct {
	ResultName string
	Value      column.Column // a fully materialized column (often a Const)
}

func (a AddColumn) Apply(b *block.Block) (*block.Block, error) {
	return block.New(append(append([]string(nil), b.Names...), a.ResultName),
		append(append([]column.Column(nil), b.Columns...), a.Value))
}

func (a AddColumn) Describe() (reads []string, result string) { return nil, a.ResultName }

// RemoveColumn erases a column by name.
type RemoveColumn struct {
	SourceName string
}

func (a RemoveColumn) Apply(b *block.Block) (*block.Block, error) {
	names := make([]string, 0, len(b.Names))
	cols := make([]column.Column, 0, len(b.Columns))
	found := false
	for i, n := range b.Names {
		if n == a.SourceName {
			found = true
			continue
		}
		names = append(names, n)
		cols = append(cols, b.Columns[i])
	}
	if !found {
		return nil, errs.New(errs.InvalidInput, "UNKNOWN_IDENTIFIER", "no such column %q", a.SourceName)
	}
	return block.New(names, cols)
}

func (a RemoveColumn) Describe() (reads []string, result string) { return []string{a.SourceName}, "" }

// CopyColumn duplicates a column reference under a new name.
type CopyColumn struct {
	SourceName, ResultName string
}

func (a CopyColumn) Apply(b *block.Block) (*block.Block, error) {
	c, ok := b.ColumnByName(a.SourceName)
	if !ok {
		return nil, errs.New(errs.InvalidInput, "UNKNOWN_IDENTIFIER", "no such column %q", a.SourceName)
	}
	return block.New(append(append([]string(nil), b.Names...), a.ResultName),
		append(append([]column.Column(nil), b.Columns...), c))
}

func (a CopyColumn) Describe() (reads []string, result string) {
	return []string{a.SourceName}, a.ResultName
}

// Project retains and renames columns to the final output shape.
type Project struct {
	Pairs [][2]string // (source name -> alias)
}

func (a Project) Apply(b *block.Block) (*block.Block, error) {
	return b.Project(a.Pairs)
}

func (a Project) Describe() (reads []string, result string) {
	for _, p := range a.Pairs {
		reads = append(reads, p[0])
	}
	return reads, ""
}

// ApplyFunction appends Function(ArgNames...) under ResultName. The
// Function contract and the default nullable-propagation wrapper it runs
// through are defined in function.go.
type ApplyFunction struct {
	ArgNames   []string
	Function   Function
	ResultName string
}

func (a ApplyFunction) Apply(b *block.Block) (*block.Block, error) {
	args := make([]column.Column, len(a.ArgNames))
	for i, name := range a.ArgNames {
		c, ok := b.ColumnByName(name)
		if !ok {
			return nil, errs.New(errs.InvalidInput, "UNKNOWN_IDENTIFIER", "no such column %q", name)
		}
		args[i] = c
	}
	out, err := executeWithNullPropagation(a.Function, args)
	if err != nil {
		return nil, err
	}
	return block.New(append(append([]string(nil), b.Names...), a.ResultName),
		append(append([]column.Column(nil), b.Columns...), out))
}

func (a ApplyFunction) Describe() (reads []string, result string) {
	return append([]string(nil), a.ArgNames...), a.ResultName
}

// ActionList is an ordered chain of Actions applied left to right.
type ActionList struct {
	Actions []Action
}

// Execute runs every action over b in order.
func (l *ActionList) Execute(b *block.Block) (*block.Block, error) {
	cur := b
	var err error
	for _, a := range l.Actions {
		cur, err = a.Apply(cur)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}
