package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrStillReferenced is returned when removing a statement whose value is used later.
	ErrStillReferenced = errors.New("statement is still referenced")
	// ErrInvalidPosition is returned for positions outside the test case.
	ErrInvalidPosition = errors.New("invalid statement position")
	// ErrForwardReference is returned by Validate when a statement reads a later value.
	ErrForwardReference = errors.New("forward or self reference")
)

// TestCase is an ordered sequence of statements. Positions shift on insertion
// and removal and every reference is retargeted accordingly.
type TestCase struct {
	statements []Statement
	nextID     int
}

// NewTestCase builds a test case from statements in order.
func NewTestCase(statements ...Statement) *TestCase {
	tc := &TestCase{}
	for _, st := range statements {
		tc.Add(st)
	}

	return tc
}

// Add appends a statement and returns its reference.
func (tc *TestCase) Add(st Statement) VarRef {
	return tc.Insert(len(tc.statements), st)
}

// Size returns the number of statements.
func (tc *TestCase) Size() int {
	return len(tc.statements)
}

// Statement returns the statement at pos for in-place modification.
func (tc *TestCase) Statement(pos int) *Statement {
	return &tc.statements[pos]
}

// Clone returns a deep copy. Statement IDs are preserved.
func (tc *TestCase) Clone() *TestCase {
	out := &TestCase{
		statements: make([]Statement, len(tc.statements)),
		nextID:     tc.nextID,
	}

	for i, st := range tc.statements {
		out.statements[i] = st.Clone()
	}

	return out
}

// Insert places st at pos, shifting the statements at and after pos by one.
// References held by st itself must already point before pos.
func (tc *TestCase) Insert(pos int, st Statement) VarRef {
	pos = min(max(pos, 0), len(tc.statements))

	for i := pos; i < len(tc.statements); i++ {
		tc.statements[i].retarget(func(ref VarRef) VarRef {
			if int(ref) >= pos {
				return ref + 1
			}

			return ref
		})
	}

	st = st.Clone()
	st.ID = tc.nextID
	tc.nextID++
	tc.statements = slices.Insert(tc.statements, pos, st)

	return VarRef(pos)
}

// Remove deletes the statement at pos. It fails when the value is still used.
func (tc *TestCase) Remove(pos int) error {
	if pos < 0 || pos >= len(tc.statements) {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, pos)
	}

	if tc.IsReferenced(pos) {
		return fmt.Errorf("%w: %s", ErrStillReferenced, tc.VarName(pos))
	}

	tc.statements = slices.Delete(tc.statements, pos, pos+1)

	for i := pos; i < len(tc.statements); i++ {
		tc.statements[i].retarget(func(ref VarRef) VarRef {
			if int(ref) > pos {
				return ref - 1
			}

			return ref
		})
	}

	return nil
}

// IsReferenced reports whether any later statement reads the value at pos.
func (tc *TestCase) IsReferenced(pos int) bool {
	return len(tc.References(pos)) > 0
}

// References returns the positions of the statements reading the value at pos.
func (tc *TestCase) References(pos int) []int {
	var users []int

	for j := pos + 1; j < len(tc.statements); j++ {
		if tc.statements[j].UsesRef(VarRef(pos)) {
			users = append(users, j)
		}
	}

	return users
}

// ReplaceUses rewires every use of old at or after position from to replacement.
func (tc *TestCase) ReplaceUses(old, replacement VarRef, from int) {
	for j := max(from, 0); j < len(tc.statements); j++ {
		tc.statements[j].retarget(func(ref VarRef) VarRef {
			if ref == old {
				return replacement
			}

			return ref
		})
	}
}

// VariablesOfType returns the values of type t produced before position before.
func (tc *TestCase) VariablesOfType(t Type, before int) []VarRef {
	var refs []VarRef

	for i := 0; i < min(before, len(tc.statements)); i++ {
		st := &tc.statements[i]
		if st.Kind == AssignmentStatement || st.Type.Kind == Void {
			continue
		}

		if st.Type.Equal(t) {
			refs = append(refs, VarRef(i))
		}
	}

	return refs
}

// PositionOf returns the current position of the statement with the given ID, or -1.
func (tc *TestCase) PositionOf(id int) int {
	for i := range tc.statements {
		if tc.statements[i].ID == id {
			return i
		}
	}

	return -1
}

// AssignmentsTo returns the positions of assignments writing into the array at pos.
func (tc *TestCase) AssignmentsTo(pos int) []int {
	var positions []int

	for j := pos + 1; j < len(tc.statements); j++ {
		st := &tc.statements[j]
		if st.Kind == AssignmentStatement && st.Callee == VarRef(pos) {
			positions = append(positions, j)
		}
	}

	return positions
}

// Slice returns the minimal test case needed to compute the value at pos and
// run everything it influences, together with the new position of that value.
// Calls and assignments that consume an influenced value taint their receiver.
func (tc *TestCase) Slice(pos int) (*TestCase, int) {
	keep := make([]bool, len(tc.statements))
	keep[pos] = true
	tainted := map[VarRef]bool{VarRef(pos): true}

	for j := pos + 1; j < len(tc.statements); j++ {
		st := &tc.statements[j]

		if !slices.ContainsFunc(st.Uses(), func(ref VarRef) bool { return tainted[ref] }) {
			continue
		}

		keep[j] = true
		tainted[VarRef(j)] = true

		if st.Callee >= 0 && (st.Kind == AssignmentStatement || st.Kind == MethodStatement) {
			tainted[st.Callee] = true
		}
	}

	for j := len(tc.statements) - 1; j >= 0; j-- {
		if !keep[j] {
			continue
		}

		for _, ref := range tc.statements[j].Uses() {
			keep[ref] = true
		}
	}

	mapping := make(map[VarRef]VarRef, len(tc.statements))
	slice := &TestCase{nextID: tc.nextID}

	for j, st := range tc.statements {
		if !keep[j] {
			continue
		}

		mapping[VarRef(j)] = VarRef(len(slice.statements))
		st = st.Clone()
		st.retarget(func(ref VarRef) VarRef { return mapping[ref] })
		slice.statements = append(slice.statements, st)
	}

	return slice, int(mapping[VarRef(pos)])
}

// ExpandArray makes every element of the array at pos explicit: each index
// without an assignment gets a default value statement and an assignment.
// It returns the positions of the inserted value statements.
func (tc *TestCase) ExpandArray(pos int) []int {
	array := tc.statements[pos]
	if array.Kind != ArrayStatement {
		return nil
	}

	assigned := make(map[int]bool)
	for _, j := range tc.AssignmentsTo(pos) {
		assigned[tc.statements[j].Index] = true
	}

	elem := PrimitiveType(Int)
	if array.Type.Elem != nil {
		elem = *array.Type.Elem
	}

	var inserted []int

	at := pos + 1

	for index := range array.Length {
		if assigned[index] {
			continue
		}

		value := tc.Insert(at, DefaultStatement(elem))
		tc.Insert(at+1, Assign(VarRef(pos), index, value))
		inserted = append(inserted, int(value))
		at += 2
	}

	return inserted
}

// VarName returns the name under which the value at pos appears in code and
// in symbolic variables.
func (tc *TestCase) VarName(pos int) string {
	return fmt.Sprintf("v%d", pos)
}

// PositionOfVar resolves a name produced by VarName.
func (tc *TestCase) PositionOfVar(name string) int {
	for i := range tc.statements {
		if tc.VarName(i) == name {
			return i
		}
	}

	return -1
}

// Validate checks that every statement only reads values defined before it.
func (tc *TestCase) Validate() error {
	for i := range tc.statements {
		for _, ref := range tc.statements[i].Uses() {
			if int(ref) >= i {
				return fmt.Errorf("%w: statement %d reads %s", ErrForwardReference, i, tc.VarName(int(ref)))
			}
		}
	}

	return nil
}

// Code renders the test case as Java-like source.
func (tc *TestCase) Code() string {
	lines := make([]string, len(tc.statements))
	for i := range tc.statements {
		lines[i] = tc.statements[i].code(tc, i)
	}

	return strings.Join(lines, "\n")
}
