package model

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// VarRef identifies the value produced by the statement at a position of a test case.
// It is re-resolved against whichever TestCase currently holds it.
type VarRef int

const (
	// NoRef marks an absent callee (static calls, constructors).
	NoRef VarRef = -1
	// NullRef is a literal null argument that has no defining statement.
	NullRef VarRef = -2
)

// StatementKind is the closed set of statement variants.
type StatementKind int

const (
	PrimitiveStatement StatementKind = iota
	NullStatement
	ArrayStatement
	AssignmentStatement
	MethodStatement
	ConstructorStatement
	FieldStatement
)

func (k StatementKind) String() string {
	switch k {
	case PrimitiveStatement:
		return "primitive"
	case NullStatement:
		return "null"
	case ArrayStatement:
		return "array"
	case AssignmentStatement:
		return "assignment"
	case MethodStatement:
		return "method"
	case ConstructorStatement:
		return "constructor"
	case FieldStatement:
		return "field"
	default:
		return "unknown"
	}
}

// Value is the payload of a primitive statement. Integral kinds and enum
// ordinals use Int, floating kinds use Float.
type Value struct {
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

// Statement is one line of a test case.
type Statement struct {
	// ID is stable across clones and insertions; mutation history refers to it.
	ID   int
	Kind StatementKind
	// Type is the produced type, Void when nothing is produced.
	Type  Type
	Value Value
	// Length is the declared length of an array statement.
	Length int
	// Callee is the receiver of a method/field access or the array written by an assignment.
	Callee VarRef
	// Args holds call parameters, or the assigned value for an assignment.
	Args []VarRef
	// Params are the declared parameter types of a call.
	Params []Type
	// Index is the array index written by an assignment.
	Index int
	// Owner is the declaring class of a call or field.
	Owner  string
	Member string
	Static bool
}

// Clone returns a deep copy of the statement.
func (s Statement) Clone() Statement {
	s.Args = slices.Clone(s.Args)
	s.Params = slices.Clone(s.Params)

	return s
}

// Uses returns every position this statement reads.
func (s *Statement) Uses() []VarRef {
	uses := make([]VarRef, 0, len(s.Args)+1)
	if s.Callee >= 0 {
		uses = append(uses, s.Callee)
	}

	for _, arg := range s.Args {
		if arg >= 0 {
			uses = append(uses, arg)
		}
	}

	return uses
}

// UsesRef reports whether this statement reads the given variable.
func (s *Statement) UsesRef(ref VarRef) bool {
	return slices.Contains(s.Uses(), ref)
}

func (s *Statement) retarget(fn func(VarRef) VarRef) {
	if s.Callee >= 0 {
		s.Callee = fn(s.Callee)
	}

	for i, arg := range s.Args {
		if arg >= 0 {
			s.Args[i] = fn(arg)
		}
	}
}

// ParamType returns the declared type of the slot-th parameter, falling back to
// the type of the variable currently bound to it.
func (s *Statement) ParamType(tc *TestCase, slot int) (Type, bool) {
	if slot < len(s.Params) {
		return s.Params[slot], true
	}

	if slot < len(s.Args) && s.Args[slot] >= 0 {
		return tc.Statement(int(s.Args[slot])).Type, true
	}

	return Type{}, false
}

// DefaultStatement returns a statement holding the zero value of t.
func DefaultStatement(t Type) Statement {
	if t.IsNullable() {
		return Statement{Kind: NullStatement, Type: t, Callee: NoRef}
	}

	return Statement{Kind: PrimitiveStatement, Type: t, Callee: NoRef}
}

func (s *Statement) code(tc *TestCase, pos int) string {
	name := tc.VarName(pos)

	switch s.Kind {
	case PrimitiveStatement:
		return fmt.Sprintf("%s %s = %s;", s.Type, name, literal(s.Type, s.Value))
	case NullStatement:
		return fmt.Sprintf("%s %s = null;", s.Type, name)
	case ArrayStatement:
		elem := "Object"
		if s.Type.Elem != nil {
			elem = s.Type.Elem.String()
		}

		return fmt.Sprintf("%s %s = new %s[%d];", s.Type, name, elem, s.Length)
	case AssignmentStatement:
		return fmt.Sprintf("%s[%d] = %s;", tc.refName(s.Callee), s.Index, tc.refName(s.Args[0]))
	case ConstructorStatement:
		return fmt.Sprintf("%s %s = new %s(%s);", s.Type, name, s.Owner, tc.argList(s.Args))
	case MethodStatement:
		receiver := s.Owner
		if !s.Static {
			receiver = tc.refName(s.Callee)
		}

		call := fmt.Sprintf("%s.%s(%s);", receiver, s.Member, tc.argList(s.Args))
		if s.Type.Kind == Void {
			return call
		}

		return fmt.Sprintf("%s %s = %s", s.Type, name, call)
	case FieldStatement:
		receiver := s.Owner
		if !s.Static {
			receiver = tc.refName(s.Callee)
		}

		return fmt.Sprintf("%s %s = %s.%s;", s.Type, name, receiver, s.Member)
	default:
		return "// unknown statement"
	}
}

func literal(t Type, v Value) string {
	switch t.Kind {
	case Boolean:
		return strconv.FormatBool(v.Bool)
	case Char:
		return strconv.QuoteRune(rune(v.Int))
	case Byte, Short, Int:
		return strconv.FormatInt(v.Int, 10)
	case Long:
		return strconv.FormatInt(v.Int, 10) + "L"
	case Float:
		return strconv.FormatFloat(v.Float, 'g', -1, 32) + "F"
	case Double:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case String:
		return strconv.Quote(v.Str)
	case Enum:
		if v.Int >= 0 && int(v.Int) < len(t.Constants) {
			return t.Name + "." + t.Constants[v.Int]
		}

		return "null"
	default:
		return "null"
	}
}

func (tc *TestCase) refName(ref VarRef) string {
	if ref < 0 {
		return "null"
	}

	return tc.VarName(int(ref))
}

func (tc *TestCase) argList(args []VarRef) string {
	names := make([]string, len(args))
	for i, arg := range args {
		names[i] = tc.refName(arg)
	}

	return strings.Join(names, ", ")
}

// Primitive returns a primitive statement holding v.
func Primitive(t Type, v Value) Statement {
	return Statement{Kind: PrimitiveStatement, Type: t, Value: v, Callee: NoRef}
}

// Null returns a statement producing null of type t.
func Null(t Type) Statement {
	return Statement{Kind: NullStatement, Type: t, Callee: NoRef}
}

// NewArray returns an array creation statement.
func NewArray(t Type, length int) Statement {
	return Statement{Kind: ArrayStatement, Type: t, Length: length, Callee: NoRef}
}

// Assign returns a statement writing value into array[index].
func Assign(array VarRef, index int, value VarRef) Statement {
	return Statement{
		Kind:   AssignmentStatement,
		Type:   PrimitiveType(Void),
		Callee: array,
		Index:  index,
		Args:   []VarRef{value},
	}
}

// Construct returns a constructor call of class.
func Construct(class string, params []Type, args []VarRef) Statement {
	return Statement{
		Kind:   ConstructorStatement,
		Type:   ObjectType(class),
		Callee: NoRef,
		Args:   args,
		Params: params,
		Owner:  class,
	}
}

// Call returns an instance method call on callee.
func Call(owner, method string, returns Type, callee VarRef, params []Type, args []VarRef) Statement {
	return Statement{
		Kind:   MethodStatement,
		Type:   returns,
		Callee: callee,
		Args:   args,
		Params: params,
		Owner:  owner,
		Member: method,
	}
}

// StaticCall returns a static method call.
func StaticCall(owner, method string, returns Type, params []Type, args []VarRef) Statement {
	st := Call(owner, method, returns, NoRef, params, args)
	st.Static = true

	return st
}

// Field returns a field read on callee.
func Field(owner, field string, t Type, callee VarRef) Statement {
	return Statement{Kind: FieldStatement, Type: t, Callee: callee, Owner: owner, Member: field}
}
