// Package model defines the data structures shared by the local search engine.
package model

import (
	"math"
	"strings"
)

// TypeKind is the closed set of value kinds a statement can produce.
type TypeKind int

const (
	// Void is the kind of statements that produce no value (assignments, void calls).
	Void TypeKind = iota
	Boolean
	Byte
	Short
	Int
	Long
	Char
	Float
	Double
	String
	Enum
	Array
	Object
)

var typeKindNames = map[TypeKind]string{
	Void:    "void",
	Boolean: "boolean",
	Byte:    "byte",
	Short:   "short",
	Int:     "int",
	Long:    "long",
	Char:    "char",
	Float:   "float",
	Double:  "double",
	String:  "String",
}

func (k TypeKind) String() string {
	if name, ok := typeKindNames[k]; ok {
		return name
	}

	switch k {
	case Enum:
		return "enum"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// KindByName resolves a primitive type name (as written in test code) to its kind.
func KindByName(name string) (TypeKind, bool) {
	for kind, kindName := range typeKindNames {
		if kindName == name {
			return kind, true
		}
	}

	return Void, false
}

// Type is the declared type of a statement's produced value.
type Type struct {
	Kind TypeKind
	// Name is the class or enum name for Object and Enum kinds.
	Name string
	// Elem is the element type of an Array.
	Elem *Type
	// Constants is the ordered domain of an Enum.
	Constants []string
}

// PrimitiveType returns the type of the given primitive kind.
func PrimitiveType(kind TypeKind) Type {
	return Type{Kind: kind}
}

// ObjectType returns the type of instances of the named class.
func ObjectType(name string) Type {
	return Type{Kind: Object, Name: name}
}

// EnumType returns an enum type with its ordered constants.
func EnumType(name string, constants ...string) Type {
	return Type{Kind: Enum, Name: name, Constants: constants}
}

// ArrayOf returns the array type with the given element type.
func ArrayOf(elem Type) Type {
	return Type{Kind: Array, Elem: &elem}
}

// IsIntegral reports whether values of this type are integers (char included).
func (t Type) IsIntegral() bool {
	switch t.Kind {
	case Byte, Short, Int, Long, Char:
		return true
	default:
		return false
	}
}

// IsFloating reports whether values of this type are float or double.
func (t Type) IsFloating() bool {
	return t.Kind == Float || t.Kind == Double
}

// IsPrimitive reports whether values of this type are held by primitive statements.
func (t Type) IsPrimitive() bool {
	return t.Kind == Boolean || t.IsIntegral() || t.IsFloating() || t.Kind == String || t.Kind == Enum
}

// IsNullable reports whether null is a legal value of this type.
func (t Type) IsNullable() bool {
	return t.Kind == Object || t.Kind == Array || t.Kind == String
}

// Equal reports whether two types denote the same type.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind || t.Name != other.Name {
		return false
	}

	if t.Kind == Array {
		if t.Elem == nil || other.Elem == nil {
			return t.Elem == other.Elem
		}

		return t.Elem.Equal(*other.Elem)
	}

	return true
}

// Clamp saturates v to the value range of an integral type.
func (t Type) Clamp(v int64) int64 {
	var lo, hi int64

	switch t.Kind {
	case Byte:
		lo, hi = math.MinInt8, math.MaxInt8
	case Short:
		lo, hi = math.MinInt16, math.MaxInt16
	case Int:
		lo, hi = math.MinInt32, math.MaxInt32
	case Char:
		lo, hi = 0, math.MaxUint16
	default:
		return v
	}

	return min(max(v, lo), hi)
}

// Coerce truncates v to the width of an integral type.
func (t Type) Coerce(v int64) int64 {
	switch t.Kind {
	case Byte:
		return int64(int8(v))
	case Short:
		return int64(int16(v))
	case Int:
		return int64(int32(v))
	case Char:
		return int64(uint16(v))
	default:
		return v
	}
}

func (t Type) String() string {
	switch t.Kind {
	case Object, Enum:
		return t.Name
	case Array:
		if t.Elem == nil {
			return "Object[]"
		}

		return t.Elem.String() + "[]"
	default:
		return t.Kind.String()
	}
}

// ParseType resolves a type written in test code. Names that are neither
// primitives nor known enums are treated as class names.
func ParseType(name string, enums map[string][]string) Type {
	name = strings.TrimSpace(name)

	if elem, ok := strings.CutSuffix(name, "[]"); ok {
		return ArrayOf(ParseType(elem, enums))
	}

	if kind, ok := KindByName(name); ok {
		return PrimitiveType(kind)
	}

	if constants, ok := enums[name]; ok {
		return EnumType(name, constants...)
	}

	return ObjectType(name)
}
