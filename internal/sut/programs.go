package sut

import (
	"fmt"
	"maps"
	"slices"

	m "climb.dev/pkg/climb/internal/model"
	"climb.dev/pkg/climb/internal/symbolic"
)

var (
	intType    = m.PrimitiveType(m.Int)
	doubleType = m.PrimitiveType(m.Double)
	boolType   = m.PrimitiveType(m.Boolean)
	stringType = m.PrimitiveType(m.String)
	charType   = m.PrimitiveType(m.Char)
	colorType  = m.EnumType("Color", "RED", "GREEN", "BLUE")
)

var registry = map[string]func() *Program{
	"integers": integersProgram,
	"floats":   floatsProgram,
	"strings":  stringsProgram,
	"arrays":   arraysProgram,
	"enums":    enumsProgram,
	"objects":  objectsProgram,
}

// Lookup returns a fresh instance of the named bundled program.
func Lookup(name string) (*Program, bool) {
	build, ok := registry[name]
	if !ok {
		return nil, false
	}

	return build(), true
}

// Names lists the bundled programs.
func Names() []string {
	return slices.Sorted(maps.Keys(registry))
}

func noopConstructor(*Tracer, *Object, []Value) error {
	return nil
}

func integersProgram() *Program {
	calculator := &Class{
		Name:         "Calculator",
		Constructors: []Constructor{{Body: noopConstructor}},
		Methods: []Method{{
			Name:    "check",
			Params:  []m.Type{intType},
			Returns: boolType,
			Body: func(t *Tracer, _ *Object, args []Value) (Value, error) {
				x := args[0]
				answer := t.Compare(0, x, symbolic.EQ, Int(42))

				if t.Compare(1, x, symbolic.GT, Int(100)) {
					answer = false
				}

				return Bool(answer), nil
			},
		}},
	}

	return newProgram("integers", "integer equality and range checks", 2, calculator)
}

func floatsProgram() *Program {
	thermostat := &Class{
		Name:         "Thermostat",
		Constructors: []Constructor{{Body: noopConstructor}},
		Methods: []Method{{
			Name:    "classify",
			Params:  []m.Type{doubleType},
			Returns: intType,
			Body: func(t *Tracer, _ *Object, args []Value) (Value, error) {
				temperature := args[0]
				if !t.Compare(0, temperature, symbolic.GT, Real(37.5)) {
					return Int(0), nil
				}

				if t.Compare(1, temperature, symbolic.LT, Real(38.25)) {
					return Int(1), nil
				}

				return Int(2), nil
			},
		}},
	}

	return newProgram("floats", "floating point thresholds", 2, thermostat)
}

func stringsProgram() *Program {
	parser := &Class{
		Name:         "Parser",
		Constructors: []Constructor{{Body: noopConstructor}},
		Methods: []Method{
			{
				Name:    "parse",
				Params:  []m.Type{stringType},
				Returns: boolType,
				Body: func(t *Tracer, _ *Object, args []Value) (Value, error) {
					if args[0].IsNull() {
						return Null, ErrNullPointer
					}

					return Bool(t.StrCompare(0, symbolic.Contains, args[0], Str("ab"))), nil
				},
			},
			{
				Name:    "accepts",
				Params:  []m.Type{charType},
				Returns: boolType,
				Body: func(t *Tracer, _ *Object, args []Value) (Value, error) {
					return Bool(t.Compare(1, args[0], symbolic.EQ, Int('z'))), nil
				},
			},
		},
	}

	return newProgram("strings", "string predicates", 2, parser)
}

func arraysProgram() *Program {
	intArray := m.ArrayOf(intType)
	buffer := &Class{
		Name:         "Buffer",
		Constructors: []Constructor{{Body: noopConstructor}},
		Methods: []Method{{
			Name:    "check",
			Params:  []m.Type{intArray},
			Returns: boolType,
			Body: func(t *Tracer, _ *Object, args []Value) (Value, error) {
				arr, err := args[0].AsArray()
				if err != nil {
					return Null, err
				}

				if !t.Compare(0, Int(int64(len(arr.Elems))), symbolic.GE, Int(3)) {
					return Bool(false), nil
				}

				third, err := Element(arr, 2)
				if err != nil {
					return Null, err
				}

				return Bool(t.Compare(1, third, symbolic.EQ, Int(7))), nil
			},
		}},
	}

	return newProgram("arrays", "array length and element checks", 2, buffer)
}

func enumsProgram() *Program {
	light := &Class{
		Name:         "Light",
		Constructors: []Constructor{{Body: noopConstructor}},
		Methods: []Method{
			{
				Name:    "isGo",
				Params:  []m.Type{colorType},
				Returns: boolType,
				Body: func(t *Tracer, _ *Object, args []Value) (Value, error) {
					return Bool(t.Compare(0, args[0], symbolic.EQ, Int(1))), nil
				},
			},
			{
				Name:    "toggle",
				Params:  []m.Type{boolType},
				Returns: boolType,
				Body: func(t *Tracer, _ *Object, args []Value) (Value, error) {
					return Bool(t.Bool(1, args[0])), nil
				},
			},
		},
	}

	p := newProgram("enums", "enum and boolean switches", 2, light)
	p.Enums[colorType.Name] = colorType.Constants

	return p
}

func objectsProgram() *Program {
	accountType := m.ObjectType("Account")

	account := &Class{
		Name:   "Account",
		Fields: map[string]m.Type{"balance": intType},
		Constructors: []Constructor{{
			Params: []m.Type{intType},
			Body: func(t *Tracer, this *Object, args []Value) error {
				if t.Compare(0, args[0], symbolic.LT, Int(0)) {
					return fmt.Errorf("%w: negative balance", ErrIllegalArgument)
				}

				this.Fields["balance"] = args[0]

				return nil
			},
		}},
		Methods: []Method{{
			Name:    "deposit",
			Params:  []m.Type{intType},
			Returns: intType,
			Body: func(_ *Tracer, this *Object, args []Value) (Value, error) {
				this.Fields["balance"] = Plus(this.Fields["balance"], args[0])
				return this.Fields["balance"], nil
			},
		}},
	}

	bank := &Class{
		Name:         "Bank",
		Constructors: []Constructor{{Body: noopConstructor}},
		Methods: []Method{{
			Name:    "transfer",
			Params:  []m.Type{accountType, accountType, intType},
			Returns: boolType,
			Body: func(t *Tracer, _ *Object, args []Value) (Value, error) {
				from, err := args[0].AsObject()
				if err != nil {
					return Null, err
				}

				to, err := args[1].AsObject()
				if err != nil {
					return Null, err
				}

				if t.Compare(1, Bool(from == to), symbolic.EQ, Int(1)) {
					return Bool(false), nil
				}

				amount := args[2]
				if !t.Compare(2, amount, symbolic.LE, from.Fields["balance"]) {
					return Bool(false), nil
				}

				from.Fields["balance"] = Minus(from.Fields["balance"], amount)
				to.Fields["balance"] = Plus(to.Fields["balance"], amount)

				return Bool(true), nil
			},
		}},
	}

	return newProgram("objects", "accounts and transfers between them", 3, account, bank)
}
