package sut

import (
	"maps"
	"slices"

	m "climb.dev/pkg/climb/internal/model"
)

// MethodBody implements a method. this is nil for static methods.
type MethodBody func(t *Tracer, this *Object, args []Value) (Value, error)

// ConstructorBody initializes a freshly allocated object.
type ConstructorBody func(t *Tracer, this *Object, args []Value) error

// Method is a callable member of a class.
type Method struct {
	Name    string
	Params  []m.Type
	Returns m.Type
	Static  bool
	Body    MethodBody
}

// Constructor creates instances of a class.
type Constructor struct {
	Params []m.Type
	Body   ConstructorBody
}

// Class is a class of a program under test.
type Class struct {
	Name         string
	Fields       map[string]m.Type
	Constructors []Constructor
	Methods      []Method
}

// Method looks a method up by name.
func (c *Class) Method(name string) (*Method, bool) {
	for i := range c.Methods {
		if c.Methods[i].Name == name {
			return &c.Methods[i], true
		}
	}

	return nil, false
}

// Constructor looks a constructor up by parameter types.
func (c *Class) Constructor(params []m.Type) (*Constructor, bool) {
	for i := range c.Constructors {
		if slices.EqualFunc(c.Constructors[i].Params, params, m.Type.Equal) {
			return &c.Constructors[i], true
		}
	}

	return nil, false
}

// Program is a set of classes whose branches are numbered 0..Branches-1.
type Program struct {
	Name        string
	Description string
	Branches    int
	Enums       map[string][]string
	Classes     map[string]*Class
}

// Class looks a class up by name.
func (p *Program) Class(name string) (*Class, bool) {
	class, ok := p.Classes[name]
	return class, ok
}

// ResolveType parses a type name in the context of the program's enums.
func (p *Program) ResolveType(name string) m.Type {
	return m.ParseType(name, p.Enums)
}

// ClassNames returns the program's class names in order.
func (p *Program) ClassNames() []string {
	return slices.Sorted(maps.Keys(p.Classes))
}

func newProgram(name, description string, branches int, classes ...*Class) *Program {
	p := &Program{
		Name:        name,
		Description: description,
		Branches:    branches,
		Enums:       map[string][]string{},
		Classes:     make(map[string]*Class, len(classes)),
	}

	for _, class := range classes {
		p.Classes[class.Name] = class
	}

	return p
}
