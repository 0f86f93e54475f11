package domain

import (
	m "climb.dev/pkg/climb/internal/model"
)

// MoverFor returns the mover searching statements like st, or nil when the
// statement kind is not searched under cfg.
func MoverFor(cfg Config, st *m.Statement) Mover {
	switch st.Kind {
	case m.PrimitiveStatement:
		if !cfg.Primitives {
			return nil
		}

		return primitiveMover(cfg, st.Type)
	case m.ArrayStatement:
		if !cfg.Arrays {
			return nil
		}

		return ArrayMover{}
	case m.NullStatement:
		if !cfg.References {
			return nil
		}

		if cfg.ReferenceStrategy == ReferenceExhaustive {
			return NullReferenceMover{}
		}

		return ReferenceMover{}
	case m.MethodStatement, m.ConstructorStatement, m.FieldStatement:
		if !cfg.References {
			return nil
		}

		if cfg.ReferenceStrategy == ReferenceExhaustive {
			return ParameterMover{}
		}

		return ReferenceMover{}
	default:
		return nil
	}
}

func primitiveMover(cfg Config, t m.Type) Mover {
	switch {
	case t.Kind == m.Boolean:
		return BooleanMover{}
	case t.Kind == m.Enum:
		return EnumMover{}
	case t.IsIntegral():
		return IntegerMover{}
	case t.IsFloating():
		return FloatMover{}
	case t.Kind == m.String:
		if !cfg.Strings {
			return nil
		}

		return StringMover{Strategy: cfg.StringStrategy}
	default:
		return nil
	}
}
