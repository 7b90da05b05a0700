package canon

import (
	"github.com/wasm32ffi/ffi/ffierr"
	"github.com/wasm32ffi/ffi/typedesc"
)

// Canonicalise mutates *t in place and returns the new t.Kind. Passing
// a nil t is legal only for a return type (in_result); it returns
// KindVoid without touching anything.
func Canonicalise(t *typedesc.Type, inResult bool) typedesc.Kind {
	if t == nil {
		return typedesc.KindVoid
	}

	if t.Kind == typedesc.KindComplex {
		return canonicaliseComplex(t)
	}

	if inResult && t.Kind == typedesc.KindLongDouble {
		t.Kind = typedesc.KindStruct
		t.Size = 16
		t.Align = 16
		t.Elements = []*typedesc.Type{typedesc.Sint64Type(), typedesc.Sint64Type()}
		return typedesc.KindStruct
	}

	if t.Kind == typedesc.KindStruct {
		return canonicaliseStruct(t)
	}

	return t.Kind
}

func canonicaliseComplex(t *typedesc.Type) typedesc.Kind {
	if len(t.Elements) != 1 {
		panic(ffierr.New(ffierr.PhaseCanon, ffierr.KindUnknownType).
			Detail("complex type descriptor missing its underlying element").Build().Fatal())
	}
	elem := t.Elements[0]
	switch elem.Kind {
	case typedesc.KindFloat, typedesc.KindDouble, typedesc.KindLongDouble:
	default:
		panic(ffierr.New(ffierr.PhaseCanon, ffierr.KindUnknownType).
			Detail("complex type over unsupported underlying kind %s", elem.Kind).Build().Fatal())
	}

	t.Kind = typedesc.KindStruct
	t.Size = 2 * elem.Size
	t.Align = elem.Align
	t.Elements = []*typedesc.Type{elem, elem}
	return typedesc.KindStruct
}

func canonicaliseStruct(t *typedesc.Type) typedesc.Kind {
	if t.Size == 0 {
		t.Kind = typedesc.KindVoid
		return typedesc.KindVoid
	}

	nonVoid := 0
	var lastNonVoid typedesc.Kind
	for _, elem := range t.Elements {
		k := Canonicalise(elem, false)
		if k != typedesc.KindVoid {
			nonVoid++
			lastNonVoid = k
		}
	}

	if nonVoid > 1 {
		return typedesc.KindStruct
	}

	if nonVoid == 0 {
		t.Kind = typedesc.KindVoid
		return typedesc.KindVoid
	}

	// Single-element collapse: size/alignment are not rewritten, only Kind.
	t.Kind = lastNonVoid
	return lastNonVoid
}

// CanonicaliseCIF runs Canonicalise over every argument type (in_result
// = false) and over RType (in_result = true), the machine-dependent
// half of CIF preparation. Running it twice on an already-canonical
// CIF is a no-op, since no rewrite produces a shape that a further
// pass would change.
func CanonicaliseCIF(c *typedesc.CIF) {
	for _, a := range c.ArgTypes {
		Canonicalise(a, false)
	}
	Canonicalise(c.RType, true)
}
