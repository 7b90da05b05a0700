package jshost

import (
	"fmt"
	"strings"

	"github.com/wasm32ffi/ffi/classify"
	"github.com/wasm32ffi/ffi/typedesc"
)

// Signature letters: v = void, i = i32, j = i64, f = f32, d = f64.
// The first letter is the return, the rest are arguments in order.

func letterBytes(c byte) uint32 {
	if c == 'j' || c == 'd' {
		return 8
	}
	return 4
}

// ValidateSignature checks that sig is one return letter followed by
// zero or more argument letters.
func ValidateSignature(sig string) error {
	if len(sig) == 0 {
		return fmt.Errorf("jshost: empty signature")
	}
	if !strings.ContainsRune("vijfd", rune(sig[0])) {
		return fmt.Errorf("jshost: bad return letter %q in signature %q", sig[0], sig)
	}
	for i := 1; i < len(sig); i++ {
		if !strings.ContainsRune("ijfd", rune(sig[i])) {
			return fmt.Errorf("jshost: bad argument letter %q in signature %q", sig[i], sig)
		}
	}
	return nil
}

// unboxKind returns the kind the JS trampoline treats t as. A type
// wider than 16 bytes is handled as a struct passed by pointer even if
// canonicalisation collapsed it to a scalar kind, which accommodates
// front-ends that over-report the size of small wrapper structs.
func unboxKind(t *typedesc.Type) typedesc.Kind {
	if t == nil {
		return typedesc.KindVoid
	}
	if t.Kind != typedesc.KindVoid && t.Kind != typedesc.KindStruct && t.Size > 16 {
		return typedesc.KindStruct
	}
	return t.Kind
}

func argLetters(t *typedesc.Type) string {
	switch unboxKind(t) {
	case typedesc.KindVoid:
		return ""
	case typedesc.KindStruct, typedesc.KindPointer,
		typedesc.KindInt, typedesc.KindUint8, typedesc.KindSint8,
		typedesc.KindUint16, typedesc.KindSint16,
		typedesc.KindUint32, typedesc.KindSint32:
		return "i"
	case typedesc.KindUint64, typedesc.KindSint64:
		return "j"
	case typedesc.KindFloat:
		return "f"
	case typedesc.KindDouble:
		return "d"
	case typedesc.KindLongDouble:
		return "jj"
	default:
		return "i"
	}
}

// Signature computes the wasm signature string for a closure over c:
// return letter first, then one letter per argument slot. Aggregate
// and longdouble returns are indirect, contributing a leading i32
// result-pointer argument and a void return. Variadic calls append one
// trailing i32 for the varargs pointer.
func Signature(c *typedesc.CIF) string {
	var b strings.Builder

	indirect := false
	switch {
	case c.RType == nil || c.RType.Kind == typedesc.KindVoid:
		b.WriteByte('v')
	case c.RType.Kind == typedesc.KindStruct || c.RType.Kind == typedesc.KindLongDouble:
		indirect = true
		b.WriteByte('v')
	default:
		switch classify.SlotKinds(c.RType)[0] {
		case classify.I64:
			b.WriteByte('j')
		case classify.F32:
			b.WriteByte('f')
		case classify.F64:
			b.WriteByte('d')
		default:
			b.WriteByte('i')
		}
	}

	if indirect {
		b.WriteByte('i')
	}
	for _, at := range c.ArgTypes[:c.NFixedArgs] {
		b.WriteString(argLetters(at))
	}
	if c.Variadic() {
		b.WriteByte('i')
	}
	return b.String()
}
